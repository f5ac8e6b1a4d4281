// Package worker implements the buffered worker pool for async match
// persistence. Report requests enqueue fetched matches and return
// immediately; workers batch the writes to Postgres and ClickHouse.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/riftcoach/stats-api/internal/models"
	"github.com/riftcoach/stats-api/internal/storage"
)

// Prometheus metrics
var (
	matchesEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "riftcoach_matches_enqueued_total",
		Help: "Total number of matches enqueued for persistence",
	})

	matchesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "riftcoach_matches_persisted_total",
		Help: "Total number of matches persisted by workers",
	})

	matchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "riftcoach_matches_failed_total",
		Help: "Total number of matches that failed persistence",
	})

	matchesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "riftcoach_matches_dropped_total",
		Help: "Total number of matches dropped because the pool was stopping",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "riftcoach_worker_queue_depth",
		Help: "Current depth of the persistence queue",
	})

	batchPersistDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "riftcoach_batch_persist_duration_seconds",
		Help:    "Duration of persistence batches",
		Buckets: prometheus.DefBuckets,
	})
)

// Job is one fully extracted match ready for persistence.
type Job struct {
	Record       *models.MatchRecord
	Participants []models.ParticipantRow
	EnqueuedAt   time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	Store         *storage.MatchStore
	Archive       *storage.Archive
	Logger        *zap.Logger
}

// Pool manages workers persisting matches asynchronously.
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
}

func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop gracefully shuts down the pool, flushing queued jobs.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	p.cancel()
	close(p.jobQueue)
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds a match for persistence. Non-blocking apart from queue
// backpressure; returns false when the pool is shutting down.
func (p *Pool) Enqueue(rec *models.MatchRecord, participants []models.ParticipantRow) bool {
	job := Job{
		Record:       rec,
		Participants: participants,
		EnqueuedAt:   time.Now(),
	}

	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue match (pool stopped)", "error", r)
		}
	}()

	select {
	case p.jobQueue <- job:
		matchesEnqueued.Inc()
		return true
	case <-p.ctx.Done():
		matchesDropped.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		batchID := uuid.NewString()
		start := time.Now()
		failed := p.persistBatch(batch, batchID)
		batchPersistDuration.Observe(time.Since(start).Seconds())

		matchesPersisted.Add(float64(len(batch) - failed))
		if failed > 0 {
			matchesFailed.Add(float64(failed))
		}
		p.logger.Debugw("Batch flushed",
			"worker", id, "batch_id", batchID,
			"size", len(batch), "failed", failed,
			"duration", time.Since(start),
		)

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			// Drain what is already queued, then flush.
			for {
				select {
				case job, ok := <-p.jobQueue:
					if !ok {
						flush()
						return
					}
					batch = append(batch, job)
					if len(batch) >= p.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// persistBatch writes each match to Postgres and mirrors it into the
// archive. Per-match failures are counted and logged, never fatal: a
// match missing from storage is re-fetchable.
func (p *Pool) persistBatch(batch []Job, batchID string) (failed int) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, job := range batch {
		if err := p.config.Store.UpsertMatch(ctx, job.Record); err != nil {
			p.logger.Errorw("Failed to persist match",
				"batch_id", batchID, "match_id", job.Record.MatchID, "error", err)
			failed++
			continue
		}
		if err := p.config.Store.UpsertParticipants(ctx, job.Record.MatchID, job.Participants); err != nil {
			p.logger.Errorw("Failed to persist participants",
				"batch_id", batchID, "match_id", job.Record.MatchID, "error", err)
			failed++
			continue
		}
		if p.config.Archive != nil {
			if err := p.config.Archive.AppendParticipants(ctx, job.Record, job.Participants); err != nil {
				// Archive lag is acceptable; serving data is already stored.
				p.logger.Warnw("Failed to archive match",
					"batch_id", batchID, "match_id", job.Record.MatchID, "error", err)
			}
		}
	}
	return failed
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
