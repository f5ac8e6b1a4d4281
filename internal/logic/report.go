package logic

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riftcoach/stats-api/internal/models"
)

// AnalysisTuning groups the gates the analysis paths run with. Zero
// values are replaced by defaults so a partially configured service
// still behaves sensibly.
type AnalysisTuning struct {
	MinGamesChampML    int // per-champion decision tree gate
	MinGamesClustering int
	NumClusters        int
}

func (t *AnalysisTuning) applyDefaults() {
	if t.MinGamesChampML <= 0 {
		t.MinGamesChampML = 10
	}
	if t.MinGamesClustering <= 0 {
		t.MinGamesClustering = 15
	}
	if t.NumClusters <= 0 {
		t.NumClusters = 3
	}
}

// InsightBundle carries the three independent insight lists of a report.
type InsightBundle struct {
	Recommendations   []string `json:"general_recommendations"`
	MLInsights        []string `json:"ml_decision_tree_insights"`
	PlaystyleInsights []string `json:"playstyle_insights"`
}

// InsightsService fans the three analysis paths out over a match history.
// A failure or panic in one path never affects the others.
type InsightsService struct {
	rules     *RuleEngine
	champs    *ChampionInsights
	playstyle *PlaystyleAnalyzer
	tuning    AnalysisTuning
	logger    *zap.SugaredLogger
}

func NewInsightsService(tuning AnalysisTuning, logger *zap.SugaredLogger) *InsightsService {
	tuning.applyDefaults()
	return &InsightsService{
		rules:     NewRuleEngine(DefaultRuleThresholds()),
		champs:    NewChampionInsights(logger),
		playstyle: NewPlaystyleAnalyzer(logger),
		tuning:    tuning,
		logger:    logger,
	}
}

// BuildInsights runs rules, the per-champion classifier, and the
// play-style clusterer concurrently over the same history.
func (s *InsightsService) BuildInsights(ctx context.Context, history []models.MatchStat) *InsightBundle {
	bundle := &InsightBundle{}

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		bundle.Recommendations = s.contained("rule engine", func() []string {
			return s.rules.Recommendations(history)
		})
		return nil
	})

	g.Go(func() error {
		bundle.MLInsights = s.contained("champion classifier", func() []string {
			return s.champs.Recommendations(history, s.tuning.MinGamesChampML)
		})
		return nil
	})

	g.Go(func() error {
		bundle.PlaystyleInsights = s.contained("playstyle clusterer", func() []string {
			return s.playstyle.Insights(history, s.tuning.NumClusters, s.tuning.MinGamesClustering)
		})
		return nil
	})

	// Paths never return errors; Wait only synchronizes.
	_ = g.Wait()

	return bundle
}

// contained runs one analysis path and converts a panic into an empty
// result plus a log line.
func (s *InsightsService) contained(name string, fn func() []string) (out []string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("analysis path panicked", "path", name, "panic", fmt.Sprintf("%v", r))
			out = nil
		}
	}()
	return fn()
}
