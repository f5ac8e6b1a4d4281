package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/riftcoach/stats-api/internal/models"
)

// ErrNotFound is returned for 404 responses so callers can distinguish
// "player does not exist" from transport failures.
var ErrNotFound = errors.New("riot: not found")

// RedisClient is the slice of redis used for response caching.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Cache TTLs. Match details are immutable so they cache long; lists and
// league standings go stale quickly.
const (
	matchTTL    = 24 * time.Hour
	matchIDsTTL = 5 * time.Minute
	accountTTL  = 15 * time.Minute
	summonerTTL = time.Hour
	leagueTTL   = 5 * time.Minute
)

// Dev-key limits, kept under the documented 20/s and 100/2min.
const (
	requestsPerSecond = 15
	requestsPer2Min   = 90
)

// Client is a rate-limited, cache-backed Riot API client. Rate limiting
// is a pair of sliding windows over recent request timestamps.
type Client struct {
	apiKey      string
	regionalURL string // e.g. https://americas.api.riotgames.com
	platformURL string // e.g. https://euw1.api.riotgames.com
	httpClient  *http.Client
	cache       RedisClient
	logger      *zap.SugaredLogger

	mu          sync.Mutex
	shortWindow []time.Time
	longWindow  []time.Time
}

type Config struct {
	APIKey      string
	RegionalURL string
	PlatformURL string
	Timeout     time.Duration
}

func NewClient(cfg Config, cache RedisClient, logger *zap.SugaredLogger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("riot: API key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		apiKey:      cfg.APIKey,
		regionalURL: cfg.RegionalURL,
		platformURL: cfg.PlatformURL,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		cache:       cache,
		logger:      logger,
	}, nil
}

// waitForRateLimit blocks until a request slot is free in both windows.
func (c *Client) waitForRateLimit(ctx context.Context) error {
	for {
		c.mu.Lock()
		now := time.Now()
		c.shortWindow = pruneBefore(c.shortWindow, now.Add(-time.Second))
		c.longWindow = pruneBefore(c.longWindow, now.Add(-2*time.Minute))

		var wait time.Duration
		switch {
		case len(c.shortWindow) >= requestsPerSecond:
			wait = c.shortWindow[0].Add(time.Second).Sub(now) + 100*time.Millisecond
		case len(c.longWindow) >= requestsPer2Min:
			wait = c.longWindow[0].Add(2*time.Minute).Sub(now) + 100*time.Millisecond
		default:
			c.shortWindow = append(c.shortWindow, now)
			c.longWindow = append(c.longWindow, now)
			c.mu.Unlock()
			return nil
		}
		c.mu.Unlock()

		c.logger.Debugw("riot rate limit reached, waiting", "wait", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func pruneBefore(window []time.Time, cutoff time.Time) []time.Time {
	kept := window[:0]
	for _, t := range window {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// fetch runs one cached GET: cache hit decodes directly, a miss goes to
// the API through the rate limiter and the raw body is cached on success.
func (c *Client) fetch(ctx context.Context, cacheKey, requestURL string, ttl time.Duration, result interface{}) error {
	if c.cache != nil {
		if raw, err := c.cache.Get(ctx, cacheKey).Result(); err == nil {
			if err := json.Unmarshal([]byte(raw), result); err == nil {
				return nil
			}
			c.logger.Warnw("discarding undecodable cache entry", "key", cacheKey)
		}
	}

	body, err := c.doRequest(ctx, requestURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decoding riot response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, string(body), ttl).Err(); err != nil {
			c.logger.Warnw("failed to cache riot response", "key", cacheKey, "error", err)
		}
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, requestURL string) ([]byte, error) {
	for {
		if err := c.waitForRateLimit(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-Riot-Token", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("riot request failed: %w", err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfter(resp.Header.Get("Retry-After"))
			c.logger.Warnw("riot returned 429", "retry_after", wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode == http.StatusForbidden:
			return nil, errors.New("riot: 403 forbidden, check API key")
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("riot: unexpected status %d", resp.StatusCode)
		}
		if readErr != nil {
			return nil, fmt.Errorf("reading riot response: %w", readErr)
		}
		return body, nil
	}
}

func retryAfter(header string) time.Duration {
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 10 * time.Second
}

// AccountByRiotID resolves gameName#tagLine to a PUUID.
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine string) (*Account, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.regionalURL, url.PathEscape(gameName), url.PathEscape(tagLine))

	var account Account
	if err := c.fetch(ctx, "riot:account:"+gameName+"#"+tagLine, u, accountTTL, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// SummonerByPUUID fetches the platform summoner record (icon, level).
func (c *Client) SummonerByPUUID(ctx context.Context, puuid string) (*Summoner, error) {
	u := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s", c.platformURL, url.PathEscape(puuid))

	var summoner Summoner
	if err := c.fetch(ctx, "riot:summoner:"+puuid, u, summonerTTL, &summoner); err != nil {
		return nil, err
	}
	return &summoner, nil
}

// LeagueEntries fetches the ranked queue standings for a summoner.
func (c *Client) LeagueEntries(ctx context.Context, summonerID string) ([]LeagueEntry, error) {
	u := fmt.Sprintf("%s/lol/league/v4/entries/by-summoner/%s", c.platformURL, url.PathEscape(summonerID))

	var entries []LeagueEntry
	if err := c.fetch(ctx, "riot:league:"+summonerID, u, leagueTTL, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// MatchIDsByPUUID lists the most recent match IDs, newest first.
func (c *Client) MatchIDsByPUUID(ctx context.Context, puuid string, count int) ([]string, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?start=0&count=%d",
		c.regionalURL, url.PathEscape(puuid), count)

	var ids []string
	key := fmt.Sprintf("riot:matchids:%s:%d", puuid, count)
	if err := c.fetch(ctx, key, u, matchIDsTTL, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Match fetches full match-v5 detail.
func (c *Client) Match(ctx context.Context, matchID string) (*models.RawMatch, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.regionalURL, url.PathEscape(matchID))

	var match models.RawMatch
	if err := c.fetch(ctx, "riot:match:"+matchID, u, matchTTL, &match); err != nil {
		return nil, err
	}
	return &match, nil
}
