package logic

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riftcoach/stats-api/internal/models"
	"github.com/riftcoach/stats-api/internal/riot"
)

// ErrPlayerNotFound maps to a 404 at the HTTP layer.
var ErrPlayerNotFound = errors.New("player not found")

// MatchSource is the slice of the Riot client the report service needs.
type MatchSource interface {
	AccountByRiotID(ctx context.Context, gameName, tagLine string) (*riot.Account, error)
	SummonerByPUUID(ctx context.Context, puuid string) (*riot.Summoner, error)
	LeagueEntries(ctx context.Context, summonerID string) ([]riot.LeagueEntry, error)
	MatchIDsByPUUID(ctx context.Context, puuid string, count int) ([]string, error)
	Match(ctx context.Context, matchID string) (*models.RawMatch, error)
}

// Persister decouples report building from the storage worker pool.
type Persister interface {
	Enqueue(rec *models.MatchRecord, participants []models.ParticipantRow) bool
}

// fetchConcurrency bounds parallel match-detail requests; the riot client
// rate limiter serializes beyond this anyway.
const fetchConcurrency = 4

// ReportService builds the full per-summoner analysis report.
type ReportService struct {
	source     MatchSource
	persister  Persister
	insights   *InsightsService
	comp       *CompositionInsights
	matchCount int
	logger     *zap.SugaredLogger
}

func NewReportService(source MatchSource, persister Persister, insights *InsightsService, comp *CompositionInsights, matchCount int, logger *zap.SugaredLogger) *ReportService {
	if matchCount <= 0 {
		matchCount = 20
	}
	return &ReportService{
		source:     source,
		persister:  persister,
		insights:   insights,
		comp:       comp,
		matchCount: matchCount,
		logger:     logger,
	}
}

// BuildReport resolves the Riot ID, fetches recent matches, and runs the
// analysis paths over them. Profile and rank lookups are non-critical:
// their failure degrades the header, never the report.
func (s *ReportService) BuildReport(ctx context.Context, gameName, tagLine string) (*models.SummonerReport, error) {
	account, err := s.source.AccountByRiotID(ctx, gameName, tagLine)
	if err != nil {
		if errors.Is(err, riot.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("resolving riot id %s#%s: %w", gameName, tagLine, err)
	}

	report := &models.SummonerReport{
		SummonerName: account.GameName + "#" + account.TagLine,
	}

	s.fillProfileAndRank(ctx, account.PUUID, report)

	ids, err := s.source.MatchIDsByPUUID(ctx, account.PUUID, s.matchCount)
	if err != nil {
		return nil, fmt.Errorf("listing matches for %s: %w", report.SummonerName, err)
	}

	matches, skipped := s.fetchMatches(ctx, ids)
	if skipped > 0 {
		report.APIWarning = fmt.Sprintf("%d of %d matches could not be retrieved.", skipped, len(ids))
	}

	history := make([]models.MatchStat, 0, len(matches))
	for _, m := range matches {
		stat, ok := ExtractPlayerStats(m, account.PUUID)
		if !ok {
			s.logger.Warnw("skipping malformed or foreign match", "match_id", matchID(m))
			continue
		}
		history = append(history, *stat)

		display := ProcessParticipantsForDisplay(m.Info.Participants)
		view := models.MatchView{
			MatchStat:   *stat,
			MatchID:     matchID(m),
			TeamMembers: display,
			BlueTeamWon: teamWon(display, 100),
			RedTeamWon:  teamWon(display, 200),
		}
		if s.comp != nil {
			view.CompositionInsight = s.comp.Insight(display)
		}
		report.Matches = append(report.Matches, view)

		s.persistMatch(m)
	}

	bundle := s.insights.BuildInsights(ctx, history)
	report.Recommendations = bundle.Recommendations
	report.MLInsights = bundle.MLInsights
	report.PlaystyleInsights = bundle.PlaystyleInsights

	return report, nil
}

func (s *ReportService) fillProfileAndRank(ctx context.Context, puuid string, report *models.SummonerReport) {
	summoner, err := s.source.SummonerByPUUID(ctx, puuid)
	if err != nil {
		s.logger.Warnw("summoner profile lookup failed", "error", err)
		report.APIWarning = "Profile details are temporarily unavailable."
		return
	}
	report.ProfileIconID = summoner.ProfileIconID
	report.SummonerLevel = summoner.SummonerLevel

	entries, err := s.source.LeagueEntries(ctx, summoner.ID)
	if err != nil {
		s.logger.Warnw("league lookup failed", "error", err)
		return
	}
	if solo, ok := riot.SoloEntry(entries); ok {
		report.SoloRank = models.SoloRankInfo{
			Tier:   solo.Tier,
			Rank:   solo.Rank,
			LP:     solo.LeaguePoints,
			Wins:   solo.Wins,
			Losses: solo.Losses,
		}
	}
}

// fetchMatches retrieves match details concurrently, preserving the
// newest-first order of ids. Individual failures are skipped.
func (s *ReportService) fetchMatches(ctx context.Context, ids []string) ([]*models.RawMatch, int) {
	results := make([]*models.RawMatch, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			m, err := s.source.Match(ctx, id)
			if err != nil {
				s.logger.Warnw("match fetch failed", "match_id", id, "error", err)
				return nil
			}
			results[i] = m
			return nil
		})
	}
	_ = g.Wait()

	matches := make([]*models.RawMatch, 0, len(ids))
	skipped := 0
	for _, m := range results {
		if m == nil {
			skipped++
			continue
		}
		matches = append(matches, m)
	}
	return matches, skipped
}

func (s *ReportService) persistMatch(m *models.RawMatch) {
	if s.persister == nil {
		return
	}
	rows := ExtractAllParticipantStats(m)
	if len(rows) == 0 {
		return
	}
	rec := &models.MatchRecord{
		MatchID:      matchID(m),
		GameCreation: m.Info.GameCreation,
		GameDuration: m.Info.GameDuration,
		GameVersion:  m.Info.GameVersion,
		QueueID:      m.Info.QueueID,
		GameModeName: GameModeName(m.Info.QueueID, m.Info.GameMode),
	}
	if !s.persister.Enqueue(rec, rows) {
		s.logger.Warnw("persistence queue rejected match", "match_id", rec.MatchID)
	}
}

func matchID(m *models.RawMatch) string {
	if m.Metadata != nil {
		return m.Metadata.MatchID
	}
	return ""
}

func teamWon(participants []models.DisplayParticipant, teamID int) bool {
	for _, p := range participants {
		if p.TeamID == teamID {
			return p.Win
		}
	}
	return false
}
