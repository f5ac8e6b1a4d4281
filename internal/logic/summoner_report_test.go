package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/riftcoach/stats-api/internal/models"
	"github.com/riftcoach/stats-api/internal/riot"
)

type mockSource struct {
	account  func(gameName, tagLine string) (*riot.Account, error)
	summoner func(puuid string) (*riot.Summoner, error)
	league   func(summonerID string) ([]riot.LeagueEntry, error)
	matchIDs func(puuid string, count int) ([]string, error)
	match    func(matchID string) (*models.RawMatch, error)
}

func (m *mockSource) AccountByRiotID(_ context.Context, gameName, tagLine string) (*riot.Account, error) {
	return m.account(gameName, tagLine)
}

func (m *mockSource) SummonerByPUUID(_ context.Context, puuid string) (*riot.Summoner, error) {
	return m.summoner(puuid)
}

func (m *mockSource) LeagueEntries(_ context.Context, summonerID string) ([]riot.LeagueEntry, error) {
	return m.league(summonerID)
}

func (m *mockSource) MatchIDsByPUUID(_ context.Context, puuid string, count int) ([]string, error) {
	return m.matchIDs(puuid, count)
}

func (m *mockSource) Match(_ context.Context, matchID string) (*models.RawMatch, error) {
	return m.match(matchID)
}

type mockPersister struct {
	mu      sync.Mutex
	records []*models.MatchRecord
	accept  bool
}

func (m *mockPersister) Enqueue(rec *models.MatchRecord, _ []models.ParticipantRow) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return m.accept
}

// healthySource serves n matches built from the shared fixture, with a
// ranked profile attached.
func healthySource(n int) *mockSource {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("EUW1_%03d", i)
	}
	return &mockSource{
		account: func(gameName, tagLine string) (*riot.Account, error) {
			return &riot.Account{PUUID: "target", GameName: gameName, TagLine: tagLine}, nil
		},
		summoner: func(string) (*riot.Summoner, error) {
			return &riot.Summoner{ID: "summ-1", PUUID: "target", ProfileIconID: 123, SummonerLevel: 250}, nil
		},
		league: func(string) ([]riot.LeagueEntry, error) {
			return []riot.LeagueEntry{
				{QueueType: "RANKED_FLEX_SR", Tier: "SILVER", Rank: "I"},
				{QueueType: riot.QueueRankedSolo, Tier: "GOLD", Rank: "II", LeaguePoints: 45, Wins: 60, Losses: 50},
			}, nil
		},
		matchIDs: func(_ string, count int) ([]string, error) {
			if count < n {
				return ids[:count], nil
			}
			return ids, nil
		},
		match: func(matchID string) (*models.RawMatch, error) {
			m := sampleMatch()
			m.Metadata.MatchID = matchID
			return m, nil
		},
	}
}

func newTestReportService(source MatchSource, persister Persister, matchCount int) *ReportService {
	logger := zap.NewNop().Sugar()
	return NewReportService(source, persister,
		NewInsightsService(AnalysisTuning{}, logger), nil, matchCount, logger)
}

func TestBuildReportUnknownPlayer(t *testing.T) {
	source := &mockSource{
		account: func(string, string) (*riot.Account, error) {
			return nil, riot.ErrNotFound
		},
	}
	svc := newTestReportService(source, nil, 5)

	_, err := svc.BuildReport(context.Background(), "Ghost", "EUW")
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestBuildReportSuccess(t *testing.T) {
	persister := &mockPersister{accept: true}
	svc := newTestReportService(healthySource(6), persister, 6)

	report, err := svc.BuildReport(context.Background(), "Faker", "KR1")
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}

	if report.SummonerName != "Faker#KR1" {
		t.Errorf("SummonerName = %q", report.SummonerName)
	}
	if report.ProfileIconID != 123 || report.SummonerLevel != 250 {
		t.Errorf("profile not filled: %+v", report)
	}
	if report.SoloRank.Tier != "GOLD" || report.SoloRank.Rank != "II" || report.SoloRank.LP != 45 {
		t.Errorf("solo rank not picked from entries: %+v", report.SoloRank)
	}
	if report.APIWarning != "" {
		t.Errorf("unexpected warning: %q", report.APIWarning)
	}

	if len(report.Matches) != 6 {
		t.Fatalf("expected 6 match views, got %d", len(report.Matches))
	}
	// Order follows the id list, newest first.
	for i, view := range report.Matches {
		want := fmt.Sprintf("EUW1_%03d", i)
		if view.MatchID != want {
			t.Errorf("match %d: id = %q, want %q", i, view.MatchID, want)
		}
	}
	if !report.Matches[0].BlueTeamWon || report.Matches[0].RedTeamWon {
		t.Errorf("team results wrong: %+v", report.Matches[0])
	}

	// Every fetched match is handed to the persister.
	if len(persister.records) != 6 {
		t.Errorf("expected 6 enqueued records, got %d", len(persister.records))
	}
	for _, rec := range persister.records {
		if rec.GameModeName != "Ranked Solo/Duo" || rec.QueueID != 420 {
			t.Errorf("unexpected record: %+v", rec)
		}
	}

	// 6 matches with 5 recent losses absent: rules still produce output.
	if len(report.Recommendations) == 0 {
		t.Error("expected rule recommendations")
	}
}

func TestBuildReportSkipsFailedFetches(t *testing.T) {
	source := healthySource(5)
	inner := source.match
	source.match = func(matchID string) (*models.RawMatch, error) {
		if matchID == "EUW1_002" || matchID == "EUW1_004" {
			return nil, errors.New("riot 500")
		}
		return inner(matchID)
	}
	svc := newTestReportService(source, nil, 5)

	report, err := svc.BuildReport(context.Background(), "Faker", "KR1")
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if len(report.Matches) != 3 {
		t.Errorf("expected 3 surviving matches, got %d", len(report.Matches))
	}
	if report.APIWarning != "2 of 5 matches could not be retrieved." {
		t.Errorf("unexpected warning: %q", report.APIWarning)
	}
	// Survivors keep their relative order.
	wantIDs := []string{"EUW1_000", "EUW1_001", "EUW1_003"}
	for i, view := range report.Matches {
		if view.MatchID != wantIDs[i] {
			t.Errorf("match %d: id = %q, want %q", i, view.MatchID, wantIDs[i])
		}
	}
}

func TestBuildReportProfileDegradesGracefully(t *testing.T) {
	source := healthySource(5)
	source.summoner = func(string) (*riot.Summoner, error) {
		return nil, errors.New("riot 503")
	}
	svc := newTestReportService(source, nil, 5)

	report, err := svc.BuildReport(context.Background(), "Faker", "KR1")
	if err != nil {
		t.Fatalf("profile failure must not fail the report: %v", err)
	}
	if report.APIWarning != "Profile details are temporarily unavailable." {
		t.Errorf("unexpected warning: %q", report.APIWarning)
	}
	if len(report.Matches) != 5 {
		t.Errorf("matches must still be present, got %d", len(report.Matches))
	}
	if report.SoloRank.Tier != "" {
		t.Errorf("rank must stay empty when the profile lookup fails: %+v", report.SoloRank)
	}
}

func TestBuildReportMatchListFailure(t *testing.T) {
	source := healthySource(5)
	source.matchIDs = func(string, int) ([]string, error) {
		return nil, errors.New("riot 429")
	}
	svc := newTestReportService(source, nil, 5)

	_, err := svc.BuildReport(context.Background(), "Faker", "KR1")
	if err == nil || !strings.Contains(err.Error(), "listing matches") {
		t.Errorf("expected a listing error, got %v", err)
	}
}
