package logic

import (
	"reflect"
	"strings"
	"testing"

	"github.com/riftcoach/stats-api/internal/models"
)

// histEntry is a compact builder for MatchStat histories.
func histEntry(champ, role string, win bool, mutate ...func(*models.MatchStat)) models.MatchStat {
	s := models.MatchStat{
		Champion:          champ,
		Role:              role,
		Win:               win,
		KDARatio:          3.0,
		CSPerMin:          7.0,
		GoldPerMin:        400,
		DamagePerMin:      600,
		VisionScorePerMin: 1.0,
		KPPercentage:      60,
		Duration:          30,
	}
	for _, fn := range mutate {
		fn(&s)
	}
	return s
}

func repeatHist(n int, champ, role string, win bool, mutate ...func(*models.MatchStat)) []models.MatchStat {
	out := make([]models.MatchStat, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, histEntry(champ, role, win, mutate...))
	}
	return out
}

func countByTag(recs []string, tag string) int {
	n := 0
	for _, r := range recs {
		if models.Tag(r) == tag {
			n++
		}
	}
	return n
}

func TestRecommendationsTooFewMatches(t *testing.T) {
	engine := NewRuleEngine(DefaultRuleThresholds())

	for _, n := range []int{0, 1, 2} {
		recs := engine.Recommendations(repeatHist(n, "Ahri", "MIDDLE", true))
		if len(recs) != 1 {
			t.Fatalf("n=%d: expected exactly one prompt, got %v", n, recs)
		}
		if models.Tag(recs[0]) != "" {
			t.Errorf("n=%d: play-more prompt must be untagged, got %q", n, recs[0])
		}
		if !strings.Contains(recs[0], "Play more matches") {
			t.Errorf("n=%d: unexpected prompt %q", n, recs[0])
		}
	}
}

func TestRecommendationsLowWinrateCriticalOnce(t *testing.T) {
	engine := NewRuleEngine(DefaultRuleThresholds())

	// 3 wins / 7 losses = 30% over 10 games, spread over enough champions
	// that no per-champion analyzer fires.
	var history []models.MatchStat
	champs := []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "A10"}
	for i, c := range champs {
		history = append(history, histEntry(c, "MIDDLE", i < 3))
	}

	recs := engine.Recommendations(history)
	if got := countByTag(recs, models.TagCritical); got != 1 {
		t.Fatalf("expected exactly one CRITICAL, got %d in %v", got, recs)
	}
	found := false
	for _, r := range recs {
		if models.Tag(r) == models.TagCritical && strings.Contains(r, "30%") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the 30%% winrate critical, got %v", recs)
	}
}

func TestChampionWinrateCriticalTakesPrecedenceOverLowKDA(t *testing.T) {
	engine := NewRuleEngine(DefaultRuleThresholds())

	// Ahri: 1 win / 4 losses = 20% with KDA 1.0 — both champion conditions
	// hold; only the CRITICAL one may fire.
	lowKDA := func(s *models.MatchStat) { s.KDARatio = 1.0 }
	history := append(
		repeatHist(1, "Ahri", "MIDDLE", true, lowKDA),
		repeatHist(4, "Ahri", "MIDDLE", false, lowKDA)...,
	)
	// Pad winrate above the overall gates with other champions.
	history = append(history, repeatHist(7, "Lux", "UTILITY", true, func(s *models.MatchStat) {
		s.VisionScorePerMin = 2.0
	})...)

	recs := engine.Recommendations(history)

	var ahriLines []string
	for _, r := range recs {
		if strings.Contains(r, "Ahri") {
			ahriLines = append(ahriLines, r)
		}
	}
	if len(ahriLines) != 1 {
		t.Fatalf("expected one Ahri line, got %v", ahriLines)
	}
	if models.Tag(ahriLines[0]) != models.TagCritical {
		t.Errorf("Ahri at 20%% must be CRITICAL, got %q", ahriLines[0])
	}
	if !strings.Contains(ahriLines[0], "20%") {
		t.Errorf("expected the 20%% winrate in the message, got %q", ahriLines[0])
	}
}

func TestShortLossStreak(t *testing.T) {
	engine := NewRuleEngine(DefaultRuleThresholds())

	short := func(s *models.MatchStat) { s.Duration = 18 }
	history := []models.MatchStat{
		histEntry("Ahri", "MIDDLE", false, short),
		histEntry("Zed", "MIDDLE", false, short),
		histEntry("Lux", "MIDDLE", true),
	}

	recs := engine.Recommendations(history)
	found := false
	for _, r := range recs {
		if strings.Contains(r, "losses in short games") {
			found = true
			if models.Tag(r) != models.TagSuggestion {
				t.Errorf("tilt check must be SUGGESTION, got %q", r)
			}
		}
	}
	if !found {
		t.Errorf("expected the short-loss streak suggestion, got %v", recs)
	}
}

func TestFarmingBelowLaneTarget(t *testing.T) {
	engine := NewRuleEngine(DefaultRuleThresholds())

	// BOTTOM target is 7.0; 85% of it is 5.95. Average 5.0 must flag.
	lowCS := func(s *models.MatchStat) { s.CSPerMin = 5.0 }
	history := repeatHist(5, "Jinx", "BOTTOM", true, lowCS)

	recs := engine.analyzeFarming(history)
	if len(recs) != 1 {
		t.Fatalf("expected one farming suggestion, got %v", recs)
	}
	if !strings.Contains(recs[0], "BOTTOM") || !strings.Contains(recs[0], "7.0") {
		t.Errorf("unexpected farming message: %q", recs[0])
	}

	// At 6.5 (above 5.95) nothing fires.
	okCS := repeatHist(5, "Jinx", "BOTTOM", true, func(s *models.MatchStat) { s.CSPerMin = 6.5 })
	if recs := engine.analyzeFarming(okCS); len(recs) != 0 {
		t.Errorf("expected no farming suggestion at 6.5, got %v", recs)
	}
}

func TestKillParticipationOnlyPlaymakingRoles(t *testing.T) {
	engine := NewRuleEngine(DefaultRuleThresholds())

	lowKP := func(s *models.MatchStat) { s.KPPercentage = 30 }

	// TOP games are excluded; only 4 relevant games → below the gate.
	history := append(
		repeatHist(4, "Ahri", "MIDDLE", true, lowKP),
		repeatHist(3, "Garen", "TOP", true, lowKP)...,
	)
	if recs := engine.analyzeKillParticipation(history); len(recs) != 0 {
		t.Errorf("expected no KP suggestion with 4 relevant games, got %v", recs)
	}

	history = repeatHist(5, "Ahri", "MIDDLE", true, lowKP)
	recs := engine.analyzeKillParticipation(history)
	if len(recs) != 1 {
		t.Fatalf("expected one KP suggestion, got %v", recs)
	}
	if !strings.Contains(recs[0], "30%") {
		t.Errorf("unexpected KP message: %q", recs[0])
	}
}

func TestVisionIgnoresShortGames(t *testing.T) {
	engine := NewRuleEngine(DefaultRuleThresholds())

	lowVS := func(s *models.MatchStat) { s.VisionScorePerMin = 0.3 }
	shortGame := func(s *models.MatchStat) { s.VisionScorePerMin = 0.3; s.Duration = 12 }

	// Only 2 games longer than 15 minutes → below the 3-game gate.
	history := append(
		repeatHist(2, "Ahri", "MIDDLE", true, lowVS),
		repeatHist(3, "Ahri", "MIDDLE", true, shortGame)...,
	)
	if recs := engine.analyzeVision(history); len(recs) != 0 {
		t.Errorf("expected no vision suggestion, got %v", recs)
	}

	history = repeatHist(3, "Ahri", "MIDDLE", true, lowVS)
	recs := engine.analyzeVision(history)
	if len(recs) != 1 || models.Tag(recs[0]) != models.TagSuggestion {
		t.Fatalf("expected one vision SUGGESTION, got %v", recs)
	}
}

func TestSupportVisionCritical(t *testing.T) {
	engine := NewRuleEngine(DefaultRuleThresholds())

	// 1.0 VS/min passes the general 0.75 bar but fails the 1.3 support bar.
	history := repeatHist(3, "Thresh", "UTILITY", true)

	recs := engine.analyzeVision(history)
	if len(recs) != 1 {
		t.Fatalf("expected one support vision critical, got %v", recs)
	}
	if models.Tag(recs[0]) != models.TagCritical || !strings.Contains(recs[0], "Support") {
		t.Errorf("unexpected support vision message: %q", recs[0])
	}
}

func TestChampionWinFactors(t *testing.T) {
	engine := NewRuleEngine(DefaultRuleThresholds())

	// Ahri: 4 wins with KDA 5.0, 4 losses with KDA 2.0 → uplift 1.5 > 0.25.
	// Other metrics held identical so only KDA fires.
	winKDA := func(s *models.MatchStat) { s.KDARatio = 5.0 }
	lossKDA := func(s *models.MatchStat) { s.KDARatio = 2.0 }
	history := append(
		repeatHist(4, "Ahri", "MIDDLE", true, winKDA),
		repeatHist(4, "Ahri", "MIDDLE", false, lossKDA)...,
	)
	history = append(history, repeatHist(2, "Lux", "UTILITY", true)...)

	recs := engine.analyzeChampionWinFactors(history)
	if len(recs) != 1 {
		t.Fatalf("expected one win-factor insight, got %v", recs)
	}
	if models.Tag(recs[0]) != models.TagInfo || !strings.Contains(recs[0], "KDA Ratio") {
		t.Errorf("unexpected win-factor message: %q", recs[0])
	}
}

func TestRecommendationsCapWithOverflowNote(t *testing.T) {
	engine := NewRuleEngine(DefaultRuleThresholds())

	// A thoroughly bad history triggers many analyzers at once.
	bad := func(s *models.MatchStat) {
		s.KDARatio = 0.5
		s.CSPerMin = 3.0
		s.KPPercentage = 20
		s.VisionScorePerMin = 0.2
		s.Duration = 18
	}
	history := append(
		repeatHist(8, "Yasuo", "MIDDLE", false, bad),
		repeatHist(4, "Jinx", "BOTTOM", false, bad)...,
	)

	recs := engine.Recommendations(history)
	if len(recs) != DefaultRuleThresholds().MaxRecommendations+1 {
		t.Fatalf("expected cap+1 lines, got %d: %v", len(recs), recs)
	}
	last := recs[len(recs)-1]
	if models.Tag(last) != models.TagInfo || !strings.Contains(last, "more areas to improve") {
		t.Errorf("expected the overflow note last, got %q", last)
	}
}

func TestRecommendationsPositiveWhenClean(t *testing.T) {
	engine := NewRuleEngine(DefaultRuleThresholds())

	// Healthy history across distinct champions: nothing fires.
	var history []models.MatchStat
	for _, c := range []string{"A", "B", "C", "D", "E", "F"} {
		history = append(history, histEntry(c, "MIDDLE", true))
	}

	recs := engine.Recommendations(history)
	if len(recs) != 1 || models.Tag(recs[0]) != models.TagPositive {
		t.Fatalf("expected the single POSITIVE line, got %v", recs)
	}

	// Same but with only 3-4 matches: the neutral still-analyzing prompt.
	recs = engine.Recommendations(history[:3])
	if len(recs) != 1 || models.Tag(recs[0]) != "" {
		t.Fatalf("expected the untagged still-analyzing prompt, got %v", recs)
	}
	if !strings.Contains(recs[0], "still analyzing") {
		t.Errorf("unexpected prompt: %q", recs[0])
	}
}

func TestRecommendationsDeterministic(t *testing.T) {
	engine := NewRuleEngine(DefaultRuleThresholds())

	bad := func(s *models.MatchStat) {
		s.KDARatio = 0.8
		s.CSPerMin = 3.0
		s.KPPercentage = 25
	}
	history := append(
		repeatHist(6, "Yasuo", "MIDDLE", false, bad),
		repeatHist(6, "Zed", "MIDDLE", false, bad)...,
	)

	first := engine.Recommendations(history)
	for i := 0; i < 10; i++ {
		if got := engine.Recommendations(history); !reflect.DeepEqual(got, first) {
			t.Fatalf("iteration %d differs:\n%v\nvs\n%v", i, got, first)
		}
	}
}
