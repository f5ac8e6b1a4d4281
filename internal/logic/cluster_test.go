package logic

import (
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/riftcoach/stats-api/internal/models"
)

func TestPlaystyleBelowMinGames(t *testing.T) {
	pa := NewPlaystyleAnalyzer(zap.NewNop().Sugar())

	if got := pa.Insights(repeatHist(14, "Ahri", "MIDDLE", true), 3, 15); got != nil {
		t.Errorf("expected nil below min games, got %v", got)
	}
}

// Identical records collapse to one distinct point; clustering must not
// divide by zero or invent styles out of copies.
func TestPlaystyleIdenticalRecords(t *testing.T) {
	pa := NewPlaystyleAnalyzer(zap.NewNop().Sugar())

	got := pa.Insights(repeatHist(20, "Ahri", "MIDDLE", true), 3, 15)
	if len(got) != 1 {
		t.Fatalf("expected a single explanatory line, got %v", got)
	}
	if !strings.Contains(got[0], "Not enough varied data") {
		t.Errorf("unexpected message: %q", got[0])
	}
	if models.Tag(got[0]) != models.TagInfo {
		t.Errorf("explanatory line must be [INFO], got %q", got[0])
	}
}

func TestPlaystyleTooFewFeatures(t *testing.T) {
	pa := NewPlaystyleAnalyzer(zap.NewNop().Sugar())

	features := AnalysisFeatures()[:2]
	got := pa.insightsWithFeatures(repeatHist(20, "Ahri", "MIDDLE", true), 3, 15, features)
	if len(got) != 1 || !strings.Contains(got[0], "missing for play-style analysis") {
		t.Errorf("expected the missing-features line, got %v", got)
	}
}

// twoStyleHistory mixes clearly dominant games with clearly rough ones.
func twoStyleHistory() []models.MatchStat {
	dominant := func(s *models.MatchStat) {
		s.KDARatio = 6.0
		s.DamagePerMin = 900
		s.GoldPerMin = 480
		s.KPPercentage = 70
	}
	rough := func(s *models.MatchStat) {
		s.KDARatio = 0.8
		s.DamagePerMin = 300
		s.GoldPerMin = 280
		s.KPPercentage = 40
	}
	var history []models.MatchStat
	for i := 0; i < 10; i++ {
		history = append(history, histEntry("Ahri", "MIDDLE", true, dominant, jitter(i)))
	}
	for i := 0; i < 10; i++ {
		history = append(history, histEntry("Ahri", "MIDDLE", false, rough, jitter(i)))
	}
	return history
}

// jitter keeps rows distinct without moving them between styles.
func jitter(i int) func(*models.MatchStat) {
	return func(s *models.MatchStat) {
		s.CSPerMin += float64(i) * 0.01
	}
}

func TestPlaystyleTwoDistinctStyles(t *testing.T) {
	pa := NewPlaystyleAnalyzer(zap.NewNop().Sugar())

	got := pa.Insights(twoStyleHistory(), 2, 15)
	if len(got) != 3 {
		t.Fatalf("expected header + 2 cluster lines, got %v", got)
	}
	if !strings.Contains(got[0], "grouped into 2 styles") {
		t.Errorf("unexpected header: %q", got[0])
	}
	for _, line := range got {
		if models.Tag(line) != models.TagInfo {
			t.Errorf("every cluster line must be [INFO], got %q", line)
		}
	}
	// Both clusters hold half the matches.
	for _, line := range got[1:] {
		if !strings.Contains(line, "(50% of matches)") {
			t.Errorf("expected a 50%% share, got %q", line)
		}
	}
}

func TestPlaystyleDeterministic(t *testing.T) {
	pa := NewPlaystyleAnalyzer(zap.NewNop().Sugar())

	history := twoStyleHistory()
	first := pa.Insights(history, 3, 15)
	for i := 0; i < 5; i++ {
		if got := pa.Insights(history, 3, 15); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs:\n%v\nvs\n%v", i, got, first)
		}
	}
}

func TestTendencyBuckets(t *testing.T) {
	tests := []struct {
		scaled float64
		want   models.TendencyLabel
	}{
		{1.5, models.TendencyVeryHigh},
		{0.7, models.TendencyHigh},
		{0.0, models.TendencyAverage},
		{-0.7, models.TendencyLow},
		{-1.5, models.TendencyVeryLow},
		{0.4, models.TendencyAverage}, // boundary is exclusive
		{-1.0, models.TendencyLow},    // boundary is exclusive
	}
	for _, tt := range tests {
		if got := tendencyFor(tt.scaled); got != tt.want {
			t.Errorf("tendencyFor(%v) = %q, want %q", tt.scaled, got, tt.want)
		}
	}
}

func TestStandardizeZeroVariance(t *testing.T) {
	rows := [][]float64{
		{1, 5},
		{2, 5},
		{3, 5},
	}
	scaled := standardize(rows)

	// Constant column: scale 1, values become value-mean = 0.
	for i := range scaled {
		if scaled[i][1] != 0 {
			t.Errorf("row %d: constant column should scale to 0, got %v", i, scaled[i][1])
		}
	}
	// Varying column is centered.
	if scaled[1][0] != 0 {
		t.Errorf("middle value should center to 0, got %v", scaled[1][0])
	}
	if scaled[0][0] >= 0 || scaled[2][0] <= 0 {
		t.Errorf("ordering must survive standardization: %v", scaled)
	}
}

func TestArchetypeMatchingRequiresTwoTendencies(t *testing.T) {
	pa := NewPlaystyleAnalyzer(zap.NewNop().Sugar())

	features := AnalysisFeatures()
	rows := make([][]float64, 4)
	for i := range rows {
		rows[i] = make([]float64, len(features))
	}

	// A centroid matching the rough-game archetype on all three expected
	// tendencies.
	centroid := make([]float64, len(features))
	for j, f := range features {
		switch f.Name {
		case "kda_ratio":
			centroid[j] = -1.5
		case "gold_per_min", "damage_per_min":
			centroid[j] = -0.7
		}
	}

	insight := pa.clusterProfile(rows, centroid, []int{0, 1}, features, 4)
	if insight.ArchetypeName != "Rough Start / Recovery Game" {
		t.Fatalf("expected the rough-game archetype, got %+v", insight)
	}
	if len(insight.Metrics) != 3 {
		t.Errorf("expected 3 matched metrics, got %v", insight.Metrics)
	}
	if insight.Tip == "" {
		t.Error("archetype match must carry its tip")
	}

	// Only one tendency matching → fallback, not an archetype.
	weak := make([]float64, len(features))
	for j, f := range features {
		if f.Name == "kda_ratio" {
			weak[j] = -1.5
		}
	}
	insight = pa.clusterProfile(rows, weak, []int{0, 1}, features, 4)
	if insight.ArchetypeName != "" {
		t.Errorf("single tendency must not match an archetype, got %q", insight.ArchetypeName)
	}
	if len(insight.Metrics) != 1 {
		t.Errorf("fallback should describe the deviating feature, got %v", insight.Metrics)
	}
}

func TestKMeansStable(t *testing.T) {
	rows := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{5, 5}, {5.1, 5}, {5, 5.1},
	}

	centroids, assignments := kmeans(rows, 2, kmeansSeed)
	if len(centroids) != 2 {
		t.Fatalf("expected 2 centroids, got %d", len(centroids))
	}

	// The two obvious groups end up in different clusters.
	if assignments[0] != assignments[1] || assignments[1] != assignments[2] {
		t.Errorf("first group split across clusters: %v", assignments)
	}
	if assignments[3] != assignments[4] || assignments[4] != assignments[5] {
		t.Errorf("second group split across clusters: %v", assignments)
	}
	if assignments[0] == assignments[3] {
		t.Errorf("groups merged into one cluster: %v", assignments)
	}
}
