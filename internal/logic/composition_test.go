package logic

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/riftcoach/stats-api/internal/models"
)

type mockPredictor struct {
	prob    float64
	err     error
	lastVec []float64
}

func (m *mockPredictor) PredictWinProbability(vec []float64) (float64, error) {
	m.lastVec = append([]float64(nil), vec...)
	return m.prob, m.err
}

var draftChampions = []string{
	"Ahri", "Lux", "Zed", "Jinx", "Thresh",
	"Garen", "Ashe", "Lee Sin", "Morgana", "Orianna",
}

// fullDraft returns a 5v5: first five champions blue, last five red.
func fullDraft() []models.DisplayParticipant {
	out := make([]models.DisplayParticipant, 10)
	for i, champ := range draftChampions {
		teamID := 100
		if i >= 5 {
			teamID = 200
		}
		out[i] = models.DisplayParticipant{ChampionName: champ, TeamID: teamID}
	}
	return out
}

func TestCompositionInsightVector(t *testing.T) {
	pred := &mockPredictor{prob: 0.623}
	ci := NewCompositionInsights(pred, draftChampions, zap.NewNop().Sugar())

	got := ci.Insight(fullDraft())
	if got != "Pre-game model: blue side win probability 62%." {
		t.Errorf("unexpected insight: %q", got)
	}

	if len(pred.lastVec) != len(draftChampions) {
		t.Fatalf("vector length = %d, want %d", len(pred.lastVec), len(draftChampions))
	}
	for i := range draftChampions {
		want := 1.0
		if i >= 5 {
			want = -1.0
		}
		if pred.lastVec[i] != want {
			t.Errorf("vec[%d] (%s) = %v, want %v", i, draftChampions[i], pred.lastVec[i], want)
		}
	}
}

func TestCompositionInsightNoPredictor(t *testing.T) {
	ci := NewCompositionInsights(nil, nil, zap.NewNop().Sugar())

	if got := ci.Insight(fullDraft()); got != "Composition prediction model not available." {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestCompositionInsightRequiresFullMatch(t *testing.T) {
	pred := &mockPredictor{prob: 0.5}
	ci := NewCompositionInsights(pred, draftChampions, zap.NewNop().Sugar())

	const want = "Composition analysis requires a full 5v5 match."

	// Wrong participant count.
	if got := ci.Insight(fullDraft()[:9]); got != want {
		t.Errorf("9 participants: %q", got)
	}

	// 6v4 split.
	draft := fullDraft()
	draft[5].TeamID = 100
	if got := ci.Insight(draft); got != want {
		t.Errorf("6v4 split: %q", got)
	}

	// Unknown team id.
	draft = fullDraft()
	draft[0].TeamID = 300
	if got := ci.Insight(draft); got != want {
		t.Errorf("unknown team: %q", got)
	}

	if pred.lastVec != nil {
		t.Error("predictor must not be called for unusable drafts")
	}
}

func TestCompositionInsightUnknownChampion(t *testing.T) {
	pred := &mockPredictor{prob: 0.5}
	ci := NewCompositionInsights(pred, draftChampions, zap.NewNop().Sugar())

	draft := fullDraft()
	draft[3].ChampionName = "Briar"
	got := ci.Insight(draft)
	if !strings.Contains(got, "outside the model's data") {
		t.Errorf("unexpected message: %q", got)
	}
	if pred.lastVec != nil {
		t.Error("predictor must not be called when the draft has unknown champions")
	}
}

func TestCompositionInsightPredictorError(t *testing.T) {
	pred := &mockPredictor{err: errors.New("model not fitted")}
	ci := NewCompositionInsights(pred, draftChampions, zap.NewNop().Sugar())

	if got := ci.Insight(fullDraft()); got != "Composition prediction unavailable right now." {
		t.Errorf("unexpected message: %q", got)
	}
}
