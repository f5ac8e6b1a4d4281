package logic

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/riftcoach/stats-api/internal/models"
)

// CompositionPredictor estimates the probability that the blue side wins
// from a signed champion-presence vector. Implementations own the fitted
// model; this package only builds the vector and renders the result.
type CompositionPredictor interface {
	PredictWinProbability(vec []float64) (float64, error)
}

// CompositionInsights turns a 5v5 draft into a one-line pre-game insight.
// The feature order must match the order the predictor was trained with.
type CompositionInsights struct {
	predictor CompositionPredictor
	features  []string
	index     map[string]int
	logger    *zap.SugaredLogger
}

func NewCompositionInsights(predictor CompositionPredictor, orderedFeatures []string, logger *zap.SugaredLogger) *CompositionInsights {
	index := make(map[string]int, len(orderedFeatures))
	for i, name := range orderedFeatures {
		index[name] = i
	}
	return &CompositionInsights{
		predictor: predictor,
		features:  orderedFeatures,
		index:     index,
		logger:    logger,
	}
}

const (
	blueTeamID = 100
	redTeamID  = 200
)

// Insight builds the ±1 champion vector (blue +1, red −1) and asks the
// predictor for a blue-side win probability. Unusable drafts degrade to
// explanatory strings, never errors: a missing insight must not block
// the rest of a report.
func (c *CompositionInsights) Insight(participants []models.DisplayParticipant) string {
	if c == nil || c.predictor == nil {
		return "Composition prediction model not available."
	}
	if len(participants) != 10 {
		return "Composition analysis requires a full 5v5 match."
	}

	vec := make([]float64, len(c.features))
	blue, red, unknown := 0, 0, 0
	for _, p := range participants {
		sign := 0.0
		switch p.TeamID {
		case blueTeamID:
			sign = 1
			blue++
		case redTeamID:
			sign = -1
			red++
		default:
			return "Composition analysis requires a full 5v5 match."
		}
		j, ok := c.index[p.ChampionName]
		if !ok {
			unknown++
			continue
		}
		vec[j] += sign
	}
	if blue != 5 || red != 5 {
		return "Composition analysis requires a full 5v5 match."
	}
	if unknown > 0 {
		// A champion the model never saw makes the vector lie; skip
		// rather than report a probability built on a partial draft.
		c.logger.Debugw("draft contains champions unknown to the composition model", "unknown", unknown)
		return "Composition analysis unavailable: this draft includes champions outside the model's data."
	}

	prob, err := c.predictor.PredictWinProbability(vec)
	if err != nil {
		c.logger.Warnw("composition prediction failed", "error", err)
		return "Composition prediction unavailable right now."
	}
	return fmt.Sprintf("Pre-game model: blue side win probability %.0f%%.", prob*100)
}
