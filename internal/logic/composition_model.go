package logic

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
)

// LogisticModel is a linear composition model trained offline on the
// archive export and serialized as JSON. It implements
// CompositionPredictor.
type LogisticModel struct {
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// LoadLogisticModel reads a serialized model from disk.
func LoadLogisticModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading composition model: %w", err)
	}
	var m LogisticModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding composition model: %w", err)
	}
	if len(m.Features) == 0 || len(m.Features) != len(m.Coefficients) {
		return nil, fmt.Errorf("composition model has %d features but %d coefficients",
			len(m.Features), len(m.Coefficients))
	}
	return &m, nil
}

// PredictWinProbability returns the blue-side win probability for a
// signed champion-presence vector.
func (m *LogisticModel) PredictWinProbability(vec []float64) (float64, error) {
	if len(vec) != len(m.Coefficients) {
		return 0, fmt.Errorf("vector length %d does not match model width %d",
			len(vec), len(m.Coefficients))
	}
	z := m.Intercept + floats.Dot(m.Coefficients, vec)
	return 1 / (1 + math.Exp(-z)), nil
}
