package logic

import (
	"math"

	"github.com/riftcoach/stats-api/internal/models"
)

// Feature binds a metric name to its accessor on the normalized record.
// The classifier and the clusterer share the same fixed feature set.
type Feature struct {
	Name  string
	Value func(*models.MatchStat) float64
}

// AnalysisFeatures is the canonical model feature set, in training order.
func AnalysisFeatures() []Feature {
	return []Feature{
		{"kda_ratio", func(s *models.MatchStat) float64 { return s.KDARatio }},
		{"cs_per_min", func(s *models.MatchStat) float64 { return s.CSPerMin }},
		{"damage_per_min", func(s *models.MatchStat) float64 { return s.DamagePerMin }},
		{"gold_per_min", func(s *models.MatchStat) float64 { return s.GoldPerMin }},
		{"kp_percentage", func(s *models.MatchStat) float64 { return s.KPPercentage }},
		{"vision_score_per_min", func(s *models.MatchStat) float64 { return s.VisionScorePerMin }},
	}
}

// featureMatrix extracts one row per match, dropping rows containing a
// non-finite value. keep[i] reports whether history[i] survived.
func featureMatrix(history []models.MatchStat, features []Feature) (rows [][]float64, keep []bool) {
	keep = make([]bool, len(history))
	for i := range history {
		row := make([]float64, len(features))
		valid := true
		for j, f := range features {
			v := f.Value(&history[i])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				valid = false
				break
			}
			row[j] = v
		}
		if !valid {
			continue
		}
		keep[i] = true
		rows = append(rows, row)
	}
	return rows, keep
}
