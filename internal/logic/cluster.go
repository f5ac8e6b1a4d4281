package logic

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/riftcoach/stats-api/internal/models"
)

// kmeansSeed fixes cluster initialization so the same history always
// yields the same segmentation.
const kmeansSeed = 42

const maxKMeansIterations = 300

// TendencyExpectation pairs a metric with the tendency an archetype
// expects for it.
type TendencyExpectation struct {
	Metric   string
	Tendency models.TendencyLabel
}

// Archetype is a named play-style profile. A cluster is labeled with the
// archetype whose expectations it matches best (minimum 2 matching
// tendencies; ties keep the earlier catalog entry).
type Archetype struct {
	Name    string
	Profile []TendencyExpectation
	Tip     string
}

// ArchetypeCatalog is the fixed, ordered archetype table. Data-driven so
// the matching algorithm stays testable independent of the catalog.
func ArchetypeCatalog() []Archetype {
	return []Archetype{
		{
			Name: "Dominant Carry / High Impact",
			Profile: []TendencyExpectation{
				{"kda_ratio", models.TendencyVeryHigh},
				{"damage_per_min", models.TendencyHigh},
				{"gold_per_min", models.TendencyHigh},
				{"kp_percentage", models.TendencyHigh},
			},
			Tip: "These are your best games! Try to recreate the conditions that get you into this state.",
		},
		{
			Name: "Engaged Team Player",
			Profile: []TendencyExpectation{
				{"kp_percentage", models.TendencyVeryHigh},
				{"vision_score_per_min", models.TendencyHigh},
				{"kda_ratio", models.TendencyAverage},
			},
			Tip: "Your high participation is valuable; make sure it converts into advantages and objectives for your team.",
		},
		{
			Name: "Farming Specialist",
			Profile: []TendencyExpectation{
				{"cs_per_min", models.TendencyVeryHigh},
				{"gold_per_min", models.TendencyHigh},
				{"kp_percentage", models.TendencyLow},
			},
			Tip: "Solid farming gives you a strong gold base. Consider moving that advantage to the rest of the map a little sooner.",
		},
		{
			Name: "Rough Start / Recovery Game",
			Profile: []TendencyExpectation{
				{"kda_ratio", models.TendencyVeryLow},
				{"gold_per_min", models.TendencyLow},
				{"damage_per_min", models.TendencyLow},
			},
			Tip: "These games look like they were hard to get going. Consider whether playing safer or asking for help could have stabilized them.",
		},
	}
}

// tendencyFor buckets a standardized centroid coordinate.
func tendencyFor(scaled float64) models.TendencyLabel {
	switch {
	case scaled > 1.0:
		return models.TendencyVeryHigh
	case scaled > 0.4:
		return models.TendencyHigh
	case scaled < -1.0:
		return models.TendencyVeryLow
	case scaled < -0.4:
		return models.TendencyLow
	default:
		return models.TendencyAverage
	}
}

// PlaystyleAnalyzer segments a player's recent matches into play styles
// via standardized k-means and labels each cluster against the archetype
// catalog.
type PlaystyleAnalyzer struct {
	logger     *zap.SugaredLogger
	archetypes []Archetype
}

func NewPlaystyleAnalyzer(logger *zap.SugaredLogger) *PlaystyleAnalyzer {
	return &PlaystyleAnalyzer{logger: logger, archetypes: ArchetypeCatalog()}
}

// Insights is the rendered-string entry point; one [INFO] line per
// cluster under a header line. Degenerate inputs produce a single
// explanatory [INFO] line, never an error.
func (a *PlaystyleAnalyzer) Insights(history []models.MatchStat, numClusters, minGames int) []string {
	return a.insightsWithFeatures(history, numClusters, minGames, AnalysisFeatures())
}

func (a *PlaystyleAnalyzer) insightsWithFeatures(history []models.MatchStat, numClusters, minGames int, features []Feature) []string {
	if len(history) < minGames {
		return nil
	}

	if len(features) < 3 {
		return []string{models.TagInfo + " Key data or enough features are missing for play-style analysis."}
	}

	rows, _ := featureMatrix(history, features)
	if len(rows) < minGames {
		return []string{fmt.Sprintf(
			"%s Not enough matches with complete data after cleanup (%d, need %d) to identify play styles.",
			models.TagInfo, len(rows), minGames)}
	}

	distinct := countDistinctRows(rows)
	k := numClusters
	if distinct < k {
		k = distinct
	}
	if k < 2 {
		return []string{fmt.Sprintf(
			"%s Not enough varied data (%d distinct analyzable matches) to identify multiple play styles.",
			models.TagInfo, distinct)}
	}

	scaled := standardize(rows)
	centroids, assignments := kmeans(scaled, k, kmeansSeed)

	insights := []string{fmt.Sprintf(
		"%s Play-style analysis (based on %d valid matches, grouped into %d styles):",
		models.TagInfo, len(rows), k)}

	clusterLines := 0
	for i := 0; i < k; i++ {
		members := membersOf(assignments, i)
		if len(members) == 0 {
			continue
		}

		profile := a.clusterProfile(rows, centroids[i], members, features, len(rows))
		insights = append(insights, renderClusterInsight(profile, i))
		clusterLines++
	}

	if clusterLines == 0 {
		a.logger.Debugw("clustering resolved no cluster lines", "matches", len(rows), "k", k)
		return []string{models.TagInfo + " Could not identify clearly distinct play styles from the current data."}
	}
	return insights
}

// clusterProfile labels one cluster: archetype matching first, then the
// largest-deviation fallback.
func (a *PlaystyleAnalyzer) clusterProfile(rows [][]float64, centroid []float64, members []int, features []Feature, total int) models.ClusterInsight {
	insight := models.ClusterInsight{
		ShareOfMatches: float64(len(members)) / float64(total) * 100,
	}

	tendencies := make(map[string]models.TendencyLabel, len(features))
	averages := make(map[string]float64, len(features))
	for j, f := range features {
		tendencies[f.Name] = tendencyFor(centroid[j])
		sum := 0.0
		for _, m := range members {
			sum += rows[m][j]
		}
		averages[f.Name] = sum / float64(len(members))
	}

	bestMatches := 0
	for _, arch := range a.archetypes {
		matches := 0
		var metrics []models.ClusterMetric
		for _, exp := range arch.Profile {
			if tendencies[exp.Metric] == exp.Tendency {
				matches++
				metrics = append(metrics, models.ClusterMetric{
					Name:     exp.Metric,
					Tendency: exp.Tendency,
					Average:  averages[exp.Metric],
				})
			}
		}
		// Strict improvement required: ties keep the first catalog entry.
		if matches >= 2 && matches > bestMatches {
			bestMatches = matches
			insight.ArchetypeName = arch.Name
			insight.Metrics = metrics
			insight.Tip = arch.Tip
		}
	}
	if insight.ArchetypeName != "" {
		return insight
	}

	// No archetype matched: describe the two features deviating the most
	// from average, or report a balanced profile if none deviate.
	order := make([]int, len(features))
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(x, y int) bool {
		return math.Abs(centroid[order[x]]) > math.Abs(centroid[order[y]])
	})
	for _, j := range order {
		if len(insight.Metrics) == 2 {
			break
		}
		name := features[j].Name
		if tendencies[name] == models.TendencyAverage {
			continue
		}
		insight.Metrics = append(insight.Metrics, models.ClusterMetric{
			Name:     name,
			Tendency: tendencies[name],
			Average:  averages[name],
		})
	}
	return insight
}

func renderClusterInsight(in models.ClusterInsight, index int) string {
	name := in.ArchetypeName
	if name == "" {
		name = fmt.Sprintf("Style %d", index+1)
	}
	line := fmt.Sprintf("%s **%s** (%.0f%% of matches).", models.TagInfo, name, in.ShareOfMatches)

	if len(in.Metrics) > 0 {
		parts := make([]string, len(in.Metrics))
		for i, m := range in.Metrics {
			parts[i] = fmt.Sprintf("%s %s (%.1f)", m.Name, m.Tendency, m.Average)
		}
		if in.ArchetypeName != "" {
			line += " Characterized by: " + joinComma(parts) + "."
		} else {
			line += " Notable characteristics: " + joinComma(parts) + "."
		}
	} else if in.ArchetypeName == "" {
		line += " A play profile with balanced metrics."
	}

	if in.Tip != "" {
		line += " " + in.Tip
	}
	return line
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

func countDistinctRows(rows [][]float64) int {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		key := fmt.Sprintf("%v", row)
		seen[key] = struct{}{}
	}
	return len(seen)
}

func membersOf(assignments []int, cluster int) []int {
	var members []int
	for i, c := range assignments {
		if c == cluster {
			members = append(members, i)
		}
	}
	return members
}

// standardize scales each column to zero mean and unit variance
// (population std). Zero-variance columns keep scale 1 so constant
// features cannot blow up the distance metric.
func standardize(rows [][]float64) [][]float64 {
	n, d := len(rows), len(rows[0])
	col := make([]float64, n)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, d)
	}
	for j := 0; j < d; j++ {
		for i := 0; i < n; i++ {
			col[i] = rows[i][j]
		}
		mean := stat.Mean(col, nil)
		std := math.Sqrt(stat.PopVariance(col, nil))
		if std == 0 {
			std = 1
		}
		for i := 0; i < n; i++ {
			out[i][j] = (rows[i][j] - mean) / std
		}
	}
	return out
}

// kmeans runs seeded k-means++ initialization followed by Lloyd
// iterations. Deterministic for a fixed seed and input order.
func kmeans(rows [][]float64, k int, seed int64) (centroids [][]float64, assignments []int) {
	rng := rand.New(rand.NewSource(seed))
	n, d := len(rows), len(rows[0])

	// k-means++ seeding.
	centroids = make([][]float64, 0, k)
	first := rng.Intn(n)
	centroids = append(centroids, append([]float64(nil), rows[first]...))
	dists := make([]float64, n)
	for len(centroids) < k {
		total := 0.0
		for i, row := range rows {
			best := math.Inf(1)
			for _, c := range centroids {
				if dd := sqDist(row, c); dd < best {
					best = dd
				}
			}
			dists[i] = best
			total += best
		}
		next := 0
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, dd := range dists {
				acc += dd
				if acc >= target {
					next = i
					break
				}
			}
		} else {
			next = rng.Intn(n)
		}
		centroids = append(centroids, append([]float64(nil), rows[next]...))
	}

	assignments = make([]int, n)
	for iter := 0; iter < maxKMeansIterations; iter++ {
		changed := false
		for i, row := range rows {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if dd := sqDist(row, centroid); dd < bestDist {
					best, bestDist = c, dd
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, d)
		}
		for i, row := range rows {
			c := assignments[i]
			counts[c]++
			for j, v := range row {
				sums[c][j] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Empty cluster keeps its previous centroid.
				continue
			}
			for j := 0; j < d; j++ {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}
	return centroids, assignments
}

func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
