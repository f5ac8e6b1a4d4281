package logic

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/riftcoach/stats-api/internal/models"
)

// minSamplesForTree is the floor of clean rows required before a per
// champion tree is worth fitting at all.
const minSamplesForTree = 10

// importanceCutoff: only a clearly dominant feature produces an insight.
const importanceCutoff = 0.20

// ChampionInsights trains a shallow decision tree on the player's most
// played champion and turns its dominant feature into a coaching line.
type ChampionInsights struct {
	logger *zap.SugaredLogger
}

func NewChampionInsights(logger *zap.SugaredLogger) *ChampionInsights {
	return &ChampionInsights{logger: logger}
}

// Recommendations returns at most one insight: single champion, single
// feature. That is a deliberate scope limit, not a defect — one focused
// takeaway beats six noisy ones.
func (c *ChampionInsights) Recommendations(history []models.MatchStat, minGames int) []string {
	if len(history) < minGames {
		return nil
	}

	perChamp := make(map[string][]models.MatchStat)
	var order []string
	for i := range history {
		champ := history[i].Champion
		if champ == "" || champ == "N/A" {
			continue
		}
		if _, ok := perChamp[champ]; !ok {
			order = append(order, champ)
		}
		perChamp[champ] = append(perChamp[champ], history[i])
	}

	// Most played first; ties keep first-appearance order.
	sort.SliceStable(order, func(i, j int) bool {
		return len(perChamp[order[i]]) > len(perChamp[order[j]])
	})

	for _, champ := range order {
		stats := perChamp[champ]
		if len(stats) < minGames {
			continue
		}
		// Only the single most-played qualifying champion is analyzed.
		return c.insightsForChampion(stats, champ)
	}
	return nil
}

func (c *ChampionInsights) insightsForChampion(stats []models.MatchStat, champion string) []string {
	features := AnalysisFeatures()
	rows, keep := featureMatrix(stats, features)
	if len(rows) < minSamplesForTree {
		return nil
	}

	labels := make([]int, 0, len(rows))
	wins, losses := 0, 0
	for i := range stats {
		if !keep[i] {
			continue
		}
		if stats[i].Win {
			labels = append(labels, 1)
			wins++
		} else {
			labels = append(labels, 0)
			losses++
		}
	}
	if wins == 0 || losses == 0 {
		// Single-class target: nothing for a classifier to separate.
		c.logger.Debugw("skipping champion tree, single-class outcome",
			"champion", champion, "wins", wins, "losses", losses)
		return nil
	}

	minLeaf := len(rows) / 10
	if minLeaf < 2 {
		minLeaf = 2
	}
	tree := fitDecisionTree(rows, labels, treeParams{MaxDepth: 3, MinLeaf: minLeaf})

	best, score := tree.topImportance()
	if score <= importanceCutoff {
		return nil
	}
	featureName := features[best].Name

	winSum, lossSum := 0.0, 0.0
	for i, row := range rows {
		if labels[i] == 1 {
			winSum += row[best]
		} else {
			lossSum += row[best]
		}
	}
	winAvg := winSum / float64(wins)
	lossAvg := lossSum / float64(losses)

	insight := fmt.Sprintf("%s AI analysis for %s: your '%s' looks like a highly influential factor. ",
		models.TagInfo, champion, featureName)
	if winAvg > lossAvg*1.10 {
		insight += fmt.Sprintf(
			"In your wins it averages %.2f, while in losses it averages %.2f. "+
				"Performing well on this metric appears tied to your victories.",
			winAvg, lossAvg)
	} else {
		insight += fmt.Sprintf(
			"This metric (%s) stands out most to the model, averaging %.2f in wins and %.2f in losses. "+
				"Reflect on how it shapes your games.",
			featureName, winAvg, lossAvg)
	}
	return []string{insight}
}

// treeParams bound the CART fit; MinLeaf scales with sample count so tiny
// histories cannot grow confident-looking deep splits.
type treeParams struct {
	MaxDepth int
	MinLeaf  int
}

type treeNode struct {
	feature   int // split feature index, -1 for leaf
	threshold float64
	left      *treeNode
	right     *treeNode
	class     int
}

type decisionTree struct {
	root        *treeNode
	importances []float64 // normalized, indexed by feature
}

// fitDecisionTree grows a depth-limited CART classifier with Gini impurity.
// The fit is fully deterministic: features are scanned in order and ties
// keep the lowest index.
func fitDecisionTree(rows [][]float64, labels []int, params treeParams) *decisionTree {
	t := &decisionTree{importances: make([]float64, len(rows[0]))}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	t.root = t.grow(rows, labels, idx, 0, params, len(rows))

	// Normalize accumulated impurity decreases to sum 1.
	total := 0.0
	for _, v := range t.importances {
		total += v
	}
	if total > 0 {
		for i := range t.importances {
			t.importances[i] /= total
		}
	}
	return t
}

func gini(labels []int, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	ones := 0
	for _, i := range idx {
		ones += labels[i]
	}
	p := float64(ones) / float64(len(idx))
	return 1 - p*p - (1-p)*(1-p)
}

func majority(labels []int, idx []int) int {
	ones := 0
	for _, i := range idx {
		ones += labels[i]
	}
	if ones*2 >= len(idx) {
		return 1
	}
	return 0
}

func (t *decisionTree) grow(rows [][]float64, labels []int, idx []int, depth int, params treeParams, total int) *treeNode {
	impurity := gini(labels, idx)
	if depth >= params.MaxDepth || impurity == 0 || len(idx) < 2*params.MinLeaf {
		return &treeNode{feature: -1, class: majority(labels, idx)}
	}

	bestFeature := -1
	bestThreshold := 0.0
	bestDecrease := 0.0
	var bestLeft, bestRight []int

	for f := 0; f < len(rows[0]); f++ {
		// Sort sample indices by this feature's value.
		sorted := make([]int, len(idx))
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool {
			return rows[sorted[a]][f] < rows[sorted[b]][f]
		})

		for cut := params.MinLeaf; cut <= len(sorted)-params.MinLeaf; cut++ {
			lo, hi := rows[sorted[cut-1]][f], rows[sorted[cut]][f]
			if lo == hi {
				continue
			}
			threshold := (lo + hi) / 2
			left, right := sorted[:cut], sorted[cut:]

			weighted := float64(len(left))/float64(len(idx))*gini(labels, left) +
				float64(len(right))/float64(len(idx))*gini(labels, right)
			decrease := impurity - weighted
			if decrease > bestDecrease {
				bestDecrease = decrease
				bestFeature = f
				bestThreshold = threshold
				bestLeft = append([]int(nil), left...)
				bestRight = append([]int(nil), right...)
			}
		}
	}

	if bestFeature < 0 {
		return &treeNode{feature: -1, class: majority(labels, idx)}
	}

	// Node importance weighted by the share of samples reaching it.
	t.importances[bestFeature] += float64(len(idx)) / float64(total) * bestDecrease

	return &treeNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      t.grow(rows, labels, bestLeft, depth+1, params, total),
		right:     t.grow(rows, labels, bestRight, depth+1, params, total),
	}
}

// topImportance returns the index and normalized importance of the
// dominant feature. Ties keep the lowest index.
func (t *decisionTree) topImportance() (int, float64) {
	best, score := 0, t.importances[0]
	for i, v := range t.importances {
		if v > score {
			best, score = i, v
		}
	}
	return best, score
}

// Predict returns the class for one feature row. Kept for parity with the
// training half; handy in tests and offline evaluation.
func (t *decisionTree) Predict(row []float64) int {
	node := t.root
	for node.feature >= 0 {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.class
}
