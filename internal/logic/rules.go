package logic

import (
	"fmt"
	"strings"

	"github.com/riftcoach/stats-api/internal/models"
)

// RuleThresholds are the tuning constants behind the rule engine. They are
// product tuning values, not derived laws, so they live in configuration
// rather than inline literals.
type RuleThresholds struct {
	ShortLossMinutes     int     // a loss shorter than this counts toward the tilt check
	WinrateCritical      float64 // below → CRITICAL
	WinrateSuggestion    float64 // below → SUGGESTION
	ChampWinrateCritical float64
	ChampLowKDA          float64
	FarmTargetRatio      float64 // flag when avg CS/min < target * ratio
	LowKPPercent         float64
	LowVisionPerMin      float64
	SupportVisionPerMin  float64
	MaxRecommendations   int
}

// DefaultRuleThresholds returns the tuned defaults.
func DefaultRuleThresholds() RuleThresholds {
	return RuleThresholds{
		ShortLossMinutes:     22,
		WinrateCritical:      0.40,
		WinrateSuggestion:    0.50,
		ChampWinrateCritical: 0.35,
		ChampLowKDA:          2.0,
		FarmTargetRatio:      0.85,
		LowKPPercent:         45.0,
		LowVisionPerMin:      0.75,
		SupportVisionPerMin:  1.3,
		MaxRecommendations:   4,
	}
}

// CS/min targets for the lanes where farming is the primary income.
var farmTargets = []struct {
	Role  string
	CSMin float64
}{
	{"TOP", 6.0},
	{"MIDDLE", 6.5},
	{"BOTTOM", 7.0},
}

// Metrics compared between wins and losses per champion, with the relative
// uplift each must exceed to be worth calling out.
var winFactorMetrics = []struct {
	Label     string
	Value     func(*models.MatchStat) float64
	Threshold float64
}{
	{"KDA Ratio", func(s *models.MatchStat) float64 { return s.KDARatio }, 0.25},
	{"CS/min", func(s *models.MatchStat) float64 { return s.CSPerMin }, 0.12},
	{"Damage/min", func(s *models.MatchStat) float64 { return s.DamagePerMin }, 0.18},
	{"Gold/min", func(s *models.MatchStat) float64 { return s.GoldPerMin }, 0.12},
	{"KP%", func(s *models.MatchStat) float64 { return s.KPPercentage }, 0.18},
}

// RuleEngine derives coaching recommendations from a player's recent
// normalized match history. Every method is a pure function of its input;
// history is expected ordered most-recent-first.
type RuleEngine struct {
	th RuleThresholds
}

func NewRuleEngine(th RuleThresholds) *RuleEngine {
	return &RuleEngine{th: th}
}

// Recommendations runs every analyzer in fixed order, deduplicates by
// exact text keeping the first occurrence, and caps the output.
func (e *RuleEngine) Recommendations(history []models.MatchStat) []string {
	if len(history) < 3 {
		return []string{"Play more matches so we can analyze your performance and offer personalized recommendations."}
	}

	var all []string
	all = append(all, e.analyzeWinrateAndStreaks(history)...)
	all = append(all, e.analyzeChampionPerformance(history)...)
	all = append(all, e.analyzeFarming(history)...)
	all = append(all, e.analyzeKillParticipation(history)...)
	all = append(all, e.analyzeVision(history)...)
	all = append(all, e.analyzeChampionWinFactors(history)...)

	seen := make(map[string]struct{}, len(all))
	unique := make([]string, 0, len(all))
	for _, rec := range all {
		if _, dup := seen[rec]; dup {
			continue
		}
		seen[rec] = struct{}{}
		unique = append(unique, rec)
	}

	if len(unique) == 0 {
		if len(history) >= 5 {
			return []string{models.TagPositive + " Good work! We have not detected significant negative patterns in your recent games under our current criteria."}
		}
		return []string{"We are still analyzing your play. Try a few more matches for a more detailed report."}
	}

	if len(unique) > e.th.MaxRecommendations {
		capped := unique[:e.th.MaxRecommendations]
		return append(capped, models.TagInfo+" We found more areas to improve. Focus on these for now!")
	}
	return unique
}

// analyzeWinrateAndStreaks flags short-loss streaks in the most recent 3
// matches and overall winrate once 10+ games are available.
func (e *RuleEngine) analyzeWinrateAndStreaks(history []models.MatchStat) []string {
	var recs []string
	if len(history) < 3 {
		return recs
	}

	wins := 0
	for _, m := range history {
		if m.Win {
			wins++
		}
	}
	total := len(history)
	winrate := float64(wins) / float64(total)

	shortLosses := 0
	recent := history
	if len(recent) > 3 {
		recent = recent[:3]
	}
	for _, m := range recent {
		if !m.Win && m.Duration < e.th.ShortLossMinutes {
			shortLosses++
		}
	}
	if shortLosses >= 2 {
		recs = append(recs, models.TagSuggestion+" You have had several losses in short games recently. "+
			"This can be frustrating. Consider taking a short break to keep a positive mindset.")
	}

	if total >= 10 && winrate < e.th.WinrateCritical {
		recs = append(recs, fmt.Sprintf(
			"%s Your winrate over the last %d games is %.0f%%. "+
				"A consistently low winrate can point to key areas to improve. Try to identify patterns in your losses.",
			models.TagCritical, total, winrate*100))
	} else if total >= 10 && winrate < e.th.WinrateSuggestion {
		recs = append(recs, fmt.Sprintf(
			"%s Your winrate over the last %d games is %.0f%%. "+
				"You are close to breaking even. Review your lost games to see which small changes could tip the balance.",
			models.TagSuggestion, total, winrate*100))
	}
	return recs
}

type champAggregate struct {
	kdaSum float64
	games  int
	wins   int
	roles  []string
}

func (a *champAggregate) addRole(role string) {
	if role == "" || role == "N/A" {
		return
	}
	for _, r := range a.roles {
		if r == role {
			return
		}
	}
	a.roles = append(a.roles, role)
}

// analyzeChampionPerformance emits one message per champion with 5+ games
// that is either losing hard or posting a consistently low KDA.
func (e *RuleEngine) analyzeChampionPerformance(history []models.MatchStat) []string {
	var recs []string

	perChamp := make(map[string]*champAggregate)
	var order []string
	for i := range history {
		m := &history[i]
		if m.Champion == "" || m.Champion == "N/A" {
			continue
		}
		agg, ok := perChamp[m.Champion]
		if !ok {
			agg = &champAggregate{}
			perChamp[m.Champion] = agg
			order = append(order, m.Champion)
		}
		agg.kdaSum += m.KDARatio
		agg.games++
		agg.addRole(m.Role)
		if m.Win {
			agg.wins++
		}
	}

	for _, champ := range order {
		agg := perChamp[champ]
		if agg.games < 5 {
			continue
		}
		avgKDA := agg.kdaSum / float64(agg.games)
		winrate := float64(agg.wins) / float64(agg.games)
		rolesStr := "several roles"
		if len(agg.roles) > 0 {
			rolesStr = strings.Join(agg.roles, "/")
		}

		if winrate < e.th.ChampWinrateCritical {
			recs = append(recs, fmt.Sprintf(
				"%s On %s (played as %s), your winrate is %.0f%% over %d games. "+
					"This result is very low. You may need more practice or a different approach on this champion.",
				models.TagCritical, champ, rolesStr, winrate*100, agg.games))
		} else if avgKDA < e.th.ChampLowKDA {
			recs = append(recs, fmt.Sprintf(
				"%s Your average KDA of %.1f on %s (played as %s) is consistently low. "+
					"Review your positioning and decision making to die less and raise your impact.",
				models.TagSuggestion, avgKDA, champ, rolesStr))
		}
	}
	return recs
}

// analyzeFarming compares average CS/min against per-lane targets.
func (e *RuleEngine) analyzeFarming(history []models.MatchStat) []string {
	var recs []string

	type roleAgg struct {
		csPerMinSum float64
		games       int
	}
	perRole := make(map[string]*roleAgg)
	for i := range history {
		m := &history[i]
		for _, t := range farmTargets {
			if m.Role == t.Role {
				agg, ok := perRole[m.Role]
				if !ok {
					agg = &roleAgg{}
					perRole[m.Role] = agg
				}
				agg.csPerMinSum += m.CSPerMin
				agg.games++
			}
		}
	}

	for _, t := range farmTargets {
		agg, ok := perRole[t.Role]
		if !ok || agg.games < 5 {
			continue
		}
		avg := agg.csPerMinSum / float64(agg.games)
		if avg < t.CSMin*e.th.FarmTargetRatio {
			recs = append(recs, fmt.Sprintf(
				"%s Your average CS/min as %s is %.1f. "+
					"A good target to work toward is around %.1f CS/min. "+
					"Practicing last hitting and wave management is fundamental.",
				models.TagSuggestion, t.Role, avg, t.CSMin))
		}
	}
	return recs
}

// analyzeKillParticipation checks average KP% in the roles expected to
// rotate and join fights.
func (e *RuleEngine) analyzeKillParticipation(history []models.MatchStat) []string {
	var recs []string
	if len(history) < 5 {
		return recs
	}

	var kps []float64
	for i := range history {
		switch history[i].Role {
		case "JUNGLE", "MIDDLE", "BOTTOM", "UTILITY":
			kps = append(kps, history[i].KPPercentage)
		}
	}
	if len(kps) < 5 {
		return recs
	}

	sum := 0.0
	for _, kp := range kps {
		sum += kp
	}
	avg := sum / float64(len(kps))
	if avg < e.th.LowKPPercent {
		recs = append(recs, fmt.Sprintf(
			"%s Your average kill participation (KP%%) in playmaking roles is %.0f%%. "+
				"Try to stay alert for chances to rotate and join team fights.",
			models.TagSuggestion, avg))
	}
	return recs
}

// analyzeVision checks vision score per minute overall and, with a much
// stricter bar, for games played as Support.
func (e *RuleEngine) analyzeVision(history []models.MatchStat) []string {
	var recs []string
	if len(history) < 3 {
		return recs
	}

	var sum float64
	count := 0
	var supportVS []float64
	for i := range history {
		m := &history[i]
		if m.Duration <= 15 {
			continue
		}
		sum += m.VisionScorePerMin
		count++
		if m.Role == "UTILITY" {
			supportVS = append(supportVS, m.VisionScorePerMin)
		}
	}

	if count >= 3 {
		avg := sum / float64(count)
		if avg < e.th.LowVisionPerMin {
			recs = append(recs, fmt.Sprintf(
				"%s Your average vision score per minute is %.2f. "+
					"Improving your vision control can have a big impact on game outcomes.",
				models.TagSuggestion, avg))
		}
	}

	if len(supportVS) >= 3 {
		sum := 0.0
		for _, v := range supportVS {
			sum += v
		}
		avg := sum / float64(len(supportVS))
		if avg < e.th.SupportVisionPerMin {
			recs = append(recs, fmt.Sprintf(
				"%s As Support, your vision score per minute is %.2f. "+
					"This is a critical part of your role. Prioritize Control Wards and use your trinket proactively.",
				models.TagCritical, avg))
		}
	}
	return recs
}

// analyzeChampionWinFactors contrasts per-metric averages between wins and
// losses for champions with enough games of each outcome.
func (e *RuleEngine) analyzeChampionWinFactors(history []models.MatchStat) []string {
	var recs []string
	if len(history) < 10 {
		return recs
	}

	const (
		minGamesPerOutcome = 3
		minTotalGames      = 7
	)

	type outcomeSplit struct {
		wins   []*models.MatchStat
		losses []*models.MatchStat
	}
	perChamp := make(map[string]*outcomeSplit)
	var order []string
	for i := range history {
		m := &history[i]
		if m.Champion == "" || m.Champion == "N/A" {
			continue
		}
		split, ok := perChamp[m.Champion]
		if !ok {
			split = &outcomeSplit{}
			perChamp[m.Champion] = split
			order = append(order, m.Champion)
		}
		if m.Win {
			split.wins = append(split.wins, m)
		} else {
			split.losses = append(split.losses, m)
		}
	}

	for _, champ := range order {
		split := perChamp[champ]
		if len(split.wins)+len(split.losses) < minTotalGames {
			continue
		}
		if len(split.wins) < minGamesPerOutcome || len(split.losses) < minGamesPerOutcome {
			continue
		}

		for _, metric := range winFactorMetrics {
			winAvg := averageOf(split.wins, metric.Value)
			lossAvg := averageOf(split.losses, metric.Value)

			if lossAvg > 0.01 {
				uplift := (winAvg - lossAvg) / lossAvg
				if uplift > metric.Threshold {
					recs = append(recs, fmt.Sprintf(
						"%s On %s, your average %s in wins (%.1f) is notably higher than in losses (%.1f). "+
							"Focusing on this metric could pay off on this champion.",
						models.TagInfo, champ, metric.Label, winAvg, lossAvg))
				}
			} else if winAvg > lossAvg+0.1 {
				// Near-zero in losses: relative uplift is meaningless, call it out directly.
				recs = append(recs, fmt.Sprintf(
					"%s On %s, your average %s in wins is %.1f, while it is very low in losses. "+
						"Securing a good %s looks crucial to winning on %s.",
					models.TagInfo, champ, metric.Label, winAvg, metric.Label, champ))
			}
		}
	}
	return recs
}

func averageOf(stats []*models.MatchStat, value func(*models.MatchStat) float64) float64 {
	if len(stats) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range stats {
		sum += value(s)
	}
	return sum / float64(len(stats))
}
