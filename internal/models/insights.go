package models

import "strings"

// Recommendation tag tokens. Every insight the core emits is a plain string
// prefixed with one of these; any consumer (web view, CLI, log) parses or
// displays them uniformly.
const (
	TagCritical   = "[CRITICAL]"
	TagSuggestion = "[SUGGESTION]"
	TagInfo       = "[INFO]"
	TagPositive   = "[POSITIVE]"
)

// Tag returns the leading tag token of an insight line, or "" for untagged
// prompts (e.g. the "play more matches" message).
func Tag(line string) string {
	if !strings.HasPrefix(line, "[") {
		return ""
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return ""
	}
	return line[:end+1]
}

// TendencyLabel is a discretized bucket for a standardized per-cluster
// metric average.
type TendencyLabel string

const (
	TendencyVeryHigh TendencyLabel = "very high"
	TendencyHigh     TendencyLabel = "high"
	TendencyAverage  TendencyLabel = "average"
	TendencyLow      TendencyLabel = "low"
	TendencyVeryLow  TendencyLabel = "very low"
)

// ClusterMetric is one characterizing metric of a cluster: the tendency
// bucket of its standardized centroid coordinate and the original
// (non-standardized) per-cluster average.
type ClusterMetric struct {
	Name     string        `json:"metric"`
	Tendency TendencyLabel `json:"tendency"`
	Average  float64       `json:"original_average"`
}

// ClusterInsight describes one play-style cluster before rendering.
// ArchetypeName is empty when no catalog archetype matched.
type ClusterInsight struct {
	ArchetypeName  string          `json:"archetype_name,omitempty"`
	ShareOfMatches float64         `json:"share_of_matches"` // percentage
	Metrics        []ClusterMetric `json:"descriptive_metrics"`
	Tip            string          `json:"tip,omitempty"`
}

// SoloRankInfo mirrors the RANKED_SOLO_5x5 league entry for the report
// header. Zero value renders as UNRANKED.
type SoloRankInfo struct {
	Tier   string `json:"tier"`
	Rank   string `json:"rank"`
	LP     int    `json:"lp"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

/// MatchView is one processed match in a summoner report: the target
// player's normalized stats plus the scoreboard projection and per-match
// composition insight.
type MatchView struct {
	MatchStat
	MatchID            string               `json:"match_id"`
	TeamMembers        []DisplayParticipant `json:"team_members_display"`
	CompositionInsight string               `json:"composition_prediction_insight,omitempty"`
	BlueTeamWon        bool                 `json:"blue_team_won"`
	RedTeamWon         bool                 `json:"red_team_won"`
}

// SummonerReport is the full analysis response for one player.
type SummonerReport struct {
	SummonerName      string       `json:"summoner_name"`
	ProfileIconID     int          `json:"profile_icon_id,omitempty"`
	SummonerLevel     int          `json:"summoner_level,omitempty"`
	SoloRank          SoloRankInfo `json:"solo_rank_info"`
	Matches           []MatchView  `json:"stats"`
	Recommendations   []string     `json:"general_recommendations"`
	MLInsights        []string     `json:"ml_decision_tree_insights"`
	PlaystyleInsights []string     `json:"playstyle_insights"`
	APIWarning        string       `json:"api_warning,omitempty"`
}
