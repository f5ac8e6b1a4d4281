package models

// MatchStat is the normalized per-player, per-match record every analysis
// stage consumes. All rate fields are 0 when the match duration is 0 or
// negative; KDARatio is always defined (deaths floored at 1 for division).
type MatchStat struct {
	Champion          string     `json:"champion"`
	Win               bool       `json:"win"`
	Kills             int        `json:"kills"`
	Deaths            int        `json:"deaths"`
	Assists           int        `json:"assists"`
	KDARatio          float64    `json:"kda_ratio"`
	CS                int        `json:"cs"`
	CSPerMin          float64    `json:"cs_per_min"`
	Gold              int        `json:"gold"`
	GoldPerMin        float64    `json:"gold_per_min"`
	DamageToChamps    int        `json:"damage_to_champs"`
	DamagePerMin      float64    `json:"damage_per_min"`
	VisionScore       int        `json:"vision_score"`
	VisionScorePerMin float64    `json:"vision_score_per_min"`
	KPPercentage      float64    `json:"kp_percentage"` // 0..100
	Duration          int        `json:"duration"`      // minutes, rounded
	Role              string     `json:"role"`          // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY or N/A
	TeamID            int        `json:"team_id"`
	ItemIDs           [7]int     `json:"item_ids"`
	Spells            [2]string  `json:"spells"`
	Runes             RuneStyles `json:"runes"`
	GameModeName      string     `json:"game_mode_name"`
}

type RuneStyles struct {
	PrimaryIconFile   string `json:"primary_icon_file"`
	SecondaryIconFile string `json:"secondary_icon_file"`
}

// DisplayParticipant is the minimal projection of one participant used by
// match scoreboards and by the composition predictor.
type DisplayParticipant struct {
	ChampionName string `json:"championName"`
	SummonerName string `json:"summonerName"`
	TeamID       int    `json:"teamId"`
	Win          bool   `json:"win"`
	Spell1Key    string `json:"spell1_key"`
	Spell2Key    string `json:"spell2_key"`
}

// ParticipantRow is the flat, scalar-only shape of one participant record
/// as persisted. Items are comma-joined ids so the row maps 1:1 onto a
// table column set.
type ParticipantRow struct {
	ParticipantPUUID           string  `json:"participant_puuid" ch:"participant_puuid"`
	SummonerName               string  `json:"summoner_name" ch:"summoner_name"`
	ChampionName               string  `json:"champion_name" ch:"champion_name"`
	TeamID                     int32   `json:"team_id" ch:"team_id"`
	Win                        bool    `json:"win" ch:"win"`
	Kills                      int32   `json:"kills" ch:"kills"`
	Deaths                     int32   `json:"deaths" ch:"deaths"`
	Assists                    int32   `json:"assists" ch:"assists"`
	KDARatio                   float64 `json:"kda_ratio" ch:"kda_ratio"`
	CS                         int32   `json:"cs" ch:"cs"`
	CSPerMin                   float64 `json:"cs_per_min" ch:"cs_per_min"`
	GoldEarned                 int32   `json:"gold_earned" ch:"gold_earned"`
	GoldPerMin                 float64 `json:"gold_per_min" ch:"gold_per_min"`
	TotalDamageToChampions     int32   `json:"total_damage_to_champions" ch:"total_damage_to_champions"`
	DamagePerMin               float64 `json:"damage_per_min" ch:"damage_per_min"`
	VisionScore                int32   `json:"vision_score" ch:"vision_score"`
	VisionScorePerMin          float64 `json:"vision_score_per_min" ch:"vision_score_per_min"`
	KPPercentage               float64 `json:"kp_percentage" ch:"kp_percentage"`
	Role                       string  `json:"role" ch:"role"`
	ItemIDsStr                 string  `json:"item_ids_str" ch:"item_ids_str"`
	Spell1Key                  string  `json:"spell1_key" ch:"spell1_key"`
	Spell2Key                  string  `json:"spell2_key" ch:"spell2_key"`
	PrimaryRuneStyleIconFile   string  `json:"primary_rune_style_icon_file" ch:"primary_rune_style_icon_file"`
	SecondaryRuneStyleIconFile string  `json:"secondary_rune_style_icon_file" ch:"secondary_rune_style_icon_file"`
}

// MatchRecord is the match-level persistence row.
type MatchRecord struct {
	MatchID      string `json:"match_id"`
	GameCreation int64  `json:"game_creation"`
	GameDuration int    `json:"game_duration"` // seconds
	GameVersion  string `json:"game_version"`
	QueueID      int    `json:"queue_id"`
	GameModeName string `json:"game_mode_name"`
}
