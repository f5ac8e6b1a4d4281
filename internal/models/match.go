package models

import "encoding/json"

// RawMatch is one match as returned by the Riot match-v5 API. Only the
// fields the analytics core reads are declared; everything else in the
// payload is ignored.
type RawMatch struct {
	Metadata *MatchMetadata `json:"metadata"`
	Info     *MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

type MatchInfo struct {
	GameCreation int64           `json:"gameCreation"`
	GameDuration int             `json:"gameDuration"` // seconds
	GameVersion  string          `json:"gameVersion"`
	GameMode     string          `json:"gameMode"`
	QueueID      int             `json:"queueId"`
	Participants ParticipantList `json:"participants"`
	Teams        []Team          `json:"teams"`
}

// WellFormed reports whether the match carries the minimum structure the
// extractors need: an info block with a participants list. Matches failing
// this check are skipped, never treated as errors.
func (m *RawMatch) WellFormed() bool {
	return m != nil && m.Info != nil && m.Info.Participants != nil
}

// ParticipantList tolerates garbage entries: anything that is not a JSON
// object is dropped instead of failing the whole match.
type ParticipantList []Participant

func (l *ParticipantList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ParticipantList, 0, len(raw))
	for _, entry := range raw {
		if len(entry) == 0 || entry[0] != '{' {
			continue
		}
		var p Participant
		if err := json.Unmarshal(entry, &p); err != nil {
			continue
		}
		out = append(out, p)
	}
	*l = out
	return nil
}

// Participant is one player's slice of a match. Field names follow the
// match-v5 payload.
type Participant struct {
	PUUID          string `json:"puuid"`
	RiotIDGameName string `json:"riotIdGameName"`
	SummonerName   string `json:"summonerName"`
	ChampionName   string `json:"championName"`
	TeamPosition   string `json:"teamPosition"` // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY
	TeamID         int    `json:"teamId"`
	Win            bool   `json:"win"`

	Kills                       int `json:"kills"`
	Deaths                      int `json:"deaths"`
	Assists                     int `json:"assists"`
	TotalMinionsKilled          int `json:"totalMinionsKilled"`
	NeutralMinionsKilled        int `json:"neutralMinionsKilled"`
	GoldEarned                  int `json:"goldEarned"`
	TotalDamageDealtToChampions int `json:"totalDamageDealtToChampions"`
	VisionScore                 int `json:"visionScore"`

	Summoner1ID int `json:"summoner1Id"`
	Summoner2ID int `json:"summoner2Id"`

	Item0 int `json:"item0"`
	Item1 int `json:"item1"`
	Item2 int `json:"item2"`
	Item3 int `json:"item3"`
	Item4 int `json:"item4"`
	Item5 int `json:"item5"`
	Item6 int `json:"item6"` // trinket slot

	Perks *Perks `json:"perks"`
}

// Items returns the seven item slots in order.
func (p *Participant) Items() [7]int {
	return [7]int{p.Item0, p.Item1, p.Item2, p.Item3, p.Item4, p.Item5, p.Item6}
}

type Perks struct {
	Styles []PerkStyle `json:"styles"`
}

type PerkStyle struct {
	Style int `json:"style"`
}

type Team struct {
	TeamID     int             `json:"teamId"`
	Win        bool            `json:"win"`
	Objectives *TeamObjectives `json:"objectives"`
}

type TeamObjectives struct {
	Champion ObjectiveCount `json:"champion"`
}

type ObjectiveCount struct {
	Kills int `json:"kills"`
}

// TeamKills returns the total champion kills recorded for teamID, or 0 when
// the teams block is missing or does not list that team.
func (m *MatchInfo) TeamKills(teamID int) int {
	for _, t := range m.Teams {
		if t.TeamID == teamID {
			if t.Objectives == nil {
				return 0
			}
			return t.Objectives.Champion.Kills
		}
	}
	return 0
}
