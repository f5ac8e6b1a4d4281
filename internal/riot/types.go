package riot

// Account is the account-v1 response for a Riot ID lookup.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Summoner is the summoner-v4 response for a PUUID lookup.
type Summoner struct {
	ID            string `json:"id"`
	PUUID         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int    `json:"summonerLevel"`
}

// LeagueEntry is one league-v4 ranked queue entry.
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// QueueRankedSolo is the queueType value of the solo/duo ladder entry.
const QueueRankedSolo = "RANKED_SOLO_5x5"

// SoloEntry picks the solo/duo entry out of a league response, if present.
func SoloEntry(entries []LeagueEntry) (LeagueEntry, bool) {
	for _, e := range entries {
		if e.QueueType == QueueRankedSolo {
			return e, true
		}
	}
	return LeagueEntry{}, false
}
