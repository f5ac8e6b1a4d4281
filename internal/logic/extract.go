package logic

import (
	"math"
	"strconv"
	"strings"

	"github.com/riftcoach/stats-api/internal/models"
)

// round2 and friends match the precision the persisted rows and the rule
// thresholds were tuned against.
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round0(v float64) float64 { return math.Round(v) }

// kdaRatio floors deaths at 1 so the ratio is always defined.
func kdaRatio(kills, deaths, assists int) float64 {
	d := deaths
	if d < 1 {
		d = 1
	}
	return float64(kills+assists) / float64(d)
}

// killParticipation returns KP% in [0,100]. When the team recorded zero
// total kills but the player has kills+assists > 0 this defaults to 100
// ("fully participated in the only kills, which were 0"). Documented
// quirk, kept deliberately — see the edge-case test before changing it.
func killParticipation(kills, assists, teamKills int) float64 {
	switch {
	case teamKills > 0:
		return float64(kills+assists) / float64(teamKills) * 100
	case kills+assists > 0:
		return 100.0
	default:
		return 0.0
	}
}

func runeStyles(perks *models.Perks) models.RuneStyles {
	rs := models.RuneStyles{
		PrimaryIconFile:   unknownRuneStyleIcon,
		SecondaryIconFile: unknownRuneStyleIcon,
	}
	if perks == nil {
		return rs
	}
	if len(perks.Styles) > 0 {
		rs.PrimaryIconFile = runeStyleIcon(perks.Styles[0].Style)
	}
	if len(perks.Styles) > 1 {
		rs.SecondaryIconFile = runeStyleIcon(perks.Styles[1].Style)
	}
	return rs
}

func role(teamPosition string) string {
	if teamPosition == "" {
		return "N/A"
	}
	return teamPosition
}

// ExtractPlayerStats converts one raw match into the target player's
// normalized record. The second return is false when the match is not
// well-formed or the target puuid is not among the participants —
// malformed input is skipped, never an error.
func ExtractPlayerStats(m *models.RawMatch, targetPUUID string) (*models.MatchStat, bool) {
	if !m.WellFormed() {
		return nil, false
	}

	var player *models.Participant
	for i := range m.Info.Participants {
		if m.Info.Participants[i].PUUID == targetPUUID {
			player = &m.Info.Participants[i]
			break
		}
	}
	if player == nil {
		return nil, false
	}

	minutes := 0.0
	if m.Info.GameDuration > 0 {
		minutes = float64(m.Info.GameDuration) / 60.0
	}

	stat := &models.MatchStat{
		Champion:       championOrNA(player.ChampionName),
		Win:            player.Win,
		Kills:          player.Kills,
		Deaths:         player.Deaths,
		Assists:        player.Assists,
		KDARatio:       round2(kdaRatio(player.Kills, player.Deaths, player.Assists)),
		CS:             player.TotalMinionsKilled + player.NeutralMinionsKilled,
		Gold:           player.GoldEarned,
		DamageToChamps: player.TotalDamageDealtToChampions,
		VisionScore:    player.VisionScore,
		Duration:       int(math.Round(minutes)),
		Role:           role(player.TeamPosition),
		TeamID:         player.TeamID,
		ItemIDs:        player.Items(),
		Spells:         [2]string{SpellKey(player.Summoner1ID), SpellKey(player.Summoner2ID)},
		Runes:          runeStyles(player.Perks),
		GameModeName:   GameModeName(m.Info.QueueID, m.Info.GameMode),
	}

	// Rate fields stay 0 for zero/negative durations — never divide by zero.
	if minutes > 0 {
		stat.CSPerMin = round1(float64(stat.CS) / minutes)
		stat.GoldPerMin = round0(float64(stat.Gold) / minutes)
		stat.DamagePerMin = round0(float64(stat.DamageToChamps) / minutes)
		stat.VisionScorePerMin = round2(float64(stat.VisionScore) / minutes)
	}

	teamKills := m.Info.TeamKills(player.TeamID)
	stat.KPPercentage = round1(killParticipation(player.Kills, player.Assists, teamKills))

	return stat, true
}

func championOrNA(name string) string {
	if name == "" {
		return "N/A"
	}
	return name
}

// displayName picks the first non-empty identity for a participant:
// current Riot ID, then the legacy summoner name, then a fixed fallback.
func displayName(p *models.Participant) string {
	if p.RiotIDGameName != "" {
		return p.RiotIDGameName
	}
	if p.SummonerName != "" {
		return p.SummonerName
	}
	return "Unknown Player"
}

// ProcessParticipantsForDisplay projects every participant into the
// minimal scoreboard shape.
func ProcessParticipantsForDisplay(participants []models.Participant) []models.DisplayParticipant {
	out := make([]models.DisplayParticipant, 0, len(participants))
	for i := range participants {
		p := &participants[i]
		out = append(out, models.DisplayParticipant{
			ChampionName: championOrNA(p.ChampionName),
			SummonerName: displayName(p),
			TeamID:       p.TeamID,
			Win:          p.Win,
			Spell1Key:    SpellKey(p.Summoner1ID),
			Spell2Key:    SpellKey(p.Summoner2ID),
		})
	}
	return out
}

// ExtractAllParticipantStats flattens every participant of a match into
// persistence-ready rows. Malformed matches yield an empty slice.
func ExtractAllParticipantStats(m *models.RawMatch) []models.ParticipantRow {
	if !m.WellFormed() {
		return nil
	}

	minutes := 0.0
	if m.Info.GameDuration > 0 {
		minutes = float64(m.Info.GameDuration) / 60.0
	}

	rows := make([]models.ParticipantRow, 0, len(m.Info.Participants))
	for i := range m.Info.Participants {
		p := &m.Info.Participants[i]
		cs := p.TotalMinionsKilled + p.NeutralMinionsKilled

		row := models.ParticipantRow{
			ParticipantPUUID:       p.PUUID,
			SummonerName:           displayName(p),
			ChampionName:           championOrNA(p.ChampionName),
			TeamID:                 int32(p.TeamID),
			Win:                    p.Win,
			Kills:                  int32(p.Kills),
			Deaths:                 int32(p.Deaths),
			Assists:                int32(p.Assists),
			KDARatio:               round2(kdaRatio(p.Kills, p.Deaths, p.Assists)),
			CS:                     int32(cs),
			GoldEarned:             int32(p.GoldEarned),
			TotalDamageToChampions: int32(p.TotalDamageDealtToChampions),
			VisionScore:            int32(p.VisionScore),
			Role:                   role(p.TeamPosition),
			ItemIDsStr:             joinItemIDs(p.Items()),
			Spell1Key:              spellKeyOrEmpty(p.Summoner1ID),
			Spell2Key:              spellKeyOrEmpty(p.Summoner2ID),
		}

		if minutes > 0 {
			row.CSPerMin = round1(float64(cs) / minutes)
			row.GoldPerMin = round0(float64(p.GoldEarned) / minutes)
			row.DamagePerMin = round0(float64(p.TotalDamageDealtToChampions) / minutes)
			row.VisionScorePerMin = round2(float64(p.VisionScore) / minutes)
		}

		teamKills := m.Info.TeamKills(p.TeamID)
		row.KPPercentage = round1(killParticipation(p.Kills, p.Assists, teamKills))

		styles := runeStyles(p.Perks)
		row.PrimaryRuneStyleIconFile = styles.PrimaryIconFile
		row.SecondaryRuneStyleIconFile = styles.SecondaryIconFile

		rows = append(rows, row)
	}
	return rows
}

func joinItemIDs(items [7]int) string {
	parts := make([]string, len(items))
	for i, id := range items {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
