package logic

import "fmt"

// Static lookup tables for ids the Riot payload only carries numerically.
// Unknown ids never fail — they resolve to a labeled placeholder so a new
// patch can't crash the pipeline.

var summonerSpells = map[int]string{
	1:  "SummonerBoost",    // Cleanse
	3:  "SummonerExhaust",  // Exhaust
	4:  "SummonerFlash",    // Flash
	6:  "SummonerHaste",    // Ghost
	7:  "SummonerHeal",     // Heal
	11: "SummonerSmite",    // Smite
	12: "SummonerTeleport", // Teleport
	13: "SummonerMana",     // Clarity (ARAM)
	14: "SummonerDot",      // Ignite
	21: "SummonerBarrier",  // Barrier
	32: "SummonerSnowball", // Mark (ARAM)
	54: "Summoner_UltBookPlaceholder",
	55: "Summoner_UltBookSmitePlaceholder",
}

// Rune style id -> Community Dragon icon file.
var runeStyleIconFiles = map[int]string{
	8100: "7200_domination.png",
	8000: "7201_precision.png",
	8200: "7202_sorcery.png",
	8300: "7203_whimsy.png",
	8400: "7204_resolve.png",
}

const unknownRuneStyleIcon = "UnknownRuneStyle.png"

var queueIDGameModeNames = map[int]string{
	0:    "Custom",
	400:  "Normal (Draft)",
	420:  "Ranked Solo/Duo",
	430:  "Normal (Blind)",
	440:  "Ranked Flex",
	450:  "ARAM",
	490:  "Normal (Quickplay)",
	700:  "Clash",
	830:  "Intro Bots",
	840:  "Beginner Bots",
	850:  "Intermediate Bots",
	900:  "URF",
	1020: "One for All",
	1300: "Nexus Blitz",
	1400: "Ultimate Spellbook",
	1700: "Arena",
	1900: "URF (Pick)",
	2000: "Tutorial 1",
	2010: "Tutorial 2",
	2020: "Tutorial 3",
}

// SpellKey resolves a summoner spell id to its Data Dragon key, or a
// deterministic placeholder embedding the raw id.
func SpellKey(spellID int) string {
	if key, ok := summonerSpells[spellID]; ok {
		return key
	}
	return fmt.Sprintf("UnknownSpellID_%d", spellID)
}

// spellKeyOrEmpty is the persistence variant: unknown ids store as "".
func spellKeyOrEmpty(spellID int) string {
	return summonerSpells[spellID]
}

// runeStyleIcon resolves a rune style id to its icon file name.
func runeStyleIcon(styleID int) string {
	if icon, ok := runeStyleIconFiles[styleID]; ok {
		return icon
	}
	return unknownRuneStyleIcon
}

// GameModeName resolves a queue id into a readable game-mode label,
// composing a fallback from the raw mode string and queue id when the
// queue is not in the table. The field is never silently dropped.
func GameModeName(queueID int, rawMode string) string {
	if name, ok := queueIDGameModeNames[queueID]; ok {
		return name
	}
	switch {
	case rawMode == "CLASSIC":
		return fmt.Sprintf("Classic (%d)", queueID)
	case rawMode != "":
		return fmt.Sprintf("%s (%d)", rawMode, queueID)
	default:
		return fmt.Sprintf("Mode ID: %d", queueID)
	}
}
