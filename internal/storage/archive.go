package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/riftcoach/stats-api/internal/models"
)

// Archive mirrors participant rows into ClickHouse. The archive is the
// source for offline training exports; Postgres stays the serving store.
type Archive struct {
	ch     driver.Conn
	logger *zap.SugaredLogger
}

func NewArchive(ch driver.Conn, logger *zap.SugaredLogger) *Archive {
	return &Archive{ch: ch, logger: logger}
}

// AppendParticipants batch-inserts one match's participant rows.
func (a *Archive) AppendParticipants(ctx context.Context, rec *models.MatchRecord, rows []models.ParticipantRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := a.ch.PrepareBatch(ctx, `
		INSERT INTO lol_stats.participant_archive (
			match_id, game_creation, queue_id,
			participant_puuid, summoner_name, champion_name, team_id, win,
			kills, deaths, assists, kda_ratio,
			cs, cs_per_min, gold_earned, gold_per_min,
			total_damage_to_champions, damage_per_min,
			vision_score, vision_score_per_min, kp_percentage,
			role, archived_at
		)
	`)
	if err != nil {
		return fmt.Errorf("preparing archive batch: %w", err)
	}

	now := time.Now()
	for _, row := range rows {
		if err := batch.Append(
			rec.MatchID, rec.GameCreation, int32(rec.QueueID),
			row.ParticipantPUUID, row.SummonerName, row.ChampionName, row.TeamID, row.Win,
			row.Kills, row.Deaths, row.Assists, row.KDARatio,
			row.CS, row.CSPerMin, row.GoldEarned, row.GoldPerMin,
			row.TotalDamageToChampions, row.DamagePerMin,
			row.VisionScore, row.VisionScorePerMin, row.KPPercentage,
			row.Role, now,
		); err != nil {
			a.logger.Warnw("failed to append participant to archive batch",
				"match_id", rec.MatchID, "puuid", row.ParticipantPUUID, "error", err)
			continue
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("sending archive batch for match %s: %w", rec.MatchID, err)
	}
	return nil
}

// TrainingRow is one match flattened for composition-model training:
// both drafts plus the blue-side outcome label.
type TrainingRow struct {
	MatchID       string
	BlueChampions []string
	RedChampions  []string
	BlueWin       bool
}

// TrainingRows exports complete 5v5 matches from the archive, newest
// first, capped at limit.
func (a *Archive) TrainingRows(ctx context.Context, limit int) ([]TrainingRow, error) {
	rows, err := a.ch.Query(ctx, `
		SELECT
			match_id,
			groupArrayIf(champion_name, team_id = 100) AS blue_champs,
			groupArrayIf(champion_name, team_id = 200) AS red_champs,
			max(if(team_id = 100 AND win, 1, 0)) AS blue_win
		FROM lol_stats.participant_archive
		GROUP BY match_id
		HAVING length(blue_champs) = 5 AND length(red_champs) = 5
		ORDER BY max(game_creation) DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying training rows: %w", err)
	}
	defer rows.Close()

	var out []TrainingRow
	for rows.Next() {
		var (
			tr      TrainingRow
			blueWin uint8
		)
		if err := rows.Scan(&tr.MatchID, &tr.BlueChampions, &tr.RedChampions, &blueWin); err != nil {
			return nil, fmt.Errorf("scanning training row: %w", err)
		}
		tr.BlueWin = blueWin == 1
		out = append(out, tr)
	}
	return out, rows.Err()
}

// Ping verifies ClickHouse connectivity for readiness checks.
func (a *Archive) Ping(ctx context.Context) error {
	return a.ch.Ping(ctx)
}
