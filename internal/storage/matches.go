package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/riftcoach/stats-api/internal/models"
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// MatchStore persists matches and participant rows in Postgres. Re-fetched
// matches upsert idempotently.
type MatchStore struct {
	db     PgPool
	logger *zap.SugaredLogger
}

func NewMatchStore(db PgPool, logger *zap.SugaredLogger) *MatchStore {
	return &MatchStore{db: db, logger: logger}
}

// UpsertMatch writes the match-level row.
func (s *MatchStore) UpsertMatch(ctx context.Context, rec *models.MatchRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO matches (match_id, game_creation, game_duration, game_version, queue_id, game_mode_name, stored_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (match_id) DO UPDATE SET
			game_duration = EXCLUDED.game_duration,
			game_version = EXCLUDED.game_version,
			queue_id = EXCLUDED.queue_id,
			game_mode_name = EXCLUDED.game_mode_name
	`, rec.MatchID, rec.GameCreation, rec.GameDuration, rec.GameVersion, rec.QueueID, rec.GameModeName, time.Now())
	if err != nil {
		return fmt.Errorf("upserting match %s: %w", rec.MatchID, err)
	}
	return nil
}

// participantColumns is the ordered column list of match_participants,
// minus match_id which is prepended per row.
var participantColumns = []string{
	"participant_puuid", "summoner_name", "champion_name", "team_id", "win",
	"kills", "deaths", "assists", "kda_ratio",
	"cs", "cs_per_min", "gold_earned", "gold_per_min",
	"total_damage_to_champions", "damage_per_min",
	"vision_score", "vision_score_per_min", "kp_percentage",
	"role", "item_ids_str", "spell1_key", "spell2_key",
	"primary_rune_style_icon_file", "secondary_rune_style_icon_file",
}

// UpsertParticipants writes all participant rows of one match in a single
// multi-value statement.
func (s *MatchStore) UpsertParticipants(ctx context.Context, matchID string, rows []models.ParticipantRow) error {
	if len(rows) == 0 {
		return nil
	}

	width := len(participantColumns) + 1
	var sb strings.Builder
	sb.WriteString("INSERT INTO match_participants (match_id, ")
	sb.WriteString(strings.Join(participantColumns, ", "))
	sb.WriteString(") VALUES ")

	args := make([]interface{}, 0, len(rows)*width)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := 0; j < width; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*width+j+1)
		}
		sb.WriteByte(')')
		args = append(args,
			matchID,
			row.ParticipantPUUID, row.SummonerName, row.ChampionName, row.TeamID, row.Win,
			row.Kills, row.Deaths, row.Assists, row.KDARatio,
			row.CS, row.CSPerMin, row.GoldEarned, row.GoldPerMin,
			row.TotalDamageToChampions, row.DamagePerMin,
			row.VisionScore, row.VisionScorePerMin, row.KPPercentage,
			row.Role, row.ItemIDsStr, row.Spell1Key, row.Spell2Key,
			row.PrimaryRuneStyleIconFile, row.SecondaryRuneStyleIconFile,
		)
	}
	sb.WriteString(` ON CONFLICT (match_id, participant_puuid) DO UPDATE SET
		summoner_name = EXCLUDED.summoner_name,
		kda_ratio = EXCLUDED.kda_ratio,
		cs_per_min = EXCLUDED.cs_per_min,
		gold_per_min = EXCLUDED.gold_per_min,
		damage_per_min = EXCLUDED.damage_per_min,
		vision_score_per_min = EXCLUDED.vision_score_per_min,
		kp_percentage = EXCLUDED.kp_percentage`)

	if _, err := s.db.Exec(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("upserting %d participants for match %s: %w", len(rows), matchID, err)
	}
	return nil
}

// HasMatch reports whether a match is already persisted, letting ingestion
// skip matches it has seen.
func (s *MatchStore) HasMatch(ctx context.Context, matchID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM matches WHERE match_id = $1)`, matchID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking match %s: %w", matchID, err)
	}
	return exists, nil
}

// Ping verifies database connectivity for readiness checks.
func (s *MatchStore) Ping(ctx context.Context) error {
	var one int
	return s.db.QueryRow(ctx, `SELECT 1`).Scan(&one)
}
