package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jose-valero/scrim-queue-bot/internal/app/state"
	"github.com/jose-valero/scrim-queue-bot/internal/domain"
)

// SnapshotRepo persiste el estado del bot como snapshot completo: cada Save
// pisa todo dentro de una transacción. El volumen es chico (colas, bans,
// scores, partidas), así que el wipe-and-insert sale más simple que diffear.
type SnapshotRepo struct{ db *sql.DB }

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

func (r *SnapshotRepo) Save(ctx context.Context, snap state.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range []string{"queue_entries", "channels", "matches", "bans", "scores"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return fmt.Errorf("wipe %s: %w", t, err)
		}
	}

	for _, cfg := range snap.Channels {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO channels (channel_id, capacity, timeout_seconds, active_match_id)
VALUES ($1,$2,$3,NULLIF($4,''))
`, cfg.ChannelID, cfg.Capacity, cfg.TimeoutSeconds, cfg.ActiveMatchID); err != nil {
			return fmt.Errorf("insert channel %s: %w", cfg.ChannelID, err)
		}
		for i, user := range snap.Queues[cfg.ChannelID] {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO queue_entries (channel_id, discord_user_id, position)
VALUES ($1,$2,$3)
`, cfg.ChannelID, user, i); err != nil {
				return fmt.Errorf("insert queue entry: %w", err)
			}
		}
	}

	for _, m := range snap.Matches {
		var teams any
		if m.Teams != nil {
			b, err := json.Marshal(m.Teams)
			if err != nil {
				return fmt.Errorf("marshal teams %s: %w", m.ID, err)
			}
			teams = b
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO matches
  (match_id, channel_id, participants, status, map, region, gamemode, winner, teams, created_at)
VALUES ($1,$2,$3,$4,NULLIF($5,''),NULLIF($6,''),NULLIF($7,''),NULLIF($8,''),$9,$10)
`, m.ID, m.ChannelID, pq.Array(m.Participants), string(m.Status),
			m.Map, m.Region, m.Gamemode, m.Winner, teams, m.CreatedAt); err != nil {
			return fmt.Errorf("insert match %s: %w", m.ID, err)
		}
	}

	for user, expiry := range snap.Bans {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO bans (discord_user_id, expires_at) VALUES ($1,$2)
`, user, expiry); err != nil {
			return fmt.Errorf("insert ban: %w", err)
		}
	}

	for user, score := range snap.Scores {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO scores (discord_user_id, score) VALUES ($1,$2)
`, user, score); err != nil {
			return fmt.Errorf("insert score: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO settings (key, value) VALUES ('win_score', $1)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
`, fmt.Sprint(snap.WinScore)); err != nil {
		return fmt.Errorf("upsert win_score: %w", err)
	}

	return tx.Commit()
}

func (r *SnapshotRepo) Load(ctx context.Context) (state.Snapshot, error) {
	snap := state.Snapshot{
		Queues: map[string][]string{},
		Bans:   map[string]time.Time{},
		Scores: map[string]int{},
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT channel_id, capacity, timeout_seconds, COALESCE(active_match_id, '')
  FROM channels
`)
	if err != nil {
		return snap, err
	}
	for rows.Next() {
		var cfg domain.ChannelConfig
		if err := rows.Scan(&cfg.ChannelID, &cfg.Capacity, &cfg.TimeoutSeconds, &cfg.ActiveMatchID); err != nil {
			rows.Close()
			return snap, err
		}
		snap.Channels = append(snap.Channels, cfg)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, err
	}

	rows, err = r.db.QueryContext(ctx, `
SELECT channel_id, discord_user_id
  FROM queue_entries
 ORDER BY channel_id, position
`)
	if err != nil {
		return snap, err
	}
	for rows.Next() {
		var channelID, user string
		if err := rows.Scan(&channelID, &user); err != nil {
			rows.Close()
			return snap, err
		}
		snap.Queues[channelID] = append(snap.Queues[channelID], user)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, err
	}

	rows, err = r.db.QueryContext(ctx, `
SELECT match_id, channel_id, participants, status,
       COALESCE(map,''), COALESCE(region,''), COALESCE(gamemode,''), COALESCE(winner,''),
       teams, created_at
  FROM matches
 ORDER BY created_at
`)
	if err != nil {
		return snap, err
	}
	for rows.Next() {
		var m domain.Match
		var status string
		var teamsRaw []byte
		if err := rows.Scan(&m.ID, &m.ChannelID, pq.Array(&m.Participants), &status,
			&m.Map, &m.Region, &m.Gamemode, &m.Winner, &teamsRaw, &m.CreatedAt); err != nil {
			rows.Close()
			return snap, err
		}
		m.Status = domain.MatchStatus(status)
		if len(teamsRaw) > 0 {
			if err := json.Unmarshal(teamsRaw, &m.Teams); err != nil {
				rows.Close()
				return snap, fmt.Errorf("unmarshal teams %s: %w", m.ID, err)
			}
		}
		snap.Matches = append(snap.Matches, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, err
	}

	rows, err = r.db.QueryContext(ctx, `SELECT discord_user_id, expires_at FROM bans`)
	if err != nil {
		return snap, err
	}
	for rows.Next() {
		var user string
		var expiry time.Time
		if err := rows.Scan(&user, &expiry); err != nil {
			rows.Close()
			return snap, err
		}
		snap.Bans[user] = expiry
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, err
	}

	rows, err = r.db.QueryContext(ctx, `SELECT discord_user_id, score FROM scores`)
	if err != nil {
		return snap, err
	}
	for rows.Next() {
		var user string
		var score int
		if err := rows.Scan(&user, &score); err != nil {
			rows.Close()
			return snap, err
		}
		snap.Scores[user] = score
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return snap, err
	}

	var raw string
	err = r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = 'win_score'`).Scan(&raw)
	switch err {
	case nil:
		fmt.Sscanf(raw, "%d", &snap.WinScore)
	case sql.ErrNoRows:
		// primera corrida: el store se queda con el default
	default:
		return snap, err
	}

	return snap, nil
}
