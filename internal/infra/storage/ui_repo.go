package storage

import (
	"context"
	"database/sql"
	"time"
)

// ChannelUI guarda el message id del embed de cola publicado en cada canal,
// para poder editarlo en vez de repostearlo tras un reinicio.
type ChannelUI struct {
	ChannelID      string
	QueueMessageID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type UIRepo struct{ db *sql.DB }

func NewUIRepo(db *sql.DB) *UIRepo { return &UIRepo{db: db} }

func (r *UIRepo) Get(ctx context.Context, channelID string) (ChannelUI, error) {
	var u ChannelUI
	err := r.db.QueryRowContext(ctx, `
SELECT channel_id, queue_message_id, created_at, updated_at
  FROM channel_ui
 WHERE channel_id = $1
`, channelID).Scan(&u.ChannelID, &u.QueueMessageID, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *UIRepo) Upsert(ctx context.Context, channelID, messageID string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO channel_ui (channel_id, queue_message_id)
VALUES ($1,$2)
ON CONFLICT (channel_id) DO UPDATE SET
  queue_message_id = EXCLUDED.queue_message_id,
  updated_at       = now()
`, channelID, messageID)
	return err
}

func (r *UIRepo) Delete(ctx context.Context, channelID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM channel_ui WHERE channel_id = $1`, channelID)
	return err
}
