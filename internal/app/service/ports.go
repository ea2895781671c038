package service

import (
	"context"

	"github.com/jose-valero/scrim-queue-bot/internal/app/state"
)

// Payload es un mensaje estructurado agnóstico de plataforma; el adapter lo
// convierte a embed (o a lo que toque).
type Payload struct {
	Title  string
	Body   string
	Fields []Field
}

type Field struct {
	Name  string
	Value string
}

// Lo implementa internal/adapters/discord.Notifier
type Notifier interface {
	Notify(ctx context.Context, channelID, content string) error
	NotifyPayload(ctx context.Context, channelID string, p Payload) error
	// NotifyVote publica el prompt de una etapa con sus opciones (botones).
	NotifyVote(ctx context.Context, channelID string, stage string, content string, options []string) error
	// Direct manda un DM; si el usuario es inalcanzable se loguea y se traga,
	// nunca es error para el caller.
	Direct(ctx context.Context, userID string, p Payload)
}

// Lo implementa internal/infra/storage.SnapshotRepo
type SnapshotStore interface {
	Save(ctx context.Context, snap state.Snapshot) error
	Load(ctx context.Context) (state.Snapshot, error)
}
