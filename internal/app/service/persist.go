package service

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/jose-valero/scrim-queue-bot/internal/app/state"
)

// persister centraliza el "toda mutación guarda snapshot antes de devolver
// éxito". El Save se reintenta un par de veces; si aun así falla, el error
// sube al caller para que el usuario sepa que no quedó persistido.
//
// No llamar persist con un lock de canal tomado (Snapshot los recorre todos).
type persister struct {
	store *state.Store
	snap  SnapshotStore
}

func (p persister) persist(ctx context.Context) error {
	backoff := retry.WithMaxRetries(2, retry.NewConstant(150*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := p.snap.Save(ctx, p.store.Snapshot()); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
