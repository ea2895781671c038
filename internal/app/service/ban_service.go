package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jose-valero/scrim-queue-bot/internal/app/state"
)

type BanService struct {
	persister
	notify Notifier
}

func NewBanService(store *state.Store, snap SnapshotStore, notify Notifier) *BanService {
	return &BanService{persister: persister{store: store, snap: snap}, notify: notify}
}

type BanResult struct {
	Banned    bool
	Remaining time.Duration
}

// Toggle alterna el estado de ban: con ban vigente lo levanta, sin ban lo
// aplica por los minutos dados y lo saca de la cola donde estuviera.
func (s *BanService) Toggle(ctx context.Context, userID string, minutes int) (BanResult, error) {
	if minutes <= 0 {
		return BanResult{}, ErrBadAmount
	}

	now := time.Now()
	if s.store.BanRemaining(userID, now) > 0 {
		s.store.ClearBan(userID)
		return BanResult{Banned: false}, s.persist(ctx)
	}

	d := time.Duration(minutes) * time.Minute
	s.store.SetBan(userID, now.Add(d))

	if channelID := s.store.QueuedIn(userID); channelID != "" {
		if ch, ok := s.store.Channel(channelID); ok {
			ch.Lock()
			for i, u := range ch.Queue {
				if u == userID {
					ch.Queue = append(ch.Queue[:i], ch.Queue[i+1:]...)
					break
				}
			}
			s.store.ClearQueuedIn(userID)
			ch.Unlock()
			_ = s.notify.Notify(ctx, channelID, fmt.Sprintf("🔨 <@%s> was removed from the queue (banned).", userID))
		}
	}

	return BanResult{Banned: true, Remaining: d}, s.persist(ctx)
}

// IsBanned devuelve el tiempo de ban restante, si lo hay.
func (s *BanService) IsBanned(userID string) (time.Duration, bool) {
	r := s.store.BanRemaining(userID, time.Now())
	return r, r > 0
}
