package service

import (
	"context"
	"time"

	"github.com/jose-valero/scrim-queue-bot/internal/app/state"
)

type QueueService struct {
	persister
	notify Notifier
	drafts *DraftService
}

func NewQueueService(store *state.Store, snap SnapshotStore, notify Notifier, drafts *DraftService) *QueueService {
	return &QueueService{persister: persister{store: store, snap: snap}, notify: notify, drafts: drafts}
}

type JoinResult struct {
	Position     int
	Capacity     int
	DraftStarted bool
}

// Join mete al usuario a la cola del canal. Un usuario puede estar en UNA
// sola cola de todo el proceso. Si con él la cola llega a capacidad, se
// snapshotea y limpia atómicamente y arranca el draft.
func (s *QueueService) Join(ctx context.Context, channelID, userID string) (JoinResult, error) {
	if rem := s.store.BanRemaining(userID, time.Now()); rem > 0 {
		return JoinResult{}, &BannedError{Remaining: rem}
	}
	return s.join(ctx, channelID, userID)
}

// ForceJoin es la variante de admin: se salta el chequeo de ban pero no el
// de membresía (el invariante "una sola cola" no se negocia).
func (s *QueueService) ForceJoin(ctx context.Context, channelID, userID string) (JoinResult, error) {
	return s.join(ctx, channelID, userID)
}

func (s *QueueService) join(ctx context.Context, channelID, userID string) (JoinResult, error) {
	ch, ok := s.store.Channel(channelID)
	if !ok {
		return JoinResult{}, ErrChannelNotRegistered
	}

	ch.Lock()
	// chequeo y reclamo del índice global en una sola operación: dos joins
	// simultáneos del mismo usuario en canales distintos no pueden ganar ambos
	if existing, ok := s.store.TryClaimQueue(userID, channelID); !ok {
		ch.Unlock()
		return JoinResult{}, &AlreadyQueuedError{ChannelID: existing, Same: existing == channelID}
	}
	ch.Queue = append(ch.Queue, userID)
	s.store.Touch(userID, time.Now())

	res := JoinResult{Position: len(ch.Queue), Capacity: ch.Config.Capacity}
	var players []string
	if len(ch.Queue) >= ch.Config.Capacity {
		players = append([]string(nil), ch.Queue...)
		ch.Queue = nil
		s.store.ClearQueuedIn(players...)
		res.DraftStarted = true
	}
	ch.Unlock()

	if players != nil {
		// Start persiste él mismo (crea la partida).
		if err := s.drafts.Start(ctx, ch, players); err != nil {
			return res, err
		}
		return res, nil
	}
	if err := s.persist(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// Leave saca al usuario de la cola; falla con ErrNotQueued si no estaba.
func (s *QueueService) Leave(ctx context.Context, channelID, userID string) (int, error) {
	ch, ok := s.store.Channel(channelID)
	if !ok {
		return 0, ErrChannelNotRegistered
	}

	ch.Lock()
	idx := -1
	for i, u := range ch.Queue {
		if u == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		ch.Unlock()
		return 0, ErrNotQueued
	}
	ch.Queue = append(ch.Queue[:idx], ch.Queue[idx+1:]...)
	remaining := len(ch.Queue)
	ch.Unlock()

	s.store.ClearQueuedIn(userID)
	if err := s.persist(ctx); err != nil {
		return remaining, err
	}
	return remaining, nil
}

// ForceLeave: igual que Leave pero con semántica de admin (el caller ya
// validó permisos). El chequeo de membresía se mantiene.
func (s *QueueService) ForceLeave(ctx context.Context, channelID, userID string) (int, error) {
	return s.Leave(ctx, channelID, userID)
}

// List devuelve la cola en orden FIFO (copia, solo lectura).
func (s *QueueService) List(channelID string) ([]string, error) {
	ch, ok := s.store.Channel(channelID)
	if !ok {
		return nil, ErrChannelNotRegistered
	}
	ch.Lock()
	defer ch.Unlock()
	return append([]string(nil), ch.Queue...), nil
}
