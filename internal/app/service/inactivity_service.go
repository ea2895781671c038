package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jose-valero/scrim-queue-bot/internal/app/state"
)

// InactivityService corre un monitor por canal registrado que barre la cola
// y echa a los que llevan más de TimeoutSeconds sin actividad.
type InactivityService struct {
	persister
	notify Notifier
	poll   time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewInactivityService(store *state.Store, snap SnapshotStore, notify Notifier) *InactivityService {
	return &InactivityService{
		persister: persister{store: store, snap: snap},
		notify:    notify,
		poll:      time.Minute,
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Watch arranca (o reinicia) el monitor del canal. Un Watch previo sobre el
// mismo canal queda cancelado: nunca hay dos monitores vivos por canal.
func (s *InactivityService) Watch(parent context.Context, channelID string) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	if prev, ok := s.cancels[channelID]; ok {
		prev()
	}
	s.cancels[channelID] = cancel
	s.mu.Unlock()

	go s.loop(ctx, channelID)
}

func (s *InactivityService) Stop(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[channelID]; ok {
		cancel()
		delete(s.cancels, channelID)
	}
}

func (s *InactivityService) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
}

// Touch marca actividad del usuario (mensajes, votos, picks, joins).
func (s *InactivityService) Touch(userID string) {
	s.store.Touch(userID, time.Now())
}

func (s *InactivityService) loop(ctx context.Context, channelID string) {
	t := time.NewTicker(s.poll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !s.sweep(ctx, channelID) {
				return
			}
		}
	}
}

// sweep devuelve false cuando el canal ya no existe y el monitor debe morir.
func (s *InactivityService) sweep(ctx context.Context, channelID string) bool {
	ch, ok := s.store.Channel(channelID)
	if !ok {
		return false
	}

	now := time.Now()

	ch.Lock()
	if len(ch.Queue) == 0 {
		ch.Unlock()
		return true
	}
	timeout := time.Duration(ch.Config.TimeoutSeconds) * time.Second

	var kept, evicted []string
	for _, u := range ch.Queue {
		last, seen := s.store.LastActive(u)
		if !seen || now.Sub(last) > timeout {
			evicted = append(evicted, u)
		} else {
			kept = append(kept, u)
		}
	}
	if len(evicted) > 0 {
		ch.Queue = kept
		s.store.ClearQueuedIn(evicted...)
	}
	ch.Unlock()

	if len(evicted) == 0 {
		return true
	}

	for _, u := range evicted {
		_ = s.notify.Notify(ctx, channelID, fmt.Sprintf("⌛ <@%s> was removed from the queue for inactivity.", u))
	}
	if err := s.persist(ctx); err != nil {
		log.Printf("⚠️ persist tras barrido de inactividad: %v", err)
	}
	return true
}
