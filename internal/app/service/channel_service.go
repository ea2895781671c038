package service

import (
	"context"

	"github.com/jose-valero/scrim-queue-bot/internal/app/state"
	"github.com/jose-valero/scrim-queue-bot/internal/domain"
)

type ChannelService struct {
	persister
	monitor *InactivityService
}

func NewChannelService(store *state.Store, snap SnapshotStore, monitor *InactivityService) *ChannelService {
	return &ChannelService{persister: persister{store: store, snap: snap}, monitor: monitor}
}

// Register da de alta el canal con la config por defecto y arranca su
// monitor de inactividad. Sobre un canal ya registrado resetea config y cola.
func (s *ChannelService) Register(ctx context.Context, channelID string) error {
	cfg := domain.ChannelConfig{
		ChannelID:      channelID,
		Capacity:       domain.DefaultCapacity,
		TimeoutSeconds: domain.DefaultTimeoutSeconds,
	}

	ch, created := s.store.Register(cfg)
	if !created {
		ch.Lock()
		queued := append([]string(nil), ch.Queue...)
		ch.Queue = nil
		ch.Config = cfg
		ch.Draft = nil
		if ch.Vote != nil {
			ch.Vote.StopTimer()
			ch.Vote.Close()
			ch.Vote = nil
		}
		s.store.ClearQueuedIn(queued...)
		ch.Unlock()
	}

	s.monitor.Watch(context.WithoutCancel(ctx), channelID)
	return s.persist(ctx)
}

// Unregister borra el canal y frena su monitor.
func (s *ChannelService) Unregister(ctx context.Context, channelID string) error {
	s.monitor.Stop(channelID)
	if !s.store.Unregister(channelID) {
		return ErrChannelNotRegistered
	}
	return s.persist(ctx)
}

// SetCapacity fija el tamaño de la cola: par, entre 2 y 12.
func (s *ChannelService) SetCapacity(ctx context.Context, channelID string, capacity int) error {
	if capacity < domain.MinCapacity || capacity > domain.MaxCapacity || capacity%2 != 0 {
		return ErrBadCapacity
	}
	ch, ok := s.store.Channel(channelID)
	if !ok {
		return ErrChannelNotRegistered
	}
	ch.Lock()
	ch.Config.Capacity = capacity
	ch.Unlock()
	return s.persist(ctx)
}

// SetTimeout fija el timeout de inactividad (mínimo 60s) y reinicia el
// monitor para que tome el valor nuevo.
func (s *ChannelService) SetTimeout(ctx context.Context, channelID string, seconds int) error {
	if seconds < domain.MinTimeoutSeconds {
		return ErrBadTimeout
	}
	ch, ok := s.store.Channel(channelID)
	if !ok {
		return ErrChannelNotRegistered
	}
	ch.Lock()
	ch.Config.TimeoutSeconds = seconds
	ch.Unlock()

	s.monitor.Watch(context.WithoutCancel(ctx), channelID)
	return s.persist(ctx)
}

// Config devuelve una copia de la config del canal.
func (s *ChannelService) Config(channelID string) (domain.ChannelConfig, error) {
	ch, ok := s.store.Channel(channelID)
	if !ok {
		return domain.ChannelConfig{}, ErrChannelNotRegistered
	}
	ch.Lock()
	defer ch.Unlock()
	return ch.Config, nil
}
