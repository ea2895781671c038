package state

import (
	"time"

	"github.com/jose-valero/scrim-queue-bot/internal/domain"
)

// Snapshot es la foto completa de las tablas durables. Drafts y votaciones
// en curso son efímeros y no entran: tras un reinicio la partida a medio
// armar se rehace desde la cola.
type Snapshot struct {
	Channels []domain.ChannelConfig
	Queues   map[string][]string
	Matches  []domain.Match
	Bans     map[string]time.Time
	Scores   map[string]int
	WinScore int
}

// Snapshot copia el estado durable. No llamar con un lock de canal tomado:
// recorre todos los canales tomando cada lock por turno.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Queues: make(map[string][]string),
	}

	s.cmu.RLock()
	channels := make([]*Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		channels = append(channels, ch)
	}
	s.cmu.RUnlock()

	for _, ch := range channels {
		ch.Lock()
		snap.Channels = append(snap.Channels, ch.Config)
		snap.Queues[ch.Config.ChannelID] = append([]string(nil), ch.Queue...)
		ch.Unlock()
	}

	s.gmu.Lock()
	defer s.gmu.Unlock()
	for _, id := range s.matchOrder {
		snap.Matches = append(snap.Matches, copyMatch(s.matches[id]))
	}
	snap.Bans = make(map[string]time.Time, len(s.bans))
	for u, t := range s.bans {
		snap.Bans[u] = t
	}
	snap.Scores = make(map[string]int, len(s.scores))
	for u, v := range s.scores {
		snap.Scores[u] = v
	}
	snap.WinScore = s.winScore
	return snap
}

// Restore reconstruye el store desde una foto (arranque del proceso).
func (s *Store) Restore(snap Snapshot) {
	s.cmu.Lock()
	s.channels = make(map[string]*Channel, len(snap.Channels))
	for _, cfg := range snap.Channels {
		s.channels[cfg.ChannelID] = &Channel{
			Config: cfg,
			Queue:  append([]string(nil), snap.Queues[cfg.ChannelID]...),
		}
	}
	s.cmu.Unlock()

	s.gmu.Lock()
	defer s.gmu.Unlock()
	s.queuedIn = make(map[string]string)
	s.lastActive = make(map[string]time.Time)
	now := time.Now()
	for chID, users := range snap.Queues {
		for _, u := range users {
			s.queuedIn[u] = chID
			// actividad fresca: que el monitor no los eche apenas arranca
			s.lastActive[u] = now
		}
	}
	s.matches = make(map[string]domain.Match, len(snap.Matches))
	s.matchOrder = s.matchOrder[:0]
	for _, m := range snap.Matches {
		s.matches[m.ID] = copyMatch(m)
		s.matchOrder = append(s.matchOrder, m.ID)
	}
	s.bans = make(map[string]time.Time, len(snap.Bans))
	for u, t := range snap.Bans {
		s.bans[u] = t
	}
	s.scores = make(map[string]int, len(snap.Scores))
	for u, v := range snap.Scores {
		s.scores[u] = v
	}
	if snap.WinScore > 0 {
		s.winScore = snap.WinScore
	}
}
