package state

import (
	"sync"
	"time"

	"github.com/jose-valero/scrim-queue-bot/internal/domain"
)

// Channel agrupa todo el estado mutable de un canal registrado. Cada canal
// tiene su propio mutex: operaciones sobre canales distintos no se bloquean
// entre sí, y dentro de un canal todo (join/leave/pick/vote) se serializa.
type Channel struct {
	mu sync.Mutex

	Config domain.ChannelConfig
	Queue  []string
	Draft  *domain.Draft
	Vote   *VoteSession
}

func (c *Channel) Lock()   { c.mu.Lock() }
func (c *Channel) Unlock() { c.mu.Unlock() }

// Store es el dueño único de las tablas del bot: canales, índice global de
// colas, bans, scores, actividad y partidas. Se construye una vez en el
// arranque y se pasa explícito a cada servicio.
//
// Orden de locks: Channel.mu antes que gmu, nunca al revés.
type Store struct {
	cmu      sync.RWMutex
	channels map[string]*Channel

	gmu        sync.Mutex
	queuedIn   map[string]string // user → canal donde está encolado
	bans       map[string]time.Time
	scores     map[string]int
	lastActive map[string]time.Time
	matches    map[string]domain.Match
	matchOrder []string
	winScore   int
}

func NewStore() *Store {
	return &Store{
		channels:   make(map[string]*Channel),
		queuedIn:   make(map[string]string),
		bans:       make(map[string]time.Time),
		scores:     make(map[string]int),
		lastActive: make(map[string]time.Time),
		matches:    make(map[string]domain.Match),
		winScore:   domain.DefaultWinScore,
	}
}

// --- canales ---

func (s *Store) Channel(id string) (*Channel, bool) {
	s.cmu.RLock()
	defer s.cmu.RUnlock()
	ch, ok := s.channels[id]
	return ch, ok
}

func (s *Store) ChannelIDs() []string {
	s.cmu.RLock()
	defer s.cmu.RUnlock()
	ids := make([]string, 0, len(s.channels))
	for id := range s.channels {
		ids = append(ids, id)
	}
	return ids
}

// Register crea el canal si no existía. created=false si ya estaba.
func (s *Store) Register(cfg domain.ChannelConfig) (ch *Channel, created bool) {
	s.cmu.Lock()
	defer s.cmu.Unlock()
	if ch, ok := s.channels[cfg.ChannelID]; ok {
		return ch, false
	}
	ch = &Channel{Config: cfg}
	s.channels[cfg.ChannelID] = ch
	return ch, true
}

// Unregister elimina el canal y desindexa a los que estaban en su cola.
func (s *Store) Unregister(id string) bool {
	s.cmu.Lock()
	ch, ok := s.channels[id]
	if ok {
		delete(s.channels, id)
	}
	s.cmu.Unlock()
	if !ok {
		return false
	}

	ch.Lock()
	queued := append([]string(nil), ch.Queue...)
	ch.Queue = nil
	ch.Unlock()

	s.gmu.Lock()
	for _, u := range queued {
		if s.queuedIn[u] == id {
			delete(s.queuedIn, u)
		}
	}
	s.gmu.Unlock()
	return true
}

// --- índice global user → cola ---

func (s *Store) QueuedIn(user string) string {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	return s.queuedIn[user]
}

// TryClaimQueue reserva la cola del canal para el usuario: lectura y
// escritura del índice bajo UNA sola toma de gmu, así dos joins simultáneos
// en canales distintos no pueden leer "libre" los dos. Si ya estaba
// reclamado devuelve el canal dueño y ok=false.
func (s *Store) TryClaimQueue(user, channelID string) (existing string, ok bool) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	if cur, found := s.queuedIn[user]; found {
		return cur, false
	}
	s.queuedIn[user] = channelID
	return "", true
}

func (s *Store) SetQueuedIn(user, channelID string) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	s.queuedIn[user] = channelID
}

func (s *Store) ClearQueuedIn(users ...string) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	for _, u := range users {
		delete(s.queuedIn, u)
	}
}

// --- bans ---

// BanRemaining devuelve cuánto le queda de ban al usuario; 0 si no tiene o
// ya expiró (el ban expirado se considera inexistente, no se limpia acá).
func (s *Store) BanRemaining(user string, now time.Time) time.Duration {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	expiry, ok := s.bans[user]
	if !ok || !now.Before(expiry) {
		return 0
	}
	return expiry.Sub(now)
}

func (s *Store) SetBan(user string, expiry time.Time) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	s.bans[user] = expiry
}

func (s *Store) ClearBan(user string) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	delete(s.bans, user)
}

// --- scores ---

func (s *Store) Score(user string) int {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	return s.scores[user]
}

func (s *Store) SetScore(user string, v int) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	s.scores[user] = max(0, v)
}

// AddScore suma delta (puede ser negativo) con piso en cero.
func (s *Store) AddScore(user string, delta int) int {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	v := max(0, s.scores[user]+delta)
	s.scores[user] = v
	return v
}

func (s *Store) ResetScores() {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	for u := range s.scores {
		s.scores[u] = 0
	}
}

func (s *Store) Scores() map[string]int {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	out := make(map[string]int, len(s.scores))
	for u, v := range s.scores {
		out[u] = v
	}
	return out
}

func (s *Store) WinScore() int {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	return s.winScore
}

func (s *Store) SetWinScore(v int) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	s.winScore = v
}

// --- actividad ---

func (s *Store) Touch(user string, t time.Time) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	s.lastActive[user] = t
}

func (s *Store) LastActive(user string) (time.Time, bool) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	t, ok := s.lastActive[user]
	return t, ok
}

// --- partidas ---

func (s *Store) PutMatch(m domain.Match) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	if _, ok := s.matches[m.ID]; !ok {
		s.matchOrder = append(s.matchOrder, m.ID)
	}
	s.matches[m.ID] = copyMatch(m)
}

func (s *Store) Match(id string) (domain.Match, bool) {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return domain.Match{}, false
	}
	return copyMatch(m), true
}

// IfNotFinished es la guarda para cierres exactly-once: el update solo se
// aplica si la partida todavía no estaba finished.
func IfNotFinished(m *domain.Match) bool { return m.Status != domain.StatusFinished }

// UpdateMatch aplica fn sobre la partida bajo el lock global. Si alguna guarda
// falla, no toca nada y devuelve false.
func (s *Store) UpdateMatch(id string, fn func(*domain.Match), guards ...func(*domain.Match) bool) bool {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return false
	}
	for _, g := range guards {
		if !g(&m) {
			return false
		}
	}
	fn(&m)
	s.matches[id] = m
	return true
}

// RecentMatches devuelve las últimas n partidas en orden de creación.
func (s *Store) RecentMatches(n int) []domain.Match {
	s.gmu.Lock()
	defer s.gmu.Unlock()
	if n <= 0 || n > len(s.matchOrder) {
		n = len(s.matchOrder)
	}
	out := make([]domain.Match, 0, n)
	for _, id := range s.matchOrder[len(s.matchOrder)-n:] {
		out = append(out, copyMatch(s.matches[id]))
	}
	return out
}

func copyMatch(m domain.Match) domain.Match {
	m.Participants = append([]string(nil), m.Participants...)
	if m.Teams != nil {
		teams := make(map[string][]string, len(m.Teams))
		for c, members := range m.Teams {
			teams[c] = append([]string(nil), members...)
		}
		m.Teams = teams
	}
	return m
}
