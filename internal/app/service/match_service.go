package service

import (
	"context"
	"sort"

	"github.com/jose-valero/scrim-queue-bot/internal/app/state"
	"github.com/jose-valero/scrim-queue-bot/internal/domain"
)

type MatchService struct {
	persister
	notify Notifier
}

func NewMatchService(store *state.Store, snap SnapshotStore, notify Notifier) *MatchService {
	return &MatchService{persister: persister{store: store, snap: snap}, notify: notify}
}

type FinishResult struct {
	MatchID  string
	Winners  []string
	Losers   []string
	WinScore int
}

// Finish cierra la partida con el equipo del capitán reportante como ganador
// y aplica el ELO. El cambio de estado es check-and-set bajo el lock global:
// dos reportes concurrentes puntúan exactamente una vez.
func (s *MatchService) Finish(ctx context.Context, matchID, captainID string) (FinishResult, error) {
	m, ok := s.store.Match(matchID)
	if !ok {
		return FinishResult{}, ErrMatchNotFound
	}

	teams := m.Teams
	ch, chOK := s.store.Channel(m.ChannelID)
	if chOK {
		ch.Lock()
		if d := ch.Draft; d != nil && d.MatchID == matchID {
			teams = map[string][]string{
				d.Captains[0]: append([]string{d.Captains[0]}, d.Teams[d.Captains[0]]...),
				d.Captains[1]: append([]string{d.Captains[1]}, d.Teams[d.Captains[1]]...),
			}
		}
		ch.Unlock()
	}

	winners, ok := teams[captainID]
	if !ok {
		return FinishResult{}, ErrNotACaptain
	}
	var losers []string
	for c, members := range teams {
		if c != captainID {
			losers = members
		}
	}

	if !s.store.UpdateMatch(matchID, func(m *domain.Match) {
		m.Status = domain.StatusFinished
		m.Winner = captainID
		if m.Teams == nil {
			m.Teams = teams
		}
	}, state.IfNotFinished) {
		return FinishResult{}, ErrAlreadyFinished
	}

	winScore := s.store.WinScore()
	for _, u := range winners {
		s.store.AddScore(u, winScore)
	}
	for _, u := range losers {
		s.store.AddScore(u, -domain.LossPenalty)
	}

	if chOK {
		ch.Lock()
		if ch.Config.ActiveMatchID == matchID {
			ch.Config.ActiveMatchID = ""
			ch.Draft = nil
			if ch.Vote != nil {
				ch.Vote.StopTimer()
				ch.Vote.Close()
				ch.Vote = nil
			}
		}
		ch.Unlock()
	}

	res := FinishResult{MatchID: matchID, Winners: winners, Losers: losers, WinScore: winScore}
	return res, s.persist(ctx)
}

// FinishByChannel resuelve la partida activa del canal y delega en Finish.
func (s *MatchService) FinishByChannel(ctx context.Context, channelID, captainID string) (FinishResult, error) {
	ch, ok := s.store.Channel(channelID)
	if !ok {
		return FinishResult{}, ErrNoActiveMatch
	}
	ch.Lock()
	matchID := ch.Config.ActiveMatchID
	ch.Unlock()
	if matchID == "" {
		return FinishResult{}, ErrNoActiveMatch
	}
	return s.Finish(ctx, matchID, captainID)
}

// EndMatch aborta la partida activa del canal sin repartir puntos.
func (s *MatchService) EndMatch(ctx context.Context, channelID string) (string, error) {
	ch, ok := s.store.Channel(channelID)
	if !ok {
		return "", ErrNoActiveMatch
	}
	ch.Lock()
	matchID := ch.Config.ActiveMatchID
	if matchID == "" {
		ch.Unlock()
		return "", ErrNoActiveMatch
	}
	ch.Config.ActiveMatchID = ""
	ch.Draft = nil
	if ch.Vote != nil {
		ch.Vote.StopTimer()
		ch.Vote.Close()
		ch.Vote = nil
	}
	ch.Unlock()

	s.store.UpdateMatch(matchID, func(m *domain.Match) {
		m.Status = domain.StatusFinished
	}, state.IfNotFinished)

	return matchID, s.persist(ctx)
}

const (
	ScoreAdd      = "add"
	ScoreSubtract = "subtract"
	ScoreSet      = "set"
)

// AdjustScore aplica un ajuste manual de ELO y devuelve el total resultante.
func (s *MatchService) AdjustScore(ctx context.Context, userID, action string, amount int) (int, error) {
	if amount < 0 {
		return 0, ErrBadAmount
	}

	var total int
	switch action {
	case ScoreAdd:
		total = s.store.AddScore(userID, amount)
	case ScoreSubtract:
		total = s.store.AddScore(userID, -amount)
	case ScoreSet:
		s.store.SetScore(userID, amount)
		total = amount
	default:
		return 0, ErrBadAction
	}
	return total, s.persist(ctx)
}

func (s *MatchService) SetWinScore(ctx context.Context, n int) error {
	if n < 0 {
		return ErrBadAmount
	}
	s.store.SetWinScore(n)
	return s.persist(ctx)
}

func (s *MatchService) WinScore() int { return s.store.WinScore() }

func (s *MatchService) ResetAllScores(ctx context.Context) error {
	s.store.ResetScores()
	return s.persist(ctx)
}

func (s *MatchService) ScoreOf(userID string) int { return s.store.Score(userID) }

type LeaderboardEntry struct {
	UserID string
	Score  int
}

// Leaderboard ordena por puntaje descendente, desempata por id de usuario.
func (s *MatchService) Leaderboard() []LeaderboardEntry {
	scores := s.store.Scores()
	out := make([]LeaderboardEntry, 0, len(scores))
	for u, sc := range scores {
		out = append(out, LeaderboardEntry{UserID: u, Score: sc})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func (s *MatchService) ListRecent(n int) []domain.Match {
	return s.store.RecentMatches(n)
}
