package service

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/google/uuid"

	"github.com/jose-valero/scrim-queue-bot/internal/app/state"
	"github.com/jose-valero/scrim-queue-bot/internal/domain"
)

type DraftService struct {
	persister
	notify Notifier
	votes  *VoteService
}

func NewDraftService(store *state.Store, snap SnapshotStore, notify Notifier, votes *VoteService) *DraftService {
	return &DraftService{persister: persister{store: store, snap: snap}, notify: notify, votes: votes}
}

// newMatchID: token corto opaco, 8 hex de un uuid4.
func newMatchID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Start arma el draft con el snapshot de la cola: 2 capitanes al azar sin
// reemplazo, el primero sorteado pica primero. Crea la partida en estado
// drafting. Si no quedan jugadores por draftear (capacidad 2) pasa directo
// a la votación.
func (s *DraftService) Start(ctx context.Context, ch *state.Channel, players []string) error {
	matchID := newMatchID()

	idx := rand.Perm(len(players))
	captains := [2]string{players[idx[0]], players[idx[1]]}
	remaining := pie.Filter(players, func(p string) bool {
		return p != captains[0] && p != captains[1]
	})

	s.store.PutMatch(domain.Match{
		ID:           matchID,
		ChannelID:    ch.Config.ChannelID,
		Participants: append([]string(nil), players...),
		Status:       domain.StatusDrafting,
		CreatedAt:    time.Now(),
	})

	ch.Lock()
	ch.Config.ActiveMatchID = matchID
	ch.Draft = &domain.Draft{
		MatchID:   matchID,
		Captains:  captains,
		Teams:     map[string][]string{captains[0]: {}, captains[1]: {}},
		Remaining: remaining,
		Turn:      captains[0],
		Phase:     domain.PhaseDrafting,
	}
	toVoting := len(remaining) == 0
	if toVoting {
		ch.Draft.Phase = domain.PhaseVoting
		ch.Draft.Turn = ""
	}
	channelID := ch.Config.ChannelID
	ch.Unlock()

	if err := s.persist(ctx); err != nil {
		return err
	}

	_ = s.notify.Notify(ctx, channelID, fmt.Sprintf(
		"🎯 **Draft Started!** (Match ID: `%s`)\nCaptains: <@%s> 🆚 <@%s>\n<@%s> picks first using `/pick`",
		matchID, captains[0], captains[1], captains[0]))

	if toVoting {
		_ = s.notify.Notify(ctx, channelID, "🏁 Draft complete! Time to vote for gamemode!")
		s.votes.OpenGamemode(ctx, ch)
	}
	return nil
}

type PickResult struct {
	Target    string
	NextTurn  string
	Completed bool
}

// Pick procesa un pick del capitán en turno y alterna el turno. Cuando no
// queda nadie por draftear, pasa a la fase de votación.
func (s *DraftService) Pick(ctx context.Context, channelID, actor, target string) (PickResult, error) {
	ch, ok := s.store.Channel(channelID)
	if !ok {
		return PickResult{}, ErrNoActiveDraft
	}

	ch.Lock()
	d := ch.Draft
	if d == nil || d.Phase != domain.PhaseDrafting {
		ch.Unlock()
		return PickResult{}, ErrNoActiveDraft
	}
	if actor != d.Turn {
		ch.Unlock()
		return PickResult{}, ErrNotYourTurn
	}
	if !slices.Contains(d.Remaining, target) {
		ch.Unlock()
		return PickResult{}, ErrPlayerUnavailable
	}

	d.Teams[actor] = append(d.Teams[actor], target)
	d.Remaining = pie.Filter(d.Remaining, func(p string) bool { return p != target })
	d.Turn = d.OtherCaptain(actor)
	s.store.Touch(actor, time.Now())

	res := PickResult{Target: target, NextTurn: d.Turn, Completed: len(d.Remaining) == 0}
	if res.Completed {
		d.Phase = domain.PhaseVoting
		d.Turn = ""
	}
	ch.Unlock()

	// El draft no es durable: un pick no persiste nada.
	if res.Completed {
		_ = s.notify.Notify(ctx, channelID, "🏁 Draft complete! Time to vote for gamemode!")
		s.votes.OpenGamemode(ctx, ch)
	}
	return res, nil
}

type ForceStartResult struct {
	MatchID string
	Teams   map[string][]string
}

// ForceStart saltea los picks: baraja la cola, la parte en dos mitades y el
// primero de cada mitad queda de capitán. Entra directo a la votación.
func (s *DraftService) ForceStart(ctx context.Context, channelID string) (ForceStartResult, error) {
	ch, ok := s.store.Channel(channelID)
	if !ok {
		return ForceStartResult{}, ErrChannelNotRegistered
	}

	ch.Lock()
	if len(ch.Queue) == 0 {
		ch.Unlock()
		return ForceStartResult{}, ErrQueueEmpty
	}
	players := append([]string(nil), ch.Queue...)
	ch.Queue = nil
	s.store.ClearQueuedIn(players...)

	rand.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })
	half := len(players) / 2
	team1, team2 := players[:half], players[half:]
	captains := [2]string{team1[0], team2[0]}

	matchID := newMatchID()
	ch.Config.ActiveMatchID = matchID
	ch.Draft = &domain.Draft{
		MatchID:  matchID,
		Captains: captains,
		Teams: map[string][]string{
			captains[0]: append([]string(nil), team1[1:]...),
			captains[1]: append([]string(nil), team2[1:]...),
		},
		Phase: domain.PhaseVoting,
	}
	res := ForceStartResult{MatchID: matchID, Teams: map[string][]string{
		captains[0]: append([]string(nil), team1[1:]...),
		captains[1]: append([]string(nil), team2[1:]...),
	}}
	ch.Unlock()

	s.store.PutMatch(domain.Match{
		ID:           matchID,
		ChannelID:    channelID,
		Participants: append([]string(nil), players...),
		Status:       domain.StatusDrafting,
		CreatedAt:    time.Now(),
	})

	if err := s.persist(ctx); err != nil {
		return res, err
	}

	_ = s.notify.Notify(ctx, channelID, fmt.Sprintf(
		"⚡ **Forced Start! Random Teams Assigned:**\n🟥 Team 1: %s\n🟦 Team 2: %s\n➡️ Moving to gamemode voting...",
		mentionList(team1), mentionList(team2)))
	s.votes.OpenGamemode(ctx, ch)
	return res, nil
}

// Substitute cambia un jugador por otro en una partida en drafting o active.
// Si el que sale era capitán, su equipo se re-indexa bajo el entrante; el
// turno del draft no se reasigna.
func (s *DraftService) Substitute(ctx context.Context, matchID, userOut, userIn string) error {
	m, ok := s.store.Match(matchID)
	if !ok {
		return ErrMatchNotFound
	}
	if m.Status == domain.StatusFinished {
		return ErrMatchNotOpen
	}
	if !slices.Contains(m.Participants, userOut) {
		return ErrUserNotInMatch
	}
	if slices.Contains(m.Participants, userIn) {
		return ErrUserAlreadyInMatch
	}

	ch, chOK := s.store.Channel(m.ChannelID)
	if chOK {
		ch.Lock()
	}

	s.store.UpdateMatch(matchID, func(mm *domain.Match) {
		for i, u := range mm.Participants {
			if u == userOut {
				mm.Participants[i] = userIn
			}
		}
		substituteInTeams(mm.Teams, userOut, userIn)
	})

	if chOK {
		if d := ch.Draft; d != nil && d.MatchID == matchID {
			substituteInTeams(d.Teams, userOut, userIn)
			for i, u := range d.Remaining {
				if u == userOut {
					d.Remaining[i] = userIn
				}
			}
			for i, c := range d.Captains {
				if c == userOut {
					d.Captains[i] = userIn
				}
			}
			// el entrante hereda el turno, el orden de picks no cambia
			if d.Turn == userOut {
				d.Turn = userIn
			}
		}
		ch.Unlock()
	}

	return s.persist(ctx)
}

func substituteInTeams(teams map[string][]string, userOut, userIn string) {
	if teams == nil {
		return
	}
	for _, members := range teams {
		for i, u := range members {
			if u == userOut {
				members[i] = userIn
			}
		}
	}
	if team, ok := teams[userOut]; ok {
		teams[userIn] = team
		delete(teams, userOut)
	}
}

// AllParticipants aplana equipos ∪ capitanes del draft activo.
func (s *DraftService) AllParticipants(channelID string) []string {
	ch, ok := s.store.Channel(channelID)
	if !ok {
		return nil
	}
	ch.Lock()
	defer ch.Unlock()
	if ch.Draft == nil {
		return nil
	}
	return ch.Draft.AllParticipants()
}

// Teams resuelve los equipos para mostrar: el draft vivo del canal si lo
// hay, o el snapshot guardado en la partida (matchID opcional).
func (s *DraftService) Teams(channelID, matchID string) (map[string][]string, string, error) {
	if matchID != "" {
		m, ok := s.store.Match(matchID)
		if !ok {
			return nil, "", ErrMatchNotFound
		}
		if ch, ok := s.store.Channel(m.ChannelID); ok {
			ch.Lock()
			if d := ch.Draft; d != nil && d.MatchID == matchID {
				teams := liveTeams(d)
				ch.Unlock()
				return teams, matchID, nil
			}
			ch.Unlock()
		}
		if m.Teams == nil {
			return nil, "", ErrNoActiveDraft
		}
		return m.Teams, matchID, nil
	}

	ch, ok := s.store.Channel(channelID)
	if !ok {
		return nil, "", ErrChannelNotRegistered
	}
	ch.Lock()
	if d := ch.Draft; d != nil {
		teams := liveTeams(d)
		id := d.MatchID
		ch.Unlock()
		return teams, id, nil
	}
	ch.Unlock()

	// sin draft vivo: la última partida del canal
	recent := s.store.RecentMatches(0)
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].ChannelID == channelID && recent[i].Teams != nil {
			return recent[i].Teams, recent[i].ID, nil
		}
	}
	return nil, "", ErrNoActiveDraft
}

func liveTeams(d *domain.Draft) map[string][]string {
	out := make(map[string][]string, len(d.Teams))
	for c, members := range d.Teams {
		out[c] = append([]string(nil), members...)
	}
	return out
}

func mentionList(ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = fmt.Sprintf("<@%s>", id)
	}
	return strings.Join(out, ", ")
}
