package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jose-valero/scrim-queue-bot/internal/app/state"
	"github.com/jose-valero/scrim-queue-bot/internal/domain"
)

type VoteService struct {
	persister
	notify   Notifier
	duration time.Duration
}

func NewVoteService(store *state.Store, snap SnapshotStore, notify Notifier) *VoteService {
	return &VoteService{
		persister: persister{store: store, snap: snap},
		notify:    notify,
		duration:  domain.VoteDuration,
	}
}

// OpenGamemode arranca la cadena de votación: gamemode → región → mapa.
// Los elegibles quedan congelados al abrir la primera etapa.
func (s *VoteService) OpenGamemode(ctx context.Context, ch *state.Channel) {
	ch.Lock()
	send := s.openLocked(ctx, ch, state.StageGamemode, domain.Gamemodes, "", "")
	ch.Unlock()
	send()
}

// openLocked asume el lock del canal tomado. Devuelve el envío del prompt
// para que el caller lo dispare después de soltar el lock: nada de red
// dentro de la sección crítica del canal.
func (s *VoteService) openLocked(ctx context.Context, ch *state.Channel, stage state.VoteStage, options []string, gamemode, region string) func() {
	var eligible []string
	if d := ch.Draft; d != nil {
		eligible = d.AllParticipants()
	}

	vs := state.NewVoteSession(stage, options, eligible, time.Now().Add(s.duration))
	vs.Gamemode = gamemode
	vs.Region = region
	ch.Vote = vs

	channelID := ch.Config.ChannelID
	// el timer sobrevive a la interacción que abrió la etapa
	tctx := context.WithoutCancel(ctx)
	vs.ArmTimer(s.duration, func() { s.timeout(tctx, ch, vs) })

	var prompt string
	switch stage {
	case state.StageGamemode:
		prompt = "🎮 **Vote for a Gamemode!** (10s or until all votes in)"
	case state.StageRegion:
		prompt = "🌎 **Vote for a Region!** (10s or until all votes in)"
	case state.StageMap:
		prompt = fmt.Sprintf("🗺️ **Vote for a Map!** *(Gamemode: %s)* (10s or until all votes in)", gamemode)
	}
	return func() {
		if err := s.notify.NotifyVote(ctx, channelID, string(stage), prompt, options); err != nil {
			log.Printf("⚠️ vote notify (%s): %v", stage, err)
		}
	}
}

// Cast registra un voto en la etapa indicada. Un botón viejo (de otra etapa
// o de una partida anterior) no cuenta. Si con este voto ya votaron todos
// los elegibles, cierra la etapa de inmediato; el cierre anticipado y el del
// timer compiten por el CAS de la sesión, gana exactamente uno.
func (s *VoteService) Cast(ctx context.Context, channelID, userID, stage, choice string) error {
	ch, ok := s.store.Channel(channelID)
	if !ok {
		return ErrNoActiveVote
	}

	ch.Lock()
	vs := ch.Vote
	if vs == nil || vs.Closed() || string(vs.Stage) != stage {
		ch.Unlock()
		return ErrNoActiveVote
	}
	if !vs.Eligible[userID] {
		ch.Unlock()
		return ErrNotEligible
	}
	if vs.Voted[userID] {
		ch.Unlock()
		return ErrAlreadyVoted
	}
	if _, ok := vs.Tally[choice]; !ok {
		ch.Unlock()
		return ErrUnknownOption
	}

	vs.Tally[choice]++
	vs.Voted[userID] = true
	s.store.Touch(userID, time.Now())

	var after []func()
	needPersist := false
	if vs.AllVoted() && vs.Close() {
		vs.StopTimer()
		after, needPersist = s.closeLocked(ctx, ch, vs)
	}
	ch.Unlock()

	for _, send := range after {
		send()
	}
	if needPersist {
		return s.persist(ctx)
	}
	return nil
}

// timeout corre en el goroutine del timer. Puede perder la carrera contra el
// cierre anticipado, o llegar cuando ya abrió otra sesión: en ambos casos no
// hace nada.
func (s *VoteService) timeout(ctx context.Context, ch *state.Channel, vs *state.VoteSession) {
	ch.Lock()
	if ch.Vote != vs || !vs.Close() {
		ch.Unlock()
		return
	}
	after, needPersist := s.closeLocked(ctx, ch, vs)
	ch.Unlock()

	for _, send := range after {
		send()
	}
	if needPersist {
		if err := s.persist(ctx); err != nil {
			log.Printf("⚠️ persist tras cierre de votación: %v", err)
		}
	}
}

// closeLocked resuelve la etapa cerrada y encadena la siguiente, o finaliza
// la partida si era la de mapa. Asume lock tomado y sesión ya cerrada.
// Los mensajes salen como closures para enviar tras soltar el lock;
// needPersist indica si el caller debe persistir (también fuera del lock).
func (s *VoteService) closeLocked(ctx context.Context, ch *state.Channel, vs *state.VoteSession) (after []func(), needPersist bool) {
	winner, ok := vs.Winner()
	if !ok {
		// nadie votó: gana la primera opción declarada
		winner = vs.Options[0]
	}
	channelID := ch.Config.ChannelID
	after = append(after, func() {
		_ = s.notify.Notify(ctx, channelID, fmt.Sprintf("🗳️ Voting has ended! Winning option: **%s**", winner))
	})

	switch vs.Stage {
	case state.StageGamemode:
		return append(after, s.openLocked(ctx, ch, state.StageRegion, domain.Regions, winner, "")), false
	case state.StageRegion:
		return append(after, s.openLocked(ctx, ch, state.StageMap, domain.MapsFor(vs.Gamemode), vs.Gamemode, winner)), false
	}

	// etapa de mapa: la partida arranca
	ch.Vote = nil
	// si alguien se coló en la cola durante la votación, afuera: la partida
	// activa no arrastra cola
	if len(ch.Queue) > 0 {
		s.store.ClearQueuedIn(ch.Queue...)
		ch.Queue = nil
	}
	d := ch.Draft
	matchID := ch.Config.ActiveMatchID

	var teams map[string][]string
	var participants []string
	if d != nil {
		teams = map[string][]string{
			d.Captains[0]: append([]string{d.Captains[0]}, d.Teams[d.Captains[0]]...),
			d.Captains[1]: append([]string{d.Captains[1]}, d.Teams[d.Captains[1]]...),
		}
		participants = d.AllParticipants()
	}

	s.store.UpdateMatch(matchID, func(m *domain.Match) {
		m.Status = domain.StatusActive
		m.Gamemode = vs.Gamemode
		m.Region = vs.Region
		m.Map = winner
		m.Teams = teams
	})

	p := Payload{
		Title: fmt.Sprintf("🎮 Game Started! (ID: %s)", matchID),
		Fields: []Field{
			{Name: "🗺️ Map", Value: winner},
			{Name: "🌎 Region", Value: vs.Region},
			{Name: "🎮 Gamemode", Value: vs.Gamemode},
			{Name: "🆔 Match ID", Value: fmt.Sprintf("`%s`", matchID)},
		},
	}
	if d != nil {
		p.Fields = append([]Field{
			{Name: "🟥 Team 1", Value: mentionList(teams[d.Captains[0]])},
			{Name: "🟦 Team 2", Value: mentionList(teams[d.Captains[1]])},
		}, p.Fields...)
	}
	after = append(after, func() {
		_ = s.notify.NotifyPayload(ctx, channelID, p)
		for _, u := range participants {
			s.notify.Direct(ctx, u, p)
		}
	})
	return after, true
}
