package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/scrim-queue-bot/internal/app/state"
	"github.com/jose-valero/scrim-queue-bot/internal/domain"
)

// arma un canal de capacidad 2 para que la cola llena salte directo a votar.
func startVoting(t *testing.T, f *fixture) []string {
	t.Helper()
	f.registerChannel(t, "ch1", 2)
	ctx := context.Background()
	for _, u := range []string{"u1", "u2"} {
		_, err := f.queue.Join(ctx, "ch1", u)
		require.NoError(t, err)
	}
	require.Equal(t, []string{"gamemode"}, f.notify.voteStages())
	return []string{"u1", "u2"}
}

func TestCastValidations(t *testing.T) {
	f := newFixture()
	f.votes.duration = time.Minute // que no cierre solo durante el test
	startVoting(t, f)
	ctx := context.Background()

	// sólo participantes
	err := f.votes.Cast(ctx, "ch1", "intruso", "gamemode", domain.GamemodeKOTC)
	assert.ErrorIs(t, err, ErrNotEligible)

	// opción inexistente
	err = f.votes.Cast(ctx, "ch1", "u1", "gamemode", "Ranked")
	assert.ErrorIs(t, err, ErrUnknownOption)

	// botón de otra etapa
	err = f.votes.Cast(ctx, "ch1", "u1", "map", "Bastion")
	assert.ErrorIs(t, err, ErrNoActiveVote)

	require.NoError(t, f.votes.Cast(ctx, "ch1", "u1", "gamemode", domain.GamemodeKOTC))

	// doble voto
	err = f.votes.Cast(ctx, "ch1", "u1", "gamemode", domain.GamemodeClassic)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	// canal sin votación
	err = f.votes.Cast(ctx, "ch2", "u1", "gamemode", domain.GamemodeKOTC)
	assert.ErrorIs(t, err, ErrNoActiveVote)
}

func TestAllVotedClosesEarlyAndChainsStages(t *testing.T) {
	f := newFixture()
	f.votes.duration = time.Minute
	startVoting(t, f)
	ctx := context.Background()

	// gamemode
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u1", "gamemode", domain.GamemodeKOTC))
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u2", "gamemode", domain.GamemodeKOTC))
	require.Equal(t, []string{"gamemode", "region"}, f.notify.voteStages())

	// un botón viejo de la etapa cerrada ya no cuenta
	err := f.votes.Cast(ctx, "ch1", "u1", "gamemode", domain.GamemodeClassic)
	assert.ErrorIs(t, err, ErrNoActiveVote)

	// región
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u1", "region", "US East"))
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u2", "region", "US West"))
	require.Equal(t, []string{"gamemode", "region", "map"}, f.notify.voteStages())

	// los mapas ofrecidos son los del gamemode ganador
	last, ok := f.notify.lastVote()
	require.True(t, ok)
	assert.Equal(t, domain.MapsFor(domain.GamemodeKOTC), last.Options)

	// mapa: cierra la cadena y arranca la partida
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u1", "map", "Bastion"))
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u2", "map", "Bastion"))

	ch, _ := f.store.Channel("ch1")
	ch.Lock()
	matchID := ch.Config.ActiveMatchID
	assert.Nil(t, ch.Vote)
	ch.Unlock()

	m, found := f.store.Match(matchID)
	require.True(t, found)
	assert.Equal(t, domain.StatusActive, m.Status)
	assert.Equal(t, domain.GamemodeKOTC, m.Gamemode)
	assert.Equal(t, "Bastion", m.Map)
	// empate en región: gana la primera declarada entre las votadas
	assert.Contains(t, []string{"US West", "US East"}, m.Region)
	require.NotNil(t, m.Teams)

	// DM a cada participante
	f.notify.mu.Lock()
	defer f.notify.mu.Unlock()
	assert.Equal(t, 1, f.notify.dms["u1"])
	assert.Equal(t, 1, f.notify.dms["u2"])
}

func TestRegionTieBreakFirstDeclared(t *testing.T) {
	f := newFixture()
	f.votes.duration = time.Minute
	startVoting(t, f)
	ctx := context.Background()

	require.NoError(t, f.votes.Cast(ctx, "ch1", "u1", "gamemode", domain.GamemodeClassic))
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u2", "gamemode", domain.GamemodeClassic))

	// empate 1-1: el orden de declaración manda
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u1", "region", domain.Regions[1]))
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u2", "region", domain.Regions[0]))

	require.NoError(t, f.votes.Cast(ctx, "ch1", "u1", "map", "Castle"))
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u2", "map", "Castle"))

	ch, _ := f.store.Channel("ch1")
	ch.Lock()
	matchID := ch.Config.ActiveMatchID
	ch.Unlock()
	m, _ := f.store.Match(matchID)
	assert.Equal(t, domain.Regions[0], m.Region)
}

func TestVoteTimeoutClosesStage(t *testing.T) {
	f := newFixture()
	f.votes.duration = 40 * time.Millisecond
	startVoting(t, f)
	ctx := context.Background()

	require.NoError(t, f.votes.Cast(ctx, "ch1", "u1", "gamemode", domain.GamemodeKOTC))

	// u2 nunca vota: el timer cierra y encadena la región
	require.Eventually(t, func() bool {
		return len(f.notify.voteStages()) >= 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "region", f.notify.voteStages()[1])
}

func TestNobodyVotesDefaultsToFirstOption(t *testing.T) {
	f := newFixture()
	f.votes.duration = 30 * time.Millisecond
	startVoting(t, f)

	// sin votos en ninguna etapa: la cadena igual termina con defaults
	require.Eventually(t, func() bool {
		ch, _ := f.store.Channel("ch1")
		ch.Lock()
		defer ch.Unlock()
		if ch.Vote != nil || ch.Config.ActiveMatchID == "" {
			return false
		}
		m, ok := f.store.Match(ch.Config.ActiveMatchID)
		return ok && m.Status == domain.StatusActive
	}, 2*time.Second, 10*time.Millisecond)

	ch, _ := f.store.Channel("ch1")
	ch.Lock()
	matchID := ch.Config.ActiveMatchID
	ch.Unlock()
	m, _ := f.store.Match(matchID)
	assert.Equal(t, domain.Gamemodes[0], m.Gamemode)
	assert.Equal(t, domain.Regions[0], m.Region)
	assert.Equal(t, domain.MapsFor(m.Gamemode)[0], m.Map)
}

func TestVoteCloseRaceClosesOnce(t *testing.T) {
	f := newFixture()
	// duración cortísima para que el timer compita con el último voto
	f.votes.duration = 5 * time.Millisecond
	startVoting(t, f)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, u := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_ = f.votes.Cast(ctx, "ch1", u, "gamemode", domain.GamemodeKOTC)
		}(u)
	}
	wg.Wait()

	// pase lo que pase, la etapa de gamemode cierra exactamente una vez:
	// nunca hay dos prompts de región
	require.Eventually(t, func() bool {
		stages := f.notify.voteStages()
		return len(stages) >= 2 && stages[1] == "region"
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	regions := 0
	for _, st := range f.notify.voteStages() {
		if st == "region" {
			regions++
		}
	}
	assert.Equal(t, 1, regions)
}

func TestGameStartEvictsMidVoteJoiner(t *testing.T) {
	f := newFixture()
	f.votes.duration = time.Minute
	startVoting(t, f)
	ctx := context.Background()

	// u3 se cuela en la cola con la votación en curso
	_, err := f.queue.Join(ctx, "ch1", "u3")
	require.NoError(t, err)

	require.NoError(t, f.votes.Cast(ctx, "ch1", "u1", "gamemode", domain.GamemodeKOTC))
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u2", "gamemode", domain.GamemodeKOTC))
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u1", "region", "US West"))
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u2", "region", "US West"))
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u1", "map", "Helix"))
	require.NoError(t, f.votes.Cast(ctx, "ch1", "u2", "map", "Helix"))

	// la partida arranca con la cola limpia
	users, err := f.queue.List("ch1")
	require.NoError(t, err)
	assert.Empty(t, users)

	// y u3 queda libre para encolarse de nuevo
	assert.Equal(t, "", f.store.QueuedIn("u3"))
	_, err = f.queue.Join(ctx, "ch1", "u3")
	require.NoError(t, err)
}

func TestStaleMapButtonFromPreviousMatch(t *testing.T) {
	f := newFixture()
	f.votes.duration = time.Minute
	startVoting(t, f)
	ctx := context.Background()

	// ya está abierta la etapa de gamemode: un botón de mapa guardado de
	// una partida anterior no registra nada
	err := f.votes.Cast(ctx, "ch1", "u1", "map", "Bastion")
	assert.ErrorIs(t, err, ErrNoActiveVote)

	ch, _ := f.store.Channel("ch1")
	ch.Lock()
	vs := ch.Vote
	ch.Unlock()
	require.NotNil(t, vs)
	assert.False(t, vs.Voted["u1"])
}

// reentrantNotifier vota apenas le llega el prompt de región, como un
// usuario que aprieta el botón en cuanto aparece.
type reentrantNotifier struct {
	*fakeNotifier
	votes *VoteService
	user  string
	once  sync.Once
}

func (r *reentrantNotifier) NotifyVote(ctx context.Context, channelID, stage, content string, options []string) error {
	_ = r.fakeNotifier.NotifyVote(ctx, channelID, stage, content, options)
	if stage == "region" {
		r.once.Do(func() {
			_ = r.votes.Cast(ctx, channelID, r.user, stage, options[0])
		})
	}
	return nil
}

func TestVotePromptAllowsImmediateCast(t *testing.T) {
	store := state.NewStore()
	snap := &memSnap{}
	rn := &reentrantNotifier{fakeNotifier: newFakeNotifier(), user: "u1"}

	votes := NewVoteService(store, snap, rn)
	rn.votes = votes
	votes.duration = time.Minute
	drafts := NewDraftService(store, snap, rn, votes)
	queue := NewQueueService(store, snap, rn, drafts)
	monitor := NewInactivityService(store, snap, rn)
	chans := NewChannelService(store, snap, monitor)

	ctx := context.Background()
	require.NoError(t, chans.Register(ctx, "ch1"))
	monitor.Stop("ch1")
	require.NoError(t, chans.SetCapacity(ctx, "ch1", 2))
	for _, u := range []string{"u1", "u2"} {
		_, err := queue.Join(ctx, "ch1", u)
		require.NoError(t, err)
	}

	// el cierre de gamemode abre la región; el voto inmediato desde el
	// propio prompt no puede trabarse contra el lock del canal
	require.NoError(t, votes.Cast(ctx, "ch1", "u1", "gamemode", domain.GamemodeKOTC))
	require.NoError(t, votes.Cast(ctx, "ch1", "u2", "gamemode", domain.GamemodeKOTC))

	ch, _ := store.Channel("ch1")
	ch.Lock()
	vs := ch.Vote
	ch.Unlock()
	require.NotNil(t, vs)
	assert.Equal(t, state.StageRegion, vs.Stage)
	assert.True(t, vs.Voted["u1"])
}
