package service

import (
	"context"
	"sync"

	"github.com/jose-valero/scrim-queue-bot/internal/app/state"
)

// fakeNotifier acumula todo lo que el bot "dice" para poder asertar sobre ello.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	payloads []Payload
	votes    []voteCall
	dms      map[string]int
}

type voteCall struct {
	ChannelID string
	Stage     string
	Options   []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{dms: map[string]int{}}
}

func (f *fakeNotifier) Notify(ctx context.Context, channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, content)
	return nil
}

func (f *fakeNotifier) NotifyPayload(ctx context.Context, channelID string, p Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	return nil
}

func (f *fakeNotifier) NotifyVote(ctx context.Context, channelID, stage, content string, options []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes = append(f.votes, voteCall{ChannelID: channelID, Stage: stage, Options: options})
	return nil
}

func (f *fakeNotifier) Direct(ctx context.Context, userID string, p Payload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dms[userID]++
}

func (f *fakeNotifier) voteStages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.votes))
	for i, v := range f.votes {
		out[i] = v.Stage
	}
	return out
}

func (f *fakeNotifier) lastVote() (voteCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.votes) == 0 {
		return voteCall{}, false
	}
	return f.votes[len(f.votes)-1], true
}

// memSnap guarda el último snapshot en memoria y cuenta los Save.
type memSnap struct {
	mu    sync.Mutex
	last  state.Snapshot
	saves int
	fail  error
}

func (m *memSnap) Save(ctx context.Context, snap state.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.last = snap
	m.saves++
	return nil
}

func (m *memSnap) Load(ctx context.Context) (state.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, nil
}

func (m *memSnap) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// fixture arma el grafo completo de servicios sobre un store limpio.
type fixture struct {
	store   *state.Store
	notify  *fakeNotifier
	snap    *memSnap
	queue   *QueueService
	drafts  *DraftService
	votes   *VoteService
	matches *MatchService
	bans    *BanService
	monitor *InactivityService
	chans   *ChannelService
}

func newFixture() *fixture {
	store := state.NewStore()
	notify := newFakeNotifier()
	snap := &memSnap{}

	votes := NewVoteService(store, snap, notify)
	drafts := NewDraftService(store, snap, notify, votes)
	f := &fixture{
		store:   store,
		notify:  notify,
		snap:    snap,
		votes:   votes,
		drafts:  drafts,
		queue:   NewQueueService(store, snap, notify, drafts),
		matches: NewMatchService(store, snap, notify),
		bans:    NewBanService(store, snap, notify),
	}
	f.monitor = NewInactivityService(store, snap, notify)
	f.chans = NewChannelService(store, snap, f.monitor)
	return f
}

func (f *fixture) registerChannel(t interface{ Fatalf(string, ...any) }, channelID string, capacity int) {
	ctx := context.Background()
	if err := f.chans.Register(ctx, channelID); err != nil {
		t.Fatalf("register %s: %v", channelID, err)
	}
	f.monitor.Stop(channelID)
	if capacity > 0 {
		if err := f.chans.SetCapacity(ctx, channelID, capacity); err != nil {
			t.Fatalf("set capacity: %v", err)
		}
	}
}
