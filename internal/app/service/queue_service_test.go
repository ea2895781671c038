package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinKeepsFIFOOrder(t *testing.T) {
	f := newFixture()
	f.registerChannel(t, "ch1", 10)
	ctx := context.Background()

	for _, u := range []string{"u1", "u2", "u3"} {
		_, err := f.queue.Join(ctx, "ch1", u)
		require.NoError(t, err)
	}

	users, err := f.queue.List("ch1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, users)
}

func TestJoinUnregisteredChannel(t *testing.T) {
	f := newFixture()
	_, err := f.queue.Join(context.Background(), "nope", "u1")
	assert.ErrorIs(t, err, ErrChannelNotRegistered)
}

func TestJoinTwiceSameChannel(t *testing.T) {
	f := newFixture()
	f.registerChannel(t, "ch1", 10)
	ctx := context.Background()

	_, err := f.queue.Join(ctx, "ch1", "u1")
	require.NoError(t, err)

	_, err = f.queue.Join(ctx, "ch1", "u1")
	var aq *AlreadyQueuedError
	require.ErrorAs(t, err, &aq)
	assert.True(t, aq.Same)
}

func TestJoinBlockedByOtherChannel(t *testing.T) {
	f := newFixture()
	f.registerChannel(t, "ch1", 10)
	f.registerChannel(t, "ch2", 10)
	ctx := context.Background()

	_, err := f.queue.Join(ctx, "ch1", "u1")
	require.NoError(t, err)

	_, err = f.queue.Join(ctx, "ch2", "u1")
	var aq *AlreadyQueuedError
	require.ErrorAs(t, err, &aq)
	assert.False(t, aq.Same)
	assert.Equal(t, "ch1", aq.ChannelID)

	// después de salir puede entrar a la otra cola
	_, err = f.queue.Leave(ctx, "ch1", "u1")
	require.NoError(t, err)
	_, err = f.queue.Join(ctx, "ch2", "u1")
	assert.NoError(t, err)
}

func TestJoinConcurrentAcrossChannelsSingleQueue(t *testing.T) {
	f := newFixture()
	f.registerChannel(t, "chA", 10)
	f.registerChannel(t, "chB", 10)
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		errs := make([]error, 2)
		start := make(chan struct{})
		var wg sync.WaitGroup
		for j, chID := range []string{"chA", "chB"} {
			wg.Add(1)
			go func(j int, chID string) {
				defer wg.Done()
				<-start
				_, errs[j] = f.queue.Join(ctx, chID, "u1")
			}(j, chID)
		}
		close(start)
		wg.Wait()

		// exactamente un join gana; el otro rebota con AlreadyQueued
		oks := 0
		for _, err := range errs {
			if err == nil {
				oks++
			} else {
				var aq *AlreadyQueuedError
				require.ErrorAs(t, err, &aq)
			}
		}
		require.Equal(t, 1, oks, "round %d", i)

		a, _ := f.queue.List("chA")
		b, _ := f.queue.List("chB")
		require.Equal(t, 1, len(a)+len(b), "round %d: chA=%v chB=%v", i, a, b)

		where := f.store.QueuedIn("u1")
		require.NotEmpty(t, where)
		_, err := f.queue.Leave(ctx, where, "u1")
		require.NoError(t, err)
	}
}

func TestJoinBannedUser(t *testing.T) {
	f := newFixture()
	f.registerChannel(t, "ch1", 10)
	ctx := context.Background()

	f.store.SetBan("u1", time.Now().Add(10*time.Minute))

	_, err := f.queue.Join(ctx, "ch1", "u1")
	var bn *BannedError
	require.ErrorAs(t, err, &bn)
	assert.Greater(t, bn.Remaining, 9*time.Minute)

	// forcejoin ignora el ban
	_, err = f.queue.ForceJoin(ctx, "ch1", "u1")
	assert.NoError(t, err)
}

func TestLeaveNotQueued(t *testing.T) {
	f := newFixture()
	f.registerChannel(t, "ch1", 10)

	_, err := f.queue.Leave(context.Background(), "ch1", "u1")
	assert.ErrorIs(t, err, ErrNotQueued)
}

func TestQueueFullStartsExactlyOneDraft(t *testing.T) {
	f := newFixture()
	f.registerChannel(t, "ch1", 4)
	ctx := context.Background()

	var started int
	for _, u := range []string{"u1", "u2", "u3", "u4"} {
		res, err := f.queue.Join(ctx, "ch1", u)
		require.NoError(t, err)
		if res.DraftStarted {
			started++
		}
	}
	assert.Equal(t, 1, started)

	// la cola quedó vacía y los cuatro liberados del índice global
	users, err := f.queue.List("ch1")
	require.NoError(t, err)
	assert.Empty(t, users)
	for _, u := range []string{"u1", "u2", "u3", "u4"} {
		assert.Empty(t, f.store.QueuedIn(u))
	}

	ch, ok := f.store.Channel("ch1")
	require.True(t, ok)
	ch.Lock()
	defer ch.Unlock()
	require.NotNil(t, ch.Draft)
	assert.NotEmpty(t, ch.Config.ActiveMatchID)
	assert.Len(t, ch.Draft.Remaining, 2)
}

func TestJoinPersistsSnapshot(t *testing.T) {
	f := newFixture()
	f.registerChannel(t, "ch1", 10)
	ctx := context.Background()

	before := f.snap.saveCount()
	_, err := f.queue.Join(ctx, "ch1", "u1")
	require.NoError(t, err)
	assert.Greater(t, f.snap.saveCount(), before)

	snap, err := f.snap.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, snap.Queues["ch1"])
}

func TestJoinFailsWhenPersistFails(t *testing.T) {
	f := newFixture()
	f.registerChannel(t, "ch1", 10)
	f.snap.fail = errors.New("db down")

	_, err := f.queue.Join(context.Background(), "ch1", "u1")
	assert.Error(t, err)
}
