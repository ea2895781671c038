package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseWinsOnlyOnce(t *testing.T) {
	v := NewVoteSession(StageGamemode, []string{"A", "B"}, []string{"u1"}, time.Now())

	var mu sync.Mutex
	wins := 0
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v.Close() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.True(t, v.Closed())
}

func TestAllVoted(t *testing.T) {
	v := NewVoteSession(StageMap, []string{"A"}, []string{"u1", "u2"}, time.Now())
	assert.False(t, v.AllVoted())

	v.Voted["u1"] = true
	assert.False(t, v.AllVoted())
	v.Voted["u2"] = true
	assert.True(t, v.AllVoted())

	// sin elegibles no hay cierre anticipado
	empty := NewVoteSession(StageMap, []string{"A"}, nil, time.Now())
	assert.False(t, empty.AllVoted())
}

func TestWinnerTieBreakByBallotOrder(t *testing.T) {
	v := NewVoteSession(StageRegion, []string{"A", "B", "C"}, []string{"u1", "u2"}, time.Now())
	v.Tally["B"] = 1
	v.Tally["C"] = 1
	v.Voted["u1"] = true
	v.Voted["u2"] = true

	w, ok := v.Winner()
	require.True(t, ok)
	assert.Equal(t, "B", w)
}

func TestWinnerMajority(t *testing.T) {
	v := NewVoteSession(StageRegion, []string{"A", "B"}, []string{"u1", "u2", "u3"}, time.Now())
	v.Tally["A"] = 1
	v.Tally["B"] = 2

	w, ok := v.Winner()
	require.True(t, ok)
	assert.Equal(t, "B", w)
}

func TestWinnerNoEligibleNoVotes(t *testing.T) {
	v := NewVoteSession(StageGamemode, []string{"A", "B"}, nil, time.Now())
	_, ok := v.Winner()
	assert.False(t, ok)
}

func TestStopTimerWithoutArm(t *testing.T) {
	v := NewVoteSession(StageGamemode, []string{"A"}, nil, time.Now())
	v.StopTimer() // no-op sin pánico

	fired := make(chan struct{})
	v.ArmTimer(5*time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer nunca disparó")
	}
}
