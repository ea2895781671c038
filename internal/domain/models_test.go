package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapsFor(t *testing.T) {
	assert.Equal(t, MapsByGamemode[GamemodeKOTC], MapsFor(GamemodeKOTC))
	// gamemode desconocido cae al pool de Classic
	assert.Equal(t, MapsByGamemode[GamemodeClassic], MapsFor("Ranked"))
}

func TestDraftAllParticipants(t *testing.T) {
	d := &Draft{
		Captains: [2]string{"c1", "c2"},
		Teams: map[string][]string{
			"c1": {"p1"},
			"c2": {"p2", "p3"},
		},
	}

	all := d.AllParticipants()
	assert.Len(t, all, 5)
	assert.Equal(t, "c1", all[0])
	assert.Equal(t, "c2", all[1])
	assert.ElementsMatch(t, []string{"c1", "c2", "p1", "p2", "p3"}, all)
}

func TestOtherCaptain(t *testing.T) {
	d := &Draft{Captains: [2]string{"c1", "c2"}}
	assert.Equal(t, "c2", d.OtherCaptain("c1"))
	assert.Equal(t, "c1", d.OtherCaptain("c2"))
}
