package state

import (
	"sync/atomic"
	"time"
)

type VoteStage string

const (
	StageGamemode VoteStage = "gamemode"
	StageRegion   VoteStage = "region"
	StageMap      VoteStage = "map"
)

// VoteSession es una votación de opción única con deadline. Vive solo durante
// un ballot; el cierre compite entre el timer y el camino "todos votaron" y
// solo uno puede ganar (guardia atómica Close).
type VoteSession struct {
	Stage    VoteStage
	Options  []string
	Tally    map[string]int
	Voted    map[string]bool
	Eligible map[string]bool
	Deadline time.Time

	// Resultados de etapas anteriores, arrastrados por el pipeline.
	Gamemode string
	Region   string

	closed atomic.Bool
	timer  *time.Timer
}

func NewVoteSession(stage VoteStage, options, eligible []string, deadline time.Time) *VoteSession {
	v := &VoteSession{
		Stage:    stage,
		Options:  append([]string(nil), options...),
		Tally:    make(map[string]int, len(options)),
		Voted:    make(map[string]bool),
		Eligible: make(map[string]bool, len(eligible)),
		Deadline: deadline,
	}
	for _, o := range options {
		v.Tally[o] = 0
	}
	for _, u := range eligible {
		v.Eligible[u] = true
	}
	return v
}

// Close marca la sesión como cerrada. Devuelve true solo para el primer
// caller; el perdedor de la carrera (timer vs todos-votaron) ve false.
func (v *VoteSession) Close() bool {
	return v.closed.CompareAndSwap(false, true)
}

func (v *VoteSession) Closed() bool { return v.closed.Load() }

func (v *VoteSession) ArmTimer(d time.Duration, fn func()) {
	v.timer = time.AfterFunc(d, fn)
}

func (v *VoteSession) StopTimer() {
	if v.timer != nil {
		v.timer.Stop()
	}
}

// AllVoted indica si el set de votantes cubre a todos los elegibles.
// Con eligible vacío nunca se dispara el cierre anticipado.
func (v *VoteSession) AllVoted() bool {
	return len(v.Eligible) > 0 && len(v.Voted) >= len(v.Eligible)
}

// Winner devuelve la opción con más votos. Los empates se resuelven a favor
// de la primera opción declarada (orden del ballot). ok=false si nadie votó
// y no había elegibles: la etapa se salta con un default.
func (v *VoteSession) Winner() (string, bool) {
	if len(v.Voted) == 0 && len(v.Eligible) == 0 {
		return "", false
	}
	best := v.Options[0]
	for _, opt := range v.Options[1:] {
		if v.Tally[opt] > v.Tally[best] {
			best = opt
		}
	}
	return best, true
}
