package domain

import "time"

// Defaults del sistema (se pueden pisar por canal o por admin).
const (
	DefaultCapacity       = 10
	MinCapacity           = 2
	MaxCapacity           = 12
	DefaultWinScore       = 10
	LossPenalty           = 10
	DefaultTimeoutSeconds = 300
	MinTimeoutSeconds     = 60
	VoteDuration          = 10 * time.Second
)

// ChannelConfig es la configuración de un canal registrado para colas.
type ChannelConfig struct {
	ChannelID      string
	Capacity       int
	TimeoutSeconds int
	ActiveMatchID  string // vacío si no hay partida en curso
}

type MatchStatus string

const (
	StatusDrafting MatchStatus = "drafting"
	StatusActive   MatchStatus = "active"
	StatusFinished MatchStatus = "finished"
)

// Match es el registro persistente de una partida, desde el draft hasta el cierre.
// Status solo avanza: drafting → active → finished.
type Match struct {
	ID           string
	ChannelID    string
	Participants []string
	Status       MatchStatus
	Map          string
	Region       string
	Gamemode     string
	Winner       string // capitán ganador, vacío hasta el cierre
	Teams        map[string][]string
	CreatedAt    time.Time
}

type DraftPhase string

const (
	PhaseDrafting DraftPhase = "drafting"
	PhaseVoting   DraftPhase = "voting"
)

// Draft es el estado efímero del picking por capitanes. No se persiste:
// si el proceso cae a mitad de draft, la partida se rearma desde la cola.
type Draft struct {
	MatchID   string
	Captains  [2]string
	Teams     map[string][]string // capitán → picks (sin incluirse a sí mismo)
	Remaining []string
	Turn      string
	Phase     DraftPhase
}

// AllParticipants aplana equipos ∪ capitanes, capitanes primero.
func (d *Draft) AllParticipants() []string {
	out := make([]string, 0, len(d.Teams)*2)
	out = append(out, d.Captains[0], d.Captains[1])
	for _, c := range d.Captains {
		out = append(out, d.Teams[c]...)
	}
	return out
}

// OtherCaptain devuelve el capitán contrario, o "" si id no es capitán.
func (d *Draft) OtherCaptain(id string) string {
	switch id {
	case d.Captains[0]:
		return d.Captains[1]
	case d.Captains[1]:
		return d.Captains[0]
	}
	return ""
}

// --- Catálogo del juego (gamemodes, regiones y mapas por gamemode) ---

const (
	GamemodeKOTC    = "KOTC"
	GamemodeClassic = "Classic"
)

var (
	Gamemodes = []string{GamemodeKOTC, GamemodeClassic}
	Regions   = []string{"US West", "US East", "US Central"}

	MapsByGamemode = map[string][]string{
		GamemodeKOTC:    {"Cluckgrounds", "Bastion", "2 Towers", "Helix"},
		GamemodeClassic: {"Castle", "Bastion", "Growler", "Road"},
	}
)

// MapsFor devuelve el pool de mapas del gamemode; cae al pool Classic si
// llega un gamemode desconocido (no debería pasar: las opciones son cerradas).
func MapsFor(gamemode string) []string {
	if maps, ok := MapsByGamemode[gamemode]; ok {
		return maps
	}
	return MapsByGamemode[GamemodeClassic]
}
