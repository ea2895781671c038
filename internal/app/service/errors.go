package service

import (
	"errors"
	"fmt"
	"time"
)

// Taxonomía de fallos del core. Los servicios devuelven errores tipados y el
// adapter los traduce a mensajes para el usuario; nada de strings acá arriba.
var (
	// validación (se rechaza antes de mutar nada)
	ErrBadCapacity = errors.New("capacity must be an even number between 2 and 12")
	ErrBadTimeout  = errors.New("timeout must be at least 60 seconds")
	ErrBadAmount   = errors.New("amount must be a non-negative integer")
	ErrBadAction   = errors.New("action must be add, subtract or set")

	// conflictos de estado (estado intacto tras el rechazo)
	ErrNotYourTurn        = errors.New("not your turn to pick")
	ErrPlayerUnavailable  = errors.New("player not available to pick")
	ErrAlreadyFinished    = errors.New("match already finished")
	ErrMatchNotOpen       = errors.New("match is not in draft or active phase")
	ErrNotACaptain        = errors.New("user is not a captain in this match")
	ErrUserNotInMatch     = errors.New("user is not in this match")
	ErrUserAlreadyInMatch = errors.New("user is already in this match")
	ErrNotEligible        = errors.New("user is not eligible to vote")
	ErrAlreadyVoted       = errors.New("user already voted in this ballot")
	ErrUnknownOption      = errors.New("unknown vote option")
	ErrQueueEmpty         = errors.New("queue is empty")

	// not-found
	ErrChannelNotRegistered = errors.New("channel not registered for queueing")
	ErrNotQueued            = errors.New("user is not in the queue")
	ErrNoActiveDraft        = errors.New("no active draft in this channel")
	ErrNoActiveVote         = errors.New("no vote in progress")
	ErrNoActiveMatch        = errors.New("no active match in this channel")
	ErrMatchNotFound        = errors.New("match not found")
)

// AlreadyQueuedError distingue si el usuario ya estaba en ESTA cola o en la
// de otro canal (el mensaje al usuario cambia).
type AlreadyQueuedError struct {
	ChannelID string
	Same      bool
}

func (e *AlreadyQueuedError) Error() string {
	if e.Same {
		return "already in this queue"
	}
	return fmt.Sprintf("already queued in channel %s", e.ChannelID)
}

// BannedError lleva cuánto le queda de ban al usuario.
type BannedError struct {
	Remaining time.Duration
}

func (e *BannedError) Error() string {
	return fmt.Sprintf("queue-banned for another %s", e.Remaining.Round(time.Second))
}
