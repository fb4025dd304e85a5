package entity

import (
	"errors"
	"time"
)

var ErrUnknownOutcome = errors.New("unknown outcome")

// Movement - a single applied move. Movements are append-only and never change after creation.
type Movement struct {
	ID        string    `json:"id,omitempty"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Player    Player    `json:"player"`
	CreatedAt time.Time `json:"created_at"`
}

// Game - a board, its movement history and the last known winner.
// Winner is a cache of the board state and is rewritten every time the board changes.
type Game struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Board     Board      `json:"board"`
	Winner    Outcome    `json:"winner"`
	Movements []Movement `json:"movements"`
}

func NewGame(id string, createdAt time.Time) *Game {
	return &Game{
		ID:        id,
		CreatedAt: createdAt,
		Board:     NewBoard(),
		Winner:    OutcomeNone,
		Movements: []Movement{},
	}
}

func (that *Game) IsFinished() bool {
	return that.Winner.IsTerminal()
}

func (that *Game) AddMovement(movement Movement) {
	that.Movements = append(that.Movements, movement)
}

// LastMovement - returns the most recent movement, if any.
func (that *Game) LastMovement() (Movement, bool) {
	if len(that.Movements) == 0 {
		return Movement{}, false
	}
	return that.Movements[len(that.Movements)-1], true
}

// Clone - returns a deep copy, so callers can mutate it without touching the original.
func (that *Game) Clone() *Game {
	clone := *that
	clone.Movements = make([]Movement, len(that.Movements))
	copy(clone.Movements, that.Movements)
	return &clone
}
