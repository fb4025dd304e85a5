package entity

import (
	"encoding/json"
	"fmt"
)

const BoardSize = 3

type Cell string

const (
	CellEmpty Cell = "."
	CellX     Cell = "X"
	CellO     Cell = "O"
)

func (that Cell) IsEmpty() bool {
	return that == CellEmpty
}

// Player - one of the two sides. X is always the human, O is always the bot.
type Player string

const (
	PlayerX Player = "X"
	PlayerO Player = "O"
)

func (that Player) Cell() Cell {
	if that == PlayerO {
		return CellO
	}
	return CellX
}

func (that Player) IsValid() bool {
	return that == PlayerX || that == PlayerO
}

type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeX    Outcome = "X"
	OutcomeO    Outcome = "O"
	OutcomeDraw Outcome = "Draw"
)

// OutcomeFor - returns the winning outcome of the given player.
func OutcomeFor(player Player) Outcome {
	if player == PlayerO {
		return OutcomeO
	}
	return OutcomeX
}

func (that Outcome) IsTerminal() bool {
	return that != OutcomeNone
}

// MarshalJSON - a game that is still going on has a null winner.
func (that Outcome) MarshalJSON() ([]byte, error) {
	if that == OutcomeNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(that))
}

func (that *Outcome) UnmarshalJSON(data []byte) error {
	var value *string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("could not unmarshal outcome: %w", err)
	}

	if value == nil {
		*that = OutcomeNone
		return nil
	}

	switch outcome := Outcome(*value); outcome {
	case OutcomeNone, OutcomeX, OutcomeO, OutcomeDraw:
		*that = outcome
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, *value)
	}
}

type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Board - a 3x3 grid addressed as board[x][y], x selects the row.
type Board [BoardSize][BoardSize]Cell

func NewBoard() Board {
	var board Board
	for x := range board {
		for y := range board[x] {
			board[x][y] = CellEmpty
		}
	}
	return board
}

// EmptyCells - returns the coordinates of all empty cells in row-major order.
func (that Board) EmptyCells() []Coordinates {
	cells := make([]Coordinates, 0, BoardSize*BoardSize)
	for x := range that {
		for y := range that[x] {
			if that[x][y].IsEmpty() {
				cells = append(cells, Coordinates{X: x, Y: y})
			}
		}
	}
	return cells
}

func (that Board) IsFull() bool {
	for x := range that {
		for y := range that[x] {
			if that[x][y].IsEmpty() {
				return false
			}
		}
	}
	return true
}
