package tictactoe

import (
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-api/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
)

// WinLines - rows, then columns, then the two diagonals.
var WinLines = [8][3]entity.Coordinates{
	{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}},
	{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}},
	{{X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}},
	{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},
	{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
	{{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}},
	{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}},
	{{X: 0, Y: 2}, {X: 1, Y: 1}, {X: 2, Y: 0}},
}

// Apply - places the player's mark on an empty cell.
// Returns false and leaves the board untouched if the cell is occupied.
// Coordinates must already be within the board.
func Apply(board *entity.Board, x, y int, player entity.Player) bool {
	if !board[x][y].IsEmpty() {
		return false
	}

	board[x][y] = player.Cell()

	return true
}

// CheckWinner - evaluates the board from scratch.
func CheckWinner(board entity.Board) entity.Outcome {
	for _, line := range WinLines {
		for _, player := range []entity.Player{entity.PlayerX, entity.PlayerO} {
			if lineOwnedBy(board, line, player) {
				return entity.OutcomeFor(player)
			}
		}
	}

	if board.IsFull() {
		return entity.OutcomeDraw
	}

	return entity.OutcomeNone
}

func lineOwnedBy(board entity.Board, line [3]entity.Coordinates, player entity.Player) bool {
	mark := player.Cell()
	for _, cell := range line {
		if board[cell.X][cell.Y] != mark {
			return false
		}
	}
	return true
}

// SelectOpponentMove - picks one of the empty cells. It never mutates the board.
func SelectOpponentMove(board entity.Board, picker Picker) (entity.Coordinates, bool) {
	candidates := board.EmptyCells()
	if len(candidates) == 0 {
		return entity.Coordinates{}, false
	}

	return picker.Pick(candidates), true
}

type Option func(engine *Engine)

// WithPicker - sets the source of the opponent's choices.
func WithPicker(picker Picker) Option {
	return func(engine *Engine) {
		engine.picker = picker
	}
}

func WithClock(now func() time.Time) Option {
	return func(engine *Engine) {
		engine.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(engine *Engine) {
		engine.newID = newID
	}
}

// Engine - plays rounds: the human move as X followed by the bot's answer as O.
type Engine struct {
	picker Picker
	now    func() time.Time
	newID  func() string
}

func NewEngine(opts ...Option) *Engine {
	engine := &Engine{
		picker: NewRandomPicker(uint64(time.Now().UnixNano())),
		now:    time.Now,
		newID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// PlayRound - applies the human move at (x, y), lets the bot answer unless the game
// is already decided and refreshes the game's winner.
// On ErrInvalidMove the game is left exactly as it was.
func (that *Engine) PlayRound(game *entity.Game, x, y int) (entity.Board, entity.Outcome, error) {
	if !Apply(&game.Board, x, y, entity.PlayerX) {
		return game.Board, game.Winner, apperror.ErrInvalidMove
	}

	that.record(game, x, y, entity.PlayerX)

	outcome := CheckWinner(game.Board)
	if outcome.IsTerminal() {
		game.Winner = outcome
		return game.Board, outcome, nil
	}

	if move, ok := SelectOpponentMove(game.Board, that.picker); ok {
		Apply(&game.Board, move.X, move.Y, entity.PlayerO)
		that.record(game, move.X, move.Y, entity.PlayerO)

		outcome = CheckWinner(game.Board)
	}

	game.Winner = outcome

	return game.Board, outcome, nil
}

func (that *Engine) record(game *entity.Game, x, y int, player entity.Player) {
	game.AddMovement(entity.Movement{
		ID:        that.newID(),
		X:         x,
		Y:         y,
		Player:    player,
		CreatedAt: that.now().UTC(),
	})
}
