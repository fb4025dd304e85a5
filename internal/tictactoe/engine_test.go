package tictactoe

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-api/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
)

const (
	x = entity.CellX
	o = entity.CellO
	e = entity.CellEmpty
)

var fixedTime = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

// firstCell - always takes the first candidate, which makes the bot predictable.
var firstCell = PickerFunc(func(candidates []entity.Coordinates) entity.Coordinates {
	return candidates[0]
})

func newTestEngine(picker Picker) *Engine {
	sequence := 0
	return NewEngine(
		WithPicker(picker),
		WithClock(func() time.Time { return fixedTime }),
		WithIDGenerator(func() string {
			sequence++
			return fmt.Sprintf("m%d", sequence)
		}),
	)
}

// gameWithBoard - builds a game whose history matches the marks already on the board.
func gameWithBoard(board entity.Board) *entity.Game {
	game := entity.NewGame("123", fixedTime)
	game.Board = board
	for row := range board {
		for col := range board[row] {
			if board[row][col].IsEmpty() {
				continue
			}
			game.AddMovement(entity.Movement{X: row, Y: col, Player: entity.Player(board[row][col]), CreatedAt: fixedTime})
		}
	}
	game.Winner = CheckWinner(board)
	return game
}

func TestApply(t *testing.T) {
	t.Run("Places the mark on an empty cell", func(t *testing.T) {
		// Given: an empty board
		board := entity.NewBoard()

		// When: X plays the center
		ok := Apply(&board, 1, 1, entity.PlayerX)

		// Then: the move should succeed and the cell should hold X
		require.True(t, ok)
		assert.Equal(t, x, board[1][1])
	})

	t.Run("Rejects an occupied cell and keeps the board", func(t *testing.T) {
		// Given: a board where X owns the corner
		board := entity.NewBoard()
		board[0][0] = x
		before := board

		// When: O tries to take the same corner
		ok := Apply(&board, 0, 0, entity.PlayerO)

		// Then: the move should fail and nothing should change
		assert.False(t, ok)
		assert.Equal(t, before, board)
	})

	t.Run("Indexes the board as board[x][y]", func(t *testing.T) {
		board := entity.NewBoard()

		require.True(t, Apply(&board, 0, 2, entity.PlayerO))

		assert.Equal(t, o, board[0][2])
		assert.Equal(t, e, board[2][0])
	})
}

func TestCheckWinner(t *testing.T) {
	tests := []struct {
		name  string
		board entity.Board
		want  entity.Outcome
	}{
		{"empty board", entity.NewBoard(), entity.OutcomeNone},
		{"top row X", entity.Board{{x, x, x}, {o, o, e}, {e, e, e}}, entity.OutcomeX},
		{"middle row O", entity.Board{{x, x, e}, {o, o, o}, {x, e, e}}, entity.OutcomeO},
		{"bottom row X", entity.Board{{o, o, e}, {e, e, e}, {x, x, x}}, entity.OutcomeX},
		{"left column O", entity.Board{{o, x, x}, {o, x, e}, {o, e, e}}, entity.OutcomeO},
		{"middle column X", entity.Board{{o, x, e}, {e, x, o}, {e, x, e}}, entity.OutcomeX},
		{"right column O", entity.Board{{x, x, o}, {e, x, o}, {e, e, o}}, entity.OutcomeO},
		{"main diagonal X", entity.Board{{x, o, e}, {e, x, o}, {e, e, x}}, entity.OutcomeX},
		{"anti diagonal O", entity.Board{{x, x, o}, {x, o, e}, {o, e, e}}, entity.OutcomeO},
		{"draw", entity.Board{{x, o, x}, {x, o, o}, {o, x, x}}, entity.OutcomeDraw},
		{"win on a full board is not a draw", entity.Board{{x, x, x}, {o, o, x}, {x, o, o}}, entity.OutcomeX},
		{"in progress", entity.Board{{x, o, x}, {e, o, e}, {o, x, e}}, entity.OutcomeNone},
		{"first full line in scan order wins", entity.Board{{o, o, o}, {x, x, x}, {e, e, e}}, entity.OutcomeO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When: checking the winner
			got := CheckWinner(tt.board)

			// Then: the outcome should match
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Idempotent on an unmodified board", func(t *testing.T) {
		// Given: an ongoing board
		board := entity.Board{{x, o, e}, {e, x, e}, {e, e, o}}
		before := board

		// When: checking twice
		first := CheckWinner(board)
		second := CheckWinner(board)

		// Then: results agree and the board is untouched
		assert.Equal(t, first, second)
		assert.Equal(t, before, board)
	})
}

func TestSelectOpponentMove(t *testing.T) {
	t.Run("Returns nothing on a full board", func(t *testing.T) {
		// Given: a full board
		board := entity.Board{{x, o, x}, {x, o, o}, {o, x, x}}

		// When: selecting a move
		_, ok := SelectOpponentMove(board, firstCell)

		// Then: no move is available
		assert.False(t, ok)
	})

	t.Run("Offers only empty cells and does not mutate", func(t *testing.T) {
		// Given: a board with two empty cells
		board := entity.Board{{x, o, e}, {x, o, o}, {o, x, e}}
		before := board

		var offered []entity.Coordinates
		picker := PickerFunc(func(candidates []entity.Coordinates) entity.Coordinates {
			offered = candidates
			return candidates[len(candidates)-1]
		})

		// When: selecting a move
		move, ok := SelectOpponentMove(board, picker)

		// Then: the picker sees exactly the empty cells and its choice is returned
		require.True(t, ok)
		assert.Equal(t, []entity.Coordinates{{X: 0, Y: 2}, {X: 2, Y: 2}}, offered)
		assert.Equal(t, entity.Coordinates{X: 2, Y: 2}, move)
		assert.Equal(t, before, board)
	})

	t.Run("Random picker stays within candidates", func(t *testing.T) {
		picker := NewRandomPicker(42)
		board := entity.Board{{x, e, o}, {e, x, o}, {o, e, x}}
		empty := board.EmptyCells()

		for range 100 {
			move, ok := SelectOpponentMove(board, picker)
			require.True(t, ok)
			assert.Contains(t, empty, move)
			assert.True(t, board[move.X][move.Y].IsEmpty())
		}
	})

	t.Run("Random picker reaches every candidate", func(t *testing.T) {
		picker := NewRandomPicker(7)
		candidates := entity.NewBoard().EmptyCells()
		seen := make(map[entity.Coordinates]bool)

		for range 1000 {
			seen[picker.Pick(candidates)] = true
		}

		assert.Len(t, seen, len(candidates))
	})
}

func TestEngine_PlayRound(t *testing.T) {
	t.Run("Empty board: X moves, bot answers once", func(t *testing.T) {
		// Given: a new game
		game := entity.NewGame("123", fixedTime)
		engine := newTestEngine(firstCell)

		// When: X plays the center
		board, outcome, err := engine.PlayRound(game, 1, 1)

		// Then: X is in the center, the bot took the first free cell and the game goes on
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeNone, outcome)
		assert.Equal(t, x, board[1][1])
		assert.Equal(t, o, board[0][0])
		assert.Equal(t, board, game.Board)
		assert.Equal(t, entity.OutcomeNone, game.Winner)

		expectedMovements := []entity.Movement{
			{ID: "m1", X: 1, Y: 1, Player: entity.PlayerX, CreatedAt: fixedTime},
			{ID: "m2", X: 0, Y: 0, Player: entity.PlayerO, CreatedAt: fixedTime},
		}
		assert.Equal(t, expectedMovements, game.Movements)
	})

	t.Run("X completes the top row on an almost full board", func(t *testing.T) {
		// Given: eight movements already played
		game := gameWithBoard(entity.Board{{x, x, e}, {x, o, o}, {o, x, o}})
		require.Len(t, game.Movements, 8)

		// When: X plays (0, 2)
		board, outcome, err := newTestEngine(firstCell).PlayRound(game, 0, 2)

		// Then: X wins and only X's movement is added
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeX, outcome)
		assert.Equal(t, x, board[0][2])
		assert.Len(t, game.Movements, 9)
		assert.Equal(t, entity.OutcomeX, game.Winner)
	})

	t.Run("X wins immediately and the bot never moves", func(t *testing.T) {
		// Given: X and O each own two cells
		game := gameWithBoard(entity.Board{{x, x, e}, {o, o, e}, {e, e, e}})
		picker := PickerFunc(func([]entity.Coordinates) entity.Coordinates {
			t.Fatal("bot must not move after X has won")
			return entity.Coordinates{}
		})

		// When: X completes the top row
		board, outcome, err := newTestEngine(picker).PlayRound(game, 0, 2)

		// Then: X wins, five movements in total and the last one is X's
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeX, outcome)
		assert.Len(t, game.Movements, 5)
		assert.Equal(t, entity.Board{{x, x, x}, {o, o, e}, {e, e, e}}, board)

		last, ok := game.LastMovement()
		require.True(t, ok)
		assert.Equal(t, entity.PlayerX, last.Player)
	})

	t.Run("Last free cell without a line is a draw", func(t *testing.T) {
		// Given: one free cell left
		game := gameWithBoard(entity.Board{{x, o, e}, {x, o, o}, {o, x, x}})

		// When: X fills it
		board, outcome, err := newTestEngine(firstCell).PlayRound(game, 0, 2)

		// Then: the game is a draw and the bot did not move
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeDraw, outcome)
		assert.True(t, board.IsFull())
		assert.Len(t, game.Movements, 9)
		assert.Equal(t, entity.OutcomeDraw, game.Winner)
	})

	t.Run("Bot wins with its answer", func(t *testing.T) {
		// Given: the bot's only free cell completes its bottom row
		game := gameWithBoard(entity.Board{{x, o, e}, {x, o, x}, {o, e, o}})

		// When: X plays (0, 2)
		board, outcome, err := newTestEngine(firstCell).PlayRound(game, 0, 2)

		// Then: O wins on (2, 1) and the last movement is O's
		require.NoError(t, err)
		assert.Equal(t, entity.OutcomeO, outcome)
		assert.Equal(t, o, board[2][1])
		assert.Len(t, game.Movements, 9)

		last, ok := game.LastMovement()
		require.True(t, ok)
		assert.Equal(t, entity.Movement{ID: "m2", X: 2, Y: 1, Player: entity.PlayerO, CreatedAt: fixedTime}, last)
	})

	t.Run("Occupied cell aborts the whole round", func(t *testing.T) {
		// Given: X already owns (0, 0)
		game := gameWithBoard(entity.Board{{x, e, e}, {e, o, e}, {e, e, e}})
		before := game.Clone()

		// When: X plays (0, 0) again
		_, _, err := newTestEngine(firstCell).PlayRound(game, 0, 0)

		// Then: ErrInvalidMove is returned and nothing changed
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, before, game)
	})

	t.Run("Cell occupied by the bot is rejected too", func(t *testing.T) {
		game := gameWithBoard(entity.Board{{x, e, e}, {e, o, e}, {e, e, e}})
		before := game.Clone()

		_, _, err := newTestEngine(firstCell).PlayRound(game, 1, 1)

		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, before, game)
	})
}

// TestEngine_RandomGames plays many complete games with a seeded random bot and
// a seeded random human and checks the round invariants after every round.
func TestEngine_RandomGames(t *testing.T) {
	for seed := uint64(1); seed <= 200; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			engine := NewEngine(WithPicker(NewRandomPicker(seed)))
			human := NewRandomPicker(seed * 31)
			game := entity.NewGame("g", fixedTime)

			for !game.IsFinished() {
				move := human.Pick(game.Board.EmptyCells())
				before := len(game.Movements)

				board, outcome, err := engine.PlayRound(game, move.X, move.Y)
				require.NoError(t, err)

				// the cached winner always matches a fresh evaluation
				assert.Equal(t, CheckWinner(board), outcome)
				assert.Equal(t, outcome, game.Winner)

				// one or two movements per round, X first
				added := game.Movements[before:]
				require.NotEmpty(t, added)
				require.LessOrEqual(t, len(added), 2)
				assert.Equal(t, entity.PlayerX, added[0].Player)
				if len(added) == 2 {
					assert.Equal(t, entity.PlayerO, added[1].Player)
				}

				// a won round ends with the winner's movement
				if outcome == entity.OutcomeX || outcome == entity.OutcomeO {
					last, _ := game.LastMovement()
					assert.Equal(t, string(outcome), string(last.Player))
				}

				// a full board is never an ongoing game
				if board.IsFull() {
					assert.True(t, outcome.IsTerminal())
				}

				// movements and board marks stay in sync
				assert.Len(t, board.EmptyCells(), 9-len(game.Movements))
			}
		})
	}
}
