package repository

import (
	"context"
	"errors"

	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
)

var ErrHistoryRewritten = errors.New("movement history can only grow")

// UpdateFunc - mutates a game loaded under the per-game exclusive section.
// Returning an error discards every change.
type UpdateFunc func(game *entity.Game) error

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	List(ctx context.Context) ([]*entity.Game, error)

	// UpdateByID - loads the game, applies fn and persists the board, the winner and
	// the appended movements in one atomic step. Concurrent updates of the same game
	// never interleave.
	UpdateByID(ctx context.Context, id string, fn UpdateFunc) (*entity.Game, error)

	DeleteByID(ctx context.Context, id string) error
}

// newMovements - the movements fn appended to a history that had known entries.
func newMovements(game *entity.Game, known int) ([]entity.Movement, error) {
	if len(game.Movements) < known {
		return nil, ErrHistoryRewritten
	}
	return game.Movements[known:], nil
}
