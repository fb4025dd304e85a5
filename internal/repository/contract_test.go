package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-api/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
)

var errRoundRejected = errors.New("round rejected")

// microsecond precision keeps the fixtures comparable on postgres.
var baseTime = time.Date(2024, time.October, 1, 12, 0, 0, 123456000, time.UTC)

type repoFactory func(t *testing.T) (context.Context, GameRepository)

func newTestGame(id string, createdAt time.Time) *entity.Game {
	game := entity.NewGame(id, createdAt)

	game.Board[1][1] = entity.CellX
	game.Board[0][0] = entity.CellO
	game.AddMovement(entity.Movement{ID: id + "-m1", X: 1, Y: 1, Player: entity.PlayerX, CreatedAt: createdAt})
	game.AddMovement(entity.Movement{ID: id + "-m2", X: 0, Y: 0, Player: entity.PlayerO, CreatedAt: createdAt.Add(time.Millisecond)})

	return game
}

func addMovement(game *entity.Game, id string, x, y int, player entity.Player) {
	game.Board[x][y] = player.Cell()
	game.AddMovement(entity.Movement{
		ID:        id,
		X:         x,
		Y:         y,
		Player:    player,
		CreatedAt: baseTime.Add(time.Duration(len(game.Movements)+1) * time.Second),
	})
}

// testGameRepository - behavior every storage backend has to share.
func testGameRepository(t *testing.T, newRepo repoFactory) {
	t.Helper()

	t.Run("Create_GetByID", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: a game with two movements
		game := newTestGame("11111111-1111-1111-1111-111111111111", baseTime)

		// When: the game is created and read back
		require.NoError(t, repo.Create(ctx, game))
		stored, err := repo.GetByID(ctx, game.ID)

		// Then: the stored game matches what was created
		require.NoError(t, err)
		assert.Equal(t, game, stored)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// When: GetByID is called with an unknown id
		stored, err := repo.GetByID(ctx, "99999999-9999-9999-9999-999999999999")

		// Then: ErrGameNotFound is returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, stored)
	})

	t.Run("List_NewestFirst", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: three games created one minute apart
		older := newTestGame("00000000-0000-0000-0000-000000000001", baseTime)
		middle := entity.NewGame("00000000-0000-0000-0000-000000000002", baseTime.Add(time.Minute))
		newer := newTestGame("00000000-0000-0000-0000-000000000003", baseTime.Add(2*time.Minute))

		for _, game := range []*entity.Game{middle, newer, older} {
			require.NoError(t, repo.Create(ctx, game))
		}

		// When: the games are listed
		games, err := repo.List(ctx)

		// Then: they come back newest first with their movements
		require.NoError(t, err)
		require.Len(t, games, 3)
		assert.Equal(t, newer, games[0])
		assert.Equal(t, middle, games[1])
		assert.Equal(t, older, games[2])
	})

	t.Run("List_Empty", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// When: nothing was stored
		games, err := repo.List(ctx)

		// Then: an empty list is returned
		require.NoError(t, err)
		assert.Empty(t, games)
	})

	t.Run("UpdateByID_AppendsMovements", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: a stored game
		game := newTestGame("22222222-2222-2222-2222-222222222222", baseTime)
		require.NoError(t, repo.Create(ctx, game))

		// When: a round adds two movements and finishes the game
		updated, err := repo.UpdateByID(ctx, game.ID, func(game *entity.Game) error {
			addMovement(game, "m3", 2, 2, entity.PlayerX)
			addMovement(game, "m4", 0, 1, entity.PlayerO)
			game.Winner = entity.OutcomeDraw
			return nil
		})

		// Then: the returned and the stored game carry the new state
		require.NoError(t, err)
		require.Len(t, updated.Movements, 4)

		stored, err := repo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, stored)
		assert.Equal(t, entity.CellX, stored.Board[2][2])
		assert.Equal(t, entity.CellO, stored.Board[0][1])
		assert.Equal(t, entity.OutcomeDraw, stored.Winner)
		assert.Equal(t, "m3", stored.Movements[2].ID)
		assert.Equal(t, "m4", stored.Movements[3].ID)
	})

	t.Run("UpdateByID_ErrorDiscardsChanges", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: a stored game
		game := newTestGame("33333333-3333-3333-3333-333333333333", baseTime)
		require.NoError(t, repo.Create(ctx, game))

		// When: the update function mutates the game and then fails
		updated, err := repo.UpdateByID(ctx, game.ID, func(game *entity.Game) error {
			addMovement(game, "m3", 2, 2, entity.PlayerX)
			return errRoundRejected
		})

		// Then: the error is propagated and nothing is persisted
		require.ErrorIs(t, err, errRoundRejected)
		assert.Nil(t, updated)

		stored, err := repo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, game, stored)
	})

	t.Run("UpdateByID_HistoryRewritten", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: a stored game with two movements
		game := newTestGame("44444444-4444-4444-4444-444444444444", baseTime)
		require.NoError(t, repo.Create(ctx, game))

		// When: the update function drops a movement
		_, err := repo.UpdateByID(ctx, game.ID, func(game *entity.Game) error {
			game.Movements = game.Movements[:1]
			return nil
		})

		// Then: the update is refused
		require.ErrorIs(t, err, ErrHistoryRewritten)

		stored, err := repo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Movements, 2)
	})

	t.Run("UpdateByID_NotFound", func(t *testing.T) {
		ctx, repo := newRepo(t)

		called := false

		// When: an unknown game is updated
		_, err := repo.UpdateByID(ctx, "99999999-9999-9999-9999-999999999999", func(*entity.Game) error {
			called = true
			return nil
		})

		// Then: ErrGameNotFound is returned and fn never runs
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.False(t, called)
	})

	t.Run("UpdateByID_Concurrent", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: an empty stored game
		game := entity.NewGame("55555555-5555-5555-5555-555555555555", baseTime)
		require.NoError(t, repo.Create(ctx, game))

		const writers = 4

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
		)

		// When: several writers append one movement each at the same time
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()

				_, err := repo.UpdateByID(ctx, game.ID, func(game *entity.Game) error {
					game.AddMovement(entity.Movement{
						ID:        fmt.Sprintf("w%d", i),
						X:         i % entity.BoardSize,
						Y:         i / entity.BoardSize,
						Player:    entity.PlayerX,
						CreatedAt: baseTime,
					})
					return nil
				})
				if err != nil {
					assert.ErrorIs(t, err, apperror.ErrGameBusy)
					return
				}

				mu.Lock()
				succeeded++
				mu.Unlock()
			}()
		}

		wg.Wait()

		// Then: no update is lost, every successful writer left exactly one movement
		stored, err := repo.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Movements, succeeded)
		assert.Positive(t, succeeded)
	})

	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// Given: a stored game
		game := newTestGame("66666666-6666-6666-6666-666666666666", baseTime)
		require.NoError(t, repo.Create(ctx, game))

		// When: DeleteByID is called with its id
		err := repo.DeleteByID(ctx, game.ID)

		// Then: the game is gone from lookups and listings
		require.NoError(t, err)

		_, err = repo.GetByID(ctx, game.ID)
		require.ErrorIs(t, err, apperror.ErrGameNotFound)

		games, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, games)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, repo := newRepo(t)

		// When: DeleteByID is called with an unknown id
		err := repo.DeleteByID(ctx, "99999999-9999-9999-9999-999999999999")

		// Then: ErrGameNotFound is returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}
