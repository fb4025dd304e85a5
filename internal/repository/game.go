package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-api/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
)

const (
	gameKeyPrefix = "game:"
	gamesIndexKey = "games"

	defaultUpdateRetries = 5
)

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type dbGame struct {
	client        *redis.Client
	updateRetries int
}

// NewGameRepository - redis backed games. Each game is a JSON document under game:<id>,
// the sorted set "games" keeps them ordered by creation time.
func NewGameRepository(client *redis.Client, updateRetries int) GameRepository {
	if updateRetries <= 0 {
		updateRetries = defaultUpdateRetries
	}

	return &dbGame{
		client:        client,
		updateRetries: updateRetries,
	}
}

func gameKey(id string) string {
	return gameKeyPrefix + id
}

func (that *dbGame) Create(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, gameKey(game.ID), gameJSON, 0)
		pipe.ZAdd(ctx, gamesIndexKey, redis.Z{Score: float64(game.CreatedAt.UnixNano()), Member: game.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	return that.get(ctx, that.client, id)
}

func (that *dbGame) get(ctx context.Context, client getter, id string) (*entity.Game, error) {
	response, err := client.Get(ctx, gameKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *dbGame) List(ctx context.Context) ([]*entity.Game, error) {
	ids, err := that.client.ZRevRange(ctx, gamesIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list game ids: %w", err)
	}

	games := make([]*entity.Game, 0, len(ids))
	if len(ids) == 0 {
		return games, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, gameKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}

	for _, value := range values {
		// the index can briefly outlive a deleted game
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var game entity.Game
		if err = json.Unmarshal([]byte(raw), &game); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game: %w", err)
		}

		games = append(games, &game)
	}

	return games, nil
}

// UpdateByID - optimistic WATCH/MULTI transaction, retried when another writer
// touched the same game in between.
func (that *dbGame) UpdateByID(ctx context.Context, id string, fn UpdateFunc) (*entity.Game, error) {
	key := gameKey(id)

	var updated *entity.Game

	txf := func(tx *redis.Tx) error {
		game, err := that.get(ctx, tx, id)
		if err != nil {
			return err
		}

		known := len(game.Movements)

		if err = fn(game); err != nil {
			return err
		}

		if _, err = newMovements(game, known); err != nil {
			return err
		}

		gameJSON, err := json.Marshal(game)
		if err != nil {
			return fmt.Errorf("could not marshal game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = game

		return nil
	}

	for range that.updateRetries {
		err := that.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to update game: %w", err)
		}

		return updated, nil
	}

	return nil, apperror.ErrGameBusy
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	var deleted *redis.IntCmd

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, gameKey(id))
		pipe.ZRem(ctx, gamesIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete game by id: %w", err)
	}

	if deleted.Val() == 0 {
		return apperror.ErrGameNotFound
	}

	return nil
}
