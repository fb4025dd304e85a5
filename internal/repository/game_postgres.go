package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rocketscienceinc/tictactoe-api/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
)

type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type pgGame struct {
	pool *pgxpool.Pool
}

// NewPostgresGameRepository - rounds lock the game row with SELECT ... FOR UPDATE.
func NewPostgresGameRepository(pool *pgxpool.Pool) GameRepository {
	return &pgGame{
		pool: pool,
	}
}

func (that *pgGame) Create(ctx context.Context, game *entity.Game) error {
	boardJSON, err := json.Marshal(game.Board)
	if err != nil {
		return fmt.Errorf("could not marshal board: %w", err)
	}

	tx, err := that.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO games (id, created_at, board, winner) VALUES ($1, $2, $3, $4)`,
		game.ID, game.CreatedAt, string(boardJSON), string(game.Winner))
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}

	if err = that.insertMovements(ctx, tx, game.ID, 0, game.Movements); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit game: %w", err)
	}

	return nil
}

func (that *pgGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	return that.load(ctx, that.pool, id, false)
}

func (that *pgGame) load(ctx context.Context, q pgQuerier, id string, forUpdate bool) (*entity.Game, error) {
	query := `SELECT id, created_at, board, winner FROM games WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	game, err := scanPgGame(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	rows, err := q.Query(ctx,
		`SELECT game_id, id, x, y, player, created_at FROM movements WHERE game_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}

	byGame, err := collectPgMovements(rows)
	if err != nil {
		return nil, err
	}

	game.Movements = append(game.Movements, byGame[id]...)

	return game, nil
}

func (that *pgGame) List(ctx context.Context) ([]*entity.Game, error) {
	rows, err := that.pool.Query(ctx, `SELECT id, created_at, board, winner FROM games ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	games, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Game, error) {
		return scanPgGame(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan games: %w", err)
	}

	rows, err = that.pool.Query(ctx,
		`SELECT game_id, id, x, y, player, created_at FROM movements ORDER BY game_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}

	byGame, err := collectPgMovements(rows)
	if err != nil {
		return nil, err
	}

	for _, game := range games {
		game.Movements = append(game.Movements, byGame[game.ID]...)
	}

	return games, nil
}

func (that *pgGame) UpdateByID(ctx context.Context, id string, fn UpdateFunc) (*entity.Game, error) {
	tx, err := that.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	game, err := that.load(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}

	known := len(game.Movements)

	if err = fn(game); err != nil {
		return nil, err
	}

	added, err := newMovements(game, known)
	if err != nil {
		return nil, err
	}

	boardJSON, err := json.Marshal(game.Board)
	if err != nil {
		return nil, fmt.Errorf("could not marshal board: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE games SET board = $2, winner = $3 WHERE id = $1`,
		id, string(boardJSON), string(game.Winner))
	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if err = that.insertMovements(ctx, tx, id, known, added); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit game: %w", err)
	}

	return game, nil
}

func (that *pgGame) DeleteByID(ctx context.Context, id string) error {
	tag, err := that.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game by id: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperror.ErrGameNotFound
	}

	return nil
}

func (that *pgGame) insertMovements(ctx context.Context, tx pgx.Tx, gameID string, offset int, movements []entity.Movement) error {
	for i, movement := range movements {
		_, err := tx.Exec(ctx,
			`INSERT INTO movements (id, game_id, seq, x, y, player, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			movement.ID, gameID, offset+i, movement.X, movement.Y, string(movement.Player), movement.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert movement: %w", err)
		}
	}

	return nil
}

func scanPgGame(row pgx.Row) (*entity.Game, error) {
	var (
		game      entity.Game
		boardJSON []byte
		winner    string
	)

	if err := row.Scan(&game.ID, &game.CreatedAt, &boardJSON, &winner); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(boardJSON, &game.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}

	game.CreatedAt = game.CreatedAt.UTC()
	game.Winner = entity.Outcome(winner)
	game.Movements = []entity.Movement{}

	return &game, nil
}

func collectPgMovements(rows pgx.Rows) (map[string][]entity.Movement, error) {
	defer rows.Close()

	byGame := make(map[string][]entity.Movement)

	for rows.Next() {
		var (
			gameID   string
			player   string
			movement entity.Movement
		)

		if err := rows.Scan(&gameID, &movement.ID, &movement.X, &movement.Y, &player, &movement.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}

		movement.Player = entity.Player(player)
		movement.CreatedAt = movement.CreatedAt.UTC()
		byGame[gameID] = append(byGame[gameID], movement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read movements: %w", err)
	}

	return byGame, nil
}
