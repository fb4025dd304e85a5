package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-api/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
)

type sqlQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type sqliteGame struct {
	conn *sql.DB
}

// NewSQLiteGameRepository - expects a connection opened with _txlock=immediate, which
// makes every update transaction exclusive.
func NewSQLiteGameRepository(conn *sql.DB) GameRepository {
	return &sqliteGame{
		conn: conn,
	}
}

func (that *sqliteGame) Create(ctx context.Context, game *entity.Game) error {
	boardJSON, err := json.Marshal(game.Board)
	if err != nil {
		return fmt.Errorf("could not marshal board: %w", err)
	}

	tx, err := that.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO games (id, created_at, board, winner) VALUES (?, ?, ?, ?)`,
		game.ID, formatTime(game.CreatedAt), string(boardJSON), string(game.Winner))
	if err != nil {
		return fmt.Errorf("can't save game: %w", err)
	}

	if err = that.insertMovements(ctx, tx, game.ID, 0, game.Movements); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("can't commit game: %w", err)
	}

	return nil
}

func (that *sqliteGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	return that.load(ctx, that.conn, id)
}

func (that *sqliteGame) load(ctx context.Context, q sqlQuerier, id string) (*entity.Game, error) {
	row := q.QueryRowContext(ctx, `SELECT id, created_at, board, winner FROM games WHERE id = ?`, id)

	game, err := scanSQLiteGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find game: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT game_id, id, x, y, player, created_at FROM movements WHERE game_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("can't query movements: %w", err)
	}

	byGame, err := collectSQLiteMovements(rows)
	if err != nil {
		return nil, err
	}

	game.Movements = append(game.Movements, byGame[id]...)

	return game, nil
}

func (that *sqliteGame) List(ctx context.Context) ([]*entity.Game, error) {
	rows, err := that.conn.QueryContext(ctx, `SELECT id, created_at, board, winner FROM games ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("can't list games: %w", err)
	}
	defer rows.Close()

	games := []*entity.Game{}
	for rows.Next() {
		game, err := scanSQLiteGame(rows)
		if err != nil {
			return nil, fmt.Errorf("can't scan game: %w", err)
		}
		games = append(games, game)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read games: %w", err)
	}

	movementRows, err := that.conn.QueryContext(ctx,
		`SELECT game_id, id, x, y, player, created_at FROM movements ORDER BY game_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("can't query movements: %w", err)
	}

	byGame, err := collectSQLiteMovements(movementRows)
	if err != nil {
		return nil, err
	}

	for _, game := range games {
		game.Movements = append(game.Movements, byGame[game.ID]...)
	}

	return games, nil
}

func (that *sqliteGame) UpdateByID(ctx context.Context, id string, fn UpdateFunc) (*entity.Game, error) {
	tx, err := that.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("can't begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	game, err := that.load(ctx, tx, id)
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

	_, err = tx.ExecContext(ctx, `UPDATE games SET board = ?, winner = ? WHERE id = ?`,
		string(boardJSON), string(game.Winner), id)
	if err != nil {
		return nil, fmt.Errorf("can't update game: %w", err)
	}

	if err = that.insertMovements(ctx, tx, id, known, added); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("can't commit game: %w", err)
	}

	return game, nil
}

func (that *sqliteGame) DeleteByID(ctx context.Context, id string) error {
	result, err := that.conn.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("can't delete game: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't count deleted games: %w", err)
	}

	if affected == 0 {
		return apperror.ErrGameNotFound
	}

	return nil
}

func (that *sqliteGame) insertMovements(ctx context.Context, tx *sql.Tx, gameID string, offset int, movements []entity.Movement) error {
	for i, movement := range movements {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO movements (id, game_id, seq, x, y, player, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			movement.ID, gameID, offset+i, movement.X, movement.Y, string(movement.Player), formatTime(movement.CreatedAt))
		if err != nil {
			return fmt.Errorf("can't save movement: %w", err)
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteGame(row rowScanner) (*entity.Game, error) {
	var (
		game      entity.Game
		createdAt string
		boardJSON string
		winner    string
	)

	if err := row.Scan(&game.ID, &createdAt, &boardJSON, &winner); err != nil {
		return nil, err
	}

	parsed, err := time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("can't parse created_at: %w", err)
	}

	if err = json.Unmarshal([]byte(boardJSON), &game.Board); err != nil {
		return nil, fmt.Errorf("can't unmarshal board: %w", err)
	}

	game.CreatedAt = parsed
	game.Winner = entity.Outcome(winner)
	game.Movements = []entity.Movement{}

	return &game, nil
}

func collectSQLiteMovements(rows *sql.Rows) (map[string][]entity.Movement, error) {
	defer rows.Close()

	byGame := make(map[string][]entity.Movement)

	for rows.Next() {
		var (
			gameID    string
			player    string
			createdAt string
			movement  entity.Movement
		)

		if err := rows.Scan(&gameID, &movement.ID, &movement.X, &movement.Y, &player, &createdAt); err != nil {
			return nil, fmt.Errorf("can't scan movement: %w", err)
		}

		parsed, err := time.Parse(sqliteTimeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("can't parse movement time: %w", err)
		}

		movement.Player = entity.Player(player)
		movement.CreatedAt = parsed
		byGame[gameID] = append(byGame[gameID], movement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read movements: %w", err)
	}

	return byGame, nil
}

// fixed width in UTC, so ORDER BY created_at sorts chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}
