package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-api/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
	"github.com/rocketscienceinc/tictactoe-api/internal/repository"
)

type GameUseCase interface {
	CreateGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	ListGames(ctx context.Context) ([]*entity.Game, error)
	ListMovements(ctx context.Context, id string) ([]entity.Movement, error)
	DeleteGame(ctx context.Context, id string) error

	PlayRound(ctx context.Context, id string, x, y int) (*entity.Game, error)
}

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	List(ctx context.Context) ([]*entity.Game, error)
	UpdateByID(ctx context.Context, id string, fn repository.UpdateFunc) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type roundEngine interface {
	PlayRound(game *entity.Game, x, y int) (entity.Board, entity.Outcome, error)
}

type Option func(useCase *gameUseCase)

// WithClock - sets the source of game creation times.
func WithClock(now func() time.Time) Option {
	return func(useCase *gameUseCase) {
		useCase.now = now
	}
}

// WithIDGenerator - sets the generator of game ids.
func WithIDGenerator(newID func() string) Option {
	return func(useCase *gameUseCase) {
		useCase.newID = newID
	}
}

type gameUseCase struct {
	logger *slog.Logger

	gameRepo gameRepo
	engine   roundEngine

	now   func() time.Time
	newID func() string
}

func NewGameUseCase(logger *slog.Logger, gameRepo gameRepo, engine roundEngine, opts ...Option) GameUseCase {
	useCase := &gameUseCase{
		logger: logger.With("component", "usecase"),

		gameRepo: gameRepo,
		engine:   engine,

		now:   time.Now,
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(useCase)
	}

	return useCase
}

func (that *gameUseCase) CreateGame(ctx context.Context) (*entity.Game, error) {
	log := that.logger.With("method", "CreateGame")

	game := entity.NewGame(that.newID(), that.now().UTC())

	if err := that.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("could not create game: %w", err)
	}

	log.Info("game created", "gameID", game.ID)

	return game, nil
}

func (that *gameUseCase) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	if !isGameID(id) {
		return nil, apperror.ErrGameNotFound
	}

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) ListGames(ctx context.Context) ([]*entity.Game, error) {
	games, err := that.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return games, nil
}

func (that *gameUseCase) ListMovements(ctx context.Context, id string) ([]entity.Movement, error) {
	game, err := that.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	return game.Movements, nil
}

func (that *gameUseCase) DeleteGame(ctx context.Context, id string) error {
	log := that.logger.With("method", "DeleteGame")

	if !isGameID(id) {
		return apperror.ErrGameNotFound
	}

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	log.Info("game deleted", "gameID", id)

	return nil
}

// PlayRound - applies the human move and the bot answer as one exclusive update of the game.
// Finished games take no more rounds.
func (that *gameUseCase) PlayRound(ctx context.Context, id string, x, y int) (*entity.Game, error) {
	log := that.logger.With("method", "PlayRound", "gameID", id)

	if !isCoordinate(x) || !isCoordinate(y) {
		return nil, fmt.Errorf("%w: (%d, %d)", apperror.ErrInvalidCoordinates, x, y)
	}

	if !isGameID(id) {
		return nil, apperror.ErrGameNotFound
	}

	game, err := that.gameRepo.UpdateByID(ctx, id, func(game *entity.Game) error {
		if game.IsFinished() {
			return apperror.ErrGameFinished
		}

		if _, _, err := that.engine.PlayRound(game, x, y); err != nil {
			return fmt.Errorf("could not play round: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	log.Info("round played", "x", x, "y", y, "winner", game.Winner)

	return game, nil
}

func isCoordinate(value int) bool {
	return value >= 0 && value < entity.BoardSize
}

func isGameID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
