package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-api/internal/config"
	"github.com/rocketscienceinc/tictactoe-api/internal/repository"
	"github.com/rocketscienceinc/tictactoe-api/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-api/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-api/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-api/transport/rest"
	"github.com/rocketscienceinc/tictactoe-api/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gameRepo, closer, err := openGameRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			log.Error("could not close storage", "error", closeErr)
		}
	}()

	log.Info("storage ready", "storage", conf.Storage)

	engine := tictactoe.NewEngine(tictactoe.WithPicker(tictactoe.NewRandomPicker(randomSeed(conf))))
	gameUseCase := usecase.NewGameUseCase(logger, gameRepo, engine)

	wsServer := websocket.New(logger, gameUseCase)
	httpServer := rest.New(logger, gameUseCase, wsServer.Mount)

	if err = httpServer.Start(ctx, conf.HTTPPort); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

type closerFunc func() error

func (that closerFunc) Close() error {
	return that()
}

// openGameRepository - connects the configured storage and prepares its schema.
func openGameRepository(ctx context.Context, conf *config.Config) (repository.GameRepository, io.Closer, error) {
	switch conf.Storage {
	case config.StorageRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewGameRepository(redisStorage.Connection, conf.Redis.UpdateRetries), redisStorage, nil

	case config.StoragePostgres:
		pgStorage, err := storage.NewPostgresStorage(ctx, conf.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
		}

		if err = pgStorage.Init(ctx); err != nil {
			pgStorage.Close()
			return nil, nil, fmt.Errorf("could not init postgres storage: %w", err)
		}

		return repository.NewPostgresGameRepository(pgStorage.Pool), closerFunc(func() error {
			pgStorage.Close()
			return nil
		}), nil

	case config.StorageSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return repository.NewSQLiteGameRepository(sqliteStorage.Connection), sqliteStorage, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownStorage, conf.Storage)
	}
}

// randomSeed - zero means a different game sequence on every start.
func randomSeed(conf *config.Config) uint64 {
	if conf.RandomSeed != 0 {
		return conf.RandomSeed
	}

	return uint64(time.Now().UnixNano())
}
