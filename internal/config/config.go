package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

var (
	ErrUnknownStorage   = errors.New("unknown storage")
	ErrEmptyPostgresDSN = errors.New("postgres dsn is empty")
)

type Config struct {
	LogLevel          string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Storage           string   `yaml:"storage" env:"STORAGE" env-default:"sqlite"`
	Redis             Redis    `yaml:"redis"`
	Postgres          Postgres `yaml:"postgres"`
	SQLiteStoragePath string   `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"./data/games.db"`
	RandomSeed        uint64   `yaml:"random-seed" env:"RANDOM_SEED" env-default:"0"`
}

type Redis struct {
	Host          string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port          string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	UpdateRetries int    `yaml:"update-retries" env:"REDIS_UPDATE_RETRIES" env-default:"5"`
}

type Postgres struct {
	DSN string `yaml:"dsn" env:"POSTGRES_DSN"`
}

// MustLoad - load all configurations in config.yml file, .env values override the environment.
func MustLoad(path string) *Config {
	config, err := Load(path, ".env")
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the dotenv file (if it exists) into the environment, then the yaml file with env overrides.
func Load(path, dotenvPath string) (*Config, error) {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load env file: %w", err)
	}

	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	switch that.Storage {
	case StorageRedis, StorageSQLite:
		return nil
	case StoragePostgres:
		if that.Postgres.DSN == "" {
			return ErrEmptyPostgresDSN
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, that.Storage)
	}
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
