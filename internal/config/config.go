package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/engine"
)

type Config struct {
	LogLevel          string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis             Redis         `yaml:"redis"`
	SQLiteStoragePath string        `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"results.db"`
	GameTTL           time.Duration `yaml:"game-ttl" env:"GAME_TTL" env-default:"24h"`
	AI                AI            `yaml:"ai"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type AI struct {
	engine.SearchConfig `yaml:",inline"`

	// Seed makes bot games reproducible. Zero seeds from the clock.
	Seed           uint64        `yaml:"seed" env:"AI_SEED" env-default:"0"`
	ThinkTime      time.Duration `yaml:"think-time" env:"AI_THINK_TIME" env-default:"600ms"`
	RedirectPolicy string        `yaml:"redirect-policy" env:"AI_REDIRECT_POLICY" env-default:"free-choice"`

	Difficulty engine.DifficultyConfig `yaml:"difficulty"`
	Weights    engine.Weights          `yaml:"weights"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.AI.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ai config: %w", err)
	}

	return config, nil
}

func (that *AI) Validate() error {
	if err := that.SearchConfig.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if err := that.Difficulty.Validate(); err != nil {
		return fmt.Errorf("difficulty: %w", err)
	}

	if err := that.Weights.Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}

	if that.ThinkTime < 0 {
		return fmt.Errorf("%w: think time %s", engine.ErrInvalidSearchConfig, that.ThinkTime)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
