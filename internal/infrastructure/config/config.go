package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config is the process-level configuration read from the environment.
// Panel behavior (features, file-browser root, activity window) lives in
// the persisted config document instead, editable at runtime.
type Config struct {
	Port     string `env:"PORT,        default=3000"`
	Env      string `env:"ENV,         default=development"`
	LogLevel string `env:"LOG_LEVEL,   default=info"`

	// DataFile holds the aggregate state document, ConfigFile the
	// panel configuration.
	DataFile   string `env:"DATA_FILE,   default=db.json"`
	ConfigFile string `env:"CONFIG_FILE, default=config.json"`

	Redis RedisConfig
}

// RedisConfig enables the optional Redis event publisher when Addr is set.
type RedisConfig struct {
	Addr    string `env:"REDIS_ADDR"`
	DB      int    `env:"REDIS_DB,      default=0"`
	Channel string `env:"REDIS_CHANNEL, default=serverpanel:events"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
