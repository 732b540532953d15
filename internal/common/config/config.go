package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Preferences backends.
const (
	PrefsBackendFile   = "file"
	PrefsBackendMemory = "memory"
	PrefsBackendRedis  = "redis"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	API struct {
		BaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8080/api/v1"`
		Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
	}

	Prefs struct {
		Backend string `env:"PREFS_BACKEND" envDefault:"file"`
		// Empty means <user config dir>/piano-quest/prefs.json
		Path string `env:"PREFS_PATH"`
		// Redis hash holding the preferences of this profile
		RedisKey string `env:"PREFS_REDIS_KEY" envDefault:"piano-quest:prefs:default"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Server struct {
		Port        int           `env:"PORT" envDefault:"8080"`
		Origin      string        `env:"ORIGIN" envDefault:"*"`
		JWTSecret   string        `env:"JWT_SECRET" envDefault:"piano-quest-dev-secret"`
		TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
		SeedPath    string        `env:"SEED_PATH"`
		BotToken    string        `env:"BOT_TOKEN"`
		InitDataTTL time.Duration `env:"INIT_DATA_TTL" envDefault:"24h"`

		RecognitionRPS   float64 `env:"RECOGNITION_RPS" envDefault:"2"`
		RecognitionBurst int     `env:"RECOGNITION_BURST" envDefault:"4"`
		MaxUploadBytes   int64   `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	}
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine, variables may come from the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Prefs.Backend {
	case PrefsBackendFile, PrefsBackendMemory, PrefsBackendRedis:
	default:
		return fmt.Errorf("invalid PREFS_BACKEND %q", c.Prefs.Backend)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	if c.Server.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.Server.RecognitionRPS <= 0 {
		return fmt.Errorf("RECOGNITION_RPS must be positive")
	}
	if c.Server.RecognitionBurst <= 0 {
		return fmt.Errorf("RECOGNITION_BURST must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// RedisAddr returns host:port of the redis server.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// PrefsPath resolves the preferences file location.
func (c *Config) PrefsPath() (string, error) {
	if c.Prefs.Path != "" {
		return c.Prefs.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "piano-quest", "prefs.json"), nil
}
