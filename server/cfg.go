package server

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/zucenko/accessbattle/game"
	"github.com/zucenko/accessbattle/model"
)

type Config struct {
	Port           string        `env:"PORT"                         envDefault:"8080"`
	LogLevel       string        `env:"ACCESSBATTLE_LOG_LEVEL"       envDefault:"info"`
	LogFormat      string        `env:"ACCESSBATTLE_LOG_FORMAT"      envDefault:"text"`
	FirstMover     string        `env:"ACCESSBATTLE_FIRST_MOVER"     envDefault:"1"`
	RequestTimeout time.Duration `env:"ACCESSBATTLE_REQUEST_TIMEOUT" envDefault:"200ms"`
	// AllowedOrigins restricts websocket upgrades; empty accepts any origin.
	AllowedOrigins []string `env:"ACCESSBATTLE_ALLOWED_ORIGINS" envSeparator:","`
	// BoardFile replaces the embedded board layout.
	BoardFile string `env:"ACCESSBATTLE_BOARD"`
}

func DefaultConfig() Config {
	return Config{
		Port:           "8080",
		LogLevel:       "info",
		LogFormat:      "text",
		FirstMover:     "1",
		RequestTimeout: 200 * time.Millisecond,
	}
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if _, err := cfg.FirstMoverPolicy(); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) FirstMoverPolicy() (game.FirstMover, error) {
	return game.ParseFirstMover(c.FirstMover)
}

func (c Config) Layout() (*model.Layout, error) {
	if c.BoardFile == "" {
		return model.DefaultLayout(), nil
	}
	file, err := os.Open(c.BoardFile)
	if err != nil {
		return nil, fmt.Errorf("open board: %w", err)
	}
	defer file.Close()
	layout, err := model.ReadLayout(file)
	if err != nil {
		return nil, fmt.Errorf("read board %s: %w", c.BoardFile, err)
	}
	return layout, nil
}

func (c Config) checkOrigin() func(r *http.Request) bool {
	if len(c.AllowedOrigins) == 0 {
		return func(r *http.Request) bool { return true }
	}
	allowed := make(map[string]bool, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
