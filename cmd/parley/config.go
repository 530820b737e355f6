package main

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"parley/internal/logging"
	"parley/internal/negotiation"
)

type Config struct {
	Port           int
	AuthToken      string
	AllowedOrigins []string
	StaticDir      string
	RosterPath     string
	ProductsPath   string
	Rounds         int
	LogLevel       logging.Level

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration
}

func loadConfig() Config {
	cfg := Config{
		Port:     8080,
		Rounds:   negotiation.DefaultRounds,
		LogLevel: logging.LevelInfo,
	}

	if rawPort := os.Getenv("PARLEY_PORT"); rawPort != "" {
		if parsed, err := strconv.Atoi(rawPort); err == nil && parsed > 0 {
			cfg.Port = parsed
		}
	}

	cfg.AuthToken = os.Getenv("PARLEY_AUTH_TOKEN")

	if rawOrigins := os.Getenv("PARLEY_ALLOWED_ORIGINS"); rawOrigins != "" {
		for _, origin := range strings.Split(rawOrigins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	cfg.StaticDir = strings.TrimSpace(os.Getenv("PARLEY_STATIC_DIR"))
	cfg.RosterPath = strings.TrimSpace(os.Getenv("PARLEY_ROSTER"))
	cfg.ProductsPath = strings.TrimSpace(os.Getenv("PARLEY_PRODUCTS"))

	if rawRounds := os.Getenv("PARLEY_ROUNDS"); rawRounds != "" {
		if parsed, err := strconv.Atoi(rawRounds); err == nil && parsed > 0 {
			cfg.Rounds = parsed
		}
	}

	if rawLevel := os.Getenv("PARLEY_LOG_LEVEL"); rawLevel != "" {
		if level, ok := logging.ParseLevel(rawLevel); ok {
			cfg.LogLevel = level
		}
	}

	cfg.LLMBaseURL = strings.TrimSpace(os.Getenv("PARLEY_LLM_BASE_URL"))
	cfg.LLMAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.LLMModel = strings.TrimSpace(os.Getenv("PARLEY_LLM_MODEL"))
	if rawTimeout := os.Getenv("PARLEY_LLM_TIMEOUT"); rawTimeout != "" {
		if parsed, err := time.ParseDuration(rawTimeout); err == nil && parsed > 0 {
			cfg.LLMTimeout = parsed
		}
	}

	return cfg
}

// applyFlags overrides environment-derived settings with command-line
// flags. Flag defaults come from the environment, so `-port` beats
// PARLEY_PORT only when given explicitly.
func applyFlags(cfg *Config, args []string) error {
	flags := flag.NewFlagSet("parley", flag.ContinueOnError)
	flags.IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	flags.StringVar(&cfg.AuthToken, "auth-token", cfg.AuthToken, "bearer token required for API and websocket access (empty disables auth)")
	flags.StringVar(&cfg.StaticDir, "static-dir", cfg.StaticDir, "directory with the built frontend")
	flags.StringVar(&cfg.RosterPath, "roster", cfg.RosterPath, "supplier roster YAML file (built-in roster when empty)")
	flags.StringVar(&cfg.ProductsPath, "products", cfg.ProductsPath, "product catalog JSON file, hot-reloaded on change (embedded catalog when empty)")
	flags.IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "negotiation rounds per session")
	origins := flags.String("allowed-origins", "", "comma-separated websocket origin allowlist")
	level := flags.String("log-level", string(cfg.LogLevel), "minimum log level (debug, info, warning, error)")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *origins != "" {
		cfg.AllowedOrigins = nil
		for _, origin := range strings.Split(*origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}
	if parsed, ok := logging.ParseLevel(*level); ok {
		cfg.LogLevel = parsed
	}
	if cfg.Rounds <= 0 {
		cfg.Rounds = negotiation.DefaultRounds
	}
	return nil
}
