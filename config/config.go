package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the process configuration read from the environment.
type Config struct {
	SupabaseURL        string
	SupabaseServiceKey string
	StorageBucket      string
	DatabaseURL        string

	OpenAIAPIKey  string
	OpenAIBaseURL string

	FFmpegPath     string
	FFprobePath    string
	FrameCachePath string

	Port     string
	LogLevel string
	Workers  int
}

// Load reads a .env file when present and then the environment.
func Load() (Config, error) {
	// a missing .env is fine; real env vars win either way
	_ = godotenv.Load()

	cfg := Config{
		SupabaseURL:        strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		StorageBucket:      envOr("SUPABASE_STORAGE_BUCKET", "videos"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		FFmpegPath:         envOr("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:        envOr("FFPROBE_PATH", "ffprobe"),
		FrameCachePath:     envOr("FRAME_CACHE_PATH", "frames.db"),
		Port:               envOr("PORT", "8080"),
		LogLevel:           envOr("LOG_LEVEL", "info"),
		Workers:            4,
	}

	if v := os.Getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parse WORKERS %q: %w", v, err)
		}
		cfg.Workers = n
	}
	return cfg, nil
}

// Validate reports every missing or invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.SupabaseURL == "" && c.DatabaseURL == "" {
		errs = append(errs, errors.New("SUPABASE_URL or DATABASE_URL must be set"))
	}
	if c.SupabaseURL != "" && c.SupabaseServiceKey == "" {
		errs = append(errs, errors.New("SUPABASE_SERVICE_KEY must be set with SUPABASE_URL"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("WORKERS must be positive, got %d", c.Workers))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT must be numeric, got %q", c.Port))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
