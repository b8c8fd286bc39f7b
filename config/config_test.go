package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SUPABASE_STORAGE_BUCKET", "PORT", "WORKERS", "FFMPEG_PATH", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageBucket != "videos" || cfg.Port != "8080" || cfg.Workers != 4 || cfg.FFmpegPath != "ffmpeg" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_BadWorkers(t *testing.T) {
	t.Setenv("WORKERS", "many")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-numeric WORKERS")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "ok", cfg: Config{SupabaseURL: "https://x.supabase.co", SupabaseServiceKey: "k", Port: "8080", Workers: 2}},
		{name: "pgx only", cfg: Config{DatabaseURL: "postgres://localhost/db", Port: "8080", Workers: 1}},
		{name: "no store", cfg: Config{Port: "8080", Workers: 1}, wantErr: "SUPABASE_URL or DATABASE_URL"},
		{name: "missing key", cfg: Config{SupabaseURL: "https://x.supabase.co", Port: "8080", Workers: 1}, wantErr: "SUPABASE_SERVICE_KEY"},
		{name: "bad workers and port", cfg: Config{DatabaseURL: "postgres://", Port: "http", Workers: 0}, wantErr: "WORKERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
