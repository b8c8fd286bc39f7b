package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/erinovdaniil/onboarding/config"
	"github.com/erinovdaniil/onboarding/internal/aiclient"
	"github.com/erinovdaniil/onboarding/internal/db"
	"github.com/erinovdaniil/onboarding/internal/ffmpeg"
	"github.com/erinovdaniil/onboarding/internal/framecache"
	"github.com/erinovdaniil/onboarding/internal/jobs"
	"github.com/erinovdaniil/onboarding/internal/storage"
)

// services are the long-lived clients shared by every command.
type services struct {
	store  db.Store
	bucket *storage.Bucket
	runner *ffmpeg.Runner
	cache  *framecache.Cache
	frames jobs.FrameCapturer
	speech *aiclient.Client
	log    *logrus.Logger
}

func newServices(ctx context.Context, cfg config.Config, log *logrus.Logger) (*services, error) {
	s := &services{log: log}

	switch {
	case cfg.DatabaseURL != "":
		store, err := db.NewPgStore(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		s.store = store
		log.Info("using postgres store")
	default:
		client, err := config.NewPostgrest(cfg)
		if err != nil {
			return nil, err
		}
		s.store = db.NewPostgrestStore(client, log)
		log.Info("using postgrest store")
	}

	if cfg.SupabaseURL != "" {
		client, err := config.NewSupabase(cfg)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.bucket = storage.NewBucket(client.Storage, cfg.StorageBucket, log)
	} else {
		log.Warn("no supabase storage configured, screenshots and retranscription disabled")
	}

	s.runner = ffmpeg.NewRunner(cfg.FFmpegPath, cfg.FFprobePath, log)
	s.frames = s.runner
	if cfg.FrameCachePath != "" {
		cache, err := framecache.Open(cfg.FrameCachePath, log)
		if err != nil {
			log.WithError(err).Warn("frame cache unavailable, capturing without it")
		} else {
			s.cache = cache
			s.frames = framecache.CachingCapturer{Cache: cache, Next: s.runner}
		}
	}

	s.speech = aiclient.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, log)
	if !s.speech.Enabled() {
		log.Warn("OPENAI_API_KEY not set, transcription disabled")
	}
	return s, nil
}

// jobDeps returns the collaborators for background jobs. Storage-backed
// fields stay nil without a bucket.
func (s *services) jobDeps(interval float64) jobs.Deps {
	d := jobs.Deps{
		Store:    s.store,
		Audio:    s.runner,
		Frames:   s.frames,
		Prober:   s.runner,
		Speech:   s.speech,
		Logger:   s.log,
		Interval: interval,
	}
	if s.bucket != nil {
		d.Videos = s.bucket
	}
	return d
}

// Close releases the store and the frame cache.
func (s *services) Close() {
	if s.store != nil {
		s.store.Close()
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.log.WithError(err).Warn("closing frame cache")
		}
	}
}

func loadConfig() (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, fmt.Errorf("config: %w", err)
	}
	return cfg, config.InitLogger(cfg.LogLevel), nil
}
