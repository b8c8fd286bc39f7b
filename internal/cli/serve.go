package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	_ "github.com/erinovdaniil/onboarding/docs"
	"github.com/erinovdaniil/onboarding/handlers"
	"github.com/erinovdaniil/onboarding/internal/session"
	"github.com/erinovdaniil/onboarding/internal/timeline"
	"github.com/erinovdaniil/onboarding/internal/worker"
	"github.com/erinovdaniil/onboarding/middleware"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}
	cmd.Flags().Int("queue", 100, "Background job queue size")
	cmd.Flags().Duration("save-delay", 0, "Delay before transcript edits are saved (0 uses the default)")
	return cmd
}

func serve(cmd *cobra.Command) error {
	queueSize, _ := cmd.Flags().GetInt("queue")
	saveDelay, _ := cmd.Flags().GetDuration("save-delay")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newServices(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	dispatcher := worker.NewDispatcher(cfg.Workers, queueSize, log)
	dispatcher.Run(ctx)

	sessDeps := session.Deps{
		Store:     svc.store,
		Prober:    svc.runner,
		Provider:  timeline.URLProvider{Capturer: svc.frames},
		Submitter: dispatcher,
		Logger:    log,
		SaveDelay: saveDelay,
	}
	h := handlers.ApplicationHandler{
		Logger:  log,
		Store:   svc.store,
		Frames:  svc.frames,
		Queue:   dispatcher,
		JobDeps: svc.jobDeps(timeline.DefaultInterval),
	}
	if svc.bucket != nil {
		sessDeps.Videos = svc.bucket
		sessDeps.Uploader = svc.bucket
		h.Videos = svc.bucket
	}
	sessions := session.NewManager(sessDeps)
	h.Sessions = sessions
	api := handlers.NewApplicationHandler(h)

	app := fiber.New(fiber.Config{
		AppName:      "onboarding",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		BodyLimit:    8 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.RequestIDHeader,
	}))
	app.Use(middleware.RequestLogger(log))
	app.Get("/swagger/*", fiberSwagger.WrapHandler)
	api.RegisterRoutes(app)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Starting onboarding API")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		dispatcher.Stop()
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down onboarding API")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.WithError(err).Warn("HTTP shutdown incomplete")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sessions.CloseAll(flushCtx); err != nil {
		log.WithError(err).Error("Unsaved transcript edits lost on shutdown")
	}
	dispatcher.Stop()

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Warn("listener stopped with error")
	}
	log.Info("Onboarding API shut down gracefully")
	return nil
}
