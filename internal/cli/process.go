package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erinovdaniil/onboarding/internal/jobs"
	"github.com/erinovdaniil/onboarding/internal/timeline"
)

func newProcessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <projectId>",
		Short: "Generate the onboarding document of a project",
		Long: "Builds the steps of a project from its transcript, or from fixed windows of its video " +
			"when there is none, captures and uploads their screenshots and prints the document as JSON.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return process(cmd, args[0])
		},
	}
	cmd.Flags().Bool("retranscribe", false, "Transcribe the video again before generating")
	cmd.Flags().Float64("interval", timeline.DefaultInterval, "Step length in seconds when there is no transcript")
	cmd.Flags().String("out", "", "Write the document to this file instead of stdout")
	cmd.Flags().Duration("timeout", 30*time.Minute, "Give up after this long")
	return cmd
}

func process(cmd *cobra.Command, projectID string) error {
	retranscribe, _ := cmd.Flags().GetBool("retranscribe")
	interval, _ := cmd.Flags().GetFloat64("interval")
	outPath, _ := cmd.Flags().GetString("out")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	svc, err := newServices(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()
	deps := svc.jobDeps(interval)

	if retranscribe {
		rj := jobs.NewRetranscribeJob(projectID, deps)
		if err := rj.Execute(ctx); err != nil {
			return fmt.Errorf("retranscribe %s: %w", projectID, err)
		}
	}

	dj := jobs.NewDocumentJob(projectID, deps)
	if err := dj.Execute(ctx); err != nil {
		return fmt.Errorf("generate document %s: %w", projectID, err)
	}

	out := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(dj.Document())
}
