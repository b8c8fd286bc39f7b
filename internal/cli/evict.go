package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erinovdaniil/onboarding/config"
	"github.com/erinovdaniil/onboarding/internal/framecache"
)

func newEvictFramesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "evict-frames <video-url>...",
		Short: "Drop cached frames of videos",
		Long:  "Removes every cached frame of the given videos, for example after a re-upload. Signing tokens in the URLs are ignored.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if cfg.FrameCachePath == "" {
				return errors.New("FRAME_CACHE_PATH is empty, there is no frame cache")
			}
			log := config.InitLogger(cfg.LogLevel)

			cache, err := framecache.Open(cfg.FrameCachePath, log)
			if err != nil {
				return err
			}
			defer cache.Close()

			for _, u := range args {
				n, err := cache.Evict(cmd.Context(), u)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", framecache.SourceKey(u), n)
			}
			return nil
		},
	}
}
