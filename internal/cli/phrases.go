package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/erinovdaniil/onboarding/internal/timeline"
	"github.com/erinovdaniil/onboarding/internal/transcript"
)

type phrasesOutput struct {
	Digest  string              `json:"digest"`
	Phrases []transcript.Phrase `json:"phrases"`
	Steps   []timeline.Step     `json:"steps,omitempty"`
}

func newPhrasesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phrases <items.json|->",
		Short: "Group transcript items into phrases",
		Long: "Reads a JSON array of transcript items ({word_or_segment_text, start, end, is_cleaned_segment}) " +
			"and prints the phrases they group into. Use - to read stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return phrases(cmd, args[0])
		},
	}
	cmd.Flags().Float64("pause", transcript.DefaultPauseThreshold, "Silence in seconds that starts a new phrase")
	cmd.Flags().Bool("steps", false, "Also print the steps built from the phrases")
	return cmd
}

func phrases(cmd *cobra.Command, path string) error {
	pause, _ := cmd.Flags().GetFloat64("pause")
	withSteps, _ := cmd.Flags().GetBool("steps")

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	var items []transcript.WireSegment
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	grouped := transcript.GroupIntoPhrases(transcript.FromWire(items), pause)
	out := phrasesOutput{Digest: transcript.Digest(grouped), Phrases: grouped}
	if withSteps {
		out.Steps = timeline.FromPhrases(grouped)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
