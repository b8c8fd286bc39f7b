package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrCaptureTimeout is returned when ffmpeg does not produce a frame in time.
var ErrCaptureTimeout = errors.New("ffmpeg: capture timed out")

// DefaultTimeout bounds a single ffmpeg or ffprobe run.
const DefaultTimeout = 10 * time.Second

// FFProbeOutput defines the structure for ffprobe JSON output relevant to duration.
type FFProbeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Runner invokes the ffmpeg and ffprobe binaries.
type Runner struct {
	FFmpegPath  string
	FFprobePath string
	Timeout     time.Duration
	Logger      logrus.FieldLogger
}

// NewRunner returns a Runner using the given binaries. Empty paths resolve
// from PATH.
func NewRunner(ffmpegPath, ffprobePath string, logger logrus.FieldLogger) *Runner {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Runner{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath, Timeout: DefaultTimeout, Logger: logger}
}

func (r *Runner) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// FrameArgs builds the ffmpeg arguments that decode one JPEG frame at
// seconds from input and write it to stdout. Seeking before -i keeps the
// decode cheap on remote inputs.
func FrameArgs(input string, seconds float64) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", strconv.FormatFloat(seconds, 'f', 3, 64),
		"-i", input,
		"-frames:v", "1",
		"-q:v", "3",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"pipe:1",
	}
}

// CaptureFrame decodes the frame at seconds from a local path or URL and
// returns it as JPEG bytes.
func (r *Runner) CaptureFrame(ctx context.Context, input string, seconds float64) ([]byte, error) {
	if seconds < 0 {
		seconds = 0
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, r.FFmpegPath, FrameArgs(input, seconds)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w at %.3fs", ErrCaptureTimeout, seconds)
		}
		return nil, fmt.Errorf("ffmpeg frame at %.3fs failed: %w: %s", seconds, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg frame at %.3fs: no output (position past end?)", seconds)
	}
	r.Logger.WithFields(logrus.Fields{"seconds": seconds, "bytes": stdout.Len()}).Debug("frame captured")
	return stdout.Bytes(), nil
}

// ProbeDuration uses ffprobe to read the duration of a media file or URL in
// seconds.
func (r *Runner) ProbeDuration(ctx context.Context, input string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, r.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		input,
	)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseProbeDuration(out.Bytes())
}

func parseProbeDuration(out []byte) (float64, error) {
	var probe FFProbeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("error unmarshalling ffprobe output: %w", err)
	}
	if probe.Format.Duration == "" {
		return 0, errors.New("could not retrieve duration from ffprobe output")
	}
	d, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing duration string %q: %w", probe.Format.Duration, err)
	}
	return d, nil
}

// ExtractAudio writes a 16 kHz mono MP3 of input's audio track to output,
// the format the speech API accepts most cheaply.
func (r *Runner) ExtractAudio(ctx context.Context, input, output string) error {
	// audio extraction runs over whole files, so allow far more than a frame
	ctx, cancel := context.WithTimeout(ctx, 30*r.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, r.FFmpegPath,
		"-y",
		"-hide_banner", "-loglevel", "error",
		"-i", input,
		"-vn",
		"-acodec", "libmp3lame",
		"-ar", "16000",
		"-ac", "1",
		output,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg audio extraction failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	r.Logger.WithFields(logrus.Fields{"input": input, "output": output}).Info("audio extracted")
	return nil
}
