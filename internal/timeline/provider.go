package timeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultCaptureTimeout bounds a single frame capture.
const DefaultCaptureTimeout = 10 * time.Second

var (
	// ErrNoSource is returned when a Source carries neither a URL nor an element.
	ErrNoSource = errors.New("timeline: capture source is empty")
	// ErrCaptureTimeout is returned when a capture exceeds its deadline.
	ErrCaptureTimeout = errors.New("timeline: capture timed out")
)

// Seekable is a live media element that frames can be drawn from. Seek must
// return once the element reports the new position or ctx is done.
type Seekable interface {
	CurrentTime() float64
	Seek(ctx context.Context, seconds float64) error
	Frame(ctx context.Context) ([]byte, error)
}

// Source identifies what to capture from: a media URL or a live element.
// A URL takes precedence when both are set.
type Source struct {
	URL     string
	Element Seekable
}

// URLSource returns a Source backed by a media URL.
func URLSource(url string) Source { return Source{URL: url} }

// ElementSource returns a Source backed by a live element.
func ElementSource(el Seekable) Source { return Source{Element: el} }

// FrameProvider captures a still image at the given position of a source.
type FrameProvider interface {
	Capture(ctx context.Context, src Source, seconds float64) ([]byte, error)
}

// FrameProviderFunc adapts a function to FrameProvider.
type FrameProviderFunc func(ctx context.Context, src Source, seconds float64) ([]byte, error)

func (f FrameProviderFunc) Capture(ctx context.Context, src Source, seconds float64) ([]byte, error) {
	return f(ctx, src, seconds)
}

// URLCapturer decodes a frame straight from a media URL.
type URLCapturer interface {
	CaptureFrame(ctx context.Context, url string, seconds float64) ([]byte, error)
}

// URLProvider captures frames by URL, independent of any live element.
type URLProvider struct {
	Capturer URLCapturer
}

func (p URLProvider) Capture(ctx context.Context, src Source, seconds float64) ([]byte, error) {
	if src.URL == "" {
		return nil, ErrNoSource
	}
	return p.Capturer.CaptureFrame(ctx, src.URL, seconds)
}

// ElementProvider captures frames by seeking a live element. The element's
// position before the capture is restored on every exit path, and captures
// on one provider never overlap.
type ElementProvider struct {
	Timeout time.Duration

	mu sync.Mutex
}

func (p *ElementProvider) Capture(ctx context.Context, src Source, seconds float64) (img []byte, err error) {
	el := src.Element
	if el == nil {
		return nil, ErrNoSource
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultCaptureTimeout
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	saved := el.CurrentTime()
	defer func() {
		// the capture context may already be done
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if rerr := el.Seek(rctx, saved); rerr != nil && err == nil {
			err = fmt.Errorf("restore position %.3f: %w", saved, rerr)
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := el.Seek(cctx, seconds); err != nil {
		return nil, captureErr(cctx, fmt.Errorf("seek to %.3f: %w", seconds, err))
	}
	img, err = el.Frame(cctx)
	if err != nil {
		return nil, captureErr(cctx, fmt.Errorf("draw frame at %.3f: %w", seconds, err))
	}
	return img, nil
}

func captureErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrCaptureTimeout, err)
	}
	return err
}

// MultiProvider routes URL sources to URL and element sources to Element.
type MultiProvider struct {
	URL     FrameProvider
	Element FrameProvider
}

func (m MultiProvider) Capture(ctx context.Context, src Source, seconds float64) ([]byte, error) {
	switch {
	case src.URL != "" && m.URL != nil:
		return m.URL.Capture(ctx, src, seconds)
	case src.Element != nil && m.Element != nil:
		return m.Element.Capture(ctx, src, seconds)
	default:
		return nil, ErrNoSource
	}
}
