package timeline

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeElement struct {
	pos       float64
	seeks     []float64
	frameErr  error
	hangFrame bool
}

func (e *fakeElement) CurrentTime() float64 { return e.pos }

func (e *fakeElement) Seek(ctx context.Context, seconds float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.seeks = append(e.seeks, seconds)
	e.pos = seconds
	return nil
}

func (e *fakeElement) Frame(ctx context.Context) ([]byte, error) {
	if e.hangFrame {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if e.frameErr != nil {
		return nil, e.frameErr
	}
	return []byte("frame"), nil
}

func TestElementProvider_RestoresPosition(t *testing.T) {
	tests := []struct {
		name    string
		el      *fakeElement
		wantErr error
	}{
		{name: "success", el: &fakeElement{pos: 42}},
		{name: "decode error", el: &fakeElement{pos: 42, frameErr: errors.New("tainted")}},
		{name: "timeout", el: &fakeElement{pos: 42, hangFrame: true}, wantErr: ErrCaptureTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ElementProvider{Timeout: 20 * time.Millisecond}
			img, err := p.Capture(context.Background(), ElementSource(tt.el), 7.5)

			if tt.el.pos != 42 {
				t.Fatalf("position not restored: %v", tt.el.pos)
			}
			if len(tt.el.seeks) != 2 || tt.el.seeks[0] != 7.5 || tt.el.seeks[1] != 42 {
				t.Fatalf("unexpected seeks: %v", tt.el.seeks)
			}
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			case tt.el.frameErr != nil:
				if err == nil {
					t.Fatalf("expected error")
				}
			default:
				if err != nil || string(img) != "frame" {
					t.Fatalf("unexpected result %q, %v", img, err)
				}
			}
		})
	}
}

func TestElementProvider_NoElement(t *testing.T) {
	p := &ElementProvider{}
	if _, err := p.Capture(context.Background(), URLSource("https://example.com/v.mp4"), 1); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

type fakeURLCapturer struct{ url string }

func (f *fakeURLCapturer) CaptureFrame(ctx context.Context, url string, seconds float64) ([]byte, error) {
	f.url = url
	return []byte("url-frame"), nil
}

func TestMultiProvider_PrefersURL(t *testing.T) {
	uc := &fakeURLCapturer{}
	el := &fakeElement{pos: 1}
	m := MultiProvider{URL: URLProvider{Capturer: uc}, Element: &ElementProvider{}}

	img, err := m.Capture(context.Background(), Source{URL: "https://cdn/v.mp4", Element: el}, 3)
	if err != nil || string(img) != "url-frame" {
		t.Fatalf("unexpected result %q, %v", img, err)
	}
	if len(el.seeks) != 0 {
		t.Fatalf("live element must not be touched when a URL is available")
	}

	img, err = m.Capture(context.Background(), ElementSource(el), 3)
	if err != nil || string(img) != "frame" {
		t.Fatalf("unexpected element result %q, %v", img, err)
	}
	if _, err := m.Capture(context.Background(), Source{}, 3); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}
