package framecache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type countingCapturer struct {
	calls int
	err   error
}

func (c *countingCapturer) CaptureFrame(ctx context.Context, url string, seconds float64) ([]byte, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []byte{0xff, 0xd8, byte(c.calls)}, nil
}

func openCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "frames.db"), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestKey_IgnoresSigningToken(t *testing.T) {
	a := Key("https://cdn.test/videos/p1/original.mp4?token=aaa", 1.2344)
	b := Key("https://cdn.test/videos/p1/original.mp4?token=bbb", 1.2341)
	if a != b {
		t.Fatalf("expected equal keys, got %q and %q", a, b)
	}
	if a == Key("https://cdn.test/videos/p1/original.mp4", 1.25) {
		t.Fatalf("expected different key for a different position")
	}
}

func TestCache_GetPut(t *testing.T) {
	c := openCache(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, "u", 1); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
	if err := c.Put(ctx, "u", 1, []byte("a")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Put(ctx, "u", 1, []byte("b")); err != nil {
		t.Fatalf("put again: %v", err)
	}
	got, err := c.Get(ctx, "u", 1)
	if err != nil || string(got) != "b" {
		t.Fatalf("got %q, %v", got, err)
	}

	n, err := c.Evict(ctx, "u")
	if err != nil || n != 1 {
		t.Fatalf("evict: %d, %v", n, err)
	}
	if _, err := c.Get(ctx, "u", 1); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected miss after evict, got %v", err)
	}
}

func TestCachingCapturer(t *testing.T) {
	next := &countingCapturer{}
	cc := CachingCapturer{Cache: openCache(t), Next: next}
	ctx := context.Background()

	first, err := cc.CaptureFrame(ctx, "https://cdn.test/v.mp4?token=1", 3)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	second, err := cc.CaptureFrame(ctx, "https://cdn.test/v.mp4?token=2", 3)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if next.calls != 1 || string(first) != string(second) {
		t.Fatalf("expected one underlying capture, got %d", next.calls)
	}
}

func TestCachingCapturer_ErrorNotCached(t *testing.T) {
	next := &countingCapturer{err: errors.New("decode failed")}
	cc := CachingCapturer{Cache: openCache(t), Next: next}

	for i := 0; i < 2; i++ {
		if _, err := cc.CaptureFrame(context.Background(), "v.mp4", 1); err == nil {
			t.Fatalf("expected error")
		}
	}
	if next.calls != 2 {
		t.Fatalf("expected failures to reach the capturer each time, got %d", next.calls)
	}
}
