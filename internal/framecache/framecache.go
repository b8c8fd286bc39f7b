// Package framecache keeps decoded video frames in a local SQLite file so
// repeated captures of the same position skip ffmpeg.
package framecache

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"lukechampine.com/blake3"

	"github.com/erinovdaniil/onboarding/internal/timeutil"
)

// ErrMiss is returned by Get when no frame is cached for a key.
var ErrMiss = errors.New("framecache: miss")

const schema = `
create table if not exists frames (
	key        text primary key,
	source     text not null,
	at_ms      integer not null,
	image      blob not null,
	created_at integer not null
);
create index if not exists frames_source on frames (source);
`

// Cache is a SQLite-backed frame store.
type Cache struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

// Open opens or creates the cache database at path.
func Open(path string, logger logrus.FieldLogger) (*Cache, error) {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open frame cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create frame cache schema: %w", err)
	}
	return &Cache{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

// SourceKey identifies a video independent of signing tokens in its URL
// query string.
func SourceKey(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		u.RawQuery = ""
		u.Fragment = ""
		rawURL = u.String()
	}
	h := blake3.New(32, nil)
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// Key is the cache key for the frame of source at seconds, to millisecond
// precision.
func Key(source string, seconds float64) string {
	return SourceKey(source) + ":" + strconv.FormatInt(timeutil.ToMillis(seconds), 10)
}

// Get returns the cached frame of source at seconds, or ErrMiss.
func (c *Cache) Get(ctx context.Context, source string, seconds float64) ([]byte, error) {
	var img []byte
	err := c.db.QueryRowContext(ctx,
		"select image from frames where key = $1",
		Key(source, seconds),
	).Scan(&img)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get frame: %w", err)
	}
	return img, nil
}

// Put stores the frame of source at seconds, replacing any previous one.
func (c *Cache) Put(ctx context.Context, source string, seconds float64, img []byte) error {
	_, err := c.db.ExecContext(ctx, `
		insert into frames (key, source, at_ms, image, created_at)
		values ($1, $2, $3, $4, $5)
		on conflict (key) do update set image = excluded.image, created_at = excluded.created_at
	`, Key(source, seconds), SourceKey(source), timeutil.ToMillis(seconds), img, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("put frame: %w", err)
	}
	return nil
}

// Evict removes every cached frame of source and reports how many were
// dropped.
func (c *Cache) Evict(ctx context.Context, source string) (int64, error) {
	res, err := c.db.ExecContext(ctx, "delete from frames where source = $1", SourceKey(source))
	if err != nil {
		return 0, fmt.Errorf("evict frames: %w", err)
	}
	return res.RowsAffected()
}

// Capturer decodes a frame from a video URL.
type Capturer interface {
	CaptureFrame(ctx context.Context, url string, seconds float64) ([]byte, error)
}

// CachingCapturer serves frames from the cache and falls through to the
// wrapped Capturer on a miss.
type CachingCapturer struct {
	Cache *Cache
	Next  Capturer
}

// CaptureFrame implements Capturer.
func (c CachingCapturer) CaptureFrame(ctx context.Context, url string, seconds float64) ([]byte, error) {
	if img, err := c.Cache.Get(ctx, url, seconds); err == nil {
		return img, nil
	} else if !errors.Is(err, ErrMiss) {
		c.Cache.logger.WithError(err).Warn("frame cache read failed")
	}

	img, err := c.Next.CaptureFrame(ctx, url, seconds)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Put(ctx, url, seconds, img); err != nil {
		c.Cache.logger.WithError(err).Warn("frame cache write failed")
	}
	return img, nil
}
