// Package autosave persists the latest edit of a value in the background
// and reports where the save stands.
package autosave

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Status is the save state reported to the editor.
type Status int

const (
	Saved Status = iota
	Unsaved
	Saving
	Failed
)

func (s Status) String() string {
	switch s {
	case Saved:
		return "Saved"
	case Unsaved:
		return "Unsaved"
	case Saving:
		return "Saving"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText lets statuses appear as strings in JSON.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// DefaultDelay is how long edits settle before a save starts.
const DefaultDelay = 1500 * time.Millisecond

// DefaultTimeout bounds one save call.
const DefaultTimeout = 30 * time.Second

// Options configures a Saver.
type Options struct {
	Delay    time.Duration
	Timeout  time.Duration
	Logger   logrus.FieldLogger
	OnStatus func(Status)
}

// Saver debounces edits of a T and writes the latest one with save. A failed
// save is not retried; the next edit schedules a new attempt. The caller's
// in-memory value is never touched.
type Saver[T any] struct {
	save     func(ctx context.Context, v T) error
	delay    time.Duration
	timeout  time.Duration
	logger   logrus.FieldLogger
	onStatus func(Status)

	mu      sync.Mutex
	status  Status
	pending *T
	lastErr error
	timer   *time.Timer
	closed  bool

	// saveMu keeps saves in edit order
	saveMu sync.Mutex
}

// New returns a Saver that writes values with save.
func New[T any](save func(ctx context.Context, v T) error, opts Options) *Saver[T] {
	s := &Saver[T]{
		save:     save,
		delay:    opts.Delay,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		onStatus: opts.OnStatus,
	}
	if s.delay <= 0 {
		s.delay = DefaultDelay
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.logger = l
	}
	return s
}

// Status returns the current save state and the error of the last failed
// save, if the state is Failed.
func (s *Saver[T]) Status() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == Failed {
		return s.status, s.lastErr
	}
	return s.status, nil
}

// Update records v as the latest edit and restarts the debounce timer.
func (s *Saver[T]) Update(v T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = &v
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { _ = s.Flush(context.Background()) })
	changed := s.setLocked(Unsaved)
	s.mu.Unlock()
	s.notify(changed)
}

// Flush saves the pending edit now, if there is one.
func (s *Saver[T]) Flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return nil
	}
	v := *s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	changed := s.setLocked(Saving)
	s.mu.Unlock()
	s.notify(changed)

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.save(sctx, v)
	cancel()

	s.mu.Lock()
	next := Saved
	switch {
	case s.pending != nil:
		// edited while saving; the next save is already scheduled
		next = Unsaved
	case err != nil:
		next = Failed
	}
	if err != nil {
		s.lastErr = err
	}
	changed = s.setLocked(next)
	s.mu.Unlock()
	s.notify(changed)

	if err != nil {
		s.logger.WithError(err).Warn("autosave failed")
		return fmt.Errorf("autosave: %w", err)
	}
	s.logger.Debug("autosave complete")
	return nil
}

// Close flushes the pending edit and stops accepting new ones.
func (s *Saver[T]) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.Flush(ctx)
}

func (s *Saver[T]) setLocked(st Status) bool {
	if s.status == st {
		return false
	}
	s.status = st
	return true
}

func (s *Saver[T]) notify(changed bool) {
	if !changed || s.onStatus == nil {
		return
	}
	st, _ := s.Status()
	s.onStatus(st)
}
