// Package playback owns the authoritative playback position of the primary
// video and keeps secondary streams following it.
package playback

import (
	"sync"

	"github.com/erinovdaniil/onboarding/internal/timeutil"
)

// EventType names a change notification emitted by a Clock.
type EventType int

const (
	Play EventType = iota
	Pause
	Seeked
	TimeUpdate
	VolumeChange
	DurationChange
)

func (e EventType) String() string {
	switch e {
	case Play:
		return "play"
	case Pause:
		return "pause"
	case Seeked:
		return "seeked"
	case TimeUpdate:
		return "timeupdate"
	case VolumeChange:
		return "volumechange"
	case DurationChange:
		return "durationchange"
	default:
		return "unknown"
	}
}

// Snapshot is the clock state at the moment of an event.
type Snapshot struct {
	Current  float64 `json:"current"`
	Duration float64 `json:"duration"`
	Playing  bool    `json:"playing"`
}

// Event is delivered to subscribers after the clock state changed.
type Event struct {
	Type EventType
	Snapshot
}

// Clock is the single owner of the primary video's playback state. The
// media shell feeds it through the Report methods; every other component
// only reads it and subscribes to it.
type Clock struct {
	mu       sync.Mutex
	state    Snapshot
	nextID   int
	handlers map[int]func(Event)
	order    []int
}

// NewClock returns a paused clock at zero.
func NewClock() *Clock {
	return &Clock{handlers: make(map[int]func(Event))}
}

// Current returns the current playback position in seconds.
func (c *Clock) Current() float64 { return c.Snapshot().Current }

// Duration returns the media duration in seconds, 0 when unknown.
func (c *Clock) Duration() float64 { return c.Snapshot().Duration }

// Playing reports whether the primary media is playing.
func (c *Clock) Playing() bool { return c.Snapshot().Playing }

// Snapshot returns the full clock state.
func (c *Clock) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for every event and returns a function that
// removes it. Handlers run synchronously in subscription order.
func (c *Clock) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.handlers[id] = fn
	c.order = append(c.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.handlers, id)
			for i, v := range c.order {
				if v == id {
					c.order = append(c.order[:i], c.order[i+1:]...)
					break
				}
			}
		})
	}
}

// ReportPlay records that playback started.
func (c *Clock) ReportPlay() { c.update(Play, func(s *Snapshot) { s.Playing = true }) }

// ReportPause records that playback stopped.
func (c *Clock) ReportPause() { c.update(Pause, func(s *Snapshot) { s.Playing = false }) }

// ReportSeeked records an explicit scrub to seconds.
func (c *Clock) ReportSeeked(seconds float64) {
	c.update(Seeked, func(s *Snapshot) { s.Current = c.clampLocked(s, seconds) })
}

// ReportTimeUpdate records continuous playback progress.
func (c *Clock) ReportTimeUpdate(seconds float64) {
	c.update(TimeUpdate, func(s *Snapshot) { s.Current = c.clampLocked(s, seconds) })
}

// ReportVolumeChange notifies subscribers that the primary volume or mute
// state changed.
func (c *Clock) ReportVolumeChange() { c.update(VolumeChange, func(*Snapshot) {}) }

// ReportDuration records the media duration once known. Implausible values
// are stored as unknown.
func (c *Clock) ReportDuration(seconds float64) {
	c.update(DurationChange, func(s *Snapshot) {
		if timeutil.IsPlausibleDuration(seconds) {
			s.Duration = seconds
		} else {
			s.Duration = 0
		}
	})
}

func (c *Clock) clampLocked(s *Snapshot, seconds float64) float64 {
	if !timeutil.IsFinite(seconds) || seconds < 0 {
		return 0
	}
	if s.Duration > 0 {
		return timeutil.Clamp(seconds, 0, s.Duration)
	}
	return seconds
}

func (c *Clock) update(t EventType, mutate func(*Snapshot)) {
	c.mu.Lock()
	mutate(&c.state)
	ev := Event{Type: t, Snapshot: c.state}
	handlers := make([]func(Event), 0, len(c.order))
	for _, id := range c.order {
		handlers = append(handlers, c.handlers[id])
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
