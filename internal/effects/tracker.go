package effects

import (
	"sync"

	"github.com/erinovdaniil/onboarding/internal/playback"
)

// Tracker republishes the transform of the single active region on every
// playback time update and seek.
type Tracker struct {
	mu      sync.Mutex
	region  *Region
	publish func(Transform)

	unsubscribe func()
}

// NewTracker subscribes to clock. publish receives every new sample.
func NewTracker(clock *playback.Clock, publish func(Transform)) *Tracker {
	tr := &Tracker{publish: publish}
	tr.unsubscribe = clock.Subscribe(tr.handle)
	return tr
}

// SetRegion replaces the active region.
func (tr *Tracker) SetRegion(r Region) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.region = &r
}

// ClearRegion removes the active region.
func (tr *Tracker) ClearRegion() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.region = nil
}

// Region returns the active region, if any.
func (tr *Tracker) Region() (Region, bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.region == nil {
		return Region{}, false
	}
	return *tr.region, true
}

// At samples the active region at t.
func (tr *Tracker) At(t float64) Transform {
	r, ok := tr.Region()
	if !ok {
		return Identity
	}
	return Sample(r, t)
}

// Close stops following the clock.
func (tr *Tracker) Close() { tr.unsubscribe() }

func (tr *Tracker) handle(ev playback.Event) {
	switch ev.Type {
	case playback.TimeUpdate, playback.Seeked:
		if tr.publish != nil {
			tr.publish(tr.At(ev.Current))
		}
	}
}
