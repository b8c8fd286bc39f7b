package timeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/erinovdaniil/onboarding/internal/timeutil"
	"github.com/erinovdaniil/onboarding/internal/transcript"
	"github.com/erinovdaniil/onboarding/internal/worker"
)

// State is the materialization state of a Builder.
type State int

const (
	Empty State = iota
	Materializing
	Materialized
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Materializing:
		return "materializing"
	case Materialized:
		return "materialized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Submitter queues capture jobs. *worker.Dispatcher satisfies it.
type Submitter interface {
	Submit(job worker.Job) error
}

type goSubmitter struct{}

func (goSubmitter) Submit(job worker.Job) error {
	go func() { _ = job.Execute(context.Background()) }()
	return nil
}

// InlineSubmitter runs each job before Submit returns. Batch callers use it
// to wait for every capture of a FillScreenshots call.
type InlineSubmitter struct{}

func (InlineSubmitter) Submit(job worker.Job) error {
	_ = job.Execute(context.Background())
	return nil
}

// Options configures a Builder.
type Options struct {
	Provider       FrameProvider
	Source         Source
	Submitter      Submitter
	Logger         logrus.FieldLogger
	CaptureTimeout time.Duration
	// OnChange, when set, is called with the updated step after every capture
	// that changed it. It runs without the builder lock held.
	OnChange func(Step)
}

// Builder is the working set of steps for one editing session.
type Builder struct {
	mu       sync.Mutex
	state    State
	digest   string
	duration float64
	steps    []Step
	gens     map[string]uint64
	queued   map[string]bool
	seq      uint64

	provider FrameProvider
	source   Source
	submit   Submitter
	logger   logrus.FieldLogger
	timeout  time.Duration
	onChange func(Step)
}

// NewBuilder returns an empty Builder. Without a Submitter, captures run on
// their own goroutines.
func NewBuilder(opts Options) *Builder {
	b := &Builder{
		gens:     make(map[string]uint64),
		queued:   make(map[string]bool),
		provider: opts.Provider,
		source:   opts.Source,
		submit:   opts.Submitter,
		logger:   opts.Logger,
		timeout:  opts.CaptureTimeout,
		onChange: opts.OnChange,
	}
	if b.submit == nil {
		b.submit = goSubmitter{}
	}
	if b.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		b.logger = l
	}
	if b.timeout <= 0 {
		b.timeout = DefaultCaptureTimeout
	}
	return b
}

// State reports the current materialization state.
func (b *Builder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Digest reports the phrase digest the steps were materialized from, if any.
func (b *Builder) Digest() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.digest
}

// SetDuration records the media duration used to bound inserted steps.
func (b *Builder) SetDuration(d float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if timeutil.IsPlausibleDuration(d) {
		b.duration = d
	}
}

// SetSource changes the capture source for subsequent captures.
func (b *Builder) SetSource(src Source) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.source = src
}

// MaterializeFromPhrases creates the step list from phrases once per
// session. It reports whether this call created the steps; later calls, for
// the same digest or any other, leave the working set and its edits alone.
// An empty phrase list does not satisfy the latch.
func (b *Builder) MaterializeFromPhrases(digest string, phrases []transcript.Phrase) bool {
	if len(phrases) == 0 {
		return false
	}
	return b.materialize(digest, func() []Step { return FromPhrases(phrases) })
}

// MaterializeFallback creates fixed-width steps when no transcript exists.
// An implausible duration does not satisfy the latch.
func (b *Builder) MaterializeFallback(duration, interval float64) bool {
	steps := Fallback(duration, interval)
	if len(steps) == 0 {
		return false
	}
	b.SetDuration(duration)
	return b.materialize("", func() []Step { return steps })
}

func (b *Builder) materialize(digest string, build func() []Step) bool {
	b.mu.Lock()
	if b.state != Empty {
		b.mu.Unlock()
		return false
	}
	b.state = Materializing
	b.mu.Unlock()

	steps := build()

	b.mu.Lock()
	// keep steps inserted by the user while building
	b.steps = append(steps, b.steps...)
	b.sortLocked()
	b.digest = digest
	b.state = Materialized
	b.mu.Unlock()

	b.logger.WithFields(logrus.Fields{"steps": len(steps), "digest": digest}).Info("steps materialized")
	return true
}

// Reset returns the builder to Empty, discarding every step. In-flight
// captures resolve into nothing.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Empty
	b.digest = ""
	b.steps = nil
	b.gens = make(map[string]uint64)
	b.queued = make(map[string]bool)
}

// Steps returns a snapshot of the working set ordered by start time.
func (b *Builder) Steps() []Step {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Step, len(b.steps))
	copy(out, b.steps)
	return out
}

// Step returns a copy of the step with the given id.
func (b *Builder) Step(id string) (Step, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return Step{}, fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	return b.steps[i], nil
}

func (b *Builder) indexOf(id string) int {
	for i := range b.steps {
		if b.steps[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Builder) sortLocked() {
	sort.SliceStable(b.steps, func(i, j int) bool { return b.steps[i].Start < b.steps[j].Start })
}

// UpdateStep merges patch into the step with the given id.
func (b *Builder) UpdateStep(id string, patch StepPatch) (Step, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return Step{}, fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	patch.apply(&b.steps[i])
	s := b.steps[i]
	if patch.Start != nil {
		b.sortLocked()
	}
	return s, nil
}

// DeleteStep removes the step with the given id.
func (b *Builder) DeleteStep(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	b.steps = append(b.steps[:i], b.steps[i+1:]...)
	delete(b.gens, id)
	delete(b.queued, id)
	return nil
}

// InsertStepAtTime adds a placeholder step covering [t, min(t+7, duration)]
// and starts its screenshot capture. Inserting latches an empty builder so a
// late transcript cannot replace the user's steps.
func (b *Builder) InsertStepAtTime(ctx context.Context, t float64) (Step, error) {
	if !timeutil.IsFinite(t) || t < 0 {
		t = 0
	}

	b.mu.Lock()
	end := t + InsertedStepWidth
	if b.duration > 0 {
		t = math.Min(t, b.duration)
		end = math.Min(end, b.duration)
	}
	s := Step{
		ID:    uuid.NewString(),
		Start: t,
		End:   end,
		Title: placeholderTitle,
	}
	b.steps = append(b.steps, s)
	b.sortLocked()
	if b.state == Empty {
		b.state = Materialized
	}
	b.mu.Unlock()

	if err := b.capture(ctx, s.ID); err != nil {
		return s, err
	}
	return b.Step(s.ID)
}

// RecaptureStep captures the step's screenshot again at its current start.
// The existing screenshot is kept if the capture fails.
func (b *Builder) RecaptureStep(ctx context.Context, id string) error {
	return b.capture(ctx, id)
}

// FillScreenshots dispatches one capture for every step that has no
// screenshot and none in flight. It returns without waiting for them.
func (b *Builder) FillScreenshots(ctx context.Context) int {
	b.mu.Lock()
	ids := make([]string, 0, len(b.steps))
	for _, s := range b.steps {
		if s.Screenshot == nil && !s.IsCapturing && !b.queued[s.ID] {
			ids = append(ids, s.ID)
		}
	}
	b.mu.Unlock()

	n := 0
	for _, id := range ids {
		if err := b.capture(ctx, id); err != nil {
			b.logger.WithError(err).WithField("step", id).Warn("screenshot not dispatched")
			continue
		}
		n++
	}
	return n
}

// capture queues a job for the step. The step reports IsCapturing only once
// the job starts running. Each request gives the step a new generation; a
// result from an older generation is dropped.
func (b *Builder) capture(ctx context.Context, id string) error {
	if b.provider == nil {
		return nil
	}

	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrStepNotFound, id)
	}
	b.seq++
	gen := b.seq
	b.gens[id] = gen
	b.queued[id] = true
	at := b.steps[i].Start
	src := b.source
	b.mu.Unlock()

	job := worker.JobFunc{
		Name: fmt.Sprintf("capture-%s-%d", id, gen),
		Fn: func(wctx context.Context) error {
			if !b.begin(id, gen) {
				return nil
			}
			cctx, cancel := context.WithTimeout(wctx, b.timeout)
			defer cancel()
			stop := context.AfterFunc(ctx, cancel)
			defer stop()

			img, err := b.provider.Capture(cctx, src, at)
			b.finish(id, gen, img, err)
			return err
		},
	}
	if err := b.submit.Submit(job); err != nil {
		b.finish(id, gen, nil, err)
		return fmt.Errorf("queue capture for %s: %w", id, err)
	}
	return nil
}

// begin flags the step as capturing unless a newer request superseded gen.
func (b *Builder) begin(id string, gen uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gens[id] != gen {
		return false
	}
	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	b.steps[i].IsCapturing = true
	return true
}

func (b *Builder) finish(id string, gen uint64, img []byte, err error) {
	log := b.logger.WithFields(logrus.Fields{"step": id, "generation": gen})

	b.mu.Lock()
	if b.gens[id] != gen {
		b.mu.Unlock()
		log.Debug("stale capture discarded")
		return
	}
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return
	}
	delete(b.queued, id)
	b.steps[i].IsCapturing = false
	if err == nil {
		b.steps[i].Screenshot = img
	}
	s := b.steps[i]
	b.mu.Unlock()

	if err != nil {
		log.WithError(err).Warn("screenshot capture failed")
	}
	if b.onChange != nil {
		b.onChange(s)
	}
}
