package timeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erinovdaniil/onboarding/internal/transcript"
	"github.com/erinovdaniil/onboarding/internal/worker"
)

// inlineSubmitter runs every job before Submit returns.
type inlineSubmitter struct{}

func (inlineSubmitter) Submit(job worker.Job) error {
	_ = job.Execute(context.Background())
	return nil
}

type fakeProvider struct {
	mu    sync.Mutex
	calls []float64
	fail  bool
}

func (p *fakeProvider) Capture(ctx context.Context, src Source, seconds float64) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, seconds)
	if p.fail {
		return nil, errors.New("decode failed")
	}
	return []byte{byte(len(p.calls))}, nil
}

func testPhrases() []transcript.Phrase {
	return []transcript.Phrase{
		{ID: "phrase-0", Text: "Open settings", Start: 0, End: 2},
		{ID: "phrase-1", Text: "Click save", Start: 3, End: 5},
	}
}

func TestBuilder_MaterializeOnce(t *testing.T) {
	b := NewBuilder(Options{})
	phrases := testPhrases()
	digest := transcript.Digest(phrases)

	if !b.MaterializeFromPhrases(digest, phrases) {
		t.Fatalf("expected first materialization to run")
	}
	title := "Renamed"
	if _, err := b.UpdateStep("step-0", StepPatch{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if b.MaterializeFromPhrases(digest, phrases) {
		t.Fatalf("expected second materialization to be a no-op")
	}
	if b.MaterializeFallback(60, 7) {
		t.Fatalf("expected fallback after materialization to be a no-op")
	}

	steps := b.Steps()
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].Title != "Renamed" {
		t.Fatalf("manual edit was discarded: %+v", steps[0])
	}
	if b.State() != Materialized || b.Digest() != digest {
		t.Fatalf("unexpected state %v digest %q", b.State(), b.Digest())
	}
}

func TestBuilder_EmptyInputDoesNotLatch(t *testing.T) {
	b := NewBuilder(Options{})
	if b.MaterializeFromPhrases("x", nil) {
		t.Fatalf("empty phrases must not materialize")
	}
	if b.MaterializeFallback(-1, 7) {
		t.Fatalf("invalid duration must not materialize")
	}
	if b.State() != Empty {
		t.Fatalf("expected Empty, got %v", b.State())
	}
	if !b.MaterializeFallback(25, 7) {
		t.Fatalf("expected fallback to materialize once duration is known")
	}
	if len(b.Steps()) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(b.Steps()))
	}
}

func TestBuilder_ConcurrentMaterialize(t *testing.T) {
	b := NewBuilder(Options{})
	phrases := testPhrases()
	digest := transcript.Digest(phrases)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var ok bool
			if i%2 == 0 {
				ok = b.MaterializeFromPhrases(digest, phrases)
			} else {
				ok = b.MaterializeFallback(30, 7)
			}
			if ok {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if won != 1 {
		t.Fatalf("expected exactly one materialization, got %d", won)
	}
}

func TestBuilder_UpdateAndDelete(t *testing.T) {
	b := NewBuilder(Options{})
	b.MaterializeFromPhrases("d", testPhrases())

	text := "Press save"
	s, err := b.UpdateStep("step-1", StepPatch{TranscriptText: &text})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if s.TranscriptText != text || s.Title != "Step 2" {
		t.Fatalf("unexpected merge result: %+v", s)
	}
	if err := b.DeleteStep("step-0"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := b.DeleteStep("step-0"); !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("expected ErrStepNotFound, got %v", err)
	}
	if _, err := b.UpdateStep("missing", StepPatch{}); !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("expected ErrStepNotFound, got %v", err)
	}
	if len(b.Steps()) != 1 {
		t.Fatalf("expected 1 step left")
	}
}

func TestBuilder_InsertStepAtTime(t *testing.T) {
	p := &fakeProvider{}
	b := NewBuilder(Options{Provider: p, Submitter: inlineSubmitter{}})
	b.MaterializeFromPhrases("d", testPhrases())
	b.SetDuration(10)

	s, err := b.InsertStepAtTime(context.Background(), 6)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if s.Start != 6 || s.End != 10 {
		t.Fatalf("expected [6,10], got [%v,%v]", s.Start, s.End)
	}
	if s.Title != placeholderTitle || s.Screenshot == nil || s.IsCapturing {
		t.Fatalf("expected captured placeholder step, got %+v", s)
	}
	if len(p.calls) != 1 || p.calls[0] != 6 {
		t.Fatalf("expected one capture at 6, got %v", p.calls)
	}

	steps := b.Steps()
	for i := 1; i < len(steps); i++ {
		if steps[i].Start < steps[i-1].Start {
			t.Fatalf("steps not ordered by start: %+v", steps)
		}
	}
	if steps[2].ID != s.ID {
		t.Fatalf("expected inserted step last, got %+v", steps)
	}
}

func TestBuilder_InsertLatchesEmptyBuilder(t *testing.T) {
	b := NewBuilder(Options{})
	if _, err := b.InsertStepAtTime(context.Background(), 2); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if b.MaterializeFromPhrases("d", testPhrases()) {
		t.Fatalf("expected inserted step to latch the builder")
	}
	if len(b.Steps()) != 1 {
		t.Fatalf("expected only the inserted step")
	}
}

func TestBuilder_FillScreenshots(t *testing.T) {
	p := &fakeProvider{}
	var changed []Step
	b := NewBuilder(Options{
		Provider:  p,
		Submitter: inlineSubmitter{},
		OnChange:  func(s Step) { changed = append(changed, s) },
	})
	b.MaterializeFromPhrases("d", testPhrases())

	if n := b.FillScreenshots(context.Background()); n != 2 {
		t.Fatalf("expected 2 captures dispatched, got %d", n)
	}
	for _, s := range b.Steps() {
		if s.Screenshot == nil || s.IsCapturing {
			t.Fatalf("expected screenshot filled: %+v", s)
		}
	}
	if len(changed) != 2 {
		t.Fatalf("expected 2 change notifications, got %d", len(changed))
	}
	if n := b.FillScreenshots(context.Background()); n != 0 {
		t.Fatalf("expected no captures for filled steps, got %d", n)
	}
}

func TestBuilder_RecaptureFailureKeepsScreenshot(t *testing.T) {
	p := &fakeProvider{}
	b := NewBuilder(Options{Provider: p, Submitter: inlineSubmitter{}})
	b.MaterializeFromPhrases("d", testPhrases())
	b.FillScreenshots(context.Background())

	before, _ := b.Step("step-0")
	p.fail = true
	if err := b.RecaptureStep(context.Background(), "step-0"); err != nil {
		t.Fatalf("recapture: %v", err)
	}
	after, _ := b.Step("step-0")
	if string(after.Screenshot) != string(before.Screenshot) {
		t.Fatalf("stale screenshot should be retained on failure")
	}
	if after.IsCapturing {
		t.Fatalf("capturing flag must be cleared after failure")
	}
	if err := b.RecaptureStep(context.Background(), "missing"); !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("expected ErrStepNotFound, got %v", err)
	}
}

func TestBuilder_FillDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	done := make(chan struct{}, 2)
	p := FrameProviderFunc(func(ctx context.Context, src Source, seconds float64) ([]byte, error) {
		started <- struct{}{}
		<-release
		done <- struct{}{}
		return []byte("img"), nil
	})
	b := NewBuilder(Options{Provider: p})
	b.MaterializeFromPhrases("d", testPhrases())

	if n := b.FillScreenshots(context.Background()); n != 2 {
		t.Fatalf("expected 2 captures dispatched, got %d", n)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(5 * time.Second):
			t.Fatalf("captures did not start")
		}
	}
	for _, s := range b.Steps() {
		if !s.IsCapturing || s.Screenshot != nil {
			t.Fatalf("expected pending capture: %+v", s)
		}
	}
	close(release)
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("captures did not complete")
		}
	}
}

func TestBuilder_StaleCaptureDiscarded(t *testing.T) {
	first := make(chan struct{})
	var (
		mu    sync.Mutex
		calls int
	)
	p := FrameProviderFunc(func(ctx context.Context, src Source, seconds float64) ([]byte, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			<-first
			return []byte("old"), nil
		}
		return []byte("new"), nil
	})

	results := make(chan Step, 4)
	b := NewBuilder(Options{Provider: p, OnChange: func(s Step) { results <- s }})
	b.MaterializeFromPhrases("d", testPhrases()[:1])

	if err := b.RecaptureStep(context.Background(), "step-0"); err != nil {
		t.Fatalf("first capture: %v", err)
	}
	// wait until the first capture is inside the provider
	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		n := calls
		mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("first capture never started")
		case <-time.After(time.Millisecond):
		}
	}

	if err := b.RecaptureStep(context.Background(), "step-0"); err != nil {
		t.Fatalf("second capture: %v", err)
	}
	select {
	case s := <-results:
		if string(s.Screenshot) != "new" {
			t.Fatalf("expected newer capture first, got %q", s.Screenshot)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("second capture did not complete")
	}

	close(first)
	time.Sleep(50 * time.Millisecond)
	s, _ := b.Step("step-0")
	if string(s.Screenshot) != "new" {
		t.Fatalf("stale capture overwrote newer screenshot: %q", s.Screenshot)
	}
	select {
	case s := <-results:
		t.Fatalf("stale capture should not notify, got %+v", s)
	default:
	}
}

func TestBuilder_QueueFullClearsCapturing(t *testing.T) {
	d := worker.NewDispatcher(1, 0, nil)
	b := NewBuilder(Options{Provider: &fakeProvider{}, Submitter: d})
	b.MaterializeFromPhrases("d", testPhrases())

	if n := b.FillScreenshots(context.Background()); n != 0 {
		t.Fatalf("expected no captures queued, got %d", n)
	}
	for _, s := range b.Steps() {
		if s.IsCapturing {
			t.Fatalf("capturing flag left set after queue failure: %+v", s)
		}
	}
}

// heldSubmitter keeps jobs until the test runs them.
type heldSubmitter struct{ jobs []worker.Job }

func (h *heldSubmitter) Submit(job worker.Job) error {
	h.jobs = append(h.jobs, job)
	return nil
}

func TestBuilder_CapturingOnlyWhileRunning(t *testing.T) {
	held := &heldSubmitter{}
	var b *Builder
	var during Step
	p := FrameProviderFunc(func(ctx context.Context, src Source, seconds float64) ([]byte, error) {
		during = b.Steps()[0]
		return []byte("img"), nil
	})
	b = NewBuilder(Options{Provider: p, Submitter: held})
	b.MaterializeFromPhrases("d", testPhrases()[:1])

	if n := b.FillScreenshots(context.Background()); n != 1 {
		t.Fatalf("expected 1 capture queued, got %d", n)
	}
	if s := b.Steps()[0]; s.IsCapturing {
		t.Fatalf("queued capture must not report capturing: %+v", s)
	}
	if n := b.FillScreenshots(context.Background()); n != 0 {
		t.Fatalf("queued step dispatched twice, got %d", n)
	}

	if err := held.jobs[0].Execute(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !during.IsCapturing {
		t.Fatalf("expected capturing while the provider runs: %+v", during)
	}
	if s := b.Steps()[0]; s.IsCapturing || string(s.Screenshot) != "img" {
		t.Fatalf("unexpected step after capture: %+v", s)
	}
}

func TestBuilder_SupersededQueuedJobSkipsCapture(t *testing.T) {
	held := &heldSubmitter{}
	p := &fakeProvider{}
	b := NewBuilder(Options{Provider: p, Submitter: held})
	b.MaterializeFromPhrases("d", testPhrases()[:1])

	for i := 0; i < 2; i++ {
		if err := b.RecaptureStep(context.Background(), "step-0"); err != nil {
			t.Fatalf("recapture: %v", err)
		}
	}
	for _, job := range held.jobs {
		_ = job.Execute(context.Background())
	}
	if len(p.calls) != 1 {
		t.Fatalf("expected only the newest request to capture, got %d calls", len(p.calls))
	}
	if s := b.Steps()[0]; s.IsCapturing || s.Screenshot == nil {
		t.Fatalf("unexpected step %+v", s)
	}
}
