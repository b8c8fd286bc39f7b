package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/erinovdaniil/onboarding/internal/db"
	"github.com/erinovdaniil/onboarding/internal/jobs"
	"github.com/erinovdaniil/onboarding/internal/session"
	"github.com/erinovdaniil/onboarding/internal/storage"
	"github.com/erinovdaniil/onboarding/internal/timeline"
	"github.com/erinovdaniil/onboarding/internal/transcript"
	"github.com/erinovdaniil/onboarding/internal/worker"
	"github.com/erinovdaniil/onboarding/models"
)

type fakeVideos struct{ url string }

func (f fakeVideos) VideoURL(ctx context.Context, projectID string) (string, error) {
	if f.url == "" || projectID != "p1" {
		return "", storage.ErrVideoNotFound
	}
	return f.url, nil
}

type fakeFrames struct{ err error }

func (f fakeFrames) CaptureFrame(ctx context.Context, url string, seconds float64) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte{0xff, 0xd8, 0xff}, nil
}

// inlineQueue runs each job before Submit returns.
type inlineQueue struct{ full bool }

func (q inlineQueue) Submit(job worker.Job) error {
	if q.full {
		return worker.ErrQueueFull
	}
	_ = job.Execute(context.Background())
	return nil
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func newTestApp(t *testing.T, queue JobQueue) (*fiber.App, *db.MemoryStore) {
	t.Helper()
	store := db.NewMemoryStore()
	store.PutProject(models.Project{ID: "p1", Name: "Demo"})
	_ = store.SaveTranscript(context.Background(), "p1", transcript.Transcript{
		Text:     "Open the settings page. Click save to finish.",
		Language: "en",
		Segments: []transcript.Segment{
			{ID: 0, Start: 0, End: 3, Text: "Open the settings page."},
			{ID: 1, Start: 4, End: 7, Text: "Click save to finish."},
		},
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	videos := fakeVideos{url: "https://cdn.test/videos/p1/original.mp4?token=t"}
	frames := fakeFrames{}

	h := NewApplicationHandler(ApplicationHandler{
		Logger: logger,
		Store:  store,
		Sessions: session.NewManager(session.Deps{
			Store:     store,
			Videos:    videos,
			Provider:  timeline.URLProvider{Capturer: frames},
			Submitter: timeline.InlineSubmitter{},
			Logger:    logger,
			SaveDelay: time.Hour,
		}),
		Videos:  videos,
		Frames:  frames,
		Queue:   queue,
		JobDeps: jobs.Deps{Store: store, Logger: logger},
	})
	app := fiber.New()
	h.RegisterRoutes(app)
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &env)
	return resp, env
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t, nil)
	resp, env := doJSON(t, app, "GET", "/health", nil)
	if resp.StatusCode != 200 || env.Status != "ok" {
		t.Fatalf("unexpected health %d %+v", resp.StatusCode, env)
	}
}

func TestGetProjectAndTranscript(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp, env := doJSON(t, app, "GET", "/api/v1/projects/p1", nil)
	if resp.StatusCode != 200 || env.Status != "success" {
		t.Fatalf("unexpected project response %d %+v", resp.StatusCode, env)
	}
	resp, _ = doJSON(t, app, "GET", "/api/v1/projects/nope", nil)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp, env = doJSON(t, app, "GET", "/api/v1/projects/p1/transcript", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var tr TranscriptResponse
	if err := json.Unmarshal(env.Data, &tr); err != nil || len(tr.Segments) != 2 {
		t.Fatalf("unexpected transcript %s: %v", env.Data, err)
	}
}

func TestUpdateTranscript(t *testing.T) {
	app, store := newTestApp(t, nil)
	body := UpdateTranscriptRequest{Segments: []TranscriptSegmentInput{{ID: 0, Start: 0, End: 3, Text: " Open settings. "}}}

	resp, env := doJSON(t, app, "PUT", "/api/v1/projects/p1/transcript", body)
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("unexpected status %d %+v", resp.StatusCode, env)
	}
	var st struct{ Status string }
	_ = json.Unmarshal(env.Data, &st)
	if st.Status != "Unsaved" {
		t.Fatalf("expected Unsaved, got %q", st.Status)
	}

	resp, env = doJSON(t, app, "PUT", "/api/v1/projects/p1/transcript?flush=true", body)
	_ = json.Unmarshal(env.Data, &st)
	if resp.StatusCode != 200 || st.Status != "Saved" {
		t.Fatalf("unexpected flush response %d %s", resp.StatusCode, env.Data)
	}
	tr, _ := store.GetTranscript(context.Background(), "p1")
	if tr.Text != "Open settings." {
		t.Fatalf("edit not saved: %q", tr.Text)
	}

	store.FailWrites = errors.New("offline")
	resp, env = doJSON(t, app, "PUT", "/api/v1/projects/p1/transcript?flush=true", body)
	if resp.StatusCode != fiber.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	_, env = doJSON(t, app, "GET", "/api/v1/projects/p1/transcript/status", nil)
	_ = json.Unmarshal(env.Data, &st)
	if st.Status != "Failed" {
		t.Fatalf("expected Failed status, got %s", env.Data)
	}

	bad := UpdateTranscriptRequest{Segments: []TranscriptSegmentInput{{Start: 5, End: 1}}}
	resp, env = doJSON(t, app, "PUT", "/api/v1/projects/p1/transcript", bad)
	if resp.StatusCode != 400 || len(env.Errors) == 0 {
		t.Fatalf("expected validation error, got %d %+v", resp.StatusCode, env)
	}
}

func TestSegmentTranscript(t *testing.T) {
	app, _ := newTestApp(t, nil)
	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/transcripts/segment",
		bytes.NewReader([]byte(`{"projectId":"p1","segmentDuration":5}`))), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 400 {
		// missing content type: body cannot be parsed
		t.Fatalf("expected 400 without content type, got %d", resp.StatusCode)
	}

	raw, _ := json.Marshal(SegmentRequest{ProjectID: "p1", SegmentDuration: 5})
	req := httptest.NewRequest("POST", "/api/v1/transcripts/segment", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("unexpected response %v %v", resp, err)
	}
	var out struct {
		Segments []transcript.StepSegment `json:"segments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Segments) == 0 || out.Segments[0].StartTime != 0 {
		t.Fatalf("unexpected segments %+v", out.Segments)
	}

	resp, _ = doJSON(t, app, "POST", "/api/v1/transcripts/segment", SegmentRequest{ProjectID: "nope"})
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 for unknown project, got %d", resp.StatusCode)
	}
}

func TestGroupPhrases(t *testing.T) {
	app, _ := newTestApp(t, nil)
	body := GroupPhrasesRequest{Segments: []transcript.WireSegment{
		{Text: "open", Start: 0, End: 0.3},
		{Text: "settings", Start: 0.35, End: 0.8},
		{Text: "click", Start: 2, End: 2.3},
	}}
	resp, env := doJSON(t, app, "POST", "/api/v1/phrases", body)
	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var out PhrasesResponse
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Phrases) != 2 || out.Phrases[0].Text != "open settings" || out.Digest == "" {
		t.Fatalf("unexpected phrases %+v", out)
	}
}

func TestStepLifecycle(t *testing.T) {
	app, _ := newTestApp(t, nil)

	_, env := doJSON(t, app, "GET", "/api/v1/projects/p1/steps", nil)
	var steps StepsResponse
	if err := json.Unmarshal(env.Data, &steps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if steps.State != "materialized" || len(steps.Steps) != 2 {
		t.Fatalf("unexpected steps %+v", steps)
	}
	first := steps.Steps[0].ID

	title := "Open settings"
	resp, env := doJSON(t, app, "PATCH", "/api/v1/projects/p1/steps/"+first, UpdateStepRequest{Title: &title})
	if resp.StatusCode != 200 {
		t.Fatalf("unexpected patch status %d %+v", resp.StatusCode, env)
	}

	resp, env = doJSON(t, app, "POST", "/api/v1/projects/p1/steps", InsertStepRequest{Time: 3.5})
	if resp.StatusCode != 201 {
		t.Fatalf("unexpected insert status %d", resp.StatusCode)
	}
	var inserted timeline.Step
	_ = json.Unmarshal(env.Data, &inserted)
	if inserted.Start != 3.5 || inserted.End != 10.5 || len(inserted.Screenshot) == 0 {
		t.Fatalf("unexpected inserted step %+v", inserted)
	}

	resp, env = doJSON(t, app, "POST", "/api/v1/projects/p1/steps/screenshots", nil)
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("unexpected fill status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "POST", "/api/v1/projects/p1/steps/"+inserted.ID+"/recapture", nil)
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("unexpected recapture status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "DELETE", "/api/v1/projects/p1/steps/"+inserted.ID, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("unexpected delete status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "DELETE", "/api/v1/projects/p1/steps/"+inserted.ID, nil)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}

	_, env = doJSON(t, app, "GET", "/api/v1/projects/p1/steps", nil)
	_ = json.Unmarshal(env.Data, &steps)
	if len(steps.Steps) != 2 || steps.Steps[0].Title != "Open settings" || len(steps.Steps[1].Screenshot) == 0 {
		t.Fatalf("edits not kept: %+v", steps.Steps)
	}
}

func TestFallbackSteps(t *testing.T) {
	app, _ := newTestApp(t, nil)
	resp, env := doJSON(t, app, "POST", "/api/v1/steps/fallback", FallbackRequest{Duration: 25})
	var steps []timeline.Step
	_ = json.Unmarshal(env.Data, &steps)
	if resp.StatusCode != 200 || len(steps) != 4 || steps[3].End != 25 {
		t.Fatalf("unexpected fallback %d %+v", resp.StatusCode, steps)
	}
	resp, _ = doJSON(t, app, "POST", "/api/v1/steps/fallback", FallbackRequest{Duration: 7200})
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for implausible duration, got %d", resp.StatusCode)
	}
}

func TestZoomConfig(t *testing.T) {
	app, _ := newTestApp(t, nil)

	_, env := doJSON(t, app, "POST", "/api/v1/effects/region", NewRegionRequest{Time: 9, Duration: 10})
	var region struct {
		Start float64 `json:"startTime"`
		End   float64 `json:"endTime"`
	}
	_ = json.Unmarshal(env.Data, &region)
	if region.Start != 7 || region.End != 10 {
		t.Fatalf("unexpected region %s", env.Data)
	}

	body := map[string]interface{}{
		"duration":   10,
		"zoomConfig": map[string]interface{}{"enabled": true, "startTime": 2, "endTime": 5, "zoomLevel": 2, "centerX": 40, "centerY": 60},
	}
	resp, _ := doJSON(t, app, "PUT", "/api/v1/projects/p1/zoom", body)
	if resp.StatusCode != 200 {
		t.Fatalf("unexpected save status %d", resp.StatusCode)
	}
	_, env = doJSON(t, app, "GET", "/api/v1/projects/p1/zoom", nil)
	var got struct {
		ZoomConfig *struct {
			ZoomLevel float64 `json:"zoomLevel"`
		} `json:"zoomConfig"`
	}
	_ = json.Unmarshal(env.Data, &got)
	if got.ZoomConfig == nil || got.ZoomConfig.ZoomLevel != 2 {
		t.Fatalf("unexpected stored config %s", env.Data)
	}

	body["zoomConfig"].(map[string]interface{})["zoomLevel"] = 5
	resp, _ = doJSON(t, app, "PUT", "/api/v1/projects/p1/zoom", body)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for zoom level 5, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "PUT", "/api/v1/projects/nope/zoom", map[string]interface{}{"zoomConfig": nil})
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSampleAndDrag(t *testing.T) {
	app, _ := newTestApp(t, nil)
	region := map[string]interface{}{"enabled": true, "startTime": 10, "endTime": 13, "zoomLevel": 2, "centerX": 50, "centerY": 50}

	_, env := doJSON(t, app, "POST", "/api/v1/effects/sample", map[string]interface{}{"region": region, "times": []float64{9, 10.15, 11.5}})
	var tf []struct {
		Magnification float64 `json:"magnification"`
	}
	_ = json.Unmarshal(env.Data, &tf)
	if len(tf) != 3 || tf[0].Magnification != 1 || math.Abs(tf[1].Magnification-1.5) > 1e-9 || tf[2].Magnification != 2 {
		t.Fatalf("unexpected samples %s", env.Data)
	}

	_, env = doJSON(t, app, "POST", "/api/v1/effects/drag", map[string]interface{}{
		"mode": "move", "region": region, "anchorX": 100, "pointerX": 150, "trackWidth": 300, "duration": 30,
	})
	var moved struct {
		Start float64 `json:"startTime"`
		End   float64 `json:"endTime"`
	}
	_ = json.Unmarshal(env.Data, &moved)
	if moved.Start != 15 || moved.End != 18 {
		t.Fatalf("unexpected drag result %s", env.Data)
	}

	resp, _ := doJSON(t, app, "POST", "/api/v1/effects/drag", map[string]interface{}{"mode": "spin", "region": region, "trackWidth": 1, "duration": 1})
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for unknown mode, got %d", resp.StatusCode)
	}
}

func TestGetFrame(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/projects/p1/frames?t=1.5", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 || resp.Header.Get("Content-Type") != "image/jpeg" {
		t.Fatalf("unexpected frame response %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/projects/p1/frames", nil), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 without t, got %d", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/projects/p2/frames?t=1", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 for missing video, got %d", resp.StatusCode)
	}
}

func TestJobs(t *testing.T) {
	app, _ := newTestApp(t, inlineQueue{})

	resp, env := doJSON(t, app, "POST", "/api/v1/projects/p1/document", nil)
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("unexpected status %d %+v", resp.StatusCode, env)
	}
	var rec models.ProcessingJob
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}

	_, env = doJSON(t, app, "GET", "/api/v1/jobs/"+rec.ID.String(), nil)
	var got models.ProcessingJob
	_ = json.Unmarshal(env.Data, &got)
	if got.Status != models.JobStatusCompleted || len(got.Result) == 0 {
		t.Fatalf("unexpected job record %+v", got)
	}

	resp, _ = doJSON(t, app, "GET", "/api/v1/jobs/not-a-uuid", nil)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	_, env = doJSON(t, app, "GET", "/api/v1/projects/p1/jobs", nil)
	var list []models.ProcessingJob
	_ = json.Unmarshal(env.Data, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 job, got %d", len(list))
	}
}

func TestJobs_QueueUnavailable(t *testing.T) {
	app, _ := newTestApp(t, nil)
	resp, _ := doJSON(t, app, "POST", "/api/v1/projects/p1/retranscribe", nil)
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a queue, got %d", resp.StatusCode)
	}

	app, _ = newTestApp(t, inlineQueue{full: true})
	resp, _ = doJSON(t, app, "POST", "/api/v1/projects/p1/retranscribe", nil)
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503 on full queue, got %d", resp.StatusCode)
	}
}

func TestDetectZoom(t *testing.T) {
	app, _ := newTestApp(t, nil)

	positions := make([]interface{}, 60)
	for i := range positions {
		switch {
		case i < 10:
			positions[i] = nil
		case i < 30:
			positions[i] = map[string]float64{"x": 960, "y": 540}
		default:
			positions[i] = map[string]float64{"x": float64(2000 + i*100), "y": 0}
		}
	}
	_, env := doJSON(t, app, "POST", "/api/v1/effects/detect", map[string]interface{}{
		"positions": positions, "fps": 10, "frameWidth": 1920, "frameHeight": 1080,
	})
	var regions []struct {
		Start   float64 `json:"startTime"`
		End     float64 `json:"endTime"`
		CenterX float64 `json:"centerX"`
		CenterY float64 `json:"centerY"`
	}
	if err := json.Unmarshal(env.Data, &regions); err != nil {
		t.Fatalf("decode %s: %v", env.Data, err)
	}
	if len(regions) != 1 || regions[0].CenterX != 50 || regions[0].CenterY != 50 {
		t.Fatalf("unexpected regions %s", env.Data)
	}
	if math.Abs(regions[0].Start-0.7) > 1e-9 || math.Abs(regions[0].End-3.5) > 1e-9 {
		t.Fatalf("unexpected span %s", env.Data)
	}

	resp, _ := doJSON(t, app, "POST", "/api/v1/effects/detect", map[string]interface{}{"positions": positions})
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 without a frame rate, got %d", resp.StatusCode)
	}
}

func TestListAndDeleteProjects(t *testing.T) {
	app, store := newTestApp(t, nil)
	store.PutProject(models.Project{ID: "p2", Name: "Second", CreatedAt: time.Now().Add(time.Hour)})

	resp, env := doJSON(t, app, "GET", "/api/v1/projects", nil)
	var projects []models.Project
	if err := json.Unmarshal(env.Data, &projects); err != nil || resp.StatusCode != 200 {
		t.Fatalf("unexpected listing %d %s: %v", resp.StatusCode, env.Data, err)
	}
	if len(projects) != 2 || projects[0].ID != "p2" || projects[1].ID != "p1" {
		t.Fatalf("expected newest first, got %+v", projects)
	}

	if resp, _ := doJSON(t, app, "GET", "/api/v1/projects/p1/steps", nil); resp.StatusCode != 200 {
		t.Fatalf("open session: %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "DELETE", "/api/v1/projects/p1", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("delete: %d", resp.StatusCode)
	}
	if _, err := store.GetTranscript(context.Background(), "p1"); !errors.Is(err, db.ErrRecordNotFound) {
		t.Fatalf("transcript should be gone, got %v", err)
	}
	if resp, _ = doJSON(t, app, "GET", "/api/v1/projects/p1", nil); resp.StatusCode != 404 {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
	if resp, _ = doJSON(t, app, "DELETE", "/api/v1/projects/p1", nil); resp.StatusCode != 404 {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}
