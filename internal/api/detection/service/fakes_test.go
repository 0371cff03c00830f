package detectionService

import (
	"errors"
	"sync"
	"time"

	"FaceBlur/internal/entity"
	"golang.org/x/net/context"
)

type fakeCall struct {
	page *entity.DetectionPage
	err  error
}

// scriptedSource answers GetFaceDetection from a fixed script, one entry per call.
type scriptedSource struct {
	mu     sync.Mutex
	script []fakeCall
	tokens []string
}

func (s *scriptedSource) GetFaceDetection(_ context.Context, _ string, nextToken string) (*entity.DetectionPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = append(s.tokens, nextToken)
	if len(s.script) == 0 {
		return nil, errors.New("unexpected call")
	}
	call := s.script[0]
	s.script = s.script[1:]
	return call.page, call.err
}

func (s *scriptedSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

func statusPage(status entity.JobStatus) fakeCall {
	return fakeCall{page: &entity.DetectionPage{JobStatus: status}}
}

func token(s string) *string {
	return &s
}

func face(ts int64, left float64) entity.FaceRecord {
	return entity.FaceRecord{
		Timestamp:   ts,
		BoundingBox: entity.BoundingBox{Left: left, Top: 0.1, Width: 0.2, Height: 0.3},
		Confidence:  99,
	}
}

// pagesOf splits faces into consecutive pages of the given sizes, chaining continuation tokens.
func pagesOf(faces []entity.FaceRecord, sizes ...int) []fakeCall {
	var calls []fakeCall
	start := 0
	for i, size := range sizes {
		page := &entity.DetectionPage{
			JobStatus: entity.JobStatusSucceeded,
			Faces:     faces[start : start+size],
		}
		if i < len(sizes)-1 {
			page.NextToken = token(string(rune('a' + i)))
		}
		calls = append(calls, fakeCall{page: page})
		start += size
	}
	return calls
}

type recordingReporter struct {
	mu     sync.Mutex
	events []entity.ProgressEvent
}

func (r *recordingReporter) Report(event entity.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingReporter) stages() []entity.ProgressStage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.ProgressStage, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Stage)
	}
	return out
}

// fakeClock advances only when the waiter sleeps.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func newTestWaiter(source FaceDetectionSource, cfg WaiterConfig, reporter ProgressReporter) (*JobWaiter, *fakeClock) {
	clock := newFakeClock()
	w := NewJobWaiter(source, cfg, reporter)
	w.sleep = clock.Sleep
	w.now = clock.Now
	return w, clock
}
