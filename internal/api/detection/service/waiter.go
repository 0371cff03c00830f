package detectionService

import (
	"fmt"
	"time"

	"FaceBlur/internal/api/detection"
	"FaceBlur/internal/entity"
	"FaceBlur/pkg/response"
	"golang.org/x/net/context"
)

const DefaultPollInterval = 30 * time.Second

// WaiterConfig bounds the status polling loop. Zero MaxAttempts or Timeout disables that limit.
type WaiterConfig struct {
	PollInterval time.Duration
	MaxAttempts  int
	Timeout      time.Duration
}

// JobWaiter polls a face-detection job until it leaves IN_PROGRESS.
type JobWaiter struct {
	source   FaceDetectionSource
	cfg      WaiterConfig
	reporter ProgressReporter
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
}

func NewJobWaiter(source FaceDetectionSource, cfg WaiterConfig, reporter ProgressReporter) *JobWaiter {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxAttempts < 0 {
		cfg.MaxAttempts = 0
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}

	return &JobWaiter{
		source:   source,
		cfg:      cfg,
		reporter: reporter,
		sleep:    sleepContext,
		now:      time.Now,
	}
}

func (w *JobWaiter) Config() WaiterConfig {
	return w.cfg
}

// Wait returns the first response whose status is not IN_PROGRESS, unchanged. It does not
// distinguish success from failure. Query errors are returned as-is; exceeding the configured
// attempts or timeout yields an error matching detection.ErrPollingTimeout.
func (w *JobWaiter) Wait(ctx context.Context, jobID string) (*entity.DetectionPage, error) {
	var deadline time.Time
	if w.cfg.Timeout > 0 {
		deadline = w.now().Add(w.cfg.Timeout)
	}

	for attempt := 1; ; attempt++ {
		page, err := w.source.GetFaceDetection(ctx, jobID, "")
		if err != nil {
			return nil, err
		}

		report(w.reporter, entity.ProgressEvent{
			JobID:     jobID,
			Stage:     entity.StageWaiting,
			Iteration: attempt,
			Status:    page.JobStatus,
			Time:      w.now(),
		})

		if !page.JobStatus.IsInProgress() {
			return page, nil
		}

		if w.cfg.MaxAttempts > 0 && attempt >= w.cfg.MaxAttempts {
			return nil, response.Detail(detection.ErrPollingTimeout,
				fmt.Sprintf("job %s still %s after %d polls", jobID, page.JobStatus, attempt))
		}

		if !deadline.IsZero() && w.now().Add(w.cfg.PollInterval).After(deadline) {
			return nil, response.Detail(detection.ErrPollingTimeout,
				fmt.Sprintf("job %s still %s after %s", jobID, page.JobStatus, w.cfg.Timeout))
		}

		if err := w.sleep(ctx, w.cfg.PollInterval); err != nil {
			return nil, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
