package cli

import (
	"fmt"
	"io"

	"FaceBlur/internal/entity"
	"github.com/schollz/progressbar/v3"
)

// barReporter renders waiter and aggregator events on a spinner.
type barReporter struct {
	bar *progressbar.ProgressBar
}

func newBarReporter(w io.Writer, jobID string) *barReporter {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Job %s", jobID)),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	return &barReporter{bar: bar}
}

func (r *barReporter) Report(event entity.ProgressEvent) {
	r.bar.Describe(describeEvent(event))
	_ = r.bar.Add(1)
}

func (r *barReporter) Finish() {
	_ = r.bar.Finish()
}

func describeEvent(event entity.ProgressEvent) string {
	switch event.Stage {
	case entity.StageWaiting:
		return fmt.Sprintf("Waiting for %s (poll %d, %s)", event.JobID, event.Iteration, event.Status)
	case entity.StageCollecting:
		return fmt.Sprintf("Collecting %s (page %d, %d faces)", event.JobID, event.Iteration, event.Faces)
	case entity.StageComplete:
		return fmt.Sprintf("Job %s complete, %d faces", event.JobID, event.Faces)
	default:
		if event.Message != "" {
			return fmt.Sprintf("Job %s %s: %s", event.JobID, event.Stage, event.Message)
		}
		return fmt.Sprintf("Job %s %s", event.JobID, event.Stage)
	}
}
