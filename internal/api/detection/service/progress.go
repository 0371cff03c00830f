package detectionService

import (
	"FaceBlur/internal/entity"
	"FaceBlur/pkg/log"
	"github.com/sirupsen/logrus"
)

// ProgressReporter receives one event per poll and one per fetched page.
type ProgressReporter interface {
	Report(event entity.ProgressEvent)
}

type ReporterFunc func(event entity.ProgressEvent)

func (f ReporterFunc) Report(event entity.ProgressEvent) {
	f(event)
}

type multiReporter []ProgressReporter

// MultiReporter fans events out to every non-nil reporter.
func MultiReporter(reporters ...ProgressReporter) ProgressReporter {
	var out multiReporter
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multiReporter) Report(event entity.ProgressEvent) {
	for _, r := range m {
		r.Report(event)
	}
}

type logReporter struct {
	log *logrus.Logger
}

func NewLogReporter(logger *logrus.Logger) ProgressReporter {
	if logger == nil {
		return nil
	}
	return &logReporter{log: logger}
}

func (r *logReporter) Report(event entity.ProgressEvent) {
	entry := r.log.WithFields(log.Fields{
		"job_id":    event.JobID,
		"stage":     event.Stage,
		"iteration": event.Iteration,
		"status":    event.Status,
		"faces":     event.Faces,
	})

	switch event.Stage {
	case entity.StageFailed, entity.StageTimedOut:
		entry.WithField("message", event.Message).Warn("Face detection job stopped")
	case entity.StageComplete:
		entry.Info("Face detection job complete")
	default:
		entry.Debug("Face detection progress")
	}
}

func report(r ProgressReporter, event entity.ProgressEvent) {
	if r != nil {
		r.Report(event)
	}
}
