package detectionService

import (
	"time"

	"FaceBlur/internal/entity"
	"golang.org/x/net/context"
)

// ResultAggregator folds every page of a finished job into a TimestampIndex.
type ResultAggregator struct {
	source   FaceDetectionSource
	reporter ProgressReporter
	now      func() time.Time
}

func NewResultAggregator(source FaceDetectionSource, reporter ProgressReporter) *ResultAggregator {
	return &ResultAggregator{
		source:   source,
		reporter: reporter,
		now:      time.Now,
	}
}

// Collect follows continuation tokens until a page has none. The job must already be complete.
// A failed page fetch discards everything gathered so far.
func (a *ResultAggregator) Collect(ctx context.Context, jobID string) (entity.TimestampIndex, error) {
	index := entity.TimestampIndex{}
	cursor := ""
	total := 0

	for pageNumber := 1; ; pageNumber++ {
		page, err := a.source.GetFaceDetection(ctx, jobID, cursor)
		if err != nil {
			return nil, err
		}

		for _, face := range page.Faces {
			index.Add(face)
		}
		total += len(page.Faces)

		report(a.reporter, entity.ProgressEvent{
			JobID:     jobID,
			Stage:     entity.StageCollecting,
			Iteration: pageNumber,
			Status:    page.JobStatus,
			Faces:     total,
			Time:      a.now(),
		})

		next, ok := page.Continuation()
		if !ok {
			return index, nil
		}
		cursor = next
	}
}
