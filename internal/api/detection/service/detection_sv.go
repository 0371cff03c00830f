package detectionService

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"FaceBlur/internal/api/detection"
	"FaceBlur/internal/entity"
	contextPkg "FaceBlur/pkg/context"
	"FaceBlur/pkg/redis"
	"FaceBlur/pkg/response"
	"FaceBlur/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *detectionService) SubmitVideo(ctx context.Context, file *multipart.FileHeader, requestedBy string) (*entity.FaceDetectionJob, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := s.utils.ValidateVideoFile(file); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Rejected video upload")
		return nil, invalidVideo(err)
	}

	bucket, key, err := s.s3Client.UploadVideo(ctx, file)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"file_name":  file.Filename,
			"error":      err.Error(),
		}).Error("Failed to upload video")
		return nil, detection.ErrFailedToUpload
	}

	return s.startDetection(ctx, bucket, key, file.Size, requestedBy)
}

func (s *detectionService) StartDetection(ctx context.Context, req detection.StartDetectionRequest, requestedBy string) (*entity.FaceDetectionJob, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := utils.ValidateVideo(req.VideoKey, req.VideoSize); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"video_key":  req.VideoKey,
			"error":      err.Error(),
		}).Warn("Rejected video")
		return nil, invalidVideo(err)
	}

	return s.startDetection(ctx, req.Bucket, req.VideoKey, req.VideoSize, requestedBy)
}

func (s *detectionService) startDetection(ctx context.Context, bucket, key string, size int64, requestedBy string) (*entity.FaceDetectionJob, error) {
	requestID := contextPkg.GetRequestID(ctx)

	jobID, err := s.client.StartFaceDetection(ctx, bucket, key)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"bucket":     bucket,
			"video_key":  key,
			"error":      err.Error(),
		}).Error("Failed to start face detection")
		return nil, detection.ErrFailedToStart
	}

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return nil, err
	}

	now := time.Now()
	job := entity.FaceDetectionJob{
		ID:          id,
		JobID:       jobID,
		Bucket:      bucket,
		VideoKey:    key,
		VideoSize:   size,
		Status:      entity.JobStatusInProgress,
		RequestedBy: requestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	repo, err := s.repo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}
	defer repo.Rollback()

	if err := repo.Jobs.CreateJob(ctx, job); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"job_id":     jobID,
			"error":      err.Error(),
		}).Error("Failed to record face detection job")
		return nil, detection.ErrInternalServerError
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit transaction")
		return nil, detection.ErrInternalServerError
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"job_id":     jobID,
		"video_key":  key,
	}).Info("Face detection job started")

	s.runInBackground(func() {
		bgCtx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), s.processTimeout())
		defer cancel()

		if _, err := s.Process(bgCtx, jobID); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"job_id":     jobID,
				"error":      err.Error(),
			}).Warn("Background face detection processing ended with error")
		}
	})

	return &job, nil
}

// Process waits for the job, collects its faces, caches the index and records the outcome.
func (s *detectionService) Process(ctx context.Context, jobID string) (entity.TimestampIndex, error) {
	requestID := contextPkg.GetRequestID(ctx)

	final, err := s.waiter.Wait(ctx, jobID)
	if err != nil {
		// Nothing resumes polling once Process returns.
		status := entity.JobStatusFailed
		stage := entity.StageFailed
		if errors.Is(err, detection.ErrPollingTimeout) {
			status = entity.JobStatusTimedOut
			stage = entity.StageTimedOut
		}
		s.finish(ctx, jobID, status, err.Error(), nil, stage)
		return nil, err
	}

	if final.JobStatus != entity.JobStatusSucceeded {
		s.finish(ctx, jobID, final.JobStatus, final.StatusMessage, nil, entity.StageFailed)
		return nil, response.Detail(detection.ErrJobFailed,
			fmt.Sprintf("job %s ended with status %s: %s", jobID, final.JobStatus, final.StatusMessage))
	}

	index, err := s.aggregator.Collect(ctx, jobID)
	if err != nil {
		s.finish(ctx, jobID, final.JobStatus, err.Error(), nil, entity.StageFailed)
		return nil, err
	}

	if err := s.cache.SetFaceIndex(ctx, jobID, index, s.cfg.CacheTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"job_id":     jobID,
			"error":      err.Error(),
		}).Warn("Failed to cache face index")
	}

	s.finish(ctx, jobID, entity.JobStatusSucceeded, final.StatusMessage, index, entity.StageComplete)
	return index, nil
}

func (s *detectionService) finish(ctx context.Context, jobID string, status entity.JobStatus, message string, index entity.TimestampIndex, stage entity.ProgressStage) {
	requestID := contextPkg.GetRequestID(ctx)

	// The job context may already be spent; recording the outcome gets its own deadline.
	recordCtx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), 10*time.Second)
	defer cancel()

	if err := s.recordOutcome(recordCtx, jobID, status, message, index); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"job_id":     jobID,
			"status":     status,
			"error":      err.Error(),
		}).Error("Failed to record face detection outcome")
	}

	report(s.reporter, entity.ProgressEvent{
		JobID:   jobID,
		Stage:   stage,
		Status:  status,
		Faces:   index.FaceCount(),
		Message: message,
		Time:    time.Now(),
	})
}

func (s *detectionService) recordOutcome(ctx context.Context, jobID string, status entity.JobStatus, message string, index entity.TimestampIndex) error {
	repo, err := s.repo.NewClient(true)
	if err != nil {
		return err
	}
	defer repo.Rollback()

	job, err := repo.Jobs.GetJobByJobID(ctx, jobID)
	if err != nil {
		return err
	}

	now := time.Now()
	job.Status = status
	job.StatusMessage = message
	job.FaceCount = index.FaceCount()
	job.TimestampCount = len(index)
	job.UpdatedAt = now
	if !status.IsInProgress() {
		job.CompletedAt = &now
	}

	if err := repo.Jobs.UpdateJob(ctx, job); err != nil {
		return err
	}

	return repo.Commit()
}

func (s *detectionService) GetJob(ctx context.Context, jobID string) (*entity.FaceDetectionJob, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	job, err := repo.Jobs.GetJobByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, detection.ErrJobNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"job_id":     jobID,
			}).Warn("Face detection job not found")
		} else {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"job_id":     jobID,
				"error":      err.Error(),
			}).Error("Failed to get face detection job")
		}
		return nil, err
	}

	return &job, nil
}

func (s *detectionService) ListJobs(ctx context.Context, requestedBy string) ([]entity.FaceDetectionJob, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	jobs, err := repo.Jobs.GetJobsByRequester(ctx, requestedBy)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":   requestID,
			"requested_by": requestedBy,
			"error":        err.Error(),
		}).Error("Failed to list face detection jobs")
		return nil, detection.ErrInternalServerError
	}

	return jobs, nil
}

// GetFaces serves the cached index, re-collecting it from Rekognition when the cache has expired.
func (s *detectionService) GetFaces(ctx context.Context, jobID string) (entity.TimestampIndex, error) {
	requestID := contextPkg.GetRequestID(ctx)

	index, err := s.cache.GetFaceIndex(ctx, jobID)
	if err == nil {
		return index, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"job_id":     jobID,
			"error":      err.Error(),
		}).Warn("Face index cache lookup failed")
	}

	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case entity.JobStatusSucceeded:
	case entity.JobStatusInProgress:
		return nil, detection.ErrJobStillProcessing
	default:
		return nil, response.Detail(detection.ErrJobFailed, fmt.Sprintf("job %s has status %s", jobID, job.Status))
	}

	index, err = s.aggregator.Collect(ctx, jobID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"job_id":     jobID,
			"error":      err.Error(),
		}).Error("Failed to collect face index")
		return nil, err
	}

	if err := s.cache.SetFaceIndex(ctx, jobID, index, s.cfg.CacheTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"job_id":     jobID,
			"error":      err.Error(),
		}).Warn("Failed to cache face index")
	}

	return index, nil
}

func (s *detectionService) processTimeout() time.Duration {
	if s.cfg.ProcessTimeout > 0 {
		return s.cfg.ProcessTimeout
	}
	if s.cfg.Waiter.Timeout > 0 {
		return s.cfg.Waiter.Timeout + 10*time.Minute
	}
	return 24 * time.Hour
}

func invalidVideo(err error) error {
	var verr *utils.VideoValidationError
	if errors.As(err, &verr) {
		return response.Detail(detection.ErrInvalidVideo, verr.Reason)
	}
	return response.Detail(detection.ErrInvalidVideo, err.Error())
}
