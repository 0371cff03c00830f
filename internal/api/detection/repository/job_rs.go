package detectionRepository

import (
	"database/sql"
	"errors"
	"time"

	"FaceBlur/internal/api/detection"
	"FaceBlur/internal/entity"
	contextPkg "FaceBlur/pkg/context"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type FaceDetectionJobDB struct {
	ID             sql.NullString `db:"id"`
	JobID          sql.NullString `db:"job_id"`
	Bucket         sql.NullString `db:"bucket"`
	VideoKey       sql.NullString `db:"video_key"`
	VideoSize      sql.NullInt64  `db:"video_size"`
	Status         sql.NullString `db:"status"`
	StatusMessage  sql.NullString `db:"status_message"`
	FaceCount      sql.NullInt64  `db:"face_count"`
	TimestampCount sql.NullInt64  `db:"timestamp_count"`
	RequestedBy    sql.NullString `db:"requested_by"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	CompletedAt    sql.NullTime   `db:"completed_at"`
}

func (r *jobRepository) CreateJob(c context.Context, job entity.FaceDetectionJob) error {
	requestID := contextPkg.GetRequestID(c)

	createdAt := job.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := job.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	argsKV := map[string]interface{}{
		"id":              job.ID,
		"job_id":          job.JobID,
		"bucket":          job.Bucket,
		"video_key":       job.VideoKey,
		"video_size":      job.VideoSize,
		"status":          string(job.Status),
		"status_message":  job.StatusMessage,
		"face_count":      job.FaceCount,
		"timestamp_count": job.TimestampCount,
		"requested_by":    job.RequestedBy,
		"created_at":      createdAt,
		"updated_at":      updatedAt,
	}

	query, args, err := sqlx.Named(queryCreateJob, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateJob")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"job_id":     job.JobID,
			"error":      err.Error(),
		}).Error("Database error when creating face detection job")
		return err
	}

	return nil
}

func (r *jobRepository) GetJobByJobID(c context.Context, jobID string) (entity.FaceDetectionJob, error) {
	requestID := contextPkg.GetRequestID(c)
	var job FaceDetectionJobDB

	argsKV := map[string]interface{}{
		"job_id": jobID,
	}

	query, args, err := sqlx.Named(queryGetJobByJobID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetJobByJobID named query preparation err")
		return entity.FaceDetectionJob{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"job_id":     jobID,
			}).Warn("GetJobByJobID no rows found")
			return entity.FaceDetectionJob{}, detection.ErrJobNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetJobByJobID execution err")
		return entity.FaceDetectionJob{}, err
	}

	return r.makeFaceDetectionJob(job), nil
}

func (r *jobRepository) GetJobsByRequester(c context.Context, requestedBy string) ([]entity.FaceDetectionJob, error) {
	requestID := contextPkg.GetRequestID(c)
	var jobs []FaceDetectionJobDB

	argsKV := map[string]interface{}{
		"requested_by": requestedBy,
	}

	query, args, err := sqlx.Named(queryGetJobsByRequester, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetJobsByRequester named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &jobs, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetJobsByRequester execution err")
		return nil, err
	}

	result := make([]entity.FaceDetectionJob, 0, len(jobs))
	for _, job := range jobs {
		result = append(result, r.makeFaceDetectionJob(job))
	}

	return result, nil
}

func (r *jobRepository) UpdateJob(c context.Context, job entity.FaceDetectionJob) error {
	requestID := contextPkg.GetRequestID(c)

	updatedAt := job.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	var completedAt sql.NullTime
	if job.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *job.CompletedAt, Valid: true}
	}

	argsKV := map[string]interface{}{
		"job_id":          job.JobID,
		"status":          string(job.Status),
		"status_message":  job.StatusMessage,
		"face_count":      job.FaceCount,
		"timestamp_count": job.TimestampCount,
		"updated_at":      updatedAt,
		"completed_at":    completedAt,
	}

	query, args, err := sqlx.Named(queryUpdateJob, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateJob named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"job_id":     job.JobID,
			"error":      err.Error(),
		}).Error("UpdateJob execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateJob rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"job_id":     job.JobID,
		}).Warn("UpdateJob no rows affected")
		return detection.ErrJobNotFound
	}

	return nil
}

func (r *jobRepository) makeFaceDetectionJob(job FaceDetectionJobDB) entity.FaceDetectionJob {
	res := entity.FaceDetectionJob{
		ID:             job.ID.String,
		JobID:          job.JobID.String,
		Bucket:         job.Bucket.String,
		VideoKey:       job.VideoKey.String,
		VideoSize:      job.VideoSize.Int64,
		Status:         entity.JobStatus(job.Status.String),
		StatusMessage:  job.StatusMessage.String,
		FaceCount:      int(job.FaceCount.Int64),
		TimestampCount: int(job.TimestampCount.Int64),
		RequestedBy:    job.RequestedBy.String,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
	}

	if job.CompletedAt.Valid {
		completedAt := job.CompletedAt.Time
		res.CompletedAt = &completedAt
	}

	return res
}
