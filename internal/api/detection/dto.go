package detection

import (
	"time"

	"FaceBlur/internal/entity"
)

type StartDetectionRequest struct {
	Bucket    string `json:"bucket" validate:"required,min=3,max=63"`
	VideoKey  string `json:"video_key" validate:"required,videoformat"`
	VideoSize int64  `json:"video_size" validate:"required,gt=0"`
}

type JobResponse struct {
	ID             string           `json:"id"`
	JobID          string           `json:"job_id"`
	Bucket         string           `json:"bucket"`
	VideoKey       string           `json:"video_key"`
	VideoSize      int64            `json:"video_size"`
	Status         entity.JobStatus `json:"status"`
	StatusMessage  string           `json:"status_message,omitempty"`
	FaceCount      int              `json:"face_count"`
	TimestampCount int              `json:"timestamp_count"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}

type FaceIndexResponse struct {
	JobID      string                `json:"job_id" yaml:"job_id"`
	FaceCount  int                   `json:"face_count" yaml:"face_count"`
	Timestamps []string              `json:"timestamps" yaml:"timestamps"`
	Faces      entity.TimestampIndex `json:"faces" yaml:"faces"`
}

func NewJobResponse(job entity.FaceDetectionJob) JobResponse {
	return JobResponse{
		ID:             job.ID,
		JobID:          job.JobID,
		Bucket:         job.Bucket,
		VideoKey:       job.VideoKey,
		VideoSize:      job.VideoSize,
		Status:         job.Status,
		StatusMessage:  job.StatusMessage,
		FaceCount:      job.FaceCount,
		TimestampCount: job.TimestampCount,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
		CompletedAt:    job.CompletedAt,
	}
}

func NewFaceIndexResponse(jobID string, index entity.TimestampIndex) FaceIndexResponse {
	return FaceIndexResponse{
		JobID:      jobID,
		FaceCount:  index.FaceCount(),
		Timestamps: index.Timestamps(),
		Faces:      index,
	}
}
