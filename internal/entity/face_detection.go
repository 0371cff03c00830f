package entity

import (
	"sort"
	"strconv"
	"time"
)

type JobStatus string

const (
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusSucceeded  JobStatus = "SUCCEEDED"
	JobStatusFailed     JobStatus = "FAILED"
	// JobStatusTimedOut is never reported by Rekognition; it marks jobs we stopped polling.
	JobStatusTimedOut JobStatus = "TIMED_OUT"
)

func (s JobStatus) IsInProgress() bool {
	return s == JobStatusInProgress
}

type BoundingBox struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

type FaceRecord struct {
	Timestamp   int64       `json:"timestamp"`
	BoundingBox BoundingBox `json:"bounding_box"`
	Confidence  float64     `json:"confidence"`
}

type VideoMetadata struct {
	Codec          string  `json:"codec"`
	Format         string  `json:"format"`
	DurationMillis int64   `json:"duration_millis"`
	FrameRate      float64 `json:"frame_rate"`
	FrameWidth     int64   `json:"frame_width"`
	FrameHeight    int64   `json:"frame_height"`
}

// DetectionPage is one GetFaceDetection response. A nil NextToken marks the last page.
type DetectionPage struct {
	JobID         string         `json:"job_id"`
	JobStatus     JobStatus      `json:"job_status"`
	StatusMessage string         `json:"status_message,omitempty"`
	VideoMetadata *VideoMetadata `json:"video_metadata,omitempty"`
	Faces         []FaceRecord   `json:"faces"`
	NextToken     *string        `json:"next_token,omitempty"`
}

// Continuation returns the token for the following page, if there is one.
func (p *DetectionPage) Continuation() (string, bool) {
	if p == nil || p.NextToken == nil || *p.NextToken == "" {
		return "", false
	}
	return *p.NextToken, true
}

// TimestampKey renders a face timestamp the way TimestampIndex keys it.
func TimestampKey(timestamp int64) string {
	return strconv.FormatInt(timestamp, 10)
}

// TimestampIndex groups bounding boxes by the timestamp they were observed at.
type TimestampIndex map[string][]BoundingBox

func (t TimestampIndex) Add(face FaceRecord) {
	key := TimestampKey(face.Timestamp)
	t[key] = append(t[key], face.BoundingBox)
}

func (t TimestampIndex) FaceCount() int {
	total := 0
	for _, boxes := range t {
		total += len(boxes)
	}
	return total
}

// Timestamps returns the keys in ascending numeric order.
func (t TimestampIndex) Timestamps() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.ParseInt(keys[i], 10, 64)
		b, errB := strconv.ParseInt(keys[j], 10, 64)
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})

	return keys
}

type FaceDetectionJob struct {
	ID             string     `db:"id" json:"id"`
	JobID          string     `db:"job_id" json:"job_id"`
	Bucket         string     `db:"bucket" json:"bucket"`
	VideoKey       string     `db:"video_key" json:"video_key"`
	VideoSize      int64      `db:"video_size" json:"video_size"`
	Status         JobStatus  `db:"status" json:"status"`
	StatusMessage  string     `db:"status_message" json:"status_message,omitempty"`
	FaceCount      int        `db:"face_count" json:"face_count"`
	TimestampCount int        `db:"timestamp_count" json:"timestamp_count"`
	RequestedBy    string     `db:"requested_by" json:"requested_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

type ProgressStage string

const (
	StageWaiting    ProgressStage = "waiting"
	StageCollecting ProgressStage = "collecting"
	StageComplete   ProgressStage = "complete"
	StageFailed     ProgressStage = "failed"
	StageTimedOut   ProgressStage = "timed_out"
)

func (s ProgressStage) IsTerminal() bool {
	return s == StageComplete || s == StageFailed || s == StageTimedOut
}

type ProgressEvent struct {
	JobID     string        `json:"job_id"`
	Stage     ProgressStage `json:"stage"`
	Iteration int           `json:"iteration"`
	Status    JobStatus     `json:"status,omitempty"`
	Faces     int           `json:"faces"`
	Message   string        `json:"message,omitempty"`
	Time      time.Time     `json:"time"`
}
