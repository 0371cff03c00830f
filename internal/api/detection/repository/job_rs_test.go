package detectionRepository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"FaceBlur/database/migrations"
	"FaceBlur/database/postgres"
	"FaceBlur/internal/api/detection"
	"FaceBlur/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("testcontainers panicked: %v", r)
			}
		}()
		_, err = testcontainers.NewDockerClientWithOpts(ctx)
		return
	}()
	if err != nil {
		t.Skipf("Docker not available: %v", err)
	}

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("faceblur_test"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = pgContainer.Terminate(ctx)
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	db, err := postgres.Connect(connStr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := migrations.Up(ctx, db); err != nil {
		t.Fatal(err)
	}

	return db
}

func TestJobRepositoryLifecycle(t *testing.T) {
	db := setupDB(t)
	logger := logrus.New()
	repo := New(db, logger)
	ctx := context.Background()

	created := time.Now().UTC().Truncate(time.Second)
	job := entity.FaceDetectionJob{
		ID:          "01HZX3N4P5Q6R7S8T9V0W1X2Y3",
		JobID:       "rekognition-job-1",
		Bucket:      "faceblur-videos",
		VideoKey:    "uploads/clip.mp4",
		VideoSize:   1024,
		Status:      entity.JobStatusInProgress,
		RequestedBy: "user-1",
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	client, err := repo.NewClient(true)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Jobs.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if err := client.Commit(); err != nil {
		t.Fatal(err)
	}

	reader, err := repo.NewClient(false)
	if err != nil {
		t.Fatal(err)
	}

	got, err := reader.Jobs.GetJobByJobID(ctx, job.JobID)
	if err != nil {
		t.Fatalf("GetJobByJobID() error = %v", err)
	}
	if got.Status != entity.JobStatusInProgress || got.VideoKey != job.VideoKey || got.CompletedAt != nil {
		t.Errorf("GetJobByJobID() = %+v", got)
	}

	completed := created.Add(time.Minute)
	got.Status = entity.JobStatusSucceeded
	got.FaceCount = 3
	got.TimestampCount = 2
	got.UpdatedAt = completed
	got.CompletedAt = &completed

	if err := reader.Jobs.UpdateJob(ctx, got); err != nil {
		t.Fatalf("UpdateJob() error = %v", err)
	}

	updated, err := reader.Jobs.GetJobByJobID(ctx, job.JobID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != entity.JobStatusSucceeded || updated.FaceCount != 3 || updated.TimestampCount != 2 {
		t.Errorf("updated job = %+v", updated)
	}
	if updated.CompletedAt == nil || !updated.CompletedAt.Equal(completed) {
		t.Errorf("CompletedAt = %v, want %v", updated.CompletedAt, completed)
	}

	jobs, err := reader.Jobs.GetJobsByRequester(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].JobID != job.JobID {
		t.Errorf("GetJobsByRequester() = %+v", jobs)
	}
}

func TestJobRepositoryNotFound(t *testing.T) {
	db := setupDB(t)
	repo := New(db, logrus.New())
	ctx := context.Background()

	client, err := repo.NewClient(false)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Jobs.GetJobByJobID(ctx, "missing"); !errors.Is(err, detection.ErrJobNotFound) {
		t.Errorf("GetJobByJobID() error = %v, want ErrJobNotFound", err)
	}

	err = client.Jobs.UpdateJob(ctx, entity.FaceDetectionJob{JobID: "missing", Status: entity.JobStatusFailed})
	if !errors.Is(err, detection.ErrJobNotFound) {
		t.Errorf("UpdateJob() error = %v, want ErrJobNotFound", err)
	}
}

func TestRollbackDiscardsJob(t *testing.T) {
	db := setupDB(t)
	repo := New(db, logrus.New())
	ctx := context.Background()

	client, err := repo.NewClient(true)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Jobs.CreateJob(ctx, entity.FaceDetectionJob{
		ID:       "01HZX3N4P5Q6R7S8T9V0W1X2Y4",
		JobID:    "rolled-back",
		Bucket:   "faceblur-videos",
		VideoKey: "clip.mov",
		Status:   entity.JobStatusInProgress,
	}); err != nil {
		t.Fatal(err)
	}
	if err := client.Rollback(); err != nil {
		t.Fatal(err)
	}

	reader, _ := repo.NewClient(false)
	if _, err := reader.Jobs.GetJobByJobID(ctx, "rolled-back"); !errors.Is(err, detection.ErrJobNotFound) {
		t.Errorf("job survived rollback, err = %v", err)
	}
}

func TestJobRepositoryLongRequester(t *testing.T) {
	db := setupDB(t)
	repo := New(db, logrus.New())
	ctx := context.Background()

	requester := strings.Repeat("client-", 40)
	now := time.Now().UTC().Truncate(time.Second)

	client, err := repo.NewClient(false)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Jobs.CreateJob(ctx, entity.FaceDetectionJob{
		ID:          "01HZX3N4P5Q6R7S8T9V0W1X2Y5",
		JobID:       "long-requester",
		Bucket:      "faceblur-videos",
		VideoKey:    "clip.mp4",
		VideoSize:   1024,
		Status:      entity.JobStatusInProgress,
		RequestedBy: requester,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}

	jobs, err := client.Jobs.GetJobsByRequester(ctx, requester)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].RequestedBy != requester {
		t.Errorf("GetJobsByRequester() = %+v", jobs)
	}
}
