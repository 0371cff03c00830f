package detectionService

import (
	"mime/multipart"
	"time"

	"FaceBlur/internal/api/detection"
	detectionRepository "FaceBlur/internal/api/detection/repository"
	"FaceBlur/internal/entity"
	"FaceBlur/pkg/redis"
	"FaceBlur/pkg/s3"
	"FaceBlur/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// FaceDetectionSource is the remote face-detection service. An empty nextToken asks for the
// first page, which also carries the current job status.
type FaceDetectionSource interface {
	GetFaceDetection(ctx context.Context, jobID, nextToken string) (*entity.DetectionPage, error)
}

// FaceDetectionStarter submits a stored video for asynchronous face detection.
type FaceDetectionStarter interface {
	StartFaceDetection(ctx context.Context, bucket, videoKey string) (string, error)
}

type FaceDetectionClient interface {
	FaceDetectionSource
	FaceDetectionStarter
}

type IDetectionService interface {
	SubmitVideo(ctx context.Context, file *multipart.FileHeader, requestedBy string) (*entity.FaceDetectionJob, error)
	StartDetection(ctx context.Context, req detection.StartDetectionRequest, requestedBy string) (*entity.FaceDetectionJob, error)
	GetJob(ctx context.Context, jobID string) (*entity.FaceDetectionJob, error)
	ListJobs(ctx context.Context, requestedBy string) ([]entity.FaceDetectionJob, error)
	GetFaces(ctx context.Context, jobID string) (entity.TimestampIndex, error)
	Process(ctx context.Context, jobID string) (entity.TimestampIndex, error)
}

type Config struct {
	Waiter         WaiterConfig
	CacheTTL       time.Duration
	ProcessTimeout time.Duration
}

type detectionService struct {
	log             *logrus.Logger
	repo            detectionRepository.Repository
	client          FaceDetectionClient
	s3Client        s3.ItfS3
	cache           redis.IRedis
	reporter        ProgressReporter
	utils           utils.IUtils
	cfg             Config
	waiter          *JobWaiter
	aggregator      *ResultAggregator
	runInBackground func(func())
}

func NewDetectionService(
	log *logrus.Logger,
	repo detectionRepository.Repository,
	client FaceDetectionClient,
	s3Client s3.ItfS3,
	cache redis.IRedis,
	hub ProgressReporter,
	utils utils.IUtils,
	cfg Config,
) IDetectionService {
	reporter := MultiReporter(NewLogReporter(log), hub)

	return &detectionService{
		log:        log,
		repo:       repo,
		client:     client,
		s3Client:   s3Client,
		cache:      cache,
		reporter:   reporter,
		utils:      utils,
		cfg:        cfg,
		waiter:     NewJobWaiter(client, cfg.Waiter, reporter),
		aggregator: NewResultAggregator(client, reporter),
		runInBackground: func(fn func()) {
			go fn()
		},
	}
}
