package detectionRepository

import (
	"FaceBlur/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Jobs:     &jobRepository{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type JobStore interface {
	CreateJob(c context.Context, job entity.FaceDetectionJob) error
	GetJobByJobID(c context.Context, jobID string) (entity.FaceDetectionJob, error)
	GetJobsByRequester(c context.Context, requestedBy string) ([]entity.FaceDetectionJob, error)
	UpdateJob(c context.Context, job entity.FaceDetectionJob) error
}

type Client struct {
	Jobs JobStore

	Commit   func() error
	Rollback func() error
}

type jobRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
