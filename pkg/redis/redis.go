package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"FaceBlur/internal/entity"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const faceIndexKeyPrefix = "face-index:"

var ErrCacheMiss = errors.New("face index not cached")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type IRedis interface {
	SetFaceIndex(ctx context.Context, jobID string, index entity.TimestampIndex, expiration time.Duration) error
	GetFaceIndex(ctx context.Context, jobID string) (entity.TimestampIndex, error)
	DeleteFaceIndex(ctx context.Context, jobID string) error
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return NewWithClient(client)
}

func NewWithClient(client *redis.Client) IRedis {
	return &redisClient{client: client}
}

func FaceIndexKey(jobID string) string {
	return faceIndexKeyPrefix + jobID
}

func (r *redisClient) SetFaceIndex(ctx context.Context, jobID string, index entity.TimestampIndex, expiration time.Duration) error {
	payload, err := json.Marshal(index)
	if err != nil {
		return err
	}

	logrus.Debug(fmt.Sprintf("Caching face index for job %s (%d bytes, ttl %v)", jobID, len(payload), expiration))
	if err := r.client.Set(ctx, FaceIndexKey(jobID), payload, expiration).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error caching face index for job %s: %v", jobID, err))
		return err
	}
	return nil
}

func (r *redisClient) GetFaceIndex(ctx context.Context, jobID string) (entity.TimestampIndex, error) {
	val, err := r.client.Get(ctx, FaceIndexKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		logrus.Debug(fmt.Sprintf("Face index for job %s not cached", jobID))
		return nil, ErrCacheMiss
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading face index for job %s: %v", jobID, err))
		return nil, err
	}

	index := entity.TimestampIndex{}
	if err := json.Unmarshal(val, &index); err != nil {
		return nil, fmt.Errorf("decode cached face index: %w", err)
	}
	return index, nil
}

func (r *redisClient) DeleteFaceIndex(ctx context.Context, jobID string) error {
	result, err := r.client.Del(ctx, FaceIndexKey(jobID)).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error deleting face index for job %s: %v", jobID, err))
		return err
	}

	if result == 0 {
		logrus.Debug(fmt.Sprintf("Face index for job %s not found for deletion", jobID))
	}
	return nil
}
