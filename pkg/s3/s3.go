package s3

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sirupsen/logrus"
)

type ItfS3 interface {
	UploadVideo(ctx context.Context, file *multipart.FileHeader) (bucket string, key string, err error)
	UploadVideoFile(ctx context.Context, localPath string) (bucket string, key string, err error)
}

type s3Client struct {
	uploader   *s3manager.Uploader
	bucketName string
	prefix     string
}

func New() (ItfS3, error) {
	bucket := os.Getenv("AWS_BUCKET_NAME")
	if bucket == "" {
		return nil, fmt.Errorf("AWS_BUCKET_NAME is required")
	}

	return NewForBucket(bucket)
}

func NewForBucket(bucket string) (ItfS3, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	return &s3Client{
		uploader:   s3manager.NewUploader(sess),
		bucketName: bucket,
		prefix:     os.Getenv("AWS_VIDEO_PREFIX"),
	}, nil
}

func (s *s3Client) UploadVideo(ctx context.Context, file *multipart.FileHeader) (string, string, error) {
	src, err := file.Open()
	if err != nil {
		return "", "", err
	}
	defer func(src multipart.File) {
		if err := src.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close uploaded video")
		}
	}(src)

	key := s.objectKey(file.Filename)
	if _, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   src,
	}); err != nil {
		return "", "", err
	}

	return s.bucketName, key, nil
}

func (s *s3Client) UploadVideoFile(ctx context.Context, localPath string) (string, string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	key := s.objectKey(path.Base(localPath))
	if _, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   src,
	}); err != nil {
		return "", "", err
	}

	return s.bucketName, key, nil
}

// objectKey keeps the original extension last so Rekognition sees the container format.
func (s *s3Client) objectKey(fileName string) string {
	return GenerateObjectKey(s.prefix, fileName, time.Now())
}

func GenerateObjectKey(prefix, fileName string, now time.Time) string {
	name := strings.ReplaceAll(path.Base(fileName), " ", "_")
	key := fmt.Sprintf("%d-%s", now.UnixNano(), name)
	if prefix == "" {
		return key
	}
	return strings.TrimSuffix(prefix, "/") + "/" + key
}

func newSession() (*session.Session, error) {
	config := &aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
	}

	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey != "" && secretKey != "" {
		config.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, err
	}

	return sess, nil
}
