package rekognition

import (
	"context"
	"errors"
	"os"
	"strconv"

	"FaceBlur/internal/entity"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/rekognition"
	"github.com/aws/aws-sdk-go/service/rekognition/rekognitioniface"
)

const defaultMaxResults int64 = 1000

type IRekognition interface {
	StartFaceDetection(ctx context.Context, bucket, videoKey string) (string, error)
	GetFaceDetection(ctx context.Context, jobID, nextToken string) (*entity.DetectionPage, error)
}

type rekognitionClient struct {
	api        rekognitioniface.RekognitionAPI
	maxResults int64
	jobTag     string
}

func New() (IRekognition, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	maxResults := defaultMaxResults
	if raw := os.Getenv("REKOGNITION_MAX_RESULTS"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New("REKOGNITION_MAX_RESULTS must be an integer")
		}
		maxResults = parsed
	}

	return NewWithAPI(rekognition.New(sess), maxResults, os.Getenv("REKOGNITION_JOB_TAG")), nil
}

// NewWithAPI wraps an existing Rekognition API implementation.
func NewWithAPI(api rekognitioniface.RekognitionAPI, maxResults int64, jobTag string) IRekognition {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &rekognitionClient{
		api:        api,
		maxResults: maxResults,
		jobTag:     jobTag,
	}
}

func (r *rekognitionClient) StartFaceDetection(ctx context.Context, bucket, videoKey string) (string, error) {
	input := &rekognition.StartFaceDetectionInput{
		Video: &rekognition.Video{
			S3Object: &rekognition.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(videoKey),
			},
		},
		FaceAttributes: aws.String(rekognition.FaceAttributesDefault),
	}
	if r.jobTag != "" {
		input.JobTag = aws.String(r.jobTag)
	}

	output, err := r.api.StartFaceDetectionWithContext(ctx, input)
	if err != nil {
		return "", err
	}

	jobID := aws.StringValue(output.JobId)
	if jobID == "" {
		return "", errors.New("rekognition returned an empty job id")
	}

	return jobID, nil
}

// GetFaceDetection fetches one page of results. An empty nextToken requests the first page.
// Errors from the API are returned unchanged.
func (r *rekognitionClient) GetFaceDetection(ctx context.Context, jobID, nextToken string) (*entity.DetectionPage, error) {
	input := &rekognition.GetFaceDetectionInput{
		JobId:      aws.String(jobID),
		MaxResults: aws.Int64(r.maxResults),
	}
	if nextToken != "" {
		input.NextToken = aws.String(nextToken)
	}

	output, err := r.api.GetFaceDetectionWithContext(ctx, input)
	if err != nil {
		return nil, err
	}

	return toDetectionPage(jobID, output), nil
}

func toDetectionPage(jobID string, output *rekognition.GetFaceDetectionOutput) *entity.DetectionPage {
	page := &entity.DetectionPage{
		JobID:         jobID,
		JobStatus:     entity.JobStatus(aws.StringValue(output.JobStatus)),
		StatusMessage: aws.StringValue(output.StatusMessage),
		Faces:         make([]entity.FaceRecord, 0, len(output.Faces)),
	}

	if token := aws.StringValue(output.NextToken); token != "" {
		page.NextToken = aws.String(token)
	}

	if meta := output.VideoMetadata; meta != nil {
		page.VideoMetadata = &entity.VideoMetadata{
			Codec:          aws.StringValue(meta.Codec),
			Format:         aws.StringValue(meta.Format),
			DurationMillis: aws.Int64Value(meta.DurationMillis),
			FrameRate:      aws.Float64Value(meta.FrameRate),
			FrameWidth:     aws.Int64Value(meta.FrameWidth),
			FrameHeight:    aws.Int64Value(meta.FrameHeight),
		}
	}

	for _, face := range output.Faces {
		if face == nil {
			continue
		}
		record := entity.FaceRecord{Timestamp: aws.Int64Value(face.Timestamp)}
		if face.Face != nil {
			record.Confidence = aws.Float64Value(face.Face.Confidence)
			if box := face.Face.BoundingBox; box != nil {
				record.BoundingBox = entity.BoundingBox{
					Left:   aws.Float64Value(box.Left),
					Top:    aws.Float64Value(box.Top),
					Width:  aws.Float64Value(box.Width),
					Height: aws.Float64Value(box.Height),
				}
			}
		}
		page.Faces = append(page.Faces, record)
	}

	return page
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
