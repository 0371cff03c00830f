package rekognition

import (
	"context"
	"errors"
	"testing"

	"FaceBlur/internal/entity"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/rekognition"
	"github.com/aws/aws-sdk-go/service/rekognition/rekognitioniface"
)

type mockRekognitionAPI struct {
	rekognitioniface.RekognitionAPI

	startInput *rekognition.StartFaceDetectionInput
	startOut   *rekognition.StartFaceDetectionOutput
	getInputs  []*rekognition.GetFaceDetectionInput
	getOut     *rekognition.GetFaceDetectionOutput
	err        error
}

func (m *mockRekognitionAPI) StartFaceDetectionWithContext(_ aws.Context, in *rekognition.StartFaceDetectionInput, _ ...request.Option) (*rekognition.StartFaceDetectionOutput, error) {
	m.startInput = in
	return m.startOut, m.err
}

func (m *mockRekognitionAPI) GetFaceDetectionWithContext(_ aws.Context, in *rekognition.GetFaceDetectionInput, _ ...request.Option) (*rekognition.GetFaceDetectionOutput, error) {
	m.getInputs = append(m.getInputs, in)
	return m.getOut, m.err
}

func TestStartFaceDetection(t *testing.T) {
	api := &mockRekognitionAPI{startOut: &rekognition.StartFaceDetectionOutput{JobId: aws.String("job-1")}}
	client := NewWithAPI(api, 0, "blur")

	jobID, err := client.StartFaceDetection(context.Background(), "videos", "clips/clip.mp4")
	if err != nil {
		t.Fatalf("StartFaceDetection() error = %v", err)
	}
	if jobID != "job-1" {
		t.Errorf("jobID = %q, want job-1", jobID)
	}

	obj := api.startInput.Video.S3Object
	if aws.StringValue(obj.Bucket) != "videos" || aws.StringValue(obj.Name) != "clips/clip.mp4" {
		t.Errorf("unexpected S3 object %v", obj)
	}
	if aws.StringValue(api.startInput.JobTag) != "blur" {
		t.Errorf("JobTag = %q, want blur", aws.StringValue(api.startInput.JobTag))
	}
}

func TestStartFaceDetectionEmptyJobID(t *testing.T) {
	api := &mockRekognitionAPI{startOut: &rekognition.StartFaceDetectionOutput{}}
	client := NewWithAPI(api, 0, "")

	if _, err := client.StartFaceDetection(context.Background(), "b", "k.mp4"); err == nil {
		t.Fatal("expected error for empty job id")
	}
}

func TestGetFaceDetectionMapsPage(t *testing.T) {
	api := &mockRekognitionAPI{getOut: &rekognition.GetFaceDetectionOutput{
		JobStatus:     aws.String(rekognition.VideoJobStatusSucceeded),
		StatusMessage: aws.String("done"),
		NextToken:     aws.String("abc"),
		VideoMetadata: &rekognition.VideoMetadata{
			Codec:          aws.String("h264"),
			DurationMillis: aws.Int64(10000),
			FrameRate:      aws.Float64(29.97),
		},
		Faces: []*rekognition.FaceDetection{
			{
				Timestamp: aws.Int64(500),
				Face: &rekognition.FaceDetail{
					Confidence: aws.Float64(99.5),
					BoundingBox: &rekognition.BoundingBox{
						Left:   aws.Float64(0.1),
						Top:    aws.Float64(0.2),
						Width:  aws.Float64(0.3),
						Height: aws.Float64(0.4),
					},
				},
			},
			{Timestamp: aws.Int64(1000)},
		},
	}}
	client := NewWithAPI(api, 50, "")

	page, err := client.GetFaceDetection(context.Background(), "job-1", "")
	if err != nil {
		t.Fatalf("GetFaceDetection() error = %v", err)
	}

	in := api.getInputs[0]
	if in.NextToken != nil {
		t.Errorf("first page request should not carry a token, got %q", aws.StringValue(in.NextToken))
	}
	if aws.Int64Value(in.MaxResults) != 50 {
		t.Errorf("MaxResults = %d, want 50", aws.Int64Value(in.MaxResults))
	}

	if page.JobID != "job-1" || page.JobStatus != entity.JobStatusSucceeded || page.StatusMessage != "done" {
		t.Errorf("unexpected page header %+v", page)
	}
	if token, ok := page.Continuation(); !ok || token != "abc" {
		t.Errorf("Continuation() = (%q, %v), want (abc, true)", token, ok)
	}
	if page.VideoMetadata == nil || page.VideoMetadata.Codec != "h264" || page.VideoMetadata.DurationMillis != 10000 {
		t.Errorf("unexpected metadata %+v", page.VideoMetadata)
	}
	if len(page.Faces) != 2 {
		t.Fatalf("len(Faces) = %d, want 2", len(page.Faces))
	}

	want := entity.BoundingBox{Left: 0.1, Top: 0.2, Width: 0.3, Height: 0.4}
	if page.Faces[0].BoundingBox != want || page.Faces[0].Timestamp != 500 || page.Faces[0].Confidence != 99.5 {
		t.Errorf("Faces[0] = %+v", page.Faces[0])
	}
	if page.Faces[1].Timestamp != 1000 || page.Faces[1].BoundingBox != (entity.BoundingBox{}) {
		t.Errorf("Faces[1] = %+v", page.Faces[1])
	}
}

func TestGetFaceDetectionPassesToken(t *testing.T) {
	api := &mockRekognitionAPI{getOut: &rekognition.GetFaceDetectionOutput{
		JobStatus: aws.String(rekognition.VideoJobStatusSucceeded),
		NextToken: aws.String(""),
	}}
	client := NewWithAPI(api, 0, "")

	page, err := client.GetFaceDetection(context.Background(), "job-1", "abc")
	if err != nil {
		t.Fatal(err)
	}

	if aws.StringValue(api.getInputs[0].NextToken) != "abc" {
		t.Errorf("NextToken = %q, want abc", aws.StringValue(api.getInputs[0].NextToken))
	}
	if page.NextToken != nil {
		t.Errorf("empty token should map to nil, got %q", *page.NextToken)
	}
	if aws.Int64Value(api.getInputs[0].MaxResults) != defaultMaxResults {
		t.Errorf("MaxResults = %d, want default", aws.Int64Value(api.getInputs[0].MaxResults))
	}
}

func TestGetFaceDetectionReturnsErrorUnchanged(t *testing.T) {
	apiErr := errors.New("throttled")
	client := NewWithAPI(&mockRekognitionAPI{err: apiErr}, 0, "")

	_, err := client.GetFaceDetection(context.Background(), "job-1", "")
	if err != apiErr {
		t.Errorf("err = %v, want %v", err, apiErr)
	}
}
