package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"FaceBlur/internal/api/detection"
	detectionService "FaceBlur/internal/api/detection/service"
	"FaceBlur/internal/entity"
	"FaceBlur/pkg/rekognition"
	"FaceBlur/pkg/response"
	"FaceBlur/pkg/s3"
	"FaceBlur/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/net/context"
)

var (
	newRekognitionClient = func() (detectionService.FaceDetectionClient, error) {
		return rekognition.New()
	}
	newUploader = func(bucket string) (videoUploader, error) {
		return s3.NewForBucket(bucket)
	}
)

type videoUploader interface {
	UploadVideoFile(ctx context.Context, localPath string) (bucket string, key string, err error)
}

type pipelineOptions struct {
	interval    time.Duration
	timeout     time.Duration
	maxAttempts int
	format      string
	output      string
	quiet       bool
}

func (o *pipelineOptions) bind(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&o.interval, "interval", detectionService.DefaultPollInterval, "Delay between job status polls")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 2*time.Hour, "Give up waiting after this long (0 waits forever)")
	cmd.Flags().IntVar(&o.maxAttempts, "max-attempts", 0, "Give up after this many status polls (0 means no limit)")
	cmd.Flags().StringVarP(&o.format, "format", "f", formatJSON, "Output format: json or yaml")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Write the face index to a file instead of stdout")
	cmd.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "Hide the progress spinner")
}

func newDetectCmd() *cobra.Command {
	var (
		bucket   string
		videoKey string
		upload   string
		opts     pipelineOptions
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Start face detection on a video and print the faces per timestamp",
		Example: `  # Video already stored in S3
  faceblur detect --bucket my-videos --video uploads/clip.mp4

  # Upload a local file first, write YAML
  faceblur detect --bucket my-videos --upload ./clip.mov --format yaml -o faces.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			if (videoKey == "") == (upload == "") {
				return fmt.Errorf("exactly one of --video or --upload is required")
			}

			ctx := cmd.Context()

			client, err := newRekognitionClient()
			if err != nil {
				return err
			}

			if upload != "" {
				size, err := fileSize(upload)
				if err != nil {
					return err
				}
				if err := utils.ValidateVideo(filepath.Base(upload), size); err != nil {
					return err
				}

				uploader, err := newUploader(bucket)
				if err != nil {
					return err
				}
				if bucket, videoKey, err = uploader.UploadVideoFile(ctx, upload); err != nil {
					return fmt.Errorf("upload %s: %w", upload, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Uploaded %s to s3://%s/%s\n", upload, bucket, videoKey)
			} else if !utils.IsAllowedVideoExtension(utils.VideoExtension(videoKey)) {
				return response.Detail(detection.ErrInvalidVideo, fmt.Sprintf("%s is not an mp4 or mov video", videoKey))
			}

			jobID, err := client.StartFaceDetection(ctx, bucket, videoKey)
			if err != nil {
				return fmt.Errorf("start face detection: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Started face detection job %s\n", jobID)

			return runPipeline(cmd, client, jobID, opts)
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "S3 bucket holding the video")
	cmd.Flags().StringVar(&videoKey, "video", "", "S3 object key of a video already in the bucket")
	cmd.Flags().StringVar(&upload, "upload", "", "Local video to upload before detection")
	_ = cmd.MarkFlagRequired("bucket")
	opts.bind(cmd)

	return cmd
}

func newCollectCmd() *cobra.Command {
	var opts pipelineOptions

	cmd := &cobra.Command{
		Use:   "collect <job-id>",
		Short: "Wait for an existing face detection job and print its faces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}

			client, err := newRekognitionClient()
			if err != nil {
				return err
			}

			return runPipeline(cmd, client, args[0], opts)
		},
	}

	opts.bind(cmd)

	return cmd
}

// runPipeline waits for jobID, collects its faces and writes the index.
func runPipeline(cmd *cobra.Command, client detectionService.FaceDetectionSource, jobID string, opts pipelineOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var reporter detectionService.ProgressReporter
	if !opts.quiet {
		bar := newBarReporter(cmd.ErrOrStderr(), jobID)
		defer bar.Finish()
		reporter = bar
	}

	waiter := detectionService.NewJobWaiter(client, detectionService.WaiterConfig{
		PollInterval: opts.interval,
		MaxAttempts:  opts.maxAttempts,
		Timeout:      opts.timeout,
	}, reporter)

	final, err := waiter.Wait(ctx, jobID)
	if err != nil {
		return err
	}
	if final.JobStatus != entity.JobStatusSucceeded {
		return response.Detail(detection.ErrJobFailed,
			fmt.Sprintf("job %s ended with status %s: %s", jobID, final.JobStatus, final.StatusMessage))
	}

	index, err := detectionService.NewResultAggregator(client, reporter).Collect(ctx, jobID)
	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), opts.output, opts.format, detection.NewFaceIndexResponse(jobID, index))
}
