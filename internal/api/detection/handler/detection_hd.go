package detectionHandler

import (
	"errors"
	"time"

	"FaceBlur/internal/api/detection"
	contextPkg "FaceBlur/pkg/context"
	"FaceBlur/pkg/handlerUtil"
	jwtPkg "FaceBlur/pkg/jwt"
	"FaceBlur/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

// uploadTimeout covers streaming the video to S3 before detection starts.
const uploadTimeout = 5 * time.Minute

func (h *DetectionHandler) SubmitVideo(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), uploadTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing submit video request")

	client, err := jwtPkg.GetClient(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	file, err := ctx.FormFile("video")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID, errors.New("video file is required"), ctx.Path())
	}

	job, err := h.detectionService.SubmitVideo(c, file, client.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "submit_video")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusAccepted, detection.NewJobResponse(*job))
	}
}

func (h *DetectionHandler) StartDetection(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing start detection request")

	client, err := jwtPkg.GetClient(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req detection.StartDetectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, detection.ErrBadRequest, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	job, err := h.detectionService.StartDetection(c, req, client.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "start_detection")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusAccepted, detection.NewJobResponse(*job))
	}
}

func (h *DetectionHandler) ListJobs(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	client, err := jwtPkg.GetClient(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	jobs, err := h.detectionService.ListJobs(c, client.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_jobs")
	}

	responses := make([]detection.JobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, detection.NewJobResponse(job))
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"jobs": responses,
		})
	}
}

func (h *DetectionHandler) GetJob(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	jobID := ctx.Params("jobId")
	if jobID == "" {
		return errHandler.HandleValidationError(ctx, requestID, errors.New("job ID is required"), ctx.Path())
	}

	job, err := h.detectionService.GetJob(c, jobID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_job")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, detection.NewJobResponse(*job))
	}
}

func (h *DetectionHandler) GetFaces(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	// A cache miss re-reads every result page from Rekognition.
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), time.Minute)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	jobID := ctx.Params("jobId")
	if jobID == "" {
		return errHandler.HandleValidationError(ctx, requestID, errors.New("job ID is required"), ctx.Path())
	}

	index, err := h.detectionService.GetFaces(c, jobID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_faces")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, detection.NewFaceIndexResponse(jobID, index))
	}
}
