package detection

import (
	"FaceBlur/pkg/response"
	"net/http"
)

var (
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
	ErrBadRequest          = response.NewError(http.StatusBadRequest, "bad request")
	ErrInvalidVideo        = response.NewError(http.StatusBadRequest, "invalid video")
	ErrJobNotFound         = response.NewError(http.StatusNotFound, "face detection job not found")
	ErrJobStillProcessing  = response.NewError(http.StatusConflict, "face detection job is still being processed")
	ErrJobFailed           = response.NewError(http.StatusUnprocessableEntity, "face detection job did not succeed")
	ErrPollingTimeout      = response.NewError(http.StatusGatewayTimeout, "face detection job polling timed out")
	ErrFailedToUpload      = response.NewError(http.StatusBadGateway, "failed to upload video")
	ErrFailedToStart       = response.NewError(http.StatusBadGateway, "failed to start face detection")
)
