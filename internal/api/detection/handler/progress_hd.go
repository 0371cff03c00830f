package detectionHandler

import (
	"time"

	"FaceBlur/internal/entity"
	"FaceBlur/internal/middleware"
	contextPkg "FaceBlur/pkg/context"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	progressWriteTimeout = 10 * time.Second
	progressPingInterval = 30 * time.Second
)

func (h *DetectionHandler) handleProgressWebSocket(c *websocket.Conn) {
	jobID := c.Params("jobId")
	requestID := connRequestID(c)
	log := h.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"job_id":     jobID,
	})

	log.Debug("Progress WebSocket client connected")
	defer log.Debug("Progress WebSocket client disconnected")

	events, cancel := h.hub.Subscribe(jobID)
	defer cancel()

	if _, known := h.hub.Last(jobID); !known {
		done, err := h.sendStoredOutcome(c, requestID, jobID)
		if err != nil || done {
			return
		}
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(progressPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ping.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.WithError(err).Debug("Progress WebSocket ping failed")
				return
			}
		case event, ok := <-events:
			if !ok {
				closeNormally(c)
				return
			}

			if err := c.SetWriteDeadline(time.Now().Add(progressWriteTimeout)); err != nil {
				return
			}
			if err := c.WriteJSON(event); err != nil {
				log.WithError(err).Warn("Error writing progress event")
				return
			}

			if event.Stage.IsTerminal() {
				closeNormally(c)
				return
			}
		}
	}
}

// sendStoredOutcome covers jobs the hub has never seen or has already forgotten.
func (h *DetectionHandler) sendStoredOutcome(c *websocket.Conn, requestID, jobID string) (bool, error) {
	ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), 10*time.Second)
	defer cancel()

	job, err := h.detectionService.GetJob(ctx, jobID)
	if err != nil {
		_ = c.WriteJSON(map[string]string{"error": err.Error()})
		closeNormally(c)
		return true, err
	}

	if job.Status.IsInProgress() {
		return false, nil
	}

	stage := entity.StageComplete
	switch job.Status {
	case entity.JobStatusFailed:
		stage = entity.StageFailed
	case entity.JobStatusTimedOut:
		stage = entity.StageTimedOut
	}

	err = c.WriteJSON(entity.ProgressEvent{
		JobID:   jobID,
		Stage:   stage,
		Status:  job.Status,
		Faces:   job.FaceCount,
		Message: job.StatusMessage,
		Time:    job.UpdatedAt,
	})
	closeNormally(c)
	return true, err
}

func closeNormally(c *websocket.Conn) {
	_ = c.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}

type localsReader interface {
	Locals(key string) interface{}
}

// connRequestID returns the request ID the middleware stored before the upgrade.
func connRequestID(c localsReader) string {
	if id, ok := c.Locals(middleware.RequestIDKey).(string); ok && id != "" {
		return id
	}
	return "unknown"
}
