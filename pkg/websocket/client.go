package websocketPkg

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"FaceBlur/internal/entity"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

var ErrStreamClosed = errors.New("progress stream closed before the job finished")

type FollowOptions struct {
	Token            string
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
}

// ProgressURL turns an http(s) server address into the job's websocket stream URL.
func ProgressURL(baseURL, jobID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "http", "ws", "":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/v1/jobs/" + url.PathEscape(jobID) + "/ws"
	return u.String(), nil
}

// FollowJob streams progress events for jobID to handle until a terminal stage arrives.
func FollowJob(ctx context.Context, baseURL, jobID string, opts FollowOptions, handle func(entity.ProgressEvent) error) (entity.ProgressEvent, error) {
	var last entity.ProgressEvent

	endpoint, err := ProgressURL(baseURL, jobID)
	if err != nil {
		return last, err
	}

	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 10 * time.Second
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}

	header := http.Header{}
	if opts.Token != "" {
		header.Set("Authorization", "Bearer "+opts.Token)
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = opts.HandshakeTimeout

	conn, _, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return last, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(opts.PingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
				_ = conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					logrus.WithError(err).Debug("Progress stream ping failed")
				}
			}
		}
	}()

	for {
		var event entity.ProgressEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return last, ErrStreamClosed
			}
			return last, err
		}

		last = event
		if handle != nil {
			if err := handle(event); err != nil {
				return last, err
			}
		}

		if event.Stage.IsTerminal() {
			return last, nil
		}
	}
}
