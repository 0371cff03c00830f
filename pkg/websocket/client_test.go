package websocketPkg

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"FaceBlur/internal/entity"
	"github.com/gorilla/websocket"
	"golang.org/x/net/context"
)

func TestProgressURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{base: "http://localhost:3000", want: "ws://localhost:3000/api/v1/jobs/job-1/ws"},
		{base: "https://faces.example.com/", want: "wss://faces.example.com/api/v1/jobs/job-1/ws"},
		{base: "http://proxy/faceblur", want: "ws://proxy/faceblur/api/v1/jobs/job-1/ws"},
	}

	for _, tt := range tests {
		got, err := ProgressURL(tt.base, "job-1")
		if err != nil {
			t.Fatalf("ProgressURL(%q) error = %v", tt.base, err)
		}
		if got != tt.want {
			t.Errorf("ProgressURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}

	if _, err := ProgressURL("ftp://host", "job-1"); err == nil {
		t.Error("ProgressURL accepted ftp scheme")
	}
}

func TestFollowJob(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/api/v1/jobs/job-1/ws" {
			http.NotFound(w, r)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteJSON(entity.ProgressEvent{JobID: "job-1", Stage: entity.StageWaiting, Iteration: 1})
		_ = conn.WriteJSON(entity.ProgressEvent{JobID: "job-1", Stage: entity.StageCollecting, Iteration: 1, Faces: 2})
		_ = conn.WriteJSON(entity.ProgressEvent{JobID: "job-1", Stage: entity.StageComplete, Faces: 2})
	}))
	defer server.Close()

	var seen []entity.ProgressStage
	last, err := FollowJob(context.Background(), server.URL, "job-1", FollowOptions{Token: "abc"}, func(event entity.ProgressEvent) error {
		seen = append(seen, event.Stage)
		return nil
	})
	if err != nil {
		t.Fatalf("FollowJob() error = %v", err)
	}

	if last.Stage != entity.StageComplete || last.Faces != 2 {
		t.Errorf("last event = %+v", last)
	}
	if len(seen) != 3 {
		t.Errorf("stages = %v, want 3 events", seen)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestFollowJobStreamClosedEarly(t *testing.T) {
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteJSON(entity.ProgressEvent{JobID: "job-1", Stage: entity.StageWaiting, Iteration: 1})
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer server.Close()

	last, err := FollowJob(context.Background(), server.URL, "job-1", FollowOptions{}, nil)
	if err != ErrStreamClosed {
		t.Fatalf("FollowJob() error = %v, want ErrStreamClosed", err)
	}
	if last.Stage != entity.StageWaiting {
		t.Errorf("last event = %+v", last)
	}
}
