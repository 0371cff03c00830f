package websocketPkg

import (
	"sync"
	"time"

	"FaceBlur/internal/entity"
)

const (
	subscriberBuffer         = 16
	DefaultTerminalRetention = 10 * time.Minute
)

// IHub fans job progress events out to websocket subscribers.
type IHub interface {
	Report(event entity.ProgressEvent)
	Subscribe(jobID string) (<-chan entity.ProgressEvent, func())
	Last(jobID string) (entity.ProgressEvent, bool)
}

type hub struct {
	mu          sync.Mutex
	subscribers map[string]map[int]chan entity.ProgressEvent
	last        map[string]entity.ProgressEvent
	nextID      int
	retention   time.Duration
}

func NewHub(retention time.Duration) IHub {
	if retention <= 0 {
		retention = DefaultTerminalRetention
	}

	return &hub{
		subscribers: make(map[string]map[int]chan entity.ProgressEvent),
		last:        make(map[string]entity.ProgressEvent),
		retention:   retention,
	}
}

// Report delivers event to every subscriber of its job. A terminal event closes the
// subscriber channels after delivery.
func (h *hub) Report(event entity.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last[event.JobID] = event

	for id, ch := range h.subscribers[event.JobID] {
		deliver(ch, event)
		if event.Stage.IsTerminal() {
			close(ch)
			delete(h.subscribers[event.JobID], id)
		}
	}

	if event.Stage.IsTerminal() {
		delete(h.subscribers, event.JobID)
		jobID := event.JobID
		time.AfterFunc(h.retention, func() {
			h.forget(jobID)
		})
	}
}

// Subscribe replays the latest known event first. The returned cancel func is safe to call
// after the channel has been closed.
func (h *hub) Subscribe(jobID string) (<-chan entity.ProgressEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan entity.ProgressEvent, subscriberBuffer)

	if last, ok := h.last[jobID]; ok {
		ch <- last
		if last.Stage.IsTerminal() {
			close(ch)
			return ch, func() {}
		}
	}

	id := h.nextID
	h.nextID++
	if h.subscribers[jobID] == nil {
		h.subscribers[jobID] = make(map[int]chan entity.ProgressEvent)
	}
	h.subscribers[jobID][id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if subs, ok := h.subscribers[jobID]; ok {
			if c, ok := subs[id]; ok {
				close(c)
				delete(subs, id)
			}
			if len(subs) == 0 {
				delete(h.subscribers, jobID)
			}
		}
	}
}

func (h *hub) Last(jobID string) (entity.ProgressEvent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	event, ok := h.last[jobID]
	return event, ok
}

func (h *hub) forget(jobID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if last, ok := h.last[jobID]; ok && last.Stage.IsTerminal() {
		delete(h.last, jobID)
	}
}

// deliver never blocks the reporting goroutine; a full buffer drops its oldest event.
func deliver(ch chan entity.ProgressEvent, event entity.ProgressEvent) {
	select {
	case ch <- event:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- event:
	default:
	}
}
