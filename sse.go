package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	sseChannelBuffer = 64
	sseHeartbeat     = 30 * time.Second
)

// message is one SSE frame: an event name and its JSON payload.
type message struct {
	event string
	data  []byte
}

// subscriber represents a single SSE connection following one job.
type subscriber struct {
	ch    chan message
	jobID string
}

// Broadcaster fans job events out to SSE subscribers.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[*subscriber]struct{}),
	}
}

// Subscribe adds a subscriber for a job and returns it.
func (b *Broadcaster) Subscribe(jobID string) *subscriber {
	s := &subscriber{
		ch:    make(chan message, sseChannelBuffer),
		jobID: jobID,
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Unsubscribe removes a subscriber and closes its channel. It is safe to call
// more than once.
func (b *Broadcaster) Unsubscribe(s *subscriber) {
	b.mu.Lock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
	b.mu.Unlock()
}

// Publish encodes evt as JSON and sends it to every subscriber of jobID
// under the given event name. Subscribers with a full buffer miss it.
func (b *Broadcaster) Publish(jobID, event string, evt any) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	msg := message{event: event, data: data}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		if s.jobID != jobID {
			continue
		}
		select {
		case s.ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribers returns the number of subscribers following a job.
func (b *Broadcaster) Subscribers(jobID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for s := range b.subs {
		if s.jobID == jobID {
			n++
		}
	}
	return n
}

// ServeSSE streams a job's events until the client goes away. initial, when
// not nil, is sent first so late subscribers see the current state.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, jobID string, initial func() (string, any)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s := b.Subscribe(jobID)
	defer b.Unsubscribe(s)

	if initial != nil {
		event, payload := initial()
		if data, err := json.Marshal(payload); err == nil {
			writeFrame(w, message{event: event, data: data})
			flusher.Flush()
		}
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-s.ch:
			if !ok {
				return
			}
			writeFrame(w, msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func writeFrame(w http.ResponseWriter, msg message) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.event, msg.data)
}
