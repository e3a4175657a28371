// Package feed broadcasts recognized gestures to browsers as Server-Sent Events.
package feed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/frudas24/deskgesture/internal/gesture"
)

// Frame is the JSON view of one handler call.
type Frame struct {
	Kind     string       `json:"kind"`
	First    bool         `json:"first"`
	Last     bool         `json:"last"`
	Active   bool         `json:"active"`
	Canceled bool         `json:"canceled"`
	Values   gesture.Vec2 `json:"values"`
	Delta    gesture.Vec2 `json:"delta"`
	Movement gesture.Vec2 `json:"movement"`
	Velocity float64      `json:"velocity"`
	XY       gesture.Vec2 `json:"xy"`
	VxVy     gesture.Vec2 `json:"vxvy"`
	DA       gesture.Vec2 `json:"da"`
	VdVa     gesture.Vec2 `json:"vdva"`
	Turns    int          `json:"turns,omitempty"`
	Buttons  int          `json:"buttons"`
	Touches  int          `json:"touches"`
	Down     bool         `json:"down"`
	TimeMs   float64      `json:"timeMs"`
}

// FrameFromState builds a frame from a handler state.
func FrameFromState(s gesture.State) Frame {
	return Frame{
		Kind:     s.Kind.String(),
		First:    s.First,
		Last:     s.Last,
		Active:   s.Active,
		Canceled: s.Canceled,
		Values:   s.Values,
		Delta:    s.Delta,
		Movement: s.Values.Sub(s.Initial),
		Velocity: s.Velocity,
		XY:       s.XY,
		VxVy:     s.VxVy,
		DA:       s.DA,
		VdVa:     s.VdVa,
		Turns:    s.Turns,
		Buttons:  s.Buttons,
		Touches:  s.Touches,
		Down:     s.Down,
		TimeMs:   float64(s.Time) / float64(time.Millisecond),
	}
}

// Stream broadcasts JSON frames to connected HTTP clients.
type Stream struct {
	mu          sync.RWMutex
	subs        map[chan []byte]struct{}
	last        []byte
	minInterval time.Duration
	lastPush    time.Time
	keepAlive   time.Duration
}

// NewStream creates a new stream with a minimum publish interval.
func NewStream(minInterval time.Duration) *Stream {
	return &Stream{
		subs:        make(map[chan []byte]struct{}),
		minInterval: minInterval,
		keepAlive:   15 * time.Second,
	}
}

// SetMinInterval sets the minimum interval between published frames.
func (s *Stream) SetMinInterval(d time.Duration) {
	s.mu.Lock()
	s.minInterval = d
	s.mu.Unlock()
}

// Subscribers returns the number of connected clients.
func (s *Stream) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Publish sends a frame to all subscribers with throttling. Start and end frames
// bypass the throttle so clients always see gesture boundaries.
func (s *Stream) Publish(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = data
	if !f.First && !f.Last && s.minInterval > 0 && now.Sub(s.lastPush) < s.minInterval {
		return nil
	}
	s.lastPush = now
	for ch := range s.subs {
		// drop the oldest pending frame for slow clients
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- data:
		default:
		}
	}
	return nil
}

// Handler serves the event stream to the HTTP client.
func (s *Stream) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")

	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := s.subscribe()
	defer s.unsubscribe(ch)
	fl.Flush()

	s.mu.RLock()
	every := s.keepAlive
	s.mu.RUnlock()
	keep := time.NewTicker(every)
	defer keep.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			if err := writeEvent(w, data); err != nil {
				return
			}
			fl.Flush()
		case <-keep.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			fl.Flush()
		}
	}
}

// subscribe registers a new client and replays the last frame.
func (s *Stream) subscribe() chan []byte {
	ch := make(chan []byte, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	if len(s.last) > 0 {
		ch <- s.last
	}
	s.mu.Unlock()
	return ch
}

// unsubscribe removes a client subscription.
func (s *Stream) unsubscribe(ch chan []byte) {
	s.mu.Lock()
	delete(s.subs, ch)
	close(ch)
	s.mu.Unlock()
}

// writeEvent writes a single gesture event.
func writeEvent(w http.ResponseWriter, data []byte) error {
	_, err := fmt.Fprintf(w, "event: gesture\ndata: %s\n\n", data)
	return err
}
