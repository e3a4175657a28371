package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/frudas24/deskgesture/internal/gesture"
)

// threadSafeRecorder is a minimal http.ResponseWriter + http.Flusher that is safe to use across goroutines.
type threadSafeRecorder struct {
	mu     sync.Mutex
	header http.Header
	buf    bytes.Buffer
	status int
}

// Header returns the response headers.
func (r *threadSafeRecorder) Header() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

// Write appends bytes to the response body.
func (r *threadSafeRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.buf.Write(p)
}

// WriteHeader sets the HTTP status code.
func (r *threadSafeRecorder) WriteHeader(statusCode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = statusCode
}

// Flush implements http.Flusher.
func (r *threadSafeRecorder) Flush() {}

// bodyString returns the current body as a string.
func (r *threadSafeRecorder) bodyString() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// bodyBytes returns a copy of the current body as bytes.
func (r *threadSafeRecorder) bodyBytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.buf.Bytes()...)
}

// TestFrameFromState verifies frames carry kind, movement and aliases.
func TestFrameFromState(t *testing.T) {
	t.Parallel()
	var s gesture.State
	s.Kind = gesture.KindDrag
	s.Values = gesture.Vec2{0.6, 0.5}
	s.Initial = gesture.Vec2{0.5, 0.5}
	s.XY = s.Values
	s.Time = 1500 * time.Microsecond

	f := FrameFromState(s)
	if f.Kind != "drag" || f.XY != s.Values || f.TimeMs != 1.5 {
		t.Fatalf("unexpected frame %+v", f)
	}
	if f.Movement[0] < 0.0999 || f.Movement[0] > 0.1001 || f.Movement[1] != 0 {
		t.Fatalf("unexpected movement %v", f.Movement)
	}
}

// TestStreamHandlerWritesEvent validates the handler replays the last frame as an SSE event.
func TestStreamHandlerWritesEvent(t *testing.T) {
	t.Parallel()

	s := NewStream(0)
	if err := s.Publish(Frame{Kind: "wheel", First: true}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://example/feed", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	rec := &threadSafeRecorder{}

	done := make(chan struct{})
	go func() {
		s.Handler(rec, req)
		close(done)
	}()

	deadline := time.NewTimer(500 * time.Millisecond)
	defer deadline.Stop()
	for {
		if bytes.Contains(rec.bodyBytes(), []byte("\n\n")) {
			break
		}
		select {
		case <-deadline.C:
			cancel()
			<-done
			t.Fatalf("timed out waiting for event, body=%q", rec.bodyString())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content-type: %q", ct)
	}
	body := rec.bodyBytes()
	if !bytes.HasPrefix(body, []byte("event: gesture\ndata: ")) {
		t.Fatalf("expected gesture event, body=%q", rec.bodyString())
	}
	line := bytes.TrimSuffix(bytes.TrimPrefix(body, []byte("event: gesture\ndata: ")), []byte("\n\n"))
	var f Frame
	if err := json.Unmarshal(line, &f); err != nil {
		t.Fatalf("decode frame: %v body=%q", err, rec.bodyString())
	}
	if f.Kind != "wheel" || !f.First {
		t.Fatalf("unexpected frame %+v", f)
	}
}

// TestStreamPublishThrottle ensures throttled changes update the last frame without broadcasting.
func TestStreamPublishThrottle(t *testing.T) {
	t.Parallel()

	s := NewStream(time.Hour)
	ch := s.subscribe()
	defer s.unsubscribe(ch)

	if err := s.Publish(Frame{Kind: "move"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case <-ch:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timed out waiting for first publish")
	}

	if err := s.Publish(Frame{Kind: "move", Velocity: 2}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case <-ch:
		t.Fatal("expected throttled publish to not broadcast immediately")
	case <-time.After(50 * time.Millisecond):
	}

	s.mu.RLock()
	last := append([]byte(nil), s.last...)
	s.mu.RUnlock()
	if !bytes.Contains(last, []byte(`"velocity":2`)) {
		t.Fatalf("expected last frame to update even when throttled, got %s", last)
	}
}

// TestStreamPublishBoundariesBypassThrottle ensures end frames are never throttled.
func TestStreamPublishBoundariesBypassThrottle(t *testing.T) {
	t.Parallel()

	s := NewStream(time.Hour)
	ch := s.subscribe()
	defer s.unsubscribe(ch)

	_ = s.Publish(Frame{Kind: "drag"})
	<-ch
	_ = s.Publish(Frame{Kind: "drag", Last: true})
	select {
	case data := <-ch:
		if !bytes.Contains(data, []byte(`"last":true`)) {
			t.Fatalf("expected end frame, got %s", data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected end frame to bypass throttle")
	}
}

// TestStreamPublishConcurrent does a basic concurrent publish/subscribe churn to help catch panics and race issues under -race.
func TestStreamPublishConcurrent(t *testing.T) {
	t.Parallel()

	s := NewStream(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				_ = s.Publish(Frame{Kind: "move"})
			}
		}()
	}

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				ch := s.subscribe()
				select {
				case <-ch:
				default:
				}
				s.unsubscribe(ch)
			}
		}()
	}

	wg.Wait()
	if n := s.Subscribers(); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
}
