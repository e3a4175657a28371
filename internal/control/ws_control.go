// Package control handles the pad protocol and maps gestures to desktop input.
package control

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/frudas24/deskgesture/internal/calib"
	"github.com/frudas24/deskgesture/internal/gesture"
	"github.com/frudas24/deskgesture/internal/session"
	"github.com/gorilla/websocket"
)

// EventSink receives pad events decoded from the wire.
type EventSink func(*gesture.Event)

// Server handles websocket control input.
type Server struct {
	mu        sync.Mutex
	upgrader  websocket.Upgrader
	session   *session.Session
	sink      EventSink
	onChange  func(reason string)
	saveCalib func(calib.Calib) error
	conn      *websocket.Conn
	start     time.Time
	now       func() time.Time
}

// NewServer creates a control websocket server. Input events go to sink; control
// messages update the session and report through onChange.
func NewServer(sess *session.Session, sink EventSink, onChange func(reason string), saveCalib func(calib.Calib) error) *Server {
	return &Server{
		session: sess,
		sink:    sink,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		onChange:  onChange,
		saveCalib: saveCalib,
		start:     time.Now(),
		now:       time.Now,
	}
}

// ServeHTTP upgrades the connection and processes control messages.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.session.IsAuthenticated() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if err := s.acceptConn(conn); err != nil {
		_ = conn.Close()
		return
	}
	defer s.cleanupConn(conn)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if err := s.handleMessage(msg); err != nil {
			return
		}
	}
}

// HandleRaw decodes and handles one message received outside the websocket, such as a data channel frame.
func (s *Server) HandleRaw(data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode control message: %w", err)
	}
	return s.handleMessage(msg)
}

// acceptConn ensures only one active control connection exists.
func (s *Server) acceptConn(conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return fmt.Errorf("control connection already active")
	}
	s.conn = conn
	return nil
}

// cleanupConn clears the active connection when closed.
func (s *Server) cleanupConn(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
	_ = conn.Close()
	s.notify("disconnect")
}

// handleMessage dispatches a single control message.
func (s *Server) handleMessage(msg Message) error {
	if ev, ok := msg.Event(); ok {
		if ev.Time == 0 {
			ev.Time = s.now().Sub(s.start)
		}
		if s.sink != nil {
			s.sink(ev)
		}
		return nil
	}

	switch msg.T {
	case "setMode":
		s.session.SetMode(msg.Mode)
		s.notify("mode")
	case "setMonitor":
		s.session.SetMonitor(msg.Idx)
		s.notify("monitor")
	case "calibRect":
		return s.handleCalibRect(msg)
	case "inputEnabled":
		if msg.Enabled != nil {
			s.session.SetInputEnabled(*msg.Enabled)
			s.notify("input")
		}
	case "cancel":
		s.notify("cancel")
	}
	return nil
}

// handleCalibRect stores the pad area. A missing rect resets to the whole monitor.
func (s *Server) handleCalibRect(msg Message) error {
	c := s.session.GetCalib()
	c.MonitorIndex = s.session.Monitor()
	c.Area = calib.Rect{}
	if msg.Rect != nil {
		c.Area = calib.Normalize(calib.Rect{X: msg.Rect.X, Y: msg.Rect.Y, W: msg.Rect.W, H: msg.Rect.H})
	}

	s.session.SetCalib(c)
	s.notify("calib")
	if s.saveCalib != nil {
		if err := s.saveCalib(c); err != nil {
			return fmt.Errorf("save calibration: %w", err)
		}
	}
	return nil
}

// notify reports session changes to the app.
func (s *Server) notify(reason string) {
	if s.onChange != nil {
		s.onChange(reason)
	}
}
