// Package app wires HTTP, signaling, the gesture engine and input injection together.
package app

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/frudas24/deskgesture/internal/calib"
	"github.com/frudas24/deskgesture/internal/config"
	"github.com/frudas24/deskgesture/internal/web"
)

// RegisterRoutes wires API and static handlers onto the mux.
func (a *App) RegisterRoutes(mux *http.ServeMux, staticDir string) {
	if staticDir == "" {
		staticDir = filepath.Join("internal", "web", "static")
	}

	mux.HandleFunc("/login", a.handleLogin)
	mux.HandleFunc("/logout", a.handleLogout)
	mux.HandleFunc("/api/monitors", a.handleMonitors)
	mux.HandleFunc("/api/state", a.handleState)
	mux.HandleFunc("/api/config", a.handleConfig)
	mux.Handle("/ws/control", a.Control())
	if sig := a.Signaling(); sig != nil {
		mux.Handle("/ws/signal", sig)
	}
	mux.HandleFunc("/feed", a.handleFeed)
	mux.HandleFunc("/favicon.ico", handleFavicon)

	mux.Handle("/", staticFileServer(staticDir))
}

type loginRequest struct {
	Password string `json:"password"`
}

type stateResponse struct {
	Mode          string          `json:"mode"`
	MonitorIndex  int             `json:"monitor"`
	InputEnabled  bool            `json:"inputEnabled"`
	Calibrated    bool            `json:"calibrated"`
	CalibData     *calib.Calib    `json:"calibData,omitempty"`
	Gestures      config.Gestures `json:"gestures"`
	WebRTC        bool            `json:"webrtc"`
	Authenticated bool            `json:"authenticated"`
}

type configRequest struct {
	Reset    bool             `json:"reset"`
	Gestures *config.Gestures `json:"gestures,omitempty"`
}

type configResponse struct {
	Applied  bool            `json:"applied"`
	Gestures config.Gestures `json:"gestures"`
}

// handleLogin authenticates the session.
func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !a.session.Authenticate(req.Password) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handleLogout clears authentication state and stops running gestures.
func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.session.Logout()
	a.onChange("disconnect")
	if sig := a.Signaling(); sig != nil {
		sig.NotifyRestart()
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handleMonitors returns the list of monitors.
func (a *App) handleMonitors(w http.ResponseWriter, _ *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	list, err := a.ListMonitors()
	if err != nil {
		http.Error(w, "failed to list monitors", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(list)
}

// handleState returns current session state and calibration status.
func (a *App) handleState(w http.ResponseWriter, _ *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	snap := a.session.Snapshot()
	resp := stateResponse{
		Mode:          snap.Mode,
		MonitorIndex:  snap.MonitorIndex,
		InputEnabled:  snap.InputEnabled,
		Calibrated:    !calib.Empty(snap.Calib.Area),
		Gestures:      snap.Gestures,
		WebRTC:        a.Signaling() != nil,
		Authenticated: snap.Authenticated,
	}
	if resp.Calibrated {
		c := snap.Calib
		resp.CalibData = &c
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// handleConfig returns or updates the gesture settings. Reset restores the settings loaded at startup.
func (a *App) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(configResponse{Gestures: a.session.Gestures()})
		return
	case http.MethodPost:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	var next config.Gestures
	switch {
	case req.Reset:
		next = a.defaults
	case req.Gestures != nil:
		next = *req.Gestures
	default:
		http.Error(w, "missing gestures", http.StatusBadRequest)
		return
	}
	if err := next.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.ApplyGestures(r.Context(), next); err != nil {
		log.Printf("apply gestures: %v", err)
		http.Error(w, "failed to apply gestures", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(configResponse{Applied: true, Gestures: next})
}

// handleFeed streams recognized gestures to authenticated clients.
func (a *App) handleFeed(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	a.feed.Handler(w, r)
}

// requireAuth returns false and writes an error if the session is not authenticated.
func (a *App) requireAuth(w http.ResponseWriter) bool {
	if !a.session.IsAuthenticated() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

// staticFileServer returns a handler for static assets, preferring disk then embed.
func staticFileServer(staticDir string) http.Handler {
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	embedded, err := web.StaticFS()
	if err != nil {
		log.Printf("static assets unavailable: %v", err)
		return http.NotFoundHandler()
	}
	return http.FileServer(http.FS(embedded))
}

// handleFavicon avoids noisy 404s for the default browser request.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
