// Package config loads environment configuration for DeskGesture.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultListenAddr     = "0.0.0.0:8787"
	defaultDataDir        = "./data"
	defaultMonitorIdx     = 1
	defaultMode           = "relative"
	defaultFrameMs        = 16
	defaultFeedIntervalMs = 50
	defaultWebRTCEnabled  = true
)

// Config holds runtime configuration values.
type Config struct {
	ListenAddr     string
	UIPassword     string
	DataDir        string
	CalibPath      string
	GesturesPath   string
	MonitorIndex   int
	Mode           string
	FrameMs        int
	FeedIntervalMs int
	WebRTCEnabled  bool
	ICEServers     []string
}

// Load reads configuration from ./data/.env and environment variables.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:     defaultListenAddr,
		DataDir:        defaultDataDir,
		MonitorIndex:   defaultMonitorIdx,
		Mode:           defaultMode,
		FrameMs:        defaultFrameMs,
		FeedIntervalMs: defaultFeedIntervalMs,
		WebRTCEnabled:  defaultWebRTCEnabled,
	}

	if err := loadEnvFile(filepath.Join(cfg.DataDir, ".env")); err != nil {
		return Config{}, err
	}

	cfg.ListenAddr = envString("LISTEN_ADDR", cfg.ListenAddr)
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)
	cfg.CalibPath = envString("CALIB_PATH", filepath.Join(cfg.DataDir, "calib.json"))
	cfg.GesturesPath = envString("GESTURES_PATH", filepath.Join(cfg.DataDir, "gestures.yaml"))
	cfg.UIPassword = strings.TrimSpace(os.Getenv("UI_PASSWORD"))
	cfg.WebRTCEnabled = envBool("WEBRTC_ENABLED", cfg.WebRTCEnabled)
	cfg.ICEServers = envList("ICE_SERVERS")

	mode, err := normalizeMode(envString("PAD_MODE", cfg.Mode))
	if err != nil {
		return Config{}, err
	}
	cfg.Mode = mode

	monitorIdx, err := envInt("MONITOR_INDEX", cfg.MonitorIndex)
	if err != nil {
		return Config{}, err
	}
	cfg.MonitorIndex = monitorIdx

	frame, err := envInt("FRAME_MS", cfg.FrameMs)
	if err != nil {
		return Config{}, err
	}
	if frame <= 0 {
		return Config{}, fmt.Errorf("FRAME_MS must be > 0")
	}
	cfg.FrameMs = frame

	feedInterval, err := envInt("FEED_INTERVAL_MS", cfg.FeedIntervalMs)
	if err != nil {
		return Config{}, err
	}
	if feedInterval < 0 {
		return Config{}, fmt.Errorf("FEED_INTERVAL_MS must be >= 0")
	}
	cfg.FeedIntervalMs = feedInterval

	if cfg.UIPassword == "" {
		return Config{}, errors.New("UI_PASSWORD is required")
	}

	return cfg, nil
}

// normalizeMode validates the pad mode.
func normalizeMode(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "relative", "touchpad":
		return "relative", nil
	case "absolute", "tablet":
		return "absolute", nil
	default:
		return "", fmt.Errorf("PAD_MODE must be relative or absolute")
	}
}

// envList returns a comma separated env value as a trimmed list.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envString returns an env override when present, otherwise a default.
func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt returns an int env override when present, otherwise a default.
func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

// envBool returns a bool env override when present, otherwise a default.
func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// loadEnvFile loads KEY=VALUE pairs from a .env file.
func loadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// parseEnvLine parses a single .env line into key/value.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	if strings.HasPrefix(line, "export ") {
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	}
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", false
	}
	value = strings.Trim(value, `"'`)
	return key, value, true
}
