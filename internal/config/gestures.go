package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/frudas24/deskgesture/internal/gesture"
)

const (
	defaultDelayMs     = 150
	defaultSensitivity = 1.0
	defaultWheelScale  = 1.0
	defaultZoomScale   = 2.0
	defaultTapMs       = 200
)

// KindSettings configures one gesture kind. A nil Enabled means enabled.
type KindSettings struct {
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	DelayMs int   `yaml:"delay_ms,omitempty" json:"delayMs,omitempty"`
}

// Gestures holds the gesture engine and mapping settings stored in gestures.yaml.
type Gestures struct {
	Enabled        bool                    `yaml:"enabled" json:"enabled"`
	DelayMs        int                     `yaml:"delay_ms" json:"delayMs"`
	PointerCapture bool                    `yaml:"pointer_capture" json:"pointerCapture"`
	NativePinch    bool                    `yaml:"native_pinch" json:"nativePinch"`
	Passive        bool                    `yaml:"passive" json:"passive"`
	CaptureListen  bool                    `yaml:"capture_listeners" json:"captureListeners"`
	Kinds          map[string]KindSettings `yaml:"kinds,omitempty" json:"kinds,omitempty"`

	Sensitivity  float64 `yaml:"sensitivity" json:"sensitivity"`
	InvertScroll bool    `yaml:"invert_scroll" json:"invertScroll"`
	WheelScale   float64 `yaml:"wheel_scale" json:"wheelScale"`
	ZoomScale    float64 `yaml:"zoom_scale" json:"zoomScale"`
	TapMs        int     `yaml:"tap_ms" json:"tapMs"`
}

// DefaultGestures returns settings with every kind enabled.
func DefaultGestures() Gestures {
	return Gestures{
		Enabled:        true,
		DelayMs:        defaultDelayMs,
		PointerCapture: true,
		Passive:        true,
		Sensitivity:    defaultSensitivity,
		WheelScale:     defaultWheelScale,
		ZoomScale:      defaultZoomScale,
		TapMs:          defaultTapMs,
	}
}

// LoadGestures reads gestures.yaml over the defaults. Missing files return defaults.
func LoadGestures(path string) (Gestures, error) {
	g := DefaultGestures()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return g, nil
		}
		return g, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &g); err != nil {
		return g, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := g.Validate(); err != nil {
		return g, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// SaveGestures writes settings as YAML, creating parent directories as needed.
func SaveGestures(path string, g Gestures) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks ranges and kind names.
func (g Gestures) Validate() error {
	if g.DelayMs < 0 {
		return fmt.Errorf("delay_ms must be >= 0")
	}
	if g.Sensitivity <= 0 {
		return fmt.Errorf("sensitivity must be > 0")
	}
	if g.WheelScale <= 0 || g.ZoomScale <= 0 {
		return fmt.Errorf("wheel_scale and zoom_scale must be > 0")
	}
	if g.TapMs < 0 {
		return fmt.Errorf("tap_ms must be >= 0")
	}
	for name, k := range g.Kinds {
		if _, ok := gesture.ParseKind(name); !ok {
			return fmt.Errorf("unknown gesture kind %q", name)
		}
		if k.DelayMs < 0 {
			return fmt.Errorf("kinds.%s.delay_ms must be >= 0", name)
		}
	}
	return nil
}

// KindEnabled reports whether kind k is switched on.
func (g Gestures) KindEnabled(k gesture.Kind) bool {
	ks, ok := g.Kinds[k.String()]
	if !ok || ks.Enabled == nil {
		return true
	}
	return *ks.Enabled
}

// Engine converts the settings into a gesture configuration without targets.
func (g Gestures) Engine() gesture.Config {
	cfg := gesture.DefaultConfig()
	cfg.Enabled = g.Enabled
	cfg.Delay = time.Duration(g.DelayMs) * time.Millisecond
	cfg.PointerCapture = g.PointerCapture
	cfg.NativeGestures = g.NativePinch
	cfg.Listener = gesture.ListenerOptions{Passive: g.Passive, Capture: g.CaptureListen}
	for _, k := range gesture.AllKinds() {
		kc := gesture.KindConfig{Enabled: g.KindEnabled(k)}
		if ks, ok := g.Kinds[k.String()]; ok {
			kc.Delay = time.Duration(ks.DelayMs) * time.Millisecond
		}
		cfg.SetKind(k, kc)
	}
	return cfg
}
