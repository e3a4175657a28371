package calib

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// fileVersion is the calibration file format written by Save.
const fileVersion = 1

type fileRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// file is the on-disk calibration. A nil area means the whole monitor.
type file struct {
	Version int       `json:"version"`
	Monitor int       `json:"monitor"`
	Area    *fileRect `json:"area,omitempty"`
}

// Load reads the pad calibration from disk. Missing files return empty data.
func Load(path string) (Calib, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Calib{}, nil
		}
		return Calib{}, err
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return Calib{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if f.Version > fileVersion {
		return Calib{}, fmt.Errorf("decode %s: unsupported version %d", path, f.Version)
	}
	if f.Monitor < 0 {
		return Calib{}, fmt.Errorf("decode %s: invalid monitor %d", path, f.Monitor)
	}
	c := Calib{MonitorIndex: f.Monitor}
	if f.Area != nil {
		c.Area = Normalize(Rect{X: f.Area.X, Y: f.Area.Y, W: f.Area.W, H: f.Area.H})
	}
	return c, nil
}

// Save writes the pad calibration, replacing the file atomically.
func Save(path string, c Calib) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f := file{Version: fileVersion, Monitor: c.MonitorIndex}
	if !Empty(c.Area) {
		a := Normalize(c.Area)
		f.Area = &fileRect{X: a.X, Y: a.Y, W: a.W, H: a.H}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
