package pco

import (
	"encoding/json"
	"fmt"
	"os"
)

// CameraEntry is one camera record in a camera config file. It binds a
// camera name to the three endpoints a client needs to drive it.
type CameraEntry struct {
	Name              string `json:"name"`
	ConnectionAddress string `json:"connection_address"`
	FlaskAPIAddress   string `json:"flask_api_address"`
	WriterAPIAddress  string `json:"writer_api_address"`
}

// CameraFile is the parsed form of a camera config file.
type CameraFile struct {
	Cameras []CameraEntry `json:"cameras"`
}

// LoadCameraFile reads and validates a camera config file. Every entry must
// name the camera and carry three well-formed endpoint addresses; a file
// with no cameras at all is rejected so a typo'd path fails loudly instead
// of yielding an empty deployment.
func LoadCameraFile(path string) (*CameraFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read camera config: %w", err)
	}
	var file CameraFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse camera config %s: %w", path, err)
	}
	if len(file.Cameras) == 0 {
		return nil, fmt.Errorf("%w: camera config %s lists no cameras",
			ErrInvalidConfiguration, path)
	}
	for i, cam := range file.Cameras {
		if cam.Name == "" {
			return nil, fmt.Errorf("%w: camera config %s: entry %d has no name",
				ErrInvalidConfiguration, path, i)
		}
		if _, err := ValidateNetworkAddress(cam.ConnectionAddress, "tcp"); err != nil {
			return nil, fmt.Errorf("camera %s: connection_address: %w", cam.Name, err)
		}
		if _, err := ValidateNetworkAddress(cam.FlaskAPIAddress, "http"); err != nil {
			return nil, fmt.Errorf("camera %s: flask_api_address: %w", cam.Name, err)
		}
		if _, err := ValidateNetworkAddress(cam.WriterAPIAddress, "http"); err != nil {
			return nil, fmt.Errorf("camera %s: writer_api_address: %w", cam.Name, err)
		}
	}
	return &file, nil
}

// Lookup returns the entry for the named camera.
func (f *CameraFile) Lookup(name string) (CameraEntry, error) {
	for _, cam := range f.Cameras {
		if cam.Name == name {
			return cam, nil
		}
	}
	return CameraEntry{}, fmt.Errorf("%w: %q", ErrCameraNotFound, name)
}

// Config returns a Config seeded with the entry's endpoints and the
// deployment defaults for everything else.
func (e CameraEntry) Config() Config {
	cfg := DefaultConfig()
	cfg.ConnectionAddress = e.ConnectionAddress
	cfg.FlaskAPIAddress = e.FlaskAPIAddress
	cfg.WriterAPIAddress = e.WriterAPIAddress
	return cfg
}
