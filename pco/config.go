package pco

import (
	"fmt"
	"strings"
)

// Default endpoints and acquisition parameters for the beamline deployment.
// Every value can be overridden per camera through a camera config file or
// explicitly at construction.
const (
	DefaultConnectionAddress = "tcp://10.10.1.26:8080"
	DefaultFlaskAPIAddress   = "http://xbl-daq-34:9901"
	DefaultWriterAPIAddress  = "http://xbl-daq-34:9555"
	DefaultUserID            = 503
	DefaultMaxFramesPerFile  = 20000
)

// Config carries the full parameter set for one acquisition. It is a plain
// value object: validity is recomputed from the current field values on
// every Validate call, never cached.
type Config struct {
	// OutputFile is the hdf5 output file path. It must end in ".h5" and may
	// contain a %d-style file number placeholder used when frames spill over
	// multiple files.
	OutputFile string
	// DatasetName is the dataset created inside the file's /exchange group.
	DatasetName string
	// NFrames is the total number of frames to acquire.
	NFrames int
	// UserID is the numeric account id the writer uses for file ownership.
	UserID int
	// MaxFramesPerFile caps the frames stored in a single file before the
	// writer rolls over to the next file index.
	MaxFramesPerFile int
	// ConnectionAddress is the camera data stream endpoint (tcp://host:port).
	ConnectionAddress string
	// FlaskAPIAddress is the writer service REST endpoint (http://host:port).
	FlaskAPIAddress string
	// WriterAPIAddress is the per-run writer process REST endpoint, valid
	// only while an acquisition runs (http://host:port).
	WriterAPIAddress string
}

// DefaultConfig returns a Config with the deployment defaults filled in and
// the acquisition fields (file, dataset, frame count) left empty.
func DefaultConfig() Config {
	return Config{
		UserID:            DefaultUserID,
		MaxFramesPerFile:  DefaultMaxFramesPerFile,
		ConnectionAddress: DefaultConnectionAddress,
		FlaskAPIAddress:   DefaultFlaskAPIAddress,
		WriterAPIAddress:  DefaultWriterAPIAddress,
	}
}

// Validate checks every field with its validator and reports the first
// failure. A Config is valid if and only if Validate returns nil.
func (c Config) Validate() error {
	if _, err := ValidateOutputFile(c.OutputFile); err != nil {
		return err
	}
	if _, err := ValidateDatasetName(c.DatasetName); err != nil {
		return err
	}
	if _, err := ValidateNonNegInt("n_frames", c.NFrames); err != nil {
		return err
	}
	if _, err := ValidateNonNegInt("user_id", c.UserID); err != nil {
		return err
	}
	if c.MaxFramesPerFile < 1 {
		return fmt.Errorf("%w: max_frames_per_file must be positive, got %d",
			ErrInvalidConfiguration, c.MaxFramesPerFile)
	}
	if _, err := ValidateNetworkAddress(c.ConnectionAddress, "tcp"); err != nil {
		return fmt.Errorf("connection_address: %w", err)
	}
	if _, err := ValidateNetworkAddress(c.FlaskAPIAddress, "http"); err != nil {
		return fmt.Errorf("flask_api_address: %w", err)
	}
	if _, err := ValidateNetworkAddress(c.WriterAPIAddress, "http"); err != nil {
		return fmt.Errorf("writer_api_address: %w", err)
	}
	return nil
}

// ensurePlaceholder inserts a zero-padded file number placeholder into the
// output file name when the acquisition will span multiple files and the
// name does not already carry one. "/a/b.h5" becomes "/a/b_%03d.h5".
func (c *Config) ensurePlaceholder() {
	if c.MaxFramesPerFile > c.NFrames {
		return
	}
	if placeholderRe.MatchString(c.OutputFile) {
		return
	}
	if len(c.OutputFile) < 3 {
		return
	}
	cut := len(c.OutputFile) - 3
	c.OutputFile = c.OutputFile[:cut] + "_%03d" + c.OutputFile[cut:]
}

// Changes is the partial field set accepted by Writer.Configure. Nil fields
// are left untouched. The two REST endpoints are fixed at construction and
// cannot be reconfigured: a client instance is bound to one writer service.
type Changes struct {
	OutputFile        *string
	DatasetName       *string
	NFrames           *int
	UserID            *int
	MaxFramesPerFile  *int
	ConnectionAddress *string
}

// apply validates each supplied field and assigns it. The first invalid
// field aborts; earlier assignments in the fixed field order stick, matching
// the sequential assignment semantics the writer operators rely on when
// correcting a single bad parameter.
func (c *Config) apply(ch Changes) error {
	if ch.OutputFile != nil {
		expanded, err := ValidateOutputFile(*ch.OutputFile)
		if err != nil {
			return err
		}
		c.OutputFile = expanded
	}
	if ch.DatasetName != nil {
		name, err := ValidateDatasetName(*ch.DatasetName)
		if err != nil {
			return err
		}
		c.DatasetName = name
	}
	if ch.NFrames != nil {
		n, err := ValidateNonNegInt("n_frames", *ch.NFrames)
		if err != nil {
			return err
		}
		c.NFrames = n
	}
	if ch.UserID != nil {
		id, err := ValidateNonNegInt("user_id", *ch.UserID)
		if err != nil {
			return err
		}
		c.UserID = id
	}
	if ch.MaxFramesPerFile != nil {
		n, err := ValidateNonNegInt("max_frames_per_file", *ch.MaxFramesPerFile)
		if err != nil {
			return err
		}
		c.MaxFramesPerFile = n
	}
	if ch.ConnectionAddress != nil {
		addr, err := ValidateNetworkAddress(*ch.ConnectionAddress, "tcp")
		if err != nil {
			return err
		}
		c.ConnectionAddress = addr
	}
	return nil
}

// startBody renders the configuration in the wire shape the writer service
// expects: flat JSON object, every value a string, ports split out of the
// two REST endpoints.
func (c Config) startBody() map[string]string {
	return map[string]string{
		"connection_address":  c.ConnectionAddress,
		"output_file":         c.OutputFile,
		"n_frames":            fmt.Sprintf("%d", c.NFrames),
		"user_id":             fmt.Sprintf("%d", c.UserID),
		"dataset_name":        c.DatasetName,
		"max_frames_per_file": fmt.Sprintf("%d", c.MaxFramesPerFile),
		"rest_api_port":       addressPort(c.FlaskAPIAddress),
		"n_modules":           "1",
		"writer_rest_port":    addressPort(c.WriterAPIAddress),
		"flask_api_address":   c.FlaskAPIAddress,
	}
}

// addressPort returns the port digits of a validated proto://host:port
// address, or "" when the address has no port separator.
func addressPort(addr string) string {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 || idx == len(addr)-1 {
		return ""
	}
	return addr[idx+1:]
}
