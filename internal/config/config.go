package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/camdaq/pcoclient/pco"
)

// Config carries the resolved pcoctl settings. Endpoint fields left empty
// inherit from the camera file entry, or from the built-in beamline
// defaults when no camera file is in play.
type Config struct {
	CameraFile string
	Camera     string

	ConnectionAddress string
	FlaskAPIAddress   string
	WriterAPIAddress  string

	OutputFile       string
	DatasetName      string
	NFrames          int
	UserID           int
	MaxFramesPerFile int

	FlushTimeout time.Duration
	Verbose      bool
}

const defaultConfigPath = "~/.config/pcoctl/config.toml"

// DefaultPath returns the default pcoctl config file path.
func DefaultPath() string {
	return defaultConfigPath
}

func defaults() Config {
	return Config{
		UserID:           pco.DefaultUserID,
		MaxFramesPerFile: pco.DefaultMaxFramesPerFile,
		FlushTimeout:     pco.DefaultFlushTimeout,
	}
}

// Load resolves the pcoctl configuration: built-in defaults, overlaid with
// the TOML config file (missing files are fine), overlaid with PCO_*
// environment variables. A .env file in the working directory is loaded
// into the environment first. Command line flags are applied later by the
// caller and win over everything here.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()
	if err := loadFile(&cfg, path); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.CameraFile != "" {
		expanded, err := expandPath(cfg.CameraFile)
		if err != nil {
			return Config{}, fmt.Errorf("camera file path: %w", err)
		}
		cfg.CameraFile = expanded
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		CameraFile        string `toml:"camera_file"`
		Camera            string `toml:"camera"`
		ConnectionAddress string `toml:"connection_address"`
		FlaskAPI          string `toml:"flask_api"`
		WriterAPI         string `toml:"writer_api"`
		OutputFile        string `toml:"output_file"`
		DatasetName       string `toml:"dataset_name"`
		NFrames           *int   `toml:"n_frames"`
		UserID            *int   `toml:"user_id"`
		MaxFramesPerFile  *int   `toml:"max_frames_per_file"`
		FlushTimeout      string `toml:"flush_timeout"`
		Verbose           *bool  `toml:"verbose"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&cfg.CameraFile, raw.CameraFile)
	setString(&cfg.Camera, raw.Camera)
	setString(&cfg.ConnectionAddress, raw.ConnectionAddress)
	setString(&cfg.FlaskAPIAddress, raw.FlaskAPI)
	setString(&cfg.WriterAPIAddress, raw.WriterAPI)
	setString(&cfg.OutputFile, raw.OutputFile)
	setString(&cfg.DatasetName, raw.DatasetName)
	if raw.NFrames != nil {
		cfg.NFrames = *raw.NFrames
	}
	if raw.UserID != nil {
		cfg.UserID = *raw.UserID
	}
	if raw.MaxFramesPerFile != nil {
		cfg.MaxFramesPerFile = *raw.MaxFramesPerFile
	}
	if trimmed := strings.TrimSpace(raw.FlushTimeout); trimmed != "" {
		d, err := time.ParseDuration(trimmed)
		if err != nil {
			return fmt.Errorf("parse flush_timeout: %w", err)
		}
		cfg.FlushTimeout = d
	}
	if raw.Verbose != nil {
		cfg.Verbose = *raw.Verbose
	}
	return nil
}

func setString(dst *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dst = trimmed
	}
}

func applyEnv(cfg *Config) error {
	lookup := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	lookup("PCO_CAMERA_FILE", &cfg.CameraFile)
	lookup("PCO_CAMERA", &cfg.Camera)
	lookup("PCO_CONNECTION_ADDRESS", &cfg.ConnectionAddress)
	lookup("PCO_FLASK_API", &cfg.FlaskAPIAddress)
	lookup("PCO_WRITER_API", &cfg.WriterAPIAddress)
	lookup("PCO_OUTPUT_FILE", &cfg.OutputFile)
	lookup("PCO_DATASET_NAME", &cfg.DatasetName)

	if v, ok := os.LookupEnv("PCO_N_FRAMES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PCO_N_FRAMES: %w", err)
		}
		cfg.NFrames = n
	}
	if v, ok := os.LookupEnv("PCO_USER_ID"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PCO_USER_ID: %w", err)
		}
		cfg.UserID = n
	}
	if v, ok := os.LookupEnv("PCO_MAX_FRAMES_PER_FILE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PCO_MAX_FRAMES_PER_FILE: %w", err)
		}
		cfg.MaxFramesPerFile = n
	}
	if v, ok := os.LookupEnv("PCO_FLUSH_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse PCO_FLUSH_TIMEOUT: %w", err)
		}
		cfg.FlushTimeout = d
	}
	if v, ok := os.LookupEnv("PCO_VERBOSE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse PCO_VERBOSE: %w", err)
		}
		cfg.Verbose = b
	}
	return nil
}

// Save writes the configuration to the given path, creating directories
// as needed. Saved files load back through Load unchanged.
func Save(path string, cfg Config) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	bytes, err := Encode(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Encode renders the configuration in the TOML form the config file uses.
// Optional fields that are empty are omitted.
func Encode(cfg Config) ([]byte, error) {
	raw := struct {
		CameraFile        string `toml:"camera_file,omitempty"`
		Camera            string `toml:"camera,omitempty"`
		ConnectionAddress string `toml:"connection_address,omitempty"`
		FlaskAPI          string `toml:"flask_api,omitempty"`
		WriterAPI         string `toml:"writer_api,omitempty"`
		OutputFile        string `toml:"output_file,omitempty"`
		DatasetName       string `toml:"dataset_name,omitempty"`
		NFrames           int    `toml:"n_frames,omitempty"`
		UserID            int    `toml:"user_id"`
		MaxFramesPerFile  int    `toml:"max_frames_per_file"`
		FlushTimeout      string `toml:"flush_timeout"`
		Verbose           bool   `toml:"verbose,omitempty"`
	}{
		CameraFile:        cfg.CameraFile,
		Camera:            cfg.Camera,
		ConnectionAddress: cfg.ConnectionAddress,
		FlaskAPI:          cfg.FlaskAPIAddress,
		WriterAPI:         cfg.WriterAPIAddress,
		OutputFile:        cfg.OutputFile,
		DatasetName:       cfg.DatasetName,
		NFrames:           cfg.NFrames,
		UserID:            cfg.UserID,
		MaxFramesPerFile:  cfg.MaxFramesPerFile,
		FlushTimeout:      cfg.FlushTimeout.String(),
		Verbose:           cfg.Verbose,
	}

	bytes, err := toml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return bytes, nil
}

// WriterConfig assembles the acquisition configuration for the pco client.
// A camera file entry, when selected, supplies the endpoints; explicit
// endpoint settings override it, and the built-in defaults cover whatever
// is left.
func (c Config) WriterConfig() (pco.Config, error) {
	wcfg := pco.DefaultConfig()
	if c.CameraFile != "" && c.Camera != "" {
		file, err := pco.LoadCameraFile(c.CameraFile)
		if err != nil {
			return pco.Config{}, err
		}
		entry, err := file.Lookup(c.Camera)
		if err != nil {
			return pco.Config{}, err
		}
		wcfg = entry.Config()
	}

	if c.ConnectionAddress != "" {
		wcfg.ConnectionAddress = c.ConnectionAddress
	}
	if c.FlaskAPIAddress != "" {
		wcfg.FlaskAPIAddress = c.FlaskAPIAddress
	}
	if c.WriterAPIAddress != "" {
		wcfg.WriterAPIAddress = c.WriterAPIAddress
	}

	wcfg.OutputFile = c.OutputFile
	wcfg.DatasetName = c.DatasetName
	wcfg.NFrames = c.NFrames
	wcfg.UserID = c.UserID
	wcfg.MaxFramesPerFile = c.MaxFramesPerFile
	return wcfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
