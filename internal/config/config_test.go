package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/camdaq/pcoclient/pco"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.UserID != pco.DefaultUserID {
		t.Fatalf("UserID = %d, want %d", cfg.UserID, pco.DefaultUserID)
	}
	if cfg.MaxFramesPerFile != pco.DefaultMaxFramesPerFile {
		t.Fatalf("MaxFramesPerFile = %d, want %d", cfg.MaxFramesPerFile, pco.DefaultMaxFramesPerFile)
	}
	if cfg.FlushTimeout != pco.DefaultFlushTimeout {
		t.Fatalf("FlushTimeout = %v, want %v", cfg.FlushTimeout, pco.DefaultFlushTimeout)
	}
	if cfg.FlaskAPIAddress != "" || cfg.CameraFile != "" {
		t.Fatalf("endpoints = %+v, want them empty so weaker sources apply", cfg)
	}
}

func TestLoad_ParsesFullConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
camera_file = "~/cameras.json"
camera = "pco2"
connection_address = "tcp://10.10.1.26:8080"
flask_api = "  http://xbl-daq-34:9902  "
writer_api = "http://xbl-daq-34:9556"
output_file = "~/data/run.h5"
dataset_name = "data_black"
n_frames = 250
user_id = 12345
max_frames_per_file = 1000
flush_timeout = "250ms"
verbose = true
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CameraFile != filepath.Join(home, "cameras.json") {
		t.Fatalf("CameraFile = %q, want tilde expanded under %q", cfg.CameraFile, home)
	}
	if cfg.Camera != "pco2" {
		t.Fatalf("Camera = %q, want %q", cfg.Camera, "pco2")
	}
	if cfg.FlaskAPIAddress != "http://xbl-daq-34:9902" {
		t.Fatalf("FlaskAPIAddress = %q, want trimmed file value", cfg.FlaskAPIAddress)
	}
	if cfg.NFrames != 250 || cfg.UserID != 12345 || cfg.MaxFramesPerFile != 1000 {
		t.Fatalf("numeric fields = %d/%d/%d, want 250/12345/1000",
			cfg.NFrames, cfg.UserID, cfg.MaxFramesPerFile)
	}
	if cfg.FlushTimeout != 250*time.Millisecond {
		t.Fatalf("FlushTimeout = %v, want 250ms", cfg.FlushTimeout)
	}
	if !cfg.Verbose {
		t.Fatalf("Verbose = false, want true")
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
dataset_name = "from_file"
n_frames = 5
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Setenv("PCO_DATASET_NAME", "from_env")
	t.Setenv("PCO_N_FRAMES", "25")
	t.Setenv("PCO_VERBOSE", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DatasetName != "from_env" {
		t.Fatalf("DatasetName = %q, want the environment to win", cfg.DatasetName)
	}
	if cfg.NFrames != 25 {
		t.Fatalf("NFrames = %d, want 25", cfg.NFrames)
	}
	if !cfg.Verbose {
		t.Fatalf("Verbose = false, want true from PCO_VERBOSE")
	}
}

func TestLoad_RejectsMalformedEnvironmentNumbers(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PCO_N_FRAMES", "ten")

	_, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "PCO_N_FRAMES") {
		t.Fatalf("Load error = %q, want it to name the variable", err.Error())
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`n_frames = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_InvalidFlushTimeoutFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`flush_timeout = "fast"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "flush_timeout") {
		t.Fatalf("Load error = %q, want it to mention flush_timeout", err.Error())
	}
}

func TestSave_RoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	saved := Config{
		Camera:            "pco1",
		ConnectionAddress: "tcp://10.10.1.26:8080",
		FlaskAPIAddress:   "http://xbl-daq-32:9901",
		WriterAPIAddress:  "http://xbl-daq-32:9555",
		OutputFile:        "/gpfs/run.h5",
		DatasetName:       "data_black",
		NFrames:           500,
		UserID:            12345,
		MaxFramesPerFile:  20000,
		FlushTimeout:      250 * time.Millisecond,
		Verbose:           true,
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, saved); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != saved {
		t.Fatalf("Load() = %+v, want the saved config %+v", loaded, saved)
	}
}

func TestSave_CreatesParentDirectories(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "nested", "deeper", "config.toml")
	if err := Save(path, defaults()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("saved config missing: %v", err)
	}
}

func TestSave_OmitsEmptyOptionalFields(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, defaults()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(data)
	for _, key := range []string{"camera_file", "camera =", "output_file", "dataset_name", "n_frames"} {
		if strings.Contains(text, key) {
			t.Errorf("saved config contains %q, want it omitted:\n%s", key, text)
		}
	}
	for _, key := range []string{"user_id", "max_frames_per_file", "flush_timeout"} {
		if !strings.Contains(text, key) {
			t.Errorf("saved config missing %q:\n%s", key, text)
		}
	}
}

func TestWriterConfig_CameraFileSuppliesEndpoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cameras.json")
	if err := os.WriteFile(path, []byte(`{
		"cameras": [{
			"name": "pco1",
			"connection_address": "tcp://10.10.1.26:8080",
			"flask_api_address": "http://xbl-daq-34:9901",
			"writer_api_address": "http://xbl-daq-34:9555"
		}]
	}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Config{
		CameraFile:       path,
		Camera:           "pco1",
		WriterAPIAddress: "http://xbl-daq-34:9777",
		OutputFile:       "/tmp/run.h5",
		DatasetName:      "data",
		NFrames:          10,
		UserID:           503,
		MaxFramesPerFile: 20000,
	}
	wcfg, err := cfg.WriterConfig()
	if err != nil {
		t.Fatalf("WriterConfig returned error: %v", err)
	}
	if wcfg.FlaskAPIAddress != "http://xbl-daq-34:9901" {
		t.Fatalf("FlaskAPIAddress = %q, want the camera entry endpoint", wcfg.FlaskAPIAddress)
	}
	if wcfg.WriterAPIAddress != "http://xbl-daq-34:9777" {
		t.Fatalf("WriterAPIAddress = %q, want the explicit setting to win", wcfg.WriterAPIAddress)
	}
	if wcfg.OutputFile != "/tmp/run.h5" || wcfg.NFrames != 10 {
		t.Fatalf("acquisition fields = %+v, want them carried over", wcfg)
	}
}

func TestWriterConfig_DefaultsWithoutCameraFile(t *testing.T) {
	cfg := Config{DatasetName: "data", UserID: 503, MaxFramesPerFile: 20000}
	wcfg, err := cfg.WriterConfig()
	if err != nil {
		t.Fatalf("WriterConfig returned error: %v", err)
	}
	want := pco.DefaultConfig()
	if wcfg.ConnectionAddress != want.ConnectionAddress || wcfg.FlaskAPIAddress != want.FlaskAPIAddress {
		t.Fatalf("endpoints = %+v, want built-in defaults", wcfg)
	}
	if wcfg.DatasetName != "data" {
		t.Fatalf("DatasetName = %q, want %q", wcfg.DatasetName, "data")
	}
}

func TestWriterConfig_UnknownCameraFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cameras.json")
	if err := os.WriteFile(path, []byte(`{
		"cameras": [{
			"name": "pco1",
			"connection_address": "tcp://10.10.1.26:8080",
			"flask_api_address": "http://xbl-daq-34:9901",
			"writer_api_address": "http://xbl-daq-34:9555"
		}]
	}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Config{CameraFile: path, Camera: "pco7"}
	if _, err := cfg.WriterConfig(); err == nil {
		t.Fatalf("WriterConfig returned nil error, want unknown camera error")
	}
}
