package pco

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func validTestConfig() Config {
	cfg := DefaultConfig()
	cfg.OutputFile = "/tmp/run.h5"
	cfg.DatasetName = "data"
	cfg.NFrames = 100
	return cfg
}

func TestConfigValidate_RequiresFullFieldSet(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	missingDataset := cfg
	missingDataset.DatasetName = ""
	if err := missingDataset.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("Validate without dataset = %v, want ErrInvalidConfiguration", err)
	}

	zeroMax := cfg
	zeroMax.MaxFramesPerFile = 0
	if err := zeroMax.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("Validate with max_frames_per_file=0 = %v, want ErrInvalidConfiguration", err)
	}

	badConn := cfg
	badConn.ConnectionAddress = "tcp://10.10.1.26:80"
	if err := badConn.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("Validate with short port = %v, want ErrInvalidConfiguration", err)
	}
}

func TestEnsurePlaceholder_InsertsWhenRunSpansFiles(t *testing.T) {
	cfg := validTestConfig()
	cfg.OutputFile = "/a/b.h5"
	cfg.NFrames = 20
	cfg.MaxFramesPerFile = 10
	cfg.ensurePlaceholder()
	if cfg.OutputFile != "/a/b_%03d.h5" {
		t.Fatalf("OutputFile = %q, want /a/b_%%03d.h5", cfg.OutputFile)
	}
}

func TestEnsurePlaceholder_LeavesSingleFileRunsAlone(t *testing.T) {
	cfg := validTestConfig()
	cfg.OutputFile = "/a/b.h5"
	cfg.NFrames = 5
	cfg.MaxFramesPerFile = 10
	cfg.ensurePlaceholder()
	if cfg.OutputFile != "/a/b.h5" {
		t.Fatalf("OutputFile = %q, want unchanged", cfg.OutputFile)
	}
}

func TestEnsurePlaceholder_KeepsExistingPlaceholder(t *testing.T) {
	cfg := validTestConfig()
	cfg.OutputFile = "/a/b_%02d.h5"
	cfg.NFrames = 20
	cfg.MaxFramesPerFile = 10
	cfg.ensurePlaceholder()
	if cfg.OutputFile != "/a/b_%02d.h5" {
		t.Fatalf("OutputFile = %q, want existing placeholder kept", cfg.OutputFile)
	}
}

func TestConfigApply_KeepsAssignmentsBeforeFirstInvalidField(t *testing.T) {
	cfg := validTestConfig()
	out := "/data/next.h5"
	empty := ""
	err := cfg.apply(Changes{OutputFile: &out, DatasetName: &empty})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("apply = %v, want ErrInvalidConfiguration", err)
	}
	if cfg.OutputFile != out {
		t.Fatalf("OutputFile = %q, want %q applied before the failure", cfg.OutputFile, out)
	}
	if cfg.DatasetName != "data" {
		t.Fatalf("DatasetName = %q, want untouched", cfg.DatasetName)
	}
}

func TestStartBody_UsesWireShape(t *testing.T) {
	cfg := validTestConfig()
	cfg.NFrames = 20
	body := cfg.startBody()

	want := map[string]string{
		"connection_address":  DefaultConnectionAddress,
		"output_file":         "/tmp/run.h5",
		"n_frames":            "20",
		"user_id":             "503",
		"dataset_name":        "data",
		"max_frames_per_file": "20000",
		"rest_api_port":       "9901",
		"n_modules":           "1",
		"writer_rest_port":    "9555",
		"flask_api_address":   DefaultFlaskAPIAddress,
	}
	if len(body) != len(want) {
		t.Fatalf("startBody has %d keys, want %d: %v", len(body), len(want), body)
	}
	for k, v := range want {
		if body[k] != v {
			t.Fatalf("startBody[%q] = %q, want %q", k, body[k], v)
		}
	}
}

func writeCameraFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cameras.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write camera file: %v", err)
	}
	return path
}

func TestLoadCameraFile_LooksUpCameraByName(t *testing.T) {
	path := writeCameraFile(t, `{
		"cameras": [
			{
				"name": "pco1",
				"connection_address": "tcp://10.10.1.26:8080",
				"flask_api_address": "http://xbl-daq-34:9901",
				"writer_api_address": "http://xbl-daq-34:9555"
			},
			{
				"name": "pco2",
				"connection_address": "tcp://10.10.1.27:8080",
				"flask_api_address": "http://xbl-daq-34:9902",
				"writer_api_address": "http://xbl-daq-34:9556"
			}
		]
	}`)

	file, err := LoadCameraFile(path)
	if err != nil {
		t.Fatalf("LoadCameraFile returned error: %v", err)
	}
	entry, err := file.Lookup("pco2")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if entry.FlaskAPIAddress != "http://xbl-daq-34:9902" {
		t.Fatalf("FlaskAPIAddress = %q, want pco2 endpoint", entry.FlaskAPIAddress)
	}

	cfg := entry.Config()
	if cfg.ConnectionAddress != "tcp://10.10.1.27:8080" {
		t.Fatalf("Config().ConnectionAddress = %q, want entry endpoint", cfg.ConnectionAddress)
	}
	if cfg.MaxFramesPerFile != DefaultMaxFramesPerFile {
		t.Fatalf("Config().MaxFramesPerFile = %d, want deployment default", cfg.MaxFramesPerFile)
	}

	if _, err := file.Lookup("pco9"); !errors.Is(err, ErrCameraNotFound) {
		t.Fatalf("Lookup(pco9) = %v, want ErrCameraNotFound", err)
	}
}

func TestLoadCameraFile_RejectsBadEntries(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"no cameras", `{"cameras": []}`},
		{"missing name", `{"cameras": [{"connection_address": "tcp://10.10.1.26:8080",
			"flask_api_address": "http://xbl-daq-34:9901",
			"writer_api_address": "http://xbl-daq-34:9555"}]}`},
		{"bad address", `{"cameras": [{"name": "pco1",
			"connection_address": "tcp://10.10.1.26:80",
			"flask_api_address": "http://xbl-daq-34:9901",
			"writer_api_address": "http://xbl-daq-34:9555"}]}`},
		{"not json", `cameras: pco1`},
	}
	for _, tc := range cases {
		path := writeCameraFile(t, tc.content)
		if _, err := LoadCameraFile(path); err == nil {
			t.Fatalf("%s: LoadCameraFile = nil error, want failure", tc.name)
		}
	}

	if _, err := LoadCameraFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("LoadCameraFile on missing file = nil error, want failure")
	}
}
