// Package pco provides a client for the PCO camera-data writer service.
//
// # Overview
//
// This package drives one writer deployment: the long-lived flask service
// that starts writer processes, and the writer process itself that receives
// camera frames over ZMQ and persists them to hdf5 files. The client never
// touches frame data; it validates acquisition parameters, issues HTTP
// requests against a fixed route table, and polls status and statistics
// until the run is done.
//
// # Architecture
//
// The package is split by concern:
//
//   - client.go: Writer type, lifecycle and inspection operations
//   - api.go: resty transport against the two REST endpoints
//   - config.go / camconfig.go: acquisition parameters and camera files
//   - validate.go: field validators shared by every entry point
//   - status.go: lifecycle states and reconciliation helpers
//   - statistics.go: statistics snapshots and progress readings
//   - wait.go: blocking polling loops
//
// # Client Usage
//
// Build a Writer from a configuration and drive one acquisition:
//
//	cfg := pco.DefaultConfig()
//	cfg.OutputFile = "/data/run.h5"
//	cfg.DatasetName = "tomo1"
//	cfg.NFrames = 1000
//
//	w, err := pco.NewWriter(cfg, pco.WriterOptions{Logger: logger})
//	if err != nil {
//		log.Fatalf("failed to create writer client: %v", err)
//	}
//
//	if err := w.Start(ctx, pco.ConfirmOptions{}); err != nil {
//		log.Fatalf("start failed: %v", err)
//	}
//	if err := w.Wait(ctx, pco.WaitOptions{}); err != nil {
//		log.Printf("wait failed: %v", err)
//	}
//
// Multi-camera beamlines describe their deployments in a camera config
// file; NewWriterFromFile selects one entry by camera name.
//
// # Lifecycle Model
//
// A writer run moves through
//
//	unconfigured → configured → starting → receiving|writing →
//	stopping|killing → finished
//
// with error and unknown reachable from any in-flight state when a request
// fails. The client's status field mirrors the service but is not
// authoritative: Status reconciles the two on every call, preferring the
// remote view while a writer runs, except mid-stop/mid-kill where the
// locally held transitional state is kept until the writer obeys.
//
// # Error Handling
//
// Every error wraps one of four sentinels, classified with errors.Is:
//
//   - ErrInvalidConfiguration: a field failed its validator
//   - ErrConnectionUnavailable: transport failure reaching an endpoint
//   - ErrRemoteOperationFailed: well-formed but unsuccessful reply
//   - ErrCameraNotFound: camera config file lookup miss
//
// Transport failures are escalated rather than read as "not running"; the
// one exception is the statistics fetch, where an unreachable writer
// process is expected between runs and triggers the finished-run fallback.
//
// # Polling
//
// The service has no push API, so confirmation and waiting are timed polls:
// start/stop confirmation at 150ms for up to 10s (expiry is a warning, the
// command already succeeded), Wait and WaitFrames at 100ms. All loops stop
// cleanly when their context is cancelled and leave the remote writer
// untouched.
//
// # Concurrency
//
// A Writer is safe for concurrent use: lifecycle operations serialize
// against each other, inspection calls run at any time. Separate camera
// units get separate Writer instances; nothing is shared between them.
//
// # Network Assumptions
//
// The client assumes a trusted beamline network: plain HTTP, no
// authentication, 3-second request timeout. Constructing a Writer issues
// no traffic; probe reachability with IsConnected when a fail-fast check
// is wanted.
package pco
