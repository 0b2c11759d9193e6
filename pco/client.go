package pco

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/camdaq/pcoclient/stream"
)

const (
	defaultConfirmTimeout  = 10 * time.Second
	defaultConfirmInterval = 150 * time.Millisecond

	// DefaultFlushTimeout is the idle window used when flushing the camera
	// stream between runs.
	DefaultFlushTimeout = 500 * time.Millisecond

	// Reset drains with a longer window so slow trickle-in of stale
	// messages after a kill still gets swept up.
	resetFlushTimeout = time.Second
)

// Drainer consumes buffered messages from the camera data stream. The
// stream package provides the production implementation; tests substitute
// their own.
type Drainer interface {
	Drain(ctx context.Context, endpoint string, idleTimeout time.Duration) (int, error)
}

var _ Drainer = (*stream.Drainer)(nil)

// WriterOptions tunes a Writer. The zero value selects working defaults.
type WriterOptions struct {
	// Logger receives warnings and debug output. Nil means no logging.
	Logger *zap.Logger

	// Routes overrides the writer service path table.
	Routes *Routes

	// Drainer handles FlushStream and the drain step of Reset. Nil selects
	// the ZMQ drainer from the stream package.
	Drainer Drainer

	// ServiceName is the systemd unit name used for server log and uptime
	// lookups. Empty derives the name from the flask endpoint port.
	ServiceName string

	// RequestTimeout bounds each REST request. Zero means 3s.
	RequestTimeout time.Duration

	// ConfirmInterval is the poll cadence while confirming start and stop
	// transitions. Zero means 150ms.
	ConfirmInterval time.Duration
}

// ConfirmOptions controls the confirmation poll that follows a lifecycle
// command. The zero value waits up to 10s for the writer to reach the
// expected state.
type ConfirmOptions struct {
	// Skip returns immediately after the command is acknowledged.
	Skip bool
	// Timeout bounds the confirmation poll. Zero means 10s. Expiry is a
	// warning, not an error: the command itself already succeeded.
	Timeout time.Duration
}

// Writer drives one remote PCO writer deployment. It keeps a local view of
// the writer status that mirrors, but never overrules, the service; see
// Status for how the two are reconciled.
//
// A Writer is safe for concurrent use. Lifecycle operations (Configure,
// Start, Stop, Kill, Reset, FlushStream) are serialized against each other;
// inspection calls run at any time.
type Writer struct {
	api         *api
	log         *zap.Logger
	drainer     Drainer
	serviceName string
	writerPort  string

	confirmInterval time.Duration

	opMu sync.Mutex // serializes lifecycle operations

	mu        sync.Mutex // guards the fields below
	cfg       Config
	status    Status
	lastRunID int
	prevStats *Statistics
}

// NewWriter builds a Writer bound to the endpoints in cfg. The three
// addresses are required and must be well-formed; acquisition fields may be
// left empty and supplied later through Configure. No network traffic is
// issued here: reachability is checked on first use, or explicitly with
// IsConnected.
func NewWriter(cfg Config, opts WriterOptions) (*Writer, error) {
	if _, err := ValidateNetworkAddress(cfg.ConnectionAddress, "tcp"); err != nil {
		return nil, fmt.Errorf("connection_address: %w", err)
	}
	if _, err := ValidateNetworkAddress(cfg.FlaskAPIAddress, "http"); err != nil {
		return nil, fmt.Errorf("flask_api_address: %w", err)
	}
	if _, err := ValidateNetworkAddress(cfg.WriterAPIAddress, "http"); err != nil {
		return nil, fmt.Errorf("writer_api_address: %w", err)
	}
	if cfg.OutputFile != "" {
		expanded, err := ValidateOutputFile(cfg.OutputFile)
		if err != nil {
			return nil, err
		}
		cfg.OutputFile = expanded
	}
	if cfg.DatasetName != "" {
		if _, err := ValidateDatasetName(cfg.DatasetName); err != nil {
			return nil, err
		}
	}
	if cfg.NFrames < 0 {
		return nil, fmt.Errorf("%w: n_frames must be non-negative, got %d",
			ErrInvalidConfiguration, cfg.NFrames)
	}
	if cfg.UserID < 0 {
		return nil, fmt.Errorf("%w: user_id must be non-negative, got %d",
			ErrInvalidConfiguration, cfg.UserID)
	}
	if cfg.MaxFramesPerFile < 0 {
		return nil, fmt.Errorf("%w: max_frames_per_file must be non-negative, got %d",
			ErrInvalidConfiguration, cfg.MaxFramesPerFile)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	routes := DefaultRoutes()
	if opts.Routes != nil {
		routes = *opts.Routes
	}
	drainer := opts.Drainer
	if drainer == nil {
		drainer = &stream.Drainer{Logger: log}
	}
	name := opts.ServiceName
	if name == "" {
		name = deriveServiceName(cfg.FlaskAPIAddress)
	}
	interval := opts.ConfirmInterval
	if interval <= 0 {
		interval = defaultConfirmInterval
	}

	w := &Writer{
		api:             newAPI(cfg.FlaskAPIAddress, cfg.WriterAPIAddress, routes, opts.RequestTimeout),
		log:             log,
		drainer:         drainer,
		serviceName:     name,
		writerPort:      addressPort(cfg.WriterAPIAddress),
		confirmInterval: interval,
		cfg:             cfg,
		status:          StatusUnconfigured,
	}
	if w.cfg.Validate() == nil {
		w.cfg.ensurePlaceholder()
		w.status = StatusConfigured
	}
	return w, nil
}

// NewWriterFromFile builds a Writer for the named camera from a camera
// config file. Acquisition fields start empty; configure them before Start.
func NewWriterFromFile(path, camera string, opts WriterOptions) (*Writer, error) {
	file, err := LoadCameraFile(path)
	if err != nil {
		return nil, err
	}
	entry, err := file.Lookup(camera)
	if err != nil {
		return nil, err
	}
	return NewWriter(entry.Config(), opts)
}

// deriveServiceName maps the flask endpoint port onto the systemd unit of
// the deployment: port 9901 serves camera 1, everything else camera 2.
func deriveServiceName(flaskAddr string) string {
	if addressPort(flaskAddr) == "9901" {
		return "pco_writer-pco1"
	}
	return "pco_writer-pco2"
}

// ServiceName returns the systemd unit name used for log and uptime
// lookups.
func (w *Writer) ServiceName() string {
	return w.serviceName
}

// Configuration returns a copy of the current acquisition configuration.
func (w *Writer) Configuration() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// LastRunID returns the run counter, zero until the first acknowledged
// start.
func (w *Writer) LastRunID() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastRunID
}

// PreviousStatistics returns the cached snapshot of the most recent
// finished run, or nil when none has been fetched yet.
func (w *Writer) PreviousStatistics() *Statistics {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.prevStats == nil {
		return nil
	}
	cp := *w.prevStats
	return &cp
}

// Configure applies the supplied fields to the acquisition configuration.
// While a writer process is running the update is rejected and the previous
// configuration is returned unchanged. Fields are validated and assigned in
// a fixed order; the first invalid field aborts with the assignments made
// so far kept, so a single bad parameter can be corrected with a follow-up
// call. After a successful update the status becomes configured exactly
// when the full field set validates, unconfigured otherwise.
func (w *Writer) Configure(ctx context.Context, ch Changes) (Config, error) {
	w.opMu.Lock()
	defer w.opMu.Unlock()

	running, err := w.IsRunning(ctx)
	if err != nil {
		return w.Configuration(), err
	}
	if running {
		w.log.Warn("configuration unchanged: writer process is running, stop it first")
		return w.Configuration(), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.cfg.apply(ch); err != nil {
		return w.cfg, err
	}
	if w.cfg.Validate() == nil {
		w.cfg.ensurePlaceholder()
		w.status = StatusConfigured
	} else {
		w.status = StatusUnconfigured
	}
	return w.cfg, nil
}

// Start submits the current configuration to the writer service, which
// spawns a writer process for the acquisition. It fails before any network
// call when the configuration is invalid, and is a warning no-op when a
// writer already runs. On acknowledged success the run counter increments
// and, unless confirm.Skip is set, Start polls until the writer reports
// running or the confirmation window expires.
func (w *Writer) Start(ctx context.Context, confirm ConfirmOptions) error {
	w.opMu.Lock()
	defer w.opMu.Unlock()

	w.mu.Lock()
	if err := w.cfg.Validate(); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("writer is not properly configured, configure it before start: %w", err)
	}
	body := w.cfg.startBody()
	w.mu.Unlock()

	running, err := w.IsRunning(ctx)
	if err != nil {
		return err
	}
	if running {
		w.log.Warn("start skipped: a writer process is already running")
		return nil
	}

	w.setStatus(StatusStarting)
	env, err := w.api.start(ctx, body)
	if err != nil {
		w.setStatus(StatusError)
		return err
	}
	if !env.ok() {
		w.setStatus(StatusError)
		return fmt.Errorf("%w: start rejected: %s", ErrRemoteOperationFailed, env.Error)
	}

	w.mu.Lock()
	w.lastRunID++
	w.mu.Unlock()
	w.log.Debug("start acknowledged", zap.Int("run_id", w.LastRunID()))

	if !confirm.Skip {
		if _, err := w.confirmState(ctx, true, confirm.Timeout); err != nil {
			return err
		}
	}
	_, err = w.Status(ctx)
	return err
}

// Stop asks the running writer process to finish after the current frame.
// It is a warning no-op when no writer runs. Unless confirm.Skip is set it
// polls until the writer reports stopped or the confirmation window
// expires; once the writer is confirmed stopped the local status adopts the
// service's terminal view of the run.
func (w *Writer) Stop(ctx context.Context, confirm ConfirmOptions) error {
	w.opMu.Lock()
	defer w.opMu.Unlock()

	running, err := w.IsRunning(ctx)
	if err != nil {
		return err
	}
	if !running {
		w.log.Warn("stop skipped: no writer process is running")
		return nil
	}

	w.setStatus(StatusStopping)
	env, err := w.api.stop(ctx)
	if err != nil {
		w.setStatus(StatusError)
		return err
	}
	if !env.ok() {
		w.setStatus(StatusError)
		return fmt.Errorf("%w: stop rejected: %s", ErrRemoteOperationFailed, env.Error)
	}

	if confirm.Skip {
		return nil
	}
	stopped, err := w.confirmState(ctx, false, confirm.Timeout)
	if err != nil {
		return err
	}
	if stopped {
		w.resolveStopped(ctx)
	}
	return nil
}

// Kill terminates the running writer process immediately, discarding the
// acquisition. It is a warning no-op when no writer runs. An acknowledged
// kill marks the client unconfigured: the acquisition parameters must be
// confirmed again before the next run.
func (w *Writer) Kill(ctx context.Context, confirm ConfirmOptions) error {
	w.opMu.Lock()
	defer w.opMu.Unlock()
	return w.kill(ctx, confirm)
}

func (w *Writer) kill(ctx context.Context, confirm ConfirmOptions) error {
	running, err := w.IsRunning(ctx)
	if err != nil {
		return err
	}
	if !running {
		w.log.Warn("kill skipped: no writer process is running")
		return nil
	}

	w.setStatus(StatusKilling)
	env, err := w.api.kill(ctx)
	if err != nil {
		w.setStatus(StatusError)
		return err
	}
	if env.Status != "killed" {
		w.setStatus(StatusError)
		return fmt.Errorf("%w: kill not acknowledged, got status %q",
			ErrRemoteOperationFailed, env.Status)
	}

	if !confirm.Skip {
		if _, err := w.confirmState(ctx, false, confirm.Timeout); err != nil {
			return err
		}
	}
	w.setStatus(StatusUnconfigured)
	return nil
}

// Reset returns the client to a clean pre-run state: it kills any running
// writer, drains residual messages off the camera stream, clears the run
// counter and cached statistics, and recomputes the status from the current
// configuration validity.
func (w *Writer) Reset(ctx context.Context) (Status, error) {
	w.opMu.Lock()
	defer w.opMu.Unlock()

	if err := w.kill(ctx, ConfirmOptions{}); err != nil {
		return StatusUnknown, err
	}
	if _, err := w.flush(ctx, resetFlushTimeout); err != nil {
		return StatusUnknown, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastRunID = 0
	w.prevStats = nil
	if w.cfg.Validate() == nil {
		w.status = StatusConfigured
	} else {
		w.status = StatusUnconfigured
	}
	return w.status, nil
}

// FlushStream drains buffered messages off the camera stream and returns
// how many were discarded. The drain ends once the stream stays quiet for
// idleTimeout (non-positive waits until ctx is cancelled). While a writer
// process runs this is a warning no-op: draining would steal frames from
// the acquisition.
func (w *Writer) FlushStream(ctx context.Context, idleTimeout time.Duration) (int, error) {
	w.opMu.Lock()
	defer w.opMu.Unlock()
	return w.flush(ctx, idleTimeout)
}

func (w *Writer) flush(ctx context.Context, idleTimeout time.Duration) (int, error) {
	running, err := w.IsRunning(ctx)
	if err != nil {
		return 0, err
	}
	if running {
		w.log.Warn("flush skipped: writer process is running and owns the stream")
		return 0, nil
	}
	w.mu.Lock()
	endpoint := w.cfg.ConnectionAddress
	w.mu.Unlock()
	return w.drainer.Drain(ctx, endpoint, idleTimeout)
}

// IsRunning reports whether a writer process is currently running. A
// transport failure is escalated as ErrConnectionUnavailable rather than
// reported as "not running": the two are different answers.
func (w *Writer) IsRunning(ctx context.Context) (bool, error) {
	remote, err := w.remoteStatus(ctx)
	if err != nil {
		return false, err
	}
	return remote.Running(), nil
}

// IsConnected reports whether the writer service answers its liveness
// probe. Unreachable and unresponsive both count as not connected.
func (w *Writer) IsConnected(ctx context.Context) bool {
	env, err := w.api.ack(ctx)
	return err == nil && env.Success != nil
}

// Status reconciles the local status with the service's view and returns
// the result. While the writer runs the remote status wins, except
// mid-stop/mid-kill where the locally held transitional status is kept so
// the reading does not flap back to "receiving" before the writer obeys.
// When nothing runs the last locally known status is returned, after
// resolving a stale local running state against the service.
func (w *Writer) Status(ctx context.Context) (Status, error) {
	remote, err := w.remoteStatus(ctx)
	if err != nil {
		return StatusUnknown, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case remote.Running() && w.status.transitional():
		// keep stopping/killing until the writer actually obeys
	case remote.Running():
		w.status = remote
	case w.status.Running():
		w.status = remote
	}
	return w.status, nil
}

// StatusLastRun returns the terminal status the service recorded for the
// most recent run, "unknown" when no run has happened yet.
func (w *Writer) StatusLastRun(ctx context.Context) (Status, error) {
	stats, err := w.api.finishedStatistics(ctx)
	if err != nil {
		return StatusUnknown, err
	}
	return statusFromWire(stats.Status), nil
}

// Statistics returns the current statistics snapshot. It asks the writer
// process first; when that endpoint is unreachable (expected between runs)
// it falls back to the service's record of the last finished run and caches
// it as the previous-run snapshot. HTTP errors and malformed replies are
// escalated, not treated as "no statistics".
func (w *Writer) Statistics(ctx context.Context) (*Statistics, error) {
	stats, err := w.api.liveStatistics(ctx)
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, ErrConnectionUnavailable) {
		return nil, err
	}

	stats, err = w.api.finishedStatistics(ctx)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.prevStats = stats
	w.mu.Unlock()
	return stats, nil
}

// WrittenFrames returns the number of frames written to file, by the
// running writer process if there is one, otherwise by the last finished
// run.
func (w *Writer) WrittenFrames(ctx context.Context) (int, error) {
	stats, err := w.Statistics(ctx)
	if err != nil {
		return 0, err
	}
	return stats.NWrittenFrames, nil
}

// Progress condenses the current statistics into the frame counters an
// operator watches during a run.
func (w *Writer) Progress(ctx context.Context) (Progress, error) {
	stats, err := w.Statistics(ctx)
	if err != nil {
		return Progress{}, err
	}
	return Progress{
		Status:    statusFromWire(stats.Status),
		Requested: stats.NFrames,
		Received:  stats.NReceivedFrames,
		Written:   stats.NWrittenFrames,
	}, nil
}

// ServerError returns the last error recorded by the writer service. The
// reply also carries the service's view of the writer status, which is
// adopted locally.
func (w *Writer) ServerError(ctx context.Context) (string, error) {
	env, err := w.api.lastError(ctx)
	if err != nil {
		return "", err
	}
	if env.Status != "" {
		w.setStatus(statusFromWire(env.Status))
	}
	return env.Error, nil
}

// ServerLog returns the recent log lines of the writer service unit.
func (w *Writer) ServerLog(ctx context.Context) (string, error) {
	env, err := w.api.serverLog(ctx, w.serviceName)
	if err != nil {
		return "", err
	}
	return env.Log, nil
}

// ServerUptime returns the uptime string of the writer service unit.
func (w *Writer) ServerUptime(ctx context.Context) (string, error) {
	env, err := w.api.serverUptime(ctx, w.serviceName)
	if err != nil {
		return "", err
	}
	return env.Uptime, nil
}

func (w *Writer) remoteStatus(ctx context.Context) (Status, error) {
	raw, err := w.api.status(ctx, w.writerPort)
	if err != nil {
		return StatusUnknown, err
	}
	return statusFromWire(raw), nil
}

func (w *Writer) setStatus(s Status) {
	w.mu.Lock()
	w.status = s
	w.mu.Unlock()
}

// confirmState polls until the writer's running state matches want. Expiry
// of the confirmation window is logged and reported as reached=false, not
// as an error; transport failures and cancellation abort the poll.
func (w *Writer) confirmState(ctx context.Context, want bool, timeout time.Duration) (bool, error) {
	if timeout <= 0 {
		timeout = defaultConfirmTimeout
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(w.confirmInterval)
	defer ticker.Stop()
	for {
		running, err := w.IsRunning(ctx)
		if err != nil {
			return false, err
		}
		if running == want {
			return true, nil
		}
		if time.Now().After(deadline) {
			w.log.Warn("writer did not confirm the state change in time",
				zap.Bool("want_running", want),
				zap.Duration("timeout", timeout))
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}

// resolveStopped replaces the transitional stopping status with the
// service's terminal view of the run once the writer is confirmed stopped.
func (w *Writer) resolveStopped(ctx context.Context) {
	remote, err := w.remoteStatus(ctx)
	if err != nil || remote.Running() {
		return
	}
	w.setStatus(remote)
}
