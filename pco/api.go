package pco

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultRequestTimeout = 3 * time.Second

// envelope is the superset of the writer service reply fields. Each route
// fills in the subset it uses; Success is a pointer so its presence in the
// reply can be told apart from a literal false.
type envelope struct {
	Success *bool  `json:"success"`
	Status  string `json:"status"`
	Error   string `json:"error"`
	Log     string `json:"log"`
	Uptime  string `json:"uptime"`
}

// ok reports whether the reply carried "success": true.
func (e envelope) ok() bool {
	return e.Success != nil && *e.Success
}

// api issues requests against the two REST endpoints of one writer
// deployment: the long-lived flask service and the per-run writer process.
type api struct {
	flask  *resty.Client
	writer *resty.Client
	routes Routes
}

func newAPI(flaskAddr, writerAddr string, routes Routes, timeout time.Duration) *api {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &api{
		flask:  newRestClient(flaskAddr, timeout),
		writer: newRestClient(writerAddr, timeout),
		routes: routes,
	}
}

func newRestClient(base string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
}

// getJSON performs a GET and decodes the body into dest. Transport failures
// map to ErrConnectionUnavailable, HTTP error statuses to
// ErrRemoteOperationFailed, so callers can branch on the error kind with
// errors.Is instead of string matching.
func (a *api) getJSON(ctx context.Context, c *resty.Client, path string, dest any) error {
	resp, err := c.R().SetContext(ctx).Get(path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: GET %s: %v", ErrConnectionUnavailable, path, err)
	}
	return decodeJSON(resp, path, dest)
}

// postJSON performs a POST with a JSON body and decodes the reply into dest.
func (a *api) postJSON(ctx context.Context, c *resty.Client, path string, body, dest any) error {
	resp, err := c.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: POST %s: %v", ErrConnectionUnavailable, path, err)
	}
	return decodeJSON(resp, path, dest)
}

// decodeJSON is kept out of resty's automatic unmarshalling so that decode
// failures stay distinguishable from transport failures.
func decodeJSON(resp *resty.Response, path string, dest any) error {
	if resp.IsError() {
		return fmt.Errorf("%w: %s returned status %d", ErrRemoteOperationFailed,
			path, resp.StatusCode())
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), dest); err != nil {
		return fmt.Errorf("decode %s reply: %w", path, err)
	}
	return nil
}

// start submits the acquisition configuration to the flask service, which
// spawns a writer process for it.
func (a *api) start(ctx context.Context, body map[string]string) (envelope, error) {
	var env envelope
	err := a.postJSON(ctx, a.flask, a.routes.Start, body, &env)
	return env, err
}

// status fetches the writer status tracked by the flask service for the
// writer process bound to the given REST port.
func (a *api) status(ctx context.Context, writerPort string) (string, error) {
	var env envelope
	path := a.routes.Status + "/" + writerPort
	if err := a.getJSON(ctx, a.flask, path, &env); err != nil {
		return "", err
	}
	return env.Status, nil
}

// liveStatistics fetches statistics from the running writer process.
func (a *api) liveStatistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	if err := a.getJSON(ctx, a.writer, a.routes.Statistics, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// finishedStatistics fetches the final statistics of the most recent run
// from the flask service.
func (a *api) finishedStatistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	if err := a.getJSON(ctx, a.flask, a.routes.Finished, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// stop asks the running writer process to finish after the current frame.
func (a *api) stop(ctx context.Context) (envelope, error) {
	var env envelope
	err := a.getJSON(ctx, a.writer, a.routes.Stop, &env)
	return env, err
}

// kill terminates the running writer process immediately.
func (a *api) kill(ctx context.Context) (envelope, error) {
	var env envelope
	err := a.getJSON(ctx, a.writer, a.routes.Kill, &env)
	return env, err
}

// ack probes the flask service for liveness.
func (a *api) ack(ctx context.Context) (envelope, error) {
	var env envelope
	err := a.getJSON(ctx, a.flask, a.routes.Ack, &env)
	return env, err
}

// lastError fetches the last error recorded by the flask service together
// with the service's view of the writer status.
func (a *api) lastError(ctx context.Context) (envelope, error) {
	var env envelope
	err := a.getJSON(ctx, a.flask, a.routes.Error, &env)
	return env, err
}

// serverLog fetches the recent log lines of the named writer service unit.
func (a *api) serverLog(ctx context.Context, service string) (envelope, error) {
	var env envelope
	err := a.getJSON(ctx, a.flask, a.routes.ServerLog+"/"+service, &env)
	return env, err
}

// serverUptime fetches the uptime of the named writer service unit.
func (a *api) serverUptime(ctx context.Context, service string) (envelope, error) {
	var env envelope
	err := a.getJSON(ctx, a.flask, a.routes.ServerUptime+"/"+service, &env)
	return env, err
}
