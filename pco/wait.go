package pco

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultWaitInterval = 100 * time.Millisecond

// WaitOptions configures the blocking wait loops.
type WaitOptions struct {
	// OnProgress, when set, is called with a fresh progress reading on each
	// poll. Polls where no statistics could be fetched are skipped.
	OnProgress func(Progress)

	// PollInterval between reads. Zero means 100ms.
	PollInterval time.Duration
}

// Wait blocks until the writer process is no longer running. Cancelling the
// context stops waiting and leaves the remote writer untouched; it is not
// reported as an error. Transport failures while polling are escalated.
func (w *Writer) Wait(ctx context.Context, opts WaitOptions) error {
	running, err := w.IsRunning(ctx)
	if err != nil {
		return err
	}
	if !running {
		w.log.Info("writer is not running, nothing to wait for")
		return nil
	}
	if opts.OnProgress != nil {
		if p, err := w.Progress(ctx); err == nil {
			opts.OnProgress(p)
		}
	}

	ticker := time.NewTicker(waitInterval(opts))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		running, err := w.IsRunning(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !running {
			_, err := w.Status(ctx)
			return err
		}
		if opts.OnProgress != nil {
			if p, err := w.Progress(ctx); err == nil {
				opts.OnProgress(p)
			}
		}
	}
}

// WaitFrames blocks until the writer has written target frames to file. It
// returns true once the target is reached. With a positive
// inactivityTimeout it gives up after that much time passes without the
// written-frame counter increasing and returns false; a non-positive value
// waits indefinitely. Cancelling the context stops waiting and reports
// whether the target had been reached by then.
//
// Statistics reads that fail are treated as "no update": the inactivity
// window, not the individual read, decides when to give up.
func (w *Writer) WaitFrames(ctx context.Context, target int, inactivityTimeout time.Duration, opts WaitOptions) (bool, error) {
	running, err := w.IsRunning(ctx)
	if err != nil {
		return false, err
	}
	if !running {
		w.log.Info("writer is not running, nothing to wait for")
		return false, nil
	}

	written := 0
	if p, err := w.Progress(ctx); err == nil {
		written = p.Written
		if opts.OnProgress != nil {
			opts.OnProgress(p)
		}
	}
	lastChange := time.Now()

	ticker := time.NewTicker(waitInterval(opts))
	defer ticker.Stop()
	for written < target {
		select {
		case <-ctx.Done():
			return written >= target, nil
		case <-ticker.C:
		}

		p, err := w.Progress(ctx)
		if err != nil {
			w.log.Debug("progress read failed while waiting for frames", zap.Error(err))
		} else {
			if p.Written > written {
				written = p.Written
				lastChange = time.Now()
			}
			if opts.OnProgress != nil {
				opts.OnProgress(p)
			}
		}

		if inactivityTimeout > 0 && time.Since(lastChange) > inactivityTimeout {
			w.log.Warn("writer did not receive all requested frames, giving up",
				zap.Int("written", written),
				zap.Int("target", target),
				zap.Duration("inactivity_timeout", inactivityTimeout))
			return false, nil
		}
	}

	if _, err := w.Status(ctx); err != nil {
		return true, err
	}
	return true, nil
}

func waitInterval(opts WaitOptions) time.Duration {
	if opts.PollInterval > 0 {
		return opts.PollInterval
	}
	return defaultWaitInterval
}
