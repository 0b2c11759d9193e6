package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/camdaq/pcoclient/internal/state"
	"github.com/camdaq/pcoclient/internal/tui"
	"github.com/camdaq/pcoclient/pco"
)

// WatchOptions configure the live watch screen.
type WatchOptions struct {
	Writer       *pco.Writer
	PollInterval time.Duration // zero uses the default cadence
	StayOpen     bool          // keep the screen up after the run ends
	Logger       *zap.Logger
}

// Watch boots the watch TUI and blocks until the context is cancelled, the
// user quits, or the observed run reaches a terminal state.
func Watch(ctx context.Context, opts WatchOptions) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	store := &state.Store{}

	// Populate the store before the first frame renders.
	refresh(ctx, store, opts.Writer, log)
	StartPoller(ctx, store, opts.Writer, interval, log)

	return tui.Run(tui.Options{
		Context:     ctx,
		Store:       store,
		ServiceName: opts.Writer.ServiceName(),
		Endpoint:    opts.Writer.Configuration().FlaskAPIAddress,
		PollTick:    interval,
		StayOpen:    opts.StayOpen,
	})
}
