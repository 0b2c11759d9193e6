package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/camdaq/pcoclient/internal/state"
	"github.com/camdaq/pcoclient/pco"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	maxBackoff          = 30 * time.Second
)

// writerSource is the slice of the pco client the poller reads from.
type writerSource interface {
	Status(ctx context.Context) (pco.Status, error)
	Statistics(ctx context.Context) (*pco.Statistics, error)
	LastRunID() int
}

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence, widening the interval while the service is unreachable.
// It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, writer writerSource, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	go func() {
		for {
			refresh(ctx, store, writer, log)

			delay := calculateBackoff(store.Snapshot().ConsecutiveFailures, interval)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, writer writerSource, log *zap.Logger) {
	status, err := writer.Status(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		store.Update(pco.StatusUnknown, nil, 0, err)
		log.Warn("status poll failed", zap.Error(err))
		return
	}

	stats, err := writer.Statistics(ctx)
	if err != nil {
		// No statistics exist before the first run; the status update
		// stands on its own.
		log.Debug("statistics poll failed", zap.Error(err))
		stats = nil
	}
	store.Update(status, stats, writer.LastRunID(), nil)
}

// calculateBackoff widens the poll interval while the service stays
// unreachable: base doubled per consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
