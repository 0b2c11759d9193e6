package stream

import (
	"context"
	"fmt"
	"syscall"
	"time"

	zmq "github.com/pebbe/zmq4"
	"go.uber.org/zap"
)

const (
	// DefaultIdleTimeout is the idle window after which a drain gives up
	// waiting for further messages.
	DefaultIdleTimeout = 500 * time.Millisecond

	defaultPollSlice = 100 * time.Millisecond
)

// Drainer consumes and discards messages from a stream endpoint. The zero
// value is ready to use.
type Drainer struct {
	// PollSlice bounds how long a single poll blocks, and with it how
	// quickly a cancelled context is noticed. Zero means 100ms.
	PollSlice time.Duration

	// OnMessage, when set, is called with the index and payload of every
	// consumed message. The payload must not be retained.
	OnMessage func(index int, payload []byte)

	// Logger reports drain results. Nil disables logging.
	Logger *zap.Logger
}

// Drain connects a PULL socket to endpoint and consumes messages until the
// stream stays quiet for idleTimeout, or until ctx is cancelled. A
// non-positive idleTimeout disables the idle check and the drain runs until
// cancelled. It returns the number of consumed messages; cancellation is not
// an error.
func (d *Drainer) Drain(ctx context.Context, endpoint string, idleTimeout time.Duration) (int, error) {
	sock, err := zmq.NewSocket(zmq.PULL)
	if err != nil {
		return 0, fmt.Errorf("create pull socket: %w", err)
	}
	defer func() { _ = sock.Close() }()
	if err := sock.SetLinger(0); err != nil {
		return 0, fmt.Errorf("set linger: %w", err)
	}
	if err := sock.Connect(endpoint); err != nil {
		return 0, fmt.Errorf("connect %s: %w", endpoint, err)
	}

	slice := d.PollSlice
	if slice <= 0 {
		slice = defaultPollSlice
	}
	if idleTimeout > 0 && idleTimeout < slice {
		slice = idleTimeout
	}

	poller := zmq.NewPoller()
	poller.Add(sock, zmq.POLLIN)

	count := 0
	quietSince := time.Now()
	for {
		select {
		case <-ctx.Done():
			d.report(endpoint, count)
			return count, nil
		default:
		}

		polled, err := poller.Poll(slice)
		if err != nil {
			if zmq.AsErrno(err) == zmq.Errno(syscall.EINTR) {
				continue
			}
			return count, fmt.Errorf("poll %s: %w", endpoint, err)
		}
		if len(polled) == 0 {
			if idleTimeout > 0 && time.Since(quietSince) >= idleTimeout {
				d.report(endpoint, count)
				return count, nil
			}
			continue
		}

		payload, err := sock.RecvBytes(0)
		if err != nil {
			if zmq.AsErrno(err) == zmq.Errno(syscall.EINTR) {
				continue
			}
			return count, fmt.Errorf("recv %s: %w", endpoint, err)
		}
		if d.OnMessage != nil {
			d.OnMessage(count, payload)
		}
		count++
		quietSince = time.Now()
	}
}

func (d *Drainer) report(endpoint string, count int) {
	if d.Logger == nil {
		return
	}
	d.Logger.Debug("stream drained",
		zap.String("endpoint", endpoint),
		zap.Int("messages", count))
}
