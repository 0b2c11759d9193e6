// Package app wires the watch screen together.
//
// # Overview
//
// This package is the composition root for pcoctl watch: it connects the
// pco client, the shared state store, the background poller, and the TUI.
// Everything else in the command layer talks to the pco client directly;
// only watch needs this orchestration.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Watch()    │
//	└──────┬───────┘
//	       │
//	       ├─────> state.Store{}   shared snapshot container
//	       ├─────> refresh()       populate before first frame
//	       ├─────> StartPoller()   launch background updates
//	       └─────> tui.Run()       render until quit (blocks)
//
//	Background poller loop:
//	┌─────────────────────────────────────────┐
//	│ StartPoller() goroutine                 │
//	│  ├─> Writer.Status()                    │
//	│  ├─> Writer.Statistics()                │
//	│  └─> store.Update()                     │
//	│      └─> TUI reads store.Snapshot()     │
//	└─────────────────────────────────────────┘
//
// # Polling Behavior
//
// The poller runs at a fixed cadence (default 500ms). Statistics are
// fetched best-effort: before the first run the writer has none to offer,
// and the status update is published alone. Status failures are recorded
// in the store so the TUI can surface them, and the poll interval backs
// off exponentially (capped at 30s) while the service stays unreachable,
// so a dead beamline host is not hammered twice a second all night.
//
// # Error Handling
//
// Watch itself fails only when the TUI cannot start. Poll failures are
// recoverable: they are logged, counted in the store, and retried. The
// TUI shows an unreachable banner after two consecutive failures and
// recovers silently when the service answers again.
package app
