// Package state provides thread-safe state sharing for pcoctl.
//
// # Overview
//
// This package implements a simple but thread-safe store that carries the
// latest writer status and statistics from the background poller to the
// watch UI. It is the coordination point where polling updates meet
// rendering.
//
// # Architecture
//
// The package follows a producer-consumer pattern:
//
//	Producer (Poller):             Consumer (UI):
//	┌────────────────┐            ┌────────────────┐
//	│ Status()       │            │                │
//	│ Statistics()   │──Update──→│  Snapshot()    │
//	└────────────────┘            └────────────────┘
//
// The poller calls Update on every cycle; the UI calls Snapshot on every
// frame. Neither side blocks the other beyond the short critical section.
//
// # Failure Semantics
//
// A poll failure does not wipe the snapshot. The previous status and
// statistics are kept so the UI keeps showing the last known run state,
// the error is recorded in LastError, and ConsecutiveFailures counts up.
// IsOffline reports true after two consecutive failures; a single missed
// poll during a writer restart should not flip the UI into an offline
// banner.
//
// # Copy Semantics
//
// Snapshot returns an independent copy: the statistics are cloned and the
// error is wrapped, so a consumer can hold a snapshot across frames without
// racing the poller.
package state
