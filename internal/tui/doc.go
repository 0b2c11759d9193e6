// Package tui implements the pcoctl watch screen.
//
// # Overview
//
// The watch screen is a single-page Bubble Tea program that renders the
// writer state the background poller publishes into state.Store: a status
// badge, frame progress bars for bounded runs, and the statistics of the
// current or last run. It issues no requests of its own; the poller owns
// all network traffic.
//
// # Update Loop
//
//	tickMsg ──> fetchSnapshotCmd ──> snapshotMsg ──> re-render
//	   ▲                                                │
//	   └──────────────── tickCmd(pollTick) <────────────┘
//
// The screen refreshes at the poller's cadence (default 500ms). A spinner
// runs while the writer is in a live or transitional state.
//
// # Exit Conditions
//
// The program quits when the user presses q, esc or ctrl+c, when the
// context is cancelled, or, unless StayOpen is set, once a run it watched
// go live settles in a terminal state. Transitional stopping and killing
// states keep the screen up until the writer obeys.
//
// # Offline Handling
//
// Poll failures never blank the screen. The last known run state stays up,
// and after two consecutive failures an unreachable banner is shown until
// the service answers again.
package tui
