package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/camdaq/pcoclient/pco"
)

// Snapshot is the latest view of the writer available to the UI.
type Snapshot struct {
	Status              pco.Status
	Stats               *pco.Statistics
	RunID               int
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // consecutive poll failures
}

// IsOffline returns true when the writer service has been unreachable for
// multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Progress condenses the snapshot into frame counters, using the reconciled
// status rather than the raw one the statistics carry.
func (s Snapshot) Progress() pco.Progress {
	p := pco.Progress{Status: s.Status}
	if s.Stats != nil {
		p.Requested = s.Stats.NFrames
		p.Received = s.Stats.NReceivedFrames
		p.Written = s.Stats.NWrittenFrames
	}
	return p
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot. When err is non-nil the previous data
// is kept but the error is recorded for visibility.
func (s *Store) Update(status pco.Status, stats *pco.Statistics, runID int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Status = status
	s.snapshot.Stats = cloneStats(stats)
	s.snapshot.RunID = runID
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Stats = cloneStats(s.snapshot.Stats)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneStats(stats *pco.Statistics) *pco.Statistics {
	if stats == nil {
		return nil
	}
	dup := *stats
	return &dup
}
