package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/camdaq/pcoclient/pco"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	stats := &pco.Statistics{NFrames: 100, NReceivedFrames: 40, NWrittenFrames: 30}

	before := time.Now()
	s.Update(pco.StatusReceiving, stats, 2, nil)

	snap := s.Snapshot()
	if snap.Status != pco.StatusReceiving || snap.RunID != 2 {
		t.Fatalf("snapshot = %#v, want receiving run 2", snap)
	}
	if snap.Stats == nil || snap.Stats.NWrittenFrames != 30 {
		t.Fatalf("snapshot stats = %#v, want 30 written", snap.Stats)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Stats.NWrittenFrames = 999
	snap2 := s.Snapshot()
	if snap2.Stats.NWrittenFrames != 30 {
		t.Fatalf("Snapshot should clone stats; got %d want 30", snap2.Stats.NWrittenFrames)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(pco.StatusWriting, &pco.Statistics{NWrittenFrames: 12}, 1, nil)
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.Update(pco.StatusUnknown, nil, 0, origErr)

	snap := s.Snapshot()
	if snap.Status != prev.Status || snap.RunID != prev.RunID {
		t.Fatalf("status changed on error: got %v/%d want %v/%d",
			snap.Status, snap.RunID, prev.Status, prev.RunID)
	}
	if snap.Stats == nil || snap.Stats.NWrittenFrames != 12 {
		t.Fatalf("stats changed on error: got %#v", snap.Stats)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("fresh store = %d failures offline=%v, want 0/false",
			snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(pco.StatusUnknown, nil, 0, errors.New("fail 1"))
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after one failure = %d offline=%v, want 1/false",
			snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(pco.StatusUnknown, nil, 0, errors.New("fail 2"))
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after two failures = %d offline=%v, want 2/true",
			snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(pco.StatusReceiving, nil, 1, nil)
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success = %d offline=%v, want 0/false",
			snap.ConsecutiveFailures, snap.IsOffline())
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want cleared after success", snap.LastError)
	}
}

func TestSnapshot_ProgressUsesReconciledStatus(t *testing.T) {
	snap := Snapshot{
		Status: pco.StatusStopping,
		Stats:  &pco.Statistics{NFrames: 50, NReceivedFrames: 20, NWrittenFrames: 10, Status: "receiving"},
	}
	p := snap.Progress()
	if p.Status != pco.StatusStopping {
		t.Fatalf("Progress status = %q, want the snapshot status", p.Status)
	}
	if p.Requested != 50 || p.Received != 20 || p.Written != 10 {
		t.Fatalf("Progress = %+v, want counters from stats", p)
	}

	empty := Snapshot{Status: pco.StatusUnconfigured}
	if p := empty.Progress(); p.Requested != 0 || p.Status != pco.StatusUnconfigured {
		t.Fatalf("Progress = %+v, want zero counters without stats", p)
	}
}
