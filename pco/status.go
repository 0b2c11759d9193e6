package pco

// Status describes the writer lifecycle as seen by the client. The values
// mirror the status strings reported by the writer service itself so that a
// remote status can be stored without translation.
type Status string

const (
	// StatusUnconfigured means one or more configuration fields are missing
	// or invalid; Start refuses to run.
	StatusUnconfigured Status = "unconfigured"
	// StatusConfigured means the full field set passed validation and the
	// writer can be started.
	StatusConfigured Status = "configured"
	// StatusStarting is held between a successful start acknowledgement and
	// the first running status report from the writer.
	StatusStarting Status = "starting"
	// StatusReceiving and StatusWriting are reported by a running writer
	// process: frames are arriving, respectively being flushed to file.
	StatusReceiving Status = "receiving"
	StatusWriting   Status = "writing"
	// StatusStopping and StatusKilling are held locally while a stop or kill
	// request is in flight, so that Status does not flap back to a live
	// value read from a writer that has not yet acted on the request.
	StatusStopping Status = "stopping"
	StatusKilling  Status = "killing"
	// StatusFinished is the terminal state of a completed run.
	StatusFinished Status = "finished"
	// StatusUnknown covers a writer that has never run or whose state cannot
	// be determined; StatusError is reported by the service after a failure.
	StatusUnknown Status = "unknown"
	StatusError   Status = "error"
)

// Running reports whether s is one of the two live acquisition states.
func (s Status) Running() bool {
	return s == StatusReceiving || s == StatusWriting
}

// transitional reports whether s is a locally held stop/kill state that must
// not be overwritten by remote reads until the writer actually halts.
func (s Status) transitional() bool {
	return s == StatusStopping || s == StatusKilling
}

// statusFromWire maps a status string reported by the service onto a Status,
// collapsing anything unrecognized to StatusUnknown.
func statusFromWire(s string) Status {
	switch st := Status(s); st {
	case StatusUnconfigured, StatusConfigured, StatusStarting,
		StatusReceiving, StatusWriting, StatusStopping, StatusKilling,
		StatusFinished, StatusError:
		return st
	}
	return StatusUnknown
}
