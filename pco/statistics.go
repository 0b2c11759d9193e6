package pco

import "fmt"

// Statistics is one statistics snapshot from the writer. While a run is
// active it comes from the writer process itself; after the run ends the
// flask service serves the final snapshot of the most recent run.
type Statistics struct {
	DatasetName     string  `json:"dataset_name"`
	DurationSec     float64 `json:"duration_sec"`
	EndTime         string  `json:"end_time"`
	FirstFrameID    int64   `json:"first_frame_id"`
	NFrames         int     `json:"n_frames"`
	NLostFrames     int     `json:"n_lost_frames"`
	NReceivedFrames int     `json:"n_received_frames"`
	NWrittenFrames  int     `json:"n_written_frames"`
	OutputFile      string  `json:"output_file"`
	StartTime       string  `json:"start_time"`
	Status          string  `json:"status"`
	Success         bool    `json:"success"`
	UserID          int     `json:"user_id"`
	WritingRate     float64 `json:"writing_rate"`
}

// Progress condenses a statistics snapshot into the three counters an
// operator watches during a run.
type Progress struct {
	Status    Status
	Requested int
	Received  int
	Written   int
}

// ReceivedRatio returns received/requested in [0, 1].
func (p Progress) ReceivedRatio() float64 {
	return ratio(p.Received, p.Requested)
}

// WrittenRatio returns written/requested in [0, 1].
func (p Progress) WrittenRatio() float64 {
	return ratio(p.Written, p.Requested)
}

// Done reports whether every requested frame has been written.
func (p Progress) Done() bool {
	return p.Requested > 0 && p.Written >= p.Requested
}

// Message renders the one-line progress report printed between polls.
// Percentages are included only when a frame count was requested.
func (p Progress) Message() string {
	if p.Requested > 0 {
		pcRcvd := float64(p.Received) / float64(p.Requested) * 100
		pcWrtn := float64(p.Written) / float64(p.Requested) * 100
		return fmt.Sprintf("Writer: %s, #received: %4d (%.1f%%), #written: %4d (%.1f%%)",
			p.Status, p.Received, pcRcvd, p.Written, pcWrtn)
	}
	return fmt.Sprintf("Writer: %s, #received: %4d, #written: %4d",
		p.Status, p.Received, p.Written)
}

func ratio(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	r := float64(part) / float64(whole)
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}
