package recorder

import (
	"time"

	"PSXPipeline/internal/model"
)

// RunSummary holds the outcome of one ticker synchronization run.
type RunSummary struct {
	RunTime      time.Time
	Source       string // fetcher name: "psx" or "mock"
	TickerCount  int
	Added        int
	Removed      int
	Renamed      int
	Conflicts    int
	SnapshotPath string
	Duration     time.Duration
}

// Recorder persists run history for later analysis. Implementations must
// treat failures as non-fatal from the caller's point of view: the
// filesystem snapshot is the source of truth, the recorder is an audit
// trail.
type Recorder interface {
	RecordRun(run *RunSummary) error
	RecordEvents(runTime time.Time, events []model.ChangeEvent) error
	Close() error
}
