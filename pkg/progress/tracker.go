package progress

import "sync"

// Status is a point-in-time snapshot of a generation run, shaped for the
// polling endpoint.
type Status struct {
	Status     string  `json:"status"`
	Percentage int     `json:"percentage"`
	Error      *string `json:"error"`
}

// Tracker holds the mutable state of one generation run. It is created per
// run and handed to both the generator (writer) and the polling boundary
// (reader), so there is no package-global progress state.
type Tracker struct {
	mu         sync.RWMutex
	status     string
	percentage int
	err        string
}

// NewTracker returns a tracker in its initial state.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Set updates the status text and percentage.
func (t *Tracker) Set(status string, percentage int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = status
	t.percentage = percentage
}

// SetError records a non-fatal error message without interrupting the run.
func (t *Tracker) SetError(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.err = msg
}

// Fail records a fatal error: status becomes "Error" and the percentage is
// reset.
func (t *Tracker) Fail(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = "Error"
	t.percentage = 0
	t.err = msg
}

// Complete marks the run finished.
func (t *Tracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = "Complete"
	t.percentage = 100
}

// Err returns the recorded error message, empty when none.
func (t *Tracker) Err() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.err
}

// Running reports whether a run is in progress: started but neither
// complete nor failed.
func (t *Tracker) Running() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.status != "" && t.status != "Complete" && t.status != "Error"
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Status{
		Status:     t.status,
		Percentage: t.percentage,
	}
	if t.err != "" {
		msg := t.err
		s.Error = &msg
	}
	return s
}
