package previewer

import (
	"sync"
	"time"
)

// Scheduler is a single-slot debounce cell: scheduling a new task
// replaces any still-pending one, so only the most recent request
// within the quiet window actually runs. A task that has already
// started is allowed to finish; its results apply last-wins.
type Scheduler struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewScheduler creates a scheduler with the given quiet window.
func NewScheduler(delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return &Scheduler{delay: delay}
}

// Schedule queues fn to run after the quiet window, dropping any task
// scheduled earlier that has not started yet.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, fn)
}

// Stop cancels any pending task.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
