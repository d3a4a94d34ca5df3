package server

import (
	"context"
	"sync"
	"time"

	"testbed/experiment"
	"testbed/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// RunView is the view-model published to clients: the game in progress, the games finished
// so far, and whether the run is over.
type RunView struct {
	RunID    string                `json:"runId"`
	Current  *experiment.Progress  `json:"current,omitempty"`
	Finished []experiment.Progress `json:"finished"`
	Done     bool                  `json:"done"`
	Err      string                `json:"error,omitempty"`
}

// Monitor tracks the run being played for the views. Track is called from the runner's
// aggregator; View may be called from any number of handlers.
type Monitor struct {
	mu       sync.RWMutex
	runID    string
	current  *experiment.Tally
	finished []experiment.Progress
	done     bool
	err      error
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// Start resets the monitor for a new run.
func (m *Monitor) Start(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runID = runID
	m.current = nil
	m.finished = nil
	m.done = false
	m.err = nil
}

// Track is an experiment.ProgressFunc. A tally is recorded as finished once all of its
// bandits have completed.
func (m *Monitor) Track(_ context.Context, tally *experiment.Tally) {
	if tally.Completed() < tally.Bandits {
		m.mu.Lock()
		m.current = tally
		m.mu.Unlock()
		return
	}

	progress := tally.Progress()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.finished = append(m.finished, progress)
}

// Finish marks the run over, with the error that ended it if any.
func (m *Monitor) Finish(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.done = true
	m.err = err
}

// View snapshots the run. The game in progress is read while its workers keep adding to it.
func (m *Monitor) View() RunView {
	m.mu.RLock()
	current := m.current
	view := RunView{
		RunID:    m.runID,
		Finished: append([]experiment.Progress{}, m.finished...),
		Done:     m.done,
	}
	if m.err != nil {
		view.Err = m.err.Error()
	}
	m.mu.RUnlock()

	if current != nil {
		progress := current.Progress()
		view.Current = &progress
	}
	return view
}

// Updates returns a channel of views sampled at twice the publication period until @done closes,
// so that sampling jitter does not make the client drop them.
func (m *Monitor) Updates(done <-chan struct{}) <-chan RunView {
	return m.updates(done, 2*fastview.PubResolution)
}

func (m *Monitor) updates(done <-chan struct{}, period time.Duration) <-chan RunView {
	ticks := make(chan struct{})
	go func() {
		defer close(ticks)
		for range channerics.NewTicker(done, period) {
			select {
			case ticks <- struct{}{}:
			case <-done:
				return
			}
		}
	}()
	return channerics.Convert(done, ticks, func(struct{}) RunView {
		return m.View()
	})
}
