package monitor

import (
	"sync"
	"time"

	"github.com/sn2234/file-monitor/internal/journal"
)

// Phase is what the monitor loop is doing right now.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseIntake
	PhaseExecuting
	PhaseSleeping
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseIntake:
		return "INTAKE"
	case PhaseExecuting:
		return "EXECUTING"
	case PhaseSleeping:
		return "SLEEPING"
	default:
		return "UNKNOWN"
	}
}

// LocationStats counts what happened in one location since startup.
type LocationStats struct {
	Name        string
	Moved       int // input -> processing
	Completed   int
	Failed      int
	Deleted     int
	Errors      int
	LastError   string
	LastErrorAt time.Time
}

// OutcomeEvent is one routed (or unroutable) file.
type OutcomeEvent struct {
	At          time.Time
	Location    string
	File        string
	Action      journal.Action
	ExitCode    int
	Destination string
}

// StateSnapshot is an immutable copy of State for rendering.
type StateSnapshot struct {
	Phase       Phase
	PhaseMsg    string
	Locations   []LocationStats
	Recent      []OutcomeEvent
	StartedAt   time.Time
	NextPollAt  time.Time
	TotalCycles int
	TotalErrors int
}

const maxRecent = 50

// State is shared between the monitor loop (writer) and the dashboard
// (reader via Snapshot).
type State struct {
	mu sync.RWMutex

	phase    Phase
	phaseMsg string

	locations []LocationStats
	index     map[string]int
	recent    []OutcomeEvent

	startedAt  time.Time
	nextPollAt time.Time

	totalCycles int
	totalErrors int

	// buffered, non-blocking notification for the dashboard
	events chan struct{}
}

// NewState creates a state container with one stats row per location.
func NewState(labels []string) *State {
	s := &State{
		startedAt: time.Now(),
		index:     make(map[string]int, len(labels)),
		events:    make(chan struct{}, 1),
	}
	for _, l := range labels {
		s.row(l)
	}
	return s
}

// Events returns the change notification channel.
func (s *State) Events() <-chan struct{} {
	return s.events
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StateSnapshot{
		Phase:       s.phase,
		PhaseMsg:    s.phaseMsg,
		StartedAt:   s.startedAt,
		NextPollAt:  s.nextPollAt,
		TotalCycles: s.totalCycles,
		TotalErrors: s.totalErrors,
	}
	if len(s.locations) > 0 {
		snap.Locations = make([]LocationStats, len(s.locations))
		copy(snap.Locations, s.locations)
	}
	if len(s.recent) > 0 {
		snap.Recent = make([]OutcomeEvent, len(s.recent))
		copy(snap.Recent, s.recent)
	}
	return snap
}

// row returns the stats for label, adding it if unseen. Caller holds mu
// (or is the constructor).
func (s *State) row(label string) *LocationStats {
	i, ok := s.index[label]
	if !ok {
		i = len(s.locations)
		s.index[label] = i
		s.locations = append(s.locations, LocationStats{Name: label})
	}
	return &s.locations[i]
}

// SetPhase updates the current phase and detail message.
func (s *State) SetPhase(p Phase, msg string) {
	s.mu.Lock()
	s.phase = p
	s.phaseMsg = msg
	s.mu.Unlock()
	s.notify()
}

// SetNextPollAt records when the current sleep ends.
func (s *State) SetNextPollAt(t time.Time) {
	s.mu.Lock()
	s.nextPollAt = t
	s.mu.Unlock()
	s.notify()
}

// IncrementCycle counts a full pass over all locations.
func (s *State) IncrementCycle() {
	s.mu.Lock()
	s.totalCycles++
	s.mu.Unlock()
}

// RecordIntake counts a file moved into the processing folder.
func (s *State) RecordIntake(label string) {
	s.mu.Lock()
	s.row(label).Moved++
	s.mu.Unlock()
	s.notify()
}

// RecordOutcome counts a routed file and prepends it to the recent list.
func (s *State) RecordOutcome(ev OutcomeEvent) {
	s.mu.Lock()
	r := s.row(ev.Location)
	switch ev.Action {
	case journal.ActionCompleted:
		r.Completed++
	case journal.ActionFailed:
		r.Failed++
	case journal.ActionDeleted:
		r.Deleted++
	}
	s.recent = append([]OutcomeEvent{ev}, s.recent...)
	if len(s.recent) > maxRecent {
		s.recent = s.recent[:maxRecent]
	}
	s.mu.Unlock()
	s.notify()
}

// RecordError counts an item or location failure.
func (s *State) RecordError(label string, err error) {
	s.mu.Lock()
	r := s.row(label)
	r.Errors++
	r.LastError = err.Error()
	r.LastErrorAt = time.Now()
	s.totalErrors++
	s.mu.Unlock()
	s.notify()
}

func (s *State) notify() {
	select {
	case s.events <- struct{}{}:
	default:
	}
}
