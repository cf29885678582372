package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/sn2234/file-monitor/internal/journal"
)

func TestState_InitialPhase(t *testing.T) {
	s := NewState([]string{"a", "b"})
	snap := s.Snapshot()
	if snap.Phase != PhaseIdle {
		t.Fatalf("expected PhaseIdle, got %v", snap.Phase)
	}
	if len(snap.Locations) != 2 || snap.Locations[0].Name != "a" || snap.Locations[1].Name != "b" {
		t.Fatalf("unexpected rows %+v", snap.Locations)
	}
}

func TestState_SetPhase(t *testing.T) {
	s := NewState(nil)
	s.SetPhase(PhaseExecuting, "docs")
	snap := s.Snapshot()
	if snap.Phase != PhaseExecuting || snap.PhaseMsg != "docs" {
		t.Fatalf("unexpected phase %v %q", snap.Phase, snap.PhaseMsg)
	}
}

func TestState_Counters(t *testing.T) {
	s := NewState([]string{"docs"})
	s.RecordIntake("docs")
	s.RecordIntake("docs")
	s.RecordOutcome(OutcomeEvent{Location: "docs", Action: journal.ActionCompleted})
	s.RecordOutcome(OutcomeEvent{Location: "docs", Action: journal.ActionFailed, ExitCode: 1})
	s.RecordOutcome(OutcomeEvent{Location: "docs", Action: journal.ActionDeleted})
	s.RecordError("docs", errors.New("boom"))

	snap := s.Snapshot()
	r := snap.Locations[0]
	if r.Moved != 2 || r.Completed != 1 || r.Failed != 1 || r.Deleted != 1 || r.Errors != 1 {
		t.Fatalf("unexpected counters %+v", r)
	}
	if r.LastError != "boom" || r.LastErrorAt.IsZero() {
		t.Fatalf("last error not recorded: %+v", r)
	}
	if snap.TotalErrors != 1 {
		t.Fatalf("expected 1 total error, got %d", snap.TotalErrors)
	}
}

func TestState_UnknownLocationAdded(t *testing.T) {
	s := NewState([]string{"a"})
	s.RecordIntake("z")
	snap := s.Snapshot()
	if len(snap.Locations) != 2 || snap.Locations[1].Name != "z" || snap.Locations[1].Moved != 1 {
		t.Fatalf("unexpected rows %+v", snap.Locations)
	}
}

func TestState_RecentNewestFirstAndCapped(t *testing.T) {
	s := NewState(nil)
	for i := 0; i < maxRecent+10; i++ {
		s.RecordOutcome(OutcomeEvent{Location: "a", ExitCode: i, Action: journal.ActionCompleted})
	}
	snap := s.Snapshot()
	if len(snap.Recent) != maxRecent {
		t.Fatalf("expected %d recent, got %d", maxRecent, len(snap.Recent))
	}
	if snap.Recent[0].ExitCode != maxRecent+9 {
		t.Fatalf("most recent should be first, got exit %d", snap.Recent[0].ExitCode)
	}
}

func TestState_SnapshotIsCopy(t *testing.T) {
	s := NewState([]string{"a"})
	snap := s.Snapshot()
	snap.Locations[0].Moved = 99

	if s.Snapshot().Locations[0].Moved != 0 {
		t.Fatal("mutating a snapshot must not change state")
	}
}

func TestState_Events(t *testing.T) {
	s := NewState(nil)
	s.SetPhase(PhaseIntake, "a")
	s.SetPhase(PhaseExecuting, "a") // coalesced, must not block

	select {
	case <-s.Events():
	case <-time.After(time.Second):
		t.Fatal("expected a notification")
	}
}

func TestPhase_String(t *testing.T) {
	tests := map[Phase]string{
		PhaseIdle:      "IDLE",
		PhaseIntake:    "INTAKE",
		PhaseExecuting: "EXECUTING",
		PhaseSleeping:  "SLEEPING",
		Phase(42):      "UNKNOWN",
	}
	for p, want := range tests {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(p), got, want)
		}
	}
}
