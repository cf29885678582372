package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	entries := []Entry{
		{Session: "s1", Location: "scans", File: "a.pdf", Action: ActionCompleted, Destination: "/done/a.pdf", Duration: 1500 * time.Millisecond},
		{Session: "s1", Location: "scans", File: "b.pdf", ExitCode: 2, Action: ActionDeleted},
		{Session: "s1", Location: "mail", File: "c.eml", ExitCode: 1, Action: ActionFailed, Destination: "/failed/c.eml"},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := s.Recent(ctx, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].File != "c.eml" {
		t.Errorf("newest first: got %q", got[0].File)
	}
	oldest := got[2]
	if oldest.Action != ActionCompleted || oldest.Destination != "/done/a.pdf" {
		t.Errorf("unexpected oldest entry: %+v", oldest)
	}
	if oldest.Duration != 1500*time.Millisecond {
		t.Errorf("duration: got %v", oldest.Duration)
	}
	if oldest.RecordedAt.IsZero() {
		t.Error("recorded_at should be stamped")
	}
}

func TestRecentFiltersAndLimits(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		loc := "scans"
		if i%2 == 1 {
			loc = "mail"
		}
		if err := s.Record(ctx, Entry{Session: "s", Location: loc, File: "f", Action: ActionDeleted}); err != nil {
			t.Fatal(err)
		}
	}

	scans, err := s.Recent(ctx, 10, "scans")
	if err != nil {
		t.Fatal(err)
	}
	if len(scans) != 3 {
		t.Errorf("scans: got %d entries, want 3", len(scans))
	}

	limited, err := s.Recent(ctx, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("limit: got %d entries, want 2", len(limited))
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(context.Background(), Entry{Session: "s", Location: "l", File: "f", Action: ActionCompleted}); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	got, err := s2.Recent(context.Background(), 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry after reopen, got %d", len(got))
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	_, err = Open(path)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
