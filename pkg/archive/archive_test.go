package archive

import (
	"context"
	"testing"
	"time"

	"github.com/memslab/lasermill/pkg/errors"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	report := RunReport{
		RunID:       "run-1",
		StartedAt:   time.Now(),
		Policy:      "sequential",
		NumPolygons: 2,
		NumHoles:    124,
	}
	if err := s.Put(ctx, report); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.NumHoles != 124 || got.Policy != "sequential" {
		t.Errorf("Get() = %+v, want stored report", got)
	}

	_, err = s.Get(ctx, "run-2")
	if errors.GetCode(err) != errors.ErrCodeNotFound {
		t.Errorf("Get(unknown) code = %v, want %v", errors.GetCode(err), errors.ErrCodeNotFound)
	}
}

func TestMemoryStoreRecent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.Put(ctx, RunReport{RunID: id, StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("Put(%s) error = %v", id, err)
		}
	}

	reports, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("Recent() returned %d reports, want 2", len(reports))
	}
	if reports[0].RunID != "new" || reports[1].RunID != "mid" {
		t.Errorf("Recent() order = [%s %s], want [new mid]", reports[0].RunID, reports[1].RunID)
	}
}

func TestMemoryStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Put(ctx, RunReport{RunID: "run-1", NumHoles: 10})
	_ = s.Put(ctx, RunReport{RunID: "run-1", NumHoles: 20})

	got, err := s.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.NumHoles != 20 {
		t.Errorf("NumHoles = %d, want 20 (retried push must replace)", got.NumHoles)
	}
}
