package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sydlexius/janitor/internal/database"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return NewService(db)
}

func TestRecordAndGet(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)

	r := &Run{
		Trigger:      "schedule",
		CleaningType: "delete",
		Status:       "success",
		StartedAt:    start,
		FinishedAt:   start.Add(2 * time.Second),
		Counts:       map[string]int{"movies": 1, "episodes": 2},
		Files: []File{
			{Category: "movies", Path: "/m/Foo.mkv"},
			{Category: "episodes", Path: "/tv/S01E01.mkv"},
			{Category: "episodes", Path: "/tv/S01E02.mkv"},
		},
	}
	if err := svc.Record(ctx, r); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if r.ID == "" {
		t.Fatal("no id assigned")
	}

	got, err := svc.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Trigger != "schedule" || got.Status != "success" || !got.StartedAt.Equal(start) {
		t.Errorf("run = %+v", got)
	}
	if got.Counts["movies"] != 1 || got.Counts["episodes"] != 2 {
		t.Errorf("counts = %v", got.Counts)
	}
	if len(got.Files) != 3 || got.Files[2].Path != "/tv/S01E02.mkv" {
		t.Errorf("files = %+v", got.Files)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := setupService(t)
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirstAndPrune(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC)

	var ids []string
	for i := range 4 {
		// Mix whole and fractional seconds to exercise the sort order.
		start := base.Add(time.Duration(i) * 1500 * time.Millisecond)
		r := &Run{Trigger: "manual", CleaningType: "delete", Status: "success", StartedAt: start, FinishedAt: start}
		if err := svc.Record(ctx, r); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, r.ID)
	}

	runs, err := svc.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 4 || runs[0].ID != ids[3] || runs[3].ID != ids[0] {
		t.Errorf("order = %v", runs)
	}

	n, err := svc.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 2 {
		t.Errorf("pruned %d, want 2", n)
	}
	runs, _ = svc.List(ctx, 10)
	if len(runs) != 2 || runs[1].ID != ids[2] {
		t.Errorf("after prune = %v", runs)
	}
}

func TestRecordKeepsPresetID(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 2, 3, 0, 0, 0, time.UTC)

	r := &Run{ID: "run-1", Trigger: "manual", CleaningType: "move", Status: "success", StartedAt: now, FinishedAt: now}
	if err := svc.Record(ctx, r); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if r.ID != "run-1" {
		t.Fatalf("id = %q, want run-1", r.ID)
	}
	if _, err := svc.Get(ctx, "run-1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
}
