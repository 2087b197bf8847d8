package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/sidekick/internal/store"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

func TestRecordAndRecentTransitions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)
	seq := []store.Transition{
		{Status: "STARTING", Trigger: "autostart", Epoch: 1, At: base},
		{Status: "READY", Trigger: "autostart", Epoch: 1, At: base.Add(time.Second)},
		{Status: "NOT_READY", Reason: "PORT_IN_USE_NO_HEALTH", Trigger: "retry", Epoch: 2, At: base.Add(2 * time.Second)},
	}
	for _, tr := range seq {
		if err := db.RecordTransition(ctx, tr); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	got, err := db.RecentTransitions(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 transitions, got %d", len(got))
	}
	// newest first
	if got[0].Status != "NOT_READY" || got[0].Reason != "PORT_IN_USE_NO_HEALTH" {
		t.Fatalf("unexpected newest transition: %+v", got[0])
	}
	if got[0].Epoch != 2 || got[0].Trigger != "retry" {
		t.Fatalf("epoch/trigger not persisted: %+v", got[0])
	}
}

func TestRecentTransitionsLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		tr := store.Transition{Status: "STARTING", Epoch: uint64(i), At: time.Now().UTC()}
		if err := db.RecordTransition(ctx, tr); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	got, err := db.RecentTransitions(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("limit not applied: %d", len(got))
	}
}

func TestNewRejectsEmptyPath(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
