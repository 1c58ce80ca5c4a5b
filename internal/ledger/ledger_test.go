package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func openLedger(t *testing.T, path string) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), path, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return l
}

func TestRecordAndGet(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, filepath.Join(t.TempDir(), "runs.db"))
	defer l.Close()

	start := time.Date(2015, 8, 24, 13, 0, 0, 0, time.UTC)
	want := Entry{
		ID:         uuid.NewString(),
		OutputName: "hatteras",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		SeaCode:    1,
		AirCode:    0,
		StormCode:  5,
		Detail:     "statistics: fewer than 3 complete waves",
	}
	if err := l.Record(ctx, want); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := l.Get(ctx, want.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != want {
		t.Errorf("got %+v\nwant %+v", *got, want)
	}

	if err := l.Record(ctx, want); err == nil {
		t.Error("expected duplicate id to be rejected")
	}
}

func TestGetMissing(t *testing.T) {
	l := openLedger(t, filepath.Join(t.TempDir(), "runs.db"))
	defer l.Close()

	if _, err := l.Get(context.Background(), uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRecentAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	base := time.Date(2020, 9, 16, 0, 0, 0, 0, time.UTC)

	l := openLedger(t, path)
	for i := 0; i < 5; i++ {
		e := Entry{
			ID:         uuid.NewString(),
			OutputName: "sally",
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
			StormCode:  i,
		}
		if err := l.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	l.Close()

	// reopening must not reapply the schema
	l = openLedger(t, path)
	defer l.Close()

	recent, err := l.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d entries, want 3", len(recent))
	}
	for i, e := range recent {
		if want := 4 - i; e.StormCode != want {
			t.Errorf("recent[%d].StormCode = %d, want %d", i, e.StormCode, want)
		}
	}
}
