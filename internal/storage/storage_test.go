package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesSchema(t *testing.T) {
	root := t.TempDir()
	db, err := Open(root, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if want := filepath.Join(root, ".flowtrace", "history.db"); db.Path() != want {
		t.Errorf("path = %s, want %s", db.Path(), want)
	}
	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != currentSchemaVersion {
		t.Errorf("schema version = %d, want %d", v, currentSchemaVersion)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	root := t.TempDir()
	db1, err := Open(root, nil)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := db1.RecordRun(Run{ID: "r1", Kind: "slice", Target: "x"}, nil); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	db1.Close()

	db2, err := Open(root, nil)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer db2.Close()
	runs, err := db2.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "r1" {
		t.Errorf("runs after reopen = %+v, want r1", runs)
	}
}

func TestRecordAndReadRun(t *testing.T) {
	db := openTestDB(t)

	run := Run{
		ID:         "run-1",
		Kind:       "trace",
		Target:     "com.app.Experiments.isEnabled",
		Matched:    2,
		Distinct:   2,
		DurationMs: 12,
	}
	findings := []Finding{
		{ConstType: "int", Value: "1001"},
		{ConstType: "enum", EnumClass: "com.app.Experiment", EnumName: "EXPERIMENT_B"},
	}
	if err := db.RecordRun(run, findings); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	got, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got == nil {
		t.Fatal("GetRun returned nil for stored run")
	}
	if got.Kind != "trace" || got.Matched != 2 || got.Distinct != 2 {
		t.Errorf("run = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not stamped")
	}

	fs, err := db.RunFindings("run-1")
	if err != nil {
		t.Fatalf("RunFindings: %v", err)
	}
	if len(fs) != 2 {
		t.Fatalf("findings = %d, want 2", len(fs))
	}
	if fs[0].Value != "1001" || fs[1].EnumName != "EXPERIMENT_B" {
		t.Errorf("findings = %+v", fs)
	}
}

func TestGetRunMissing(t *testing.T) {
	db := openTestDB(t)
	got, err := db.GetRun("nope")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := Run{
			ID:        fmt.Sprintf("run-%d", i),
			Kind:      "slice",
			Target:    "x",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.RecordRun(run, nil); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-2" || runs[1].ID != "run-1" {
		t.Errorf("order = %s, %s, want run-2, run-1", runs[0].ID, runs[1].ID)
	}
}

func TestPruneRunsCascades(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := Run{
			ID:        fmt.Sprintf("run-%d", i),
			Kind:      "slice",
			Target:    "x",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.RecordRun(run, []Finding{{ConstType: "int", Value: "1"}}); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	deleted, err := db.PruneRuns(1)
	if err != nil {
		t.Fatalf("PruneRuns: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-2" {
		t.Errorf("kept = %+v, want run-2", runs)
	}

	// Deleted runs take their findings with them.
	fs, err := db.RunFindings("run-0")
	if err != nil {
		t.Fatalf("RunFindings: %v", err)
	}
	if len(fs) != 0 {
		t.Errorf("findings for pruned run = %+v, want none", fs)
	}
}

func TestDuplicateRunIDFails(t *testing.T) {
	db := openTestDB(t)
	if err := db.RecordRun(Run{ID: "dup", Kind: "slice", Target: "x"}, nil); err != nil {
		t.Fatalf("first RecordRun: %v", err)
	}
	if err := db.RecordRun(Run{ID: "dup", Kind: "slice", Target: "y"}, nil); err == nil {
		t.Error("duplicate run id should fail")
	}
}
