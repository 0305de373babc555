package db

import (
	"errors"
	"testing"

	"github.com/dfwcyc/audio-normalizer/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func TestRunRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun("mp3s", "normalized")
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}
	if runID == 0 {
		t.Fatal("CreateRun() returned 0 ID")
	}

	m := &models.LoudnessMeasurement{InputI: -23.04, InputTP: -5.83}
	results := []models.NormalizationResult{
		{
			Source:      models.AudioFile{RelPath: "show1/intro.mp3"},
			Status:      models.StatusSucceeded,
			Measurement: m,
		},
		{
			Source:     models.AudioFile{RelPath: "show2/track.mp3"},
			Status:     models.StatusFailed,
			Err:        errors.New("exit status 1"),
			SinglePass: true,
		},
		{
			Source: models.AudioFile{RelPath: "show3/outro.mp3"},
			Status: models.StatusSkipped,
		},
	}
	for _, r := range results {
		if err := db.RecordFile(runID, r); err != nil {
			t.Fatalf("RecordFile(%s) failed: %v", r.Source.RelPath, err)
		}
	}

	summary := models.RunSummary{Total: 3, Succeeded: 1, Failed: 1, Skipped: 1}
	if err := db.FinishRun(runID, summary); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns() returned %d runs, want 1", len(runs))
	}

	run := runs[0]
	if run.RunID != runID {
		t.Errorf("RunID = %d, want %d", run.RunID, runID)
	}
	if run.SourceRoot != "mp3s" || run.DestRoot != "normalized" {
		t.Errorf("roots = %s -> %s, want mp3s -> normalized", run.SourceRoot, run.DestRoot)
	}
	if run.Total != 3 || run.Succeeded != 1 || run.Failed != 1 || run.Skipped != 1 {
		t.Errorf("counters = %+v, want 3/1/1/1", run)
	}
	if !run.FinishedAt.Valid {
		t.Error("FinishedAt not set after FinishRun")
	}

	files, err := db.GetRunFiles(runID)
	if err != nil {
		t.Fatalf("GetRunFiles() failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("GetRunFiles() returned %d files, want 3", len(files))
	}

	if files[0].RelPath != "show1/intro.mp3" || files[0].Status != "succeeded" {
		t.Errorf("files[0] = %+v, want succeeded show1/intro.mp3", files[0])
	}
	if !files[0].InputLUFS.Valid || files[0].InputLUFS.Float64 != -23.04 {
		t.Errorf("files[0].InputLUFS = %+v, want -23.04", files[0].InputLUFS)
	}

	if files[1].Status != "failed" || !files[1].Error.Valid || files[1].Error.String != "exit status 1" {
		t.Errorf("files[1] = %+v, want failed with error text", files[1])
	}
	if !files[1].SinglePass {
		t.Error("files[1].SinglePass = false, want true")
	}

	if files[2].Status != "skipped" || files[2].InputLUFS.Valid {
		t.Errorf("files[2] = %+v, want skipped without measurement", files[2])
	}
}

func TestListRunsOrderAndLimit(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	var ids []int64
	for i := 0; i < 5; i++ {
		id, err := db.CreateRun("mp3s", "normalized")
		if err != nil {
			t.Fatalf("CreateRun() failed: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := db.ListRuns(3)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns(3) returned %d runs", len(runs))
	}
	// Newest first
	if runs[0].RunID != ids[4] || runs[2].RunID != ids[2] {
		t.Errorf("runs out of order: got %d,%d,%d", runs[0].RunID, runs[1].RunID, runs[2].RunID)
	}
}

func TestGetRunFilesEmptyRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun("mp3s", "normalized")
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}

	files, err := db.GetRunFiles(runID)
	if err != nil {
		t.Fatalf("GetRunFiles() failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("GetRunFiles() returned %d files for empty run", len(files))
	}
}
