package db

import (
	"testing"
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

func TestCreateRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun("pages.txt", "schema.json", "out.json", "txt", 12)
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if runID == 0 {
		t.Fatal("CreateRun() returned 0 run ID")
	}

	run, err := db.GetRunByID(runID)
	if err != nil {
		t.Fatalf("GetRunByID() error = %v", err)
	}
	if run.Infile != "pages.txt" || run.Outfile != "out.json" {
		t.Errorf("run paths = %q/%q, want pages.txt/out.json", run.Infile, run.Outfile)
	}
	if run.DocCount != 12 {
		t.Errorf("run.DocCount = %d, want 12", run.DocCount)
	}
	if run.Completed {
		t.Error("new run should not be marked completed")
	}
}

func TestInsertRunDocument(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun("in", "schema", "out", "json", 2)
	if err != nil {
		t.Fatal(err)
	}

	if err := db.InsertRunDocument(runID, 0, StatusAccepted, "English", 1200, 340); err != nil {
		t.Fatalf("InsertRunDocument() error = %v", err)
	}
	if err := db.InsertRunDocument(runID, 1, StatusRefused, "Spanish", 900, 80); err != nil {
		t.Fatalf("InsertRunDocument() error = %v", err)
	}

	// Same run + doc violates the unique constraint.
	if err := db.InsertRunDocument(runID, 0, StatusAccepted, "English", 1, 1); err == nil {
		t.Error("InsertRunDocument() duplicate error = nil, want unique violation")
	}

	docs, err := db.GetRunDocuments(runID)
	if err != nil {
		t.Fatalf("GetRunDocuments() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("GetRunDocuments() returned %d docs, want 2", len(docs))
	}
	if docs[0].DocID != 0 || docs[0].Status != StatusAccepted || docs[0].Language != "English" {
		t.Errorf("docs[0] = %+v", docs[0])
	}
	if docs[1].Status != StatusRefused {
		t.Errorf("docs[1].Status = %q, want refused", docs[1].Status)
	}
}

func TestFinishRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun("in", "schema", "out", "txt", 5)
	if err != nil {
		t.Fatal(err)
	}

	if err := db.FinishRun(runID, 3, 1, 1, 0); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	run, err := db.GetRunByID(runID)
	if err != nil {
		t.Fatal(err)
	}
	if !run.Completed {
		t.Error("run not marked completed")
	}
	if run.AcceptedCount != 3 || run.RefusedCount != 1 || run.ParseErrorCount != 1 {
		t.Errorf("run counters = %d/%d/%d, want 3/1/1",
			run.AcceptedCount, run.RefusedCount, run.ParseErrorCount)
	}
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for i := 0; i < 3; i++ {
		if _, err := db.CreateRun("in", "schema", "out", "txt", i); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns(2) returned %d runs, want 2", len(runs))
	}
	if runs[0].RunID < runs[1].RunID {
		t.Error("ListRuns() not ordered newest first")
	}
}

func TestGetRunByID_Missing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetRunByID(999); err == nil {
		t.Error("GetRunByID(999) error = nil, want not-found error")
	}
}
