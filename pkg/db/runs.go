package db

import (
	"fmt"
	"time"
)

// Run represents one invocation of the extract command.
type Run struct {
	RunID           int64
	CreatedAt       time.Time
	Infile          string
	SchemaFile      string
	Outfile         string
	InputType       string
	DocCount        int
	AcceptedCount   int
	RefusedCount    int
	ParseErrorCount int
	SkippedCount    int
	Completed       bool
}

// RunDocument is the audit record for one document within a run.
type RunDocument struct {
	RunID         int64
	DocID         int64
	ProcessedAt   time.Time
	Status        string
	Language      string
	PromptBytes   int
	ResponseBytes int
}

// Per-document statuses.
const (
	StatusAccepted      = "accepted"
	StatusRefused       = "refused"
	StatusParseError    = "parse_error"
	StatusSkippedBlank  = "skipped_blank"
	StatusSkippedResume = "skipped_resume"
)

// CreateRun records the start of a run and returns its id.
func (db *DB) CreateRun(infile, schemaFile, outfile, inputType string, docCount int) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (infile, schema_file, outfile, input_type, doc_count)
		VALUES (?, ?, ?, ?, ?)
	`, infile, schemaFile, outfile, inputType, docCount)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// InsertRunDocument records the outcome for one document. Re-running a
// document inside the same run (which the loop never does today) would
// violate the unique constraint and surface here.
func (db *DB) InsertRunDocument(runID, docID int64, status, language string, promptBytes, responseBytes int) error {
	_, err := db.Exec(`
		INSERT INTO run_documents (run_id, doc_id, status, language, prompt_bytes, response_bytes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, docID, status, language, promptBytes, responseBytes)
	if err != nil {
		return fmt.Errorf("failed to insert run document: %w", err)
	}
	return nil
}

// FinishRun stores the final counters and marks the run completed.
// Aborted runs keep completed = 0, which is how a supervisor's restart
// history shows up in `db runs`.
func (db *DB) FinishRun(runID int64, accepted, refused, parseErrors, skipped int) error {
	_, err := db.Exec(`
		UPDATE runs
		SET accepted_count = ?, refused_count = ?, parse_error_count = ?, skipped_count = ?, completed = 1
		WHERE run_id = ?
	`, accepted, refused, parseErrors, skipped, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT run_id, created_at, infile, schema_file, outfile, input_type,
		       doc_count, accepted_count, refused_count, parse_error_count,
		       skipped_count, completed
		FROM runs
		ORDER BY created_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.RunID, &run.CreatedAt, &run.Infile, &run.SchemaFile,
			&run.Outfile, &run.InputType, &run.DocCount, &run.AcceptedCount,
			&run.RefusedCount, &run.ParseErrorCount, &run.SkippedCount,
			&run.Completed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// GetRunByID retrieves a single run.
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	var run Run
	err := db.QueryRow(`
		SELECT run_id, created_at, infile, schema_file, outfile, input_type,
		       doc_count, accepted_count, refused_count, parse_error_count,
		       skipped_count, completed
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(
		&run.RunID, &run.CreatedAt, &run.Infile, &run.SchemaFile,
		&run.Outfile, &run.InputType, &run.DocCount, &run.AcceptedCount,
		&run.RefusedCount, &run.ParseErrorCount, &run.SkippedCount,
		&run.Completed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", runID, err)
	}
	return &run, nil
}

// GetRunDocuments returns the per-document records for a run in document
// order.
func (db *DB) GetRunDocuments(runID int64) ([]*RunDocument, error) {
	rows, err := db.Query(`
		SELECT run_id, doc_id, processed_at, status, language, prompt_bytes, response_bytes
		FROM run_documents
		WHERE run_id = ?
		ORDER BY doc_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run documents: %w", err)
	}
	defer rows.Close()

	var documents []*RunDocument
	for rows.Next() {
		var doc RunDocument
		if err := rows.Scan(
			&doc.RunID, &doc.DocID, &doc.ProcessedAt, &doc.Status,
			&doc.Language, &doc.PromptBytes, &doc.ResponseBytes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run document: %w", err)
		}
		documents = append(documents, &doc)
	}
	return documents, rows.Err()
}
