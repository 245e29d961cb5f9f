package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per process invocation of the extract command
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    infile TEXT NOT NULL,
    schema_file TEXT NOT NULL,
    outfile TEXT NOT NULL,
    input_type TEXT NOT NULL,
    doc_count INTEGER NOT NULL,
    accepted_count INTEGER DEFAULT 0,
    refused_count INTEGER DEFAULT 0,
    parse_error_count INTEGER DEFAULT 0,
    skipped_count INTEGER DEFAULT 0,
    completed BOOLEAN DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

-- Run documents: per-document outcome within a run
CREATE TABLE IF NOT EXISTS run_documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    doc_id INTEGER NOT NULL,
    processed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    status TEXT NOT NULL,         -- accepted, refused, parse_error, skipped_blank, skipped_resume
    language TEXT,
    prompt_bytes INTEGER,
    response_bytes INTEGER,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, doc_id)
);

CREATE INDEX IF NOT EXISTS idx_run_documents_run ON run_documents(run_id);
CREATE INDEX IF NOT EXISTS idx_run_documents_status ON run_documents(status);
`
