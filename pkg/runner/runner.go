// Package runner drives one full pass over the input documents: resume
// positioning, inter-request pacing, the per-document exchange, and the
// checkpoint rewrite after every result.
package runner

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/textworks/chat-extract/models"
	"github.com/textworks/chat-extract/pkg/classify"
	"github.com/textworks/chat-extract/pkg/cleaner"
	"github.com/textworks/chat-extract/pkg/db"
	"github.com/textworks/chat-extract/pkg/lang"
	"github.com/textworks/chat-extract/pkg/prompt"
	"github.com/textworks/chat-extract/pkg/results"
)

// Options controls resume positioning for a run.
type Options struct {
	// ContinueAt skips every document with a smaller id. Nil means start
	// from the beginning.
	ContinueAt *int64

	// ContinueLast derives the cursor from the stored results instead:
	// max stored id + 1.
	ContinueLast bool
}

// Validate rejects contradictory resume settings before any processing.
func (o Options) Validate() error {
	if o.ContinueLast && o.ContinueAt != nil {
		return errors.New("--continue-at and --continue-last can't be used together")
	}
	return nil
}

// Runner wires the pipeline pieces together for one process lifetime.
type Runner struct {
	Machine *classify.Machine
	Store   *results.Store
	Config  models.ExtractConfig

	// Audit and RunID record per-document outcomes in the run database.
	// Audit may be nil; audit failures are logged, never fatal.
	Audit *db.DB
	RunID int64

	// Detector tags documents with a language guess for the audit trail.
	// May be nil.
	Detector *lang.Detector

	Logger *slog.Logger

	// Sleep is swappable for tests. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

func (r *Runner) sleep(d time.Duration) {
	if r.Sleep != nil {
		r.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Run processes every document in order. A fatal session abort from the
// exchange machine is returned untouched: the process must die so the
// external supervisor restarts it against the checkpoint on disk.
func (r *Runner) Run(documents []models.Document, schema string, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	log := r.logger()

	continueAt := opts.ContinueAt
	if opts.ContinueLast {
		if max, ok := r.Store.MaxID(); ok {
			cursor := max + 1
			continueAt = &cursor
			log.Info("continuing after last stored result", "continue_at", cursor)
		}
	}

	var accepted, refused, parseErrors, skipped int
	first := true
	for _, doc := range documents {
		if doc.Text == "" {
			log.Info("blank text, skipping", "id", doc.ID)
			skipped++
			r.audit(doc.ID, db.StatusSkippedBlank, "", 0, 0)
			continue
		}

		if continueAt != nil && doc.ID < *continueAt {
			skipped++
			r.audit(doc.ID, db.StatusSkippedResume, "", 0, 0)
			continue
		}

		if !first {
			log.Info("pacing before next request", "sleep", r.Config.Pacing())
			r.sleep(r.Config.Pacing())
		}
		first = false

		log.Info("processing document", "id", doc.ID, "text_length", len(doc.Text))
		built := prompt.Build(cleaner.Clean(doc.Text, r.Config.DocMaxLength), schema)

		outcome, err := r.Machine.Exchange(built)
		if err != nil {
			return fmt.Errorf("document %d: %w", doc.ID, err)
		}

		var data any
		var status string
		switch outcome.Kind {
		case classify.Refused:
			refused++
			status = db.StatusRefused
		default:
			parsed, parseErr := classify.ParseFenced(outcome.Response)
			if parseErr != nil {
				log.Warn("bad result, keeping reply without data", "id", doc.ID, "error", parseErr)
				parseErrors++
				status = db.StatusParseError
			} else {
				data = parsed
				accepted++
				status = db.StatusAccepted
			}
		}

		r.Store.Upsert(models.ExchangeResult{
			ID:       doc.ID,
			Text:     doc.Text,
			Prompt:   outcome.Prompt,
			Response: outcome.Response,
			Data:     data,
		})
		if err := r.Store.Save(); err != nil {
			return fmt.Errorf("document %d: %w", doc.ID, err)
		}

		r.audit(doc.ID, status, r.detect(doc.Text), len(outcome.Prompt), len(outcome.Response))
		log.Info("document complete", "id", doc.ID, "status", status)
	}

	if r.Audit != nil && r.RunID != 0 {
		if err := r.Audit.FinishRun(r.RunID, accepted, refused, parseErrors, skipped); err != nil {
			log.Warn("failed to finalize run audit", "error", err)
		}
	}

	log.Info("run complete",
		"accepted", accepted, "refused", refused,
		"parse_errors", parseErrors, "skipped", skipped)
	return nil
}

func (r *Runner) detect(text string) string {
	if r.Detector == nil {
		return ""
	}
	return r.Detector.Detect(text)
}

func (r *Runner) audit(docID int64, status, language string, promptBytes, responseBytes int) {
	if r.Audit == nil || r.RunID == 0 {
		return
	}
	if err := r.Audit.InsertRunDocument(r.RunID, docID, status, language, promptBytes, responseBytes); err != nil {
		r.logger().Warn("failed to record audit row", "doc_id", docID, "error", err)
	}
}
