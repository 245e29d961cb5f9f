package extract

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/textworks/chat-extract/models"
	"github.com/textworks/chat-extract/pkg/backend"
	"github.com/textworks/chat-extract/pkg/classify"
	dbpkg "github.com/textworks/chat-extract/pkg/db"
	"github.com/textworks/chat-extract/pkg/lang"
	"github.com/textworks/chat-extract/pkg/loader"
	"github.com/textworks/chat-extract/pkg/results"
	"github.com/textworks/chat-extract/pkg/runner"
	"github.com/urfave/cli/v2"
)

// loginGraceSeconds is how long a headless start waits for the bridge
// session to settle before the first request.
const loginGraceSeconds = 5

func ExtractAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if c.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "Error: three arguments required: <infile> <schema_file> <outfile>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  chat-extract extract --input-type txt pages.txt schema.json results.json`)
		fmt.Fprintln(os.Stderr, `  chat-extract extract --input-type json --keydoc body --keyid id posts.json schema.json results.json`)
		fmt.Fprintln(os.Stderr, `  chat-extract extract --input-type html --selector "div.entry" page.html schema.json results.json`)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Need help? Run: chat-extract extract --help")
		os.Exit(2)
	}
	infile := c.Args().Get(0)
	schemaFile := c.Args().Get(1)
	outfile := c.Args().Get(2)

	inputType := c.String("input-type")
	switch inputType {
	case loader.TypeText, loader.TypeJSON, loader.TypeHTML:
	default:
		logger.Error("invalid input type", "input_type", inputType, "want", "txt, json, or html")
		os.Exit(2)
	}
	if inputType == loader.TypeJSON && c.String("keydoc") == "" {
		logger.Error("--keydoc is required with json input type")
		os.Exit(2)
	}
	if c.IsSet("continue-at") && c.Bool("continue-last") {
		logger.Error("--continue-at and --continue-last can't be used together")
		os.Exit(2)
	}

	cfg := models.DefaultExtractConfig()
	if c.IsSet("config") {
		var err error
		cfg, err = models.LoadExtractConfig(c.String("config"))
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(2)
		}
	}
	if c.IsSet("bridge-url") {
		cfg.BridgeURL = c.String("bridge-url")
	}
	if c.IsSet("audit-db") {
		cfg.AuditDBPath = c.String("audit-db")
	}

	documents, err := loader.Load(infile, loader.Options{
		Type:     inputType,
		DocKey:   c.String("keydoc"),
		IDKey:    c.String("keyid"),
		Selector: c.String("selector"),
	})
	if err != nil {
		logger.Error("failed to load input", "error", err)
		os.Exit(2)
	}
	logger.Info("input loaded", "documents", len(documents), "input_type", inputType)

	schemaData, err := os.ReadFile(schemaFile)
	if err != nil {
		logger.Error("failed to read schema file", "error", err)
		os.Exit(2)
	}
	if !json.Valid(schemaData) {
		logger.Error("schema file is not valid JSON", "schema_file", schemaFile)
		os.Exit(2)
	}

	store, err := results.Load(outfile)
	if err != nil {
		logger.Error("failed to load results file", "error", err)
		os.Exit(2)
	}
	logger.Info("results loaded", "existing", store.Len(), "outfile", outfile)

	database, err := dbpkg.Open(cfg.AuditDBPath)
	if err != nil {
		logger.Error("failed to open audit database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	runID, err := database.CreateRun(infile, schemaFile, outfile, inputType, len(documents))
	if err != nil {
		// Audit is best effort; the extraction itself does not depend on it.
		logger.Warn("failed to record run, continuing without audit", "error", err)
		runID = 0
	}

	bridge := backend.NewBridge(cfg.BridgeURL)

	if c.Bool("headless") {
		logger.Info("waiting for bridge session to settle", "seconds", loginGraceSeconds)
		time.Sleep(loginGraceSeconds * time.Second)
	} else {
		fmt.Fprintln(os.Stderr, "Log in to the chat session in the bridge browser, then press Enter to continue...")
		if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
			logger.Error("failed to read login confirmation", "error", err)
			os.Exit(2)
		}
	}

	if err := bridge.Reload(); err != nil {
		logger.Error("failed to reload chat session", "error", err)
		os.Exit(2)
	}

	opts := runner.Options{ContinueLast: c.Bool("continue-last")}
	if c.IsSet("continue-at") {
		cursor := c.Int64("continue-at")
		opts.ContinueAt = &cursor
	}

	r := &runner.Runner{
		Machine: &classify.Machine{
			Backend:        bridge,
			Backoff:        cfg.Backoff(),
			RateLimitSleep: cfg.RateLimitSleep(),
			MaxWaitStates:  cfg.MaxWaitStates,
			Logger:         logger,
		},
		Store:    store,
		Config:   cfg,
		Audit:    database,
		RunID:    runID,
		Detector: lang.NewDetector(),
		Logger:   logger,
	}

	if err := r.Run(documents, string(schemaData), opts); err != nil {
		logger.Error("run aborted", "error", err)
		return err
	}

	logger.Info("all documents processed", "outfile", outfile)
	return nil
}
