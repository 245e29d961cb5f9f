package main

import (
	"fmt"
	"log"
	"os"

	internaldb "github.com/textworks/chat-extract/internal/db"
	"github.com/textworks/chat-extract/internal/extract"
	"github.com/textworks/chat-extract/pkg/db"
	"github.com/textworks/chat-extract/pkg/help"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "chat-extract",
		Usage: "Extract structured JSON from documents through a browser-bridged chat session",
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "Run the extraction loop over an input file",
				ArgsUsage: "<infile> <schema_file> <outfile>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input-type",
						Usage:    "Input format: txt (one document per line), json (array of objects), or html",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "keydoc",
						Usage: "Field holding document text (json input only, required there)",
					},
					&cli.StringFlag{
						Name:  "keyid",
						Usage: "Integer field to use as document id (json input only, default: array index)",
					},
					&cli.StringFlag{
						Name:  "selector",
						Usage: "CSS selector splitting an HTML input into documents (html input only)",
					},
					&cli.BoolFlag{
						Name:  "headless",
						Usage: "Skip the interactive login hand-off and wait a few seconds instead",
					},
					&cli.Int64Flag{
						Name:  "continue-at",
						Usage: "Skip documents with an id below this value",
					},
					&cli.BoolFlag{
						Name:  "continue-last",
						Usage: "Resume after the highest id already in the results file",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "YAML config file overriding the built-in pacing and backoff defaults",
					},
					&cli.StringFlag{
						Name:  "bridge-url",
						Usage: "Base URL of the browser bridge daemon",
					},
					&cli.StringFlag{
						Name:  "audit-db",
						Usage: "Path to the run-audit SQLite database",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Only log errors",
					},
				},
				Action: extract.ExtractAction,
			},
			{
				Name:  "quickstart",
				Usage: "Print a YAML cheat sheet of common invocations",
				Action: func(c *cli.Context) error {
					fmt.Print(help.ColdstartYAML)
					return nil
				},
			},
			{
				Name:  "db",
				Usage: "Inspect the run-audit database",
				Subcommands: []*cli.Command{
					{
						Name:  "runs",
						Usage: "List recent extraction runs",
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  "limit",
								Usage: "Maximum number of runs to show",
								Value: 20,
							},
							&cli.StringFlag{
								Name:  "audit-db",
								Usage: "Path to the run-audit SQLite database",
								Value: db.DefaultDBName,
							},
						},
						Action: internaldb.RunsAction,
					},
					{
						Name:      "run",
						Usage:     "Show per-document details for a run (latest when no id given)",
						ArgsUsage: "[run_id]",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "audit-db",
								Usage: "Path to the run-audit SQLite database",
								Value: db.DefaultDBName,
							},
						},
						Action: internaldb.RunAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
