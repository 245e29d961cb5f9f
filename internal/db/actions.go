package db

import (
	"fmt"
	"strings"

	dbpkg "github.com/textworks/chat-extract/pkg/db"
	"github.com/urfave/cli/v2"
)

func RunsAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("audit-db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	limit := c.Int("limit")
	runs, err := database.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	// Print table header
	fmt.Printf("%-6s %-20s %-6s %-6s %-8s %-8s %-8s %-8s %-5s %-30s\n",
		"ID", "Created", "Type", "Docs", "Accepted", "Refused", "BadJSON", "Skipped", "Done", "Outfile")
	fmt.Println(strings.Repeat("-", 120))

	// Print each run
	for _, r := range runs {
		done := "no"
		if r.Completed {
			done = "yes"
		}
		fmt.Printf("%-6d %-20s %-6s %-6d %-8d %-8d %-8d %-8d %-5s %-30s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.InputType,
			r.DocCount,
			r.AcceptedCount,
			r.RefusedCount,
			r.ParseErrorCount,
			r.SkippedCount,
			done,
			r.Outfile,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'chat-extract db run <id>' to see per-document details\n")

	return nil
}

// RunAction shows details for a specific run
func RunAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("audit-db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRunByID(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	documents, err := database.GetRunDocuments(runID)
	if err != nil {
		return fmt.Errorf("failed to get run documents: %w", err)
	}

	// Print run details
	fmt.Printf("Run %d\n", run.RunID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Created:     %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Input:       %s (%s)\n", run.Infile, run.InputType)
	fmt.Printf("Schema:      %s\n", run.SchemaFile)
	fmt.Printf("Output:      %s\n", run.Outfile)
	fmt.Printf("Documents:   %d total (%d accepted, %d refused, %d bad JSON, %d skipped)\n",
		run.DocCount, run.AcceptedCount, run.RefusedCount, run.ParseErrorCount, run.SkippedCount)
	if !run.Completed {
		fmt.Printf("Status:      aborted or still running\n")
	}

	if len(documents) > 0 {
		fmt.Printf("\nDocuments (%d):\n", len(documents))
		fmt.Println(strings.Repeat("-", 60))
		for _, d := range documents {
			fmt.Printf("%6d  [%s]", d.DocID, d.Status)
			if d.Language != "" {
				fmt.Printf(" %s", d.Language)
			}
			if d.PromptBytes > 0 || d.ResponseBytes > 0 {
				fmt.Printf(" | prompt %d bytes, reply %d bytes", d.PromptBytes, d.ResponseBytes)
			}
			fmt.Println()
		}
	}

	return nil
}
