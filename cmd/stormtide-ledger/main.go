package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/chrissnell/stormtide/internal/ledger"
	"github.com/chrissnell/stormtide/internal/outcome"
)

func main() {
	var (
		dbPath  = flag.String("db", "", "Path to the run ledger")
		command = flag.String("command", "recent", "Ledger command: recent, show")
		limit   = flag.Int("limit", 20, "Number of runs for recent")
		runID   = flag.String("id", "", "Run id for show")
	)
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -db flag is required\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx := context.Background()
	l, err := ledger.Open(ctx, *dbPath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open ledger: %v\n", err)
		os.Exit(1)
	}
	defer l.Close()

	switch *command {
	case "recent":
		entries, err := l.Recent(ctx, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list runs: %v\n", err)
			os.Exit(1)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tOUTPUT\tSTARTED\tSEA\tAIR\tSTORM")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n", e.ID, e.OutputName,
				e.StartedAt.Format(time.RFC3339), e.SeaCode, e.AirCode, e.StormCode)
		}
		w.Flush()
	case "show":
		if *runID == "" {
			fmt.Fprintf(os.Stderr, "Error: -id flag is required for show\n")
			os.Exit(1)
		}
		e, err := l.Get(ctx, *runID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load run: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Run:      %s\n", e.ID)
		fmt.Printf("Output:   %s\n", e.OutputName)
		fmt.Printf("Started:  %s\n", e.StartedAt.Format(time.RFC3339))
		fmt.Printf("Finished: %s\n", e.FinishedAt.Format(time.RFC3339))
		fmt.Printf("Sea:      %d (%s)\n", e.SeaCode, outcome.CodeName(e.SeaCode))
		fmt.Printf("Air:      %d (%s)\n", e.AirCode, outcome.CodeName(e.AirCode))
		fmt.Printf("Storm:    %d (%s)\n", e.StormCode, outcome.CodeName(e.StormCode))
		if e.Detail != "" {
			fmt.Printf("Detail:   %s\n", e.Detail)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		os.Exit(1)
	}
}
