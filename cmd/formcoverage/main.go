// Command formcoverage runs the coverage pipeline over one or more form
// documents and writes the resulting reports as JSON. Rendering the
// JSON into a human-readable table, diff, or CI annotation is the
// presentation layer, deliberately left out of scope; this binary stops
// at the data.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gitrdm/formcoverage/internal/batch"
	"github.com/gitrdm/formcoverage/internal/engine"
	"github.com/gitrdm/formcoverage/internal/formio"
	"github.com/gitrdm/formcoverage/internal/telemetry"
)

func main() {
	var (
		maxPhase1 = flag.Int("max-phase1-scenarios", 0, "cap on Phase 1 enumeration per form (0 uses the engine default)")
		deadline  = flag.Duration("deadline", 0, "solver deadline, measured from program start and shared by every form (0 means no deadline)")
		workers   = flag.Int("workers", 0, "max forms processed concurrently (0 uses the number of CPUs)")
		verbose   = flag.Bool("verbose", false, "emit structured logs to stderr instead of discarding them")
		out       = flag.String("out", "", "write JSON output to this path instead of stdout")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <form.yaml|form.json> [more forms...]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := telemetry.NewDiscardLogger()
	if *verbose {
		logger = telemetry.NewLogger(os.Stderr, slog.LevelInfo)
	}

	budget := engine.Budget{MaxPhase1Scenarios: *maxPhase1}
	if *deadline > 0 {
		budget.Deadline = time.Now().Add(*deadline)
	}

	items := make([]batch.Item, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "formcoverage: %v\n", err)
			os.Exit(1)
		}
		f, err := formio.Load(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "formcoverage: %s: %v\n", path, err)
			os.Exit(1)
		}
		items = append(items, batch.Item{Form: f, Budget: budget})
	}

	e := &engine.Engine{Logger: logger}
	results := batch.Run(context.Background(), e, items, *workers)

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "formcoverage: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	type output struct {
		FormName string         `json:"form_name"`
		Report   *engine.Report `json:"report,omitempty"`
		Err      string         `json:"error,omitempty"`
	}
	outputs := make([]output, len(results))
	failed := false
	for i, r := range results {
		outputs[i] = output{FormName: r.FormName, Report: r.Report}
		if r.Err != nil {
			outputs[i].Err = r.Err.Error()
			failed = true
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outputs); err != nil {
		fmt.Fprintf(os.Stderr, "formcoverage: encode output: %v\n", err)
		os.Exit(1)
	}

	if failed {
		os.Exit(1)
	}
}
