// Package batch is the shared-nothing, caller-driven parallelism layer:
// forms are independent and may be processed concurrently, but nothing
// here spawns workers on the engine's behalf. It uses
// internal/parallel.WorkerPool to bound how many forms are processed
// concurrently, one engine.Engine.Run call per form, with no state
// shared between them.
package batch

import (
	"context"

	"github.com/gitrdm/formcoverage/internal/engine"
	"github.com/gitrdm/formcoverage/internal/form"
	"github.com/gitrdm/formcoverage/internal/parallel"
)

// Item pairs a form with its own copy of the run budget, so a batch can
// mix forms that need a tight deadline with ones that don't.
type Item struct {
	Form   *form.Form
	Budget engine.Budget
}

// Result is one form's outcome. Report is nil if Err is set.
type Result struct {
	FormName string
	Report   *engine.Report
	Err      error
}

// Run processes items concurrently, bounded by maxWorkers (0 defaults
// to runtime.NumCPU via parallel.NewWorkerPool), and returns results in
// the same order items were given regardless of completion order.
func Run(ctx context.Context, e *engine.Engine, items []Item, maxWorkers int) []Result {
	results := make([]Result, len(items))
	pool := parallel.NewWorkerPool(maxWorkers)
	defer pool.Shutdown()

	done := make(chan struct{}, len(items))
	for i, item := range items {
		i, item := i, item
		err := pool.Submit(ctx, func() {
			defer func() { done <- struct{}{} }()
			report, err := e.Run(ctx, item.Form, item.Budget)
			results[i] = Result{FormName: item.Form.Name, Report: report, Err: err}
		})
		if err != nil {
			results[i] = Result{FormName: item.Form.Name, Err: err}
			done <- struct{}{}
		}
	}

	for range items {
		<-done
	}
	return results
}
