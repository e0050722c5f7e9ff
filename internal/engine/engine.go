// Package engine orchestrates the full pipeline —
// Classifier, Encoder, Synthesizer, Minimizer — for one form, and
// assembles the reporting shape the CLI collaborator expects:
// scenario list, classification maps, reverse-dependency map, and
// coverage summary.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gitrdm/formcoverage/internal/classify"
	"github.com/gitrdm/formcoverage/internal/encode"
	"github.com/gitrdm/formcoverage/internal/form"
	"github.com/gitrdm/formcoverage/internal/minimize"
	"github.com/gitrdm/formcoverage/internal/solve"
	"github.com/gitrdm/formcoverage/internal/synth"
)

// Budget bounds one form's run: Deadline (zero means no deadline) is
// enforced by passing a context deadline to the solver;
// MaxPhase1Scenarios caps Phase 1's enumeration.
type Budget struct {
	Deadline           time.Time
	MaxPhase1Scenarios int
}

// CoverageSummary is the per-form coverage header.
type CoverageSummary struct {
	TotalQuestions     int
	ReachableQuestions int
	CoveredQuestions   int
	CoveragePercent    float64
	DeadQuestions      int
}

// Report is the engine's complete per-form output.
type Report struct {
	FormName        string
	Scenarios       []minimize.Selected
	Graph           *classify.Graph
	TestVariables   map[form.QuestionID]bool
	DataCollection  map[form.QuestionID]bool
	Gatekeepers     []form.QuestionID
	Dead            []synth.DeadQuestion
	Coverage        CoverageSummary
	Partial         bool
}

// Engine runs the pipeline for individual forms. NewSolver lets a
// caller substitute a mock solve.Solver (as this package's and
// internal/batch's tests do); the zero value uses solve.NewGiniSolver.
type Engine struct {
	NewSolver func() solve.Solver
	Logger    *slog.Logger
}

// New returns an Engine backed by the production gini solver and no
// Logger of its own, so its logs go to slog.Default(). Use the struct
// literal directly to override either.
func New() *Engine {
	return &Engine{}
}

func (e *Engine) newSolver() solve.Solver {
	if e.NewSolver != nil {
		return e.NewSolver()
	}
	return solve.NewGiniSolver()
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Run executes the full pipeline for f: validate, classify, encode,
// synthesize, minimize. Validation and classification failures
// (malformed input, an unencodable predicate) are fatal and returned
// as an error; everything past that point (solver timeouts,
// unreachable questions) is folded into Report.Partial and Report.Dead
// instead, since the engine never silently discards questions or
// scenarios.
func (e *Engine) Run(ctx context.Context, f *form.Form, budget Budget) (*Report, error) {
	log := e.logger()

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	cls, err := classify.Classify(f)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	vm, err := encode.BuildValueMap(f, cls)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	s := e.newSolver()
	model, err := encode.Build(f, cls, vm, s)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	s.Assert(model.Validity)

	if !budget.Deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, budget.Deadline)
		defer cancel()
	}

	synthBudget := synth.Budget{MaxPhase1Scenarios: budget.MaxPhase1Scenarios}
	result, err := synth.Synthesize(ctx, f, cls, vm, model, s, synthBudget, log)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	selected := minimize.Run(result.Pool, result.Reachable, cls)

	covered := 0
	for _, sel := range selected {
		covered += len(sel.NewlyCovered)
	}
	reachableCount := len(result.Reachable)
	percent := 0.0
	if reachableCount > 0 {
		percent = 100 * float64(covered) / float64(reachableCount)
	}

	report := &Report{
		FormName:       f.Name,
		Scenarios:      selected,
		Graph:          cls.Graph,
		TestVariables:  cls.TestVariables,
		DataCollection: cls.DataCollection,
		Gatekeepers:    cls.Gatekeepers,
		Dead:           result.Dead,
		Partial:        result.Partial,
		Coverage: CoverageSummary{
			TotalQuestions:     f.Len(),
			ReachableQuestions: reachableCount,
			CoveredQuestions:   covered,
			CoveragePercent:    percent,
			DeadQuestions:      len(result.Dead),
		},
	}

	if result.Partial {
		log.Warn("form marked partial coverage", "form", f.Name)
	}

	return report, nil
}
