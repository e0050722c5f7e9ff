package synth

import (
	"context"
	"log/slog"

	"github.com/gitrdm/formcoverage/internal/bitset"
	"github.com/gitrdm/formcoverage/internal/classify"
	"github.com/gitrdm/formcoverage/internal/encode"
	"github.com/gitrdm/formcoverage/internal/form"
	"github.com/gitrdm/formcoverage/internal/solve"
)

// Budget bounds how much work Synthesize does before giving up on full
// coverage and returning what it has.
type Budget struct {
	// MaxPhase1Scenarios caps how many leaves Phase 1's enumeration
	// produces before truncating. Zero means DefaultMaxPhase1Scenarios.
	MaxPhase1Scenarios int
}

// Result is the Synthesizer's output: the scenario pool, in emission
// order (Phase 1 scenarios first, then Phase 3's), and the
// classification of every question into covered, dead, or (on abort)
// still unreachable-but-unproven.
type Result struct {
	Pool []*Scenario

	// Dead lists questions proven unreachable.
	Dead []DeadQuestion

	// Reachable is every question that is not Dead: the coverage target
	// the Minimizer must hit for a non-partial plan.
	Reachable map[form.QuestionID]bool

	// Partial is true if the solver could not finish Phase 2 or Phase 3
	// (timeout, cancellation) before ctx's deadline. The pool returned
	// is still valid and usable, just not guaranteed complete.
	Partial bool
}

// Synthesize runs all three phases against f, using solver s (already
// primed with model's declared variables) to decide reachability and
// fill coverage gaps. The base validity expression must already be
// asserted on s by the caller (internal/engine), since it is shared
// across the whole form's lifetime, not just this call.
func Synthesize(ctx context.Context, f *form.Form, cls *classify.Result, vm *encode.ValueMap, model *encode.Model, s solve.Solver, budget Budget, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}

	if len(cls.TestVariables) == 0 {
		return trivialPlan(f, cls), nil
	}

	pool := phase1(f, cls, vm, budget.MaxPhase1Scenarios, log)

	uncovered, dead, err := coverageInventory(ctx, f, cls, model, s, pool, log)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &Result{Pool: pool, Dead: dead, Reachable: reachableSet(cls, dead), Partial: true}, nil
		}
		return nil, err
	}

	filled, err := gapFill(ctx, f, cls, vm, model, s, uncovered, log)
	pool = append(pool, filled...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &Result{Pool: pool, Dead: dead, Reachable: reachableSet(cls, dead), Partial: true}, nil
		}
		return nil, err
	}

	return &Result{Pool: pool, Dead: dead, Reachable: reachableSet(cls, dead)}, nil
}

func reachableSet(cls *classify.Result, dead []DeadQuestion) map[form.QuestionID]bool {
	deadIDs := make(map[form.QuestionID]bool, len(dead))
	for _, d := range dead {
		deadIDs[d.ID] = true
	}
	reachable := make(map[form.QuestionID]bool, len(cls.Universe))
	for _, id := range cls.Universe {
		if !deadIDs[id] {
			reachable[id] = true
		}
	}
	return reachable
}

// trivialPlan implements the "empty form / no test variables"
// case: a single scenario in which every unconditional question is
// visible, with no solver involvement at all.
func trivialPlan(f *form.Form, cls *classify.Result) *Result {
	visible := make(map[form.QuestionID]bool, f.Len())
	set := bitset.New(len(cls.Universe))
	for _, q := range f.Questions {
		visible[q.ID] = cls.AlwaysVisible[q.ID]
		if cls.AlwaysVisible[q.ID] {
			set = set.With(cls.Index[q.ID])
		}
	}
	scenario := &Scenario{
		Assignment: map[form.QuestionID]int{},
		Visible:    visible,
		VisibleSet: set,
		Source:     sourcePhase1,
	}
	return &Result{Pool: []*Scenario{scenario}, Reachable: reachableSet(cls, nil)}
}
