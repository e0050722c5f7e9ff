package synth

import (
	"log/slog"

	"github.com/gitrdm/formcoverage/internal/classify"
	"github.com/gitrdm/formcoverage/internal/encode"
	"github.com/gitrdm/formcoverage/internal/form"
	"github.com/gitrdm/formcoverage/internal/visibility"
)

// DefaultMaxPhase1Scenarios bounds Phase 1's branch-and-bound walk.
// Counts completed leaves rather than per-branch candidates, so the
// default is set high enough to cover forms with several independent
// gatekeeper chains without truncating typical inputs.
const DefaultMaxPhase1Scenarios = 2000

// phase1 performs branch-aware enumeration: walk
// cls.TopoOrder in order, branching over every nonzero domain value of
// a test variable found visible under the partial assignment built so
// far, and collapsing to the single value 0 when a test variable is
// currently invisible. Gatekeepers have no predicate and are therefore
// always visible wherever they fall in TopoOrder (which is ordinal
// order, so a gatekeeper may come after a variable it does not gate),
// so a single walk handles both "enumerate gatekeeper domains" and
// "descend the DAG": a gatekeeper is simply the case where
// Unconditional() is true, so every nonzero value is branched.
func phase1(f *form.Form, cls *classify.Result, vm *encode.ValueMap, maxScenarios int, log *slog.Logger) []*Scenario {
	if maxScenarios <= 0 {
		maxScenarios = DefaultMaxPhase1Scenarios
	}
	eval := visibility.New(f, cls, vm)

	var pool []*Scenario
	truncated := false

	assignment := make(map[form.QuestionID]int, len(cls.TopoOrder))
	var walk func(i int)
	walk = func(i int) {
		if truncated {
			return
		}
		if i == len(cls.TopoOrder) {
			s := newScenario(assignment, eval, cls, sourcePhase1)
			if !s.valid() {
				log.Warn("phase1 produced an invalid scenario, discarding", "assignment", s.Assignment)
				return
			}
			pool = append(pool, s)
			if len(pool) >= maxScenarios {
				truncated = true
				log.Warn("phase1 enumeration truncated by budget", "max_scenarios", maxScenarios)
			}
			return
		}

		id := cls.TopoOrder[i]
		if !eval.VisibleOne(id, assignment) {
			assignment[id] = 0
			walk(i + 1)
			delete(assignment, id)
			return
		}

		max := vm.DomainSize(id)
		for val := 1; val <= max; val++ {
			assignment[id] = val
			walk(i + 1)
			if truncated {
				delete(assignment, id)
				return
			}
		}
		delete(assignment, id)
	}
	walk(0)

	return pool
}
