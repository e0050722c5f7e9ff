// Package synth produces a pool of valid
// scenarios in three phases — branch-aware enumeration over gatekeeper
// variables, a coverage inventory over the resulting pool, and a
// solver-driven gap fill for whatever the inventory still leaves
// uncovered.
package synth

import (
	"sort"

	"github.com/gitrdm/formcoverage/internal/bitset"
	"github.com/gitrdm/formcoverage/internal/classify"
	"github.com/gitrdm/formcoverage/internal/form"
	"github.com/gitrdm/formcoverage/internal/visibility"
)

// Scenario is a total assignment of every test variable to a value in
// its encoded domain, together with the derived visible-set.
type Scenario struct {
	// Assignment maps every test variable to its assigned value (0
	// meaning "not answered / not visible").
	Assignment map[form.QuestionID]int

	// Visible reports, per question, whether it is visible under
	// Assignment.
	Visible map[form.QuestionID]bool

	// VisibleSet is Visible encoded as a bitset over cls.Index, for the
	// Minimizer's greedy-cover arithmetic.
	VisibleSet bitset.Set

	// Source records which phase produced this scenario, for
	// diagnostics and for deterministic ordering
	// (Phase 1 scenarios precede Phase 3 scenarios).
	Source string
}

const (
	sourcePhase1 = "phase1"
	sourcePhase3 = "phase3"
)

// newScenario evaluates assignment's visible-set with eval and builds
// the resulting Scenario, including its bitset encoding.
func newScenario(assignment map[form.QuestionID]int, eval *visibility.Evaluator, cls *classify.Result, source string) *Scenario {
	visible := eval.Visible(assignment)
	set := bitset.New(len(cls.Universe))
	for id, ok := range visible {
		if ok {
			set = set.With(cls.Index[id])
		}
	}
	// Assignment is retained by reference in Phase 1's recursive
	// backtracking, so each leaf must own a stable copy.
	frozen := make(map[form.QuestionID]int, len(assignment))
	for k, v := range assignment {
		frozen[k] = v
	}
	return &Scenario{Assignment: frozen, Visible: visible, VisibleSet: set, Source: source}
}

// valid reports whether s satisfies the scenario-validity invariant
// every test variable assigned a nonzero value must have
// its own question visible. This is Phase 1's safety net: the
// branching logic that builds s should make this impossible to
// violate, so a failure here signals a bug in the evaluator or the
// branching walk, not a normal runtime condition.
func (s *Scenario) valid() bool {
	for id, val := range s.Assignment {
		if val != 0 && !s.Visible[id] {
			return false
		}
	}
	return true
}

// NonzeroCount returns how many test variables s assigns a nonzero
// value — the Minimizer's tie-break metric (fewer nonzero assignments
// is simpler for a human tester to execute).
func (s *Scenario) NonzeroCount() int {
	n := 0
	for _, v := range s.Assignment {
		if v != 0 {
			n++
		}
	}
	return n
}

// sortedQuestionIDs returns ids sorted by ordinal-consistent bitset
// index, so that gapFill builds each Phase 3 query in a deterministic
// order.
func sortedQuestionIDs(ids map[form.QuestionID]bool, cls *classify.Result) []form.QuestionID {
	out := make([]form.QuestionID, 0, len(ids))
	for id, ok := range ids {
		if ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return cls.Index[out[i]] < cls.Index[out[j]] })
	return out
}
