// Package minimize reduces a scenario pool to the smallest subset (by
// the classical H_n-approximation greedy set cover, not exact
// minimization) whose union still covers every reachable question.
package minimize

import (
	"github.com/gitrdm/formcoverage/internal/bitset"
	"github.com/gitrdm/formcoverage/internal/classify"
	"github.com/gitrdm/formcoverage/internal/form"
	"github.com/gitrdm/formcoverage/internal/synth"
)

// Selected is one scenario chosen by the greedy cover, annotated with
// what it newly covered at the moment it was chosen.
type Selected struct {
	Scenario     *synth.Scenario
	NewlyCovered []form.QuestionID
}

// Run selects the minimal-effort subset of pool whose coverage equals
// target, using classify.Result's Index to drive the bitset arithmetic
// the greedy loop needs. Scenarios are considered in pool's order;
// ties are broken first by fewest nonzero test-variable assignments,
// then by pool order.
func Run(pool []*synth.Scenario, target map[form.QuestionID]bool, cls *classify.Result) []Selected {
	targetSet := bitset.New(len(cls.Universe))
	for id, ok := range target {
		if ok {
			targetSet = targetSet.With(cls.Index[id])
		}
	}

	uncovered := targetSet
	remaining := append([]*synth.Scenario(nil), pool...)
	var selected []Selected

	for !uncovered.IsEmpty() {
		bestIdx := -1
		bestGain := 0
		for i, s := range remaining {
			if s == nil {
				continue
			}
			gain := s.VisibleSet.IntersectCount(uncovered)
			if gain == 0 {
				continue
			}
			if bestIdx == -1 || gain > bestGain ||
				(gain == bestGain && s.NonzeroCount() < remaining[bestIdx].NonzeroCount()) {
				bestIdx = i
				bestGain = gain
			}
		}
		if bestIdx == -1 {
			// No remaining scenario covers anything still uncovered:
			// the target includes a question no pool scenario ever
			// marked visible. Stop rather than loop forever; the
			// caller (internal/engine) reports the shortfall.
			break
		}

		chosen := remaining[bestIdx]
		newlyCovered := bitsetToIDs(chosen.VisibleSet.Intersect(uncovered), cls)
		selected = append(selected, Selected{Scenario: chosen, NewlyCovered: newlyCovered})
		uncovered = uncovered.Subtract(chosen.VisibleSet)
		remaining[bestIdx] = nil
	}

	return selected
}

func bitsetToIDs(set bitset.Set, cls *classify.Result) []form.QuestionID {
	var out []form.QuestionID
	set.Each(func(idx int) {
		out = append(out, cls.Universe[idx])
	})
	return out
}
