package synth

import (
	"context"
	"log/slog"

	"github.com/gitrdm/formcoverage/internal/classify"
	"github.com/gitrdm/formcoverage/internal/encode"
	"github.com/gitrdm/formcoverage/internal/form"
	"github.com/gitrdm/formcoverage/internal/solve"
	"github.com/gitrdm/formcoverage/internal/visibility"
)

// gapFill implements Phase 3: while U (questions proven
// reachable by Phase 2 but not yet covered by any scenario) is
// nonempty, ask the solver for a model satisfying validity AND "at
// least one member of U is visible", turn that model into a scenario,
// and shrink U by whatever the new scenario covers. Each iteration
// removes at least one member of U by construction, so the loop is
// bounded by |U|.
func gapFill(ctx context.Context, f *form.Form, cls *classify.Result, vm *encode.ValueMap, model *encode.Model, s solve.Solver, uncovered map[form.QuestionID]bool, log *slog.Logger) ([]*Scenario, error) {
	eval := visibility.New(f, cls, vm)
	var filled []*Scenario

	for len(uncovered) > 0 {
		ids := sortedQuestionIDs(uncovered, cls)
		target := make([]solve.Expr, 0, len(ids))
		for _, id := range ids {
			target = append(target, model.Visible[id])
		}

		s.Push()
		s.Assert(solve.Or(target...))
		sat, m, err := s.Check(ctx)
		if err != nil {
			s.Pop()
			return filled, err
		}
		if !sat {
			// Should not occur: Phase 2 already proved every member of
			// U reachable in isolation, and the query only asks for at
			// least one of them. If it does happen, the loop logs a
			// warning and stops; the remaining members are not added to
			// Dead, so they stay in the reachable target and the
			// minimized plan leaves them uncovered.
			log.Warn("gap fill found no model for remaining uncovered questions", "remaining", len(uncovered))
			s.Pop()
			break
		}

		assignment := make(map[form.QuestionID]int, len(model.Vars))
		for id, v := range model.Vars {
			assignment[id] = m.Value(v)
		}
		s.Pop()

		scenario := newScenario(assignment, eval, cls, sourcePhase3)
		if !scenario.valid() {
			log.Warn("gap fill produced an invalid scenario, discarding", "assignment", scenario.Assignment)
			break
		}

		before := len(uncovered)
		for id := range uncovered {
			if scenario.Visible[id] {
				delete(uncovered, id)
			}
		}
		if len(uncovered) == before {
			log.Warn("gap fill scenario covered none of the target set, stopping to avoid an infinite loop")
			break
		}

		filled = append(filled, scenario)
	}

	return filled, nil
}
