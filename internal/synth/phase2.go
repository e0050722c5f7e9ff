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

// DeadQuestion reports a question proven unreachable: no assignment
// satisfies the validity model together with the question's own
// visibility expression. Predicate is carried (not just the id) so a
// caller can explain why it is unreachable, not just that it is.
type DeadQuestion struct {
	ID        form.QuestionID
	Predicate *form.Predicate
}

// coverageInventory implements Phase 2: for every
// question the Phase 1 pool left uncovered, ask the solver whether
// visible(Q) is satisfiable alongside the validity model. Reachable but
// uncovered questions are returned as the target set for Phase 3;
// unreachable ones are reported dead and removed from the coverage
// target entirely.
func coverageInventory(ctx context.Context, f *form.Form, cls *classify.Result, model *encode.Model, s solve.Solver, pool []*Scenario, log *slog.Logger) (uncovered map[form.QuestionID]bool, dead []DeadQuestion, err error) {
	covered := bitset.New(len(cls.Universe))
	for _, sc := range pool {
		covered = covered.Union(sc.VisibleSet)
	}

	uncovered = make(map[form.QuestionID]bool)
	for _, id := range cls.Universe {
		if covered.Has(cls.Index[id]) {
			continue
		}

		reachable, err := isReachable(ctx, s, model, id)
		if err != nil {
			return nil, nil, err
		}
		if !reachable {
			q, _ := f.Question(id)
			log.Info("question proven unreachable", "question", id)
			dead = append(dead, DeadQuestion{ID: id, Predicate: q.Predicate})
			continue
		}
		uncovered[id] = true
	}
	return uncovered, dead, nil
}

// isReachable asks whether validity AND visible(id) is satisfiable,
// using a push/pop scope so the speculative "force id visible"
// assumption never pollutes the base validity model other queries rely
// on, not leaking into later queries.
func isReachable(ctx context.Context, s solve.Solver, model *encode.Model, id form.QuestionID) (bool, error) {
	s.Push()
	defer s.Pop()
	s.Assert(model.Visible[id])
	sat, _, err := s.Check(ctx)
	return sat, err
}
