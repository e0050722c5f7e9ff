package encode

import (
	"github.com/gitrdm/formcoverage/internal/classify"
	"github.com/gitrdm/formcoverage/internal/form"
	"github.com/gitrdm/formcoverage/internal/solve"
)

// Model is the encoded constraint model: one
// bounded solve.Var per test variable, one visibility solve.Expr per
// question (test variable or not), and the validity expression that
// must hold in every scenario the Synthesizer emits.
type Model struct {
	Vars     map[form.QuestionID]solve.Var
	Visible  map[form.QuestionID]solve.Expr
	Validity solve.Expr
}

// Build declares a solve.Var for every test variable on s and
// translates every question's visibility predicate into a solve.Expr,
// composing transitively: visible(Q) for a conditional
// Q is pred(Q) AND visible(parent) for every question pred(Q)
// references. Because classify.Classify guarantees a predicate only
// ever references an earlier-ordinal question, and any referenced
// question necessarily has out-degree >= 1 (a test variable), a single
// ordinal-order pass can reuse each parent's already-built Visible
// expression instead of re-deriving it — avoiding the expression-size
// blowup that naive recursive inlining would cause on a deep chain.
func Build(f *form.Form, cls *classify.Result, vm *ValueMap, s solve.Solver) (*Model, error) {
	m := &Model{
		Vars:    make(map[form.QuestionID]solve.Var, len(cls.TestVariables)),
		Visible: make(map[form.QuestionID]solve.Expr, f.Len()),
	}

	for _, id := range cls.Universe {
		if !cls.TestVariables[id] {
			continue
		}
		m.Vars[id] = s.NewIntVar(string(id), vm.DomainSize(id))
	}

	var implications []solve.Expr
	for _, q := range f.Questions {
		if q.Unconditional() {
			m.Visible[q.ID] = solve.Const(true)
		} else {
			predExpr, err := translate(q.Predicate, vm, m.Vars)
			if err != nil {
				return nil, err
			}
			operands := []solve.Expr{predExpr}
			for _, ref := range q.Predicate.ReferencedQuestions() {
				operands = append(operands, m.Visible[ref])
			}
			m.Visible[q.ID] = solve.And(operands...)
		}

		if v, ok := m.Vars[q.ID]; ok {
			implications = append(implications, solve.Or(solve.Eq(v, 0), m.Visible[q.ID]))
		}
	}
	m.Validity = solve.And(implications...)

	return m, nil
}

func translate(p *form.Predicate, vm *ValueMap, vars map[form.QuestionID]solve.Var) (solve.Expr, error) {
	switch p.Kind {
	case form.Equals, form.NotEquals:
		v, ok := vars[p.QuestionID]
		if !ok {
			return nil, &EncodingError{QuestionID: p.QuestionID, Reason: "predicate references a question with no encoded variable"}
		}
		enc, ok := vm.Encode(p.QuestionID, p.ChoiceID)
		if !ok {
			return nil, &EncodingError{QuestionID: p.QuestionID, Reason: "unknown choice literal " + p.ChoiceID}
		}
		if p.Kind == form.Equals {
			return solve.Eq(v, enc), nil
		}
		return solve.Neq(v, enc), nil

	case form.InSet:
		v, ok := vars[p.QuestionID]
		if !ok {
			return nil, &EncodingError{QuestionID: p.QuestionID, Reason: "predicate references a question with no encoded variable"}
		}
		operands := make([]solve.Expr, 0, len(p.ChoiceIDs))
		for _, c := range p.ChoiceIDs {
			enc, ok := vm.Encode(p.QuestionID, c)
			if !ok {
				return nil, &EncodingError{QuestionID: p.QuestionID, Reason: "unknown choice literal " + c}
			}
			operands = append(operands, solve.Eq(v, enc))
		}
		return solve.Or(operands...), nil

	case form.And, form.Or:
		operands := make([]solve.Expr, 0, len(p.Operands))
		for _, operand := range p.Operands {
			e, err := translate(operand, vm, vars)
			if err != nil {
				return nil, err
			}
			operands = append(operands, e)
		}
		if p.Kind == form.And {
			return solve.And(operands...), nil
		}
		return solve.Or(operands...), nil

	case form.Not:
		e, err := translate(p.Operands[0], vm, vars)
		if err != nil {
			return nil, err
		}
		return solve.Not(e), nil

	default:
		return nil, &EncodingError{Reason: "unsupported predicate kind"}
	}
}
