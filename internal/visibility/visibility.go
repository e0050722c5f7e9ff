// Package visibility implements the transitive visibility evaluation
// rule: a question is visible iff its own predicate holds AND every
// question that predicate references is itself visible. The
// Synthesizer uses it as a pure Go boolean, evaluated directly against
// a (partial) assignment with no solver round trip: Phase 1 to decide
// which variables to branch on, and Phases 1 and 3 to derive each new
// scenario's visible-set. The Encoder applies the same rule on its own when it
// builds solver expressions in encode.Build.
package visibility

import (
	"github.com/gitrdm/formcoverage/internal/classify"
	"github.com/gitrdm/formcoverage/internal/encode"
	"github.com/gitrdm/formcoverage/internal/form"
)

// Evaluator computes visible-sets for concrete assignments.
type Evaluator struct {
	form     *form.Form
	classify *classify.Result
	values   *encode.ValueMap
}

// New builds an Evaluator over f, using cls for the dependency structure
// and vm to resolve choice literals to encodings (including free-form
// test variables' synthesized domains).
func New(f *form.Form, cls *classify.Result, vm *encode.ValueMap) *Evaluator {
	return &Evaluator{form: f, classify: cls, values: vm}
}

// Visible returns, for every question in the form, whether it is visible
// under answers (a full or partial assignment of test-variable encodings;
// missing entries default to 0, "not answered"). Evaluation proceeds in
// ordinal order, which the acyclicity invariant guarantees is also a
// valid topological order, so each question's referenced parents have
// already been resolved by the time it is visited — one pass, no
// recursion needed despite the predicate tree itself being walked
// recursively per question.
func (e *Evaluator) Visible(answers map[form.QuestionID]int) map[form.QuestionID]bool {
	visible := make(map[form.QuestionID]bool, e.form.Len())
	encodeFn := e.values.AsFunc()

	for _, q := range e.form.Questions {
		if q.Unconditional() {
			visible[q.ID] = true
			continue
		}
		if !q.Predicate.Eval(answers, encodeFn) {
			visible[q.ID] = false
			continue
		}
		visible[q.ID] = e.allReferencedVisible(q.Predicate, visible)
	}
	return visible
}

// VisibleOne reports whether a single question is visible under answers,
// without computing the whole form's visible-set. Phase 1 uses it to test
// each test variable against the partial assignment built so far, and
// tests cross-check it against Visible's batch result.
func (e *Evaluator) VisibleOne(id form.QuestionID, answers map[form.QuestionID]int) bool {
	q, ok := e.form.Question(id)
	if !ok {
		return false
	}
	if q.Unconditional() {
		return true
	}
	encodeFn := e.values.AsFunc()
	if !q.Predicate.Eval(answers, encodeFn) {
		return false
	}
	for _, ref := range q.Predicate.ReferencedQuestions() {
		if !e.VisibleOne(ref, answers) {
			return false
		}
	}
	return true
}

func (e *Evaluator) allReferencedVisible(p *form.Predicate, resolved map[form.QuestionID]bool) bool {
	for _, ref := range p.ReferencedQuestions() {
		if vis, ok := resolved[ref]; !ok || !vis {
			return false
		}
	}
	return true
}
