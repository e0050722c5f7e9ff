// Package encode assigns each test variable a bounded integer domain
// and translates visibility predicates into constraint-solver
// expressions.
package encode

import (
	"fmt"

	"github.com/gitrdm/formcoverage/internal/classify"
	"github.com/gitrdm/formcoverage/internal/form"
)

// ValueMap resolves a (question, choice-literal) pair to its encoded
// integer, for both enumerated test variables (delegating to the
// question's declared Domain) and free-form test variables (whose
// encoding is derived here from the literals that actually appear in
// other questions' predicates: one
// slot per distinct literal, plus one "other" slot).
type ValueMap struct {
	form       *form.Form
	freeForm   map[form.QuestionID]map[string]int // literal -> encoding
	domainSize map[form.QuestionID]int            // max valid nonzero encoding (k)
}

// BuildValueMap scans every predicate leaf in f and assigns free-form test
// variables their bounded domains. Enumerated test variables need no
// scanning; their domain size is just len(Domain.Enumerated).
func BuildValueMap(f *form.Form, cls *classify.Result) (*ValueMap, error) {
	vm := &ValueMap{
		form:       f,
		freeForm:   make(map[form.QuestionID]map[string]int),
		domainSize: make(map[form.QuestionID]int),
	}

	for id := range cls.TestVariables {
		q, _ := f.Question(id)
		if q.Domain.IsEnumerated() {
			vm.domainSize[id] = len(q.Domain.Enumerated)
		}
	}

	// First-seen order across questions (already ordinal-sorted by
	// form.New) then operand order within each predicate tree, so the
	// resulting encoding is deterministic.
	for _, q := range f.Questions {
		if q.Predicate == nil {
			continue
		}
		walkLeaves(q.Predicate, func(refID form.QuestionID, literal string) {
			ref, ok := f.Question(refID)
			if !ok || ref.Domain.IsEnumerated() {
				return
			}
			bucket, ok := vm.freeForm[refID]
			if !ok {
				bucket = make(map[string]int)
				vm.freeForm[refID] = bucket
			}
			if _, exists := bucket[literal]; !exists {
				bucket[literal] = len(bucket) + 1
			}
		})
	}
	for id, bucket := range vm.freeForm {
		// +1 for the "other" slot: a free-form answer not mentioned by
		// any predicate, distinct from every literal's own encoding and
		// from 0 (not answered / not visible).
		vm.domainSize[id] = len(bucket) + 1
	}

	return vm, nil
}

func walkLeaves(p *form.Predicate, visit func(refID form.QuestionID, literal string)) {
	switch p.Kind {
	case form.Equals, form.NotEquals:
		visit(p.QuestionID, p.ChoiceID)
	case form.InSet:
		for _, c := range p.ChoiceIDs {
			visit(p.QuestionID, c)
		}
	case form.And, form.Or, form.Not:
		for _, operand := range p.Operands {
			walkLeaves(operand, visit)
		}
	}
}

// DomainSize returns the number of nonzero values in id's encoded domain
// (so the full domain, 0 included, is [0, DomainSize(id)]).
func (vm *ValueMap) DomainSize(id form.QuestionID) int { return vm.domainSize[id] }

// Encode resolves a choice literal to its encoded integer.
func (vm *ValueMap) Encode(id form.QuestionID, literal string) (int, bool) {
	q, ok := vm.form.Question(id)
	if !ok {
		return 0, false
	}
	if q.Domain.IsEnumerated() {
		c, ok := q.Domain.ChoiceByID(literal)
		if !ok {
			return 0, false
		}
		return c.Encoding, true
	}
	bucket, ok := vm.freeForm[id]
	if !ok {
		return 0, false
	}
	enc, ok := bucket[literal]
	return enc, ok
}

// AsFunc adapts Encode to the signature form.Predicate.Eval expects.
func (vm *ValueMap) AsFunc() func(form.QuestionID, string) (int, bool) {
	return vm.Encode
}

// EncodingError reports a predicate the Encoder could not translate.
type EncodingError struct {
	QuestionID form.QuestionID
	Reason     string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode: question %q: %s", e.QuestionID, e.Reason)
}
