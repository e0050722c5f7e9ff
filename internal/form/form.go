// Package form defines the strongly-typed data model this engine operates
// on: questions, their enumerated or free-form answer domains, and the
// visibility predicates that gate them. A loosely-typed ingestion boundary
// (internal/formio) normalizes dynamic input into this shape once; every
// other package in the module only ever sees the types defined here.
package form

import (
	"fmt"
	"sort"
)

// QuestionID is a stable identifier, unique within a Form.
type QuestionID string

// Choice is a named option within an enumerated domain. Encoding is a
// positive, 1-based integer; encodings within one question's domain are
// distinct and form a contiguous [1..k] range. The value 0 is reserved
// across every domain for "unanswered / not visible" and is never a valid
// Choice encoding.
type Choice struct {
	ID       string
	Label    string
	Encoding int
}

// Domain describes a question's answer space. A question with Enumerated
// choices has a finite answer set; a free-form question has no declared
// choices and is only ever referenced by equality against literal strings
// appearing in other questions' predicates (see internal/encode for how
// that is bounded).
type Domain struct {
	Enumerated []Choice
	FreeForm   bool
}

// IsEnumerated reports whether d has a declared, finite choice set.
func (d Domain) IsEnumerated() bool { return !d.FreeForm && len(d.Enumerated) > 0 }

// ChoiceByID returns the choice with the given ID, if any.
func (d Domain) ChoiceByID(id string) (Choice, bool) {
	for _, c := range d.Enumerated {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// ChoiceByEncoding returns the choice with the given encoding, if any.
func (d Domain) ChoiceByEncoding(encoding int) (Choice, bool) {
	for _, c := range d.Enumerated {
		if c.Encoding == encoding {
			return c, true
		}
	}
	return Choice{}, false
}

// Question is one item of a Form. A Question with a nil Predicate is
// unconditionally visible.
type Question struct {
	ID        QuestionID
	Ordinal   int
	Label     string
	Domain    Domain
	Predicate *Predicate
}

// Unconditional reports whether the question has no visibility predicate.
func (q *Question) Unconditional() bool { return q.Predicate == nil }

// Form is an ordered collection of questions.
type Form struct {
	Name      string
	Questions []*Question

	byID map[QuestionID]*Question
}

// New builds a Form from questions, indexing them by ID. It does not
// validate; call Validate separately so callers can choose when to pay for
// the full predicate-tree walk.
func New(name string, questions []*Question) *Form {
	sorted := make([]*Question, len(questions))
	copy(sorted, questions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Ordinal < sorted[j].Ordinal })

	f := &Form{Name: name, Questions: sorted, byID: make(map[QuestionID]*Question, len(sorted))}
	for _, q := range sorted {
		f.byID[q.ID] = q
	}
	return f
}

// Question returns the question with the given ID, if present.
func (f *Form) Question(id QuestionID) (*Question, bool) {
	q, ok := f.byID[id]
	return q, ok
}

// Len returns the number of questions in the form.
func (f *Form) Len() int { return len(f.Questions) }

// ValidationError reports a fatal defect in a Form, naming the offending
// question so a caller can surface it without re-deriving the location.
type ValidationError struct {
	QuestionID QuestionID
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form: question %q: %s", e.QuestionID, e.Reason)
}

// Validate checks the structural invariants placed on the data
// model: unique identifiers, contiguous [1..k] choice encodings, and that
// every predicate leaf references a question with a strictly earlier
// ordinal. It does not build the dependency graph or detect cycles beyond
// what the ordinal invariant already rules out — that is classify.Classify's
// job, which repeats the unknown-identifier and ordinal checks while it
// builds edges.
func (f *Form) Validate() error {
	seen := make(map[QuestionID]bool, len(f.Questions))
	for _, q := range f.Questions {
		if seen[q.ID] {
			return &ValidationError{QuestionID: q.ID, Reason: "duplicate question identifier"}
		}
		seen[q.ID] = true

		if q.Domain.IsEnumerated() {
			if err := validateContiguousEncodings(q); err != nil {
				return err
			}
		}

		if q.Predicate != nil {
			if err := validatePredicateOrdinals(q, q.Predicate, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateContiguousEncodings(q *Question) error {
	seen := make(map[int]bool, len(q.Domain.Enumerated))
	max := 0
	for _, c := range q.Domain.Enumerated {
		if c.Encoding < 1 {
			return &ValidationError{QuestionID: q.ID, Reason: fmt.Sprintf("choice %q has non-positive encoding %d", c.ID, c.Encoding)}
		}
		if seen[c.Encoding] {
			return &ValidationError{QuestionID: q.ID, Reason: fmt.Sprintf("duplicate choice encoding %d", c.Encoding)}
		}
		seen[c.Encoding] = true
		if c.Encoding > max {
			max = c.Encoding
		}
	}
	for i := 1; i <= max; i++ {
		if !seen[i] {
			return &ValidationError{QuestionID: q.ID, Reason: fmt.Sprintf("choice encodings are not contiguous: missing %d", i)}
		}
	}
	return nil
}

func validatePredicateOrdinals(owner *Question, p *Predicate, f *Form) error {
	switch p.Kind {
	case Equals, NotEquals, InSet:
		ref, ok := f.Question(p.QuestionID)
		if !ok {
			return &ValidationError{QuestionID: owner.ID, Reason: fmt.Sprintf("predicate references unknown question %q", p.QuestionID)}
		}
		if ref.Ordinal >= owner.Ordinal {
			return &ValidationError{QuestionID: owner.ID, Reason: fmt.Sprintf("predicate references question %q, whose ordinal %d is not strictly earlier than %d", p.QuestionID, ref.Ordinal, owner.Ordinal)}
		}
		return nil
	case And, Or:
		for _, operand := range p.Operands {
			if err := validatePredicateOrdinals(owner, operand, f); err != nil {
				return err
			}
		}
		return nil
	case Not:
		if len(p.Operands) != 1 {
			return &ValidationError{QuestionID: owner.ID, Reason: "not predicate must have exactly one operand"}
		}
		return validatePredicateOrdinals(owner, p.Operands[0], f)
	default:
		return &ValidationError{QuestionID: owner.ID, Reason: fmt.Sprintf("unsupported predicate kind %v", p.Kind)}
	}
}
