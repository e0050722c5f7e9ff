package form

// PredicateKind names the recognized shapes of a visibility predicate.
type PredicateKind int

const (
	// Equals holds when QuestionID's answer equals ChoiceID.
	Equals PredicateKind = iota
	// NotEquals holds when QuestionID's answer does not equal ChoiceID.
	NotEquals
	// InSet holds when QuestionID's answer is one of ChoiceIDs.
	InSet
	// And holds when every operand holds.
	And
	// Or holds when any operand holds.
	Or
	// Not holds when its single operand does not hold.
	Not
)

func (k PredicateKind) String() string {
	switch k {
	case Equals:
		return "equals"
	case NotEquals:
		return "not-equals"
	case InSet:
		return "in-set"
	case And:
		return "and"
	case Or:
		return "or"
	case Not:
		return "not"
	default:
		return "unknown"
	}
}

// Predicate is a node in a visibility-condition tree. Leaves (Equals,
// NotEquals, InSet) reference a (QuestionID, choice) pair; interior nodes
// (And, Or, Not) combine operands.
type Predicate struct {
	Kind       PredicateKind
	QuestionID QuestionID
	ChoiceID   string
	ChoiceIDs  []string
	Operands   []*Predicate
}

// EqualsPredicate builds a leaf asserting questionID's answer is choiceID.
func EqualsPredicate(questionID QuestionID, choiceID string) *Predicate {
	return &Predicate{Kind: Equals, QuestionID: questionID, ChoiceID: choiceID}
}

// NotEqualsPredicate builds a leaf asserting questionID's answer is not choiceID.
func NotEqualsPredicate(questionID QuestionID, choiceID string) *Predicate {
	return &Predicate{Kind: NotEquals, QuestionID: questionID, ChoiceID: choiceID}
}

// InSetPredicate builds a leaf asserting questionID's answer is one of choiceIDs.
func InSetPredicate(questionID QuestionID, choiceIDs ...string) *Predicate {
	return &Predicate{Kind: InSet, QuestionID: questionID, ChoiceIDs: choiceIDs}
}

// AndPredicate conjoins operands.
func AndPredicate(operands ...*Predicate) *Predicate {
	return &Predicate{Kind: And, Operands: operands}
}

// OrPredicate disjoins operands.
func OrPredicate(operands ...*Predicate) *Predicate {
	return &Predicate{Kind: Or, Operands: operands}
}

// NotPredicate negates operand.
func NotPredicate(operand *Predicate) *Predicate {
	return &Predicate{Kind: Not, Operands: []*Predicate{operand}}
}

// ReferencedQuestions returns, in first-seen order, every question ID this
// predicate tree's leaves mention. Used by classify.Classify to build
// dependency edges without a second tree-shaped representation.
func (p *Predicate) ReferencedQuestions() []QuestionID {
	var out []QuestionID
	seen := make(map[QuestionID]bool)
	var walk func(*Predicate)
	walk = func(n *Predicate) {
		if n == nil {
			return
		}
		switch n.Kind {
		case Equals, NotEquals, InSet:
			if !seen[n.QuestionID] {
				seen[n.QuestionID] = true
				out = append(out, n.QuestionID)
			}
		case And, Or, Not:
			for _, operand := range n.Operands {
				walk(operand)
			}
		}
	}
	walk(p)
	return out
}

// Eval evaluates the predicate's own comparison/boolean structure against
// a flat answer assignment (test variable ID -> chosen encoding, 0 meaning
// "not answered"). Eval does NOT account for the transitive visibility of
// referenced questions — that composition lives in internal/visibility,
// which is what the Synthesizer actually calls (the Encoder composes the
// same rule into solver expressions itself). Eval is exposed because it
// is useful on its own for testing and because internal/visibility is
// built directly on top of it.
func (p *Predicate) Eval(answers map[QuestionID]int, encode func(QuestionID, string) (int, bool)) bool {
	switch p.Kind {
	case Equals:
		enc, ok := encode(p.QuestionID, p.ChoiceID)
		if !ok {
			return false
		}
		return answers[p.QuestionID] == enc
	case NotEquals:
		enc, ok := encode(p.QuestionID, p.ChoiceID)
		if !ok {
			return false
		}
		return answers[p.QuestionID] != enc
	case InSet:
		got := answers[p.QuestionID]
		for _, choiceID := range p.ChoiceIDs {
			enc, ok := encode(p.QuestionID, choiceID)
			if ok && got == enc {
				return true
			}
		}
		return false
	case And:
		for _, operand := range p.Operands {
			if !operand.Eval(answers, encode) {
				return false
			}
		}
		return true
	case Or:
		for _, operand := range p.Operands {
			if operand.Eval(answers, encode) {
				return true
			}
		}
		return false
	case Not:
		return !p.Operands[0].Eval(answers, encode)
	default:
		return false
	}
}
