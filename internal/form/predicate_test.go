package form

import "testing"

func encoderFor(f *Form) func(QuestionID, string) (int, bool) {
	return func(id QuestionID, choiceID string) (int, bool) {
		q, ok := f.Question(id)
		if !ok {
			return 0, false
		}
		c, ok := q.Domain.ChoiceByID(choiceID)
		if !ok {
			return 0, false
		}
		return c.Encoding, true
	}
}

func twoChoiceForm() *Form {
	q1 := &Question{
		ID: "Q1", Ordinal: 1,
		Domain: Domain{Enumerated: []Choice{{ID: "A", Encoding: 1}, {ID: "B", Encoding: 2}}},
	}
	return New("t", []*Question{q1})
}

func TestEqualsEval(t *testing.T) {
	f := twoChoiceForm()
	enc := encoderFor(f)
	p := EqualsPredicate("Q1", "A")

	if !p.Eval(map[QuestionID]int{"Q1": 1}, enc) {
		t.Error("expected Q1=A to satisfy equals(Q1,A)")
	}
	if p.Eval(map[QuestionID]int{"Q1": 2}, enc) {
		t.Error("expected Q1=B to not satisfy equals(Q1,A)")
	}
}

func TestNotEqualsAndInSet(t *testing.T) {
	f := twoChoiceForm()
	enc := encoderFor(f)

	ne := NotEqualsPredicate("Q1", "A")
	if ne.Eval(map[QuestionID]int{"Q1": 1}, enc) {
		t.Error("Q1=A should fail not-equals(Q1,A)")
	}
	if !ne.Eval(map[QuestionID]int{"Q1": 2}, enc) {
		t.Error("Q1=B should satisfy not-equals(Q1,A)")
	}

	in := InSetPredicate("Q1", "A", "B")
	if !in.Eval(map[QuestionID]int{"Q1": 1}, enc) || !in.Eval(map[QuestionID]int{"Q1": 2}, enc) {
		t.Error("in-set(Q1,{A,B}) should hold for both encodings")
	}
	if in.Eval(map[QuestionID]int{"Q1": 0}, enc) {
		t.Error("in-set should not hold for the unanswered value 0")
	}
}

func TestBooleanCombinators(t *testing.T) {
	f := twoChoiceForm()
	enc := encoderFor(f)
	answers := map[QuestionID]int{"Q1": 1}

	and := AndPredicate(EqualsPredicate("Q1", "A"), EqualsPredicate("Q1", "B"))
	if and.Eval(answers, enc) {
		t.Error("conjunction of contradictory equalities must be false")
	}

	or := OrPredicate(EqualsPredicate("Q1", "A"), EqualsPredicate("Q1", "B"))
	if !or.Eval(answers, enc) {
		t.Error("disjunction should hold when either operand holds")
	}

	not := NotPredicate(EqualsPredicate("Q1", "A"))
	if not.Eval(answers, enc) {
		t.Error("negation of a true predicate must be false")
	}
}

func TestReferencedQuestionsDedupesAndPreservesOrder(t *testing.T) {
	p := AndPredicate(
		EqualsPredicate("Q1", "A"),
		OrPredicate(EqualsPredicate("Q2", "X"), NotEqualsPredicate("Q1", "B")),
	)
	got := p.ReferencedQuestions()
	want := []QuestionID{"Q1", "Q2"}
	if len(got) != len(want) {
		t.Fatalf("ReferencedQuestions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ReferencedQuestions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
