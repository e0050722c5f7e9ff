package encode

import (
	"testing"

	"github.com/gitrdm/formcoverage/internal/classify"
	"github.com/gitrdm/formcoverage/internal/form"
)

func q(id form.QuestionID, ordinal int, pred *form.Predicate, choices ...form.Choice) *form.Question {
	return &form.Question{ID: id, Ordinal: ordinal, Predicate: pred, Domain: form.Domain{Enumerated: choices}}
}

func buildClassified(t *testing.T, questions []*form.Question) (*form.Form, *classify.Result) {
	t.Helper()
	f := form.New("t", questions)
	if err := f.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cls, err := classify.Classify(f)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	return f, cls
}

func TestValueMapEnumeratedDomainSize(t *testing.T) {
	f, cls := buildClassified(t, []*form.Question{
		q("Q1", 1, nil, form.Choice{ID: "A", Encoding: 1}, form.Choice{ID: "B", Encoding: 2}),
		q("Q2", 2, form.EqualsPredicate("Q1", "A")),
	})
	vm, err := BuildValueMap(f, cls)
	if err != nil {
		t.Fatalf("build value map: %v", err)
	}
	if got := vm.DomainSize("Q1"); got != 2 {
		t.Errorf("expected domain size 2 for an enumerated two-choice question, got %d", got)
	}
	enc, ok := vm.Encode("Q1", "B")
	if !ok || enc != 2 {
		t.Errorf("expected B to encode to 2, got %d, ok=%v", enc, ok)
	}
}

func TestValueMapFreeFormLiteralsPlusOtherSlot(t *testing.T) {
	f, cls := buildClassified(t, []*form.Question{
		q("Q1", 1, nil),
		q("Q2", 2, form.OrPredicate(
			form.EqualsPredicate("Q1", "red"),
			form.EqualsPredicate("Q1", "blue"),
		)),
		q("Q3", 3, form.EqualsPredicate("Q1", "red")),
	})
	vm, err := BuildValueMap(f, cls)
	if err != nil {
		t.Fatalf("build value map: %v", err)
	}

	// Two distinct literals referenced ("red", "blue") plus the "other"
	// slot for an answer not mentioned anywhere.
	if got := vm.DomainSize("Q1"); got != 3 {
		t.Errorf("expected domain size 3 (2 literals + other), got %d", got)
	}

	red, ok := vm.Encode("Q1", "red")
	if !ok {
		t.Fatal("expected red to encode")
	}
	blue, ok := vm.Encode("Q1", "blue")
	if !ok {
		t.Fatal("expected blue to encode")
	}
	if red == blue || red == 0 || blue == 0 {
		t.Errorf("expected red and blue to get distinct nonzero encodings, got red=%d blue=%d", red, blue)
	}

	// "red" was seen before "blue" in ordinal/operand order, so it must
	// claim the lower encoding.
	if red != 1 || blue != 2 {
		t.Errorf("expected first-seen order red=1 blue=2, got red=%d blue=%d", red, blue)
	}
}

func TestValueMapUnknownLiteralDoesNotEncode(t *testing.T) {
	f, cls := buildClassified(t, []*form.Question{
		q("Q1", 1, nil, form.Choice{ID: "A", Encoding: 1}),
		q("Q2", 2, form.EqualsPredicate("Q1", "A")),
	})
	vm, err := BuildValueMap(f, cls)
	if err != nil {
		t.Fatalf("build value map: %v", err)
	}
	if _, ok := vm.Encode("Q1", "Z"); ok {
		t.Error("expected an unenumerated literal to fail to encode")
	}
}
