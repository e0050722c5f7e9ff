package synth

import (
	"context"
	"testing"

	"github.com/gitrdm/formcoverage/internal/classify"
	"github.com/gitrdm/formcoverage/internal/encode"
	"github.com/gitrdm/formcoverage/internal/form"
	"github.com/gitrdm/formcoverage/internal/solve"
)

func build(t *testing.T, questions []*form.Question) (*form.Form, *classify.Result, *encode.ValueMap, *encode.Model, solve.Solver) {
	t.Helper()
	f := form.New("t", questions)
	if err := f.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cls, err := classify.Classify(f)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	vm, err := encode.BuildValueMap(f, cls)
	if err != nil {
		t.Fatalf("build value map: %v", err)
	}
	s := solve.NewBruteForceSolver()
	model, err := encode.Build(f, cls, vm, s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s.Assert(model.Validity)
	return f, cls, vm, model, s
}

func q(id form.QuestionID, ordinal int, pred *form.Predicate, choices ...form.Choice) *form.Question {
	return &form.Question{ID: id, Ordinal: ordinal, Predicate: pred, Domain: form.Domain{Enumerated: choices}}
}

func coverage(r *Result) map[form.QuestionID]bool {
	covered := make(map[form.QuestionID]bool)
	for _, s := range r.Pool {
		for id, ok := range s.Visible {
			if ok {
				covered[id] = true
			}
		}
	}
	return covered
}

// S1 — trivial: two unconditional questions, one scenario, full coverage.
func TestS1Trivial(t *testing.T) {
	f, cls, vm, model, s := build(t, []*form.Question{
		q("Q1", 1, nil),
		q("Q2", 2, nil),
	})
	r, err := Synthesize(context.Background(), f, cls, vm, model, s, Budget{}, nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(r.Pool) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(r.Pool))
	}
	cov := coverage(r)
	if !cov["Q1"] || !cov["Q2"] {
		t.Errorf("expected both questions covered, got %v", cov)
	}
}

// S2 — one gate: Q2 visible iff Q1=A.
func TestS2OneGate(t *testing.T) {
	f, cls, vm, model, s := build(t, []*form.Question{
		q("Q1", 1, nil, form.Choice{ID: "A", Encoding: 1}, form.Choice{ID: "B", Encoding: 2}),
		q("Q2", 2, form.EqualsPredicate("Q1", "A")),
	})
	r, err := Synthesize(context.Background(), f, cls, vm, model, s, Budget{}, nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	cov := coverage(r)
	if !cov["Q1"] || !cov["Q2"] {
		t.Errorf("expected full coverage, got %v", cov)
	}
	foundAVisibleQ2 := false
	foundBInvisibleQ2 := false
	for _, sc := range r.Pool {
		if sc.Assignment["Q1"] == 1 && sc.Visible["Q2"] {
			foundAVisibleQ2 = true
		}
		if sc.Assignment["Q1"] == 2 && !sc.Visible["Q2"] {
			foundBInvisibleQ2 = true
		}
	}
	if !foundAVisibleQ2 || !foundBInvisibleQ2 {
		t.Errorf("expected both Q1=A (Q2 visible) and Q1=B (Q2 invisible) branches, pool=%v", r.Pool)
	}
}

// S3 — chained: Q3 visible iff Q2=X, Q2 visible iff Q1=A.
func TestS3Chained(t *testing.T) {
	f, cls, vm, model, s := build(t, []*form.Question{
		q("Q1", 1, nil, form.Choice{ID: "A", Encoding: 1}, form.Choice{ID: "B", Encoding: 2}),
		q("Q2", 2, form.EqualsPredicate("Q1", "A"), form.Choice{ID: "X", Encoding: 1}, form.Choice{ID: "Y", Encoding: 2}),
		q("Q3", 3, form.EqualsPredicate("Q2", "X")),
	})
	r, err := Synthesize(context.Background(), f, cls, vm, model, s, Budget{}, nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	cov := coverage(r)
	for _, id := range []form.QuestionID{"Q1", "Q2", "Q3"} {
		if !cov[id] {
			t.Errorf("expected %s covered", id)
		}
	}
}

// S4 — disjunctive gap: Q3 visible iff Q1=2 AND Q2=2; Q4 visible iff
// Q1=2 AND Q2=1.
func TestS4DisjunctiveGap(t *testing.T) {
	f, cls, vm, model, s := build(t, []*form.Question{
		q("Q1", 1, nil, form.Choice{ID: "1", Encoding: 1}, form.Choice{ID: "2", Encoding: 2}),
		q("Q2", 2, nil, form.Choice{ID: "1", Encoding: 1}, form.Choice{ID: "2", Encoding: 2}),
		q("Q3", 3, form.AndPredicate(form.EqualsPredicate("Q1", "2"), form.EqualsPredicate("Q2", "2"))),
		q("Q4", 4, form.AndPredicate(form.EqualsPredicate("Q1", "2"), form.EqualsPredicate("Q2", "1"))),
	})
	r, err := Synthesize(context.Background(), f, cls, vm, model, s, Budget{}, nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	cov := coverage(r)
	for _, id := range []form.QuestionID{"Q1", "Q2", "Q3", "Q4"} {
		if !cov[id] {
			t.Errorf("expected %s covered, coverage=%v", id, cov)
		}
	}
}

// S5 — dead question: Q2's predicate can never hold for any value Q1
// can take (Q1=1 and Q1=2 simultaneously), so Q2 must be reported dead
// and excluded from the coverage target — generalized to
// a predicate shape that is unsatisfiable on its own terms rather than
// one referencing a literal outside the domain (which encode.Build
// rejects as a fatal encoding error, not a dead question).
func TestS5DeadQuestion(t *testing.T) {
	f, cls, vm, model, s := build(t, []*form.Question{
		q("Q1", 1, nil, form.Choice{ID: "1", Encoding: 1}, form.Choice{ID: "2", Encoding: 2}),
		q("Q2", 2, form.AndPredicate(
			form.EqualsPredicate("Q1", "1"),
			form.EqualsPredicate("Q1", "2"),
		)),
	})
	r, err := Synthesize(context.Background(), f, cls, vm, model, s, Budget{}, nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(r.Dead) != 1 || r.Dead[0].ID != "Q2" {
		t.Fatalf("expected Q2 reported dead, got %v", r.Dead)
	}
	if r.Reachable["Q2"] {
		t.Errorf("Q2 must not be in the reachable target set")
	}
	cov := coverage(r)
	if !cov["Q1"] {
		t.Errorf("expected Q1 covered")
	}
}

// S6 — deep chain requiring gap-fill: six levels, each gated on the
// previous taking a specific nonzero value. Minimized coverage needs
// the single deepest path; this test only checks that Synthesize
// reaches full coverage of the chain, leaving minimization to
// internal/minimize's own tests.
func TestS6DeepChainGapFill(t *testing.T) {
	mk := func(id, parent form.QuestionID, ordinal int) *form.Question {
		var pred *form.Predicate
		if parent != "" {
			pred = form.EqualsPredicate(parent, "go")
		}
		return q(id, ordinal, pred, form.Choice{ID: "go", Encoding: 1}, form.Choice{ID: "stop", Encoding: 2})
	}
	f, cls, vm, model, s := build(t, []*form.Question{
		mk("Q1", "", 1),
		mk("Q2", "Q1", 2),
		mk("Q3", "Q2", 3),
		mk("Q4", "Q3", 4),
		mk("Q5", "Q4", 5),
		mk("Q6", "Q5", 6),
	})
	r, err := Synthesize(context.Background(), f, cls, vm, model, s, Budget{}, nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	cov := coverage(r)
	for _, id := range []form.QuestionID{"Q1", "Q2", "Q3", "Q4", "Q5", "Q6"} {
		if !cov[id] {
			t.Errorf("expected %s covered, coverage=%v", id, cov)
		}
	}
	if len(r.Dead) != 0 {
		t.Errorf("expected no dead questions, got %v", r.Dead)
	}
}
