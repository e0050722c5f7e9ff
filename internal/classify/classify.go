// Package classify partitions a form's
// questions into test variables and data-collection questions, building
// the forward/reverse dependency graphs, and identifying gatekeepers.
package classify

import (
	"fmt"
	"sort"

	"github.com/gitrdm/formcoverage/internal/form"
)

// Graph holds the forward dependency edges (A -> B meaning "B's
// visibility predicate mentions A") and their reverse.
type Graph struct {
	Forward map[form.QuestionID][]form.QuestionID
	Reverse map[form.QuestionID][]form.QuestionID
}

func newGraph() *Graph {
	return &Graph{
		Forward: make(map[form.QuestionID][]form.QuestionID),
		Reverse: make(map[form.QuestionID][]form.QuestionID),
	}
}

func (g *Graph) addEdge(from, to form.QuestionID) {
	g.Forward[from] = append(g.Forward[from], to)
	g.Reverse[to] = append(g.Reverse[to], from)
}

// OutDegree returns how many questions id gates.
func (g *Graph) OutDegree(id form.QuestionID) int { return len(g.Forward[id]) }

// InDegree returns how many questions gate id.
func (g *Graph) InDegree(id form.QuestionID) int { return len(g.Reverse[id]) }

// Result is the Classifier's output.
type Result struct {
	Graph *Graph

	// TestVariables is the set of questions with out-degree >= 1.
	TestVariables map[form.QuestionID]bool

	// DataCollection is every question not in TestVariables.
	DataCollection map[form.QuestionID]bool

	// AlwaysVisible is the subset of questions (test variable or not) with
	// no visibility predicate.
	AlwaysVisible map[form.QuestionID]bool

	// Gatekeepers are test variables with in-degree 0, in ordinal order —
	// the roots of Phase 1 enumeration.
	Gatekeepers []form.QuestionID

	// TopoOrder lists the test variables in an order consistent with both
	// ordinal position and the forward graph: every gating variable
	// precedes every variable it gates.
	TopoOrder []form.QuestionID

	// Universe lists every question in the form, in ordinal order. Index
	// gives each question's position in Universe, used throughout
	// internal/synth and internal/minimize to place questions into a
	// bitset.Set without re-deriving the order repeatedly.
	Universe []form.QuestionID
	Index    map[form.QuestionID]int
}

// Error reports a fatal classification defect (cycle, unknown reference)
// naming the offending question.
type Error struct {
	QuestionID form.QuestionID
	Reason     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("classify: question %q: %s", e.QuestionID, e.Reason)
}

// Classify builds the dependency graphs and classification sets for f.
// f.Validate must have already passed — Classify re-derives the same
// "unknown reference" and ordinal checks while walking predicates (it
// needs the walk anyway to build edges) but does not repeat the choice
// encoding checks.
func Classify(f *form.Form) (*Result, error) {
	g := newGraph()
	alwaysVisible := make(map[form.QuestionID]bool)

	for _, qst := range f.Questions {
		if qst.Unconditional() {
			alwaysVisible[qst.ID] = true
			continue
		}
		for _, ref := range qst.Predicate.ReferencedQuestions() {
			parent, ok := f.Question(ref)
			if !ok {
				return nil, &Error{QuestionID: qst.ID, Reason: fmt.Sprintf("predicate references unknown question %q", ref)}
			}
			if parent.Ordinal >= qst.Ordinal {
				return nil, &Error{QuestionID: qst.ID, Reason: fmt.Sprintf("predicate references question %q which is not strictly earlier in ordinal position", ref)}
			}
			g.addEdge(ref, qst.ID)
		}
	}

	if cyc := firstCycle(f, g); cyc != "" {
		return nil, &Error{QuestionID: cyc, Reason: "participates in a cyclic visibility dependency"}
	}

	testVars := make(map[form.QuestionID]bool)
	dataCollection := make(map[form.QuestionID]bool)
	for _, qst := range f.Questions {
		if g.OutDegree(qst.ID) >= 1 {
			testVars[qst.ID] = true
		} else {
			dataCollection[qst.ID] = true
		}
	}

	var gatekeepers []form.QuestionID
	for _, qst := range f.Questions {
		if testVars[qst.ID] && g.InDegree(qst.ID) == 0 {
			gatekeepers = append(gatekeepers, qst.ID)
		}
	}
	sort.Slice(gatekeepers, func(i, j int) bool { return ordinalOf(f, gatekeepers[i]) < ordinalOf(f, gatekeepers[j]) })

	var topo []form.QuestionID
	for _, qst := range f.Questions {
		if testVars[qst.ID] {
			topo = append(topo, qst.ID)
		}
	}
	// f.Questions is already ordinal-ordered, and the "strictly earlier
	// ordinal" invariant every edge satisfies means ordinal order is
	// automatically a valid topological order: no extra sort is needed
	// beyond preserving input order, which f.Questions already gives us.

	universe := make([]form.QuestionID, 0, f.Len())
	index := make(map[form.QuestionID]int, f.Len())
	for i, qst := range f.Questions {
		universe = append(universe, qst.ID)
		index[qst.ID] = i
	}

	return &Result{
		Graph:          g,
		TestVariables:  testVars,
		DataCollection: dataCollection,
		AlwaysVisible:  alwaysVisible,
		Gatekeepers:    gatekeepers,
		TopoOrder:      topo,
		Universe:       universe,
		Index:          index,
	}, nil
}

func ordinalOf(f *form.Form, id form.QuestionID) int {
	q, _ := f.Question(id)
	return q.Ordinal
}

// firstCycle is a DFS-based safety net. The ordinal invariant already
// guarantees acyclicity (every edge points from a strictly earlier to a
// strictly later ordinal, so a cycle is impossible by construction), but
// this is validated defensively rather than assumed, with a DFS-based
// cycle check that runs regardless.
func firstCycle(f *form.Form, g *Graph) form.QuestionID {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[form.QuestionID]int, f.Len())
	var cycleAt form.QuestionID

	var visit func(form.QuestionID) bool
	visit = func(id form.QuestionID) bool {
		color[id] = gray
		for _, next := range g.Forward[id] {
			switch color[next] {
			case gray:
				cycleAt = next
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, qst := range f.Questions {
		if color[qst.ID] == white {
			if visit(qst.ID) {
				return cycleAt
			}
		}
	}
	return ""
}
