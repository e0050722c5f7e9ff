package solve

import (
	"context"
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// GiniSolver backs Solver with the gini SAT engine. It does not use
// gini's own incremental Test/Untest scoping; instead it keeps the
// asserted Exprs themselves in a scope stack and rebuilds a fresh
// gini.Gini from scratch on every Check, so a stale learned clause from
// a popped scope can never leak into a later query. This costs a full
// re-encode per Check in exchange for a base model that is provably
// identical to "declare vars, assert everything live, solve once" —
// the purity internal/synth's Phase 2 and Phase 3 queries depend on.
type GiniSolver struct {
	vars  []Var
	base  []Expr   // scope 0, never discarded
	scope [][]Expr // scope[i] holds what was asserted after the i-th Push

	lastModel *giniModel
}

// NewGiniSolver returns an empty GiniSolver with no declared variables
// and no assertions.
func NewGiniSolver() *GiniSolver {
	return &GiniSolver{}
}

func (s *GiniSolver) NewIntVar(label string, max int) Var {
	v := Var{id: len(s.vars), label: label, max: max}
	s.vars = append(s.vars, v)
	return v
}

func (s *GiniSolver) Assert(e Expr) {
	if len(s.scope) == 0 {
		s.base = append(s.base, e)
		return
	}
	top := len(s.scope) - 1
	s.scope[top] = append(s.scope[top], e)
}

func (s *GiniSolver) Push() {
	s.scope = append(s.scope, nil)
}

func (s *GiniSolver) Pop() {
	if len(s.scope) == 0 {
		panic("solve: Pop called with no open scope")
	}
	s.scope = s.scope[:len(s.scope)-1]
}

// Check re-encodes every declared variable and every live Expr into a
// fresh gini.Gini instance and solves it, respecting ctx's deadline via
// gini's GoSolve/Try cancellation path. A ctx that is already done is
// reported before any solving; a ctx with no deadline that is cancelled
// while gini is searching is not observed until the search ends.
func (s *GiniSolver) Check(ctx context.Context) (bool, Model, error) {
	s.lastModel = nil
	enc := newGiniEncoder(s.vars)

	for _, e := range s.base {
		enc.assertTop(e)
	}
	for _, scope := range s.scope {
		for _, e := range scope {
			enc.assertTop(e)
		}
	}

	sat, err := enc.solve(ctx)
	if err != nil {
		return false, nil, err
	}
	if !sat {
		return false, nil, nil
	}
	s.lastModel = enc.model()
	return true, s.lastModel, nil
}

// giniEncoder builds a one-hot boolean encoding of every declared int
// var and translates asserted Exprs into CNF via Tseitin-style gate
// clauses, introducing a fresh aux variable per And/Or/Not node.
type giniEncoder struct {
	g       *gini.Gini
	nextVar int // next free gini variable number, 1-based

	// oneHot[v.id][value] is the gini literal asserting v == value.
	oneHot [][]z.Lit

	trueLit z.Lit
}

func newGiniEncoder(vars []Var) *giniEncoder {
	g := gini.New()
	e := &giniEncoder{g: g, nextVar: 1}

	e.trueLit = e.freshLit()
	g.Add(e.trueLit)
	g.Add(0)

	e.oneHot = make([][]z.Lit, len(vars))
	for _, v := range vars {
		lits := make([]z.Lit, v.max+1)
		for val := 0; val <= v.max; val++ {
			lits[val] = e.freshLit()
		}
		e.oneHot[v.id] = lits

		// at-least-one
		for _, lit := range lits {
			g.Add(lit)
		}
		g.Add(0)
		// at-most-one, pairwise
		for i := 0; i < len(lits); i++ {
			for j := i + 1; j < len(lits); j++ {
				g.Add(lits[i].Not())
				g.Add(lits[j].Not())
				g.Add(0)
			}
		}
	}
	return e
}

func (e *giniEncoder) freshLit() z.Lit {
	v := z.Var(e.nextVar)
	e.nextVar++
	return v.Pos()
}

// assertTop asserts e as a top-level unit clause.
func (e *giniEncoder) assertTop(expr Expr) {
	lit := e.literalFor(expr)
	e.g.Add(lit)
	e.g.Add(0)
}

// literalFor returns a gini literal equivalent to expr, introducing
// Tseitin aux variables for the boolean gates. Eq/Neq need no aux
// variable: they resolve directly to a one-hot literal or its negation.
func (e *giniEncoder) literalFor(expr Expr) z.Lit {
	switch x := expr.(type) {
	case EqExpr:
		return e.oneHot[x.V.id][x.Value]
	case NeqExpr:
		return e.oneHot[x.V.id][x.Value].Not()
	case ConstExpr:
		if x.Value {
			return e.trueLit
		}
		return e.trueLit.Not()
	case NotExpr:
		return e.literalFor(x.Operand).Not()
	case AndExpr:
		return e.andGate(x.Operands)
	case OrExpr:
		return e.orGate(x.Operands)
	default:
		panic(fmt.Sprintf("solve: unknown Expr type %T", expr))
	}
}

// andGate introduces aux = AND(operands) with the standard Tseitin
// clauses: (aux -> each operand) and (all operands -> aux).
func (e *giniEncoder) andGate(operands []Expr) z.Lit {
	lits := make([]z.Lit, len(operands))
	for i, op := range operands {
		lits[i] = e.literalFor(op)
	}
	aux := e.freshLit()
	for _, lit := range lits {
		e.g.Add(aux.Not())
		e.g.Add(lit)
		e.g.Add(0)
	}
	e.g.Add(aux)
	for _, lit := range lits {
		e.g.Add(lit.Not())
	}
	e.g.Add(0)
	return aux
}

// orGate introduces aux = OR(operands), the dual of andGate.
func (e *giniEncoder) orGate(operands []Expr) z.Lit {
	lits := make([]z.Lit, len(operands))
	for i, op := range operands {
		lits[i] = e.literalFor(op)
	}
	aux := e.freshLit()
	for _, lit := range lits {
		e.g.Add(aux)
		e.g.Add(lit.Not())
		e.g.Add(0)
	}
	e.g.Add(aux.Not())
	for _, lit := range lits {
		e.g.Add(lit)
	}
	e.g.Add(0)
	return aux
}

// solve runs the encoded problem, respecting ctx's deadline if any via
// GoSolve's cancellable interface.
func (e *giniEncoder) solve(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		switch e.g.Solve() {
		case 1:
			return true, nil
		case -1:
			return false, nil
		default:
			return false, ctx.Err()
		}
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		return false, context.DeadlineExceeded
	}
	c := e.g.GoSolve()
	switch c.Try(remaining) {
	case 1:
		return true, nil
	case -1:
		return false, nil
	default:
		c.Stop()
		if err := ctx.Err(); err != nil {
			return false, err
		}
		return false, context.DeadlineExceeded
	}
}

func (e *giniEncoder) model() *giniModel {
	return &giniModel{encoder: e}
}

type giniModel struct {
	encoder *giniEncoder
}

// Value decodes v's assignment by finding the one-hot literal the
// solver set true. Exactly one is guaranteed true by the encoding's
// exactly-one constraint.
func (m *giniModel) Value(v Var) int {
	lits := m.encoder.oneHot[v.id]
	for val, lit := range lits {
		if m.encoder.g.Value(lit) {
			return val
		}
	}
	panic("solve: no one-hot literal set for variable " + v.label)
}
