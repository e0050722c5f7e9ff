package solve

import "context"

// BruteForceSolver is an exhaustive, dependency-free Solver used only in
// tests that want to check synth's phase logic against a constraint
// backend whose behavior is trivial to reason about by inspection,
// independent of GiniSolver's CNF encoding. It is never used by
// internal/engine outside tests.
type BruteForceSolver struct {
	vars  []Var
	base  []Expr
	scope [][]Expr
}

// NewBruteForceSolver returns an empty BruteForceSolver.
func NewBruteForceSolver() *BruteForceSolver {
	return &BruteForceSolver{}
}

func (s *BruteForceSolver) NewIntVar(label string, max int) Var {
	v := Var{id: len(s.vars), label: label, max: max}
	s.vars = append(s.vars, v)
	return v
}

func (s *BruteForceSolver) Assert(e Expr) {
	if len(s.scope) == 0 {
		s.base = append(s.base, e)
		return
	}
	top := len(s.scope) - 1
	s.scope[top] = append(s.scope[top], e)
}

func (s *BruteForceSolver) Push() { s.scope = append(s.scope, nil) }

func (s *BruteForceSolver) Pop() {
	if len(s.scope) == 0 {
		panic("solve: Pop called with no open scope")
	}
	s.scope = s.scope[:len(s.scope)-1]
}

// Check enumerates every assignment in the cartesian product of the
// declared variables' domains until it finds one satisfying every live
// Expr, or exhausts the space. This is exponential in len(vars) and is
// only ever exercised against the small forms unit tests construct.
func (s *BruteForceSolver) Check(ctx context.Context) (bool, Model, error) {
	assignment := make([]int, len(s.vars))
	exprs := s.liveExprs()

	var assign func(i int) bool
	assign = func(i int) bool {
		if i == len(s.vars) {
			for _, e := range exprs {
				if !evalExpr(e, assignment) {
					return false
				}
			}
			return true
		}
		for val := 0; val <= s.vars[i].max; val++ {
			assignment[i] = val
			if assign(i + 1) {
				return true
			}
		}
		return false
	}

	if err := ctx.Err(); err != nil {
		return false, nil, err
	}
	if !assign(0) {
		return false, nil, nil
	}
	model := &bruteForceModel{assignment: append([]int(nil), assignment...)}
	return true, model, nil
}

func (s *BruteForceSolver) liveExprs() []Expr {
	all := append([]Expr(nil), s.base...)
	for _, scope := range s.scope {
		all = append(all, scope...)
	}
	return all
}

func evalExpr(e Expr, assignment []int) bool {
	switch x := e.(type) {
	case EqExpr:
		return assignment[x.V.id] == x.Value
	case NeqExpr:
		return assignment[x.V.id] != x.Value
	case ConstExpr:
		return x.Value
	case NotExpr:
		return !evalExpr(x.Operand, assignment)
	case AndExpr:
		for _, op := range x.Operands {
			if !evalExpr(op, assignment) {
				return false
			}
		}
		return true
	case OrExpr:
		for _, op := range x.Operands {
			if evalExpr(op, assignment) {
				return true
			}
		}
		return false
	default:
		panic("solve: unknown Expr type in BruteForceSolver")
	}
}

type bruteForceModel struct {
	assignment []int
}

func (m *bruteForceModel) Value(v Var) int { return m.assignment[v.id] }
