// Package solve provides the small boolean/finite-domain constraint
// interface the rest of the engine programs against: Var handles for
// bounded integer variables, an Expr tree for the handful of relations
// visibility predicates compile down to, and a Solver that can push,
// pop, and check assumptions incrementally. internal/encode is the only
// caller that builds Exprs from Predicates; internal/synth's Phase 2 and
// Phase 3 are the only callers that Push/Pop/Check.
package solve

import (
	"context"
	"fmt"
)

// Var identifies a bounded integer variable within one Solver instance.
// Its zero value is never valid; NewIntVar is the only constructor.
type Var struct {
	id    int
	label string
	max   int
}

// ID returns the variable's Solver-assigned identity, stable across
// Push/Pop and across repeated Check calls on the same Solver.
func (v Var) ID() int { return v.id }

// Label returns the human-readable name NewIntVar was given, for
// diagnostics only.
func (v Var) Label() string { return v.label }

// Max returns the variable's declared domain upper bound; its domain is
// the integer range [0, Max()].
func (v Var) Max() int { return v.max }

func (v Var) String() string { return fmt.Sprintf("%s(0..%d)", v.label, v.max) }

// Expr is a boolean constraint over Vars. The concrete kinds below are
// the complete set the Encoder ever emits; there is no general
// arithmetic here, only equality tests and their boolean combination,
// which is all a visibility predicate ever needs.
type Expr interface {
	isExpr()
}

// EqExpr asserts that V is assigned exactly Value.
type EqExpr struct {
	V     Var
	Value int
}

// NeqExpr asserts that V is not assigned Value.
type NeqExpr struct {
	V     Var
	Value int
}

// AndExpr asserts that every operand holds.
type AndExpr struct{ Operands []Expr }

// OrExpr asserts that at least one operand holds.
type OrExpr struct{ Operands []Expr }

// NotExpr asserts that Operand does not hold.
type NotExpr struct{ Operand Expr }

// ConstExpr is a fixed truth value, used for predicates that reduce to
// a tautology or contradiction independent of any Var (an empty And is
// vacuously true, an empty Or is vacuously false).
type ConstExpr struct{ Value bool }

func (EqExpr) isExpr()    {}
func (NeqExpr) isExpr()   {}
func (AndExpr) isExpr()   {}
func (OrExpr) isExpr()    {}
func (NotExpr) isExpr()   {}
func (ConstExpr) isExpr() {}

// Eq builds an EqExpr.
func Eq(v Var, value int) Expr { return EqExpr{V: v, Value: value} }

// Neq builds a NeqExpr.
func Neq(v Var, value int) Expr { return NeqExpr{V: v, Value: value} }

// And builds an AndExpr, collapsing the empty case to a tautology.
func And(operands ...Expr) Expr {
	if len(operands) == 0 {
		return ConstExpr{Value: true}
	}
	return AndExpr{Operands: operands}
}

// Or builds an OrExpr, collapsing the empty case to a contradiction.
func Or(operands ...Expr) Expr {
	if len(operands) == 0 {
		return ConstExpr{Value: false}
	}
	return OrExpr{Operands: operands}
}

// Not builds a NotExpr.
func Not(operand Expr) Expr { return NotExpr{Operand: operand} }

// Const builds a ConstExpr.
func Const(value bool) Expr { return ConstExpr{Value: value} }

// Model reports the satisfying assignment found by the last successful
// Check call.
type Model interface {
	// Value returns v's assigned integer, valid only while the Solver
	// that produced this Model has not been asked to Check again.
	Value(v Var) int
}

// Solver is the incremental constraint interface the Synthesizer drives.
// A Solver's base scope (everything asserted before the first Push) is
// never discarded by Pop; Push opens a new scope of assertions that a
// matching Pop discards entirely.
type Solver interface {
	// NewIntVar declares a fresh bounded integer variable with domain
	// [0, max]. label is used only in diagnostics.
	NewIntVar(label string, max int) Var

	// Assert adds e to the current scope. It is asserted permanently if
	// no Push is currently open, or discarded on the matching Pop
	// otherwise.
	Assert(e Expr)

	// Push opens a new assertion scope.
	Push()

	// Pop discards every Expr asserted since the matching Push. Pop on a
	// Solver with no open scope panics: it signals a bug in the caller's
	// scope bookkeeping, not a runtime condition to recover from.
	Pop()

	// Check reports whether every Expr asserted across every live scope
	// is simultaneously satisfiable, and if so a Model witnessing it.
	// Check does not mutate committed variable declarations or the
	// scope stack; it may be called any number of times. ctx bounds how
	// long Check may search before giving up; a Check that is cancelled
	// or times out returns a nil Model and ctx.Err().
	Check(ctx context.Context) (bool, Model, error)
}
