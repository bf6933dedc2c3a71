package ast

import (
	"github.com/sablelang/sable/internal/diagnostics"
	"github.com/sablelang/sable/internal/token"
)

// Response is the per-node resolution status. Done means "nothing more for
// this node to do right now"; Loop asks the direct parent to stop and retry
// on the next pass. A node that merely needs another whole-AST pass calls
// Resolver.WholeAgain and still returns Done so its siblings make progress.
type Response int

const (
	Done Response = iota
	Loop
)

// Resolver is the view of the fixed-point driver that nodes see during
// Resolve. It is implemented by resolver.Resolver; declaring it here breaks
// the package cycle.
type Resolver interface {
	// WholeAgain marks the current pass unstable so the driver schedules
	// another one. The reason shows up in the verbose trace.
	WholeAgain(node Node, reason string)

	// Throw records a terminal diagnostic. Only the fatal round should
	// reach for it; before that, prefer WholeAgain.
	Throw(err *diagnostics.DiagnosticError)

	// Fatal reports whether this is the final round, where "need more
	// information" must become a diagnostic.
	Fatal() bool

	// Round is the current pass number, starting at 1.
	Round() int

	Inlining() bool
	VeryVerbose() bool
	Helpful() bool

	// NextTempName generates a fresh identifier __<purpose>_<n>.
	NextTempName(purpose string) string

	// Trace writes a verbose-mode log line.
	Trace(format string, args ...interface{})
}

// Node is the base interface for all AST nodes.
type Node interface {
	Token() token.Token

	// Resolve performs one resolution step. The trail holds every ancestor
	// from the module root down to (but not including) the node itself and
	// must be balanced on every exit path.
	Resolve(trail *Trail, res Resolver) Response

	// Replace substitutes exactly one direct child pointer and reports
	// whether a match was found.
	Replace(old, new Node) bool

	Accept(v Visitor)
}

// Expression is a Node that yields a value.
type Expression interface {
	Node
	expressionNode()

	// GetType returns the expression's type, or nil while still unknown.
	GetType() Type

	// IsReferencable reports whether taking the address of this expression
	// is meaningful without hoisting it into a temporary first.
	IsReferencable() bool
}

// Declaration is a named entity a VariableAccess can bind to.
type Declaration interface {
	Node
	DeclName() string
	DeclType() Type
}

// Scope is a node that linearly contains an ordered statement list into
// which siblings can be inserted.
type Scope interface {
	Node
	Body() *[]Node

	// AddBefore inserts stmt immediately before the direct child that is
	// (or leads to) mark. Returns false if mark is not under this scope.
	AddBefore(mark Node, stmt Node) bool
}

// CallResolver contributes function candidates for a call site. It returns 0
// if it had its say (even with zero candidates) or -1 to request another
// pass because its own state is not resolved enough yet.
type CallResolver interface {
	ResolveCall(call *FunctionCall, res Resolver, trail *Trail) int
}

// AccessResolver binds variable accesses the same way.
type AccessResolver interface {
	ResolveAccess(access *VariableAccess, res Resolver, trail *Trail) int
}

// TypeResolver binds named types.
type TypeResolver interface {
	ResolveType(t *BaseType, res Resolver, trail *Trail) int
}

// addBefore inserts stmt before mark. It builds a fresh slice so a pass
// iterating the old statement list is not disturbed mid-walk; the new
// statement is picked up on the next pass.
func addBefore(body *[]Node, mark Node, stmt Node) bool {
	for i, n := range *body {
		if n == mark {
			out := make([]Node, 0, len(*body)+1)
			out = append(out, (*body)[:i]...)
			out = append(out, stmt)
			out = append(out, (*body)[i:]...)
			*body = out
			return true
		}
	}
	return false
}

// replaceInBody swaps old for new inside a statement list.
func replaceInBody(body []Node, old, new Node) bool {
	for i, n := range body {
		if n == old {
			body[i] = new
			return true
		}
	}
	return false
}

// replaceExpr swaps old for new in an expression slot.
func replaceExpr(slot *Expression, old, new Node) bool {
	if *slot == nil || Node(*slot) != old {
		return false
	}
	e, ok := new.(Expression)
	if !ok {
		return false
	}
	*slot = e
	return true
}

// replaceType swaps old for new in a type slot.
func replaceType(slot *Type, old, new Node) bool {
	if *slot == nil || Node(*slot) != old {
		return false
	}
	t, ok := new.(Type)
	if !ok {
		return false
	}
	*slot = t
	return true
}
