package ast

// Trail is the stack of ancestors from the module root down to the node
// currently resolving. Index 0 is the root; the top is the deepest ancestor.
// Every Push must pair with a Pop on every exit path of a Resolve.
type Trail struct {
	nodes []Node
}

func NewTrail() *Trail {
	return &Trail{}
}

func (t *Trail) Len() int {
	return len(t.nodes)
}

func (t *Trail) Push(n Node) {
	t.nodes = append(t.nodes, n)
}

// Pop removes the top node. It panics when the top is not n — an unbalanced
// trail is a bug in a Resolve implementation, never a user error.
func (t *Trail) Pop(n Node) {
	if len(t.nodes) == 0 || t.nodes[len(t.nodes)-1] != n {
		panic("ast: unbalanced trail pop")
	}
	t.nodes = t.nodes[:len(t.nodes)-1]
}

// Peek returns the k-th node from the top. Nodes push themselves on entry
// to Resolve, so during a node's own resolution k=1 is the node itself and
// k=2 its direct parent. Returns nil when out of range.
func (t *Trail) Peek(k int) Node {
	idx := len(t.nodes) - k
	if idx < 0 || idx >= len(t.nodes) {
		return nil
	}
	return t.nodes[idx]
}

func (t *Trail) Get(idx int) Node {
	if idx < 0 || idx >= len(t.nodes) {
		return nil
	}
	return t.nodes[idx]
}

// Find returns the index of the nearest ancestor matching pred, or -1.
func (t *Trail) Find(pred func(Node) bool) int {
	return t.FindFrom(len(t.nodes)-1, pred)
}

// FindFrom searches downward starting at index fromIdx (inclusive).
func (t *Trail) FindFrom(fromIdx int, pred func(Node) bool) int {
	if fromIdx >= len(t.nodes) {
		fromIdx = len(t.nodes) - 1
	}
	for i := fromIdx; i >= 0; i-- {
		if pred(t.nodes[i]) {
			return i
		}
	}
	return -1
}

// InnermostFunction returns the nearest enclosing FunctionDecl, or nil.
func (t *Trail) InnermostFunction() *FunctionDecl {
	idx := t.Find(func(n Node) bool { _, ok := n.(*FunctionDecl); return ok })
	if idx < 0 {
		return nil
	}
	return t.nodes[idx].(*FunctionDecl)
}

// InnermostTypeDecl returns the nearest enclosing TypeDecl, or nil.
func (t *Trail) InnermostTypeDecl() *TypeDecl {
	idx := t.Find(func(n Node) bool { _, ok := n.(*TypeDecl); return ok })
	if idx < 0 {
		return nil
	}
	return t.nodes[idx].(*TypeDecl)
}

// Module returns the root module, or nil on an empty trail.
func (t *Trail) Module() *Module {
	if len(t.nodes) == 0 {
		return nil
	}
	m, _ := t.nodes[0].(*Module)
	return m
}

// AddBeforeInScope walks up from the top looking for the first Scope and
// inserts stmt immediately before the subtree that reaches anchor.
func (t *Trail) AddBeforeInScope(anchor Node, stmt Node) bool {
	mark := anchor
	for i := len(t.nodes) - 1; i >= 0; i-- {
		if scope, ok := t.nodes[i].(Scope); ok {
			return scope.AddBefore(mark, stmt)
		}
		mark = t.nodes[i]
	}
	return false
}
