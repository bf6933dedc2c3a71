package ast

import (
	"testing"

	"github.com/sablelang/sable/internal/token"
)

func TestTrailPushPopBalance(t *testing.T) {
	trail := NewTrail()
	m := &Module{}
	b := &Block{}

	trail.Push(m)
	trail.Push(b)
	if trail.Len() != 2 {
		t.Fatalf("len = %d, want 2", trail.Len())
	}
	if trail.Peek(1) != Node(b) || trail.Peek(2) != Node(m) {
		t.Error("peek order wrong")
	}
	trail.Pop(b)
	trail.Pop(m)
	if trail.Len() != 0 {
		t.Errorf("len = %d after pops, want 0", trail.Len())
	}
}

func TestTrailPopAssertsTop(t *testing.T) {
	trail := NewTrail()
	m := &Module{}
	b := &Block{}
	trail.Push(m)

	defer func() {
		if recover() == nil {
			t.Error("popping a node that is not on top must panic")
		}
	}()
	trail.Pop(b)
}

func TestTrailFind(t *testing.T) {
	trail := NewTrail()
	m := &Module{}
	td := &TypeDecl{Name: "A"}
	fd := &FunctionDecl{Name: "f"}
	b := &Block{}
	trail.Push(m)
	trail.Push(td)
	trail.Push(fd)
	trail.Push(b)

	if got := trail.InnermostFunction(); got != fd {
		t.Errorf("InnermostFunction = %v, want f", got)
	}
	if got := trail.InnermostTypeDecl(); got != td {
		t.Errorf("InnermostTypeDecl = %v, want A", got)
	}
	if got := trail.Module(); got != m {
		t.Errorf("Module = %v", got)
	}
	if idx := trail.Find(func(n Node) bool { _, ok := n.(*NamespaceDecl); return ok }); idx != -1 {
		t.Errorf("Find(missing) = %d, want -1", idx)
	}
}

func TestAddBeforeInScope(t *testing.T) {
	// module -> block -> vd(expr) with the trail positioned as if expr
	// were resolving: the insertion lands before vd, inside the block.
	tok := token.Token{}
	expr := &IntLiteral{Tok: tok, Value: 1}
	vd := &VariableDecl{Tok: tok, Name: "x", Expr: expr}
	block := &Block{BodyList: []Node{vd}}
	m := &Module{BodyList: []Node{block}}

	trail := NewTrail()
	trail.Push(m)
	trail.Push(block)
	trail.Push(vd)
	trail.Push(expr)

	stmt := &VariableDecl{Tok: tok, Name: "tmp"}
	if !trail.AddBeforeInScope(expr, stmt) {
		t.Fatal("AddBeforeInScope failed")
	}
	if len(block.BodyList) != 2 {
		t.Fatalf("block has %d statements, want 2", len(block.BodyList))
	}
	if block.BodyList[0] != Node(stmt) || block.BodyList[1] != Node(vd) {
		t.Error("statement not inserted before the anchor's subtree")
	}
}

func TestAddBeforeInScopeWithoutScope(t *testing.T) {
	trail := NewTrail()
	lit := &IntLiteral{Value: 1}
	trail.Push(lit)
	if trail.AddBeforeInScope(lit, &VariableDecl{Name: "tmp"}) {
		t.Error("insertion without any scope must fail")
	}
}

func TestReplace(t *testing.T) {
	old := &IntLiteral{Value: 1}
	repl := &IntLiteral{Value: 2}

	vd := &VariableDecl{Name: "x", Expr: old}
	if !vd.Replace(old, repl) {
		t.Error("VariableDecl.Replace failed")
	}
	if vd.Expr != Expression(repl) {
		t.Error("child pointer not swapped")
	}
	if vd.Replace(old, repl) {
		t.Error("Replace of a missing child must report false")
	}

	call := NewFunctionCall(token.Token{}, "f", old)
	if !call.Replace(old, repl) || call.Args[0] != Expression(repl) {
		t.Error("FunctionCall.Replace failed on args")
	}
}

func TestFunctionCallCloneDropsResolutionState(t *testing.T) {
	call := NewFunctionCall(token.Token{}, "f", &IntLiteral{Value: 3})
	call.Suffix = "tagged"
	call.Ref = &FunctionDecl{Name: "f"}
	call.RefScore = ScoreSeed
	call.ReturnType = intType()

	clone := call.Clone()
	if clone.Name != "f" || clone.Suffix != "tagged" {
		t.Error("clone must keep name and suffix")
	}
	if clone.Ref != nil || clone.RefScore > 0 || clone.ReturnType != nil {
		t.Error("clone must drop resolution state")
	}
	if len(clone.Args) != 1 || clone.Args[0] == call.Args[0] {
		t.Error("clone must deep-copy arguments")
	}
}
