package ast

import (
	"testing"

	"github.com/sablelang/sable/internal/token"
)

func intArgFunc(name string, argType Type) *FunctionDecl {
	return &FunctionDecl{
		Name: name,
		Args: []*Argument{{Name: "x", Type: argType}},
	}
}

func TestSuggestTieBreakKeepsEarlierCandidate(t *testing.T) {
	first := intArgFunc("f", intType())
	second := intArgFunc("f", intType())

	call := NewFunctionCall(token.Token{}, "f", &IntLiteral{Value: 1})
	if !call.Suggest(first, nil, nil) {
		t.Fatal("first candidate must score positive")
	}
	score := call.RefScore
	if !call.Suggest(second, nil, nil) {
		t.Fatal("second candidate must score positive too")
	}
	if call.Ref != first {
		t.Error("equal score must keep the earlier candidate")
	}
	if call.RefScore != score {
		t.Errorf("refScore changed on tie: %d -> %d", score, call.RefScore)
	}
}

func TestSuggestUpgradesToStrictlyBetterCandidate(t *testing.T) {
	widening := intArgFunc("f", floatType()) // Int arg widens to Float
	exact := intArgFunc("f", intType())

	call := NewFunctionCall(token.Token{}, "f", &IntLiteral{Value: 1})
	call.Suggest(widening, nil, nil)
	lower := call.RefScore
	call.Suggest(exact, nil, nil)

	if call.Ref != exact {
		t.Error("strictly better candidate must take over")
	}
	if call.RefScore <= lower {
		t.Errorf("refScore must strictly increase: %d -> %d", lower, call.RefScore)
	}
}

func TestSuggestRejectsMemberlessCandidateForMemberCall(t *testing.T) {
	free := intArgFunc("f", intType())
	recv := &VariableDecl{Name: "obj", DeclTyp: intType()}

	call := NewFunctionCall(token.Token{}, "f", &IntLiteral{Value: 1})
	call.Expr = NewAccess(token.Token{}, recv)

	if call.Suggest(free, nil, nil) {
		t.Error("a free function must not satisfy a member call")
	}
	if call.Ref != nil {
		t.Error("rejected candidate must not be referenced")
	}
}

func TestMatchesArgsVariadicConsumesAnyTrailingCount(t *testing.T) {
	h := &FunctionDecl{Name: "h", VArg: &VarArg{Argument: Argument{Name: "rest"}}}

	for _, n := range []int{0, 1, 5} {
		call := NewFunctionCall(token.Token{}, "h")
		for i := 0; i < n; i++ {
			call.Args = append(call.Args, &IntLiteral{Value: int64(i)})
		}
		if !call.MatchesArgs(h) {
			t.Errorf("vararg decl must accept %d trailing args", n)
		}
	}

	g := intArgFunc("g", intType())
	tooMany := NewFunctionCall(token.Token{}, "g", &IntLiteral{}, &IntLiteral{})
	if tooMany.MatchesArgs(g) {
		t.Error("non-variadic decl must reject surplus args")
	}
}
