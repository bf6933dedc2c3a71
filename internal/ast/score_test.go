package ast

import (
	"testing"

	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/token"
)

func intType() *BaseType    { return &BaseType{NameStr: config.IntTypeName, builtin: true} }
func floatType() *BaseType  { return &BaseType{NameStr: config.FloatTypeName, builtin: true} }
func stringType() *BaseType { return &BaseType{NameStr: config.StringTypeName, builtin: true} }

func TestScoreIdentity(t *testing.T) {
	cases := []Type{
		intType(),
		stringType(),
		&SugarType{Kind: PointerTo, Inner: intType()},
		&FuncType{ArgTypes: []Type{intType()}, Return: intType()},
	}
	for _, typ := range cases {
		if got := typ.GetScore(typ); got != ScoreSeed {
			t.Errorf("%s.GetScore(self) = %d, want %d", typ.TypeName(), got, ScoreSeed)
		}
	}
}

func TestScoreConstructedIdentity(t *testing.T) {
	list := func(arg Type) *BaseType {
		return &BaseType{NameStr: "List", TypeArgs: []Type{arg}}
	}
	if got := list(intType()).GetScore(list(intType())); got != ScoreSeed {
		t.Errorf("List<Int> vs List<Int> = %d, want %d", got, ScoreSeed)
	}
	if got := list(intType()).GetScore(list(stringType())); got != NoLuckScore {
		t.Errorf("List<Int> vs List<String> = %d, want NoLuck", got)
	}
}

func TestScoreNumericConversions(t *testing.T) {
	if got := intType().GetScore(floatType()); got <= 0 {
		t.Errorf("Int -> Float (widening) = %d, want positive", got)
	}
	got := floatType().GetScore(intType())
	if got >= 0 || got == NoLuckScore {
		t.Errorf("Float -> Int (narrowing) = %d, want negative but above NoLuck", got)
	}
}

func TestScoreIncompatible(t *testing.T) {
	if got := intType().GetScore(stringType()); got != NoLuckScore {
		t.Errorf("Int vs String = %d, want NoLuck", got)
	}
}

func TestScoreReferenceCollapsing(t *testing.T) {
	ref := &SugarType{Kind: ReferenceTo, Inner: intType()}
	ptr := &SugarType{Kind: PointerTo, Inner: intType()}
	if got := ref.GetScore(ptr); got <= 0 {
		t.Errorf("Int@ vs Int* = %d, want positive (refToPointer)", got)
	}
	if got := ref.GetScore(intType()); got <= 0 {
		t.Errorf("Int@ vs Int = %d, want positive (transparent ref)", got)
	}
}

func TestScoreGenericDeclSide(t *testing.T) {
	param := &TypeParam{NameStr: "T"}
	generic := &BaseType{NameStr: "T", Ref: param}
	if got := intType().GetScore(generic); got != ScoreSeed/16 {
		t.Errorf("Int vs unsubstituted T = %d, want %d", got, ScoreSeed/16)
	}
}

func TestScoreInheritance(t *testing.T) {
	a := &TypeDecl{Name: "A"}
	b := &TypeDecl{Name: "B", SuperRef: a}
	c := &TypeDecl{Name: "C", SuperRef: b}

	aT := &BaseType{NameStr: "A", Ref: a}
	bT := &BaseType{NameStr: "B", Ref: b}
	cT := &BaseType{NameStr: "C", Ref: c}

	direct := bT.GetScore(aT)
	distant := cT.GetScore(aT)
	if direct <= 0 || distant <= 0 {
		t.Fatalf("subclass scores must be positive, got %d and %d", direct, distant)
	}
	if distant >= direct {
		t.Errorf("closer ancestor must score higher: depth1=%d depth2=%d", direct, distant)
	}
	if got := aT.GetScore(bT); got != NoLuckScore {
		t.Errorf("superclass vs subclass slot = %d, want NoLuck", got)
	}
}

func TestScoreInterfaceConformance(t *testing.T) {
	writer := &InterfaceDecl{Name: "Writer"}
	writerT := &BaseType{NameStr: "Writer", Ref: writer}
	file := &TypeDecl{Name: "File", Interfaces: []Type{writerT}}
	fileT := &BaseType{NameStr: "File", Ref: file}

	if got := fileT.GetScore(writerT); got != ScoreSeed/4 {
		t.Errorf("File vs implemented Writer = %d, want %d", got, ScoreSeed/4)
	}

	other := &InterfaceDecl{Name: "Reader"}
	otherT := &BaseType{NameStr: "Reader", Ref: other}
	if got := fileT.GetScore(otherT); got != NoLuckScore {
		t.Errorf("File vs unimplemented Reader = %d, want NoLuck", got)
	}
}

func TestFindImplicitConversion(t *testing.T) {
	url := &TypeDecl{Name: "Url"}
	conv := &ImplicitConvDecl{FDecl: &FunctionDecl{Name: "as", ReturnType: stringType()}}
	url.ImplicitConversions = []*ImplicitConvDecl{conv}
	urlT := &BaseType{NameStr: "Url", Ref: url}

	if got := FindImplicitConversion(urlT, stringType()); got != conv {
		t.Errorf("conversion Url -> String not found")
	}
	if got := FindImplicitConversion(urlT, intType()); got != nil {
		t.Errorf("unexpected conversion Url -> Int")
	}

	// Conversions are visible through the super chain.
	sub := &TypeDecl{Name: "HttpsUrl", SuperRef: url}
	subT := &BaseType{NameStr: "HttpsUrl", Ref: sub}
	if got := FindImplicitConversion(subT, stringType()); got != conv {
		t.Errorf("inherited conversion not found")
	}
}

func TestRealTypizeFromReceiver(t *testing.T) {
	param := &TypeParam{NameStr: "T"}
	list := &TypeDecl{Name: "List", TypeParams: []*TypeParam{param}}
	get := &FunctionDecl{Name: "get", Owner: list}

	recvType := &BaseType{NameStr: "List", Ref: list, TypeArgs: []Type{intType()}}
	recvDecl := &VariableDecl{Name: "xs", DeclTyp: recvType}

	call := NewFunctionCall(token.Token{}, "get")
	call.Expr = NewAccess(token.Token{}, recvDecl)

	declType := &BaseType{NameStr: "T", Ref: param}
	got := RealTypize(declType, get, call)
	bt, ok := got.(*BaseType)
	if !ok || bt.NameStr != config.IntTypeName {
		t.Errorf("RealTypize(T) = %s, want Int", got.TypeName())
	}
}
