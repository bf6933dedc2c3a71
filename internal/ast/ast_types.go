package ast

import (
	"strings"

	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/token"
)

// Type is an AST node describing a type. Types resolve like any other node:
// a BaseType binds its Ref to a TypeDecl, InterfaceDecl or TypeParam found
// through the trail.
type Type interface {
	Node
	typeNode()

	// TypeName is the display representation used in diagnostics.
	TypeName() string

	// Equals is structural equality after name binding.
	Equals(other Type) bool

	// GetScore rates how well a value of this type satisfies a slot
	// declared as decl. See the score constants.
	GetScore(decl Type) int

	// SearchTypeArg digs a type argument named name out of a constructed
	// type (OtherType<P> patterns). Returns nil when not found.
	SearchTypeArg(name string) Type

	CloneType() Type
}

// Score space. NoLuckScore means incompatible; negative-but-greater values
// mean compatible after lossy narrowing; 0 means unknown; positive scores
// rank better matches higher.
const (
	NoLuckScore = -1_000_000
	ScoreSeed   = 1024
)

var builtinTypes = map[string]bool{
	config.IntTypeName:     true,
	config.FloatTypeName:   true,
	config.BoolTypeName:    true,
	config.CharTypeName:    true,
	config.StringTypeName:  true,
	config.VoidTypeName:    true,
	config.PointerTypeName: true,
	config.ClassTypeName:   true,
	config.VarArgsTypeName: true,
}

// BaseType is a named type, optionally constructed with ordered type
// arguments: Int, List<Int>, T.
type BaseType struct {
	Tok      token.Token
	NameStr  string
	TypeArgs []Type

	// Ref is the declaration this name binds to: *TypeDecl, *InterfaceDecl
	// or *TypeParam. Builtins keep Ref nil and set builtin.
	Ref     Node
	builtin bool
}

// NewBaseType builds an unresolved named type.
func NewBaseType(tok token.Token, name string, typeArgs ...Type) *BaseType {
	return &BaseType{Tok: tok, NameStr: name, TypeArgs: typeArgs}
}

func (t *BaseType) Token() token.Token { return t.Tok }
func (t *BaseType) typeNode()          {}
func (t *BaseType) Accept(v Visitor)   { v.VisitBaseType(t) }

func (t *BaseType) TypeName() string {
	if len(t.TypeArgs) == 0 {
		return t.NameStr
	}
	args := make([]string, len(t.TypeArgs))
	for i, a := range t.TypeArgs {
		args[i] = a.TypeName()
	}
	return t.NameStr + "<" + strings.Join(args, ", ") + ">"
}

// IsBuiltin reports whether the name is one of the predefined types.
func (t *BaseType) IsBuiltin() bool { return builtinTypes[t.NameStr] }

// IsVoid reports the Void builtin.
func (t *BaseType) IsVoid() bool { return t.NameStr == config.VoidTypeName }

// IsGenericParam reports whether this name is bound to a formal type
// parameter and therefore still generic.
func (t *BaseType) IsGenericParam() bool {
	_, ok := t.Ref.(*TypeParam)
	return ok
}

// TypeDeclRef returns the bound TypeDecl, or nil.
func (t *BaseType) TypeDeclRef() *TypeDecl {
	td, _ := t.Ref.(*TypeDecl)
	return td
}

// InterfaceRef returns the bound InterfaceDecl, or nil.
func (t *BaseType) InterfaceRef() *InterfaceDecl {
	id, _ := t.Ref.(*InterfaceDecl)
	return id
}

func (t *BaseType) IsResolved() bool {
	if t.Ref == nil && !t.builtin {
		return false
	}
	for _, a := range t.TypeArgs {
		if !typeIsResolved(a) {
			return false
		}
	}
	return true
}

func (t *BaseType) Equals(other Type) bool {
	o, ok := other.(*BaseType)
	if !ok {
		return false
	}
	if t.NameStr != o.NameStr || len(t.TypeArgs) != len(o.TypeArgs) {
		return false
	}
	for i := range t.TypeArgs {
		if !t.TypeArgs[i].Equals(o.TypeArgs[i]) {
			return false
		}
	}
	return true
}

func (t *BaseType) SearchTypeArg(name string) Type {
	td := t.TypeDeclRef()
	if td == nil {
		return nil
	}
	for i, p := range td.TypeParams {
		if p.NameStr == name && i < len(t.TypeArgs) {
			return t.TypeArgs[i]
		}
	}
	// Recurse into constructed arguments: Box<List<P>>.
	for _, a := range t.TypeArgs {
		if found := a.SearchTypeArg(name); found != nil {
			return found
		}
	}
	return nil
}

func (t *BaseType) Replace(old, new Node) bool {
	for i, a := range t.TypeArgs {
		if Node(a) == old {
			if nt, ok := new.(Type); ok {
				t.TypeArgs[i] = nt
				return true
			}
			return false
		}
	}
	return false
}

// SugarKind distinguishes the type wrappers.
type SugarKind int

const (
	PointerTo SugarKind = iota
	ReferenceTo
	ArrayOf
)

// SugarType wraps an inner type as a pointer (Int*), reference (Int@) or
// array (Int[]).
type SugarType struct {
	Tok   token.Token
	Kind  SugarKind
	Inner Type
}

func (t *SugarType) Token() token.Token { return t.Tok }
func (t *SugarType) typeNode()          {}
func (t *SugarType) Accept(v Visitor)   { v.VisitSugarType(t) }

func (t *SugarType) TypeName() string {
	switch t.Kind {
	case PointerTo:
		return t.Inner.TypeName() + "*"
	case ReferenceTo:
		return t.Inner.TypeName() + "@"
	default:
		return t.Inner.TypeName() + "[]"
	}
}

func (t *SugarType) Equals(other Type) bool {
	o, ok := other.(*SugarType)
	return ok && t.Kind == o.Kind && t.Inner.Equals(o.Inner)
}

func (t *SugarType) SearchTypeArg(name string) Type {
	return t.Inner.SearchTypeArg(name)
}

func (t *SugarType) Replace(old, new Node) bool {
	return replaceType(&t.Inner, old, new)
}

// StripSugar unwraps all SugarType layers and counts them.
func StripSugar(t Type) (Type, int) {
	depth := 0
	for {
		s, ok := t.(*SugarType)
		if !ok {
			return t, depth
		}
		t = s.Inner
		depth++
	}
}

// FuncType is the type of a function value.
type FuncType struct {
	Tok      token.Token
	ArgTypes []Type
	Return   Type
}

func (t *FuncType) Token() token.Token { return t.Tok }
func (t *FuncType) typeNode()          {}
func (t *FuncType) Accept(v Visitor)   { v.VisitFuncType(t) }

func (t *FuncType) TypeName() string {
	args := make([]string, len(t.ArgTypes))
	for i, a := range t.ArgTypes {
		args[i] = a.TypeName()
	}
	ret := config.VoidTypeName
	if t.Return != nil {
		ret = t.Return.TypeName()
	}
	return "func(" + strings.Join(args, ", ") + ") -> " + ret
}

func (t *FuncType) Equals(other Type) bool {
	o, ok := other.(*FuncType)
	if !ok || len(t.ArgTypes) != len(o.ArgTypes) {
		return false
	}
	for i := range t.ArgTypes {
		if !t.ArgTypes[i].Equals(o.ArgTypes[i]) {
			return false
		}
	}
	if (t.Return == nil) != (o.Return == nil) {
		return false
	}
	return t.Return == nil || t.Return.Equals(o.Return)
}

func (t *FuncType) SearchTypeArg(name string) Type {
	for _, a := range t.ArgTypes {
		if found := a.SearchTypeArg(name); found != nil {
			return found
		}
	}
	if t.Return != nil {
		return t.Return.SearchTypeArg(name)
	}
	return nil
}

func (t *FuncType) Replace(old, new Node) bool {
	for i, a := range t.ArgTypes {
		if Node(a) == old {
			if nt, ok := new.(Type); ok {
				t.ArgTypes[i] = nt
				return true
			}
			return false
		}
	}
	return replaceType(&t.Return, old, new)
}

// TypeList is an ordered multi-return type.
type TypeList struct {
	Tok   token.Token
	Types []Type
}

func (t *TypeList) Token() token.Token { return t.Tok }
func (t *TypeList) typeNode()          {}
func (t *TypeList) Accept(v Visitor)   { v.VisitTypeList(t) }

func (t *TypeList) TypeName() string {
	parts := make([]string, len(t.Types))
	for i, p := range t.Types {
		parts[i] = p.TypeName()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t *TypeList) Equals(other Type) bool {
	o, ok := other.(*TypeList)
	if !ok || len(t.Types) != len(o.Types) {
		return false
	}
	for i := range t.Types {
		if !t.Types[i].Equals(o.Types[i]) {
			return false
		}
	}
	return true
}

func (t *TypeList) SearchTypeArg(name string) Type {
	for _, p := range t.Types {
		if found := p.SearchTypeArg(name); found != nil {
			return found
		}
	}
	return nil
}

func (t *TypeList) Replace(old, new Node) bool {
	for i, p := range t.Types {
		if Node(p) == old {
			if nt, ok := new.(Type); ok {
				t.Types[i] = nt
				return true
			}
			return false
		}
	}
	return false
}

// AnonymousStructType is an unnamed struct layout. The varargs boxing
// rewrite builds one with interleaved (Class, value-type) member pairs.
type AnonymousStructType struct {
	Tok   token.Token
	Types []Type
}

func (t *AnonymousStructType) Token() token.Token { return t.Tok }
func (t *AnonymousStructType) typeNode()          {}
func (t *AnonymousStructType) Accept(v Visitor)   { v.VisitAnonymousStructType(t) }

func (t *AnonymousStructType) TypeName() string {
	parts := make([]string, len(t.Types))
	for i, p := range t.Types {
		parts[i] = p.TypeName()
	}
	return "struct{" + strings.Join(parts, ", ") + "}"
}

func (t *AnonymousStructType) Equals(other Type) bool {
	o, ok := other.(*AnonymousStructType)
	if !ok || len(t.Types) != len(o.Types) {
		return false
	}
	for i := range t.Types {
		if !t.Types[i].Equals(o.Types[i]) {
			return false
		}
	}
	return true
}

func (t *AnonymousStructType) SearchTypeArg(name string) Type { return nil }

func (t *AnonymousStructType) Replace(old, new Node) bool {
	for i, p := range t.Types {
		if Node(p) == old {
			if nt, ok := new.(Type); ok {
				t.Types[i] = nt
				return true
			}
			return false
		}
	}
	return false
}

// typeIsResolved reports whether a type has finished name binding.
func typeIsResolved(t Type) bool {
	switch tt := t.(type) {
	case nil:
		return false
	case *BaseType:
		return tt.IsResolved()
	case *SugarType:
		return typeIsResolved(tt.Inner)
	case *FuncType:
		for _, a := range tt.ArgTypes {
			if !typeIsResolved(a) {
				return false
			}
		}
		return tt.Return == nil || typeIsResolved(tt.Return)
	case *TypeList:
		for _, p := range tt.Types {
			if !typeIsResolved(p) {
				return false
			}
		}
		return true
	case *AnonymousStructType:
		for _, p := range tt.Types {
			if !typeIsResolved(p) {
				return false
			}
		}
		return true
	}
	return true
}

// IsGenericType reports whether t mentions an unbound type parameter.
func IsGenericType(t Type) bool {
	switch tt := t.(type) {
	case nil:
		return false
	case *BaseType:
		if tt.IsGenericParam() {
			return true
		}
		for _, a := range tt.TypeArgs {
			if IsGenericType(a) {
				return true
			}
		}
		return false
	case *SugarType:
		return IsGenericType(tt.Inner)
	case *FuncType:
		for _, a := range tt.ArgTypes {
			if IsGenericType(a) {
				return true
			}
		}
		return tt.Return != nil && IsGenericType(tt.Return)
	case *TypeList:
		for _, p := range tt.Types {
			if IsGenericType(p) {
				return true
			}
		}
		return false
	}
	return false
}
