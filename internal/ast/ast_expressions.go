package ast

import (
	"math"

	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/token"
)

// IntLiteral represents an integer literal.
type IntLiteral struct {
	Tok   token.Token
	Value int64
}

func (l *IntLiteral) Token() token.Token     { return l.Tok }
func (l *IntLiteral) expressionNode()        {}
func (l *IntLiteral) Accept(v Visitor)       { v.VisitIntLiteral(l) }
func (l *IntLiteral) Replace(o, n Node) bool { return false }
func (l *IntLiteral) IsReferencable() bool   { return false }
func (l *IntLiteral) GetType() Type {
	return &BaseType{Tok: l.Tok, NameStr: config.IntTypeName}
}

// FloatLiteral represents a floating point literal.
type FloatLiteral struct {
	Tok   token.Token
	Value float64
}

func (l *FloatLiteral) Token() token.Token     { return l.Tok }
func (l *FloatLiteral) expressionNode()        {}
func (l *FloatLiteral) Accept(v Visitor)       { v.VisitFloatLiteral(l) }
func (l *FloatLiteral) Replace(o, n Node) bool { return false }
func (l *FloatLiteral) IsReferencable() bool   { return false }
func (l *FloatLiteral) GetType() Type {
	return &BaseType{Tok: l.Tok, NameStr: config.FloatTypeName}
}

// StringLiteral represents a string literal.
type StringLiteral struct {
	Tok   token.Token
	Value string
}

func (l *StringLiteral) Token() token.Token     { return l.Tok }
func (l *StringLiteral) expressionNode()        {}
func (l *StringLiteral) Accept(v Visitor)       { v.VisitStringLiteral(l) }
func (l *StringLiteral) Replace(o, n Node) bool { return false }
func (l *StringLiteral) IsReferencable() bool   { return false }
func (l *StringLiteral) GetType() Type {
	return &BaseType{Tok: l.Tok, NameStr: config.StringTypeName}
}

// BoolLiteral represents true/false.
type BoolLiteral struct {
	Tok   token.Token
	Value bool
}

func (l *BoolLiteral) Token() token.Token     { return l.Tok }
func (l *BoolLiteral) expressionNode()        {}
func (l *BoolLiteral) Accept(v Visitor)       { v.VisitBoolLiteral(l) }
func (l *BoolLiteral) Replace(o, n Node) bool { return false }
func (l *BoolLiteral) IsReferencable() bool   { return false }
func (l *BoolLiteral) GetType() Type {
	return &BaseType{Tok: l.Tok, NameStr: config.BoolTypeName}
}

// NullLiteral represents null. It scores against any pointer or class type.
type NullLiteral struct {
	Tok token.Token
}

func (l *NullLiteral) Token() token.Token     { return l.Tok }
func (l *NullLiteral) expressionNode()        {}
func (l *NullLiteral) Accept(v Visitor)       { v.VisitNullLiteral(l) }
func (l *NullLiteral) Replace(o, n Node) bool { return false }
func (l *NullLiteral) IsReferencable() bool   { return false }
func (l *NullLiteral) GetType() Type {
	return &BaseType{Tok: l.Tok, NameStr: config.PointerTypeName}
}

// VariableAccess references a declaration by name, optionally through a
// receiver expression: x, point.x, Namespace.v.
type VariableAccess struct {
	Tok  token.Token
	Expr Expression // receiver, nil for plain accesses
	Name string

	// Ref is the declaration this access binds to.
	Ref Declaration
}

func (va *VariableAccess) Token() token.Token   { return va.Tok }
func (va *VariableAccess) expressionNode()      {}
func (va *VariableAccess) Accept(v Visitor)     { v.VisitVariableAccess(va) }
func (va *VariableAccess) IsReferencable() bool { return true }

func (va *VariableAccess) GetType() Type {
	if va.Ref == nil {
		return nil
	}
	return va.Ref.DeclType()
}

func (va *VariableAccess) Replace(old, new Node) bool {
	if va.Expr != nil && Node(va.Expr) == old {
		return replaceExpr(&va.Expr, old, new)
	}
	return false
}

// NewAccess builds a plain access to a known declaration.
func NewAccess(tok token.Token, decl Declaration) *VariableAccess {
	return &VariableAccess{Tok: tok, Name: decl.DeclName(), Ref: decl}
}

// VariableDecl declares a variable; as an expression it yields the declared
// variable, so `f(x := 3)` both declares and passes x.
type VariableDecl struct {
	Tok      token.Token
	Name     string
	DeclTyp  Type // nil when inferred from Expr
	Expr     Expression
	IsGlobal bool

	// OwnerType is set on class fields.
	OwnerType *TypeDecl
}

func (vd *VariableDecl) Token() token.Token   { return vd.Tok }
func (vd *VariableDecl) expressionNode()      {}
func (vd *VariableDecl) Accept(v Visitor)     { v.VisitVariableDecl(vd) }
func (vd *VariableDecl) IsReferencable() bool { return true }
func (vd *VariableDecl) DeclName() string     { return vd.Name }

func (vd *VariableDecl) DeclType() Type {
	if vd.DeclTyp != nil {
		return vd.DeclTyp
	}
	if vd.Expr != nil {
		return vd.Expr.GetType()
	}
	return nil
}

func (vd *VariableDecl) GetType() Type { return vd.DeclType() }

func (vd *VariableDecl) Replace(old, new Node) bool {
	if vd.DeclTyp != nil && Node(vd.DeclTyp) == old {
		return replaceType(&vd.DeclTyp, old, new)
	}
	if vd.Expr != nil && Node(vd.Expr) == old {
		return replaceExpr(&vd.Expr, old, new)
	}
	return false
}

// AddressOf takes the address of an lvalue: expr&. ForGenerics marks the
// by-reference wrapping the generics rewrite applies to call args.
type AddressOf struct {
	Tok         token.Token
	Expr        Expression
	ForGenerics bool
}

func (ao *AddressOf) Token() token.Token   { return ao.Tok }
func (ao *AddressOf) expressionNode()      {}
func (ao *AddressOf) Accept(v Visitor)     { v.VisitAddressOf(ao) }
func (ao *AddressOf) IsReferencable() bool { return false }

func (ao *AddressOf) GetType() Type {
	inner := ao.Expr.GetType()
	if inner == nil {
		return nil
	}
	if ao.ForGenerics {
		// Generic slots travel as raw pointers.
		return inner
	}
	return &SugarType{Tok: ao.Tok, Kind: PointerTo, Inner: inner}
}

func (ao *AddressOf) Replace(old, new Node) bool {
	return replaceExpr(&ao.Expr, old, new)
}

// Cast converts an expression to a target type: expr as Type.
type Cast struct {
	Tok        token.Token
	Inner      Expression
	TargetType Type
}

func (c *Cast) Token() token.Token   { return c.Tok }
func (c *Cast) expressionNode()      {}
func (c *Cast) Accept(v Visitor)     { v.VisitCast(c) }
func (c *Cast) IsReferencable() bool { return false }
func (c *Cast) GetType() Type        { return c.TargetType }

func (c *Cast) Replace(old, new Node) bool {
	if Node(c.Inner) == old {
		return replaceExpr(&c.Inner, old, new)
	}
	return replaceType(&c.TargetType, old, new)
}

// BinaryOp is an infix operation, including assignment.
type BinaryOp struct {
	Tok   token.Token
	Left  Expression
	Op    string
	Right Expression
}

func (b *BinaryOp) Token() token.Token   { return b.Tok }
func (b *BinaryOp) expressionNode()      {}
func (b *BinaryOp) Accept(v Visitor)     { v.VisitBinaryOp(b) }
func (b *BinaryOp) IsReferencable() bool { return false }

// IsAssign reports plain assignment.
func (b *BinaryOp) IsAssign() bool { return b.Op == "=" }

func (b *BinaryOp) GetType() Type {
	switch b.Op {
	case "==", "!=", "<", ">":
		return &BaseType{Tok: b.Tok, NameStr: config.BoolTypeName}
	}
	return b.Left.GetType()
}

func (b *BinaryOp) Replace(old, new Node) bool {
	if Node(b.Left) == old {
		return replaceExpr(&b.Left, old, new)
	}
	if Node(b.Right) == old {
		return replaceExpr(&b.Right, old, new)
	}
	return false
}

// CommaSequence evaluates expressions left to right and yields the last.
// It behaves as a scope for in-scope insertion.
type CommaSequence struct {
	Tok   token.Token
	Items []Expression
}

func (cs *CommaSequence) Token() token.Token   { return cs.Tok }
func (cs *CommaSequence) expressionNode()      {}
func (cs *CommaSequence) Accept(v Visitor)     { v.VisitCommaSequence(cs) }
func (cs *CommaSequence) IsReferencable() bool { return false }

func (cs *CommaSequence) GetType() Type {
	if len(cs.Items) == 0 {
		return nil
	}
	return cs.Items[len(cs.Items)-1].GetType()
}

func (cs *CommaSequence) Replace(old, new Node) bool {
	for i, it := range cs.Items {
		if Node(it) == old {
			if ne, ok := new.(Expression); ok {
				cs.Items[i] = ne
				return true
			}
			return false
		}
	}
	return false
}

// StructLiteral constructs a value of TargetType from ordered elements.
type StructLiteral struct {
	Tok        token.Token
	TargetType Type
	Elements   []Expression
}

func (sl *StructLiteral) Token() token.Token   { return sl.Tok }
func (sl *StructLiteral) expressionNode()      {}
func (sl *StructLiteral) Accept(v Visitor)     { v.VisitStructLiteral(sl) }
func (sl *StructLiteral) IsReferencable() bool { return false }
func (sl *StructLiteral) GetType() Type        { return sl.TargetType }

func (sl *StructLiteral) Replace(old, new Node) bool {
	if Node(sl.TargetType) == old {
		return replaceType(&sl.TargetType, old, new)
	}
	for i, el := range sl.Elements {
		if Node(el) == old {
			if ne, ok := new.(Expression); ok {
				sl.Elements[i] = ne
				return true
			}
			return false
		}
	}
	return false
}

// TypeAccess uses a type as a value: the argument List in sizeof(List).
type TypeAccess struct {
	Tok   token.Token
	Inner Type
}

func (ta *TypeAccess) Token() token.Token   { return ta.Tok }
func (ta *TypeAccess) expressionNode()      {}
func (ta *TypeAccess) Accept(v Visitor)     { v.VisitTypeAccess(ta) }
func (ta *TypeAccess) IsReferencable() bool { return false }

func (ta *TypeAccess) GetType() Type {
	return &BaseType{Tok: ta.Tok, NameStr: config.ClassTypeName}
}

func (ta *TypeAccess) Replace(old, new Node) bool {
	return replaceType(&ta.Inner, old, new)
}

// Return exits the enclosing function, optionally with a value.
type Return struct {
	Tok  token.Token
	Expr Expression // nil for bare return
}

func (r *Return) Token() token.Token { return r.Tok }
func (r *Return) Accept(v Visitor)   { v.VisitReturn(r) }

func (r *Return) Replace(old, new Node) bool {
	if r.Expr == nil {
		return false
	}
	return replaceExpr(&r.Expr, old, new)
}

// Block is a braced statement list.
type Block struct {
	Tok      token.Token
	BodyList []Node
}

func (b *Block) Token() token.Token { return b.Tok }
func (b *Block) Accept(v Visitor)   { v.VisitBlock(b) }
func (b *Block) Body() *[]Node      { return &b.BodyList }

func (b *Block) AddBefore(mark Node, stmt Node) bool {
	return addBefore(&b.BodyList, mark, stmt)
}

func (b *Block) Replace(old, new Node) bool {
	return replaceInBody(b.BodyList, old, new)
}

// InlineContext is the block an inlined call expands into. Its ReturnArgs
// receive the values of return statements inside the spliced body.
type InlineContext struct {
	Block
	Ref        *FunctionDecl
	ReturnArgs []Expression
}

func (ic *InlineContext) Accept(v Visitor) { v.VisitInlineContext(ic) }

// FunctionCall is a call site: receiver.name~suffix(args).
type FunctionCall struct {
	Tok    token.Token
	Expr   Expression // receiver, nil for plain calls
	Name   string
	Suffix string
	Args   []Expression

	// TypeArgs are the inferred generic type arguments, each wrapped as an
	// expression for the backend (VariableAccess to the type, or the
	// Pointer builtin for function types).
	TypeArgs []Expression

	// typeArgsByName backs generic substitution during scoring.
	typeArgsByName map[string]Type

	// ReturnArgs are out-params for generic or multi-return calls. An
	// entry is nil, an AddressOf, or an already-unwrapped expression.
	ReturnArgs []Expression

	ReturnType Type

	Ref      *FunctionDecl
	RefScore int

	Virtual bool

	// ArgsBeforeConversion snapshots original args that were wrapped into
	// implicit-conversion casts, for rollback when a better candidate
	// arrives.
	ArgsBeforeConversion map[int]Expression

	// CandidateUsesAs notes that some candidate would match through a
	// declared implicit conversion that could not be applied.
	CandidateUsesAs bool

	// candidates remembers every suggested decl for nearest-match
	// reporting.
	candidates []*FunctionDecl

	// lastRewriteRound enforces one desugaring rewrite per pass.
	lastRewriteRound int

	// inlined prevents re-expanding a call that was already spliced.
	inlined bool
}

// NewFunctionCall builds an unresolved call.
func NewFunctionCall(tok token.Token, name string, args ...Expression) *FunctionCall {
	return &FunctionCall{Tok: tok, Name: name, Args: args, RefScore: math.MinInt}
}

func (fc *FunctionCall) Token() token.Token   { return fc.Tok }
func (fc *FunctionCall) expressionNode()      {}
func (fc *FunctionCall) Accept(v Visitor)     { v.VisitFunctionCall(fc) }
func (fc *FunctionCall) IsReferencable() bool { return false }

func (fc *FunctionCall) GetType() Type { return fc.ReturnType }

// IsResolved reports whether the call is fully bound.
func (fc *FunctionCall) IsResolved() bool {
	return fc.Ref != nil && fc.RefScore > 0 && (fc.ReturnType != nil || fc.Ref.IsVoid())
}

// IsMember reports whether the call has a real receiver (namespace accesses
// qualify names, they do not make member calls).
func (fc *FunctionCall) IsMember() bool {
	if fc.Expr == nil {
		return false
	}
	if va, ok := fc.Expr.(*VariableAccess); ok {
		if _, isNS := va.Ref.(*NamespaceDecl); isNS {
			return false
		}
	}
	return true
}

func (fc *FunctionCall) Replace(old, new Node) bool {
	if fc.Expr != nil && Node(fc.Expr) == old {
		return replaceExpr(&fc.Expr, old, new)
	}
	for i, a := range fc.Args {
		if Node(a) == old {
			if ne, ok := new.(Expression); ok {
				fc.Args[i] = ne
				return true
			}
			return false
		}
	}
	for i, ra := range fc.ReturnArgs {
		if ra != nil && Node(ra) == old {
			if ne, ok := new.(Expression); ok {
				fc.ReturnArgs[i] = ne
				return true
			}
			return false
		}
	}
	if fc.ReturnType != nil && Node(fc.ReturnType) == old {
		return replaceType(&fc.ReturnType, old, new)
	}
	return false
}
