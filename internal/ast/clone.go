package ast

import "math"

// Cloning is used by the inliner (a fresh body per call site) and by
// return-type resolution (the call must own its resolved type). Clones keep
// already-bound type references: re-binding them would only reproduce the
// same lookup.

func (t *BaseType) CloneType() Type {
	c := &BaseType{Tok: t.Tok, NameStr: t.NameStr, Ref: t.Ref, builtin: t.builtin}
	for _, a := range t.TypeArgs {
		c.TypeArgs = append(c.TypeArgs, a.CloneType())
	}
	return c
}

func (t *SugarType) CloneType() Type {
	return &SugarType{Tok: t.Tok, Kind: t.Kind, Inner: t.Inner.CloneType()}
}

func (t *FuncType) CloneType() Type {
	c := &FuncType{Tok: t.Tok}
	for _, a := range t.ArgTypes {
		c.ArgTypes = append(c.ArgTypes, a.CloneType())
	}
	if t.Return != nil {
		c.Return = t.Return.CloneType()
	}
	return c
}

func (t *TypeList) CloneType() Type {
	c := &TypeList{Tok: t.Tok}
	for _, p := range t.Types {
		c.Types = append(c.Types, p.CloneType())
	}
	return c
}

func (t *AnonymousStructType) CloneType() Type {
	c := &AnonymousStructType{Tok: t.Tok}
	for _, p := range t.Types {
		c.Types = append(c.Types, p.CloneType())
	}
	return c
}

func cloneType(t Type) Type {
	if t == nil {
		return nil
	}
	return t.CloneType()
}

// CloneExpression deep-copies an expression tree. Accesses keep their name
// but drop their binding so the clone re-resolves in its new context.
func CloneExpression(e Expression) Expression {
	switch x := e.(type) {
	case nil:
		return nil
	case *IntLiteral:
		c := *x
		return &c
	case *FloatLiteral:
		c := *x
		return &c
	case *StringLiteral:
		c := *x
		return &c
	case *BoolLiteral:
		c := *x
		return &c
	case *NullLiteral:
		c := *x
		return &c
	case *VariableAccess:
		return &VariableAccess{Tok: x.Tok, Expr: CloneExpression(x.Expr), Name: x.Name}
	case *VariableDecl:
		return &VariableDecl{Tok: x.Tok, Name: x.Name, DeclTyp: cloneType(x.DeclTyp), Expr: CloneExpression(x.Expr)}
	case *AddressOf:
		return &AddressOf{Tok: x.Tok, Expr: CloneExpression(x.Expr), ForGenerics: x.ForGenerics}
	case *Cast:
		return &Cast{Tok: x.Tok, Inner: CloneExpression(x.Inner), TargetType: cloneType(x.TargetType)}
	case *BinaryOp:
		return &BinaryOp{Tok: x.Tok, Left: CloneExpression(x.Left), Op: x.Op, Right: CloneExpression(x.Right)}
	case *CommaSequence:
		c := &CommaSequence{Tok: x.Tok}
		for _, it := range x.Items {
			c.Items = append(c.Items, CloneExpression(it))
		}
		return c
	case *StructLiteral:
		c := &StructLiteral{Tok: x.Tok, TargetType: cloneType(x.TargetType)}
		for _, el := range x.Elements {
			c.Elements = append(c.Elements, CloneExpression(el))
		}
		return c
	case *TypeAccess:
		return &TypeAccess{Tok: x.Tok, Inner: cloneType(x.Inner)}
	case *FunctionCall:
		return x.Clone()
	}
	return e
}

// Clone deep-copies the call's arguments, preserving name and suffix and
// dropping all resolution state.
func (fc *FunctionCall) Clone() *FunctionCall {
	c := &FunctionCall{
		Tok:      fc.Tok,
		Expr:     CloneExpression(fc.Expr),
		Name:     fc.Name,
		Suffix:   fc.Suffix,
		RefScore: math.MinInt,
	}
	for _, a := range fc.Args {
		c.Args = append(c.Args, CloneExpression(a))
	}
	return c
}

// cloneNode clones statement-level nodes for body splicing.
func cloneNode(n Node) Node {
	switch x := n.(type) {
	case nil:
		return nil
	case Expression:
		return CloneExpression(x)
	case *Return:
		return &Return{Tok: x.Tok, Expr: CloneExpression(x.Expr)}
	case *Block:
		return cloneBlock(x)
	}
	return n
}

func cloneBlock(b *Block) *Block {
	c := &Block{Tok: b.Tok}
	for _, n := range b.BodyList {
		c.BodyList = append(c.BodyList, cloneNode(n))
	}
	return c
}

// CloneForInline produces the body clone reserved for inlining. The clone
// keeps the declared signature but is never resolved in place.
func (f *FunctionDecl) CloneForInline() *FunctionDecl {
	c := &FunctionDecl{
		Tok:        f.Tok,
		Name:       f.Name,
		Suffix:     f.Suffix,
		ReturnType: cloneType(f.ReturnType),
		Owner:      f.Owner,
		IsExtern:   f.IsExtern,
		IsStatic:   f.IsStatic,
	}
	for _, a := range f.Args {
		c.Args = append(c.Args, &Argument{Tok: a.Tok, Name: a.Name, Type: cloneType(a.Type), Default: CloneExpression(a.Default)})
	}
	if f.VArg != nil {
		c.VArg = &VarArg{Argument: Argument{Tok: f.VArg.Tok, Name: f.VArg.Name, Type: cloneType(f.VArg.Type)}}
	}
	for _, p := range f.TypeParams {
		c.TypeParams = append(c.TypeParams, &TypeParam{Tok: p.Tok, NameStr: p.NameStr})
	}
	if f.BodyBlock != nil {
		c.BodyBlock = cloneBlock(f.BodyBlock)
	}
	return c
}
