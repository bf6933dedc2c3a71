package ast

import (
	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/diagnostics"
)

// Literals have nothing to resolve.

func (l *IntLiteral) Resolve(trail *Trail, res Resolver) Response    { return Done }
func (l *FloatLiteral) Resolve(trail *Trail, res Resolver) Response  { return Done }
func (l *StringLiteral) Resolve(trail *Trail, res Resolver) Response { return Done }
func (l *BoolLiteral) Resolve(trail *Trail, res Resolver) Response   { return Done }
func (l *NullLiteral) Resolve(trail *Trail, res Resolver) Response   { return Done }
func (p *TypeParam) Resolve(trail *Trail, res Resolver) Response     { return Done }

func (ic *ImplicitConvDecl) Resolve(trail *Trail, res Resolver) Response {
	return ic.FDecl.Resolve(trail, res)
}

// resolveAll runs child resolutions under the parent already pushed on the
// trail. The caller owns the push.
func resolveAll(trail *Trail, res Resolver, nodes ...Node) Response {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	return Done
}

func (m *Module) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(m)
	defer trail.Pop(m)
	return resolveAll(trail, res, m.BodyList...)
}

func (b *Block) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(b)
	defer trail.Pop(b)
	return resolveAll(trail, res, b.BodyList...)
}

func (ic *InlineContext) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(ic)
	defer trail.Pop(ic)
	return resolveAll(trail, res, ic.BodyList...)
}

func (vd *VariableDecl) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(vd)
	defer trail.Pop(vd)
	if vd.DeclTyp != nil {
		if vd.DeclTyp.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	if vd.Expr != nil {
		if vd.Expr.Resolve(trail, res) == Loop {
			return Loop
		}
		if vd.DeclTyp == nil && vd.Expr.GetType() == nil {
			res.WholeAgain(vd, "variable type not inferred yet")
		}
	}
	return Done
}

func (a *Argument) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(a)
	defer trail.Pop(a)
	if a.Type != nil {
		if a.Type.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	if a.Default != nil {
		return a.Default.Resolve(trail, res)
	}
	return Done
}

func (va *VarArg) Resolve(trail *Trail, res Resolver) Response {
	return va.Argument.Resolve(trail, res)
}

func (f *FunctionDecl) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(f)
	defer trail.Pop(f)

	for _, a := range f.Args {
		if a.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	if f.VArg != nil {
		if f.VArg.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	if f.ReturnType != nil {
		if f.ReturnType.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	if f.BodyBlock != nil {
		if f.BodyBlock.Resolve(trail, res) == Loop {
			return Loop
		}
	}

	// Anonymous closures advertise their body's return type once known.
	if f.IsAnon && f.ReturnType == nil && f.InferredReturnType == nil && f.BodyBlock != nil {
		if t := firstReturnType(f.BodyBlock); t != nil {
			f.InferredReturnType = t
			res.WholeAgain(f, "closure return type inferred")
		}
	}
	return Done
}

func firstReturnType(b *Block) Type {
	for _, n := range b.BodyList {
		if r, ok := n.(*Return); ok && r.Expr != nil {
			if t := r.Expr.GetType(); t != nil {
				return t
			}
		}
	}
	return nil
}

func (t *TypeDecl) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(t)
	defer trail.Pop(t)

	if t.SuperType != nil {
		if t.SuperType.Resolve(trail, res) == Loop {
			return Loop
		}
		if bt, ok := t.SuperType.(*BaseType); ok && t.SuperRef == nil {
			if super := bt.TypeDeclRef(); super != nil {
				t.SuperRef = super
				if t.Meta != nil && super.Meta != nil {
					t.Meta.SuperRef = super.Meta
				}
				res.WholeAgain(t, "super ref bound")
			} else if !bt.IsResolved() {
				res.WholeAgain(t, "super type not resolved yet")
			}
		}
	}
	for _, it := range t.Interfaces {
		if it.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	for _, vd := range t.Variables {
		if vd.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	for _, f := range t.Functions {
		if f.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	for _, conv := range t.ImplicitConversions {
		if conv.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	if t.Meta != nil && !t.IsMeta {
		if t.Meta.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	return Done
}

func (i *InterfaceDecl) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(i)
	defer trail.Pop(i)
	for _, f := range i.Functions {
		if f.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	return Done
}

func (n *NamespaceDecl) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(n)
	defer trail.Pop(n)
	for _, vd := range n.Variables {
		if vd.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	for _, f := range n.Functions {
		if f.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	return Done
}

func (ao *AddressOf) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(ao)
	defer trail.Pop(ao)
	return ao.Expr.Resolve(trail, res)
}

func (c *Cast) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(c)
	defer trail.Pop(c)
	if c.Inner.Resolve(trail, res) == Loop {
		return Loop
	}
	return c.TargetType.Resolve(trail, res)
}

func (b *BinaryOp) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(b)
	defer trail.Pop(b)
	if b.Left.Resolve(trail, res) == Loop {
		return Loop
	}
	return b.Right.Resolve(trail, res)
}

func (cs *CommaSequence) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(cs)
	defer trail.Pop(cs)
	for _, it := range cs.Items {
		if it.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	return Done
}

func (sl *StructLiteral) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(sl)
	defer trail.Pop(sl)
	if sl.TargetType.Resolve(trail, res) == Loop {
		return Loop
	}
	for _, el := range sl.Elements {
		if el.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	return Done
}

func (ta *TypeAccess) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(ta)
	defer trail.Pop(ta)
	return ta.Inner.Resolve(trail, res)
}

func (r *Return) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(r)
	popped := false
	defer func() {
		if !popped {
			trail.Pop(r)
		}
	}()

	if r.Expr != nil {
		if r.Expr.Resolve(trail, res) == Loop {
			return Loop
		}
	}

	// Inside an inlined body, a return becomes an assignment to the
	// inline context's return slot.
	icIdx := trail.Find(func(n Node) bool { _, ok := n.(*InlineContext); return ok })
	fnIdx := trail.Find(func(n Node) bool { _, ok := n.(*FunctionDecl); return ok })
	if icIdx >= 0 && icIdx > fnIdx {
		ic := trail.Get(icIdx).(*InlineContext)
		if r.Expr != nil && len(ic.ReturnArgs) > 0 {
			assign := &BinaryOp{Tok: r.Tok, Left: CloneExpression(ic.ReturnArgs[0]), Op: "=", Right: r.Expr}
			trail.Pop(r)
			popped = true
			parent := trail.Peek(1)
			if parent == nil || !parent.Replace(r, assign) {
				res.Throw(diagnostics.NewError(diagnostics.ErrR005, r.Tok,
					"couldn't replace return inside inlined body"))
				return Done
			}
			res.WholeAgain(assign, "return rewritten for inlining")
		}
	}
	return Done
}

// ---------------------------------------------------------------------------
// Type resolution
// ---------------------------------------------------------------------------

func (t *BaseType) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(t)
	defer trail.Pop(t)

	for _, a := range t.TypeArgs {
		if a.Resolve(trail, res) == Loop {
			return Loop
		}
	}

	if t.Ref != nil || t.builtin {
		return Done
	}
	if t.IsBuiltin() {
		t.builtin = true
		return Done
	}

	// Innermost scope first: function type params, then class type params,
	// then module-level declarations, then imports.
	for i := trail.Len() - 1; i >= 0; i-- {
		switch anc := trail.Get(i).(type) {
		case *FunctionDecl:
			if p := anc.TypeParamNamed(t.NameStr); p != nil {
				t.Ref = p
				return Done
			}
		case *TypeDecl:
			if p := anc.TypeParamNamed(t.NameStr); p != nil {
				t.Ref = p
				return Done
			}
		case *Module:
			if d := anc.TypeNamed(t.NameStr); d != nil {
				t.Ref = d
				return Done
			}
			for _, imp := range anc.Imports {
				if d := imp.TypeNamed(t.NameStr); d != nil {
					t.Ref = d
					return Done
				}
			}
		}
	}

	if res.Fatal() {
		res.Throw(diagnostics.NewError(diagnostics.ErrR007, t.Tok,
			"undefined type %s", t.NameStr))
		return Done
	}
	res.WholeAgain(t, "type "+t.NameStr+" not bound yet")
	return Done
}

func (t *SugarType) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(t)
	defer trail.Pop(t)
	return t.Inner.Resolve(trail, res)
}

func (t *FuncType) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(t)
	defer trail.Pop(t)
	for _, a := range t.ArgTypes {
		if a.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	if t.Return != nil {
		return t.Return.Resolve(trail, res)
	}
	return Done
}

func (t *TypeList) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(t)
	defer trail.Pop(t)
	for _, p := range t.Types {
		if p.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	return Done
}

func (t *AnonymousStructType) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(t)
	defer trail.Pop(t)
	for _, p := range t.Types {
		if p.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	return Done
}

// ---------------------------------------------------------------------------
// Variable access resolution
// ---------------------------------------------------------------------------

func (va *VariableAccess) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(va)
	defer trail.Pop(va)

	if va.Expr != nil {
		if va.Expr.Resolve(trail, res) == Loop {
			return Loop
		}
	}

	if va.Ref != nil {
		return Done
	}

	if va.Expr != nil {
		va.resolveMember(trail, res)
	} else {
		va.resolvePlain(trail, res)
	}

	if va.Ref == nil {
		if res.Fatal() {
			res.Throw(diagnostics.NewError(diagnostics.ErrR006, va.Tok,
				"undefined variable %s", va.Name))
			return Done
		}
		res.WholeAgain(va, "access "+va.Name+" not bound yet")
	}
	return Done
}

func (va *VariableAccess) resolveMember(trail *Trail, res Resolver) {
	// Namespace-qualified access.
	if recv, ok := va.Expr.(*VariableAccess); ok {
		if ns, isNS := recv.Ref.(*NamespaceDecl); isNS {
			for _, vd := range ns.Variables {
				if vd.Name == va.Name {
					va.Ref = vd
					return
				}
			}
			return
		}
	}

	recvType := va.Expr.GetType()
	if recvType == nil {
		res.WholeAgain(va, "receiver type unknown")
		return
	}
	base, _ := StripSugar(recvType)
	bt, ok := base.(*BaseType)
	if !ok {
		return
	}
	if td := bt.TypeDeclRef(); td != nil {
		if field := td.VariableNamed(va.Name); field != nil {
			va.Ref = field
		}
	}
}

func (va *VariableAccess) resolvePlain(trail *Trail, res Resolver) {
	if va.Name == config.ThisVarName {
		if td := trail.InnermostTypeDecl(); td != nil && td.ThisDecl != nil {
			va.Ref = td.ThisDecl
			return
		}
	}
	for i := trail.Len() - 1; i >= 0; i-- {
		if ar, ok := trail.Get(i).(AccessResolver); ok {
			if ar.ResolveAccess(va, res, trail) == -1 {
				res.WholeAgain(va, "access resolver needs another pass")
				return
			}
			if va.Ref != nil {
				return
			}
		}
	}
}

func (f *FunctionDecl) ResolveAccess(va *VariableAccess, res Resolver, trail *Trail) int {
	for _, a := range f.Args {
		if a.Name == va.Name {
			va.Ref = a
			return 0
		}
	}
	if f.VArg != nil && f.VArg.Name == va.Name {
		va.Ref = &f.VArg.Argument
		return 0
	}
	return 0
}

func (b *Block) ResolveAccess(va *VariableAccess, res Resolver, trail *Trail) int {
	return resolveAccessInBody(b.BodyList, va)
}

func (m *Module) ResolveAccess(va *VariableAccess, res Resolver, trail *Trail) int {
	if resolveAccessInBody(m.BodyList, va) == 0 && va.Ref != nil {
		return 0
	}
	for _, n := range m.BodyList {
		switch d := n.(type) {
		case *TypeDecl:
			if d.Name == va.Name {
				va.Ref = d
				return 0
			}
		case *NamespaceDecl:
			if d.Name == va.Name {
				va.Ref = d
				return 0
			}
		}
	}
	for _, imp := range m.Imports {
		if resolveAccessInBody(imp.BodyList, va) == 0 && va.Ref != nil {
			return 0
		}
	}
	return 0
}

func (t *TypeDecl) ResolveAccess(va *VariableAccess, res Resolver, trail *Trail) int {
	if field := t.VariableNamed(va.Name); field != nil {
		va.Ref = field
		return 0
	}
	// Constructors and statics live on the meta but see instance fields.
	if t.IsMeta && t.NonMeta != nil {
		if field := t.NonMeta.VariableNamed(va.Name); field != nil {
			va.Ref = field
		}
	}
	return 0
}

func (n *NamespaceDecl) ResolveAccess(va *VariableAccess, res Resolver, trail *Trail) int {
	for _, vd := range n.Variables {
		if vd.Name == va.Name {
			va.Ref = vd
			return 0
		}
	}
	return 0
}

func resolveAccessInBody(body []Node, va *VariableAccess) int {
	for _, n := range body {
		if vd, ok := n.(*VariableDecl); ok && vd.Name == va.Name {
			va.Ref = vd
			return 0
		}
	}
	return 0
}

// ---------------------------------------------------------------------------
// Call candidate sourcing
// ---------------------------------------------------------------------------

func (m *Module) ResolveCall(call *FunctionCall, res Resolver, trail *Trail) int {
	for _, fd := range m.FunctionsNamed(call.Name) {
		call.Suggest(fd, res, trail)
	}
	for _, imp := range m.Imports {
		for _, fd := range imp.FunctionsNamed(call.Name) {
			call.Suggest(fd, res, trail)
		}
	}
	return 0
}

func (b *Block) ResolveCall(call *FunctionCall, res Resolver, trail *Trail) int {
	for _, n := range b.BodyList {
		vd, ok := n.(*VariableDecl)
		if !ok || vd.Name != call.Name {
			continue
		}
		if fd, isFn := vd.Expr.(*FunctionDecl); isFn {
			call.Suggest(fd, res, trail)
		}
	}
	return 0
}

func (t *TypeDecl) ResolveCall(call *FunctionCall, res Resolver, trail *Trail) int {
	for _, fd := range t.FunctionsNamed(call.Name) {
		call.Suggest(fd, res, trail)
	}
	if t.Meta != nil && !t.IsMeta {
		for _, fd := range t.Meta.FunctionsNamed(call.Name) {
			call.Suggest(fd, res, trail)
		}
	}
	if t.IsMeta && t.NonMeta != nil {
		for _, fd := range t.NonMeta.FunctionsNamed(call.Name) {
			call.Suggest(fd, res, trail)
		}
	}
	return 0
}

func (n *NamespaceDecl) ResolveCall(call *FunctionCall, res Resolver, trail *Trail) int {
	for _, fd := range n.Functions {
		if fd.Name == call.Name {
			call.Suggest(fd, res, trail)
		}
	}
	return 0
}

// FunctionDecl as an expression: anonymous closures.

func (f *FunctionDecl) expressionNode()      {}
func (f *FunctionDecl) IsReferencable() bool { return false }

func (f *FunctionDecl) GetType() Type {
	ft := &FuncType{Tok: f.Tok}
	for _, a := range f.Args {
		ft.ArgTypes = append(ft.ArgTypes, a.Type)
	}
	if f.ReturnType != nil {
		ft.Return = f.ReturnType
	} else if f.InferredReturnType != nil {
		ft.Return = f.InferredReturnType
	}
	return ft
}
