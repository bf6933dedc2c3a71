package ast

import (
	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/diagnostics"
)

// applyOneRewrite runs the first pending call-site desugaring, in the fixed
// order: inlining, generics, optional args, varargs boxing, interface
// casts, generic-return unwrapping, receiver lvalue fixup. At most one
// rewrite happens per pass; the owning stage keeps the pass even when it
// only signalled "need more info".
func (fc *FunctionCall) applyOneRewrite(trail *Trail, res Resolver) bool {
	if fc.pendingInline(res) {
		if fc.inlineCall(trail, res) {
			res.WholeAgain(fc, "call to "+fc.Ref.Name+" inlined")
		}
		return true
	}
	if fc.pendingGenerics() {
		if fc.handleGenerics(trail, res) {
			res.WholeAgain(fc, "generic call rewritten")
		}
		return true
	}
	if fc.pendingOptargs() {
		fc.handleOptargs()
		res.WholeAgain(fc, "optional arguments filled")
		return true
	}
	if fc.pendingVarargs() {
		if fc.handleVarargs(trail, res) {
			res.WholeAgain(fc, "varargs boxed")
		}
		return true
	}
	if fc.pendingInterfaces() {
		fc.handleInterfaces()
		res.WholeAgain(fc, "interface casts inserted")
		return true
	}
	if fc.pendingUnwrap(trail) {
		if fc.unwrapIfNeeded(trail, res) {
			res.WholeAgain(fc, "generic return unwrapped")
		}
		return true
	}
	if fc.pendingThisRef() {
		if fc.fixupThisRef(trail, res) {
			res.WholeAgain(fc, "receiver hoisted for by-ref call")
		}
		return true
	}
	return false
}

func (fc *FunctionCall) rewritesSettled(trail *Trail, res Resolver) bool {
	if fc.Ref == nil {
		return false
	}
	return !fc.pendingInline(res) && !fc.pendingGenerics() && !fc.pendingOptargs() &&
		!fc.pendingVarargs() && !fc.pendingInterfaces() && !fc.pendingUnwrap(trail) &&
		!fc.pendingThisRef()
}

// ---------------------------------------------------------------------------
// Inlining
// ---------------------------------------------------------------------------

func (fc *FunctionCall) pendingInline(res Resolver) bool {
	return res.Inlining() && fc.Ref.DoInline && !fc.inlined && fc.Ref.BodyBlock != nil
}

func (fc *FunctionCall) inlineCall(trail *Trail, res Resolver) bool {
	ref := fc.Ref
	if ref.InlineCopy == nil {
		ref.InlineCopy = ref.CloneForInline()
	}

	var retDecl *VariableDecl
	if !ref.IsVoid() {
		retDecl = &VariableDecl{Tok: fc.Tok, Name: res.NextTempName("inline_ret"), DeclTyp: fc.ReturnType.CloneType()}
		if !trail.AddBeforeInScope(fc, retDecl) {
			fc.structuralFailure(res, diagnostics.ErrR004, "couldn't place inline return temporary")
			return false
		}
	}

	ic := &InlineContext{Block: Block{Tok: fc.Tok}, Ref: ref}
	if retDecl != nil {
		ic.ReturnArgs = []Expression{NewAccess(fc.Tok, retDecl)}
	}

	// Bind call args to fresh locals so the spliced body reads them under
	// collision-free names.
	renames := map[string]*VariableDecl{}
	for i, param := range ref.Args {
		var init Expression
		if i < len(fc.Args) {
			init = fc.Args[i]
		} else if param.Default != nil {
			init = CloneExpression(param.Default)
		}
		local := &VariableDecl{Tok: fc.Tok, Name: res.NextTempName(param.Name), DeclTyp: cloneType(param.Type), Expr: init}
		ic.BodyList = append(ic.BodyList, local)
		renames[param.Name] = local
	}

	body := cloneBlock(ref.InlineCopy.BodyBlock)
	renameInNode(body, renames)
	ic.BodyList = append(ic.BodyList, body.BodyList...)

	if !trail.AddBeforeInScope(fc, ic) {
		fc.structuralFailure(res, diagnostics.ErrR004, "couldn't splice inlined body")
		return false
	}

	parent := trail.Peek(2)
	var replacement Node
	if retDecl != nil {
		replacement = NewAccess(fc.Tok, retDecl)
	} else {
		replacement = &CommaSequence{Tok: fc.Tok}
	}
	if parent == nil || !parent.Replace(fc, replacement) {
		fc.structuralFailure(res, diagnostics.ErrR005, "couldn't replace inlined call")
		return false
	}
	fc.inlined = true
	res.Trace("inlined %s at %s:%d", ref.Name, fc.Tok.File, fc.Tok.Line)
	return true
}

// renameInNode rewrites unqualified accesses to inlined parameter names.
func renameInNode(n Node, renames map[string]*VariableDecl) {
	switch x := n.(type) {
	case *VariableAccess:
		if x.Expr == nil {
			if local, ok := renames[x.Name]; ok {
				x.Name = local.Name
				x.Ref = local
			}
		} else {
			renameInNode(x.Expr, renames)
		}
	case *VariableDecl:
		if x.Expr != nil {
			renameInNode(x.Expr, renames)
		}
	case *AddressOf:
		renameInNode(x.Expr, renames)
	case *Cast:
		renameInNode(x.Inner, renames)
	case *BinaryOp:
		renameInNode(x.Left, renames)
		renameInNode(x.Right, renames)
	case *CommaSequence:
		for _, it := range x.Items {
			renameInNode(it, renames)
		}
	case *StructLiteral:
		for _, el := range x.Elements {
			renameInNode(el, renames)
		}
	case *FunctionCall:
		if x.Expr != nil {
			renameInNode(x.Expr, renames)
		}
		for _, a := range x.Args {
			renameInNode(a, renames)
		}
	case *Return:
		if x.Expr != nil {
			renameInNode(x.Expr, renames)
		}
	case *Block:
		for _, stmt := range x.BodyList {
			renameInNode(stmt, renames)
		}
	case *InlineContext:
		for _, stmt := range x.BodyList {
			renameInNode(stmt, renames)
		}
	}
}

// ---------------------------------------------------------------------------
// Generics (inference lives in resolve_generics.go)
// ---------------------------------------------------------------------------

func (fc *FunctionCall) pendingGenerics() bool {
	ref := fc.Ref
	if len(fc.TypeArgs) < len(ref.TypeParams) {
		return true
	}
	for i, declArg := range ref.Args {
		if i >= len(fc.Args) {
			break
		}
		bt, ok := declArg.Type.(*BaseType)
		if !ok || !bt.IsGenericParam() {
			continue
		}
		arg := fc.Args[i]
		if ao, isAO := arg.(*AddressOf); isAO && ao.ForGenerics {
			continue
		}
		if at := arg.GetType(); at != nil && IsGenericType(at) {
			continue
		}
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Optional arguments
// ---------------------------------------------------------------------------

func (fc *FunctionCall) pendingOptargs() bool {
	ref := fc.Ref
	if len(fc.Args) >= len(ref.Args) {
		return false
	}
	for i := len(fc.Args); i < len(ref.Args); i++ {
		if ref.Args[i].Default != nil {
			return true
		}
	}
	return false
}

func (fc *FunctionCall) handleOptargs() {
	ref := fc.Ref
	for i := len(fc.Args); i < len(ref.Args); i++ {
		if ref.Args[i].Default != nil {
			fc.Args = append(fc.Args, ref.Args[i].Default)
		}
	}
}

// ---------------------------------------------------------------------------
// Varargs boxing
// ---------------------------------------------------------------------------

func (fc *FunctionCall) pendingVarargs() bool {
	ref := fc.Ref
	if ref.VArg == nil || ref.VArg.Name == "" {
		// Bare extern varargs pass straight through.
		return false
	}
	if len(fc.Args) == len(ref.Args)+1 {
		if last := fc.Args[len(fc.Args)-1].GetType(); last != nil {
			if bt, ok := last.(*BaseType); ok && bt.NameStr == config.VarArgsTypeName {
				return false
			}
		}
	}
	return true
}

// handleVarargs boxes the trailing arguments: the values land in an
// anonymous struct of interleaved (class, value) pairs, and the call gets a
// single VarArgs struct carrying a pointer to it and the element count.
func (fc *FunctionCall) handleVarargs(trail *Trail, res Resolver) bool {
	ref := fc.Ref
	fixed := len(ref.Args)
	trailing := fc.Args[fixed:]
	n := len(trailing)

	structType := &AnonymousStructType{Tok: fc.Tok}
	var elements []Expression
	for _, a := range trailing {
		at := a.GetType()
		if at == nil {
			res.WholeAgain(fc, "vararg type not known yet")
			return false
		}
		structType.Types = append(structType.Types,
			&BaseType{Tok: a.Token(), NameStr: config.ClassTypeName},
			at.CloneType())
		elements = append(elements,
			&TypeAccess{Tok: a.Token(), Inner: at.CloneType()},
			a)
	}

	argsDecl := &VariableDecl{
		Tok:     fc.Tok,
		Name:    res.NextTempName("va_args"),
		DeclTyp: structType,
		Expr:    &StructLiteral{Tok: fc.Tok, TargetType: structType, Elements: elements},
	}
	if !trail.AddBeforeInScope(fc, argsDecl) {
		fc.structuralFailure(res, diagnostics.ErrR004, "couldn't place varargs payload")
		return false
	}

	vaType := &BaseType{Tok: fc.Tok, NameStr: config.VarArgsTypeName}
	vaDecl := &VariableDecl{
		Tok:     fc.Tok,
		Name:    res.NextTempName("va"),
		DeclTyp: vaType,
		Expr: &StructLiteral{Tok: fc.Tok, TargetType: vaType, Elements: []Expression{
			&AddressOf{Tok: fc.Tok, Expr: NewAccess(fc.Tok, argsDecl)},
			&NullLiteral{Tok: fc.Tok},
			&IntLiteral{Tok: fc.Tok, Value: int64(n)},
		}},
	}
	if !trail.AddBeforeInScope(fc, vaDecl) {
		fc.structuralFailure(res, diagnostics.ErrR004, "couldn't place varargs struct")
		return false
	}

	fc.Args = append(fc.Args[:fixed], NewAccess(fc.Tok, vaDecl))
	return true
}

// ---------------------------------------------------------------------------
// Interface casts
// ---------------------------------------------------------------------------

func (fc *FunctionCall) pendingInterfaces() bool {
	ref := fc.Ref
	for i, declArg := range ref.Args {
		if i >= len(fc.Args) {
			break
		}
		bt, ok := declArg.Type.(*BaseType)
		if !ok || bt.InterfaceRef() == nil {
			continue
		}
		at := fc.Args[i].GetType()
		if at != nil && !at.Equals(declArg.Type) {
			return true
		}
	}
	return false
}

func (fc *FunctionCall) handleInterfaces() {
	ref := fc.Ref
	for i, declArg := range ref.Args {
		if i >= len(fc.Args) {
			break
		}
		bt, ok := declArg.Type.(*BaseType)
		if !ok || bt.InterfaceRef() == nil {
			continue
		}
		at := fc.Args[i].GetType()
		if at == nil || at.Equals(declArg.Type) {
			continue
		}
		arg := fc.Args[i]
		fc.Args[i] = &Cast{Tok: arg.Token(), Inner: arg, TargetType: declArg.Type.CloneType()}
	}
}

// ---------------------------------------------------------------------------
// Generic-return unwrapping
// ---------------------------------------------------------------------------

func (fc *FunctionCall) pendingUnwrap(trail *Trail) bool {
	if !fc.Ref.HasGenericReturn() || len(fc.ReturnArgs) > 0 {
		return false
	}
	return !friendlyHost(trail.Peek(2), fc)
}

// friendlyHost reports parents that can receive a generic return value
// without an unwrapping temp.
func friendlyHost(parent Node, fc *FunctionCall) bool {
	switch p := parent.(type) {
	case nil, *Block, *Module, *InlineContext, *CommaSequence, *VariableDecl:
		return true
	case *BinaryOp:
		return p.IsAssign() && Node(p.Right) == Node(fc)
	}
	return false
}

func (fc *FunctionCall) unwrapIfNeeded(trail *Trail, res Resolver) bool {
	retType := fc.ReturnType
	if tl, ok := retType.(*TypeList); ok && len(tl.Types) > 0 {
		retType = tl.Types[0]
	}
	vDecl := &VariableDecl{Tok: fc.Tok, Name: res.NextTempName("unwrap"), DeclTyp: retType.CloneType()}
	if !trail.AddBeforeInScope(fc, vDecl) {
		fc.structuralFailure(res, diagnostics.ErrR004, "couldn't place unwrap temporary")
		return false
	}

	seq := &CommaSequence{Tok: fc.Tok, Items: []Expression{fc, NewAccess(fc.Tok, vDecl)}}
	parent := trail.Peek(2)
	if parent == nil || !parent.Replace(fc, seq) {
		fc.structuralFailure(res, diagnostics.ErrR005, "couldn't unwrap call result")
		return false
	}
	fc.ReturnArgs = append(fc.ReturnArgs, NewAccess(fc.Tok, vDecl))
	return true
}

// ---------------------------------------------------------------------------
// Receiver lvalue fixup
// ---------------------------------------------------------------------------

func (fc *FunctionCall) pendingThisRef() bool {
	return fc.Ref.IsThisRef && fc.Expr != nil && !fc.Expr.IsReferencable()
}

func (fc *FunctionCall) fixupThisRef(trail *Trail, res Resolver) bool {
	tmp := &VariableDecl{Tok: fc.Tok, Name: res.NextTempName("this"), Expr: fc.Expr}
	if !trail.AddBeforeInScope(fc, tmp) {
		fc.structuralFailure(res, diagnostics.ErrR004, "couldn't hoist receiver")
		return false
	}
	fc.Expr = NewAccess(fc.Tok, tmp)
	return true
}

// ---------------------------------------------------------------------------
// super
// ---------------------------------------------------------------------------

// resolveSuper binds a super(...) call: the enclosing function's owner's
// super class provides the target through its meta, the receiver becomes
// this, and omitted arguments are forwarded from the enclosing function.
func (fc *FunctionCall) resolveSuper(trail *Trail, res Resolver) {
	if fc.Ref != nil {
		return
	}
	fn := trail.InnermostFunction()
	if fn == nil || fn.Owner == nil {
		if res.Fatal() {
			res.Throw(diagnostics.NewError(diagnostics.ErrR001, fc.Tok,
				"super call outside of a method"))
		} else {
			res.WholeAgain(fc, "super call not inside a method yet")
		}
		return
	}
	owner := ownerNonMeta(fn)
	super := owner.SuperRef
	if super == nil {
		if res.Fatal() {
			res.Throw(diagnostics.NewError(diagnostics.ErrR001, fc.Tok,
				"super call in %s, which extends nothing", owner.Name))
		} else {
			res.WholeAgain(fc, "super class not bound yet")
		}
		return
	}

	score := 0
	var target *FunctionDecl
	if super.Meta != nil {
		target = super.Meta.GetFunction(fn.Name, "", &score)
	}
	if target == nil {
		target = super.GetFunction(fn.Name, "", &score)
	}
	if target == nil {
		if res.Fatal() {
			res.Throw(diagnostics.NewError(diagnostics.ErrR001, fc.Tok,
				"no function %s to super-call in %s", fn.Name, super.Name))
		} else {
			res.WholeAgain(fc, "super target not found yet")
		}
		return
	}

	fc.Ref = target
	fc.RefScore = score
	if super.ThisDecl != nil {
		fc.Expr = NewAccess(fc.Tok, super.ThisDecl)
	} else if owner.ThisDecl != nil {
		fc.Expr = NewAccess(fc.Tok, owner.ThisDecl)
	}
	if len(fc.Args) == 0 && len(fn.Args) > 0 {
		for _, a := range fn.Args {
			fc.Args = append(fc.Args, NewAccess(fc.Tok, a))
		}
	}
	res.Trace("super call in %s bound to %s.%s", owner.Name, super.Name, target.Name)
}

func (fc *FunctionCall) structuralFailure(res Resolver, code diagnostics.ErrorCode, msg string) {
	if res.Fatal() {
		res.Throw(diagnostics.NewError(code, fc.Tok, "%s", msg))
		return
	}
	res.WholeAgain(fc, msg)
}
