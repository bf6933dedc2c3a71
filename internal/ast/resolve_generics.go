package ast

import (
	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/diagnostics"
)

// ResolveTypeArg deduces the concrete type for a type parameter at this
// call site. The search order is: explicit constraints, the candidate's own
// arguments, the receiver, then the enclosing type and function decls.
//
// The second return value is the "need more information" signal: true means
// the answer may still arrive on a later pass, so the caller must loop, not
// fail.
func (fc *FunctionCall) ResolveTypeArg(name string, trail *Trail, res Resolver) (Type, bool) {
	ref := fc.Ref

	if ref != nil {
		if t, ok := ref.GenericConstraints[name]; ok {
			return t, false
		}
	}
	if t, ok := fc.typeArgsByName[name]; ok {
		return t, false
	}

	if ref != nil && ref.HasTypeParam(name) {
		if t, needMore := fc.typeArgFromArgs(name); t != nil || needMore {
			return t, needMore
		}
	}

	// The receiver: either used directly as a type, or carrying the
	// parameter among its type arguments.
	if fc.Expr != nil {
		if ta, ok := fc.Expr.(*TypeAccess); ok {
			if found := ta.Inner.SearchTypeArg(name); found != nil {
				return found, false
			}
		}
		if rt := fc.Expr.GetType(); rt != nil {
			base, _ := StripSugar(rt)
			if found := base.SearchTypeArg(name); found != nil && !IsGenericType(found) {
				return found, false
			}
		}
	}

	if trail != nil {
		if td := trail.InnermostTypeDecl(); td != nil {
			if p := td.TypeParamNamed(name); p != nil {
				return &BaseType{Tok: p.Tok, NameStr: name, Ref: p}, false
			}
			if found := td.InstanceType().SearchTypeArg(name); found != nil {
				return found, false
			}
		}
		for i := trail.Len() - 1; i >= 0; i-- {
			if fd, ok := trail.Get(i).(*FunctionDecl); ok {
				if p := fd.TypeParamNamed(name); p != nil {
					return &BaseType{Tok: p.Tok, NameStr: name, Ref: p}, false
				}
			}
		}
	}

	return nil, false
}

// typeArgFromArgs scans the declared arguments for a binding of name.
func (fc *FunctionCall) typeArgFromArgs(name string) (Type, bool) {
	ref := fc.Ref
	for i, declArg := range ref.Args {
		if i >= len(fc.Args) {
			break
		}
		callArg := fc.argForInference(i)

		// Declared as P (possibly wrapped): take the call arg's type,
		// stripped of the same number of wrappers.
		inner, depth := StripSugar(declArg.Type)
		if bt, ok := inner.(*BaseType); ok && bt.NameStr == name {
			at := callArg.GetType()
			if at == nil {
				return nil, true
			}
			aInner, aDepth := StripSugar(at)
			if aDepth == depth && !IsGenericType(aInner) {
				return aInner, false
			}
			continue
		}

		// Declared as func(...) -> P with a closure argument: use the
		// closure's inferred return type once it exists.
		if ft, ok := declArg.Type.(*FuncType); ok {
			if rbt, isBase := ft.Return.(*BaseType); isBase && rbt.NameStr == name {
				if fd, isFn := callArg.(*FunctionDecl); isFn {
					if fd.ReturnType != nil {
						return fd.ReturnType, false
					}
					if fd.InferredReturnType != nil {
						return fd.InferredReturnType, false
					}
					return nil, true
				}
			}
		}

		// Declared as `P: Class`: the call arg names the type itself.
		if declArg.Name == name && isClassType(declArg.Type) {
			switch a := callArg.(type) {
			case *VariableAccess:
				if td, ok := a.Ref.(*TypeDecl); ok {
					return &BaseType{Tok: a.Tok, NameStr: td.Name, Ref: td}, false
				}
				if a.Ref == nil {
					// The access hasn't bound yet; the answer may still
					// come on a later pass.
					return nil, true
				}
			case *TypeAccess:
				return a.Inner, false
			}
		}

		// Declared as OtherType<P>: dig through matching positions.
		if found := searchTypeArgIn(declArg.Type, name, callArg.GetType()); found != nil {
			return found, false
		}
	}
	return nil, false
}

// argForInference looks through implicit-conversion casts.
func (fc *FunctionCall) argForInference(i int) Expression {
	if orig, ok := fc.ArgsBeforeConversion[i]; ok {
		return orig
	}
	return fc.Args[i]
}

func isClassType(t Type) bool {
	bt, ok := t.(*BaseType)
	return ok && bt.NameStr == config.ClassTypeName
}

// searchTypeArgIn matches a declared constructed type against the call
// argument's type, position by position, looking for name.
func searchTypeArgIn(declType Type, name string, callType Type) Type {
	db, ok := declType.(*BaseType)
	if !ok || callType == nil {
		return nil
	}
	base, _ := StripSugar(callType)
	cb, ok := base.(*BaseType)
	if !ok {
		return nil
	}
	for i, a := range db.TypeArgs {
		if ab, isBase := a.(*BaseType); isBase && ab.NameStr == name {
			if i < len(cb.TypeArgs) && !IsGenericType(cb.TypeArgs[i]) {
				return cb.TypeArgs[i]
			}
			continue
		}
		if i < len(cb.TypeArgs) {
			if found := searchTypeArgIn(a, name, cb.TypeArgs[i]); found != nil {
				return found
			}
		}
	}
	return nil
}

// handleGenerics wraps arguments bound to bare generic parameters into
// by-reference slots and infers the call's type arguments. Returns true
// when the call mutated.
func (fc *FunctionCall) handleGenerics(trail *Trail, res Resolver) bool {
	ref := fc.Ref
	changed := false

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
		if !arg.IsReferencable() {
			tmp := &VariableDecl{Tok: arg.Token(), Name: res.NextTempName("generic_arg"), Expr: arg}
			if !trail.AddBeforeInScope(fc, tmp) {
				if res.Fatal() {
					res.Throw(diagnostics.NewError(diagnostics.ErrR004, fc.Tok,
						"couldn't add generic argument temporary before call to %s", fc.Name))
				} else {
					res.WholeAgain(fc, "no scope for generic argument temporary")
				}
				return changed
			}
			arg = NewAccess(arg.Token(), tmp)
		}
		fc.Args[i] = &AddressOf{Tok: arg.Token(), Expr: arg, ForGenerics: true}
		changed = true
	}

	if len(fc.TypeArgs) < len(ref.TypeParams) {
		for _, p := range ref.TypeParams {
			if _, done := fc.typeArgsByName[p.NameStr]; done {
				continue
			}
			t, needMore := fc.ResolveTypeArg(p.NameStr, trail, res)
			if needMore || t == nil {
				if res.Fatal() {
					res.Throw(diagnostics.NewError(diagnostics.ErrR003, fc.Tok,
						"missing info for type argument %s in call to %s", p.NameStr, fc.Name))
				} else {
					res.WholeAgain(fc, "type argument "+p.NameStr+" not inferable yet")
				}
				return changed
			}
			if fc.typeArgsByName == nil {
				fc.typeArgsByName = map[string]Type{}
			}
			fc.typeArgsByName[p.NameStr] = t
			fc.TypeArgs = append(fc.TypeArgs, typeArgExpression(t))
			changed = true
		}
	}
	return changed
}

// typeArgExpression wraps an inferred type for the backend: an access to
// the type's class object, or the Pointer builtin for function types.
func typeArgExpression(t Type) Expression {
	if _, ok := t.(*FuncType); ok {
		return &VariableAccess{Tok: t.Token(), Name: config.PointerTypeName}
	}
	base, _ := StripSugar(t)
	if bt, ok := base.(*BaseType); ok {
		va := &VariableAccess{Tok: t.Token(), Name: bt.NameStr}
		if d, ok := bt.Ref.(Declaration); ok {
			va.Ref = d
		}
		return va
	}
	return &TypeAccess{Tok: t.Token(), Inner: t}
}
