package ast

import "github.com/sablelang/sable/internal/config"

// Scoring rates a call-argument type against a declared parameter type.
// The caller is expected to substitute decl-side generic parameters
// (RealTypize) before scoring.

func (t *BaseType) GetScore(decl Type) int            { return scoreTypes(t, decl) }
func (t *SugarType) GetScore(decl Type) int           { return scoreTypes(t, decl) }
func (t *FuncType) GetScore(decl Type) int            { return scoreTypes(t, decl) }
func (t *TypeList) GetScore(decl Type) int            { return scoreTypes(t, decl) }
func (t *AnonymousStructType) GetScore(decl Type) int { return scoreTypes(t, decl) }

// numeric widening and narrowing pairs
var widens = map[[2]string]bool{
	{config.IntTypeName, config.FloatTypeName}:  true,
	{config.CharTypeName, config.IntTypeName}:   true,
	{config.CharTypeName, config.FloatTypeName}: true,
}

var narrows = map[[2]string]bool{
	{config.FloatTypeName, config.IntTypeName}:  true,
	{config.IntTypeName, config.CharTypeName}:   true,
	{config.FloatTypeName, config.CharTypeName}: true,
}

func scoreTypes(call, decl Type) int {
	if call == nil || decl == nil {
		return 0 // unknown
	}

	// Identity, including constructed types: List<Int> vs List<Int>.
	if call.Equals(decl) {
		return ScoreSeed
	}

	// A reference is transparent against its pointee's pointer (refToPointer)
	// and against the pointee itself.
	if cs, ok := call.(*SugarType); ok && cs.Kind == ReferenceTo {
		if ds, ok := decl.(*SugarType); ok && ds.Kind == PointerTo {
			return halfPositive(scoreTypes(cs.Inner, ds.Inner))
		}
		return scoreTypes(cs.Inner, decl)
	}

	// Decl-side generic parameter left unsubstituted: weakly compatible
	// with anything.
	if db, ok := decl.(*BaseType); ok && db.IsGenericParam() {
		return ScoreSeed / 16
	}

	switch c := call.(type) {
	case *BaseType:
		return scoreBase(c, decl)

	case *SugarType:
		if d, ok := decl.(*SugarType); ok && c.Kind == d.Kind {
			return halfPositive(scoreTypes(c.Inner, d.Inner))
		}
		// Any pointer satisfies the Pointer builtin.
		if c.Kind == PointerTo && isPointerBuiltin(decl) {
			return ScoreSeed / 4
		}
		return NoLuckScore

	case *FuncType:
		if d, ok := decl.(*FuncType); ok {
			if c.Equals(d) {
				return ScoreSeed
			}
			if len(c.ArgTypes) == len(d.ArgTypes) {
				return ScoreSeed / 8
			}
		}
		if isPointerBuiltin(decl) {
			return ScoreSeed / 8
		}
		return NoLuckScore

	case *TypeList:
		return NoLuckScore

	case *AnonymousStructType:
		return NoLuckScore
	}
	return NoLuckScore
}

func scoreBase(c *BaseType, decl Type) int {
	if c.IsGenericParam() {
		// Call side still generic: unknown until substituted.
		return 0
	}

	d, ok := decl.(*BaseType)
	if !ok {
		// A class instance or null satisfies a declared pointer slot.
		if ds, isSugar := decl.(*SugarType); isSugar && ds.Kind == PointerTo {
			if c.NameStr == config.PointerTypeName || c.TypeDeclRef() != nil {
				return ScoreSeed / 8
			}
		}
		return NoLuckScore
	}

	// Same name, differing (or missing) type arguments: weaker than
	// identity but compatible.
	if c.NameStr == d.NameStr {
		if len(c.TypeArgs) != len(d.TypeArgs) {
			return ScoreSeed / 2
		}
		total := ScoreSeed
		for i := range c.TypeArgs {
			s := scoreTypes(c.TypeArgs[i], d.TypeArgs[i])
			if s == NoLuckScore {
				return NoLuckScore
			}
			total = total/2 + s/2
		}
		return total
	}

	// Numeric conversions.
	if widens[[2]string{c.NameStr, d.NameStr}] {
		return ScoreSeed / 4
	}
	if narrows[[2]string{c.NameStr, d.NameStr}] {
		return -ScoreSeed / 4
	}

	// null (typed as the Pointer builtin) against any class type.
	if c.NameStr == config.PointerTypeName && d.TypeDeclRef() != nil {
		return ScoreSeed / 8
	}

	// Any class instance against the Pointer builtin.
	if d.NameStr == config.PointerTypeName && c.TypeDeclRef() != nil {
		return ScoreSeed / 8
	}

	// Subclass against superclass, closer ancestors scoring higher.
	if ctd, dtd := c.TypeDeclRef(), d.TypeDeclRef(); ctd != nil && dtd != nil {
		if depth := ctd.InheritanceDepth(dtd); depth > 0 {
			return ScoreSeed/2 - depth
		}
	}

	// Class against an interface it implements.
	if iface := d.InterfaceRef(); iface != nil {
		if ctd := c.TypeDeclRef(); ctd != nil && ctd.Implements(iface) {
			return ScoreSeed / 4
		}
	}

	return NoLuckScore
}

// halfPositive keeps NoLuck and negatives intact while damping positive
// scores earned through a wrapper layer.
func halfPositive(s int) int {
	if s > 0 {
		return s / 2
	}
	return s
}

func isPointerBuiltin(t Type) bool {
	bt, ok := t.(*BaseType)
	return ok && bt.NameStr == config.PointerTypeName
}

// RealTypize substitutes the candidate's formal generic parameters inside a
// declared type, using everything the call already knows: constraints,
// receiver type arguments, and inferred type args.
func RealTypize(decl Type, cand *FunctionDecl, call *FunctionCall) Type {
	subst := call.typeSubstFor(cand)
	if len(subst) == 0 {
		return decl
	}
	return substituteType(decl, subst)
}

// typeSubstFor assembles the substitution map for scoring against cand.
func (fc *FunctionCall) typeSubstFor(cand *FunctionDecl) map[string]Type {
	subst := map[string]Type{}

	// Receiver type arguments: xs: List<Int> maps List's T to Int.
	if fc.Expr != nil && cand.Owner != nil {
		recv := fc.Expr.GetType()
		if recv != nil {
			recv, _ = StripSugar(recv)
		}
		if bt, ok := recv.(*BaseType); ok {
			owner := cand.Owner
			if owner.IsMeta && owner.NonMeta != nil {
				owner = owner.NonMeta
			}
			for i, p := range owner.TypeParams {
				if i < len(bt.TypeArgs) && !IsGenericType(bt.TypeArgs[i]) {
					subst[p.NameStr] = bt.TypeArgs[i]
				}
			}
		}
	}

	for name, t := range cand.GenericConstraints {
		subst[name] = t
	}

	for name, t := range fc.typeArgsByName {
		subst[name] = t
	}

	return subst
}

// substituteType rewrites generic parameter references per subst, cloning
// only along changed paths.
func substituteType(t Type, subst map[string]Type) Type {
	switch tt := t.(type) {
	case nil:
		return nil
	case *BaseType:
		if repl, ok := subst[tt.NameStr]; ok && (tt.IsGenericParam() || tt.Ref == nil) {
			return repl
		}
		if len(tt.TypeArgs) == 0 {
			return tt
		}
		changed := false
		args := make([]Type, len(tt.TypeArgs))
		for i, a := range tt.TypeArgs {
			args[i] = substituteType(a, subst)
			if args[i] != a {
				changed = true
			}
		}
		if !changed {
			return tt
		}
		return &BaseType{Tok: tt.Tok, NameStr: tt.NameStr, TypeArgs: args, Ref: tt.Ref, builtin: tt.builtin}
	case *SugarType:
		inner := substituteType(tt.Inner, subst)
		if inner == tt.Inner {
			return tt
		}
		return &SugarType{Tok: tt.Tok, Kind: tt.Kind, Inner: inner}
	case *FuncType:
		changed := false
		args := make([]Type, len(tt.ArgTypes))
		for i, a := range tt.ArgTypes {
			args[i] = substituteType(a, subst)
			if args[i] != a {
				changed = true
			}
		}
		ret := substituteType(tt.Return, subst)
		if ret != tt.Return {
			changed = true
		}
		if !changed {
			return tt
		}
		return &FuncType{Tok: tt.Tok, ArgTypes: args, Return: ret}
	case *TypeList:
		changed := false
		parts := make([]Type, len(tt.Types))
		for i, p := range tt.Types {
			parts[i] = substituteType(p, subst)
			if parts[i] != p {
				changed = true
			}
		}
		if !changed {
			return tt
		}
		return &TypeList{Tok: tt.Tok, Types: parts}
	}
	return t
}

// FindImplicitConversion returns the conversion declared on the call-arg's
// type (or a super) whose function returns declType.
func FindImplicitConversion(argType, declType Type) *ImplicitConvDecl {
	base, _ := StripSugar(argType)
	bt, ok := base.(*BaseType)
	if !ok {
		return nil
	}
	for cur := bt.TypeDeclRef(); cur != nil; cur = cur.SuperRef {
		for _, conv := range cur.ImplicitConversions {
			if conv.FDecl != nil && conv.FDecl.ReturnType != nil &&
				conv.FDecl.ReturnType.Equals(declType) {
				return conv
			}
		}
	}
	return nil
}
