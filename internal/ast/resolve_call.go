package ast

import (
	"strings"

	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/diagnostics"
)

func (fc *FunctionCall) Resolve(trail *Trail, res Resolver) Response {
	trail.Push(fc)
	defer trail.Pop(fc)

	if fc.Expr != nil {
		if fc.Expr.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	for _, a := range fc.Args {
		if a.Resolve(trail, res) == Loop {
			return Loop
		}
	}
	for _, ra := range fc.ReturnArgs {
		if ra == nil {
			continue
		}
		if ra.Resolve(trail, res) == Loop {
			return Loop
		}
	}

	// A call that has its candidate, its return type and all rewrites is
	// stable; revisiting it must not mutate anything.
	if fc.IsResolved() && fc.rewritesSettled(trail, res) {
		fc.checkVoidUse(trail, res)
		return Done
	}

	if fc.Name == config.SuperFuncName {
		fc.resolveSuper(trail, res)
		if fc.RefScore <= 0 {
			return Done
		}
	} else {
		fc.gatherCandidates(trail, res)
	}

	if fc.RefScore <= 0 {
		if res.Fatal() {
			fc.throwUnresolved(trail, res)
		} else {
			res.WholeAgain(fc, "no candidate for "+fc.Name+" yet")
		}
		return Done
	}

	if !fc.resolveReturnType(trail, res) {
		return Done
	}

	// One desugaring rewrite per pass, each one scheduling the next pass.
	if fc.lastRewriteRound != res.Round() {
		if fc.applyOneRewrite(trail, res) {
			fc.lastRewriteRound = res.Round()
			return Done
		}
	}

	fc.checkVoidUse(trail, res)
	return Done
}

// gatherCandidates feeds Suggest through the two sourcing channels: the
// receiver's type declaration for member calls, the trail's enclosing
// scopes otherwise. Suggestion order is stable: lexical, then
// scope-outward.
func (fc *FunctionCall) gatherCandidates(trail *Trail, res Resolver) {
	if fc.Expr != nil {
		// Qualified rather than member calls: Namespace f(), Type new().
		if va, ok := fc.Expr.(*VariableAccess); ok {
			if ns, isNS := va.Ref.(*NamespaceDecl); isNS {
				ns.ResolveCall(fc, res, trail)
				return
			}
			if td, isTD := va.Ref.(*TypeDecl); isTD {
				fc.suggestMeta(td, res, trail)
				return
			}
		}
		if ta, ok := fc.Expr.(*TypeAccess); ok {
			if bt, isBase := ta.Inner.(*BaseType); isBase {
				if td := bt.TypeDeclRef(); td != nil {
					fc.suggestMeta(td, res, trail)
					return
				}
			}
		}

		recvType := fc.Expr.GetType()
		if recvType == nil {
			res.WholeAgain(fc, "receiver type unknown")
			return
		}
		base, _ := StripSugar(recvType)
		bt, ok := base.(*BaseType)
		if !ok {
			return
		}
		if td := bt.TypeDeclRef(); td != nil {
			td.ResolveCall(fc, res, trail)
			return
		}
		if iface := bt.InterfaceRef(); iface != nil {
			for _, fd := range iface.Functions {
				if fd.Name == fc.Name {
					fc.Suggest(fd, res, trail)
				}
			}
			return
		}
		return
	}

	for i := trail.Len() - 1; i >= 0; i-- {
		if cr, ok := trail.Get(i).(CallResolver); ok {
			if cr.ResolveCall(fc, res, trail) == -1 {
				res.WholeAgain(fc, "candidate source needs another pass")
				return
			}
		}
	}
}

func (fc *FunctionCall) suggestMeta(td *TypeDecl, res Resolver, trail *Trail) {
	if td.Meta != nil {
		td.Meta.ResolveCall(fc, res, trail)
	} else {
		td.ResolveCall(fc, res, trail)
	}
}

// Suggest scores a candidate and takes it when it strictly beats the
// current reference. Equal scores keep the earlier candidate.
func (fc *FunctionCall) Suggest(cand *FunctionDecl, res Resolver, trail *Trail) bool {
	if fc.IsMember() && cand.Owner == nil && cand.OwnerInterface == nil {
		return false
	}
	fc.noteCandidate(cand)

	score, convs, usesAs, unknown := fc.scoreCandidate(cand)
	if usesAs {
		fc.CandidateUsesAs = true
	}
	if unknown && res != nil {
		res.WholeAgain(fc, "argument types not known yet")
	}

	if score > fc.RefScore {
		fc.rollbackConversions()
		fc.applyConversions(convs)
		fc.Ref = cand
		fc.RefScore = score
		fc.Virtual = cand.OwnerInterface != nil || (cand.Owner != nil && !cand.IsStatic)
		if res != nil {
			res.Trace("call %s: candidate %s scored %d", fc.Name, cand.Name, score)
		}
	}
	return score > 0
}

func (fc *FunctionCall) noteCandidate(cand *FunctionDecl) {
	for _, c := range fc.candidates {
		if c == cand {
			return
		}
	}
	fc.candidates = append(fc.candidates, cand)
}

// MatchesArgs checks arity under optional and variadic rules. Once a
// declared VarArg is reached it consumes any number of trailing call args,
// including zero.
func (fc *FunctionCall) MatchesArgs(cand *FunctionDecl) bool {
	n := len(fc.Args)
	required := 0
	for _, a := range cand.Args {
		if a.Default == nil {
			required++
		}
	}
	if cand.VArg != nil {
		return n >= required
	}
	return n >= required && n <= len(cand.Args)
}

// scoreCandidate computes the weighted score of §4.6: arity, memberness,
// suffix agreement, then per-argument type scores with generic substitution
// and implicit-conversion handling.
func (fc *FunctionCall) scoreCandidate(cand *FunctionDecl) (score int, convs map[int]Type, usesAs bool, unknown bool) {
	if !fc.MatchesArgs(cand) {
		return NoLuckScore, nil, false, false
	}
	if fc.Suffix != "" && cand.Suffix != fc.Suffix {
		return NoLuckScore, nil, false, false
	}

	score = ScoreSeed / 4
	if cand.Owner != nil && fc.IsMember() {
		score += ScoreSeed / 4
	}
	if fc.Suffix == "" && cand.Suffix == "" && !cand.IsStatic {
		score += ScoreSeed / 4
	}
	if fc.Suffix != "" && cand.Suffix == fc.Suffix {
		score += ScoreSeed / 4
	}

	for i := 0; i < len(cand.Args) && i < len(fc.Args); i++ {
		declType := RealTypize(cand.Args[i].Type, cand, fc)
		argType := fc.argTypeForScoring(i)
		if argType == nil {
			unknown = true
			continue // unknown scores 0
		}
		s := argType.GetScore(declType)
		if s == NoLuckScore {
			conv := FindImplicitConversion(argType, declType)
			if conv == nil {
				return NoLuckScore, nil, usesAs, unknown
			}
			if !cand.IsExtern && config.ImplicitAsExternalOnly {
				return NoLuckScore, nil, true, unknown
			}
			if convs == nil {
				convs = map[int]Type{}
			}
			convs[i] = declType.CloneType()
			s = ScoreSeed / 8
		}
		score += s
	}
	return score, convs, usesAs, unknown
}

// argTypeForScoring looks through implicit-conversion casts so candidates
// are always rated against the caller's original expressions.
func (fc *FunctionCall) argTypeForScoring(i int) Type {
	if orig, ok := fc.ArgsBeforeConversion[i]; ok {
		return orig.GetType()
	}
	return fc.Args[i].GetType()
}

func (fc *FunctionCall) rollbackConversions() {
	for i, orig := range fc.ArgsBeforeConversion {
		fc.Args[i] = orig
	}
	fc.ArgsBeforeConversion = nil
}

func (fc *FunctionCall) applyConversions(convs map[int]Type) {
	if len(convs) == 0 {
		return
	}
	fc.ArgsBeforeConversion = map[int]Expression{}
	for i, target := range convs {
		orig := fc.Args[i]
		fc.ArgsBeforeConversion[i] = orig
		fc.Args[i] = &Cast{Tok: orig.Token(), Inner: orig, TargetType: target}
	}
}

// resolveReturnType binds the call's return type from the winning
// candidate, substituting generic parameters first. Returns false when the
// call must wait for another pass.
func (fc *FunctionCall) resolveReturnType(trail *Trail, res Resolver) bool {
	if fc.ReturnType != nil {
		return true
	}
	ref := fc.Ref

	if ref.ReturnType == nil {
		fc.ReturnType = &BaseType{Tok: fc.Tok, NameStr: config.VoidTypeName, builtin: true}
		res.WholeAgain(fc, "return type resolved (void)")
		return true
	}

	if IsGenericType(ref.ReturnType) {
		subst := map[string]Type{}
		for _, p := range ref.TypeParams {
			if !typeMentionsParam(ref.ReturnType, p.NameStr) {
				continue
			}
			t, needMore := fc.ResolveTypeArg(p.NameStr, trail, res)
			if needMore || t == nil {
				if res.Fatal() {
					res.Throw(diagnostics.NewError(diagnostics.ErrR003, fc.Tok,
						"missing info for type argument %s in call to %s", p.NameStr, fc.Name))
					return false
				}
				res.WholeAgain(fc, "return type argument "+p.NameStr+" not inferable yet")
				return false
			}
			subst[p.NameStr] = t
		}
		// Owner params (List<T> get -> T) resolve through the receiver.
		if owner := ownerNonMeta(ref); owner != nil {
			for _, p := range owner.TypeParams {
				if _, done := subst[p.NameStr]; done || !typeMentionsParam(ref.ReturnType, p.NameStr) {
					continue
				}
				t, needMore := fc.ResolveTypeArg(p.NameStr, trail, res)
				if needMore || t == nil {
					if res.Fatal() {
						res.Throw(diagnostics.NewError(diagnostics.ErrR003, fc.Tok,
							"missing info for type argument %s in call to %s", p.NameStr, fc.Name))
						return false
					}
					res.WholeAgain(fc, "return type argument "+p.NameStr+" not inferable yet")
					return false
				}
				subst[p.NameStr] = t
			}
		}
		resolved := substituteType(ref.ReturnType.CloneType(), subst)
		if IsGenericType(resolved) {
			if res.Fatal() {
				res.Throw(diagnostics.NewError(diagnostics.ErrR003, fc.Tok,
					"return type of %s stays generic: %s", fc.Name, resolved.TypeName()))
				return false
			}
			res.WholeAgain(fc, "return type still generic")
			return false
		}
		fc.ReturnType = resolved
	} else {
		fc.ReturnType = ref.ReturnType.CloneType()
	}
	res.WholeAgain(fc, "return type resolved for "+fc.Name)
	return true
}

func ownerNonMeta(f *FunctionDecl) *TypeDecl {
	if f.Owner == nil {
		return nil
	}
	if f.Owner.IsMeta && f.Owner.NonMeta != nil {
		return f.Owner.NonMeta
	}
	return f.Owner
}

func typeMentionsParam(t Type, name string) bool {
	switch tt := t.(type) {
	case nil:
		return false
	case *BaseType:
		if tt.NameStr == name {
			return true
		}
		for _, a := range tt.TypeArgs {
			if typeMentionsParam(a, name) {
				return true
			}
		}
		return false
	case *SugarType:
		return typeMentionsParam(tt.Inner, name)
	case *FuncType:
		for _, a := range tt.ArgTypes {
			if typeMentionsParam(a, name) {
				return true
			}
		}
		return tt.Return != nil && typeMentionsParam(tt.Return, name)
	case *TypeList:
		for _, p := range tt.Types {
			if typeMentionsParam(p, name) {
				return true
			}
		}
	}
	return false
}

// checkVoidUse flags calls whose value is consumed while returning void.
func (fc *FunctionCall) checkVoidUse(trail *Trail, res Resolver) {
	if fc.ReturnType == nil {
		return
	}
	bt, ok := fc.ReturnType.(*BaseType)
	if !ok || !bt.IsVoid() {
		return
	}
	// The call itself sits on top of the trail; its parent is one deeper.
	switch trail.Peek(2).(type) {
	case *Block, *Module, *InlineContext, *CommaSequence, nil:
		return
	}
	if res.Fatal() {
		res.Throw(diagnostics.NewError(diagnostics.ErrR002, fc.Tok,
			"use of void expression: %s returns nothing", fc.Name))
		return
	}
	res.WholeAgain(fc, "void call used as value")
}

// throwUnresolved raises the R001 diagnostic with argument types, a
// nearest-match block, the implicit-as hint and helpful import hints.
func (fc *FunctionCall) throwUnresolved(trail *Trail, res Resolver) {
	var argTypes []string
	for i := range fc.Args {
		t := fc.argTypeForScoring(i)
		if t == nil {
			argTypes = append(argTypes, "<unknown>")
		} else {
			argTypes = append(argTypes, t.TypeName())
		}
	}
	err := diagnostics.NewError(diagnostics.ErrR001, fc.Tok,
		"no suitable version of %s found for arguments (%s)", fc.Name, strings.Join(argTypes, ", "))

	if nearest := fc.nearestCandidate(); nearest != nil {
		if i, declType, argType := fc.firstMismatch(nearest); declType != nil {
			got := "<unknown>"
			if argType != nil {
				got = argType.TypeName()
			}
			err.WithPrecision("nearest match is %s, which expects %s for argument %d, not %s",
				nearest.Name, declType.TypeName(), i+1, got)
		} else {
			err.WithPrecision("nearest match is %s", nearest.Name)
		}
	}
	if fc.CandidateUsesAs {
		err.WithPrecision("an implicit as conversion would match, but implicit conversions only apply to extern declarations")
	}
	if len(fc.candidates) == 0 && res.Helpful() {
		if m := trail.Module(); m != nil {
			for _, other := range m.Neighbors {
				if len(other.FunctionsNamed(fc.Name)) > 0 {
					err.WithPrecision("a function named %s exists in module %s", fc.Name, other.Name)
				}
			}
		}
	}
	res.Throw(err)
}

func (fc *FunctionCall) nearestCandidate() *FunctionDecl {
	var best *FunctionDecl
	bestScore := NoLuckScore - 1
	for _, cand := range fc.candidates {
		s, _, _, _ := fc.scoreCandidate(cand)
		if s > bestScore {
			bestScore = s
			best = cand
		}
	}
	return best
}

// firstMismatch finds the first argument whose type rules the candidate
// out.
func (fc *FunctionCall) firstMismatch(cand *FunctionDecl) (int, Type, Type) {
	for i := 0; i < len(cand.Args) && i < len(fc.Args); i++ {
		declType := RealTypize(cand.Args[i].Type, cand, fc)
		argType := fc.argTypeForScoring(i)
		if argType == nil {
			continue
		}
		if argType.GetScore(declType) == NoLuckScore {
			return i, declType, argType
		}
	}
	return -1, nil, nil
}
