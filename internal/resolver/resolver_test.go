package resolver

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sablelang/sable/internal/ast"
	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/diagnostics"
	"github.com/sablelang/sable/internal/parser"
)

// resolveSource lexes, parses and resolves the input, returning the module
// and all diagnostics.
func resolveSource(t *testing.T, src string, params config.BuildParams) (*ast.Module, []*diagnostics.DiagnosticError) {
	t.Helper()
	mod, perrs := parser.ParseSource(src, "test.sb")
	if len(perrs) > 0 {
		var msgs []string
		for _, e := range perrs {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("parse errors:\n%s\ninput: %s", strings.Join(msgs, "\n"), src)
	}
	r := New(params)
	return mod, r.Run(mod)
}

// expectResolved asserts resolution finishes without diagnostics.
func expectResolved(t *testing.T, src string) *ast.Module {
	t.Helper()
	mod, errs := resolveSource(t, src, config.BuildParams{})
	if len(errs) > 0 {
		var msgs []string
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("expected clean resolution, got:\n%s\ninput: %s", strings.Join(msgs, "\n"), src)
	}
	return mod
}

// expectResolverError asserts at least one diagnostic with the given code.
func expectResolverError(t *testing.T, src string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	_, errs := resolveSource(t, src, config.BuildParams{})
	if len(errs) == 0 {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, src)
	}
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	t.Fatalf("expected error %s, got:\n%s\ninput: %s", code, strings.Join(msgs, "\n"), src)
	return nil
}

// mainBody returns the body of the top-level function with the given name.
func mainBody(t *testing.T, mod *ast.Module, name string) []ast.Node {
	t.Helper()
	for _, fd := range mod.FunctionsNamed(name) {
		if fd.BodyBlock == nil {
			t.Fatalf("function %s has no body", name)
		}
		return fd.BodyBlock.BodyList
	}
	t.Fatalf("no function %s in module", name)
	return nil
}

// firstCall digs the first FunctionCall out of a statement.
func firstCall(t *testing.T, n ast.Node) *ast.FunctionCall {
	t.Helper()
	if fc := findCall(n); fc != nil {
		return fc
	}
	t.Fatalf("no call found under %T", n)
	return nil
}

func findCall(n ast.Node) *ast.FunctionCall {
	switch x := n.(type) {
	case *ast.FunctionCall:
		return x
	case *ast.VariableDecl:
		if x.Expr != nil {
			return findCall(x.Expr)
		}
	case *ast.Return:
		if x.Expr != nil {
			return findCall(x.Expr)
		}
	case *ast.CommaSequence:
		for _, it := range x.Items {
			if fc := findCall(it); fc != nil {
				return fc
			}
		}
	case *ast.BinaryOp:
		if fc := findCall(x.Right); fc != nil {
			return fc
		}
		return findCall(x.Left)
	case *ast.Cast:
		return findCall(x.Inner)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Scenario: overload selection by argument type
// ---------------------------------------------------------------------------

func TestOverloadByType(t *testing.T) {
	src := `
intVersion: func (x: Int) -> Int { return 0 }
strVersion: func (x: Int) -> Int { return 0 }

f: func (x: Int) -> Int { return 0 }
f: func (x: String) -> Int { return 1 }

main: func {
    a := f(42)
    b := f("hello")
}
`
	mod := expectResolved(t, src)
	body := mainBody(t, mod, "main")

	intCall := firstCall(t, body[0])
	strCall := firstCall(t, body[1])

	fns := mod.FunctionsNamed("f")
	if len(fns) != 2 {
		t.Fatalf("expected 2 overloads of f, got %d", len(fns))
	}
	if intCall.Ref != fns[0] {
		t.Errorf("f(42) resolved to the wrong overload")
	}
	if strCall.Ref != fns[1] {
		t.Errorf("f(\"hello\") resolved to the wrong overload")
	}
	if intCall.RefScore < ast.ScoreSeed/2 {
		t.Errorf("f(42) refScore = %d, want >= %d", intCall.RefScore, ast.ScoreSeed/2)
	}
	if strCall.RefScore < ast.ScoreSeed/2 {
		t.Errorf("f(\"hello\") refScore = %d, want >= %d", strCall.RefScore, ast.ScoreSeed/2)
	}
}

// ---------------------------------------------------------------------------
// Scenario: optional arguments are filled from defaults
// ---------------------------------------------------------------------------

func TestOptionalArgumentFilling(t *testing.T) {
	src := `
g: func (x: Int, y: Int = 7) -> Int { return x }

main: func {
    r := g(3)
}
`
	mod := expectResolved(t, src)
	call := firstCall(t, mainBody(t, mod, "main")[0])

	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args after optarg filling, got %d", len(call.Args))
	}
	first, ok := call.Args[0].(*ast.IntLiteral)
	if !ok || first.Value != 3 {
		t.Errorf("args[0] = %v, want IntLiteral(3)", call.Args[0])
	}
	second, ok := call.Args[1].(*ast.IntLiteral)
	if !ok || second.Value != 7 {
		t.Errorf("args[1] = %v, want IntLiteral(7)", call.Args[1])
	}
}

// ---------------------------------------------------------------------------
// Scenario: varargs boxing
// ---------------------------------------------------------------------------

func TestVarargsBoxing(t *testing.T) {
	src := `
h: func (args: ...) { }

main: func {
    h(1, "a", 2.5)
}
`
	mod := expectResolved(t, src)
	body := mainBody(t, mod, "main")

	// The rewrite inserts the payload and the VarArgs struct before the
	// call, in scope.
	if len(body) != 3 {
		t.Fatalf("expected 3 statements after boxing, got %d", len(body))
	}

	payload, ok := body[0].(*ast.VariableDecl)
	if !ok || !strings.HasPrefix(payload.Name, "__va_args_") {
		t.Fatalf("body[0] = %T %v, want __va_args_ payload decl", body[0], body[0])
	}
	structType, ok := payload.DeclTyp.(*ast.AnonymousStructType)
	if !ok {
		t.Fatalf("payload type = %T, want AnonymousStructType", payload.DeclTyp)
	}
	// Interleaved (class, value-type) pairs: 2 per boxed arg.
	if len(structType.Types) != 6 {
		t.Errorf("payload struct has %d member types, want 6", len(structType.Types))
	}
	for i := 0; i < len(structType.Types); i += 2 {
		bt, ok := structType.Types[i].(*ast.BaseType)
		if !ok || bt.NameStr != config.ClassTypeName {
			t.Errorf("member %d = %s, want %s", i, structType.Types[i].TypeName(), config.ClassTypeName)
		}
	}

	vaDecl, ok := body[1].(*ast.VariableDecl)
	if !ok || !strings.HasPrefix(vaDecl.Name, "__va_") {
		t.Fatalf("body[1] = %T, want __va_ struct decl", body[1])
	}
	vaLit, ok := vaDecl.Expr.(*ast.StructLiteral)
	if !ok || len(vaLit.Elements) != 3 {
		t.Fatalf("__va_ initializer = %T, want 3-element StructLiteral", vaDecl.Expr)
	}
	count, ok := vaLit.Elements[2].(*ast.IntLiteral)
	if !ok || count.Value != 3 {
		t.Errorf("VarArgs count = %v, want IntLiteral(3)", vaLit.Elements[2])
	}

	call := firstCall(t, body[2])
	if len(call.Args) != 1 {
		t.Fatalf("call has %d args after boxing, want 1", len(call.Args))
	}
	access, ok := call.Args[0].(*ast.VariableAccess)
	if !ok || access.Ref != ast.Declaration(vaDecl) {
		t.Errorf("call arg is %T, want access to %s", call.Args[0], vaDecl.Name)
	}
}

// ---------------------------------------------------------------------------
// Scenario: generic inference from the receiver
// ---------------------------------------------------------------------------

func TestGenericInferenceFromReceiver(t *testing.T) {
	src := `
List: class <T> {
    item: T
    get: func (i: Int) -> T { return item }
}

consume: func (xs: List<Int>) -> Int {
    y := xs.get(0)
    return y
}
`
	mod := expectResolved(t, src)
	call := firstCall(t, mainBody(t, mod, "consume")[0])

	if call.ReturnType == nil {
		t.Fatal("xs.get(0) has no return type")
	}
	bt, ok := call.ReturnType.(*ast.BaseType)
	if !ok || bt.NameStr != config.IntTypeName {
		t.Errorf("return type = %s, want Int", call.ReturnType.TypeName())
	}
	if len(call.TypeArgs) != 0 {
		t.Errorf("call has %d type args, want 0 (inherited from receiver)", len(call.TypeArgs))
	}
}

// ---------------------------------------------------------------------------
// Scenario: implicit conversions apply to extern candidates only
// ---------------------------------------------------------------------------

const urlPrelude = `
Url: class {
    raw: String
    init: func { }
    as: func -> String { return raw }
}
`

func TestImplicitConversionExtern(t *testing.T) {
	src := urlPrelude + `
print: extern func (s: String)

main: func {
    u := Url.new()
    print(u)
}
`
	mod := expectResolved(t, src)
	body := mainBody(t, mod, "main")
	call := firstCall(t, body[1])

	cast, ok := call.Args[0].(*ast.Cast)
	if !ok {
		t.Fatalf("print arg = %T, want Cast via implicit conversion", call.Args[0])
	}
	bt, ok := cast.TargetType.(*ast.BaseType)
	if !ok || bt.NameStr != config.StringTypeName {
		t.Errorf("cast target = %s, want String", cast.TargetType.TypeName())
	}
	orig, ok := call.ArgsBeforeConversion[0]
	if !ok {
		t.Fatal("original arg not snapshotted in ArgsBeforeConversion")
	}
	if ast.Node(cast.Inner) != ast.Node(orig) {
		t.Error("snapshot does not match the cast's inner expression")
	}
}

func TestImplicitConversionNonExternHint(t *testing.T) {
	src := urlPrelude + `
log: func (s: String) { }

main: func {
    u := Url.new()
    log(u)
}
`
	err := expectResolverError(t, src, diagnostics.ErrR001)
	if !strings.Contains(err.Error(), "implicit as") {
		t.Errorf("expected implicit-as hint in:\n%s", err.Error())
	}
}

// ---------------------------------------------------------------------------
// Scenario: super with forwarded arguments
// ---------------------------------------------------------------------------

func TestSuperForwardsArguments(t *testing.T) {
	src := `
A: class {
    init: func (x: Int) { }
}

B: class extends A {
    init: func (x: Int) { super() }
}
`
	mod := expectResolved(t, src)

	bDecl, ok := mod.TypeNamed("B").(*ast.TypeDecl)
	if !ok {
		t.Fatal("no class B")
	}
	var initDecl *ast.FunctionDecl
	for _, f := range bDecl.Meta.Functions {
		if f.Name == config.InitFuncName {
			initDecl = f
		}
	}
	if initDecl == nil {
		t.Fatal("B has no init")
	}
	call := firstCall(t, initDecl.BodyBlock.BodyList[0])

	aDecl := mod.TypeNamed("A").(*ast.TypeDecl)
	if call.Ref == nil || call.Ref.Owner != aDecl.Meta {
		t.Errorf("super() did not bind to A.init")
	}
	recv, ok := call.Expr.(*ast.VariableAccess)
	if !ok || recv.Name != config.ThisVarName {
		t.Errorf("super() receiver = %v, want this", call.Expr)
	}
	if len(call.Args) != 1 {
		t.Fatalf("super() forwarded %d args, want 1", len(call.Args))
	}
	fwd, ok := call.Args[0].(*ast.VariableAccess)
	if !ok || fwd.Name != "x" {
		t.Errorf("forwarded arg = %v, want access to x", call.Args[0])
	}
}

// ---------------------------------------------------------------------------
// Quantified invariants
// ---------------------------------------------------------------------------

// walkCalls visits every FunctionCall in the final AST.
func walkCalls(n ast.Node, fn func(*ast.FunctionCall)) {
	switch x := n.(type) {
	case *ast.Module:
		for _, c := range x.BodyList {
			walkCalls(c, fn)
		}
	case *ast.TypeDecl:
		for _, f := range x.Functions {
			walkCalls(f, fn)
		}
		for _, v := range x.Variables {
			walkCalls(v, fn)
		}
		if x.Meta != nil && !x.IsMeta {
			walkCalls(x.Meta, fn)
		}
	case *ast.NamespaceDecl:
		for _, f := range x.Functions {
			walkCalls(f, fn)
		}
	case *ast.FunctionDecl:
		if x.BodyBlock != nil {
			walkCalls(x.BodyBlock, fn)
		}
	case *ast.Block:
		for _, c := range x.BodyList {
			walkCalls(c, fn)
		}
	case *ast.InlineContext:
		for _, c := range x.BodyList {
			walkCalls(c, fn)
		}
	case *ast.VariableDecl:
		if x.Expr != nil {
			walkCalls(x.Expr, fn)
		}
	case *ast.Return:
		if x.Expr != nil {
			walkCalls(x.Expr, fn)
		}
	case *ast.BinaryOp:
		walkCalls(x.Left, fn)
		walkCalls(x.Right, fn)
	case *ast.CommaSequence:
		for _, it := range x.Items {
			walkCalls(it, fn)
		}
	case *ast.Cast:
		walkCalls(x.Inner, fn)
	case *ast.AddressOf:
		walkCalls(x.Expr, fn)
	case *ast.FunctionCall:
		fn(x)
		if x.Expr != nil {
			walkCalls(x.Expr, fn)
		}
		for _, a := range x.Args {
			walkCalls(a, fn)
		}
	}
}

func TestEveryCallFullyBoundAfterResolution(t *testing.T) {
	src := `
add: func (a: Int, b: Int) -> Int { return a + b }

Point: class {
    x: Int
    init: func (x0: Int) { x = x0 }
    shift: func (d: Int) -> Int { return add(x, d) }
}

main: func {
    p := Point.new(1)
    q := p.shift(2)
}
`
	mod := expectResolved(t, src)
	walkCalls(mod, func(fc *ast.FunctionCall) {
		if fc.Ref == nil || fc.RefScore <= 0 || fc.ReturnType == nil {
			t.Errorf("call %s at line %d not fully bound: ref=%v score=%d type=%v",
				fc.Name, fc.Token().Line, fc.Ref, fc.RefScore, fc.ReturnType)
		}
	})
}

func TestResolutionIsIdempotent(t *testing.T) {
	src := `
g: func (x: Int, y: Int = 7) -> Int { return x }
h: func (args: ...) { }

main: func {
    r := g(3)
    h(1, 2)
}
`
	mod := expectResolved(t, src)
	callArgs := len(firstCall(t, mainBody(t, mod, "main")[0]).Args)
	stmtCount := len(mainBody(t, mod, "main"))

	// A second resolver over the already-resolved AST must settle in one
	// round without touching anything.
	var trace bytes.Buffer
	r := New(config.BuildParams{VeryVerbose: true})
	r.TraceOut = &trace
	if errs := r.Run(mod); len(errs) > 0 {
		t.Fatalf("re-resolution produced errors: %v", errs[0])
	}
	if !strings.Contains(trace.String(), "resolved in 1 round(s)") {
		t.Errorf("re-resolution was not a single clean round:\n%s", lastLines(trace.String(), 5))
	}
	if got := len(firstCall(t, mainBody(t, mod, "main")[0]).Args); got != callArgs {
		t.Errorf("re-resolution changed arg count: %d -> %d", callArgs, got)
	}
	if got := len(mainBody(t, mod, "main")); got != stmtCount {
		t.Errorf("re-resolution changed statement count: %d -> %d", stmtCount, got)
	}
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// ---------------------------------------------------------------------------
// Inlining
// ---------------------------------------------------------------------------

func TestInliningSplicesBody(t *testing.T) {
	src := `
double: inline func (x: Int) -> Int { return x + x }

main: func {
    y := double(21)
}
`
	mod, errs := resolveSource(t, src, config.BuildParams{Inlining: true})
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs[0])
	}
	body := mainBody(t, mod, "main")

	// retDecl, spliced InlineContext, then the rewritten y decl.
	if len(body) != 3 {
		t.Fatalf("expected 3 statements after inlining, got %d", len(body))
	}
	ret, ok := body[0].(*ast.VariableDecl)
	if !ok || !strings.HasPrefix(ret.Name, "__inline_ret_") {
		t.Fatalf("body[0] = %T, want inline return temp", body[0])
	}
	ic, ok := body[1].(*ast.InlineContext)
	if !ok {
		t.Fatalf("body[1] = %T, want InlineContext", body[1])
	}
	if len(ic.BodyList) < 2 {
		t.Fatalf("inline context has %d statements, want param binding + body", len(ic.BodyList))
	}
	yDecl, ok := body[2].(*ast.VariableDecl)
	if !ok || yDecl.Name != "y" {
		t.Fatalf("body[2] = %T, want y decl", body[2])
	}
	if _, isAccess := yDecl.Expr.(*ast.VariableAccess); !isAccess {
		t.Errorf("y initializer = %T, want access to the inline return temp", yDecl.Expr)
	}
	// The inlined return became an assignment to the temp.
	foundAssign := false
	for _, n := range ic.BodyList {
		if b, ok := n.(*ast.BinaryOp); ok && b.IsAssign() {
			foundAssign = true
		}
	}
	if !foundAssign {
		t.Error("inlined body kept its return instead of assigning the temp")
	}
}

// ---------------------------------------------------------------------------
// Generic argument handling
// ---------------------------------------------------------------------------

func TestGenericCallWrapsArgsAndInfersTypeArgs(t *testing.T) {
	src := `
identity: func <T> (x: T) -> T { return x }

main: func {
    y := identity(5)
}
`
	mod := expectResolved(t, src)
	body := mainBody(t, mod, "main")

	// The literal got hoisted so it can travel by reference.
	hoisted, ok := body[0].(*ast.VariableDecl)
	if !ok || !strings.HasPrefix(hoisted.Name, "__generic_arg_") {
		t.Fatalf("body[0] = %T, want hoisted generic arg", body[0])
	}
	call := firstCall(t, body[1])
	ao, ok := call.Args[0].(*ast.AddressOf)
	if !ok || !ao.ForGenerics {
		t.Fatalf("call arg = %T, want AddressOf(for_generics)", call.Args[0])
	}
	if len(call.TypeArgs) != 1 {
		t.Fatalf("call has %d type args, want 1", len(call.TypeArgs))
	}
	ta, ok := call.TypeArgs[0].(*ast.VariableAccess)
	if !ok || ta.Name != config.IntTypeName {
		t.Errorf("type arg = %v, want access to Int", call.TypeArgs[0])
	}
	bt, ok := call.ReturnType.(*ast.BaseType)
	if !ok || bt.NameStr != config.IntTypeName {
		t.Errorf("return type = %s, want Int", call.ReturnType.TypeName())
	}
}

func TestGenericReturnUnwrapsInUnfriendlyHost(t *testing.T) {
	src := `
identity: func <T> (x: T) -> T { return x }
use2: func (a: Int, b: Int) -> Int { return a }

main: func {
    z := use2(identity(5), 1)
}
`
	mod := expectResolved(t, src)

	var inner *ast.FunctionCall
	walkCalls(mod, func(fc *ast.FunctionCall) {
		if fc.Name == "identity" {
			inner = fc
		}
	})
	if inner == nil {
		t.Fatal("identity call not found")
	}
	if len(inner.ReturnArgs) != 1 {
		t.Fatalf("identity call has %d return args, want 1 after unwrapping", len(inner.ReturnArgs))
	}
}

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

func TestInterfaceArgumentGetsCast(t *testing.T) {
	src := `
Writer: interface {
    write: func (s: String)
}

File: class implements Writer {
    init: func { }
    write: func (s: String) { }
}

dump: func (w: Writer, s: String) { w.write(s) }

main: func {
    f := File.new()
    dump(f, "hi")
}
`
	mod := expectResolved(t, src)
	body := mainBody(t, mod, "main")
	call := firstCall(t, body[1])

	cast, ok := call.Args[0].(*ast.Cast)
	if !ok {
		t.Fatalf("interface arg = %T, want Cast", call.Args[0])
	}
	bt, ok := cast.TargetType.(*ast.BaseType)
	if !ok || bt.NameStr != "Writer" {
		t.Errorf("cast target = %s, want Writer", cast.TargetType.TypeName())
	}
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

func TestUnresolvedCallReportsNearestMatch(t *testing.T) {
	src := `
greet: func (name: String) { }

main: func {
    greet(42)
}
`
	err := expectResolverError(t, src, diagnostics.ErrR001)
	msg := err.Error()
	if !strings.Contains(msg, "greet") || !strings.Contains(msg, "Int") {
		t.Errorf("diagnostic should name the call and argument types:\n%s", msg)
	}
	if !strings.Contains(msg, "nearest match") || !strings.Contains(msg, "String") {
		t.Errorf("diagnostic should include the nearest-match block:\n%s", msg)
	}
}

func TestVoidCallUsedAsValue(t *testing.T) {
	src := `
noop: func { }

main: func {
    x := noop()
}
`
	expectResolverError(t, src, diagnostics.ErrR002)
}

func TestUndefinedAccessInFatalRound(t *testing.T) {
	src := `
main: func {
    y := nowhere
}
`
	expectResolverError(t, src, diagnostics.ErrR006)
}

func TestMaxRoundsRespected(t *testing.T) {
	src := `
main: func {
    mystery(1)
}
`
	_, errs := resolveSource(t, src, config.BuildParams{MaxRounds: 3})
	if len(errs) == 0 {
		t.Fatal("expected an unresolved-call diagnostic")
	}
	if errs[0].Code != diagnostics.ErrR001 {
		t.Errorf("got %s, want R001", errs[0].Code)
	}
}
