package backend

import (
	"strings"
	"testing"

	"github.com/sablelang/sable/internal/ast"
	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/parser"
	"github.com/sablelang/sable/internal/resolver"
)

func emitSource(t *testing.T, src string) string {
	t.Helper()
	mod, perrs := parser.ParseSource(src, "emit.sb")
	if len(perrs) > 0 {
		t.Fatalf("parse error: %v", perrs[0])
	}
	if errs := resolver.New(config.BuildParams{}).Run(mod); len(errs) > 0 {
		t.Fatalf("resolve error: %v", errs[0])
	}
	return NewEmitter([]string{"stdio.h"}).Emit(mod)
}

func TestEmitFunction(t *testing.T) {
	out := emitSource(t, `
add: func (a: Int, b: Int) -> Int { return a + b }
`)
	if !strings.Contains(out, "#include <stdio.h>") {
		t.Error("project include missing")
	}
	if !strings.Contains(out, "int64_t add(int64_t a, int64_t b)") {
		t.Errorf("function signature missing:\n%s", out)
	}
	if !strings.Contains(out, "return a + b;") {
		t.Errorf("body missing:\n%s", out)
	}
}

func TestEmitClassAndConstructor(t *testing.T) {
	out := emitSource(t, `
Point: class {
    x: Int
    init: func (x0: Int) { x = x0 }
}

main: func {
    p := Point.new(1)
}
`)
	if !strings.Contains(out, "typedef struct Point Point;") {
		t.Errorf("struct typedef missing:\n%s", out)
	}
	if !strings.Contains(out, "int64_t x;") {
		t.Errorf("field missing:\n%s", out)
	}
	if !strings.Contains(out, "Point_init") {
		t.Errorf("mangled method missing:\n%s", out)
	}
	if !strings.Contains(out, "Point Point_new(int64_t x0)") {
		t.Errorf("generated constructor missing:\n%s", out)
	}
	if !strings.Contains(out, "Point_new(1)") {
		t.Errorf("constructor call missing:\n%s", out)
	}
}

func TestEmitVarargsStruct(t *testing.T) {
	out := emitSource(t, `
h: func (args: ...) { }

main: func {
    h(1, 2)
}
`)
	if !strings.Contains(out, "VarArgs") {
		t.Errorf("VarArgs runtime struct missing:\n%s", out)
	}
	if !strings.Contains(out, "__va_args_") {
		t.Errorf("boxed payload missing:\n%s", out)
	}
}

func TestVisitorDispatch(t *testing.T) {
	// The emitter reaches nodes through Accept; a quick sanity check that
	// Accept on an empty module with a zero Emitter does not panic.
	var e Emitter
	m := &ast.Module{}
	m.Accept(&e)
}
