package resolver

import (
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/sablelang/sable/internal/ast"
	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/diagnostics"
	"github.com/sablelang/sable/internal/parser"
)

// parseArchive parses every file of a txtar fixture into a module, keyed by
// file name.
func parseArchive(t *testing.T, name string) map[string]*ast.Module {
	t.Helper()
	arch, err := txtar.ParseFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	mods := make(map[string]*ast.Module, len(arch.Files))
	for _, f := range arch.Files {
		mod, errs := parser.ParseSource(string(f.Data), f.Name)
		if len(errs) > 0 {
			t.Fatalf("%s: parse error: %v", f.Name, errs[0])
		}
		mods[f.Name] = mod
	}
	return mods
}

func TestImportedFunctionsResolve(t *testing.T) {
	mods := parseArchive(t, "helpful.txtar")
	lib, main := mods["mathlib.sb"], mods["main.sb"]

	if errs := New(config.BuildParams{}).Run(lib); len(errs) > 0 {
		t.Fatalf("library does not resolve: %v", errs[0])
	}

	main.Imports = []*ast.Module{lib}
	if errs := New(config.BuildParams{}).Run(main); len(errs) > 0 {
		t.Fatalf("call into imported module failed: %v", errs[0])
	}

	call := firstCall(t, mainBody(t, main, "main")[0])
	if call.Ref == nil || call.Ref.Name != "square" {
		t.Error("square(4) did not bind to the library function")
	}
}

func TestHelpfulHintNamesNeighborModule(t *testing.T) {
	mods := parseArchive(t, "helpful.txtar")
	lib, main := mods["mathlib.sb"], mods["main.sb"]

	// The library is known to the build but never imported.
	main.Neighbors = []*ast.Module{lib}

	r := New(config.BuildParams{Helpful: true})
	errs := r.Run(main)
	if len(errs) == 0 {
		t.Fatal("expected an unresolved-call diagnostic")
	}
	var found *diagnostics.DiagnosticError
	for _, e := range errs {
		if e.Code == diagnostics.ErrR001 {
			found = e
		}
	}
	if found == nil {
		t.Fatalf("no R001 among %v", errs)
	}
	msg := found.Error()
	if !strings.Contains(msg, "square") || !strings.Contains(msg, "mathlib") {
		t.Errorf("helpful hint should name the neighbor module:\n%s", msg)
	}
}
