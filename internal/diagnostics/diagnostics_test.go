package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sablelang/sable/internal/token"
)

func TestErrorFormat(t *testing.T) {
	tok := token.Token{File: "main.sb", Line: 3, Column: 7}
	err := NewError(ErrR001, tok, "no suitable version of %s found", "f")
	got := err.Error()
	if !strings.HasPrefix(got, "main.sb:3:7: ERROR: no suitable version of f found") {
		t.Errorf("unexpected format: %s", got)
	}
}

func TestPrecisionsAppended(t *testing.T) {
	err := NewError(ErrR001, token.Token{File: "a.sb", Line: 1, Column: 1}, "boom")
	err.WithPrecision("nearest match is %s", "g").
		WithPrecision("an implicit as conversion would match")
	lines := strings.Split(err.Error(), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[1], "nearest match") {
		t.Errorf("precision missing: %s", lines[1])
	}
}

func TestMissingFileRendersPlaceholder(t *testing.T) {
	err := NewError(ErrR003, token.Token{Line: 1, Column: 1}, "internal")
	if !strings.HasPrefix(err.Error(), "<input>:1:1:") {
		t.Errorf("got %s", err.Error())
	}
}

func TestRenderSortsByPosition(t *testing.T) {
	errs := []*DiagnosticError{
		NewError(ErrR001, token.Token{File: "b.sb", Line: 2, Column: 1}, "second"),
		NewError(ErrR001, token.Token{File: "a.sb", Line: 9, Column: 1}, "first"),
		NewError(ErrR001, token.Token{File: "b.sb", Line: 1, Column: 5}, "between"),
	}
	var buf bytes.Buffer
	Render(&buf, errs)

	out := buf.String()
	first := strings.Index(out, "first")
	between := strings.Index(out, "between")
	second := strings.Index(out, "second")
	if first == -1 || between == -1 || second == -1 {
		t.Fatalf("missing messages in:\n%s", out)
	}
	if !(first < between && between < second) {
		t.Errorf("not sorted by file/line/col:\n%s", out)
	}
	if strings.Contains(out, "\033[") {
		t.Error("non-terminal writer must not get ANSI colors")
	}
}
