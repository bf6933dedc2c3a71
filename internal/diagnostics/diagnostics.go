package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sablelang/sable/internal/token"
)

// ErrorCode is a stable identifier for a diagnostic kind.
type ErrorCode string

const (
	// Lexer
	ErrL001 ErrorCode = "L001" // illegal character
	ErrL002 ErrorCode = "L002" // unterminated string

	// Parser
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // unterminated construct

	// Resolver
	ErrR001 ErrorCode = "R001" // unresolved call
	ErrR002 ErrorCode = "R002" // use of void expression
	ErrR003 ErrorCode = "R003" // internal error
	ErrR004 ErrorCode = "R004" // couldn't add before in scope
	ErrR005 ErrorCode = "R005" // couldn't replace node
	ErrR006 ErrorCode = "R006" // unresolved access
	ErrR007 ErrorCode = "R007" // unresolved type
)

// DiagnosticError is a positioned compiler error. Precisions are extra
// lines rendered after the main message (nearest-match blocks, hints).
type DiagnosticError struct {
	Code       ErrorCode
	Token      token.Token
	File       string
	Message    string
	Precisions []string
}

// NewError creates a DiagnosticError. Extra args are formatted into msg.
func NewError(code ErrorCode, tok token.Token, msg string, args ...interface{}) *DiagnosticError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &DiagnosticError{Code: code, Token: tok, File: tok.File, Message: msg}
}

// WithPrecision appends a precision line and returns the error for
// chaining.
func (e *DiagnosticError) WithPrecision(format string, args ...interface{}) *DiagnosticError {
	e.Precisions = append(e.Precisions, fmt.Sprintf(format, args...))
	return e
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	file := e.File
	if file == "" {
		file = "<input>"
	}
	fmt.Fprintf(&sb, "%s:%d:%d: ERROR: %s", file, e.Token.Line, e.Token.Column, e.Message)
	for _, p := range e.Precisions {
		sb.WriteString("\n")
		sb.WriteString(p)
	}
	return sb.String()
}

const (
	colorRed   = "\033[31m"
	colorBold  = "\033[1m"
	colorReset = "\033[0m"
)

// Render writes diagnostics to w sorted by file, line, column. Color is
// applied only when w is a terminal.
func Render(w io.Writer, errs []*DiagnosticError) {
	if len(errs) == 0 {
		return
	}
	sorted := make([]*DiagnosticError, len(errs))
	copy(sorted, errs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].File != sorted[j].File {
			return sorted[i].File < sorted[j].File
		}
		if sorted[i].Token.Line != sorted[j].Token.Line {
			return sorted[i].Token.Line < sorted[j].Token.Line
		}
		return sorted[i].Token.Column < sorted[j].Token.Column
	})

	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	for _, e := range sorted {
		msg := e.Error()
		if color {
			// Highlight only the ERROR marker, keep positions greppable.
			msg = strings.Replace(msg, "ERROR:", colorBold+colorRed+"ERROR:"+colorReset, 1)
		}
		fmt.Fprintln(w, msg)
	}
}
