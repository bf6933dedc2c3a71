// Package resolver drives the fixed-point resolution of a parsed module.
//
// Each round walks the whole AST; nodes that cannot finish mark the round
// unstable and are revisited. Once a full round produces no change the AST
// is canonical and ready for the backend. If the round cap is hit instead,
// one more fatal round runs in which "need more information" becomes a
// diagnostic.
package resolver

import (
	"fmt"
	"io"
	"os"

	"github.com/sablelang/sable/internal/ast"
	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/diagnostics"
)

type Resolver struct {
	params config.BuildParams

	fatal  bool
	stable bool
	round  int

	errors []*diagnostics.DiagnosticError

	tempCounter int

	// TraceOut receives the verbose trace; defaults to stderr.
	TraceOut io.Writer
}

func New(params config.BuildParams) *Resolver {
	return &Resolver{params: params, TraceOut: os.Stderr}
}

// Run resolves the module to a fixed point. It returns the collected
// diagnostics; an empty slice means the AST is fully resolved.
func (r *Resolver) Run(module *ast.Module) []*diagnostics.DiagnosticError {
	max := r.params.EffectiveMaxRounds()

	for r.round = 1; r.round <= max; r.round++ {
		r.stable = true
		r.resolvePass(module)
		if len(r.errors) > 0 {
			return r.errors
		}
		if r.stable {
			r.Trace("resolved in %d round(s)", r.round)
			return nil
		}
	}

	// Fatal round: same walk, but unresolved nodes now throw.
	r.fatal = true
	r.round = max + 1
	r.stable = true
	r.resolvePass(module)
	if len(r.errors) == 0 && !r.stable {
		r.errors = append(r.errors, diagnostics.NewError(diagnostics.ErrR003, module.Token(),
			"resolver did not settle after %d rounds and raised no diagnostic", max))
	}
	return r.errors
}

func (r *Resolver) resolvePass(module *ast.Module) {
	trail := ast.NewTrail()
	module.Resolve(trail, r)
	if trail.Len() != 0 {
		r.errors = append(r.errors, diagnostics.NewError(diagnostics.ErrR003, module.Token(),
			"trail unbalanced after pass %d: depth %d", r.round, trail.Len()))
	}
}

// WholeAgain implements ast.Resolver: the pass is not stable, run another.
func (r *Resolver) WholeAgain(node ast.Node, reason string) {
	r.stable = false
	if r.params.VeryVerbose {
		tok := node.Token()
		r.Trace("round %d: %s:%d:%d %s", r.round, tok.File, tok.Line, tok.Column, reason)
	}
}

func (r *Resolver) Throw(err *diagnostics.DiagnosticError) {
	r.errors = append(r.errors, err)
}

func (r *Resolver) Fatal() bool       { return r.fatal }
func (r *Resolver) Round() int        { return r.round }
func (r *Resolver) Inlining() bool    { return r.params.Inlining }
func (r *Resolver) VeryVerbose() bool { return r.params.VeryVerbose }
func (r *Resolver) Helpful() bool     { return r.params.Helpful }

// NextTempName produces __<purpose>_<n> from a monotone counter.
func (r *Resolver) NextTempName(purpose string) string {
	r.tempCounter++
	return fmt.Sprintf("__%s_%d", purpose, r.tempCounter)
}

func (r *Resolver) Trace(format string, args ...interface{}) {
	if !r.params.VeryVerbose || r.TraceOut == nil {
		return
	}
	fmt.Fprintf(r.TraceOut, format+"\n", args...)
}

// Errors exposes the diagnostics collected so far.
func (r *Resolver) Errors() []*diagnostics.DiagnosticError { return r.errors }
