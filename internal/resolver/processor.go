package resolver

import (
	"github.com/sablelang/sable/internal/pipeline"
)

type ResolverProcessor struct{}

func (rp *ResolverProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || len(ctx.Errors) > 0 {
		// A broken parse would only drown the parser's diagnostics in
		// unresolved-call noise.
		return ctx
	}
	r := New(ctx.Params)
	ctx.Errors = append(ctx.Errors, r.Run(ctx.AstRoot)...)
	return ctx
}
