package parser

import (
	"github.com/sablelang/sable/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Source == "" {
		return ctx
	}
	mod, errs := ParseSource(ctx.Source, ctx.FilePath)
	ctx.AstRoot = mod
	ctx.Errors = append(ctx.Errors, errs...)
	return ctx
}
