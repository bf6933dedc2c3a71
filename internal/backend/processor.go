package backend

import (
	"github.com/sablelang/sable/internal/pipeline"
)

type BackendProcessor struct{}

func (bp *BackendProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	var includes []string
	if ctx.Project != nil {
		includes = ctx.Project.Includes
	}
	ctx.Output = NewEmitter(includes).Emit(ctx.AstRoot)
	return ctx
}
