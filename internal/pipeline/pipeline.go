package pipeline

import (
	"github.com/google/uuid"

	"github.com/sablelang/sable/internal/ast"
	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/diagnostics"
)

// PipelineContext carries one compilation through the stages.
type PipelineContext struct {
	// BuildID tags this compilation in traces and cache entries.
	BuildID string

	FilePath string
	Source   string

	Project *config.Project
	Params  config.BuildParams

	AstRoot *ast.Module

	Errors []*diagnostics.DiagnosticError

	// Output is the generated C source, filled by the backend.
	Output string
}

func NewContext(filePath, source string, params config.BuildParams) *PipelineContext {
	return &PipelineContext{
		BuildID:  uuid.NewString(),
		FilePath: filePath,
		Source:   source,
		Params:   params,
	}
}

// Processor is one stage of the compilation.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Every stage runs even after errors; the resolver and backend
		// stages skip a context that already carries diagnostics.
	}
	return ctx
}
