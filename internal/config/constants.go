package config

const SourceFileExt = ".sb"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".sb", ".sable"}

// ProjectFileName is the per-package build configuration file.
const ProjectFileName = "sable.yaml"

// Built-in type names
const (
	IntTypeName     = "Int"
	FloatTypeName   = "Float"
	BoolTypeName    = "Bool"
	CharTypeName    = "Char"
	StringTypeName  = "String"
	VoidTypeName    = "Void"
	PointerTypeName = "Pointer"
	ClassTypeName   = "Class"
	VarArgsTypeName = "VarArgs"
)

// Built-in member names
const (
	InitFuncName  = "init"
	NewFuncName   = "new"
	SuperFuncName = "super"
	ThisVarName   = "this"
)

// DefaultMaxRounds caps the resolver fixed-point loop before the fatal round.
const DefaultMaxRounds = 32

// ImplicitAsExternalOnly restricts applying declared implicit conversions to
// calls that resolve to extern declarations. Non-extern candidates only note
// the conversion for the "implicit as" diagnostic hint.
const ImplicitAsExternalOnly = true
