package ast

// Visitor dispatches over the closed set of node variants. The backend's C
// emitter implements it; resolution does not go through it.
type Visitor interface {
	VisitModule(*Module)
	VisitTypeParam(*TypeParam)
	VisitArgument(*Argument)
	VisitVarArg(*VarArg)
	VisitImplicitConvDecl(*ImplicitConvDecl)
	VisitFunctionDecl(*FunctionDecl)
	VisitTypeDecl(*TypeDecl)
	VisitInterfaceDecl(*InterfaceDecl)
	VisitNamespaceDecl(*NamespaceDecl)

	VisitIntLiteral(*IntLiteral)
	VisitFloatLiteral(*FloatLiteral)
	VisitStringLiteral(*StringLiteral)
	VisitBoolLiteral(*BoolLiteral)
	VisitNullLiteral(*NullLiteral)
	VisitVariableAccess(*VariableAccess)
	VisitVariableDecl(*VariableDecl)
	VisitAddressOf(*AddressOf)
	VisitCast(*Cast)
	VisitBinaryOp(*BinaryOp)
	VisitCommaSequence(*CommaSequence)
	VisitStructLiteral(*StructLiteral)
	VisitTypeAccess(*TypeAccess)
	VisitReturn(*Return)
	VisitBlock(*Block)
	VisitInlineContext(*InlineContext)
	VisitFunctionCall(*FunctionCall)

	VisitBaseType(*BaseType)
	VisitSugarType(*SugarType)
	VisitFuncType(*FuncType)
	VisitTypeList(*TypeList)
	VisitAnonymousStructType(*AnonymousStructType)
}

// BaseVisitor implements Visitor with no-ops so concrete visitors override
// only what they need.
type BaseVisitor struct{}

func (BaseVisitor) VisitModule(*Module)                           {}
func (BaseVisitor) VisitTypeParam(*TypeParam)                     {}
func (BaseVisitor) VisitArgument(*Argument)                       {}
func (BaseVisitor) VisitVarArg(*VarArg)                           {}
func (BaseVisitor) VisitImplicitConvDecl(*ImplicitConvDecl)       {}
func (BaseVisitor) VisitFunctionDecl(*FunctionDecl)               {}
func (BaseVisitor) VisitTypeDecl(*TypeDecl)                       {}
func (BaseVisitor) VisitInterfaceDecl(*InterfaceDecl)             {}
func (BaseVisitor) VisitNamespaceDecl(*NamespaceDecl)             {}
func (BaseVisitor) VisitIntLiteral(*IntLiteral)                   {}
func (BaseVisitor) VisitFloatLiteral(*FloatLiteral)               {}
func (BaseVisitor) VisitStringLiteral(*StringLiteral)             {}
func (BaseVisitor) VisitBoolLiteral(*BoolLiteral)                 {}
func (BaseVisitor) VisitNullLiteral(*NullLiteral)                 {}
func (BaseVisitor) VisitVariableAccess(*VariableAccess)           {}
func (BaseVisitor) VisitVariableDecl(*VariableDecl)               {}
func (BaseVisitor) VisitAddressOf(*AddressOf)                     {}
func (BaseVisitor) VisitCast(*Cast)                               {}
func (BaseVisitor) VisitBinaryOp(*BinaryOp)                       {}
func (BaseVisitor) VisitCommaSequence(*CommaSequence)             {}
func (BaseVisitor) VisitStructLiteral(*StructLiteral)             {}
func (BaseVisitor) VisitTypeAccess(*TypeAccess)                   {}
func (BaseVisitor) VisitReturn(*Return)                           {}
func (BaseVisitor) VisitBlock(*Block)                             {}
func (BaseVisitor) VisitInlineContext(*InlineContext)             {}
func (BaseVisitor) VisitFunctionCall(*FunctionCall)               {}
func (BaseVisitor) VisitBaseType(*BaseType)                       {}
func (BaseVisitor) VisitSugarType(*SugarType)                     {}
func (BaseVisitor) VisitFuncType(*FuncType)                       {}
func (BaseVisitor) VisitTypeList(*TypeList)                       {}
func (BaseVisitor) VisitAnonymousStructType(*AnonymousStructType) {}
