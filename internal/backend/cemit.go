// Package backend lowers a fully-resolved AST to C source. It consumes
// what the resolver guarantees: every call carries its ref, score and
// return type, and every desugaring has already happened.
package backend

import (
	"fmt"
	"strings"

	"github.com/sablelang/sable/internal/ast"
	"github.com/sablelang/sable/internal/config"
)

// Emitter writes C for one module. It implements ast.Visitor.
type Emitter struct {
	ast.BaseVisitor

	sb       strings.Builder
	indent   int
	includes []string
}

func NewEmitter(includes []string) *Emitter {
	return &Emitter{includes: includes}
}

// Emit renders the module and returns the generated C source.
func (e *Emitter) Emit(m *ast.Module) string {
	e.sb.Reset()
	e.line("/* generated by sable, do not edit */")
	e.line("#include <stdint.h>")
	e.line("#include <stddef.h>")
	for _, inc := range e.includes {
		e.line("#include <%s>", inc)
	}
	e.line("")
	e.line("typedef struct { void* args; void* _reserved; int count; } VarArgs;")
	e.line("")
	m.Accept(e)
	return e.sb.String()
}

func (e *Emitter) line(format string, args ...interface{}) {
	e.sb.WriteString(strings.Repeat("    ", e.indent))
	fmt.Fprintf(&e.sb, format, args...)
	e.sb.WriteString("\n")
}

func (e *Emitter) write(format string, args ...interface{}) {
	fmt.Fprintf(&e.sb, format, args...)
}

func (e *Emitter) VisitModule(m *ast.Module) {
	// Struct layouts first, then globals, then functions.
	for _, n := range m.BodyList {
		if td, ok := n.(*ast.TypeDecl); ok {
			e.emitStruct(td)
		}
	}
	for _, n := range m.BodyList {
		switch d := n.(type) {
		case *ast.VariableDecl:
			e.emitStatement(d)
		case *ast.NamespaceDecl:
			for _, vd := range d.Variables {
				e.emitStatement(vd)
			}
		}
	}
	for _, n := range m.BodyList {
		switch d := n.(type) {
		case *ast.FunctionDecl:
			e.emitFunction(d, "")
		case *ast.TypeDecl:
			e.emitMethods(d)
		case *ast.NamespaceDecl:
			for _, f := range d.Functions {
				e.emitFunction(f, d.Name)
			}
		}
	}
}

func (e *Emitter) emitStruct(td *ast.TypeDecl) {
	e.line("typedef struct %s %s;", td.Name, td.Name)
	e.line("struct %s {", td.Name)
	e.indent++
	if td.SuperRef != nil {
		e.line("%s super;", td.SuperRef.Name)
	}
	for _, f := range td.Variables {
		e.line("%s %s;", e.cType(f.DeclType()), f.Name)
	}
	if td.SuperRef == nil && len(td.Variables) == 0 {
		e.line("char _empty;")
	}
	e.indent--
	e.line("};")
	e.line("")
}

func (e *Emitter) emitMethods(td *ast.TypeDecl) {
	for _, f := range td.Functions {
		e.emitFunction(f, td.Name)
	}
	if td.Meta != nil {
		for _, f := range td.Meta.Functions {
			e.emitFunction(f, td.Name)
		}
	}
}

func (e *Emitter) emitFunction(f *ast.FunctionDecl, qualifier string) {
	if f.IsExtern {
		return
	}
	if f.BodyBlock == nil {
		if f.Name == config.NewFuncName && f.Owner != nil {
			e.emitGeneratedNew(f)
		}
		return
	}

	ret := "void"
	if f.ReturnType != nil {
		ret = e.cType(f.ReturnType)
	}

	var params []string
	if f.Owner != nil && !f.IsStatic {
		owner := f.Owner
		if owner.IsMeta && owner.NonMeta != nil {
			owner = owner.NonMeta
		}
		params = append(params, owner.Name+"* this")
	}
	for _, a := range f.Args {
		params = append(params, e.cType(a.Type)+" "+a.Name)
	}
	if f.VArg != nil && f.VArg.Name != "" {
		params = append(params, "VarArgs "+f.VArg.Name)
	}
	if len(params) == 0 {
		params = append(params, "void")
	}

	e.line("%s %s(%s) {", ret, mangle(f, qualifier), strings.Join(params, ", "))
	e.indent++
	if f.BodyBlock != nil {
		for _, stmt := range f.BodyBlock.BodyList {
			e.emitStatement(stmt)
		}
	}
	e.indent--
	e.line("}")
	e.line("")
}

// emitGeneratedNew writes the constructor stub for the auto-generated new:
// zero the object, run the matching init, return it.
func (e *Emitter) emitGeneratedNew(f *ast.FunctionDecl) {
	owner := f.Owner
	if owner.IsMeta && owner.NonMeta != nil {
		owner = owner.NonMeta
	}

	var params []string
	for _, a := range f.Args {
		params = append(params, e.cType(a.Type)+" "+a.Name)
	}
	if len(params) == 0 {
		params = append(params, "void")
	}

	initName := owner.Name + "_" + config.InitFuncName
	if f.Suffix != "" {
		initName += "_" + f.Suffix
	}

	e.line("%s %s(%s) {", owner.Name, mangle(f, ""), strings.Join(params, ", "))
	e.indent++
	e.line("%s __obj = {0};", owner.Name)
	var argNames []string
	argNames = append(argNames, "&__obj")
	for _, a := range f.Args {
		argNames = append(argNames, a.Name)
	}
	e.line("%s(%s);", initName, strings.Join(argNames, ", "))
	e.line("return __obj;")
	e.indent--
	e.line("}")
	e.line("")
}

func mangle(f *ast.FunctionDecl, qualifier string) string {
	name := f.Name
	if qualifier != "" {
		name = qualifier + "_" + name
	} else if f.Owner != nil {
		owner := f.Owner
		if owner.IsMeta && owner.NonMeta != nil {
			owner = owner.NonMeta
		}
		name = owner.Name + "_" + name
	}
	if f.Suffix != "" {
		name += "_" + f.Suffix
	}
	return name
}

func (e *Emitter) emitStatement(n ast.Node) {
	switch s := n.(type) {
	case *ast.VariableDecl:
		e.sb.WriteString(strings.Repeat("    ", e.indent))
		e.write("%s %s", e.cType(s.DeclType()), s.Name)
		if s.Expr != nil {
			e.write(" = ")
			e.emitExpression(s.Expr)
		}
		e.write(";\n")
	case *ast.Return:
		e.sb.WriteString(strings.Repeat("    ", e.indent))
		if s.Expr != nil {
			e.write("return ")
			e.emitExpression(s.Expr)
			e.write(";\n")
		} else {
			e.write("return;\n")
		}
	case *ast.Block:
		e.line("{")
		e.indent++
		for _, stmt := range s.BodyList {
			e.emitStatement(stmt)
		}
		e.indent--
		e.line("}")
	case *ast.InlineContext:
		e.line("{")
		e.indent++
		for _, stmt := range s.BodyList {
			e.emitStatement(stmt)
		}
		e.indent--
		e.line("}")
	case ast.Expression:
		e.sb.WriteString(strings.Repeat("    ", e.indent))
		e.emitExpression(s)
		e.write(";\n")
	}
}

func (e *Emitter) emitExpression(x ast.Expression) {
	switch v := x.(type) {
	case *ast.IntLiteral:
		e.write("%d", v.Value)
	case *ast.FloatLiteral:
		e.write("%g", v.Value)
	case *ast.StringLiteral:
		e.write("%q", v.Value)
	case *ast.BoolLiteral:
		if v.Value {
			e.write("1")
		} else {
			e.write("0")
		}
	case *ast.NullLiteral:
		e.write("NULL")
	case *ast.VariableAccess:
		if v.Expr != nil {
			e.emitExpression(v.Expr)
			e.write(".%s", v.Name)
		} else {
			e.write("%s", v.Name)
		}
	case *ast.AddressOf:
		e.write("&")
		e.emitExpression(v.Expr)
	case *ast.Cast:
		e.write("((%s)(", e.cType(v.TargetType))
		e.emitExpression(v.Inner)
		e.write("))")
	case *ast.BinaryOp:
		e.emitExpression(v.Left)
		e.write(" %s ", v.Op)
		e.emitExpression(v.Right)
	case *ast.CommaSequence:
		e.write("(")
		for i, it := range v.Items {
			if i > 0 {
				e.write(", ")
			}
			e.emitExpression(it)
		}
		e.write(")")
	case *ast.StructLiteral:
		e.write("(%s){", e.cType(v.TargetType))
		for i, el := range v.Elements {
			if i > 0 {
				e.write(", ")
			}
			e.emitExpression(el)
		}
		e.write("}")
	case *ast.TypeAccess:
		e.write("0 /* %s */", v.Inner.TypeName())
	case *ast.VariableDecl:
		// Declaration-as-expression: already hoisted by the resolver;
		// what remains here reads as the variable.
		e.write("%s", v.Name)
	case *ast.FunctionCall:
		e.emitCall(v)
	default:
		e.write("/* ? */0")
	}
}

func (e *Emitter) emitCall(fc *ast.FunctionCall) {
	if fc.Ref == nil {
		e.write("/* unresolved */%s()", fc.Name)
		return
	}
	e.write("%s(", mangle(fc.Ref, ""))
	first := true
	if fc.Expr != nil && fc.Ref.Owner != nil && !fc.Ref.IsStatic {
		e.write("&")
		e.emitExpression(fc.Expr)
		first = false
	}
	for _, a := range fc.Args {
		if !first {
			e.write(", ")
		}
		e.emitExpression(a)
		first = false
	}
	e.write(")")
}

// cType maps a sable type to its C spelling.
func (e *Emitter) cType(t ast.Type) string {
	switch tt := t.(type) {
	case nil:
		return "void"
	case *ast.BaseType:
		switch tt.NameStr {
		case config.IntTypeName:
			return "int64_t"
		case config.FloatTypeName:
			return "double"
		case config.BoolTypeName, config.CharTypeName:
			return "char"
		case config.StringTypeName:
			return "const char*"
		case config.VoidTypeName:
			return "void"
		case config.PointerTypeName, config.ClassTypeName:
			return "void*"
		case config.VarArgsTypeName:
			return "VarArgs"
		}
		if tt.IsGenericParam() {
			return "void*"
		}
		return tt.NameStr
	case *ast.SugarType:
		return e.cType(tt.Inner) + "*"
	case *ast.FuncType:
		return "void*"
	case *ast.TypeList:
		if len(tt.Types) > 0 {
			return e.cType(tt.Types[0])
		}
		return "void"
	case *ast.AnonymousStructType:
		var fields []string
		for i, ft := range tt.Types {
			fields = append(fields, fmt.Sprintf("%s m%d;", e.cType(ft), i))
		}
		return "struct { " + strings.Join(fields, " ") + " }"
	}
	return "void*"
}
