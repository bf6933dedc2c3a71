package ast

import (
	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/token"
)

// Module is the root node: one compiled source file.
type Module struct {
	Tok      token.Token
	Name     string
	FullName string // import path, when loaded through use
	Imports  []*Module
	BodyList []Node

	// Neighbors are modules the build knows about but this module never
	// imported. Only the helpful unresolved-call scan reads them.
	Neighbors []*Module
}

func (m *Module) Token() token.Token { return m.Tok }
func (m *Module) Accept(v Visitor)   { v.VisitModule(m) }
func (m *Module) Body() *[]Node      { return &m.BodyList }

func (m *Module) AddBefore(mark Node, stmt Node) bool {
	return addBefore(&m.BodyList, mark, stmt)
}

func (m *Module) Replace(old, new Node) bool {
	return replaceInBody(m.BodyList, old, new)
}

// FunctionsNamed collects top-level functions with the given name, in
// declaration order.
func (m *Module) FunctionsNamed(name string) []*FunctionDecl {
	var out []*FunctionDecl
	for _, n := range m.BodyList {
		if fd, ok := n.(*FunctionDecl); ok && fd.Name == name {
			out = append(out, fd)
		}
	}
	return out
}

// TypeNamed finds a top-level TypeDecl or InterfaceDecl by name.
func (m *Module) TypeNamed(name string) Node {
	for _, n := range m.BodyList {
		switch d := n.(type) {
		case *TypeDecl:
			if d.Name == name {
				return d
			}
		case *InterfaceDecl:
			if d.Name == name {
				return d
			}
		}
	}
	return nil
}

// TypeParam is a formal generic parameter on a function or class.
type TypeParam struct {
	Tok     token.Token
	NameStr string
}

func (p *TypeParam) Token() token.Token     { return p.Tok }
func (p *TypeParam) Accept(v Visitor)       { v.VisitTypeParam(p) }
func (p *TypeParam) Replace(o, n Node) bool { return false }
func (p *TypeParam) DeclName() string       { return p.NameStr }
func (p *TypeParam) DeclType() Type {
	return &BaseType{Tok: p.Tok, NameStr: config.ClassTypeName}
}

// Argument is a declared function parameter. Default, when set, makes the
// argument optional.
type Argument struct {
	Tok     token.Token
	Name    string
	Type    Type
	Default Expression
}

func (a *Argument) Token() token.Token { return a.Tok }
func (a *Argument) Accept(v Visitor)   { v.VisitArgument(a) }
func (a *Argument) DeclName() string   { return a.Name }
func (a *Argument) DeclType() Type     { return a.Type }

func (a *Argument) Replace(old, new Node) bool {
	if a.Type != nil && Node(a.Type) == old {
		return replaceType(&a.Type, old, new)
	}
	if a.Default != nil && Node(a.Default) == old {
		return replaceExpr(&a.Default, old, new)
	}
	return false
}

// VarArg is a declared parameter that swallows any number of trailing call
// arguments. A named VarArg receives them boxed into a VarArgs struct; a
// bare one (extern C style) passes them through.
type VarArg struct {
	Argument
}

func (va *VarArg) Accept(v Visitor) { v.VisitVarArg(va) }

// ImplicitConvDecl declares an implicit conversion on a TypeDecl. FDecl's
// return type is the target type the conversion produces.
type ImplicitConvDecl struct {
	Tok   token.Token
	FDecl *FunctionDecl
}

func (ic *ImplicitConvDecl) Token() token.Token     { return ic.Tok }
func (ic *ImplicitConvDecl) Accept(v Visitor)       { v.VisitImplicitConvDecl(ic) }
func (ic *ImplicitConvDecl) Replace(o, n Node) bool { return false }

// FunctionDecl is a function or method declaration.
type FunctionDecl struct {
	Tok    token.Token
	Name   string
	Suffix string // disambiguating tag: new~withFile

	Args       []*Argument
	VArg       *VarArg // trailing vararg, also appended conceptually after Args
	ReturnType Type

	TypeParams         []*TypeParam
	GenericConstraints map[string]Type

	Owner *TypeDecl // non-nil for methods

	// OwnerInterface is set on interface method signatures; calls through
	// an interface-typed receiver dispatch virtually.
	OwnerInterface *InterfaceDecl

	IsExtern bool
	IsStatic bool
	IsAnon   bool
	DoInline bool

	// IsThisRef marks methods whose receiver is taken by reference; call
	// sites must present a referencable expression.
	IsThisRef bool

	// InlineCopy is a body clone reserved for inlining; it is never
	// resolved in place.
	InlineCopy *FunctionDecl

	// InferredReturnType is filled for anonymous closures once their body
	// resolves.
	InferredReturnType Type

	BodyBlock *Block
}

func (f *FunctionDecl) Token() token.Token { return f.Tok }
func (f *FunctionDecl) Accept(v Visitor)   { v.VisitFunctionDecl(f) }
func (f *FunctionDecl) DeclName() string   { return f.Name }

func (f *FunctionDecl) DeclType() Type {
	ft := &FuncType{Tok: f.Tok, Return: f.ReturnType}
	for _, a := range f.Args {
		ft.ArgTypes = append(ft.ArgTypes, a.Type)
	}
	return ft
}

// AllArgs returns declared args with the trailing vararg appended.
func (f *FunctionDecl) AllArgs() []*Argument {
	if f.VArg == nil {
		return f.Args
	}
	out := make([]*Argument, 0, len(f.Args)+1)
	out = append(out, f.Args...)
	out = append(out, &f.VArg.Argument)
	return out
}

// HasTypeParam reports whether name is one of the formal generic params.
func (f *FunctionDecl) HasTypeParam(name string) bool {
	for _, p := range f.TypeParams {
		if p.NameStr == name {
			return true
		}
	}
	return false
}

// TypeParamNamed returns the formal generic param, or nil.
func (f *FunctionDecl) TypeParamNamed(name string) *TypeParam {
	for _, p := range f.TypeParams {
		if p.NameStr == name {
			return p
		}
	}
	return nil
}

// HasGenericReturn reports whether the declared return type mentions a
// formal type parameter; such functions return through out-params.
func (f *FunctionDecl) HasGenericReturn() bool {
	return f.ReturnType != nil && IsGenericType(f.ReturnType)
}

// IsVoid reports whether the function produces no value.
func (f *FunctionDecl) IsVoid() bool {
	if f.ReturnType == nil {
		return true
	}
	bt, ok := f.ReturnType.(*BaseType)
	return ok && bt.IsVoid()
}

func (f *FunctionDecl) Replace(old, new Node) bool {
	for i, a := range f.Args {
		if Node(a) == old {
			if na, ok := new.(*Argument); ok {
				f.Args[i] = na
				return true
			}
			return false
		}
	}
	if f.ReturnType != nil && Node(f.ReturnType) == old {
		return replaceType(&f.ReturnType, old, new)
	}
	if f.BodyBlock != nil && Node(f.BodyBlock) == old {
		if nb, ok := new.(*Block); ok {
			f.BodyBlock = nb
			return true
		}
	}
	return false
}

// TypeDecl is a class declaration. Each class has a meta companion that
// carries its static members and constructors; Meta and NonMeta link the
// two forms.
type TypeDecl struct {
	Tok  token.Token
	Name string

	TypeParams []*TypeParam

	SuperType Type      // declared extends clause
	SuperRef  *TypeDecl // bound super class

	Interfaces []Type // declared implements clauses

	Meta    *TypeDecl
	NonMeta *TypeDecl
	IsMeta  bool

	ImplicitConversions []*ImplicitConvDecl

	Variables []*VariableDecl
	Functions []*FunctionDecl

	// ThisDecl is the declaration `this` accesses bind to inside methods.
	ThisDecl *VariableDecl

	// instanceType caches the BaseType referring back to this decl with
	// its own params as arguments.
	instanceType Type
}

func (t *TypeDecl) Token() token.Token { return t.Tok }
func (t *TypeDecl) Accept(v Visitor)   { v.VisitTypeDecl(t) }
func (t *TypeDecl) DeclName() string   { return t.Name }
func (t *TypeDecl) DeclType() Type     { return t.InstanceType() }

// InstanceType returns the BaseType referring to this declaration, with the
// formal params applied as arguments (List<T> inside List's own body).
func (t *TypeDecl) InstanceType() Type {
	if t.instanceType == nil {
		bt := &BaseType{Tok: t.Tok, NameStr: t.Name, Ref: t}
		for _, p := range t.TypeParams {
			bt.TypeArgs = append(bt.TypeArgs, &BaseType{Tok: p.Tok, NameStr: p.NameStr, Ref: p})
		}
		t.instanceType = bt
	}
	return t.instanceType
}

// TypeParamNamed returns the formal generic param, or nil.
func (t *TypeDecl) TypeParamNamed(name string) *TypeParam {
	for _, p := range t.TypeParams {
		if p.NameStr == name {
			return p
		}
	}
	return nil
}

// FunctionsNamed collects methods with the given name (any suffix), walking
// the super chain outward.
func (t *TypeDecl) FunctionsNamed(name string) []*FunctionDecl {
	var out []*FunctionDecl
	for cur := t; cur != nil; cur = cur.SuperRef {
		for _, f := range cur.Functions {
			if f.Name == name {
				out = append(out, f)
			}
		}
	}
	return out
}

// GetFunction returns the first method named name (with the given suffix,
// when suffix is non-empty) on this decl, then on its supers in order, and
// sets *scoreOut to ScoreSeed on a match. Candidates are not scored against
// each other. A nil scoreOut skips reporting.
func (t *TypeDecl) GetFunction(name, suffix string, scoreOut *int) *FunctionDecl {
	for cur := t; cur != nil; cur = cur.SuperRef {
		for _, f := range cur.Functions {
			if f.Name == name && (suffix == "" || f.Suffix == suffix) {
				if scoreOut != nil {
					*scoreOut = ScoreSeed
				}
				return f
			}
		}
	}
	return nil
}

// VariableNamed finds a field by name, walking the super chain.
func (t *TypeDecl) VariableNamed(name string) *VariableDecl {
	for cur := t; cur != nil; cur = cur.SuperRef {
		for _, vd := range cur.Variables {
			if vd.Name == name {
				return vd
			}
		}
	}
	return nil
}

// InheritanceDepth returns how many extends hops separate t from ancestor,
// or -1 when ancestor is not in the super chain.
func (t *TypeDecl) InheritanceDepth(ancestor *TypeDecl) int {
	depth := 0
	for cur := t; cur != nil; cur = cur.SuperRef {
		if cur == ancestor {
			return depth
		}
		depth++
	}
	return -1
}

// Implements reports whether the class (or a super) declares the interface.
func (t *TypeDecl) Implements(iface *InterfaceDecl) bool {
	for cur := t; cur != nil; cur = cur.SuperRef {
		for _, it := range cur.Interfaces {
			if bt, ok := it.(*BaseType); ok && bt.InterfaceRef() == iface {
				return true
			}
		}
	}
	return false
}

func (t *TypeDecl) Replace(old, new Node) bool {
	if t.SuperType != nil && Node(t.SuperType) == old {
		return replaceType(&t.SuperType, old, new)
	}
	for i, it := range t.Interfaces {
		if Node(it) == old {
			if nt, ok := new.(Type); ok {
				t.Interfaces[i] = nt
				return true
			}
			return false
		}
	}
	for i, vd := range t.Variables {
		if Node(vd) == old {
			if nv, ok := new.(*VariableDecl); ok {
				t.Variables[i] = nv
				return true
			}
			return false
		}
	}
	for i, f := range t.Functions {
		if Node(f) == old {
			if nf, ok := new.(*FunctionDecl); ok {
				t.Functions[i] = nf
				return true
			}
			return false
		}
	}
	return false
}

// InterfaceDecl declares an interface: a named set of function signatures.
type InterfaceDecl struct {
	Tok       token.Token
	Name      string
	Functions []*FunctionDecl
}

func (i *InterfaceDecl) Token() token.Token { return i.Tok }
func (i *InterfaceDecl) Accept(v Visitor)   { v.VisitInterfaceDecl(i) }
func (i *InterfaceDecl) DeclName() string   { return i.Name }
func (i *InterfaceDecl) DeclType() Type {
	return &BaseType{Tok: i.Tok, NameStr: i.Name, Ref: i}
}

func (i *InterfaceDecl) Replace(old, new Node) bool {
	for idx, f := range i.Functions {
		if Node(f) == old {
			if nf, ok := new.(*FunctionDecl); ok {
				i.Functions[idx] = nf
				return true
			}
			return false
		}
	}
	return false
}

// NamespaceDecl groups functions and variables under a name.
type NamespaceDecl struct {
	Tok       token.Token
	Name      string
	Functions []*FunctionDecl
	Variables []*VariableDecl
}

func (n *NamespaceDecl) Token() token.Token { return n.Tok }
func (n *NamespaceDecl) Accept(v Visitor)   { v.VisitNamespaceDecl(n) }
func (n *NamespaceDecl) DeclName() string   { return n.Name }
func (n *NamespaceDecl) DeclType() Type     { return nil }

func (n *NamespaceDecl) Replace(old, new Node) bool {
	for i, f := range n.Functions {
		if Node(f) == old {
			if nf, ok := new.(*FunctionDecl); ok {
				n.Functions[i] = nf
				return true
			}
			return false
		}
	}
	for i, vd := range n.Variables {
		if Node(vd) == old {
			if nv, ok := new.(*VariableDecl); ok {
				n.Variables[i] = nv
				return true
			}
			return false
		}
	}
	return false
}
