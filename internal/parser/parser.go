// Package parser turns a token stream into the initial AST the resolver
// works on. The grammar is newline-sensitive at statement boundaries and
// free-form inside parentheses.
package parser

import (
	"strconv"

	"github.com/sablelang/sable/internal/ast"
	"github.com/sablelang/sable/internal/config"
	"github.com/sablelang/sable/internal/diagnostics"
	"github.com/sablelang/sable/internal/lexer"
	"github.com/sablelang/sable/internal/token"
)

// Operator precedence, lowest first.
const (
	_ int = iota
	precLowest
	precAssign   // =
	precEquality // == != < >
	precSum      // + -
	precProduct  // * / %
	precCast     // as
	precPostfix  // . ( &
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:  precAssign,
	token.EQ:      precEquality,
	token.NOT_EQ:  precEquality,
	token.LT:      precEquality,
	token.GT:      precEquality,
	token.PLUS:    precSum,
	token.MINUS:   precSum,
	token.STAR:    precProduct,
	token.SLASH:   precProduct,
	token.PERCENT: precProduct,
	token.AS:      precCast,
	token.DOT:     precPostfix,
	token.AMP:     precPostfix,
}

type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []*diagnostics.DiagnosticError
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// ParseSource is the convenience entry: lex and parse a whole module.
func ParseSource(src, file string) (*ast.Module, []*diagnostics.DiagnosticError) {
	p := New(lexer.New(src, file))
	m := p.ParseModule(moduleName(file))
	return m, p.errors
}

func moduleName(file string) string {
	name := file
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			name = name[i+1:]
			break
		}
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}

func (p *Parser) Errors() []*diagnostics.DiagnosticError { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	if p.peekToken.Type == token.ILLEGAL {
		p.errorf(p.peekToken, diagnostics.ErrL001, "illegal token %q", p.peekToken.Lexeme)
	}
}

func (p *Parser) skipNewlines() {
	for p.curToken.Type == token.NEWLINE {
		p.nextToken()
	}
}

func (p *Parser) errorf(tok token.Token, code diagnostics.ErrorCode, format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.NewError(code, tok, format, args...))
}

func (p *Parser) expect(t token.TokenType) bool {
	if p.curToken.Type == t {
		return true
	}
	p.errorf(p.curToken, diagnostics.ErrP001, "expected %s, got %q", t, p.curToken.Lexeme)
	return false
}

func (p *Parser) expectAndAdvance(t token.TokenType) bool {
	if !p.expect(t) {
		return false
	}
	p.nextToken()
	return true
}

// ParseModule parses until EOF.
func (p *Parser) ParseModule(name string) *ast.Module {
	m := &ast.Module{Tok: p.curToken, Name: name}
	p.skipNewlines()
	for p.curToken.Type != token.EOF {
		if decl := p.parseTopLevel(); decl != nil {
			m.BodyList = append(m.BodyList, decl)
		}
		p.skipNewlines()
	}
	return m
}

// parseTopLevel handles `name: <declaration>` and `name := expr` forms.
func (p *Parser) parseTopLevel() ast.Node {
	if p.curToken.Type != token.IDENT {
		p.errorf(p.curToken, diagnostics.ErrP001, "expected declaration, got %q", p.curToken.Lexeme)
		p.nextToken()
		return nil
	}

	nameTok := p.curToken
	suffix := ""
	p.nextToken()
	if p.curToken.Type == token.TILDE {
		p.nextToken()
		if !p.expect(token.IDENT) {
			return nil
		}
		suffix = p.curToken.Lexeme
		p.nextToken()
	}

	switch p.curToken.Type {
	case token.DECLARE:
		p.nextToken()
		vd := &ast.VariableDecl{Tok: nameTok, Name: nameTok.Lexeme, IsGlobal: true}
		vd.Expr = p.parseExpression(precLowest)
		return vd
	case token.COLON:
		p.nextToken()
		return p.parseDeclBody(nameTok, suffix)
	}
	p.errorf(p.curToken, diagnostics.ErrP001, "expected : or := after %q", nameTok.Lexeme)
	p.nextToken()
	return nil
}

// parseDeclBody dispatches on what follows `name:`.
func (p *Parser) parseDeclBody(nameTok token.Token, suffix string) ast.Node {
	switch p.curToken.Type {
	case token.CLASS:
		return p.parseClass(nameTok)
	case token.INTERFACE:
		return p.parseInterface(nameTok)
	case token.NAMESPACE:
		return p.parseNamespace(nameTok)
	case token.FUNC, token.EXTERN, token.STATIC, token.INLINE:
		return p.parseFunction(nameTok, suffix)
	default:
		// Typed variable: name: Type (= expr)?
		vd := &ast.VariableDecl{Tok: nameTok, Name: nameTok.Lexeme, IsGlobal: true}
		vd.DeclTyp = p.parseType()
		if p.curToken.Type == token.ASSIGN {
			p.nextToken()
			vd.Expr = p.parseExpression(precLowest)
		}
		return vd
	}
}

// parseFunction parses modifiers, generics, params, return type and body.
func (p *Parser) parseFunction(nameTok token.Token, suffix string) *ast.FunctionDecl {
	fd := &ast.FunctionDecl{Tok: nameTok, Name: nameTok.Lexeme, Suffix: suffix}

	for {
		switch p.curToken.Type {
		case token.EXTERN:
			fd.IsExtern = true
			p.nextToken()
			continue
		case token.STATIC:
			fd.IsStatic = true
			p.nextToken()
			continue
		case token.INLINE:
			fd.DoInline = true
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectAndAdvance(token.FUNC) {
		return fd
	}

	if p.curToken.Type == token.LT {
		p.nextToken()
		for p.curToken.Type == token.IDENT {
			fd.TypeParams = append(fd.TypeParams, &ast.TypeParam{Tok: p.curToken, NameStr: p.curToken.Lexeme})
			p.nextToken()
			if p.curToken.Type == token.COMMA {
				p.nextToken()
			}
		}
		p.expectAndAdvance(token.GT)
	}

	if p.curToken.Type == token.LPAREN {
		p.parseParams(fd)
	}

	if p.curToken.Type == token.ARROW {
		p.nextToken()
		fd.ReturnType = p.parseType()
	}

	if p.curToken.Type == token.LBRACE {
		fd.BodyBlock = p.parseBlock()
	}

	if fd.DoInline && fd.BodyBlock != nil {
		fd.InlineCopy = fd.CloneForInline()
	}
	return fd
}

func (p *Parser) parseParams(fd *ast.FunctionDecl) {
	p.nextToken() // past (
	p.skipNewlines()
	for p.curToken.Type != token.RPAREN && p.curToken.Type != token.EOF {
		if p.curToken.Type == token.ELLIPSIS {
			fd.VArg = &ast.VarArg{Argument: ast.Argument{Tok: p.curToken}}
			p.nextToken()
		} else {
			if !p.expect(token.IDENT) {
				return
			}
			argTok := p.curToken
			p.nextToken()
			if !p.expectAndAdvance(token.COLON) {
				return
			}
			if p.curToken.Type == token.ELLIPSIS {
				fd.VArg = &ast.VarArg{Argument: ast.Argument{Tok: argTok, Name: argTok.Lexeme}}
				p.nextToken()
			} else {
				arg := &ast.Argument{Tok: argTok, Name: argTok.Lexeme, Type: p.parseType()}
				if p.curToken.Type == token.ASSIGN {
					p.nextToken()
					arg.Default = p.parseExpression(precEquality)
				}
				fd.Args = append(fd.Args, arg)
			}
		}
		p.skipNewlines()
		if p.curToken.Type == token.COMMA {
			p.nextToken()
			p.skipNewlines()
		}
	}
	p.expectAndAdvance(token.RPAREN)
}

// parseClass builds the instance TypeDecl and its meta companion. Statics and
// constructors live on the meta, implicit conversions on the instance; new
// is generated for every init.
func (p *Parser) parseClass(nameTok token.Token) *ast.TypeDecl {
	inst := &ast.TypeDecl{Tok: nameTok, Name: nameTok.Lexeme}
	meta := &ast.TypeDecl{Tok: nameTok, Name: nameTok.Lexeme + "Class", IsMeta: true}
	inst.Meta = meta
	meta.NonMeta = inst

	p.nextToken() // past class

	if p.curToken.Type == token.LT {
		p.nextToken()
		for p.curToken.Type == token.IDENT {
			inst.TypeParams = append(inst.TypeParams, &ast.TypeParam{Tok: p.curToken, NameStr: p.curToken.Lexeme})
			p.nextToken()
			if p.curToken.Type == token.COMMA {
				p.nextToken()
			}
		}
		p.expectAndAdvance(token.GT)
	}

	if p.curToken.Type == token.EXTENDS {
		p.nextToken()
		inst.SuperType = p.parseType()
	}
	if p.curToken.Type == token.IMPLEMENTS {
		p.nextToken()
		for {
			inst.Interfaces = append(inst.Interfaces, p.parseType())
			if p.curToken.Type != token.COMMA {
				break
			}
			p.nextToken()
		}
	}

	inst.ThisDecl = &ast.VariableDecl{Tok: nameTok, Name: config.ThisVarName, DeclTyp: inst.InstanceType()}
	meta.ThisDecl = inst.ThisDecl

	if !p.expect(token.LBRACE) {
		return inst
	}
	p.nextToken()
	p.skipNewlines()

	for p.curToken.Type != token.RBRACE && p.curToken.Type != token.EOF {
		p.parseClassMember(inst, meta)
		p.skipNewlines()
	}
	p.expectAndAdvance(token.RBRACE)

	// Every constructor gets a matching new on the meta.
	for _, f := range meta.Functions {
		if f.Name != config.InitFuncName {
			continue
		}
		gen := &ast.FunctionDecl{
			Tok:        f.Tok,
			Name:       config.NewFuncName,
			Suffix:     f.Suffix,
			Args:       f.Args,
			VArg:       f.VArg,
			ReturnType: inst.InstanceType().CloneType(),
			Owner:      meta,
			IsStatic:   true,
		}
		meta.Functions = append(meta.Functions, gen)
	}
	return inst
}

func (p *Parser) parseClassMember(inst, meta *ast.TypeDecl) {
	if p.curToken.Type != token.IDENT && p.curToken.Type != token.AS {
		p.errorf(p.curToken, diagnostics.ErrP001, "expected class member, got %q", p.curToken.Lexeme)
		p.nextToken()
		return
	}

	nameTok := p.curToken
	isConversion := p.curToken.Type == token.AS
	suffix := ""
	p.nextToken()
	if p.curToken.Type == token.TILDE {
		p.nextToken()
		if !p.expect(token.IDENT) {
			return
		}
		suffix = p.curToken.Lexeme
		p.nextToken()
	}

	switch p.curToken.Type {
	case token.DECLARE:
		p.nextToken()
		vd := &ast.VariableDecl{Tok: nameTok, Name: nameTok.Lexeme, OwnerType: inst}
		vd.Expr = p.parseExpression(precLowest)
		inst.Variables = append(inst.Variables, vd)
	case token.COLON:
		p.nextToken()
		switch p.curToken.Type {
		case token.FUNC, token.EXTERN, token.STATIC, token.INLINE:
			fd := p.parseFunction(nameTok, suffix)
			switch {
			case isConversion:
				fd.Owner = inst
				inst.ImplicitConversions = append(inst.ImplicitConversions, &ast.ImplicitConvDecl{Tok: nameTok, FDecl: fd})
			case fd.IsStatic || fd.Name == config.InitFuncName:
				fd.Owner = meta
				meta.Functions = append(meta.Functions, fd)
			default:
				fd.Owner = inst
				inst.Functions = append(inst.Functions, fd)
			}
		default:
			vd := &ast.VariableDecl{Tok: nameTok, Name: nameTok.Lexeme, OwnerType: inst}
			vd.DeclTyp = p.parseType()
			if p.curToken.Type == token.ASSIGN {
				p.nextToken()
				vd.Expr = p.parseExpression(precLowest)
			}
			inst.Variables = append(inst.Variables, vd)
		}
	default:
		p.errorf(p.curToken, diagnostics.ErrP001, "expected : or := in class member, got %q", p.curToken.Lexeme)
		p.nextToken()
	}
}

func (p *Parser) parseInterface(nameTok token.Token) *ast.InterfaceDecl {
	decl := &ast.InterfaceDecl{Tok: nameTok, Name: nameTok.Lexeme}
	p.nextToken() // past interface
	if !p.expect(token.LBRACE) {
		return decl
	}
	p.nextToken()
	p.skipNewlines()
	for p.curToken.Type != token.RBRACE && p.curToken.Type != token.EOF {
		if !p.expect(token.IDENT) {
			return decl
		}
		fnTok := p.curToken
		p.nextToken()
		if !p.expectAndAdvance(token.COLON) {
			return decl
		}
		fd := p.parseFunction(fnTok, "")
		fd.OwnerInterface = decl
		decl.Functions = append(decl.Functions, fd)
		p.skipNewlines()
	}
	p.expectAndAdvance(token.RBRACE)
	return decl
}

func (p *Parser) parseNamespace(nameTok token.Token) *ast.NamespaceDecl {
	decl := &ast.NamespaceDecl{Tok: nameTok, Name: nameTok.Lexeme}
	p.nextToken() // past namespace
	if !p.expect(token.LBRACE) {
		return decl
	}
	p.nextToken()
	p.skipNewlines()
	for p.curToken.Type != token.RBRACE && p.curToken.Type != token.EOF {
		n := p.parseTopLevel()
		switch d := n.(type) {
		case *ast.FunctionDecl:
			decl.Functions = append(decl.Functions, d)
		case *ast.VariableDecl:
			decl.Variables = append(decl.Variables, d)
		case nil:
		default:
			p.errorf(n.Token(), diagnostics.ErrP001, "only functions and variables allowed in a namespace")
		}
		p.skipNewlines()
	}
	p.expectAndAdvance(token.RBRACE)
	return decl
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Tok: p.curToken}
	p.nextToken() // past {
	p.skipNewlines()
	for p.curToken.Type != token.RBRACE && p.curToken.Type != token.EOF {
		if stmt := p.parseStatement(); stmt != nil {
			block.BodyList = append(block.BodyList, stmt)
		}
		p.skipNewlines()
	}
	if p.curToken.Type == token.EOF {
		p.errorf(block.Tok, diagnostics.ErrP002, "unterminated block")
		return block
	}
	p.expectAndAdvance(token.RBRACE)
	return block
}

func (p *Parser) parseStatement() ast.Node {
	switch p.curToken.Type {
	case token.RETURN:
		r := &ast.Return{Tok: p.curToken}
		p.nextToken()
		if p.curToken.Type != token.NEWLINE && p.curToken.Type != token.RBRACE && p.curToken.Type != token.EOF {
			r.Expr = p.parseExpression(precLowest)
		}
		return r
	case token.IDENT:
		// Local declarations: x := expr, x: Type (= expr)?
		if p.peekToken.Type == token.DECLARE {
			vd := &ast.VariableDecl{Tok: p.curToken, Name: p.curToken.Lexeme}
			p.nextToken()
			p.nextToken()
			vd.Expr = p.parseExpression(precLowest)
			return vd
		}
		if p.peekToken.Type == token.COLON {
			vd := &ast.VariableDecl{Tok: p.curToken, Name: p.curToken.Lexeme}
			p.nextToken()
			p.nextToken()
			vd.DeclTyp = p.parseType()
			if p.curToken.Type == token.ASSIGN {
				p.nextToken()
				vd.Expr = p.parseExpression(precLowest)
			}
			return vd
		}
	}
	return p.parseExpression(precLowest)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return precLowest
}

func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for {
		switch p.curToken.Type {
		case token.DOT:
			left = p.parseMember(left)
			continue
		case token.AMP:
			left = &ast.AddressOf{Tok: p.curToken, Expr: left}
			p.nextToken()
			continue
		case token.AS:
			if precCast <= minPrec {
				return left
			}
			tok := p.curToken
			p.nextToken()
			left = &ast.Cast{Tok: tok, Inner: left, TargetType: p.parseType()}
			continue
		}

		prec := p.curPrecedence()
		if prec <= minPrec || prec == precLowest {
			return left
		}
		switch p.curToken.Type {
		case token.ASSIGN, token.EQ, token.NOT_EQ, token.LT, token.GT,
			token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
			op := p.curToken
			p.nextToken()
			right := p.parseExpression(prec)
			left = &ast.BinaryOp{Tok: op, Left: left, Op: op.Lexeme, Right: right}
		default:
			return left
		}
	}
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.curToken.Type {
	case token.INT:
		v, _ := strconv.ParseInt(p.curToken.Lexeme, 10, 64)
		lit := &ast.IntLiteral{Tok: p.curToken, Value: v}
		p.nextToken()
		return lit
	case token.FLOAT:
		v, _ := strconv.ParseFloat(p.curToken.Lexeme, 64)
		lit := &ast.FloatLiteral{Tok: p.curToken, Value: v}
		p.nextToken()
		return lit
	case token.STRING:
		lit := &ast.StringLiteral{Tok: p.curToken, Value: p.curToken.Lexeme}
		p.nextToken()
		return lit
	case token.TRUE, token.FALSE:
		lit := &ast.BoolLiteral{Tok: p.curToken, Value: p.curToken.Type == token.TRUE}
		p.nextToken()
		return lit
	case token.NULL:
		lit := &ast.NullLiteral{Tok: p.curToken}
		p.nextToken()
		return lit
	case token.THIS:
		acc := &ast.VariableAccess{Tok: p.curToken, Name: config.ThisVarName}
		p.nextToken()
		return acc
	case token.SUPER:
		tok := p.curToken
		p.nextToken()
		call := ast.NewFunctionCall(tok, config.SuperFuncName)
		if p.curToken.Type == token.LPAREN {
			call.Args = p.parseCallArgs()
		}
		return call
	case token.MINUS:
		tok := p.curToken
		p.nextToken()
		right := p.parseExpression(precProduct)
		return &ast.BinaryOp{Tok: tok, Left: &ast.IntLiteral{Tok: tok, Value: 0}, Op: "-", Right: right}
	case token.LPAREN:
		p.nextToken()
		expr := p.parseExpression(precLowest)
		p.expectAndAdvance(token.RPAREN)
		return expr
	case token.FUNC:
		return p.parseClosure()
	case token.IDENT:
		return p.parseIdentExpression()
	}
	p.errorf(p.curToken, diagnostics.ErrP001, "unexpected token %q in expression", p.curToken.Lexeme)
	p.nextToken()
	return nil
}

// parseIdentExpression handles name, name(args) and name~suffix(args).
func (p *Parser) parseIdentExpression() ast.Expression {
	nameTok := p.curToken
	p.nextToken()

	suffix := ""
	if p.curToken.Type == token.TILDE && p.peekToken.Type == token.IDENT {
		p.nextToken()
		suffix = p.curToken.Lexeme
		p.nextToken()
	}

	if p.curToken.Type == token.LPAREN {
		call := ast.NewFunctionCall(nameTok, nameTok.Lexeme)
		call.Suffix = suffix
		call.Args = p.parseCallArgs()
		return call
	}
	if suffix != "" {
		p.errorf(nameTok, diagnostics.ErrP001, "suffix ~%s only allowed on calls", suffix)
	}
	return &ast.VariableAccess{Tok: nameTok, Name: nameTok.Lexeme}
}

// parseMember handles expr.name, expr.name(args), expr.name~suffix(args).
func (p *Parser) parseMember(left ast.Expression) ast.Expression {
	p.nextToken() // past .
	if !p.expect(token.IDENT) {
		return left
	}
	nameTok := p.curToken
	p.nextToken()

	suffix := ""
	if p.curToken.Type == token.TILDE && p.peekToken.Type == token.IDENT {
		p.nextToken()
		suffix = p.curToken.Lexeme
		p.nextToken()
	}

	if p.curToken.Type == token.LPAREN {
		call := ast.NewFunctionCall(nameTok, nameTok.Lexeme)
		call.Expr = left
		call.Suffix = suffix
		call.Args = p.parseCallArgs()
		return call
	}
	if suffix != "" {
		p.errorf(nameTok, diagnostics.ErrP001, "suffix ~%s only allowed on calls", suffix)
	}
	return &ast.VariableAccess{Tok: nameTok, Expr: left, Name: nameTok.Lexeme}
}

func (p *Parser) parseCallArgs() []ast.Expression {
	var args []ast.Expression
	p.nextToken() // past (
	p.skipNewlines()
	for p.curToken.Type != token.RPAREN && p.curToken.Type != token.EOF {
		if arg := p.parseExpression(precLowest); arg != nil {
			args = append(args, arg)
		}
		p.skipNewlines()
		if p.curToken.Type == token.COMMA {
			p.nextToken()
			p.skipNewlines()
		}
	}
	p.expectAndAdvance(token.RPAREN)
	return args
}

// parseClosure parses an anonymous function expression.
func (p *Parser) parseClosure() ast.Expression {
	fd := &ast.FunctionDecl{Tok: p.curToken, IsAnon: true}
	p.nextToken() // past func
	if p.curToken.Type == token.LPAREN {
		p.parseParams(fd)
	}
	if p.curToken.Type == token.ARROW {
		p.nextToken()
		fd.ReturnType = p.parseType()
	}
	if p.curToken.Type == token.LBRACE {
		fd.BodyBlock = p.parseBlock()
	}
	return fd
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

func (p *Parser) parseType() ast.Type {
	var t ast.Type

	switch p.curToken.Type {
	case token.FUNC:
		ft := &ast.FuncType{Tok: p.curToken}
		p.nextToken()
		if p.curToken.Type == token.LPAREN {
			p.nextToken()
			for p.curToken.Type != token.RPAREN && p.curToken.Type != token.EOF {
				ft.ArgTypes = append(ft.ArgTypes, p.parseType())
				if p.curToken.Type == token.COMMA {
					p.nextToken()
				}
			}
			p.expectAndAdvance(token.RPAREN)
		}
		if p.curToken.Type == token.ARROW {
			p.nextToken()
			ft.Return = p.parseType()
		}
		t = ft
	case token.LPAREN:
		tl := &ast.TypeList{Tok: p.curToken}
		p.nextToken()
		for p.curToken.Type != token.RPAREN && p.curToken.Type != token.EOF {
			tl.Types = append(tl.Types, p.parseType())
			if p.curToken.Type == token.COMMA {
				p.nextToken()
			}
		}
		p.expectAndAdvance(token.RPAREN)
		if len(tl.Types) == 1 {
			t = tl.Types[0]
		} else {
			t = tl
		}
	case token.IDENT:
		bt := ast.NewBaseType(p.curToken, p.curToken.Lexeme)
		p.nextToken()
		if p.curToken.Type == token.LT {
			p.nextToken()
			for p.curToken.Type != token.GT && p.curToken.Type != token.EOF {
				bt.TypeArgs = append(bt.TypeArgs, p.parseType())
				if p.curToken.Type == token.COMMA {
					p.nextToken()
				}
			}
			p.expectAndAdvance(token.GT)
		}
		t = bt
	default:
		p.errorf(p.curToken, diagnostics.ErrP001, "expected type, got %q", p.curToken.Lexeme)
		p.nextToken()
		return ast.NewBaseType(p.curToken, config.VoidTypeName)
	}

	// Postfix sugar: *, @, []
	for {
		switch p.curToken.Type {
		case token.STAR:
			t = &ast.SugarType{Tok: p.curToken, Kind: ast.PointerTo, Inner: t}
			p.nextToken()
		case token.AT:
			t = &ast.SugarType{Tok: p.curToken, Kind: ast.ReferenceTo, Inner: t}
			p.nextToken()
		case token.LBRACKET:
			if p.peekToken.Type == token.RBRACKET {
				t = &ast.SugarType{Tok: p.curToken, Kind: ast.ArrayOf, Inner: t}
				p.nextToken()
				p.nextToken()
			} else {
				return t
			}
		default:
			return t
		}
	}
}
