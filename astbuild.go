package main

import (
	"fmt"

	"github.com/tria-lang/tria/mdtest"
)

// BuildAST constructs an AST from its s-expression form. The grammar mirrors
// ToSExpr where the two overlap:
//
//	(ident "x")
//	(literal int 5) | (literal (array-type int 8) (block <expr>...))
//	(binary "+" <expr> <expr>)
//	(assign "=" <expr> <expr>)
//	(unary "!" <expr>) | (unary "++" <expr>)
//	(primary "x") | (primary "arr" (index <expr>))
//	(var (names x y) [(type int) | (array-type int 8)] [(init <expr>...)])
//	(const ...)                                        same shape as var
//	(func "name" (params (param x (type int))...) (body <stmt>...))
//	(call "fmt.Println" [(type int)] <expr>...)
//	(if [(init <stmt>)] (cond <expr>) (then <stmt>...) [(else <stmt>...)])
//	(for [(init <stmt>)] (cond <expr>) [(post <stmt>)] (body <stmt>...))
//	(return [<expr>]) | (break) | (continue)
//	(block <stmt>...)
func BuildAST(e *mdtest.SExpr) (*ASTNode, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	head := e.Head()
	if head == "" {
		return nil, fmt.Errorf("expected a tagged list, got %s", e.String())
	}
	args := e.Args()

	switch head {
	case "ident":
		name, err := nameArg(head, args, 0)
		if err != nil {
			return nil, err
		}
		return &ASTNode{Kind: NodeIdent, Ident: name}, nil

	case "literal":
		return buildLiteral(args)

	case "binary", "assign", "unary":
		return buildOperator(head, args)

	case "primary":
		return buildPrimary(args)

	case "index":
		if len(args) != 1 {
			return nil, fmt.Errorf("index takes one expression, got %d", len(args))
		}
		child, err := BuildAST(args[0])
		if err != nil {
			return nil, err
		}
		return &ASTNode{Kind: NodeIndex, Children: []*ASTNode{child}}, nil

	case "var", "const":
		return buildVarDecl(args, head == "const")

	case "func":
		return buildFunc(args)

	case "call":
		return buildCall(args)

	case "if":
		return buildIf(args)

	case "for":
		return buildFor(args)

	case "return", "break", "continue":
		n := &ASTNode{Kind: NodeKeyword, Keyword: head}
		if len(args) > 1 {
			return nil, fmt.Errorf("%s takes at most one expression", head)
		}
		if len(args) == 1 {
			child, err := BuildAST(args[0])
			if err != nil {
				return nil, err
			}
			n.AddChild(child)
		}
		return n, nil

	case "block":
		return buildBlock(args)

	case "type":
		name, err := nameArg(head, args, 0)
		if err != nil {
			return nil, err
		}
		return &ASTNode{Kind: NodeType, TypeName: name}, nil

	case "array-type":
		name, err := nameArg(head, args, 0)
		if err != nil {
			return nil, err
		}
		n := &ASTNode{Kind: NodeArrayType, TypeName: name, EltSize: 8}
		if len(args) > 1 {
			if args[1].Kind != mdtest.IntExpr {
				return nil, fmt.Errorf("array-type element size must be an integer")
			}
			n.EltSize = int(args[1].Int)
		}
		return n, nil

	default:
		return nil, fmt.Errorf("unknown node tag %q in %s", head, e.String())
	}
}

func buildLiteral(args []*mdtest.SExpr) (*ASTNode, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("literal needs a type and a value")
	}
	// Composite form: (literal (array-type ...) (block elems...)).
	if args[0].Head() == "array-type" {
		if len(args) != 2 {
			return nil, fmt.Errorf("composite literal takes a type and an element block")
		}
		typ, err := BuildAST(args[0])
		if err != nil {
			return nil, err
		}
		elems, err := BuildAST(args[1])
		if err != nil {
			return nil, err
		}
		return &ASTNode{Kind: NodeLiteral, Children: []*ASTNode{typ, elems}}, nil
	}
	if len(args) != 2 || args[0].Kind != mdtest.SymbolExpr {
		return nil, fmt.Errorf("literal needs a type symbol and a value")
	}
	n := &ASTNode{Kind: NodeLiteral, LitType: args[0].Text}
	switch v := args[1]; v.Kind {
	case mdtest.IntExpr:
		n.LitValue = int(v.Int)
	case mdtest.FloatExpr:
		n.LitValue = v.Float
	case mdtest.StringExpr:
		n.LitValue = v.Text
	case mdtest.SymbolExpr:
		switch v.Text {
		case "true":
			n.LitValue = true
		case "false":
			n.LitValue = false
		default:
			return nil, fmt.Errorf("unknown literal value %q", v.Text)
		}
	default:
		return nil, fmt.Errorf("bad literal value %s", v.String())
	}
	return n, nil
}

func buildOperator(head string, args []*mdtest.SExpr) (*ASTNode, error) {
	want := 3
	if head == "unary" {
		want = 2
	}
	if len(args) != want {
		return nil, fmt.Errorf("%s takes an operator and %d operand(s)", head, want-1)
	}
	op, err := nameArg(head, args, 0)
	if err != nil {
		return nil, err
	}
	kind := NodeBinary
	switch head {
	case "assign":
		kind = NodeAssign
	case "unary":
		kind = NodeUnary
	}
	n := &ASTNode{Kind: kind, Op: op}
	for _, a := range args[1:] {
		child, err := BuildAST(a)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

func buildPrimary(args []*mdtest.SExpr) (*ASTNode, error) {
	name, err := nameArg("primary", args, 0)
	if err != nil {
		return nil, err
	}
	n := &ASTNode{Kind: NodePrimary, Ident: name}
	for _, a := range args[1:] {
		child, err := BuildAST(a)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

func buildVarDecl(args []*mdtest.SExpr, isConst bool) (*ASTNode, error) {
	n := &ASTNode{Kind: NodeVarDecl, Const: isConst}
	var names, inits *ASTNode
	for _, a := range args {
		switch a.Head() {
		case "names":
			names = &ASTNode{Kind: NodeList}
			for _, id := range a.Args() {
				text, err := symText(id)
				if err != nil {
					return nil, fmt.Errorf("bad declared name: %w", err)
				}
				names.AddChild(&ASTNode{Kind: NodeIdent, Ident: text})
			}
		case "type", "array-type":
			typ, err := BuildAST(a)
			if err != nil {
				return nil, err
			}
			n.DeclType = typ
		case "init":
			inits = &ASTNode{Kind: NodeList}
			for _, expr := range a.Args() {
				child, err := BuildAST(expr)
				if err != nil {
					return nil, err
				}
				inits.AddChild(child)
			}
		default:
			return nil, fmt.Errorf("unknown declaration part %s", a.String())
		}
	}
	if names == nil || len(names.Children) == 0 {
		return nil, fmt.Errorf("declaration without names")
	}
	n.AddChild(names)
	if inits != nil {
		n.AddChild(inits)
	}
	return n, nil
}

func buildFunc(args []*mdtest.SExpr) (*ASTNode, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("func needs a name")
	}
	name, err := nameArg("func", args, 0)
	if err != nil {
		return nil, err
	}
	n := &ASTNode{Kind: NodeFunc, Ident: name}
	params := &ASTNode{Kind: NodeList}
	body := &ASTNode{Kind: NodeList}
	for _, a := range args[1:] {
		switch a.Head() {
		case "params":
			for _, p := range a.Args() {
				if p.Head() != "param" {
					return nil, fmt.Errorf("expected (param ...), got %s", p.String())
				}
				decl, err := buildParam(p.Args())
				if err != nil {
					return nil, err
				}
				params.AddChild(decl)
			}
		case "body":
			for _, stmt := range a.Args() {
				child, err := BuildAST(stmt)
				if err != nil {
					return nil, err
				}
				body.AddChild(child)
			}
		default:
			return nil, fmt.Errorf("unknown func part %s", a.String())
		}
	}
	n.AddChild(params)
	n.AddChild(body)
	return n, nil
}

// buildParam treats (param x (type int)) as a single-name declaration so
// parameters go through the same registration path as local variables.
func buildParam(args []*mdtest.SExpr) (*ASTNode, error) {
	name, err := nameArg("param", args, 0)
	if err != nil {
		return nil, err
	}
	names := &ASTNode{Kind: NodeList}
	names.AddChild(&ASTNode{Kind: NodeIdent, Ident: name})
	decl := &ASTNode{Kind: NodeVarDecl}
	decl.AddChild(names)
	if len(args) > 1 {
		typ, err := BuildAST(args[1])
		if err != nil {
			return nil, err
		}
		decl.DeclType = typ
	}
	return decl, nil
}

func buildCall(args []*mdtest.SExpr) (*ASTNode, error) {
	name, err := nameArg("call", args, 0)
	if err != nil {
		return nil, err
	}
	n := &ASTNode{Kind: NodeCall, Ident: name}
	rest := args[1:]
	if len(rest) > 0 && rest[0].Head() == "type" {
		typeName, err := nameArg("type", rest[0].Args(), 0)
		if err != nil {
			return nil, err
		}
		n.TypeName = typeName
		rest = rest[1:]
	}
	callArgs := &ASTNode{Kind: NodeArgs}
	for _, a := range rest {
		child, err := BuildAST(a)
		if err != nil {
			return nil, err
		}
		callArgs.AddChild(child)
	}
	n.AddChild(callArgs)
	return n, nil
}

func buildIf(args []*mdtest.SExpr) (*ASTNode, error) {
	n := &ASTNode{Kind: NodeIf}
	for _, a := range args {
		switch a.Head() {
		case "init":
			stmt, err := singlePart("init", a.Args())
			if err != nil {
				return nil, err
			}
			n.Init = stmt
		case "cond":
			expr, err := singlePart("cond", a.Args())
			if err != nil {
				return nil, err
			}
			n.Cond = expr
		case "then":
			block, err := buildBlock(a.Args())
			if err != nil {
				return nil, err
			}
			n.Body = block
		case "else":
			block, err := buildBlock(a.Args())
			if err != nil {
				return nil, err
			}
			n.Else = block
		default:
			return nil, fmt.Errorf("unknown if part %s", a.String())
		}
	}
	if n.Cond == nil || n.Body == nil {
		return nil, fmt.Errorf("if needs (cond ...) and (then ...)")
	}
	return n, nil
}

// buildFor assembles either loop form: a bare condition clause when only
// (cond ...) and (body ...) are present, a three-part clause as soon as an
// (init ...) or (post ...) appears.
func buildFor(args []*mdtest.SExpr) (*ASTNode, error) {
	n := &ASTNode{Kind: NodeFor}
	var init, cond, post *ASTNode
	for _, a := range args {
		switch a.Head() {
		case "init":
			stmt, err := singlePart("init", a.Args())
			if err != nil {
				return nil, err
			}
			init = stmt
		case "cond":
			expr, err := singlePart("cond", a.Args())
			if err != nil {
				return nil, err
			}
			cond = expr
		case "post":
			stmt, err := singlePart("post", a.Args())
			if err != nil {
				return nil, err
			}
			post = stmt
		case "body":
			block, err := buildBlock(a.Args())
			if err != nil {
				return nil, err
			}
			n.Body = block
		default:
			return nil, fmt.Errorf("unknown for part %s", a.String())
		}
	}
	if cond == nil || n.Body == nil {
		return nil, fmt.Errorf("for needs (cond ...) and (body ...)")
	}
	if init == nil && post == nil {
		n.Clause = cond
	} else {
		n.Clause = &ASTNode{Kind: NodeForClause, Init: init, Cond: cond, Post: post}
	}
	return n, nil
}

func buildBlock(args []*mdtest.SExpr) (*ASTNode, error) {
	n := &ASTNode{Kind: NodeList}
	for _, a := range args {
		child, err := BuildAST(a)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

func singlePart(tag string, args []*mdtest.SExpr) (*ASTNode, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("(%s ...) takes exactly one expression", tag)
	}
	return BuildAST(args[0])
}

func symText(e *mdtest.SExpr) (string, error) {
	switch e.Kind {
	case mdtest.SymbolExpr, mdtest.StringExpr:
		return e.Text, nil
	}
	return "", fmt.Errorf("expected a name, got %s", e.String())
}

func nameArg(tag string, args []*mdtest.SExpr, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%s: missing name argument", tag)
	}
	text, err := symText(args[i])
	if err != nil {
		return "", fmt.Errorf("%s: %w", tag, err)
	}
	return text, nil
}
