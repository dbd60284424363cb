package main

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedDestructuring is returned for declarations whose identifier
// and initializer counts differ; unpacking declarations are not supported and
// must fail loudly.
var ErrUnsupportedDestructuring = errors.New("declaration with unpacking is not supported")

// Value is what lowering one node contributes to its parent: an operand when
// the node computed something, or the node itself for passthrough kinds
// (bare identifiers, type annotations).
type Value struct {
	Operand Operand
	Node    *ASTNode
}

func operandValue(o Operand) Value { return Value{Operand: o} }
func nodeValue(n *ASTNode) Value   { return Value{Node: n} }

// Lowerer walks an AST and populates a Program with three-address code that
// preserves the source program's behavior under left-to-right eager
// evaluation.
type Lowerer struct {
	prog   *Program
	symtab *SymbolTable
	diags  *Diagnostics
}

func NewLowerer(symtab *SymbolTable) *Lowerer {
	return &Lowerer{
		prog:   NewProgram(symtab),
		symtab: symtab,
		diags:  &Diagnostics{},
	}
}

func (l *Lowerer) Program() *Program         { return l.prog }
func (l *Lowerer) Diagnostics() *Diagnostics { return l.diags }
func (l *Lowerer) SymbolTable() *SymbolTable { return l.symtab }

// LowerProgram lowers one compilation unit into a fresh Program. The
// returned diagnostics hold the non-fatal findings; a non-nil error is fatal
// and the program must be discarded.
func LowerProgram(ast *ASTNode) (*Program, *Diagnostics, error) {
	l := NewLowerer(NewSymbolTable())
	if _, err := l.lower(ast); err != nil {
		return nil, l.diags, err
	}
	return l.prog, l.diags, nil
}

// lower is the recursive dispatcher. Children are lowered right to left so
// the rightmost subexpression's instructions land in the program first, but
// results are reported left to right so positional access in the post rules
// matches source order. Changing either half of that contract changes the
// generated instruction order for multi-operand expressions with side
// effects. Statement sequences (NodeList) are the exception: they are lowered
// in source order.
func (l *Lowerer) lower(n *ASTNode) ([]Value, error) {
	if n == nil || n.lowered {
		return nil, nil
	}

	switch n.Kind {
	case NodeIf:
		return l.lowerIf(n)
	case NodeFor:
		return l.lowerFor(n)
	case NodeVarDecl:
		if err := l.preVarDecl(n); err != nil {
			return nil, err
		}
	case NodeFunc:
		if err := l.preFunc(n); err != nil {
			return nil, err
		}
	case NodeAssign:
		if err := l.preAssign(n); err != nil {
			return nil, err
		}
	}

	kids := make([][]Value, len(n.Children))
	if n.Kind == NodeList {
		// Statement sequences run in source order; the reversal below is an
		// expression-operand contract, not an execution-order one.
		for i := range n.Children {
			res, err := l.lower(n.Children[i])
			if err != nil {
				return nil, err
			}
			kids[i] = res
		}
	} else {
		for i := len(n.Children) - 1; i >= 0; i-- {
			res, err := l.lower(n.Children[i])
			if err != nil {
				return nil, err
			}
			kids[i] = res
		}
	}

	return l.post(n, kids)
}

// post emits a node's own instructions once its children are lowered and
// decides the value(s) it hands to its parent.
func (l *Lowerer) post(n *ASTNode, kids [][]Value) ([]Value, error) {
	switch n.Kind {
	case NodeBinary:
		return l.postBinary(n, kids)
	case NodeAssign:
		return l.postAssign(n, kids)
	case NodeUnary:
		return l.postUnary(n, kids)
	case NodeLiteral:
		return l.postLiteral(n, kids)
	case NodePrimary:
		return l.postPrimary(n, kids)
	case NodeIndex:
		if len(kids) > 0 {
			return kids[0], nil
		}
		return nil, nil
	case NodeVarDecl:
		return l.postVarDecl(n, kids)
	case NodeFunc:
		return l.postFunc(n)
	case NodeArgs:
		return l.postArgs(kids)
	case NodeCall:
		return l.postCall(n)
	case NodeKeyword:
		return l.postKeyword(n, kids)
	case NodeList:
		var all []Value
		for _, res := range kids {
			all = append(all, res...)
		}
		return all, nil
	default:
		// Leaf and annotation kinds carry no runtime effect of their own;
		// they propagate unchanged.
		return []Value{nodeValue(n)}, nil
	}
}

func (l *Lowerer) postBinary(n *ASTNode, kids [][]Value) ([]Value, error) {
	left, lok := operandAt(kids, 0)
	right, rok := operandAt(kids, 1)
	if !lok || !rok {
		l.diags.Report(n.Line, n.Col, "could not lower operands of %q", n.Op)
		return []Value{nodeValue(n)}, nil
	}
	temp := l.prog.NewTemp(nil)
	temp.SetType(l.exprTypeInfo(n))
	l.prog.Emit(&BinQuad{Dest: temp, Op1: left, Op2: right, Operator: n.Op})
	return []Value{operandValue(temp)}, nil
}

// preAssign collapses `x = a <op> b` with two already-simple operands into a
// single quad targeting x, the assignment-time counterpart of the
// declaration collapse. Anything less simple takes the generic temp route.
func (l *Lowerer) preAssign(n *ASTNode) error {
	if n.Op != "=" || len(n.Children) != 2 {
		return nil
	}
	lhs, rhs := n.Children[0], n.Children[1]
	if rhs.Kind != NodeBinary || len(rhs.Children) != 2 {
		return nil
	}
	if !isSimpleOperand(rhs.Children[0]) || !isSimpleOperand(rhs.Children[1]) {
		return nil
	}
	if lhs.Kind != NodePrimary || len(lhs.Children) != 0 {
		return nil
	}
	sym := l.symtab.Lookup(lhs.Ident)
	if sym == nil {
		// Leave the undeclared-identifier diagnostic to the generic path.
		return nil
	}
	if !l.resolvable(rhs.Children[0]) || !l.resolvable(rhs.Children[1]) {
		return nil
	}
	dest := NewActualVar(sym)
	op1, _ := l.simpleOperand(rhs.Children[0])
	op2, _ := l.simpleOperand(rhs.Children[1])
	if err := l.forgetValue(dest); err != nil {
		return err
	}
	l.prog.Emit(&BinQuad{Dest: dest, Op1: op1, Op2: op2, Operator: rhs.Op})
	rhs.lowered = true
	lhs.lowered = true
	n.syms = append(n.syms[:0], dest.Symbol())
	return nil
}

func (l *Lowerer) postAssign(n *ASTNode, kids [][]Value) ([]Value, error) {
	// Collapsed by preAssign: the left-hand operand is the result.
	if len(n.Children) == 2 && n.Children[1].lowered && len(n.syms) > 0 {
		return []Value{operandValue(NewActualVar(n.syms[0]))}, nil
	}
	left, lok := operandAt(kids, 0)
	right, rok := operandAt(kids, 1)
	if !lok || !rok {
		l.diags.Report(n.Line, n.Col, "could not lower operands of %q", n.Op)
		return []Value{nodeValue(n)}, nil
	}
	if base, isCompound := strings.CutSuffix(n.Op, "="); isCompound && base != "" {
		// Compound form: apply the base operator straight into the left
		// operand, no temporary.
		if err := l.forgetValue(left); err != nil {
			return nil, err
		}
		l.prog.Emit(&BinQuad{Dest: left, Op1: left, Op2: right, Operator: base})
		return []Value{operandValue(left)}, nil
	}
	if err := l.propagateValue(left, right); err != nil {
		return nil, err
	}
	l.prog.Emit(&AssignQuad{Dest: left, Src: right})
	return []Value{operandValue(left)}, nil
}

func (l *Lowerer) postUnary(n *ASTNode, kids [][]Value) ([]Value, error) {
	operand, ok := operandAt(kids, 0)
	if !ok {
		l.diags.Report(n.Line, n.Col, "could not lower operand of %q", n.Op)
		return []Value{nodeValue(n)}, nil
	}
	if n.Op == "++" || n.Op == "--" {
		// In-place update, no temporary: x = x + 1.
		if err := l.forgetValue(operand); err != nil {
			return nil, err
		}
		l.prog.Emit(&BinQuad{
			Dest:     operand,
			Op1:      operand,
			Op2:      Lit{Type: "int", Val: 1},
			Operator: n.Op[:1],
		})
		return []Value{operandValue(operand)}, nil
	}
	temp := l.prog.NewTemp(nil)
	temp.SetType(l.exprTypeInfo(n))
	l.prog.Emit(&DoubleQuad{Dest: temp, Operator: n.Op, Src: operand})
	return []Value{operandValue(temp)}, nil
}

func (l *Lowerer) postLiteral(n *ASTNode, kids [][]Value) ([]Value, error) {
	if len(n.Children) == 0 {
		return []Value{operandValue(Lit{Type: n.LitType, Val: n.LitValue})}, nil
	}
	// Composite literal: when the first child is an array type, render the
	// remaining lowered elements as a brace-delimited aggregate; otherwise
	// pass the representative value through unchanged.
	if len(kids) > 1 {
		if len(kids[0]) > 0 && kids[0][0].Node != nil && kids[0][0].Node.Kind == NodeArrayType {
			names := make([]string, 0, len(kids[1]))
			for _, v := range kids[1] {
				names = append(names, valueName(v))
			}
			agg := "{" + strings.Join(names, ", ") + "}"
			return []Value{operandValue(Lit{Type: "array", Val: agg})}, nil
		}
		if len(kids[1]) > 0 {
			return kids[1][:1], nil
		}
	}
	if len(kids[0]) > 0 {
		return kids[0][:1], nil
	}
	return nil, nil
}

func (l *Lowerer) postPrimary(n *ASTNode, kids [][]Value) ([]Value, error) {
	if len(n.Children) == 0 {
		av, ok := l.resolvePrimary(n)
		if !ok {
			return nil, nil
		}
		return []Value{operandValue(av)}, nil
	}
	if len(n.Children) == 1 && n.Children[0].Kind == NodeIndex {
		return l.lowerIndexedAccess(n, kids)
	}
	// Other primary-expression forms (selectors, slices) are not lowered
	// yet; propagate the node so parents can degrade gracefully.
	return []Value{nodeValue(n)}, nil
}

// lowerIndexedAccess emits the fixed four-quad sequence for arr[i]:
//
//	t1 = base(arr)
//	t2 = i * width
//	t3 = t1 + t2
//	t4 = arr [] t3
//
// where width is the element width of arr's declared array type and t4 is
// typed as the element type.
func (l *Lowerer) lowerIndexedAccess(n *ASTNode, kids [][]Value) ([]Value, error) {
	sym := l.symtab.Lookup(n.Ident)
	if sym == nil {
		l.diags.Report(n.Line, n.Col, "skipping undeclared identifier %q", n.Ident)
		return nil, nil
	}

	base := l.prog.NewTemp(nil)
	base.SetType(&TypeInfo{Name: "int"})
	l.prog.Emit(&AssignQuad{Dest: base, Src: Lit{Type: "addr", Val: "base(" + n.Ident + ")"}})

	if !sym.Type.IsArray() {
		l.diags.Report(n.Line, n.Col, "%q is not indexable: no array type declared", n.Ident)
		return []Value{nodeValue(n)}, nil
	}
	index, ok := operandAt(kids, 0)
	if !ok {
		l.diags.Report(n.Line, n.Col, "could not lower index expression of %q", n.Ident)
		return []Value{nodeValue(n)}, nil
	}

	offset := l.prog.NewTemp(nil)
	offset.SetType(&TypeInfo{Name: "int"})
	l.prog.Emit(&BinQuad{
		Dest:     offset,
		Op1:      index,
		Op2:      Lit{Type: "int", Val: sym.Type.EltSize},
		Operator: "*",
	})

	addr := l.prog.NewTemp(nil)
	addr.SetType(&TypeInfo{Name: "int"})
	l.prog.Emit(&BinQuad{Dest: addr, Op1: base, Op2: offset, Operator: "+"})

	result := l.prog.NewTemp(nil)
	result.SetType(&TypeInfo{Name: sym.Type.Elt})
	l.prog.Emit(&BinQuad{
		Dest:     result,
		Op1:      Lit{Type: "name", Val: n.Ident},
		Op2:      addr,
		Operator: "[]",
	})

	return []Value{operandValue(result)}, nil
}

// preVarDecl registers the declared symbols (tree construction is side
// effect free; registration is lowering's job) and then collapses a simple
// binary initializer into one quad so the common `var x = a + b` shape does
// not waste a temporary.
func (l *Lowerer) preVarDecl(n *ASTNode) error {
	if err := l.registerDecl(n); err != nil {
		return err
	}

	exprs := declExprs(n)
	if exprs == nil || len(exprs.Children) != 1 || len(n.syms) != 1 || n.syms[0] == nil {
		return nil
	}
	op := exprs.Children[0]
	if op.Kind != NodeBinary || len(op.Children) != 2 {
		return nil
	}
	if !isSimpleOperand(op.Children[0]) || !isSimpleOperand(op.Children[1]) {
		return nil
	}
	if !l.resolvable(op.Children[0]) || !l.resolvable(op.Children[1]) {
		return nil
	}
	op1, _ := l.simpleOperand(op.Children[0])
	op2, _ := l.simpleOperand(op.Children[1])
	l.prog.Emit(&BinQuad{
		Dest:     NewActualVar(n.syms[0]),
		Op1:      op1,
		Op2:      op2,
		Operator: op.Op,
	})
	op.lowered = true
	return nil
}

// registerDecl declares a NodeVarDecl's identifiers in the current scope.
// Shared by variable declarations and function parameters.
func (l *Lowerer) registerDecl(n *ASTNode) error {
	idents := n.Children[0]
	exprs := declExprs(n)
	if exprs != nil && len(exprs.Children) > 0 && len(exprs.Children) != len(idents.Children) {
		return fmt.Errorf("line %d: %d names = %d values: %w",
			n.Line, len(idents.Children), len(exprs.Children), ErrUnsupportedDestructuring)
	}
	typ := typeInfoFromNode(n.DeclType)
	n.syms = n.syms[:0]
	for _, id := range idents.Children {
		sym, err := l.symtab.Declare(id.Ident, id.Line, id.Col, typ, n.Const, nil)
		if err != nil {
			l.diags.Report(id.Line, id.Col, "%v", err)
			sym = l.symtab.Lookup(id.Ident)
		}
		n.syms = append(n.syms, sym)
	}
	return nil
}

func (l *Lowerer) postVarDecl(n *ASTNode, kids [][]Value) ([]Value, error) {
	exprs := declExprs(n)
	if exprs == nil || len(kids) < 2 {
		return []Value{nodeValue(n)}, nil
	}
	// Pairwise initializer assignment. A collapsed initializer already wrote
	// the symbol and contributes no value here.
	vals := kids[1]
	for i, sym := range n.syms {
		if i >= len(vals) || sym == nil || vals[i].Operand == nil {
			continue
		}
		src := vals[i].Operand
		l.prog.Emit(&AssignQuad{Dest: NewActualVar(sym), Src: src})
		if src.IsConst() {
			// Declaration initialization writes the symbol directly; the
			// operand-model constancy guard only applies to reassignment.
			if v, err := src.Value(); err == nil {
				sym.ConstFlag = true
				sym.Value = v
			}
		}
	}
	return []Value{nodeValue(n)}, nil
}

func (l *Lowerer) preFunc(n *ASTNode) error {
	if _, err := l.symtab.Declare(n.Ident, n.Line, n.Col, &TypeInfo{Name: "FUNCTION"}, true, n); err != nil {
		l.diags.Report(n.Line, n.Col, "%v", err)
	}

	l.symtab.EnterScope() // parameters
	if len(n.Children) > 0 && n.Children[0] != nil && n.Children[0].Kind == NodeList {
		// Parameters must be visible before the body is lowered; the
		// right-to-left traversal would reach them last, so register them
		// here and mark the list consumed.
		params := n.Children[0]
		for _, p := range params.Children {
			if p.Kind != NodeVarDecl {
				continue
			}
			if err := l.registerDecl(p); err != nil {
				l.symtab.LeaveScope()
				return err
			}
		}
		params.lowered = true
	}
	l.symtab.EnterScope() // body

	if _, err := l.prog.DefineLabel(FuncLabel(mangleFuncName(n.Ident))); err != nil {
		l.symtab.LeaveScope()
		l.symtab.LeaveScope()
		return err
	}
	return nil
}

func (l *Lowerer) postFunc(n *ASTNode) ([]Value, error) {
	_, err := l.prog.DefineLabel(FuncEndLabel(mangleFuncName(n.Ident)))
	l.symtab.LeaveScope()
	l.symtab.LeaveScope()
	if err != nil {
		return nil, err
	}
	return []Value{nodeValue(n)}, nil
}

// postArgs flattens the (possibly nested) per-child results into one flat
// sequence and emits one push per value, left to right.
func (l *Lowerer) postArgs(kids [][]Value) ([]Value, error) {
	var pushed []Value
	for _, res := range kids {
		for _, v := range res {
			if v.Operand == nil {
				continue
			}
			l.prog.Emit(&DoubleQuad{Operator: "push", Src: v.Operand})
			pushed = append(pushed, v)
		}
	}
	return pushed, nil
}

func (l *Lowerer) postCall(n *ASTNode) ([]Value, error) {
	temp := l.prog.NewTemp(nil)
	if n.TypeName != "" {
		temp.SetType(&TypeInfo{Name: n.TypeName})
	}
	if _, err := l.prog.EmitCall(FuncLabel(mangleFuncName(n.Ident)), temp); err != nil {
		return nil, err
	}
	return []Value{operandValue(temp)}, nil
}

func (l *Lowerer) postKeyword(n *ASTNode, kids [][]Value) ([]Value, error) {
	switch n.Keyword {
	case "return":
		if v, ok := operandAt(kids, 0); ok {
			l.prog.Emit(&DoubleQuad{Operator: "return", Src: v})
		} else {
			l.prog.Emit(&SingleQuad{Operator: "return"})
		}
	case "break", "continue":
		if !l.prog.InLoop() {
			l.diags.Report(n.Line, n.Col, "keyword %q not allowed outside a loop", n.Keyword)
			break
		}
		loop := l.prog.CurrentLoop()
		target := loop.End
		if n.Keyword == "continue" {
			target = loop.Start
		}
		if _, err := l.prog.EmitGoto(target); err != nil {
			return nil, err
		}
	default:
		l.diags.Report(n.Line, n.Col, "keyword %q not implemented", n.Keyword)
	}
	return []Value{nodeValue(n)}, nil
}

// lowerIf linearizes a conditional. Self-driven: the clause parts are named
// fields, never generic children, so this rule controls traversal order and
// scoping end to end.
func (l *Lowerer) lowerIf(n *ASTNode) ([]Value, error) {
	depth := l.symtab.Depth()
	defer l.restoreScopes(depth)

	l.symtab.EnterScope()

	// `if init; cond {}` runs the init statement before anything else.
	if n.Init != nil {
		if _, err := l.lower(n.Init); err != nil {
			return nil, err
		}
	}

	condVals, err := l.lower(n.Cond)
	if err != nil {
		return nil, err
	}
	cond, ok := firstOperand(condVals)
	if !ok {
		l.diags.Report(n.Line, n.Col, "could not lower if condition")
		l.symtab.LeaveScope()
		return nil, nil
	}

	l.symtab.EnterScope()

	trueLabel := l.prog.FreshLabelName("if_true")
	falseLabel := l.prog.FreshLabelName("if_false")
	l.prog.Emit(&CondGotoQuad{Cond: cond, True: trueLabel, False: falseLabel})
	if _, err := l.prog.DefineLabel(trueLabel); err != nil {
		return nil, err
	}
	if _, err := l.lower(n.Body); err != nil {
		return nil, err
	}
	if _, err := l.prog.DefineLabel(falseLabel); err != nil {
		return nil, err
	}

	l.symtab.LeaveScope()

	if n.Else != nil {
		l.symtab.EnterScope()
		if _, err := l.lower(n.Else); err != nil {
			return nil, err
		}
		l.symtab.LeaveScope()
	}

	l.symtab.LeaveScope()
	return nil, nil
}

// lowerFor linearizes both loop forms. The emitted shape is
//
//	LABEL start
//	<condition quads>
//	if cond goto true else goto end
//	LABEL true
//	<body quads>          (three-part form: then the post statement)
//	goto start
//	LABEL end
//
// with (start, end) on the loop stack while the body is lowered.
func (l *Lowerer) lowerFor(n *ASTNode) ([]Value, error) {
	depth := l.symtab.Depth()
	defer l.restoreScopes(depth)

	l.symtab.EnterScope()

	switch l.InferExprTypename(n.Clause) {
	case "bool":
		if err := l.lowerLoop(n.Clause, nil, n.Body, "for_simple"); err != nil {
			return nil, err
		}
	case "forclause":
		clause := n.Clause
		if clause.Init != nil {
			if _, err := l.lower(clause.Init); err != nil {
				return nil, err
			}
		}
		if err := l.lowerLoop(clause.Cond, clause.Post, n.Body, "for_cmpd"); err != nil {
			return nil, err
		}
	default:
		l.diags.Report(n.Line, n.Col, "could not determine for clause type")
	}

	l.symtab.LeaveScope()
	return nil, nil
}

// lowerLoop emits the shared start/condition/branch/body/backjump pattern.
func (l *Lowerer) lowerLoop(cond, post, body *ASTNode, prefix string) error {
	startLabel := l.prog.FreshLabelName(prefix + "_start")
	if _, err := l.prog.DefineLabel(startLabel); err != nil {
		return err
	}

	condVals, err := l.lower(cond)
	if err != nil {
		return err
	}
	condOp, ok := firstOperand(condVals)
	if !ok {
		l.diags.Report(cond.Line, cond.Col, "could not lower loop condition")
		return nil
	}

	trueLabel := l.prog.FreshLabelName(prefix + "_true")
	endLabel := l.prog.FreshLabelName(prefix + "_end")
	// break jumps forward to the end label before it is defined; register it
	// as a forward target so the checked goto accepts it.
	l.prog.registerLabel(endLabel, -1)

	l.symtab.EnterScope()

	l.prog.Emit(&CondGotoQuad{Cond: condOp, True: trueLabel, False: endLabel})
	if _, err := l.prog.DefineLabel(trueLabel); err != nil {
		return err
	}

	l.prog.EnterLoop(startLabel, endLabel)

	if body != nil {
		if _, err := l.lower(body); err != nil {
			l.prog.ExitLoop()
			return err
		}
	}
	if post != nil {
		if _, err := l.lower(post); err != nil {
			l.prog.ExitLoop()
			return err
		}
	}
	if _, err := l.prog.EmitGoto(startLabel); err != nil {
		l.prog.ExitLoop()
		return err
	}
	if _, err := l.prog.DefineLabel(endLabel); err != nil {
		l.prog.ExitLoop()
		return err
	}

	l.prog.ExitLoop()
	l.symtab.LeaveScope()
	return nil
}

// --- helpers ---

// resolvePrimary wraps the declaration behind a bare identifier primary.
// Undeclared names are a diagnostic, not a fatal error: lowering continues
// best-effort.
func (l *Lowerer) resolvePrimary(n *ASTNode) (*ActualVar, bool) {
	sym := l.symtab.Lookup(n.Ident)
	if sym == nil {
		l.diags.Report(n.Line, n.Col, "skipping undeclared identifier %q", n.Ident)
		return nil, false
	}
	return NewActualVar(sym), true
}

// isSimpleOperand reports whether a node can be turned into an operand
// without emitting any instructions: a scalar literal or a bare identifier.
func isSimpleOperand(n *ASTNode) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case NodeLiteral:
		return len(n.Children) == 0
	case NodePrimary:
		return len(n.Children) == 0
	}
	return false
}

// resolvable reports whether a simple node will convert to an operand. An
// unresolvable identifier stays unreported here; the generic path lowers the
// node normally and reports the diagnostic once.
func (l *Lowerer) resolvable(n *ASTNode) bool {
	if n.Kind == NodePrimary {
		return l.symtab.Lookup(n.Ident) != nil
	}
	return true
}

// simpleOperand converts a simple node to an operand, marking it consumed.
func (l *Lowerer) simpleOperand(n *ASTNode) (Operand, bool) {
	switch n.Kind {
	case NodeLiteral:
		n.lowered = true
		return Lit{Type: n.LitType, Val: n.LitValue}, true
	case NodePrimary:
		sym := l.symtab.Lookup(n.Ident)
		if sym == nil {
			return nil, false
		}
		n.lowered = true
		return NewActualVar(sym), true
	}
	return nil, false
}

// propagateValue records a plain assignment in the operand model: a constant
// right side makes the destination constant-valued; anything else clears the
// tracked value. Writing through a declared constant is fatal.
func (l *Lowerer) propagateValue(dest, src Operand) error {
	if src.IsConst() {
		v, err := src.Value()
		if err != nil {
			return err
		}
		return dest.SetValue(v)
	}
	return l.forgetValue(dest)
}

// forgetValue clears the tracked value of a mutated operand, rejecting
// mutation of declared constants.
func (l *Lowerer) forgetValue(o Operand) error {
	if av, ok := o.(*ActualVar); ok {
		if av.Symbol().Const {
			return fmt.Errorf("%s: %w", av.Name(), ErrImmutableConstant)
		}
		av.Deconstantize()
	}
	return nil
}

func (l *Lowerer) exprTypeInfo(n *ASTNode) *TypeInfo {
	name := l.InferExprTypename(n)
	if name == "" && len(n.Children) > 0 {
		name = l.InferExprTypename(n.Children[0])
	}
	if name == "" {
		return nil
	}
	return &TypeInfo{Name: name}
}

func declExprs(n *ASTNode) *ASTNode {
	if len(n.Children) > 1 && n.Children[1] != nil && n.Children[1].Kind == NodeList {
		return n.Children[1]
	}
	return nil
}

func typeInfoFromNode(n *ASTNode) *TypeInfo {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case NodeArrayType:
		return &TypeInfo{Name: "array", Elt: n.TypeName, EltSize: n.EltSize}
	case NodeType:
		return &TypeInfo{Name: n.TypeName}
	}
	return nil
}

func mangleFuncName(name string) string {
	return strings.ReplaceAll(name, ".", "__")
}

func operandAt(kids [][]Value, i int) (Operand, bool) {
	if i >= len(kids) || len(kids[i]) == 0 || kids[i][0].Operand == nil {
		return nil, false
	}
	return kids[i][0].Operand, true
}

func firstOperand(vals []Value) (Operand, bool) {
	for _, v := range vals {
		if v.Operand != nil {
			return v.Operand, true
		}
	}
	return nil, false
}

func valueName(v Value) string {
	if v.Operand != nil {
		return v.Operand.Name()
	}
	if v.Node != nil {
		return ToSExpr(v.Node)
	}
	return "<nil>"
}

func (l *Lowerer) restoreScopes(depth int) {
	for l.symtab.Depth() > depth {
		l.symtab.LeaveScope()
	}
}
