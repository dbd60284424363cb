package main

import "fmt"

// Quad is one three-address instruction. The instruction set is deliberately
// small (seven special shapes plus the generic binary quad) so later stages
// can pattern-match exhaustively.
//
// Every quad records the symbol-table scope that was active when it was
// emitted; the program container stamps it in Emit.
type Quad interface {
	fmt.Stringer
	ScopeID() int
	setScope(id int)
	isQuad()
}

// quadScope carries the emission-time scope id common to all shapes.
type quadScope struct {
	Scope int
}

func (q *quadScope) ScopeID() int    { return q.Scope }
func (q *quadScope) setScope(id int) { q.Scope = id }

// BinQuad is the generic shape: Dest = Op1 Operator Op2.
type BinQuad struct {
	quadScope
	Dest     Operand
	Op1, Op2 Operand
	Operator string
}

func (q *BinQuad) isQuad() {}

func (q *BinQuad) String() string {
	return fmt.Sprintf("%s = %s %s %s", q.Dest.Name(), q.Op1.Name(), q.Operator, q.Op2.Name())
}

// AssignQuad copies a single value: Dest = Src.
type AssignQuad struct {
	quadScope
	Dest Operand
	Src  Operand
}

func (q *AssignQuad) isQuad() {}

func (q *AssignQuad) String() string {
	return fmt.Sprintf("%s = %s", q.Dest.Name(), q.Src.Name())
}

// LabelQuad names a position in the instruction list. Index is the position
// the label was defined at (-1 for labels registered without a definition,
// such as the built-in function labels).
type LabelQuad struct {
	quadScope
	Name  string
	Index int
}

func (q *LabelQuad) isQuad() {}

func (q *LabelQuad) String() string {
	return fmt.Sprintf("LABEL %s:", q.Name)
}

// GotoQuad is an unconditional jump.
type GotoQuad struct {
	quadScope
	Label string
}

func (q *GotoQuad) isQuad() {}

func (q *GotoQuad) String() string {
	return fmt.Sprintf("goto %s", q.Label)
}

// CondGotoQuad jumps to True when Cond is truthy, otherwise to False. An
// empty False means fall through.
type CondGotoQuad struct {
	quadScope
	Cond  Operand
	True  string
	False string
}

func (q *CondGotoQuad) isQuad() {}

func (q *CondGotoQuad) String() string {
	if q.False == "" {
		return fmt.Sprintf("if %s goto %s", q.Cond.Name(), q.True)
	}
	return fmt.Sprintf("if %s goto %s else goto %s", q.Cond.Name(), q.True, q.False)
}

// CallQuad transfers control to a function label: Dest = call Label.
type CallQuad struct {
	quadScope
	Dest  Operand
	Label string
}

func (q *CallQuad) isQuad() {}

func (q *CallQuad) String() string {
	return fmt.Sprintf("%s = call %s", q.Dest.Name(), q.Label)
}

// SingleQuad is a bare keyword instruction, e.g. a return with no value.
type SingleQuad struct {
	quadScope
	Operator string
}

func (q *SingleQuad) isQuad() {}

func (q *SingleQuad) String() string { return q.Operator }

// DoubleQuad is the unary shape: Dest = Operator Src, or Operator Src when
// there is no destination (push x, return x).
type DoubleQuad struct {
	quadScope
	Dest     Operand // may be nil
	Operator string
	Src      Operand
}

func (q *DoubleQuad) isQuad() {}

func (q *DoubleQuad) String() string {
	if q.Dest == nil {
		return fmt.Sprintf("%s %s", q.Operator, q.Src.Name())
	}
	return fmt.Sprintf("%s = %s %s", q.Dest.Name(), q.Operator, q.Src.Name())
}
