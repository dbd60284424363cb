package main

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConstant is returned when Value is read from an operand that does
	// not currently hold a known constant value.
	ErrNotConstant = errors.New("operand is not a constant and has no value")
	// ErrImmutableConstant is returned when SetValue targets a source-level
	// declared constant.
	ErrImmutableConstant = errors.New("operand is a declared constant and cannot be changed")
)

// Operand is anything that can sit in a quad's dest/op1/op2 slot: a compiler
// temporary, a reference to a declared variable, or a literal.
type Operand interface {
	Name() string
	IsConst() bool
	Value() (any, error)
	SetValue(v any) error
}

// OperandKey identifies a variable-backed operand by (name, scope). Two
// operands with equal keys refer to the same storage regardless of whether
// one is a Temp handle and the other an ActualVar handle.
type OperandKey struct {
	Name    string
	ScopeID int
}

// Temp is a compiler-minted temporary (t1, t2, ...), backed by a fresh
// symbol-table entry created when the program container allocates it.
type Temp struct {
	name   string
	symbol *SymbolInfo
}

func newTemp(id int, symtab *SymbolTable, value any) *Temp {
	t := &Temp{name: fmt.Sprintf("t%d", id)}
	t.symbol = symtab.AddIfNotExists(t.name)
	t.symbol.ConstFlag = value != nil
	t.symbol.Value = value
	return t
}

func (t *Temp) Name() string  { return t.name }
func (t *Temp) IsConst() bool { return t.symbol.ConstFlag }

func (t *Temp) Value() (any, error) {
	if !t.IsConst() {
		return nil, fmt.Errorf("%s: %w", t.name, ErrNotConstant)
	}
	return t.symbol.Value, nil
}

func (t *Temp) SetValue(v any) error {
	t.symbol.ConstFlag = true
	t.symbol.Value = v
	return nil
}

// Type returns the inferred type name of the temporary, if any.
func (t *Temp) Type() string {
	if t.symbol.Type == nil {
		return ""
	}
	return t.symbol.Type.Name
}

// SetType records the inferred type of the temporary.
func (t *Temp) SetType(typ *TypeInfo) { t.symbol.Type = typ }

func (t *Temp) Key() OperandKey {
	return OperandKey{Name: t.symbol.Name, ScopeID: t.symbol.ScopeID}
}

func (t *Temp) String() string { return t.name }

// ActualVar wraps the symbol-table entry of a source-declared name.
type ActualVar struct {
	symbol *SymbolInfo
}

func NewActualVar(symbol *SymbolInfo) *ActualVar {
	return &ActualVar{symbol: symbol}
}

func (v *ActualVar) Symbol() *SymbolInfo { return v.symbol }
func (v *ActualVar) Name() string        { return v.symbol.Name }
func (v *ActualVar) IsConst() bool       { return v.symbol.ConstFlag }

func (v *ActualVar) Value() (any, error) {
	if !v.IsConst() {
		return nil, fmt.Errorf("%s: %w", v.symbol.Name, ErrNotConstant)
	}
	return v.symbol.Value, nil
}

func (v *ActualVar) SetValue(val any) error {
	if v.symbol.Const {
		return fmt.Errorf("%s: %w", v.symbol.Name, ErrImmutableConstant)
	}
	v.symbol.ConstFlag = true
	v.symbol.Value = val
	return nil
}

// Deconstantize forgets the tracked value of a non-constant variable, e.g.
// after it is assigned something lowering cannot evaluate.
func (v *ActualVar) Deconstantize() { v.symbol.ConstFlag = false }

func (v *ActualVar) Key() OperandKey {
	return OperandKey{Name: v.symbol.Name, ScopeID: v.symbol.ScopeID}
}

func (v *ActualVar) String() string { return v.symbol.Name }

// Lit is a literal (or symbolic) operand. The lowering rules feed constant
// values straight into quads without allocating storage for them.
type Lit struct {
	Type string
	Val  any
}

func (l Lit) Name() string         { return litString(l.Val) }
func (l Lit) IsConst() bool        { return true }
func (l Lit) Value() (any, error)  { return l.Val, nil }
func (l Lit) SetValue(v any) error { return fmt.Errorf("%s: %w", l.Name(), ErrImmutableConstant) }
func (l Lit) String() string       { return l.Name() }

func litString(v any) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// SameOperand reports whether two operands refer to the same variable storage
// (equal (name, scope) keys). Literals never compare equal to anything.
func SameOperand(a, b Operand) bool {
	ka, ok := operandKey(a)
	if !ok {
		return false
	}
	kb, ok := operandKey(b)
	if !ok {
		return false
	}
	return ka == kb
}

func operandKey(o Operand) (OperandKey, bool) {
	switch v := o.(type) {
	case *Temp:
		return v.Key(), true
	case *ActualVar:
		return v.Key(), true
	default:
		return OperandKey{}, false
	}
}
