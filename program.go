package main

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateLabel is returned when a label name is defined twice in one
	// program.
	ErrDuplicateLabel = errors.New("label already exists")
	// ErrUnknownLabel is returned when a goto or call targets a label that
	// was never defined.
	ErrUnknownLabel = errors.New("label does not exist")
)

// builtinFuncs are callable without a prior declaration; their labels are
// registered at construction time.
var builtinFuncs = []string{"fmt__Println", "fmt__Printf", "fmt__Print"}

// Program owns the emitted instruction sequence for one compilation unit:
// the ordered quad list, the label namespace, temporary allocation, and the
// stack of lexically enclosing loops. It is mutated throughout one lowering
// pass and read-only afterwards.
type Program struct {
	Code []Quad

	symtab            *SymbolTable
	labels            map[string]*LabelQuad
	labelPrefixCounts map[string]int
	tempCount         int
	loopStack         []LoopLabels
}

// LoopLabels is one active-loop record: where continue and break jump to.
type LoopLabels struct {
	Start string
	End   string
}

func NewProgram(symtab *SymbolTable) *Program {
	p := &Program{
		symtab:            symtab,
		labels:            make(map[string]*LabelQuad),
		labelPrefixCounts: make(map[string]int),
	}
	for _, fn := range builtinFuncs {
		p.registerLabel(FuncLabel(fn), -1)
	}
	return p
}

// FuncLabel returns the entry label for a function name.
func FuncLabel(fnName string) string {
	return "FUNCTION_" + fnName
}

// FuncEndLabel returns the end label for a function name.
func FuncEndLabel(fnName string) string {
	return "FUNCTION_END_" + fnName
}

// NewTemp allocates the next temporary (t1, t2, ...), registering a backing
// symbol in the current scope. A non-nil value marks the temp constant.
func (p *Program) NewTemp(value any) *Temp {
	p.tempCount++
	return newTemp(p.tempCount, p.symtab, value)
}

// Emit appends a quad, stamping it with the active scope id.
func (p *Program) Emit(q Quad) {
	q.setScope(p.symtab.CurrentScopeID())
	p.Code = append(p.Code, q)
}

// registerLabel adds a label to the namespace without emitting it.
func (p *Program) registerLabel(name string, index int) *LabelQuad {
	label := &LabelQuad{Name: name, Index: index}
	p.labels[name] = label
	return label
}

// DefineLabel defines a named label at the current position and emits it.
// A name registered as a forward target (index -1) may be defined exactly
// once; defining an already-defined label is an error.
func (p *Program) DefineLabel(name string) (*LabelQuad, error) {
	if existing, ok := p.labels[name]; ok {
		if existing.Index >= 0 {
			return nil, fmt.Errorf("%q: %w", name, ErrDuplicateLabel)
		}
		existing.Index = len(p.Code)
		p.Emit(existing)
		return existing, nil
	}
	label := p.registerLabel(name, len(p.Code))
	p.Emit(label)
	return label, nil
}

// FreshLabelName returns the next auto-generated name for a prefix:
// prefix_1, prefix_2, ... The caller must still define it with DefineLabel.
func (p *Program) FreshLabelName(prefix string) string {
	p.labelPrefixCounts[prefix]++
	return fmt.Sprintf("%s_%d", prefix, p.labelPrefixCounts[prefix])
}

// Label returns the label registered under name, or nil.
func (p *Program) Label(name string) *LabelQuad {
	return p.labels[name]
}

// EmitGoto appends an unconditional jump to an already-defined label.
func (p *Program) EmitGoto(name string) (*GotoQuad, error) {
	if _, ok := p.labels[name]; !ok {
		return nil, fmt.Errorf("goto %q: %w", name, ErrUnknownLabel)
	}
	q := &GotoQuad{Label: name}
	p.Emit(q)
	return q, nil
}

// EmitCall appends a call to an already-defined function label.
func (p *Program) EmitCall(name string, dest Operand) (*CallQuad, error) {
	if _, ok := p.labels[name]; !ok {
		return nil, fmt.Errorf("call %q: %w", name, ErrUnknownLabel)
	}
	q := &CallQuad{Dest: dest, Label: name}
	p.Emit(q)
	return q, nil
}

// Symbols returns the entries still reachable after lowering, which for a
// balanced pass is the global scope.
func (p *Program) Symbols() []*SymbolInfo {
	return p.symtab.Symbols()
}

// EnterLoop pushes a loop's (start, end) labels; break/continue lowering
// consults the top of this stack.
func (p *Program) EnterLoop(start, end string) {
	p.loopStack = append(p.loopStack, LoopLabels{Start: start, End: end})
}

func (p *Program) ExitLoop() {
	p.loopStack = p.loopStack[:len(p.loopStack)-1]
}

func (p *Program) InLoop() bool {
	return len(p.loopStack) > 0
}

// CurrentLoop returns the innermost enclosing loop. Callers must check
// InLoop first.
func (p *Program) CurrentLoop() LoopLabels {
	return p.loopStack[len(p.loopStack)-1]
}
