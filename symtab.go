package main

import (
	"fmt"
	"sort"
)

// TypeInfo describes the declared type of a symbol. Arrays carry the element
// type and the element width that the indexed-access lowering multiplies
// indexes by.
type TypeInfo struct {
	Name    string // "int", "float64", "bool", "string", "array", "FUNCTION"
	Elt     string // element type name, arrays only
	EltSize int    // element width in bytes, arrays only
}

func (ti *TypeInfo) IsArray() bool {
	return ti != nil && ti.Name == "array"
}

// SymbolInfo is one symbol-table entry.
//
// Const records whether the source declared the name as a constant (and so
// its value may never change); ConstFlag tracks whether the entry currently
// holds a known value, which lowering toggles freely for non-constants.
type SymbolInfo struct {
	Name      string
	ScopeID   int
	Line, Col int
	Type      *TypeInfo
	Const     bool
	ConstFlag bool
	Value     any
}

type scope struct {
	id      int
	symbols map[string]*SymbolInfo
}

// SymbolTable is a stack of lexical scopes with monotonically increasing
// scope ids. Leaving a scope discards its entries; ids are never reused, so a
// quad's recorded scope id stays meaningful after the scope is gone.
type SymbolTable struct {
	scopes    []*scope
	nextScope int
}

func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{}
	st.EnterScope() // global scope, id 1
	return st
}

func (st *SymbolTable) EnterScope() {
	st.nextScope++
	st.scopes = append(st.scopes, &scope{
		id:      st.nextScope,
		symbols: make(map[string]*SymbolInfo),
	})
}

func (st *SymbolTable) LeaveScope() {
	if len(st.scopes) <= 1 {
		panic("symtab: leave on global scope")
	}
	st.scopes = st.scopes[:len(st.scopes)-1]
}

// CurrentScopeID returns the id of the innermost open scope.
func (st *SymbolTable) CurrentScopeID() int {
	return st.scopes[len(st.scopes)-1].id
}

// Depth returns the number of open scopes. Lowering must leave it unchanged.
func (st *SymbolTable) Depth() int {
	return len(st.scopes)
}

// Declare registers a new symbol in the current scope. Redeclaring a name in
// the same scope is an error; shadowing an outer scope is not.
func (st *SymbolTable) Declare(name string, line, col int, typ *TypeInfo, isConst bool, value any) (*SymbolInfo, error) {
	top := st.scopes[len(st.scopes)-1]
	if _, ok := top.symbols[name]; ok {
		return nil, fmt.Errorf("symbol %q already declared in this scope", name)
	}
	sym := &SymbolInfo{
		Name:      name,
		ScopeID:   top.id,
		Line:      line,
		Col:       col,
		Type:      typ,
		Const:     isConst,
		ConstFlag: isConst,
		Value:     value,
	}
	top.symbols[name] = sym
	return sym, nil
}

// AddIfNotExists returns the entry for name in the current scope, creating a
// blank one if needed. Used for compiler temporaries.
func (st *SymbolTable) AddIfNotExists(name string) *SymbolInfo {
	top := st.scopes[len(st.scopes)-1]
	if sym, ok := top.symbols[name]; ok {
		return sym
	}
	sym := &SymbolInfo{Name: name, ScopeID: top.id}
	top.symbols[name] = sym
	return sym
}

// Symbols returns the entries of every still-open scope, outermost first,
// each scope's entries sorted by name.
func (st *SymbolTable) Symbols() []*SymbolInfo {
	var out []*SymbolInfo
	for _, sc := range st.scopes {
		names := make([]string, 0, len(sc.symbols))
		for name := range sc.symbols {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, sc.symbols[name])
		}
	}
	return out
}

// Lookup resolves name against the scope stack, innermost first. Returns nil
// when the name is undeclared.
func (st *SymbolTable) Lookup(name string) *SymbolInfo {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if sym, ok := st.scopes[i].symbols[name]; ok {
			return sym
		}
	}
	return nil
}
