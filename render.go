package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Listing renders the program as one instruction per line, the form the
// golden corpus asserts against.
func Listing(p *Program) string {
	var sb strings.Builder
	for _, q := range p.Code {
		sb.WriteString(q.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// RenderTable writes the quad list as a table (Dest, Operand 1, Operator,
// Operand 2), the debugging view of the emitted code.
func RenderTable(w io.Writer, p *Program) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Dest", "Operand 1", "Operator", "Operand 2"})
	for i, q := range p.Code {
		table.Append(quadRow(i, q))
	}
	table.Render()
}

// PrintSymbols writes the surviving symbol-table entries as a table.
func PrintSymbols(w io.Writer, p *Program) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Scope", "Type", "Const", "Value"})
	for _, sym := range p.Symbols() {
		typeName := ""
		if sym.Type != nil {
			typeName = sym.Type.Name
			if sym.Type.IsArray() {
				typeName = "[]" + sym.Type.Elt
			}
		}
		value := ""
		if sym.ConstFlag && sym.Value != nil {
			value = litString(sym.Value)
		}
		table.Append([]string{
			sym.Name,
			strconv.Itoa(sym.ScopeID),
			typeName,
			strconv.FormatBool(sym.Const),
			value,
		})
	}
	table.Render()
}

func quadRow(i int, q Quad) []string {
	n := func(o Operand) string {
		if o == nil {
			return ""
		}
		return o.Name()
	}
	idx := strconv.Itoa(i)
	switch v := q.(type) {
	case *BinQuad:
		return []string{idx, n(v.Dest), n(v.Op1), v.Operator, n(v.Op2)}
	case *AssignQuad:
		return []string{idx, n(v.Dest), "", "=", n(v.Src)}
	case *LabelQuad:
		return []string{idx, v.Name, "", "LABEL", ""}
	case *GotoQuad:
		return []string{idx, v.Label, "", "goto", ""}
	case *CondGotoQuad:
		return []string{idx, v.True, n(v.Cond), "if", v.False}
	case *CallQuad:
		return []string{idx, n(v.Dest), "", "call", v.Label}
	case *SingleQuad:
		return []string{idx, "", "", v.Operator, ""}
	case *DoubleQuad:
		return []string{idx, n(v.Dest), "", v.Operator, n(v.Src)}
	default:
		return []string{idx, "", "", q.String(), ""}
	}
}
