package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Diagnostic is one non-fatal finding reported during lowering: an
// undeclared identifier, a break/continue outside any loop, a for clause
// whose shape could not be determined. Lowering continues past all of these.
type Diagnostic struct {
	Message   string
	Line, Col int
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s", d.Line, d.Message)
	}
	return d.Message
}

// Diagnostics collects the findings of one lowering pass.
type Diagnostics struct {
	list []Diagnostic
}

func (ds *Diagnostics) Report(line, col int, format string, args ...any) {
	ds.list = append(ds.list, Diagnostic{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Col:     col,
	})
}

func (ds *Diagnostics) HasErrors() bool {
	return len(ds.list) > 0
}

func (ds *Diagnostics) All() []Diagnostic {
	return ds.list
}

func (ds *Diagnostics) String() string {
	var sb strings.Builder
	for _, d := range ds.list {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Print writes the collected diagnostics to w, colorized for terminals.
func (ds *Diagnostics) Print(w io.Writer) {
	errLabel := color.New(color.FgRed, color.Bold)
	pos := color.New(color.FgCyan)
	for _, d := range ds.list {
		errLabel.Fprint(w, "warning: ")
		fmt.Fprint(w, d.Message)
		if d.Line > 0 {
			pos.Fprintf(w, " (line %d, col %d)", d.Line, d.Col)
		}
		fmt.Fprintln(w)
	}
}
