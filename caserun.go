package main

import (
	"fmt"
	"strings"

	"github.com/tria-lang/tria/mdtest"
)

// RunCase lowers one extracted test case and checks its assertions.
// The returned slice holds one message per failed assertion; an empty slice
// means the case passed.
func RunCase(tc mdtest.TestCase) []string {
	var failures []string

	ast, err := BuildAST(tc.AST)
	if err != nil {
		return []string{fmt.Sprintf("bad input AST: %v", err)}
	}

	prog, diags, err := LowerProgram(ast)

	wantsError := false
	for _, a := range tc.Assertions {
		if a.Type == mdtest.AssertionError {
			wantsError = true
		}
	}
	if err != nil && !wantsError {
		return []string{fmt.Sprintf("unexpected fatal error: %v", err)}
	}

	for _, a := range tc.Assertions {
		switch a.Type {
		case mdtest.AssertionTAC:
			if err != nil {
				failures = append(failures, fmt.Sprintf("no program to compare: %v", err))
				continue
			}
			got := strings.TrimRight(Listing(prog), "\n")
			if got != a.Content {
				failures = append(failures, fmt.Sprintf("instruction mismatch:\n--- want ---\n%s\n--- got ---\n%s", a.Content, got))
			}
		case mdtest.AssertionDiagnostics:
			rendered := diags.String()
			for _, line := range strings.Split(a.Content, "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if !strings.Contains(rendered, line) {
					failures = append(failures, fmt.Sprintf("missing diagnostic %q in:\n%s", line, rendered))
				}
			}
		case mdtest.AssertionError:
			if err == nil {
				failures = append(failures, fmt.Sprintf("expected fatal error containing %q, lowering succeeded", a.Content))
				continue
			}
			if !strings.Contains(err.Error(), a.Content) {
				failures = append(failures, fmt.Sprintf("fatal error %q does not contain %q", err.Error(), a.Content))
			}
		}
	}

	return failures
}
