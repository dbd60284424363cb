package mdtest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputFence is the fence language that carries the AST under test.
const InputFence = "tria-ast"

// AssertionType represents the type of assertion code fence in a test
type AssertionType string

const (
	// AssertionTAC asserts the exact instruction listing of the lowered
	// program, one instruction per line.
	AssertionTAC AssertionType = "tac"
	// AssertionDiagnostics asserts that each of its lines appears in the
	// rendered diagnostics.
	AssertionDiagnostics AssertionType = "diagnostics"
	// AssertionError asserts that lowering stops with a fatal error whose
	// message contains the fence content.
	AssertionError AssertionType = "error"
)

// Assertion represents a single assertion fence in a test case
type Assertion struct {
	Type    AssertionType
	Content string
}

// TestCase is one lowering test extracted from Markdown: a "Test:" heading,
// a tria-ast input fence, and one or more assertion fences.
type TestCase struct {
	Name       string
	Input      string // raw s-expression text from the input fence
	AST        *SExpr // Input, parsed
	Assertions []Assertion
}

// ExtractTestCases parses a Markdown document and extracts all test cases.
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	md := goldmark.New()
	source := []byte(markdownContent)
	doc := md.Parser().Parse(text.NewReader(source))

	var cases []TestCase
	var current *TestCase

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := validateTestCase(current); err != nil {
			return err
		}
		cases = append(cases, *current)
		current = nil
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			headingText := extractTextFromNode(n, source)
			if strings.HasPrefix(headingText, "Test: ") {
				if err := flush(); err != nil {
					return ast.WalkStop, err
				}
				current = &TestCase{Name: strings.TrimPrefix(headingText, "Test: ")}
			}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			content := strings.TrimRight(extractCodeBlockContent(n, source), "\n")
			lineNum := lineNumber(n, source)

			if language == "" {
				// plain code blocks are prose, not part of a test
				return ast.WalkContinue, nil
			}
			if language != InputFence && !isAssertionFence(language) {
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language %q", lineNum, language)
			}
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", lineNum, language)
			}

			if language == InputFence {
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences in test '%s'", lineNum, current.Name)
				}
				parsed, parseErr := Parse(content)
				if parseErr != nil {
					return ast.WalkStop, fmt.Errorf("line %d: bad input in test '%s': %w", lineNum, current.Name, parseErr)
				}
				current.Input = content
				current.AST = parsed
				break
			}

			current.Assertions = append(current.Assertions, Assertion{
				Type:    AssertionType(language),
				Content: content,
			})
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

func extractTextFromNode(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func extractCodeBlockContent(codeBlock *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < codeBlock.Lines().Len(); i++ {
		line := codeBlock.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func isAssertionFence(language string) bool {
	switch AssertionType(language) {
	case AssertionTAC, AssertionDiagnostics, AssertionError:
		return true
	}
	return false
}

func validateTestCase(testCase *TestCase) error {
	if testCase.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", testCase.Name)
	}
	if len(testCase.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", testCase.Name)
	}
	return nil
}

func lineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	startPos := node.Lines().At(0).Start
	lineNum := 1
	for i := 0; i < startPos && i < len(source); i++ {
		if source[i] == '\n' {
			lineNum++
		}
	}
	return lineNum
}
