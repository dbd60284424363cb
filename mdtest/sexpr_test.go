package mdtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAtoms(t *testing.T) {
	tests := []struct {
		input string
		kind  SExprKind
	}{
		{"foo", SymbolExpr},
		{"fmt.Println", SymbolExpr},
		{"++", SymbolExpr},
		{`"hello"`, StringExpr},
		{"42", IntExpr},
		{"-1", IntExpr},
		{"3.14", FloatExpr},
		{"1e6", FloatExpr},
	}
	for _, tt := range tests {
		expr, err := Parse(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.kind, expr.Kind, tt.input)
	}
}

func TestParseAtomValues(t *testing.T) {
	expr, err := Parse("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), expr.Int)

	expr, err = Parse("-5")
	require.NoError(t, err)
	assert.Equal(t, int64(-5), expr.Int)

	expr, err = Parse("2.5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, expr.Float)

	expr, err = Parse(`"a b c"`)
	require.NoError(t, err)
	assert.Equal(t, "a b c", expr.Text)
}

func TestParseStringEscapes(t *testing.T) {
	expr, err := Parse(`"line\nnext \"quoted\""`)
	require.NoError(t, err)
	assert.Equal(t, "line\nnext \"quoted\"", expr.Text)
}

func TestParseList(t *testing.T) {
	expr, err := Parse(`(binary "+" (primary "a") (literal int 2))`)
	require.NoError(t, err)
	require.Equal(t, ListExpr, expr.Kind)
	require.Len(t, expr.Items, 4)

	assert.Equal(t, "binary", expr.Head())
	assert.Len(t, expr.Args(), 3)
	assert.Equal(t, "+", expr.Items[1].Text)
	assert.Equal(t, "primary", expr.Items[2].Head())
	assert.Equal(t, int64(2), expr.Items[3].Items[2].Int)
}

func TestParseEmptyList(t *testing.T) {
	expr, err := Parse("()")
	require.NoError(t, err)
	assert.Equal(t, ListExpr, expr.Kind)
	assert.Empty(t, expr.Items)
	assert.Equal(t, "", expr.Head())
}

func TestParseMultiline(t *testing.T) {
	expr, err := Parse(`(block
		(var (names x) (init (literal int 1)))  ; declare x
		(break))`)
	require.NoError(t, err)
	require.Equal(t, "block", expr.Head())
	assert.Len(t, expr.Args(), 2)
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"(",
		")",
		"(a",
		`"unterminated`,
		"a b", // trailing content
	}
	for _, input := range tests {
		_, err := Parse(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestStringRoundTrip(t *testing.T) {
	src := `(call "f" (literal int 1) (primary "x"))`
	expr, err := Parse(src)
	require.NoError(t, err)

	again, err := Parse(expr.String())
	require.NoError(t, err)
	assert.Equal(t, expr.String(), again.String())
}
