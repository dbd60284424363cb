package main

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/tria-lang/tria/mdtest"
)

// mustLower parses an s-expression program and lowers it.
func mustLower(t *testing.T, src string) (*Program, *Diagnostics, error) {
	t.Helper()
	expr, err := mdtest.Parse(src)
	be.Err(t, err, nil)
	ast, err := BuildAST(expr)
	be.Err(t, err, nil)
	return LowerProgram(ast)
}

func listing(t *testing.T, p *Program) []string {
	t.Helper()
	text := strings.TrimRight(Listing(p), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestLowerVarDecl(t *testing.T) {
	prog, diags, err := mustLower(t, `(var (names x) (type int) (init (literal int 1)))`)
	be.Err(t, err, nil)
	be.Equal(t, diags.HasErrors(), false)
	be.Equal(t, listing(t, prog), []string{"x = 1"})
}

func TestLowerVarDeclTracksConstValue(t *testing.T) {
	prog, _, err := mustLower(t, `(var (names x) (init (literal int 7)))`)
	be.Err(t, err, nil)

	sym := prog.symtab.Lookup("x")
	be.True(t, sym != nil)
	be.True(t, sym.ConstFlag)
	be.Equal(t, sym.Value, 7)
	be.Equal(t, sym.Const, false)
}

func TestLowerMultiVarDecl(t *testing.T) {
	prog, _, err := mustLower(t, `(var (names a b) (init (literal int 1) (literal int 2)))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{"a = 1", "b = 2"})
}

func TestLowerDestructuringIsFatal(t *testing.T) {
	_, _, err := mustLower(t, `(var (names a b) (init (literal int 1)))`)
	be.Err(t, err, ErrUnsupportedDestructuring)
}

func TestLowerDuplicateDeclaration(t *testing.T) {
	prog, diags, err := mustLower(t, `(block
		(var (names x) (init (literal int 1)))
		(var (names x) (init (literal int 2))))`)
	be.Err(t, err, nil)
	be.True(t, diags.HasErrors())
	be.True(t, strings.Contains(diags.String(), "already declared"))
	// Lowering continues against the surviving entry.
	be.Equal(t, listing(t, prog), []string{"x = 1", "x = 2"})
}

func TestLowerDeclCollapse(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names a) (init (literal int 1)))
		(var (names b) (init (literal int 2)))
		(var (names z) (init (binary "+" (primary "a") (primary "b")))))`)
	be.Err(t, err, nil)
	// The simple binary initializer writes z directly, no temporary.
	be.Equal(t, listing(t, prog), []string{"a = 1", "b = 2", "z = a + b"})
}

func TestLowerNestedExpression(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names a) (init (literal int 1)))
		(var (names b) (init (literal int 2)))
		(var (names c) (init (binary "*" (binary "+" (primary "a") (primary "b")) (literal int 2)))))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{
		"a = 1",
		"b = 2",
		"t1 = a + b",
		"t2 = t1 * 2",
		"c = t2",
	})
}

func TestLowerAssignCollapse(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names a) (init (literal int 1)))
		(var (names b) (init (literal int 2)))
		(assign "=" (primary "a") (binary "+" (primary "a") (primary "b"))))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{"a = 1", "b = 2", "a = a + b"})

	// Destination and first operand are the same storage.
	bin, ok := prog.Code[2].(*BinQuad)
	be.True(t, ok)
	be.True(t, SameOperand(bin.Dest, bin.Op1))
}

func TestLowerCompoundAssign(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names a) (init (literal int 1)))
		(assign "+=" (primary "a") (literal int 3)))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{"a = 1", "a = a + 3"})
}

func TestLowerIncrement(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names x) (init (literal int 1)))
		(unary "++" (primary "x")))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{"x = 1", "x = x + 1"})

	// After the in-place update the tracked value is gone.
	sym := prog.symtab.Lookup("x")
	be.Equal(t, sym.ConstFlag, false)
}

func TestLowerDecrement(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names x) (init (literal int 5)))
		(unary "--" (primary "x")))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{"x = 5", "x = x - 1"})
}

func TestLowerUnaryNot(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names p) (type bool) (init (literal bool true)))
		(var (names q) (init (unary "!" (primary "p")))))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{"p = true", "t1 = ! p", "q = t1"})
}

func TestLowerConstReassignIsFatal(t *testing.T) {
	_, _, err := mustLower(t, `(block
		(const (names k) (init (literal int 1)))
		(assign "=" (primary "k") (literal int 2)))`)
	be.Err(t, err, ErrImmutableConstant)
}

func TestLowerConstCompoundAssignIsFatal(t *testing.T) {
	_, _, err := mustLower(t, `(block
		(const (names k) (init (literal int 1)))
		(assign "+=" (primary "k") (literal int 2)))`)
	be.Err(t, err, ErrImmutableConstant)
}

func TestLowerConstIncrementIsFatal(t *testing.T) {
	_, _, err := mustLower(t, `(block
		(const (names k) (init (literal int 1)))
		(unary "++" (primary "k")))`)
	be.Err(t, err, ErrImmutableConstant)
}

func TestLowerUndeclaredIdentifier(t *testing.T) {
	prog, diags, err := mustLower(t, `(var (names y) (init (primary "ghost")))`)
	be.Err(t, err, nil)
	be.True(t, diags.HasErrors())
	be.True(t, strings.Contains(diags.String(), `undeclared identifier "ghost"`))
	be.Equal(t, len(prog.Code), 0)
}

func TestLowerIf(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names x) (init (literal int 1)))
		(if (cond (binary "<" (primary "x") (literal int 10)))
		    (then (assign "=" (primary "x") (literal int 0)))))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{
		"x = 1",
		"t1 = x < 10",
		"if t1 goto if_true_1 else goto if_false_1",
		"LABEL if_true_1:",
		"x = 0",
		"LABEL if_false_1:",
	})
}

func TestLowerIfWithInitAndElse(t *testing.T) {
	prog, _, err := mustLower(t, `(if
		(init (var (names y) (init (literal int 1))))
		(cond (binary "==" (primary "y") (literal int 1)))
		(then (assign "=" (primary "y") (literal int 2)))
		(else (call "fmt.Println" (primary "y"))))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{
		"y = 1",
		"t1 = y == 1",
		"if t1 goto if_true_1 else goto if_false_1",
		"LABEL if_true_1:",
		"y = 2",
		"LABEL if_false_1:",
		"push y",
		"t2 = call FUNCTION_fmt__Println",
	})
}

func TestLowerIfScopesBalance(t *testing.T) {
	expr, err := mdtest.Parse(`(if
		(init (var (names y) (init (literal int 1))))
		(cond (binary "==" (primary "y") (literal int 1)))
		(then (var (names inner) (init (literal int 2)))))`)
	be.Err(t, err, nil)
	ast, err := BuildAST(expr)
	be.Err(t, err, nil)

	l := NewLowerer(NewSymbolTable())
	_, err = l.lower(ast)
	be.Err(t, err, nil)
	be.Equal(t, l.symtab.Depth(), 1)
	// The init variable lived in the statement's own scope.
	be.True(t, l.symtab.Lookup("y") == nil)
	be.True(t, l.symtab.Lookup("inner") == nil)
}

func TestLowerSimpleFor(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names x) (init (literal int 0)))
		(for (cond (binary "<" (primary "x") (literal int 3)))
		     (body (unary "++" (primary "x")))))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{
		"x = 0",
		"LABEL for_simple_start_1:",
		"t1 = x < 3",
		"if t1 goto for_simple_true_1 else goto for_simple_end_1",
		"LABEL for_simple_true_1:",
		"x = x + 1",
		"goto for_simple_start_1",
		"LABEL for_simple_end_1:",
	})
}

func TestLowerThreePartFor(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names s) (init (literal int 0)))
		(for (init (var (names i) (type int) (init (literal int 0))))
		     (cond (binary "<" (primary "i") (literal int 3)))
		     (post (unary "++" (primary "i")))
		     (body (assign "=" (primary "s") (binary "+" (primary "s") (primary "i"))))))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{
		"s = 0",
		"i = 0",
		"LABEL for_cmpd_start_1:",
		"t1 = i < 3",
		"if t1 goto for_cmpd_true_1 else goto for_cmpd_end_1",
		"LABEL for_cmpd_true_1:",
		"s = s + i",
		"i = i + 1",
		"goto for_cmpd_start_1",
		"LABEL for_cmpd_end_1:",
	})
}

func TestLowerForRestoresLoopStack(t *testing.T) {
	prog, _, err := mustLower(t, `(for (cond (literal bool true)) (body (break)))`)
	be.Err(t, err, nil)
	be.Equal(t, prog.InLoop(), false)
	be.Equal(t, prog.symtab.Depth(), 1)
}

func TestLowerBreakJumpsToEnd(t *testing.T) {
	prog, _, err := mustLower(t, `(for (cond (literal bool true)) (body (break)))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{
		"LABEL for_simple_start_1:",
		"if true goto for_simple_true_1 else goto for_simple_end_1",
		"LABEL for_simple_true_1:",
		"goto for_simple_end_1",
		"goto for_simple_start_1",
		"LABEL for_simple_end_1:",
	})
}

func TestLowerContinueJumpsToStart(t *testing.T) {
	prog, _, err := mustLower(t, `(for (cond (literal bool true)) (body (continue)))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{
		"LABEL for_simple_start_1:",
		"if true goto for_simple_true_1 else goto for_simple_end_1",
		"LABEL for_simple_true_1:",
		"goto for_simple_start_1",
		"goto for_simple_start_1",
		"LABEL for_simple_end_1:",
	})
}

func TestLowerNestedLoopsTargetInnermost(t *testing.T) {
	prog, _, err := mustLower(t, `(for (cond (literal bool true)) (body
		(for (cond (literal bool false)) (body (break)))
		(break)))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{
		"LABEL for_simple_start_1:",
		"if true goto for_simple_true_1 else goto for_simple_end_1",
		"LABEL for_simple_true_1:",
		"LABEL for_simple_start_2:",
		"if false goto for_simple_true_2 else goto for_simple_end_2",
		"LABEL for_simple_true_2:",
		"goto for_simple_end_2",
		"goto for_simple_start_2",
		"LABEL for_simple_end_2:",
		"goto for_simple_end_1",
		"goto for_simple_start_1",
		"LABEL for_simple_end_1:",
	})
}

func TestLowerBreakOutsideLoop(t *testing.T) {
	prog, diags, err := mustLower(t, `(block (break))`)
	be.Err(t, err, nil)
	be.True(t, diags.HasErrors())
	be.True(t, strings.Contains(diags.String(), `"break" not allowed outside a loop`))
	be.Equal(t, len(prog.Code), 0)
}

func TestLowerContinueOutsideLoop(t *testing.T) {
	_, diags, err := mustLower(t, `(block (continue))`)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(diags.String(), `"continue" not allowed outside a loop`))
}

func TestLowerMalformedForClause(t *testing.T) {
	// An int-valued clause is neither a condition nor a three-part clause.
	_, diags, err := mustLower(t, `(for (cond (literal int 1)) (body (break)))`)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(diags.String(), "could not determine for clause type"))
}

func TestLowerFunc(t *testing.T) {
	prog, _, err := mustLower(t, `(func "main" (params) (body
		(call "fmt.Println" (literal string "hi"))))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{
		"LABEL FUNCTION_main:",
		"push hi",
		"t1 = call FUNCTION_fmt__Println",
		"LABEL FUNCTION_END_main:",
	})
}

func TestLowerFuncParamsVisibleInBody(t *testing.T) {
	prog, diags, err := mustLower(t, `(func "double" (params (param n (type int))) (body
		(return (binary "*" (primary "n") (literal int 2)))))`)
	be.Err(t, err, nil)
	be.Equal(t, diags.HasErrors(), false)
	be.Equal(t, listing(t, prog), []string{
		"LABEL FUNCTION_double:",
		"t1 = n * 2",
		"return t1",
		"LABEL FUNCTION_END_double:",
	})
}

func TestLowerFuncScopesBalance(t *testing.T) {
	expr, err := mdtest.Parse(`(func "f" (params (param n (type int))) (body (return)))`)
	be.Err(t, err, nil)
	ast, err := BuildAST(expr)
	be.Err(t, err, nil)

	l := NewLowerer(NewSymbolTable())
	_, err = l.lower(ast)
	be.Err(t, err, nil)
	be.Equal(t, l.symtab.Depth(), 1)
	// The function name survives globally, its parameter does not.
	be.True(t, l.symtab.Lookup("f") != nil)
	be.True(t, l.symtab.Lookup("n") == nil)
}

func TestLowerReturnWithoutValue(t *testing.T) {
	prog, _, err := mustLower(t, `(func "noop" (params) (body (return)))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{
		"LABEL FUNCTION_noop:",
		"return",
		"LABEL FUNCTION_END_noop:",
	})
}

func TestLowerCallToDeclaredFunction(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(func "f" (params) (body (return)))
		(call "f"))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{
		"LABEL FUNCTION_f:",
		"return",
		"LABEL FUNCTION_END_f:",
		"t1 = call FUNCTION_f",
	})
}

func TestLowerCallToUnknownFunctionIsFatal(t *testing.T) {
	_, _, err := mustLower(t, `(call "nothing")`)
	be.Err(t, err, ErrUnknownLabel)
}

func TestLowerCallResultType(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(func "f" (params) (body (return (literal int 1))))
		(var (names x) (init (call "f" (type int)))))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{
		"LABEL FUNCTION_f:",
		"return 1",
		"LABEL FUNCTION_END_f:",
		"t1 = call FUNCTION_f",
		"x = t1",
	})
}

func TestLowerCallArgumentOrder(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names a) (init (literal int 1)))
		(var (names b) (init (literal int 2)))
		(call "fmt.Println" (primary "a") (primary "b")))`)
	be.Err(t, err, nil)
	// Arguments are pushed in source order.
	be.Equal(t, listing(t, prog), []string{
		"a = 1",
		"b = 2",
		"push a",
		"push b",
		"t1 = call FUNCTION_fmt__Println",
	})
}

func TestLowerCallComputedArgument(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names a) (init (literal int 1)))
		(call "fmt.Println" (binary "+" (primary "a") (literal int 1))))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{
		"a = 1",
		"t1 = a + 1",
		"push t1",
		"t2 = call FUNCTION_fmt__Println",
	})
}

func TestLowerIndexedAccess(t *testing.T) {
	prog, diags, err := mustLower(t, `(block
		(var (names arr) (array-type int 8))
		(var (names y) (init (primary "arr" (index (literal int 2))))))`)
	be.Err(t, err, nil)
	be.Equal(t, diags.HasErrors(), false)
	be.Equal(t, listing(t, prog), []string{
		"t1 = base(arr)",
		"t2 = 2 * 8",
		"t3 = t1 + t2",
		"t4 = arr [] t3",
		"y = t4",
	})

	// The loaded value carries the element type.
	result, ok := prog.Code[3].(*BinQuad)
	be.True(t, ok)
	temp, ok := result.Dest.(*Temp)
	be.True(t, ok)
	be.Equal(t, temp.Type(), "int")
}

func TestLowerIndexedAccessElementWidth(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names bytes) (array-type u8 1))
		(var (names y) (init (primary "bytes" (index (literal int 3))))))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog)[1], "t2 = 3 * 1")
}

func TestLowerIndexOnNonArray(t *testing.T) {
	_, diags, err := mustLower(t, `(block
		(var (names n) (type int) (init (literal int 1)))
		(var (names y) (init (primary "n" (index (literal int 0))))))`)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(diags.String(), "not indexable"))
}

func TestLowerCompositeLiteral(t *testing.T) {
	prog, _, err := mustLower(t, `(var (names arr) (array-type int 8)
		(init (literal (array-type int 8)
			(block (literal int 1) (literal int 2) (literal int 3)))))`)
	be.Err(t, err, nil)
	be.Equal(t, listing(t, prog), []string{"arr = {1, 2, 3}"})
}

func TestLowerTempsIncreaseAcrossConstructs(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(var (names a) (init (literal int 1)))
		(var (names b) (init (binary "*" (binary "+" (primary "a") (literal int 1)) (literal int 2))))
		(var (names c) (init (binary "*" (binary "+" (primary "a") (literal int 2)) (literal int 3)))))`)
	be.Err(t, err, nil)

	var temps []string
	for _, q := range prog.Code {
		if bin, ok := q.(*BinQuad); ok {
			if temp, isTemp := bin.Dest.(*Temp); isTemp {
				temps = append(temps, temp.Name())
			}
		}
	}
	be.Equal(t, temps, []string{"t1", "t2", "t3", "t4"})
}

func TestLowerEvaluatesSubexpressionsRightToLeft(t *testing.T) {
	prog, _, err := mustLower(t, `(block
		(func "f" (params) (body (return (literal int 1))))
		(func "g" (params) (body (return (literal int 2))))
		(var (names x) (init (binary "+" (call "f" (type int)) (call "g" (type int))))))`)
	be.Err(t, err, nil)
	// g's call instructions land first, but the quad still reads f + g.
	be.Equal(t, listing(t, prog)[6:], []string{
		"t1 = call FUNCTION_g",
		"t2 = call FUNCTION_f",
		"t3 = t2 + t1",
		"x = t3",
	})
}
