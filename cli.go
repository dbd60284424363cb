package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"

	"github.com/tria-lang/tria/mdtest"
)

var (
	dumpASTFlag = cli.BoolFlag{
		Name:  "dump-ast",
		Usage: "dump the parsed syntax tree before lowering",
	}
	tableFlag = cli.BoolFlag{
		Name:  "table",
		Usage: "render the instructions as a table instead of a listing",
	}
	symbolsFlag = cli.BoolFlag{
		Name:  "symbols",
		Usage: "print the declared symbols after lowering",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "tria"
	app.Usage = "lower tria syntax trees to three-address code"
	app.Commands = []cli.Command{
		{
			Name:      "lower",
			Usage:     "lower an AST file and print the generated instructions",
			ArgsUsage: "<file>",
			Flags:     []cli.Flag{dumpASTFlag, tableFlag, symbolsFlag},
			Action:    lowerCommand,
		},
		{
			Name:      "check",
			Usage:     "lower an AST file and report diagnostics only",
			ArgsUsage: "<file>",
			Flags:     []cli.Flag{dumpASTFlag},
			Action:    checkCommand,
		},
		{
			Name:      "cases",
			Usage:     "run the test cases in one or more Markdown files",
			ArgsUsage: "<file.md>...",
			Action:    casesCommand,
		},
	}
	sort.Sort(cli.CommandsByName(app.Commands))
	return app
}

// loadAST reads an s-expression AST from the file named by the command's
// single argument.
func loadAST(ctx *cli.Context) (*ASTNode, error) {
	if ctx.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one file argument")
	}
	data, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return nil, err
	}
	expr, err := mdtest.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ctx.Args().First(), err)
	}
	ast, err := BuildAST(expr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ctx.Args().First(), err)
	}
	if ctx.Bool("dump-ast") {
		spew.Fdump(os.Stderr, ast)
	}
	return ast, nil
}

func lowerCommand(ctx *cli.Context) error {
	ast, err := loadAST(ctx)
	if err != nil {
		return err
	}
	prog, diags, err := LowerProgram(ast)
	if diags.HasErrors() {
		diags.Print(os.Stderr)
	}
	if err != nil {
		return err
	}
	if ctx.Bool("table") {
		RenderTable(os.Stdout, prog)
	} else {
		fmt.Print(Listing(prog))
	}
	if ctx.Bool("symbols") {
		fmt.Println()
		PrintSymbols(os.Stdout, prog)
	}
	return nil
}

func checkCommand(ctx *cli.Context) error {
	ast, err := loadAST(ctx)
	if err != nil {
		return err
	}
	_, diags, err := LowerProgram(ast)
	if err != nil {
		return err
	}
	if diags.HasErrors() {
		diags.Print(os.Stdout)
		return fmt.Errorf("%d diagnostic(s)", len(diags.All()))
	}
	fmt.Println("no problems found")
	return nil
}

func casesCommand(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return fmt.Errorf("expected at least one Markdown file")
	}
	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()

	failed := 0
	total := 0
	for _, path := range ctx.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		cases, err := mdtest.ExtractTestCases(string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, tc := range cases {
			total++
			failures := RunCase(tc)
			if len(failures) == 0 {
				fmt.Printf("%s %s: %s\n", pass("ok"), path, tc.Name)
				continue
			}
			failed++
			fmt.Printf("%s %s: %s\n", fail("FAIL"), path, tc.Name)
			for _, msg := range failures {
				fmt.Printf("    %s\n", msg)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d case(s) failed", failed, total)
	}
	fmt.Printf("%d case(s) passed\n", total)
	return nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
