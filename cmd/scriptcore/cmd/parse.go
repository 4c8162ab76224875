package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/scriptcore/internal/diag"
	"github.com/cwbudde/scriptcore/internal/lexer"
	"github.com/cwbudde/scriptcore/internal/parser"
)

var parseEval bool

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse scriptcore source and print the AST",
	Long: `Parse scriptcore source code and print the Abstract Syntax Tree.

If no file is provided, reads from stdin. Use -e to parse a single
expression given directly on the command line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseEval, "expression", "e", false, "parse an expression given on the command line")
}

func runParse(cmd *cobra.Command, args []string) error {
	var input, filename string

	switch {
	case parseEval:
		if len(args) == 0 {
			return fmt.Errorf("no expression provided")
		}
		input = args[0]
		filename = "<eval>"
	case len(args) > 0:
		filename = args[0]
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("error reading file: %w", err)
		}
		input = string(data)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		input = string(data)
		filename = "<stdin>"
	}

	l := lexer.New(input)
	p := parser.New(l, input, filename)
	program := p.ParseProgram()

	if errs := p.Errors(); len(errs) > 0 {
		fmt.Fprint(os.Stderr, diag.FormatAll(errs, true))
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	fmt.Println(program.String())
	return nil
}
