package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/scriptcore/internal/builtins"
	"github.com/cwbudde/scriptcore/internal/diag"
	"github.com/cwbudde/scriptcore/internal/lexer"
	"github.com/cwbudde/scriptcore/internal/parser"
	"github.com/cwbudde/scriptcore/internal/ref"
	"github.com/cwbudde/scriptcore/internal/value"
	"github.com/cwbudde/scriptcore/pkg/script"
)

var (
	evalExpr  string
	dumpAST   bool
	traceExec bool
	gcAfter   bool
)

var runCmd = &cobra.Command{
	Use:   "run [file] [args...]",
	Short: "Run a scriptcore file or inline expression",
	Long: `Compile and execute a scriptcore program from a file or inline source.

Examples:
  # Run a script file, forwarding any trailing args through __varg
  scriptcore run script.sc arg1 arg2

  # Evaluate inline source
  scriptcore run -e "return 1 + 2 * 3;"

  # Dump the parsed AST before running
  scriptcore run --dump-ast script.sc

  # Run the collector after execution and report what it reclaimed
  scriptcore run --gc-after script.sc`,
	Args: cobra.ArbitraryArgs,
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline source instead of reading a file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST before running")
	runCmd.Flags().BoolVar(&traceExec, "trace", false, "enable the evaluator's execution trace")
	runCmd.Flags().BoolVar(&gcAfter, "gc-after", false, "run the collector after execution and print the reclaimed count")
}

func runScript(cmd *cobra.Command, args []string) error {
	var source, filename string
	var scriptArgs []string

	if evalExpr != "" {
		source = evalExpr
		filename = "<eval>"
		scriptArgs = args
	} else if len(args) >= 1 {
		filename = args[0]
		scriptArgs = args[1:]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", filename, err)
		}
		source = string(content)
	} else {
		return fmt.Errorf("either provide a file path or use -e/--eval for inline source")
	}

	if dumpAST {
		p := parser.New(lexer.New(source), source, filename)
		astProg := p.ParseProgram()
		if errs := p.Errors(); len(errs) > 0 {
			fmt.Fprint(os.Stderr, diag.FormatAll(errs, true))
			fmt.Fprintln(os.Stderr)
			return fmt.Errorf("compilation failed with %d error(s)", len(errs))
		}
		fmt.Fprintln(os.Stderr, "AST:")
		fmt.Fprint(os.Stderr, astProg.String())
		fmt.Fprintln(os.Stderr)
	}

	prog, errs := script.Compile(source, filename)
	if len(errs) > 0 {
		fmt.Fprint(os.Stderr, diag.FormatAll(errs, true))
		fmt.Fprintln(os.Stderr)
		return fmt.Errorf("compilation failed with %d error(s)", len(errs))
	}

	global := script.NewGlobalContext(filename, source)
	builtins.Register(global.Context(), os.Stdout)
	if traceExec {
		global.SetTrace(os.Stderr)
	}

	argRefs := make([]*ref.Reference, len(scriptArgs))
	for i, a := range scriptArgs {
		argRefs[i] = ref.NewTemporary(value.NewString(a))
	}

	result, exc := prog.Execute(global, argRefs)
	if exc != nil {
		fmt.Fprintf(os.Stderr, "Uncaught exception: %s\n", exc.Error())
		return fmt.Errorf("execution failed")
	}

	for _, w := range global.DeferWarnings() {
		fmt.Fprintf(os.Stderr, "[defer] %s\n", w)
	}

	if v, err := result.Read(); err == nil && !v.IsNull() {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			fmt.Fprintf(os.Stderr, "=> %s\n", v.Dump())
		}
	}

	if gcAfter {
		reclaimed := global.Collect(-1)
		fmt.Fprintln(os.Stderr, diag.CollectorSummary(reclaimed))
	}

	return nil
}
