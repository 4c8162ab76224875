package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/scriptcore/internal/lexer"
)

var (
	lexEval    string
	showPos    bool
	showType   bool
	onlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a scriptcore file or expression",
	Long: `Tokenize (lex) scriptcore source and print the resulting tokens.

Examples:
  # Tokenize a script file
  scriptcore lex script.sc

  # Tokenize inline source
  scriptcore lex -e "var x = 42;"

  # Show token types and positions
  scriptcore lex --show-type --show-pos script.sc

  # Show only illegal tokens
  scriptcore lex --only-errors script.sc`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline source instead of reading a file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token type names")
	lexCmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "show only illegal tokens")
}

func lexScript(cmd *cobra.Command, args []string) error {
	var input, filename string

	if lexEval != "" {
		input = lexEval
		filename = "<eval>"
	} else if len(args) == 1 {
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		input = string(content)
	} else {
		return fmt.Errorf("either provide a file path or use -e flag for inline source")
	}

	verboseFlag, _ := cmd.Flags().GetBool("verbose")
	if verboseFlag {
		fmt.Printf("Tokenizing: %s\n", filename)
		fmt.Printf("Input length: %d bytes\n", len(input))
		fmt.Println("---")
	}

	l := lexer.New(input)

	tokenCount := 0
	for {
		tok := l.NextToken()

		if onlyErrors && tok.Type != lexer.ILLEGAL {
			if tok.Type == lexer.EOF {
				break
			}
			continue
		}

		tokenCount++
		printToken(tok)

		if tok.Type == lexer.EOF {
			break
		}
	}

	errs := l.Errors()
	if verboseFlag {
		fmt.Println("---")
		fmt.Printf("Total tokens: %d\n", tokenCount)
		if len(errs) > 0 {
			fmt.Printf("Errors: %d\n", len(errs))
		}
	}

	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", filename, e.Pos.Line, e.Pos.Column, e.Message)
		}
		return fmt.Errorf("found %d scan error(s)", len(errs))
	}

	return nil
}

func printToken(tok lexer.Token) {
	var output string

	if showType {
		output = fmt.Sprintf("[%-16s]", tok.Type)
	}

	switch {
	case tok.Type == lexer.EOF:
		output += " EOF"
	case tok.Type == lexer.ILLEGAL:
		output += fmt.Sprintf(" ILLEGAL: %q", tok.Literal)
	case tok.Literal == "":
		output += fmt.Sprintf(" %s", tok.Type)
	default:
		output += fmt.Sprintf(" %q", tok.Literal)
	}

	if showPos {
		output += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}

	fmt.Println(output)
}
