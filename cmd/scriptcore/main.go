// Command scriptcore is the CLI driver for the scriptcore interpreter
// (SPEC_FULL.md §A): run/eval a program, lex or parse source for
// debugging, or print version information.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/scriptcore/cmd/scriptcore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
