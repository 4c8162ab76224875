package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information, set by build flags: ldflags -X overrides these at
// link time.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "scriptcore",
	Short: "scriptcore: a tree-walking interpreter for a small C-like scripting language",
	Long: `scriptcore is a tree-walking interpreter for a dynamically-typed,
C-like scripting language: lexically-scoped variables, first-class
functions with closures, structured control flow, and exceptions with
backtraces.`,
	Version: Version,
}

// Execute runs the root command; cmd/scriptcore's main.go is its only
// caller.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
