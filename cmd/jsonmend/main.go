// Command jsonmend is the CLI adapter over the jsonmend repair pipeline:
// argument parsing, file I/O, and output formatting live here, never in
// the core repair packages.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jsonmend/cmd/jsonmend/commands"
)

var rootCmd = &cobra.Command{
	Use:   "jsonmend",
	Short: "Repair malformed JSON-like text into well-formed JSON",
	Long: `jsonmend repairs malformed JSON-like input — the kind produced by
LLMs, legacy exporters, hand-edited config, and truncated API responses —
and returns either a parsed value tree or well-formed JSON text.`,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "trace each repair layer to stderr")
	rootCmd.AddCommand(commands.NewRepairCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a returned error onto an exit code: 0 success, 1 repair
// failed or invalid argument, 2 I/O error.
func exitCodeFor(err error) int {
	if commands.IsIOError(err) {
		return 2
	}
	return 1
}
