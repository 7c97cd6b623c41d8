package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"jsonmend"
	"jsonmend/pkg/core/repair"
)

// fileConfig is the optional .jsonmend.yaml shape: CLI defaults a user can
// set once instead of repeating flags, the way cmd/api/main.go loads
// config/models.yaml with yaml.Unmarshal.
type fileConfig struct {
	Indent     int  `yaml:"indent"`
	Strict     bool `yaml:"strict"`
	NoLogging  bool `yaml:"no_logging"`
}

// RepairOptions holds the flag values for `jsonmend repair`.
type RepairOptions struct {
	Inline    bool
	Output    string
	Indent    int
	Strict    bool
	NoLogging bool
	Glob      string
	Verbose   bool
}

// NewRepairCmd builds the `jsonmend repair [file]` subcommand.
func NewRepairCmd() *cobra.Command {
	var opts RepairOptions

	cmd := &cobra.Command{
		Use:   "repair [file]",
		Short: "Repair a malformed JSON document",
		Long: `Repair reads a file (or standard input when no file is given),
repairs it, and writes well-formed JSON to standard output, to -o/--output,
or back to the input file with -i/--inline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose, _ = cmd.Flags().GetBool("verbose")
			loadFileDefaults(&opts)

			if opts.Glob != "" {
				return runBatch(cmd, opts)
			}

			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return runRepair(cmd, path, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Inline, "inline", "i", false, "rewrite the input file in place (error if no filename given)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write repaired JSON to this path instead of stdout")
	cmd.Flags().IntVar(&opts.Indent, "indent", 2, "indent width for the re-serialized JSON")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "bypass repair; require input to already be valid JSON")
	cmd.Flags().BoolVar(&opts.NoLogging, "no-logging", false, "suppress the repair-actions trace even in verbose mode")
	cmd.Flags().StringVar(&opts.Glob, "glob", "", "repair every file matching this glob pattern")

	return cmd
}

func loadFileDefaults(opts *RepairOptions) {
	data, err := os.ReadFile(".jsonmend.yaml")
	if err != nil {
		return
	}
	var cfg fileConfig
	if yaml.Unmarshal(data, &cfg) != nil {
		return
	}
	if cfg.Indent != 0 {
		opts.Indent = cfg.Indent
	}
	opts.Strict = opts.Strict || cfg.Strict
	opts.NoLogging = opts.NoLogging || cfg.NoLogging
}

func toOptions(opts RepairOptions) repair.Options {
	ro := repair.DefaultOptions()
	ro.StrictMode = opts.Strict
	ro.Logging = opts.Verbose && !opts.NoLogging
	ro.Verbose = opts.Verbose
	return ro
}

func runRepair(cmd *cobra.Command, path string, opts RepairOptions) error {
	if opts.Inline && path == "" {
		return fmt.Errorf("--inline requires a filename")
	}

	text, err := readInput(path)
	if err != nil {
		return fmt.Errorf("%w: %v", repair.ErrIO, err)
	}

	out, repairs, err := jsonmend.RepairToString(text, toOptions(opts))
	if err != nil {
		return err
	}

	pretty, err := reindent(out, opts.Indent)
	if err != nil {
		return err
	}

	if opts.Verbose {
		for _, r := range repairs {
			fmt.Fprintf(cmd.ErrOrStderr(), "[jsonmend] %s\n", r.String())
		}
	}

	dest := opts.Output
	if opts.Inline {
		dest = path
	}
	if dest == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), pretty)
		return err
	}
	return os.WriteFile(dest, []byte(pretty+"\n"), 0o644)
}

func runBatch(cmd *cobra.Command, opts RepairOptions) error {
	paths, err := filepath.Glob(opts.Glob)
	if err != nil {
		return fmt.Errorf("%w: %v", repair.ErrIO, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files matched %q", opts.Glob)
	}

	results, err := jsonmend.FromFiles(paths, toOptions(opts))
	if err != nil {
		return fmt.Errorf("%w: %v", repair.ErrIO, err)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, r.Err)
			continue
		}
		encoded, err := json.MarshalIndent(r.Value, "", indentString(opts.Indent))
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s:\n%s\n", r.Path, encoded)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files failed", repair.ErrUnrepairable, failed, len(results))
	}
	return nil
}

func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func reindent(jsonText string, indent int) (string, error) {
	var v any
	if err := json.Unmarshal([]byte(jsonText), &v); err != nil {
		return "", fmt.Errorf("re-indent: %w", err)
	}
	out, err := json.MarshalIndent(v, "", indentString(indent))
	if err != nil {
		return "", fmt.Errorf("re-indent: %w", err)
	}
	return string(out), nil
}

func indentString(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// IsIOError reports whether err originated at an I/O boundary, for the exit
// code mapping in main.go (exit 2 on I/O error).
func IsIOError(err error) bool {
	return errors.Is(err, repair.ErrIO)
}
