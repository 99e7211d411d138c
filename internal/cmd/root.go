package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for difftest
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "difftest [n]",
		Short: "List failing tests in a go test log and diff their output",
		Long: `Difftest reads a saved "go test -v" log (_difftest by default) and finds
the failing tests: every "--- FAIL:" line that directly follows a "=== RUN" line.

Without arguments it lists the failures with their index and exits with the
number of failures as status code.

With an index n it slices the "got" and "want" blocks printed by failure n,
writes them to _difftest.got and _difftest.want, and shows their diff. The
exit status is the diff's: 0 identical, 1 different.

Configuration is loaded from .difftest.yaml if present.
CLI flags override configuration file settings.

Examples:
  go test -v ./... > _difftest
  difftest                     # list failures
  difftest 0                   # diff got/want of the first failure
  difftest --diff builtin 2    # in-process diff instead of diff(1)
  difftest --log ci.log 1      # read another log`,
		Args:    cobra.MaximumNArgs(1),
		Version: Version,
		RunE:    runRoot,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints errors and maps exit codes
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default: .difftest.yaml)")
	flags.String("log", "", "Test log to scan; also the scratch file base (default: _difftest)")
	flags.String("log-level", "", "Log verbosity on stderr: trace, debug, info, warn, error")
	flags.String("color", "", "Colored output: auto, always, never")

	cmd.Flags().String("diff", "", "Diff provider: external or builtin")
	cmd.Flags().String("format", "", "Builtin diff format: normal or unified")

	cmd.AddCommand(NewReportCommand())

	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	run, err := newRunContext(cmd)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return listFailures(cmd, run)
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid failure index %q: %w", args[0], err)
	}
	return showFailure(cmd, run, n)
}
