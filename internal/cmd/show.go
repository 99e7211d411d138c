package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/harrison/difftest/internal/config"
	"github.com/harrison/difftest/internal/diff"
	"github.com/harrison/difftest/internal/display"
	"github.com/harrison/difftest/internal/scratch"
	"github.com/harrison/difftest/internal/testlog"
	"github.com/spf13/cobra"
)

// listFailures prints every failure and exits with the failure count.
func listFailures(cmd *cobra.Command, run *runContext) error {
	p := display.NewPrinter(cmd.OutOrStdout(), run.useColor)
	p.ListFailures(run.failures, run.cfg.Hint)
	return exitWith(len(run.failures))
}

// showFailure stages the got/want blocks of failure n and diffs them,
// exiting with the diff status.
func showFailure(cmd *cobra.Command, run *runContext, n int) error {
	f, err := testlog.Select(run.failures, n)
	if err != nil {
		return err
	}
	run.log.LogDebug(fmt.Sprintf("failure %d is %s at line %d", n, f.Name, f.Line+1))

	blocks, err := testlog.ExtractBlocks(run.lines, f)
	if err != nil {
		return err
	}
	if len(blocks.Got) == 0 {
		display.WarnEmptyBlock("got", f.Name).Display(cmd.ErrOrStderr(), run.useColor)
	}
	if len(blocks.Want) == 0 {
		display.WarnEmptyBlock("want", f.Name).Display(cmd.ErrOrStderr(), run.useColor)
	}

	gotPath, wantPath, err := scratch.Write(run.cfg.LogFile, blocks, run.log)
	if err != nil {
		return err
	}
	run.log.LogDebug(fmt.Sprintf("wrote %s (%d lines) and %s (%d lines)", gotPath, len(blocks.Got), wantPath, len(blocks.Want)))

	// Uncolored output streams straight from the provider, byte for byte.
	var stream io.Writer
	if !run.useColor {
		stream = cmd.OutOrStdout()
	}
	provider, err := diff.New(run.cfg.Diff, stream, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	run.log.LogDebug(fmt.Sprintf("comparing with %s provider", run.cfg.Diff.Provider))
	if run.cfg.Diff.Provider == config.ProviderExternal {
		argv := append([]string{run.cfg.Diff.Command}, run.cfg.Diff.Args...)
		argv = append(argv, gotPath, wantPath)
		run.log.LogTrace("running " + strings.Join(argv, " "))
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if run.cfg.Diff.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, run.cfg.Diff.Timeout)
		defer cancelTimeout()
	}

	res, err := provider.Compare(ctx,
		diff.Input{Path: gotPath, Lines: blocks.Got},
		diff.Input{Path: wantPath, Lines: blocks.Want},
	)
	if err != nil {
		return err
	}

	if stream == nil {
		p := display.NewPrinter(cmd.OutOrStdout(), run.useColor)
		if err := p.Diff(res.Output); err != nil {
			return err
		}
	}

	if res.Identical {
		run.log.LogInfo(fmt.Sprintf("got and want blocks of %s are identical", f.Name))
	}
	return exitWith(res.ExitCode)
}
