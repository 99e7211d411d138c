package cmd

import (
	"bytes"
	"fmt"

	"github.com/harrison/difftest/internal/report"
	"github.com/harrison/difftest/internal/scratch"
	"github.com/spf13/cobra"
)

// NewReportCommand creates the report subcommand
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a markdown summary of all failures with their diffs",
		Long: `Write one document covering every failing test in the log: a table of
failures followed by the unified got/want diff of each one.

The report is markdown by default; --html renders it to a standalone page.
Exit code is the number of failures, as in list mode.

Examples:
  difftest report > failures.md
  difftest report --html --output failures.html`,
		Args: cobra.NoArgs,
		RunE: runReport,
	}

	cmd.Flags().Bool("html", false, "Render the report as HTML")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().Int("context", 0, "Context lines around each change (default: diff.context from config)")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	run, err := newRunContext(cmd)
	if err != nil {
		return err
	}

	asHTML, _ := cmd.Flags().GetBool("html")
	output, _ := cmd.Flags().GetString("output")
	contextLines := run.cfg.Diff.Context
	if cmd.Flags().Changed("context") {
		contextLines, _ = cmd.Flags().GetInt("context")
	}
	if contextLines < 0 {
		return fmt.Errorf("--context must be >= 0, got %d", contextLines)
	}

	id := report.NewID()
	var buf bytes.Buffer
	err = report.WriteMarkdown(cmd.Context(), &buf, run.lines, run.failures, report.Options{
		LogFile: run.cfg.LogFile,
		Context: contextLines,
		ID:      id,
		Log:     run.log,
	})
	if err != nil {
		return err
	}

	data := buf.Bytes()
	if asHTML {
		data, err = report.RenderHTML(data, id)
		if err != nil {
			return err
		}
	}

	if output == "" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else {
		if err := scratch.WriteFile(output, data); err != nil {
			return err
		}
		run.log.LogInfo(fmt.Sprintf("report %s written to %s", id, output))
	}

	return exitWith(len(run.failures))
}
