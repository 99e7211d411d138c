// Package report summarizes every failure of a test log in one markdown
// document, with the got/want diff of each failure inline. The markdown can
// be rendered to a standalone HTML page.
package report

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/harrison/difftest/internal/config"
	"github.com/harrison/difftest/internal/diff"
	"github.com/harrison/difftest/internal/logger"
	"github.com/harrison/difftest/internal/testlog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Options controls report content.
type Options struct {
	// LogFile is shown in the summary line and used for diff labels.
	LogFile string
	// Context is the number of unified diff context lines.
	Context int
	// ID is stamped into the report; NewID is used when empty.
	ID string
	// Log receives a warning for each failure that cannot be sliced.
	Log logger.Logger
}

// NewID returns a fresh report identifier.
func NewID() string {
	return uuid.NewString()
}

// WriteMarkdown writes the markdown report for failures found in lines.
func WriteMarkdown(ctx context.Context, w io.Writer, lines []string, failures []testlog.Failure, opts Options) error {
	if opts.ID == "" {
		opts.ID = NewID()
	}
	if opts.Log == nil {
		opts.Log = logger.NewNoOpLogger()
	}

	// Magic comment lets tooling find and replace an earlier report.
	fmt.Fprintf(w, "<!-- difftest-report-id: %s -->\n\n", opts.ID)
	fmt.Fprintf(w, "# Failing Tests\n\n")

	if len(failures) == 0 {
		fmt.Fprintf(w, "No failing tests in `%s`.\n", opts.LogFile)
		return nil
	}

	noun := "failures"
	if len(failures) == 1 {
		noun = "failure"
	}
	fmt.Fprintf(w, "_%d %s in `%s`_\n\n", len(failures), noun, opts.LogFile)

	writeTable(w, failures)

	provider := &diff.Builtin{Format: config.FormatUnified, Context: opts.Context}
	gotLabel, wantLabel := opts.LogFile+".got", opts.LogFile+".want"

	for _, f := range failures {
		fmt.Fprintf(w, "## %d. %s\n\n", f.Rank, displayName(f))

		blocks, err := testlog.ExtractBlocks(lines, f)
		if err != nil {
			opts.Log.LogWarn(fmt.Sprintf("report: %v", err))
			fmt.Fprintf(w, "> %s\n\n", err)
			continue
		}

		res, err := provider.Compare(ctx,
			diff.Input{Path: gotLabel, Lines: nonNil(blocks.Got)},
			diff.Input{Path: wantLabel, Lines: nonNil(blocks.Want)},
		)
		if err != nil {
			return fmt.Errorf("failed to diff failure %d: %w", f.Rank, err)
		}

		if res.Identical {
			fmt.Fprintf(w, "_got and want blocks are identical_\n\n")
			continue
		}
		fmt.Fprintf(w, "```diff\n%s```\n\n", res.Output)
	}

	return nil
}

func writeTable(w io.Writer, failures []testlog.Failure) {
	fmt.Fprintf(w, "| # | Test | Elapsed | Line |\n")
	fmt.Fprintf(w, "|---|------|---------|------|\n")
	for _, f := range failures {
		elapsed := f.Elapsed
		if elapsed == "" {
			elapsed = "-"
		}
		name := strings.ReplaceAll(displayName(f), "|", "\\|")
		fmt.Fprintf(w, "| %d | `%s` | %s | %d |\n", f.Rank, name, elapsed, f.Line+1)
	}
	fmt.Fprintf(w, "\n")
}

func displayName(f testlog.Failure) string {
	if f.Name != "" {
		return f.Name
	}
	return "(unnamed)"
}

// nonNil keeps the builtin provider from reading the label as a file.
func nonNil(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}

// RenderHTML converts a markdown report into a standalone HTML page.
func RenderHTML(markdown []byte, id string) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<meta name=\"difftest-report-id\" content=\"%s\">\n", html.EscapeString(id))
	page.WriteString("<title>Failing Tests</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
