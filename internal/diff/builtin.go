package diff

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/harrison/difftest/internal/config"
	"github.com/harrison/difftest/internal/testlog"
	"github.com/pmezard/go-difflib/difflib"
)

const noNewline = "\\ No newline at end of file\n"

// Builtin computes line differences in process.
type Builtin struct {
	// Format is "normal" (diff(1) default output) or "unified".
	Format string
	// Context is the number of unified context lines.
	Context int
	// Stdout, when set, receives the rendered diff.
	Stdout io.Writer
}

// Compare diffs got against want. Missing Lines are read from Path.
func (b *Builtin) Compare(ctx context.Context, got, want Input) (*Result, error) {
	a, err := inputLines(got)
	if err != nil {
		return nil, err
	}
	w, err := inputLines(want)
	if err != nil {
		return nil, err
	}

	changes := Changes(a, w)
	result := &Result{
		Identical: len(changes) == 0,
		ExitCode:  ExitIdentical,
		Changes:   changes,
	}
	if result.Identical {
		return result, nil
	}
	result.ExitCode = ExitDifferent

	switch b.Format {
	case config.FormatUnified:
		out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        terminated(a),
			B:        terminated(w),
			FromFile: label(got, "got"),
			ToFile:   label(want, "want"),
			Context:  b.Context,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render unified diff: %w", err)
		}
		result.Output = []byte(out)
	case config.FormatNormal, "":
		result.Output = []byte(FormatNormal(changes))
	default:
		return nil, fmt.Errorf("unknown diff format %q", b.Format)
	}

	if b.Stdout != nil {
		if _, err := b.Stdout.Write(result.Output); err != nil {
			return nil, fmt.Errorf("failed to write diff: %w", err)
		}
	}
	return result, nil
}

// Changes returns the differing regions between got and want.
func Changes(got, want []string) []Change {
	var changes []Change
	m := difflib.NewMatcher(got, want)
	for _, oc := range m.GetOpCodes() {
		var op Op
		switch oc.Tag {
		case 'r':
			op = Replace
		case 'd':
			op = Delete
		case 'i':
			op = Insert
		default:
			continue
		}
		changes = append(changes, Change{
			Op:        op,
			GotStart:  oc.I1,
			GotEnd:    oc.I2,
			WantStart: oc.J1,
			WantEnd:   oc.J2,
			Got:       got[oc.I1:oc.I2],
			Want:      want[oc.J1:oc.J2],
		})
	}
	return changes
}

// FormatNormal renders changes the way diff(1) prints its normal format:
//
//	1c1
//	< line-a
//	---
//	> line-b
func FormatNormal(changes []Change) string {
	var sb strings.Builder
	for _, c := range changes {
		switch c.Op {
		case Replace:
			fmt.Fprintf(&sb, "%sc%s\n", lineRange(c.GotStart, c.GotEnd), lineRange(c.WantStart, c.WantEnd))
			writeSide(&sb, "< ", c.Got)
			sb.WriteString("---\n")
			writeSide(&sb, "> ", c.Want)
		case Delete:
			fmt.Fprintf(&sb, "%sd%d\n", lineRange(c.GotStart, c.GotEnd), c.WantStart)
			writeSide(&sb, "< ", c.Got)
		case Insert:
			fmt.Fprintf(&sb, "%da%s\n", c.GotStart, lineRange(c.WantStart, c.WantEnd))
			writeSide(&sb, "> ", c.Want)
		}
	}
	return sb.String()
}

// lineRange prints a half-open zero-based range as diff(1) one-based lines.
func lineRange(start, end int) string {
	if end-start == 1 {
		return fmt.Sprintf("%d", start+1)
	}
	return fmt.Sprintf("%d,%d", start+1, end)
}

func writeSide(sb *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		sb.WriteString(prefix)
		sb.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			sb.WriteString("\n")
			sb.WriteString(noNewline)
		}
	}
}

func terminated(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		out[i] = line
	}
	return out
}

func inputLines(in Input) ([]string, error) {
	if in.Lines != nil || in.Path == "" {
		return in.Lines, nil
	}
	return testlog.ReadLines(in.Path)
}

func label(in Input, fallback string) string {
	if in.Path != "" {
		return in.Path
	}
	return fallback
}
