package display

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/harrison/difftest/internal/testlog"
)

// ListHeader opens the failure list.
const ListHeader = "\n=== FAILING TESTS:"

// Printer writes difftest output to one stream.
type Printer struct {
	out    io.Writer
	scheme *colorScheme
}

// NewPrinter creates a Printer; useColor usually comes from ColorEnabled.
func NewPrinter(out io.Writer, useColor bool) *Printer {
	return &Printer{
		out:    out,
		scheme: newColorScheme(useColor),
	}
}

// ListFailures prints the header, one "<rank> <marker line>" entry per
// failure in scan order, and the hint line. Marker lines are printed with
// their own terminator, or none.
func (p *Printer) ListFailures(failures []testlog.Failure, hint string) {
	fmt.Fprintln(p.out, ListHeader)
	for _, f := range failures {
		text := f.Text
		if rest, ok := strings.CutPrefix(text, testlog.FailPrefix); ok {
			text = p.scheme.fail.Sprint(testlog.FailPrefix) + rest
		}
		fmt.Fprintf(p.out, "%s %s", p.scheme.label.Sprint(f.Rank), text)
	}
	fmt.Fprintln(p.out, hint)
}

// Diff writes diff output, coloring removed lines red, added lines green and
// hunk headers cyan. Both normal and unified formats are recognized. Line
// terminators are kept as they are, and with color off output is copied
// unchanged.
func (p *Printer) Diff(output []byte) error {
	if !p.scheme.enabled {
		_, err := p.out.Write(output)
		return err
	}

	var buf bytes.Buffer
	for _, line := range bytes.SplitAfter(output, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		content, eol := splitEOL(string(line))
		buf.WriteString(p.colorDiffLine(content))
		buf.WriteString(eol)
	}
	_, err := p.out.Write(buf.Bytes())
	return err
}

// splitEOL separates a "\n" or "\r\n" terminator from line.
func splitEOL(line string) (content, eol string) {
	if c, ok := strings.CutSuffix(line, "\r\n"); ok {
		return c, "\r\n"
	}
	if c, ok := strings.CutSuffix(line, "\n"); ok {
		return c, "\n"
	}
	return line, ""
}

func (p *Printer) colorDiffLine(line string) string {
	switch {
	case line == "---":
		return line
	case strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "+++ "):
		return p.scheme.header.Sprint(line)
	case strings.HasPrefix(line, "@@"):
		return p.scheme.label.Sprint(line)
	case strings.HasPrefix(line, "<"), strings.HasPrefix(line, "-"):
		return p.scheme.fail.Sprint(line)
	case strings.HasPrefix(line, ">"), strings.HasPrefix(line, "+"):
		return p.scheme.add.Sprint(line)
	case isNormalHunkHeader(line):
		return p.scheme.label.Sprint(line)
	default:
		return line
	}
}

// normalHunkHeader matches "1c1", "2,3d1", "0a1,2".
var normalHunkHeader = regexp.MustCompile(`^\d+(,\d+)?[acd]\d+(,\d+)?$`)

func isNormalHunkHeader(line string) bool {
	return normalHunkHeader.MatchString(line)
}
