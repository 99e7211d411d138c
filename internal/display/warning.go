package display

import (
	"fmt"
	"io"
	"strings"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string // Main warning title
	Message    string // Detailed explanation (optional)
	Suggestion string // Action to take (optional)
}

// Display writes the warning to out, in yellow when useColor is set
func (w Warning) Display(out io.Writer, useColor bool) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion: ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	text := b.String()
	if useColor {
		text = newColorScheme(true).warn.Sprint(strings.TrimSuffix(text, "\n")) + "\n"
	}
	fmt.Fprint(out, text)
}

// WarnEmptyBlock builds the warning shown when a failure's got or want block
// has no lines.
func WarnEmptyBlock(block, test string) Warning {
	return Warning{
		Title:      fmt.Sprintf("Empty %s block", block),
		Message:    fmt.Sprintf("%s printed no lines in its %s block", test, block),
		Suggestion: "Check that the log was captured with go test -v",
	}
}
