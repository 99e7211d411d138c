package display

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Color modes accepted by ColorEnabled.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ColorEnabled decides whether output to f should be colored. In auto mode
// color is used only for terminals and never when NO_COLOR is set.
func ColorEnabled(mode string, f *os.File) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// colorScheme holds the colors used for difftest output.
// Red: removed lines and failure markers
// Green: added lines
// Cyan: ranks and hunk headers
// Yellow: warnings
type colorScheme struct {
	enabled bool
	fail    *color.Color
	add     *color.Color
	label   *color.Color
	warn    *color.Color
	header  *color.Color
}

func newColorScheme(enabled bool) *colorScheme {
	s := &colorScheme{
		enabled: enabled,
		fail:    color.New(color.FgRed),
		add:     color.New(color.FgGreen),
		label:   color.New(color.FgCyan),
		warn:    color.New(color.FgYellow),
		header:  color.New(color.Bold),
	}
	for _, c := range []*color.Color{s.fail, s.add, s.label, s.warn, s.header} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}
