// Package testlog reads a saved `go test -v` log and locates failing tests
// together with the got/want blocks they printed.
//
// The log layout it understands is the one produced by example tests and by
// tests that print their expected output after a "want:" line:
//
//	=== RUN   TestSomething
//	--- FAIL: TestSomething (0.00s)
//	got:
//	line-a
//	want:
//	line-b
//	FAIL
//
// Lines are kept with their terminators so blocks can be written back out
// verbatim.
package testlog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Sentinel line prefixes recognized in the log.
const (
	RunPrefix  = "=== RUN"
	FailPrefix = "--- FAIL:"
	WantPrefix = "want:"
	EndPrefix  = "FAIL"
)

var (
	// ErrIndexOutOfRange is returned when a failure rank does not exist in the log.
	ErrIndexOutOfRange = errors.New("failure index out of range")

	// ErrMalformedLog is returned when a failure's got/want blocks are not
	// closed by the expected sentinel lines.
	ErrMalformedLog = errors.New("malformed test log")
)

// Failure marks one failing test in the log.
type Failure struct {
	// Rank is the zero-based position among all failures, in file order.
	Rank int
	// Line is the zero-based index of the "--- FAIL:" line.
	Line int
	// Text is the marker line verbatim, terminator included.
	Text string
	// Name is the test name from the marker, e.g. "TestFoo/sub".
	Name string
	// Elapsed is the duration printed in parentheses, e.g. "0.00s".
	Elapsed string
}

// Blocks holds the lines a failing test produced and the lines it expected.
type Blocks struct {
	Got  []string
	Want []string
}

// ReadLines reads the whole log at path and splits it into lines that keep
// their "\n" terminators.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test log: %w", err)
	}
	return SplitLines(data), nil
}

// SplitLines splits data after every newline. A trailing fragment without a
// newline becomes the last line.
func SplitLines(data []byte) []string {
	var lines []string
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lines = append(lines, string(data))
			break
		}
		lines = append(lines, string(data[:i+1]))
		data = data[i+1:]
	}
	return lines
}

// FindFailures scans lines once and returns every failure in file order.
// A failure is a "--- FAIL:" line directly following a "=== RUN" line.
func FindFailures(lines []string) []Failure {
	var failures []Failure
	for i := 0; i+1 < len(lines); i++ {
		if !strings.HasPrefix(lines[i], RunPrefix) {
			continue
		}
		next := lines[i+1]
		if !strings.HasPrefix(next, FailPrefix) {
			continue
		}
		name, elapsed := ParseMarker(next)
		failures = append(failures, Failure{
			Rank:    len(failures),
			Line:    i + 1,
			Text:    next,
			Name:    name,
			Elapsed: elapsed,
		})
	}
	return failures
}

// ParseMarker extracts the test name and elapsed time from a
// "--- FAIL: Name (0.00s)" line. Missing parts come back empty.
func ParseMarker(text string) (name, elapsed string) {
	rest := strings.TrimSpace(strings.TrimPrefix(text, FailPrefix))
	if rest == "" {
		return "", ""
	}

	if open := strings.LastIndex(rest, " ("); open >= 0 && strings.HasSuffix(rest, ")") {
		elapsed = rest[open+2 : len(rest)-1]
		rest = strings.TrimSpace(rest[:open])
	}

	if fields := strings.Fields(rest); len(fields) > 0 {
		name = fields[0]
	}
	return name, elapsed
}

// Select returns the failure with rank n.
func Select(failures []Failure, n int) (Failure, error) {
	if n < 0 || n >= len(failures) {
		return Failure{}, fmt.Errorf("%w: %d (log has %d failures)", ErrIndexOutOfRange, n, len(failures))
	}
	return failures[n], nil
}

// ExtractBlocks slices the got and want blocks that follow failure f.
//
// The got block starts two lines after the marker and ends before the first
// "want:" line. The want block follows that line and ends before the next
// line starting with "FAIL" or "=== RUN".
func ExtractBlocks(lines []string, f Failure) (*Blocks, error) {
	k := f.Line + 2
	blocks := &Blocks{}

	for ; k < len(lines) && !strings.HasPrefix(lines[k], WantPrefix); k++ {
		blocks.Got = append(blocks.Got, lines[k])
	}
	if k >= len(lines) {
		return nil, fmt.Errorf("%w: no %q line after failure %s at line %d", ErrMalformedLog, WantPrefix, f.label(), f.Line+1)
	}

	k++ // skip "want:"
	for ; k < len(lines) && !isBlockEnd(lines[k]); k++ {
		blocks.Want = append(blocks.Want, lines[k])
	}
	if k >= len(lines) {
		return nil, fmt.Errorf("%w: want block of failure %s is not terminated by %q or %q", ErrMalformedLog, f.label(), EndPrefix, RunPrefix)
	}

	return blocks, nil
}

func isBlockEnd(line string) bool {
	return strings.HasPrefix(line, EndPrefix) || strings.HasPrefix(line, RunPrefix)
}

func (f Failure) label() string {
	if f.Name != "" {
		return fmt.Sprintf("#%d (%s)", f.Rank, f.Name)
	}
	return fmt.Sprintf("#%d", f.Rank)
}
