// Package diff compares a failing test's got and want blocks line by line.
//
// Two providers share the Provider interface: External runs a diff tool on
// the staged scratch files, Builtin computes the difference in process with
// go-difflib. Both report the same exit code convention as diff(1): 0 when
// the inputs are identical, 1 when they differ.
package diff

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/harrison/difftest/internal/config"
)

// ErrUnknownProvider is returned by New for an unrecognized provider name.
var ErrUnknownProvider = errors.New("unknown diff provider")

// Exit codes shared by all providers.
const (
	ExitIdentical = 0
	ExitDifferent = 1
)

// Input is one side of a comparison. External providers use Path, builtin
// providers use Lines and fall back to reading Path when Lines is nil.
type Input struct {
	Path  string
	Lines []string
}

// Op is the kind of a line-level change.
type Op int

const (
	Delete Op = iota + 1
	Insert
	Replace
)

func (o Op) String() string {
	switch o {
	case Delete:
		return "delete"
	case Insert:
		return "insert"
	case Replace:
		return "replace"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Change is one differing region. Ranges are zero-based and half-open.
type Change struct {
	Op        Op
	GotStart  int
	GotEnd    int
	WantStart int
	WantEnd   int
	Got       []string
	Want      []string
}

// Result is the outcome of a comparison.
type Result struct {
	Identical bool
	// ExitCode follows diff(1): 0 identical, 1 different, >1 trouble.
	ExitCode int
	// Output is the rendered diff text.
	Output []byte
	// Changes is nil for providers that only produce text.
	Changes []Change
}

// Provider compares a got block against a want block.
type Provider interface {
	Compare(ctx context.Context, got, want Input) (*Result, error)
}

// New returns the provider selected by cfg. A non-nil stdout receives the
// rendered diff as it is produced; stderr receives the external tool's
// standard error.
func New(cfg config.DiffConfig, stdout, stderr io.Writer) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderExternal:
		return &External{
			Command: cfg.Command,
			Args:    cfg.Args,
			Stdout:  stdout,
			Stderr:  stderr,
		}, nil
	case config.ProviderBuiltin:
		return &Builtin{
			Format:  cfg.Format,
			Context: cfg.Context,
			Stdout:  stdout,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
