package diff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// External runs a line-oriented diff tool on the two input files.
type External struct {
	// Command is the executable, "diff" by default.
	Command string
	// Args go before the two file names.
	Args []string
	// Stdout, when set, receives the tool's output byte for byte as it runs.
	// Result.Output always holds a copy.
	Stdout io.Writer
	// Stderr receives the tool's standard error; nil discards it.
	Stderr io.Writer
}

// Compare runs Command with Args and the two paths. A non-zero exit status is
// reported through Result.ExitCode; only a tool that cannot run is an error.
func (e *External) Compare(ctx context.Context, got, want Input) (*Result, error) {
	if got.Path == "" || want.Path == "" {
		return nil, fmt.Errorf("external diff needs file paths for both inputs")
	}

	command := e.Command
	if command == "" {
		command = "diff"
	}

	args := make([]string, 0, len(e.Args)+2)
	args = append(args, e.Args...)
	args = append(args, got.Path, want.Path)

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdout = &stdout
	if e.Stdout != nil {
		cmd.Stdout = io.MultiWriter(&stdout, e.Stdout)
	}
	cmd.Stderr = e.Stderr

	exitCode := ExitIdentical
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s interrupted: %w", command, ctx.Err())
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to run %s: %w", command, err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &Result{
		Identical: exitCode == ExitIdentical,
		ExitCode:  exitCode,
		Output:    stdout.Bytes(),
	}, nil
}
