package cmd

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/harrison/difftest/internal/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoFailures = `=== RUN   TestPass
--- PASS: TestPass (0.00s)
=== RUN   ExampleA
--- FAIL: ExampleA (0.00s)
got:
line-a
want:
line-b
FAIL
=== RUN   ExampleB
--- FAIL: ExampleB (0.00s)
got:
same
want:
same
FAIL
exit status 1
`

// inLogDir writes log as _difftest in a fresh working directory.
func inLogDir(t *testing.T, log string) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile("_difftest", []byte(log), 0644))
	return dir
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	return exitErr.Code
}

func requireDiffTool(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("diff"); err != nil {
		t.Skip("diff not found on PATH")
	}
}

func TestListNoFailures(t *testing.T) {
	inLogDir(t, "=== RUN   TestA\n--- PASS: TestA (0.00s)\nPASS\n")

	stdout, _, err := execute(t)
	assert.NoError(t, err)
	assert.Equal(t, "\n=== FAILING TESTS:\n=== use 'task utestdiff N=<n>' to see the diff\n", stdout)
}

func TestListFailures(t *testing.T) {
	inLogDir(t, twoFailures)

	stdout, _, err := execute(t)
	assert.Equal(t, 2, exitCode(t, err))

	want := "\n=== FAILING TESTS:\n" +
		"0 --- FAIL: ExampleA (0.00s)\n" +
		"1 --- FAIL: ExampleB (0.00s)\n" +
		"=== use 'task utestdiff N=<n>' to see the diff\n"
	assert.Equal(t, want, stdout)
}

func TestListManyFailures(t *testing.T) {
	var log bytes.Buffer
	for i := 0; i < 5; i++ {
		log.WriteString("=== RUN   TestN" + strconv.Itoa(i) + "\n--- FAIL: TestN" + strconv.Itoa(i) + " (0.00s)\n")
	}
	inLogDir(t, log.String())

	stdout, _, err := execute(t)
	assert.Equal(t, 5, exitCode(t, err))
	for i := 0; i < 5; i++ {
		assert.Contains(t, stdout, strconv.Itoa(i)+" --- FAIL: TestN"+strconv.Itoa(i)+" (0.00s)\n")
	}
}

func TestDetailWritesScratchFiles(t *testing.T) {
	dir := inLogDir(t, twoFailures)

	_, _, err := execute(t, "--diff", "builtin", "0")
	assert.Equal(t, 1, exitCode(t, err))

	got, err := os.ReadFile(filepath.Join(dir, "_difftest.got"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(dir, "_difftest.want"))
	require.NoError(t, err)

	assert.Equal(t, "line-a\n", string(got))
	assert.Equal(t, "line-b\n", string(want))
}

func TestDetailBuiltinDiff(t *testing.T) {
	inLogDir(t, twoFailures)

	t.Run("different", func(t *testing.T) {
		stdout, _, err := execute(t, "--diff", "builtin", "0")
		assert.Equal(t, 1, exitCode(t, err))
		assert.Equal(t, "1c1\n< line-a\n---\n> line-b\n", stdout)
	})

	t.Run("identical", func(t *testing.T) {
		stdout, _, err := execute(t, "--diff", "builtin", "1")
		assert.NoError(t, err)
		assert.Empty(t, stdout)
	})
}

func TestDetailExternalDiff(t *testing.T) {
	requireDiffTool(t)
	inLogDir(t, twoFailures)

	t.Run("different", func(t *testing.T) {
		stdout, _, err := execute(t, "0")
		assert.Equal(t, 1, exitCode(t, err))
		assert.Contains(t, stdout, "< line-a")
		assert.Contains(t, stdout, "> line-b")
	})

	t.Run("identical", func(t *testing.T) {
		stdout, _, err := execute(t, "1")
		assert.NoError(t, err)
		assert.Empty(t, stdout)
	})
}

func TestDetailIndexOutOfRange(t *testing.T) {
	inLogDir(t, twoFailures)

	_, _, err := execute(t, "--diff", "builtin", "2")
	assert.ErrorIs(t, err, testlog.ErrIndexOutOfRange)

	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestDetailNonIntegerIndex(t *testing.T) {
	inLogDir(t, twoFailures)

	_, _, err := execute(t, "first")
	var numErr *strconv.NumError
	assert.ErrorAs(t, err, &numErr)
}

func TestDetailMalformedLog(t *testing.T) {
	inLogDir(t, "=== RUN   TestA\n--- FAIL: TestA (0.00s)\ngot:\nx\nFAIL\n")

	_, _, err := execute(t, "--diff", "builtin", "0")
	assert.ErrorIs(t, err, testlog.ErrMalformedLog)
}

func TestDetailEmptyBlockWarning(t *testing.T) {
	inLogDir(t, "=== RUN   ExampleA\n--- FAIL: ExampleA (0.00s)\ngot:\nwant:\nx\nFAIL\n")

	stdout, stderr, err := execute(t, "--diff", "builtin", "0")
	assert.Equal(t, 1, exitCode(t, err))
	assert.Equal(t, "0a1\n> x\n", stdout)
	assert.Contains(t, stderr, "Warning: Empty got block")
}

func TestMissingLogFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, _, err := execute(t)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
}

func TestLogFlagAndConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile("ci.log", []byte(twoFailures), 0644))
	require.NoError(t, os.WriteFile(".difftest.yaml", []byte("hint: pick one\ndiff:\n  provider: builtin\n  format: unified\n"), 0644))

	stdout, _, err := execute(t, "--log", "ci.log")
	assert.Equal(t, 2, exitCode(t, err))
	assert.Contains(t, stdout, "\npick one\n")

	stdout, _, err = execute(t, "--log", "ci.log", "0")
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, stdout, "--- ci.log.got")
	assert.Contains(t, stdout, "-line-a\n+line-b\n")
	assert.FileExists(t, filepath.Join(dir, "ci.log.got"))
	assert.FileExists(t, filepath.Join(dir, "ci.log.want"))
}

func TestInvalidFlagValue(t *testing.T) {
	inLogDir(t, twoFailures)

	_, _, err := execute(t, "--diff", "magic", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestDebugLoggingGoesToStderr(t *testing.T) {
	inLogDir(t, twoFailures)

	stdout, stderr, err := execute(t, "--log-level", "debug", "--diff", "builtin", "1")
	assert.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "[DEBUG] read 17 lines from _difftest")
	assert.Contains(t, stderr, "[INFO] found 2 failing tests")
}

const crlfFailure = "=== RUN   ExampleA\r\n--- FAIL: ExampleA (0.00s)\r\ngot:\r\nline-a\r\nwant:\r\nline-b\r\nFAIL\r\n"

func TestDetailCRLFPassthrough(t *testing.T) {
	want := "1c1\n< line-a\r\n---\n> line-b\r\n"

	t.Run("builtin", func(t *testing.T) {
		inLogDir(t, crlfFailure)

		stdout, _, err := execute(t, "--diff", "builtin", "0")
		assert.Equal(t, 1, exitCode(t, err))
		assert.Equal(t, want, stdout)
	})

	t.Run("external", func(t *testing.T) {
		requireDiffTool(t)
		inLogDir(t, crlfFailure)

		stdout, _, err := execute(t, "0")
		assert.Equal(t, 1, exitCode(t, err))
		assert.Equal(t, want, stdout)
	})
}

func TestDetailLongLine(t *testing.T) {
	long := strings.Repeat("x", 2<<20)
	inLogDir(t, "=== RUN   ExampleBig\n--- FAIL: ExampleBig (0.00s)\ngot:\n"+long+"\nwant:\ny\nFAIL\n")

	stdout, _, err := execute(t, "--diff", "builtin", "0")
	assert.Equal(t, 1, exitCode(t, err))
	assert.Equal(t, "1c1\n< "+long+"\n---\n> y\n", stdout)
}

func TestListMarkerWithoutTerminator(t *testing.T) {
	inLogDir(t, "=== RUN   TestLast\n--- FAIL: TestLast (0.00s)")

	stdout, _, err := execute(t, "--log-level", "error")
	assert.Equal(t, 1, exitCode(t, err))
	assert.Equal(t, "\n=== FAILING TESTS:\n0 --- FAIL: TestLast (0.00s)=== use 'task utestdiff N=<n>' to see the diff\n", stdout)
}

func TestTraceLogging(t *testing.T) {
	requireDiffTool(t)
	inLogDir(t, twoFailures)

	_, stderr, err := execute(t, "--log-level", "trace", "0")
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, stderr, "[TRACE] failure 0: ExampleA at line 4")
	assert.Contains(t, stderr, "[TRACE] failure 1: ExampleB at line 11")
	assert.Contains(t, stderr, "[TRACE] staged 1 got lines in _difftest.got")
	assert.Contains(t, stderr, "[TRACE] running diff _difftest.got _difftest.want")
	assert.NotContains(t, stderr, "\x1b[")
}

func TestLogColorFollowsColorFlag(t *testing.T) {
	inLogDir(t, twoFailures)

	_, stderr, err := execute(t, "--color", "always", "--log-level", "info")
	assert.Equal(t, 2, exitCode(t, err))
	assert.Contains(t, stderr, "\x1b[34mINFO\x1b[0m] found 2 failing tests")

	_, stderr, err = execute(t, "--color", "never", "--log-level", "info")
	assert.Equal(t, 2, exitCode(t, err))
	assert.Contains(t, stderr, "[INFO] found 2 failing tests")
	assert.NotContains(t, stderr, "\x1b[")
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
