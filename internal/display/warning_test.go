package display

import (
	"bytes"
	"strings"
	"testing"
)

func TestDisplayWarning_Plain(t *testing.T) {
	var buf bytes.Buffer
	w := Warning{
		Title:      "Empty want block",
		Message:    "ExampleSum printed no lines in its want block",
		Suggestion: "Check the log",
	}

	w.Display(&buf, false)

	want := "Warning: Empty want block\n" +
		"    ExampleSum printed no lines in its want block\n" +
		"    Suggestion: Check the log\n"
	if buf.String() != want {
		t.Errorf("Display() = %q, want %q", buf.String(), want)
	}
}

func TestDisplayWarning_TitleOnly(t *testing.T) {
	var buf bytes.Buffer
	Warning{Title: "Something odd"}.Display(&buf, false)

	if buf.String() != "Warning: Something odd\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestDisplayWarning_Color(t *testing.T) {
	var buf bytes.Buffer
	Warning{Title: "Something odd"}.Display(&buf, true)

	output := buf.String()
	if !strings.Contains(output, "\x1b[33m") {
		t.Error("Expected yellow ANSI color code in output")
	}
	if !strings.Contains(output, "\x1b[0m") {
		t.Error("Expected ANSI reset code in output")
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("Expected trailing newline after reset")
	}
}

func TestWarnEmptyBlock(t *testing.T) {
	w := WarnEmptyBlock("got", "TestFoo")
	if w.Title != "Empty got block" {
		t.Errorf("Title = %q", w.Title)
	}
	if !strings.Contains(w.Message, "TestFoo") {
		t.Errorf("Message should name the test, got %q", w.Message)
	}
}
