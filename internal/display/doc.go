// Package display renders difftest's terminal output: the failure list, the
// diff of a selected failure, and warnings.
//
// Color is decided once per output stream with ColorEnabled and passed to a
// Printer, so tests can render plain text regardless of the terminal:
//
//	useColor := display.ColorEnabled(cfg.Color, os.Stdout)
//	p := display.NewPrinter(os.Stdout, useColor)
//	p.ListFailures(failures, cfg.Hint)
//
// Warnings go to stderr:
//
//	display.Warning{
//	    Title:      "Empty want block",
//	    Message:    "TestFoo printed nothing after want:",
//	    Suggestion: "Check that the test prints its expected output",
//	}.Display(os.Stderr, useColor)
package display
