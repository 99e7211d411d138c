package cmd

import "fmt"

// ExitError carries a process exit status that is not a failure of difftest
// itself: the failure count in list mode, the diff status in detail mode.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// exitWith returns nil for code 0 so cobra treats it as success.
func exitWith(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code}
}
