package cli

import "fmt"

// ExitError carries a specific process exit code out of a command. lock,
// sync, and doctor use codes 0/1/2 as a scripting contract (healthy / drift
// or pending changes / failure), so their non-zero outcomes must not
// collapse into a generic exit 1.
type ExitError struct {
	Code int
	Err  error // optional; already-reported failures leave this nil
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Reported says whether the failure was already printed by the command.
func (e *ExitError) Reported() bool { return e.Err == nil }
