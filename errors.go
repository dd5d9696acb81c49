package odbc

import "fmt"

// SetupError reports a failure to allocate or initialize a native handle.
// It is returned only from constructors, where no usable handle exists yet
// to carry a per-operation result; everything after construction reports
// failures as a *DriverError instead.
type SetupError struct {
	Message string
}

// Error returns the error message.
func (e *SetupError) Error() string {
	return fmt.Sprintf("odbc: %s", e.Message)
}

func newSetupError(format string, args ...any) *SetupError {
	return &SetupError{Message: fmt.Sprintf(format, args...)}
}

// DriverError is a failed driver operation together with the diagnostic
// record extracted from the handle that produced it.
type DriverError struct {
	Op   string
	Diag DiagRecord
}

// Error returns the error message.
func (e *DriverError) Error() string {
	return fmt.Sprintf("odbc: %s: %s", e.Op, e.Diag)
}

// PoolError reports that the pool could not establish a connection for an
// alias. It wraps the underlying connect failure so callers can tell
// "the pool couldn't establish this alias" apart from a query failure on
// an already-pooled connection.
type PoolError struct {
	Alias string
	Err   error
}

// Error returns the error message.
func (e *PoolError) Error() string {
	return fmt.Sprintf("odbc: failed to establish connection for alias %q: %v", e.Alias, e.Err)
}

// Unwrap returns the underlying connect failure.
func (e *PoolError) Unwrap() error {
	return e.Err
}
