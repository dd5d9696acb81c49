package odbc

// Environment wraps one ODBC environment handle. A single Environment
// serves all connections created by one worker; it must stay alive until
// every Connection allocated from it has been closed. Close releases the
// handle exactly once and is a no-op afterwards.
type Environment struct {
	dm     DriverManager
	handle SQLHANDLE
}

// NewEnvironment allocates an environment handle and selects the ODBC 3
// behavior required before any connection can be allocated. A nil dm
// selects the platform driver manager.
func NewEnvironment(dm DriverManager) (*Environment, error) {
	if dm == nil {
		var err error
		dm, err = DefaultDriverManager()
		if err != nil {
			return nil, newSetupError("%v", err)
		}
	}

	handle, ret := dm.AllocHandle(SQL_HANDLE_ENV, SQL_NULL_HANDLE)
	if !succeeded(ret) {
		return nil, newSetupError("failed to allocate environment handle")
	}

	if ret := dm.SetEnvAttr(handle, SQL_ATTR_ODBC_VERSION, SQL_OV_ODBC3); !succeeded(ret) {
		dm.FreeHandle(SQL_HANDLE_ENV, handle)
		return nil, newSetupError("failed to set environment attribute to ODBC 3.0")
	}

	return &Environment{dm: dm, handle: handle}, nil
}

// Close frees the environment handle. All connections derived from this
// environment must already be closed.
func (e *Environment) Close() error {
	if e.handle == SQL_NULL_HANDLE {
		return nil
	}
	e.dm.FreeHandle(SQL_HANDLE_ENV, e.handle)
	e.handle = SQL_NULL_HANDLE
	return nil
}

// Handle returns the underlying native handle.
func (e *Environment) Handle() SQLHANDLE {
	return e.handle
}

// Manager returns the driver manager this environment was allocated from.
func (e *Environment) Manager() DriverManager {
	return e.dm
}
