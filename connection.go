package odbc

import "log/slog"

// Connection wraps one ODBC connection handle. It is created in the
// allocated-unconnected state, moves to connected after a successful
// Connect, and is safe to retry or discard after a failed one.
//
// A Connection belongs to the worker that created it and must not be
// shared across goroutines.
type Connection struct {
	dm        DriverManager
	handle    SQLHANDLE
	connected bool
	alias     string
	log       *slog.Logger
}

// NewConnection allocates a connection handle from a live environment.
// The environment only needs to outlive the connection; it is not
// retained beyond construction.
func NewConnection(env *Environment) (*Connection, error) {
	if env == nil || env.handle == SQL_NULL_HANDLE {
		return nil, newSetupError("connection requires a live environment")
	}

	handle, ret := env.dm.AllocHandle(SQL_HANDLE_DBC, env.handle)
	if !succeeded(ret) {
		return nil, newSetupError("failed to allocate connection handle")
	}

	return &Connection{
		dm:     env.dm,
		handle: handle,
		log:    slog.Default(),
	}, nil
}

// Connect opens the session using a full connection string, without
// prompting. On failure the connection stays allocated-unconnected.
func (c *Connection) Connect(connStr string) error {
	if ret := c.dm.DriverConnect(c.handle, connStr); !succeeded(ret) {
		return &DriverError{
			Op:   "connect",
			Diag: diagnose(c.dm, SQL_HANDLE_DBC, c.handle, "connection"),
		}
	}

	c.connected = true
	c.log.Debug("connection established", slog.String("alias", c.alias))
	return nil
}

// Disconnect closes the session explicitly, letting the caller observe a
// disconnect failure before Close would swallow it.
func (c *Connection) Disconnect() error {
	if ret := c.dm.Disconnect(c.handle); !succeeded(ret) {
		return &DriverError{
			Op:   "disconnect",
			Diag: diagnose(c.dm, SQL_HANDLE_DBC, c.handle, "disconnection"),
		}
	}

	c.connected = false
	return nil
}

// Close disconnects if still connected and frees the handle. A disconnect
// failure at this point is logged and swallowed; the handle is released
// regardless. Close is a no-op on an already-closed connection.
func (c *Connection) Close() error {
	if c.handle == SQL_NULL_HANDLE {
		return nil
	}

	if c.connected {
		c.log.Debug("closing connection", slog.String("alias", c.alias))
		if ret := c.dm.Disconnect(c.handle); !succeeded(ret) {
			diag := diagnose(c.dm, SQL_HANDLE_DBC, c.handle, "disconnection")
			c.log.Warn("disconnect failed while closing connection",
				slog.String("alias", c.alias),
				slog.String("diag", diag.String()))
		}
		c.connected = false
	}

	c.dm.FreeHandle(SQL_HANDLE_DBC, c.handle)
	c.handle = SQL_NULL_HANDLE
	return nil
}

// Connected reports whether the session is currently open.
func (c *Connection) Connected() bool {
	return c.connected
}

// Alias returns the pool alias this connection was created under, or the
// empty string for a standalone connection.
func (c *Connection) Alias() string {
	return c.alias
}

// Handle returns the underlying native handle.
func (c *Connection) Handle() SQLHANDLE {
	return c.handle
}
