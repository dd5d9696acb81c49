package odbc

// Statement wraps one ODBC statement handle bound to a single connection.
// Statements are short-lived: one per query, closed when the query is done,
// never cached.
type Statement struct {
	dm     DriverManager
	handle SQLHANDLE
}

// NewStatement allocates a statement handle from a connection. The
// connection only needs to outlive the statement; it is not retained
// beyond construction.
func NewStatement(conn *Connection) (*Statement, error) {
	if conn == nil || conn.handle == SQL_NULL_HANDLE {
		return nil, newSetupError("statement requires a live connection")
	}

	handle, ret := conn.dm.AllocHandle(SQL_HANDLE_STMT, conn.handle)
	if !succeeded(ret) {
		return nil, newSetupError("failed to allocate statement handle")
	}

	return &Statement{dm: conn.dm, handle: handle}, nil
}

// ExecDirect executes a complete SQL text with no parameter binding.
//
// Some providers report DDL as failed while also reporting a row count of
// -1 ("not applicable"); whether to treat that combination as a soft
// success is a caller decision, made by checking RowCount after a failed
// ExecDirect. This method reports the failure as-is.
func (s *Statement) ExecDirect(query string) error {
	if ret := s.dm.ExecDirect(s.handle, query); !succeeded(ret) {
		return &DriverError{
			Op:   "execute",
			Diag: diagnose(s.dm, SQL_HANDLE_STMT, s.handle, "execution"),
		}
	}
	return nil
}

// Fetch advances the result cursor by one row. It returns true when a row
// is available and false once the result set is exhausted; the exhausted
// state is terminal, and further calls keep returning false without error.
func (s *Statement) Fetch() (bool, error) {
	ret := s.dm.Fetch(s.handle)
	if succeeded(ret) {
		return true, nil
	}
	if ret == SQL_NO_DATA {
		return false, nil
	}

	return false, &DriverError{
		Op:   "fetch",
		Diag: diagnose(s.dm, SQL_HANDLE_STMT, s.handle, "fetch"),
	}
}

// RowCount returns the number of rows affected by the last operation. The
// value is the driver's own, including provider sentinels such as -1 for
// "unknown/not applicable", passed through for the caller to interpret.
func (s *Statement) RowCount() (int64, error) {
	count, ret := s.dm.RowCount(s.handle)
	if !succeeded(ret) {
		return 0, &DriverError{
			Op:   "row count",
			Diag: diagnose(s.dm, SQL_HANDLE_STMT, s.handle, "row count"),
		}
	}
	return int64(count), nil
}

// NumResultCols returns the number of columns in the current result set.
func (s *Statement) NumResultCols() (int, error) {
	cols, ret := s.dm.NumResultCols(s.handle)
	if !succeeded(ret) {
		return 0, &DriverError{
			Op:   "describe result",
			Diag: diagnose(s.dm, SQL_HANDLE_STMT, s.handle, "result description"),
		}
	}
	return int(cols), nil
}

// ColumnName returns the name of the 1-based result column.
func (s *Statement) ColumnName(column int) (string, error) {
	name, _, ret := s.dm.DescribeCol(s.handle, SQLUSMALLINT(column))
	if !succeeded(ret) {
		return "", &DriverError{
			Op:   "describe column",
			Diag: diagnose(s.dm, SQL_HANDLE_STMT, s.handle, "column description"),
		}
	}
	return name, nil
}

// Close frees the statement handle. It is a no-op when called again.
func (s *Statement) Close() error {
	if s.handle == SQL_NULL_HANDLE {
		return nil
	}
	s.dm.FreeHandle(SQL_HANDLE_STMT, s.handle)
	s.handle = SQL_NULL_HANDLE
	return nil
}

// Handle returns the underlying native handle.
func (s *Statement) Handle() SQLHANDLE {
	return s.handle
}
