package odbc

// DriverManager is the fixed call surface this package needs from an ODBC
// driver manager. The production implementation binds the platform library
// at runtime (see native.go); MockManager provides an in-memory
// implementation with the same semantics for tests and embedding
// applications that want to run without a driver manager installed.
//
// Every call returns a tri-state SQLRETURN: success, success-with-info, or
// an error code. Diagnostics for a failed call must be read with GetDiagRec
// before the next call on the same handle.
type DriverManager interface {
	// AllocHandle allocates a handle of the given type under parent.
	// Environment handles take SQL_NULL_HANDLE as parent.
	AllocHandle(handleType SQLSMALLINT, parent SQLHANDLE) (SQLHANDLE, SQLRETURN)

	// FreeHandle releases a handle previously returned by AllocHandle.
	FreeHandle(handleType SQLSMALLINT, handle SQLHANDLE) SQLRETURN

	// SetEnvAttr sets an integer environment attribute.
	SetEnvAttr(env SQLHANDLE, attr SQLINTEGER, value SQLINTEGER) SQLRETURN

	// DriverConnect opens a session using a full connection string,
	// without prompting.
	DriverConnect(dbc SQLHANDLE, connStr string) SQLRETURN

	// Disconnect closes the session on a connected handle.
	Disconnect(dbc SQLHANDLE) SQLRETURN

	// ExecDirect executes a complete SQL text with no parameter binding.
	ExecDirect(stmt SQLHANDLE, query string) SQLRETURN

	// Fetch advances the result cursor by one row. Returns SQL_NO_DATA
	// once the result set is exhausted, on every subsequent call.
	Fetch(stmt SQLHANDLE) SQLRETURN

	// RowCount reports the number of rows affected by the last operation.
	// Providers may report -1 where no row count applies; the value is
	// passed through untouched.
	RowCount(stmt SQLHANDLE) (SQLLEN, SQLRETURN)

	// NumResultCols reports the number of columns in the current result set.
	NumResultCols(stmt SQLHANDLE) (SQLSMALLINT, SQLRETURN)

	// DescribeCol reports the name and SQL data type of a 1-based column.
	DescribeCol(stmt SQLHANDLE, column SQLUSMALLINT) (name string, dataType SQLSMALLINT, ret SQLRETURN)

	// GetData reads the current row's column at a 1-based index into buf,
	// converted to the given C data type. The returned indicator carries
	// the full length of the data (which may exceed len(buf) for text) or
	// SQL_NULL_DATA.
	GetData(stmt SQLHANDLE, column SQLUSMALLINT, targetType SQLSMALLINT, buf []byte) (indicator SQLLEN, ret SQLRETURN)

	// GetDiagRec retrieves the first diagnostic record for a handle, or
	// nil if none is available.
	GetDiagRec(handleType SQLSMALLINT, handle SQLHANDLE) (*DiagRecord, SQLRETURN)
}
