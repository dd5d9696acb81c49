package odbc

// ODBC handle types (opaque pointers)
type (
	SQLHANDLE uintptr
	SQLHENV   SQLHANDLE
	SQLHDBC   SQLHANDLE
	SQLHSTMT  SQLHANDLE
)

// ODBC integer types
type (
	SQLSMALLINT  int16
	SQLUSMALLINT uint16
	SQLINTEGER   int32
	SQLUINTEGER  uint32
	SQLLEN       int64 // 64-bit on all supported platforms
	SQLULEN      uint64
	SQLRETURN    SQLSMALLINT
)

// Handle type identifiers
const (
	SQL_HANDLE_ENV  SQLSMALLINT = 1
	SQL_HANDLE_DBC  SQLSMALLINT = 2
	SQL_HANDLE_STMT SQLSMALLINT = 3
)

// Return codes
const (
	SQL_SUCCESS           SQLRETURN = 0
	SQL_SUCCESS_WITH_INFO SQLRETURN = 1
	SQL_ERROR             SQLRETURN = -1
	SQL_INVALID_HANDLE    SQLRETURN = -2
	SQL_NO_DATA           SQLRETURN = 100
)

// Null handle constant
const SQL_NULL_HANDLE SQLHANDLE = 0

// Environment attributes and values
const (
	SQL_ATTR_ODBC_VERSION SQLINTEGER = 200
	SQL_OV_ODBC3          SQLINTEGER = 3
)

// String terminator for length arguments
const SQL_NTS SQLINTEGER = -3

// Null data indicator
const SQL_NULL_DATA SQLLEN = -1

// SQLDriverConnect completion options
const SQL_DRIVER_NOPROMPT SQLUSMALLINT = 0

// C data type tags for SQLGetData
const (
	SQL_C_CHAR    SQLSMALLINT = 1
	SQL_C_DOUBLE  SQLSMALLINT = 8
	SQL_C_SBIGINT SQLSMALLINT = -25
)

// Diagnostics limits
const SQL_MAX_MESSAGE_LENGTH = 512

// succeeded reports whether a return code counts as success for control
// flow. SQL_SUCCESS_WITH_INFO is a success; callers that care about the
// extra info (the text retry path) inspect the code directly.
func succeeded(ret SQLRETURN) bool {
	return ret == SQL_SUCCESS || ret == SQL_SUCCESS_WITH_INFO
}
