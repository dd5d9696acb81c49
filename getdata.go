package odbc

import (
	"database/sql"
	"encoding/binary"
	"math"
)

// initialTextBufferSize is the first-attempt buffer for text columns.
// Values longer than this trigger exactly one resized re-read.
const initialTextBufferSize = 1024

// GetInt64 reads the current row's column at a 1-based index as a signed
// 64-bit integer. The Null wrapper is invalid when the column is NULL.
func (s *Statement) GetInt64(column int) (sql.Null[int64], error) {
	var out sql.Null[int64]

	buf := make([]byte, 8)
	indicator, ret := s.dm.GetData(s.handle, SQLUSMALLINT(column), SQL_C_SBIGINT, buf)
	if indicator == SQL_NULL_DATA {
		return out, nil
	}
	if !succeeded(ret) {
		return out, &DriverError{
			Op:   "get int64 column",
			Diag: diagnose(s.dm, SQL_HANDLE_STMT, s.handle, "GetData<int64>"),
		}
	}

	out.V = int64(binary.NativeEndian.Uint64(buf))
	out.Valid = true
	return out, nil
}

// GetFloat64 reads the current row's column at a 1-based index as a
// double-precision float.
func (s *Statement) GetFloat64(column int) (sql.Null[float64], error) {
	var out sql.Null[float64]

	buf := make([]byte, 8)
	indicator, ret := s.dm.GetData(s.handle, SQLUSMALLINT(column), SQL_C_DOUBLE, buf)
	if indicator == SQL_NULL_DATA {
		return out, nil
	}
	if !succeeded(ret) {
		return out, &DriverError{
			Op:   "get float64 column",
			Diag: diagnose(s.dm, SQL_HANDLE_STMT, s.handle, "GetData<float64>"),
		}
	}

	out.V = math.Float64frombits(binary.NativeEndian.Uint64(buf))
	out.Valid = true
	return out, nil
}

// GetString reads the current row's column at a 1-based index as text.
//
// The read starts with a bounded buffer. If the driver answers
// success-with-info and the indicator reveals a longer true length, the
// buffer is resized to that length plus a terminator slot and the read
// repeats once. No further retries happen: a buffer reported too small
// after the resize is a hard error. A NULL indicator is honored whether
// the return code was a success or a failure.
func (s *Statement) GetString(column int) (sql.Null[string], error) {
	var out sql.Null[string]

	buf := make([]byte, initialTextBufferSize)
	indicator, ret := s.dm.GetData(s.handle, SQLUSMALLINT(column), SQL_C_CHAR, buf)

	if ret == SQL_SUCCESS_WITH_INFO && indicator > SQLLEN(len(buf)-1) {
		buf = make([]byte, int(indicator)+1)
		indicator, ret = s.dm.GetData(s.handle, SQLUSMALLINT(column), SQL_C_CHAR, buf)
	}

	if !succeeded(ret) {
		if indicator == SQL_NULL_DATA {
			return out, nil
		}
		return out, &DriverError{
			Op:   "get string column",
			Diag: diagnose(s.dm, SQL_HANDLE_STMT, s.handle, "GetData<string>"),
		}
	}
	if indicator == SQL_NULL_DATA {
		return out, nil
	}
	if indicator > SQLLEN(len(buf)-1) {
		// Still truncated after the one allowed resize.
		return out, &DriverError{
			Op:   "get string column",
			Diag: DiagRecord{State: "HY000", Message: "text column still truncated after resize"},
		}
	}

	if indicator > 0 {
		out.V = string(buf[:indicator])
	}
	out.Valid = true
	return out, nil
}
