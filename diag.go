package odbc

import "fmt"

// DiagRecord is one diagnostic record extracted from a handle after a
// failed call: the five-character SQLSTATE, the driver's native error
// code, and the human-readable message.
type DiagRecord struct {
	State   string
	Native  int32
	Message string
}

// String formats the record for logs and error messages.
func (d DiagRecord) String() string {
	return fmt.Sprintf("SQLSTATE=%s, NativeError=%d, Message='%s'", d.State, d.Native, d.Message)
}

// diagnose reads the first diagnostic record for a handle. It must run
// immediately after the failing call, before anything else touches the
// handle. When the driver has no record to give, a generic fallback is
// substituted so a failure never surfaces without an error attached.
func diagnose(dm DriverManager, handleType SQLSMALLINT, handle SQLHANDLE, op string) DiagRecord {
	if rec, ret := dm.GetDiagRec(handleType, handle); succeeded(ret) && rec != nil {
		return *rec
	}
	return DiagRecord{
		State:   "HY000",
		Native:  0,
		Message: fmt.Sprintf("unknown %s error", op),
	}
}
