package odbc

import (
	"strings"
	"testing"
)

func TestDiagRecord_String(t *testing.T) {
	rec := DiagRecord{State: "08001", Native: 17, Message: "server unreachable"}
	want := "SQLSTATE=08001, NativeError=17, Message='server unreachable'"
	if got := rec.String(); got != want {
		t.Fatalf("Expected %q, got %q", want, got)
	}
}

func TestDiagnose_FallbackWhenNoRecordAvailable(t *testing.T) {
	m := seedManager()
	m.FailQuery("SELECT broken", DiagRecord{State: "42000", Message: "bad"})
	m.SuppressDiagnostics(true)

	conn := newTestSession(t, m)
	stmt, err := NewStatement(conn)
	if err != nil {
		t.Fatalf("Failed to create statement: %v", err)
	}
	defer stmt.Close()

	execErr := stmt.ExecDirect("SELECT broken")
	if execErr == nil {
		t.Fatal("Expected execution to fail")
	}

	// With no diagnostic record available, the error still carries the
	// generic fallback rather than nothing.
	drvErr, ok := execErr.(*DriverError)
	if !ok {
		t.Fatalf("Expected *DriverError, got %T", execErr)
	}
	if drvErr.Diag.State != "HY000" {
		t.Errorf("Expected fallback state HY000, got %q", drvErr.Diag.State)
	}
	if !strings.Contains(drvErr.Diag.Message, "unknown") {
		t.Errorf("Expected a generic fallback message, got %q", drvErr.Diag.Message)
	}
}

func TestDriverError_MessageFormat(t *testing.T) {
	err := &DriverError{
		Op:   "connect",
		Diag: DiagRecord{State: "08001", Native: 17, Message: "server unreachable"},
	}
	want := "odbc: connect: SQLSTATE=08001, NativeError=17, Message='server unreachable'"
	if got := err.Error(); got != want {
		t.Fatalf("Expected %q, got %q", want, got)
	}
}
