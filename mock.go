package odbc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"sync"
)

// MockManager is an in-memory DriverManager for tests and for embedding
// applications that need to run without a driver manager installed. It
// keeps the C API's semantics: handle bookkeeping with parent/child
// validation, tri-state return codes, NULL indicators, text truncation
// with success-with-info, and terminal SQL_NO_DATA on cursor exhaustion.
//
// Result sets and failures are scripted per query text. A MockManager is
// safe for concurrent use, so several worker pools can share one.
type MockManager struct {
	mu sync.Mutex

	nextHandle SQLHANDLE
	envs       map[SQLHANDLE]*mockEnv
	conns      map[SQLHANDLE]*mockConn
	stmts      map[SQLHANDLE]*mockStmt

	scripts     map[string]mockScript
	failConnect map[string]DiagRecord
	lastDiag    map[SQLHANDLE]DiagRecord

	suppressDiag   bool
	nullReturn     SQLRETURN
	failSetEnvAttr bool
	failDisconnect bool
	understateText bool
	failAlloc      map[SQLSMALLINT]bool

	getDataCalls int
}

type mockEnv struct {
	versionSet bool
}

type mockConn struct {
	connected bool
	connStr   string
}

type mockStmt struct {
	conn     SQLHANDLE
	result   *MockResult
	rowCount SQLLEN
	row      int // 0 = before the first row
}

type mockScript struct {
	result   *MockResult
	affected SQLLEN
	diag     *DiagRecord
	failRows SQLLEN // RowCount value reported after a scripted failure
}

// MockResult is a scripted result set: column names plus rows of values.
// Supported cell types are int, int64, float64, string, and nil for NULL.
type MockResult struct {
	columns []string
	rows    [][]any
}

// NewMockResult creates a result set with the given column names.
func NewMockResult(columns ...string) *MockResult {
	return &MockResult{columns: columns}
}

// AddRow appends one row and returns the result for chaining.
func (r *MockResult) AddRow(values ...any) *MockResult {
	r.rows = append(r.rows, values)
	return r
}

// NewMockManager creates an empty mock with default behavior: unregistered
// queries fail, NULL columns report plain success, diagnostics available.
func NewMockManager() *MockManager {
	return &MockManager{
		nextHandle:  1,
		envs:        make(map[SQLHANDLE]*mockEnv),
		conns:       make(map[SQLHANDLE]*mockConn),
		stmts:       make(map[SQLHANDLE]*mockStmt),
		scripts:     make(map[string]mockScript),
		failConnect: make(map[string]DiagRecord),
		lastDiag:    make(map[SQLHANDLE]DiagRecord),
		failAlloc:   make(map[SQLSMALLINT]bool),
		nullReturn:  SQL_SUCCESS,
	}
}

// OnQuery scripts a result set for a query text.
func (m *MockManager) OnQuery(query string, result *MockResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[query] = mockScript{result: result, affected: -1}
}

// OnExec scripts a successful non-result statement reporting the given
// affected-row count.
func (m *MockManager) OnExec(query string, affected int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[query] = mockScript{affected: SQLLEN(affected)}
}

// FailQuery scripts an execution failure with the given diagnostics.
func (m *MockManager) FailQuery(query string, diag DiagRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[query] = mockScript{diag: &diag}
}

// FailQueryNoRowCount scripts an execution failure after which RowCount
// reports the provider's "not applicable" sentinel (-1), the combination
// some drivers produce for DDL.
func (m *MockManager) FailQueryNoRowCount(query string, diag DiagRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[query] = mockScript{diag: &diag, failRows: -1}
}

// FailConnect makes DriverConnect fail for the given connection string.
func (m *MockManager) FailConnect(connStr string, diag DiagRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failConnect[connStr] = diag
}

// SuppressDiagnostics makes GetDiagRec report no record, exercising the
// generic-fallback path in callers.
func (m *MockManager) SuppressDiagnostics(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppressDiag = on
}

// SetNullReturn selects the return code GetData uses for NULL columns.
// Drivers report NULL as SQL_SUCCESS, SQL_SUCCESS_WITH_INFO, or even an
// error code with the indicator set; callers must honor all of them.
func (m *MockManager) SetNullReturn(ret SQLRETURN) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nullReturn = ret
}

// FailNextAlloc makes the next AllocHandle of the given type fail.
func (m *MockManager) FailNextAlloc(handleType SQLSMALLINT) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAlloc[handleType] = true
}

// FailSetEnvAttr toggles failure of SetEnvAttr.
func (m *MockManager) FailSetEnvAttr(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSetEnvAttr = on
}

// UnderstateTextLength makes truncated text reads report an indicator of
// just one byte past the buffer instead of the true full length,
// imitating drivers that only reveal "more data remains". Every resized
// re-read then comes back truncated again.
func (m *MockManager) UnderstateTextLength(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.understateText = on
}

// FailDisconnect toggles failure of Disconnect.
func (m *MockManager) FailDisconnect(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDisconnect = on
}

// OpenHandles reports the number of live handles of all kinds.
func (m *MockManager) OpenHandles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.envs) + len(m.conns) + len(m.stmts)
}

// GetDataCalls reports how many GetData calls the mock has served.
func (m *MockManager) GetDataCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getDataCalls
}

func (m *MockManager) fail(handle SQLHANDLE, diag DiagRecord) SQLRETURN {
	m.lastDiag[handle] = diag
	return SQL_ERROR
}

// AllocHandle implements DriverManager.
func (m *MockManager) AllocHandle(handleType SQLSMALLINT, parent SQLHANDLE) (SQLHANDLE, SQLRETURN) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAlloc[handleType] {
		delete(m.failAlloc, handleType)
		return SQL_NULL_HANDLE, SQL_ERROR
	}

	switch handleType {
	case SQL_HANDLE_ENV:
		if parent != SQL_NULL_HANDLE {
			return SQL_NULL_HANDLE, SQL_INVALID_HANDLE
		}
		h := m.allocate()
		m.envs[h] = &mockEnv{}
		return h, SQL_SUCCESS

	case SQL_HANDLE_DBC:
		env, ok := m.envs[parent]
		if !ok {
			return SQL_NULL_HANDLE, SQL_INVALID_HANDLE
		}
		if !env.versionSet {
			return SQL_NULL_HANDLE, m.fail(parent, DiagRecord{
				State: "HY010", Message: "environment version not set before connection allocation",
			})
		}
		h := m.allocate()
		m.conns[h] = &mockConn{}
		return h, SQL_SUCCESS

	case SQL_HANDLE_STMT:
		conn, ok := m.conns[parent]
		if !ok {
			return SQL_NULL_HANDLE, SQL_INVALID_HANDLE
		}
		if !conn.connected {
			return SQL_NULL_HANDLE, m.fail(parent, DiagRecord{
				State: "08003", Message: "connection does not exist",
			})
		}
		h := m.allocate()
		m.stmts[h] = &mockStmt{conn: parent}
		return h, SQL_SUCCESS
	}

	return SQL_NULL_HANDLE, SQL_ERROR
}

func (m *MockManager) allocate() SQLHANDLE {
	h := m.nextHandle
	m.nextHandle++
	return h
}

// FreeHandle implements DriverManager.
func (m *MockManager) FreeHandle(handleType SQLSMALLINT, handle SQLHANDLE) SQLRETURN {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch handleType {
	case SQL_HANDLE_ENV:
		if _, ok := m.envs[handle]; !ok {
			return SQL_INVALID_HANDLE
		}
		delete(m.envs, handle)
	case SQL_HANDLE_DBC:
		if _, ok := m.conns[handle]; !ok {
			return SQL_INVALID_HANDLE
		}
		delete(m.conns, handle)
	case SQL_HANDLE_STMT:
		if _, ok := m.stmts[handle]; !ok {
			return SQL_INVALID_HANDLE
		}
		delete(m.stmts, handle)
	default:
		return SQL_INVALID_HANDLE
	}

	delete(m.lastDiag, handle)
	return SQL_SUCCESS
}

// SetEnvAttr implements DriverManager.
func (m *MockManager) SetEnvAttr(env SQLHANDLE, attr SQLINTEGER, value SQLINTEGER) SQLRETURN {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.envs[env]
	if !ok {
		return SQL_INVALID_HANDLE
	}
	if m.failSetEnvAttr {
		return m.fail(env, DiagRecord{State: "HY024", Message: "invalid attribute value"})
	}
	if attr == SQL_ATTR_ODBC_VERSION {
		e.versionSet = true
	}
	return SQL_SUCCESS
}

// DriverConnect implements DriverManager.
func (m *MockManager) DriverConnect(dbc SQLHANDLE, connStr string) SQLRETURN {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.conns[dbc]
	if !ok {
		return SQL_INVALID_HANDLE
	}
	if conn.connected {
		return m.fail(dbc, DiagRecord{State: "08002", Message: "connection name in use"})
	}
	if diag, bad := m.failConnect[connStr]; bad {
		return m.fail(dbc, diag)
	}

	conn.connected = true
	conn.connStr = connStr
	return SQL_SUCCESS
}

// Disconnect implements DriverManager.
func (m *MockManager) Disconnect(dbc SQLHANDLE) SQLRETURN {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.conns[dbc]
	if !ok {
		return SQL_INVALID_HANDLE
	}
	if !conn.connected {
		return m.fail(dbc, DiagRecord{State: "08003", Message: "connection does not exist"})
	}
	if m.failDisconnect {
		return m.fail(dbc, DiagRecord{State: "HY000", Message: "disconnect forced to fail"})
	}

	conn.connected = false
	return SQL_SUCCESS
}

// ExecDirect implements DriverManager.
func (m *MockManager) ExecDirect(stmt SQLHANDLE, query string) SQLRETURN {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stmts[stmt]
	if !ok {
		return SQL_INVALID_HANDLE
	}

	script, ok := m.scripts[query]
	if !ok {
		st.result = nil
		st.rowCount = 0
		return m.fail(stmt, DiagRecord{
			State: "42000", Message: fmt.Sprintf("no result registered for query: %s", query),
		})
	}

	if script.diag != nil {
		st.result = nil
		st.row = 0
		st.rowCount = script.failRows
		return m.fail(stmt, *script.diag)
	}

	st.result = script.result
	st.row = 0
	st.rowCount = script.affected
	return SQL_SUCCESS
}

// Fetch implements DriverManager.
func (m *MockManager) Fetch(stmt SQLHANDLE) SQLRETURN {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stmts[stmt]
	if !ok {
		return SQL_INVALID_HANDLE
	}
	if st.result == nil {
		return m.fail(stmt, DiagRecord{State: "24000", Message: "invalid cursor state"})
	}
	if st.row >= len(st.result.rows) {
		// Exhausted: stays exhausted on every later call.
		return SQL_NO_DATA
	}

	st.row++
	return SQL_SUCCESS
}

// RowCount implements DriverManager.
func (m *MockManager) RowCount(stmt SQLHANDLE) (SQLLEN, SQLRETURN) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stmts[stmt]
	if !ok {
		return 0, SQL_INVALID_HANDLE
	}
	return st.rowCount, SQL_SUCCESS
}

// NumResultCols implements DriverManager.
func (m *MockManager) NumResultCols(stmt SQLHANDLE) (SQLSMALLINT, SQLRETURN) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stmts[stmt]
	if !ok {
		return 0, SQL_INVALID_HANDLE
	}
	if st.result == nil {
		return 0, SQL_SUCCESS
	}
	return SQLSMALLINT(len(st.result.columns)), SQL_SUCCESS
}

// DescribeCol implements DriverManager.
func (m *MockManager) DescribeCol(stmt SQLHANDLE, column SQLUSMALLINT) (string, SQLSMALLINT, SQLRETURN) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stmts[stmt]
	if !ok {
		return "", 0, SQL_INVALID_HANDLE
	}
	if st.result == nil || int(column) < 1 || int(column) > len(st.result.columns) {
		return "", 0, m.fail(stmt, DiagRecord{State: "07009", Message: "invalid descriptor index"})
	}
	return st.result.columns[column-1], SQL_C_CHAR, SQL_SUCCESS
}

// GetData implements DriverManager. Each call returns the column value
// from its start; text longer than the buffer is truncated with a
// success-with-info code and the full length in the indicator, so the
// caller's resized re-read sees the complete value.
func (m *MockManager) GetData(stmt SQLHANDLE, column SQLUSMALLINT, targetType SQLSMALLINT, buf []byte) (SQLLEN, SQLRETURN) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getDataCalls++

	st, ok := m.stmts[stmt]
	if !ok {
		return 0, SQL_INVALID_HANDLE
	}
	if st.result == nil || st.row == 0 {
		return 0, m.fail(stmt, DiagRecord{State: "24000", Message: "invalid cursor state"})
	}
	if int(column) < 1 || int(column) > len(st.result.columns) {
		return 0, m.fail(stmt, DiagRecord{State: "07009", Message: "invalid descriptor index"})
	}

	row := st.result.rows[st.row-1]
	if int(column) > len(row) {
		// Scripted row is shorter than the column list.
		return 0, m.fail(stmt, DiagRecord{State: "07009", Message: "invalid descriptor index"})
	}

	value := row[column-1]
	if value == nil {
		if m.nullReturn == SQL_ERROR {
			m.lastDiag[stmt] = DiagRecord{State: "22002", Message: "indicator variable required"}
		}
		return SQL_NULL_DATA, m.nullReturn
	}

	switch targetType {
	case SQL_C_SBIGINT:
		n, ok := asInt64(value)
		if !ok {
			return 0, m.fail(stmt, DiagRecord{State: "07006", Message: "restricted data type attribute violation"})
		}
		binary.NativeEndian.PutUint64(buf, uint64(n))
		return 8, SQL_SUCCESS

	case SQL_C_DOUBLE:
		f, ok := asFloat64(value)
		if !ok {
			return 0, m.fail(stmt, DiagRecord{State: "07006", Message: "restricted data type attribute violation"})
		}
		binary.NativeEndian.PutUint64(buf, math.Float64bits(f))
		return 8, SQL_SUCCESS

	case SQL_C_CHAR:
		text := asText(value)
		if len(buf) < 1 {
			return 0, m.fail(stmt, DiagRecord{State: "HY090", Message: "invalid string or buffer length"})
		}
		avail := len(buf) - 1 // terminator slot
		n := copy(buf[:avail], text)
		buf[n] = 0
		if len(text) > avail {
			m.lastDiag[stmt] = DiagRecord{State: "01004", Message: "string data, right truncated"}
			if m.understateText {
				return SQLLEN(avail + 1), SQL_SUCCESS_WITH_INFO
			}
			return SQLLEN(len(text)), SQL_SUCCESS_WITH_INFO
		}
		return SQLLEN(len(text)), SQL_SUCCESS
	}

	return 0, m.fail(stmt, DiagRecord{State: "HY003", Message: "invalid application buffer type"})
}

// GetDiagRec implements DriverManager.
func (m *MockManager) GetDiagRec(handleType SQLSMALLINT, handle SQLHANDLE) (*DiagRecord, SQLRETURN) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.suppressDiag {
		return nil, SQL_NO_DATA
	}
	diag, ok := m.lastDiag[handle]
	if !ok {
		return nil, SQL_NO_DATA
	}
	return &diag, SQL_SUCCESS
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}

func asFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func asText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", value)
}
