package odbc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchOneRow(t *testing.T, m *MockManager, query string) *Statement {
	t.Helper()
	stmt := newSeededStatement(t, m, query)
	more, err := stmt.Fetch()
	require.NoError(t, err)
	require.True(t, more, "expected a fetchable row")
	return stmt
}

func TestGetData_RoundTrip(t *testing.T) {
	m := seedManager()
	stmt := fetchOneRow(t, m, "SELECT id, name, value FROM test_table WHERE id = 1")

	id, err := stmt.GetInt64(1)
	require.NoError(t, err)
	require.True(t, id.Valid)
	assert.EqualValues(t, 1, id.V)

	name, err := stmt.GetString(2)
	require.NoError(t, err)
	require.True(t, name.Valid)
	assert.Equal(t, "First", name.V)

	value, err := stmt.GetFloat64(3)
	require.NoError(t, err)
	require.True(t, value.Valid)
	assert.Equal(t, 10.5, value.V)
}

func TestGetData_NullIsNotEmptyString(t *testing.T) {
	m := seedManager()
	stmt := fetchOneRow(t, m, "SELECT name FROM test_table WHERE id = 2")

	name, err := stmt.GetString(1)
	require.NoError(t, err)
	assert.False(t, name.Valid, "NULL must not come back as a value")
	assert.Empty(t, name.V)
}

func TestGetData_NullRecognizedOnEveryReturnCode(t *testing.T) {
	// Drivers report NULL with a plain success, a success-with-info, or
	// even a failure code; only the indicator decides.
	for _, ret := range []SQLRETURN{SQL_SUCCESS, SQL_SUCCESS_WITH_INFO, SQL_ERROR} {
		m := seedManager()
		m.SetNullReturn(ret)
		stmt := fetchOneRow(t, m, "SELECT name FROM test_table WHERE id = 2")

		name, err := stmt.GetString(1)
		require.NoError(t, err, "return code %d", ret)
		assert.False(t, name.Valid, "return code %d", ret)
	}
}

func TestGetData_NullNumericColumns(t *testing.T) {
	m := NewMockManager()
	m.OnQuery("SELECT id, value FROM t",
		NewMockResult("id", "value").AddRow(nil, nil))
	stmt := fetchOneRow(t, m, "SELECT id, value FROM t")

	id, err := stmt.GetInt64(1)
	require.NoError(t, err)
	assert.False(t, id.Valid)
	assert.Zero(t, id.V)

	value, err := stmt.GetFloat64(2)
	require.NoError(t, err)
	assert.False(t, value.Valid)
}

func TestGetData_LongTextResizesExactlyOnce(t *testing.T) {
	long := strings.Repeat("x", 5000)

	m := NewMockManager()
	m.OnQuery("SELECT body FROM t", NewMockResult("body").AddRow(long))
	stmt := fetchOneRow(t, m, "SELECT body FROM t")

	before := m.GetDataCalls()
	body, err := stmt.GetString(1)
	require.NoError(t, err)
	require.True(t, body.Valid)
	assert.Equal(t, long, body.V, "value must come back intact")
	assert.Equal(t, 2, m.GetDataCalls()-before, "one bounded read plus one resized re-read")
}

func TestGetData_TextAtBufferBoundary(t *testing.T) {
	// initialTextBufferSize-1 characters plus the terminator exactly fill
	// the first buffer; one more character forces the resize.
	cases := []struct {
		name  string
		size  int
		reads int
	}{
		{"fits with terminator", initialTextBufferSize - 1, 1},
		{"one past the boundary", initialTextBufferSize, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text := strings.Repeat("b", tc.size)

			m := NewMockManager()
			m.OnQuery("SELECT body FROM t", NewMockResult("body").AddRow(text))
			stmt := fetchOneRow(t, m, "SELECT body FROM t")

			before := m.GetDataCalls()
			body, err := stmt.GetString(1)
			require.NoError(t, err)
			require.True(t, body.Valid)
			assert.Equal(t, text, body.V)
			assert.Equal(t, tc.reads, m.GetDataCalls()-before)
		})
	}
}

func TestGetData_StillTruncatedAfterResizeIsError(t *testing.T) {
	long := strings.Repeat("x", 5000)

	m := NewMockManager()
	m.OnQuery("SELECT body FROM t", NewMockResult("body").AddRow(long))
	// The driver only ever admits to one byte more than the buffer, so
	// the resized re-read comes back truncated again.
	m.UnderstateTextLength(true)
	stmt := fetchOneRow(t, m, "SELECT body FROM t")

	before := m.GetDataCalls()
	body, err := stmt.GetString(1)
	require.Error(t, err)
	assert.False(t, body.Valid)

	var drvErr *DriverError
	require.ErrorAs(t, err, &drvErr)
	assert.Equal(t, "HY000", drvErr.Diag.State)

	// One bounded read, one resized re-read, then a hard error: no loop.
	assert.Equal(t, 2, m.GetDataCalls()-before)
}

func TestGetData_RowShorterThanColumnList(t *testing.T) {
	m := NewMockManager()
	m.OnQuery("SELECT a, b FROM t", NewMockResult("a", "b").AddRow(1))
	stmt := fetchOneRow(t, m, "SELECT a, b FROM t")

	_, err := stmt.GetString(2)
	require.Error(t, err)

	var drvErr *DriverError
	require.ErrorAs(t, err, &drvErr)
	assert.Equal(t, "07009", drvErr.Diag.State)
}

func TestGetData_EmptyString(t *testing.T) {
	m := NewMockManager()
	m.OnQuery("SELECT body FROM t", NewMockResult("body").AddRow(""))
	stmt := fetchOneRow(t, m, "SELECT body FROM t")

	body, err := stmt.GetString(1)
	require.NoError(t, err)
	assert.True(t, body.Valid, "empty string is a value, not NULL")
	assert.Equal(t, "", body.V)
}

func TestGetData_TypeMismatchIsDriverError(t *testing.T) {
	m := seedManager()
	stmt := fetchOneRow(t, m, "SELECT id, name, value FROM test_table WHERE id = 1")

	_, err := stmt.GetInt64(2) // "First" as an integer
	require.Error(t, err)

	var drvErr *DriverError
	require.ErrorAs(t, err, &drvErr)
	assert.Equal(t, "07006", drvErr.Diag.State)
}

func TestGetData_BeforeFetchIsDriverError(t *testing.T) {
	m := seedManager()
	stmt := newSeededStatement(t, m, "SELECT id FROM test_table ORDER BY id")

	_, err := stmt.GetInt64(1)
	require.Error(t, err)

	var drvErr *DriverError
	require.ErrorAs(t, err, &drvErr)
	assert.Equal(t, "24000", drvErr.Diag.State)
}
