package odbc

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_SameAliasReturnsSameConnection(t *testing.T) {
	m := NewMockManager()
	pool := NewPool(WithDriverManager(m))
	defer pool.Close()

	first, err := pool.Get("primary", "DSN=one")
	require.NoError(t, err)

	// The connection string is ignored on a hit: the alias is the key.
	second, err := pool.Get("primary", "DSN=completely-different")
	require.NoError(t, err)

	require.Same(t, first, second)
	assert.Equal(t, 1, pool.Len())
	assert.Equal(t, "primary", first.Alias())
}

func TestPool_DistinctAliasesGetDistinctConnections(t *testing.T) {
	m := NewMockManager()
	pool := NewPool(WithDriverManager(m))
	defer pool.Close()

	a, err := pool.Get("a", "DSN=one")
	require.NoError(t, err)
	b, err := pool.Get("b", "DSN=one")
	require.NoError(t, err)

	require.NotSame(t, a, b)
	assert.Equal(t, 2, pool.Len())
}

func TestPool_FailedGetLeavesAliasAbsent(t *testing.T) {
	m := NewMockManager()
	m.FailConnect("DSN=broken", DiagRecord{State: "08001", Native: 17, Message: "server unreachable"})

	pool := NewPool(WithDriverManager(m))
	defer pool.Close()

	_, err := pool.Get("primary", "DSN=broken")
	require.Error(t, err)

	var poolErr *PoolError
	require.ErrorAs(t, err, &poolErr)
	assert.Equal(t, "primary", poolErr.Alias)

	var driverErr *DriverError
	require.ErrorAs(t, err, &driverErr)
	assert.Equal(t, "08001", driverErr.Diag.State)
	assert.EqualValues(t, 17, driverErr.Diag.Native)

	// Nothing was cached, so the same alias can be retried.
	assert.Equal(t, 0, pool.Len())

	conn, err := pool.Get("primary", "DSN=fixed")
	require.NoError(t, err)
	assert.True(t, conn.Connected())
	assert.Equal(t, 1, pool.Len())
}

func TestPool_FailedConnectFreesTheHandle(t *testing.T) {
	m := NewMockManager()
	m.FailConnect("DSN=broken", DiagRecord{State: "08001", Message: "no"})

	pool := NewPool(WithDriverManager(m))

	_, err := pool.Get("x", "DSN=broken")
	require.Error(t, err)

	require.NoError(t, pool.Close())
	assert.Equal(t, 0, m.OpenHandles())
}

func TestPool_WorkersOwnIndependentConnections(t *testing.T) {
	m := NewMockManager()

	conns := make(chan *Connection, 2)
	pools := make(chan *Pool, 2)

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			pool := NewPool(WithDriverManager(m))
			conn, err := pool.Get("primary", "DSN=shared")
			if err != nil {
				t.Errorf("Get failed: %v", err)
				return
			}
			conns <- conn
			pools <- pool
		}()
	}
	wg.Wait()
	close(conns)
	close(pools)

	var got []*Connection
	for c := range conns {
		got = append(got, c)
	}
	require.Len(t, got, 2)
	require.NotSame(t, got[0], got[1])

	// Tearing down one worker's connection leaves the other usable.
	require.NoError(t, got[0].Disconnect())
	assert.False(t, got[0].Connected())
	assert.True(t, got[1].Connected())

	for p := range pools {
		p.Close()
	}
	assert.Equal(t, 0, m.OpenHandles())
}

func TestPool_EnvironmentIsLazy(t *testing.T) {
	m := NewMockManager()
	pool := NewPool(WithDriverManager(m))
	assert.Equal(t, 0, m.OpenHandles())

	_, err := pool.Get("primary", "DSN=one")
	require.NoError(t, err)
	// One environment plus one connection.
	assert.Equal(t, 2, m.OpenHandles())

	pool.Close()
	assert.Equal(t, 0, m.OpenHandles())
}

func TestPool_EnvironmentSetupFailure(t *testing.T) {
	m := NewMockManager()
	m.FailNextAlloc(SQL_HANDLE_ENV)

	pool := NewPool(WithDriverManager(m))
	defer pool.Close()

	_, err := pool.Get("primary", "DSN=one")
	require.Error(t, err)

	var setupErr *SetupError
	require.ErrorAs(t, err, &setupErr)

	// The allocation failure was transient; the next call recovers.
	conn, err := pool.Get("primary", "DSN=one")
	require.NoError(t, err)
	assert.True(t, conn.Connected())
}

func TestPool_GetAlias(t *testing.T) {
	m := NewMockManager()
	sources := Sources{
		"primary":   "DSN=first",
		"reporting": "DSN=second",
	}

	pool := NewPool(WithDriverManager(m), WithSources(sources))
	defer pool.Close()

	conn, err := pool.GetAlias("primary")
	require.NoError(t, err)
	assert.True(t, conn.Connected())

	again, err := pool.GetAlias("primary")
	require.NoError(t, err)
	require.Same(t, conn, again)

	_, err = pool.GetAlias("missing")
	require.Error(t, err)
	var poolErr *PoolError
	require.ErrorAs(t, err, &poolErr)
	assert.Equal(t, "missing", poolErr.Alias)
}

func TestPoolError_Message(t *testing.T) {
	err := &PoolError{
		Alias: "primary",
		Err:   errors.New("boom"),
	}
	assert.Equal(t, `odbc: failed to establish connection for alias "primary": boom`, err.Error())
	assert.EqualError(t, errors.Unwrap(err), "boom")
}
