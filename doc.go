/*
Package odbc provides safe, thread-confined access to the ODBC driver
manager from Go, without CGO.

# Overview

The package wraps the three ODBC handle kinds (environment, connection,
statement) in owning Go types whose Close methods release the native
resource exactly once, in strict parent/child order. Every fallible driver
call (connect, disconnect, execute, fetch, row count, column read) returns
an explicit error carrying the diagnostic record extracted from the
failing handle; errors are never thrown away, and a missing diagnostic
record is replaced with a generic HY000 record rather than silence.

Concurrency is handled by confinement instead of locking: each worker
goroutine owns a Pool that caches its connections by alias, so no
connection, statement, or map is ever shared between workers.

The driver manager library (unixODBC, iODBC, or odbc32.dll) is loaded
dynamically at runtime, so the package builds and tests without it; the
MockManager implements the same call contract in memory.

# Pool Example

Each worker owns one pool and pulls typed values through a statement:

	pool := odbc.NewPool()
	defer pool.Close()

	conn, err := pool.Get("primary", connString)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}

	stmt, err := odbc.NewStatement(conn)
	if err != nil {
		log.Fatalf("failed to allocate statement: %v", err)
	}
	defer stmt.Close()

	if err := stmt.ExecDirect("SELECT id, name, value FROM test_table WHERE id = 1"); err != nil {
		log.Fatalf("query failed: %v", err)
	}

	for {
		more, err := stmt.Fetch()
		if err != nil {
			log.Fatalf("fetch failed: %v", err)
		}
		if !more {
			break
		}

		id, _ := stmt.GetInt64(1)
		name, _ := stmt.GetString(2)
		value, _ := stmt.GetFloat64(3)
		if name.Valid {
			fmt.Printf("%d %s %.2f\n", id.V, name.V, value.V)
		}
	}

A second Get with the same alias returns the same connection; the
connection string passed on a hit is ignored. Different workers build
their own pools and never share connections, so the same alias on two
workers means two independent sessions.

# Standard database/sql Example

The package also registers a database/sql driver named "odbc":

	db, err := sql.Open("odbc", connString)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT id, name FROM test_table")
	...

The adapter executes SQL text directly; parameter binding and
transactions are not part of the surface.

# Error Model

Constructors return *SetupError when a native handle cannot be allocated
or the environment cannot be initialized, the one failure mode with no
handle to carry diagnostics. Everything after construction returns
*DriverError with the SQLSTATE, native code, and message of the failing
call, and the pool wraps connect failures in *PoolError with the alias
attached so "could not establish this alias" is distinguishable from "a
query on a pooled connection failed".
*/
package odbc
