// Command example seeds a table and queries it from several workers, each
// with its own connection pool.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/go-odbc/odbc"
)

// execAllowingNoRowCount runs a statement and treats a failure paired with
// a row count of -1 as a soft success. Drivers like FreeTDS report DDL
// that way because no row count concept applies; whether to accept that is
// the application's call, which is why it lives here and not in the
// library.
func execAllowingNoRowCount(stmt *odbc.Statement, query string) error {
	err := stmt.ExecDirect(query)
	if err == nil {
		return nil
	}

	if count, countErr := stmt.RowCount(); countErr == nil && count == -1 {
		slog.Info("command reported failure with no applicable row count, assuming success",
			slog.String("query", query))
		return nil
	}

	return fmt.Errorf("setup failed on %q: %w", query, err)
}

func setupSchema(connStr string) error {
	env, err := odbc.NewEnvironment(nil)
	if err != nil {
		return err
	}
	defer env.Close()

	conn, err := odbc.NewConnection(env)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Connect(connStr); err != nil {
		return err
	}

	stmt, err := odbc.NewStatement(conn)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, query := range []string{
		"DROP TABLE IF EXISTS test_table",
		"CREATE TABLE test_table (id INT, name VARCHAR(100), value REAL)",
		"INSERT INTO test_table VALUES (1, 'First', 10.5), (2, NULL, 20.25)",
	} {
		if err := execAllowingNoRowCount(stmt, query); err != nil {
			return err
		}
	}

	return nil
}

func worker(id int, connStr string, wg *sync.WaitGroup) {
	defer wg.Done()

	log := slog.With(slog.Int("worker", id))

	pool := odbc.NewPool(odbc.WithLogger(log))
	defer pool.Close()

	conn, err := pool.Get("primary", connStr)
	if err != nil {
		var poolErr *odbc.PoolError
		if errors.As(err, &poolErr) {
			log.Error("pool could not establish alias", slog.String("alias", poolErr.Alias))
		}
		log.Error("get connection failed", slog.String("error", err.Error()))
		return
	}

	stmt, err := odbc.NewStatement(conn)
	if err != nil {
		log.Error("statement allocation failed", slog.String("error", err.Error()))
		return
	}
	defer stmt.Close()

	if err := stmt.ExecDirect("SELECT id, name, value FROM test_table ORDER BY id"); err != nil {
		log.Error("query failed", slog.String("error", err.Error()))
		return
	}

	for {
		more, err := stmt.Fetch()
		if err != nil {
			log.Error("fetch failed", slog.String("error", err.Error()))
			return
		}
		if !more {
			break
		}

		id, err := stmt.GetInt64(1)
		if err != nil {
			log.Error("id read failed", slog.String("error", err.Error()))
			return
		}
		name, err := stmt.GetString(2)
		if err != nil {
			log.Error("name read failed", slog.String("error", err.Error()))
			return
		}
		value, err := stmt.GetFloat64(3)
		if err != nil {
			log.Error("value read failed", slog.String("error", err.Error()))
			return
		}

		idText := "NULL"
		if id.Valid {
			idText = strconv.FormatInt(id.V, 10)
		}
		nameText := "NULL"
		if name.Valid {
			nameText = name.V
		}
		valueText := "NULL"
		if value.Valid {
			valueText = strconv.FormatFloat(value.V, 'f', -1, 64)
		}
		log.Info("row", slog.String("id", idText), slog.String("name", nameText),
			slog.String("value", valueText))
	}
}

func main() {
	connStr := os.Getenv("CONNECTION_STRING")
	if connStr == "" {
		fmt.Fprintln(os.Stderr, "CONNECTION_STRING is not set")
		os.Exit(1)
	}

	if err := setupSchema(connStr); err != nil {
		fmt.Fprintf(os.Stderr, "schema setup failed: %v\n", err)
		os.Exit(1)
	}

	const workers = 4
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go worker(i, connStr, &wg)
	}
	wg.Wait()
}
