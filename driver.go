package odbc

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
)

func init() {
	// Register the standard driver
	sql.Register("odbc", &Driver{})
}

// Driver implements database/sql/driver.Driver over the handle layer.
// The data source name is a full ODBC connection string.
type Driver struct{}

// Open opens a new connection against the platform driver manager.
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	c := &Connector{ConnString: dsn}
	return c.Connect(context.Background())
}

// Connector implements driver.Connector. It carries the driver manager
// implementation explicitly, so sql.OpenDB can run against a MockManager
// as easily as against the platform library.
type Connector struct {
	// Manager is the driver manager to connect through. Nil selects the
	// platform library.
	Manager DriverManager

	// ConnString is the full ODBC connection string.
	ConnString string
}

// Connect establishes one driver connection: its own environment plus a
// connected session. Each database/sql pool slot owns both, keeping the
// teardown order local to the slot.
func (c *Connector) Connect(_ context.Context) (driver.Conn, error) {
	env, err := NewEnvironment(c.Manager)
	if err != nil {
		return nil, err
	}

	conn, err := NewConnection(env)
	if err != nil {
		env.Close()
		return nil, err
	}

	if err := conn.Connect(c.ConnString); err != nil {
		conn.Close()
		env.Close()
		return nil, err
	}

	return &sqlConn{env: env, conn: conn}, nil
}

// Driver returns the driver this connector belongs to.
func (c *Connector) Driver() driver.Driver {
	return &Driver{}
}

// sqlConn adapts a Connection to driver.Conn.
type sqlConn struct {
	env  *Environment
	conn *Connection
}

func (c *sqlConn) Prepare(query string) (driver.Stmt, error) {
	if c.conn == nil {
		return nil, driver.ErrBadConn
	}
	return &sqlStmt{conn: c.conn, query: query}, nil
}

func (c *sqlConn) Close() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	if c.env != nil {
		c.env.Close()
		c.env = nil
	}
	return nil
}

func (c *sqlConn) Begin() (driver.Tx, error) {
	return nil, errors.New("odbc: transactions are not supported")
}

// sqlStmt adapts a deferred Statement to driver.Stmt. The native statement
// handle is allocated per execution and owned by the result.
type sqlStmt struct {
	conn  *Connection
	query string
}

func (s *sqlStmt) Close() error {
	return nil
}

// NumInput returns zero: the execute contract has no parameter binding.
func (s *sqlStmt) NumInput() int {
	return 0
}

func (s *sqlStmt) Exec(args []driver.Value) (driver.Result, error) {
	if len(args) > 0 {
		return nil, errors.New("odbc: parameter binding is not supported")
	}

	stmt, err := NewStatement(s.conn)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	if err := stmt.ExecDirect(s.query); err != nil {
		return nil, err
	}

	affected, err := stmt.RowCount()
	if err != nil {
		return nil, err
	}

	return sqlResult{affected: affected}, nil
}

func (s *sqlStmt) Query(args []driver.Value) (driver.Rows, error) {
	if len(args) > 0 {
		return nil, errors.New("odbc: parameter binding is not supported")
	}

	stmt, err := NewStatement(s.conn)
	if err != nil {
		return nil, err
	}

	if err := stmt.ExecDirect(s.query); err != nil {
		stmt.Close()
		return nil, err
	}

	cols, err := stmt.NumResultCols()
	if err != nil {
		stmt.Close()
		return nil, err
	}

	names := make([]string, cols)
	for i := range names {
		name, err := stmt.ColumnName(i + 1)
		if err != nil {
			stmt.Close()
			return nil, err
		}
		names[i] = name
	}

	return &sqlRows{stmt: stmt, columns: names}, nil
}

// sqlRows adapts the fetch/get-data cursor to driver.Rows. Values come
// back as text and nil; database/sql's convertAssign handles the numeric
// conversions during Scan.
type sqlRows struct {
	stmt    *Statement
	columns []string
}

func (r *sqlRows) Columns() []string {
	return r.columns
}

func (r *sqlRows) Close() error {
	return r.stmt.Close()
}

func (r *sqlRows) Next(dest []driver.Value) error {
	more, err := r.stmt.Fetch()
	if err != nil {
		return err
	}
	if !more {
		return io.EOF
	}

	for i := range r.columns {
		v, err := r.stmt.GetString(i + 1)
		if err != nil {
			return err
		}
		if !v.Valid {
			dest[i] = nil
			continue
		}
		dest[i] = []byte(v.V)
	}
	return nil
}

// sqlResult adapts a row count to driver.Result.
type sqlResult struct {
	affected int64
}

func (r sqlResult) LastInsertId() (int64, error) {
	return 0, errors.New("odbc: last insert id is not available")
}

func (r sqlResult) RowsAffected() (int64, error) {
	return r.affected, nil
}
