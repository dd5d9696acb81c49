package odbc

import "log/slog"

// Pool caches named connections for a single worker goroutine. Each worker
// owns its own Pool, so lookups and inserts need no locking; two workers
// requesting the same alias get independent connections, and a session on
// one worker is never visible to another.
//
// A Pool is NOT safe for concurrent use. Hand each worker its own.
type Pool struct {
	dm      DriverManager
	env     *Environment
	conns   map[string]*Connection
	sources Sources
	log     *slog.Logger
}

// NewPool creates an empty pool. The environment handle is allocated
// lazily on the first Get, so constructing a Pool never touches the
// driver manager.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		conns: make(map[string]*Connection),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the connection cached under alias, creating and connecting
// it on first request. The alias is the cache key: on a hit, connStr is
// ignored even if it differs from the string the connection was created
// with.
//
// A failed creation caches nothing, so the same alias can be retried with
// a corrected connection string. The failure is returned as a *PoolError
// wrapping the underlying connect diagnostics.
func (p *Pool) Get(alias, connStr string) (*Connection, error) {
	if conn, ok := p.conns[alias]; ok {
		return conn, nil
	}

	if err := p.ensureEnvironment(); err != nil {
		return nil, err
	}

	p.log.Debug("creating new connection", slog.String("alias", alias))

	conn, err := NewConnection(p.env)
	if err != nil {
		return nil, err
	}
	conn.alias = alias
	conn.log = p.log

	if err := conn.Connect(connStr); err != nil {
		conn.Close()
		return nil, &PoolError{Alias: alias, Err: err}
	}

	p.conns[alias] = conn
	return conn, nil
}

// GetAlias resolves alias through the pool's source registry and calls Get.
func (p *Pool) GetAlias(alias string) (*Connection, error) {
	connStr, err := p.sources.Resolve(alias)
	if err != nil {
		return nil, &PoolError{Alias: alias, Err: err}
	}
	return p.Get(alias, connStr)
}

// Len reports the number of cached connections.
func (p *Pool) Len() int {
	return len(p.conns)
}

// Close disconnects and frees every cached connection and then the
// environment. Call it when the owning worker is done; a Pool cannot be
// used after Close.
func (p *Pool) Close() error {
	for alias, conn := range p.conns {
		conn.Close()
		delete(p.conns, alias)
	}
	if p.env != nil {
		p.env.Close()
		p.env = nil
	}
	return nil
}

func (p *Pool) ensureEnvironment() error {
	if p.env != nil {
		return nil
	}
	env, err := NewEnvironment(p.dm)
	if err != nil {
		return err
	}
	p.env = env
	return nil
}
