package odbc

import "log/slog"

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithDriverManager selects the driver manager implementation. The default
// is the platform library loaded by DefaultDriverManager; tests and
// embedded setups pass a MockManager here.
func WithDriverManager(dm DriverManager) PoolOption {
	return func(p *Pool) {
		p.dm = dm
	}
}

// WithLogger sets the logger used for connection lifecycle events. The
// default is slog.Default. Messages are always fully formed before they
// reach the logger, so interleaving with other workers cannot split them.
func WithLogger(log *slog.Logger) PoolOption {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// WithSources installs an alias registry for GetAlias.
func WithSources(s Sources) PoolOption {
	return func(p *Pool) {
		p.sources = s
	}
}
