// Package provider manufactures and leases the shared resources that route
// handlers consume: dedicated database connections drawn from a pool and a
// single process-wide HTTP client.
//
// Providers are constructed once at startup and injected into the router;
// there is no package-level state.
package provider

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/verproxy/internal/apperr"
)

// ConnPool is the subset of *sql.DB the provider needs. Conn must be safe for
// concurrent use; *sql.DB satisfies it and queues callers internally when
// every connection is in use.
type ConnPool interface {
	Conn(ctx context.Context) (*sql.Conn, error)
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// DBProvider leases dedicated connections from a pool.
//
// Acquire needs no external lock: the pool's own acquire path is safe for
// concurrent callers and waiting for a free connection happens inside the
// pool, bounded only by the caller's context.
type DBProvider struct {
	db   *gorm.DB
	pool ConnPool
}

// NewDBProvider wraps an opened GORM handle.
func NewDBProvider(db *gorm.DB) (*DBProvider, error) {
	if db == nil {
		return nil, errors.New("provider: nil database handle")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &DBProvider{db: db, pool: sqlDB}, nil
}

// Acquire leases one connection for the duration of a request. On failure the
// cause is logged and apperr.Database is returned; nothing is left leased.
func (p *DBProvider) Acquire(ctx context.Context) (*Lease, error) {
	conn, err := p.pool.Conn(ctx)
	if err != nil {
		return nil, apperr.Erase(ctx, apperr.Database, err, "acquire database connection")
	}

	// Same pinning gorm.DB.Connection performs: a fresh session whose
	// ConnPool is the leased connection.
	tx := p.db.Session(&gorm.Session{NewDB: true, Context: ctx})
	tx.Statement.ConnPool = conn

	return &Lease{conn: conn, db: tx, log: zerolog.Ctx(ctx)}, nil
}

// Ping verifies the database is reachable.
func (p *DBProvider) Ping(ctx context.Context) error {
	if err := p.pool.PingContext(ctx); err != nil {
		return apperr.Erase(ctx, apperr.Database, err, "ping database")
	}
	return nil
}

// Stats exposes pool statistics.
func (p *DBProvider) Stats() sql.DBStats {
	return p.pool.Stats()
}

// Lease is one connection held exclusively by a single request.
type Lease struct {
	conn *sql.Conn
	db   *gorm.DB
	log  *zerolog.Logger
	once sync.Once
}

// DB returns a GORM session pinned to the leased connection.
func (l *Lease) DB() *gorm.DB {
	return l.db
}

// Conn returns the raw leased connection.
func (l *Lease) Conn() *sql.Conn {
	return l.conn
}

// Release returns the connection to the pool. It is safe to call more than
// once; only the first call has an effect.
func (l *Lease) Release() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		if err := l.conn.Close(); err != nil && l.log != nil {
			l.log.Warn().Err(err).Msg("release database connection")
		}
	})
}
