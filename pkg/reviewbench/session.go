package reviewbench

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Session owns the single database connection used by a run.
//
// Lifecycle:
//  1. Created by the benchmark service after connecting
//  2. Conn() is handed to the table implementation
//  3. Close() releases the connection and closes the pool (idempotent)
//
// Thread-Safety: NOT safe for concurrent use.
type Session struct {
	pool    *pgxpool.Pool
	conn    *pgxpool.Conn
	cleanup func()
}

// NewSession creates a Session. cleanup, if non-nil, runs after the pool is
// closed (used by connectors holding dialers).
//
// Panics if pool or conn is nil.
func NewSession(pool *pgxpool.Pool, conn *pgxpool.Conn, cleanup func()) *Session {
	if pool == nil {
		panic("pool cannot be nil")
	}
	if conn == nil {
		panic("conn cannot be nil")
	}
	return &Session{pool: pool, conn: conn, cleanup: cleanup}
}

// Conn returns the dedicated connection.
func (s *Session) Conn() *pgxpool.Conn {
	return s.conn
}

// Close releases the connection and closes the pool.
// Safe to call more than once.
func (s *Session) Close() {
	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}
