// Package pool implements a bounded pool of PostgreSQL connections. The
// pool is the only shared mutable resource in the service; Acquire is the
// only operation that may block a caller.
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"qna/pkg/errs"
)

const (
	healthCheckTimeout = 2 * time.Second
	closeTimeout       = 5 * time.Second
)

// Querier is the connection surface handed out by the pool. *pgx.Conn
// satisfies it; tests inject fakes.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var _ Querier = (*pgx.Conn)(nil)

// DialFunc opens one new store connection.
type DialFunc func(ctx context.Context) (Querier, error)

type Config struct {
	MinConns       int
	MaxConns       int
	AcquireTimeout time.Duration
}

// Pool lends connections to concurrent callers. Capacity is tracked by a
// semaphore channel holding one token per connection slot; idle connections
// and the closed flag are guarded by mu.
type Pool struct {
	dial           DialFunc
	acquireTimeout time.Duration

	sem  chan struct{}
	done chan struct{}

	mu     sync.Mutex
	idle   []Querier
	closed bool
}

// New creates a pool and eagerly dials cfg.MinConns connections so startup
// fails fast when the store is unreachable.
func New(ctx context.Context, cfg Config, dial DialFunc) (*Pool, error) {
	if cfg.MaxConns < 1 {
		return nil, fmt.Errorf("pool: max conns must be >= 1, got %d", cfg.MaxConns)
	}
	if cfg.MinConns < 0 || cfg.MinConns > cfg.MaxConns {
		return nil, fmt.Errorf("pool: min conns %d out of range [0,%d]", cfg.MinConns, cfg.MaxConns)
	}
	if dial == nil {
		return nil, fmt.Errorf("pool: dial func is required")
	}

	p := &Pool{
		dial:           dial,
		acquireTimeout: cfg.AcquireTimeout,
		sem:            make(chan struct{}, cfg.MaxConns),
		done:           make(chan struct{}),
	}
	for i := 0; i < cfg.MaxConns; i++ {
		p.sem <- struct{}{}
	}

	for i := 0; i < cfg.MinConns; i++ {
		conn, err := dial(ctx)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
		}
		p.idle = append(p.idle, conn)
	}

	return p, nil
}

// Connect builds a pool that dials real pgx connections against dsn.
func Connect(ctx context.Context, cfg Config, dsn string) (*Pool, error) {
	return New(ctx, cfg, func(ctx context.Context) (Querier, error) {
		return pgx.Connect(ctx, dsn)
	})
}

// Acquire returns a connection for the caller's exclusive use. It blocks
// until a slot frees up, the context ends, or the pool's default acquire
// timeout expires (applied only when the caller set no deadline). Expiry is
// reported as errs.ErrPoolTimeout.
func (p *Pool) Acquire(ctx context.Context) (Querier, error) {
	if p.acquireTimeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
			defer cancel()
		}
	}

	select {
	case <-p.done:
		return nil, errs.ErrPoolClosed
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire: %w", errs.ErrPoolTimeout)
	case <-p.sem:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errs.ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		conn := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return conn, nil
	}
	p.mu.Unlock()

	conn, err := p.dial(ctx)
	if err != nil {
		p.put()
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}

	return conn, nil
}

// Release returns a connection to the pool. A connection that fails the
// liveness probe is closed and its slot freed; the replacement is dialed
// lazily by a later Acquire.
func (p *Pool) Release(conn Querier) {
	if conn == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	healthy := conn.Ping(ctx) == nil
	cancel()

	p.mu.Lock()
	if p.closed || !healthy {
		p.mu.Unlock()
		closeConn(conn)
		p.put()
		return
	}
	p.idle = append(p.idle, conn)
	p.mu.Unlock()
	p.put()
}

// Discard closes a connection the holder knows is unusable, freeing its
// slot without the liveness probe.
func (p *Pool) Discard(conn Querier) {
	if conn == nil {
		return
	}
	closeConn(conn)
	p.put()
}

// Close shuts the pool down. In-flight holders may still call Release;
// their connections are closed on the way in.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	close(p.done)
	p.mu.Unlock()

	for _, conn := range idle {
		closeConn(conn)
	}
}

// Stats reports the current idle count and total capacity.
func (p *Pool) Stats() (idle, capacity int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle), cap(p.sem)
}

// put returns a capacity token. Non-blocking: tokens only come back for
// slots handed out by Acquire, so the channel can never be full here unless
// the pool is already closed.
func (p *Pool) put() {
	select {
	case p.sem <- struct{}{}:
	default:
	}
}

func closeConn(conn Querier) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	_ = conn.Close(ctx)
}
