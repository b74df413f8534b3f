package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"qna/pkg/errs"
)

type fakeConn struct {
	mu      sync.Mutex
	pingErr error
	closed  bool
}

func (f *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (f *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (f *fakeConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, nil
}

func (f *fakeConn) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeConn) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) breakConn() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = errors.New("connection reset")
}

func newFakeDial(count *atomic.Int32) DialFunc {
	return func(ctx context.Context) (Querier, error) {
		count.Add(1)
		return &fakeConn{}, nil
	}
}

func TestAcquireReusesReleasedConn(t *testing.T) {
	ctx := context.Background()
	var dials atomic.Int32

	p, err := New(ctx, Config{MinConns: 0, MaxConns: 2, AcquireTimeout: time.Second}, newFakeDial(&dials))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	c1, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	p.Release(c1)

	c2, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer p.Release(c2)

	if c1 != c2 {
		t.Fatal("expected the released connection to be reused")
	}
	if got := dials.Load(); got != 1 {
		t.Fatalf("expected 1 dial, got %d", got)
	}
}

func TestMinConnsDialedEagerly(t *testing.T) {
	var dials atomic.Int32

	p, err := New(context.Background(), Config{MinConns: 3, MaxConns: 5, AcquireTimeout: time.Second}, newFakeDial(&dials))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	if got := dials.Load(); got != 3 {
		t.Fatalf("expected 3 eager dials, got %d", got)
	}
	if idle, capacity := p.Stats(); idle != 3 || capacity != 5 {
		t.Fatalf("expected idle=3 capacity=5, got idle=%d capacity=%d", idle, capacity)
	}
}

func TestExhaustedPoolTimesOut(t *testing.T) {
	ctx := context.Background()
	var dials atomic.Int32

	p, err := New(ctx, Config{MaxConns: 1, AcquireTimeout: time.Second}, newFakeDial(&dials))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	held, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := p.Acquire(short); !errors.Is(err, errs.ErrPoolTimeout) {
		t.Fatalf("expected ErrPoolTimeout, got %v", err)
	}

	p.Release(held)

	again, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	p.Release(again)
}

func TestBlockedAcquireUnblocksOnRelease(t *testing.T) {
	ctx := context.Background()
	var dials atomic.Int32

	p, err := New(ctx, Config{MaxConns: 1, AcquireTimeout: 5 * time.Second}, newFakeDial(&dials))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	held, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	got := make(chan Querier, 1)
	go func() {
		conn, err := p.Acquire(ctx)
		if err != nil {
			t.Errorf("blocked Acquire: %v", err)
			close(got)
			return
		}
		got <- conn
	}()

	// the second caller must be parked, not failed
	select {
	case <-got:
		t.Fatal("second Acquire should block while the only connection is held")
	case <-time.After(50 * time.Millisecond):
	}

	p.Release(held)

	select {
	case conn := <-got:
		if conn == nil {
			t.Fatal("blocked Acquire returned no connection")
		}
		p.Release(conn)
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not unblock after Release")
	}
}

func TestBrokenConnDiscardedOnRelease(t *testing.T) {
	ctx := context.Background()
	var dials atomic.Int32

	p, err := New(ctx, Config{MaxConns: 1, AcquireTimeout: time.Second}, newFakeDial(&dials))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	conn, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	fc := conn.(*fakeConn)
	fc.breakConn()
	p.Release(conn)

	if !fc.isClosed() {
		t.Fatal("expected broken connection to be closed on release")
	}
	if idle, _ := p.Stats(); idle != 0 {
		t.Fatalf("broken connection must not return to the idle set, idle=%d", idle)
	}

	// the freed slot is re-dialed lazily
	replacement, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire replacement: %v", err)
	}
	p.Release(replacement)

	if got := dials.Load(); got != 2 {
		t.Fatalf("expected a second dial for the replacement, got %d", got)
	}
}

func TestDialFailureFreesSlot(t *testing.T) {
	ctx := context.Background()
	dialErr := errors.New("connection refused")
	failing := func(ctx context.Context) (Querier, error) { return nil, dialErr }

	p, err := New(ctx, Config{MaxConns: 1, AcquireTimeout: time.Second}, failing)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	if _, err := p.Acquire(ctx); !errors.Is(err, errs.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	// slot must not leak: a second attempt fails on dial again, not on timeout
	if _, err := p.Acquire(ctx); !errors.Is(err, errs.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable on retry, got %v", err)
	}
}

func TestAcquireAfterClose(t *testing.T) {
	var dials atomic.Int32

	p, err := New(context.Background(), Config{MinConns: 1, MaxConns: 2, AcquireTimeout: time.Second}, newFakeDial(&dials))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Close()

	if _, err := p.Acquire(context.Background()); !errors.Is(err, errs.ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestNoSharedConnUnderContention(t *testing.T) {
	ctx := context.Background()
	var dials atomic.Int32

	p, err := New(ctx, Config{MaxConns: 4, AcquireTimeout: 5 * time.Second}, newFakeDial(&dials))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	var mu sync.Mutex
	holders := make(map[Querier]bool)
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := p.Acquire(ctx)
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}

			mu.Lock()
			if holders[conn] {
				t.Errorf("connection handed to two holders at once")
			}
			holders[conn] = true
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			holders[conn] = false
			mu.Unlock()
			p.Release(conn)
		}()
	}
	wg.Wait()

	if got := dials.Load(); got > 4 {
		t.Fatalf("pool dialed more connections than its capacity: %d", got)
	}
}
