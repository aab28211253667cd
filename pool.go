package edba

import (
	"context"
	"sync"

	"github.com/caohanyu/edba/backend"
)

// Pool is a bounded connection pool (spec §4.8/§9): up to MaxSize
// connections total, idle ones kept on a LIFO stack so the
// most-recently-used connection (warmest OS/driver caches) is handed out
// first. remainingUnopened tracks how many connections the pool may
// still lazily create before it must wait for one to be returned.
//
// Checked-out sessions are proxies: Session.Close returns the underlying
// backend.Connection to the pool instead of closing it. A generation
// counter invalidates any proxy still outstanding after Pool.Close, so a
// late Close from a caller that forgot to release its session can't
// resurrect a connection into a closed pool.
type Pool struct {
	uri          string
	ci           *ConnInfo
	monitor      Monitor
	logger       Logger
	maxSize      int
	initCallback func(*Session) error

	mu                sync.Mutex
	cond              *sync.Cond
	idle              []backend.Connection
	remainingUnopened int
	generation        uint64
	closed            bool
}

// NewPool creates a pool that opens connections against uri (parsed once
// here to fail fast on a malformed connection string) up to maxSize at a
// time. A WithInitCallback option, if given, runs exactly once per
// physical connection, immediately after it is opened.
func NewPool(uri string, maxSize int, opts ...Option) (*Pool, error) {
	ci, err := ParseConnInfo(uri)
	if err != nil {
		return nil, err
	}
	if maxSize <= 0 {
		maxSize = 1
	}
	o := newOptions(opts)
	p := &Pool{
		uri:               uri,
		ci:                ci,
		monitor:           o.monitor,
		logger:            o.logger,
		maxSize:           maxSize,
		initCallback:      o.initCallback,
		remainingUnopened: maxSize,
	}
	p.cond = sync.NewCond(&p.mu)
	return p, nil
}

// Open checks out a session, blocking until one is available or ctx is
// done. The returned Session's Close returns it to the pool.
func (p *Pool) Open(ctx context.Context) (*Session, error) {
	// Nudge any blocked waiter awake when ctx ends, so it can reconsider
	// rather than sleeping past a cancellation.
	stop := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
	})
	defer stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if p.closed {
			return nil, ErrPoolClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n := len(p.idle); n > 0 {
			conn := p.idle[n-1]
			p.idle = p.idle[:n-1]
			gen := p.generation
			return p.wrap(conn, gen), nil
		}
		if p.remainingUnopened > 0 {
			p.remainingUnopened--
			gen := p.generation
			p.mu.Unlock()
			conn, err := p.dial(ctx)
			p.mu.Lock()
			if err != nil {
				p.remainingUnopened++
				p.cond.Broadcast()
				return nil, err
			}
			return p.wrap(conn, gen), nil
		}
		p.cond.Wait()
	}
}

// TryOpen is Open's non-blocking counterpart: it returns ErrPoolExhausted
// immediately instead of waiting when no connection is idle or
// unopened.
func (p *Pool) TryOpen(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		conn := p.idle[n-1]
		p.idle = p.idle[:n-1]
		gen := p.generation
		p.mu.Unlock()
		return p.wrap(conn, gen), nil
	}
	if p.remainingUnopened == 0 {
		p.mu.Unlock()
		return nil, ErrPoolExhausted
	}
	p.remainingUnopened--
	gen := p.generation
	p.mu.Unlock()

	conn, err := p.dial(ctx)
	if err != nil {
		p.mu.Lock()
		p.remainingUnopened++
		p.cond.Broadcast()
		p.mu.Unlock()
		return nil, err
	}
	return p.wrap(conn, gen), nil
}

func (p *Pool) dial(ctx context.Context) (backend.Connection, error) {
	factory, err := lookup(p.ci.DriverName())
	if err != nil {
		return nil, err
	}
	conn, err := factory(p.ci, p.monitor)
	if err != nil {
		return nil, wrapBackendErr("pool.dial", err)
	}
	if p.initCallback != nil {
		sess := newSession(conn, p.ci, p.monitor, p.logger, nil)
		if err := p.initCallback(sess); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

func (p *Pool) wrap(conn backend.Connection, gen uint64) *Session {
	return newSession(conn, p.ci, p.monitor, p.logger, func() {
		p.release(conn, gen)
	})
}

func (p *Pool) release(conn backend.Connection, gen uint64) {
	p.mu.Lock()
	if p.closed || gen != p.generation {
		p.mu.Unlock()
		if err := conn.Close(); err != nil && p.logger != nil {
			p.logger.WarnContext(context.Background(), "edba: closing stale pooled connection", "error", err)
		}
		return
	}
	p.idle = append(p.idle, conn)
	p.cond.Broadcast()
	p.mu.Unlock()
}

// Close closes every idle connection and invalidates any session still
// checked out: when such a session is eventually closed, its connection
// is closed directly instead of being returned to the pool.
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.generation++
	idle := p.idle
	p.idle = nil
	p.cond.Broadcast()
	p.mu.Unlock()

	var firstErr error
	for _, conn := range idle {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
