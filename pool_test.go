package edba

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/caohanyu/edba/backend"
)

func registerCountingFakeDriver(name string) (dialCount *int32) {
	dialCount = new(int32)
	Register(name, func(ci backend.ConnInfoView, monitor backend.Monitor) (backend.Connection, error) {
		atomic.AddInt32(dialCount, 1)
		return newFakeConnection(name, 1, 0, newFakeStatement(&fakeResult{})), nil
	})
	return dialCount
}

func TestPoolTryOpenExhausts(t *testing.T) {
	registerCountingFakeDriver("poolfake1")
	p, err := NewPool("poolfake1:dbname=x", 2)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	s1, err := p.TryOpen(context.Background())
	if err != nil {
		t.Fatalf("TryOpen 1: %v", err)
	}
	s2, err := p.TryOpen(context.Background())
	if err != nil {
		t.Fatalf("TryOpen 2: %v", err)
	}
	if _, err := p.TryOpen(context.Background()); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("TryOpen 3 = %v, want ErrPoolExhausted", err)
	}

	s1.Close()
	s2.Close()
}

func TestPoolReleaseReusesIdleConnection(t *testing.T) {
	dials := registerCountingFakeDriver("poolfake2")
	p, err := NewPool("poolfake2:dbname=x", 1)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	s1, err := p.TryOpen(context.Background())
	if err != nil {
		t.Fatalf("TryOpen: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := p.TryOpen(context.Background())
	if err != nil {
		t.Fatalf("TryOpen (reuse): %v", err)
	}
	defer s2.Close()

	if atomic.LoadInt32(dials) != 1 {
		t.Errorf("dial count = %d, want 1 (should reuse the idle connection)", atomic.LoadInt32(dials))
	}
}

func TestPoolOpenBlocksUntilReleased(t *testing.T) {
	registerCountingFakeDriver("poolfake3")
	p, err := NewPool("poolfake3:dbname=x", 1)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	s1, err := p.TryOpen(context.Background())
	if err != nil {
		t.Fatalf("TryOpen: %v", err)
	}

	var g errgroup.Group
	acquired := make(chan struct{})
	g.Go(func() error {
		s2, err := p.Open(context.Background())
		if err != nil {
			return err
		}
		close(acquired)
		return s2.Close()
	})

	select {
	case <-acquired:
		t.Fatal("Open returned before the pool had any capacity")
	case <-time.After(20 * time.Millisecond):
	}

	if err := s1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("Open never unblocked after the connection was released")
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup: %v", err)
	}
}

func TestPoolOpenRespectsContextCancellation(t *testing.T) {
	registerCountingFakeDriver("poolfake4")
	p, err := NewPool("poolfake4:dbname=x", 1)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	s1, err := p.TryOpen(context.Background())
	if err != nil {
		t.Fatalf("TryOpen: %v", err)
	}
	defer s1.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := p.Open(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Open(cancelable) = %v, want context.DeadlineExceeded", err)
	}
}

func TestPoolCloseInvalidatesOutstandingSessions(t *testing.T) {
	registerCountingFakeDriver("poolfake5")
	p, err := NewPool("poolfake5:dbname=x", 1)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	s1, err := p.TryOpen(context.Background())
	if err != nil {
		t.Fatalf("TryOpen: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The outstanding session's Close must now close the connection
	// directly rather than resurrecting it into the closed pool.
	if err := s1.Close(); err != nil {
		t.Fatalf("Close (stale session): %v", err)
	}

	if _, err := p.Open(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("Open after Close = %v, want ErrPoolClosed", err)
	}
}

func TestPoolInitCallbackRunsOncePerDial(t *testing.T) {
	registerCountingFakeDriver("poolfake6")
	var inits int32
	p, err := NewPool("poolfake6:dbname=x", 1, WithInitCallback(func(*Session) error {
		atomic.AddInt32(&inits, 1)
		return nil
	}))
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	s1, err := p.TryOpen(context.Background())
	if err != nil {
		t.Fatalf("TryOpen: %v", err)
	}
	s1.Close()
	s2, err := p.TryOpen(context.Background())
	if err != nil {
		t.Fatalf("TryOpen (reuse): %v", err)
	}
	defer s2.Close()

	if atomic.LoadInt32(&inits) != 1 {
		t.Errorf("init callback ran %d times, want 1 (once per physical dial)", inits)
	}
}
