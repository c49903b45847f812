package evm

import (
	"context"
	"sync"

	"github.com/vietddude/paygate/internal/core/domain"
)

// DialFunc opens a client for one chain.
type DialFunc func(ctx context.Context, chain, url string) (ChainClient, error)

// Pool lazily dials and caches one client per chain key. Dials for
// different chains run independently.
type Pool struct {
	dial DialFunc

	mu      sync.Mutex
	clients map[string]*poolEntry
}

// poolEntry holds one dial. ready is closed when it finishes.
type poolEntry struct {
	ready  chan struct{}
	client ChainClient
	err    error
}

// NewPool creates a pool. A nil dial uses Dial.
func NewPool(dial DialFunc) *Pool {
	if dial == nil {
		dial = func(ctx context.Context, chain, url string) (ChainClient, error) {
			c, err := Dial(ctx, chain, url)
			if err != nil {
				return nil, err
			}
			return c, nil
		}
	}
	return &Pool{dial: dial, clients: make(map[string]*poolEntry)}
}

// Get returns the cached client for chain, dialing it on first use.
// Concurrent callers for the same chain share one dial. Failed dials are
// not cached.
func (p *Pool) Get(ctx context.Context, chain domain.ChainConfig) (ChainClient, error) {
	p.mu.Lock()
	e, ok := p.clients[chain.Key]
	if !ok {
		e = &poolEntry{ready: make(chan struct{})}
		p.clients[chain.Key] = e
	}
	p.mu.Unlock()

	if !ok {
		e.client, e.err = p.dial(ctx, chain.Key, chain.RPC)
		if e.err != nil {
			p.mu.Lock()
			if p.clients[chain.Key] == e {
				delete(p.clients, chain.Key)
			}
			p.mu.Unlock()
		}
		close(e.ready)
	}

	select {
	case <-e.ready:
		return e.client, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close closes every dialed client. Dials still in flight are left alone.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, e := range p.clients {
		select {
		case <-e.ready:
			if e.client != nil {
				e.client.Close()
			}
			delete(p.clients, key)
		default:
		}
	}
}
