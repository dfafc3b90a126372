package probe

import (
	"sync"
	"time"

	"github.com/cfdtools/solvewatch/pkg/sshutil"
)

// dialFunc matches sshutil.Dial; swapped out in tests.
type dialFunc func(host string, opts sshutil.Options) (sshutil.Executor, error)

func realDial(host string, opts sshutil.Options) (sshutil.Executor, error) {
	return sshutil.Dial(host, opts)
}

// Pool keeps SSH connections alive between cycles so each probe doesn't pay
// for a fresh handshake. Connections are keyed by address, liveness-checked
// on checkout, and replaced when dead.
type Pool struct {
	mu          sync.Mutex
	connections map[string]*poolEntry
	opts        sshutil.Options
	dial        dialFunc
}

type poolEntry struct {
	client   sshutil.Executor
	lastUsed time.Time
}

// NewPool creates a connection pool dialing with the given options.
func NewPool(opts sshutil.Options) *Pool {
	return &Pool{
		connections: make(map[string]*poolEntry),
		opts:        opts,
		dial:        realDial,
	}
}

// Get retrieves an existing connection for the address, or dials a new one.
// Stale connections are closed and replaced.
func (p *Pool) Get(address string) (sshutil.Executor, error) {
	p.mu.Lock()
	entry, exists := p.connections[address]
	p.mu.Unlock()

	if exists && entry.client != nil {
		if isAlive(entry.client) {
			p.mu.Lock()
			entry.lastUsed = time.Now()
			p.mu.Unlock()
			return entry.client, nil
		}
		p.CloseOne(address)
	}

	client, err := p.dial(address, p.opts)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.connections[address] = &poolEntry{
		client:   client,
		lastUsed: time.Now(),
	}
	p.mu.Unlock()

	return client, nil
}

// Close closes all connections in the pool and clears it.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for address, entry := range p.connections {
		if entry.client != nil {
			_ = entry.client.Close()
		}
		delete(p.connections, address)
	}
}

// CloseOne closes and removes a specific connection from the pool.
func (p *Pool) CloseOne(address string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.connections[address]; ok {
		if entry.client != nil {
			_ = entry.client.Close()
		}
		delete(p.connections, address)
	}
}

// Size returns the number of pooled connections.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.connections)
}

// isAlive checks whether a connection can still run commands.
func isAlive(client sshutil.Executor) bool {
	_, _, exitCode, err := client.Exec("true")
	return err == nil && exitCode == 0
}
