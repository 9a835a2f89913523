package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/ahghee/internal/ir"
)

// MemoryBackend keeps every version in process memory. It backs the
// "memory" store backend and the engine's own tests.
//
// Thread-safety: MemoryBackend is safe for concurrent use.
type MemoryBackend struct {
	mu       sync.RWMutex
	versions map[ir.NodeKey][]Version
	lastSeq  int64
	closed   bool
}

// NewMemoryBackend creates an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{versions: make(map[ir.NodeKey][]Version)}
}

var errClosed = errors.New("backend is closed")

// Write implements Backend.
func (m *MemoryBackend) Write(ctx context.Context, versions []Version) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, errClosed
	}

	written := 0
	for _, v := range versions {
		key := v.Node.ID.Key()
		history := m.versions[key]
		if n := len(history); n > 0 && history[n-1].ContentHash == v.ContentHash {
			continue
		}
		m.versions[key] = append(history, v)
		if v.Seq > m.lastSeq {
			m.lastSeq = v.Seq
		}
		written++
	}
	return written, nil
}

// Read implements Backend.
func (m *MemoryBackend) Read(ctx context.Context, id ir.NodeID) (ir.Node, error) {
	if err := ctx.Err(); err != nil {
		return ir.Node{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ir.Node{}, errClosed
	}

	history := m.versions[id.Key()]
	if len(history) == 0 {
		return ir.Node{}, ErrNotFound
	}
	return history[len(history)-1].Node, nil
}

// Versions implements Backend.
func (m *MemoryBackend) Versions(ctx context.Context, id ir.NodeID) ([]Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errClosed
	}

	history := m.versions[id.Key()]
	out := make([]Version, len(history))
	copy(out, history)
	return out, nil
}

// LastSeq implements Backend.
func (m *MemoryBackend) LastSeq(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSeq, nil
}

// Sync implements Backend. Memory writes are immediately visible.
func (m *MemoryBackend) Sync(ctx context.Context) error {
	return ctx.Err()
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
