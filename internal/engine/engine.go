package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/metric"
	"github.com/roach88/ahghee/internal/queryir"
)

// Engine implements Storage over a Backend.
//
// Thread-safety model:
//   - Add(): serialized; concurrent callers wait their turn
//   - Items(): safe from any goroutine, roots evaluated on the worker pool
//   - Close(): must be called once, after all other calls returned
type Engine struct {
	backend Backend
	clock   *Clock
	pool    *ants.Pool
	logger  *slog.Logger
	metrics *metric.Metrics

	workers   int
	maxVisits int

	writeMu sync.Mutex
}

var _ Storage = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of roots evaluated concurrently.
//
// Default: runtime.GOMAXPROCS(0)
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithMaxVisits sets the backend read quota per root.
//
// Default: 10000 reads (DefaultMaxVisits)
// Use WithMaxVisits(0) to disable the quota.
func WithMaxVisits(n int) Option {
	return func(e *Engine) {
		e.maxVisits = n
	}
}

// WithLogger sets the engine's logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics records engine activity into m. Default: no metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New opens an Engine over backend.
//
// The version clock resumes after the backend's last stored seq, so
// versions written by this engine always sort after existing ones.
func New(ctx context.Context, backend Backend, opts ...Option) (*Engine, error) {
	e := &Engine{
		backend:   backend,
		logger:    slog.Default(),
		workers:   runtime.GOMAXPROCS(0),
		maxVisits: DefaultMaxVisits,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}

	last, err := backend.LastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("read last seq: %w", err)
	}
	e.clock = NewClockAt(last)

	pool, err := ants.NewPool(e.workers, ants.WithPanicHandler(func(v any) {
		e.logger.Error("pipeline worker panic", "panic", v)
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	e.pool = pool

	e.logger.Debug("engine opened",
		"workers", e.workers,
		"max_visits", e.maxVisits,
		"last_seq", last,
	)
	return e, nil
}

// Add stores nodes as one batch.
//
// Each node is canonicalized, hashed and stamped with the next seq. The
// backend skips nodes whose content is unchanged, so re-adding a node
// does not create a new version. Either every node is stored or none is.
func (e *Engine) Add(ctx context.Context, nodes []ir.Node) error {
	if len(nodes) == 0 {
		return nil
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	versions := make([]Version, len(nodes))
	for i, n := range nodes {
		n.Canonicalize()
		hash, err := ir.NodeContentHash(n)
		if err != nil {
			return storageError("add", n.ID, fmt.Errorf("hash node: %w", err))
		}
		versions[i] = Version{
			Seq:         e.clock.Next(),
			ContentHash: hash,
			Node:        n,
		}
	}

	written, err := e.backend.Write(ctx, versions)
	if err != nil {
		return storageError("add", ir.NodeID{}, err)
	}
	e.metrics.AddNodes(written)

	e.logger.Debug("nodes added",
		"requested", len(nodes),
		"written", written,
		"seq", e.clock.Current(),
	)
	return nil
}

// Items evaluates pipeline from each id and returns one Item per id in
// request order.
//
// A root that is missing, exceeds the visit quota, or hits a backend error
// gets that error in its Item.Err; the other roots are unaffected. The
// returned error is non-nil only when ctx is cancelled.
func (e *Engine) Items(ctx context.Context, ids []ir.NodeID, pipeline *queryir.Step) ([]Item, error) {
	items := make([]Item, len(ids))
	op := "get"
	if pipeline != nil {
		op = "query"
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		items[i].ID = id
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			nodes, err := e.evaluate(ctx, id, pipeline)
			if err != nil {
				items[i].Err = storageError(op, id, err)
			} else {
				items[i].Nodes = nodes
			}
			e.metrics.ObserveItem(items[i].Err)
		})
		if err != nil {
			wg.Done()
			items[i].Err = storageError(op, id, fmt.Errorf("submit: %w", err))
			e.metrics.ObserveItem(items[i].Err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (e *Engine) evaluate(ctx context.Context, id ir.NodeID, pipeline *queryir.Step) (nodes []ir.Node, err error) {
	start := time.Now()
	r := &run{
		ctx:     ctx,
		backend: e.backend,
		root:    id,
		quota:   newVisitQuota(id, e.maxVisits),
		logger:  e.logger,
		metrics: e.metrics,
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("pipeline panic: %v", p)
		}
		e.logger.Debug("root evaluated",
			"root", id.String(),
			"nodes", len(nodes),
			"visits", r.quota.Used(),
			"duration", time.Since(start),
			"error", err,
		)
	}()
	return r.execute(pipeline)
}

// Flush makes every added node durable.
func (e *Engine) Flush(ctx context.Context) error {
	if err := e.backend.Sync(ctx); err != nil {
		return storageError("flush", ir.NodeID{}, err)
	}
	return nil
}

// History returns every stored version of id, oldest first. An id with no
// versions is a NOT_FOUND StorageError.
func (e *Engine) History(ctx context.Context, id ir.NodeID) ([]Version, error) {
	versions, err := e.backend.Versions(ctx, id)
	if err != nil {
		return nil, storageError("history", id, err)
	}
	if len(versions) == 0 {
		return nil, storageError("history", id, ErrNotFound)
	}
	return versions, nil
}

// Close releases the worker pool and closes the backend.
func (e *Engine) Close() error {
	var errs []error
	if e.pool != nil {
		if err := e.pool.ReleaseTimeout(3 * time.Second); err != nil {
			errs = append(errs, fmt.Errorf("release worker pool: %w", err))
		}
	}
	if err := e.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close backend: %w", err))
	}
	return errors.Join(errs...)
}
