// Package session runs DSL commands against a storage engine.
//
// A Session owns one backend and one engine. It compiles each command,
// executes it and reports a Result per command; a failing command never
// stops the commands after it. Writes are flushed automatically before
// the next get.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/ahghee/internal/compiler"
	"github.com/roach88/ahghee/internal/config"
	"github.com/roach88/ahghee/internal/engine"
	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/kvstore"
	"github.com/roach88/ahghee/internal/metric"
	"github.com/roach88/ahghee/internal/parser"
	"github.com/roach88/ahghee/internal/store"
	"github.com/roach88/ahghee/internal/syntax"
)

// InMemoryPath opens sqlite and badger backends without touching disk.
const InMemoryPath = ":memory:"

// Session executes commands. It is not safe for concurrent use.
type Session struct {
	storage engine.Storage
	backend string
	metrics *metric.Metrics
	logger  *slog.Logger
	now     func() time.Time
	scopes  compiler.ScopeGenerator
	dirty   bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithNow replaces the wall clock used to time commands.
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithScopeGenerator sets the blank node scope ids used by Load.
// Default: compiler.UUIDv7Generator.
func WithScopeGenerator(g compiler.ScopeGenerator) Option {
	return func(s *Session) {
		s.scopes = g
	}
}

// Open creates the backend cfg names and an engine over it.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	s := &Session{
		backend: cfg.Store.Backend,
		metrics: metric.New(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		scopes:  compiler.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}

	backend, err := openBackend(cfg.Store, s.logger)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(ctx, backend,
		engine.WithWorkers(cfg.Workers),
		engine.WithMaxVisits(cfg.MaxVisits),
		engine.WithLogger(s.logger),
		engine.WithMetrics(s.metrics),
	)
	if err != nil {
		return nil, errors.Join(err, backend.Close())
	}
	s.storage = eng

	s.logger.Info("session opened", "backend", cfg.Store.Backend, "path", cfg.Store.Path)
	return s, nil
}

func openBackend(cfg config.StoreConfig, logger *slog.Logger) (engine.Backend, error) {
	switch cfg.Backend {
	case "sqlite":
		st, err := store.Open(cfg.Path, store.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return st, nil

	case "badger":
		opts := []kvstore.Option{kvstore.WithLogger(logger)}
		if cfg.Path == InMemoryPath {
			opts = append(opts, kvstore.WithInMemory())
		}
		kv, err := kvstore.Open(cfg.Path, opts...)
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		return kv, nil

	case "memory":
		return engine.NewMemoryBackend(), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// Backend names the storage backend in use.
func (s *Session) Backend() string {
	return s.backend
}

// Metrics returns the session's collectors.
func (s *Session) Metrics() *metric.Metrics {
	return s.metrics
}

// Exec parses src and runs every command in it. A syntax error rejects
// the whole input before anything runs; compile and storage errors are
// reported on the failing command's Result.
func (s *Session) Exec(ctx context.Context, src string) ([]Result, error) {
	cmds, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(cmds))
	for _, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, s.run(ctx, cmd))
	}
	return results, nil
}

func (s *Session) run(ctx context.Context, cmd *syntax.Command) Result {
	start := s.now()
	res := Result{Command: cmd.Text, Kind: cmd.Kind}

	compiled, err := compiler.Compile(cmd)
	if err != nil {
		res.Err = err
	} else {
		switch compiled.Kind {
		case syntax.CommandPut:
			res.Flags = compiled.Put.Flags
			res.Err = s.put(ctx, compiled.Put, &res)
		case syntax.CommandGet:
			res.Flags = compiled.Get.Flags
			res.Err = s.get(ctx, compiled.Get, &res)
		}
	}

	res.Elapsed = s.now().Sub(start)
	s.metrics.ObserveCommand(cmd.Kind.String(), res.Err, res.Elapsed)
	s.logger.Debug("command finished",
		"kind", cmd.Kind.String(),
		"elapsed", res.Elapsed,
		"error", res.Err,
	)
	return res
}

func (s *Session) put(ctx context.Context, req *compiler.PutRequest, res *Result) error {
	res.IDs = make([]ir.NodeID, len(req.Nodes))
	for i, n := range req.Nodes {
		res.IDs[i] = n.ID
	}
	if err := s.storage.Add(ctx, req.Nodes); err != nil {
		return err
	}
	s.dirty = true
	res.Written = len(req.Nodes)
	return nil
}

func (s *Session) get(ctx context.Context, req *compiler.GetRequest, res *Result) error {
	res.IDs = req.IDs
	if err := s.Flush(ctx); err != nil {
		return err
	}

	items, err := s.storage.Items(ctx, req.IDs, req.Pipeline)
	if err != nil {
		return err
	}
	res.Items = items

	if !req.Flags.Has(compiler.PrintHistory) {
		return nil
	}
	res.History = make(map[ir.NodeKey][]engine.Version, len(items))
	for _, item := range items {
		if item.Err != nil {
			continue
		}
		versions, err := s.storage.History(ctx, item.ID)
		if err != nil {
			return err
		}
		res.History[item.ID.Key()] = versions
	}
	return nil
}

// Load imports an N-Triples document. Blank nodes are scoped to this
// document.
func (s *Session) Load(ctx context.Context, r io.Reader) (Result, error) {
	start := s.now()
	res := Result{Command: "load", Kind: syntax.CommandPut}

	triples, err := parser.ParseNTriples(r)
	if err != nil {
		return res, err
	}
	nodes, err := compiler.FromTriples(triples, compiler.NewBlankNodeScope(s.scopes))
	if err != nil {
		return res, err
	}

	res.Err = s.put(ctx, &compiler.PutRequest{Nodes: nodes}, &res)
	res.Elapsed = s.now().Sub(start)
	s.metrics.ObserveCommand("load", res.Err, res.Elapsed)
	s.logger.Info("n-triples loaded", "triples", len(triples), "nodes", len(nodes))
	return res, nil
}

// History returns every stored version of id.
func (s *Session) History(ctx context.Context, id ir.NodeID) ([]engine.Version, error) {
	if err := s.Flush(ctx); err != nil {
		return nil, err
	}
	return s.storage.History(ctx, id)
}

// Flush makes pending writes durable. It is a no-op when nothing was
// written since the last flush.
func (s *Session) Flush(ctx context.Context) error {
	if !s.dirty {
		return nil
	}
	s.logger.Debug("flushing writes")
	if err := s.storage.Flush(ctx); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Close flushes pending writes and releases the backend.
func (s *Session) Close() error {
	flushErr := s.Flush(context.Background())
	return errors.Join(flushErr, s.storage.Close())
}
