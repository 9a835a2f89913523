// Package kvstore provides a Badger-backed node store.
//
// It keeps the same version semantics as the SQLite store but has no
// query language, so where filters are evaluated by the engine in memory.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/roach88/ahghee/internal/engine"
	"github.com/roach88/ahghee/internal/ir"
)

// Store implements engine.Backend using BadgerDB.
type Store struct {
	db       *badger.DB
	logger   *slog.Logger
	inMemory bool
}

var _ engine.Backend = (*Store)(nil)

// Option configures a Store.
type Option func(*badger.Options, *Store)

// WithLogger sets the store's logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(_ *badger.Options, s *Store) {
		s.logger = l
	}
}

// WithInMemory keeps all data in memory; the path is ignored.
func WithInMemory() Option {
	return func(o *badger.Options, _ *Store) {
		*o = o.WithInMemory(true).WithDir("").WithValueDir("")
	}
}

// Open opens or creates a Badger database in dir.
func Open(dir string, opts ...Option) (*Store, error) {
	bopts := badger.DefaultOptions(dir)
	bopts.Logger = nil
	bopts.ValueThreshold = 1 << 10 // 1KB - keep typical node bodies in the LSM tree

	s := &Store{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&bopts, s)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	s.db = db
	s.inMemory = bopts.InMemory
	s.logger.Debug("badger store opened", "dir", dir, "in_memory", bopts.InMemory)
	return s, nil
}

// record is the stored form of one version.
type record struct {
	Seq         int64           `json:"seq"`
	ContentHash string          `json:"contentHash"`
	Node        json.RawMessage `json:"node"`
}

func encodeRecord(v engine.Version) ([]byte, error) {
	body, err := ir.MarshalCanonical(v.Node)
	if err != nil {
		return nil, fmt.Errorf("marshal node %s: %w", v.Node.ID, err)
	}
	return json.Marshal(record{Seq: v.Seq, ContentHash: v.ContentHash, Node: body})
}

func decodeRecord(b []byte) (record, error) {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return record{}, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}

func (r record) version() (engine.Version, error) {
	n, err := ir.DecodeNode(r.Node)
	if err != nil {
		return engine.Version{}, err
	}
	return engine.Version{Seq: r.Seq, ContentHash: r.ContentHash, Node: n}, nil
}

// Write stores versions in one transaction and returns how many were new.
// A version whose content hash equals the node's current hash is skipped.
func (s *Store) Write(ctx context.Context, versions []engine.Version) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	written := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		last, err := lastSeq(txn)
		if err != nil {
			return err
		}

		for _, v := range versions {
			id := v.Node.ID
			current, err := getRecord(txn, nodeKey(id))
			if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("read current %s: %w", id, err)
			}
			if err == nil && current.ContentHash == v.ContentHash {
				continue
			}

			val, err := encodeRecord(v)
			if err != nil {
				return err
			}
			if err := txn.Set(versionKey(id, v.Seq), val); err != nil {
				return fmt.Errorf("write version of %s: %w", id, err)
			}
			if err := txn.Set(nodeKey(id), val); err != nil {
				return fmt.Errorf("write node %s: %w", id, err)
			}
			last = max(last, v.Seq)
			written++
		}
		return txn.Set(keyLastSeq, encodeSeq(last))
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("versions written",
		"requested", len(versions),
		"written", written,
	)
	return written, nil
}

// Read returns the current version of id, or engine.ErrNotFound.
func (s *Store) Read(ctx context.Context, id ir.NodeID) (ir.Node, error) {
	if err := ctx.Err(); err != nil {
		return ir.Node{}, err
	}

	var r record
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		r, err = getRecord(txn, nodeKey(id))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ir.Node{}, engine.ErrNotFound
	}
	if err != nil {
		return ir.Node{}, fmt.Errorf("read node %s: %w", id, err)
	}

	v, err := r.version()
	if err != nil {
		return ir.Node{}, err
	}
	return v.Node, nil
}

// Versions returns every stored version of id, oldest first.
// Unknown ids return an empty slice.
func (s *Store) Versions(ctx context.Context, id ir.NodeID) ([]engine.Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	versions := []engine.Version{}
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := versionPrefix(id)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// seq suffix
			if len(it.Item().Key()) != len(prefix)+8 {
				continue
			}
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			r, err := decodeRecord(val)
			if err != nil {
				return err
			}
			v, err := r.version()
			if err != nil {
				return err
			}
			versions = append(versions, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan versions of %s: %w", id, err)
	}
	return versions, nil
}

// LastSeq returns the highest stored seq, 0 for an empty store.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		seq, err = lastSeq(txn)
		return err
	})
	return seq, err
}

// Sync flushes Badger's write-ahead log to disk.
func (s *Store) Sync(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inMemory {
		return nil
	}
	if err := s.db.Sync(); err != nil {
		return fmt.Errorf("sync badger: %w", err)
	}
	return nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

func getRecord(txn *badger.Txn, key []byte) (record, error) {
	item, err := txn.Get(key)
	if err != nil {
		return record{}, err
	}
	var r record
	err = item.Value(func(val []byte) error {
		r, err = decodeRecord(val)
		return err
	})
	return r, err
}

func lastSeq(txn *badger.Txn) (int64, error) {
	item, err := txn.Get(keyLastSeq)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read last seq: %w", err)
	}
	var seq int64
	err = item.Value(func(val []byte) error {
		seq = decodeSeq(val)
		return nil
	})
	return seq, err
}
