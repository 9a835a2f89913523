package engine

import (
	"context"

	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/queryir"
)

// Item is the result for one requested root id. Exactly one of Nodes and
// Err is meaningful.
type Item struct {
	ID    ir.NodeID
	Nodes []ir.Node
	Err   error
}

// Version is one stored revision of a node.
type Version struct {
	Seq         int64
	ContentHash string
	Node        ir.Node
}

// Storage is the contract between the command layer and the store.
type Storage interface {
	// Add stores nodes as one batch; the batch succeeds or fails as a whole.
	Add(ctx context.Context, nodes []ir.Node) error
	// Items returns exactly one Item per id, in request order.
	Items(ctx context.Context, ids []ir.NodeID, pipeline *queryir.Step) ([]Item, error)
	// Flush makes every added node durable.
	Flush(ctx context.Context) error
	// History returns every stored version of id, oldest first.
	History(ctx context.Context, id ir.NodeID) ([]Version, error)
	Close() error
}

// Backend persists node versions. Implemented by the SQLite store, the
// Badger store and MemoryBackend.
//
// Backends are keyed by ir.NodeKey: Graph and IRI identify a node, Remote
// and Pointer are ignored.
type Backend interface {
	// Write stores versions atomically and returns how many were new. A
	// version whose content hash equals the node's current hash is skipped.
	Write(ctx context.Context, versions []Version) (int, error)
	// Read returns the latest version of id, or ErrNotFound.
	Read(ctx context.Context, id ir.NodeID) (ir.Node, error)
	// Versions returns every version of id ordered by seq. Unknown ids
	// return an empty slice.
	Versions(ctx context.Context, id ir.NodeID) ([]Version, error)
	// LastSeq returns the highest seq written, 0 for an empty backend.
	LastSeq(ctx context.Context) (int64, error)
	// Sync flushes buffered writes to durable storage.
	Sync(ctx context.Context) error
	Close() error
}

// FilterMatcher is implemented by backends that evaluate where filters
// natively. MatchFilter reports which of ids currently satisfy expr. It
// returns an error wrapping ErrFilterUnsupported for shapes it cannot
// evaluate; the engine then evaluates the filter in memory.
type FilterMatcher interface {
	MatchFilter(ctx context.Context, ids []ir.NodeID, expr queryir.FilterExpr) (map[ir.NodeKey]bool, error)
}
