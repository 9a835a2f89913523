// Package store provides the SQLite node store.
//
// The store implements engine.Backend with:
//   - nodes: the current version of each node, keyed by (graph, iri)
//   - node_versions: every stored revision, ordered by seq
//   - attributes: the current version's attributes projected to typed
//     columns, so where filters run in SQL (engine.FilterMatcher)
//
// # Patterns
//
// Logical time:
//   - Versions are ordered by seq INTEGER from the engine clock, never
//     timestamps
//
// Idempotent writes:
//   - A version whose content hash equals the node's current hash is
//     skipped, so re-adding unchanged content leaves history untouched
//
// Deterministic queries:
//   - Filter queries end in ORDER BY graph, iri COLLATE BINARY
//   - All values are bound parameters
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Attributes follow their node
//
// Node bodies are canonical JSON (ir.MarshalCanonical) and content hashes
// come from ir.NodeContentHash.
package store
