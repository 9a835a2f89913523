// Package engine implements the storage contract the CLI drives: Add,
// Items, Flush, History and Close over a pluggable Backend.
//
// ARCHITECTURE:
//
// Single Writer:
// Add is serialized by the engine. Every stored node version is stamped
// with a monotonic seq from Clock, resumed from the backend's last seq on
// open. Re-adding a node with unchanged content creates no new version.
//
// Concurrent Reads:
// Items evaluates the pipeline for each requested root on a bounded
// worker pool (github.com/panjf2000/ants/v2). Results keep request order
// and a failing root never aborts its siblings: the failure is carried in
// that root's Item.Err.
//
// Pipeline Evaluation:
//  1. The root node is read from the backend
//  2. Each Step transforms the node stream in chain order
//  3. Follow walks NodeRef values breadth-first, bounded by the visit quota
//  4. Filter runs in SQL when the backend is a FilterMatcher and the stream
//     is unmodified, and in memory otherwise, with identical results
//  5. Skip, Limit and Fields operate on the stream in memory
//
// Determinism: traversal visits attributes in stored order and all set
// operations keep first-seen order.
package engine
