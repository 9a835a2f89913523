package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/metric"
	"github.com/roach88/ahghee/internal/queryir"
)

// run evaluates one root's pipeline. It is owned by a single worker.
type run struct {
	ctx     context.Context
	backend Backend
	root    ir.NodeID
	quota   *visitQuota
	logger  *slog.Logger
	metrics *metric.Metrics

	// pristine is true while the stream holds nodes exactly as stored.
	pristine bool
}

// execute reads the root and applies pipeline to it.
//
// The stream starts as the root node alone. A missing root fails the run
// with ErrNotFound; nodes reached by follow that do not exist are skipped.
func (r *run) execute(pipeline *queryir.Step) ([]ir.Node, error) {
	if err := r.quota.Check(); err != nil {
		return nil, err
	}
	root, err := r.backend.Read(r.ctx, r.root)
	if err != nil {
		return nil, err
	}

	stream := []ir.Node{root}
	r.pristine = true
	for step := pipeline; step != nil; step = step.Next {
		if err := r.ctx.Err(); err != nil {
			return nil, err
		}
		stream, err = r.executeStep(stream, step.Op)
		if err != nil {
			return nil, err
		}
	}
	return stream, nil
}

func (r *run) executeStep(stream []ir.Node, op queryir.Operator) ([]ir.Node, error) {
	switch o := op.(type) {
	case queryir.Follow:
		out, err := r.follow(stream, o.Edge)
		if err != nil {
			return nil, err
		}
		// Follow reads fresh nodes from the backend.
		r.pristine = true
		return out, nil
	case queryir.Filter:
		return r.executeWhere(stream, o.Expr)
	case queryir.Skip:
		if o.N >= uint64(len(stream)) {
			return stream[:0], nil
		}
		return stream[o.N:], nil
	case queryir.Limit:
		if o.N < uint64(len(stream)) {
			return stream[:o.N], nil
		}
		return stream, nil
	case queryir.Fields:
		out := make([]ir.Node, len(stream))
		for i, n := range stream {
			out[i] = project(o.Clude, n)
		}
		r.pristine = false
		return out, nil
	}
	return nil, fmt.Errorf("unknown pipeline operator %T", op)
}

// follow replaces the stream with the nodes reached through edge.
func (r *run) follow(stream []ir.Node, edge queryir.EdgeExpr) ([]ir.Node, error) {
	switch e := edge.(type) {
	case queryir.FollowAny:
		rng := queryir.DefaultRange
		if e.Range != nil {
			rng = *e.Range
		}
		return r.traverse(stream, nil, rng)
	case queryir.EdgeRange:
		return r.traverse(stream, e.Edge, e.Range)
	case queryir.EdgeCompare:
		left, err := r.follow(stream, e.Left)
		if err != nil {
			return nil, err
		}
		right, err := r.follow(stream, e.Right)
		if err != nil {
			return nil, err
		}
		return combine(left, e.BoolOp, right), nil
	}
	return nil, fmt.Errorf("unknown edge expression %T", edge)
}

// traverse walks edges breadth-first from every source node and returns
// the nodes found at a depth within rng, deduplicated across sources in
// first-reached order. A nil key follows every edge.
//
// Depth 0 is the source itself. Each source has its own visit set, so a
// node reachable from two sources is walked through from both.
func (r *run) traverse(sources []ir.Node, key ir.DataBlock, rng queryir.Range) ([]ir.Node, error) {
	var out []ir.Node
	emitted := newVisitSet()
	emit := func(n ir.Node) {
		if emitted.Visit(n.ID.Key()) {
			out = append(out, n)
		}
	}

	for _, src := range sources {
		visited := newVisitSet()
		visited.Visit(src.ID.Key())
		if rng.From == 0 {
			emit(src)
		}

		frontier := []ir.Node{src}
		for depth := uint32(1); depth <= rng.To && len(frontier) > 0; depth++ {
			var next []ir.Node
			for _, n := range frontier {
				for _, target := range neighbors(n, key) {
					if !visited.Visit(target.Key()) {
						continue
					}
					node, ok, err := r.read(target)
					if err != nil {
						return nil, err
					}
					if !ok {
						continue
					}
					next = append(next, node)
					if depth >= rng.From {
						emit(node)
					}
				}
			}
			frontier = next
			if depth == ^uint32(0) {
				break
			}
		}
	}
	return out, nil
}

// read fetches a node reached by traversal. A dangling reference reports
// ok=false rather than an error.
func (r *run) read(id ir.NodeID) (ir.Node, bool, error) {
	if err := r.quota.Check(); err != nil {
		return ir.Node{}, false, err
	}
	n, err := r.backend.Read(r.ctx, id)
	if errors.Is(err, ErrNotFound) {
		r.logger.Debug("skipping dangling edge",
			"root", r.root.String(),
			"target", id.String(),
		)
		return ir.Node{}, false, nil
	}
	if err != nil {
		return ir.Node{}, false, err
	}
	return n, true, nil
}

// neighbors returns the node references n's attributes point at, in
// attribute order. With a non-nil key only attributes whose key equals it
// are followed.
func neighbors(n ir.Node, key ir.DataBlock) []ir.NodeID {
	var ids []ir.NodeID
	for _, kv := range n.Attributes {
		ref, ok := kv.Value.Data.(ir.NodeRef)
		if !ok {
			continue
		}
		if key != nil && !ir.EqualData(kv.Key.Data, key) {
			continue
		}
		ids = append(ids, ref.ID)
	}
	return ids
}

// combine merges two follow results. And keeps the left nodes also in
// right; Or appends the right nodes missing from left.
func combine(left []ir.Node, op queryir.BoolOp, right []ir.Node) []ir.Node {
	inRight := make(map[ir.NodeKey]struct{}, len(right))
	for _, n := range right {
		inRight[n.ID.Key()] = struct{}{}
	}

	if op == queryir.And {
		out := make([]ir.Node, 0, len(left))
		for _, n := range left {
			if _, ok := inRight[n.ID.Key()]; ok {
				out = append(out, n)
			}
		}
		return out
	}

	out := make([]ir.Node, 0, len(left)+len(right))
	seen := newVisitSet()
	for _, n := range left {
		if seen.Visit(n.ID.Key()) {
			out = append(out, n)
		}
	}
	for _, n := range right {
		if seen.Visit(n.ID.Key()) {
			out = append(out, n)
		}
	}
	return out
}
