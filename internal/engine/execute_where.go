package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/metric"
	"github.com/roach88/ahghee/internal/queryir"
)

// executeWhere keeps the nodes of stream that satisfy expr.
//
// The filter is pushed down to the backend when it implements
// FilterMatcher and the stream still holds stored nodes (no fields stage
// has projected attributes away). A backend that returns
// ErrFilterUnsupported falls back to in-memory evaluation, which produces
// the same result.
//
// Stream order is preserved either way.
func (r *run) executeWhere(stream []ir.Node, expr queryir.FilterExpr) ([]ir.Node, error) {
	if len(stream) == 0 {
		return stream, nil
	}

	if fm, ok := r.backend.(FilterMatcher); ok && r.pristine {
		kept, err := r.pushdownWhere(fm, stream, expr)
		switch {
		case err == nil:
			r.metrics.ObserveFilter(metric.FilterSQL)
			return kept, nil
		case errors.Is(err, ErrFilterUnsupported):
			r.logger.Debug("filter pushdown unsupported, evaluating in memory",
				"root", r.root.String(),
				"error", err,
			)
		default:
			return nil, fmt.Errorf("match filter: %w", err)
		}
	}

	r.metrics.ObserveFilter(metric.FilterMemory)
	kept := make([]ir.Node, 0, len(stream))
	for _, n := range stream {
		if matchFilter(expr, n) {
			kept = append(kept, n)
		}
	}
	return kept, nil
}

func (r *run) pushdownWhere(fm FilterMatcher, stream []ir.Node, expr queryir.FilterExpr) ([]ir.Node, error) {
	ids := make([]ir.NodeID, len(stream))
	for i, n := range stream {
		ids[i] = n.ID
	}

	matched, err := fm.MatchFilter(r.ctx, ids, expr)
	if err != nil {
		return nil, err
	}

	kept := make([]ir.Node, 0, len(matched))
	for _, n := range stream {
		if matched[n.ID.Key()] {
			kept = append(kept, n)
		}
	}
	return kept, nil
}
