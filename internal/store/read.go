package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/ahghee/internal/engine"
	"github.com/roach88/ahghee/internal/ir"
	"github.com/roach88/ahghee/internal/queryir"
	"github.com/roach88/ahghee/internal/querysql"
)

// matchChunk bounds the ids per filter query (two bound parameters each).
const matchChunk = 400

// Read returns the current version of id, or engine.ErrNotFound.
func (s *Store) Read(ctx context.Context, id ir.NodeID) (ir.Node, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM nodes WHERE graph = ? AND iri = ?",
		id.Graph, id.IRI,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Node{}, engine.ErrNotFound
	}
	if err != nil {
		return ir.Node{}, fmt.Errorf("read node %s: %w", id, err)
	}
	return unmarshalNode(body)
}

// Versions returns every stored version of id, oldest first.
// Unknown ids return an empty slice.
func (s *Store) Versions(ctx context.Context, id ir.NodeID) ([]engine.Version, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, content_hash, body
		FROM node_versions
		WHERE graph = ? AND iri = ?
		ORDER BY seq ASC
	`, id.Graph, id.IRI)
	if err != nil {
		return nil, fmt.Errorf("query versions of %s: %w", id, err)
	}
	defer rows.Close()

	versions := []engine.Version{}
	for rows.Next() {
		var v engine.Version
		var body string
		if err := rows.Scan(&v.Seq, &v.ContentHash, &body); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		if v.Node, err = unmarshalNode(body); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

// LastSeq returns the highest stored seq, 0 for an empty store.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM node_versions").Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq, nil
}

// MatchFilter evaluates expr in SQL against the current versions of ids.
//
// Filters with no SQL form return an error wrapping
// engine.ErrFilterUnsupported. Ids that are not stored never match.
func (s *Store) MatchFilter(ctx context.Context, ids []ir.NodeID, expr queryir.FilterExpr) (map[ir.NodeKey]bool, error) {
	compiler := querysql.NewFilterCompiler()
	matched := make(map[ir.NodeKey]bool, len(ids))

	for start := 0; start < len(ids); start += matchChunk {
		end := min(start+matchChunk, len(ids))

		query, params, err := compiler.CompileMatch(expr, ids[start:end])
		if errors.Is(err, querysql.ErrUnsupported) {
			return nil, fmt.Errorf("%w: %v", engine.ErrFilterUnsupported, err)
		}
		if err != nil {
			return nil, fmt.Errorf("compile filter: %w", err)
		}

		if err := s.collectMatches(ctx, query, params, matched); err != nil {
			return nil, err
		}
	}
	return matched, nil
}

func (s *Store) collectMatches(ctx context.Context, query string, params []any, matched map[ir.NodeKey]bool) error {
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("execute filter: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key ir.NodeKey
		if err := rows.Scan(&key.Graph, &key.IRI); err != nil {
			return fmt.Errorf("scan match: %w", err)
		}
		matched[key] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate matches: %w", err)
	}
	return nil
}
