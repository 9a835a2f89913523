package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/ahghee/internal/engine"
)

// Write stores versions in one transaction and returns how many were new.
//
// A version whose content hash equals the node's current hash is skipped.
// For every stored version the node row is replaced, a history row is
// appended and the attribute projection is rebuilt.
func (s *Store) Write(ctx context.Context, versions []engine.Version) (int, error) {
	if len(versions) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin write: %w", err)
	}
	defer tx.Rollback()

	written := 0
	for _, v := range versions {
		inserted, err := writeVersion(ctx, tx, v)
		if err != nil {
			return 0, err
		}
		if inserted {
			written++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit write: %w", err)
	}

	s.logger.Debug("versions written",
		"requested", len(versions),
		"written", written,
	)
	return written, nil
}

func writeVersion(ctx context.Context, tx *sql.Tx, v engine.Version) (bool, error) {
	id := v.Node.ID

	var current string
	err := tx.QueryRowContext(ctx,
		"SELECT content_hash FROM nodes WHERE graph = ? AND iri = ?",
		id.Graph, id.IRI,
	).Scan(&current)
	switch {
	case err == nil && current == v.ContentHash:
		return false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("read current hash of %s: %w", id, err)
	}

	body, err := marshalNode(v.Node)
	if err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO node_versions (seq, graph, iri, content_hash, body)
		VALUES (?, ?, ?, ?, ?)
	`, v.Seq, id.Graph, id.IRI, v.ContentHash, body)
	if err != nil {
		return false, fmt.Errorf("write version of %s: %w", id, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO nodes (graph, iri, seq, content_hash, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(graph, iri) DO UPDATE SET
			seq = excluded.seq,
			content_hash = excluded.content_hash,
			body = excluded.body
	`, id.Graph, id.IRI, v.Seq, v.ContentHash, body)
	if err != nil {
		return false, fmt.Errorf("write node %s: %w", id, err)
	}

	if err := writeAttributes(ctx, tx, v); err != nil {
		return false, err
	}
	return true, nil
}

// writeAttributes replaces the attribute projection of v's node.
func writeAttributes(ctx context.Context, tx *sql.Tx, v engine.Version) error {
	id := v.Node.ID
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM attributes WHERE graph = ? AND iri = ?",
		id.Graph, id.IRI,
	); err != nil {
		return fmt.Errorf("clear attributes of %s: %w", id, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO attributes
		(graph, iri, ord, key_class, key_graph, key_text, value_class, value_graph, value_text, value_num)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare attributes: %w", err)
	}
	defer stmt.Close()

	for _, row := range attributeRows(v.Node) {
		_, err := stmt.ExecContext(ctx,
			id.Graph, id.IRI, row.ord,
			row.key.Class, row.key.Graph, row.key.Text,
			row.value.Class, row.value.Graph, row.value.Text, row.value.Num,
		)
		if err != nil {
			return fmt.Errorf("write attribute %d of %s: %w", row.ord, id, err)
		}
	}
	return nil
}
