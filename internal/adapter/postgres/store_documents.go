package postgres

import (
	"context"
	"fmt"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/crm"
)

// InsertDocuments stores ingested knowledge chunks.
func (s *Store) InsertDocuments(ctx context.Context, docs []crm.Document) error {
	for _, d := range docs {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO documents (source, content) VALUES ($1, $2)`,
			d.Source, d.Content,
		)
		if err != nil {
			return fmt.Errorf("insert document from %s: %w", d.Source, err)
		}
	}
	return nil
}

// SearchDocuments runs full-text search over the knowledge base and returns
// the top matches by rank.
func (s *Store) SearchDocuments(ctx context.Context, query string, limit int) ([]crm.Document, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, source, content, created_at
		 FROM documents
		 WHERE search_vector @@ websearch_to_tsquery('english', $1)
		 ORDER BY ts_rank(search_vector, websearch_to_tsquery('english', $1)) DESC
		 LIMIT $2`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var result []crm.Document
	for rows.Next() {
		var d crm.Document
		if err := rows.Scan(&d.ID, &d.Source, &d.Content, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
