package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"lexbrief-backend/embedding"
)

// PgvectorIndex serves nearest-neighbor search from a self-hosted Postgres
// table with the pgvector extension. The caller passes a precomputed query
// embedding; the serving path never writes the table.
type PgvectorIndex struct {
	db *pgxpool.Pool
}

// NewPgvectorIndex connects and pings the database.
func NewPgvectorIndex(ctx context.Context, connString string) (*PgvectorIndex, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &PgvectorIndex{db: pool}, nil
}

// Close releases the connection pool.
func (idx *PgvectorIndex) Close() {
	idx.db.Close()
}

// NeedsVector is true: this backend holds raw vectors and expects the
// query embedding to be computed client-side.
func (idx *PgvectorIndex) NeedsVector() bool { return true }

// formatVector formats an embedding vector as a pgvector literal for pgx
func formatVector(values []float64) string {
	if len(values) == 0 {
		return "[]"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Search returns up to k chunks ordered by cosine distance to the query
// vector. Ties fall back to the planner's row order, which is stable for a
// given table state.
func (idx *PgvectorIndex) Search(ctx context.Context, q Query, k int) ([]Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidQuery, k)
	}
	if len(q.Vector) != embedding.Dimension {
		return nil, fmt.Errorf("%w: embedding must be %d dimensions, got %d", ErrInvalidQuery, embedding.Dimension, len(q.Vector))
	}

	vectorStr := formatVector(q.Vector)

	rows, err := idx.db.Query(ctx, `
		SELECT
			id,
			case_name,
			chunk_text,
			1 - (embedding <=> $1::vector) AS score
		FROM judgment_chunks
		ORDER BY embedding <=> $1::vector
		LIMIT $2`, vectorStr, k)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query judgment chunks: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.CaseName, &m.Text, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan judgment chunk: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating judgment chunks: %v", ErrUnavailable, err)
	}

	return matches, nil
}

// Upsert writes a batch of entries, overwriting rows with the same id.
// Only the offline ingestion binary calls this.
func (idx *PgvectorIndex) Upsert(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		if len(e.Values) != embedding.Dimension {
			return fmt.Errorf("%w: entry %s has %d dimensions, want %d", ErrInvalidQuery, e.ID, len(e.Values), embedding.Dimension)
		}
		_, err := idx.db.Exec(ctx, `
			INSERT INTO judgment_chunks (id, case_name, chunk_text, embedding)
			VALUES ($1, $2, $3, $4::vector)
			ON CONFLICT (id) DO UPDATE SET
				case_name = EXCLUDED.case_name,
				chunk_text = EXCLUDED.chunk_text,
				embedding = EXCLUDED.embedding`,
			e.ID, e.CaseName, e.Text, formatVector(e.Values))
		if err != nil {
			return fmt.Errorf("%w: failed to upsert chunk %s: %v", ErrUnavailable, e.ID, err)
		}
	}
	return nil
}
