package index

import (
	"context"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrUnavailable indicates the backing vector store cannot be reached.
	ErrUnavailable = errors.New("vector index unavailable")

	// ErrInvalidQuery indicates a misuse of the index: k <= 0 or a query
	// vector whose dimension does not match the configured index.
	ErrInvalidQuery = errors.New("invalid index query")
)

// Query carries the search input. Text is always set; Vector is set only
// when the backend reports NeedsVector.
type Query struct {
	Text   string
	Vector []float64
}

// Match is one nearest-neighbor hit, ordered by descending similarity.
type Match struct {
	ID       string
	Score    float64
	CaseName string
	Text     string
}

// Entry is one (id, vector, metadata) triple queued for upsert by ingestion.
type Entry struct {
	ID       string
	Values   []float64
	CaseName string
	Text     string
}

// Index is the nearest-neighbor oracle behind the retriever and the
// ingestion pipeline. Search never mutates the store; only Upsert writes,
// and only the offline ingestion binary calls it.
type Index interface {
	// NeedsVector reports whether Search requires a precomputed query
	// embedding. Backends with server-side embedding return false.
	NeedsVector() bool

	// Search returns up to k matches ordered by descending similarity.
	Search(ctx context.Context, q Query, k int) ([]Match, error)

	// Upsert writes a batch of entries, overwriting existing ids.
	Upsert(ctx context.Context, entries []Entry) error
}

// Upserter is the slice of Index the ingestion pipeline depends on.
type Upserter interface {
	Upsert(ctx context.Context, entries []Entry) error
}

// Backend identifies a vector index strategy
type Backend string

const (
	BackendPgvector     Backend = "pgvector"
	BackendPinecone     Backend = "pinecone"
	BackendPineconeText Backend = "pinecone-text"
)

// NewFromEnv selects and constructs the vector index backend once at
// startup. VECTOR_BACKEND chooses the strategy; absence of a credential the
// chosen backend requires is a startup error, never a lazy per-request one.
func NewFromEnv(ctx context.Context) (Index, error) {
	backend := Backend(os.Getenv("VECTOR_BACKEND"))
	if backend == "" {
		backend = BackendPgvector
	}

	switch backend {
	case BackendPgvector:
		connString := os.Getenv("DATABASE_URL")
		if connString == "" {
			return nil, errors.New("DATABASE_URL environment variable is required for the pgvector backend")
		}
		return NewPgvectorIndex(ctx, connString)

	case BackendPinecone, BackendPineconeText:
		apiKey := os.Getenv("PINECONE_API_KEY")
		if apiKey == "" {
			return nil, errors.New("PINECONE_API_KEY environment variable is required for the pinecone backend")
		}
		host := os.Getenv("PINECONE_INDEX_HOST")
		if host == "" {
			return nil, errors.New("PINECONE_INDEX_HOST environment variable is required for the pinecone backend")
		}
		cfg := PineconeConfig{
			APIKey:     apiKey,
			Host:       host,
			Namespace:  os.Getenv("PINECONE_NAMESPACE"),
			ServerSide: backend == BackendPineconeText,
		}
		return NewPineconeIndex(cfg), nil

	default:
		return nil, fmt.Errorf("unknown vector backend: %s", backend)
	}
}
