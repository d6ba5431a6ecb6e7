package service

import (
	"context"
	"errors"
	"fmt"

	"lexbrief-backend/index"
	"lexbrief-backend/models"
)

// maxExcerptChars bounds each precedent excerpt. The cut is a plain
// character-count cutoff with no word or sentence boundary awareness; the
// stored text is truncated mid-word if it has to be. Kept as-is for
// compatibility with the existing index contents.
const maxExcerptChars = 500

// QueryEmbedder converts query text to a dense vector.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// SearchIndex is the slice of index.Index the retriever depends on.
type SearchIndex interface {
	NeedsVector() bool
	Search(ctx context.Context, q index.Query, k int) ([]index.Match, error)
}

// Retriever composes the embedder and the vector index into a single call:
// query text + k in, ranked precedents out.
type Retriever struct {
	embedder QueryEmbedder
	index    SearchIndex
}

// RetrieverOption is a functional option for Retriever
type RetrieverOption func(*Retriever)

// RetrieverWithEmbedder sets the query embedder
func RetrieverWithEmbedder(e QueryEmbedder) RetrieverOption {
	return func(r *Retriever) {
		r.embedder = e
	}
}

// RetrieverWithIndex sets the vector index
func RetrieverWithIndex(idx SearchIndex) RetrieverOption {
	return func(r *Retriever) {
		r.index = idx
	}
}

// NewRetriever creates a new precedent retriever
func NewRetriever(opts ...RetrieverOption) *Retriever {
	r := &Retriever{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns the topK most similar precedents to the query, in the
// index's similarity order. The query is embedded once, and not at all when
// the backend embeds server-side.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.Precedent, error) {
	if r.index == nil {
		return nil, errors.New("vector index not set")
	}

	q := index.Query{Text: query}
	if r.index.NeedsVector() {
		if r.embedder == nil {
			return nil, errors.New("query embedder not set")
		}
		vector, err := r.embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to embed query: %w", err)
		}
		q.Vector = vector
	}

	matches, err := r.index.Search(ctx, q, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	precedents := make([]models.Precedent, 0, len(matches))
	for _, m := range matches {
		precedents = append(precedents, models.Precedent{
			CaseName: m.CaseName,
			Excerpt:  truncateExcerpt(m.Text),
		})
	}
	return precedents, nil
}

// truncateExcerpt cuts text to the first maxExcerptChars characters.
func truncateExcerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= maxExcerptChars {
		return text
	}
	return string(runes[:maxExcerptChars])
}
