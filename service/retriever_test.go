package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"lexbrief-backend/index"
)

type stubEmbedder struct {
	calls int
	err   error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return make([]float64, 768), nil
}

type stubIndex struct {
	needsVector bool
	matches     []index.Match
	err         error

	calls int
	lastQ index.Query
	lastK int
}

func (s *stubIndex) NeedsVector() bool { return s.needsVector }

func (s *stubIndex) Search(ctx context.Context, q index.Query, k int) ([]index.Match, error) {
	s.calls++
	s.lastQ = q
	s.lastK = k
	if s.err != nil {
		return nil, s.err
	}
	return s.matches, nil
}

func TestRetrieveKesavanandaScenario(t *testing.T) {
	longText := strings.Repeat("basic structure ", 40) // 640 chars
	idx := &stubIndex{
		needsVector: true,
		matches: []index.Match{
			{ID: "0", Score: 0.91, CaseName: "Kesavananda Bharati v. State of Kerala", Text: longText},
			{ID: "7", Score: 0.83, CaseName: "Minerva Mills v. Union of India", Text: "short excerpt"},
		},
	}
	emb := &stubEmbedder{}
	r := NewRetriever(RetrieverWithEmbedder(emb), RetrieverWithIndex(idx))

	precedents, err := r.Retrieve(context.Background(), "What is the significance of Kesavananda Bharati?", 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(precedents) != 2 {
		t.Fatalf("expected 2 precedents, got %d", len(precedents))
	}
	if precedents[0].CaseName != "Kesavananda Bharati v. State of Kerala" {
		t.Errorf("expected the stub's first match first, got %q", precedents[0].CaseName)
	}
	if precedents[1].CaseName != "Minerva Mills v. Union of India" {
		t.Errorf("expected the stub's second match second, got %q", precedents[1].CaseName)
	}
	if got := utf8.RuneCountInString(precedents[0].Excerpt); got != 500 {
		t.Errorf("expected long excerpt truncated to 500 characters, got %d", got)
	}
	if precedents[1].Excerpt != "short excerpt" {
		t.Errorf("expected short excerpt untouched, got %q", precedents[1].Excerpt)
	}
	if emb.calls != 1 {
		t.Errorf("expected exactly one embedding call, got %d", emb.calls)
	}
	if idx.lastK != 2 {
		t.Errorf("expected k=2 passed to the index, got %d", idx.lastK)
	}
}

func TestRetrieveCapsExcerptLength(t *testing.T) {
	idx := &stubIndex{
		needsVector: true,
		matches: []index.Match{
			{CaseName: "Long", Text: strings.Repeat("x", 5000)},
		},
	}
	r := NewRetriever(RetrieverWithEmbedder(&stubEmbedder{}), RetrieverWithIndex(idx))

	precedents, err := r.Retrieve(context.Background(), "q", 5)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range precedents {
		if utf8.RuneCountInString(p.Excerpt) > 500 {
			t.Errorf("excerpt exceeds 500 characters: %d", utf8.RuneCountInString(p.Excerpt))
		}
	}
}

func TestRetrieveSkipsEmbeddingForServerSideIndex(t *testing.T) {
	idx := &stubIndex{
		needsVector: false,
		matches:     []index.Match{{CaseName: "A", Text: "t"}},
	}
	emb := &stubEmbedder{}
	r := NewRetriever(RetrieverWithEmbedder(emb), RetrieverWithIndex(idx))

	if _, err := r.Retrieve(context.Background(), "a query", 3); err != nil {
		t.Fatal(err)
	}

	if emb.calls != 0 {
		t.Errorf("expected no embedding calls in server-side mode, got %d", emb.calls)
	}
	if idx.lastQ.Text != "a query" {
		t.Errorf("expected raw query text passed through, got %q", idx.lastQ.Text)
	}
	if idx.lastQ.Vector != nil {
		t.Error("expected no query vector in server-side mode")
	}
}

func TestRetrieveEmptyIndexResult(t *testing.T) {
	idx := &stubIndex{needsVector: true, matches: nil}
	r := NewRetriever(RetrieverWithEmbedder(&stubEmbedder{}), RetrieverWithIndex(idx))

	precedents, err := r.Retrieve(context.Background(), "nothing matches", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(precedents) != 0 {
		t.Fatalf("expected empty result, got %d precedents", len(precedents))
	}
	if precedents == nil {
		t.Error("expected an empty slice, not nil")
	}
}

func TestRetrieveEmbedderErrorPropagates(t *testing.T) {
	wantErr := errors.New("cannot encode")
	idx := &stubIndex{needsVector: true}
	r := NewRetriever(RetrieverWithEmbedder(&stubEmbedder{err: wantErr}), RetrieverWithIndex(idx))

	_, err := r.Retrieve(context.Background(), "q", 5)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected the embedder error to propagate, got %v", err)
	}
	if idx.calls != 0 {
		t.Error("expected no index call after an embedding failure")
	}
}

func TestRetrieveIndexErrorPropagates(t *testing.T) {
	idx := &stubIndex{needsVector: true, err: index.ErrUnavailable}
	r := NewRetriever(RetrieverWithEmbedder(&stubEmbedder{}), RetrieverWithIndex(idx))

	_, err := r.Retrieve(context.Background(), "q", 5)
	if !errors.Is(err, index.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable to propagate, got %v", err)
	}
}

func TestTruncateExcerptRuneBoundary(t *testing.T) {
	text := strings.Repeat("न्याय", 150) // 750 runes, multi-byte
	got := truncateExcerpt(text)
	if utf8.RuneCountInString(got) != 500 {
		t.Fatalf("expected 500 runes, got %d", utf8.RuneCountInString(got))
	}
	if !utf8.ValidString(got) {
		t.Error("expected a valid UTF-8 string after truncation")
	}
}
