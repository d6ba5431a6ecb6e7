package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const pineconeAPIVersion = "2025-01"

// PineconeConfig holds connection details for a hosted Pinecone index.
type PineconeConfig struct {
	APIKey    string
	Host      string
	Namespace string

	// ServerSide selects query-by-text against an integrated-embedding
	// index, skipping the client-side embedding step entirely.
	ServerSide bool

	Timeout time.Duration
}

// PineconeIndex is a minimal REST client to a hosted Pinecone index.
// Matches come back with their metadata already attached.
type PineconeIndex struct {
	apiKey     string
	host       string
	namespace  string
	serverSide bool
	client     *http.Client
}

// NewPineconeIndex creates a client for the index at cfg.Host.
func NewPineconeIndex(cfg PineconeConfig) *PineconeIndex {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "__default__"
	}
	return &PineconeIndex{
		apiKey:     cfg.APIKey,
		host:       strings.TrimSuffix(cfg.Host, "/"),
		namespace:  namespace,
		serverSide: cfg.ServerSide,
		client:     &http.Client{Timeout: timeout},
	}
}

// NeedsVector is false in server-side mode, where Pinecone embeds the raw
// query text itself.
func (idx *PineconeIndex) NeedsVector() bool { return !idx.serverSide }

type pineconeQueryRequest struct {
	Vector          []float64 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace,omitempty"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type pineconeMetadata struct {
	CaseName string `json:"case_name"`
	Text     string `json:"text"`
}

type pineconeQueryResponse struct {
	Matches []struct {
		ID       string           `json:"id"`
		Score    float64          `json:"score"`
		Metadata pineconeMetadata `json:"metadata"`
	} `json:"matches"`
}

type pineconeSearchRequest struct {
	Query struct {
		Inputs struct {
			Text string `json:"text"`
		} `json:"inputs"`
		TopK int `json:"top_k"`
	} `json:"query"`
}

type pineconeSearchResponse struct {
	Result struct {
		Hits []struct {
			ID     string           `json:"_id"`
			Score  float64          `json:"_score"`
			Fields pineconeMetadata `json:"fields"`
		} `json:"hits"`
	} `json:"result"`
}

// Search returns up to k matches ordered by descending similarity.
func (idx *PineconeIndex) Search(ctx context.Context, q Query, k int) ([]Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidQuery, k)
	}
	if idx.serverSide {
		return idx.searchByText(ctx, q.Text, k)
	}
	return idx.searchByVector(ctx, q.Vector, k)
}

func (idx *PineconeIndex) searchByVector(ctx context.Context, vector []float64, k int) ([]Match, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query vector is empty", ErrInvalidQuery)
	}

	reqBody := pineconeQueryRequest{
		Vector:          vector,
		TopK:            k,
		Namespace:       idx.namespace,
		IncludeMetadata: true,
	}
	var resp pineconeQueryResponse
	if err := idx.postJSON(ctx, idx.host+"/query", reqBody, &resp); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, Match{
			ID:       m.ID,
			Score:    m.Score,
			CaseName: m.Metadata.CaseName,
			Text:     m.Metadata.Text,
		})
	}
	return matches, nil
}

func (idx *PineconeIndex) searchByText(ctx context.Context, text string, k int) ([]Match, error) {
	var reqBody pineconeSearchRequest
	reqBody.Query.Inputs.Text = text
	reqBody.Query.TopK = k

	url := fmt.Sprintf("%s/records/namespaces/%s/search", idx.host, idx.namespace)
	var resp pineconeSearchResponse
	if err := idx.postJSON(ctx, url, reqBody, &resp); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(resp.Result.Hits))
	for _, h := range resp.Result.Hits {
		matches = append(matches, Match{
			ID:       h.ID,
			Score:    h.Score,
			CaseName: h.Fields.CaseName,
			Text:     h.Fields.Text,
		})
	}
	return matches, nil
}

type pineconeUpsertRequest struct {
	Vectors   []pineconeVector `json:"vectors"`
	Namespace string           `json:"namespace,omitempty"`
}

type pineconeVector struct {
	ID       string           `json:"id"`
	Values   []float64        `json:"values"`
	Metadata pineconeMetadata `json:"metadata"`
}

// Upsert writes a batch of vectors, overwriting existing ids.
func (idx *PineconeIndex) Upsert(ctx context.Context, entries []Entry) error {
	vectors := make([]pineconeVector, len(entries))
	for i, e := range entries {
		vectors[i] = pineconeVector{
			ID:     e.ID,
			Values: e.Values,
			Metadata: pineconeMetadata{
				CaseName: e.CaseName,
				Text:     e.Text,
			},
		}
	}
	reqBody := pineconeUpsertRequest{Vectors: vectors, Namespace: idx.namespace}
	return idx.postJSON(ctx, idx.host+"/vectors/upsert", reqBody, nil)
}

func (idx *PineconeIndex) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", idx.apiKey)
	req.Header.Set("X-Pinecone-API-Version", pineconeAPIVersion)

	resp, err := idx.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: pinecone rejected request: %s", ErrInvalidQuery, strings.TrimSpace(string(msg)))
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: pinecone POST %s failed: %s", ErrUnavailable, url, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
