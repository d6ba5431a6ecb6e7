package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

// ErrEmbeddingFailed indicates the text could not be encoded by the
// embedding model (or the embedding endpoint could not be reached).
var ErrEmbeddingFailed = errors.New("failed to generate embedding")

const (
	defaultEmbeddingAPI = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"
	embeddingModel      = "models/gemini-embedding-001"

	// Dimension is the output dimensionality of every vector produced here.
	// The vector index schema is created with the same value.
	Dimension = 768
)

// EmbeddingRequest represents an embedContent API request
type EmbeddingRequest struct {
	Model                string       `json:"model"`
	Content              ContentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

// ContentInput represents content for embedding
type ContentInput struct {
	Parts []PartInput `json:"parts"`
}

// PartInput represents a part of content
type PartInput struct {
	Text string `json:"text"`
}

// EmbeddingResponse represents an embedContent API response
type EmbeddingResponse struct {
	Embedding EmbeddingData `json:"embedding"`
}

// EmbeddingData contains the embedding values
type EmbeddingData struct {
	Values []float64 `json:"values"`
}

// GeminiEmbedder maps text to a fixed-dimension vector via the Gemini
// embedContent endpoint. It is initialized once at startup and is safe for
// concurrent use. Calls are single-shot: any failure propagates to the
// caller unchanged, there is no retry here.
type GeminiEmbedder struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewGeminiEmbedder creates an embedder using the given API key.
func NewGeminiEmbedder(apiKey string) *GeminiEmbedder {
	return &GeminiEmbedder{
		apiKey:   apiKey,
		endpoint: defaultEmbeddingAPI,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// WithEndpoint overrides the embedContent URL. Used by tests.
func (e *GeminiEmbedder) WithEndpoint(url string) *GeminiEmbedder {
	e.endpoint = url
	return e
}

// Embed encodes a retrieval query.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return e.embed(ctx, text, "RETRIEVAL_QUERY")
}

// EmbedDocument encodes a stored judgment chunk. Used by ingestion.
func (e *GeminiEmbedder) EmbedDocument(ctx context.Context, text string) ([]float64, error) {
	return e.embed(ctx, text, "RETRIEVAL_DOCUMENT")
}

func (e *GeminiEmbedder) embed(ctx context.Context, text, taskType string) ([]float64, error) {
	reqBody := EmbeddingRequest{
		Model: embeddingModel,
		Content: ContentInput{
			Parts: []PartInput{{Text: text}},
		},
		TaskType:             taskType,
		OutputDimensionality: Dimension,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API error: %d", ErrEmbeddingFailed, resp.StatusCode)
	}

	var apiResp EmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrEmbeddingFailed, err)
	}

	embedding := apiResp.Embedding.Values
	if len(embedding) != Dimension {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", ErrEmbeddingFailed, Dimension, len(embedding))
	}

	// Normalize so cosine similarity reduces to a dot product
	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range embedding {
			embedding[i] /= norm
		}
	}

	return embedding, nil
}
