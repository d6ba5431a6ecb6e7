package models

// QueryRequest is the body of POST /rag
type QueryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// DefaultTopK is used when the request omits top_k
const DefaultTopK = 5

// Precedent is a retrieved (case name, excerpt) pair for a prior judgment.
// Excerpts are truncated server-side; see service.Retriever.
type Precedent struct {
	CaseName string `json:"case_name"`
	Excerpt  string `json:"excerpt"`
}

// RAGResponse is the body of a successful POST /rag
type RAGResponse struct {
	Query       string      `json:"query"`
	Precedents  []Precedent `json:"precedents"`
	Explanation string      `json:"explanation"`
}

// Chunk is one entry of the ingestion source file (judgment_chunks.json).
// Chunks are embedded and stored in the vector index by cmd/ingest.
type Chunk struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata carries the case identification for a chunk
type ChunkMetadata struct {
	CaseName string `json:"case_name"`
}
