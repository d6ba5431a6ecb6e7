package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"lexbrief-backend/embedding"
	"lexbrief-backend/index"
	"lexbrief-backend/models"
	"lexbrief-backend/storage"
)

const (
	defaultChunksPath = "processed-data/judgment_chunks.json"
	batchSize         = 50
)

type documentEmbedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float64, error)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found, using environment variables")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	chunksPath := os.Getenv("CHUNKS_PATH")
	if chunksPath == "" {
		chunksPath = defaultChunksPath
	}

	ctx := context.Background()

	src, err := storage.ForPath(ctx, chunksPath)
	if err != nil {
		log.Fatalf("Failed to initialize chunk source: %v", err)
	}
	reader, err := src.Open(ctx, chunksPath)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", chunksPath, err)
	}
	defer reader.Close()

	var chunks []models.Chunk
	if err := json.NewDecoder(reader).Decode(&chunks); err != nil {
		log.Fatalf("Failed to parse %s: %v", chunksPath, err)
	}
	log.Printf("Loaded %d chunks from %s", len(chunks), chunksPath)

	vectorIndex, err := index.NewFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize vector index: %v", err)
	}

	embedder := embedding.NewGeminiEmbedder(apiKey)

	uploaded, err := ingestChunks(ctx, embedder, vectorIndex, chunks, batchSize)
	if err != nil {
		log.Fatalf("✗ Ingestion failed after %d vectors: %v", uploaded, err)
	}

	log.Printf("✓ All %d vectors uploaded to the index", uploaded)
}

// ingestChunks embeds every chunk and upserts the vectors in fixed-size
// batches, flushing the final partial batch at the end. Each vector's id is
// the chunk's zero-based position in the source file, stringified, so ids
// are stable only while the source file's order is. Re-running against a
// reordered file overwrites entries under colliding ids. A failure aborts
// the run, a re-run starts from scratch.
func ingestChunks(ctx context.Context, embedder documentEmbedder, up index.Upserter, chunks []models.Chunk, batchSize int) (int, error) {
	uploaded := 0
	batch := make([]index.Entry, 0, batchSize)

	for i, chunk := range chunks {
		vector, err := embedder.EmbedDocument(ctx, chunk.Text)
		if err != nil {
			return uploaded, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}

		batch = append(batch, index.Entry{
			ID:       strconv.Itoa(i),
			Values:   vector,
			CaseName: chunk.Metadata.CaseName,
			Text:     chunk.Text,
		})

		if len(batch) == batchSize {
			if err := up.Upsert(ctx, batch); err != nil {
				return uploaded, fmt.Errorf("failed to upsert batch ending at chunk %d: %w", i, err)
			}
			uploaded += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := up.Upsert(ctx, batch); err != nil {
			return uploaded, fmt.Errorf("failed to upsert final batch: %w", err)
		}
		uploaded += len(batch)
	}

	return uploaded, nil
}
