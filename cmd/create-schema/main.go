package main

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Provisions the judgment_chunks table for the pgvector backend. Run once
// before cmd/ingest. Dropping and recreating is fine here because the table
// is only ever rebuilt by a full ingestion run.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found, using environment variables")
	}

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()

	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		log.Fatalf("Failed to create pgvector extension: %v", err)
	}
	log.Println("✓ pgvector extension enabled")

	_, err = pool.Exec(ctx, "DROP TABLE IF EXISTS judgment_chunks")
	if err != nil {
		log.Fatalf("Failed to drop table: %v", err)
	}
	log.Println("✓ Dropped existing judgment_chunks table (if any)")

	schemaSQL := `
CREATE TABLE judgment_chunks (
    id TEXT PRIMARY KEY,
    case_name TEXT NOT NULL,
    chunk_text TEXT NOT NULL,
    embedding vector(768) NOT NULL
)`
	_, err = pool.Exec(ctx, schemaSQL)
	if err != nil {
		log.Fatalf("Failed to create judgment_chunks table: %v", err)
	}
	log.Println("✓ Created judgment_chunks table")

	_, err = pool.Exec(ctx, `
CREATE INDEX judgment_chunks_embedding_idx
    ON judgment_chunks
    USING ivfflat (embedding vector_cosine_ops)
    WITH (lists = 100)`)
	if err != nil {
		log.Fatalf("Failed to create vector index: %v", err)
	}
	log.Println("✓ Created ivfflat index on embedding")
}
