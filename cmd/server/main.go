package main

import (
	"context"
	"log"
	"os"

	"lexbrief-backend/embedding"
	"lexbrief-backend/handlers"
	"lexbrief-backend/index"
	"lexbrief-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	ctx := context.Background()

	// Initialize the vector index backend (selected by VECTOR_BACKEND)
	vectorIndex, err := index.NewFromEnv(ctx)
	if err != nil {
		log.Fatal("Failed to initialize vector index: ", err)
	}
	log.Printf("Vector index initialized (needs client-side embedding: %v)", vectorIndex.NeedsVector())

	// Initialize singleton oracle clients, shared across all requests
	embedder := embedding.NewGeminiEmbedder(apiKey)

	geminiClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		log.Fatal("Failed to initialize Gemini client: ", err)
	}
	defer geminiClient.Close()
	log.Println("Gemini client initialized")

	// Initialize services
	retriever := service.NewRetriever(
		service.RetrieverWithEmbedder(embedder),
		service.RetrieverWithIndex(vectorIndex),
	)

	modelName := os.Getenv("GEMINI_MODEL")
	if modelName == "" {
		modelName = service.DefaultGenerationModel
	}
	explainer := service.NewExplainer(
		service.ExplainerWithClient(geminiClient),
		service.ExplainerWithModel(modelName),
	)

	// Initialize handler
	ragHandler := handlers.NewRAGHandler(retriever, explainer)

	// Setup Gin router
	r := gin.Default()
	r.Use(handlers.RequestID())

	r.GET("/", ragHandler.HealthCheck)
	r.POST("/rag", ragHandler.Query)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
