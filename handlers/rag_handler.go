package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lexbrief-backend/embedding"
	"lexbrief-backend/index"
	"lexbrief-backend/models"
	"lexbrief-backend/service"
)

// EmptyQueryGuidance is returned, with an empty precedent list, whenever
// the query is empty or whitespace-only. That path is a deliberate
// zero-cost success: neither the retriever nor the generator is invoked.
const EmptyQueryGuidance = "Please enter a legal question, case name, or judgment excerpt so I can assist you."

// PrecedentRetriever returns the topK precedents most similar to the query.
type PrecedentRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.Precedent, error)
}

// ExplanationGenerator explains the precedents' relevance to the query.
type ExplanationGenerator interface {
	Explain(ctx context.Context, query string, precedents []models.Precedent) (string, error)
}

// RAGHandler handles HTTP requests for the RAG endpoint
type RAGHandler struct {
	retriever PrecedentRetriever
	generator ExplanationGenerator
}

// NewRAGHandler creates a new RAG handler
func NewRAGHandler(retriever PrecedentRetriever, generator ExplanationGenerator) *RAGHandler {
	return &RAGHandler{
		retriever: retriever,
		generator: generator,
	}
}

// HealthCheck handles GET /
func (h *RAGHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "Legal RAG API is running",
	})
}

// Query handles POST /rag
func (h *RAGHandler) Query(c *gin.Context) {
	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	if req.TopK == 0 {
		req.TopK = models.DefaultTopK
	}

	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusOK, models.RAGResponse{
			Query:       req.Query,
			Precedents:  []models.Precedent{},
			Explanation: EmptyQueryGuidance,
		})
		return
	}

	ctx := c.Request.Context()

	precedents, err := h.retriever.Retrieve(ctx, req.Query, req.TopK)
	if err != nil {
		log.Printf("[%s] retrieval failed: %v", RequestIDFromContext(c), err)
		h.writeError(c, err, "RETRIEVAL_FAILED")
		return
	}

	explanation, err := h.generator.Explain(ctx, req.Query, precedents)
	if err != nil {
		log.Printf("[%s] generation failed: %v", RequestIDFromContext(c), err)
		h.writeError(c, err, "GENERATION_FAILED")
		return
	}

	c.JSON(http.StatusOK, models.RAGResponse{
		Query:       req.Query,
		Precedents:  precedents,
		Explanation: explanation,
	})
}

// writeError maps a retrieval or generation failure to a response. Errors
// propagate here unchanged from the services, so sentinel checks still work.
func (h *RAGHandler) writeError(c *gin.Context, err error, fallbackCode string) {
	status := http.StatusInternalServerError
	code := fallbackCode

	switch {
	case errors.Is(err, index.ErrInvalidQuery):
		status = http.StatusBadRequest
		code = "INVALID_QUERY"
	case errors.Is(err, index.ErrUnavailable):
		status = http.StatusBadGateway
		code = "INDEX_UNAVAILABLE"
	case errors.Is(err, embedding.ErrEmbeddingFailed):
		status = http.StatusBadGateway
		code = "EMBEDDING_FAILED"
	case errors.Is(err, service.ErrGenerationFailed):
		status = http.StatusBadGateway
		code = "GENERATION_FAILED"
	}

	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}
