package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"lexbrief-backend/models"
)

// ErrGenerationFailed indicates the generation model was unreachable,
// returned an error, timed out, or produced no text. The handler surfaces
// it as a failed request; no canned explanation is ever substituted.
var ErrGenerationFailed = errors.New("failed to generate explanation")

const (
	// DefaultGenerationModel is used when GEMINI_MODEL is not set.
	DefaultGenerationModel = "gemini-1.5-pro"

	// generationTemperature favors faithfulness to the retrieved excerpts
	// over creative phrasing.
	generationTemperature = 0.2

	generationTimeout = 60 * time.Second
)

// Explainer sends the built prompt to the generation model and returns its
// top response verbatim. No post-processing, no citation verification.
type Explainer struct {
	client    *genai.Client
	modelName string
}

// ExplainerOption is a functional option for Explainer
type ExplainerOption func(*Explainer)

// ExplainerWithClient sets the generation client
func ExplainerWithClient(client *genai.Client) ExplainerOption {
	return func(e *Explainer) {
		e.client = client
	}
}

// ExplainerWithModel sets the generation model name
func ExplainerWithModel(name string) ExplainerOption {
	return func(e *Explainer) {
		e.modelName = name
	}
}

// NewExplainer creates a new explanation generator
func NewExplainer(opts ...ExplainerOption) *Explainer {
	e := &Explainer{modelName: DefaultGenerationModel}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Explain builds the prompt for the query and precedents and sends it as a
// single user message. One attempt, bounded by generationTimeout.
func (e *Explainer) Explain(ctx context.Context, query string, precedents []models.Precedent) (string, error) {
	if e.client == nil {
		return "", errors.New("generation client not set")
	}

	prompt := BuildPrompt(query, precedents)

	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	model := e.client.GenerativeModel(e.modelName)
	model.SetTemperature(generationTemperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: model returned no text", ErrGenerationFailed)
	}
	return text, nil
}

// responseText extracts the text parts of the top candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
