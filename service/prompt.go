package service

import (
	"fmt"
	"strings"

	"lexbrief-backend/models"
)

// promptTemplate is the instruction sent to the generation model. It is a
// contract with the model: changing it changes answer behavior, so edits
// should be deliberate and reviewed against real transcripts.
const promptTemplate = `
You are LexBrief AI, an intelligent legal research assistant.

Step 1 — Analyze the user's query:
- Determine the user's intent and sentiment (e.g., greeting, curiosity, confusion, academic interest).
- Do NOT explicitly mention sentiment labels in the final answer.

User Query:
"%s"

Step 2 — Response strategy:
- If the query expresses confusion or uncertainty, respond in a calm, explanatory tone.
- If the query is purely informational, respond concisely and formally.
- If the query is a case name or precedent, explain its legal relevance.
- If the query is vague, politely guide the user toward a clearer legal question.

Step 3 — Legal reasoning:
Using the excerpts below, explain why each judgment is relevant to the query.
Focus on legal principles, constitutional interpretation, and precedent value.

Relevant court judgment excerpts:
%s

Rules:
- Do NOT provide legal advice.
- Do NOT invent facts.
- Do NOT mention internal reasoning steps.
- Maintain a professional but approachable tone.
`

// BuildPrompt turns a query and its retrieved precedents into the full
// instruction string for the generation model. It is a pure function:
// identical inputs always produce byte-identical output, and precedents
// appear in the context block in the order given.
func BuildPrompt(query string, precedents []models.Precedent) string {
	blocks := make([]string, len(precedents))
	for i, p := range precedents {
		blocks[i] = fmt.Sprintf("Case: %s\nExcerpt: %s", p.CaseName, p.Excerpt)
	}
	context := strings.Join(blocks, "\n\n")

	return fmt.Sprintf(promptTemplate, query, context)
}
