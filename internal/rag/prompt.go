package rag

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"hr-rag/internal/models"
)

var promptTemplate = prompts.NewPromptTemplate(
	models.PromptTemplate,
	[]string{"organization", "fallback", "context", "question"},
)

// BuildPrompt renders the prompt sent to the LLM. Chunks keep their
// retrieval order and each is labeled with its file and row number.
func BuildPrompt(organization string, chunks []models.Chunk, question string) (string, error) {
	prompt, err := promptTemplate.Format(map[string]any{
		"organization": organization,
		"fallback":     models.NotInDocumentsAnswer,
		"context":      buildContext(chunks),
		"question":     question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return prompt, nil
}

func buildContext(chunks []models.Chunk) string {
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = fmt.Sprintf("[%s | row %d]\n%s", chunk.SourceFile, chunk.RowIndex+1, chunk.Content)
	}
	return strings.Join(parts, models.ContextSeparator)
}
