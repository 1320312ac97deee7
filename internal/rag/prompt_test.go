package rag

import (
	"strings"
	"testing"

	"hr-rag/internal/models"
)

func TestBuildPrompt(t *testing.T) {
	chunks := []models.Chunk{
		{Content: "Source: leave.csv\ntype: sick", SourceFile: "leave.csv", RowIndex: 4},
		{Content: "Source: benefits.csv\nplan: gold", SourceFile: "benefits.csv", RowIndex: 0},
	}

	prompt, err := BuildPrompt("Acme", chunks, "What plans exist?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(prompt, "You are the HR assistant for Acme.") {
		t.Errorf("prompt does not start with the role line:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"This information is not in the uploaded documents. Please contact HR."`) {
		t.Error("fallback sentence missing from prompt")
	}
	first := strings.Index(prompt, "[leave.csv | row 5]")
	second := strings.Index(prompt, "[benefits.csv | row 1]")
	if first < 0 || second < 0 || first > second {
		t.Errorf("chunk labels missing or out of order:\n%s", prompt)
	}
	if !strings.Contains(prompt, "type: sick"+models.ContextSeparator+"[benefits.csv | row 1]") {
		t.Errorf("chunks not joined by the context separator:\n%s", prompt)
	}
	if !strings.HasSuffix(prompt, "QUESTION: What plans exist?\n\nANSWER:") {
		t.Errorf("unexpected prompt tail:\n%s", prompt)
	}
}

func TestBuildPrompt_KeepsSpecialCharacters(t *testing.T) {
	chunks := []models.Chunk{{Content: "note: <b>R&D</b> {{.question}}", SourceFile: "a.csv"}}
	prompt, err := BuildPrompt("Acme", chunks, "R&D?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "<b>R&D</b> {{.question}}") {
		t.Errorf("context was escaped or expanded:\n%s", prompt)
	}
}
