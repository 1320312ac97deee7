package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hr-rag/internal/config"
	"hr-rag/internal/models"
)

type stubEmbedder struct {
	vectors [][]float32
	err     error
	texts   []string
}

func (s *stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	s.texts = texts
	return s.vectors, s.err
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if len(s.vectors) == 0 {
		return nil, s.err
	}
	return s.vectors[0], s.err
}

func TestGenerateEmbedding_PassesChunkContentInOrder(t *testing.T) {
	stub := &stubEmbedder{vectors: [][]float32{{1, 0}, {0, 1}}}
	chunks := []models.Chunk{{Content: "first"}, {Content: "second"}}

	vectors, err := GenerateEmbedding(context.Background(), stub, chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if strings.Join(stub.texts, ",") != "first,second" {
		t.Fatalf("unexpected texts sent to embedder: %v", stub.texts)
	}
}

func TestGenerateEmbedding_Empty(t *testing.T) {
	vectors, err := GenerateEmbedding(context.Background(), &stubEmbedder{}, nil)
	if err != nil || vectors != nil {
		t.Fatalf("expected nil, nil for no chunks, got %v, %v", vectors, err)
	}
}

func TestGenerateEmbedding_Errors(t *testing.T) {
	chunks := []models.Chunk{{Content: "a"}, {Content: "b"}}
	tests := []struct {
		name string
		stub *stubEmbedder
	}{
		{name: "remote failure", stub: &stubEmbedder{err: errors.New("connection refused")}},
		{name: "count mismatch", stub: &stubEmbedder{vectors: [][]float32{{1, 0}}}},
		{name: "dimension mismatch", stub: &stubEmbedder{vectors: [][]float32{{1, 0}, {1, 0, 0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GenerateEmbedding(context.Background(), tt.stub, chunks); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewEmbedder_UnknownProvider(t *testing.T) {
	if _, err := NewEmbedder(&config.EmbeddingConfig{Provider: "cohere"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewEmbedder_OllamaDoesNotDial(t *testing.T) {
	cfg := &config.EmbeddingConfig{Provider: config.ProviderOllama, Model: "nomic-embed-text", BaseURL: "http://127.0.0.1:1", BatchSize: 8}
	if _, err := NewEmbedder(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
