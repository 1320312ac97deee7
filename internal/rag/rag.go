package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"hr-rag/internal/chromemdb"
	"hr-rag/internal/config"
	"hr-rag/internal/models"
	"hr-rag/internal/parser"
)

// Generator produces the answer text for a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RAG wires the loader, chunker, vector index and LLM together.
//
// Ingest rewrites the index file while Answer reads it; callers running
// both concurrently get no consistency guarantee beyond the atomic rename
// of the index file.
type RAG struct {
	cfg      *config.Config
	embedder embeddings.Embedder
	llm      Generator
}

func NewRAG(cfg *config.Config, embedder embeddings.Embedder, llm Generator) *RAG {
	return &RAG{cfg: cfg, embedder: embedder, llm: llm}
}

func (r *RAG) newStore() *chromemdb.VectorDBManager {
	return chromemdb.NewVectorDBManager(r.cfg.RAG.IndexPath, r.embedder, r.cfg.RAG.Compress, r.cfg.RAG.EncryptionKey)
}

// Preview loads and chunks the data folder without embedding anything.
func (r *RAG) Preview(ctx context.Context) ([]models.Chunk, error) {
	loaded, err := parser.LoadDirectory(ctx, r.cfg.RAG.DataPath)
	if err != nil {
		return nil, err
	}
	return parser.NewChunker(&r.cfg.RAG).Split(loaded.Records)
}

// Ingest rebuilds the whole index from the data folder and returns a status
// message. Every call re-embeds the full corpus. When no rows can be read
// the existing index is left as it is.
func (r *RAG) Ingest(ctx context.Context) (string, error) {
	loaded, err := parser.LoadDirectory(ctx, r.cfg.RAG.DataPath)
	if err != nil {
		return "", err
	}
	if loaded.Created {
		log.Info().Str("path", r.cfg.RAG.DataPath).Msg("Created data folder")
		return models.StatusDataDirCreated, nil
	}
	if len(loaded.Skipped) > 0 {
		log.Warn().Strs("files", loaded.Skipped).Msg("Some files were skipped")
	}
	if len(loaded.Records) == 0 {
		return models.StatusNoDocuments, nil
	}

	chunks, err := parser.NewChunker(&r.cfg.RAG).Split(loaded.Records)
	if err != nil {
		return "", err
	}

	if err := r.newStore().Build(ctx, chunks); err != nil {
		if errors.Is(err, chromemdb.ErrNoChunks) {
			return models.StatusNoDocuments, nil
		}
		return "", fmt.Errorf("failed to build index: %w", err)
	}

	log.Info().Int("rows", len(loaded.Records)).Int("chunks", len(chunks)).Str("index", r.cfg.RAG.IndexPath).Msg("Index rebuilt")
	return fmt.Sprintf(models.StatusIndexedFormat, len(loaded.Records)), nil
}

// Answer retrieves context for query and asks the LLM. Missing index, empty
// question and empty retrieval produce fixed answers; embedding and LLM
// failures are returned as errors.
func (r *RAG) Answer(ctx context.Context, query string) (*models.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return fixedAnswer(models.EmptyQuestionAnswer), nil
	}

	store := r.newStore()
	if err := store.Load(ctx); err != nil {
		if errors.Is(err, chromemdb.ErrIndexNotFound) {
			return fixedAnswer(models.EmptyIndexAnswer), nil
		}
		return nil, err
	}

	chunks, err := store.Retrieve(ctx, query, r.retrieveOptions())
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return fixedAnswer(models.NoResultsAnswer), nil
	}

	prompt, err := BuildPrompt(r.cfg.RAG.Organization, chunks, query)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("chunks", len(chunks)).Int("prompt_chars", len(prompt)).Msg("Sending prompt")

	answer, err := r.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result := FormatResponse(chunks, answer)
	return &result, nil
}

func (r *RAG) retrieveOptions() chromemdb.RetrieveOptions {
	return chromemdb.RetrieveOptions{
		K:              r.cfg.RAG.RetrievalK,
		Mode:           models.SearchMode(r.cfg.RAG.RetrievalMode),
		FetchK:         r.cfg.RAG.MMRFetchK,
		Lambda:         r.cfg.RAG.MMRLambda,
		ScoreThreshold: r.cfg.RAG.ScoreThreshold,
	}
}

func fixedAnswer(answer string) *models.QueryResult {
	return &models.QueryResult{Answer: answer, Sources: []string{}}
}
