package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"hr-rag/internal/embedding"
	"hr-rag/internal/helper"
	"hr-rag/internal/models"
)

const collectionName = "hr_documents"

var (
	// ErrNoChunks is returned by Build when there is nothing to index.
	ErrNoChunks = errors.New("no chunks to index")
	// ErrIndexNotFound is returned by Load when no index has been built yet.
	ErrIndexNotFound = errors.New("vector index not found")
)

// RetrieveOptions controls how candidates are ranked.
type RetrieveOptions struct {
	K              int
	Mode           models.SearchMode
	FetchK         int
	Lambda         float64
	ScoreThreshold float64
}

// VectorDBManager encapsulates the chromem-go database operations
type VectorDBManager struct {
	db            *chromem.DB
	collection    *chromem.Collection
	embedder      embeddings.Embedder
	indexPath     string
	compress      bool
	encryptionKey string
}

// NewVectorDBManager initializes a new vector database manager. The index
// lives in memory and is persisted as a single file at indexPath.
func NewVectorDBManager(indexPath string, embedder embeddings.Embedder, compress bool, encryptionKey string) *VectorDBManager {
	return &VectorDBManager{
		db:            chromem.NewDB(),
		embedder:      embedder,
		indexPath:     indexPath,
		compress:      compress,
		encryptionKey: encryptionKey,
	}
}

// embeddingFunc adapts the langchaingo embedder to chromem-go
func (m *VectorDBManager) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return m.embedder.EmbedQuery(ctx, text)
	}
}

// Exists reports whether an index file is present.
func (m *VectorDBManager) Exists() bool {
	fi, err := os.Stat(m.indexPath)
	return err == nil && !fi.IsDir()
}

// Count returns the number of stored chunks, 0 if nothing is loaded.
func (m *VectorDBManager) Count() int {
	if m.collection == nil {
		return 0
	}
	return m.collection.Count()
}

// Build embeds every chunk, replaces the in-memory collection and writes the
// index file. The previous file stays in place until the new one is complete.
func (m *VectorDBManager) Build(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return ErrNoChunks
	}

	vectors, err := embedding.GenerateEmbedding(ctx, m.embedder, chunks)
	if err != nil {
		return err
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(collectionName, nil, m.embeddingFunc())
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:      chunk.ID,
			Content: chunk.Content,
			Metadata: map[string]string{
				models.MetaSourceFile: chunk.SourceFile,
				models.MetaRowIndex:   strconv.Itoa(chunk.RowIndex),
				models.MetaPart:       strconv.Itoa(chunk.Part),
				models.MetaOrdinal:    strconv.Itoa(i),
			},
			Embedding: vectors[i],
		}
	}

	log.Info().Msgf("Adding %d documents to vector database", len(docs))
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	if err := m.export(db); err != nil {
		return err
	}

	m.db = db
	m.collection = collection
	return nil
}

// export writes the database to a temp file next to the index and renames it
// into place.
func (m *VectorDBManager) export(db *chromem.DB) error {
	dir := filepath.Dir(m.indexPath)
	if err := helper.CreateFolder(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(m.indexPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := db.ExportToWriter(tmp, m.compress, m.encryptionKey, collectionName); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to export database: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close index file: %w", err)
	}
	if err := os.Rename(tmpPath, m.indexPath); err != nil {
		return fmt.Errorf("failed to replace index file: %w", err)
	}

	log.Debug().Str("file", m.indexPath).Bool("compress", m.compress).Msg("Exported vector index")
	return nil
}

// Load reads the index file into memory.
func (m *VectorDBManager) Load(ctx context.Context) error {
	if !m.Exists() {
		return ErrIndexNotFound
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(m.indexPath, m.encryptionKey, collectionName); err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}

	m.db = db
	m.collection = db.GetCollection(collectionName, m.embeddingFunc())
	log.Debug().Str("file", m.indexPath).Int("documents", m.Count()).Msg("Loaded vector index")
	return nil
}

// Retrieve returns the chunks most relevant to query, best first. An empty
// or missing collection yields no chunks and no error.
func (m *VectorDBManager) Retrieve(ctx context.Context, query string, opts RetrieveOptions) ([]models.Chunk, error) {
	total := m.Count()
	if total == 0 || opts.K <= 0 {
		return []models.Chunk{}, nil
	}

	queryEmbedding, err := m.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	// chromem keeps documents in a map, so ties are broken here by build order
	results, err := m.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       total,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return ordinal(results[i]) < ordinal(results[j])
	})

	if opts.ScoreThreshold > 0 {
		kept := results[:0]
		for _, r := range results {
			if float64(r.Similarity) >= opts.ScoreThreshold {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	var selected []chromem.Result
	switch opts.Mode {
	case models.SearchMMR:
		fetchK := max(opts.FetchK, opts.K)
		if len(results) > fetchK {
			results = results[:fetchK]
		}
		candidates := make([][]float32, len(results))
		for i, r := range results {
			candidates[i] = r.Embedding
		}
		for _, idx := range maximalMarginalRelevance(queryEmbedding, candidates, opts.K, float32(opts.Lambda)) {
			selected = append(selected, results[idx])
		}
	default:
		if len(results) > opts.K {
			results = results[:opts.K]
		}
		selected = results
	}

	chunks := make([]models.Chunk, 0, len(selected))
	for _, r := range selected {
		chunks = append(chunks, toChunk(r))
	}
	log.Debug().Str("mode", string(opts.Mode)).Int("candidates", len(results)).Int("selected", len(chunks)).Msg("Retrieved chunks")
	return chunks, nil
}

func toChunk(r chromem.Result) models.Chunk {
	rowIndex, _ := strconv.Atoi(r.Metadata[models.MetaRowIndex])
	part, _ := strconv.Atoi(r.Metadata[models.MetaPart])
	return models.Chunk{
		ID:         r.ID,
		Content:    r.Content,
		SourceFile: r.Metadata[models.MetaSourceFile],
		RowIndex:   rowIndex,
		Part:       part,
		Similarity: r.Similarity,
	}
}

func ordinal(r chromem.Result) int {
	n, err := strconv.Atoi(r.Metadata[models.MetaOrdinal])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
