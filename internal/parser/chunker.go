package parser

import (
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/textsplitter"

	"hr-rag/internal/config"
	"hr-rag/internal/helper"
	"hr-rag/internal/models"
)

// Chunker turns document records into index chunks.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
	// splitters by body size, which depends on the length of the source prefix
	splitters map[int]textsplitter.TextSplitter
}

// NewChunker builds a chunker from the RAG config. A chunk size of zero
// disables splitting, every record then maps to exactly one chunk.
func NewChunker(cfg *config.RAGConfig) *Chunker {
	separators := cfg.Separators
	if len(separators) == 0 {
		separators = config.DefaultSeparators
	}
	return &Chunker{
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: max(cfg.ChunkOverlap, 0),
		separators:   separators,
		splitters:    make(map[int]textsplitter.TextSplitter),
	}
}

// splitterFor returns a splitter whose chunks leave room for the source
// prefix, so prefix plus body stays within the chunk size.
func (c *Chunker) splitterFor(sourceFile string) textsplitter.TextSplitter {
	size := max(c.chunkSize-utf8.RuneCountInString(SourcePrefix(sourceFile)), 1)
	if s, ok := c.splitters[size]; ok {
		return s
	}

	overlap := c.chunkOverlap
	if overlap >= size {
		overlap = size / 2
	}
	s := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
		textsplitter.WithSeparators(c.separators),
	)
	c.splitters[size] = s
	return s
}

// Split returns the chunks for records in input order. Source file and row
// index are copied from the record, and the source label is prefixed to
// every chunk's content.
func (c *Chunker) Split(records []models.DocumentRecord) ([]models.Chunk, error) {
	chunks := make([]models.Chunk, 0, len(records))
	for _, record := range records {
		parts := []string{record.Content}
		if c.chunkSize > 0 {
			split, err := c.splitterFor(record.SourceFile).SplitText(record.Content)
			if err != nil {
				return nil, fmt.Errorf("failed to split row %d of %s: %w", record.RowIndex, record.SourceFile, err)
			}
			if len(split) > 0 {
				parts = split
			}
		}

		for i, part := range parts {
			chunks = append(chunks, models.Chunk{
				ID:         helper.DocumentID(record.SourceFile, record.RowIndex, i),
				Content:    SourcePrefix(record.SourceFile) + part,
				SourceFile: record.SourceFile,
				RowIndex:   record.RowIndex,
				Part:       i,
			})
		}
	}

	log.Debug().Int("records", len(records)).Int("chunks", len(chunks)).Int("chunk_size", c.chunkSize).Msg("Split records into chunks")
	return chunks, nil
}

// SourcePrefix is the label prepended to every chunk's content.
func SourcePrefix(sourceFile string) string {
	return fmt.Sprintf(models.SourcePrefixFormat, sourceFile)
}
