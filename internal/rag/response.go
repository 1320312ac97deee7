package rag

import (
	"path/filepath"
	"sort"

	"hr-rag/internal/models"
)

// FormatResponse packages the answer with the base names of the files the
// context chunks came from, deduplicated and sorted.
func FormatResponse(chunks []models.Chunk, answer string) models.QueryResult {
	seen := make(map[string]struct{}, len(chunks))
	sources := []string{}
	for _, chunk := range chunks {
		if chunk.SourceFile == "" {
			continue
		}
		name := filepath.Base(chunk.SourceFile)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		sources = append(sources, name)
	}
	sort.Strings(sources)
	return models.QueryResult{Answer: answer, Sources: sources}
}
