package models

// DocumentRecord is one row of a tabular source file
type DocumentRecord struct {
	Content    string `json:"content"`
	SourceFile string `json:"source_file"`
	RowIndex   int    `json:"row_index"`
}

// Chunk is the unit stored in the vector index. Content carries the
// source prefix so the text the LLM sees identifies where it came from.
type Chunk struct {
	ID         string  `json:"id,omitempty"`
	Content    string  `json:"content"`
	SourceFile string  `json:"source_file"`
	RowIndex   int     `json:"row_index"`
	Part       int     `json:"part"`
	Similarity float32 `json:"similarity,omitempty"`
}

// QueryResult is the answer returned to the caller of a chat request
type QueryResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// SearchMode selects how retrieved chunks are ranked.
type SearchMode string

const (
	// SearchSimilarity returns the k nearest neighbours.
	SearchSimilarity SearchMode = "similarity"
	// SearchMMR re-ranks an over-fetched pool with maximal marginal relevance.
	SearchMMR SearchMode = "mmr"
)

// IsValid checks if the mode is one of the supported values.
func (m SearchMode) IsValid() bool {
	return m == SearchSimilarity || m == SearchMMR
}
