package parser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"hr-rag/internal/config"
	"hr-rag/internal/models"
)

var chunkerRecords = []models.DocumentRecord{
	{Content: "policy: annual leave\ndetails: Employees accrue two days of leave for every month worked", SourceFile: "leave.csv", RowIndex: 0},
	{Content: "policy: sick", SourceFile: "leave.csv", RowIndex: 1},
	{Content: "policy: remote work\ndetails: Up to three days per week with manager approval", SourceFile: "remote.csv", RowIndex: 7},
}

func TestSplit_Disabled(t *testing.T) {
	chunks, err := NewChunker(&config.RAGConfig{ChunkSize: 0}).Split(chunkerRecords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != len(chunkerRecords) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(chunkerRecords))
	}
	for i, c := range chunks {
		r := chunkerRecords[i]
		if c.Content != "Source: "+r.SourceFile+"\n"+r.Content {
			t.Errorf("chunk %d content = %q", i, c.Content)
		}
		if c.SourceFile != r.SourceFile || c.RowIndex != r.RowIndex || c.Part != 0 {
			t.Errorf("chunk %d metadata = %+v", i, c)
		}
		if c.ID == "" {
			t.Errorf("chunk %d has no ID", i)
		}
	}
}

func TestSplit_Enabled(t *testing.T) {
	cfg := &config.RAGConfig{ChunkSize: 40, ChunkOverlap: 5}
	chunks, err := NewChunker(cfg).Split(chunkerRecords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) <= len(chunkerRecords) {
		t.Fatalf("got %d chunks, want more than %d", len(chunks), len(chunkerRecords))
	}

	ids := make(map[string]bool)
	lastRow := -1
	for _, c := range chunks {
		prefix := SourcePrefix(c.SourceFile)
		if !strings.HasPrefix(c.Content, prefix) {
			t.Errorf("chunk missing source prefix: %q", c.Content)
		}
		if n := utf8.RuneCountInString(c.Content); n > cfg.ChunkSize {
			t.Errorf("chunk has %d characters, limit %d: %q", n, cfg.ChunkSize, c.Content)
		}
		if ids[c.ID] {
			t.Errorf("duplicate chunk ID %s", c.ID)
		}
		ids[c.ID] = true
		if c.RowIndex < lastRow && c.SourceFile == "leave.csv" {
			t.Errorf("chunks out of order: row %d after %d", c.RowIndex, lastRow)
		}
		lastRow = c.RowIndex
	}

	last := chunks[len(chunks)-1]
	if last.SourceFile != "remote.csv" || last.RowIndex != 7 {
		t.Errorf("row index not carried over: %+v", last)
	}
}

func TestSplit_IDsAreStable(t *testing.T) {
	c := NewChunker(&config.RAGConfig{ChunkSize: 30, ChunkOverlap: 5})
	first, err := c.Split(chunkerRecords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Split(chunkerRecords)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("chunk %d ID changed between runs", i)
		}
	}
}

func TestSplit_LongSourceNameCountsTowardsLimit(t *testing.T) {
	cfg := &config.RAGConfig{ChunkSize: 60, ChunkOverlap: 10}
	records := []models.DocumentRecord{{
		Content:    chunkerRecords[0].Content,
		SourceFile: "employee_handbook_2024.csv",
	}}

	chunks, err := NewChunker(cfg).Split(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want the row to be split", len(chunks))
	}
	for _, c := range chunks {
		if n := utf8.RuneCountInString(c.Content); n > cfg.ChunkSize {
			t.Errorf("chunk has %d characters, limit %d: %q", n, cfg.ChunkSize, c.Content)
		}
	}
}
