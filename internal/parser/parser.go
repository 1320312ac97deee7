package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"hr-rag/internal/helper"
	"hr-rag/internal/models"
)

// LoadResult is the outcome of reading the data directory.
type LoadResult struct {
	Records []models.DocumentRecord
	// Created is set when the data directory did not exist and was created.
	Created bool
	// Skipped lists files that could not be parsed with any encoding.
	Skipped []string
}

// textEncoding is one candidate in the decode chain. A nil enc means strict UTF-8.
type textEncoding struct {
	name string
	enc  encoding.Encoding
}

// candidate encodings for CSV files, tried in order. windows-1252 leaves
// five byte values undefined; files containing them fall through to latin-1.
var csvEncodings = []textEncoding{
	{name: "utf-8"},
	{name: "windows-1252", enc: charmap.Windows1252},
	{name: "latin-1", enc: charmap.ISO8859_1},
}

var (
	errInvalidUTF8    = errors.New("invalid utf-8 byte sequence")
	errUndefinedBytes = errors.New("byte values undefined in this encoding")
)

// LoadDirectory reads every recognized file in dir and returns one record
// per data row. Files that cannot be parsed are skipped. A missing dir is
// created and reported through LoadResult.Created.
func LoadDirectory(ctx context.Context, dir string) (*LoadResult, error) {
	result := &LoadResult{}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		if err := helper.CreateFolder(dir); err != nil {
			return nil, err
		}
		result.Created = true
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data folder: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		var records []models.DocumentRecord
		switch strings.ToLower(filepath.Ext(name)) {
		case ".csv":
			records, err = loadCSV(ctx, path)
		case ".xlsx":
			records, err = loadXLSX(path)
		default:
			continue
		}
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("Skipping unreadable file")
			result.Skipped = append(result.Skipped, name)
			continue
		}
		result.Records = append(result.Records, records...)
	}

	return result, nil
}

// loadCSV parses a delimited file, trying each candidate encoding until one
// decodes and parses without error. Rows may have more or fewer fields than
// the header.
func loadCSV(ctx context.Context, path string) ([]models.DocumentRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)

	var lastErr error
	for _, candidate := range csvEncodings {
		text, err := decode(raw, candidate)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", candidate.name, err)
			continue
		}

		records, err := parseCSV(ctx, text, name)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", candidate.name, err)
			continue
		}
		log.Info().Str("file", name).Str("encoding", candidate.name).Int("rows", len(records)).Msg("Loaded file")
		return records, nil
	}

	return nil, fmt.Errorf("failed to parse %s with any encoding: %w", name, lastErr)
}

func decode(raw []byte, candidate textEncoding) (string, error) {
	if candidate.enc == nil {
		if !utf8.Valid(raw) {
			return "", errInvalidUTF8
		}
		// UTF8BOM strips a leading byte order mark
		out, err := unicode.UTF8BOM.NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	out, err := candidate.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	// charmap decoders map undefined bytes to U+FFFD instead of failing
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", errUndefinedBytes
	}
	return string(out), nil
}

// parseCSV reads the first row as the header and renders every following
// row as "column: value" lines.
func parseCSV(ctx context.Context, text, name string) ([]models.DocumentRecord, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		header  []string
		records []models.DocumentRecord
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header == nil {
			header = row
			continue
		}
		records = append(records, models.DocumentRecord{
			Content:    rowContent(header, row),
			SourceFile: name,
			RowIndex:   len(records),
		})
	}
	return records, nil
}

// loadXLSX reads every sheet of a workbook. The first row of a sheet is the
// header, every following non-empty row becomes one record.
func loadXLSX(path string) ([]models.DocumentRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := filepath.Base(path)
	var records []models.DocumentRecord
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
		}
		if len(rows) == 0 {
			continue
		}
		header := rows[0]
		for _, row := range rows[1:] {
			if isEmptyRow(row) {
				continue
			}
			records = append(records, models.DocumentRecord{
				Content:    rowContent(header, row),
				SourceFile: name,
				RowIndex:   len(records),
			})
		}
	}
	log.Info().Str("file", name).Int("rows", len(records)).Msg("Loaded file")
	return records, nil
}

// rowContent renders a row as "column: value" lines. Values beyond the
// header get a positional column name.
func rowContent(header, row []string) string {
	var lines []string
	for i, value := range row {
		column := fmt.Sprintf("column %d", i+1)
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			column = header[i]
		}
		lines = append(lines, fmt.Sprintf("%s: %s", column, value))
	}
	return strings.Join(lines, "\n")
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

