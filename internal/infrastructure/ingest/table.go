// Package ingest turns raw tabular byte streams into the canonical sales
// record model. All knowledge of the external column naming lives here;
// nothing downstream branches on raw field names.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse-level errors.
var (
	ErrEmptyFile     = errors.New("file is empty")
	ErrMissingHeader = errors.New("missing header row")
)

// Table is a fully read tabular file: a header row plus data rows, with a
// case-preserving header index.
type Table struct {
	Headers   []string
	headerIdx map[string]int
	Rows      [][]string
}

// TableOption configures ReadTable.
type TableOption func(*csv.Reader)

// WithDelimiter sets the field delimiter (default is comma).
func WithDelimiter(d rune) TableOption {
	return func(r *csv.Reader) {
		r.Comma = d
	}
}

// ReadTable reads an entire CSV stream into memory. A UTF-8 BOM is
// stripped, quoting is lazy, and rows shorter than the header are padded
// with empty fields. Snapshots are bounded (a periodic full-file drop), so
// whole-table reads are acceptable.
func ReadTable(r io.Reader, opts ...TableOption) (*Table, error) {
	br := bufio.NewReader(r)

	// Detect and strip UTF-8 BOM (0xEF 0xBB 0xBF).
	head, err := br.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	for _, opt := range opts {
		opt(cr)
	}

	headerRec, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &Table{
		Headers:   make([]string, len(headerRec)),
		headerIdx: make(map[string]int, len(headerRec)),
	}
	for i, h := range headerRec {
		h = strings.TrimSpace(h)
		t.Headers[i] = h
		t.headerIdx[h] = i
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", len(t.Rows)+2, err)
		}
		if isEmptyRow(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}

	return t, nil
}

// ReadTableBytes reads a table from an in-memory byte slice.
func ReadTableBytes(data []byte, opts ...TableOption) (*Table, error) {
	return ReadTable(bytes.NewReader(data), opts...)
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.headerIdx[name]
	return ok
}

// Cell returns the trimmed value at the given row for the named column.
// Rows shorter than the header read as empty cells.
func (t *Table) Cell(row int, column string) string {
	idx, ok := t.headerIdx[column]
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	rec := t.Rows[row]
	if idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

// MissingColumns returns which of the required columns are absent.
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, c := range required {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

func isEmptyRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
