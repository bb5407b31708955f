// Package csvimport reads spreadsheet exports into typed records for bulk
// catalogue loading.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser reads a header row followed by data rows. Header names are
// normalised to lower_snake_case so "Box Packing" matches "box_packing".
type Parser struct {
	reader  *csv.Reader
	headers []string
	index   map[string]int
	line    int
}

// Row is one data row keyed by normalised header
type Row struct {
	Line int
	Data map[string]string
}

// Get returns the trimmed value of a column, or "" when absent
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// IsEmpty reports whether every cell is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// NewParser strips a UTF-8 BOM, rejects non-UTF-8 input and reads the header
func NewParser(r io.Reader) (*Parser, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	sample, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(strings.TrimSpace(string(sample))) == 0 {
		return nil, ErrEmptyFile
	}
	// A full sample may end inside a multi-byte rune; a short one holds the whole file
	full := err == nil || errors.Is(err, bufio.ErrBufferFull)
	if !utf8.Valid(sample) && (!full || !utf8.Valid(trimPartialRune(sample))) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	p := &Parser{reader: cr, index: make(map[string]int)}
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	p.line = 1
	if !validRecord(header) {
		return nil, fmt.Errorf("row 1: %w", ErrInvalidEncoding)
	}
	for i, h := range header {
		name := NormalizeHeader(h)
		if name == "" {
			continue
		}
		p.headers = append(p.headers, name)
		p.index[name] = i
	}
	if len(p.headers) == 0 {
		return nil, ErrMissingHeader
	}
	return p, nil
}

// Headers returns the normalised header names in file order
func (p *Parser) Headers() []string {
	return p.headers
}

// Missing returns the required columns absent from the header
func (p *Parser) Missing(required ...string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := p.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// Next returns the next data row or io.EOF
func (p *Parser) Next() (*Row, error) {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	p.line++
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", p.line, err)
	}
	if !validRecord(record) {
		return nil, fmt.Errorf("row %d: %w", p.line, ErrInvalidEncoding)
	}

	row := &Row{Line: p.line, Data: make(map[string]string, len(p.index))}
	for name, i := range p.index {
		if i < len(record) {
			row.Data[name] = strings.TrimSpace(record[i])
		} else {
			row.Data[name] = ""
		}
	}
	return row, nil
}

// All reads the remaining rows, skipping blank ones
func (p *Parser) All() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if !row.IsEmpty() {
			rows = append(rows, row)
		}
	}
}

// NormalizeHeader lowercases and joins words with underscores
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.FieldsFunc(h, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	}), "_")
}

func validRecord(record []string) bool {
	for _, field := range record {
		if !utf8.ValidString(field) {
			return false
		}
	}
	return true
}

func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}
