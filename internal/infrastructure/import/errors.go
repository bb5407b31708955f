package csvimport

import (
	"errors"
	"fmt"
)

// Row-level error codes
const (
	ErrCodeRequiredField = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeInvalidNumber = "ERR_IMPORT_INVALID_NUMBER"
	ErrCodeInvalidValue  = "ERR_IMPORT_INVALID_VALUE"
	ErrCodeDuplicateRow  = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeConflict      = "ERR_IMPORT_CONFLICT"
	ErrCodeRowFailed     = "ERR_IMPORT_ROW_FAILED"
)

var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("CSV file is not valid UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
)

// RowError points at one cell (or a whole row when Column is empty).
// Row is the 1-based line number in the file, header included.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ErrorCollection keeps the first max errors and counts the rest
type ErrorCollection struct {
	errors []RowError
	max    int
	total  int
}

// NewErrorCollection creates a collection; max <= 0 means 100
func NewErrorCollection(max int) *ErrorCollection {
	if max <= 0 {
		max = 100
	}
	return &ErrorCollection{max: max}
}

// Add records an error
func (ec *ErrorCollection) Add(err RowError) {
	ec.total++
	if len(ec.errors) < ec.max {
		ec.errors = append(ec.errors, err)
	}
}

// Addf records an error with a formatted message
func (ec *ErrorCollection) Addf(row int, column, code, value, format string, args ...any) {
	ec.Add(RowError{Row: row, Column: column, Code: code, Message: fmt.Sprintf(format, args...), Value: value})
}

func (ec *ErrorCollection) Errors() []RowError { return ec.errors }

func (ec *ErrorCollection) TotalCount() int { return ec.total }

func (ec *ErrorCollection) HasErrors() bool { return ec.total > 0 }

// IsTruncated reports whether errors were dropped past the limit
func (ec *ErrorCollection) IsTruncated() bool { return ec.total > len(ec.errors) }

// Rows returns the distinct row numbers that have at least one error
func (ec *ErrorCollection) Rows() map[int]bool {
	rows := make(map[int]bool, len(ec.errors))
	for _, e := range ec.errors {
		rows[e.Row] = true
	}
	return rows
}
