package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE invoices;--", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		allowed  map[string]bool
		expected string
	}{
		{"empty returns default", "", InvoiceSortFields, "created_at"},
		{"whitelisted invoice field", "grand_total", InvoiceSortFields, "grand_total"},
		{"field of another table is rejected", "grand_total", TileSortFields, "created_at"},
		{"tile size", " size ", TileSortFields, "size"},
		{"customer pending", "total_pending", CustomerSortFields, "total_pending"},
		{"injection returns default", "name; DROP TABLE customers", CustomerSortFields, "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, tt.allowed, "created_at"))
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%ravi%", likePattern("  Ravi "))
	assert.Equal(t, "%50!%!_off%", likePattern("50%_off"))
	assert.Equal(t, "%wow!!%", likePattern("Wow!"))
	assert.Equal(t, "%tts / 001%", likePattern("TTS / 001"))
}
