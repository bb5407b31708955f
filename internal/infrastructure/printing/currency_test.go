package printing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatIndianNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"999", "999.00"},
		{"1000", "1,000.00"},
		{"12345.678", "12,345.68"},
		{"123456", "1,23,456.00"},
		{"1234567.5", "12,34,567.50"},
		{"123456789", "12,34,56,789.00"},
		{"-1250", "-1,250.00"},
		{"-0.001", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatIndianNumber(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "₹1,00,000.00", FormatCurrency(decimal.NewFromInt(100000), RupeeGlyph))
	assert.Equal(t, "Rs.450.50", FormatCurrency(decimal.RequireFromString("450.5"), RupeeFallback))
	assert.Equal(t, "-₹1,250.00", FormatCurrency(decimal.NewFromInt(-1250), RupeeGlyph))
	assert.Equal(t, "-Rs.75.00", FormatCurrency(decimal.NewFromInt(-75), RupeeFallback))
}
