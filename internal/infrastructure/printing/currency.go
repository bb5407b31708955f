package printing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency glyphs. The rupee sign needs a UTF-8 font; the core PDF fonts
// only carry Latin-1.
const (
	RupeeGlyph    = "₹"
	RupeeFallback = "Rs."
)

// FormatIndianNumber formats d with two decimals and Indian digit
// grouping: the last three integer digits, then pairs (12,34,567.50).
func FormatIndianNumber(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}

	var b strings.Builder
	if d.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(groupIndian(intPart))
	b.WriteString(frac)
	return b.String()
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}

// FormatCurrency renders an amount with the given glyph. The minus sign
// goes before the glyph: -₹1,250.00.
func FormatCurrency(d decimal.Decimal, glyph string) string {
	n := FormatIndianNumber(d)
	if strings.HasPrefix(n, "-") {
		return "-" + glyph + n[1:]
	}
	return glyph + n
}
