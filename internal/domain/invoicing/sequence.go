package invoicing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NumberPrefix is the fixed shop prefix of every invoice number
const NumberPrefix = "TTS"

const numberSeparator = " / "

// FinancialYear returns the April-March financial year containing t,
// formatted as "2025-26".
func FinancialYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// FinancialYearPattern returns a SQL LIKE pattern matching every invoice
// number of the financial year
func FinancialYearPattern(fy string) string {
	return NumberPrefix + numberSeparator + "%" + numberSeparator + fy
}

// MatchesFinancialYear reports whether number has the shape "TTS / * / fy"
func MatchesFinancialYear(number, fy string) bool {
	prefix, suffix := NumberPrefix+numberSeparator, numberSeparator+fy
	return len(number) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(number, prefix) && strings.HasSuffix(number, suffix)
}

// FormatInvoiceNumber renders "TTS / 007 / 2025-26"
func FormatInvoiceNumber(seq int, fy string) string {
	return fmt.Sprintf("%s%s%03d%s%s", NumberPrefix, numberSeparator, seq, numberSeparator, fy)
}

// ParseSequence extracts the middle sequence segment of an invoice number
func ParseSequence(number string) (int, bool) {
	parts := strings.Split(number, numberSeparator)
	if len(parts) != 3 || parts[0] != NumberPrefix {
		return 0, false
	}
	seq, err := strconv.Atoi(parts[1])
	if err != nil || seq < 1 {
		return 0, false
	}
	return seq, true
}

// NextInvoiceNumber returns the number following the highest sequence found
// among existing numbers of the financial year, starting at 1. Numbers from
// other years or with an unparsable sequence are ignored.
func NextInvoiceNumber(existing []string, fy string) string {
	highest := 0
	for _, number := range existing {
		if !MatchesFinancialYear(number, fy) {
			continue
		}
		if seq, ok := ParseSequence(number); ok && seq > highest {
			highest = seq
		}
	}
	return FormatInvoiceNumber(highest+1, fy)
}

// SafeFileName turns an invoice number into a file-name friendly token,
// "TTS / 001 / 2025-26" becomes "TTS-001-2025-26"
func SafeFileName(number string) string {
	s := strings.ReplaceAll(number, numberSeparator, "-")
	return strings.ReplaceAll(s, "/", "-")
}
