package invoice

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyFormat is an explicit formatting configuration, injected instead of
// mutating process-wide locale state.
type CurrencyFormat struct {
	Symbol         string
	GroupSeparator string
	Suffix         string
	Decimals       int32
}

// DefaultCurrencyFormat renders Colombian pesos, e.g. "$12,345 COP".
var DefaultCurrencyFormat = CurrencyFormat{
	Symbol:         "$",
	GroupSeparator: ",",
	Suffix:         " COP",
	Decimals:       0,
}

// FormatCurrency renders an amount with thousands grouping, symbol prefix,
// and currency suffix. A format without a group separator falls back to a
// plain fixed-point two-decimal form. It always produces a string.
func FormatCurrency(amount decimal.Decimal, f CurrencyFormat) string {
	if f.GroupSeparator == "" {
		return f.Symbol + amount.StringFixed(2)
	}

	s := amount.StringFixed(f.Decimals)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(f.Symbol)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(f.GroupSeparator)
		}
		b.WriteRune(c)
	}
	b.WriteString(fracPart)
	b.WriteString(f.Suffix)
	return b.String()
}

// dateLayouts are the timestamp shapes Shopify is known to emit.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatDate renders an ISO-8601 timestamp as DD/MM/YYYY. A trailing "Z" is
// treated as UTC. Unparseable input is returned unchanged, never an error.
func FormatDate(iso string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return iso
}
