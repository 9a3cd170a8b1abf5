package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency_GroupsThousands(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{"millions", "1234567", "$1,234,567 COP"},
		{"thousands", "12345", "$12,345 COP"},
		{"hundreds need no separator", "345", "$345 COP"},
		{"fraction rounds away", "20000.49", "$20,000 COP"},
		{"zero", "0", "$0 COP"},
		{"negative", "-12345", "-$12,345 COP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatCurrency(decimal.RequireFromString(tt.amount), DefaultCurrencyFormat)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCurrency_FallbackWithoutSeparator(t *testing.T) {
	f := CurrencyFormat{Symbol: "$"}
	assert.Equal(t, "$1234567.00", FormatCurrency(decimal.RequireFromString("1234567"), f))
	assert.Equal(t, "$12.50", FormatCurrency(decimal.RequireFromString("12.5"), f))
}

func TestFormatCurrency_TwoDecimalConfig(t *testing.T) {
	f := CurrencyFormat{Symbol: "$", GroupSeparator: ",", Suffix: " USD", Decimals: 2}
	assert.Equal(t, "$1,234,567.00 USD", FormatCurrency(decimal.RequireFromString("1234567"), f))
	assert.Equal(t, "$99.90 USD", FormatCurrency(decimal.RequireFromString("99.9"), f))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05/03/2024", FormatDate("2024-03-05T10:00:00Z"))
	assert.Equal(t, "31/12/2023", FormatDate("2023-12-31T23:59:59-05:00"))
	assert.Equal(t, "05/03/2024", FormatDate("2024-03-05T10:00:00"))
	assert.Equal(t, "05/03/2024", FormatDate("2024-03-05"))
}

func TestFormatDate_UnparseableReturnsInput(t *testing.T) {
	assert.Equal(t, "not-a-date", FormatDate("not-a-date"))
	assert.Equal(t, "", FormatDate(""))
}
