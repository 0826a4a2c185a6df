package money

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	f := NewFormatter("en")
	tests := []struct {
		name   string
		amount decimal.Decimal
		code   string
		want   string
	}{
		{name: "three digit currency", amount: decimal.NewFromInt(35), code: "tnd", want: "TND 35.000"},
		{name: "dollar symbol", amount: decimal.RequireFromString("12.5"), code: "USD", want: "$12.50"},
		{name: "euro symbol", amount: decimal.NewFromInt(89), code: "eur", want: "€89.00"},
		{name: "zero decimal currency", amount: decimal.NewFromInt(480), code: "JPY", want: "¥480"},
		{name: "free item", amount: decimal.Zero, code: "usd", want: "$0.00"},
		{name: "negative", amount: decimal.NewFromInt(-5), code: "usd", want: "-$5.00"},
		{name: "unknown code", amount: decimal.NewFromInt(3), code: "zzz", want: "ZZZ 3.00"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, f.Format(tc.amount, tc.code))
		})
	}
}

func TestNewFormatterFallsBackToEnglish(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "en", NewFormatter("").Lang())
	assert.Equal(t, "en", NewFormatter("not a tag!").Lang())
	assert.Equal(t, "fr", NewFormatter("fr-TN").Lang())
}

func TestDate(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mar 9, 2024", NewFormatter("en").Date(ts))
	assert.Equal(t, "09/03/2024", NewFormatter("fr").Date(ts))
}
