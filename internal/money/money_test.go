package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		name     string
		amount   int64
		currency string
		want     string
	}{
		{name: "inr grouping", amount: 12345678, currency: "INR", want: "₹1,23,456.78"},
		{name: "inr crore", amount: 1234567890, currency: "inr", want: "₹1,23,45,678.90"},
		{name: "inr small", amount: 5, currency: "INR", want: "₹0.05"},
		{name: "usd", amount: 123456789, currency: "USD", want: "$1,234,567.89"},
		{name: "eur symbol after", amount: 123456, currency: "EUR", want: "1.234,56 €"},
		{name: "jpy no minor units", amount: 1500000, currency: "JPY", want: "¥1,500,000"},
		{name: "kwd three minor units", amount: 1234567, currency: "KWD", want: "KD 1,234.567"},
		{name: "negative", amount: -150000, currency: "USD", want: "-$1,500.00"},
		{name: "zero", amount: 0, currency: "GBP", want: "£0.00"},
		{name: "unknown falls back to inr", amount: 250000, currency: "XYZ", want: "₹2,500.00"},
		{name: "empty falls back to inr", amount: 100, currency: "", want: "₹1.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Format(tc.amount, tc.currency))
		})
	}
}

func TestFormatWithCode(t *testing.T) {
	assert.Equal(t, "INR 1,23,456.78", FormatWithCode(12345678, "INR"))
	assert.Equal(t, "USD 10.00", FormatWithCode(1000, "usd"))
	assert.Equal(t, "JPY 1,500", FormatWithCode(1500, "jpy"))
}

func TestLookupAndNormalize(t *testing.T) {
	cur, ok := Lookup(" usd ")
	assert.True(t, ok)
	assert.Equal(t, "USD", cur.Code)

	cur, ok = Lookup("nope")
	assert.False(t, ok)
	assert.Equal(t, DefaultCurrency, cur.Code)

	assert.Equal(t, "INR", Normalize("bogus"))
	assert.True(t, IsSupported("eur"))
	assert.False(t, IsSupported(""))
}

func TestMoneyString(t *testing.T) {
	m := New(1250, "usd")
	assert.Equal(t, Money{Amount: 1250, Currency: "USD"}, m)
	assert.Equal(t, "$12.50", m.String())
	assert.Equal(t, "₹0.05", New(5, "bogus").String())
}
