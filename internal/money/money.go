package money

import (
	"strconv"
	"strings"
)

// Money is an amount in minor currency units.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// New builds Money with a normalized currency code.
func New(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: Normalize(currency)}
}

func (m Money) String() string {
	return Format(m.Amount, m.Currency)
}

// Format renders amount with the currency symbol, e.g. ₹1,23,456.78.
// Unknown currency codes are formatted as DefaultCurrency.
func Format(amount int64, code string) string {
	cur, _ := Lookup(code)
	number := formatNumber(amount, cur)
	if cur.SymbolAfter {
		return number + " " + cur.Symbol
	}
	if strings.HasPrefix(number, "-") {
		return "-" + cur.Symbol + number[1:]
	}
	return cur.Symbol + number
}

// FormatWithCode renders amount prefixed with the ISO code instead of the
// symbol, e.g. INR 1,23,456.78. PDF core fonts have no glyphs for most
// currency symbols.
func FormatWithCode(amount int64, code string) string {
	cur, _ := Lookup(code)
	return cur.Code + " " + formatNumber(amount, cur)
}

func formatNumber(amount int64, cur Currency) string {
	negative := amount < 0
	abs := uint64(amount)
	if negative {
		abs = uint64(-amount)
	}

	divisor := uint64(1)
	for i := 0; i < cur.MinorUnits; i++ {
		divisor *= 10
	}
	major := abs / divisor
	minor := abs % divisor

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(group(strconv.FormatUint(major, 10), cur))
	if cur.MinorUnits > 0 {
		digits := strconv.FormatUint(minor, 10)
		b.WriteString(cur.DecimalSep)
		b.WriteString(strings.Repeat("0", cur.MinorUnits-len(digits)))
		b.WriteString(digits)
	}
	return b.String()
}

func group(digits string, cur Currency) string {
	if cur.ThousandsSep == "" || len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	size := 3
	if cur.IndianGrouping {
		size = 2
	}

	parts := make([]string, 0, len(head)/size+2)
	for len(head) > size {
		parts = append([]string{head[len(head)-size:]}, parts...)
		head = head[:len(head)-size]
	}
	parts = append([]string{head}, parts...)
	parts = append(parts, tail)
	return strings.Join(parts, cur.ThousandsSep)
}
