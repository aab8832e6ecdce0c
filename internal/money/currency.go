// Package money formats integer minor-unit amounts for display.
package money

import "strings"

// DefaultCurrency is used whenever a currency code is missing or unknown.
const DefaultCurrency = "INR"

// Currency describes how amounts in a currency are displayed.
type Currency struct {
	Code         string
	Symbol       string
	MinorUnits   int
	DecimalSep   string
	ThousandsSep string
	SymbolAfter  bool
	// Indian grouping places separators after the first three digits
	// and then every two (12,34,567).
	IndianGrouping bool
}

var currencies = map[string]Currency{
	"INR": {Code: "INR", Symbol: "₹", MinorUnits: 2, DecimalSep: ".", ThousandsSep: ",", IndianGrouping: true},
	"USD": {Code: "USD", Symbol: "$", MinorUnits: 2, DecimalSep: ".", ThousandsSep: ","},
	"EUR": {Code: "EUR", Symbol: "€", MinorUnits: 2, DecimalSep: ",", ThousandsSep: ".", SymbolAfter: true},
	"GBP": {Code: "GBP", Symbol: "£", MinorUnits: 2, DecimalSep: ".", ThousandsSep: ","},
	"JPY": {Code: "JPY", Symbol: "¥", MinorUnits: 0, DecimalSep: ".", ThousandsSep: ","},
	"IDR": {Code: "IDR", Symbol: "Rp", MinorUnits: 2, DecimalSep: ",", ThousandsSep: "."},
	"SGD": {Code: "SGD", Symbol: "S$", MinorUnits: 2, DecimalSep: ".", ThousandsSep: ","},
	"AUD": {Code: "AUD", Symbol: "A$", MinorUnits: 2, DecimalSep: ".", ThousandsSep: ","},
	"CAD": {Code: "CAD", Symbol: "CA$", MinorUnits: 2, DecimalSep: ".", ThousandsSep: ","},
	"AED": {Code: "AED", Symbol: "AED ", MinorUnits: 2, DecimalSep: ".", ThousandsSep: ","},
	"KWD": {Code: "KWD", Symbol: "KD ", MinorUnits: 3, DecimalSep: ".", ThousandsSep: ","},
}

// Lookup returns the currency registered for code. The second value
// reports whether the code was known; unknown codes resolve to the
// default currency.
func Lookup(code string) (Currency, bool) {
	cur, ok := currencies[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return currencies[DefaultCurrency], false
	}
	return cur, true
}

// Normalize upper-cases code and falls back to DefaultCurrency when the
// code is not supported.
func Normalize(code string) string {
	cur, _ := Lookup(code)
	return cur.Code
}

// IsSupported reports whether code has a formatting entry.
func IsSupported(code string) bool {
	_, ok := Lookup(code)
	return ok
}
