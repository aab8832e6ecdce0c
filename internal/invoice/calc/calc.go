// Package calc computes document totals from line items.
//
// All arithmetic is done in integer minor units. Tax is rounded per item
// and the rounded amounts are summed; the aggregate is never rounded.
package calc

import (
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
)

// Item is the calculator's view of a line item.
type Item struct {
	Quantity  int64
	UnitPrice int64
	TaxRate   taxdomain.Rate
}

// LineTotal is quantity × unit price.
func (i Item) LineTotal() int64 {
	return i.Quantity * i.UnitPrice
}

// TaxAmount is the line total at the item's rate, rounded half up.
// A null rate contributes nothing.
func (i Item) TaxAmount() int64 {
	return i.TaxRate.Apply(i.LineTotal())
}

func (i Item) LineTotalWithTax() int64 {
	return i.LineTotal() + i.TaxAmount()
}

// Line is implemented by anything that can be priced, such as stored line
// items.
type Line interface {
	CalcItem() Item
}

type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Zero is the totals of a document without items.
func Zero() Totals {
	return Totals{}
}

// Consistent reports whether Total equals Subtotal + Tax.
func (t Totals) Consistent() bool {
	return t.Total == t.Subtotal+t.Tax
}

// Calculate sums the items. The result does not depend on item order.
func Calculate(items []Item) Totals {
	totals := Zero()
	for _, item := range items {
		totals.add(item)
	}
	totals.Total = totals.Subtotal + totals.Tax
	return totals
}

// CalculateLines is Calculate over any Line implementation.
func CalculateLines[T Line](lines []T) Totals {
	totals := Zero()
	for _, line := range lines {
		totals.add(line.CalcItem())
	}
	totals.Total = totals.Subtotal + totals.Tax
	return totals
}

func (t *Totals) add(item Item) {
	t.Subtotal += item.LineTotal()
	t.Tax += item.TaxAmount()
}
