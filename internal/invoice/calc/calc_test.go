package calc

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rate(v string) taxdomain.Rate { return taxdomain.MustPercent(v) }

func TestCalculateScenarios(t *testing.T) {
	cases := []struct {
		name  string
		items []Item
		want  Totals
	}{
		{
			name: "two items mixed rates",
			items: []Item{
				{Quantity: 2, UnitPrice: 1000, TaxRate: rate("10")},
				{Quantity: 1, UnitPrice: 1500, TaxRate: rate("20")},
			},
			want: Totals{Subtotal: 3500, Tax: 500, Total: 4000},
		},
		{
			name:  "null rate",
			items: []Item{{Quantity: 1, UnitPrice: 10000, TaxRate: taxdomain.Unspecified()}},
			want:  Totals{Subtotal: 10000, Tax: 0, Total: 10000},
		},
		{
			name:  "sub-cent tax rounds to zero",
			items: []Item{{Quantity: 1, UnitPrice: 1, TaxRate: rate("7.25")}},
			want:  Totals{Subtotal: 1, Tax: 0, Total: 1},
		},
		{
			name:  "hundred percent tax",
			items: []Item{{Quantity: 1, UnitPrice: 10000, TaxRate: rate("100")}},
			want:  Totals{Subtotal: 10000, Tax: 10000, Total: 20000},
		},
		{
			name:  "half cent rounds up",
			items: []Item{{Quantity: 2, UnitPrice: 3333, TaxRate: rate("10")}},
			want:  Totals{Subtotal: 6666, Tax: 667, Total: 7333},
		},
		{
			name:  "no items",
			items: nil,
			want:  Totals{},
		},
		{
			name:  "zero rate",
			items: []Item{{Quantity: 3, UnitPrice: 500, TaxRate: rate("0")}},
			want:  Totals{Subtotal: 1500, Tax: 0, Total: 1500},
		},
		{
			name:  "zero quantity",
			items: []Item{{Quantity: 0, UnitPrice: 5000, TaxRate: rate("18")}},
			want:  Totals{},
		},
		{
			name:  "zero unit price",
			items: []Item{{Quantity: 7, UnitPrice: 0, TaxRate: rate("100")}},
			want:  Totals{},
		},
		{
			name: "rounds per item not in aggregate",
			items: []Item{
				{Quantity: 1, UnitPrice: 5, TaxRate: rate("10")},
				{Quantity: 1, UnitPrice: 5, TaxRate: rate("10")},
				{Quantity: 1, UnitPrice: 5, TaxRate: rate("10")},
			},
			// 0.5 per item rounds to 1 each; aggregate rounding would give 2.
			want: Totals{Subtotal: 15, Tax: 3, Total: 18},
		},
		{
			name: "fractional rates",
			items: []Item{
				{Quantity: 3, UnitPrice: 999, TaxRate: rate("12.5")},
				{Quantity: 1, UnitPrice: 1001, TaxRate: rate("18.33")},
			},
			// 374.625 -> 375, 183.4833 -> 183
			want: Totals{Subtotal: 3998, Tax: 558, Total: 4556},
		},
		{
			name:  "large quantities and prices",
			items: []Item{{Quantity: 999999, UnitPrice: 999999, TaxRate: rate("18")}},
			want:  Totals{Subtotal: 999998000001, Tax: 179999640000, Total: 1179997640001},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Calculate(tc.items)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.Consistent())
		})
	}
}

func TestItemDerivedValues(t *testing.T) {
	item := Item{Quantity: 2, UnitPrice: 3333, TaxRate: rate("10")}
	assert.Equal(t, int64(6666), item.LineTotal())
	assert.Equal(t, int64(667), item.TaxAmount())
	assert.Equal(t, int64(7333), item.LineTotalWithTax())
}

func TestNegativeInputsPropagate(t *testing.T) {
	got := Calculate([]Item{
		{Quantity: -1, UnitPrice: 1000, TaxRate: rate("10")},
		{Quantity: 1, UnitPrice: 3000, TaxRate: rate("10")},
	})
	assert.Equal(t, Totals{Subtotal: 2000, Tax: 200, Total: 2200}, got)
}

type storedLine struct {
	qty   int64
	price int64
	rate  taxdomain.Rate
}

func (l storedLine) CalcItem() Item {
	return Item{Quantity: l.qty, UnitPrice: l.price, TaxRate: l.rate}
}

func TestCalculateLinesMatchesCalculate(t *testing.T) {
	lines := []storedLine{
		{qty: 10, price: 750, rate: rate("18")},
		{qty: 1, price: 99, rate: taxdomain.Unspecified()},
	}
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, l.CalcItem())
	}
	assert.Equal(t, Calculate(items), CalculateLines(lines))
	assert.Equal(t, Totals{Subtotal: 7599, Tax: 1350, Total: 8949}, CalculateLines(lines))
}

func randomItems(r *rand.Rand) []Item {
	n := r.Intn(12)
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		item := Item{
			Quantity:  r.Int63n(1_000_000),
			UnitPrice: r.Int63n(1_000_000),
		}
		switch r.Intn(3) {
		case 0:
			item.TaxRate = taxdomain.Unspecified()
		case 1:
			item.TaxRate = taxdomain.PercentInt(r.Int63n(101))
		default:
			item.TaxRate = taxdomain.Percent(decimal.New(r.Int63n(1_000_000), -4))
		}
		items = append(items, item)
	}
	return items
}

func TestCalculateProperties(t *testing.T) {
	r := rand.New(rand.NewSource(20261015))

	for i := 0; i < 500; i++ {
		items := randomItems(r)
		first := Calculate(items)

		require.True(t, first.Consistent(), "total must equal subtotal + tax")
		require.GreaterOrEqual(t, first.Subtotal, int64(0))
		require.GreaterOrEqual(t, first.Tax, int64(0))

		require.Equal(t, first, Calculate(items), "calculation must be idempotent")

		shuffled := append([]Item(nil), items...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		require.Equal(t, first, Calculate(shuffled), "order must not matter")

		var wantTax int64
		for _, item := range items {
			if !item.TaxRate.IsSet() {
				require.Zero(t, item.TaxAmount())
				continue
			}
			wantTax += item.TaxAmount()
		}
		require.Equal(t, wantTax, first.Tax)
	}
}

func TestZero(t *testing.T) {
	assert.Equal(t, Totals{}, Zero())
	assert.True(t, Zero().Consistent())
	assert.False(t, Totals{Subtotal: 1, Tax: 1, Total: 1}.Consistent())
}
