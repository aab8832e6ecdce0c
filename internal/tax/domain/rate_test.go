package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateApply(t *testing.T) {
	cases := []struct {
		name   string
		rate   Rate
		amount int64
		want   int64
	}{
		{name: "null rate", rate: Unspecified(), amount: 10000, want: 0},
		{name: "zero rate", rate: PercentInt(0), amount: 10000, want: 0},
		{name: "ten percent", rate: PercentInt(10), amount: 2000, want: 200},
		{name: "half rounds up", rate: PercentInt(10), amount: 6666, want: 667},
		{name: "below half rounds down", rate: MustPercent("7.25"), amount: 1, want: 0},
		{name: "exact half", rate: PercentInt(50), amount: 1, want: 1},
		{name: "fractional", rate: MustPercent("12.5"), amount: 999, want: 125},
		{name: "two decimals", rate: MustPercent("18.33"), amount: 1000, want: 183},
		{name: "hundred percent", rate: PercentInt(100), amount: 10000, want: 10000},
		{name: "large amount", rate: PercentInt(18), amount: 999999 * 999999, want: 179999640000},
		{name: "negative amount propagates", rate: PercentInt(10), amount: -2000, want: -200},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.rate.Apply(tc.amount))
		})
	}
}

func TestRateNullAndZeroAreDistinct(t *testing.T) {
	null := Unspecified()
	zero := PercentInt(0)

	assert.True(t, null.IsZero())
	assert.True(t, zero.IsZero())
	assert.False(t, null.IsSet())
	assert.True(t, zero.IsSet())
	assert.False(t, null.Equal(zero))

	nullJSON, err := json.Marshal(null)
	require.NoError(t, err)
	zeroJSON, err := json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(nullJSON))
	assert.Equal(t, "0", string(zeroJSON))

	nullValue, err := null.Value()
	require.NoError(t, err)
	assert.Nil(t, nullValue)
	zeroValue, err := zero.Value()
	require.NoError(t, err)
	assert.Equal(t, "0", zeroValue)
}

func TestRateJSON(t *testing.T) {
	type payload struct {
		Rate Rate `json:"rate"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"rate":12.5}`), &p))
	assert.True(t, p.Rate.Equal(MustPercent("12.5")))

	require.NoError(t, json.Unmarshal([]byte(`{"rate":"18"}`), &p))
	assert.True(t, p.Rate.Equal(PercentInt(18)))

	require.NoError(t, json.Unmarshal([]byte(`{"rate":null}`), &p))
	assert.False(t, p.Rate.IsSet())

	p = payload{Rate: PercentInt(5)}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
	assert.True(t, p.Rate.Equal(PercentInt(5)))

	err := json.Unmarshal([]byte(`{"rate":"abc"}`), &p)
	assert.ErrorIs(t, err, ErrInvalidTaxRate)

	out, err := json.Marshal(payload{Rate: MustPercent("18.25")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rate":18.25}`, string(out))
}

func TestRateScan(t *testing.T) {
	cases := []struct {
		name string
		src  any
		want Rate
	}{
		{name: "nil", src: nil, want: Unspecified()},
		{name: "int64", src: int64(18), want: PercentInt(18)},
		{name: "float64", src: 12.5, want: MustPercent("12.5")},
		{name: "bytes", src: []byte("18.0000"), want: PercentInt(18)},
		{name: "string", src: "0", want: PercentInt(0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var r Rate
			require.NoError(t, r.Scan(tc.src))
			assert.True(t, tc.want.Equal(r), "got %q", r.String())
		})
	}

	var r Rate
	assert.Error(t, r.Scan(true))
	assert.Error(t, r.Scan("x"))
}

func TestRateBasisPoints(t *testing.T) {
	bps, ok := MustPercent("18.25").BasisPoints()
	assert.True(t, ok)
	assert.Equal(t, int64(1825), bps)

	assert.True(t, FromBasisPoints(1825).Equal(MustPercent("18.25")))
	assert.True(t, FromBasisPoints(0).Equal(PercentInt(0)))

	_, ok = Unspecified().BasisPoints()
	assert.False(t, ok)

	_, ok = MustPercent("18.333").BasisPoints()
	assert.False(t, ok)
}

func TestParsePercent(t *testing.T) {
	r, err := ParsePercent("  ")
	require.NoError(t, err)
	assert.False(t, r.IsSet())

	r, err = ParsePercent("18.3300")
	require.NoError(t, err)
	assert.True(t, r.Decimal().Equal(decimal.RequireFromString("18.33")))

	_, err = ParsePercent("1.23456")
	assert.ErrorIs(t, err, ErrInvalidTaxRate)

	r, err = ParsePercent("-5")
	require.NoError(t, err)
	assert.True(t, r.IsNegative())

	assert.Panics(t, func() { MustPercent("nope") })
}
