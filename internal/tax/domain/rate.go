package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxRateScale matches the numeric(9,4) column that stores line item rates.
const maxRateScale = 4

// Rate is a nullable tax percentage: 18 means 18%.
// An unspecified rate and an explicit 0% both produce no tax but are kept
// apart through JSON (null vs 0) and SQL (NULL vs 0).
type Rate struct {
	value decimal.Decimal
	set   bool
}

// Unspecified returns the null rate.
func Unspecified() Rate {
	return Rate{}
}

// Percent wraps an explicit percentage.
func Percent(value decimal.Decimal) Rate {
	return Rate{value: value, set: true}
}

// PercentInt wraps a whole-number percentage.
func PercentInt(value int64) Rate {
	return Percent(decimal.NewFromInt(value))
}

// ParsePercent parses a percentage such as "12.5". An empty string is the
// null rate.
func ParsePercent(value string) (Rate, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Unspecified(), nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Rate{}, fmt.Errorf("%w: %q", ErrInvalidTaxRate, value)
	}
	if d.Exponent() < -maxRateScale && !d.Equal(d.Truncate(maxRateScale)) {
		return Rate{}, fmt.Errorf("%w: more than %d decimal places", ErrInvalidTaxRate, maxRateScale)
	}
	return Percent(d), nil
}

// MustPercent is ParsePercent for literals.
func MustPercent(value string) Rate {
	r, err := ParsePercent(value)
	if err != nil {
		panic(err)
	}
	return r
}

// FromBasisPoints converts basis points (1825 = 18.25%) into a rate.
func FromBasisPoints(bps int64) Rate {
	return Percent(decimal.New(bps, -2))
}

// BasisPoints returns the rate in basis points. It reports false for the
// null rate and for rates finer than one basis point.
func (r Rate) BasisPoints() (int64, bool) {
	if !r.set {
		return 0, false
	}
	shifted := r.value.Shift(2)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, false
	}
	return shifted.IntPart(), true
}

func (r Rate) IsSet() bool { return r.set }

// IsZero reports whether the rate yields no tax, null included.
func (r Rate) IsZero() bool { return !r.set || r.value.IsZero() }

func (r Rate) IsNegative() bool { return r.set && r.value.IsNegative() }

// Decimal returns the percentage, zero for the null rate.
func (r Rate) Decimal() decimal.Decimal {
	if !r.set {
		return decimal.Zero
	}
	return r.value
}

// Equal compares rates by value, so 18 and 18.0000 are equal. Two null
// rates are equal; null never equals 0.
func (r Rate) Equal(other Rate) bool {
	if r.set != other.set {
		return false
	}
	return !r.set || r.value.Equal(other.value)
}

// Apply returns amount*rate/100 rounded half away from zero to a whole
// minor unit. The null rate yields 0.
func (r Rate) Apply(amount int64) int64 {
	if r.IsZero() || amount == 0 {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(r.value).Shift(-2).Round(0).IntPart()
}

func (r Rate) String() string {
	if !r.set {
		return ""
	}
	return r.value.String()
}

func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.set {
		return []byte("null"), nil
	}
	return []byte(r.value.String()), nil
}

// UnmarshalJSON accepts null, a number, or a numeric string.
func (r *Rate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Unspecified()
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidTaxRate, data)
		}
	}

	parsed, err := ParsePercent(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the null rate as NULL and anything else as a decimal string.
func (r Rate) Value() (driver.Value, error) {
	if !r.set {
		return nil, nil
	}
	return r.value.String(), nil
}

func (r *Rate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = Unspecified()
	case int64:
		*r = PercentInt(v)
	case float64:
		*r = Percent(decimal.NewFromFloat(v))
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("scan tax rate: %w", err)
		}
		*r = Percent(d)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("scan tax rate: %w", err)
		}
		*r = Percent(d)
	default:
		return fmt.Errorf("scan tax rate: unsupported type %T", src)
	}
	return nil
}

// GormDataType keeps migrations on a fixed-point column.
func (Rate) GormDataType() string {
	return "numeric(9,4)"
}
