// Package money represents currency amounts as integer cents.
package money

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Cents is an amount of money in hundredths of the currency unit.
// It marshals to JSON as a decimal number (12.5 for 1250 cents).
type Cents int64

// Max is the largest amount a budget or payment may hold, one billion units.
// Sums of many such amounts still fit in an int64.
const Max Cents = 100_000_000_000

// FromFloat rounds a decimal amount to the nearest cent.
func FromFloat(f float64) Cents {
	return Cents(math.Round(f * 100))
}

// Float returns the amount as a decimal.
func (c Cents) Float() float64 {
	return float64(c) / 100
}

// String formats the amount with two decimals, e.g. "12450.00".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON implements json.Marshaler.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(c.Float(), 'f', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Cents) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("amount must be a number: %w", err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("amount must be finite")
	}
	// Beyond this the cents no longer fit in an int64.
	if math.Abs(f) >= math.MaxInt64/100 {
		return fmt.Errorf("amount is out of range")
	}
	*c = FromFloat(f)
	return nil
}

// Percent returns part as a percentage of whole, 0 when whole is not positive.
func Percent(part, whole Cents) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*10000) / 100
}
