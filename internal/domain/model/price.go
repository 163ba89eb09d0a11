package model

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// tenthsPerUnit is the fixed-point scale: prices carry exactly one decimal place.
const tenthsPerUnit = 10

// Price is a money amount in tenths of a currency unit (e.g. 125 == 12.5).
// Budget arithmetic is done on this integer form so repeated add/remove
// cycles round-trip exactly.
type Price int64

// PriceFromTenths builds a Price from a minor-unit amount, as sent by the provider.
func PriceFromTenths(tenths int64) Price { return Price(tenths) }

// PriceFromFloat rounds x to one decimal place (half away from zero).
func PriceFromFloat(x float64) Price {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return Price(math.Round(x * tenthsPerUnit))
}

// Tenths returns the minor-unit amount.
func (p Price) Tenths() int64 { return int64(p) }

// Float64 returns the major-unit value.
func (p Price) Float64() float64 { return float64(p) / tenthsPerUnit }

// Decimal returns the exact major-unit value.
func (p Price) Decimal() decimal.Decimal { return decimal.New(int64(p), -1) }

// String renders the amount with one decimal place, e.g. "12.5".
func (p Price) String() string { return p.Decimal().StringFixed(1) }

// Money renders the amount the way the squad screens show it, e.g. "£12.5m".
func (p Price) Money() string { return fmt.Sprintf("£%sm", p.String()) }

// MarshalJSON encodes the price as a one-decimal number.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts a JSON number in major units.
func (p *Price) UnmarshalJSON(b []byte) error {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, string(b))
	}
	*p = PriceFromFloat(f)
	return nil
}
