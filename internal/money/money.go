// Package money holds currency amounts at scale 2.
//
// Every amount is rounded half away from zero (HALF_UP) to two places when it is created, so two
// amounts that print the same always compare equal.
package money

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

const scale = 2

// Amount is a currency value stored in minor units. The zero value is 0.00.
type Amount struct {
	cents int64
}

// Zero is 0.00.
var Zero = Amount{}

// New rounds d to two places.
func New(d decimal.Decimal) Amount {
	return Amount{cents: d.Round(scale).Shift(scale).IntPart()}
}

// FromPtr maps an optional upstream value; nil is 0.00.
func FromPtr(d *decimal.Decimal) Amount {
	if d == nil {
		return Zero
	}
	return New(*d)
}

// OptFromPtr keeps absence: nil stays nil.
func OptFromPtr(d *decimal.Decimal) *Amount {
	if d == nil {
		return nil
	}
	a := New(*d)
	return &a
}

// Parse reads a decimal string such as "150.5" or "-3".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return New(d), nil
}

// MustParse is Parse for literals in tests and tables.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Add(b Amount) Amount { return Amount{cents: a.cents + b.cents} }
func (a Amount) Sub(b Amount) Amount { return Amount{cents: a.cents - b.cents} }

func (a Amount) Equal(b Amount) bool    { return a.cents == b.cents }
func (a Amount) LessThan(b Amount) bool { return a.cents < b.cents }
func (a Amount) IsZero() bool           { return a.cents == 0 }

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a.LessThan(b) {
		return b
	}
	return a
}

// Decimal returns the value at scale 2.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.cents, -scale)
}

// Ptr returns the value as an upstream optional decimal.
func (a Amount) Ptr() *decimal.Decimal {
	d := a.Decimal()
	return &d
}

// String always prints two places: "0.00", "150.50".
func (a Amount) String() string {
	return a.Decimal().StringFixed(scale)
}

// MarshalJSON writes a bare JSON number with two places.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a number, a numeric string or null (0.00).
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Zero
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*a = Zero
			return nil
		}
		data = []byte(s)
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
