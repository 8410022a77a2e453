// Package core holds the domain model: transactions, settlements and the
// derived compensation arithmetic. Amounts are fixed-point cents; direction
// (debit/credit) comes from the transaction type, never from the sign.
package core

import (
	"github.com/shopspring/decimal"
)

// Money is a fixed-point amount with two decimal places, stored as cents.
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseAmount converts a decimal string to Money with half-up rounding on
// anything past the second decimal place. Accepts both "12.34" and
// "12,34". Zero and negative values are rejected, never clamped.
func ParseAmount(s string) (Money, error) {
	d, err := decimal.NewFromString(normalizeDecimal(s))
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

func normalizeDecimal(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ',':
			out = append(out, '.')
		case ' ', '\t':
			// trimmed
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// String renders the amount with exactly two decimal places, e.g. "12.34".
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

// Decimal exposes the amount as an exact decimal for boundary formats.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}
