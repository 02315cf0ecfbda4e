// Package core holds the domain model shared by the runway pipeline:
// integer-cents money, normalized accounts, monthly buckets, and the
// income scenario.
//
// All monetary values are kept in minor units (cents) end to end;
// conversion to floating point happens only at presentation or when a
// ratio (runway months) is the final output.
package core

import "errors"

// Money is an amount in minor units of the user's base currency.
type Money struct {
	Cents int64
}

var ErrNegativeAmount = errors.New("negative amount")

// CentsOf builds a Money from a raw minor-unit value.
func CentsOf(c int64) Money {
	return Money{Cents: c}
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Mul returns m scaled by an integer factor.
func (m Money) Mul(n int64) Money {
	return Money{Cents: m.Cents * n}
}

// Div returns m divided by n with truncation toward zero. n must be > 0.
func (m Money) Div(n int64) Money {
	if n <= 0 {
		return Money{}
	}
	return Money{Cents: m.Cents / n}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// Abs returns the absolute value of m.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Cents > 0
}

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// ClampNonNegative returns m, or zero when m is negative. Scenario setters
// and corrupt-document loads use it to enforce the >= 0 invariant.
func (m Money) ClampNonNegative() Money {
	if m.Cents < 0 {
		return Money{}
	}
	return m
}

// Dollars returns the major-unit value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}
