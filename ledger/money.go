// Package ledger implements the settlement core of the expense ledger:
// exact minor-unit money handling, balance aggregation over expense and
// contribution records, and greedy debt simplification.
//
// Everything in this package is pure: no storage, no clocks, no goroutines.
// Callers fetch a snapshot of the ledger and fold it through these functions.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance, in minor units, for the per-expense
// contribution-sum invariant and the zero-sum precondition of Simplify.
// One cent absorbs rounding on shares that do not divide evenly.
const Epsilon = int64(1)

var centsFactor = decimal.NewFromInt(100)

// ParseAmount converts an exact decimal string ("12.34") into minor
// currency units. Amounts travel the wire as decimal strings, never binary
// floats, so the conservation invariant survives end to end.
//
// More than two fractional digits is rejected rather than rounded: a client
// sending sub-cent precision is a bug, not a rounding problem.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents := d.Mul(centsFactor)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("%w: %q has sub-cent precision", ErrInvalidAmount, s)
	}
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	return cents.IntPart(), nil
}

// FormatAmount renders minor units as an exact decimal string with two
// fractional digits ("12.34", "-0.05").
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
