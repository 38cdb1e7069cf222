// Package money provides exact fixed-point arithmetic for monetary amounts.
//
// An Amount is a count of minor units (cents), so sums over many splits never
// accumulate binary floating-point error. The remote ledger serializes amounts
// as decimal strings with two fractional digits ("12.34"); Amount marshals to
// and from that representation.
package money

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a monetary value in minor units (cents).
// The zero value is zero dollars.
type Amount int64

// FromMinor returns the Amount for a raw count of minor units.
func FromMinor(cents int64) Amount {
	return Amount(cents)
}

// FromFloat converts a float dollar value to an Amount, rounding half away
// from zero to the nearest cent. Intended for boundaries that only have
// floats available; internal code should stay in Amount.
func FromFloat(dollars float64) Amount {
	return Amount(math.Round(dollars * 100))
}

// Parse converts a decimal string such as "12.34", "-3.5" or "100" to an
// Amount. At most two fractional digits are accepted.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("money: empty amount")
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("money: invalid amount %q", s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("money: too many decimal places in %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	// Right-pad the fraction to exactly two digits ("5" -> "50").
	for len(frac) < 2 {
		frac += "0"
	}

	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}

	total := dollars*100 + cents
	if negative {
		total = -total
	}
	return Amount(total), nil
}

// MustParse is Parse for test fixtures and constants; it panics on error.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount { return a + b }

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount { return a - b }

// Neg returns -a.
func (a Amount) Neg() Amount { return -a }

// Abs returns the absolute value of a.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// Sign returns -1, 0 or 1 depending on the sign of a.
func (a Amount) Sign() int {
	switch {
	case a < 0:
		return -1
	case a > 0:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether a is exactly zero.
func (a Amount) IsZero() bool { return a == 0 }

// Minor returns the raw minor-unit count.
func (a Amount) Minor() int64 { return int64(a) }

// Float returns the dollar value as a float64, for display-adjacent callers
// that cannot consume strings. Not for arithmetic.
func (a Amount) Float() float64 { return float64(a) / 100 }

// String formats the amount as a plain decimal with two fractional digits,
// e.g. "12.34" or "-0.05".
func (a Amount) String() string {
	cents := int64(a)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts either a decimal string ("12.34") or a bare JSON
// number; some ledger endpoints emit numbers for legacy reasons.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := Parse(s)
		if perr != nil {
			return perr
		}
		*a = parsed
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("money: cannot decode %s as amount", string(data))
	}
	*a = FromFloat(f)
	return nil
}
