package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Amount is a monetary value in micro-units (1e6 micro-units = 1 base unit).
// All ledger, credit and pool arithmetic happens on this integer type so the
// tier rules and the ledger can never drift apart through float rounding.
type Amount int64

// MicroUnitsPerBase is the fixed-point scale of Amount.
const MicroUnitsPerBase = 1_000_000

var ErrMalformedAmount = errors.New("malformed amount")

// ParseAmount parses a decimal string such as "0.5" or "12.345678" into an
// Amount. At most 6 fractional digits are accepted; more would silently lose
// precision, so they are rejected instead.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMalformedAmount
	}

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	} else if s[0] == '+' {
		s = s[1:]
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return 0, ErrMalformedAmount
	}
	if len(frac) > 6 {
		return 0, ErrMalformedAmount
	}

	var micro int64
	for _, r := range whole {
		if r < '0' || r > '9' {
			return 0, ErrMalformedAmount
		}
		micro = micro*10 + int64(r-'0')
		if micro > (1<<62)/MicroUnitsPerBase {
			return 0, ErrMalformedAmount
		}
	}
	micro *= MicroUnitsPerBase

	scale := int64(MicroUnitsPerBase / 10)
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, ErrMalformedAmount
		}
		micro += int64(r-'0') * scale
		scale /= 10
	}

	if neg {
		micro = -micro
	}
	return Amount(micro), nil
}

// String formats the amount as a decimal in base units with trailing zeros
// trimmed ("0.5", "12", "0.000001").
func (a Amount) String() string {
	neg := a < 0
	if neg {
		a = -a
	}

	whole := int64(a) / MicroUnitsPerBase
	frac := int64(a) % MicroUnitsPerBase

	var out string
	if frac == 0 {
		out = fmt.Sprintf("%d", whole)
	} else {
		out = strings.TrimRight(fmt.Sprintf("%d.%06d", whole, frac), "0")
	}

	if neg {
		return "-" + out
	}
	return out
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a > 0
}
