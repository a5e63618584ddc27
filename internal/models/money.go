package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidMoney is returned for amounts that are malformed or negative.
var ErrInvalidMoney = errors.New("invalid monetary amount")

// Money is a non-negative amount held in cents.
// It renders as a JSON number with two fraction digits.
type Money int64

// ParseMoney converts a decimal string to cents.
//
// Both dot and comma separators are accepted and the third fraction digit
// is rounded half-up. Zero is a valid amount; negative values are not.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidMoney
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "-") {
		return 0, ErrInvalidMoney
	}
	s = strings.TrimPrefix(s, "+")
	if strings.ContainsAny(s, "eE") {
		return parseScientific(s)
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, ErrInvalidMoney
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, ErrInvalidMoney
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidMoney
	}
	const maxUnits = (1<<63 - 1) / 100
	if iv >= maxUnits {
		return 0, ErrInvalidMoney
	}

	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	return Money(iv*100 + frac), nil
}

func parseScientific(s string) (Money, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) || f >= float64(math.MaxInt64)/100 {
		return 0, ErrInvalidMoney
	}
	return Money(math.Round(f * 100)), nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Cents returns the raw amount.
func (m Money) Cents() int64 { return int64(m) }

// String formats the amount as units with two decimals, e.g. "1250.50".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", int64(m)/100, int64(m)%100)
}

// MarshalJSON renders the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
// An empty string decodes as zero.
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		unq, err := strconv.Unquote(raw)
		if err != nil {
			return ErrInvalidMoney
		}
		if strings.TrimSpace(unq) == "" {
			*m = 0
			return nil
		}
		raw = unq
	}
	v, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
