package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber parses a numeric cell, tolerating currency symbols, thousands
// separators, a trailing percent sign and accounting-style negatives "(12.50)".
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if percent {
		f /= 100
	}
	if negative {
		f = -f
	}
	return f, nil
}

// ParseInt parses an integer cell; integral floats such as "3.0" are accepted.
func ParseInt(s string) (int, error) {
	if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return i, nil
	}
	f, err := ParseNumber(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), nil
}

// FormatMoney renders an amount as $1,234.56 (-$1,234.56 for losses).
// Rounding is done in decimal so 0.125 rounds half away from zero as a person expects.
func FormatMoney(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]
	return sign + "$" + groupThousands(whole) + "." + frac
}

// FormatNumber renders v with two decimals and thousands separators.
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	money := FormatMoney(v)
	return strings.Replace(money, "$", "", 1)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
