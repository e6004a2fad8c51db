// Package format renders market values for display.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	trillion = decimal.New(1, 12)
	billion  = decimal.New(1, 9)
	million  = decimal.New(1, 6)
)

// Currency formats a USD amount: 2 fraction digits above 1, up to 6 otherwise (at least 2).
func Currency(v float64) string {
	d := decimal.NewFromFloat(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	var s string
	if v > 1 {
		s = d.StringFixed(2)
	} else {
		s = padFraction(trimFraction(d.Round(6).StringFixed(6)), 2)
	}

	return sign + "$" + group(s)
}

// Percent formats a signed percentage with two decimals: +1.23%, -0.50%.
func Percent(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	switch {
	case v >= 0:
		s = "+" + s
	case !strings.HasPrefix(s, "-"):
		s = "-" + s
	}

	return s + "%"
}

// TrendScore formats a category trend score: +7.0%.
func TrendScore(v float64) string {
	return "+" + decimal.NewFromFloat(v).StringFixed(1) + "%"
}

// LargeNumber abbreviates with T/B/M suffixes and two decimals; smaller values are
// grouped with up to three fraction digits.
func LargeNumber(v float64) string {
	d := decimal.NewFromFloat(v)

	switch {
	case d.GreaterThanOrEqual(trillion):
		return d.Div(trillion).StringFixed(2) + "T"
	case d.GreaterThanOrEqual(billion):
		return d.Div(billion).StringFixed(2) + "B"
	case d.GreaterThanOrEqual(million):
		return d.Div(million).StringFixed(2) + "M"
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	return sign + group(trimFraction(d.Round(3).StringFixed(3)))
}

// group inserts thousands separators into the integer part of a plain decimal string.
func group(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}

	return b.String()
}

func trimFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func padFraction(s string, min int) string {
	intPart, frac, _ := strings.Cut(s, ".")
	for len(frac) < min {
		frac += "0"
	}
	return intPart + "." + frac
}

// Count formats an integer with thousands separators.
func Count(n int) string {
	if n < 0 {
		return "-" + group(decimal.NewFromInt(int64(-n)).String())
	}
	return group(decimal.NewFromInt(int64(n)).String())
}
