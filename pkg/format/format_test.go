package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 43210.456, want: "$43,210.46"},
		{in: 1234567.891, want: "$1,234,567.89"},
		{in: 2, want: "$2.00"},
		{in: 1, want: "$1.00"},
		{in: 0.5, want: "$0.50"},
		{in: 0.00012345678, want: "$0.000123"},
		{in: 0, want: "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(tt.in))
		})
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "+1.23%", Percent(1.234))
	assert.Equal(t, "+0.00%", Percent(0))
	assert.Equal(t, "-4.50%", Percent(-4.5))
	assert.Equal(t, "-0.00%", Percent(-0.001))
}

func TestTrendScore(t *testing.T) {
	assert.Equal(t, "+7.0%", TrendScore(7))
	assert.Equal(t, "+3.3%", TrendScore(3.26))
}

func TestLargeNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 2.5e12, want: "2.50T"},
		{in: 1e12, want: "1.00T"},
		{in: 987654321012, want: "987.65B"},
		{in: 1234567, want: "1.23M"},
		{in: 999999, want: "999,999"},
		{in: 1234.5678, want: "1,234.568"},
		{in: 12, want: "12"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, LargeNumber(tt.in))
		})
	}
}
