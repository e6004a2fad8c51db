// Package indicators smooths derived market series with the cinar/indicator library.
package indicators

import (
	"fmt"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
)

// DefaultMomentumPeriod EMA period used for trend-score momentum.
const DefaultMomentumPeriod = 5

// CalculateEMA calculates the Exponential Moving Average for the given period.
// The result has len(values)-period+1 points, the first aligned with values[period-1].
func CalculateEMA(values []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("invalid EMA period %d", period)
	}
	if len(values) < period {
		return nil, fmt.Errorf("not enough data points: need %d, got %d", period, len(values))
	}

	ema := trend.NewEmaWithPeriod[float64](period)
	inputChan := helper.SliceToChan(values)
	outputChan := ema.Compute(inputChan)

	return helper.ChanToSlice(outputChan), nil
}

// Momentum returns the latest value minus the EMA of the series.
// ok is false until the series holds at least period samples.
func Momentum(values []float64, period int) (momentum float64, ok bool) {
	ema, err := CalculateEMA(values, period)
	if err != nil || len(ema) == 0 {
		return 0, false
	}

	return values[len(values)-1] - ema[len(ema)-1], true
}
