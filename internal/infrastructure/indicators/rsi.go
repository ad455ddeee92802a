package indicators

import "math"

// CalculateRSI computes the Relative Strength Index over a trailing window
// of `period` deltas ending at (and including) the current point.
// Output is aligned by index with the input; entries before index `period`
// are nil since period+1 points are needed for the first value.
//
// When the average loss over the window is zero the RSI is pinned at 100
// (maximal strength) instead of dividing by zero.
func CalculateRSI(prices []float64, period int) []*float64 {
	out := make([]*float64, len(prices))
	if period <= 0 || len(prices) < period+1 {
		return out
	}

	for i := period; i < len(prices); i++ {
		gains := 0.0
		losses := 0.0
		for j := i - period + 1; j <= i; j++ {
			change := prices[j] - prices[j-1]
			if change > 0 {
				gains += change
			} else {
				losses -= change
			}
		}

		avgGain := gains / float64(period)
		avgLoss := losses / float64(period)

		var rsi float64
		if avgLoss == 0 {
			rsi = 100
		} else {
			rs := avgGain / avgLoss
			rsi = 100 - 100/(1+rs)
		}

		v := math.Round(rsi*100) / 100
		out[i] = &v
	}
	return out
}
