package indicators

// CalculateMA computes the simple moving average over a trailing window.
// Output is aligned by index with the input; entries are nil until
// `window` points (inclusive) exist, so the first value sits at window-1.
func CalculateMA(prices []float64, window int) []*float64 {
	out := make([]*float64, len(prices))
	if window <= 0 {
		return out
	}

	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= window {
			sum -= prices[i-window]
		}
		if i >= window-1 {
			v := sum / float64(window)
			out[i] = &v
		}
	}
	return out
}
