package indicators

// LinearForecast projects the series `horizon` steps past its end using an
// ordinary least-squares fit of price against index position 0..n-1.
// The forecast for step k (0-based) is the fitted line evaluated at n+k.
// Fewer than two points give nothing to fit; the result is empty.
func LinearForecast(prices []float64, horizon int) []float64 {
	n := len(prices)
	if n < 2 || horizon <= 0 {
		return nil
	}

	meanX := float64(n-1) / 2
	meanY := 0.0
	for _, p := range prices {
		meanY += p
	}
	meanY /= float64(n)

	num := 0.0
	den := 0.0
	for i, p := range prices {
		dx := float64(i) - meanX
		num += dx * (p - meanY)
		den += dx * dx
	}
	if den == 0 {
		den = 1
	}

	m := num / den
	b := meanY - m*meanX

	out := make([]float64, horizon)
	for k := 0; k < horizon; k++ {
		out[k] = m*float64(n+k) + b
	}
	return out
}
