package indicators

import "testing"

func TestCalculateRSIAbsentBeforePeriod(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = float64(100 + i)
	}

	out := CalculateRSI(prices, 14)
	for i := 0; i < 14; i++ {
		if out[i] != nil {
			t.Errorf("index %d: expected nil before period fills, got %v", i, *out[i])
		}
	}
	if out[14] == nil {
		t.Fatal("expected first value at index period")
	}
}

func TestCalculateRSIMonotoneGainPinsAt100(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = float64(100 + i*5)
	}

	out := CalculateRSI(prices, 14)
	for i := 14; i < len(out); i++ {
		if out[i] == nil {
			t.Fatalf("index %d: expected value, got nil", i)
		}
		if *out[i] != 100 {
			t.Errorf("index %d: expected RSI 100 for monotone gains, got %v", i, *out[i])
		}
	}
}

func TestCalculateRSIBounded(t *testing.T) {
	// Alternate big gains and losses so both averages are nonzero.
	prices := make([]float64, 30)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 100
		} else {
			prices[i] = 150
		}
	}

	out := CalculateRSI(prices, 14)
	for i := 14; i < len(out); i++ {
		if out[i] == nil {
			t.Fatalf("index %d: expected value, got nil", i)
		}
		if *out[i] < 0 || *out[i] > 100 {
			t.Errorf("index %d: RSI %v out of [0,100]", i, *out[i])
		}
	}
}

func TestCalculateRSIKnownWindow(t *testing.T) {
	// 7 unit gains then 7 unit losses inside one window: avgGain == avgLoss,
	// so RS is 1 and RSI is exactly 50.
	prices := []float64{10, 11, 12, 13, 14, 15, 16, 17, 16, 15, 14, 13, 12, 11, 10}

	out := CalculateRSI(prices, 14)
	if out[14] == nil {
		t.Fatal("expected value at index 14")
	}
	if *out[14] != 50 {
		t.Errorf("expected RSI 50, got %v", *out[14])
	}
}

func TestCalculateRSITooFewPoints(t *testing.T) {
	out := CalculateRSI([]float64{1, 2, 3}, 14)
	for i, v := range out {
		if v != nil {
			t.Errorf("index %d: expected nil, got %v", i, *v)
		}
	}
}
