package notification

import (
	"testing"

	"github.com/avery69gael/mi-proyecto-trading/internal/domain"
)

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{"price above", Event{CoinID: "bitcoin", Kind: domain.AlertPriceAbove, Threshold: 50000}, "BITCOIN > 50000"},
		{"price below", Event{CoinID: "ethereum", Kind: domain.AlertPriceBelow, Threshold: 1500.5}, "ETHEREUM < 1500.5"},
		{"rsi above", Event{CoinID: "bitcoin", Kind: domain.AlertRsiAbove, Threshold: 70}, "RSI > 70"},
		{"rsi below", Event{CoinID: "bitcoin", Kind: domain.AlertRsiBelow, Threshold: 30}, "RSI < 30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatEvent(tt.ev); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
