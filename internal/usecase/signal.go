package usecase

import (
	"fmt"
	"time"

	"github.com/avery69gael/mi-proyecto-trading/internal/domain"
	"github.com/avery69gael/mi-proyecto-trading/internal/infrastructure/indicators"
)

const (
	maShortWindow = 7
	maLongWindow  = 30
	rsiPeriod     = 14

	// signalMinPoints is the series length needed before a signal can be
	// produced (MA30 must be defined on the latest point).
	signalMinPoints = 30

	forecastHorizonDays = 7
)

// BuildEnrichedSeries attaches MA7, MA30 and RSI to a raw price series.
// Indicator values stay nil until their windows fill up.
func BuildEnrichedSeries(points []domain.PricePoint) []domain.EnrichedPoint {
	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}

	ma7 := indicators.CalculateMA(prices, maShortWindow)
	ma30 := indicators.CalculateMA(prices, maLongWindow)
	rsi := indicators.CalculateRSI(prices, rsiPeriod)

	series := make([]domain.EnrichedPoint, len(points))
	for i, p := range points {
		series[i] = domain.EnrichedPoint{
			Timestamp: p.Timestamp,
			Date:      p.Timestamp.Format("2006-01-02"),
			Price:     p.Price,
			MA7:       ma7[i],
			MA30:      ma30[i],
			RSI:       rsi[i],
		}
	}
	return series
}

// GenerateSignal applies the recommendation decision table to the latest
// enriched point. Returns nil unless ma7, ma30 and rsi are all present,
// which needs at least signalMinPoints points.
//
// The table is evaluated in order: golden-cross buy unless overbought,
// death-cross sell unless oversold, hold otherwise. Confidence is refined
// by the RSI sub-range.
func GenerateSignal(latest domain.EnrichedPoint, at time.Time) *domain.Signal {
	if latest.MA7 == nil || latest.MA30 == nil || latest.RSI == nil {
		return nil
	}

	ma7 := *latest.MA7
	ma30 := *latest.MA30
	rsi := *latest.RSI

	rec := domain.RecommendHold
	confidence := 55.0

	switch {
	case ma7 > ma30 && rsi < 70:
		rec = domain.RecommendBuy
		if rsi < 60 {
			confidence = 75
		} else {
			confidence = 65
		}
	case ma7 < ma30 && rsi > 30:
		rec = domain.RecommendSell
		if rsi > 50 {
			confidence = 72
		} else {
			confidence = 65
		}
	}

	return &domain.Signal{
		GeneratedAt:    at,
		Recommendation: rec,
		Confidence:     confidence,
		RSI:            rsi,
		MA7:            ma7,
		MA30:           ma30,
	}
}

// BuildForecast projects the price series forecastHorizonDays into the
// future, one labeled point per day.
func BuildForecast(points []domain.PricePoint) []domain.ForecastPoint {
	prices := make([]float64, len(points))
	for i, p := range points {
		prices[i] = p.Price
	}

	projected := indicators.LinearForecast(prices, forecastHorizonDays)
	out := make([]domain.ForecastPoint, len(projected))
	for i, v := range projected {
		out[i] = domain.ForecastPoint{
			HorizonLabel:  fmt.Sprintf("Day +%d", i+1),
			ForecastPrice: v,
		}
	}
	return out
}
