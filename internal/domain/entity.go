package domain

import "time"

// PricePoint is a single raw sample from the market-chart endpoint.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// EnrichedPoint is a price point with its trailing indicators attached.
// Indicator fields are nil until enough preceding points exist
// (7 for MA7, 30 for MA30, 15 for RSI).
type EnrichedPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"`
	Price     float64   `json:"price"`
	MA7       *float64  `json:"ma7,omitempty"`
	MA30      *float64  `json:"ma30,omitempty"`
	RSI       *float64  `json:"rsi,omitempty"`
}

// MarketStats holds per-coin market figures from the markets endpoint.
// Fields are nil when the provider omits them.
type MarketStats struct {
	MarketCap    *float64 `json:"marketCap,omitempty"`
	Volume24h    *float64 `json:"volume24h,omitempty"`
	BTCDominance *float64 `json:"btcDominance,omitempty"`
}

// Recommendation is the trading action derived from the indicator state.
type Recommendation string

const (
	RecommendBuy  Recommendation = "BUY"
	RecommendSell Recommendation = "SELL"
	RecommendHold Recommendation = "HOLD"
)

// Signal is one recommendation produced by a successful refresh cycle.
type Signal struct {
	GeneratedAt    time.Time      `json:"generatedAt"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"`
	RSI            float64        `json:"rsi"`
	MA7            float64        `json:"ma7"`
	MA30           float64        `json:"ma30"`
}

// ForecastPoint is one projected future price from the linear forecast.
type ForecastPoint struct {
	HorizonLabel  string  `json:"horizonLabel"`
	ForecastPrice float64 `json:"forecastPrice"`
}

// AlertKind identifies which value an alert threshold compares against.
type AlertKind string

const (
	AlertPriceAbove AlertKind = "priceAbove"
	AlertPriceBelow AlertKind = "priceBelow"
	AlertRsiAbove   AlertKind = "rsiAbove"
	AlertRsiBelow   AlertKind = "rsiBelow"
)

// ValidKind reports whether k is one of the four supported alert kinds.
func ValidKind(k AlertKind) bool {
	switch k {
	case AlertPriceAbove, AlertPriceBelow, AlertRsiAbove, AlertRsiBelow:
		return true
	}
	return false
}

// Alert is a user-defined threshold watch. Email is optional; when set,
// trigger notifications are also delivered by mail. Only LastTriggeredAt
// mutates after creation.
type Alert struct {
	ID              string     `json:"id"`
	CoinID          string     `json:"coinId"`
	Kind            AlertKind  `json:"kind"`
	Threshold       float64    `json:"threshold"`
	Email           string     `json:"email,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastTriggeredAt *time.Time `json:"lastTriggeredAt,omitempty"`
}

// Snapshot is the last successfully fetched and computed bundle for a coin.
// It is the unit stored in the cache and restored on fetch failure.
type Snapshot struct {
	CoinID       string          `json:"coinId"`
	Series       []EnrichedPoint `json:"series"`
	CurrentPrice *float64        `json:"currentPrice,omitempty"`
	Stats        MarketStats     `json:"stats"`
	Signal       *Signal         `json:"signal,omitempty"`
	Forecast     []ForecastPoint `json:"forecast"`
	FetchedAt    time.Time       `json:"fetchedAt"`
}

// RefreshPhase is the orchestrator state for the selected coin.
type RefreshPhase string

const (
	PhaseIdle     RefreshPhase = "idle"
	PhaseFetching RefreshPhase = "fetching"
	PhaseSuccess  RefreshPhase = "success"
	PhaseFailed   RefreshPhase = "failed"
)

// DashboardState is what delivery layers see: the current snapshot plus
// refresh bookkeeping. Stale is true when the snapshot was restored from
// cache after a failed fetch.
type DashboardState struct {
	CoinID              string       `json:"coinId"`
	Phase               RefreshPhase `json:"phase"`
	Snapshot            *Snapshot    `json:"snapshot,omitempty"`
	Stale               bool         `json:"stale"`
	Error               string       `json:"error,omitempty"`
	ConsecutiveFailures int          `json:"consecutiveFailures"`
	LastUpdate          *time.Time   `json:"lastUpdate,omitempty"`
}
