package domain

import (
	"context"
	"time"
)

// SnapshotCache stores the last good snapshot per coin. Written only on
// fetch success, read only on fetch failure.
type SnapshotCache interface {
	Put(ctx context.Context, snap *Snapshot) error
	Get(ctx context.Context, coinID string) (*Snapshot, error)
}

// AlertRepository is the CRUD contract for user alerts.
type AlertRepository interface {
	Create(ctx context.Context, alert *Alert) error
	ListByCoin(ctx context.Context, coinID string) ([]Alert, error)
	Delete(ctx context.Context, id string) error
	MarkTriggered(ctx context.Context, id string, at time.Time) error
}

// SignalHistoryRepository keeps the bounded most-recent-first signal list.
type SignalHistoryRepository interface {
	Append(sig Signal)
	List() []Signal
}

// MarketDataSource provides the three per-cycle resources for a coin.
// Implementations must honor ctx cancellation on every call.
type MarketDataSource interface {
	FetchHistoricalSeries(ctx context.Context, coinID string) ([]PricePoint, error)
	FetchCurrentPrice(ctx context.Context, coinID string) (*float64, error)
	FetchMarketStats(ctx context.Context, coinID string) (MarketStats, error)
}
