package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/avery69gael/mi-proyecto-trading/internal/domain"
)

// signalHistoryCap bounds the signal history; oldest entries fall off.
const signalHistoryCap = 50

// InMemorySnapshotCache is the default snapshot store when Redis is not
// configured. Safe under the single-active-fetch invariant: one writer,
// readers only on the failure path.
type InMemorySnapshotCache struct {
	snapshots map[string]*domain.Snapshot
	mu        sync.RWMutex
}

func NewInMemorySnapshotCache() *InMemorySnapshotCache {
	return &InMemorySnapshotCache{
		snapshots: make(map[string]*domain.Snapshot),
	}
}

func (c *InMemorySnapshotCache) Put(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[snap.CoinID] = snap
	return nil
}

// Get returns the cached snapshot for a coin, or nil when none exists.
func (c *InMemorySnapshotCache) Get(ctx context.Context, coinID string) (*domain.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshots[coinID], nil
}

// InMemorySignalHistory keeps the most-recent-first signal list, capped.
type InMemorySignalHistory struct {
	signals []domain.Signal
	cap     int
	mu      sync.RWMutex
}

func NewInMemorySignalHistory() *InMemorySignalHistory {
	return &InMemorySignalHistory{cap: signalHistoryCap}
}

// Append prepends a signal and truncates to the cap.
func (h *InMemorySignalHistory) Append(sig domain.Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.signals = append([]domain.Signal{sig}, h.signals...)
	if len(h.signals) > h.cap {
		h.signals = h.signals[:h.cap]
	}
}

func (h *InMemorySignalHistory) List() []domain.Signal {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.Signal, len(h.signals))
	copy(out, h.signals)
	return out
}

// InMemoryAlertRepository backs alerts when no database is configured,
// mirroring the localStorage mode of the original dashboard. Alerts do
// not survive a restart.
type InMemoryAlertRepository struct {
	alerts map[string]domain.Alert
	mu     sync.RWMutex
}

func NewInMemoryAlertRepository() *InMemoryAlertRepository {
	return &InMemoryAlertRepository{
		alerts: make(map[string]domain.Alert),
	}
}

func (r *InMemoryAlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	if alert == nil {
		return fmt.Errorf("nil alert")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[alert.ID] = *alert
	return nil
}

func (r *InMemoryAlertRepository) ListByCoin(ctx context.Context, coinID string) ([]domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Alert
	for _, a := range r.alerts {
		if a.CoinID == coinID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemoryAlertRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alerts[id]; !ok {
		return fmt.Errorf("alert %s not found", id)
	}
	delete(r.alerts, id)
	return nil
}

func (r *InMemoryAlertRepository) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return fmt.Errorf("alert %s not found", id)
	}
	a.LastTriggeredAt = &at
	r.alerts[id] = a
	return nil
}
