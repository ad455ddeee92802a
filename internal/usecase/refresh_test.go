package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/avery69gael/mi-proyecto-trading/internal/domain"
	"github.com/avery69gael/mi-proyecto-trading/internal/metrics"
	"github.com/avery69gael/mi-proyecto-trading/internal/repository"
)

// fakeSource serves canned data per coin. Coins listed in blocked hang
// until the fetch context is cancelled, simulating a slow provider.
type fakeSource struct {
	series  map[string][]domain.PricePoint
	err     error
	blocked map[string]bool
}

func (s *fakeSource) FetchHistoricalSeries(ctx context.Context, coinID string) ([]domain.PricePoint, error) {
	if s.blocked[coinID] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.series[coinID], nil
}

func (s *fakeSource) FetchCurrentPrice(ctx context.Context, coinID string) (*float64, error) {
	if s.blocked[coinID] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	if pts := s.series[coinID]; len(pts) > 0 {
		p := pts[len(pts)-1].Price
		return &p, nil
	}
	return nil, nil
}

func (s *fakeSource) FetchMarketStats(ctx context.Context, coinID string) (domain.MarketStats, error) {
	if s.blocked[coinID] {
		<-ctx.Done()
		return domain.MarketStats{}, ctx.Err()
	}
	if s.err != nil {
		return domain.MarketStats{}, s.err
	}
	return domain.MarketStats{}, nil
}

func newTestRefresh(t *testing.T, source *fakeSource, cache domain.SnapshotCache, coinID string) *RefreshUsecase {
	t.Helper()
	if cache == nil {
		cache = repository.NewInMemorySnapshotCache()
	}
	return NewRefreshUsecase(
		source,
		cache,
		repository.NewInMemorySignalHistory(),
		nil,
		metrics.NewMetrics(),
		coinID,
	)
}

func waitForPhase(t *testing.T, updates <-chan domain.DashboardState, phase domain.RefreshPhase) domain.DashboardState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case state, ok := <-updates:
			if !ok {
				t.Fatal("updates channel closed")
			}
			if state.Phase == phase {
				return state
			}
		case <-deadline:
			t.Fatalf("timed out waiting for phase %q", phase)
		}
	}
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, 2 * time.Second},
		{1, 4 * time.Second},
		{2, 8 * time.Second},
		{3, 16 * time.Second},
		{4, 30 * time.Second},
		{10, 30 * time.Second},
		{100, 30 * time.Second},
		{-1, 2 * time.Second},
	}
	for _, tt := range tests {
		if got := backoffDelay(tt.failures); got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, expected %v", tt.failures, got, tt.want)
		}
	}
}

func TestRefreshSuccess(t *testing.T) {
	source := &fakeSource{series: map[string][]domain.PricePoint{
		"bitcoin": dailySeries(35, func(i int) float64 { return 40000 + 100*float64(i) }),
	}}
	u := newTestRefresh(t, source, nil, "bitcoin")

	updates, release := u.Subscribe()
	defer release()

	u.Refresh()
	state := waitForPhase(t, updates, domain.PhaseSuccess)

	if state.Stale {
		t.Error("fresh fetch must not be stale")
	}
	if state.ConsecutiveFailures != 0 {
		t.Errorf("expected zero failures, got %d", state.ConsecutiveFailures)
	}
	if state.Snapshot == nil {
		t.Fatal("expected a snapshot")
	}
	if state.Snapshot.CoinID != "bitcoin" {
		t.Errorf("expected bitcoin snapshot, got %q", state.Snapshot.CoinID)
	}
	if len(state.Snapshot.Series) != 35 {
		t.Errorf("expected 35 points, got %d", len(state.Snapshot.Series))
	}
	if state.Snapshot.Signal == nil {
		t.Error("expected a signal for a 35-point series")
	}
	if len(state.Snapshot.Forecast) != forecastHorizonDays {
		t.Errorf("expected %d forecast points, got %d", forecastHorizonDays, len(state.Snapshot.Forecast))
	}

	if history := u.SignalHistory(); len(history) != 1 {
		t.Errorf("expected 1 signal in history, got %d", len(history))
	}
}

func TestRefreshShortSeriesYieldsNoSignal(t *testing.T) {
	source := &fakeSource{series: map[string][]domain.PricePoint{
		"bitcoin": dailySeries(10, func(i int) float64 { return 40000 }),
	}}
	u := newTestRefresh(t, source, nil, "bitcoin")

	updates, release := u.Subscribe()
	defer release()

	u.Refresh()
	state := waitForPhase(t, updates, domain.PhaseSuccess)

	if state.Snapshot.Signal != nil {
		t.Error("expected no signal for a 10-point series")
	}
	if len(u.SignalHistory()) != 0 {
		t.Error("expected empty signal history")
	}
}

func TestRefreshFailureFallsBackToCache(t *testing.T) {
	cache := repository.NewInMemorySnapshotCache()
	cached := &domain.Snapshot{
		CoinID:    "bitcoin",
		FetchedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := cache.Put(context.Background(), cached); err != nil {
		t.Fatalf("seeding cache: %v", err)
	}

	source := &fakeSource{err: errors.New("rate limited")}
	u := newTestRefresh(t, source, cache, "bitcoin")

	updates, release := u.Subscribe()
	defer release()

	u.Refresh()
	state := waitForPhase(t, updates, domain.PhaseFailed)

	if !state.Stale {
		t.Error("cached fallback must be marked stale")
	}
	if state.Snapshot == nil || !state.Snapshot.FetchedAt.Equal(cached.FetchedAt) {
		t.Error("expected the cached snapshot to be restored")
	}
	if !strings.Contains(state.Error, "rate limited") {
		t.Errorf("expected underlying error in state, got %q", state.Error)
	}
	if !strings.HasPrefix(state.Error, "showing cached data") {
		t.Errorf("expected cache-fallback message, got %q", state.Error)
	}
	if state.ConsecutiveFailures != 1 {
		t.Errorf("expected 1 failure, got %d", state.ConsecutiveFailures)
	}
}

func TestRefreshFailureWithoutCache(t *testing.T) {
	source := &fakeSource{err: errors.New("boom")}
	u := newTestRefresh(t, source, nil, "bitcoin")

	updates, release := u.Subscribe()
	defer release()

	u.Refresh()
	state := waitForPhase(t, updates, domain.PhaseFailed)

	if state.Stale {
		t.Error("no cached snapshot, nothing to be stale")
	}
	if state.Snapshot != nil {
		t.Error("expected no snapshot")
	}
	if state.Error != "boom" {
		t.Errorf("expected raw error, got %q", state.Error)
	}
}

func TestSelectCoinSupersedesInFlightFetch(t *testing.T) {
	source := &fakeSource{
		series: map[string][]domain.PricePoint{
			"ethereum": dailySeries(35, func(i int) float64 { return 2000 + float64(i) }),
		},
		blocked: map[string]bool{"bitcoin": true},
	}
	u := newTestRefresh(t, source, nil, "bitcoin")

	updates, release := u.Subscribe()
	defer release()

	// Start a fetch that hangs on bitcoin, then switch away mid-flight.
	u.Refresh()
	waitForPhase(t, updates, domain.PhaseFetching)
	u.SelectCoin("ethereum")

	state := waitForPhase(t, updates, domain.PhaseSuccess)
	if state.CoinID != "ethereum" {
		t.Fatalf("expected ethereum state, got %q", state.CoinID)
	}
	if state.Snapshot == nil || state.Snapshot.CoinID != "ethereum" {
		t.Fatal("expected ethereum snapshot")
	}

	// The cancelled bitcoin fetch must never overwrite the new coin.
	time.Sleep(50 * time.Millisecond)
	final := u.State()
	if final.CoinID != "ethereum" {
		t.Errorf("superseded fetch leaked into state: %q", final.CoinID)
	}
	if final.Phase != domain.PhaseSuccess {
		t.Errorf("expected success phase, got %q", final.Phase)
	}
}

func TestSelectCoinSameCoinIsNoop(t *testing.T) {
	source := &fakeSource{series: map[string][]domain.PricePoint{}}
	u := newTestRefresh(t, source, nil, "bitcoin")

	before := u.State()
	u.SelectCoin("bitcoin")
	after := u.State()

	if before.Phase != after.Phase || before.CoinID != after.CoinID {
		t.Error("selecting the current coin must not reset state")
	}
}

func TestRunCancellationStopsCycle(t *testing.T) {
	source := &fakeSource{blocked: map[string]bool{"bitcoin": true}}
	u := newTestRefresh(t, source, nil, "bitcoin")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		u.Run(ctx)
	}()

	// Let the initial fetch start, then shut down.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	// The cancelled fetch settles without flipping the state to failed.
	time.Sleep(50 * time.Millisecond)
	if state := u.State(); state.Phase == domain.PhaseFailed {
		t.Errorf("cancellation must not be reported as failure, got %q with error %q", state.Phase, state.Error)
	}
}
