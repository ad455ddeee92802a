package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/avery69gael/mi-proyecto-trading/internal/domain"
	"github.com/avery69gael/mi-proyecto-trading/internal/metrics"
)

const (
	defaultRefreshInterval = 60 * time.Second

	// coinDebounce coalesces rapid coin-selection changes into one fetch.
	coinDebounce = 200 * time.Millisecond

	backoffBase = 2 * time.Second
	backoffMax  = 30 * time.Second
)

// RefreshUsecase drives the fetch cycle for the selected coin:
// Idle -> Fetching -> {Success, Failed}. Exactly one fetch per coin is
// current at a time; starting a new cycle cancels the previous one and
// its eventual result is discarded via a generation counter. Failures
// fall back to the snapshot cache and schedule an exponential-backoff
// retry.
type RefreshUsecase struct {
	source  domain.MarketDataSource
	cache   domain.SnapshotCache
	history domain.SignalHistoryRepository
	alerts  *AlertUsecase
	metrics *metrics.Metrics

	interval time.Duration
	debounce time.Duration

	mu            sync.Mutex
	runCtx        context.Context
	state         domain.DashboardState
	gen           uint64
	cancelFetch   context.CancelFunc
	retryTimer    *time.Timer
	debounceTimer *time.Timer

	subMu   sync.Mutex
	subs    map[int]chan domain.DashboardState
	nextSub int
}

func NewRefreshUsecase(source domain.MarketDataSource, cache domain.SnapshotCache, history domain.SignalHistoryRepository, alerts *AlertUsecase, m *metrics.Metrics, coinID string) *RefreshUsecase {
	if coinID == "" {
		coinID = "bitcoin"
	}
	return &RefreshUsecase{
		source:   source,
		cache:    cache,
		history:  history,
		alerts:   alerts,
		metrics:  m,
		interval: defaultRefreshInterval,
		debounce: coinDebounce,
		runCtx:   context.Background(),
		state: domain.DashboardState{
			CoinID: coinID,
			Phase:  domain.PhaseIdle,
		},
		subs: make(map[int]chan domain.DashboardState),
	}
}

// Run refreshes immediately, then on every interval tick, until ctx is
// cancelled. On teardown all pending timers and in-flight fetches are
// cancelled so nothing updates state afterwards.
func (u *RefreshUsecase) Run(ctx context.Context) {
	u.mu.Lock()
	u.runCtx = ctx
	u.mu.Unlock()

	u.refreshNow()

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			u.teardown()
			return
		case <-ticker.C:
			u.refreshNow()
		}
	}
}

func (u *RefreshUsecase) teardown() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.gen++ // orphan any in-flight result
	if u.cancelFetch != nil {
		u.cancelFetch()
		u.cancelFetch = nil
	}
	if u.retryTimer != nil {
		u.retryTimer.Stop()
		u.retryTimer = nil
	}
	if u.debounceTimer != nil {
		u.debounceTimer.Stop()
		u.debounceTimer = nil
	}
}

// SelectCoin switches the dashboard to another coin. The fetch is
// debounced; the previous coin's in-flight fetch and pending retry are
// cancelled immediately so their results can never land on the new coin.
func (u *RefreshUsecase) SelectCoin(coinID string) {
	u.mu.Lock()
	if coinID == "" || coinID == u.state.CoinID {
		u.mu.Unlock()
		return
	}

	u.gen++
	if u.cancelFetch != nil {
		u.cancelFetch()
		u.cancelFetch = nil
	}
	if u.retryTimer != nil {
		u.retryTimer.Stop()
		u.retryTimer = nil
	}
	if u.debounceTimer != nil {
		u.debounceTimer.Stop()
	}

	u.state = domain.DashboardState{
		CoinID: coinID,
		Phase:  domain.PhaseIdle,
	}
	state := u.state
	u.debounceTimer = time.AfterFunc(u.debounce, u.refreshNow)
	u.mu.Unlock()

	u.metrics.ConsecutiveFailures.Set(0)
	u.publishState(state)
}

// Refresh triggers a manual refresh of the current coin, dropping any
// scheduled retry.
func (u *RefreshUsecase) Refresh() {
	u.refreshNow()
}

// State returns the current dashboard state.
func (u *RefreshUsecase) State() domain.DashboardState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// SignalHistory returns the bounded most-recent-first signal list.
func (u *RefreshUsecase) SignalHistory() []domain.Signal {
	return u.history.List()
}

// Subscribe registers for state updates. The returned release func must be
// called on teardown; slow consumers drop updates rather than block the
// refresh cycle.
func (u *RefreshUsecase) Subscribe() (<-chan domain.DashboardState, func()) {
	u.subMu.Lock()
	defer u.subMu.Unlock()

	id := u.nextSub
	u.nextSub++
	ch := make(chan domain.DashboardState, 8)
	u.subs[id] = ch

	release := func() {
		u.subMu.Lock()
		defer u.subMu.Unlock()
		if c, ok := u.subs[id]; ok {
			delete(u.subs, id)
			close(c)
		}
	}
	return ch, release
}

func (u *RefreshUsecase) publishState(state domain.DashboardState) {
	u.subMu.Lock()
	defer u.subMu.Unlock()
	for _, ch := range u.subs {
		select {
		case ch <- state:
		default:
		}
	}
}

// refreshNow starts a new fetch cycle for the current coin, superseding
// whatever was running before.
func (u *RefreshUsecase) refreshNow() {
	u.mu.Lock()
	if u.retryTimer != nil {
		u.retryTimer.Stop()
		u.retryTimer = nil
	}
	if u.cancelFetch != nil {
		u.cancelFetch()
	}
	u.gen++
	gen := u.gen

	ctx, cancel := context.WithCancel(u.runCtx)
	u.cancelFetch = cancel

	coinID := u.state.CoinID
	u.state.Phase = domain.PhaseFetching
	u.state.Error = ""
	state := u.state
	u.mu.Unlock()

	u.publishState(state)
	go u.doFetch(ctx, coinID, gen)
}

// doFetch retrieves the three resources concurrently and waits for all of
// them to settle; a failure in one never corrupts the others, but any
// failure fails the cycle.
func (u *RefreshUsecase) doFetch(ctx context.Context, coinID string, gen uint64) {
	start := time.Now()
	u.metrics.FetchesTotal.Inc()

	var (
		series []domain.PricePoint
		price  *float64
		stats  domain.MarketStats

		seriesErr, priceErr, statsErr error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		series, seriesErr = u.source.FetchHistoricalSeries(ctx, coinID)
	}()
	go func() {
		defer wg.Done()
		price, priceErr = u.source.FetchCurrentPrice(ctx, coinID)
	}()
	go func() {
		defer wg.Done()
		stats, statsErr = u.source.FetchMarketStats(ctx, coinID)
	}()
	wg.Wait()

	u.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err := firstError(seriesErr, priceErr, statsErr); err != nil {
		u.completeFailure(ctx, coinID, gen, err)
		return
	}
	u.completeSuccess(coinID, gen, series, price, stats)
}

func (u *RefreshUsecase) completeSuccess(coinID string, gen uint64, series []domain.PricePoint, price *float64, stats domain.MarketStats) {
	now := time.Now()
	enriched := BuildEnrichedSeries(series)
	forecast := BuildForecast(series)

	var sig *domain.Signal
	if len(enriched) >= signalMinPoints {
		sig = GenerateSignal(enriched[len(enriched)-1], now)
	}

	// No spot quote: show the latest close instead.
	if price == nil && len(series) > 0 {
		last := series[len(series)-1].Price
		price = &last
	}

	snap := &domain.Snapshot{
		CoinID:       coinID,
		Series:       enriched,
		CurrentPrice: price,
		Stats:        stats,
		Signal:       sig,
		Forecast:     forecast,
		FetchedAt:    now,
	}

	u.mu.Lock()
	if gen != u.gen {
		u.mu.Unlock()
		return // superseded, result discarded
	}
	runCtx := u.runCtx
	u.state.Phase = domain.PhaseSuccess
	u.state.Snapshot = snap
	u.state.Stale = false
	u.state.Error = ""
	u.state.ConsecutiveFailures = 0
	u.state.LastUpdate = &now
	state := u.state
	u.mu.Unlock()

	u.metrics.ConsecutiveFailures.Set(0)

	if sig != nil {
		u.history.Append(*sig)
		u.metrics.SignalsGenerated.Inc()
	}

	if err := u.cache.Put(runCtx, snap); err != nil {
		log.Printf("[refresh] caching snapshot for %s: %v", coinID, err)
	}

	if u.alerts != nil {
		u.alerts.Evaluate(runCtx, coinID, price, sig)
	}

	log.Printf("[refresh] %s refreshed: %d points, signal=%v", coinID, len(enriched), sig != nil)
	u.publishState(state)
}

func (u *RefreshUsecase) completeFailure(ctx context.Context, coinID string, gen uint64, err error) {
	if ctx.Err() != nil {
		return // cancelled: superseded or shutting down, not an error
	}

	u.metrics.FetchFailures.Inc()

	u.mu.Lock()
	if gen != u.gen {
		u.mu.Unlock()
		return
	}
	runCtx := u.runCtx
	u.mu.Unlock()

	cached, cerr := u.cache.Get(runCtx, coinID)
	if cerr != nil {
		log.Printf("[refresh] reading cache for %s: %v", coinID, cerr)
		cached = nil
	}

	u.mu.Lock()
	if gen != u.gen {
		u.mu.Unlock()
		return
	}

	u.state.Phase = domain.PhaseFailed
	if cached != nil {
		u.state.Snapshot = cached
		u.state.Stale = true
		u.state.Error = "showing cached data: " + err.Error()
	} else {
		u.state.Error = err.Error()
	}

	delay := backoffDelay(u.state.ConsecutiveFailures)
	u.state.ConsecutiveFailures++
	failures := u.state.ConsecutiveFailures
	u.retryTimer = time.AfterFunc(delay, func() { u.retryIfCurrent(gen) })
	state := u.state
	u.mu.Unlock()

	if cached != nil {
		u.metrics.CacheFallbacks.Inc()
	}
	u.metrics.RetriesScheduled.Inc()
	u.metrics.ConsecutiveFailures.Set(float64(failures))

	log.Printf("[refresh] %s fetch failed (attempt %d, retry in %v): %v", coinID, failures, delay, err)
	u.publishState(state)
}

// retryIfCurrent re-runs the cycle unless a newer cycle or coin switch
// already superseded the failed one.
func (u *RefreshUsecase) retryIfCurrent(gen uint64) {
	u.mu.Lock()
	current := gen == u.gen
	u.mu.Unlock()
	if current {
		u.refreshNow()
	}
}

// backoffDelay returns min(backoffMax, backoffBase * 2^failures).
func backoffDelay(failures int) time.Duration {
	if failures < 0 {
		failures = 0
	}
	if failures > 30 {
		return backoffMax
	}
	d := backoffBase * time.Duration(1<<uint(failures))
	if d > backoffMax {
		return backoffMax
	}
	return d
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
