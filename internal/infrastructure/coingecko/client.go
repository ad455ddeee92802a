package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/avery69gael/mi-proyecto-trading/internal/domain"
)

const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// historyDays is the fixed lookback window for the market chart.
const historyDays = 30

// ErrCoinNotFound is returned when the provider response does not contain
// the requested coin id.
var ErrCoinNotFound = errors.New("coingecko: coin not found")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a CoinGecko API client. baseURL is overridable for
// tests; empty means the public API. The client carries its own request
// timeout on top of caller cancellation, since the provider rate-limits
// and can hang under load.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type marketChartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

type marketInfo struct {
	MarketCap   *float64 `json:"market_cap"`
	TotalVolume *float64 `json:"total_volume"`
}

type globalResponse struct {
	Data struct {
		MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
	} `json:"data"`
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coingecko API error: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// FetchHistoricalSeries returns the daily closing prices for the fixed
// 30-day lookback window, sorted ascending with duplicate timestamps
// collapsed to the latest sample.
func (c *Client) FetchHistoricalSeries(ctx context.Context, coinID string) ([]domain.PricePoint, error) {
	path := fmt.Sprintf("/coins/%s/market_chart?vs_currency=usd&days=%d&interval=daily",
		url.PathEscape(coinID), historyDays)

	var chart marketChartResponse
	if err := c.getJSON(ctx, path, &chart); err != nil {
		return nil, fmt.Errorf("historical series: %w", err)
	}

	points := make([]domain.PricePoint, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		points = append(points, domain.PricePoint{
			Timestamp: time.UnixMilli(int64(p[0])).UTC(),
			Price:     p[1],
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	deduped := points[:0]
	for _, p := range points {
		if n := len(deduped); n > 0 && deduped[n-1].Timestamp.Equal(p.Timestamp) {
			deduped[n-1] = p
			continue
		}
		deduped = append(deduped, p)
	}
	return deduped, nil
}

// FetchCurrentPrice returns the spot price in USD. A missing coin id in the
// response map is a failure; a present coin with no usd quote is absent.
func (c *Client) FetchCurrentPrice(ctx context.Context, coinID string) (*float64, error) {
	path := fmt.Sprintf("/simple/price?ids=%s&vs_currencies=usd", url.QueryEscape(coinID))

	var quotes map[string]map[string]float64
	if err := c.getJSON(ctx, path, &quotes); err != nil {
		return nil, fmt.Errorf("current price: %w", err)
	}

	quote, ok := quotes[coinID]
	if !ok {
		return nil, fmt.Errorf("current price for %q: %w", coinID, ErrCoinNotFound)
	}

	usd, ok := quote["usd"]
	if !ok {
		return nil, nil
	}
	return &usd, nil
}

// FetchMarketStats returns market cap and 24h volume for the coin.
// BTC dominance is 100 for bitcoin itself; for other coins it comes from
// the global-stats endpoint and is left absent if that call fails.
func (c *Client) FetchMarketStats(ctx context.Context, coinID string) (domain.MarketStats, error) {
	path := fmt.Sprintf("/coins/markets?vs_currency=usd&ids=%s&order=market_cap_desc&per_page=1&page=1",
		url.QueryEscape(coinID))

	var infos []marketInfo
	if err := c.getJSON(ctx, path, &infos); err != nil {
		return domain.MarketStats{}, fmt.Errorf("market stats: %w", err)
	}
	if len(infos) == 0 {
		return domain.MarketStats{}, fmt.Errorf("market stats for %q: %w", coinID, ErrCoinNotFound)
	}

	stats := domain.MarketStats{
		MarketCap: infos[0].MarketCap,
		Volume24h: infos[0].TotalVolume,
	}

	if coinID == "bitcoin" {
		dom := 100.0
		stats.BTCDominance = &dom
	} else if dom, err := c.fetchBTCDominance(ctx); err == nil {
		stats.BTCDominance = dom
	}

	return stats, nil
}

func (c *Client) fetchBTCDominance(ctx context.Context) (*float64, error) {
	var global globalResponse
	if err := c.getJSON(ctx, "/global", &global); err != nil {
		return nil, err
	}
	dom, ok := global.Data.MarketCapPercentage["btc"]
	if !ok {
		return nil, nil
	}
	return &dom, nil
}
