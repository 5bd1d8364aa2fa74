// Package yahoo provides a client for the Yahoo Finance chart API
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/finquery/internal/common"
	"github.com/bobmcallan/finquery/internal/interfaces"
	"github.com/bobmcallan/finquery/internal/models"
)

const (
	DefaultBaseURL     = "https://query1.finance.yahoo.com"
	DefaultTimeout     = 10 * time.Second
	DefaultMinInterval = time.Second
)

// Client implements the ChartClient interface against the Yahoo Finance
// v8 chart endpoint. Outbound requests are spaced by the rate limiter,
// which is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithMinInterval sets the minimum spacing between outbound requests
func WithMinInterval(interval time.Duration) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultMinInterval), 1),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an upstream API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// IsRateLimited reports whether the error is an upstream throttle response
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsRateLimitError reports whether err is an upstream rate-limit response.
// Rate-limit errors are retryable with backoff; other errors are not.
func IsRateLimitError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsRateLimited()
}

// chartResponse mirrors the v8 chart payload
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetChart retrieves a quote snapshot with daily history for a symbol.
// The default range is one year ending now at a daily interval.
func (c *Client) GetChart(ctx context.Context, symbol string, opts ...interfaces.ChartOption) (*models.Snapshot, error) {
	params := &interfaces.ChartParams{
		From:     time.Now().AddDate(-1, 0, 0),
		To:       time.Now(),
		Interval: "1d",
	}
	for _, opt := range opts {
		opt(params)
	}

	urlParams := url.Values{}
	urlParams.Set("period1", strconv.FormatInt(params.From.Unix(), 10))
	urlParams.Set("period2", strconv.FormatInt(params.To.Unix(), 10))
	urlParams.Set("interval", params.Interval)

	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol))

	var resp chartResponse
	if err := c.get(ctx, path, urlParams, &resp); err != nil {
		return nil, err
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result for %s", symbol)
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no price data for %s", symbol)
	}

	quote := result.Indicators.Quote[0]
	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bar, ok := barAt(quote.Open, quote.High, quote.Low, quote.Close, quote.Volume, i)
		if !ok {
			continue // null row, e.g. a half-day or data gap
		}
		bar.Date = time.Unix(ts, 0).UTC()
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no usable bars for %s", symbol)
	}

	latest := bars[len(bars)-1]
	prevClose := latest.Close
	if len(bars) > 1 {
		prevClose = bars[len(bars)-2].Close
	}
	changePct := 0.0
	if prevClose != 0 {
		changePct = (latest.Close - prevClose) / prevClose * 100
	}

	return &models.Snapshot{
		Symbol:    strings.ToUpper(symbol),
		Price:     latest.Close,
		Open:      latest.Open,
		High:      latest.High,
		Low:       latest.Low,
		Volume:    latest.Volume,
		Date:      latest.Date,
		ChangePct: changePct,
		History:   bars,
	}, nil
}

// barAt assembles one bar from the parallel quote arrays, rejecting rows
// with missing or non-finite prices.
func barAt(open, high, low, closes []*float64, volume []*int64, i int) (models.Bar, bool) {
	var bar models.Bar
	for _, series := range [][]*float64{open, high, low, closes} {
		if i >= len(series) || series[i] == nil {
			return bar, false
		}
		if v := *series[i]; math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return bar, false
		}
	}
	bar.Open = *open[i]
	bar.High = *high[i]
	bar.Low = *low[i]
	bar.Close = *closes[i]
	if i < len(volume) && volume[i] != nil {
		bar.Volume = *volume[i]
	}
	return bar, true
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Yahoo chart API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Ensure Client implements ChartClient
var _ interfaces.ChartClient = (*Client)(nil)
