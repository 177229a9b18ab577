package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// BirdeyeBaseURL is the Birdeye public API endpoint.
const BirdeyeBaseURL = "https://public-api.birdeye.so"

// BirdeyeSource implements HistoricalSource against Birdeye's OHLCV
// API. Requires an API key; the resolver skips this tier entirely when
// no source is configured.
type BirdeyeSource struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewBirdeyeSource creates a Birdeye historical candle source.
func NewBirdeyeSource(apiKey string, opts ...SourceOption) *BirdeyeSource {
	s := &BirdeyeSource{
		apiKey:  apiKey,
		baseURL: BirdeyeBaseURL,
		http:    &http.Client{Timeout: 8 * time.Second},
	}
	for _, opt := range opts {
		opt(&s.baseURL, &s.http)
	}
	return s
}

var _ HistoricalSource = (*BirdeyeSource)(nil)

// birdeyeResponse is the relevant shape of /defi/ohlcv.
type birdeyeResponse struct {
	Data struct {
		Items []struct {
			Open  float64 `json:"o"`
			Close float64 `json:"c"`
		} `json:"items"`
	} `json:"data"`
}

// CandleClose implements HistoricalSource: close-or-open of the first
// daily candle in [from, to].
func (s *BirdeyeSource) CandleClose(ctx context.Context, mint string, from, to int64) (float64, error) {
	endpoint := fmt.Sprintf("%s/defi/ohlcv?address=%s&type=1D&time_from=%d&time_to=%d",
		s.baseURL, url.QueryEscape(mint), from, to)

	headers := map[string]string{"X-API-KEY": s.apiKey}
	body, err := getBody(ctx, s.http, endpoint, headers, "birdeye")
	if err != nil {
		return 0, err
	}

	var resp birdeyeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("unmarshal birdeye response: %w", err)
	}

	if len(resp.Data.Items) == 0 {
		return 0, nil
	}

	candle := resp.Data.Items[0]
	if candle.Close > 0 {
		return candle.Close, nil
	}
	return candle.Open, nil
}
