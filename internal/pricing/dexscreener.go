package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DexScreenerBaseURL is the DexScreener API endpoint.
const DexScreenerBaseURL = "https://api.dexscreener.com"

// DexScreenerSource implements LatestSource against DexScreener's
// token pairs API. The first pair's priceUsd is taken as the token's
// most recent traded price.
type DexScreenerSource struct {
	baseURL string
	http    *http.Client
}

// NewDexScreenerSource creates a DexScreener latest-price source.
func NewDexScreenerSource(opts ...SourceOption) *DexScreenerSource {
	s := &DexScreenerSource{
		baseURL: DexScreenerBaseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(&s.baseURL, &s.http)
	}
	return s
}

var _ LatestSource = (*DexScreenerSource)(nil)

// dexScreenerResponse is the relevant shape of /latest/dex/tokens.
type dexScreenerResponse struct {
	Pairs []struct {
		PriceUSD string `json:"priceUsd"`
	} `json:"pairs"`
}

// LatestPrice implements LatestSource.
func (s *DexScreenerSource) LatestPrice(ctx context.Context, mint string) (float64, error) {
	endpoint := fmt.Sprintf("%s/latest/dex/tokens/%s", s.baseURL, url.PathEscape(mint))

	body, err := getBody(ctx, s.http, endpoint, nil, "dexscreener")
	if err != nil {
		return 0, err
	}

	var resp dexScreenerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("unmarshal dexscreener response: %w", err)
	}

	if len(resp.Pairs) == 0 {
		return 0, nil
	}

	price, err := strconv.ParseFloat(resp.Pairs[0].PriceUSD, 64)
	if err != nil {
		return 0, nil
	}
	return price, nil
}
