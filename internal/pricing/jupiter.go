package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"solana-wallet-pnl/internal/observability"
)

// JupiterBaseURL is the Jupiter price API endpoint.
const JupiterBaseURL = "https://price.jup.ag"

// JupiterSource implements RealtimeSource against the Jupiter price API.
type JupiterSource struct {
	baseURL string
	http    *http.Client
}

// NewJupiterSource creates a Jupiter realtime price source.
func NewJupiterSource(opts ...SourceOption) *JupiterSource {
	s := &JupiterSource{
		baseURL: JupiterBaseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(&s.baseURL, &s.http)
	}
	return s
}

var _ RealtimeSource = (*JupiterSource)(nil)

// jupiterResponse is the relevant shape of /v6/price.
type jupiterResponse struct {
	Data map[string]struct {
		Price float64 `json:"price"`
	} `json:"data"`
}

// Price implements RealtimeSource.
func (s *JupiterSource) Price(ctx context.Context, mint string) (float64, error) {
	endpoint := fmt.Sprintf("%s/v6/price?ids=%s", s.baseURL, url.QueryEscape(mint))

	body, err := getBody(ctx, s.http, endpoint, nil, "jupiter")
	if err != nil {
		return 0, err
	}

	var resp jupiterResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("unmarshal jupiter response: %w", err)
	}

	entry, ok := resp.Data[mint]
	if !ok {
		return 0, nil
	}
	return entry.Price, nil
}

// SourceOption overrides a source's endpoint or HTTP client, for tests.
type SourceOption func(baseURL *string, client **http.Client)

// WithSourceBaseURL overrides the API endpoint.
func WithSourceBaseURL(u string) SourceOption {
	return func(baseURL *string, _ **http.Client) { *baseURL = u }
}

// WithSourceHTTPClient sets a custom http.Client.
func WithSourceHTTPClient(h *http.Client) SourceOption {
	return func(_ *string, client **http.Client) { *client = h }
}

// getBody performs a GET and returns the body of a 200 response,
// recording upstream latency under the given name.
func getBody(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, upstream string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		observability.RecordUpstreamCall(upstream, time.Since(start).Seconds(), err)
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RecordUpstreamCall(upstream, time.Since(start).Seconds(), err)
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		observability.RecordUpstreamCall(upstream, time.Since(start).Seconds(), err)
		return nil, err
	}

	observability.RecordUpstreamCall(upstream, time.Since(start).Seconds(), nil)
	return body, nil
}
