package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"solana-wallet-pnl/internal/observability"
	"solana-wallet-pnl/internal/solana"
)

// Fetch limits. Signature listing is capped per request; enrichment is
// capped per analysis because each enhanced transaction fans out into
// price lookups downstream.
const (
	MaxSignatures = 1000
	MaxEnriched   = 100
	enrichBatch   = 100
)

// DefaultBaseURL is the indexer's enhanced-transactions REST endpoint.
const DefaultBaseURL = "https://api.helius.xyz"

// ErrNoAPIKey is returned when the indexer credential is missing. This
// is the one ledger failure that is configuration, not availability.
var ErrNoAPIKey = errors.New("ledger indexer API key not configured")

// Client implements Source against Solana RPC plus the indexer REST API.
type Client struct {
	rpc     solana.RPCClient
	apiKey  string
	baseURL string
	http    *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the indexer REST endpoint, for tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// NewClient creates a ledger client. The API key may be empty; Fetch
// reports ErrNoAPIKey in that case.
func NewClient(rpc solana.RPCClient, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		rpc:     rpc,
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 8 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Source = (*Client)(nil)

// Fetch lists signatures for the wallet and enriches the newest ones
// that fall inside [from, to].
func (c *Client) Fetch(ctx context.Context, wallet string, from, to int64) ([]*EnhancedTransaction, error) {
	return c.FetchSince(ctx, wallet, from, to, "")
}

// FetchSince implements Source.
func (c *Client) FetchSince(ctx context.Context, wallet string, from, to int64, untilSignature string) ([]*EnhancedTransaction, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	opts := &solana.SignaturesOpts{Limit: MaxSignatures, Until: untilSignature}

	start := time.Now()
	sigs, err := c.rpc.GetSignaturesForAddress(ctx, wallet, opts)
	observability.RecordUpstreamCall("rpc_signatures", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}

	// Filter to the requested window; the RPC returns newest first.
	selected := make([]string, 0, len(sigs))
	for _, sig := range sigs {
		if sig.BlockTime == nil {
			continue
		}
		bt := *sig.BlockTime
		if bt < from || bt > to {
			continue
		}
		selected = append(selected, sig.Signature)
		if len(selected) >= MaxEnriched {
			break
		}
	}

	if len(selected) == 0 {
		return nil, nil
	}

	var all []*EnhancedTransaction
	for i := 0; i < len(selected); i += enrichBatch {
		end := i + enrichBatch
		if end > len(selected) {
			end = len(selected)
		}
		batch, err := c.enrich(ctx, selected[i:end])
		if err != nil {
			return nil, fmt.Errorf("enrich transactions: %w", err)
		}
		all = append(all, batch...)
	}

	return all, nil
}

// enrichRequest is the indexer's batch request body.
type enrichRequest struct {
	Transactions []string `json:"transactions"`
}

// enrich resolves a signature batch into enhanced transactions.
func (c *Client) enrich(ctx context.Context, signatures []string) ([]*EnhancedTransaction, error) {
	body, err := json.Marshal(enrichRequest{Transactions: signatures})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v0/transactions?api-key=%s", c.baseURL, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.RecordUpstreamCall("enrich", time.Since(start).Seconds(), err)
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RecordUpstreamCall("enrich", time.Since(start).Seconds(), err)
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		observability.RecordUpstreamCall("enrich", time.Since(start).Seconds(), err)
		return nil, err
	}
	observability.RecordUpstreamCall("enrich", time.Since(start).Seconds(), nil)

	var txs []*EnhancedTransaction
	if err := json.Unmarshal(respBody, &txs); err != nil {
		return nil, fmt.Errorf("unmarshal transactions: %w", err)
	}

	return txs, nil
}
