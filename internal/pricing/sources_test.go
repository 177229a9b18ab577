package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJupiterSource_Price(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v6/price" {
			t.Errorf("path = %s, want /v6/price", r.URL.Path)
		}
		if got := r.URL.Query().Get("ids"); got != testMint {
			t.Errorf("ids = %s, want %s", got, testMint)
		}
		w.Write([]byte(`{"data":{"` + testMint + `":{"price":0.0421}}}`))
	}))
	defer server.Close()

	s := NewJupiterSource(WithSourceBaseURL(server.URL))
	price, err := s.Price(context.Background(), testMint)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if price != 0.0421 {
		t.Errorf("price = %v, want 0.0421", price)
	}
}

func TestJupiterSource_UnknownMint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	s := NewJupiterSource(WithSourceBaseURL(server.URL))
	price, err := s.Price(context.Background(), testMint)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if price != 0 {
		t.Errorf("price = %v, want 0", price)
	}
}

func TestDexScreenerSource_LatestPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest/dex/tokens/"+testMint {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"pairs":[{"priceUsd":"1.23"},{"priceUsd":"1.19"}]}`))
	}))
	defer server.Close()

	s := NewDexScreenerSource(WithSourceBaseURL(server.URL))
	price, err := s.LatestPrice(context.Background(), testMint)
	if err != nil {
		t.Fatalf("LatestPrice: %v", err)
	}
	if price != 1.23 {
		t.Errorf("price = %v, want first pair's 1.23", price)
	}
}

func TestDexScreenerSource_MalformedPriceIsZeroNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[{"priceUsd":"n/a"}]}`))
	}))
	defer server.Close()

	s := NewDexScreenerSource(WithSourceBaseURL(server.URL))
	price, err := s.LatestPrice(context.Background(), testMint)
	if err != nil {
		t.Fatalf("LatestPrice: %v", err)
	}
	if price != 0 {
		t.Errorf("price = %v, want 0", price)
	}
}

func TestBirdeyeSource_CandleClose(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "test-key" {
			t.Errorf("X-API-KEY = %q, want test-key", got)
		}
		q := r.URL.Query()
		if q.Get("type") != "1D" {
			t.Errorf("type = %s, want 1D", q.Get("type"))
		}
		w.Write([]byte(`{"data":{"items":[{"o":0.9,"c":1.1},{"o":1.1,"c":1.3}]}}`))
	}))
	defer server.Close()

	s := NewBirdeyeSource("test-key", WithSourceBaseURL(server.URL))
	price, err := s.CandleClose(context.Background(), testMint, 1000, 2000)
	if err != nil {
		t.Fatalf("CandleClose: %v", err)
	}
	if price != 1.1 {
		t.Errorf("price = %v, want first candle close 1.1", price)
	}
}

func TestBirdeyeSource_FallsBackToOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"items":[{"o":0.9,"c":0}]}}`))
	}))
	defer server.Close()

	s := NewBirdeyeSource("test-key", WithSourceBaseURL(server.URL))
	price, err := s.CandleClose(context.Background(), testMint, 1000, 2000)
	if err != nil {
		t.Fatalf("CandleClose: %v", err)
	}
	if price != 0.9 {
		t.Errorf("price = %v, want open 0.9", price)
	}
}

func TestSources_Non200IsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := NewJupiterSource(WithSourceBaseURL(server.URL)).Price(context.Background(), testMint); err == nil {
		t.Error("jupiter: expected error on 429")
	}
	if _, err := NewDexScreenerSource(WithSourceBaseURL(server.URL)).LatestPrice(context.Background(), testMint); err == nil {
		t.Error("dexscreener: expected error on 429")
	}
}
