// Package main provides a one-shot CLI that reconstructs a wallet's
// P&L and prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"solana-wallet-pnl/internal/engine"
	"solana-wallet-pnl/internal/ledger"
	"solana-wallet-pnl/internal/pricing"
	"solana-wallet-pnl/internal/solana"
	"solana-wallet-pnl/internal/storage/memory"
)

func main() {
	wallet := flag.String("wallet", "", "Wallet address to analyze (required)")
	timeRange := flag.String("range", "30d", "Time range: 24h, 7d, 30d, 6m, 1y")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	heliusKey := flag.String("helius-api-key", os.Getenv("HELIUS_API_KEY"), "Helius API key for transaction enrichment")
	birdeyeKey := flag.String("birdeye-api-key", os.Getenv("BIRDEYE_API_KEY"), "Birdeye API key for historical candles (optional)")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall analysis timeout")
	pretty := flag.Bool("pretty", true, "Indent JSON output")

	flag.Parse()

	logger := log.New(os.Stderr, "[pnl] ", log.LstdFlags)

	if *wallet == "" {
		logger.Fatal("--wallet is required")
	}
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}

	var historical pricing.HistoricalSource
	if *birdeyeKey != "" {
		historical = pricing.NewBirdeyeSource(*birdeyeKey)
	}

	resolver := pricing.NewResolver(pricing.ResolverOptions{
		Store:      memory.NewPricePointStore(),
		Realtime:   pricing.NewJupiterSource(),
		Latest:     pricing.NewDexScreenerSource(),
		Historical: historical,
		Logger:     logger,
	})

	eng := engine.New(engine.Options{
		Source:   ledger.NewClient(solana.NewHTTPClient(*rpcEndpoint), *heliusKey),
		TxStore:  memory.NewTransactionStore(),
		Resolver: resolver,
		Logger:   logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := eng.Analyze(ctx, engine.Request{
		WalletAddress: *wallet,
		TimeRange:     *timeRange,
	})
	if err != nil {
		logger.Fatalf("Analysis failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		logger.Fatalf("Encode result: %v", err)
	}
}
