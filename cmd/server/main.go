// Package main runs the wallet P&L service:
// - HTTP API: POST /api/pnl reconstructs a wallet's portfolio timeline
// - Watcher (optional): WebSocket subscription keeping stored wallet
//   history fresh
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"solana-wallet-pnl/internal/engine"
	"solana-wallet-pnl/internal/ledger"
	"solana-wallet-pnl/internal/observability"
	"solana-wallet-pnl/internal/pricing"
	"solana-wallet-pnl/internal/solana"
	"solana-wallet-pnl/internal/storage"
	chstore "solana-wallet-pnl/internal/storage/clickhouse"
	"solana-wallet-pnl/internal/storage/memory"
	"solana-wallet-pnl/internal/storage/migrations"
	pgstore "solana-wallet-pnl/internal/storage/postgres"
)

// requestTimeout bounds one full analysis, including every upstream
// lookup it fans out to.
const requestTimeout = 60 * time.Second

// Server holds the HTTP layer state around the engine.
type Server struct {
	engine *engine.Engine
	logger *log.Logger

	startedAt time.Time

	mu           sync.Mutex
	requests     int
	lastRequest  time.Time
	watchedCount int
	storageMode  string
}

// stores groups the storage implementations the service uses.
type stores struct {
	transactions storage.TransactionStore
	pricePoints  storage.PricePointStore
}

func main() {
	loadEnvFile()

	listenAddr := flag.String("listen-addr", ":8080", "HTTP listen address")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (enables the wallet watcher)")
	heliusKey := flag.String("helius-api-key", os.Getenv("HELIUS_API_KEY"), "Helius API key for transaction enrichment")
	birdeyeKey := flag.String("birdeye-api-key", os.Getenv("BIRDEYE_API_KEY"), "Birdeye API key for historical candles (optional)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for a shared price cache (optional)")
	redisPassword := flag.String("redis-password", os.Getenv("REDIS_PASSWORD"), "Redis password")
	cacheEntries := flag.Int("cache-entries", pricing.DefaultCacheEntries, "In-process price cache capacity")
	cacheTTL := flag.Duration("cache-ttl", pricing.DefaultCacheTTL, "Price cache entry TTL")
	watchWallets := flag.String("watch-wallets", os.Getenv("WATCH_WALLETS"), "Comma-separated wallets to keep refreshed via WebSocket")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}
	if *heliusKey == "" {
		logger.Println("WARNING: no Helius API key configured, analysis requests will fail with a configuration error")
	}

	ctx, cancel := context.WithCancel(context.Background())

	st, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	cache, closeCache := createCache(*redisAddr, *redisPassword, *cacheEntries, *cacheTTL, logger)
	defer closeCache()

	resolver := pricing.NewResolver(pricing.ResolverOptions{
		Cache:      cache,
		Store:      st.pricePoints,
		Realtime:   pricing.NewJupiterSource(),
		Latest:     pricing.NewDexScreenerSource(),
		Historical: historicalSource(*birdeyeKey),
		Logger:     log.New(os.Stdout, "[pricing] ", log.LstdFlags),
	})

	rpc := solana.NewHTTPClient(*rpcEndpoint)
	eng := engine.New(engine.Options{
		Source:   ledger.NewClient(rpc, *heliusKey),
		TxStore:  st.transactions,
		Resolver: resolver,
		Logger:   log.New(os.Stdout, "[engine] ", log.LstdFlags),
	})

	mode := "postgres+clickhouse"
	if *useMemory {
		mode = "memory"
	}
	server := &Server{
		engine:      eng,
		logger:      logger,
		startedAt:   time.Now(),
		storageMode: mode,
	}

	done := make(chan struct{})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    *listenAddr,
		Handler: server.routes(),
	}

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown: %v", err)
		}

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	wallets := splitWallets(*watchWallets)
	if *wsEndpoint != "" && len(wallets) > 0 {
		go server.runWatcher(ctx, *wsEndpoint, wallets)
	} else if len(wallets) > 0 {
		logger.Println("WARNING: --watch-wallets set without --ws-endpoint, watcher disabled")
	}

	logger.Printf("Starting HTTP server on %s (storage: %s)", *listenAddr, mode)
	err = httpServer.ListenAndServe()
	close(done)
	cancel()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// createStores creates transaction and price point stores, running
// migrations for the database-backed variants.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*stores, func(), error) {
	if useMemory {
		return &stores{
			transactions: memory.NewTransactionStore(),
			pricePoints:  memory.NewPricePointStore(),
		}, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	chConn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
		chConn.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	st := &stores{
		transactions: pgstore.NewTransactionStore(pool),
		pricePoints:  chstore.NewPricePointStore(chConn),
	}
	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return st, cleanup, nil
}

// createCache picks the shared Redis cache when an address is given,
// else a process-local LRU.
func createCache(addr, password string, entries int, ttl time.Duration, logger *log.Logger) (pricing.Cache, func()) {
	if addr == "" {
		return pricing.NewLRUCache(entries, ttl), func() {}
	}
	rc := pricing.NewRedisCache(addr, password, 0, ttl)
	logger.Printf("Using Redis price cache at %s", addr)
	return rc, func() { rc.Close() }
}

func historicalSource(birdeyeKey string) pricing.HistoricalSource {
	if birdeyeKey == "" {
		return nil
	}
	return pricing.NewBirdeyeSource(birdeyeKey)
}

// runWatcher runs the wallet activity watcher, reconnection handled by
// the WebSocket client itself.
func (s *Server) runWatcher(ctx context.Context, wsEndpoint string, wallets []string) {
	ws, err := solana.NewWSConn(ctx, wsEndpoint, nil)
	if err != nil {
		s.logger.Printf("Watcher disabled, websocket connect failed: %v", err)
		return
	}
	defer ws.Close()

	s.mu.Lock()
	s.watchedCount = len(wallets)
	s.mu.Unlock()

	watcher := engine.NewWatcher(ws, s.engine, wallets, log.New(os.Stdout, "[watcher] ", log.LstdFlags))
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Printf("Watcher stopped: %v", err)
	}
}

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pnl", s.handleAnalyze)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

// analyzeResponse is the success envelope for /api/pnl.
type analyzeResponse struct {
	Success bool           `json:"success"`
	Data    *engine.Result `json:"data"`
}

// errorResponse is the structured error envelope.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// handleAnalyze serves POST /api/pnl. Only a missing wallet (400) and
// a missing indexer credential (500) fail; everything else degrades to
// an empty but well-formed result.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		observability.RecordRequest("/api/pnl", "405", time.Since(start).Seconds())
		return
	}

	var req engine.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		observability.RecordRequest("/api/pnl", "400", time.Since(start).Seconds())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := s.engine.Analyze(ctx, req)
	switch {
	case errors.Is(err, engine.ErrMissingWallet):
		writeError(w, http.StatusBadRequest, "missing_wallet", err.Error())
		observability.RecordRequest("/api/pnl", "400", time.Since(start).Seconds())
		return
	case errors.Is(err, engine.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, "not_configured", err.Error())
		observability.RecordRequest("/api/pnl", "500", time.Since(start).Seconds())
		return
	case err != nil:
		// Should not happen. Any other upstream failure degrades
		// inside the engine instead of erroring.
		s.logger.Printf("analyze %s: %v", req.WalletAddress, err)
		writeError(w, http.StatusInternalServerError, "internal", "analysis failed")
		observability.RecordRequest("/api/pnl", "500", time.Since(start).Seconds())
		return
	}

	s.mu.Lock()
	s.requests++
	s.lastRequest = time.Now()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analyzeResponse{Success: true, Data: result})
	observability.RecordRequest("/api/pnl", "200", time.Since(start).Seconds())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: code, Message: message})
}

// StatusResponse is the JSON response for /status.
type StatusResponse struct {
	Status         string    `json:"status"`
	Uptime         string    `json:"uptime"`
	StorageMode    string    `json:"storage_mode"`
	Requests       int       `json:"requests"`
	LastRequest    time.Time `json:"last_request,omitempty"`
	WatchedWallets int       `json:"watched_wallets"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:         "running",
		Uptime:         time.Since(s.startedAt).String(),
		StorageMode:    s.storageMode,
		Requests:       s.requests,
		LastRequest:    s.lastRequest,
		WatchedWallets: s.watchedCount,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func splitWallets(raw string) []string {
	var wallets []string
	for _, w := range strings.Split(raw, ",") {
		w = strings.TrimSpace(w)
		if w != "" {
			wallets = append(wallets, w)
		}
	}
	return wallets
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
