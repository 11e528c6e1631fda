package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/adapter"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/auth"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/config"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/ledger"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/logger"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/nft"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/repository"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/server"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "fuzzy-community-hub",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	// ============================================
	// Storage
	// ============================================

	pool, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()
	logger.InfoCtx(ctx, "Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
		zap.Int32("max_conns", pool.Config().MaxConns),
	)

	// ============================================
	// Ledger and NFT metadata
	// ============================================

	httpClient := adapter.NewHTTPClient(cfg.Ledger.Timeout)
	ledgerClient := ledger.NewClient(httpClient, cfg.Ledger.RPCURL)
	enricher := nft.NewEnricher(httpClient, nft.Config{
		IPFSGateways: cfg.URI.IPFSGateways,
		Concurrency:  cfg.URI.MetadataConcurrency,
	})
	defer enricher.Close()
	nftProxy := nft.NewProxy(httpClient, nft.ProxyConfig{
		APIToken:   cfg.Bithomp.APIToken,
		MainnetURL: cfg.Bithomp.MainnetURL,
		TestnetURL: cfg.Bithomp.TestnetURL,
	})
	if cfg.Bithomp.APIToken == "" {
		logger.Warn("bithomp.api_token is not set, NFT lookups will likely be rejected")
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if !issuer.Enabled() {
		logger.Warn("auth.jwt_secret is not set, mutations are unauthenticated")
	}

	// ============================================
	// Server
	// ============================================

	rateLimitRequests := 0
	if cfg.RateLimit.Enabled {
		rateLimitRequests = cfg.RateLimit.Requests
	}

	srv := server.New(server.Config{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		RateLimitRequests: rateLimitRequests,
		RateLimitWindow:   cfg.RateLimit.Window,
	}, server.Deps{
		Users:       repository.NewUserRepository(pool),
		Posts:       repository.NewPostRepository(pool),
		Comments:    repository.NewCommentRepository(pool),
		Likes:       repository.NewLikeRepository(pool),
		Leaderboard: repository.NewLeaderboardRepository(pool),
		Ledger:      ledgerClient,
		NFTs:        enricher,
		NFTLookup:   nftProxy,
		DB:          pool,
		Issuer:      issuer,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, zap.String("component", "server"))
	}

	logger.Info("Server stopped")
}
