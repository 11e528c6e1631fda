package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/xrpfuzzy/fuzzy-community-hub/internal/auth"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/handler"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/logger"
	"github.com/xrpfuzzy/fuzzy-community-hub/internal/middleware"
)

// Config holds the server configuration
type Config struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string

	// RateLimitRequests of zero disables rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Users       handler.UserStore
	Posts       handler.PostStore
	Comments    handler.CommentStore
	Likes       handler.LikeStore
	Leaderboard handler.LeaderboardStore
	Ledger      handler.Ledger
	NFTs        handler.NFTEnricher
	NFTLookup   handler.NFTLookup
	DB          handler.Pinger
	Issuer      *auth.Issuer
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	deps       Deps
	limiter    *middleware.RateLimiter
	httpServer *http.Server
}

func New(cfg Config, deps Deps) *Server {
	s := &Server{config: cfg, deps: deps}
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         3600,
	}))
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	d := s.deps

	r.Get("/healthz", handler.Health(d.DB))

	r.Post("/users/checkOrCreate", handler.CheckOrCreateUser(d.Users, d.Issuer))

	r.Get("/posts", handler.ListPosts(d.Posts))
	r.Get("/comments/{postId}", handler.ListComments(d.Comments))
	r.Get("/likes/{postId}", handler.ListLikes(d.Likes))
	r.Get("/leaderboard", handler.GetLeaderboard(d.Leaderboard))

	r.Get("/accounts/{address}", handler.GetAccount(d.Ledger))
	r.Get("/accounts/{address}/nfts", handler.GetAccountNFTs(d.Ledger, d.NFTs))
	r.Get("/nfts/{nftId}", handler.GetNFT(d.NFTLookup))

	// Mutations; open when no JWT secret is configured.
	r.Group(func(r chi.Router) {
		r.Use(d.Issuer.Middleware(handler.AuthError))
		r.Post("/posts", handler.CreatePost(d.Posts))
		r.Post("/comments", handler.CreateComment(d.Comments))
		r.Post("/likes", handler.CreateLike(d.Likes))
	})

	return r
}

// Start serves until Shutdown is called. ctx bounds background work such
// as rate limiter sweeping.
func (s *Server) Start(ctx context.Context) error {
	if s.limiter != nil {
		go s.limiter.Run(ctx)
	}

	logger.Info("Starting API server",
		zap.String("address", s.httpServer.Addr),
		zap.Bool("auth", s.deps.Issuer.Enabled()),
		zap.Bool("rateLimit", s.limiter != nil),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
