package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/thereayou/blog-api/internal/config"
	"github.com/thereayou/blog-api/internal/database"
	"github.com/thereayou/blog-api/internal/handlers"
	"github.com/thereayou/blog-api/internal/middleware"
	"github.com/thereayou/blog-api/internal/services"
	ws "github.com/thereayou/blog-api/internal/websocket"
	"github.com/thereayou/blog-api/pkg/auth"
)

type Server struct {
	Config     config.Config
	Logger     *logrus.Logger
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client // nil without REDIS_URL
	JWTManager *auth.JWTManager
	Hub        *ws.Hub
	limiter    *middleware.IPRateLimiter
}

// NewServer connects every backing service and builds the gin engine.
func NewServer(cfg config.Config, logger *logrus.Logger) (*Server, error) {
	dbConn := &database.Database{}
	if err := dbConn.Connect(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var (
		rdb     *redis.Client
		revoker auth.Revoker
	)
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(redisOpts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connect failed: %w", err)
		}
		revoker = auth.NewRedisRevoker(rdb)
	} else {
		logger.Info("REDIS_URL not set, revoked tokens are kept in memory")
		revoker = auth.NewMemoryRevoker()
	}

	jwtMgr := auth.NewJWTManager(cfg.JWTSecretKey, cfg.TokenTTL)
	authSvc := services.NewAuthService(dbConn, jwtMgr, revoker, logger)
	hub := ws.NewHub(logger)

	var limiter *middleware.IPRateLimiter
	if cfg.LoginRatePerSecond > 0 {
		limiter = middleware.NewIPRateLimiter(rate.Limit(cfg.LoginRatePerSecond), cfg.LoginBurst)
	}

	handlers.InitValidation()
	router := newEngine(cfg, logger)
	APIEndpoints(router, Endpoints{
		RequireAuth: middleware.AuthMiddleware(jwtMgr, authSvc, revoker, logger),
		RateLimit:   middleware.RateLimit(limiter),
		Auth:        handlers.NewAuthHandler(authSvc, logger),
		Users:       handlers.NewUserHandler(dbConn, logger, cfg.MaxPerPage),
		Posts:       handlers.NewPostResource(dbConn, hub, logger, cfg.MaxPerPage),
		Comments:    handlers.NewCommentResource(dbConn, hub, logger, cfg.MaxPerPage),
		Feed:        handlers.NewFeedHandler(hub, cfg.CORSOrigins(), logger),
	})

	return &Server{
		Config:     cfg,
		Logger:     logger,
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
		limiter:    limiter,
	}, nil
}

func newEngine(cfg config.Config, logger *logrus.Logger) *gin.Engine {
	switch {
	case cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	case cfg.IsTest():
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", auth.TokenHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	origins := cfg.CORSOrigins()
	if len(origins) == 0 || containsWildcard(origins) {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	return r
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.Hub.Run()
	if s.limiter != nil {
		s.limiter.StartCleanup(ctx, 10*time.Minute)
	}

	srv := &http.Server{Addr: ":" + s.Config.Port, Handler: s.Router}
	errCh := make(chan error, 1)
	go func() {
		s.Logger.Infof("server starting on :%s", s.Config.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.Close()
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.Logger.Info("server exited properly")
	return nil
}

// Close releases the hub, the database and redis.
func (s *Server) Close() {
	s.Hub.Stop()
	if err := s.DB.Close(); err != nil {
		s.Logger.WithError(err).Warn("close database")
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.WithError(err).Warn("close redis")
		}
	}
}
