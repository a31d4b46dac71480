// internal/interfaces/http/server.go
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/handmade-storefront/internal/config"
	"github.com/your-org/handmade-storefront/internal/domain/cart"
	"github.com/your-org/handmade-storefront/internal/domain/pricing"
	"github.com/your-org/handmade-storefront/internal/domain/product"
	"github.com/your-org/handmade-storefront/internal/domain/variation"
	"github.com/your-org/handmade-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/handmade-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/handmade-storefront/internal/interfaces/http/routes"
	"github.com/your-org/handmade-storefront/internal/pkg/auth"
)

const maxRequestBody = 1 << 20

// HealthCheck reports whether one dependency is reachable
type HealthCheck func(ctx context.Context) error

// Dependencies are the collaborators the API is built from
type Dependencies struct {
	Sessions   *cart.Sessions
	Catalog    product.Reader
	Variations variation.Source
	Orders     handlers.OrderSubmitter
	Policy     pricing.Policy
	JWT        *auth.JWTManager
	Redis      *redis.Client // optional, enables rate limiting
	Health     map[string]HealthCheck
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	logger     logrus.FieldLogger
	deps       Dependencies
	gin        *gin.Engine
	httpServer *http.Server
}

// NewServer creates the server and wires its routes
func NewServer(cfg *config.Config, logger logrus.FieldLogger, deps Dependencies) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: cfg,
		logger: logger,
		deps:   deps,
		gin:    gin.New(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Engine exposes the gin engine, mainly for tests
func (s *Server) Engine() *gin.Engine {
	return s.gin
}

// Start serves HTTP until Stop is called
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.WithField("port", s.config.Server.Port).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RateLimit(s.config.Security.RateLimitPerMinute, s.deps.Redis, s.logger))
	s.gin.Use(middleware.RequestSizeLimit(maxRequestBody))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)

	products := handlers.NewProductHandler(s.deps.Catalog, s.deps.Variations, s.logger)
	carts := handlers.NewCartHandler(s.deps.Sessions, products, s.config.Cart.TTL, s.config.IsProduction())
	checkout := handlers.NewCheckoutHandler(carts, s.deps.Orders, s.deps.Policy, s.config.Pricing.Currency, s.logger)

	routes.SetupRoutes(s.gin.Group("/api/v1"), routes.Handlers{
		Products: products,
		Cart:     carts,
		Checkout: checkout,
	}, s.deps.JWT)
}

// healthCheck pings every registered dependency
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}
	for name, check := range s.deps.Health {
		if err := check(ctx); err != nil {
			s.logger.WithError(err).WithField("dependency", name).Warn("Health check failed")
			checks[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "healthy"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":      overall,
		"checks":      checks,
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}
