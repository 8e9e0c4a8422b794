// Package api serves the recipe collection over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gaurav-prasanna/recipepipe/core/logger"
	"github.com/gaurav-prasanna/recipepipe/core/store"
)

const shutdownTimeout = 10 * time.Second

// Importer imports one URL for an owner. importer.Importer implements it.
type Importer interface {
	Import(ctx context.Context, ownerID, rawURL string) (*store.Record, error)
}

// Recipes is the read/write view of the store. store.Repository
// implements it.
type Recipes interface {
	Get(ctx context.Context, ownerID, id string) (*store.Record, error)
	List(ctx context.Context, ownerID string) ([]*store.Record, error)
	Search(ctx context.Context, ownerID, query string) ([]*store.Record, error)
	Update(ctx context.Context, ownerID, id string, patch store.Patch) (*store.Record, error)
	Delete(ctx context.Context, ownerID, id string) error
	TopCategories(ctx context.Context, ownerID string, n int) ([]store.CategoryCount, error)
	Tags(ctx context.Context, ownerID string) ([]string, error)
}

// Config configures the HTTP server.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	OwnerID      string
	Debug        bool
}

// Server is the HTTP API with lifecycle management.
type Server struct {
	router *gin.Engine
	server *http.Server
	log    logger.Logger
}

// NewServer builds the router and the underlying http.Server. gatherer
// backs /metrics; nil means the default registry.
func NewServer(cfg Config, importer Importer, recipes Recipes, gatherer prometheus.Gatherer, log logger.Logger) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))
	if len(cfg.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSOrigins
		corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
		router.Use(cors.New(corsCfg))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	h := &handlers{importer: importer, recipes: recipes, log: log}
	v1 := router.Group("/api/v1", OwnerMiddleware(cfg.OwnerID))
	v1.POST("/recipes", h.importRecipe)
	v1.GET("/recipes", h.listRecipes)
	v1.GET("/recipes/:id", h.getRecipe)
	v1.PATCH("/recipes/:id", h.updateRecipe)
	v1.DELETE("/recipes/:id", h.deleteRecipe)
	v1.GET("/categories", h.topCategories)
	v1.GET("/tags", h.tags)

	return &Server{
		router: router,
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		log: log,
	}
}

// Router returns the gin engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", logger.String("address", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}
