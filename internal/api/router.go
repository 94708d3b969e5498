// internal/api/router.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"supplier-matching/internal/common/config"
	"supplier-matching/internal/common/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterConfig struct {
	ServiceName   string
	CORSOrigins   []string
	Logger        logger.Logger
	MatchHandler  *MatchHandler
	HealthHandler *HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(CORS(cfg.CORSOrigins))
	r.Use(Metrics())
	r.Use(RequestLogger(cfg.Logger))

	// Probes
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.Health)
		r.GET("/ready", cfg.HealthHandler.Ready)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if cfg.MatchHandler != nil {
		api.POST("/matches", cfg.MatchHandler.Generate)
		api.POST("/feedback", cfg.MatchHandler.RecordFeedback)
		api.POST("/notify", cfg.MatchHandler.Notify)

		rfqs := api.Group("/rfqs/:rfqId")
		{
			rfqs.GET("/matches", cfg.MatchHandler.GenerateForRFQ)
			rfqs.GET("/recommendations", cfg.MatchHandler.Recommendations)
			rfqs.GET("/recommendations/grouped", cfg.MatchHandler.GroupedRecommendations)
		}
	}

	return r
}

// Server wraps the router in an http.Server with the configured timeouts.
type Server struct {
	http *http.Server
}

func NewServer(cfg config.APIConfig, handler http.Handler) *Server {
	return &Server{http: &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadTimeout:       millis(cfg.ReadTimeout, 10*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      millis(cfg.WriteTimeout, 30*time.Second),
	}}
}

func (s *Server) Addr() string {
	return s.http.Addr
}

// Start blocks until the server stops. A graceful shutdown returns nil.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func millis(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
