package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/trading-agents/internal/interfaces/httpserver/handlers/healthhandler"
	"github.com/janhq/trading-agents/internal/interfaces/httpserver/middlewares"
	v1 "github.com/janhq/trading-agents/internal/interfaces/httpserver/routes/v1"
	"github.com/janhq/trading-agents/internal/metrics"
)

type Config struct {
	Port            int
	ServiceName     string
	ShutdownTimeout time.Duration
}

type HTTPServer struct {
	engine *gin.Engine
	cfg    Config
	log    zerolog.Logger
}

func New(cfg Config, log zerolog.Logger, health *healthhandler.HealthHandler, v1Route *v1.V1Route) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middlewares.RequestID(log))
	engine.Use(middlewares.Tracing(cfg.ServiceName))
	engine.Use(middlewares.Logging(log))
	engine.Use(middlewares.Metrics())

	engine.GET("/healthz", health.Liveness)
	engine.GET("/readyz", health.Readiness)
	engine.GET("/info", health.Info)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1Route.RegisterRouter(engine)

	return &HTTPServer{engine: engine, cfg: cfg, log: log}
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info().Msg("shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
