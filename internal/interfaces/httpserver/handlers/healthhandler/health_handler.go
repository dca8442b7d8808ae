package healthhandler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const checkTimeout = 2 * time.Second

// Pinger is anything whose reachability can be probed: the cache store, a database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Info describes the running service for GET /info.
type Info struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Environment  string `json:"environment"`
	CacheBackend string `json:"cache_backend"`
	LLMEnabled   bool   `json:"llm_enabled"`
	Models       int    `json:"models"`
}

type HealthHandler struct {
	checks map[string]Pinger
	info   Info
}

// NewHealthHandler probes each named dependency on readiness checks. Nil pingers are skipped.
func NewHealthHandler(checks map[string]Pinger, info Info) *HealthHandler {
	live := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			live[name] = p
		}
	}
	return &HealthHandler{checks: live, info: info}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type ReadinessResponse struct {
	Status    string            `json:"status"`
	Timestamp int64             `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

// Readiness handles GET /readyz. Every dependency is probed concurrently; any failure turns
// the response into 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]error, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			results[i] = h.checks[name].Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	healthy := true
	services := make(map[string]string, len(names))
	for i, name := range names {
		if results[i] != nil {
			healthy = false
			services[name] = "down"
			log.Ctx(c.Request.Context()).Warn().Err(results[i]).Str("service", name).Msg("readiness check failed")
			continue
		}
		services[name] = "up"
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, ReadinessResponse{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Services:  services,
		Version:   h.info.Version,
	})
}

// Info handles GET /info.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, h.info)
}
