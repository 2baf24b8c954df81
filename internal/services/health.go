package services

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/cinemate/reelrank/internal/catalog"
	"github.com/cinemate/reelrank/internal/database"
)

// HealthService reports serving readiness. The catalog is the only
// critical dependency: without it no recommendation is correct. Redis
// and the metadata API only degrade behavior, so their failures are
// reported as non-critical.
type HealthService struct {
	logger  *logrus.Logger
	db      *database.Database
	catalog *catalog.Catalog

	healthCheckStatus *prometheus.GaugeVec
	lastHealthCheck   *prometheus.GaugeVec
	systemMetrics     *prometheus.GaugeVec
}

type HealthStatus struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]string      `json:"services"`
	Critical    []string               `json:"critical_failures,omitempty"`
	NonCritical []string               `json:"non_critical_failures,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

func NewHealthService(logger *logrus.Logger, db *database.Database, c *catalog.Catalog) *HealthService {
	hs := &HealthService{
		logger:  logger,
		db:      db,
		catalog: c,
	}

	hs.healthCheckStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "health_check_status",
		Help: "Health check status (1 = healthy, 0 = unhealthy)",
	}, []string{"service"})

	hs.lastHealthCheck = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "health_check_timestamp",
		Help: "Timestamp of last health check",
	}, []string{"service"})

	hs.systemMetrics = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "system_info",
		Help: "System information metrics",
	}, []string{"metric_type"})

	// Register metrics - ignore if already registered
	for _, collector := range []prometheus.Collector{hs.healthCheckStatus, hs.lastHealthCheck, hs.systemMetrics} {
		if err := prometheus.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				logger.WithError(err).Warn("Failed to register health metric")
			}
		}
	}

	return hs
}

func (s *HealthService) CheckHealth() *HealthStatus {
	status := &HealthStatus{
		Timestamp: time.Now(),
		Services:  make(map[string]string),
		Details:   make(map[string]interface{}),
	}

	// Critical: the catalog must be loaded and aligned.
	if s.catalog != nil && s.catalog.Size() > 0 {
		status.Services["catalog"] = "healthy"
		status.Details["catalog_size"] = s.catalog.Size()
		s.recordCheck("catalog", true)
	} else {
		status.Services["catalog"] = "unhealthy"
		status.Critical = append(status.Critical, "catalog")
		s.recordCheck("catalog", false)
	}

	// Non-critical: Redis degrades history and caching, not ranking.
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if s.db != nil && s.db.Redis != nil {
		if err := s.db.Redis.Sessions.Ping(ctx).Err(); err != nil {
			status.Services["redis_sessions"] = "unhealthy"
			status.NonCritical = append(status.NonCritical, "redis_sessions")
			s.recordCheck("redis_sessions", false)
		} else {
			status.Services["redis_sessions"] = "healthy"
			s.recordCheck("redis_sessions", true)
		}

		if err := s.db.Redis.Cache.Ping(ctx).Err(); err != nil {
			status.Services["redis_cache"] = "unhealthy"
			status.NonCritical = append(status.NonCritical, "redis_cache")
			s.recordCheck("redis_cache", false)
		} else {
			status.Services["redis_cache"] = "healthy"
			s.recordCheck("redis_cache", true)
		}
	}

	status.Details["goroutines"] = runtime.NumGoroutine()
	s.systemMetrics.WithLabelValues("goroutines").Set(float64(runtime.NumGoroutine()))

	switch {
	case len(status.Critical) > 0:
		status.Status = "unhealthy"
	case len(status.NonCritical) > 0:
		status.Status = "degraded"
	default:
		status.Status = "healthy"
	}

	return status
}

func (s *HealthService) recordCheck(service string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	s.healthCheckStatus.WithLabelValues(service).Set(value)
	s.lastHealthCheck.WithLabelValues(service).Set(float64(time.Now().Unix()))
}
