package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
}

func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

// Dependency is a backing service probed by the health check. A failing
// required dependency makes the service unhealthy (503); a failing optional
// one only degrades it.
type Dependency struct {
	Name     string
	Required bool
	Ping     func(ctx context.Context) error
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthHandler probes every dependency with a shared 5s budget. stats may
// be nil.
func HealthHandler(stats func() *PoolStats, deps ...Dependency) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		overall := StatusHealthy
		report := make(map[string]dependencyStatus, len(deps))
		for _, d := range deps {
			if err := d.Ping(ctx); err != nil {
				report[d.Name] = dependencyStatus{Status: StatusUnhealthy, Error: err.Error()}
				if d.Required {
					overall = StatusUnhealthy
				} else if overall == StatusHealthy {
					overall = StatusDegraded
				}
				continue
			}
			report[d.Name] = dependencyStatus{Status: StatusHealthy}
		}

		body := map[string]interface{}{"status": overall, "dependencies": report}
		if stats != nil {
			body["pool"] = stats()
		}
		code := http.StatusOK
		if overall == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, body)
	}
}
