package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
	AcquireCount  int64 `json:"acquire_count"`
}

func statsOf(stat *pgxpool.Stat) *PoolStats {
	return &PoolStats{
		TotalConns:    stat.TotalConns(),
		IdleConns:     stat.IdleConns(),
		AcquiredConns: stat.AcquiredConns(),
		MaxConns:      stat.MaxConns(),
		AcquireCount:  stat.AcquireCount(),
	}
}

type healthBody struct {
	Success bool       `json:"success"`
	Status  string     `json:"status"`
	Pool    *PoolStats `json:"pool,omitempty"`
}

// HealthHandler returns a handler for the database health check endpoint.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		stats := statsOf(pool.Stat())
		if err := pool.Ping(ctx); err != nil {
			c.Logger().Errorf("database ping failed: %v", err)
			return c.JSON(http.StatusServiceUnavailable, healthBody{Status: "unhealthy", Pool: stats})
		}
		return c.JSON(http.StatusOK, healthBody{Success: true, Status: "healthy", Pool: stats})
	}
}
