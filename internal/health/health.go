package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"loyalty-backend/internal/cache"
)

type HealthChecker struct {
	db *pgxpool.Pool
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Database DependencyCheck `json:"database"`
	Cache    DependencyCheck `json:"cache"`
}

type DependencyCheck struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

func NewHealthChecker(db *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{db: db}
}

// CheckBasic reports overall health. The database is the only hard
// dependency; a disabled or unreachable cache degrades but does not
// fail the check.
func (h *HealthChecker) CheckBasic() HealthStatus {
	dbHealth := h.checkDatabase()
	cacheHealth := h.checkCache()

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
		Cache:    cacheHealth,
	}
}

func (h *HealthChecker) checkDatabase() DependencyCheck {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DependencyCheck{Status: "unhealthy", ResponseTime: responseTime}
	}
	return DependencyCheck{Status: "healthy", ResponseTime: responseTime}
}

func (h *HealthChecker) checkCache() DependencyCheck {
	client := cache.GetClient()
	if client == nil {
		return DependencyCheck{Status: "disabled"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := client.Ping(ctx).Err()
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DependencyCheck{Status: "unhealthy", ResponseTime: responseTime}
	}
	return DependencyCheck{Status: "healthy", ResponseTime: responseTime}
}
