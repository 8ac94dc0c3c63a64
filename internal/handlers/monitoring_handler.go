package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"loyalty-backend/pkg/utils"
)

// SystemStats is a point-in-time snapshot for the admin dashboard
type SystemStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  uint64  `json:"memory_used_mb"`
	MemoryTotalMB uint64  `json:"memory_total_mb"`
	DiskPercent   float64 `json:"disk_percent"`
	Goroutines    int     `json:"goroutines"`
	DBTotalConns  int32   `json:"db_total_conns"`
	DBIdleConns   int32   `json:"db_idle_conns"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

type MonitoringHandler struct {
	db      *pgxpool.Pool
	started time.Time
}

func NewMonitoringHandler(db *pgxpool.Pool) *MonitoringHandler {
	return &MonitoringHandler{db: db, started: time.Now()}
}

func (h *MonitoringHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := SystemStats{
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
		stats.MemoryUsedMB = vm.Used / 1024 / 1024
		stats.MemoryTotalMB = vm.Total / 1024 / 1024
	}
	if du, err := disk.Usage("/"); err == nil {
		stats.DiskPercent = du.UsedPercent
	}

	poolStats := h.db.Stat()
	stats.DBTotalConns = poolStats.TotalConns()
	stats.DBIdleConns = poolStats.IdleConns()

	utils.JSON(w, http.StatusOK, stats)
}
