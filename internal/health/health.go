package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

type HealthChecker struct {
	db *pgxpool.Pool
}

type HealthStatus struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

// DetailedStatus adds process/host metrics for the ops dashboard.
type DetailedStatus struct {
	Status      string         `json:"status"`
	Database    DatabaseHealth `json:"database"`
	ActiveConns int32          `json:"active_connections"`
	IdleConns   int32          `json:"idle_connections"`
	CPUPercent  float64        `json:"cpu_percent"`
	MemPercent  float64        `json:"memory_percent"`
	MemUsed     string         `json:"memory_used"`
	MemTotal    string         `json:"memory_total"`
	DiskPercent float64        `json:"disk_percent"`
}

func NewHealthChecker(db *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{db: db}
}

func (h *HealthChecker) CheckBasic() HealthStatus {
	dbHealth := h.checkDatabase()

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
	}
}

func (h *HealthChecker) CheckDetailed() DetailedStatus {
	basic := h.CheckBasic()
	stat := h.db.Stat()

	cpuPercent := 0.0
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		cpuPercent = percents[0]
	}

	detailed := DetailedStatus{
		Status:      basic.Status,
		Database:    basic.Database,
		ActiveConns: stat.AcquiredConns(),
		IdleConns:   stat.IdleConns(),
		CPUPercent:  cpuPercent,
	}

	if memStats, err := mem.VirtualMemory(); err == nil {
		detailed.MemPercent = memStats.UsedPercent
		detailed.MemUsed = formatBytes(memStats.Used)
		detailed.MemTotal = formatBytes(memStats.Total)
	}

	if diskStats, err := disk.Usage("/"); err == nil {
		detailed.DiskPercent = diskStats.UsedPercent
	}

	return detailed
}

func (h *HealthChecker) checkDatabase() DatabaseHealth {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return DatabaseHealth{
			Status:       "unhealthy",
			ResponseTime: responseTime,
		}
	}

	return DatabaseHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		mb := float64(bytes) / (1024 * 1024)
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f GB", gb)
}
