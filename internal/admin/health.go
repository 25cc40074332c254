/*
Package admin serves operator-facing endpoints.
*/
package admin

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"Lumi_V0.1/internal/database"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// cpuSample is how long CPU usage is measured per health request.
const cpuSample = 200 * time.Millisecond

var StartTime = time.Now()

// HealthReport collects storage status and host metrics. Metrics that
// cannot be read are left out.
func HealthReport(ctx context.Context, storage database.KV) map[string]interface{} {
	dbHealth := storage.Health()
	status := "online"
	if dbHealth["status"] != "up" {
		status = "degraded"
	}

	report := map[string]interface{}{
		"status":  status,
		"storage": dbHealth,
	}

	runtime := map[string]interface{}{
		"uptime":     time.Since(StartTime).Round(time.Second).String(),
		"start_time": StartTime.Format(time.RFC3339),
	}
	if hInfo, err := host.InfoWithContext(ctx); err == nil {
		runtime["os"] = hInfo.OS
		runtime["platform"] = hInfo.Platform
		runtime["arch"] = hInfo.KernelArch
		runtime["hostname"] = hInfo.Hostname
		runtime["procs"] = hInfo.Procs
	} else {
		log.Ctx(ctx).Debug().Err(err).Msg("host info unavailable")
	}
	report["runtime"] = runtime

	if cpuPercent, err := cpu.PercentWithContext(ctx, cpuSample, false); err == nil && len(cpuPercent) > 0 {
		report["cpu"] = map[string]interface{}{
			"usage_percent": fmt.Sprintf("%.2f%%", cpuPercent[0]),
		}
	}

	if v, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		report["memory"] = map[string]interface{}{
			"total_gb":     gigabytes(v.Total),
			"used_gb":      gigabytes(v.Used),
			"used_percent": fmt.Sprintf("%.2f%%", v.UsedPercent),
			"free_gb":      gigabytes(v.Free),
		}
	}

	if d, err := disk.UsageWithContext(ctx, "/"); err == nil {
		report["disk"] = map[string]interface{}{
			"total_gb":     gigabytes(d.Total),
			"used_gb":      gigabytes(d.Used),
			"used_percent": fmt.Sprintf("%.2f%%", d.UsedPercent),
		}
	}

	return report
}

// HealthHandler answers 200 while storage is up and 503 otherwise.
func HealthHandler(storage database.KV) echo.HandlerFunc {
	return func(c echo.Context) error {
		report := HealthReport(c.Request().Context(), storage)
		code := http.StatusOK
		if report["status"] != "online" {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, report)
	}
}

func gigabytes(b uint64) string {
	return fmt.Sprintf("%.2f GB", float64(b)/1024/1024/1024)
}
