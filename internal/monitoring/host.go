package monitoring

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats is a point-in-time snapshot of the host the service runs on,
// surfaced by the status endpoint.
type HostStats struct {
	CPUPercent     float64 `json:"cpuPercent"`
	MemUsedPercent float64 `json:"memUsedPercent"`
	MemTotalMB     uint64  `json:"memTotalMb"`
}

// HostSnapshot samples host CPU and memory usage.
func HostSnapshot() (HostStats, error) {
	var stats HostStats

	percents, err := cpu.Percent(0, false)
	if err != nil {
		return stats, err
	}
	if len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return stats, err
	}
	stats.MemUsedPercent = vm.UsedPercent
	stats.MemTotalMB = vm.Total / (1024 * 1024)

	return stats, nil
}
