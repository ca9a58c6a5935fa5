package docker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docker/docker/api/types"
)

// ContainerMetrics is a one-shot resource usage sample for a container.
type ContainerMetrics struct {
	CPUPercent  float64 `json:"cpu_percent"`
	MemoryUsage uint64  `json:"memory_usage"`
	MemoryLimit uint64  `json:"memory_limit"`
	PIDs        uint64  `json:"pids"`
}

// GetContainerMetrics samples the container's current CPU and memory
// usage. The daemon reports cumulative CPU counters, so the percentage is
// derived from the delta against the previous sample it includes.
func (r *Runtime) GetContainerMetrics(ctx context.Context, containerID string) (*ContainerMetrics, error) {
	stats, err := r.cli.ContainerStats(ctx, containerID, false)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, shortID(containerID))
		}
		return nil, fmt.Errorf("failed to read container stats: %w", err)
	}
	defer stats.Body.Close()

	var v types.StatsJSON
	if err := json.NewDecoder(stats.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode container stats: %w", err)
	}

	metrics := &ContainerMetrics{
		MemoryUsage: v.MemoryStats.Usage,
		MemoryLimit: v.MemoryStats.Limit,
		PIDs:        v.PidsStats.Current,
	}

	cpuDelta := float64(v.CPUStats.CPUUsage.TotalUsage) - float64(v.PreCPUStats.CPUUsage.TotalUsage)
	systemDelta := float64(v.CPUStats.SystemUsage) - float64(v.PreCPUStats.SystemUsage)
	onlineCPUs := float64(v.CPUStats.OnlineCPUs)
	if onlineCPUs == 0 {
		onlineCPUs = float64(len(v.CPUStats.CPUUsage.PercpuUsage))
	}
	if cpuDelta > 0 && systemDelta > 0 {
		metrics.CPUPercent = (cpuDelta / systemDelta) * onlineCPUs * 100.0
	}

	return metrics, nil
}
