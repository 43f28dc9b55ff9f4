// Package diag samples host CPU and memory load for operational logging,
// small enough for a server composition root to call periodically.
package diag

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// Sample is a point-in-time host load snapshot.
type Sample struct {
	CPUPercent  float64
	MemUsedPct  float64
	MemUsedMB   uint64
	MemTotalMB  uint64
}

// Collect takes one Sample. cpu.PercentWithContext blocks briefly
// (interval) to measure a delta; pass 0 to use the cumulative-since-boot
// figure instead of blocking.
func Collect(ctx context.Context, interval int) (Sample, error) {
	var s Sample

	percents, err := cpu.PercentWithContext(ctx, durationFromMillis(interval), false)
	if err != nil {
		return s, err
	}
	if len(percents) > 0 {
		s.CPUPercent = percents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return s, err
	}
	s.MemUsedPct = vm.UsedPercent
	s.MemUsedMB = vm.Used / (1024 * 1024)
	s.MemTotalMB = vm.Total / (1024 * 1024)

	return s, nil
}

func durationFromMillis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
