package system

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// CPUCount returns the number of logical processors, used as the default
// worker cap.
func CPUCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// LogHostInfo reports the resources the batch will run on.
func LogHostInfo(log *zap.Logger, workers int) {
	fields := []zap.Field{
		zap.Int("cpus", CPUCount()),
		zap.Int("workers", workers),
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		fields = append(fields,
			zap.Uint64("mem_total_mb", vm.Total/(1<<20)),
			zap.Uint64("mem_available_mb", vm.Available/(1<<20)))
	}
	log.Info("host resources", fields...)
}
