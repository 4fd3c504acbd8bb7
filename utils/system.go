package utils

import (
	"log/slog"
	"runtime"
)

// MemUsage reports heap figures in MiB as a log group.
// For info on each, see: https://golang.org/pkg/runtime/#MemStats
func MemUsage() slog.Attr {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}
	return slog.Group("mem",
		slog.Uint64("allocMiB", bToMb(m.Alloc)),
		slog.Uint64("totalAllocMiB", bToMb(m.TotalAlloc)),
		slog.Uint64("sysMiB", bToMb(m.Sys)),
		slog.Uint64("numGC", uint64(m.NumGC)),
	)
}
