package common

import (
	"os"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

// Runtime profile for the arbitrage loop. The process holds one cycle in
// flight at a time, so it needs little heap and few threads.
const (
	BotGOGC     = 200
	BotMemLimit = 512 * 1024 * 1024 // 512MB
	BotMaxProcs = 2
)

// InitRuntime applies the bot runtime profile. GOGC, GOMAXPROCS and
// GOMEMLIMIT set in the environment take precedence.
func InitRuntime() {
	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(BotGOGC)
	}

	if os.Getenv("GOMAXPROCS") == "" {
		procs := BotMaxProcs
		if n := runtime.NumCPU(); n < procs {
			procs = n
		}
		runtime.GOMAXPROCS(procs)
	}

	if os.Getenv("GOMEMLIMIT") == "" {
		debug.SetMemoryLimit(BotMemLimit)
	}

	logRuntimeSettings()
}

func logRuntimeSettings() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.Info().
		Int("num_cpu", runtime.NumCPU()).
		Int("gomaxprocs", runtime.GOMAXPROCS(0)).
		Uint64("heap_alloc_mb", memStats.HeapAlloc/1024/1024).
		Str("go_version", runtime.Version()).
		Msg("[runtime] Current runtime settings")
}
