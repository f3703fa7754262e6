package runner

import (
	"os"
	"strconv"

	"github.com/examples-hub/hubrun/internal/output"
)

// ConcurrencyEnv overrides the concurrency of the first pass.
const ConcurrencyEnv = "HUBRUN_CONCURRENCY"

const (
	minConcurrency = 1
	// maxConcurrency matches the configuration limit; beyond it package
	// managers mostly contend for the same network and disk.
	maxConcurrency = 64
)

// ConcurrencyFromEnv returns the HUBRUN_CONCURRENCY value, or def when it is
// unset. Invalid values (non-numeric, <1, >64) log a warning and fall back to def.
func ConcurrencyFromEnv(def int, w *output.Writer) int {
	env := os.Getenv(ConcurrencyEnv)
	if env == "" {
		return def
	}

	n, err := strconv.Atoi(env)
	if err != nil {
		w.Warning("invalid %s value %q (not a number), using %d", ConcurrencyEnv, env, def)
		return def
	}
	if n < minConcurrency || n > maxConcurrency {
		w.Warning("%s=%d out of range [%d-%d], using %d", ConcurrencyEnv, n, minConcurrency, maxConcurrency, def)
		return def
	}
	return n
}
