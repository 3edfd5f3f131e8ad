//go:build unix

package harness

import (
	"math"
	"os"
	"runtime"
	"syscall"
)

// childPeakMemoryMB reads the child's max RSS from its rusage.
func childPeakMemoryMB(ps *os.ProcessState) float64 {
	if ps == nil {
		return 0
	}

	ru, ok := ps.SysUsage().(*syscall.Rusage)
	if !ok || ru == nil || ru.Maxrss <= 0 {
		return 0
	}

	bytes := float64(ru.Maxrss) * 1024
	if runtime.GOOS == "darwin" || runtime.GOOS == "ios" {
		bytes = float64(ru.Maxrss)
	}

	return math.Round(bytes/(1024*1024)*1000) / 1000
}
