//go:build unix

package trial

import (
	"runtime"
	"syscall"
)

// PeakMemoryMB returns the peak resident set size of the current process in
// megabytes. It falls back to the Go runtime's obtained memory when getrusage
// is unavailable.
func PeakMemoryMB() float64 {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil || ru.Maxrss <= 0 {
		return runtimeSysMB()
	}

	return round3(maxRSSBytes(int64(ru.Maxrss), runtime.GOOS) / (1024 * 1024))
}

// maxRSSBytes normalizes ru_maxrss, which is bytes on darwin and kilobytes
// elsewhere.
func maxRSSBytes(maxrss int64, goos string) float64 {
	if goos == "darwin" || goos == "ios" {
		return float64(maxrss)
	}

	return float64(maxrss) * 1024
}
