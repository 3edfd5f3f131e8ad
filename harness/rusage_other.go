//go:build !unix

package harness

import "os"

func childPeakMemoryMB(*os.ProcessState) float64 {
	return 0
}
