//go:build !unix

package trial

// PeakMemoryMB returns the memory obtained from the OS by the Go runtime, in
// megabytes.
func PeakMemoryMB() float64 {
	return runtimeSysMB()
}
