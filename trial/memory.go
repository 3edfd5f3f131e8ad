package trial

import (
	"math"
	"runtime"
)

func runtimeSysMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return round3(float64(m.Sys) / (1024 * 1024))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
