package lib

import (
	"fmt"
	"log"
	"runtime"
)

var (
	Version   string = "Unknown"
	GitCommit string = "Unknown"
)

func CheckFatalError(err error) {
	if err != nil {
		_, filename, line, _ := runtime.Caller(1)
		log.Fatalf("screenlog v0.%s fatal error at %s:%d: %v", Version, filename, line, err)
	}
}

// FormatDuration renders a seconds count the way the reports display it,
// e.g. 5400 -> "1h 30m", 45 -> "45s".
func FormatDuration(totalSeconds int) string {
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
