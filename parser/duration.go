package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	hoursRegexp   = regexp.MustCompile(`(\d+)\s*h`)
	minutesRegexp = regexp.MustCompile(`(\d+)\s*(?:m|min)`)
	secondsRegexp = regexp.MustCompile(`(\d+)\s*(?:s|sec)`)
)

// ParseDuration converts a human-readable composite duration like
// "1h 30m", "45 min", or "2h" into total seconds. Each unit token
// contributes independently; absent units contribute zero.
func ParseDuration(durationStr string) int {
	s := strings.ToLower(strings.TrimSpace(durationStr))
	totalSeconds := 0

	if m := hoursRegexp.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1])
		totalSeconds += hours * 3600
	}
	if m := minutesRegexp.FindStringSubmatch(s); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		totalSeconds += minutes * 60
	}
	if m := secondsRegexp.FindStringSubmatch(s); m != nil {
		seconds, _ := strconv.Atoi(m[1])
		totalSeconds += seconds
	}

	return totalSeconds
}
