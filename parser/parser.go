package parser

import (
	"iter"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/screenlog/screenlog/sctx"
)

// Date header layouts as they appear in exports. The AM/PM form is what
// the iOS Shortcuts share sheet produces, e.g. "13 Feb 2026 at 2:00 PM".
const (
	headerLayoutAmPm   = "2 Jan 2006 at 3:04 PM"
	headerLayout24Hour = "2 January 2006 at 15:04"
	headerLayoutIso    = "2006-01-02 15:04:05"
)

// isoLikeRegexp guards the dateparse fallback so that stray body lines
// (app names, bare numbers) are never misread as timestamps.
var isoLikeRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}`)

var headerParsers = []func(string) (time.Time, bool){
	makeLayoutParser(headerLayoutAmPm),
	makeLayoutParser(headerLayout24Hour),
	makeLayoutParser(headerLayoutIso),
	parseIsoVariantHeader,
}

func makeLayoutParser(layout string) func(string) (time.Time, bool) {
	return func(line string) (time.Time, bool) {
		ts, err := time.ParseInLocation(layout, line, time.Local)
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	}
}

func parseIsoVariantHeader(line string) (time.Time, bool) {
	if !isoLikeRegexp.MatchString(line) {
		return time.Time{}, false
	}
	ts, err := dateparse.ParseLocal(line)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// cleanHeaderLine strips the narrow no-break space that iOS inserts
// before AM/PM, plus any other non-ASCII copy/paste noise.
func cleanHeaderLine(line string) string {
	line = strings.ReplaceAll(line, "\u202f", " ")
	var b strings.Builder
	for _, r := range line {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ParseHeaderDate tries each supported date-header format in priority
// order and reports whether the line is a header at all.
func ParseHeaderDate(line string) (time.Time, bool) {
	clean := cleanHeaderLine(line)
	for _, parse := range headerParsers {
		if ts, ok := parse(clean); ok {
			return ts.Truncate(time.Second), true
		}
	}
	return time.Time{}, false
}

// Parse walks the raw text of one export and yields each
// (timestamp, app to cumulative-seconds) snapshot it finds, in document
// order. Single pass; blocks that produce no valid entries are skipped
// entirely rather than yielded empty. Malformed input never produces an
// error, only fewer snapshots.
func Parse(content string) iter.Seq2[time.Time, map[string]int] {
	return func(yield func(time.Time, map[string]int) bool) {
		var currentTs time.Time
		haveHeader := false
		var currentLines []string

		flush := func() bool {
			if !haveHeader {
				return true
			}
			apps := parseBlock(currentLines)
			if len(apps) == 0 {
				return true
			}
			return yield(currentTs, apps)
		}

		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if ts, ok := ParseHeaderDate(line); ok {
				if !flush() {
					return
				}
				currentTs = ts
				haveHeader = true
				currentLines = nil
				continue
			}
			if haveHeader {
				currentLines = append(currentLines, line)
			}
			// Lines before the first header are document preamble
			// (e.g. markdown titles) and are dropped
		}
		flush()
	}
}

var trailingParenRegexp = regexp.MustCompile(`^(.*)\s*\(.*\)$`)

// parseBlock converts the body lines following one header into an
// app to cumulative-seconds mapping. Entries are comma separated and span
// two physical lines each: an app title line (with an optional trailing
// parenthesized qualifier) followed by a raw seconds line like "1560 sec".
func parseBlock(lines []string) map[string]int {
	apps := make(map[string]int)
	body := strings.Join(lines, "\n")
	for _, entry := range strings.Split(body, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		var entryLines []string
		for _, l := range strings.Split(entry, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				entryLines = append(entryLines, l)
			}
		}
		if len(entryLines) < 2 {
			continue
		}
		appName := entryLines[0]
		if m := trailingParenRegexp.FindStringSubmatch(appName); m != nil {
			appName = strings.TrimSpace(m[1])
		}

		seconds, ok := parseSecondsLine(entryLines[1])
		if !ok {
			sctx.GetLogger().Warnf("skipping entry for %q: unparsable duration %q", appName, entryLines[1])
			continue
		}
		apps[appName] = seconds
	}
	return apps
}

// parseSecondsLine parses a raw seconds count like "1560 sec" or "90.5",
// truncating any fractional part.
func parseSecondsLine(line string) (int, bool) {
	s := strings.ToLower(line)
	s = strings.ReplaceAll(s, "sec", "")
	s = strings.ReplaceAll(s, "\u202f", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimSpace(s)
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(parsed), true
}
