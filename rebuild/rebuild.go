// Package rebuild derives usage intervals from the raw snapshot log.
//
// The interval set for a device is a pure function of its snapshots:
// every run deletes the stored intervals and recomputes all of them from
// scratch. Snapshot volumes are human-scale (a few exports per day), so
// the full rebuild buys "intervals always match the snapshot log" for the
// cost of an O(snapshots) pass.
package rebuild

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/screenlog/screenlog/internal/database"
	"github.com/screenlog/screenlog/sctx"
	"github.com/screenlog/screenlog/shared"
)

// Device recomputes the full usage interval set for one device and
// returns the number of intervals produced. A device with zero or one
// snapshots yields no intervals: the first snapshot ever seen has no
// prior baseline, and we refuse to fabricate usage for time we have no
// evidence about.
func Device(ctx context.Context, db *database.DB, deviceId uint) (int, error) {
	snapshots, err := db.SnapshotsForDevice(ctx, deviceId)
	if err != nil {
		return 0, fmt.Errorf("db.SnapshotsForDevice: %w", err)
	}
	if len(snapshots) == 0 {
		return 0, nil
	}

	entriesBySnapshot, err := db.SnapshotEntriesForDevice(ctx, deviceId)
	if err != nil {
		return 0, fmt.Errorf("db.SnapshotEntriesForDevice: %w", err)
	}

	var intervals []shared.UsageInterval
	var anomalies []shared.AnomalyEvent

	for i := 1; i < len(snapshots); i++ {
		prev := snapshots[i-1]
		curr := snapshots[i]
		currApps := entriesBySnapshot[curr.Id]

		var start time.Time
		var baseline map[string]int
		if sameCalendarDay(prev.Timestamp, curr.Timestamp) {
			start = prev.Timestamp
			baseline = entriesBySnapshot[prev.Id]
		} else {
			// Counters reset at local midnight, so the current
			// cumulative values are "time used so far today". A
			// snapshot taken exactly at 00:00:00 makes start equal
			// end while still carrying its duration; kept as is.
			start = midnightOf(curr.Timestamp)
			baseline = nil
		}

		for _, app := range sortedApps(currApps) {
			delta := currApps[app] - baseline[app]
			switch {
			case delta > 0:
				intervals = append(intervals, shared.UsageInterval{
					DeviceId:        deviceId,
					StartTime:       start,
					EndTime:         curr.Timestamp,
					AppName:         app,
					DurationSeconds: delta,
				})
			case delta < 0:
				// Counter moved backwards mid-day (manual history
				// deletion, unaligned reset). Drop the entry but keep
				// an audit row.
				anomalies = append(anomalies, shared.AnomalyEvent{
					DeviceId:    deviceId,
					ObservedAt:  curr.Timestamp,
					AppName:     app,
					DropSeconds: -delta,
				})
				sctx.GetLogger().Warnf("device %d: counter for %q moved backwards by %ds at %s, dropping entry",
					deviceId, app, -delta, curr.Timestamp.Format(time.RFC3339))
			}
		}
	}

	if err := db.IntervalsReplaceForDevice(ctx, deviceId, intervals, anomalies); err != nil {
		return 0, fmt.Errorf("db.IntervalsReplaceForDevice: %w", err)
	}

	return len(intervals), nil
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func midnightOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sortedApps(apps map[string]int) []string {
	names := make([]string, 0, len(apps))
	for app := range apps {
		names = append(names, app)
	}
	sort.Strings(names)
	return names
}
