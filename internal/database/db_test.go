package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/screenlog/screenlog/shared"
	"github.com/screenlog/screenlog/shared/testutils"
	"github.com/stretchr/testify/require"
)

func TestDeviceGetOrCreate(t *testing.T) {
	db := testutils.MakeTestDb(t)
	ctx := context.Background()

	first, err := db.DeviceGetOrCreate(ctx, "iPhone 13 mini")
	require.NoError(t, err)
	require.NotZero(t, first.Id)

	second, err := db.DeviceGetOrCreate(ctx, "iPhone 13 mini")
	require.NoError(t, err)
	require.Equal(t, first.Id, second.Id)

	other, err := db.DeviceGetOrCreate(ctx, "iPad")
	require.NoError(t, err)
	require.NotEqual(t, first.Id, other.Id)

	numDevices, err := db.DevicesCount(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), numDevices)
}

func TestSnapshotCreateIfNewDedups(t *testing.T) {
	db := testutils.MakeTestDb(t)
	ctx := context.Background()
	device, err := db.DeviceGetOrCreate(ctx, "iPhone")
	require.NoError(t, err)
	ts := time.Date(2026, time.February, 13, 14, 0, 0, 0, time.Local)

	created, err := db.SnapshotCreateIfNew(ctx, shared.RawSnapshot{
		DeviceId: device.Id, Timestamp: ts, FileSource: "export1.txt",
	}, map[string]int{"YouTube": 100, "Safari": 50})
	require.NoError(t, err)
	require.True(t, created)

	// Same (device, timestamp) from a different file is a silent no-op
	created, err = db.SnapshotCreateIfNew(ctx, shared.RawSnapshot{
		DeviceId: device.Id, Timestamp: ts, FileSource: "export2.txt",
	}, map[string]int{"YouTube": 999})
	require.NoError(t, err)
	require.False(t, created)

	numSnapshots, err := db.SnapshotsCount(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), numSnapshots)

	entries, err := db.SnapshotEntriesForDevice(ctx, device.Id)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	for _, apps := range entries {
		require.Equal(t, map[string]int{"YouTube": 100, "Safari": 50}, apps)
	}

	// The same timestamp on another device is a distinct snapshot
	otherDevice, err := db.DeviceGetOrCreate(ctx, "iPad")
	require.NoError(t, err)
	created, err = db.SnapshotCreateIfNew(ctx, shared.RawSnapshot{
		DeviceId: otherDevice.Id, Timestamp: ts,
	}, map[string]int{"YouTube": 10})
	require.NoError(t, err)
	require.True(t, created)
}

func TestSnapshotsForDeviceOrdering(t *testing.T) {
	db := testutils.MakeTestDb(t)
	ctx := context.Background()
	device, err := db.DeviceGetOrCreate(ctx, "iPhone")
	require.NoError(t, err)

	base := time.Date(2026, time.February, 13, 10, 0, 0, 0, time.Local)
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		_, err := db.SnapshotCreateIfNew(ctx, shared.RawSnapshot{
			DeviceId: device.Id, Timestamp: base.Add(offset),
		}, map[string]int{"A": int(offset.Seconds())})
		require.NoError(t, err)
	}

	snapshots, err := db.SnapshotsForDevice(ctx, device.Id)
	require.NoError(t, err)
	require.Len(t, snapshots, 3)
	for i := 1; i < len(snapshots); i++ {
		require.True(t, snapshots[i].Timestamp.After(snapshots[i-1].Timestamp))
	}
}

func TestCategoryUpsert(t *testing.T) {
	db := testutils.MakeTestDb(t)
	ctx := context.Background()

	require.NoError(t, db.CategoryUpsert(ctx, "YouTube", "Entertainment", nil))
	alias := "YT"
	require.NoError(t, db.CategoryUpsert(ctx, "YouTube", "Video", &alias))

	categories, err := db.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Equal(t, "Video", categories[0].Category)
	require.NotNil(t, categories[0].Alias)
	require.Equal(t, "YT", *categories[0].Alias)
}

func TestUsageReportJoinsCategories(t *testing.T) {
	db := testutils.MakeTestDb(t)
	ctx := context.Background()
	device, err := db.DeviceGetOrCreate(ctx, "iPhone")
	require.NoError(t, err)

	start := time.Date(2026, time.February, 13, 10, 0, 0, 0, time.Local)
	intervals := []shared.UsageInterval{
		{DeviceId: device.Id, StartTime: start, EndTime: start.Add(time.Hour), AppName: "YouTube", DurationSeconds: 3600},
		{DeviceId: device.Id, StartTime: start, EndTime: start.Add(30 * time.Minute), AppName: "Safari", DurationSeconds: 1800},
	}
	require.NoError(t, db.IntervalsReplaceForDevice(ctx, device.Id, intervals, nil))

	alias := "YT"
	require.NoError(t, db.CategoryUpsert(ctx, "YouTube", "Entertainment", &alias))

	rows, err := db.UsageReport(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byApp := make(map[string]shared.UsageRow)
	for _, row := range rows {
		byApp[row.AppName] = row
		require.Equal(t, "iPhone", row.DeviceName)
	}
	require.Equal(t, "Entertainment", byApp["YouTube"].EffectiveCategory())
	require.Equal(t, "YT", byApp["YouTube"].DisplayName())
	require.Equal(t, shared.DefaultCategory, byApp["Safari"].EffectiveCategory())
	require.Equal(t, "Safari", byApp["Safari"].DisplayName())
}

func TestUncategorizedAppsOrderedByUsage(t *testing.T) {
	db := testutils.MakeTestDb(t)
	ctx := context.Background()
	device, err := db.DeviceGetOrCreate(ctx, "iPhone")
	require.NoError(t, err)

	start := time.Date(2026, time.February, 13, 10, 0, 0, 0, time.Local)
	intervals := []shared.UsageInterval{
		{DeviceId: device.Id, StartTime: start, EndTime: start.Add(time.Minute), AppName: "Rarely", DurationSeconds: 60},
		{DeviceId: device.Id, StartTime: start, EndTime: start.Add(time.Hour), AppName: "Often", DurationSeconds: 3600},
		{DeviceId: device.Id, StartTime: start, EndTime: start.Add(time.Hour), AppName: "Categorized", DurationSeconds: 7200},
	}
	require.NoError(t, db.IntervalsReplaceForDevice(ctx, device.Id, intervals, nil))
	require.NoError(t, db.CategoryUpsert(ctx, "Categorized", "Productivity", nil))

	appNames, err := db.UncategorizedApps(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Often", "Rarely"}, appNames)
}

func TestIntervalsReplaceIsFullReplacement(t *testing.T) {
	db := testutils.MakeTestDb(t)
	ctx := context.Background()
	device, err := db.DeviceGetOrCreate(ctx, "iPhone")
	require.NoError(t, err)

	start := time.Date(2026, time.February, 13, 10, 0, 0, 0, time.Local)
	first := []shared.UsageInterval{
		{DeviceId: device.Id, StartTime: start, EndTime: start.Add(time.Hour), AppName: "A", DurationSeconds: 3600},
	}
	require.NoError(t, db.IntervalsReplaceForDevice(ctx, device.Id, first, nil))

	second := []shared.UsageInterval{
		{DeviceId: device.Id, StartTime: start, EndTime: start.Add(time.Minute), AppName: "B", DurationSeconds: 60},
	}
	require.NoError(t, db.IntervalsReplaceForDevice(ctx, device.Id, second, nil))

	intervals, err := db.IntervalsForDevice(ctx, device.Id)
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	require.Equal(t, "B", intervals[0].AppName)
}
