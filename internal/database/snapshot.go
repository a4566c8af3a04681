package database

import (
	"context"
	"fmt"

	"github.com/screenlog/screenlog/shared"
	"gorm.io/gorm"
)

// Chunk inserts to stay well under sqlite's bound-parameter limit
const entryInsertChunkSize = 500

// SnapshotCreateIfNew persists a snapshot and its entries in one
// transaction, keyed by (device_id, timestamp). Inserting a snapshot that
// already exists is a no-op and reports created=false.
func (db *DB) SnapshotCreateIfNew(ctx context.Context, snapshot shared.RawSnapshot, apps map[string]int) (bool, error) {
	created := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []shared.RawSnapshot
		resp := tx.Where("device_id = ?", snapshot.DeviceId).
			Where("timestamp = ?", snapshot.Timestamp).
			Limit(1).Find(&existing)
		if resp.Error != nil {
			return fmt.Errorf("resp.Error: %w", resp.Error)
		}
		if len(existing) > 0 {
			return nil
		}

		resp = tx.Create(&snapshot)
		if resp.Error != nil {
			return fmt.Errorf("resp.Error: %w", resp.Error)
		}

		entries := make([]shared.RawSnapshotEntry, 0, len(apps))
		for app, seconds := range apps {
			entries = append(entries, shared.RawSnapshotEntry{
				SnapshotId:        snapshot.Id,
				AppName:           app,
				CumulativeSeconds: seconds,
			})
		}
		for _, entriesChunk := range shared.Chunks(entries, entryInsertChunkSize) {
			resp := tx.Create(&entriesChunk)
			if resp.Error != nil {
				return fmt.Errorf("resp.Error: %w", resp.Error)
			}
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

func (db *DB) SnapshotsForDevice(ctx context.Context, deviceId uint) ([]*shared.RawSnapshot, error) {
	var snapshots []*shared.RawSnapshot
	tx := db.WithContext(ctx).Where("device_id = ?", deviceId).Order("timestamp ASC").Find(&snapshots)
	if tx.Error != nil {
		return nil, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return snapshots, nil
}

// SnapshotEntriesForDevice loads every entry belonging to the device's
// snapshots in a single query, keyed by snapshot id then app name.
func (db *DB) SnapshotEntriesForDevice(ctx context.Context, deviceId uint) (map[uint]map[string]int, error) {
	var entries []shared.RawSnapshotEntry
	tx := db.WithContext(ctx).
		Joins("JOIN raw_snapshots ON raw_snapshots.id = raw_snapshot_entries.snapshot_id").
		Where("raw_snapshots.device_id = ?", deviceId).
		Find(&entries)
	if tx.Error != nil {
		return nil, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	bySnapshot := make(map[uint]map[string]int)
	for _, entry := range entries {
		if bySnapshot[entry.SnapshotId] == nil {
			bySnapshot[entry.SnapshotId] = make(map[string]int)
		}
		bySnapshot[entry.SnapshotId][entry.AppName] = entry.CumulativeSeconds
	}

	return bySnapshot, nil
}

func (db *DB) SnapshotsCount(ctx context.Context) (int64, error) {
	var numSnapshots int64
	tx := db.WithContext(ctx).Model(&shared.RawSnapshot{}).Count(&numSnapshots)
	if tx.Error != nil {
		return 0, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return numSnapshots, nil
}
