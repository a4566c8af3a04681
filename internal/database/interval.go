package database

import (
	"context"
	"fmt"

	"github.com/screenlog/screenlog/shared"
	"gorm.io/gorm"
)

const intervalInsertChunkSize = 500

// IntervalsReplaceForDevice deletes every stored interval and anomaly
// event for the device and writes the freshly computed replacement set in
// one transaction (full rebuild, never a partial merge).
func (db *DB) IntervalsReplaceForDevice(ctx context.Context, deviceId uint, intervals []shared.UsageInterval, anomalies []shared.AnomalyEvent) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resp := tx.Where("device_id = ?", deviceId).Delete(&shared.UsageInterval{})
		if resp.Error != nil {
			return fmt.Errorf("resp.Error: %w", resp.Error)
		}
		resp = tx.Where("device_id = ?", deviceId).Delete(&shared.AnomalyEvent{})
		if resp.Error != nil {
			return fmt.Errorf("resp.Error: %w", resp.Error)
		}

		for _, chunk := range shared.Chunks(intervals, intervalInsertChunkSize) {
			resp := tx.Create(&chunk)
			if resp.Error != nil {
				return fmt.Errorf("resp.Error: %w", resp.Error)
			}
		}
		for _, chunk := range shared.Chunks(anomalies, intervalInsertChunkSize) {
			resp := tx.Create(&chunk)
			if resp.Error != nil {
				return fmt.Errorf("resp.Error: %w", resp.Error)
			}
		}
		return nil
	})
}

func (db *DB) IntervalsForDevice(ctx context.Context, deviceId uint) ([]*shared.UsageInterval, error) {
	var intervals []*shared.UsageInterval
	tx := db.WithContext(ctx).Where("device_id = ?", deviceId).
		Order("start_time ASC, app_name ASC").Find(&intervals)
	if tx.Error != nil {
		return nil, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return intervals, nil
}

func (db *DB) IntervalsCount(ctx context.Context) (int64, error) {
	var numIntervals int64
	tx := db.WithContext(ctx).Model(&shared.UsageInterval{}).Count(&numIntervals)
	if tx.Error != nil {
		return 0, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return numIntervals, nil
}

// UsageReport is the read-side query consumed by the reporting layer:
// intervals joined with device names and optional category metadata.
// Unmapped apps surface with an empty category (rendered as
// "Uncategorized" by shared.UsageRow).
func (db *DB) UsageReport(ctx context.Context) ([]shared.UsageRow, error) {
	var rows []shared.UsageRow
	tx := db.WithContext(ctx).
		Table("usage_intervals").
		Select(`usage_intervals.start_time, usage_intervals.end_time,
			usage_intervals.app_name, usage_intervals.duration_seconds,
			devices.name AS device_name,
			COALESCE(app_categories.category, '') AS category,
			COALESCE(app_categories.alias, '') AS alias`).
		Joins("JOIN devices ON devices.id = usage_intervals.device_id").
		Joins("LEFT JOIN app_categories ON app_categories.app_name = usage_intervals.app_name").
		Order("usage_intervals.start_time ASC").
		Scan(&rows)
	if tx.Error != nil {
		return nil, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return rows, nil
}
