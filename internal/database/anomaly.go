package database

import (
	"context"
	"fmt"

	"github.com/screenlog/screenlog/shared"
)

func (db *DB) AnomaliesForDevice(ctx context.Context, deviceId uint) ([]*shared.AnomalyEvent, error) {
	var anomalies []*shared.AnomalyEvent
	tx := db.WithContext(ctx).Where("device_id = ?", deviceId).
		Order("observed_at ASC, app_name ASC").Find(&anomalies)
	if tx.Error != nil {
		return nil, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return anomalies, nil
}

func (db *DB) AnomaliesCount(ctx context.Context) (int64, error) {
	var numAnomalies int64
	tx := db.WithContext(ctx).Model(&shared.AnomalyEvent{}).Count(&numAnomalies)
	if tx.Error != nil {
		return 0, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return numAnomalies, nil
}
