package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/screenlog/screenlog/shared"
	"gorm.io/gorm"
)

func (db *DB) DeviceGetOrCreate(ctx context.Context, name string) (*shared.Device, error) {
	var device shared.Device
	tx := db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&device)
	if tx.Error != nil {
		return nil, fmt.Errorf("tx.Error: %w", tx.Error)
	}
	if tx.RowsAffected > 0 {
		return &device, nil
	}

	device = shared.Device{Name: name}
	tx = db.WithContext(ctx).Create(&device)
	if tx.Error != nil {
		return nil, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return &device, nil
}

func (db *DB) DevicesCount(ctx context.Context) (int64, error) {
	var numDevices int64 = 0
	tx := db.WithContext(ctx).Model(&shared.Device{}).Count(&numDevices)
	if tx.Error != nil {
		return 0, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return numDevices, nil
}

func (db *DB) Devices(ctx context.Context) ([]*shared.Device, error) {
	var devices []*shared.Device
	tx := db.WithContext(ctx).Order("name ASC").Find(&devices)
	if tx.Error != nil {
		return nil, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return devices, nil
}

func (db *DB) DeviceByName(ctx context.Context, name string) (*shared.Device, error) {
	var device shared.Device
	tx := db.WithContext(ctx).Where("name = ?", name).First(&device)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no device named %q", name)
		}
		return nil, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return &device, nil
}
