package database

import (
	"context"
	"fmt"

	"github.com/screenlog/screenlog/shared"
	"gorm.io/gorm/clause"
)

// CategoryUpsert sets the category (and optional alias) for an app name,
// overwriting any previous mapping.
func (db *DB) CategoryUpsert(ctx context.Context, appName string, category string, alias *string) error {
	mapping := shared.AppCategory{AppName: appName, Category: category, Alias: alias}
	tx := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "app_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "alias"}),
	}).Create(&mapping)
	if tx.Error != nil {
		return fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return nil
}

func (db *DB) Categories(ctx context.Context) ([]*shared.AppCategory, error) {
	var categories []*shared.AppCategory
	tx := db.WithContext(ctx).Order("app_name ASC").Find(&categories)
	if tx.Error != nil {
		return nil, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return categories, nil
}

// UncategorizedApps lists app names that appear in usage_intervals but
// have no category mapping, most used first.
func (db *DB) UncategorizedApps(ctx context.Context) ([]string, error) {
	var appNames []string
	tx := db.WithContext(ctx).
		Table("usage_intervals").
		Select("usage_intervals.app_name").
		Joins("LEFT JOIN app_categories ON app_categories.app_name = usage_intervals.app_name").
		Where("app_categories.category IS NULL").
		Group("usage_intervals.app_name").
		Order("SUM(usage_intervals.duration_seconds) DESC").
		Scan(&appNames)
	if tx.Error != nil {
		return nil, fmt.Errorf("tx.Error: %w", tx.Error)
	}

	return appNames, nil
}
