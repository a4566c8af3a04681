package shared

import (
	"time"
)

type Device struct {
	Id   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

type RawSnapshot struct {
	Id uint `json:"id" gorm:"primaryKey"`
	// DeviceId+Timestamp is the dedup key: re-ingesting an export that
	// contains an already-seen timestamp must not create a second row
	DeviceId   uint      `json:"device_id" gorm:"uniqueIndex:snapshotkey;not null"`
	Timestamp  time.Time `json:"timestamp" gorm:"uniqueIndex:snapshotkey;not null"`
	FileSource string    `json:"file_source"`
	CreatedAt  time.Time `json:"created_at"`
}

type RawSnapshotEntry struct {
	Id                uint   `json:"id" gorm:"primaryKey"`
	SnapshotId        uint   `json:"snapshot_id" gorm:"index;not null"`
	AppName           string `json:"app_name" gorm:"not null"`
	CumulativeSeconds int    `json:"cumulative_seconds" gorm:"not null"`
}

type UsageInterval struct {
	Id              uint      `json:"id" gorm:"primaryKey"`
	DeviceId        uint      `json:"device_id" gorm:"index;not null"`
	StartTime       time.Time `json:"start_time" gorm:"index"`
	EndTime         time.Time `json:"end_time"`
	AppName         string    `json:"app_name" gorm:"not null"`
	DurationSeconds int       `json:"duration_seconds" gorm:"not null"`
}

type AppCategory struct {
	Id       uint    `json:"id" gorm:"primaryKey"`
	AppName  string  `json:"app_name" gorm:"uniqueIndex;not null"`
	Category string  `json:"category" gorm:"not null"`
	Alias    *string `json:"alias"`
}

// AnomalyEvent records a cumulative counter that moved backwards within a
// single calendar day (e.g. history manually deleted on the device). The
// offending entry never becomes a usage interval, but we keep an audit
// trail instead of silently losing it.
type AnomalyEvent struct {
	Id          uint      `json:"id" gorm:"primaryKey"`
	DeviceId    uint      `json:"device_id" gorm:"index;not null"`
	ObservedAt  time.Time `json:"observed_at"`
	AppName     string    `json:"app_name"`
	DropSeconds int       `json:"drop_seconds"`
}

// UsageRow is the read-side shape consumed by reporting: one usage
// interval joined with its device name and optional category metadata.
type UsageRow struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	AppName         string    `json:"app_name"`
	DurationSeconds int       `json:"duration_seconds"`
	DeviceName      string    `json:"device_name"`
	Category        string    `json:"category"`
	Alias           string    `json:"alias"`
}

const DefaultCategory = "Uncategorized"

func (r UsageRow) EffectiveCategory() string {
	if r.Category == "" {
		return DefaultCategory
	}
	return r.Category
}

func (r UsageRow) DisplayName() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.AppName
}

func Chunks[k any](slice []k, chunkSize int) [][]k {
	var chunks [][]k
	for i := 0; i < len(slice); i += chunkSize {
		end := i + chunkSize
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[i:end])
	}
	return chunks
}
