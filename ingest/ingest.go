// Package ingest is the batch orchestrator: it scans the configured data
// directory for export files, persists their snapshots with
// (device, timestamp) deduplication, archives consumed files, and
// triggers an interval rebuild for every device that received new data.
// Running it twice with no new files changes nothing.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/screenlog/screenlog/internal/database"
	"github.com/screenlog/screenlog/parser"
	"github.com/screenlog/screenlog/rebuild"
	"github.com/screenlog/screenlog/sctx"
	"github.com/screenlog/screenlog/shared"
)

type Summary struct {
	RunId            string `json:"run_id"`
	FilesProcessed   int    `json:"files_processed"`
	SnapshotsAdded   int    `json:"snapshots_added"`
	DevicesRebuilt   int    `json:"devices_rebuilt"`
	IntervalsRebuilt int    `json:"intervals_rebuilt"`
}

// Run executes one ingestion pass. Per-file errors are logged and
// skipped, never propagated: a failed file stays in place for the next
// run, and everything committed before it stays committed.
func Run(ctx context.Context, db *database.DB, config sctx.ClientConfig) (Summary, error) {
	logger := sctx.GetLogger()
	summary := Summary{RunId: uuid.NewString()}

	if _, err := os.Stat(config.DataDir); os.IsNotExist(err) {
		logger.Infof("run %s: data directory %s does not exist, nothing to ingest", summary.RunId, config.DataDir)
		return summary, nil
	}

	deviceFiles, deviceFolders, err := scanDataDir(config)
	if err != nil {
		return summary, fmt.Errorf("scanDataDir: %w", err)
	}

	deviceNames := lo.Keys(deviceFiles)
	sort.Strings(deviceNames)

	for _, deviceName := range deviceNames {
		device, err := db.DeviceGetOrCreate(ctx, deviceName)
		if err != nil {
			logger.Errorf("run %s: failed to resolve device %q: %v", summary.RunId, deviceName, err)
			continue
		}

		dirty := false
		for _, filePath := range deviceFiles[deviceName] {
			added, err := ingestFile(ctx, db, config, device, filePath)
			// Snapshots committed before a failure are durable, so they
			// still count and still mark the device dirty; the file
			// itself stays un-archived for a retry
			summary.SnapshotsAdded += added
			if added > 0 {
				dirty = true
			}
			if err != nil {
				logger.Errorf("run %s: failed to process %s: %v", summary.RunId, filePath, err)
				continue
			}
			summary.FilesProcessed++
		}

		if dirty {
			numIntervals, err := rebuild.Device(ctx, db, device.Id)
			if err != nil {
				logger.Errorf("run %s: failed to rebuild intervals for device %q: %v", summary.RunId, deviceName, err)
				continue
			}
			summary.DevicesRebuilt++
			summary.IntervalsRebuilt += numIntervals
			logger.Infof("run %s: rebuilt %d intervals for device %q", summary.RunId, numIntervals, deviceName)
		}
	}

	cleanupEmptyFolders(deviceFolders)

	logger.Infof("run %s: ingestion complete: %d files, %d new snapshots, %d devices rebuilt",
		summary.RunId, summary.FilesProcessed, summary.SnapshotsAdded, summary.DevicesRebuilt)
	return summary, nil
}

// scanDataDir maps device names to their candidate input files. A
// directory under the root is a device folder ("Activity iPhone 13 mini"
// with exports inside); a .txt/.md file directly under the root is its
// own candidate with the device name derived from the filename.
func scanDataDir(config sctx.ClientConfig) (map[string][]string, []string, error) {
	reserved := make(map[string]bool)
	for _, name := range config.ReservedDirNames {
		reserved[name] = true
	}
	reserved[config.ArchiveDirName] = true

	entries, err := os.ReadDir(config.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("os.ReadDir: %w", err)
	}

	deviceFiles := make(map[string][]string)
	var deviceFolders []string

	for _, entry := range entries {
		name := entry.Name()
		if reserved[name] || strings.HasPrefix(name, ".") {
			continue
		}
		entryPath := filepath.Join(config.DataDir, name)

		if entry.IsDir() {
			deviceName := deriveDeviceName(name, config.DeviceNamePrefix)
			files, err := candidateFiles(entryPath)
			if err != nil {
				sctx.GetLogger().Warnf("failed to list device folder %s: %v", entryPath, err)
				continue
			}
			if len(files) > 0 {
				deviceFiles[deviceName] = append(deviceFiles[deviceName], files...)
			}
			deviceFolders = append(deviceFolders, entryPath)
			continue
		}

		if isCandidateFile(name) {
			base := strings.TrimSuffix(name, filepath.Ext(name))
			deviceName := deriveDeviceName(base, config.DeviceNamePrefix)
			deviceFiles[deviceName] = append(deviceFiles[deviceName], entryPath)
		}
	}

	for _, files := range deviceFiles {
		sort.Strings(files)
	}

	return deviceFiles, deviceFolders, nil
}

func deriveDeviceName(name string, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(name, prefix))
}

func isCandidateFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".txt" || ext == ".md"
}

func candidateFiles(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && isCandidateFile(entry.Name()) {
			files = append(files, filepath.Join(dirPath, entry.Name()))
		}
	}
	return files, nil
}

// ingestFile parses one export, persists its new snapshots, and moves the
// file to the archive. Returns the number of newly inserted snapshots.
// Re-ingesting an already-seen export inserts nothing and marks nothing
// dirty.
func ingestFile(ctx context.Context, db *database.DB, config sctx.ClientConfig, device *shared.Device, filePath string) (int, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("os.ReadFile: %w", err)
	}

	added := 0
	numSnapshots := 0
	for ts, apps := range parser.Parse(string(content)) {
		numSnapshots++
		created, err := db.SnapshotCreateIfNew(ctx, shared.RawSnapshot{
			DeviceId:   device.Id,
			Timestamp:  ts,
			FileSource: filepath.Base(filePath),
		}, apps)
		if err != nil {
			return added, fmt.Errorf("db.SnapshotCreateIfNew: %w", err)
		}
		if created {
			added++
		}
	}
	if numSnapshots == 0 {
		sctx.GetLogger().Infof("no valid snapshots found in %s", filePath)
	}

	if err := archiveFile(config, filePath); err != nil {
		return added, fmt.Errorf("archiveFile: %w", err)
	}

	return added, nil
}

// archiveFile moves a consumed file into the archive directory, appending
// a numeric suffix on name collision rather than overwriting.
func archiveFile(config sctx.ClientConfig, filePath string) error {
	archiveDir := filepath.Join(config.DataDir, config.ArchiveDirName)
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	fileName := filepath.Base(filePath)
	destPath := filepath.Join(archiveDir, fileName)
	if _, err := os.Stat(destPath); err == nil {
		ext := filepath.Ext(fileName)
		base := strings.TrimSuffix(fileName, ext)
		for counter := 1; ; counter++ {
			destPath = filepath.Join(archiveDir, fmt.Sprintf("%s_%d%s", base, counter, ext))
			if _, err := os.Stat(destPath); os.IsNotExist(err) {
				break
			}
		}
	}

	if err := os.Rename(filePath, destPath); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}
	return nil
}

// cleanupEmptyFolders removes device folders whose files were all
// archived, ignoring platform housekeeping files.
func cleanupEmptyFolders(folders []string) {
	for _, folder := range folders {
		entries, err := os.ReadDir(folder)
		if err != nil {
			continue
		}
		remaining := 0
		for _, entry := range entries {
			if entry.Name() != ".DS_Store" {
				remaining++
			}
		}
		if remaining == 0 {
			if err := os.RemoveAll(folder); err != nil {
				sctx.GetLogger().Warnf("failed to remove empty device folder %s: %v", folder, err)
			} else {
				sctx.GetLogger().Infof("removed empty device folder %s", folder)
			}
		}
	}
}
