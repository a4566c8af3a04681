package testutils

import (
	"path/filepath"
	"testing"

	"github.com/screenlog/screenlog/internal/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MakeTestDb opens a throwaway sqlite DB under the test's temp dir with
// the full schema migrated. It also points SCREENLOG_PATH at a temp dir
// so tests never touch the real ~/.screenlog.
func MakeTestDb(t testing.TB) *database.DB {
	t.Setenv("SCREENLOG_PATH", t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "screenlog-test.db")
	db, err := database.OpenSQLite("file:"+dbPath+"?mode=rwc", &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AddDatabaseTables())
	t.Cleanup(func() { _ = db.Close() })
	return db
}
