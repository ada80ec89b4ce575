package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTracingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestDBTracingDisabledLeavesConnectionUntouched(t *testing.T) {
	db := openTracingTestDB(t)

	err := NewDBTracing(false, zap.NewNop()).Register(db)
	require.NoError(t, err)

	assert.Empty(t, db.Config.Plugins)
	assert.Nil(t, db.Callback().Query().Get(slowQueryCallback))
	assert.Nil(t, db.Callback().Query().Get(timingCallback))
}

func TestDBTracingEnabledInstrumentsConnection(t *testing.T) {
	db := openTracingTestDB(t)

	err := NewDBTracing(true, zap.NewNop()).Register(db)
	require.NoError(t, err)

	assert.Len(t, db.Config.Plugins, 1)
	assert.NotNil(t, db.Callback().Create().Get(timingCallback))
	assert.NotNil(t, db.Callback().Query().Get(timingCallback))
	assert.NotNil(t, db.Callback().Update().Get(slowQueryCallback))
	assert.NotNil(t, db.Callback().Delete().Get(slowQueryCallback))

	// The instrumented connection still serves statements.
	var n int
	require.NoError(t, db.Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)
}
