package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn() (string, int64) { return "SELECT 1", 1 }

func TestGormLogger_LogsFailedQueries(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	l := newGormLogrusLogger(logger, false)

	l.Trace(context.Background(), time.Now(), sqlFn, errors.New("relation does not exist"))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "SELECT 1", entry.Data["sql"])
}

func TestGormLogger_IgnoresRecordNotFound(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	l := newGormLogrusLogger(logger, false)

	l.Trace(context.Background(), time.Now(), sqlFn, gorm.ErrRecordNotFound)

	assert.Empty(t, hook.AllEntries())
}

func TestGormLogger_WarnsOnSlowQueries(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	l := newGormLogrusLogger(logger, false)

	l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestGormLogger_SilentMode(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	l := newGormLogrusLogger(logger, true).LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))
	l.Error(context.Background(), "boom %d", 1)

	assert.Empty(t, hook.AllEntries())
}
