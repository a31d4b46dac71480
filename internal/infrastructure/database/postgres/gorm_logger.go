package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// gormLogrusLogger routes gorm's query log through logrus
type gormLogrusLogger struct {
	logger        logrus.FieldLogger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogrusLogger(logger logrus.FieldLogger, debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return &gormLogrusLogger{
		logger:        logger,
		level:         level,
		slowThreshold: defaultSlowThreshold,
	}
}

func (l *gormLogrusLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cloned := *l
	cloned.level = level
	return &cloned
}

func (l *gormLogrusLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogrusLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.logger.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogrusLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.logger.Error(fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogrusLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level == gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	fields := func() logrus.Fields {
		sql, rows := fc()
		return logrus.Fields{"elapsed": elapsed, "rows": rows, "sql": sql}
	}

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.WithFields(fields()).WithError(err).Error("GORM query failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		l.logger.WithFields(fields()).WithField("slow_threshold", l.slowThreshold).Warn("GORM slow query")
	case l.level >= gormlogger.Info:
		l.logger.WithFields(fields()).Debug("GORM query")
	}
}
