package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQuery = 200 * time.Millisecond

// zapGorm routes gorm's logging through zap.
type zapGorm struct {
	log   *zap.Logger
	level logger.LogLevel
}

func newGormLogger(log *zap.Logger) logger.Interface {
	return &zapGorm{log: log.WithOptions(zap.AddCallerSkip(3)), level: logger.Warn}
}

func (z *zapGorm) LogMode(level logger.LogLevel) logger.Interface {
	c := *z
	c.level = level
	return &c
}

func (z *zapGorm) Info(_ context.Context, msg string, args ...interface{}) {
	if z.level >= logger.Info {
		z.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (z *zapGorm) Warn(_ context.Context, msg string, args ...interface{}) {
	if z.level >= logger.Warn {
		z.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (z *zapGorm) Error(_ context.Context, msg string, args ...interface{}) {
	if z.level >= logger.Error {
		z.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (z *zapGorm) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if z.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && z.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		z.log.Error("query failed", zap.Error(err), zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	case elapsed > slowQuery && z.level >= logger.Warn:
		sql, rows := fc()
		z.log.Warn("slow query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	case z.level >= logger.Info:
		sql, rows := fc()
		z.log.Debug("query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	}
}
