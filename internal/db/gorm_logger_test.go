package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedLogger(threshold time.Duration) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)

	return NewGormLogger(zap.New(core), threshold), logs
}

func TestGormLogger_Trace(t *testing.T) {
	query := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("error is logged", func(t *testing.T) {
		l, logs := newObservedLogger(time.Second)
		l.Trace(context.Background(), time.Now(), query, errors.New("boom"))

		assert.Equal(t, 1, logs.FilterMessage("gorm query failed").Len())
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		l, logs := newObservedLogger(time.Second)
		l.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("slow query is a warning", func(t *testing.T) {
		l, logs := newObservedLogger(time.Millisecond)
		l.Trace(context.Background(), time.Now().Add(-time.Second), query, nil)

		assert.Equal(t, 1, logs.FilterMessage("gorm slow query").Len())
	})

	t.Run("silent mode logs nothing", func(t *testing.T) {
		l, logs := newObservedLogger(time.Millisecond)
		silent := l.LogMode(gormlogger.Silent)
		silent.Trace(context.Background(), time.Now().Add(-time.Second), query, errors.New("boom"))

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("info mode logs every query", func(t *testing.T) {
		l, logs := newObservedLogger(time.Second)
		l.LogMode(gormlogger.Info).Trace(context.Background(), time.Now(), query, nil)

		assert.Equal(t, 1, logs.FilterMessage("gorm query").Len())
	})
}
