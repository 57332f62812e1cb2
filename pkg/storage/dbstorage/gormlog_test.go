package dbstorage

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLoggerTrace(t *testing.T) {
	var buf bytes.Buffer
	l := newGormLogger(zerolog.New(&buf).Level(zerolog.TraceLevel), time.Second)
	ctx := context.Background()
	stmt := func() (string, int64) { return `SELECT * FROM "states"`, 2 }

	l.Trace(ctx, time.Now(), stmt, nil)
	assert.Contains(t, buf.String(), `"level":"trace"`)
	assert.Contains(t, buf.String(), `"rows":2`)
	assert.Contains(t, buf.String(), `"component":"gorm"`)

	buf.Reset()
	l.Trace(ctx, time.Now(), stmt, errors.New("boom"))
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)

	buf.Reset()
	l.Trace(ctx, time.Now(), stmt, gorm.ErrRecordNotFound)
	assert.NotContains(t, buf.String(), `"level":"error"`)

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-2*time.Second), stmt, nil)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestGormLoggerLogMode(t *testing.T) {
	var buf bytes.Buffer
	l := newGormLogger(zerolog.New(&buf), 0)
	silent := l.LogMode(gormlogger.Silent)
	ctx := context.Background()

	silent.Error(ctx, "failed %d", 1)
	silent.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("boom"))
	assert.Empty(t, buf.String())

	l.LogMode(gormlogger.Warn).Info(ctx, "hidden")
	assert.Empty(t, buf.String())

	l.Warn(ctx, "slow %s", "query")
	assert.Contains(t, buf.String(), "slow query")
}
