package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type tracedRow struct {
	ID   uint
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestDBTracingPlugin_DisabledSkipsRegistration(t *testing.T) {
	db := openSQLite(t)
	p := NewDBTracingPlugin(DBTracingConfig{}, zap.NewNop())
	require.NoError(t, p.Register(db))
	assert.Nil(t, db.Callback().Query().Get("otel_timing:before_query"))
}

func TestDBTracingPlugin_RecordsSpansAndSlowQueries(t *testing.T) {
	recorder := withRecorder(t)
	core, logs := observer.New(zapcore.WarnLevel)

	db := openSQLite(t)
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond, DBSystem: "sqlite"}, zap.New(core))
	require.NoError(t, p.Register(db))
	assert.NotNil(t, db.Callback().Query().Get("otel_timing:after_query"))

	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	require.NoError(t, db.WithContext(context.Background()).Create(&tracedRow{Name: "a"}).Error)

	require.NotEmpty(t, recorder.Ended())
	assert.NotZero(t, logs.FilterMessage("slow query").Len())

	var create sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		if span.Name() == "gorm.Create" {
			create = span
		}
	}
	require.NotNil(t, create, "gorm.Create span not recorded")
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range create.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.Contains(t, attrs, attribute.Key("db.query_duration_ms"))
}
