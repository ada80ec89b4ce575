package telemetry

import (
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	startTimeKey      = "telemetry:query_start"
	slowQueryCallback = "telemetry:slow_query"
	timingCallback    = "telemetry:timing"
)

// DBTracing instruments a GORM connection with otelgorm spans plus a
// slow-query marker. Query variables are never recorded on spans.
type DBTracing struct {
	enabled       bool
	slowThreshold time.Duration
	logger        *zap.Logger
}

// NewDBTracing returns a DBTracing with a 200ms slow-query threshold.
func NewDBTracing(enabled bool, logger *zap.Logger) *DBTracing {
	return &DBTracing{
		enabled:       enabled,
		slowThreshold: 200 * time.Millisecond,
		logger:        logger,
	}
}

// Register installs the otelgorm plugin and the timing callbacks on db.
// A no-op when tracing is disabled.
func (t *DBTracing) Register(db *gorm.DB) error {
	if !t.enabled {
		t.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}

	if err := t.registerCallbacks(db); err != nil {
		return err
	}

	t.logger.Info("Database tracing enabled",
		zap.Duration("slow_query_threshold", t.slowThreshold),
	)
	return nil
}

func (t *DBTracing) registerCallbacks(db *gorm.DB) error {
	before := func(db *gorm.DB) {
		db.InstanceSet(startTimeKey, time.Now())
	}

	if err := db.Callback().Create().Before("gorm:create").Register(timingCallback, before); err != nil {
		return err
	}
	if err := db.Callback().Query().Before("gorm:query").Register(timingCallback, before); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register(timingCallback, before); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register(timingCallback, before); err != nil {
		return err
	}

	if err := db.Callback().Create().After("gorm:create").Register(slowQueryCallback, t.annotateSpan); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register(slowQueryCallback, t.annotateSpan); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register(slowQueryCallback, t.annotateSpan); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register(slowQueryCallback, t.annotateSpan); err != nil {
		return err
	}
	return nil
}

// annotateSpan enriches the otelgorm span with row counts, the table
// name, error status, and a slow-query event when the statement ran
// longer than the threshold.
func (t *DBTracing) annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if v, ok := db.InstanceGet(startTimeKey); ok {
		if start, ok := v.(time.Time); ok {
			if elapsed := time.Since(start); elapsed > t.slowThreshold {
				span.AddEvent("slow_query", trace.WithAttributes(
					attribute.Int64("duration_ms", elapsed.Milliseconds()),
					attribute.Int64("threshold_ms", t.slowThreshold.Milliseconds()),
				))
			}
		}
	}
}
