package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

// RegisterDBMetrics records query durations and observes the connection pool of db.
func RegisterDBMetrics(db *gorm.DB, meter metric.Meter) error {
	duration, err := NewHistogram(meter, "db_query_duration_seconds", "Database query duration", "s",
		0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5)
	if err != nil {
		return err
	}
	failures, err := NewCounter(meter, "db_query_errors_total", "Failed database queries", "{query}")
	if err != nil {
		return err
	}

	err = registerAround(db, "labstock_metrics", markQueryStart, func(op string) func(*gorm.DB) {
		return func(db *gorm.DB) {
			ctx := db.Statement.Context
			elapsed, ok := queryElapsed(ctx)
			if !ok {
				return
			}
			attrs := []attribute.KeyValue{
				attribute.String("operation", op),
				attribute.String("table", db.Statement.Table),
			}
			duration.RecordDuration(ctx, elapsed, attrs...)
			if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
				failures.Inc(ctx, attrs...)
			}
		}
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	open, err := meter.Int64ObservableGauge("db_pool_open_connections", metric.WithDescription("Open connections by state"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_count_total", metric.WithDescription("Connections waited for"))
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(open, int64(stats.InUse), metric.WithAttributes(attribute.String("state", "in_use")))
		o.ObserveInt64(open, int64(stats.Idle), metric.WithAttributes(attribute.String("state", "idle")))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, waits)
	return err
}
