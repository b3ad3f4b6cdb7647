package sheet

import (
	"context"
	"time"

	"sheet_lms_backend/pkg/logger"
	"sheet_lms_backend/pkg/monitoring"
	"sheet_lms_backend/pkg/tracing"

	"go.uber.org/zap"
)

// Instrumented 为任意 Store 增加指标、链路追踪和失败日志
type Instrumented struct {
	next Store
}

func Instrument(next Store) *Instrumented {
	return &Instrumented{next: next}
}

func (s *Instrumented) observe(ctx context.Context, op, table string, fn func(context.Context) error) error {
	start := time.Now()
	ctx, span := tracing.StartRowStoreSpan(ctx, op, table)
	err := fn(ctx)
	tracing.EndSpan(span, err)
	monitoring.ObserveRowStore(op, table, start, err)
	if err != nil {
		logger.Log.Error("row store call failed",
			zap.String("op", op),
			zap.String("table", table),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
	}
	return err
}

func (s *Instrumented) ReadAll(ctx context.Context, table string) ([]Record, error) {
	var records []Record
	err := s.observe(ctx, "read", table, func(ctx context.Context) error {
		var err error
		records, err = s.next.ReadAll(ctx, table)
		return err
	})
	return records, err
}

func (s *Instrumented) Append(ctx context.Context, table string, values []string) error {
	return s.observe(ctx, "append", table, func(ctx context.Context) error {
		return s.next.Append(ctx, table, values)
	})
}

func (s *Instrumented) Overwrite(ctx context.Context, table string, position int, values []string) error {
	return s.observe(ctx, "overwrite", table, func(ctx context.Context) error {
		return s.next.Overwrite(ctx, table, position, values)
	})
}

func (s *Instrumented) FindPosition(ctx context.Context, table, column, value string) (int, bool, error) {
	var (
		pos   int
		found bool
	)
	err := s.observe(ctx, "find_position", table, func(ctx context.Context) error {
		var err error
		pos, found, err = s.next.FindPosition(ctx, table, column, value)
		return err
	})
	return pos, found, err
}

func (s *Instrumented) WriteHeader(ctx context.Context, table string, columns []string) error {
	return s.observe(ctx, "header", table, func(ctx context.Context) error {
		return s.next.WriteHeader(ctx, table, columns)
	})
}
