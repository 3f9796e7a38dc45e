package logger

import (
	"context"

	common_models "go-analytics/internal/common/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field keys picked up by DBCore when present on a log entry.
const (
	FieldRequestID = "request_id"
	FieldOperation = "op"
)

// DBCore is a custom Zap Core that forwards entries to the async DB writer
type DBCore struct {
	zapcore.Core
	writer *DBLogWriter
	fields []zapcore.Field
}

// NewDBCore wraps an existing core (like console logger) and adds DB logging
func NewDBCore(baseCore zapcore.Core, writer *DBLogWriter) zapcore.Core {
	return &DBCore{
		Core:   baseCore,
		writer: writer,
	}
}

// With keeps the DB tee on child loggers created with logger.With(...)
func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &DBCore{
		Core:   c.Core.With(fields),
		writer: c.writer,
		fields: merged,
	}
}

// Write is called for every log entry
func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	var requestID, operation string
	for _, f := range append(c.fields, fields...) {
		switch f.Key {
		case FieldRequestID:
			requestID = f.String
		case FieldOperation:
			operation = f.String
		}
	}

	// Function name is only set when the logger was built with AddCaller()
	c.writer.AddLog(LogEntry{
		Level:     entry.Level,
		Message:   entry.Message,
		RequestID: requestID,
		Operation: operation,
		Caller:    entry.Caller.Function,
	})

	return c.Core.Write(entry, fields)
}

// Check decides if we should log this level
func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// For returns log tagged with the request id carried by ctx, if any.
func For(ctx context.Context, log *zap.Logger) *zap.Logger {
	if id, ok := ctx.Value(common_models.RequestIDKey).(string); ok && id != "" {
		return log.With(zap.String(FieldRequestID, id))
	}
	return log
}
