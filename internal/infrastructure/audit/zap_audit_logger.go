package audit

import (
	"context"

	"github.com/you/clinicsvc/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapAuditLogger implements domain.AuditLogger on top of a structured zap logger.
// Failed events are logged at warn, consistency violations at error.
type ZapAuditLogger struct {
	log *zap.Logger
}

// NewZapAuditLogger creates an audit logger writing under the "audit" name
func NewZapAuditLogger(log *zap.Logger) domain.AuditLogger {
	return &ZapAuditLogger{log: log.Named("audit")}
}

// LogEvent implements domain.AuditLogger
func (l *ZapAuditLogger) LogEvent(_ context.Context, event *domain.AuditEvent) {
	if event == nil {
		return
	}

	fields := []zap.Field{
		zap.String("event_type", string(event.EventType)),
		zap.Time("timestamp", event.Timestamp),
		zap.Bool("success", event.Success),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.ErrorMsg != "" {
		fields = append(fields, zap.String("error", event.ErrorMsg))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}

	l.log.Log(levelFor(event), "audit event", fields...)
}

func levelFor(event *domain.AuditEvent) zapcore.Level {
	switch {
	case event.EventType == domain.InconsistencyEvent:
		return zapcore.ErrorLevel
	case !event.Success:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
