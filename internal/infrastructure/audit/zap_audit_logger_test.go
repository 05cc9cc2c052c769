package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/clinicsvc/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAuditLogger_LogEvent(t *testing.T) {
	tests := []struct {
		name          string
		event         *domain.AuditEvent
		expectedLevel zapcore.Level
	}{
		{
			name:          "successful login",
			event:         domain.NewAuditEvent(domain.UserLoginEvent, "AB12CD34").WithEmail("a@clinic.test"),
			expectedLevel: zapcore.InfoLevel,
		},
		{
			name: "failed login",
			event: domain.NewAuditEvent(domain.UserLoginFailureEvent, "AB12CD34").
				WithError(domain.ErrInvalidCredentials).
				WithMetadata("failed_attempts", 2),
			expectedLevel: zapcore.WarnLevel,
		},
		{
			name: "inconsistency",
			event: domain.NewAuditEvent(domain.InconsistencyEvent, "AB12CD34").
				WithError(errors.New("missing activity row")),
			expectedLevel: zapcore.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			logger := NewZapAuditLogger(zap.New(core))

			logger.LogEvent(context.Background(), tt.event)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.expectedLevel, entry.Level)
			assert.Equal(t, "audit", entry.LoggerName)

			fields := entry.ContextMap()
			assert.Equal(t, string(tt.event.EventType), fields["event_type"])
			assert.Equal(t, tt.event.UserID, fields["user_id"])
			assert.Equal(t, tt.event.Success, fields["success"])
			if tt.event.ErrorMsg != "" {
				assert.Equal(t, tt.event.ErrorMsg, fields["error"])
			}
		})
	}
}

func TestZapAuditLogger_NilEvent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	NewZapAuditLogger(zap.New(core)).LogEvent(context.Background(), nil)
	assert.Zero(t, logs.Len())
}
