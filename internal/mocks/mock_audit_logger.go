package mocks

import (
	"context"
	"sync"

	"github.com/you/clinicsvc/domain"
)

// MockAuditLogger records every event it receives
type MockAuditLogger struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func NewMockAuditLogger() *MockAuditLogger {
	return &MockAuditLogger{}
}

func (m *MockAuditLogger) LogEvent(_ context.Context, event *domain.AuditEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
}

// Events returns a copy of the recorded events
func (m *MockAuditLogger) Events() []domain.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditEvent(nil), m.events...)
}

// Has reports whether an event of the given type was recorded
func (m *MockAuditLogger) Has(eventType domain.AuditEventType) bool {
	for _, e := range m.Events() {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

var _ domain.AuditLogger = (*MockAuditLogger)(nil)
