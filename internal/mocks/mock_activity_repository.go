package mocks

import (
	"context"
	"sync"

	"github.com/you/clinicsvc/domain"
)

// MockActivityRepository implements domain.ActivityRepository for testing.
// Without func overrides it behaves like a single-process ledger: rows set with
// Put are returned by FindByUserID and CompareAndSwap checks the guarded fields.
type MockActivityRepository struct {
	FindByUserIDFunc   func(ctx context.Context, userID string) (*domain.AccountActivity, error)
	CompareAndSwapFunc func(ctx context.Context, expected, next domain.AccountActivity) (bool, error)

	mu   sync.Mutex
	rows map[string]domain.AccountActivity
}

// NewMockActivityRepository creates a new MockActivityRepository with an empty ledger
func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{rows: make(map[string]domain.AccountActivity)}
}

// Put stores a ledger row (test helper)
func (m *MockActivityRepository) Put(activity domain.AccountActivity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[activity.UserID] = activity
}

// Get returns the stored ledger row (test helper)
func (m *MockActivityRepository) Get(userID string) (domain.AccountActivity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[userID]
	return a, ok
}

// FindByUserID returns the ledger row for a user
func (m *MockActivityRepository) FindByUserID(ctx context.Context, userID string) (*domain.AccountActivity, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	a, ok := m.Get(userID)
	if !ok {
		return nil, domain.ErrActivityNotFound
	}
	return &a, nil
}

// CompareAndSwap writes next when the stored row still matches expected
func (m *MockActivityRepository) CompareAndSwap(ctx context.Context, expected, next domain.AccountActivity) (bool, error) {
	if m.CompareAndSwapFunc != nil {
		return m.CompareAndSwapFunc(ctx, expected, next)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.rows[expected.UserID]
	if !ok || current.Active != expected.Active || current.Blocked != expected.Blocked || current.FailedAttempts != expected.FailedAttempts {
		return false, nil
	}
	next.UserID = expected.UserID
	m.rows[expected.UserID] = next
	return true, nil
}

// Compile-time interface compliance verification
var _ domain.ActivityRepository = (*MockActivityRepository)(nil)
