package mocks

import (
	"context"

	"github.com/you/clinicsvc/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	FindByIDFunc           func(ctx context.Context, id string) (*domain.User, error)
	FindByEmailFunc        func(ctx context.Context, email string) (*domain.User, error)
	CreateWithActivityFunc func(ctx context.Context, user *domain.User, activity *domain.AccountActivity, doctor *domain.Doctor) error
	UpdatePasswordFunc     func(ctx context.Context, id, passwordHash string) error
	DeleteCascadeFunc      func(ctx context.Context, id string) error
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// CreateWithActivity stores a user with its ledger row
func (m *MockUserRepository) CreateWithActivity(ctx context.Context, user *domain.User, activity *domain.AccountActivity, doctor *domain.Doctor) error {
	if m.CreateWithActivityFunc != nil {
		return m.CreateWithActivityFunc(ctx, user, activity, doctor)
	}
	// Default behavior: success with a fixed id
	if user.ID == "" {
		user.ID = "MOCK0001"
	}
	activity.UserID = user.ID
	if doctor != nil {
		doctor.UserID = user.ID
		doctor.ID = 1
	}
	return nil
}

// UpdatePassword replaces the stored hash
func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

// DeleteCascade removes the user and its owned rows
func (m *MockUserRepository) DeleteCascade(ctx context.Context, id string) error {
	if m.DeleteCascadeFunc != nil {
		return m.DeleteCascadeFunc(ctx, id)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
