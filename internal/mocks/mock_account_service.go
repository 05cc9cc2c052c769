package mocks

import (
	"context"

	"github.com/you/clinicsvc/domain"
)

// MockAccountService implements domain.AccountService interface for testing
type MockAccountService struct {
	RegisterFunc       func(ctx context.Context, account domain.NewAccount) (*domain.User, error)
	RegisterDoctorFunc func(ctx context.Context, account domain.NewAccount, profile domain.NewDoctorProfile) (*domain.User, *domain.Doctor, error)
	SetBlockedFunc     func(ctx context.Context, userID string, blocked bool) error
	SetActiveFunc      func(ctx context.Context, userID string, active bool) error
	ChangePasswordFunc func(ctx context.Context, userID, password string) error
	DeleteAccountFunc  func(ctx context.Context, userID string) error
}

// NewMockAccountService creates a new MockAccountService with default behaviors
func NewMockAccountService() *MockAccountService {
	return &MockAccountService{}
}

func (m *MockAccountService) Register(ctx context.Context, account domain.NewAccount) (*domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, account)
	}
	return &domain.User{ID: "MOCK0001", Email: account.Email, Role: account.Role}, nil
}

func (m *MockAccountService) RegisterDoctor(ctx context.Context, account domain.NewAccount, profile domain.NewDoctorProfile) (*domain.User, *domain.Doctor, error) {
	if m.RegisterDoctorFunc != nil {
		return m.RegisterDoctorFunc(ctx, account, profile)
	}
	return &domain.User{ID: "MOCK0001", Email: account.Email, Role: domain.RoleDoctor},
		&domain.Doctor{ID: 1, UserID: "MOCK0001", SpecialtyID: profile.SpecialtyID, Active: true}, nil
}

func (m *MockAccountService) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	if m.SetBlockedFunc != nil {
		return m.SetBlockedFunc(ctx, userID, blocked)
	}
	return nil
}

func (m *MockAccountService) SetActive(ctx context.Context, userID string, active bool) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, userID, active)
	}
	return nil
}

func (m *MockAccountService) ChangePassword(ctx context.Context, userID, password string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, userID, password)
	}
	return nil
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, userID string) error {
	if m.DeleteAccountFunc != nil {
		return m.DeleteAccountFunc(ctx, userID)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.AccountService = (*MockAccountService)(nil)
