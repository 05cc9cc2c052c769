package services

import (
	"context"
	"testing"
	"time"

	"github.com/you/clinicsvc/domain"
	"github.com/you/clinicsvc/internal/mocks"
)

const (
	testUserID   = "A1B2C3D4"
	testEmail    = "ana@clinic.test"
	testPassword = "password123"
)

// authMocks groups the collaborators of an AuthServiceImpl under test
type authMocks struct {
	users     *mocks.MockUserRepository
	activity  *mocks.MockActivityRepository
	doctors   *mocks.MockDoctorRepository
	sessions  *mocks.MockSessionRepository
	passwords *mocks.MockPasswordService
	tokens    *mocks.MockTokenService
	audit     *mocks.MockAuditLogger
}

func newAuthMocks() *authMocks {
	return &authMocks{
		users:     mocks.NewMockUserRepository(),
		activity:  mocks.NewMockActivityRepository(),
		doctors:   mocks.NewMockDoctorRepository(),
		sessions:  mocks.NewMockSessionRepository(),
		passwords: mocks.NewMockPasswordService(),
		tokens:    mocks.NewMockTokenService(),
		audit:     mocks.NewMockAuditLogger(),
	}
}

// createAuthServiceForTest creates an AuthService over the given mocks with the
// default lockout threshold of 3
func createAuthServiceForTest(t *testing.T, m *authMocks) *AuthServiceImpl {
	t.Helper()

	svc := NewAuthService(m.users, m.activity, m.doctors, m.sessions, m.passwords, m.tokens,
		m.audit, nil, nil, AuthConfig{LockoutThreshold: 3, MaxCASRetries: 5, AccessTTL: 15 * time.Minute})
	return svc.(*AuthServiceImpl)
}

// createValidUser creates a reception account whose password is testPassword
func createValidUser(t *testing.T) *domain.User {
	t.Helper()

	return &domain.User{
		ID:           testUserID,
		FirstName:    "Ana",
		LastName:     "Mora",
		Email:        testEmail,
		PasswordHash: "hashed_" + testPassword,
		Role:         domain.RoleReception,
		RegisteredAt: time.Now().Add(-24 * time.Hour),
	}
}

// createDoctorUser creates a doctor account with the same credentials
func createDoctorUser(t *testing.T) *domain.User {
	t.Helper()

	user := createValidUser(t)
	user.Role = domain.RoleDoctor
	return user
}

// withUser makes the user repository serve user by email and id
func (m *authMocks) withUser(user *domain.User) {
	m.users.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
		if email == user.Email {
			return user, nil
		}
		return nil, domain.ErrUserNotFound
	}
	m.users.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
		if id == user.ID {
			return user, nil
		}
		return nil, domain.ErrUserNotFound
	}
}

// withSession makes the session repository hold one session
func (m *authMocks) withSession(session *domain.Session) {
	m.sessions.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		if sessionID == session.ID {
			return session, nil
		}
		return nil, domain.ErrSessionNotFound
	}
}

// createValidSession creates a live session for userID
func createValidSession(t *testing.T, userID string) *domain.Session {
	t.Helper()

	return &domain.Session{
		ID:        "sess-0001",
		UserID:    userID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}
}

// createValidTokenClaims creates refresh claims for the session
func createValidTokenClaims(t *testing.T, userID string, role domain.Role, sessionID string) *domain.TokenClaims {
	t.Helper()

	now := time.Now().Unix()
	return &domain.TokenClaims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		IssuedAt:  now,
		ExpiresAt: now + 900,
	}
}

// assertAuthResult validates the structure and content of an AuthResult
func assertAuthResult(t *testing.T, result *domain.AuthResult, expectedUser *domain.User) {
	t.Helper()

	if result == nil {
		t.Fatal("AuthResult is nil")
	}
	if result.User == nil {
		t.Fatal("AuthResult.User is nil")
	}
	if result.User.ID != expectedUser.ID {
		t.Errorf("expected user ID %s, got %s", expectedUser.ID, result.User.ID)
	}
	if result.AccessToken == "" {
		t.Error("AccessToken is empty")
	}
	if result.RefreshToken == "" {
		t.Error("RefreshToken is empty")
	}
	if result.SessionID == "" {
		t.Error("SessionID is empty")
	}
	if result.ExpiresIn <= 0 {
		t.Errorf("expected positive ExpiresIn, got %d", result.ExpiresIn)
	}
}

// createTestContext creates a context for testing with timeout
func createTestContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
