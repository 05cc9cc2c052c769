package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/you/clinicsvc/domain"
	"github.com/you/clinicsvc/internal/infrastructure/metrics"
)

func TestAuthServiceImpl_Login(t *testing.T) {
	tests := []struct {
		name           string
		email          string
		password       string
		activity       *domain.AccountActivity
		setupMocks     func(*authMocks)
		expectedError  error
		expectActivity *domain.AccountActivity
		expectEvent    domain.AuditEventType
	}{
		{
			name:           "correct password clears the counter",
			email:          testEmail,
			password:       testPassword,
			activity:       &domain.AccountActivity{UserID: testUserID, Active: true, FailedAttempts: 2},
			expectActivity: &domain.AccountActivity{Active: true},
			expectEvent:    domain.UserLoginEvent,
		},
		{
			name:           "wrong password increments the counter",
			email:          testEmail,
			password:       "nope",
			activity:       &domain.AccountActivity{UserID: testUserID, Active: true, FailedAttempts: 1},
			expectedError:  domain.ErrInvalidCredentials,
			expectActivity: &domain.AccountActivity{Active: true, FailedAttempts: 2},
			expectEvent:    domain.UserLoginFailureEvent,
		},
		{
			name:           "wrong password at the threshold locks",
			email:          testEmail,
			password:       "nope",
			activity:       &domain.AccountActivity{UserID: testUserID, Active: true, FailedAttempts: 2},
			expectedError:  domain.ErrAccountLocked,
			expectActivity: &domain.AccountActivity{Active: true, Blocked: true, FailedAttempts: 3},
			expectEvent:    domain.AccountLockedEvent,
		},
		{
			name:           "locked account refuses the correct password",
			email:          testEmail,
			password:       testPassword,
			activity:       &domain.AccountActivity{UserID: testUserID, Active: true, Blocked: true, FailedAttempts: 3},
			expectedError:  domain.ErrAccountLocked,
			expectActivity: &domain.AccountActivity{Active: true, Blocked: true, FailedAttempts: 3},
			expectEvent:    domain.UserLoginFailureEvent,
		},
		{
			name:           "inactive account is refused before the password",
			email:          testEmail,
			password:       testPassword,
			activity:       &domain.AccountActivity{UserID: testUserID, Active: false, Blocked: true},
			expectedError:  domain.ErrAccountInactive,
			expectActivity: &domain.AccountActivity{Active: false, Blocked: true},
			expectEvent:    domain.UserLoginFailureEvent,
		},
		{
			name:          "unknown email",
			email:         "ghost@clinic.test",
			password:      testPassword,
			activity:      &domain.AccountActivity{UserID: testUserID, Active: true},
			expectedError: domain.ErrInvalidCredentials,
			expectEvent:   domain.UserLoginFailureEvent,
		},
		{
			name:          "missing ledger row is an internal inconsistency",
			email:         testEmail,
			password:      testPassword,
			expectedError: domain.ErrInternalInconsistency,
			expectEvent:   domain.InconsistencyEvent,
		},
		{
			name:     "ledger read failure",
			email:    testEmail,
			password: testPassword,
			setupMocks: func(m *authMocks) {
				m.activity.FindByUserIDFunc = func(ctx context.Context, userID string) (*domain.AccountActivity, error) {
					return nil, errors.New("connection reset")
				}
			},
			expectedError: domain.ErrStorageUnavailable,
		},
		{
			name:     "user lookup failure",
			email:    testEmail,
			password: testPassword,
			setupMocks: func(m *authMocks) {
				m.users.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
					return nil, domain.NewStorageError("users.find", errors.New("timeout"))
				}
			},
			expectedError: domain.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newAuthMocks()
			m.withUser(createValidUser(t))
			if tt.activity != nil {
				m.activity.Put(*tt.activity)
			}
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}
			svc := createAuthServiceForTest(t, m)

			result, err := svc.Login(createTestContext(t), tt.email, tt.password)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
				if result != nil {
					t.Error("expected nil result on error")
				}
			} else {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				assertAuthResult(t, result, createValidUser(t))
			}

			if tt.expectActivity != nil {
				stored, _ := m.activity.Get(testUserID)
				if stored.Active != tt.expectActivity.Active ||
					stored.Blocked != tt.expectActivity.Blocked ||
					stored.FailedAttempts != tt.expectActivity.FailedAttempts {
					t.Errorf("expected ledger %+v, got %+v", *tt.expectActivity, stored)
				}
			}
			if tt.expectEvent != "" && !m.audit.Has(tt.expectEvent) {
				t.Errorf("expected audit event %s, got %+v", tt.expectEvent, m.audit.Events())
			}
		})
	}
}

func TestAuthServiceImpl_Login_LockoutSequence(t *testing.T) {
	m := newAuthMocks()
	m.withUser(createValidUser(t))
	m.activity.Put(domain.AccountActivity{UserID: testUserID, Active: true})
	svc := createAuthServiceForTest(t, m)
	ctx := createTestContext(t)

	expected := []error{
		domain.ErrInvalidCredentials,
		domain.ErrInvalidCredentials,
		domain.ErrAccountLocked,
		domain.ErrAccountLocked,
	}
	for i, want := range expected {
		if _, err := svc.Login(ctx, testEmail, "wrong"); !errors.Is(err, want) {
			t.Fatalf("attempt %d: expected %v, got %v", i+1, want, err)
		}
	}

	stored, _ := m.activity.Get(testUserID)
	if stored.FailedAttempts != 3 || !stored.Blocked || stored.BlockedAt == nil {
		t.Errorf("expected locked ledger with 3 attempts, got %+v", stored)
	}

	if _, err := svc.Login(ctx, testEmail, testPassword); !errors.Is(err, domain.ErrAccountLocked) {
		t.Errorf("expected correct password to be refused while locked, got %v", err)
	}
}

func TestAuthServiceImpl_Login_DoctorProfile(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*authMocks)
		expectID   *uint
		expectErr  error
	}{
		{
			name: "doctor id resolved from the profile",
			setupMocks: func(m *authMocks) {
				m.doctors.FindByUserIDFunc = func(ctx context.Context, userID string) (*domain.Doctor, error) {
					return &domain.Doctor{ID: 42, UserID: userID}, nil
				}
			},
			expectID: func() *uint { id := uint(42); return &id }(),
		},
		{
			name: "missing profile logs in without doctor id",
		},
		{
			name: "profile lookup failure",
			setupMocks: func(m *authMocks) {
				m.doctors.FindByUserIDFunc = func(ctx context.Context, userID string) (*domain.Doctor, error) {
					return nil, errors.New("db gone")
				}
			},
			expectErr: domain.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newAuthMocks()
			m.withUser(createDoctorUser(t))
			m.activity.Put(domain.AccountActivity{UserID: testUserID, Active: true})
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}
			var tokenDoctorID *uint
			m.tokens.GenerateAccessTokenFunc = func(userID string, role domain.Role, doctorID *uint, sessionID string) (string, error) {
				tokenDoctorID = doctorID
				return "access", nil
			}

			result, err := createAuthServiceForTest(t, m).Login(createTestContext(t), testEmail, testPassword)

			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.expectID == nil {
				if result.DoctorID != nil || tokenDoctorID != nil {
					t.Errorf("expected no doctor id, got %v", result.DoctorID)
				}
				return
			}
			if result.DoctorID == nil || *result.DoctorID != *tt.expectID {
				t.Errorf("expected doctor id %d, got %v", *tt.expectID, result.DoctorID)
			}
			if tokenDoctorID == nil || *tokenDoctorID != *tt.expectID {
				t.Errorf("expected token to carry doctor id %d", *tt.expectID)
			}
		})
	}
}

func TestAuthServiceImpl_Login_RedecidesAfterLostSwap(t *testing.T) {
	m := newAuthMocks()
	m.withUser(createValidUser(t))
	m.activity.Put(domain.AccountActivity{UserID: testUserID, Active: true, FailedAttempts: 1})

	// A competing login lands its failure between our read and our write.
	interfered := false
	m.activity.CompareAndSwapFunc = func(ctx context.Context, expected, next domain.AccountActivity) (bool, error) {
		if !interfered {
			interfered = true
			m.activity.Put(domain.AccountActivity{UserID: testUserID, Active: true, FailedAttempts: 2})
			return false, nil
		}
		m.activity.CompareAndSwapFunc = nil
		return m.activity.CompareAndSwap(ctx, expected, next)
	}

	_, err := createAuthServiceForTest(t, m).Login(createTestContext(t), testEmail, "wrong")

	if !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected the retry to see 2 failures and lock, got %v", err)
	}
	stored, _ := m.activity.Get(testUserID)
	if stored.FailedAttempts != 3 || !stored.Blocked {
		t.Errorf("expected 3 attempts and locked, got %+v", stored)
	}
}

func TestAuthServiceImpl_Login_GivesUpUnderContention(t *testing.T) {
	m := newAuthMocks()
	m.withUser(createValidUser(t))
	m.activity.Put(domain.AccountActivity{UserID: testUserID, Active: true})
	swaps := 0
	m.activity.CompareAndSwapFunc = func(ctx context.Context, expected, next domain.AccountActivity) (bool, error) {
		swaps++
		return false, nil
	}

	_, err := createAuthServiceForTest(t, m).Login(createTestContext(t), testEmail, testPassword)

	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if swaps != 5 {
		t.Errorf("expected 5 swap attempts, got %d", swaps)
	}
	if m.audit.Has(domain.UserLoginEvent) {
		t.Error("no session may be issued without a persisted ledger update")
	}
}

func TestAuthServiceImpl_Login_ConcurrentWrongPasswords(t *testing.T) {
	m := newAuthMocks()
	m.withUser(createValidUser(t))
	m.activity.Put(domain.AccountActivity{UserID: testUserID, Active: true})

	reg := prometheus.NewRegistry()
	met := metrics.New(reg)
	svc := NewAuthService(m.users, m.activity, m.doctors, m.sessions, m.passwords, m.tokens,
		m.audit, met, nil, AuthConfig{LockoutThreshold: 3, MaxCASRetries: 1000})

	const attempts = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		invalid int
		locked  int
		other   []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Login(context.Background(), testEmail, "wrong")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, domain.ErrInvalidCredentials):
				invalid++
			case errors.Is(err, domain.ErrAccountLocked):
				locked++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if invalid != 2 || locked != attempts-2 {
		t.Errorf("expected 2 invalid and %d locked, got %d and %d", attempts-2, invalid, locked)
	}
	stored, _ := m.activity.Get(testUserID)
	if stored.FailedAttempts != 3 || !stored.Blocked {
		t.Errorf("expected exactly 3 persisted failures and a lock, got %+v", stored)
	}
	if got := testutil.ToFloat64(met.AccountLockouts); got != 1 {
		t.Errorf("expected exactly one lockout, got %v", got)
	}
}

func TestAuthServiceImpl_RefreshToken(t *testing.T) {
	session := createValidSession(t, testUserID)

	tests := []struct {
		name          string
		token         string
		activity      domain.AccountActivity
		setupMocks    func(*authMocks)
		expectedError error
		expectDeleted bool
	}{
		{
			name:     "issues a new access token",
			token:    "valid_refresh_token",
			activity: domain.AccountActivity{UserID: testUserID, Active: true},
		},
		{
			name:          "invalid token",
			token:         "garbage",
			activity:      domain.AccountActivity{UserID: testUserID, Active: true},
			expectedError: domain.ErrTokenInvalid,
		},
		{
			name:     "session belongs to someone else",
			token:    "valid_refresh_token",
			activity: domain.AccountActivity{UserID: testUserID, Active: true},
			setupMocks: func(m *authMocks) {
				m.withSession(createValidSession(t, "OTHER001"))
			},
			expectedError: domain.ErrTokenInvalid,
		},
		{
			name:          "locked account loses its session",
			token:         "valid_refresh_token",
			activity:      domain.AccountActivity{UserID: testUserID, Active: true, Blocked: true, FailedAttempts: 3},
			expectedError: domain.ErrAccountLocked,
			expectDeleted: true,
		},
		{
			name:          "deactivated account loses its session",
			token:         "valid_refresh_token",
			activity:      domain.AccountActivity{UserID: testUserID, Active: false},
			expectedError: domain.ErrAccountInactive,
			expectDeleted: true,
		},
		{
			name:     "deleted account reads as an invalid token",
			token:    "valid_refresh_token",
			activity: domain.AccountActivity{UserID: testUserID, Active: true},
			setupMocks: func(m *authMocks) {
				m.users.FindByIDFunc = func(ctx context.Context, id string) (*domain.User, error) {
					return nil, domain.ErrUserNotFound
				}
			},
			expectedError: domain.ErrTokenInvalid,
			expectDeleted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newAuthMocks()
			user := createValidUser(t)
			m.withUser(user)
			m.withSession(session)
			m.activity.Put(tt.activity)
			m.tokens.ValidateRefreshTokenFunc = func(token string) (*domain.TokenClaims, error) {
				if token == "valid_refresh_token" {
					return createValidTokenClaims(t, testUserID, domain.RoleReception, session.ID), nil
				}
				return nil, domain.ErrTokenInvalid
			}
			deleted := false
			m.sessions.DeleteFunc = func(ctx context.Context, sessionID string) error {
				deleted = sessionID == session.ID
				return nil
			}
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}

			result, err := createAuthServiceForTest(t, m).RefreshToken(createTestContext(t), tt.token)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
			} else {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				assertAuthResult(t, result, user)
				if result.RefreshToken != tt.token {
					t.Errorf("expected refresh token to be kept")
				}
			}
			if deleted != tt.expectDeleted {
				t.Errorf("expected session deleted=%v, got %v", tt.expectDeleted, deleted)
			}
		})
	}
}

func TestAuthServiceImpl_Logout(t *testing.T) {
	t.Run("deletes the session and audits", func(t *testing.T) {
		m := newAuthMocks()
		m.withSession(createValidSession(t, testUserID))
		var deletedID string
		m.sessions.DeleteFunc = func(ctx context.Context, sessionID string) error {
			deletedID = sessionID
			return nil
		}

		if err := createAuthServiceForTest(t, m).Logout(createTestContext(t), "sess-0001"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if deletedID != "sess-0001" {
			t.Errorf("expected session to be deleted, got %q", deletedID)
		}
		if !m.audit.Has(domain.UserLogoutEvent) {
			t.Error("expected logout audit event")
		}
	})

	t.Run("unknown session is not an error", func(t *testing.T) {
		m := newAuthMocks()
		if err := createAuthServiceForTest(t, m).Logout(createTestContext(t), "missing"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if m.audit.Has(domain.UserLogoutEvent) {
			t.Error("no audit event expected for an unknown session")
		}
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		m := newAuthMocks()
		m.sessions.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
			return nil, domain.NewStorageError("sessions.find", errors.New("redis down"))
		}
		err := createAuthServiceForTest(t, m).Logout(createTestContext(t), "sess-0001")
		if !errors.Is(err, domain.ErrStorageUnavailable) {
			t.Fatalf("expected storage error, got %v", err)
		}
	})
}

func TestAuthServiceImpl_Login_CreatesSession(t *testing.T) {
	m := newAuthMocks()
	m.withUser(createValidUser(t))
	m.activity.Put(domain.AccountActivity{UserID: testUserID, Active: true})
	var stored *domain.Session
	m.sessions.CreateFunc = func(ctx context.Context, session *domain.Session) error {
		stored = session
		return nil
	}
	svc := createAuthServiceForTest(t, m)
	fixed := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	result, err := svc.Login(createTestContext(t), testEmail, testPassword)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stored == nil || stored.ID != result.SessionID || stored.UserID != testUserID {
		t.Fatalf("expected session for the user, got %+v", stored)
	}
	if !stored.ExpiresAt.Equal(fixed.Add(24 * time.Hour)) {
		t.Errorf("expected default session ttl, got %v", stored.ExpiresAt)
	}
	if result.ExpiresIn != 900 {
		t.Errorf("expected 900s access ttl, got %d", result.ExpiresIn)
	}
	activity, _ := m.activity.Get(testUserID)
	if activity.LastActivity == nil || !activity.LastActivity.Equal(fixed) {
		t.Errorf("expected last activity stamped, got %v", activity.LastActivity)
	}
}
