package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/you/clinicsvc/domain"
	"github.com/you/clinicsvc/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// errLedgerContention is wrapped as a storage error when the activity row keeps
// changing under a login for more than MaxCASRetries rounds
var errLedgerContention = errors.New("account activity row contended")

// AuthConfig holds the tunables of the login flow
type AuthConfig struct {
	LockoutThreshold int
	MaxCASRetries    int
	AccessTTL        time.Duration
	SessionTTL       time.Duration
}

func (c AuthConfig) withDefaults() AuthConfig {
	if c.LockoutThreshold <= 0 {
		c.LockoutThreshold = domain.DefaultLockoutThreshold
	}
	if c.MaxCASRetries <= 0 {
		c.MaxCASRetries = 5
	}
	if c.AccessTTL <= 0 {
		c.AccessTTL = 15 * time.Minute
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 24 * time.Hour
	}
	return c
}

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo     domain.UserRepository
	activityRepo domain.ActivityRepository
	doctorRepo   domain.DoctorRepository
	sessionRepo  domain.SessionRepository
	passwordSvc  domain.PasswordService
	tokenSvc     domain.TokenService
	audit        domain.AuditLogger
	metrics      *metrics.Metrics
	log          *zap.Logger
	cfg          AuthConfig
	now          func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	activityRepo domain.ActivityRepository,
	doctorRepo domain.DoctorRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	audit domain.AuditLogger,
	m *metrics.Metrics,
	log *zap.Logger,
	cfg AuthConfig,
) domain.AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{
		userRepo:     userRepo,
		activityRepo: activityRepo,
		doctorRepo:   doctorRepo,
		sessionRepo:  sessionRepo,
		passwordSvc:  passwordSvc,
		tokenSvc:     tokenSvc,
		audit:        audit,
		metrics:      m,
		log:          log.Named("auth"),
		cfg:          cfg.withDefaults(),
		now:          time.Now,
	}
}

// Login implements domain.AuthService.
//
// The ledger row is read, judged and written back with a compare-and-swap. A
// lost swap means another login changed the row in between, so the decision is
// made again from the fresh row; no increment is ever lost or double-counted.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.metrics.Login(metrics.LoginInvalid)
			s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, "").
				WithEmail(email).
				WithError(domain.ErrInvalidCredentials))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, s.storageFailure("find user", err)
	}

	var verified *bool
	checkPassword := func() bool {
		if verified == nil {
			ok := s.passwordSvc.Verify(user.PasswordHash, password)
			verified = &ok
		}
		return *verified
	}

	for round := 0; round < s.cfg.MaxCASRetries; round++ {
		activity, err := s.activityRepo.FindByUserID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, domain.ErrActivityNotFound) {
				s.metrics.Login(metrics.LoginInconsistent)
				s.log.Error("account has no activity row", zap.String("user_id", user.ID))
				s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.InconsistencyEvent, user.ID).
					WithEmail(email).
					WithError(domain.ErrInternalInconsistency))
				return nil, domain.ErrInternalInconsistency
			}
			return nil, s.storageFailure("find activity", err)
		}

		if err := domain.CanAttemptLogin(*activity); err != nil {
			s.rejected(ctx, user, err)
			return nil, err
		}

		now := s.now()
		var next domain.AccountActivity
		if checkPassword() {
			next = domain.NextOnSuccess(*activity, now)
		} else {
			next = domain.NextOnFailure(*activity, now, s.cfg.LockoutThreshold)
		}

		swapped, err := s.activityRepo.CompareAndSwap(ctx, *activity, next)
		if err != nil {
			return nil, s.storageFailure("update activity", err)
		}
		if !swapped {
			s.log.Debug("activity row changed during login, re-deciding",
				zap.String("user_id", user.ID), zap.Int("round", round))
			continue
		}

		if checkPassword() {
			return s.completeLogin(ctx, user)
		}
		return nil, s.failed(ctx, user, next)
	}

	s.log.Warn("login gave up on contended activity row",
		zap.String("user_id", user.ID), zap.Int("rounds", s.cfg.MaxCASRetries))
	return nil, s.storageFailure("update activity", errLedgerContention)
}

// failed records a persisted wrong-password attempt and picks the error to return
func (s *AuthServiceImpl) failed(ctx context.Context, user *domain.User, next domain.AccountActivity) error {
	if domain.StateOf(next) == domain.StateLocked {
		s.metrics.Login(metrics.LoginLocked)
		s.metrics.Lockout()
		s.log.Info("account locked after failed attempts",
			zap.String("user_id", user.ID), zap.Int("failed_attempts", next.FailedAttempts))
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.AccountLockedEvent, user.ID).
			WithEmail(user.Email).
			WithMetadata("failed_attempts", next.FailedAttempts).
			WithError(domain.ErrAccountLocked))
		return domain.ErrAccountLocked
	}

	s.metrics.Login(metrics.LoginInvalid)
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, user.ID).
		WithEmail(user.Email).
		WithMetadata("failed_attempts", next.FailedAttempts).
		WithError(domain.ErrInvalidCredentials))
	return domain.ErrInvalidCredentials
}

// rejected records a login refused before the password was looked at
func (s *AuthServiceImpl) rejected(ctx context.Context, user *domain.User, err error) {
	outcome := metrics.LoginLocked
	if errors.Is(err, domain.ErrAccountInactive) {
		outcome = metrics.LoginInactive
	}
	s.metrics.Login(outcome)
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent, user.ID).
		WithEmail(user.Email).
		WithError(err))
}

func (s *AuthServiceImpl) completeLogin(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	doctorID, err := s.resolveDoctorID(ctx, user)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(user.ID, user.Role, doctorID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.tokenSvc.GenerateRefreshToken(user.ID, user.Role, doctorID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	s.metrics.Login(metrics.LoginSuccess)
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginEvent, user.ID).
		WithEmail(user.Email).
		WithMetadata("role", user.Role.String()).
		WithMetadata("session_id", session.ID))

	return &domain.AuthResult{
		User:         user,
		DoctorID:     doctorID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    session.ID,
		ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
	}, nil
}

// resolveDoctorID follows the reverse link from a doctor account to its profile.
// A doctor account without a profile logs in with no doctor id.
func (s *AuthServiceImpl) resolveDoctorID(ctx context.Context, user *domain.User) (*uint, error) {
	if user.Role != domain.RoleDoctor {
		return nil, nil
	}
	doctor, err := s.doctorRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrDoctorNotFound) {
			s.log.Warn("doctor account has no doctor profile", zap.String("user_id", user.ID))
			return nil, nil
		}
		return nil, s.storageFailure("find doctor profile", err)
	}
	id := doctor.ID
	return &id, nil
}

// RefreshToken implements domain.AuthService. The account must still be allowed
// to log in; a locked or deactivated account loses its session.
func (s *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	claims, err := s.tokenSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.FindByID(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// the account was deleted after the token was issued
			if delErr := s.sessionRepo.Delete(ctx, session.ID); delErr != nil {
				s.log.Warn("failed to drop session of deleted account", zap.Error(delErr))
			}
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	activity, err := s.activityRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrActivityNotFound) {
			return nil, domain.ErrInternalInconsistency
		}
		return nil, err
	}
	if err := domain.CanAttemptLogin(*activity); err != nil {
		if delErr := s.sessionRepo.Delete(ctx, session.ID); delErr != nil {
			s.log.Warn("failed to drop session of refused account", zap.Error(delErr))
		}
		return nil, err
	}

	doctorID, err := s.resolveDoctorID(ctx, user)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(user.ID, user.Role, doctorID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.AuthResult{
		User:         user,
		DoctorID:     doctorID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken, // Keep same refresh token
		SessionID:    session.ID,
		ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
	}, nil
}

// Logout implements domain.AuthService
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID string) error {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) && !errors.Is(err, domain.ErrSessionExpired) {
		return err
	}
	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return err
	}
	if session != nil {
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLogoutEvent, session.UserID).
			WithMetadata("session_id", sessionID))
	}
	return nil
}

// GetUserProfile implements domain.AuthService
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *AuthServiceImpl) storageFailure(op string, err error) error {
	s.metrics.Login(metrics.LoginStorageFailed)
	s.log.Error("login storage failure", zap.String("op", op), zap.Error(err))
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return domain.NewStorageError("auth."+op, err)
}
