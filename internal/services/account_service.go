package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/you/clinicsvc/domain"
	"github.com/you/clinicsvc/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// AccountServiceImpl implements domain.AccountService
type AccountServiceImpl struct {
	userRepo      domain.UserRepository
	activityRepo  domain.ActivityRepository
	sessionRepo   domain.SessionRepository
	passwordSvc   domain.PasswordService
	audit         domain.AuditLogger
	metrics       *metrics.Metrics
	log           *zap.Logger
	maxCASRetries int
	now           func() time.Time
}

// NewAccountService creates a new account administration service
func NewAccountService(
	userRepo domain.UserRepository,
	activityRepo domain.ActivityRepository,
	sessionRepo domain.SessionRepository,
	passwordSvc domain.PasswordService,
	audit domain.AuditLogger,
	m *metrics.Metrics,
	log *zap.Logger,
	maxCASRetries int,
) domain.AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	if maxCASRetries <= 0 {
		maxCASRetries = 5
	}
	return &AccountServiceImpl{
		userRepo:      userRepo,
		activityRepo:  activityRepo,
		sessionRepo:   sessionRepo,
		passwordSvc:   passwordSvc,
		audit:         audit,
		metrics:       m,
		log:           log.Named("accounts"),
		maxCASRetries: maxCASRetries,
		now:           time.Now,
	}
}

// Register implements domain.AccountService. Doctor accounts go through
// RegisterDoctor so a doctor user never exists without its profile.
func (s *AccountServiceImpl) Register(ctx context.Context, account domain.NewAccount) (*domain.User, error) {
	if account.Role == domain.RoleDoctor || !account.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	user, err := s.create(ctx, account, nil)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RegisterDoctor implements domain.AccountService
func (s *AccountServiceImpl) RegisterDoctor(ctx context.Context, account domain.NewAccount, profile domain.NewDoctorProfile) (*domain.User, *domain.Doctor, error) {
	account.Role = domain.RoleDoctor
	doctor := &domain.Doctor{
		SpecialtyID:    profile.SpecialtyID,
		ContractTypeID: profile.ContractTypeID,
		Schedule:       profile.Schedule,
		Phone:          profile.Phone,
		Active:         true,
	}
	user, err := s.create(ctx, account, doctor)
	if err != nil {
		return nil, nil, err
	}
	return user, doctor, nil
}

func (s *AccountServiceImpl) create(ctx context.Context, account domain.NewAccount, doctor *domain.Doctor) (*domain.User, error) {
	if err := validateAccount(account); err != nil {
		return nil, err
	}

	hashedPassword, err := s.passwordSvc.Hash(account.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		FirstName:    account.FirstName,
		LastName:     account.LastName,
		NationalID:   account.NationalID,
		Email:        strings.TrimSpace(account.Email),
		Phone:        account.Phone,
		PasswordHash: hashedPassword,
		Role:         account.Role,
		RegisteredAt: s.now(),
	}
	activity := &domain.AccountActivity{Active: true}

	if err := s.userRepo.CreateWithActivity(ctx, user, activity, doctor); err != nil {
		return nil, err
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserRegistrationEvent, user.ID).
		WithEmail(user.Email).
		WithMetadata("role", user.Role.String()))
	return user, nil
}

func validateAccount(account domain.NewAccount) error {
	switch {
	case strings.TrimSpace(account.Email) == "":
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	case account.Password == "":
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	case strings.TrimSpace(account.FirstName) == "" || strings.TrimSpace(account.LastName) == "":
		return fmt.Errorf("%w: first and last name are required", domain.ErrInvalidInput)
	}
	return nil
}

// SetBlocked implements domain.AccountService. Unblocking also clears the
// failed-attempt counter; blocking ends every open session.
func (s *AccountServiceImpl) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	err := s.updateActivity(ctx, userID, func(a domain.AccountActivity) domain.AccountActivity {
		if blocked {
			return domain.NextOnLock(a, s.now())
		}
		return domain.NextOnUnlock(a)
	})
	if err != nil {
		return err
	}
	if blocked {
		if err := s.revokeSessions(ctx, userID); err != nil {
			return err
		}
	}

	eventType := domain.AccountUnlockedEvent
	if blocked {
		eventType = domain.AccountLockedEvent
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(eventType, userID).WithMetadata("by", "admin"))
	return nil
}

// SetActive implements domain.AccountService. Deactivation ends every open session.
func (s *AccountServiceImpl) SetActive(ctx context.Context, userID string, active bool) error {
	err := s.updateActivity(ctx, userID, func(a domain.AccountActivity) domain.AccountActivity {
		return domain.NextOnActivation(a, active)
	})
	if err != nil {
		return err
	}
	if !active {
		if err := s.revokeSessions(ctx, userID); err != nil {
			return err
		}
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.AccountActiveEvent, userID).WithMetadata("active", active))
	return nil
}

// revokeSessions drops the sessions of userID so issued access tokens stop
// passing the session check. Repeating the admin call retries the revocation.
func (s *AccountServiceImpl) revokeSessions(ctx context.Context, userID string) error {
	if err := s.sessionRepo.DeleteByUser(ctx, userID); err != nil {
		s.log.Error("failed to revoke sessions", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// updateActivity applies transition to the ledger row with the same
// compare-and-swap discipline as login
func (s *AccountServiceImpl) updateActivity(ctx context.Context, userID string, transition func(domain.AccountActivity) domain.AccountActivity) error {
	for round := 0; round < s.maxCASRetries; round++ {
		activity, err := s.activityRepo.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrActivityNotFound) {
				return s.missingActivity(ctx, userID)
			}
			return err
		}

		swapped, err := s.activityRepo.CompareAndSwap(ctx, *activity, transition(*activity))
		if err != nil {
			return err
		}
		if swapped {
			return nil
		}
	}
	return domain.NewStorageError("accounts.update_activity", errLedgerContention)
}

// missingActivity distinguishes an unknown user from a user without ledger row
func (s *AccountServiceImpl) missingActivity(ctx context.Context, userID string) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return err
	}
	s.log.Error("account has no activity row", zap.String("user_id", userID))
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.InconsistencyEvent, userID).
		WithError(domain.ErrInternalInconsistency))
	return domain.ErrInternalInconsistency
}

// ChangePassword implements domain.AccountService
func (s *AccountServiceImpl) ChangePassword(ctx context.Context, userID, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, hashedPassword)
}

// DeleteAccount implements domain.AccountService
func (s *AccountServiceImpl) DeleteAccount(ctx context.Context, userID string) error {
	err := s.userRepo.DeleteCascade(ctx, userID)
	switch {
	case err == nil:
		s.metrics.Deletion("deleted")
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserDeletedEvent, userID))
		return s.revokeSessions(ctx, userID)
	case errors.Is(err, domain.ErrHasDependentAppointments):
		s.metrics.Deletion("refused")
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserDeleteDeniedEvent, userID).WithError(err))
	case errors.Is(err, domain.ErrDataInconsistency):
		s.metrics.Deletion("inconsistent")
		s.log.Error("doctor account without doctor profile", zap.String("user_id", userID))
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.InconsistencyEvent, userID).WithError(err))
	case errors.Is(err, domain.ErrUserNotFound):
		s.metrics.Deletion("not_found")
	default:
		s.metrics.Deletion("error")
		s.log.Error("account deletion failed", zap.String("user_id", userID), zap.Error(err))
	}
	return err
}
