package domain

import (
	"errors"
	"fmt"
)

// Authentication errors
var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccountLocked         = errors.New("account is locked")
	ErrAccountInactive       = errors.New("account is inactive")
	ErrInternalInconsistency = errors.New("account activity record missing")
)

// Account errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidRole       = errors.New("invalid role")
	ErrActivityNotFound  = errors.New("account activity not found")
)

// Scheduling errors
var (
	ErrAppointmentNotFound    = errors.New("appointment not found")
	ErrStatusNotFound         = errors.New("appointment status not found")
	ErrPatientNotFound        = errors.New("patient not found")
	ErrDoctorNotFound         = errors.New("doctor not found")
	ErrSpecialtyNotFound      = errors.New("specialty not found")
	ErrContractTypeNotFound   = errors.New("contract type not found")
	ErrAttentionAlreadyExists = errors.New("medical attention already exists for appointment")
)

// Referential errors
var (
	ErrHasDependentAppointments = errors.New("doctor has dependent appointments")
	ErrDataInconsistency        = errors.New("doctor account has no doctor profile")
	ErrStatusTaxonomyMissing    = errors.New("configured appointment status missing from taxonomy")
)

// ErrInvalidInput is wrapped with the offending field by service-level validation
var ErrInvalidInput = errors.New("invalid input")

// ErrStorageUnavailable is matched by every StorageError
var ErrStorageUnavailable = errors.New("storage unavailable")

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)

// StorageError wraps a failure of the persistence layer
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageUnavailable, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorageUnavailable) true for any StorageError
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// NewStorageError wraps err for operation op. A nil err stays nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsConsistencyError reports whether err signals corrupted cross-table state
// rather than bad input
func IsConsistencyError(err error) bool {
	return errors.Is(err, ErrInternalInconsistency) ||
		errors.Is(err, ErrDataInconsistency) ||
		errors.Is(err, ErrStatusTaxonomyMissing)
}
