package repositories

import (
	"errors"

	"github.com/you/clinicsvc/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// passthrough lists the errors a transaction callback may return unchanged
var passthrough = []error{
	domain.ErrStorageUnavailable,
	domain.ErrUserNotFound,
	domain.ErrUserAlreadyExists,
	domain.ErrAppointmentNotFound,
	domain.ErrAttentionAlreadyExists,
	domain.ErrHasDependentAppointments,
	domain.ErrDataInconsistency,
	domain.ErrDoctorNotFound,
	domain.ErrPatientNotFound,
	domain.ErrStatusNotFound,
	domain.ErrSpecialtyNotFound,
	domain.ErrContractTypeNotFound,
	domain.ErrInvalidInput,
}

// finish classifies an error returned by a transaction. Domain errors from the
// callback pass through; anything else (commit failure, driver error) is storage.
func finish(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range passthrough {
		if errors.Is(err, known) {
			return err
		}
	}
	return domain.NewStorageError(op, err)
}

// notFoundOr maps gorm.ErrRecordNotFound to notFound and wraps anything else
func notFoundOr(op string, err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return domain.NewStorageError(op, err)
}

// forUpdate adds a row lock where the dialect supports it. SQLite serialises
// writers on its own and rejects FOR UPDATE.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
