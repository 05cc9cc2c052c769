package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/you/clinicsvc/domain"
	"gorm.io/gorm"
)

// maxIDAttempts bounds how often a colliding generated user code is redrawn
const maxIDAttempts = 5

var (
	errDuplicateUser   = errors.New("duplicate user key")
	errUserIDExhausted = errors.New("no free user code after retries")
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db    *gorm.DB
	newID func() string
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db, newID: newUserID}
}

// newUserID returns the fixed-length opaque account code
func newUserID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var dbUser DBUser
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error; err != nil {
		return nil, notFoundOr("users.find_by_id", err, domain.ErrUserNotFound)
	}
	return userToDomain(&dbUser), nil
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var dbUser DBUser
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&dbUser).Error; err != nil {
		return nil, notFoundOr("users.find_by_email", err, domain.ErrUserNotFound)
	}
	return userToDomain(&dbUser), nil
}

// CreateWithActivity implements domain.UserRepository. A generated user code
// that collides with an existing one is redrawn; a taken email is reported as
// ErrUserAlreadyExists.
func (r *UserRepositoryImpl) CreateWithActivity(ctx context.Context, user *domain.User, activity *domain.AccountActivity, doctor *domain.Doctor) error {
	generated := user.ID == ""
	for attempt := 1; ; attempt++ {
		if generated {
			user.ID = r.newID()
		}

		err := r.create(ctx, user, activity, doctor)
		if !errors.Is(err, errDuplicateUser) {
			return err
		}

		// the failed transaction is gone; look the email up on a fresh statement
		var taken int64
		if err := r.db.WithContext(ctx).Model(&DBUser{}).Where("email = ?", user.Email).Count(&taken).Error; err != nil {
			return domain.NewStorageError("users.create.check_email", err)
		}
		if taken > 0 || !generated {
			return domain.ErrUserAlreadyExists
		}
		if attempt == maxIDAttempts {
			return domain.NewStorageError("users.create", errUserIDExhausted)
		}
	}
}

func (r *UserRepositoryImpl) create(ctx context.Context, user *domain.User, activity *domain.AccountActivity, doctor *domain.Doctor) error {
	dbUser := userToDB(user)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Activity", "Doctor").Create(dbUser).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDuplicateUser
			}
			return domain.NewStorageError("users.create", err)
		}

		activity.UserID = dbUser.ID
		if err := tx.Create(activityToDB(activity)).Error; err != nil {
			return domain.NewStorageError("account_activities.create", err)
		}

		if doctor != nil {
			return createDoctor(tx, dbUser.ID, doctor)
		}
		return nil
	})
	if errors.Is(err, errDuplicateUser) {
		return err
	}
	return finish("users.create_with_activity", err)
}

// createDoctor inserts the profile after checking its references. The foreign
// keys back the checks up.
func createDoctor(tx *gorm.DB, userID string, doctor *domain.Doctor) error {
	var n int64
	if err := tx.Model(&DBSpecialty{}).Where("id = ?", doctor.SpecialtyID).Count(&n).Error; err != nil {
		return domain.NewStorageError("specialties.find", err)
	}
	if n == 0 {
		return domain.ErrSpecialtyNotFound
	}
	if err := tx.Model(&DBContractType{}).Where("id = ?", doctor.ContractTypeID).Count(&n).Error; err != nil {
		return domain.NewStorageError("contract_types.find", err)
	}
	if n == 0 {
		return domain.ErrContractTypeNotFound
	}

	doctor.UserID = userID
	dbDoctor := doctorToDB(doctor)
	if err := tx.Omit("Specialty", "ContractType").Create(dbDoctor).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("%w: doctor profile references unknown specialty or contract type", domain.ErrInvalidInput)
		}
		return domain.NewStorageError("doctors.create", err)
	}
	doctor.ID = dbDoctor.ID
	return nil
}

// UpdatePassword implements domain.UserRepository
func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", id).Update("password", passwordHash)
	if res.Error != nil {
		return domain.NewStorageError("users.update_password", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// DeleteCascade implements domain.UserRepository. The user, its ledger row and its
// doctor profile go in one transaction; a doctor still referenced by appointments
// is refused before anything is removed.
func (r *UserRepositoryImpl) DeleteCascade(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dbUser DBUser
		if err := forUpdate(tx).Where("id = ?", id).First(&dbUser).Error; err != nil {
			return notFoundOr("users.delete.find", err, domain.ErrUserNotFound)
		}

		if domain.Role(dbUser.RoleID) == domain.RoleDoctor {
			var dbDoctor DBDoctor
			if err := forUpdate(tx).Where("user_id = ?", id).First(&dbDoctor).Error; err != nil {
				return notFoundOr("users.delete.find_doctor", err, domain.ErrDataInconsistency)
			}

			var dependents int64
			if err := tx.Model(&DBAppointment{}).Where("doctor_id = ?", dbDoctor.ID).Count(&dependents).Error; err != nil {
				return domain.NewStorageError("users.delete.count_appointments", err)
			}
			if dependents > 0 {
				return domain.ErrHasDependentAppointments
			}

			if err := tx.Delete(&DBDoctor{}, dbDoctor.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrForeignKeyViolated) {
					return domain.ErrHasDependentAppointments
				}
				return domain.NewStorageError("doctors.delete", err)
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&DBAccountActivity{}).Error; err != nil {
			return domain.NewStorageError("account_activities.delete", err)
		}
		if err := tx.Where("id = ?", id).Delete(&DBUser{}).Error; err != nil {
			return domain.NewStorageError("users.delete", err)
		}
		return nil
	})
	return finish("users.delete_cascade", err)
}

func userToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:                 user.ID,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		NationalID:         user.NationalID,
		Email:              user.Email,
		Phone:              user.Phone,
		PasswordHash:       user.PasswordHash,
		RoleID:             uint8(user.Role),
		MustChangePassword: user.MustChangePassword,
		RegisteredAt:       user.RegisteredAt,
	}
}

func userToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:                 dbUser.ID,
		FirstName:          dbUser.FirstName,
		LastName:           dbUser.LastName,
		NationalID:         dbUser.NationalID,
		Email:              dbUser.Email,
		Phone:              dbUser.Phone,
		PasswordHash:       dbUser.PasswordHash,
		Role:               domain.Role(dbUser.RoleID),
		MustChangePassword: dbUser.MustChangePassword,
		RegisteredAt:       dbUser.RegisteredAt,
	}
}
