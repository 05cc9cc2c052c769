package repositories

import (
	"context"

	"github.com/you/clinicsvc/domain"
	"gorm.io/gorm"
)

// ActivityRepositoryImpl implements domain.ActivityRepository using GORM
type ActivityRepositoryImpl struct {
	db *gorm.DB
}

// NewActivityRepository creates a new account activity repository
func NewActivityRepository(db *gorm.DB) domain.ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

// FindByUserID implements domain.ActivityRepository
func (r *ActivityRepositoryImpl) FindByUserID(ctx context.Context, userID string) (*domain.AccountActivity, error) {
	var row DBAccountActivity
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, notFoundOr("account_activities.find", err, domain.ErrActivityNotFound)
	}
	return activityToDomain(&row), nil
}

// CompareAndSwap implements domain.ActivityRepository. The guard columns are the
// ones every transition decision reads, so two writers deciding from the same
// snapshot cannot both succeed.
func (r *ActivityRepositoryImpl) CompareAndSwap(ctx context.Context, expected, next domain.AccountActivity) (bool, error) {
	res := r.db.WithContext(ctx).Model(&DBAccountActivity{}).
		Where("user_id = ? AND active = ? AND blocked = ? AND failed_attempts = ?",
			expected.UserID, expected.Active, expected.Blocked, expected.FailedAttempts).
		Updates(map[string]interface{}{
			"active":          next.Active,
			"blocked":         next.Blocked,
			"failed_attempts": next.FailedAttempts,
			"blocked_at":      next.BlockedAt,
			"last_activity":   next.LastActivity,
		})
	if res.Error != nil {
		return false, domain.NewStorageError("account_activities.compare_and_swap", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func activityToDB(a *domain.AccountActivity) *DBAccountActivity {
	return &DBAccountActivity{
		UserID:         a.UserID,
		Active:         a.Active,
		Blocked:        a.Blocked,
		FailedAttempts: a.FailedAttempts,
		BlockedAt:      a.BlockedAt,
		LastActivity:   a.LastActivity,
	}
}

func activityToDomain(row *DBAccountActivity) *domain.AccountActivity {
	return &domain.AccountActivity{
		UserID:         row.UserID,
		Active:         row.Active,
		Blocked:        row.Blocked,
		FailedAttempts: row.FailedAttempts,
		BlockedAt:      row.BlockedAt,
		LastActivity:   row.LastActivity,
	}
}
