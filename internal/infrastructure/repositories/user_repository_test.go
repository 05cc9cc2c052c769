package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/clinicsvc/domain"
)

func newReceptionUser(email string) *domain.User {
	return &domain.User{
		FirstName:    "Maria",
		LastName:     "Vera",
		NationalID:   "1712345678",
		Email:        email,
		PasswordHash: "hash",
		Role:         domain.RoleReception,
		RegisteredAt: time.Now(),
	}
}

func TestUserRepositoryImpl_CreateWithActivity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newReceptionUser("maria@clinic.test")
	err := repo.CreateWithActivity(ctx, user, &domain.AccountActivity{Active: true}, nil)
	require.NoError(t, err)

	assert.Len(t, user.ID, 8, "user id is a fixed-length code")

	found, err := repo.FindByEmail(ctx, "maria@clinic.test")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, domain.RoleReception, found.Role)

	activity, err := NewActivityRepository(db).FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, activity.Active)
	assert.False(t, activity.Blocked)
	assert.Zero(t, activity.FailedAttempts)
}

func TestUserRepositoryImpl_CreateWithActivity_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateWithActivity(ctx, newReceptionUser("dup@clinic.test"), &domain.AccountActivity{Active: true}, nil))

	err := repo.CreateWithActivity(ctx, newReceptionUser("dup@clinic.test"), &domain.AccountActivity{Active: true}, nil)
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	assert.Equal(t, int64(1), countRows(t, db, &DBUser{}, "email = ?", "dup@clinic.test"))
	assert.Equal(t, int64(1), countRows(t, db, &DBAccountActivity{}, "1 = 1"), "ledger row of the failed insert must roll back")
}

func TestUserRepositoryImpl_CreateWithActivity_Doctor(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)

	user, doctor := f.createDoctorAccount(t, "doc@clinic.test")

	assert.NotZero(t, doctor.ID)
	assert.Equal(t, user.ID, doctor.UserID)

	found, err := NewDoctorRepository(db).FindByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, doctor.ID, found.ID)
}

func TestUserRepositoryImpl_CreateWithActivity_DoctorReferences(t *testing.T) {
	tests := []struct {
		name          string
		profile       func(f *fixture) *domain.Doctor
		expectedError error
	}{
		{
			name: "unknown specialty",
			profile: func(f *fixture) *domain.Doctor {
				return &domain.Doctor{SpecialtyID: 999, ContractTypeID: f.contractTypeID, Active: true}
			},
			expectedError: domain.ErrSpecialtyNotFound,
		},
		{
			name: "unknown contract type",
			profile: func(f *fixture) *domain.Doctor {
				return &domain.Doctor{SpecialtyID: f.specialtyID, ContractTypeID: 888, Active: true}
			},
			expectedError: domain.ErrContractTypeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			f := seedFixture(t, db)

			user := newReceptionUser("doc@clinic.test")
			user.Role = domain.RoleDoctor
			err := NewUserRepository(db).CreateWithActivity(context.Background(), user, &domain.AccountActivity{Active: true}, tt.profile(f))

			assert.ErrorIs(t, err, tt.expectedError)
			assert.Zero(t, countRows(t, db, &DBUser{}, "email = ?", "doc@clinic.test"), "user insert must roll back")
			assert.Zero(t, countRows(t, db, &DBDoctor{}, "1 = 1"))
		})
	}
}

func TestUserRepositoryImpl_DoctorReferencesAreRestricted(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	f.createDoctorAccount(t, "doc@clinic.test")

	assert.Error(t, db.Delete(&DBSpecialty{}, f.specialtyID).Error)
	assert.Error(t, db.Delete(&DBContractType{}, f.contractTypeID).Error)
	assert.Equal(t, int64(1), countRows(t, db, &DBSpecialty{}, "id = ?", f.specialtyID))
	assert.Equal(t, int64(1), countRows(t, db, &DBContractType{}, "id = ?", f.contractTypeID))
}

func TestUserRepositoryImpl_CreateWithActivity_RedrawsCollidingID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := newReceptionUser("first@clinic.test")
	first.ID = "AAAA0001"
	require.NoError(t, NewUserRepository(db).CreateWithActivity(ctx, first, &domain.AccountActivity{Active: true}, nil))

	ids := []string{"AAAA0001", "AAAA0001", "BBBB0002"}
	draws := 0
	repo := &UserRepositoryImpl{db: db, newID: func() string {
		id := ids[draws]
		draws++
		return id
	}}

	second := newReceptionUser("second@clinic.test")
	require.NoError(t, repo.CreateWithActivity(ctx, second, &domain.AccountActivity{Active: true}, nil))

	assert.Equal(t, "BBBB0002", second.ID)
	assert.Equal(t, 3, draws)
	activity, err := NewActivityRepository(db).FindByUserID(ctx, "BBBB0002")
	require.NoError(t, err)
	assert.True(t, activity.Active)
}

func TestUserRepositoryImpl_CreateWithActivity_IDSpaceExhausted(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := newReceptionUser("first@clinic.test")
	first.ID = "AAAA0001"
	require.NoError(t, NewUserRepository(db).CreateWithActivity(ctx, first, &domain.AccountActivity{Active: true}, nil))

	repo := &UserRepositoryImpl{db: db, newID: func() string { return "AAAA0001" }}
	err := repo.CreateWithActivity(ctx, newReceptionUser("second@clinic.test"), &domain.AccountActivity{Active: true}, nil)

	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestUserRepositoryImpl_CreateWithActivity_ExplicitIDTaken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := newReceptionUser("first@clinic.test")
	first.ID = "AAAA0001"
	require.NoError(t, repo.CreateWithActivity(ctx, first, &domain.AccountActivity{Active: true}, nil))

	second := newReceptionUser("second@clinic.test")
	second.ID = "AAAA0001"
	assert.ErrorIs(t, repo.CreateWithActivity(ctx, second, &domain.AccountActivity{Active: true}, nil), domain.ErrUserAlreadyExists)
}

func TestUserRepositoryImpl_Find_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.FindByID(context.Background(), "ZZZZZZZZ")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByEmail(context.Background(), "nobody@clinic.test")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepositoryImpl_UpdatePassword(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := newReceptionUser("pw@clinic.test")
	require.NoError(t, repo.CreateWithActivity(ctx, user, &domain.AccountActivity{Active: true}, nil))

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash"))
	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", found.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, "ZZZZZZZZ", "x"), domain.ErrUserNotFound)
}

func TestUserRepositoryImpl_DeleteCascade(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(t *testing.T, f *fixture) string
		expectedError error
		expectDeleted bool
	}{
		{
			name: "doctor without appointments is removed with ledger and profile",
			setup: func(t *testing.T, f *fixture) string {
				user, _ := f.createDoctorAccount(t, "m3@clinic.test")
				return user.ID
			},
			expectDeleted: true,
		},
		{
			name: "doctor with appointments is refused",
			setup: func(t *testing.T, f *fixture) string {
				user, doctor := f.createDoctorAccount(t, "busy@clinic.test")
				f.createAppointment(t, doctor.ID, f.scheduled, "09:00")
				return user.ID
			},
			expectedError: domain.ErrHasDependentAppointments,
		},
		{
			name: "doctor role without profile is a data inconsistency",
			setup: func(t *testing.T, f *fixture) string {
				user := newReceptionUser("orphan@clinic.test")
				user.Role = domain.RoleDoctor
				if err := NewUserRepository(f.db).CreateWithActivity(context.Background(), user, &domain.AccountActivity{Active: true}, nil); err != nil {
					t.Fatalf("setup failed: %v", err)
				}
				return user.ID
			},
			expectedError: domain.ErrDataInconsistency,
		},
		{
			name: "non-doctor is removed directly",
			setup: func(t *testing.T, f *fixture) string {
				user := newReceptionUser("desk@clinic.test")
				if err := NewUserRepository(f.db).CreateWithActivity(context.Background(), user, &domain.AccountActivity{Active: true}, nil); err != nil {
					t.Fatalf("setup failed: %v", err)
				}
				return user.ID
			},
			expectDeleted: true,
		},
		{
			name: "unknown user",
			setup: func(t *testing.T, f *fixture) string {
				return "ZZZZZZZZ"
			},
			expectedError: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			f := seedFixture(t, db)
			userID := tt.setup(t, f)

			usersBefore := countRows(t, db, &DBUser{}, "id = ?", userID)
			activityBefore := countRows(t, db, &DBAccountActivity{}, "user_id = ?", userID)
			doctorsBefore := countRows(t, db, &DBDoctor{}, "user_id = ?", userID)

			err := NewUserRepository(db).DeleteCascade(context.Background(), userID)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
				assert.Equal(t, usersBefore, countRows(t, db, &DBUser{}, "id = ?", userID))
				assert.Equal(t, activityBefore, countRows(t, db, &DBAccountActivity{}, "user_id = ?", userID))
				assert.Equal(t, doctorsBefore, countRows(t, db, &DBDoctor{}, "user_id = ?", userID))
				return
			}

			require.NoError(t, err)
			if tt.expectDeleted {
				assert.Zero(t, countRows(t, db, &DBUser{}, "id = ?", userID))
				assert.Zero(t, countRows(t, db, &DBAccountActivity{}, "user_id = ?", userID))
				assert.Zero(t, countRows(t, db, &DBDoctor{}, "user_id = ?", userID))
			}
		})
	}
}
