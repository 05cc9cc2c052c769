package repositories

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/you/clinicsvc/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing. Each test gets its
// own named database so parallel packages do not share state; a single connection
// keeps the shared-cache database alive and serialises writers.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

type fixture struct {
	db             *gorm.DB
	scheduled      uint
	attended       uint
	cancelled      uint
	specialtyID    uint
	contractTypeID uint
	patientID      uint
}

// seedFixture inserts the status taxonomy, one specialty, one contract type
// and one patient
func seedFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	f := &fixture{db: db}
	specialty := DBSpecialty{Name: "Cardiology"}
	if err := db.Create(&specialty).Error; err != nil {
		t.Fatalf("failed to seed specialty: %v", err)
	}
	f.specialtyID = specialty.ID
	contract := DBContractType{Description: "Full time"}
	if err := db.Create(&contract).Error; err != nil {
		t.Fatalf("failed to seed contract type: %v", err)
	}
	f.contractTypeID = contract.ID

	for _, s := range []struct {
		desc string
		id   *uint
	}{
		{"Scheduled", &f.scheduled},
		{"Attended", &f.attended},
		{"Cancelled", &f.cancelled},
	} {
		row := DBAppointmentStatus{Description: s.desc}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("failed to seed status %s: %v", s.desc, err)
		}
		*s.id = row.ID
	}

	patient := DBPatient{
		FirstName:  "Ana",
		LastName:   "Torres",
		NationalID: "0102030405",
		BirthDate:  time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		Active:     true,
	}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("failed to seed patient: %v", err)
	}
	f.patientID = patient.ID

	return f
}

// createDoctorAccount registers a doctor user with ledger row and profile
func (f *fixture) createDoctorAccount(t *testing.T, email string) (*domain.User, *domain.Doctor) {
	t.Helper()

	user := &domain.User{
		FirstName:    "Luis",
		LastName:     "Paredes",
		NationalID:   "0911223344",
		Email:        email,
		PasswordHash: "hash",
		Role:         domain.RoleDoctor,
		RegisteredAt: time.Now(),
	}
	doctor := &domain.Doctor{SpecialtyID: f.specialtyID, ContractTypeID: f.contractTypeID, Schedule: "Mon-Fri 08:00-12:00", Active: true}
	activity := &domain.AccountActivity{Active: true}

	if err := NewUserRepository(f.db).CreateWithActivity(context.Background(), user, activity, doctor); err != nil {
		t.Fatalf("failed to create doctor account: %v", err)
	}
	return user, doctor
}

// createAppointment inserts an appointment for the fixture patient
func (f *fixture) createAppointment(t *testing.T, doctorID, statusID uint, at string) *domain.Appointment {
	t.Helper()

	appointment := &domain.Appointment{
		PatientID: f.patientID,
		DoctorID:  doctorID,
		Date:      time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC),
		Time:      at,
		StatusID:  statusID,
	}
	if err := NewAppointmentRepository(f.db).Create(context.Background(), appointment); err != nil {
		t.Fatalf("failed to create appointment: %v", err)
	}
	return appointment
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}
