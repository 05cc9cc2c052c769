package repositories

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/you/clinicsvc/domain"
	"gorm.io/gorm"
)

// AppointmentRepositoryImpl implements domain.AppointmentRepository using GORM
type AppointmentRepositoryImpl struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *gorm.DB) domain.AppointmentRepository {
	return &AppointmentRepositoryImpl{db: db}
}

// Create implements domain.AppointmentRepository
func (r *AppointmentRepositoryImpl) Create(ctx context.Context, appointment *domain.Appointment) error {
	row := appointmentToDB(appointment)
	if err := r.db.WithContext(ctx).Omit("Patient", "Doctor", "Status").Create(row).Error; err != nil {
		return domain.NewStorageError("appointments.create", err)
	}
	appointment.ID = row.ID
	return nil
}

// FindByID implements domain.AppointmentRepository
func (r *AppointmentRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Appointment, error) {
	var row DBAppointment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFoundOr("appointments.find_by_id", err, domain.ErrAppointmentNotFound)
	}
	return appointmentToDomain(&row), nil
}

// UpdateStatus implements domain.AppointmentRepository. The overwrite is unconditional.
func (r *AppointmentRepositoryImpl) UpdateStatus(ctx context.Context, id, statusID uint) error {
	res := r.db.WithContext(ctx).Model(&DBAppointment{}).Where("id = ?", id).Update("status_id", statusID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return domain.ErrStatusNotFound
		}
		return domain.NewStorageError("appointments.update_status", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAppointmentNotFound
	}
	return nil
}

// ListUncovered implements domain.AppointmentRepository. The set difference is
// evaluated by the database in a single statement.
func (r *AppointmentRepositoryImpl) ListUncovered(ctx context.Context, statusID uint, doctorID *uint) ([]domain.Appointment, error) {
	query := sq.Select(
		"a.id", "a.patient_id", "a.doctor_id", "a.appointment_date", "a.appointment_time", "a.status_id",
	).
		From("appointments a").
		Where(sq.Eq{"a.status_id": statusID}).
		Where("NOT EXISTS (SELECT 1 FROM medical_attentions m WHERE m.appointment_id = a.id)").
		OrderBy("a.appointment_date", "a.appointment_time", "a.id")
	if doctorID != nil {
		query = query.Where(sq.Eq{"a.doctor_id": *doctorID})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, domain.NewStorageError("appointments.list_uncovered.build", err)
	}

	var rows []DBAppointment
	if err := r.db.WithContext(ctx).Raw(sqlStr, args...).Scan(&rows).Error; err != nil {
		return nil, domain.NewStorageError("appointments.list_uncovered", err)
	}

	appointments := make([]domain.Appointment, 0, len(rows))
	for i := range rows {
		appointments = append(appointments, *appointmentToDomain(&rows[i]))
	}
	return appointments, nil
}

func appointmentToDB(a *domain.Appointment) *DBAppointment {
	return &DBAppointment{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		Date:      a.Date,
		Time:      a.Time,
		StatusID:  a.StatusID,
	}
}

func appointmentToDomain(row *DBAppointment) *domain.Appointment {
	return &domain.Appointment{
		ID:        row.ID,
		PatientID: row.PatientID,
		DoctorID:  row.DoctorID,
		Date:      row.Date,
		Time:      row.Time,
		StatusID:  row.StatusID,
	}
}
