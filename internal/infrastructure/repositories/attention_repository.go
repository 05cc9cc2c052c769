package repositories

import (
	"context"
	"errors"

	"github.com/you/clinicsvc/domain"
	"gorm.io/gorm"
)

// AttentionRepositoryImpl implements domain.AttentionRepository using GORM
type AttentionRepositoryImpl struct {
	db *gorm.DB
}

// NewAttentionRepository creates a new medical attention repository
func NewAttentionRepository(db *gorm.DB) domain.AttentionRepository {
	return &AttentionRepositoryImpl{db: db}
}

// Create implements domain.AttentionRepository. The existence check and the insert
// share a transaction; the unique index on appointment_id settles any race the
// check cannot see.
func (r *AttentionRepositoryImpl) Create(ctx context.Context, attention *domain.MedicalAttention) error {
	row := &DBMedicalAttention{
		AppointmentID: attention.AppointmentID,
		Reason:        attention.Reason,
		Diagnosis:     attention.Diagnosis,
		Observations:  attention.Observations,
		AttendedAt:    attention.AttendedAt,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appointment DBAppointment
		if err := forUpdate(tx).Where("id = ?", attention.AppointmentID).First(&appointment).Error; err != nil {
			return notFoundOr("medical_attentions.create.find_appointment", err, domain.ErrAppointmentNotFound)
		}

		var existing int64
		if err := tx.Model(&DBMedicalAttention{}).Where("appointment_id = ?", attention.AppointmentID).Count(&existing).Error; err != nil {
			return domain.NewStorageError("medical_attentions.create.count", err)
		}
		if existing > 0 {
			return domain.ErrAttentionAlreadyExists
		}

		if err := tx.Omit("Appointment").Create(row).Error; err != nil {
			switch {
			case errors.Is(err, gorm.ErrDuplicatedKey):
				return domain.ErrAttentionAlreadyExists
			case errors.Is(err, gorm.ErrForeignKeyViolated):
				return domain.ErrAppointmentNotFound
			}
			return domain.NewStorageError("medical_attentions.create", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAttentionAlreadyExists
		}
		return finish("medical_attentions.create", err)
	}
	attention.ID = row.ID
	return nil
}

// ListByPatient implements domain.AttentionRepository, newest first
func (r *AttentionRepositoryImpl) ListByPatient(ctx context.Context, patientID uint) ([]domain.MedicalAttention, error) {
	var rows []DBMedicalAttention
	err := r.db.WithContext(ctx).
		Joins("JOIN appointments ON appointments.id = medical_attentions.appointment_id").
		Where("appointments.patient_id = ?", patientID).
		Order("medical_attentions.attended_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, domain.NewStorageError("medical_attentions.list_by_patient", err)
	}

	attentions := make([]domain.MedicalAttention, 0, len(rows))
	for _, row := range rows {
		attentions = append(attentions, domain.MedicalAttention{
			ID:            row.ID,
			AppointmentID: row.AppointmentID,
			Reason:        row.Reason,
			Diagnosis:     row.Diagnosis,
			Observations:  row.Observations,
			AttendedAt:    row.AttendedAt,
		})
	}
	return attentions, nil
}
