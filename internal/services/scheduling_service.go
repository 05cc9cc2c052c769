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

// SchedulingConfig names the statuses the scheduling flow depends on. They are
// looked up by description so ids may differ between databases.
type SchedulingConfig struct {
	InitialStatus  string
	AttendedStatus string
}

// SchedulingServiceImpl implements domain.SchedulingService
type SchedulingServiceImpl struct {
	patientRepo     domain.PatientRepository
	doctorRepo      domain.DoctorRepository
	statusRepo      domain.StatusRepository
	catalogRepo     domain.CatalogRepository
	appointmentRepo domain.AppointmentRepository
	attentionRepo   domain.AttentionRepository
	audit           domain.AuditLogger
	metrics         *metrics.Metrics
	log             *zap.Logger
	cfg             SchedulingConfig
	now             func() time.Time
}

// NewSchedulingService creates a new scheduling service
func NewSchedulingService(
	patientRepo domain.PatientRepository,
	doctorRepo domain.DoctorRepository,
	statusRepo domain.StatusRepository,
	catalogRepo domain.CatalogRepository,
	appointmentRepo domain.AppointmentRepository,
	attentionRepo domain.AttentionRepository,
	audit domain.AuditLogger,
	m *metrics.Metrics,
	log *zap.Logger,
	cfg SchedulingConfig,
) domain.SchedulingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SchedulingServiceImpl{
		patientRepo:     patientRepo,
		doctorRepo:      doctorRepo,
		statusRepo:      statusRepo,
		catalogRepo:     catalogRepo,
		appointmentRepo: appointmentRepo,
		attentionRepo:   attentionRepo,
		audit:           audit,
		metrics:         m,
		log:             log.Named("scheduling"),
		cfg:             cfg,
		now:             time.Now,
	}
}

// CreatePatient implements domain.SchedulingService
func (s *SchedulingServiceImpl) CreatePatient(ctx context.Context, patient *domain.Patient) error {
	if strings.TrimSpace(patient.FirstName) == "" || strings.TrimSpace(patient.LastName) == "" {
		return fmt.Errorf("%w: first and last name are required", domain.ErrInvalidInput)
	}
	if patient.BirthDate.IsZero() {
		return fmt.Errorf("%w: birth date is required", domain.ErrInvalidInput)
	}
	patient.Active = true
	return s.patientRepo.Create(ctx, patient)
}

// GetPatient implements domain.SchedulingService
func (s *SchedulingServiceImpl) GetPatient(ctx context.Context, id uint) (*domain.Patient, error) {
	return s.patientRepo.FindByID(ctx, id)
}

// ListStatuses implements domain.SchedulingService
func (s *SchedulingServiceImpl) ListStatuses(ctx context.Context) ([]domain.AppointmentStatus, error) {
	return s.statusRepo.List(ctx)
}

// ListSpecialties implements domain.SchedulingService
func (s *SchedulingServiceImpl) ListSpecialties(ctx context.Context) ([]domain.Specialty, error) {
	return s.catalogRepo.ListSpecialties(ctx)
}

// ListContractTypes implements domain.SchedulingService
func (s *SchedulingServiceImpl) ListContractTypes(ctx context.Context) ([]domain.ContractType, error) {
	return s.catalogRepo.ListContractTypes(ctx)
}

// CreateAppointment implements domain.SchedulingService. New appointments start
// in the configured initial status; overlapping slots are not checked.
func (s *SchedulingServiceImpl) CreateAppointment(ctx context.Context, patientID, doctorID uint, date time.Time, at string) (uint, error) {
	if _, err := time.Parse("15:04", at); err != nil {
		return 0, fmt.Errorf("%w: time must be HH:MM", domain.ErrInvalidInput)
	}
	if date.IsZero() {
		return 0, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}

	if _, err := s.patientRepo.FindByID(ctx, patientID); err != nil {
		return 0, err
	}
	if _, err := s.doctorRepo.FindByID(ctx, doctorID); err != nil {
		return 0, err
	}

	initial, err := s.namedStatus(ctx, s.cfg.InitialStatus)
	if err != nil {
		return 0, err
	}

	appointment := &domain.Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      date,
		Time:      at,
		StatusID:  initial.ID,
	}
	if err := s.appointmentRepo.Create(ctx, appointment); err != nil {
		return 0, err
	}
	return appointment.ID, nil
}

// GetAppointment implements domain.SchedulingService
func (s *SchedulingServiceImpl) GetAppointment(ctx context.Context, id uint) (*domain.Appointment, error) {
	return s.appointmentRepo.FindByID(ctx, id)
}

// ChangeStatus implements domain.SchedulingService. Any status in the taxonomy
// may follow any other.
func (s *SchedulingServiceImpl) ChangeStatus(ctx context.Context, appointmentID, statusID uint) error {
	if _, err := s.appointmentRepo.FindByID(ctx, appointmentID); err != nil {
		return err
	}
	if _, err := s.statusRepo.FindByID(ctx, statusID); err != nil {
		return err
	}
	return s.appointmentRepo.UpdateStatus(ctx, appointmentID, statusID)
}

// ListAttendableAppointments implements domain.SchedulingService. The view is
// recomputed on every call.
func (s *SchedulingServiceImpl) ListAttendableAppointments(ctx context.Context, doctorID *uint) ([]domain.Appointment, error) {
	attended, err := s.namedStatus(ctx, s.cfg.AttendedStatus)
	if err != nil {
		return nil, err
	}
	return s.appointmentRepo.ListUncovered(ctx, attended.ID, doctorID)
}

// CreateAttention implements domain.SchedulingService. The appointment status
// is not checked here.
func (s *SchedulingServiceImpl) CreateAttention(ctx context.Context, input domain.NewAttention) (uint, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return 0, fmt.Errorf("%w: reason is required", domain.ErrInvalidInput)
	}
	attendedAt := input.AttendedAt
	if attendedAt.IsZero() {
		attendedAt = s.now()
	}

	attention := &domain.MedicalAttention{
		AppointmentID: input.AppointmentID,
		Reason:        input.Reason,
		Diagnosis:     input.Diagnosis,
		Observations:  input.Observations,
		AttendedAt:    attendedAt,
	}

	err := s.attentionRepo.Create(ctx, attention)
	switch {
	case err == nil:
		s.metrics.Attention(metrics.AttentionCreated)
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.AttentionCreatedEvent, "").
			WithMetadata("appointment_id", input.AppointmentID).
			WithMetadata("attention_id", attention.ID))
		return attention.ID, nil
	case errors.Is(err, domain.ErrAttentionAlreadyExists):
		s.metrics.Attention(metrics.AttentionDuplicate)
	case errors.Is(err, domain.ErrAppointmentNotFound):
		s.metrics.Attention(metrics.AttentionNoTarget)
	default:
		s.metrics.Attention(metrics.AttentionFailed)
		s.log.Error("attention insert failed", zap.Uint("appointment_id", input.AppointmentID), zap.Error(err))
	}
	return 0, err
}

// ListAttentionsByPatient implements domain.SchedulingService, newest first
func (s *SchedulingServiceImpl) ListAttentionsByPatient(ctx context.Context, patientID uint) ([]domain.MedicalAttention, error) {
	if _, err := s.patientRepo.FindByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.attentionRepo.ListByPatient(ctx, patientID)
}

// namedStatus resolves a configured status name. A missing row is reported as
// a consistency failure.
func (s *SchedulingServiceImpl) namedStatus(ctx context.Context, name string) (*domain.AppointmentStatus, error) {
	status, err := s.statusRepo.FindByDescription(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrStatusNotFound) {
			s.log.Error("configured status missing from taxonomy", zap.String("status", name))
			s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.InconsistencyEvent, "").
				WithMetadata("status", name).
				WithError(domain.ErrStatusTaxonomyMissing))
			return nil, fmt.Errorf("%w: %q", domain.ErrStatusTaxonomyMissing, name)
		}
		return nil, err
	}
	return status, nil
}
