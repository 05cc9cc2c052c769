package mocks

import (
	"context"
	"time"

	"github.com/you/clinicsvc/domain"
)

// MockSchedulingService implements domain.SchedulingService interface for testing
type MockSchedulingService struct {
	CreatePatientFunc              func(ctx context.Context, patient *domain.Patient) error
	GetPatientFunc                 func(ctx context.Context, id uint) (*domain.Patient, error)
	ListStatusesFunc               func(ctx context.Context) ([]domain.AppointmentStatus, error)
	ListSpecialtiesFunc            func(ctx context.Context) ([]domain.Specialty, error)
	ListContractTypesFunc          func(ctx context.Context) ([]domain.ContractType, error)
	CreateAppointmentFunc          func(ctx context.Context, patientID, doctorID uint, date time.Time, at string) (uint, error)
	GetAppointmentFunc             func(ctx context.Context, id uint) (*domain.Appointment, error)
	ChangeStatusFunc               func(ctx context.Context, appointmentID, statusID uint) error
	ListAttendableAppointmentsFunc func(ctx context.Context, doctorID *uint) ([]domain.Appointment, error)
	CreateAttentionFunc            func(ctx context.Context, input domain.NewAttention) (uint, error)
	ListAttentionsByPatientFunc    func(ctx context.Context, patientID uint) ([]domain.MedicalAttention, error)
}

// NewMockSchedulingService creates a new MockSchedulingService with default behaviors
func NewMockSchedulingService() *MockSchedulingService {
	return &MockSchedulingService{}
}

func (m *MockSchedulingService) CreatePatient(ctx context.Context, patient *domain.Patient) error {
	if m.CreatePatientFunc != nil {
		return m.CreatePatientFunc(ctx, patient)
	}
	patient.ID = 1
	return nil
}

func (m *MockSchedulingService) GetPatient(ctx context.Context, id uint) (*domain.Patient, error) {
	if m.GetPatientFunc != nil {
		return m.GetPatientFunc(ctx, id)
	}
	return nil, domain.ErrPatientNotFound
}

func (m *MockSchedulingService) ListStatuses(ctx context.Context) ([]domain.AppointmentStatus, error) {
	if m.ListStatusesFunc != nil {
		return m.ListStatusesFunc(ctx)
	}
	return nil, nil
}

func (m *MockSchedulingService) ListSpecialties(ctx context.Context) ([]domain.Specialty, error) {
	if m.ListSpecialtiesFunc != nil {
		return m.ListSpecialtiesFunc(ctx)
	}
	return nil, nil
}

func (m *MockSchedulingService) ListContractTypes(ctx context.Context) ([]domain.ContractType, error) {
	if m.ListContractTypesFunc != nil {
		return m.ListContractTypesFunc(ctx)
	}
	return nil, nil
}

func (m *MockSchedulingService) CreateAppointment(ctx context.Context, patientID, doctorID uint, date time.Time, at string) (uint, error) {
	if m.CreateAppointmentFunc != nil {
		return m.CreateAppointmentFunc(ctx, patientID, doctorID, date, at)
	}
	return 1, nil
}

func (m *MockSchedulingService) GetAppointment(ctx context.Context, id uint) (*domain.Appointment, error) {
	if m.GetAppointmentFunc != nil {
		return m.GetAppointmentFunc(ctx, id)
	}
	return nil, domain.ErrAppointmentNotFound
}

func (m *MockSchedulingService) ChangeStatus(ctx context.Context, appointmentID, statusID uint) error {
	if m.ChangeStatusFunc != nil {
		return m.ChangeStatusFunc(ctx, appointmentID, statusID)
	}
	return nil
}

func (m *MockSchedulingService) ListAttendableAppointments(ctx context.Context, doctorID *uint) ([]domain.Appointment, error) {
	if m.ListAttendableAppointmentsFunc != nil {
		return m.ListAttendableAppointmentsFunc(ctx, doctorID)
	}
	return nil, nil
}

func (m *MockSchedulingService) CreateAttention(ctx context.Context, input domain.NewAttention) (uint, error) {
	if m.CreateAttentionFunc != nil {
		return m.CreateAttentionFunc(ctx, input)
	}
	return 1, nil
}

func (m *MockSchedulingService) ListAttentionsByPatient(ctx context.Context, patientID uint) ([]domain.MedicalAttention, error) {
	if m.ListAttentionsByPatientFunc != nil {
		return m.ListAttentionsByPatientFunc(ctx, patientID)
	}
	return nil, nil
}

// Compile-time interface compliance verification
var _ domain.SchedulingService = (*MockSchedulingService)(nil)
