package mocks

import (
	"context"

	"github.com/you/clinicsvc/domain"
)

// MockDoctorRepository implements domain.DoctorRepository for testing
type MockDoctorRepository struct {
	FindByIDFunc     func(ctx context.Context, id uint) (*domain.Doctor, error)
	FindByUserIDFunc func(ctx context.Context, userID string) (*domain.Doctor, error)
}

func NewMockDoctorRepository() *MockDoctorRepository {
	return &MockDoctorRepository{}
}

func (m *MockDoctorRepository) FindByID(ctx context.Context, id uint) (*domain.Doctor, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrDoctorNotFound
}

func (m *MockDoctorRepository) FindByUserID(ctx context.Context, userID string) (*domain.Doctor, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	return nil, domain.ErrDoctorNotFound
}

// MockPatientRepository implements domain.PatientRepository for testing
type MockPatientRepository struct {
	CreateFunc   func(ctx context.Context, patient *domain.Patient) error
	FindByIDFunc func(ctx context.Context, id uint) (*domain.Patient, error)
}

func NewMockPatientRepository() *MockPatientRepository {
	return &MockPatientRepository{}
}

func (m *MockPatientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, patient)
	}
	patient.ID = 1
	return nil
}

func (m *MockPatientRepository) FindByID(ctx context.Context, id uint) (*domain.Patient, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrPatientNotFound
}

// MockCatalogRepository implements domain.CatalogRepository for testing.
// By default it serves one specialty and one contract type.
type MockCatalogRepository struct {
	ListSpecialtiesFunc   func(ctx context.Context) ([]domain.Specialty, error)
	ListContractTypesFunc func(ctx context.Context) ([]domain.ContractType, error)
}

func NewMockCatalogRepository() *MockCatalogRepository {
	return &MockCatalogRepository{}
}

func (m *MockCatalogRepository) ListSpecialties(ctx context.Context) ([]domain.Specialty, error) {
	if m.ListSpecialtiesFunc != nil {
		return m.ListSpecialtiesFunc(ctx)
	}
	return []domain.Specialty{{ID: 1, Name: "General Medicine"}}, nil
}

func (m *MockCatalogRepository) ListContractTypes(ctx context.Context) ([]domain.ContractType, error) {
	if m.ListContractTypesFunc != nil {
		return m.ListContractTypesFunc(ctx)
	}
	return []domain.ContractType{{ID: 1, Description: "Full time"}}, nil
}

// MockStatusRepository implements domain.StatusRepository for testing.
// By default it serves a fixed taxonomy: 1 Scheduled, 2 Attended, 3 Cancelled.
type MockStatusRepository struct {
	ListFunc              func(ctx context.Context) ([]domain.AppointmentStatus, error)
	FindByIDFunc          func(ctx context.Context, id uint) (*domain.AppointmentStatus, error)
	FindByDescriptionFunc func(ctx context.Context, description string) (*domain.AppointmentStatus, error)
}

func NewMockStatusRepository() *MockStatusRepository {
	return &MockStatusRepository{}
}

var defaultStatuses = []domain.AppointmentStatus{
	{ID: 1, Description: "Scheduled"},
	{ID: 2, Description: "Attended"},
	{ID: 3, Description: "Cancelled"},
}

func (m *MockStatusRepository) List(ctx context.Context) ([]domain.AppointmentStatus, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return append([]domain.AppointmentStatus(nil), defaultStatuses...), nil
}

func (m *MockStatusRepository) FindByID(ctx context.Context, id uint) (*domain.AppointmentStatus, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	for _, s := range defaultStatuses {
		if s.ID == id {
			status := s
			return &status, nil
		}
	}
	return nil, domain.ErrStatusNotFound
}

func (m *MockStatusRepository) FindByDescription(ctx context.Context, description string) (*domain.AppointmentStatus, error) {
	if m.FindByDescriptionFunc != nil {
		return m.FindByDescriptionFunc(ctx, description)
	}
	for _, s := range defaultStatuses {
		if s.Description == description {
			status := s
			return &status, nil
		}
	}
	return nil, domain.ErrStatusNotFound
}

// MockAppointmentRepository implements domain.AppointmentRepository for testing
type MockAppointmentRepository struct {
	CreateFunc        func(ctx context.Context, appointment *domain.Appointment) error
	FindByIDFunc      func(ctx context.Context, id uint) (*domain.Appointment, error)
	UpdateStatusFunc  func(ctx context.Context, id, statusID uint) error
	ListUncoveredFunc func(ctx context.Context, statusID uint, doctorID *uint) ([]domain.Appointment, error)
}

func NewMockAppointmentRepository() *MockAppointmentRepository {
	return &MockAppointmentRepository{}
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, appointment)
	}
	appointment.ID = 1
	return nil
}

func (m *MockAppointmentRepository) FindByID(ctx context.Context, id uint) (*domain.Appointment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrAppointmentNotFound
}

func (m *MockAppointmentRepository) UpdateStatus(ctx context.Context, id, statusID uint) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, statusID)
	}
	return nil
}

func (m *MockAppointmentRepository) ListUncovered(ctx context.Context, statusID uint, doctorID *uint) ([]domain.Appointment, error) {
	if m.ListUncoveredFunc != nil {
		return m.ListUncoveredFunc(ctx, statusID, doctorID)
	}
	return nil, nil
}

// MockAttentionRepository implements domain.AttentionRepository for testing
type MockAttentionRepository struct {
	CreateFunc        func(ctx context.Context, attention *domain.MedicalAttention) error
	ListByPatientFunc func(ctx context.Context, patientID uint) ([]domain.MedicalAttention, error)
}

func NewMockAttentionRepository() *MockAttentionRepository {
	return &MockAttentionRepository{}
}

func (m *MockAttentionRepository) Create(ctx context.Context, attention *domain.MedicalAttention) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, attention)
	}
	attention.ID = 1
	return nil
}

func (m *MockAttentionRepository) ListByPatient(ctx context.Context, patientID uint) ([]domain.MedicalAttention, error) {
	if m.ListByPatientFunc != nil {
		return m.ListByPatientFunc(ctx, patientID)
	}
	return nil, nil
}

// Compile-time interface compliance verification
var (
	_ domain.DoctorRepository      = (*MockDoctorRepository)(nil)
	_ domain.PatientRepository     = (*MockPatientRepository)(nil)
	_ domain.StatusRepository      = (*MockStatusRepository)(nil)
	_ domain.CatalogRepository     = (*MockCatalogRepository)(nil)
	_ domain.AppointmentRepository = (*MockAppointmentRepository)(nil)
	_ domain.AttentionRepository   = (*MockAttentionRepository)(nil)
)
