package repositories

import (
	"context"

	"github.com/you/clinicsvc/domain"
	"gorm.io/gorm"
)

// DoctorRepositoryImpl implements domain.DoctorRepository
type DoctorRepositoryImpl struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) domain.DoctorRepository {
	return &DoctorRepositoryImpl{db: db}
}

func (r *DoctorRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Doctor, error) {
	var row DBDoctor
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFoundOr("doctors.find_by_id", err, domain.ErrDoctorNotFound)
	}
	return doctorToDomain(&row), nil
}

// FindByUserID resolves the reverse link from an account to its doctor profile
func (r *DoctorRepositoryImpl) FindByUserID(ctx context.Context, userID string) (*domain.Doctor, error) {
	var row DBDoctor
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, notFoundOr("doctors.find_by_user_id", err, domain.ErrDoctorNotFound)
	}
	return doctorToDomain(&row), nil
}

// PatientRepositoryImpl implements domain.PatientRepository
type PatientRepositoryImpl struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) domain.PatientRepository {
	return &PatientRepositoryImpl{db: db}
}

func (r *PatientRepositoryImpl) Create(ctx context.Context, patient *domain.Patient) error {
	row := &DBPatient{
		FirstName:  patient.FirstName,
		LastName:   patient.LastName,
		NationalID: patient.NationalID,
		Email:      patient.Email,
		Phone:      patient.Phone,
		BirthDate:  patient.BirthDate,
		Active:     patient.Active,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return domain.NewStorageError("patients.create", err)
	}
	patient.ID = row.ID
	return nil
}

func (r *PatientRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Patient, error) {
	var row DBPatient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFoundOr("patients.find_by_id", err, domain.ErrPatientNotFound)
	}
	return &domain.Patient{
		ID:         row.ID,
		FirstName:  row.FirstName,
		LastName:   row.LastName,
		NationalID: row.NationalID,
		Email:      row.Email,
		Phone:      row.Phone,
		BirthDate:  row.BirthDate,
		Active:     row.Active,
	}, nil
}

// StatusRepositoryImpl implements domain.StatusRepository over the status taxonomy table
type StatusRepositoryImpl struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) domain.StatusRepository {
	return &StatusRepositoryImpl{db: db}
}

func (r *StatusRepositoryImpl) List(ctx context.Context) ([]domain.AppointmentStatus, error) {
	var rows []DBAppointmentStatus
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, domain.NewStorageError("appointment_statuses.list", err)
	}
	statuses := make([]domain.AppointmentStatus, 0, len(rows))
	for _, row := range rows {
		statuses = append(statuses, domain.AppointmentStatus{ID: row.ID, Description: row.Description})
	}
	return statuses, nil
}

func (r *StatusRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.AppointmentStatus, error) {
	var row DBAppointmentStatus
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFoundOr("appointment_statuses.find_by_id", err, domain.ErrStatusNotFound)
	}
	return &domain.AppointmentStatus{ID: row.ID, Description: row.Description}, nil
}

func (r *StatusRepositoryImpl) FindByDescription(ctx context.Context, description string) (*domain.AppointmentStatus, error) {
	var row DBAppointmentStatus
	if err := r.db.WithContext(ctx).Where("description = ?", description).First(&row).Error; err != nil {
		return nil, notFoundOr("appointment_statuses.find_by_description", err, domain.ErrStatusNotFound)
	}
	return &domain.AppointmentStatus{ID: row.ID, Description: row.Description}, nil
}

// CatalogRepositoryImpl implements domain.CatalogRepository
type CatalogRepositoryImpl struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) domain.CatalogRepository {
	return &CatalogRepositoryImpl{db: db}
}

func (r *CatalogRepositoryImpl) ListSpecialties(ctx context.Context) ([]domain.Specialty, error) {
	var rows []DBSpecialty
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, domain.NewStorageError("specialties.list", err)
	}
	specialties := make([]domain.Specialty, 0, len(rows))
	for _, row := range rows {
		specialties = append(specialties, domain.Specialty{ID: row.ID, Name: row.Name, Description: row.Description})
	}
	return specialties, nil
}

func (r *CatalogRepositoryImpl) ListContractTypes(ctx context.Context) ([]domain.ContractType, error) {
	var rows []DBContractType
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, domain.NewStorageError("contract_types.list", err)
	}
	types := make([]domain.ContractType, 0, len(rows))
	for _, row := range rows {
		types = append(types, domain.ContractType{ID: row.ID, Description: row.Description})
	}
	return types, nil
}

func doctorToDB(d *domain.Doctor) *DBDoctor {
	return &DBDoctor{
		ID:             d.ID,
		UserID:         d.UserID,
		SpecialtyID:    d.SpecialtyID,
		ContractTypeID: d.ContractTypeID,
		Schedule:       d.Schedule,
		Phone:          d.Phone,
		Active:         d.Active,
	}
}

func doctorToDomain(row *DBDoctor) *domain.Doctor {
	return &domain.Doctor{
		ID:             row.ID,
		UserID:         row.UserID,
		SpecialtyID:    row.SpecialtyID,
		ContractTypeID: row.ContractTypeID,
		Schedule:       row.Schedule,
		Phone:          row.Phone,
		Active:         row.Active,
	}
}
