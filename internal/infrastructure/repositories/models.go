package repositories

import (
	"time"
)

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID                 string             `gorm:"primaryKey;size:8"`
	FirstName          string             `gorm:"size:100;not null"`
	LastName           string             `gorm:"size:100;not null"`
	NationalID         string             `gorm:"size:30;not null"`
	Email              string             `gorm:"uniqueIndex;size:255;not null"`
	Phone              string             `gorm:"size:30"`
	PasswordHash       string             `gorm:"column:password;size:128;not null"`
	RoleID             uint8              `gorm:"index;not null"`
	MustChangePassword bool               `gorm:"not null;default:false"`
	RegisteredAt       time.Time          `gorm:"not null"`
	Activity           *DBAccountActivity `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Doctor             *DBDoctor          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (DBUser) TableName() string { return "users" }

// DBAccountActivity is the ledger row keyed by the owning user id
type DBAccountActivity struct {
	UserID         string `gorm:"primaryKey;size:8"`
	Active         bool   `gorm:"not null"`
	Blocked        bool   `gorm:"not null"`
	FailedAttempts int    `gorm:"not null;default:0;check:failed_attempts >= 0"`
	BlockedAt      *time.Time
	LastActivity   *time.Time
}

func (DBAccountActivity) TableName() string { return "account_activities" }

type DBSpecialty struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:50;not null"`
	Description string `gorm:"size:200"`
}

func (DBSpecialty) TableName() string { return "specialties" }

type DBContractType struct {
	ID          uint   `gorm:"primaryKey"`
	Description string `gorm:"uniqueIndex;size:30;not null"`
}

func (DBContractType) TableName() string { return "contract_types" }

// DBDoctor is the doctor profile; user_id is unique so a user owns at most one
// profile. Specialties and contract types in use cannot be deleted.
type DBDoctor struct {
	ID             uint            `gorm:"primaryKey"`
	UserID         string          `gorm:"uniqueIndex;size:8;not null"`
	SpecialtyID    uint            `gorm:"index;not null"`
	ContractTypeID uint            `gorm:"index;not null"`
	Schedule       string          `gorm:"size:200"`
	Phone          string          `gorm:"size:30"`
	Active         bool            `gorm:"not null"`
	Specialty      *DBSpecialty    `gorm:"foreignKey:SpecialtyID;constraint:OnDelete:RESTRICT"`
	ContractType   *DBContractType `gorm:"foreignKey:ContractTypeID;constraint:OnDelete:RESTRICT"`
}

func (DBDoctor) TableName() string { return "doctors" }

type DBPatient struct {
	ID         uint      `gorm:"primaryKey"`
	FirstName  string    `gorm:"size:100;not null"`
	LastName   string    `gorm:"size:100;not null"`
	NationalID string    `gorm:"size:30;not null;index"`
	Email      string    `gorm:"size:255"`
	Phone      string    `gorm:"size:30"`
	BirthDate  time.Time `gorm:"not null"`
	Active     bool      `gorm:"not null"`
}

func (DBPatient) TableName() string { return "patients" }

type DBAppointmentStatus struct {
	ID          uint   `gorm:"primaryKey"`
	Description string `gorm:"uniqueIndex;size:30;not null"`
}

func (DBAppointmentStatus) TableName() string { return "appointment_statuses" }

// DBAppointment references its doctor with ON DELETE RESTRICT, which backs the
// dependent-appointment check at the storage layer.
type DBAppointment struct {
	ID        uint                 `gorm:"primaryKey"`
	PatientID uint                 `gorm:"index;not null"`
	DoctorID  uint                 `gorm:"index;not null"`
	Date      time.Time            `gorm:"column:appointment_date;not null"`
	Time      string               `gorm:"column:appointment_time;size:5;not null"`
	StatusID  uint                 `gorm:"index;not null"`
	Patient   *DBPatient           `gorm:"foreignKey:PatientID;constraint:OnDelete:RESTRICT"`
	Doctor    *DBDoctor            `gorm:"foreignKey:DoctorID;constraint:OnDelete:RESTRICT"`
	Status    *DBAppointmentStatus `gorm:"foreignKey:StatusID;constraint:OnDelete:RESTRICT"`
}

func (DBAppointment) TableName() string { return "appointments" }

// DBMedicalAttention carries the unique index that enforces one attention per appointment
type DBMedicalAttention struct {
	ID            uint           `gorm:"primaryKey"`
	AppointmentID uint           `gorm:"uniqueIndex;not null"`
	Reason        string         `gorm:"size:300;not null"`
	Diagnosis     *string        `gorm:"size:300"`
	Observations  *string        `gorm:"size:400"`
	AttendedAt    time.Time      `gorm:"not null"`
	Appointment   *DBAppointment `gorm:"foreignKey:AppointmentID;constraint:OnDelete:RESTRICT"`
}

func (DBMedicalAttention) TableName() string { return "medical_attentions" }

// Models lists every table in migration order
func Models() []interface{} {
	return []interface{}{
		&DBUser{},
		&DBAccountActivity{},
		&DBSpecialty{},
		&DBContractType{},
		&DBDoctor{},
		&DBPatient{},
		&DBAppointmentStatus{},
		&DBAppointment{},
		&DBMedicalAttention{},
	}
}
