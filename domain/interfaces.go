package domain

import (
	"context"
	"time"
)

// UserRepository defines credential store operations
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// CreateWithActivity inserts the user and its ledger row (and the doctor profile when
	// given) in one transaction. user.ID is filled in on success. A profile naming an
	// unknown specialty or contract type fails with ErrSpecialtyNotFound or
	// ErrContractTypeNotFound.
	CreateWithActivity(ctx context.Context, user *User, activity *AccountActivity, doctor *Doctor) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// DeleteCascade removes the user, its ledger row and its doctor profile atomically.
	// Doctors with appointments are refused with ErrHasDependentAppointments.
	DeleteCascade(ctx context.Context, id string) error
}

// ActivityRepository defines account activity ledger operations
type ActivityRepository interface {
	FindByUserID(ctx context.Context, userID string) (*AccountActivity, error)
	// CompareAndSwap writes next only if the stored row still equals expected on
	// active, blocked and failed_attempts. It reports whether the write happened.
	CompareAndSwap(ctx context.Context, expected, next AccountActivity) (bool, error)
}

// DoctorRepository defines doctor profile lookups
type DoctorRepository interface {
	FindByID(ctx context.Context, id uint) (*Doctor, error)
	FindByUserID(ctx context.Context, userID string) (*Doctor, error)
}

// PatientRepository defines the patient reference data operations the core needs
type PatientRepository interface {
	Create(ctx context.Context, patient *Patient) error
	FindByID(ctx context.Context, id uint) (*Patient, error)
}

// StatusRepository exposes the appointment status taxonomy
type StatusRepository interface {
	List(ctx context.Context) ([]AppointmentStatus, error)
	FindByID(ctx context.Context, id uint) (*AppointmentStatus, error)
	FindByDescription(ctx context.Context, description string) (*AppointmentStatus, error)
}

// CatalogRepository exposes the reference tables doctor profiles point to
type CatalogRepository interface {
	ListSpecialties(ctx context.Context) ([]Specialty, error)
	ListContractTypes(ctx context.Context) ([]ContractType, error)
}

// AppointmentRepository defines the appointment store
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *Appointment) error
	FindByID(ctx context.Context, id uint) (*Appointment, error)
	UpdateStatus(ctx context.Context, id, statusID uint) error
	// ListUncovered returns appointments in statusID that no medical attention references.
	ListUncovered(ctx context.Context, statusID uint, doctorID *uint) ([]Appointment, error)
}

// AttentionRepository defines the medical attention store
type AttentionRepository interface {
	// Create inserts the attention if its appointment exists and has no attention yet
	Create(ctx context.Context, attention *MedicalAttention) error
	ListByPatient(ctx context.Context, patientID uint) ([]MedicalAttention, error)
}

// SessionRepository defines session data access operations
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	// DeleteByUser revokes every session of the account
	DeleteByUser(ctx context.Context, userID string) error
}

// AuthService defines authentication business logic
type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetUserProfile(ctx context.Context, userID string) (*User, error)
}

// AccountService defines administrative account operations
type AccountService interface {
	Register(ctx context.Context, account NewAccount) (*User, error)
	RegisterDoctor(ctx context.Context, account NewAccount, profile NewDoctorProfile) (*User, *Doctor, error)
	SetBlocked(ctx context.Context, userID string, blocked bool) error
	SetActive(ctx context.Context, userID string, active bool) error
	ChangePassword(ctx context.Context, userID, password string) error
	DeleteAccount(ctx context.Context, userID string) error
}

// SchedulingService defines appointment lifecycle operations
type SchedulingService interface {
	CreatePatient(ctx context.Context, patient *Patient) error
	GetPatient(ctx context.Context, id uint) (*Patient, error)
	ListStatuses(ctx context.Context) ([]AppointmentStatus, error)
	ListSpecialties(ctx context.Context) ([]Specialty, error)
	ListContractTypes(ctx context.Context) ([]ContractType, error)
	CreateAppointment(ctx context.Context, patientID, doctorID uint, date time.Time, at string) (uint, error)
	GetAppointment(ctx context.Context, id uint) (*Appointment, error)
	ChangeStatus(ctx context.Context, appointmentID, statusID uint) error
	ListAttendableAppointments(ctx context.Context, doctorID *uint) ([]Appointment, error)
	CreateAttention(ctx context.Context, input NewAttention) (uint, error)
	ListAttentionsByPatient(ctx context.Context, patientID uint) ([]MedicalAttention, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines token operations
type TokenService interface {
	GenerateAccessToken(userID string, role Role, doctorID *uint, sessionID string) (string, error)
	GenerateRefreshToken(userID string, role Role, doctorID *uint, sessionID string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Role      Role   `json:"role"`
	DoctorID  *uint  `json:"doctor_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
}
