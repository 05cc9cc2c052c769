package domain

import "time"

// Role identifies what a user account may do in the clinic back office
type Role uint8

const (
	RoleAdmin     Role = 1
	RoleDoctor    Role = 2
	RoleReception Role = 3
)

// String returns the policy subject name used for the role
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleDoctor:
		return "doctor"
	case RoleReception:
		return "reception"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDoctor || r == RoleReception
}

// ParseRole maps a policy subject name back to a Role
func ParseRole(s string) (Role, bool) {
	for _, r := range []Role{RoleAdmin, RoleDoctor, RoleReception} {
		if r.String() == s {
			return r, true
		}
	}
	return 0, false
}

// User represents a user account in the credential store
type User struct {
	ID                 string
	FirstName          string
	LastName           string
	NationalID         string
	Email              string
	Phone              string
	PasswordHash       string
	Role               Role
	MustChangePassword bool
	RegisteredAt       time.Time
}

// AccountActivity is the per-user security ledger row. It shares its key with User.
type AccountActivity struct {
	UserID         string
	Active         bool
	Blocked        bool
	FailedAttempts int
	BlockedAt      *time.Time
	LastActivity   *time.Time
}

// Doctor is the profile owned by a user account with RoleDoctor
type Doctor struct {
	ID             uint
	UserID         string
	SpecialtyID    uint
	ContractTypeID uint
	Schedule       string
	Phone          string
	Active         bool
}

// Specialty is the medical specialty a doctor profile references
type Specialty struct {
	ID          uint
	Name        string
	Description string
}

// ContractType is the employment arrangement a doctor profile references
type ContractType struct {
	ID          uint
	Description string
}

// Patient is the reference record appointments point to
type Patient struct {
	ID         uint
	FirstName  string
	LastName   string
	NationalID string
	Email      string
	Phone      string
	BirthDate  time.Time
	Active     bool
}

// AppointmentStatus is one named stage of the appointment lifecycle
type AppointmentStatus struct {
	ID          uint
	Description string
}

// Appointment represents a scheduled visit of a patient to a doctor
type Appointment struct {
	ID        uint
	PatientID uint
	DoctorID  uint
	Date      time.Time
	Time      string
	StatusID  uint
}

// MedicalAttention is the clinical record produced once for an appointment
type MedicalAttention struct {
	ID            uint
	AppointmentID uint
	Reason        string
	Diagnosis     *string
	Observations  *string
	AttendedAt    time.Time
}

// NewAttention carries the input for recording a medical attention
type NewAttention struct {
	AppointmentID uint
	Reason        string
	Diagnosis     *string
	Observations  *string
	AttendedAt    time.Time
}

// NewAccount carries the input for registering a user account
type NewAccount struct {
	FirstName  string
	LastName   string
	NationalID string
	Email      string
	Phone      string
	Password   string
	Role       Role
}

// NewDoctorProfile carries the doctor-specific fields for RegisterDoctor
type NewDoctorProfile struct {
	SpecialtyID    uint
	ContractTypeID uint
	Schedule       string
	Phone          string
}

// AuthResult represents authentication outcome
type AuthResult struct {
	User         *User
	DoctorID     *uint
	AccessToken  string
	RefreshToken string
	SessionID    string
	ExpiresIn    int64
}

// Session represents a user session
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
