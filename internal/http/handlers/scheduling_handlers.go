package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/clinicsvc/domain"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// SchedulingHandlers serves patients, appointments and medical attentions
type SchedulingHandlers struct {
	schedulingSvc domain.SchedulingService
	log           *zap.Logger
}

// NewSchedulingHandlers creates new scheduling handlers
func NewSchedulingHandlers(schedulingSvc domain.SchedulingService, log *zap.Logger) *SchedulingHandlers {
	return &SchedulingHandlers{schedulingSvc: schedulingSvc, log: orNop(log)}
}

// PatientRequest represents a patient creation request
type PatientRequest struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	NationalID string `json:"national_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	BirthDate  string `json:"birth_date" binding:"required"`
}

// AppointmentRequest represents an appointment booking request
type AppointmentRequest struct {
	PatientID uint   `json:"patient_id" binding:"required"`
	DoctorID  uint   `json:"doctor_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
}

// StatusRequest represents an appointment status change
type StatusRequest struct {
	StatusID uint `json:"status_id" binding:"required"`
}

// AttentionRequest represents a medical attention record
type AttentionRequest struct {
	AppointmentID uint       `json:"appointment_id" binding:"required"`
	Reason        string     `json:"reason" binding:"required"`
	Diagnosis     *string    `json:"diagnosis"`
	Observations  *string    `json:"observations"`
	AttendedAt    *time.Time `json:"attended_at"`
}

// CreatePatient handles POST /patients
func (h *SchedulingHandlers) CreatePatient(c *gin.Context) {
	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	birth, err := time.Parse(dateLayout, req.BirthDate)
	if err != nil {
		badRequest(c, fmt.Errorf("birth_date must be YYYY-MM-DD"))
		return
	}

	patient := &domain.Patient{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NationalID: req.NationalID,
		Email:      req.Email,
		Phone:      req.Phone,
		BirthDate:  birth,
	}
	if err := h.schedulingSvc.CreatePatient(c.Request.Context(), patient); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": patientJSON(patient)})
}

// GetPatient handles GET /patients/:id
func (h *SchedulingHandlers) GetPatient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	patient, err := h.schedulingSvc.GetPatient(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": patientJSON(patient)})
}

// ListStatuses handles GET /appointment-statuses
func (h *SchedulingHandlers) ListStatuses(c *gin.Context) {
	statuses, err := h.schedulingSvc.ListStatuses(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]gin.H, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, gin.H{"id": s.ID, "description": s.Description})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// ListSpecialties handles GET /specialties
func (h *SchedulingHandlers) ListSpecialties(c *gin.Context) {
	specialties, err := h.schedulingSvc.ListSpecialties(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]gin.H, 0, len(specialties))
	for _, s := range specialties {
		out = append(out, gin.H{"id": s.ID, "name": s.Name, "description": s.Description})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// ListContractTypes handles GET /contract-types
func (h *SchedulingHandlers) ListContractTypes(c *gin.Context) {
	types, err := h.schedulingSvc.ListContractTypes(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]gin.H, 0, len(types))
	for _, t := range types {
		out = append(out, gin.H{"id": t.ID, "description": t.Description})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// CreateAppointment handles POST /appointments
func (h *SchedulingHandlers) CreateAppointment(c *gin.Context) {
	var req AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		badRequest(c, fmt.Errorf("date must be YYYY-MM-DD"))
		return
	}

	id, err := h.schedulingSvc.CreateAppointment(c.Request.Context(), req.PatientID, req.DoctorID, date, req.Time)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": id}})
}

// GetAppointment handles GET /appointments/:id
func (h *SchedulingHandlers) GetAppointment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	appointment, err := h.schedulingSvc.GetAppointment(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": appointmentJSON(appointment)})
}

// ChangeStatus handles PATCH /appointments/:id/status
func (h *SchedulingHandlers) ChangeStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.schedulingSvc.ChangeStatus(c.Request.Context(), id, req.StatusID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "status_id": req.StatusID}})
}

// ListAttendable handles GET /appointments/attendable. Doctors default to their
// own appointments; other roles see every doctor unless doctor_id is given.
func (h *SchedulingHandlers) ListAttendable(c *gin.Context) {
	var doctorID *uint
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c, fmt.Errorf("doctor_id must be a positive integer"))
			return
		}
		v := uint(id)
		doctorID = &v
	} else if c.GetString("user_role") == domain.RoleDoctor.String() {
		doctorID = doctorIDFromContext(c)
		if doctorID == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account has no doctor profile"})
			return
		}
	}

	appointments, err := h.schedulingSvc.ListAttendableAppointments(c.Request.Context(), doctorID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]gin.H, 0, len(appointments))
	for i := range appointments {
		out = append(out, appointmentJSON(&appointments[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// CreateAttention handles POST /attentions
func (h *SchedulingHandlers) CreateAttention(c *gin.Context) {
	var req AttentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	input := domain.NewAttention{
		AppointmentID: req.AppointmentID,
		Reason:        req.Reason,
		Diagnosis:     req.Diagnosis,
		Observations:  req.Observations,
	}
	if req.AttendedAt != nil {
		input.AttendedAt = *req.AttendedAt
	}

	id, err := h.schedulingSvc.CreateAttention(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": id, "appointment_id": req.AppointmentID}})
}

// ListAttentions handles GET /patients/:id/attentions
func (h *SchedulingHandlers) ListAttentions(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	attentions, err := h.schedulingSvc.ListAttentionsByPatient(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]gin.H, 0, len(attentions))
	for _, a := range attentions {
		out = append(out, gin.H{
			"id":             a.ID,
			"appointment_id": a.AppointmentID,
			"reason":         a.Reason,
			"diagnosis":      a.Diagnosis,
			"observations":   a.Observations,
			"attended_at":    a.AttendedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func patientJSON(p *domain.Patient) gin.H {
	return gin.H{
		"id":          p.ID,
		"first_name":  p.FirstName,
		"last_name":   p.LastName,
		"national_id": p.NationalID,
		"email":       p.Email,
		"phone":       p.Phone,
		"birth_date":  p.BirthDate.Format(dateLayout),
		"active":      p.Active,
	}
}

func appointmentJSON(a *domain.Appointment) gin.H {
	return gin.H{
		"id":         a.ID,
		"patient_id": a.PatientID,
		"doctor_id":  a.DoctorID,
		"date":       a.Date.Format(dateLayout),
		"time":       a.Time,
		"status_id":  a.StatusID,
	}
}
