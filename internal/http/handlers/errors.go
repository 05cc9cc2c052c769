package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/clinicsvc/domain"
	"go.uber.org/zap"
)

type errorMapping struct {
	err     error
	status  int
	message string
}

// errorTable is checked in order; the first match wins
var errorTable = []errorMapping{
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{domain.ErrTokenExpired, http.StatusUnauthorized, "Token expired"},
	{domain.ErrTokenInvalid, http.StatusUnauthorized, "Invalid token"},
	{domain.ErrTokenMalformed, http.StatusUnauthorized, "Invalid token"},
	{domain.ErrSessionNotFound, http.StatusUnauthorized, "Session expired"},
	{domain.ErrSessionExpired, http.StatusUnauthorized, "Session expired"},
	{domain.ErrAccountInactive, http.StatusForbidden, "Account is inactive"},
	{domain.ErrAccountLocked, http.StatusLocked, "Account is locked"},
	{domain.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{domain.ErrPatientNotFound, http.StatusNotFound, "Patient not found"},
	{domain.ErrDoctorNotFound, http.StatusNotFound, "Doctor not found"},
	{domain.ErrAppointmentNotFound, http.StatusNotFound, "Appointment not found"},
	{domain.ErrStatusNotFound, http.StatusNotFound, "Appointment status not found"},
	{domain.ErrSpecialtyNotFound, http.StatusNotFound, "Specialty not found"},
	{domain.ErrContractTypeNotFound, http.StatusNotFound, "Contract type not found"},
	{domain.ErrUserAlreadyExists, http.StatusConflict, "User already exists"},
	{domain.ErrAttentionAlreadyExists, http.StatusConflict, "Medical attention already recorded for this appointment"},
	{domain.ErrHasDependentAppointments, http.StatusConflict, "Doctor has appointments and cannot be deleted"},
	{domain.ErrInvalidRole, http.StatusBadRequest, "Invalid role"},
}

// respondError writes the JSON error envelope for err. Consistency and storage
// failures share one generic 500 body; their kind only goes to the log.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": m.message})
			return
		}
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := "unexpected"
	switch {
	case domain.IsConsistencyError(err):
		kind = "inconsistency"
	case errors.Is(err, domain.ErrStorageUnavailable):
		kind = "storage"
	}
	log.Error("request failed",
		zap.String("kind", kind),
		zap.String("method", c.Request.Method),
		zap.String("route", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
