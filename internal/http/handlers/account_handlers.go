package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/clinicsvc/domain"
	"go.uber.org/zap"
)

// AccountHandlers serves the administrative account endpoints
type AccountHandlers struct {
	accountSvc domain.AccountService
	log        *zap.Logger
}

// NewAccountHandlers creates new account handlers
func NewAccountHandlers(accountSvc domain.AccountService, log *zap.Logger) *AccountHandlers {
	return &AccountHandlers{accountSvc: accountSvc, log: orNop(log)}
}

// AccountFields are the account columns shared by both registration requests
type AccountFields struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	NationalID string `json:"national_id"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" binding:"required,min=6"`
}

func (r AccountFields) account() domain.NewAccount {
	return domain.NewAccount{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		NationalID: r.NationalID,
		Email:      r.Email,
		Phone:      r.Phone,
		Password:   r.Password,
	}
}

// RegisterRequest represents an account registration request
type RegisterRequest struct {
	AccountFields
	Role string `json:"role" binding:"required"`
}

// RegisterDoctorRequest represents a doctor registration request
type RegisterDoctorRequest struct {
	AccountFields
	SpecialtyID    uint   `json:"specialty_id" binding:"required"`
	ContractTypeID uint   `json:"contract_type_id" binding:"required"`
	Schedule       string `json:"schedule"`
	OfficePhone    string `json:"office_phone"`
}

// FlagRequest carries a boolean account flag
type FlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// PasswordRequest carries a new password
type PasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// Register handles POST /admin/users
func (h *AccountHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		respondError(c, h.log, domain.ErrInvalidRole)
		return
	}

	account := req.account()
	account.Role = role
	user, err := h.accountSvc.Register(c.Request.Context(), account)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": userJSON(user, nil)})
}

// RegisterDoctor handles POST /admin/doctors
func (h *AccountHandlers) RegisterDoctor(c *gin.Context) {
	var req RegisterDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, doctor, err := h.accountSvc.RegisterDoctor(c.Request.Context(), req.account(), domain.NewDoctorProfile{
		SpecialtyID:    req.SpecialtyID,
		ContractTypeID: req.ContractTypeID,
		Schedule:       req.Schedule,
		Phone:          req.OfficePhone,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": userJSON(user, &doctor.ID)})
}

// SetBlocked handles PATCH /admin/users/:id/blocked
func (h *AccountHandlers) SetBlocked(c *gin.Context) {
	var req FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.accountSvc.SetBlocked(c.Request.Context(), c.Param("id"), *req.Value); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": c.Param("id"), "blocked": *req.Value}})
}

// SetActive handles PATCH /admin/users/:id/active
func (h *AccountHandlers) SetActive(c *gin.Context) {
	var req FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.accountSvc.SetActive(c.Request.Context(), c.Param("id"), *req.Value); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": c.Param("id"), "active": *req.Value}})
}

// ChangePassword handles PUT /admin/users/:id/password
func (h *AccountHandlers) ChangePassword(c *gin.Context) {
	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.accountSvc.ChangePassword(c.Request.Context(), c.Param("id"), req.Password); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /admin/users/:id
func (h *AccountHandlers) Delete(c *gin.Context) {
	if err := h.accountSvc.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
