package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/you/clinicsvc/internal/http/handlers"
	"github.com/you/clinicsvc/internal/http/middleware"
)

// Handlers groups the HTTP handlers the router mounts
type Handlers struct {
	Auth       *handlers.AuthHandlers
	Accounts   *handlers.AccountHandlers
	Scheduling *handlers.SchedulingHandlers
	Policies   *handlers.PolicyHandlers
}

// BuildRouter mounts the public auth routes, /health and /metrics, and every
// other route behind JWT authentication and casbin authorization.
func BuildRouter(h Handlers, jwtmw *middleware.AuthMW, cb *middleware.CasbinMW, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	auth := r.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	v := r.Group("/").Use(jwtmw.WithJWT(), cb.Enforce())
	v.GET("/auth/me", h.Auth.Me)
	v.POST("/auth/logout", h.Auth.Logout)

	v.POST("/patients", h.Scheduling.CreatePatient)
	v.GET("/patients/:id", h.Scheduling.GetPatient)
	v.GET("/patients/:id/attentions", h.Scheduling.ListAttentions)
	v.GET("/appointment-statuses", h.Scheduling.ListStatuses)
	v.GET("/specialties", h.Scheduling.ListSpecialties)
	v.GET("/contract-types", h.Scheduling.ListContractTypes)
	v.POST("/appointments", h.Scheduling.CreateAppointment)
	v.GET("/appointments/attendable", h.Scheduling.ListAttendable)
	v.GET("/appointments/:id", h.Scheduling.GetAppointment)
	v.PATCH("/appointments/:id/status", h.Scheduling.ChangeStatus)
	v.POST("/attentions", h.Scheduling.CreateAttention)

	adm := r.Group("/admin").Use(jwtmw.WithJWT(), cb.Enforce())
	adm.POST("/users", h.Accounts.Register)
	adm.POST("/doctors", h.Accounts.RegisterDoctor)
	adm.PATCH("/users/:id/blocked", h.Accounts.SetBlocked)
	adm.PATCH("/users/:id/active", h.Accounts.SetActive)
	adm.PUT("/users/:id/password", h.Accounts.ChangePassword)
	adm.DELETE("/users/:id", h.Accounts.Delete)
	adm.GET("/policies", h.Policies.List)
	adm.POST("/policies", h.Policies.Add)
	adm.DELETE("/policies", h.Policies.Remove)

	return r
}
