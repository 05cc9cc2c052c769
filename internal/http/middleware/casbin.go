package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/you/clinicsvc/domain"
	"github.com/you/clinicsvc/internal/config"
	"go.uber.org/zap"
)

// CasbinMW authorizes requests by role and keeps doctors on their own records
type CasbinMW struct {
	enforcer domain.CasbinEnforcer
	rules    []config.OwnershipRule
	log      *zap.Logger
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(enforcer domain.CasbinEnforcer, rules []config.OwnershipRule, log *zap.Logger) *CasbinMW {
	if log == nil {
		log = zap.NewNop()
	}
	return &CasbinMW{enforcer: enforcer, rules: rules, log: log}
}

// Enforce returns the casbin authorization middleware. The object checked is
// the registered route pattern, not the raw path.
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenUserID := c.GetString(CtxUserID)
		role := c.GetString(CtxUserRole)
		if tokenUserID == "" || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID or role not found in token"})
			return
		}

		if headerUserID := c.GetHeader("x-user-id"); headerUserID != "" && headerUserID != tokenUserID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Header x-user-id does not match token user ID"})
			return
		}

		route := c.FullPath()
		method := c.Request.Method

		allowed, err := mw.enforcer.Enforce("role_"+role, route, method)
		if err != nil {
			mw.log.Error("casbin enforce failed", zap.String("route", route), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access Denied"})
			return
		}

		if role == domain.RoleDoctor.String() && !mw.ownsRequest(c, route, method) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Doctors may only access their own appointments"})
			return
		}

		c.Next()
	}
}

// ownsRequest reports false when a matching rule names a doctor id that is not
// the caller's. An absent parameter is left to the handler's default.
func (mw *CasbinMW) ownsRequest(c *gin.Context, route, method string) bool {
	for _, rule := range mw.rules {
		if rule.Path != route || rule.Method != method {
			continue
		}
		requested := extractParam(c, rule.Source, rule.ParamName)
		if requested == "" {
			continue
		}
		own, ok := c.Get(CtxDoctorID)
		if !ok {
			return false
		}
		id, ok := own.(uint)
		if !ok || requested != strconv.FormatUint(uint64(id), 10) {
			return false
		}
	}
	return true
}
