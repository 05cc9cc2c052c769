package services

import (
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/you/clinicsvc/domain"
)

// SubjectPrefix marks casbin subjects that name a role
const SubjectPrefix = "role_"

// CasbinEnforcerWrapper wraps the real Casbin enforcer to implement our interface
type CasbinEnforcerWrapper struct {
	enforcer *casbin.Enforcer
}

// NewCasbinEnforcerWrapper creates a wrapper for the real Casbin enforcer
func NewCasbinEnforcerWrapper(enforcer *casbin.Enforcer) domain.CasbinEnforcer {
	return &CasbinEnforcerWrapper{enforcer: enforcer}
}

func (w *CasbinEnforcerWrapper) AddPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddPolicy(params...)
}

func (w *CasbinEnforcerWrapper) RemovePolicy(params ...interface{}) (bool, error) {
	return w.enforcer.RemovePolicy(params...)
}

func (w *CasbinEnforcerWrapper) Enforce(rvals ...interface{}) (bool, error) {
	return w.enforcer.Enforce(rvals...)
}

func (w *CasbinEnforcerWrapper) GetPolicy() ([][]string, error) {
	return w.enforcer.GetPolicy()
}

// PolicyServiceImpl implements domain.PolicyService using Casbin.
// Roles are accepted either by name ("doctor") or as subjects ("role_doctor").
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a new policy service
func NewPolicyService(enforcer *casbin.Enforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: NewCasbinEnforcerWrapper(enforcer),
	}
}

// NewPolicyServiceWithEnforcer creates a new policy service with a CasbinEnforcer interface (for testing)
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: enforcer,
	}
}

// Subject returns the casbin subject for a role name
func Subject(role string) string {
	if strings.HasPrefix(role, SubjectPrefix) {
		return role
	}
	return SubjectPrefix + role
}

func validRoleName(role string) bool {
	_, ok := domain.ParseRole(strings.TrimPrefix(role, SubjectPrefix))
	return ok
}

// AddPolicy implements domain.PolicyService. The gorm adapter persists the
// single rule, so the stored table is never rewritten.
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	if !validRoleName(role) {
		return domain.ErrInvalidRole
	}
	_, err := p.enforcer.AddPolicy(Subject(role), resource, action)
	return err
}

// RemovePolicy implements domain.PolicyService
func (p *PolicyServiceImpl) RemovePolicy(role, resource, action string) error {
	if !validRoleName(role) {
		return domain.ErrInvalidRole
	}
	_, err := p.enforcer.RemovePolicy(Subject(role), resource, action)
	return err
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(Subject(role), resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, _ := p.enforcer.GetPolicy()
	return policies
}
