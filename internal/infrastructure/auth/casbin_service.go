package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// DefaultModel matches role subjects against registered route patterns. The
// request object is the gin route (c.FullPath()), so /appointments/:id never
// matches the static /appointments/attendable route; a trailing * covers a subtree.
const DefaultModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// CasbinService owns the enforcer backed by the casbin_rule table
type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService loads the model from modelPath, or the embedded DefaultModel
// when modelPath is empty, and loads persisted policies through the gorm adapter.
func NewCasbinService(db *gorm.DB, modelPath string) (*CasbinService, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("casbin adapter: %w", err)
	}

	m, err := loadModel(modelPath)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m, adp)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("casbin load policy: %w", err)
	}
	return &CasbinService{E: e}, nil
}

// NewMemoryEnforcer builds an enforcer over DefaultModel without persistence
func NewMemoryEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(DefaultModel)
	if err != nil {
		return nil, err
	}
	return casbin.NewEnforcer(m)
}

func loadModel(path string) (model.Model, error) {
	if path == "" {
		m, err := model.NewModelFromString(DefaultModel)
		if err != nil {
			return nil, fmt.Errorf("casbin default model: %w", err)
		}
		return m, nil
	}
	m, err := model.NewModelFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("casbin model %s: %w", path, err)
	}
	return m, nil
}

// DefaultPolicies is the route table seeded on first start. Subjects carry the
// role_ prefix used by the authorization middleware.
var DefaultPolicies = [][]string{
	{"role_admin", "/admin/*", "(GET|POST|PUT|PATCH|DELETE)"},
	{"role_admin", "/auth/*", "(GET|POST)"},
	{"role_admin", "/patients", "POST"},
	{"role_admin", "/patients/*", "GET"},
	{"role_admin", "/appointment-statuses", "GET"},
	{"role_admin", "/specialties", "GET"},
	{"role_admin", "/contract-types", "GET"},
	{"role_admin", "/appointments", "POST"},
	{"role_admin", "/appointments/*", "(GET|PATCH)"},
	{"role_admin", "/attentions", "POST"},

	{"role_reception", "/auth/*", "(GET|POST)"},
	{"role_reception", "/patients", "POST"},
	{"role_reception", "/patients/:id", "GET"},
	{"role_reception", "/appointment-statuses", "GET"},
	{"role_reception", "/specialties", "GET"},
	{"role_reception", "/appointments", "POST"},
	{"role_reception", "/appointments/:id", "GET"},
	{"role_reception", "/appointments/:id/status", "PATCH"},

	{"role_doctor", "/auth/*", "(GET|POST)"},
	{"role_doctor", "/patients/:id", "GET"},
	{"role_doctor", "/patients/:id/attentions", "GET"},
	{"role_doctor", "/appointment-statuses", "GET"},
	{"role_doctor", "/appointments/attendable", "GET"},
	{"role_doctor", "/appointments/:id", "GET"},
	{"role_doctor", "/appointments/:id/status", "PATCH"},
	{"role_doctor", "/attentions", "POST"},
}

// SeedPolicies adds DefaultPolicies when the policy table is empty. It reports
// whether anything was written.
func SeedPolicies(e *casbin.Enforcer) (bool, error) {
	policies, err := e.GetPolicy()
	if err != nil {
		return false, err
	}
	if len(policies) > 0 {
		return false, nil
	}
	for _, p := range DefaultPolicies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return false, err
		}
	}
	return true, nil
}
