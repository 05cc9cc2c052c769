package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes
const (
	LoginSuccess       = "success"
	LoginInvalid       = "invalid_credentials"
	LoginLocked        = "locked"
	LoginInactive      = "inactive"
	LoginInconsistent  = "inconsistent"
	LoginStorageFailed = "storage_error"
)

// Attention outcomes
const (
	AttentionCreated   = "created"
	AttentionDuplicate = "duplicate"
	AttentionNoTarget  = "appointment_not_found"
	AttentionFailed    = "error"
)

// Metrics holds the service counters. A nil *Metrics is a valid no-op.
type Metrics struct {
	LoginAttempts     *prometheus.CounterVec
	AccountLockouts   prometheus.Counter
	AttentionsCreated *prometheus.CounterVec
	AccountDeletions  *prometheus.CounterVec
}

// New registers the service counters with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicsvc",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		AccountLockouts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicsvc",
			Name:      "account_lockouts_total",
			Help:      "Accounts that crossed the failed-attempt threshold.",
		}),
		AttentionsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicsvc",
			Name:      "attention_requests_total",
			Help:      "Medical attention creation requests by outcome.",
		}, []string{"outcome"}),
		AccountDeletions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicsvc",
			Name:      "account_deletions_total",
			Help:      "Account deletion requests by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Lockout() {
	if m == nil {
		return
	}
	m.AccountLockouts.Inc()
}

func (m *Metrics) Attention(outcome string) {
	if m == nil {
		return
	}
	m.AttentionsCreated.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Deletion(outcome string) {
	if m == nil {
		return
	}
	m.AccountDeletions.WithLabelValues(outcome).Inc()
}
