package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/you/clinicsvc/domain"
	"github.com/you/clinicsvc/internal/config"
	httpx "github.com/you/clinicsvc/internal/http"
	"github.com/you/clinicsvc/internal/http/handlers"
	"github.com/you/clinicsvc/internal/http/middleware"
	"github.com/you/clinicsvc/internal/infrastructure/audit"
	"github.com/you/clinicsvc/internal/infrastructure/auth"
	"github.com/you/clinicsvc/internal/infrastructure/database"
	"github.com/you/clinicsvc/internal/infrastructure/metrics"
	"github.com/you/clinicsvc/internal/infrastructure/repositories"
	"github.com/you/clinicsvc/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Log    *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Enforcer    *casbin.Enforcer
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics

	// Repositories
	UserRepo        domain.UserRepository
	ActivityRepo    domain.ActivityRepository
	DoctorRepo      domain.DoctorRepository
	PatientRepo     domain.PatientRepository
	StatusRepo      domain.StatusRepository
	CatalogRepo     domain.CatalogRepository
	AppointmentRepo domain.AppointmentRepository
	AttentionRepo   domain.AttentionRepository
	SessionRepo     domain.SessionRepository

	// Services
	PasswordSvc   domain.PasswordService
	TokenSvc      domain.TokenService
	AuditLogger   domain.AuditLogger
	AuthSvc       domain.AuthService
	AccountSvc    domain.AccountService
	SchedulingSvc domain.SchedulingService
	PolicySvc     domain.PolicyService
}

// NewContainer opens postgres and redis and wires every dependency
func NewContainer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	db, err := database.Open(cfg.DSN, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return newContainer(ctx, cfg, log, db, rdb.Client)
}

// newContainer migrates db, seeds reference data and policies, and builds the
// repositories and services on top of the given connections
func newContainer(ctx context.Context, cfg *config.Config, log *zap.Logger, db *gorm.DB, rdb *redis.Client) (*Container, error) {
	c := &Container{Config: cfg, Log: log, DB: db, RedisClient: rdb}

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.initEnforcer(); err != nil {
		return nil, err
	}
	c.initMetrics()
	c.initRepositories()
	c.initServices()

	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	if err := database.AutoMigrate(c.DB); err != nil {
		return err
	}
	if err := database.SeedStatuses(ctx, c.DB, c.Config.AllStatuses()); err != nil {
		return err
	}
	return database.SeedReferenceData(ctx, c.DB, c.Config.Specialties, c.Config.ContractTypes)
}

func (c *Container) initEnforcer() error {
	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}
	seeded, err := auth.SeedPolicies(cas.E)
	if err != nil {
		return fmt.Errorf("seed policies: %w", err)
	}
	// AddPolicy already persisted each rule through the adapter
	if seeded {
		c.Log.Info("casbin: seeded default policies", zap.Int("count", len(auth.DefaultPolicies)))
	}
	c.Enforcer = cas.E
	return nil
}

func (c *Container) initMetrics() {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metrics.New(c.Registry)
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.ActivityRepo = repositories.NewActivityRepository(c.DB)
	c.DoctorRepo = repositories.NewDoctorRepository(c.DB)
	c.PatientRepo = repositories.NewPatientRepository(c.DB)
	c.StatusRepo = repositories.NewStatusRepository(c.DB)
	c.CatalogRepo = repositories.NewCatalogRepository(c.DB)
	c.AppointmentRepo = repositories.NewAppointmentRepository(c.DB)
	c.AttentionRepo = repositories.NewAttentionRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.RedisClient, c.Config.RefreshTTL)
}

func (c *Container) initServices() {
	cfg := c.Config

	c.PasswordSvc = auth.NewPasswordService(cfg.PasswordScheme)
	c.TokenSvc = auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	c.AuditLogger = audit.NewZapAuditLogger(c.Log)

	c.AuthSvc = services.NewAuthService(
		c.UserRepo,
		c.ActivityRepo,
		c.DoctorRepo,
		c.SessionRepo,
		c.PasswordSvc,
		c.TokenSvc,
		c.AuditLogger,
		c.Metrics,
		c.Log,
		services.AuthConfig{
			LockoutThreshold: cfg.LockoutThreshold,
			MaxCASRetries:    cfg.MaxCASRetries,
			AccessTTL:        cfg.AccessTTL,
			SessionTTL:       cfg.RefreshTTL,
		},
	)
	c.AccountSvc = services.NewAccountService(c.UserRepo, c.ActivityRepo, c.SessionRepo, c.PasswordSvc, c.AuditLogger, c.Metrics, c.Log, cfg.MaxCASRetries)
	c.SchedulingSvc = services.NewSchedulingService(
		c.PatientRepo,
		c.DoctorRepo,
		c.StatusRepo,
		c.CatalogRepo,
		c.AppointmentRepo,
		c.AttentionRepo,
		c.AuditLogger,
		c.Metrics,
		c.Log,
		services.SchedulingConfig{InitialStatus: cfg.InitialStatus, AttendedStatus: cfg.AttendedStatus},
	)
	c.PolicySvc = services.NewPolicyService(c.Enforcer)
}

// Router builds the HTTP engine over the wired services
func (c *Container) Router() *gin.Engine {
	return httpx.BuildRouter(
		httpx.Handlers{
			Auth:       handlers.NewAuthHandlers(c.AuthSvc, c.Log),
			Accounts:   handlers.NewAccountHandlers(c.AccountSvc, c.Log),
			Scheduling: handlers.NewSchedulingHandlers(c.SchedulingSvc, c.Log),
			Policies:   handlers.NewPolicyHandlers(c.PolicySvc, c.Log),
		},
		middleware.NewAuthMW(c.TokenSvc, c.SessionRepo),
		middleware.NewCasbinMW(c.Enforcer, c.Config.OwnershipRules, c.Log),
		c.Registry,
	)
}

// BootstrapAdmin creates the configured administrator when no account uses
// that email yet. It is a no-op without a configured password.
func (c *Container) BootstrapAdmin(ctx context.Context) error {
	email, password := c.Config.BootstrapEmail, c.Config.BootstrapPass
	if email == "" || password == "" {
		return nil
	}

	_, err := c.UserRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return fmt.Errorf("bootstrap admin lookup: %w", err)
	}

	user, err := c.AccountSvc.Register(ctx, domain.NewAccount{
		FirstName: "Clinic",
		LastName:  "Administrator",
		Email:     email,
		Password:  password,
		Role:      domain.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	c.Log.Info("created bootstrap administrator", zap.String("user_id", user.ID))
	return nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
