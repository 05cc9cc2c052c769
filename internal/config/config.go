package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when CONFIG_PATH is unset
const DefaultPath = "config/config.yml"

// OwnershipRule names where a request carries a doctor id. A doctor may only
// address their own id through such a parameter; other roles are unaffected.
type OwnershipRule struct {
	Method    string `yaml:"method"`
	Path      string `yaml:"path"`
	Source    string `yaml:"source"`
	ParamName string `yaml:"paramName"`
}

type AppConfig struct {
	Port        int    `yaml:"port"`
	GinMode     string `yaml:"gin_mode"`
	Environment string `yaml:"environment"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	AccessTTL  string `yaml:"access_ttl"`
	RefreshTTL string `yaml:"refresh_ttl"`
}

type AuthConfig struct {
	LockoutThreshold int    `yaml:"lockout_threshold"`
	MaxCASRetries    int    `yaml:"max_cas_retries"`
	PasswordScheme   string `yaml:"password_scheme"`
	BootstrapEmail   string `yaml:"bootstrap_admin_email"`
	BootstrapPass    string `yaml:"bootstrap_admin_password"`
}

type SchedulingConfig struct {
	InitialStatus  string   `yaml:"initial_status"`
	AttendedStatus string   `yaml:"attended_status"`
	Statuses       []string `yaml:"statuses"`
	Specialties    []string `yaml:"specialties"`
	ContractTypes  []string `yaml:"contract_types"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type ConfigFile struct {
	App            AppConfig        `yaml:"app"`
	Database       DatabaseConfig   `yaml:"database"`
	Redis          RedisConfig      `yaml:"redis"`
	JWT            JWTConfig        `yaml:"jwt"`
	Auth           AuthConfig       `yaml:"auth"`
	Scheduling     SchedulingConfig `yaml:"scheduling"`
	Casbin         CasbinConfig     `yaml:"casbin"`
	OwnershipRules []OwnershipRule  `yaml:"ownershipRules"`
}

type Config struct {
	Port             string
	GinMode          string
	Environment      string
	DSN              string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	JWTSecret        string
	JWTIssuer        string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	LockoutThreshold int
	MaxCASRetries    int
	PasswordScheme   string
	BootstrapEmail   string
	BootstrapPass    string
	InitialStatus    string
	AttendedStatus   string
	Statuses         []string
	Specialties      []string
	ContractTypes    []string
	CasbinModelPath  string
	OwnershipRules   []OwnershipRule
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads .env (if present), the YAML file at CONFIG_PATH or DefaultPath,
// applies environment overrides and validates the result.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	return LoadFile(env("CONFIG_PATH", DefaultPath))
}

// LoadFile is Load without the .env step
func LoadFile(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg, err := configFile.resolve()
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func (f *ConfigFile) resolve() (*Config, error) {
	accTTL, err := parseDuration(f.JWT.AccessTTL, 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}
	refTTL, err := parseDuration(f.JWT.RefreshTTL, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT refresh TTL: %w", err)
	}

	cfg := &Config{
		Port:             strconv.Itoa(f.App.Port),
		GinMode:          f.App.GinMode,
		Environment:      f.App.Environment,
		DSN:              f.Database.DSN,
		RedisAddr:        f.Redis.Addr,
		RedisPassword:    f.Redis.Password,
		RedisDB:          f.Redis.DB,
		JWTSecret:        f.JWT.Secret,
		JWTIssuer:        f.JWT.Issuer,
		AccessTTL:        accTTL,
		RefreshTTL:       refTTL,
		LockoutThreshold: f.Auth.LockoutThreshold,
		MaxCASRetries:    f.Auth.MaxCASRetries,
		PasswordScheme:   f.Auth.PasswordScheme,
		BootstrapEmail:   f.Auth.BootstrapEmail,
		BootstrapPass:    f.Auth.BootstrapPass,
		InitialStatus:    f.Scheduling.InitialStatus,
		AttendedStatus:   f.Scheduling.AttendedStatus,
		Statuses:         f.Scheduling.Statuses,
		Specialties:      f.Scheduling.Specialties,
		ContractTypes:    f.Scheduling.ContractTypes,
		CasbinModelPath:  f.Casbin.ModelPath,
		OwnershipRules:   f.OwnershipRules,
	}

	if f.App.Port == 0 {
		cfg.Port = "8080"
	}
	if cfg.Environment == "" {
		cfg.Environment = "production"
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "clinicsvc"
	}
	if cfg.LockoutThreshold == 0 {
		cfg.LockoutThreshold = 3
	}
	if len(cfg.Specialties) == 0 {
		cfg.Specialties = []string{"General Medicine"}
	}
	if len(cfg.ContractTypes) == 0 {
		cfg.ContractTypes = []string{"Full time", "Part time"}
	}
	if cfg.MaxCASRetries == 0 {
		cfg.MaxCASRetries = 5
	}
	if cfg.PasswordScheme == "" {
		cfg.PasswordScheme = "sha256"
	}
	return cfg, nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

// applyEnv lets deployment secrets override the file
func applyEnv(cfg *Config) {
	cfg.Port = env("PORT", cfg.Port)
	cfg.DSN = env("DATABASE_DSN", cfg.DSN)
	cfg.RedisAddr = env("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = env("REDIS_PASSWORD", cfg.RedisPassword)
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}
	cfg.JWTSecret = env("JWT_SECRET", cfg.JWTSecret)
	cfg.Environment = env("APP_ENV", cfg.Environment)
	cfg.BootstrapPass = env("BOOTSTRAP_ADMIN_PASSWORD", cfg.BootstrapPass)
}

// Validate reports every problem in one error
func (c *Config) Validate() error {
	var errs []error
	if c.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.RedisAddr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("jwt TTLs must be positive"))
	}
	if c.LockoutThreshold < 1 {
		errs = append(errs, errors.New("auth.lockout_threshold must be at least 1"))
	}
	if c.MaxCASRetries < 1 {
		errs = append(errs, errors.New("auth.max_cas_retries must be at least 1"))
	}
	if c.PasswordScheme != "sha256" && c.PasswordScheme != "bcrypt" {
		errs = append(errs, fmt.Errorf("auth.password_scheme %q is not supported", c.PasswordScheme))
	}
	if c.InitialStatus == "" || c.AttendedStatus == "" {
		errs = append(errs, errors.New("scheduling.initial_status and scheduling.attended_status are required"))
	}
	for i, rule := range c.OwnershipRules {
		switch rule.Source {
		case "path", "query", "header", "body":
		default:
			errs = append(errs, fmt.Errorf("ownershipRules[%d]: unknown source %q", i, rule.Source))
		}
	}
	return errors.Join(errs...)
}

// AllStatuses returns the configured taxonomy with the two named statuses included
func (c *Config) AllStatuses() []string {
	seen := make(map[string]bool, len(c.Statuses)+2)
	var out []string
	for _, s := range append([]string{c.InitialStatus, c.AttendedStatus}, c.Statuses...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
