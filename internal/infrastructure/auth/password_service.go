package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/you/clinicsvc/domain"
	"golang.org/x/crypto/bcrypt"
)

// Supported password hashing schemes
const (
	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"
)

// PasswordServiceImpl implements domain.PasswordService.
// The sha256 scheme stores the lowercase hex digest and is compatible with
// existing account rows; bcrypt is available for new deployments. Verify accepts
// either format regardless of the configured scheme.
type PasswordServiceImpl struct {
	scheme string
	cost   int
}

// NewPasswordService creates a new password service for the given scheme.
// Unknown schemes fall back to sha256.
func NewPasswordService(scheme string) domain.PasswordService {
	if scheme != SchemeBcrypt {
		scheme = SchemeSHA256
	}
	return &PasswordServiceImpl{
		scheme: scheme,
		cost:   bcrypt.DefaultCost,
	}
}

// Hash implements domain.PasswordService
func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	if p.scheme == SchemeBcrypt {
		hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
		if err != nil {
			return "", err
		}
		return string(hashedBytes), nil
	}
	return sha256Hex(password), nil
}

// Verify implements domain.PasswordService
func (p *PasswordServiceImpl) Verify(hashedPassword, password string) bool {
	if isBcryptHash(hashedPassword) {
		return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(hashedPassword), []byte(sha256Hex(password))) == 1
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
