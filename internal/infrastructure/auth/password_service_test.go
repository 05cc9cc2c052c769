package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordServiceImpl_SHA256(t *testing.T) {
	svc := NewPasswordService(SchemeSHA256)

	hash, err := svc.Hash("secret")
	require.NoError(t, err)

	// lowercase hex digest of "secret"
	assert.Equal(t, "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b", hash)

	again, err := svc.Hash("secret")
	require.NoError(t, err)
	assert.Equal(t, hash, again, "sha256 hashing is deterministic")

	assert.True(t, svc.Verify(hash, "secret"))
	assert.False(t, svc.Verify(hash, "Secret"))
	assert.False(t, svc.Verify(strings.ToUpper(hash), "secret"), "comparison is exact")
}

func TestPasswordServiceImpl_Bcrypt(t *testing.T) {
	svc := NewPasswordService(SchemeBcrypt)

	hash, err := svc.Hash("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.True(t, svc.Verify(hash, "secret"))
	assert.False(t, svc.Verify(hash, "wrong"))
}

func TestPasswordServiceImpl_VerifyAcceptsBothFormats(t *testing.T) {
	sha := NewPasswordService(SchemeSHA256)
	bc := NewPasswordService(SchemeBcrypt)

	shaHash, err := sha.Hash("pw")
	require.NoError(t, err)
	bcHash, err := bc.Hash("pw")
	require.NoError(t, err)

	tests := []struct {
		name     string
		verifier string
		hash     string
		password string
		expected bool
	}{
		{"sha256 service reads bcrypt row", SchemeSHA256, bcHash, "pw", true},
		{"bcrypt service reads sha256 row", SchemeBcrypt, shaHash, "pw", true},
		{"wrong password on bcrypt row", SchemeSHA256, bcHash, "nope", false},
		{"empty hash", SchemeSHA256, "", "pw", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewPasswordService(tt.verifier).Verify(tt.hash, tt.password))
		})
	}
}

func TestNewPasswordService_UnknownSchemeFallsBack(t *testing.T) {
	svc := NewPasswordService("md5")

	hash, err := svc.Hash("secret")
	require.NoError(t, err)
	assert.Len(t, hash, 64)
}
