package jwt

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc, err := NewJWTService(testSecret, "1h")
	require.NoError(t, err)

	token, expiresAt, err := svc.GenerateAccessToken(user.User{ID: "u1", EmployeeID: "EMP001", Role: user.RoleManager})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	role, ok := decoded.Get("role")
	assert.True(t, ok)
	assert.Equal(t, "MANAGER", role)

	exp, ok := ExpiresAt(token)
	require.True(t, ok)
	assert.Equal(t, expiresAt, exp.Unix())
	assert.False(t, Expired(token, time.Now()))
	assert.True(t, Expired(token, time.Unix(expiresAt, 0).Add(time.Second)))
}

func TestExpired_OpaqueToken(t *testing.T) {
	assert.False(t, Expired("not-a-jwt", time.Now()))
	_, ok := ExpiresAt("")
	assert.False(t, ok)
}

func TestNewJWTService_InvalidDuration(t *testing.T) {
	_, err := NewJWTService(testSecret, "forever")
	assert.Error(t, err)
}
