package jwt

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service issues and verifies access tokens for the development API.
type Service interface {
	GenerateAccessToken(u user.User) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	exp, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration %q: %w", accessTokenExpirationTime, err)
	}
	return &JWTService{
		accessTokenExpirationTime: exp,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}, nil
}

func (j *JWTService) GenerateAccessToken(u user.User) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpirationTime).Unix()

	claims := map[string]interface{}{
		"user_id":     u.ID,
		"employee_id": u.EmployeeID,
		"role":        string(u.Role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ExpiresAt reads the exp claim of token without verifying its signature.
// The client uses it only to skip a pointless profile call for a token that has
// certainly expired; the server remains the authority on validity.
func ExpiresAt(token string) (time.Time, bool) {
	parsed, err := jwt.ParseString(token, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return time.Time{}, false
	}
	exp := parsed.Expiration()
	if exp.IsZero() {
		return time.Time{}, false
	}
	return exp, true
}

// Expired reports whether token carries an exp claim that is before now.
// Opaque or unparseable tokens are never considered expired here.
func Expired(token string, now time.Time) bool {
	exp, ok := ExpiresAt(token)
	return ok && !now.Before(exp)
}
