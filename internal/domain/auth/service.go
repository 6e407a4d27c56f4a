package auth

import (
	"context"

	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
)

// Service is the client-side authentication flow against the remote API.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (user.User, error)
	UpdateProfile(ctx context.Context, req user.ProfileUpdate) (user.User, error)
}
