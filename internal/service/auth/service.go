package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-client/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-client/internal/state/session"
)

type AuthServiceImpl struct {
	api   *apiclient.Client
	store *session.Store
}

func NewAuthService(api *apiclient.Client, store *session.Store) *AuthServiceImpl {
	return &AuthServiceImpl{api: api, store: store}
}

var _ auth.Service = (*AuthServiceImpl)(nil)

// Login implements auth.Service.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	var resp auth.LoginResponse
	if err := a.api.Post(ctx, "/auth/login", req, &resp); err != nil {
		if apiclient.IsAuth(err) {
			return auth.LoginResponse{}, fmt.Errorf("%w: %v", auth.ErrInvalidCredentials, err)
		}
		return auth.LoginResponse{}, err
	}
	if resp.Token == "" {
		return auth.LoginResponse{}, fmt.Errorf("login response: %w", auth.ErrInvalidToken)
	}

	if err := a.store.Login(ctx, resp.User, resp.Token); err != nil {
		return auth.LoginResponse{}, err
	}
	return resp, nil
}

// Logout tells the server best-effort, then always ends the local session.
func (a *AuthServiceImpl) Logout(ctx context.Context) error {
	if _, ok := a.store.Token(); ok {
		if err := a.api.Post(ctx, "/auth/logout", nil, nil); err != nil && !apiclient.IsAuth(err) {
			slog.Warn("Server logout failed", "error", err)
		}
	}
	return a.store.Logout(ctx)
}

// Profile implements auth.Service.
func (a *AuthServiceImpl) Profile(ctx context.Context) (user.User, error) {
	var u user.User
	if err := a.api.Get(ctx, "/auth/profile", nil, &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// UpdateProfile implements auth.Service.
func (a *AuthServiceImpl) UpdateProfile(ctx context.Context, req user.ProfileUpdate) (user.User, error) {
	if _, ok := a.store.User(); !ok {
		return user.User{}, auth.ErrNotAuthenticated
	}

	var u user.User
	if err := a.api.Put(ctx, "/auth/profile", req, &u); err != nil {
		return user.User{}, err
	}

	if err := a.store.UpdateUser(ctx, user.ProfileUpdate{Name: &u.Name, Email: &u.Email, Department: &u.Department}); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// Restore re-validates a persisted session against /auth/profile.
func (a *AuthServiceImpl) Restore(ctx context.Context) error {
	return a.store.Restore(ctx, a.Profile)
}
