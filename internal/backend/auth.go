package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-client/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users user.Repository
	jwt   jwt.Service
}

func NewAuthService(users user.Repository, jwtService jwt.Service) *AuthService {
	return &AuthService{users: users, jwt: jwtService}
}

// HashPassword returns the bcrypt hash stored for an account.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	account, err := s.users.GetByEmployeeID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.LoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.LoginResponse{}, fmt.Errorf("failed to get user by employee id: %w", err)
	}

	if account.PasswordHash == "" {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}
	if !account.User.IsActive {
		return auth.LoginResponse{}, user.ErrUserInactive
	}

	token, _, err := s.jwt.GenerateAccessToken(account.User)
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	slog.Info("User logged in", "user_id", account.User.ID, "employee_id", account.User.EmployeeID)
	return auth.LoginResponse{User: account.User, Token: token}, nil
}

// Logout only records the event; access tokens are stateless and expire on their own.
func (s *AuthService) Logout(ctx context.Context) error {
	a, err := actorFromContext(ctx)
	if err != nil {
		return err
	}
	slog.Info("User logged out", "user_id", a.UserID)
	return nil
}

func (s *AuthService) Profile(ctx context.Context) (user.User, error) {
	a, err := actorFromContext(ctx)
	if err != nil {
		return user.User{}, err
	}
	account, err := s.users.GetByID(ctx, a.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, auth.ErrInvalidToken
		}
		return user.User{}, err
	}
	if !account.User.IsActive {
		return user.User{}, user.ErrUserInactive
	}
	return account.User, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, req user.ProfileUpdate) (user.User, error) {
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}
	u, err := s.Profile(ctx)
	if err != nil {
		return user.User{}, err
	}

	req.Apply(&u)
	if err := s.users.Update(ctx, u); err != nil {
		return user.User{}, fmt.Errorf("failed to update profile: %w", err)
	}

	account, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return user.User{}, err
	}
	return account.User, nil
}
