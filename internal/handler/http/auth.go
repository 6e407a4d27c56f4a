package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-client/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/handler/http/response"
)

// AuthService is the part of the development API the auth handler needs.
type AuthService interface {
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (user.User, error)
	UpdateProfile(ctx context.Context, req user.ProfileUpdate) (user.User, error)
}

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Profile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService AuthService
}

func NewAuthHandler(authService AuthService) AuthHandler {
	return &AuthHandlerImpl{
		authService: authService,
	}
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	// 1. Decode JSON
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Validate DTO
	if err := loginReq.Validate(); err != nil {
		slog.Error("Login validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	// Call service
	loginResp, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		slog.Error("Login service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Login successful", loginResp)
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.authService.Logout(r.Context()); err != nil {
		slog.Error("Logout service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Logout successful", nil)
}

// Profile implements AuthHandler.
func (a *AuthHandlerImpl) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := a.authService.Profile(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, u)
}

// UpdateProfile implements AuthHandler.
func (a *AuthHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update user.ProfileUpdate

	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		slog.Error("UpdateProfile decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := update.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	u, err := a.authService.UpdateProfile(r.Context(), update)
	if err != nil {
		slog.Error("UpdateProfile service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Profile updated", u)
}
