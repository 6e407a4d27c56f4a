package backend

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-client/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

// actor is the caller as described by the verified access token.
type actor struct {
	UserID     string
	EmployeeID string
	Role       user.Role
}

func (a actor) IsManager() bool {
	return a.Role == user.RoleManager
}

func actorFromContext(ctx context.Context) (actor, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return actor{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return actor{}, auth.ErrInvalidToken
	}
	employeeID, _ := claims["employee_id"].(string)
	role, _ := claims["role"].(string)

	return actor{UserID: userID, EmployeeID: employeeID, Role: user.Role(role)}, nil
}
