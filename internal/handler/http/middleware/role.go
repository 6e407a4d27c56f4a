package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/attendance-client/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client/internal/handler/http/response"
)

// RequireManager gates the team endpoints. It must run after AuthRequired.
func RequireManager(next http.Handler) http.Handler {
	return RequireRole(user.RoleManager)(next)
}

// RequireRole admits only tokens whose role claim is one of roles.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasRole(r, roles) {
				response.HandleError(w, user.ErrManagerAccessRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(r *http.Request, roles []user.Role) bool {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return false
	}
	role, _ := claims["role"].(string)
	for _, want := range roles {
		if user.Role(role) == want {
			return true
		}
	}
	return false
}
