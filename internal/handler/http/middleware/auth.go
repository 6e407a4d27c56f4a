package middleware

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/attendance-client/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token.
// It must run after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if err != nil {
			if errors.Is(err, jwtauth.ErrExpired) {
				response.HandleError(w, auth.ErrTokenExpired)
				return
			}
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != "access" {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}
		if _, ok := claims["user_id"].(string); !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hfn)
}
