package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/rajatch15/backend-cloud-functions/internal/handler/http/response"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/jwt"
)

// SupportOnly admits tokens carrying the support claim.
func SupportOnly(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, raw, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			claims, err := jwtService.ParseClaims(raw)
			if err != nil || !claims.Support {
				response.Forbidden(w, "You do not have the permission to access this resource.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
