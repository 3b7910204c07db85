package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/rajatch15/backend-cloud-functions/internal/domain/activity"
	"github.com/rajatch15/backend-cloud-functions/internal/handler/http/response"
	"github.com/rajatch15/backend-cloud-functions/internal/pkg/jwt"
)

type contextKey struct{}

var requesterKey = contextKey{}

// Requester resolves the verified token into an activity.Requester. A request asking for
// support mode with ?support=true must carry the support claim.
func Requester(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, raw, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, "The authorization header is missing from the headers.")
				return
			}

			claims, err := jwtService.ParseClaims(raw)
			if err != nil {
				response.Unauthorized(w, "The idToken in the request header is invalid/expired. Please re-authenticate.")
				return
			}

			requester := activity.Requester{
				PhoneNumber:      claims.PhoneNumber,
				DisplayName:      claims.DisplayName,
				UID:              claims.UID,
				IsSupportRequest: r.URL.Query().Get("support") == "true",
			}
			if requester.IsSupportRequest && !claims.Support {
				response.Forbidden(w, "You do not have the permission to make support requests for activities.")
				return
			}

			ctx := context.WithValue(r.Context(), requesterKey, requester)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// RequesterFromContext returns the requester stored by Requester.
func RequesterFromContext(ctx context.Context) (activity.Requester, bool) {
	requester, ok := ctx.Value(requesterKey).(activity.Requester)
	return requester, ok
}
