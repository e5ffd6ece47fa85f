package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/vocdoni/payments-backend/api/apicommon"
	"github.com/vocdoni/payments-backend/db"
	"github.com/vocdoni/payments-backend/errors"
)

// authenticator is the protect step of the private routes. It expects the
// token verified by jwtauth.Verifier, decodes the user identifier from it and
// gets the user from the database, then adds the user to the request context
// and passes it to the next handler.
func (a *API) authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			errors.ErrUnauthorized.Write(w)
			return
		}
		if token == nil || jwt.Validate(token, jwt.WithRequiredClaim("userId")) != nil {
			errors.ErrUnauthorized.Withf("userId claim not found in JWT token").Write(w)
			return
		}
		userID, ok := claims["userId"].(string)
		if !ok || userID == "" {
			errors.ErrUnauthorized.Withf("invalid userId claim").Write(w)
			return
		}
		user, err := a.db.User(userID)
		if err != nil {
			if err == db.ErrNotFound {
				errors.ErrUnauthorized.Withf("user not found").Write(w)
				return
			}
			a.internalError(err).Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), apicommon.UserMetadataKey, *user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
