package api

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/vocdoni/payments-backend/api/apicommon"
	"github.com/vocdoni/payments-backend/db"
	"github.com/vocdoni/payments-backend/errors"
)

// buildLoginResponse creates a JWT token for the given user. The token is
// signed with the API secret and carries the user ID in the userId claim.
// It expires after apicommon.JWTExpiration.
func (a *API) buildLoginResponse(user *db.User) (*apicommon.LoginResponse, error) {
	expiry := time.Now().Add(apicommon.JWTExpiration)
	claims := map[string]any{"userId": user.ID}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiry(claims, expiry)
	_, token, err := a.auth.Encode(claims)
	if err != nil {
		return nil, fmt.Errorf("could not sign token: %w", err)
	}
	return &apicommon.LoginResponse{
		Token:  token,
		Expiry: expiry.UTC(),
		User:   apicommon.UserInfoFromDB(user),
	}, nil
}

// internalError returns the generic internal server error, with the detail
// of err appended outside production.
func (a *API) internalError(err error) errors.Error {
	return errors.ErrGenericInternalServerError.WithDetail(a.env != apicommon.ProductionEnv, err)
}
