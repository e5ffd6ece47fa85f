package api

import (
	"net/http"

	"github.com/vocdoni/payments-backend/api/apicommon"
	"github.com/vocdoni/payments-backend/db"
	"github.com/vocdoni/payments-backend/errors"
	"github.com/vocdoni/payments-backend/internal"
	"github.com/vocdoni/payments-backend/validator"
	"go.vocdoni.io/dvote/log"
)

// signupHandler godoc
// @Summary Register a new user
// @Description Create a user account and get a JWT token for it. The email is stored lower-cased.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body apicommon.SignupRequest true "User information"
// @Success 201 {object} apicommon.LoginResponse
// @Failure 400 {object} errors.Error "Invalid input data"
// @Failure 409 {object} errors.Error "User already exists"
// @Failure 429 {object} errors.Error
// @Failure 500 {object} errors.Error
// @Router /api/auth/signup [post]
func (a *API) signupHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := validator.ValidatedModel[apicommon.SignupRequest](r.Context())
	if !ok {
		errors.ErrMalformedBody.Write(w)
		return
	}
	hash, err := internal.HashPassword(req.Password)
	if err != nil {
		a.internalError(err).Write(w)
		return
	}
	user := &db.User{
		Name:     req.Name,
		Email:    db.NormalizeEmail(req.Email),
		Password: hash,
	}
	if _, err := a.db.CreateUser(user); err != nil {
		switch err {
		case db.ErrAlreadyExists:
			errors.ErrDuplicateConflict.Write(w)
		case db.ErrInvalidData:
			errors.ErrInvalidUserData.Write(w)
		default:
			a.internalError(err).Write(w)
		}
		return
	}
	log.Infow("new user registered", "id", user.ID)
	res, err := a.buildLoginResponse(user)
	if err != nil {
		a.internalError(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSONWithStatus(w, http.StatusCreated, res)
}

// signinHandler godoc
// @Summary Login to get a JWT token
// @Description Authenticate a user with email and password and get a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body apicommon.SigninRequest true "Login credentials"
// @Success 200 {object} apicommon.LoginResponse
// @Failure 400 {object} errors.Error
// @Failure 401 {object} errors.Error "Invalid email or password"
// @Failure 429 {object} errors.Error
// @Router /api/auth/signin [post]
func (a *API) signinHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := validator.ValidatedModel[apicommon.SigninRequest](r.Context())
	if !ok {
		errors.ErrMalformedBody.Write(w)
		return
	}
	user, err := a.db.UserByEmail(req.Email)
	if err != nil {
		if err == db.ErrNotFound {
			errors.ErrInvalidCredentials.Write(w)
			return
		}
		a.internalError(err).Write(w)
		return
	}
	if !internal.CheckPassword(user.Password, req.Password) {
		errors.ErrInvalidCredentials.Write(w)
		return
	}
	res, err := a.buildLoginResponse(user)
	if err != nil {
		a.internalError(err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, res)
}

// meHandler godoc
// @Summary Get the current user
// @Description Get the account of the user the JWT token was issued to
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} apicommon.MeResponse
// @Failure 401 {object} errors.Error
// @Router /api/auth/me [get]
func (*API) meHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := apicommon.UserFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.MeResponse{User: apicommon.UserInfoFromDB(user)})
}
