// Package errors provides custom error types and definitions for the application.
//
//nolint:lll
package errors

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400, 401, 404, 409 or 429, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX.
// If you notice there's a gap, DON'T fill it in, that code was used in the past and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
//
// The payment errors keep the exact wording clients of the previous service
// already match on, so don't rephrase them.
var (
	// Authentication errors (401)
	ErrUnauthorized       = Error{Code: 40001, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("authentication required"), LogLevel: "info"}
	ErrInvalidCredentials = Error{Code: 40002, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("invalid email or password"), LogLevel: "info"}

	// Validation errors (400)
	ErrMalformedBody   = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid JSON request body")}
	ErrInvalidUserData = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid user information provided")}
	ErrAmountRequired  = Error{Code: 40010, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Amount is required")}
	ErrAmountTooSmall  = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Amount must be at least $0.50 (50 cents)")}
	ErrAmountTooLarge  = Error{Code: 40019, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Amount is too large")}

	// Payment provider errors (4xx)
	ErrPaymentCard           = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Your card was declined"), LogLevel: "info"}
	ErrPaymentInvalidRequest = Error{Code: 40013, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Invalid parameters were supplied to Stripe's API"), LogLevel: "warn"}
	ErrPaymentRateLimited    = Error{Code: 40014, HTTPstatus: http.StatusTooManyRequests, Err: fmt.Errorf("Too many requests made to the API too quickly"), LogLevel: "warn"}
	ErrPaymentAuthentication = Error{Code: 40015, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("Authentication with Stripe's API failed"), LogLevel: "warn"}

	// Not found errors (404)
	ErrEndpointNotFound = Error{Code: 40404, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("Endpoint not found")}

	// Conflict errors (409)
	ErrDuplicateConflict = Error{Code: 40901, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("user already exists"), LogLevel: "info"}

	// Throttling errors (429)
	ErrTooManyRequests = Error{Code: 42901, HTTPstatus: http.StatusTooManyRequests, Err: fmt.Errorf("too many requests, try again later"), LogLevel: "info"}

	// Server errors (500) - These should be used sparingly and only for true internal errors
	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: failed to process response"), LogLevel: "error"}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("Something went wrong!"), LogLevel: "error"}
	ErrPaymentAPI                 = Error{Code: 50005, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("An error occurred internally with Stripe's API"), LogLevel: "error"}
	ErrPaymentConnection          = Error{Code: 50009, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("Some kind of error occurred during the HTTPS communication"), LogLevel: "error"}
	ErrPaymentUnknown             = Error{Code: 50010, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("An unknown error occurred"), LogLevel: "error"}
)
