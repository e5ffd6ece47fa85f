package stripe

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	stripeapi "github.com/stripe/stripe-go/v81"
)

// StripeError represents a Stripe-specific error
type StripeError struct {
	Code     string
	Message  string
	Category ErrorCategory
	Err      error
}

func (e *StripeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stripe error [%s]: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("stripe error [%s]: %s", e.Code, e.Message)
}

func (e *StripeError) Unwrap() error {
	return e.Err
}

// Common Stripe errors
var (
	ErrInvalidConfiguration = &StripeError{Code: "invalid_configuration", Message: "invalid stripe configuration"}
	ErrWebhookValidation    = &StripeError{Code: "webhook_validation", Message: "webhook signature validation failed"}
)

// NewStripeError creates a new StripeError with the given code, message, and
// underlying error. The category is derived from the underlying error.
func NewStripeError(code, message string, err error) *StripeError {
	return &StripeError{
		Code:     code,
		Message:  message,
		Category: Classify(err),
		Err:      err,
	}
}

// ErrorCategory is the family a Stripe failure belongs to. The values match
// the error type names Stripe uses in its API responses.
type ErrorCategory string

const (
	CategoryNone           ErrorCategory = ""
	CategoryCard           ErrorCategory = "card_error"
	CategoryRateLimit      ErrorCategory = "rate_limit_error"
	CategoryInvalidRequest ErrorCategory = "invalid_request_error"
	CategoryAPI            ErrorCategory = "api_error"
	CategoryConnection     ErrorCategory = "api_connection_error"
	CategoryAuthentication ErrorCategory = "authentication_error"
	CategoryUnknown        ErrorCategory = "unknown_error"
)

// Classify returns the category of err. The HTTP status reported by Stripe
// takes precedence over the error type: Stripe answers rate limiting and
// bad keys with statuses 429 and 401, whatever type the body carries.
// Transport failures that never reached Stripe are connection errors.
func Classify(err error) ErrorCategory {
	if err == nil {
		return CategoryNone
	}
	var stripeErr *stripeapi.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.HTTPStatusCode == http.StatusTooManyRequests,
			string(stripeErr.Type) == string(CategoryRateLimit):
			return CategoryRateLimit
		case stripeErr.HTTPStatusCode == http.StatusUnauthorized,
			string(stripeErr.Type) == string(CategoryAuthentication):
			return CategoryAuthentication
		}
		switch stripeErr.Type {
		case stripeapi.ErrorTypeCard:
			return CategoryCard
		case stripeapi.ErrorTypeInvalidRequest, stripeapi.ErrorTypeIdempotency:
			return CategoryInvalidRequest
		case stripeapi.ErrorTypeAPI:
			return CategoryAPI
		default:
			return CategoryUnknown
		}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return CategoryConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return CategoryConnection
	}
	return CategoryUnknown
}

// ProviderMessage returns the human readable message Stripe attached to err,
// or an empty string if err does not come from a Stripe API response.
func ProviderMessage(err error) string {
	var stripeErr *stripeapi.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.Msg
	}
	return ""
}
