package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vocdoni/payments-backend/errors"
	"go.vocdoni.io/dvote/log"
)

// maxBodySize bounds the request bodies decoded by the middleware.
const maxBodySize = 1 << 20

// ValidatedModelKey is the context key of the decoded and validated body.
type ValidatedModelKey struct{}

// ValidationError represents an individual validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a slice of ValidationError.
type ValidationErrors []ValidationError

// Error returns a string representation of the validation errors.
func (ve ValidationErrors) Error() string {
	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return sb.String()
}

// ValidateMiddleware decodes the JSON request body into a new instance of
// the model type and validates it. Invalid JSON is rejected with
// ErrMalformedBody and failed validations with ErrInvalidUserData, listing
// the offending fields. The validated instance (a pointer to the model
// type) is stored in the request context, see GetValidatedModel.
func (v *Validator) ValidateMiddleware(model any) func(next http.Handler) http.Handler {
	modelType := reflect.TypeOf(model)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			instance := reflect.New(modelType).Interface()

			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
			if err != nil {
				errors.ErrMalformedBody.Write(w)
				return
			}
			if err := json.Unmarshal(body, instance); err != nil {
				errors.ErrMalformedBody.Write(w)
				return
			}

			if err := v.validator.Struct(instance); err != nil {
				fieldErrs, ok := err.(validator.ValidationErrors)
				if !ok {
					errors.ErrInvalidUserData.WithErr(err).Write(w)
					return
				}
				var validationErrors ValidationErrors
				for _, fieldErr := range fieldErrs {
					validationErrors = append(validationErrors, ValidationError{
						Field:   fieldErr.Field(),
						Message: getErrorMessage(fieldErr),
					})
				}
				log.Debugw("validation errors", "errors", validationErrors)
				errors.ErrInvalidUserData.WithErr(validationErrors).WithData(validationErrors).Write(w)
				return
			}
			ctx := context.WithValue(r.Context(), ValidatedModelKey{}, instance)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetValidatedModel retrieves the validated model from the context.
func GetValidatedModel(ctx context.Context) (any, bool) {
	model := ctx.Value(ValidatedModelKey{})
	return model, model != nil
}

// ValidatedModel retrieves the validated model from the context as a *T.
func ValidatedModel[T any](ctx context.Context) (*T, bool) {
	model, ok := ctx.Value(ValidatedModelKey{}).(*T)
	return model, ok
}

// getErrorMessage returns a human-readable error message for a validation error.
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Must be at least %s characters long", err.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long", err.Param())
	case "notblank":
		return "Must not be blank"
	default:
		return fmt.Sprintf("Invalid value: %s", err.Tag())
	}
}
