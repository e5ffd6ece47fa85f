package apicommon

//revive:disable:max-public-structs

import (
	"time"

	"github.com/vocdoni/payments-backend/db"
)

// PaymentIntentRequest is the body of a payment intent creation request.
// swagger:model PaymentIntentRequest
type PaymentIntentRequest struct {
	// Amount to charge in the minor unit of the currency (cents for USD).
	// Fractional values are rounded to the nearest integer.
	Amount *float64 `json:"amount"`

	// ISO currency code, "usd" if empty
	Currency string `json:"currency,omitempty"`

	// Free-form metadata attached to the payment intent
	Metadata map[string]any `json:"metadata,omitempty"`
}

// PaymentIntentResponse is returned when a payment intent is created. The
// client secret is handed to the frontend to confirm the payment.
// swagger:model PaymentIntentResponse
type PaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// WebhookAck acknowledges a verified webhook delivery.
// swagger:model WebhookAck
type WebhookAck struct {
	Received bool `json:"received"`
}

// SignupRequest is the body of the signup request.
// swagger:model SignupRequest
type SignupRequest struct {
	Name     string `json:"name" validate:"omitempty,max=128,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SigninRequest is the body of the signin request.
// swagger:model SigninRequest
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserInfo is the public view of a user account.
// swagger:model UserInfo
type UserInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserInfoFromDB builds the public view of the user provided.
func UserInfoFromDB(user *db.User) *UserInfo {
	if user == nil {
		return nil
	}
	return &UserInfo{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// LoginResponse carries the token issued on signup and signin.
// swagger:model LoginResponse
type LoginResponse struct {
	// JWT authentication token
	Token string `json:"token"`

	// Token expiration time
	Expiry time.Time `json:"expiry"`

	// The authenticated user
	User *UserInfo `json:"user"`
}

// MeResponse is returned by the current identity endpoint.
// swagger:model MeResponse
type MeResponse struct {
	User *UserInfo `json:"user"`
}

// HealthInfo is returned by the health endpoint.
// swagger:model HealthInfo
type HealthInfo struct {
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	Environment string    `json:"environment"`
	Timestamp   time.Time `json:"timestamp"`
	Endpoints   []string  `json:"endpoints"`
}

// NotFoundData is attached to the endpoint not found error.
type NotFoundData struct {
	AvailableEndpoints []string `json:"availableEndpoints"`
}
