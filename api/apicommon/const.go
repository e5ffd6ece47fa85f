// Package apicommon provides common types, constants, and helper functions for the API.
package apicommon

import (
	"math"
	"time"
)

// MetadataKey is a type to define the key for the metadata stored in the
// context.
type MetadataKey string

// UserMetadataKey is the key used to store the user in the context.
const UserMetadataKey MetadataKey = "user"

const (
	// JWTExpiration is the lifetime of the tokens issued on signup and signin.
	JWTExpiration = 15 * 24 * time.Hour
	// MinPaymentAmount is the smallest amount accepted for a payment intent,
	// in the minor unit of the currency.
	MinPaymentAmount = 50
	// MaxPaymentAmount bounds the amounts accepted so that, once rounded,
	// they still fit in the int64 sent to the provider.
	MaxPaymentAmount = math.MaxInt64
	// DefaultCurrency is used when a payment intent request has no currency.
	DefaultCurrency = "usd"
	// ProductionEnv is the environment name that hides internal error details.
	ProductionEnv = "production"
)
