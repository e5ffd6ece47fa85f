package stripe

import (
	"context"
	"net/http"
	"time"

	stripeapi "github.com/stripe/stripe-go/v81"
	stripeclient "github.com/stripe/stripe-go/v81/client"
	stripewebhook "github.com/stripe/stripe-go/v81/webhook"
)

// PaymentMethodCard is the only payment method type the intents created by
// this service accept.
const PaymentMethodCard = "card"

// Client wraps the Stripe API client with additional functionality
type Client struct {
	config *Config
	api    *stripeclient.API
}

// NewClient creates a new Stripe client with the given configuration. The
// client never retries failed requests: every failure is reported back to
// the caller as it happens.
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	backendConfig := &stripeapi.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
		MaxNetworkRetries: stripeapi.Int64(0),
	}
	if config.BackendURL != "" {
		backendConfig.URL = stripeapi.String(config.BackendURL)
	}
	backends := &stripeapi.Backends{
		API:     stripeapi.GetBackendWithConfig(stripeapi.APIBackend, backendConfig),
		Connect: stripeapi.GetBackendWithConfig(stripeapi.ConnectBackend, backendConfig),
		Uploads: stripeapi.GetBackendWithConfig(stripeapi.UploadsBackend, backendConfig),
	}
	return &Client{
		config: config,
		api:    stripeclient.New(config.APIKey, backends),
	}, nil
}

// PaymentIntentParams holds the parameters required to create a payment
// intent. Amount is expressed in the minor unit of Currency.
type PaymentIntentParams struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

// PaymentIntentInfo is the subset of a Stripe payment intent relayed to the
// clients of this service.
type PaymentIntentInfo struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
}

// CreatePaymentIntent asks Stripe to create a payment intent restricted to
// card payments. Failures are returned as *StripeError carrying the category
// of the underlying Stripe error.
func (c *Client) CreatePaymentIntent(ctx context.Context, params *PaymentIntentParams) (*PaymentIntentInfo, error) {
	intentParams := &stripeapi.PaymentIntentParams{
		Amount:             stripeapi.Int64(params.Amount),
		Currency:           stripeapi.String(params.Currency),
		PaymentMethodTypes: stripeapi.StringSlice([]string{PaymentMethodCard}),
		Metadata:           params.Metadata,
	}
	intentParams.Context = ctx

	intent, err := c.api.PaymentIntents.New(intentParams)
	if err != nil {
		return nil, NewStripeError("api_call_failed", "failed to create payment intent", err)
	}
	return &PaymentIntentInfo{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     string(intent.Currency),
		Status:       string(intent.Status),
	}, nil
}

// ValidateWebhookEvent verifies the signature of a webhook payload with the
// configured webhook secret and parses the event. Events generated with an
// API version other than the one this library is pinned to are accepted,
// since the handlers only read fields stable across versions.
func (c *Client) ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	event, err := stripewebhook.ConstructEventWithOptions(payload, signatureHeader, c.config.WebhookSecret,
		stripewebhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, &StripeError{
			Code:    ErrWebhookValidation.Code,
			Message: ErrWebhookValidation.Message,
			Err:     err,
		}
	}
	return &event, nil
}

// Source returns the tag stored in the metadata of the created intents.
func (c *Client) Source() string {
	return c.config.Source
}
