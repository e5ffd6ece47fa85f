package stripe

import "fmt"

// DefaultSource is the value stored in the "source" metadata field of every
// payment intent created by this service, unless configured otherwise.
const DefaultSource = "payments-backend"

// Config holds the Stripe configuration
type Config struct {
	APIKey        string `yaml:"api_key" json:"api_key"`
	WebhookSecret string `yaml:"webhook_secret" json:"webhook_secret"`
	// BackendURL overrides the Stripe API base URL, used to point the client
	// to stripe-mock or to a test server. Empty means the Stripe default.
	BackendURL string `yaml:"backend_url" json:"backend_url"`
	// Source tags the payment intents created by this service.
	Source string `yaml:"source" json:"source"`
}

// Validate checks that the secrets required to talk to Stripe are present
// and fills the optional fields with their defaults.
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfiguration
	}
	if c.APIKey == "" {
		return NewStripeError("invalid_configuration", "stripe secret key is required", nil)
	}
	if c.WebhookSecret == "" {
		return NewStripeError("invalid_configuration", "stripe webhook secret is required", nil)
	}
	if c.Source == "" {
		c.Source = DefaultSource
	}
	return nil
}

// String returns a representation of the configuration safe to be logged.
func (c *Config) String() string {
	return fmt.Sprintf("stripe{key:%s, webhookSecret:%s, backend:%q, source:%q}",
		redact(c.APIKey), redact(c.WebhookSecret), c.BackendURL, c.Source)
}

func redact(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:7] + "***"
}
