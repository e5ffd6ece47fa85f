package stripe

import (
	"encoding/json"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v81"
	"go.vocdoni.io/dvote/log"
)

func handlePaymentIntentSucceeded(event *stripeapi.Event) {
	intent, err := parsePaymentIntentFromEvent(event)
	if err != nil {
		log.Warnw("stripe webhook: payment succeeded with unreadable payload", "event", event.ID, "error", err)
		return
	}
	log.Infow("stripe webhook: payment succeeded",
		"paymentIntent", intent.ID,
		"amount", intent.Amount,
		"currency", intent.Currency)
}

func handlePaymentIntentFailed(event *stripeapi.Event) {
	intent, err := parsePaymentIntentFromEvent(event)
	if err != nil {
		log.Warnw("stripe webhook: payment failed with unreadable payload", "event", event.ID, "error", err)
		return
	}
	reason := ""
	if intent.LastPaymentError != nil {
		reason = intent.LastPaymentError.Msg
	}
	log.Infow("stripe webhook: payment failed",
		"paymentIntent", intent.ID,
		"amount", intent.Amount,
		"currency", intent.Currency,
		"reason", reason)
}

func handlePaymentMethodAttached(event *stripeapi.Event) {
	method, err := parsePaymentMethodFromEvent(event)
	if err != nil {
		log.Warnw("stripe webhook: payment method attached with unreadable payload", "event", event.ID, "error", err)
		return
	}
	customer := ""
	if method.Customer != nil {
		customer = method.Customer.ID
	}
	log.Infow("stripe webhook: payment method attached",
		"paymentMethod", method.ID,
		"type", method.Type,
		"customer", customer)
}

// parsePaymentIntentFromEvent extracts the payment intent carried by an event
func parsePaymentIntentFromEvent(event *stripeapi.Event) (*stripeapi.PaymentIntent, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("event has no data")
	}
	var intent stripeapi.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("failed to parse payment intent from event: %w", err)
	}
	return &intent, nil
}

// parsePaymentMethodFromEvent extracts the payment method carried by an event
func parsePaymentMethodFromEvent(event *stripeapi.Event) (*stripeapi.PaymentMethod, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("event has no data")
	}
	var method stripeapi.PaymentMethod
	if err := json.Unmarshal(event.Data.Raw, &method); err != nil {
		return nil, fmt.Errorf("failed to parse payment method from event: %w", err)
	}
	return &method, nil
}
