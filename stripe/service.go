// Package stripe provides the integration with the Stripe payment service:
// payment intent creation, error classification and webhook event handling.
package stripe

import (
	"context"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v81"
	"go.vocdoni.io/dvote/log"
)

// Service provides the webhook business logic on top of the Stripe client.
type Service struct {
	client *Client
	events EventStore
}

// NewService creates a new Stripe webhook service. The event store is owned
// by the caller, who must close it when it holds resources.
func NewService(client *Client, events EventStore) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("stripe client is required")
	}
	if events == nil {
		return nil, fmt.Errorf("stripe event store is required")
	}
	return &Service{
		client: client,
		events: events,
	}, nil
}

// WebhookResult describes what happened to a verified webhook event.
type WebhookResult struct {
	Event   *stripeapi.Event
	Handled bool
	// Redelivery is set when the event id was already received before.
	Redelivery bool
}

// HandleWebhookEvent verifies the payload signature and dispatches the
// event. Only a failed verification returns an error: once verified, every
// event is dispatched and acknowledged, including unhandled types and
// redeliveries. The event store only flags redeliveries.
func (s *Service) HandleWebhookEvent(ctx context.Context, payload []byte, signatureHeader string) (*WebhookResult, error) {
	event, err := s.client.ValidateWebhookEvent(payload, signatureHeader)
	if err != nil {
		return nil, err
	}
	res := &WebhookResult{Event: event}
	if event.ID != "" {
		seen, err := s.events.MarkProcessed(ctx, event.ID)
		if err != nil {
			log.Warnw("stripe webhook: could not check event redelivery", "id", event.ID, "error", err)
		}
		if seen {
			log.Infow("stripe webhook: event redelivered", "id", event.ID, "type", event.Type, "redelivery", true)
			res.Redelivery = true
		}
	}
	res.Handled = s.HandleEvent(event)
	return res, nil
}

// HandleEvent dispatches a verified event by its type and reports whether
// the type is one this service handles.
func (*Service) HandleEvent(event *stripeapi.Event) bool {
	switch event.Type {
	case stripeapi.EventTypePaymentIntentSucceeded:
		handlePaymentIntentSucceeded(event)
	case stripeapi.EventTypePaymentIntentPaymentFailed:
		handlePaymentIntentFailed(event)
	case stripeapi.EventTypePaymentMethodAttached:
		handlePaymentMethodAttached(event)
	default:
		log.Infow("stripe webhook: unhandled event type", "type", event.Type, "id", event.ID)
		return false
	}
	return true
}
