package api

import (
	goerrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vocdoni/payments-backend/api/apicommon"
	"github.com/vocdoni/payments-backend/stripe"
	"go.vocdoni.io/dvote/log"
)

// maxWebhookBodySize caps the webhook payloads read, Stripe events are well
// below it.
const maxWebhookBodySize = 65536

// webhookHandler godoc
// @Summary Receive Stripe webhook events
// @Description Verify the Stripe-Signature header of the raw body and dispatch the event.
// @Description Every verified event is acknowledged, including unhandled types and redeliveries.
// @Tags payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe webhook signature"
// @Success 200 {object} apicommon.WebhookAck
// @Failure 400 {string} string "Webhook Error: <reason>"
// @Router /webhook [post]
func (a *API) webhookHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
	if err != nil {
		writeWebhookError(w, err)
		return
	}
	res, err := a.webhooks.HandleWebhookEvent(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		writeWebhookError(w, err)
		return
	}
	a.metrics.WebhookEvent(string(res.Event.Type), res.Handled, res.Redelivery)
	apicommon.HTTPWriteJSON(w, &apicommon.WebhookAck{Received: true})
}

// writeWebhookError replies with the plain text error Stripe shows in the
// webhook delivery attempts of the dashboard.
func writeWebhookError(w http.ResponseWriter, err error) {
	reason := err.Error()
	var stripeErr *stripe.StripeError
	if goerrors.As(err, &stripeErr) && stripeErr.Err != nil {
		reason = stripeErr.Err.Error()
	}
	log.Warnw("stripe webhook rejected", "error", reason)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusBadRequest)
	if _, err := fmt.Fprintf(w, "Webhook Error: %s", reason); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}
