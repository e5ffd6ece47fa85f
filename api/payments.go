package api

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/vocdoni/payments-backend/api/apicommon"
	"github.com/vocdoni/payments-backend/errors"
	"github.com/vocdoni/payments-backend/internal"
	"github.com/vocdoni/payments-backend/metrics"
	"github.com/vocdoni/payments-backend/stripe"
	"go.vocdoni.io/dvote/log"
)

// createPaymentIntentHandler godoc
// @Summary Create a payment intent
// @Description Create a Stripe payment intent for card payments. The amount is expressed in
// @Description the minor unit of the currency and must be at least 50. The client secret
// @Description returned is used by the frontend to confirm the payment.
// @Tags payments
// @Accept json
// @Produce json
// @Param request body apicommon.PaymentIntentRequest true "Payment details"
// @Success 200 {object} apicommon.PaymentIntentResponse
// @Failure 400 {object} errors.Error "Missing, too small or too large amount, or card declined"
// @Failure 401 {object} errors.Error "Stripe authentication failed"
// @Failure 429 {object} errors.Error "Stripe rate limit"
// @Failure 500 {object} errors.Error
// @Router /create-payment-intent [post]
func (a *API) createPaymentIntentHandler(w http.ResponseWriter, r *http.Request) {
	req := &apicommon.PaymentIntentRequest{}
	// an empty body is handled as a request without amount
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && err != io.EOF {
		a.metrics.PaymentIntent(metrics.OutcomeRejected)
		errors.ErrMalformedBody.Write(w)
		return
	}
	if req.Amount == nil {
		a.metrics.PaymentIntent(metrics.OutcomeRejected)
		errors.ErrAmountRequired.Write(w)
		return
	}
	if *req.Amount < apicommon.MinPaymentAmount {
		a.metrics.PaymentIntent(metrics.OutcomeRejected)
		errors.ErrAmountTooSmall.Write(w)
		return
	}
	if *req.Amount >= apicommon.MaxPaymentAmount {
		a.metrics.PaymentIntent(metrics.OutcomeRejected)
		errors.ErrAmountTooLarge.Write(w)
		return
	}
	params := &stripe.PaymentIntentParams{
		Amount:   int64(math.Round(*req.Amount)),
		Currency: strings.ToLower(strings.TrimSpace(req.Currency)),
		Metadata: internal.MergeMetadata(internal.StringifyMetadata(req.Metadata), map[string]string{
			"source":    a.stripe.Source(),
			"createdAt": time.Now().UTC().Format(time.RFC3339),
		}),
	}
	if params.Currency == "" {
		params.Currency = apicommon.DefaultCurrency
	}

	log.Infow("creating payment intent", "amount", params.Amount, "currency", params.Currency)
	intent, err := a.stripe.CreatePaymentIntent(r.Context(), params)
	if err != nil {
		category := stripe.Classify(err)
		log.Warnw("payment intent creation failed", "category", category, "error", err)
		a.metrics.PaymentIntent(string(category))
		paymentError(err, category).Write(w)
		return
	}
	log.Infow("payment intent created",
		"id", intent.ID,
		"amount", intent.Amount,
		"currency", intent.Currency,
		"status", intent.Status)
	a.metrics.PaymentIntent(metrics.OutcomeCreated)
	apicommon.HTTPWriteJSON(w, &apicommon.PaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	})
}

// paymentError maps a payment provider failure to the API error returned to
// the client. Card errors carry the provider message, which is meant to be
// shown to the payer.
func paymentError(err error, category stripe.ErrorCategory) errors.Error {
	switch category {
	case stripe.CategoryCard:
		if msg := stripe.ProviderMessage(err); msg != "" {
			return errors.ErrPaymentCard.WithMessage(msg)
		}
		return errors.ErrPaymentCard
	case stripe.CategoryRateLimit:
		return errors.ErrPaymentRateLimited
	case stripe.CategoryInvalidRequest:
		return errors.ErrPaymentInvalidRequest
	case stripe.CategoryAPI:
		return errors.ErrPaymentAPI
	case stripe.CategoryConnection:
		return errors.ErrPaymentConnection
	case stripe.CategoryAuthentication:
		return errors.ErrPaymentAuthentication
	default:
		return errors.ErrPaymentUnknown
	}
}
