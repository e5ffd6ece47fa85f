package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/payments-backend/api/apicommon"
	"github.com/vocdoni/payments-backend/test"
)

func postWebhook(c *qt.C, payload []byte, signature string) (int, []byte) {
	headers := map[string]string{}
	if signature != "" {
		headers["Stripe-Signature"] = signature
	}
	return request(c, http.MethodPost, testURL(webhookEndpoint), payload, headers)
}

func assertReceived(c *qt.C, status int, body []byte) {
	c.Assert(status, qt.Equals, http.StatusOK, qt.Commentf("body: %s", body))
	ack := &apicommon.WebhookAck{}
	c.Assert(json.Unmarshal(body, ack), qt.IsNil)
	c.Assert(ack.Received, qt.IsTrue)
}

func TestWebhook(t *testing.T) {
	c := qt.New(t)
	eventID := func(name string) string { return fmt.Sprintf("evt_%s_%d", name, time.Now().UnixNano()) }

	c.Run("handled events", func(c *qt.C) {
		events := []struct {
			eventType string
			object    map[string]any
		}{
			{"payment_intent.succeeded", map[string]any{"id": "pi_1", "object": "payment_intent", "amount": 1000}},
			{"payment_intent.payment_failed", map[string]any{"id": "pi_2", "object": "payment_intent"}},
			{"payment_method.attached", map[string]any{"id": "pm_1", "object": "payment_method"}},
		}
		for _, ev := range events {
			payload := test.StripeEventPayload(eventID("handled"), ev.eventType, ev.object)
			status, body := postWebhook(c, payload, test.SignStripePayload(payload, testWebhookSecret, time.Now()))
			assertReceived(c, status, body)
		}
	})

	c.Run("unhandled event", func(c *qt.C) {
		payload := test.StripeEventPayload(eventID("unhandled"), "customer.created", map[string]any{"id": "cus_1"})
		status, body := postWebhook(c, payload, test.SignStripePayload(payload, testWebhookSecret, time.Now()))
		assertReceived(c, status, body)
	})

	c.Run("redelivery", func(c *qt.C) {
		router := newTestAPI(newMemoryDB(), testStripe.URL, "development").Router()
		payload := test.StripeEventPayload(eventID("dup"), "payment_intent.succeeded", map[string]any{"id": "pi_3"})
		sig := test.SignStripePayload(payload, testWebhookSecret, time.Now())
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPost, webhookEndpoint, bytes.NewReader(payload))
			req.Header.Set("Stripe-Signature", sig)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assertReceived(c, rec.Code, rec.Body.Bytes())
		}

		// both deliveries are dispatched, the second one flagged
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, metricsEndpoint, nil))
		c.Assert(rec.Code, qt.Equals, http.StatusOK)
		metrics := rec.Body.String()
		c.Assert(strings.Contains(metrics,
			`webhook_events_total{handled="true",redelivery="false",type="payment_intent.succeeded"} 1`), qt.IsTrue, qt.Commentf("%s", metrics))
		c.Assert(strings.Contains(metrics,
			`webhook_events_total{handled="true",redelivery="true",type="payment_intent.succeeded"} 1`), qt.IsTrue, qt.Commentf("%s", metrics))
	})

	c.Run("invalid signatures", func(c *qt.C) {
		payload := test.StripeEventPayload(eventID("bad"), "payment_intent.succeeded", map[string]any{"id": "pi_4"})
		signatures := []string{
			"",
			"t=1,v1=deadbeef",
			test.SignStripePayload(payload, "whsec_other", time.Now()),
			test.SignStripePayload(payload, testWebhookSecret, time.Now().Add(-time.Hour)),
		}
		for i, sig := range signatures {
			status, body := postWebhook(c, payload, sig)
			c.Assert(status, qt.Equals, http.StatusBadRequest, qt.Commentf("case %d", i))
			c.Assert(strings.HasPrefix(string(body), "Webhook Error: "), qt.IsTrue, qt.Commentf("body: %s", body))
			c.Assert(len(body) > len("Webhook Error: "), qt.IsTrue)
		}

		// the payload must be the one signed
		sig := test.SignStripePayload(payload, testWebhookSecret, time.Now())
		status, body := postWebhook(c, append(payload, ' '), sig)
		c.Assert(status, qt.Equals, http.StatusBadRequest)
		c.Assert(strings.HasPrefix(string(body), "Webhook Error: "), qt.IsTrue)
	})

	c.Run("body too large", func(c *qt.C) {
		payload := test.StripeEventPayload(eventID("large"), "customer.created", map[string]any{
			"id":      "cus_2",
			"padding": string(bytes.Repeat([]byte("a"), maxWebhookBodySize)),
		})
		req := httptest.NewRequest(http.MethodPost, webhookEndpoint, bytes.NewReader(payload))
		req.Header.Set("Stripe-Signature", test.SignStripePayload(payload, testWebhookSecret, time.Now()))
		rec := httptest.NewRecorder()
		newTestAPI(newMemoryDB(), testStripe.URL, "development").Router().ServeHTTP(rec, req)
		c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
		c.Assert(rec.Header().Get("Content-Type"), qt.Equals, "text/plain; charset=utf-8")
		c.Assert(strings.HasPrefix(rec.Body.String(), "Webhook Error: "), qt.IsTrue)
	})
}
