package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v81/webhook"
)

// SignStripePayload returns a Stripe-Signature header value for payload,
// computed the way Stripe signs webhook deliveries.
func SignStripePayload(payload []byte, secret string, ts time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: ts,
	}).Header
}

// StripeEventPayload builds the JSON body of a webhook event of the given
// type wrapping object.
func StripeEventPayload(id, eventType string, object map[string]any) []byte {
	b, err := json.Marshal(map[string]any{
		"id":          id,
		"object":      "event",
		"type":        eventType,
		"api_version": "2024-09-30.acacia",
		"created":     time.Now().Unix(),
		"data":        map[string]any{"object": object},
	})
	if err != nil {
		panic(err)
	}
	return b
}

// StripeMock is an HTTP server that answers the Stripe payment intents
// endpoint. By default it creates the intents requested; FailWith makes it
// answer with a Stripe error instead.
type StripeMock struct {
	*httptest.Server

	mu       sync.Mutex
	requests []url.Values
	status   int
	failure  map[string]any
}

// NewStripeMock starts a new StripeMock. Close it when done.
func NewStripeMock() *StripeMock {
	m := &StripeMock{}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serveHTTP))
	return m
}

// FailWith makes the following requests fail with the status and the
// Stripe error fields provided.
func (m *StripeMock) FailWith(status int, errType, code, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.failure = map[string]any{
		"type":    errType,
		"code":    code,
		"message": message,
	}
}

// Calls returns the number of payment intent creation requests received.
func (m *StripeMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the form values of the last payment intent creation
// request received, or nil if none was received.
func (m *StripeMock) LastRequest() url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func (m *StripeMock) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/payment_intents") {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m.mu.Lock()
	m.requests = append(m.requests, r.PostForm)
	n := len(m.requests)
	status, failure := m.status, m.failure
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Request-Id", fmt.Sprintf("req_test_%d", n))
	if failure != nil {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": failure})
		return
	}
	amount, _ := strconv.ParseInt(r.PostForm.Get("amount"), 10, 64)
	id := fmt.Sprintf("pi_test_%d", n)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":                   id,
		"object":               "payment_intent",
		"amount":               amount,
		"currency":             r.PostForm.Get("currency"),
		"client_secret":        id + "_secret_test",
		"status":               "requires_payment_method",
		"payment_method_types": []string{r.PostForm.Get("payment_method_types[0]")},
	})
}
