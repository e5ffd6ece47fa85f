package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/payments-backend/api/apicommon"
	"github.com/vocdoni/payments-backend/errors"
	"github.com/vocdoni/payments-backend/stripe"
	"github.com/vocdoni/payments-backend/test"
)

const (
	testSecret        = "super-secret"
	testStripeKey     = "sk_test_payments_backend"
	testWebhookSecret = "whsec_test_payments_backend"
	testEmail         = "user@test.com"
	testPass          = "password123"
	testName          = "Test User"
	testHost          = "127.0.0.1"
	testPort          = 7788
)

var (
	// testDB is the in-memory storage of the API started by TestMain.
	testDB *memoryDB
	// testStripe stands in for the Stripe API of the API started by TestMain.
	testStripe *test.StripeMock
)

// testURL helper function returns the full URL for the given path using the
// test host and port.
func testURL(path string) string {
	return fmt.Sprintf("http://%s:%d%s", testHost, testPort, path)
}

// mustMarshal helper function marshalls the input interface into a byte slice.
// It panics if the marshalling fails.
func mustMarshal(i any) []byte {
	b, err := json.Marshal(i)
	if err != nil {
		panic(err)
	}
	return b
}

// pingAPI helper function pings the API endpoint and retries the request
// if it fails until the retries limit is reached.
func pingAPI(endpoint string, retries int) error {
	var pingErr error
	for i := 0; i < retries; i++ {
		var resp *http.Response
		if resp, pingErr = http.Get(endpoint); pingErr == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			pingErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		time.Sleep(time.Second)
	}
	return pingErr
}

// newTestAPI creates an API backed by database and by the Stripe server at
// stripeURL.
func newTestAPI(database *memoryDB, stripeURL, env string) *API {
	client, err := stripe.NewClient(&stripe.Config{
		APIKey:        testStripeKey,
		WebhookSecret: testWebhookSecret,
		BackendURL:    stripeURL,
	})
	if err != nil {
		panic(err)
	}
	webhooks, err := stripe.NewService(client, stripe.NewMemoryEventStore(time.Hour))
	if err != nil {
		panic(err)
	}
	return New(&Config{
		Host:                  testHost,
		Port:                  testPort,
		Env:                   env,
		Secret:                testSecret,
		DB:                    database,
		Stripe:                client,
		Webhooks:              webhooks,
		AuthRequestsPerMinute: 6000,
		AuthBurst:             1000,
	})
}

// newTestServer serves a new test API through httptest, for the tests that
// need a Stripe server or an environment of their own.
func newTestServer(c *qt.C, stripeURL, env string) *httptest.Server {
	srv := httptest.NewServer(newTestAPI(newMemoryDB(), stripeURL, env).Router())
	c.Cleanup(srv.Close)
	return srv
}

// request sends a request to the URL provided and returns the response
// status and body.
func request(c *qt.C, method, url string, body []byte, headers map[string]string) (int, []byte) {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	c.Assert(err, qt.IsNil)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	c.Assert(err, qt.IsNil)
	defer func() { _ = resp.Body.Close() }()
	respBody, err := io.ReadAll(resp.Body)
	c.Assert(err, qt.IsNil)
	return resp.StatusCode, respBody
}

// apiError is the JSON body of the error responses.
type apiError struct {
	Error string          `json:"error"`
	Code  int             `json:"code"`
	Data  json.RawMessage `json:"data"`
}

func decodeError(c *qt.C, body []byte) apiError {
	var e apiError
	c.Assert(json.Unmarshal(body, &e), qt.IsNil, qt.Commentf("body: %s", body))
	return e
}

func assertAPIError(c *qt.C, status int, body []byte, expected errors.Error) {
	c.Assert(status, qt.Equals, expected.HTTPstatus, qt.Commentf("body: %s", body))
	c.Assert(decodeError(c, body).Code, qt.Equals, expected.Code)
}

// TestMain starts the Stripe stand-in and the API server with an in-memory
// database before running the tests.
func TestMain(m *testing.M) {
	testDB = newMemoryDB()
	testStripe = test.NewStripeMock()
	newTestAPI(testDB, testStripe.URL, "development").Start()
	if err := pingAPI(testURL(healthEndpoint), 5); err != nil {
		panic(err)
	}
	code := m.Run()
	testStripe.Close()
	os.Exit(code)
}

func TestHealth(t *testing.T) {
	c := qt.New(t)
	status, body := request(c, http.MethodGet, testURL(healthEndpoint), nil, nil)
	c.Assert(status, qt.Equals, http.StatusOK)
	info := &apicommon.HealthInfo{}
	c.Assert(json.Unmarshal(body, info), qt.IsNil)
	c.Assert(info.Status, qt.Equals, "ok")
	c.Assert(info.Environment, qt.Equals, "development")
	c.Assert(info.Message, qt.Not(qt.Equals), "")
	c.Assert(info.Endpoints, qt.DeepEquals, availableEndpoints)
	c.Assert(time.Since(info.Timestamp) < time.Minute, qt.IsTrue)
}

func TestNotFound(t *testing.T) {
	c := qt.New(t)
	expected := []string{
		"GET /",
		"POST /create-payment-intent",
		"POST /webhook",
		"POST /api/auth/signup",
		"POST /api/auth/signin",
		"GET /api/auth/me",
	}
	cases := []struct{ method, path string }{
		{http.MethodGet, "/unknown"},
		{http.MethodPost, "/api/auth/unknown"},
		{http.MethodGet, createPaymentIntentEndpoint},
		{http.MethodDelete, authMeEndpoint},
	}
	for _, tc := range cases {
		status, body := request(c, tc.method, testURL(tc.path), nil, nil)
		assertAPIError(c, status, body, errors.ErrEndpointNotFound)
		e := decodeError(c, body)
		c.Assert(e.Error, qt.Equals, "Endpoint not found")
		data := &apicommon.NotFoundData{}
		c.Assert(json.Unmarshal(e.Data, data), qt.IsNil)
		c.Assert(data.AvailableEndpoints, qt.DeepEquals, expected)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	c := qt.New(t)
	// make sure there is traffic to report
	request(c, http.MethodGet, testURL(healthEndpoint), nil, nil)
	status, body := request(c, http.MethodGet, testURL(metricsEndpoint), nil, nil)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(bytes.Contains(body, []byte(`http_requests_total{method="GET",route="/",status="200"}`)), qt.IsTrue)
}
