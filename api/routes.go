package api

const (
	// GET / to get the service status
	healthEndpoint = "/"
	// GET /metrics to scrape the Prometheus metrics
	metricsEndpoint = "/metrics"

	// payment routes

	// POST /create-payment-intent to create a Stripe payment intent
	createPaymentIntentEndpoint = "/create-payment-intent"
	// POST /webhook to receive the Stripe webhook events
	webhookEndpoint = "/webhook"

	// auth routes

	// POST /api/auth/signup to register a new user
	authSignupEndpoint = "/api/auth/signup"
	// POST /api/auth/signin to login and get a JWT token
	authSigninEndpoint = "/api/auth/signin"
	// GET /api/auth/me to get the current user
	authMeEndpoint = "/api/auth/me"
)

// availableEndpoints is listed by the health endpoint and in the not found
// responses.
var availableEndpoints = []string{
	"GET " + healthEndpoint,
	"POST " + createPaymentIntentEndpoint,
	"POST " + webhookEndpoint,
	"POST " + authSignupEndpoint,
	"POST " + authSigninEndpoint,
	"GET " + authMeEndpoint,
}
