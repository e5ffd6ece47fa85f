// Package api provides the HTTP API of the payments backend
//
//	@title						Payments Backend API
//	@version					1.0
//	@description				Payment intents, Stripe webhooks and user accounts
//
//	@license.name				Apache 2.0
//	@license.url				http://www.apache.org/licenses/LICENSE-2.0.html
//
//	@host						localhost:8080
//	@BasePath					/
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT token.
//
//	@tag.name					payments
//	@tag.description			Payment intents and Stripe webhooks
//
//	@tag.name					auth
//	@tag.description			Authentication operations
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/vocdoni/payments-backend/api/apicommon"
	"github.com/vocdoni/payments-backend/db"
	"github.com/vocdoni/payments-backend/metrics"
	"github.com/vocdoni/payments-backend/stripe"
	"github.com/vocdoni/payments-backend/validator"
	"go.vocdoni.io/dvote/log"
)

type Config struct {
	Host   string
	Port   int
	Env    string
	Secret string
	DB     db.Database
	// Stripe client used to create payment intents
	Stripe *stripe.Client
	// Webhooks verifies and dispatches the Stripe webhook events
	Webhooks *stripe.Service
	// Metrics collectors, a new set is created if nil
	Metrics *metrics.Metrics
	// AuthRequestsPerMinute and AuthBurst configure the per client IP rate
	// limit of the auth routes. Zero values use the defaults.
	AuthRequestsPerMinute int
	AuthBurst             int
	// TrustProxy makes the auth rate limit use the client IP reported by
	// the X-Forwarded-For or X-Real-IP headers instead of the TCP peer.
	// Enable it only behind a proxy that sets those headers.
	TrustProxy bool
}

// API type represents the API HTTP server with JWT authentication capabilities.
type API struct {
	db          db.Database
	auth        *jwtauth.JWTAuth
	host        string
	port        int
	env         string
	router      *chi.Mux
	server      *http.Server
	stripe      *stripe.Client
	webhooks    *stripe.Service
	metrics     *metrics.Metrics
	validator   *validator.Validator
	authLimiter *ipRateLimiter
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) *API {
	if conf == nil {
		return nil
	}
	env := conf.Env
	if env == "" {
		env = "development"
	}
	m := conf.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &API{
		db:          conf.DB,
		auth:        jwtauth.New("HS256", []byte(conf.Secret), nil),
		host:        conf.Host,
		port:        conf.Port,
		env:         env,
		stripe:      conf.Stripe,
		webhooks:    conf.Webhooks,
		metrics:     m,
		validator:   validator.New(),
		authLimiter: newIPRateLimiter(conf.AuthRequestsPerMinute, conf.AuthBurst, conf.TrustProxy),
	}
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	a.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.host, a.port),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infow("starting API server", "host", a.host, "port", a.port, "env", a.env)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// Stop gracefully shuts down the server started by Start.
func (a *API) Stop(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Router creates the router with all the routes and middleware.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	r.Use(peerAddr)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(a.metrics.Middleware)
	r.Use(a.recoverer)
	r.Use(middleware.Throttle(100))
	r.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	r.Use(middleware.Timeout(45 * time.Second))

	// unknown routes and methods get the list of the available endpoints
	r.NotFound(a.notFoundHandler)
	r.MethodNotAllowed(a.notFoundHandler)

	log.Infow("new route", "method", "GET", "path", healthEndpoint)
	r.Get(healthEndpoint, a.healthHandler)
	log.Infow("new route", "method", "GET", "path", metricsEndpoint)
	r.Method(http.MethodGet, metricsEndpoint, a.metrics.Handler())
	log.Infow("new route", "method", "POST", "path", createPaymentIntentEndpoint)
	r.Post(createPaymentIntentEndpoint, a.createPaymentIntentHandler)
	log.Infow("new route", "method", "POST", "path", webhookEndpoint)
	r.Post(webhookEndpoint, a.webhookHandler)

	r.Group(func(r chi.Router) {
		r.Use(a.authLimiter.middleware)
		log.Infow("new route", "method", "POST", "path", authSignupEndpoint)
		r.With(a.validator.ValidateMiddleware(apicommon.SignupRequest{})).Post(authSignupEndpoint, a.signupHandler)
		log.Infow("new route", "method", "POST", "path", authSigninEndpoint)
		r.With(a.validator.ValidateMiddleware(apicommon.SigninRequest{})).Post(authSigninEndpoint, a.signinHandler)

		// protected routes
		r.Group(func(r chi.Router) {
			// seek, verify and validate JWT tokens
			r.Use(jwtauth.Verifier(a.auth))
			// handle valid JWT tokens
			r.Use(a.authenticator)
			log.Infow("new route", "method", "GET", "path", authMeEndpoint)
			r.Get(authMeEndpoint, a.meHandler)
		})
	})
	a.router = r
	return r
}
