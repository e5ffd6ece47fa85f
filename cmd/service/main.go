package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vocdoni/payments-backend/api"
	"github.com/vocdoni/payments-backend/db"
	"github.com/vocdoni/payments-backend/metrics"
	"github.com/vocdoni/payments-backend/stripe"
	"go.vocdoni.io/dvote/log"
)

// envPrefix prefixes the environment variables read automatically, e.g.
// PAYMENTS_MONGO_DB for the mongo-db flag.
const envPrefix = "PAYMENTS"

// envAliases are the plain environment variable names accepted for each
// flag, besides the prefixed one.
var envAliases = map[string][]string{
	"host":                  {"HOST"},
	"port":                  {"PORT"},
	"env":                   {"APP_ENV", "NODE_ENV"},
	"stripe-secret-key":     {"STRIPE_SECRET_KEY"},
	"stripe-webhook-secret": {"STRIPE_WEBHOOK_SECRET"},
	"stripe-api-url":        {"STRIPE_API_URL"},
	"mongo-url":             {"MONGO_URI", "DATABASE_URL"},
	"mongo-db":              {"MONGO_DB"},
	"jwt-secret":            {"JWT_SECRET"},
	"redis-url":             {"REDIS_URL"},
	"payment-source":        {"PAYMENT_SOURCE"},
	"trust-proxy":           {"TRUST_PROXY"},
	"log-level":             {"LOG_LEVEL"},
}

func main() {
	// a missing .env file is not an error, the environment may be complete
	_ = godotenv.Load()

	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 8080, "listen port")
	flag.StringP("env", "e", "development", "deployment environment, 'production' hides internal error details")
	flag.String("stripe-secret-key", "", "Stripe API secret key")
	flag.String("stripe-webhook-secret", "", "Stripe webhook signing secret")
	flag.String("stripe-api-url", "", "Stripe API base URL override (stripe-mock, tests)")
	flag.String("mongo-url", "", "The URL of the MongoDB server")
	flag.String("mongo-db", "payments-backend", "The name of the MongoDB database")
	flag.StringP("jwt-secret", "s", "", "secret used to sign the JWT tokens")
	flag.String("redis-url", "", "Redis URL used to share processed webhook events, in memory if empty")
	flag.String("payment-source", stripe.DefaultSource, "source tag stored in the metadata of the payment intents")
	flag.Bool("trust-proxy", false, "rate limit auth requests by the X-Forwarded-For/X-Real-IP client address, only behind a trusted proxy")
	flag.String("log-level", "info", "log level (debug, info, warn, error)")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	for key, aliases := range envAliases {
		envNames := append([]string{envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))}, aliases...)
		if err := viper.BindEnv(append([]string{key}, envNames...)...); err != nil {
			panic(err)
		}
	}
	viper.AutomaticEnv()

	log.Init(viper.GetString("log-level"), "stdout", nil)

	// read the configuration
	host := viper.GetString("host")
	port := viper.GetInt("port")
	env := viper.GetString("env")
	jwtSecret := viper.GetString("jwt-secret")
	if jwtSecret == "" {
		log.Fatal("jwt-secret is required")
	}
	mongoURL := viper.GetString("mongo-url")
	mongoDB := viper.GetString("mongo-db")
	redisURL := viper.GetString("redis-url")
	stripeConf := &stripe.Config{
		APIKey:        viper.GetString("stripe-secret-key"),
		WebhookSecret: viper.GetString("stripe-webhook-secret"),
		BackendURL:    viper.GetString("stripe-api-url"),
		Source:        viper.GetString("payment-source"),
	}

	// initialize the MongoDB database
	database, err := db.New(mongoURL, mongoDB)
	if err != nil {
		log.Fatalf("could not create the MongoDB database: %v", err)
	}
	defer database.Close()

	// create the Stripe client and the webhook service
	stripeClient, err := stripe.NewClient(stripeConf)
	if err != nil {
		log.Fatalf("could not create the Stripe client: %v", err)
	}
	log.Infow("stripe client created", "config", stripeConf.String())
	var events stripe.EventStore
	if redisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		redisClient, err := stripe.NewRedisClient(ctx, redisURL)
		cancel()
		if err != nil {
			log.Fatalf("could not connect to redis: %v", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Warnw("failed to close redis client", "error", err)
			}
		}()
		events = stripe.NewRedisEventStore(redisClient, stripe.DefaultEventTTL)
		log.Infow("webhook events shared through redis")
	} else {
		memStore := stripe.NewMemoryEventStore(stripe.DefaultEventTTL)
		defer memStore.Close()
		events = memStore
		log.Infow("webhook events kept in memory")
	}
	webhooks, err := stripe.NewService(stripeClient, events)
	if err != nil {
		log.Fatalf("could not create the Stripe webhook service: %v", err)
	}

	// create the local API server
	server := api.New(&api.Config{
		Host:     host,
		Port:     port,
		Env:      env,
		Secret:   jwtSecret,
		DB:       database,
		Stripe:   stripeClient,
		Webhooks: webhooks,
		Metrics:  metrics.New(),

		TrustProxy: viper.GetBool("trust-proxy"),
	})
	server.Start()
	// wait until the process is asked to stop, the server runs in a goroutine
	log.Infow("server started", "host", host, "port", port, "env", env)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Infow("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Warnw("failed to stop the API server gracefully", "error", err)
	}
}
