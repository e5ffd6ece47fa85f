package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/vocdoni/payments-backend/errors"
	"go.vocdoni.io/dvote/log"
	"golang.org/x/time/rate"
)

const (
	defaultAuthRequestsPerMinute = 30
	defaultAuthBurst             = 10
	// limiterIdleTTL is how long the limiter of an idle client is kept.
	limiterIdleTTL = 10 * time.Minute
)

// recoverer turns the panics of the handlers into the generic internal
// server error. The panic value is only sent to the client outside
// production, but it's always logged.
func (a *API) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				// let the server abort the response
				panic(rvr)
			}
			err := fmt.Errorf("%v", rvr)
			log.Errorw(err, fmt.Sprintf("panic serving %s %s", r.Method, r.URL.Path))
			log.Debugw("panic stack", "stack", string(debug.Stack()))
			a.internalError(err).Write(w)
		}()
		next.ServeHTTP(w, r)
	})
}

type peerAddrKey struct{}

// peerAddr keeps the address of the TCP peer in the request context. It
// must run before middleware.RealIP, which rewrites RemoteAddr from headers
// any client can send.
func peerAddr(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerAddrKey{}, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps a token bucket per client IP. Unless trustProxy is
// set, the client is the TCP peer and the X-Forwarded-For and X-Real-IP
// headers are ignored. Set it only when a proxy that overwrites those
// headers is in front of the service.
type ipRateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*clientLimiter
	limit       rate.Limit
	burst       int
	trustProxy  bool
	lastCleanup time.Time
}

func newIPRateLimiter(requestsPerMinute, burst int, trustProxy bool) *ipRateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultAuthRequestsPerMinute
	}
	if burst <= 0 {
		burst = defaultAuthBurst
	}
	return &ipRateLimiter{
		clients:     make(map[string]*clientLimiter),
		limit:       rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:       burst,
		trustProxy:  trustProxy,
		lastCleanup: time.Now(),
	}
}

// allow reports whether the client with the given IP may make a request now.
func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if now.Sub(l.lastCleanup) > limiterIdleTTL {
		for key, c := range l.clients {
			if now.Sub(c.lastSeen) > limiterIdleTTL {
				delete(l.clients, key)
			}
		}
		l.lastCleanup = now
	}
	c, ok := l.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (l *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := r.RemoteAddr
		if peer, ok := r.Context().Value(peerAddrKey{}).(string); ok && !l.trustProxy {
			addr = peer
		}
		ip := addr
		if host, _, err := net.SplitHostPort(addr); err == nil {
			ip = host
		}
		if !l.allow(ip) {
			w.Header().Set("Retry-After", "60")
			errors.ErrTooManyRequests.Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
