package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"synergism-calc/internal/errors"
)

// maxTrackedClients bounds the limiter map; it is reset when full.
const maxTrackedClients = 10000

// clientLimiter is a token bucket per client address.
type clientLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*rate.Limiter
}

// newClientLimiter returns nil when perMinute disables limiting.
func newClientLimiter(perMinute, burst int) *clientLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		clients: make(map[string]*rate.Limiter),
	}
}

func (l *clientLimiter) allow(client string, now time.Time) bool {
	l.mu.Lock()
	lim, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			l.clients = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.clients[client] = lim
	}
	l.mu.Unlock()

	return lim.AllowN(now, 1)
}

// retryAfter is the whole seconds until one token refills.
func (l *clientLimiter) retryAfter() int {
	return int(math.Ceil(1 / float64(l.limit)))
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// limited wraps next with the server's rate limit, if any.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		client := clientAddr(r)
		if !s.limiter.allow(client, s.clock.Now()) {
			w.Header().Set("Retry-After", strconv.Itoa(s.limiter.retryAfter()))
			err := errors.Newf(errors.TypeRateLimited, "rate limit of %d requests per minute exceeded", s.cfg.RequestsPerMinute).
				WithContext("client", client)
			s.writeError(w, uuid.NewString(), err, http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
