package api

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimit caps requests per client IP. RATE_RPS and RATE_BURST configure
// it; zero RPS disables limiting.
func RateLimit(next http.Handler) http.Handler {
	rps, _ := strconv.ParseFloat(os.Getenv("RATE_RPS"), 64)
	if rps <= 0 {
		return next
	}
	burst, _ := strconv.Atoi(os.Getenv("RATE_BURST"))
	if burst <= 0 {
		burst = int(rps) + 1
	}

	var mu sync.Mutex
	limiters := map[string]*rate.Limiter{}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		mu.Lock()
		lim := limiters[host]
		if lim == nil {
			lim = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[host] = lim
		}
		mu.Unlock()
		if !lim.Allow() {
			writeProblem(w, http.StatusTooManyRequests, "rate limited", "too many requests", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}
