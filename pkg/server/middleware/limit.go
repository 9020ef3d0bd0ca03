package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	mu      sync.Mutex
	clients = make(map[string]*client)
)

func getClientLimiter(ip string) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	c, ok := clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(10, 20)}
		clients[ip] = c
	}
	c.lastSeen = time.Now()

	for ip, c := range clients {
		if time.Since(c.lastSeen) > 3*time.Minute {
			delete(clients, ip)
		}
	}
	return c.limiter
}

// Limit rejects requests above 10 req/s per client ip with a burst of 20.
func Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !getClientLimiter(ip).Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests),
				http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
