package api

import (
    "net/http"

    "golang.org/x/time/rate"
)

// RateLimit wraps a handler with a global token bucket. Streaming endpoints
// pass through the same bucket; the limit applies to request starts only.
func RateLimit(rps float64, burst int, next http.Handler) http.Handler {
    if rps <= 0 { return next }
    lim := rate.NewLimiter(rate.Limit(rps), burst)
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if !lim.Allow() {
            writeProblem(w, http.StatusTooManyRequests, "Rate limit exceeded", "try again later", r.URL.Path)
            return
        }
        next.ServeHTTP(w, r)
    })
}
