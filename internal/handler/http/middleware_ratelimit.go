package http

import (
	"math"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-auth-portal/internal/app"
	"github.com/MKhiriev/go-auth-portal/internal/logger"
	"github.com/MKhiriev/go-auth-portal/internal/utils"
)

// rateLimit throttles requests per client IP. Rejected requests get 429 and
// a Retry-After header.
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := utils.ClientIP(r)
		if h.limiter.Allow(ip) {
			next.ServeHTTP(w, r)
			return
		}

		route := routePattern(r)
		logger.FromRequest(r).Warn().
			Err(ErrTooManyRequests).
			Str("ip", ip).
			Str("route", route).
			Send()
		h.metrics.ObserveRateLimited(route)

		retryAfter := int(math.Ceil(h.limiter.RetryAfter().Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		http.Error(w, app.MsgTooManyRequests, http.StatusTooManyRequests)
	})
}
