package httpserver

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"petotel/internal/adapters/observability"
)

// Timeout bounds a request. Book calls are exempt; the upstream client's own
// deadline bounds them.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := http.TimeoutHandler(next, d, `{"error":"timeout"}`)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isBookCall(r) {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func isBookCall(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	return strings.HasPrefix(r.URL.Path, "/v1/confirmation/") || r.URL.Path == "/api/book"
}

// Observe records one metrics sample and one access-log line per request.
// Path parameters are logged under their domain names so a booking can be
// traced from search to confirmation.
func Observe(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			dur := time.Since(start)
			route := routeOf(r)
			observability.ObserveHTTP(route, r.Method, status, dur)

			ev := l.Info()
			switch {
			case status >= 500:
				ev = l.Warn()
			case r.URL.Path == "/healthz":
				ev = l.Debug()
			}
			if rc := chi.RouteContext(r.Context()); rc != nil {
				for i, k := range rc.URLParams.Keys {
					if k == "id" && i < len(rc.URLParams.Values) {
						ev = ev.Str(paramName(route), rc.URLParams.Values[i])
					}
				}
			}
			if q := r.URL.Query().Get("hotelId"); q != "" {
				ev = ev.Str("hotel_id", q)
			}
			ev.
				Str("route", route).
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", dur).
				Str("remote", remoteHost(r)).
				Str("ua", r.UserAgent()).
				Msg("http_request")
		})
	}
}

func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// paramName names the {id} segment after the resource it belongs to.
func paramName(route string) string {
	switch {
	case strings.HasPrefix(route, "/v1/hotels/"):
		return "hotel_id"
	case strings.HasPrefix(route, "/v1/bookings/"):
		return "booking_id"
	case strings.HasPrefix(route, "/v1/checkout/"), strings.HasPrefix(route, "/v1/confirmation/"):
		return "attempt"
	}
	return "id"
}

// remoteHost strips the port; RealIP has already applied forwarding headers.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
