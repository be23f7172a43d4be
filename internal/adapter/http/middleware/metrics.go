package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestRecorder receives every served request, e.g. for hit statistics.
type RequestRecorder interface {
	RecordRequest(method, path string, status int)
}

// Metrics observes request counts and latency by route pattern and forwards
// each request to rec. Either argument may be nil.
func Metrics(m *metrics.Manager, rec RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if m != nil {
				route := r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					route = rctx.RoutePattern()
				}
				m.ObserveRequest(r.Method, route, strconv.Itoa(status), time.Since(start))
			}
			if rec != nil {
				rec.RecordRequest(r.Method, r.URL.Path, status)
			}
		})
	}
}
