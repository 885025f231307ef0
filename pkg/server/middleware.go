package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/depview/pkg/observability"
)

// observe reports every request to the HTTP hooks, labelled by route
// pattern, and logs it at debug level.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		observability.HTTP().OnResponse(r.Context(), r.Method, r.Host, route, ww.Status(), time.Since(start))
		s.logger.Debug("request", "method", r.Method, "route", route, "status", ww.Status(), "dur", time.Since(start))
	})
}
