package tracing

import (
	"errors"
	"net/http"

	otelpropagation "go.opentelemetry.io/otel/propagation"

	"github.com/aalemi-dev/oboe/propagation"
	"github.com/aalemi-dev/oboe/tracectx"
)

// HTTP annotation keys of the middleware.
const (
	KeyHTTPMethod = "HTTPMethod"
	KeyHTTPHost   = "HTTP-Host"
	KeyStatus     = "Status"
)

// Middleware traces every request as a unit of work in layer. It continues
// the X-Trace request header, honors the synthetic monitoring header, and
// sets the X-Trace response header.
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("/checkout", checkout)
//	http.ListenAndServe(":8080", client.Middleware("web")(mux))
func (c *Client) Middleware(layer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			carrier := otelpropagation.HeaderCarrier(r.Header)
			ctx, _, err := c.StartLayer(r.Context(), StartOptions{
				Layer:       layer,
				XTrace:      propagation.Inbound(carrier),
				SyntheticID: propagation.Synthetic(carrier),
				URL:         r.URL.Path,
				KVs:         []any{KeyHTTPMethod, r.Method, KeyHTTPHost, r.Host},
			})
			if err != nil && c.logger != nil {
				c.logger.WarnWithContext(ctx, "failed to start layer", err, map[string]interface{}{"layer": layer})
			}

			tc, _ := tracectx.FromContext(ctx)
			rw := &responseWriter{ResponseWriter: w, tc: tc, status: http.StatusOK}
			next.ServeHTTP(rw, r.WithContext(ctx))

			xtrace, err := c.EndLayer(ctx, KeyStatus, rw.status)
			if err != nil && !errors.Is(err, ErrNoContext) && c.logger != nil {
				c.logger.WarnWithContext(ctx, "failed to end layer", err, map[string]interface{}{"layer": layer})
			}
			if !rw.wroteHeader && xtrace != "" {
				w.Header().Set(propagation.HeaderName, xtrace)
			}
		})
	}
}

// responseWriter records the status and sets the X-Trace header before the
// headers are sent.
type responseWriter struct {
	http.ResponseWriter
	tc          *tracectx.Context
	status      int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	if w.tc != nil && w.tc.IsValid() {
		w.Header().Set(propagation.HeaderName, w.tc.String())
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
