package api

import (
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gitlab.connectwisedev.com/product-scanner/pkg/metrics"
)

const requestTimeout = 60 * time.Second

// NewRouter serves the handlers over plain HTTP for local runs.
func NewRouter(h *Handler, m *metrics.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	r.Handle("/api/search", h.serveHTTP())
	return r
}

func (h *Handler) serveHTTP() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if err != nil {
			writeResponse(w, errorResponse(http.StatusBadRequest, "could not read body"))
			return
		}

		req := events.APIGatewayProxyRequest{
			HTTPMethod:            r.Method,
			Path:                  r.URL.Path,
			Body:                  string(body),
			Headers:               map[string]string{},
			QueryStringParameters: map[string]string{},
			RequestContext: events.APIGatewayProxyRequestContext{
				RequestID: middleware.GetReqID(r.Context()),
			},
		}
		for k := range r.Header {
			req.Headers[k] = r.Header.Get(k)
		}
		for k := range r.URL.Query() {
			req.QueryStringParameters[k] = r.URL.Query().Get(k)
		}

		resp, _ := h.Handle(r.Context(), req)
		writeResponse(w, resp)
	}
}

func writeResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		_, _ = io.WriteString(w, resp.Body)
	}
}
