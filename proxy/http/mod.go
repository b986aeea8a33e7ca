// Package http implements the proxy with an HTTP server exposing the lottery,
// the accounts and the metrics.
package http

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.dedis.ch/raffle"
	"golang.org/x/xerrors"
)

type key int

const (
	requestIDKey key = 0

	// RequestIDHeader is the header carrying the identifier of a request.
	RequestIDHeader = "X-Request-Id"

	shutdownTimeout = 10 * time.Second
)

var promRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "raffle_proxy_requests_total",
	Help: "total number of requests served by the proxy",
}, []string{"path", "code"})

func init() {
	raffle.PromCollectors = append(raffle.PromCollectors, promRequests)
}

// HTTP is a proxy serving the handlers over HTTP.
//
// - implements proxy.Proxy
type HTTP struct {
	sync.Mutex

	mux        *http.ServeMux
	server     *http.Server
	logger     zerolog.Logger
	listenAddr string
	addr       net.Addr
	quit       chan struct{}
}

// Option is the type of option to change the default proxy.
type Option func(*HTTP)

// WithLogger sets the logger of the proxy.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *HTTP) {
		h.logger = logger
	}
}

// NewHTTP creates a new proxy that will listen on the address.
func NewHTTP(listenAddr string, opts ...Option) *HTTP {
	h := &HTTP{
		mux:        http.NewServeMux(),
		logger:     raffle.Logger.With().Str("role", "http proxy").Logger(),
		listenAddr: listenAddr,
		quit:       make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(h)
	}

	nextRequestID := func() string {
		return xid.New().String()
	}

	h.server = &http.Server{
		Handler:           tracing(nextRequestID)(logging(h.logger)(h.mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return h
}

// Listen implements proxy.Proxy. It blocks until the server is stopped. It can
// be called again once Stop has returned.
func (h *HTTP) Listen() error {
	ln, err := net.Listen("tcp", h.listenAddr)
	if err != nil {
		return xerrors.Errorf("failed to listen on %s: %v", h.listenAddr, err)
	}

	h.Lock()
	h.addr = ln.Addr()
	h.Unlock()

	// Streaming requests are cancelled with the base context when the server
	// stops.
	base, cancelBase := context.WithCancel(context.Background())
	h.server.BaseContext = func(net.Listener) context.Context { return base }

	done := make(chan error, 1)

	go func() {
		<-h.quit
		h.logger.Info().Msg("server is shutting down")

		cancelBase()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		h.server.SetKeepAlivesEnabled(false)
		done <- h.server.Shutdown(ctx)
	}()

	h.logger.Info().Str("addr", ln.Addr().String()).Msg("server started")

	err = h.server.Serve(ln)
	if err != nil && err != http.ErrServerClosed {
		return xerrors.Errorf("failed to serve: %v", err)
	}

	err = <-done

	h.Lock()
	h.addr = nil
	h.Unlock()

	if err != nil {
		return xerrors.Errorf("failed to shutdown: %v", err)
	}

	h.logger.Info().Msg("server stopped")

	return nil
}

// Stop implements proxy.Proxy.
func (h *HTTP) Stop() {
	select {
	case h.quit <- struct{}{}:
	default:
	}
}

// GetAddr implements proxy.Proxy.
func (h *HTTP) GetAddr() net.Addr {
	h.Lock()
	defer h.Unlock()

	return h.addr
}

// RegisterHandler implements proxy.Proxy.
func (h *HTTP) RegisterHandler(path string, handler func(http.ResponseWriter, *http.Request)) {
	h.mux.HandleFunc(path, handler)
}

// ServeHTTP serves the request with the middlewares and the handlers of the
// proxy, without the server.
func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.server.Handler.ServeHTTP(w, r)
}

// statusWriter records the status code of the response.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher when the underlying writer does.
func (w *statusWriter) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

// logging is a middleware that prints an access log line per request.
func logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

			defer func() {
				requestID, ok := r.Context().Value(requestIDKey).(string)
				if !ok {
					requestID = "unknown"
				}

				promRequests.WithLabelValues(r.URL.Path, strconv.Itoa(sw.code)).Inc()

				logger.Info().Str("requestID", requestID).
					Str("method", r.Method).
					Str("url", r.URL.Path).
					Int("code", sw.code).
					Dur("duration", time.Since(start)).
					Str("remoteAddr", r.RemoteAddr).
					Str("agent", r.UserAgent()).
					Msg("request served")
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

// tracing is a middleware that sets the request identifier header, or
// generates one when absent.
func tracing(nextRequestID func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = nextRequestID()
			}

			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			w.Header().Set(RequestIDHeader, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
