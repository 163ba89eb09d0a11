// Package relay forwards provider endpoints verbatim so browsers can read
// them: it adds permissive CORS and a short public cache lifetime.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/squadkit/pkg/logger"
	"github.com/okian/squadkit/pkg/metrics"
)

// Default relay configuration.
const (
	DefaultUpstream  = "https://fantasy.premierleague.com/api"
	DefaultMaxAge    = 300 * time.Second
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124 Safari/537.36"
	DefaultMaxBytes  = 16 << 20
)

// ErrTooLarge is returned when an upstream body exceeds the byte cap.
var ErrTooLarge = errors.New("upstream body too large")

// Routes served by the relay, mapped to the upstream path they forward to.
var routes = map[string]string{
	"/fpl/bootstrap-static": "/bootstrap-static/",
	"/fpl/fixtures":         "/fixtures/",
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithUpstream sets the provider API base URL.
func WithUpstream(base string) Option {
	return func(h *Handler) {
		if base != "" {
			h.upstream = strings.TrimRight(base, "/")
		}
	}
}

// WithClient sets the upstream HTTP client.
func WithClient(c Doer) Option {
	return func(h *Handler) {
		if c != nil {
			h.client = c
		}
	}
}

// WithMaxAge sets the Cache-Control max-age sent to callers.
func WithMaxAge(d time.Duration) Option {
	return func(h *Handler) {
		if d >= 0 {
			h.maxAge = d
		}
	}
}

// WithTimeout bounds each upstream request.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithMaxBytes caps the upstream body the relay buffers.
func WithMaxBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

// WithUserAgent overrides the upstream User-Agent header.
func WithUserAgent(ua string) Option {
	return func(h *Handler) {
		if ua != "" {
			h.userAgent = ua
		}
	}
}

// WithLogger sets the logger instance.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// Handler relays provider responses.
type Handler struct {
	upstream  string
	client    Doer
	maxAge    time.Duration
	timeout   time.Duration
	maxBytes  int64
	userAgent string
	logger    logger.Logger
}

// New creates a relay handler.
func New(opts ...Option) *Handler {
	h := &Handler{
		upstream:  DefaultUpstream,
		client:    http.DefaultClient,
		maxAge:    DefaultMaxAge,
		timeout:   DefaultTimeout,
		maxBytes:  DefaultMaxBytes,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("relay")
	}
	return h
}

// Register mounts the relay routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	for route := range routes {
		mux.Handle("GET "+route, h)
	}
}

// ServeHTTP forwards the request to the matching upstream path, keeping the query string.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, ok := routes[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	target := h.upstream + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status, body, err := h.fetch(ctx, target)
	if err != nil {
		metrics.RecordRelayUpstream(r.URL.Path, "error")
		h.logger.Warn(ctx, "relay upstream failed", logger.String("target", target), logger.Error(err))
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = fmt.Fprintf(w, "Upstream fetch failed: %v", err)
		return
	}

	metrics.RecordRelayUpstream(r.URL.Path, strconv.Itoa(status))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.maxAge.Seconds())))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *Handler) fetch(ctx context.Context, target string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return 0, nil, err
	}
	if int64(len(body)) > h.maxBytes {
		return 0, nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, h.maxBytes)
	}
	return resp.StatusCode, body, nil
}
