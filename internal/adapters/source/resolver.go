// Package source fetches provider payloads from an ordered list of
// sources. The first source that answers with a decodable, valid payload
// wins; when none does the result is marked unavailable and the caller
// falls back to bundled data.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/squadkit/pkg/logger"
	"github.com/okian/squadkit/pkg/metrics"
)

// Outcome classifies a single attempt.
type Outcome string

// Attempt outcomes.
const (
	OutcomeOK        Outcome = "ok"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeCanceled  Outcome = "canceled"
	OutcomeTransport Outcome = "transport"
	OutcomeStatus    Outcome = "status"
	OutcomeTooLarge  Outcome = "too_large"
	OutcomeDecode    Outcome = "decode"
	OutcomeInvalid   Outcome = "invalid"
)

// Source describes one place a payload can be fetched from.
type Source[T any] struct {
	Name    string
	URL     string
	Timeout time.Duration
	// Validate is the minimum-integrity check applied after decoding.
	Validate func(T) error
}

// Attempt records what happened when a source was tried.
type Attempt struct {
	Source   string        `json:"source"`
	Outcome  Outcome       `json:"outcome"`
	Status   int           `json:"status,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Result is the outcome of a resolution. Value is meaningful only when
// Available is true.
type Result[T any] struct {
	Value     T
	Available bool
	Source    string
	Attempts  []Attempt
}

// Option configures a Resolver.
type Option func(*options)

type options struct {
	client    Doer
	maxBytes  int64
	userAgent string
	logger    logger.Logger
}

// WithClient sets the HTTP client used for every attempt.
func WithClient(c Doer) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

// WithMaxBytes caps the accepted body size.
func WithMaxBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBytes = n
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithLogger sets the logger instance.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Resolver tries sources in order and decodes the first usable payload.
type Resolver[T any] struct {
	kind   string
	decode func([]byte) (T, error)
	options
}

// NewResolver creates a resolver for one payload kind ("bootstrap", "fixtures").
func NewResolver[T any](kind string, decode func([]byte) (T, error), opts ...Option) *Resolver[T] {
	o := options{
		maxBytes:  DefaultMaxBytes,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = NewClient()
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("source")
	}
	return &Resolver[T]{kind: kind, decode: decode, options: o}
}

// Kind returns the payload kind this resolver fetches.
func (r *Resolver[T]) Kind() string { return r.kind }

// Resolve attempts sources strictly in order, one attempt each, and stops
// at the first success. Failures are recorded, never returned.
func (r *Resolver[T]) Resolve(ctx context.Context, sources []Source[T]) Result[T] {
	start := time.Now()
	res := Result[T]{Attempts: make([]Attempt, 0, len(sources))}

	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		value, att := r.attempt(ctx, src)
		res.Attempts = append(res.Attempts, att)
		metrics.RecordSourceAttempt(r.kind, att.Source, string(att.Outcome))

		if att.Outcome == OutcomeOK {
			r.logger.Info(ctx, "source resolved",
				logger.String("kind", r.kind),
				logger.String("source", att.Source),
				logger.Duration("took", att.Duration))
			res.Value = value
			res.Available = true
			res.Source = att.Source
			break
		}
		r.logger.Warn(ctx, "source attempt failed",
			logger.String("kind", r.kind),
			logger.String("source", att.Source),
			logger.String("outcome", string(att.Outcome)),
			logger.Int("status", att.Status),
			logger.Error(att.Err))
	}

	if !res.Available {
		r.logger.Warn(ctx, "no source available",
			logger.String("kind", r.kind),
			logger.Int("attempts", len(res.Attempts)))
	}
	metrics.RecordResolution(r.kind, res.Available, float64(time.Since(start).Microseconds())/1000)
	return res
}

func (r *Resolver[T]) attempt(ctx context.Context, src Source[T]) (T, Attempt) {
	var zero T
	att := Attempt{Source: src.Name}
	if att.Source == "" {
		att.Source = Name(src.URL)
	}
	timeout := src.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	start := time.Now()
	fail := func(o Outcome, err error) (T, Attempt) {
		att.Outcome, att.Err, att.Duration = o, err, time.Since(start)
		return zero, att
	}

	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, status, err := r.fetch(actx, src.URL)
	att.Status = status
	if err != nil {
		return fail(classify(ctx, actx, err), err)
	}

	value, err := r.decode(body)
	if err != nil {
		return fail(OutcomeDecode, err)
	}
	if src.Validate != nil {
		if err := src.Validate(value); err != nil {
			return fail(OutcomeInvalid, err)
		}
	}
	att.Outcome, att.Duration = OutcomeOK, time.Since(start)
	return value, att
}

func (r *Resolver[T]) fetch(ctx context.Context, rawURL string) ([]byte, int, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return nil, 0, fmt.Errorf("%w: %q", ErrBadURL, rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > r.maxBytes {
		return nil, resp.StatusCode, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, r.maxBytes)
	}
	return body, resp.StatusCode, nil
}

// classify maps a fetch error to an outcome. parent is the resolution
// context and actx the per-attempt one.
func classify(parent, actx context.Context, err error) Outcome {
	switch {
	case errors.Is(err, ErrStatus):
		return OutcomeStatus
	case errors.Is(err, ErrTooLarge):
		return OutcomeTooLarge
	case parent.Err() != nil:
		return OutcomeCanceled
	case errors.Is(actx.Err(), context.DeadlineExceeded):
		return OutcomeTimeout
	default:
		return OutcomeTransport
	}
}

// Name derives a short source name from its URL: the host for network
// sources, the path for file sources.
func Name(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.Scheme == "file" {
		return "file:" + u.Path
	}
	if u.Host == "" {
		return rawURL
	}
	return u.Host + u.Path
}
