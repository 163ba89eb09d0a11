package source

import (
	"embed"
	"fmt"
	"time"

	"github.com/okian/squadkit/internal/domain/normalize"
)

// Payload kinds, used in logs and metric labels.
const (
	KindBootstrap = "bootstrap"
	KindFixtures  = "fixtures"
)

// Default integrity thresholds.
const (
	DefaultMinElements = 50
	DefaultMinFixtures = 1
)

//go:embed fallback/bootstrap.json
var fallbackFS embed.FS

// MinElements rejects bootstrap payloads with fewer than n elements.
func MinElements(n int) func(normalize.Bootstrap) error {
	return func(b normalize.Bootstrap) error {
		if len(b.Elements) < n {
			return fmt.Errorf("%w: %d < %d", ErrTooFewElements, len(b.Elements), n)
		}
		return nil
	}
}

// MinFixtures rejects fixture lists with fewer than n entries.
func MinFixtures(n int) func([]normalize.RawFixture) error {
	return func(f []normalize.RawFixture) error {
		if len(f) < n {
			return fmt.Errorf("%w: %d < %d", ErrTooFewFixtures, len(f), n)
		}
		return nil
	}
}

// NewBootstrapResolver fetches and decodes reference payloads.
func NewBootstrapResolver(opts ...Option) *Resolver[normalize.Bootstrap] {
	return NewResolver(KindBootstrap, normalize.DecodeBootstrap, opts...)
}

// NewFixturesResolver fetches and decodes fixture lists.
func NewFixturesResolver(opts ...Option) *Resolver[[]normalize.RawFixture] {
	return NewResolver(KindFixtures, normalize.DecodeFixtures, opts...)
}

// Sources builds an ordered source list sharing one timeout and validator.
func Sources[T any](urls []string, timeout time.Duration, validate func(T) error) []Source[T] {
	out := make([]Source[T], 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		out = append(out, Source[T]{Name: Name(u), URL: u, Timeout: timeout, Validate: validate})
	}
	return out
}

// Fallback decodes the bundled bootstrap dataset.
func Fallback() (normalize.Bootstrap, error) {
	body, err := fallbackFS.ReadFile("fallback/bootstrap.json")
	if err != nil {
		return normalize.Bootstrap{}, fmt.Errorf("read fallback: %w", err)
	}
	return normalize.DecodeBootstrap(body)
}
