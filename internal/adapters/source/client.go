package source

import (
	"net/http"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout  = 8 * time.Second
	DefaultMaxBytes = 16 << 20
	// DefaultUserAgent mimics a browser; the provider rejects bare clients.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewClient returns an HTTP client that also serves file:// URLs from the
// local filesystem, so snapshot files can sit in the ordered source list.
// Per-request deadlines come from the caller's context.
func NewClient() *http.Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
	return &http.Client{Transport: t}
}
