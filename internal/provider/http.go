package provider

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tbourn/verproxy/internal/config"
)

// HTTPClientProvider hands out the single HTTP client shared by every
// request. The client is safe for concurrent use and is never rebuilt.
type HTTPClientProvider struct {
	client *http.Client
}

// NewHTTPClientProvider builds the shared client. Outbound requests are traced
// through otelhttp; Timeout 0 leaves deadlines to the request context.
func NewHTTPClientProvider(cfg config.ExternConfig) *HTTPClientProvider {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.MaxIdleConns > 0 {
		base.MaxIdleConnsPerHost = cfg.MaxIdleConns
	}
	base.IdleConnTimeout = 90 * time.Second

	return &HTTPClientProvider{
		client: &http.Client{
			Transport: otelhttp.NewTransport(base),
			Timeout:   cfg.Timeout,
		},
	}
}

// NewHTTPClientProviderWith wraps an existing client (tests, custom transports).
func NewHTTPClientProviderWith(c *http.Client) *HTTPClientProvider {
	if c == nil {
		c = http.DefaultClient
	}
	return &HTTPClientProvider{client: c}
}

// Client returns the shared client.
func (p *HTTPClientProvider) Client() *http.Client {
	return p.client
}

// CloseIdle drops idle keep-alive connections; used on shutdown.
func (p *HTTPClientProvider) CloseIdle() {
	p.client.CloseIdleConnections()
}
