// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file injects per-request resources into the Gin context: a leased
// database connection (released when the handler chain returns, on every
// path) and the shared HTTP client.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/verproxy/internal/provider"
)

const (
	leaseKey  = "dbLease"
	clientKey = "httpClient"
)

// ConnAcquirer leases one database connection per call.
type ConnAcquirer interface {
	Acquire(ctx context.Context) (*provider.Lease, error)
}

// ClientSource hands out the shared HTTP client.
type ClientSource interface {
	Client() *http.Client
}

// FailFunc writes the error response for a failed acquisition.
type FailFunc func(c *gin.Context, err error)

// InjectConn leases a connection for the request before the handler runs.
// Acquisition waits as long as the request context allows. On failure
// onFail writes the response and the handler is skipped; on success the
// lease is released after the rest of the chain, whatever its outcome.
func InjectConn(p ConnAcquirer, onFail FailFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		lease, err := p.Acquire(c.Request.Context())
		dbAcquire.Observe(time.Since(start).Seconds())
		if err != nil {
			onFail(c, err)
			c.Abort()
			return
		}
		defer lease.Release()

		c.Set(leaseKey, lease)
		c.Next()
	}
}

// InjectHTTPClient makes the shared client available to the handler.
func InjectHTTPClient(p ClientSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientKey, p.Client())
		c.Next()
	}
}

// LeaseFrom returns the connection leased by InjectConn, or nil.
func LeaseFrom(c *gin.Context) *provider.Lease {
	if v, ok := c.Get(leaseKey); ok {
		if l, ok := v.(*provider.Lease); ok {
			return l
		}
	}
	return nil
}

// HTTPClientFrom returns the client injected by InjectHTTPClient, or nil.
func HTTPClientFrom(c *gin.Context) *http.Client {
	if v, ok := c.Get(clientKey); ok {
		if hc, ok := v.(*http.Client); ok {
			return hc
		}
	}
	return nil
}
