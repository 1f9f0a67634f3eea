// Package httputil provides HTTP client utilities with standard configurations.
package httputil

import (
	"net/http"
	"time"
)

const (
	// Default timeout for upstream requests
	defaultTimeout = 10 * time.Second

	// Transport configuration constants
	maxIdleConns        = 20
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 90 * time.Second
)

// NewHTTPClient creates a new HTTP client with the specified timeout.
// A non-positive timeout falls back to the default.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        maxIdleConns,
			MaxIdleConnsPerHost: maxIdleConnsPerHost,
			IdleConnTimeout:     idleConnTimeout,
		},
	}
}

