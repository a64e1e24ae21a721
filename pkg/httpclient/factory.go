package httpclient

import (
	"net/http"
	"time"
)

// New returns an immutably-configured client intended to be built once per
// process and injected into every remote-service client. The transport is
// safe for concurrent reuse.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 32,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
