// Package provider implements translation backends and the chains that
// combine them.
package provider

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ZaguanLabs/sitetrans"
	"github.com/go-resty/resty/v2"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("sitetrans/provider")

// Provider is an alias to the main package interface.
type Provider = sitetrans.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = sitetrans.TranslateRequest

// DefaultHTTPTimeout bounds a single request to an HTTP translation API.
const DefaultHTTPTimeout = 30 * time.Second

func newHTTPClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", sitetrans.UserAgent())
}

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500
}

// statusError converts a non-2xx response into a ProviderError.
func statusError(name string, r *resty.Response) error {
	body := r.String()
	if len(body) > 200 {
		body = body[:200]
	}
	return &sitetrans.ProviderError{
		Message:   fmt.Sprintf("%s returned %s: %s", name, r.Status(), body),
		Retryable: retryableStatus(r.StatusCode()),
	}
}

// transportError wraps a failed HTTP exchange. Transport failures are retried
// unless the caller's context is done.
func transportError(name string, err error) error {
	return &sitetrans.ProviderError{
		Message:   name + " request failed",
		Cause:     err,
		Retryable: !isContextErr(err),
	}
}
