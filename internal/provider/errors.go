package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// UpstreamError is returned for every failed CoinGecko call: transport failures,
// non-2xx responses, and bodies that cannot be decoded.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("coingecko %s: status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("coingecko %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("coingecko %s: upstream failure", e.Op)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NotFound reports whether upstream rejected the resource as unknown.
func (e *UpstreamError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err wraps an UpstreamError for an unknown resource.
func IsNotFound(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.NotFound()
}

// IsUpstream reports whether err wraps an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// Describe gives a short user-facing label for the failure kind.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case IsNotFound(err):
		return "coin not found"
	case IsUpstream(err):
		return "market data unavailable"
	default:
		return err.Error()
	}
}
