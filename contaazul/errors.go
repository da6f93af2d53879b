package contaazul

import (
	"errors"
	"fmt"
)

var (
	// ErrCompanyNotFound is returned by the token store when no company or no
	// stored credentials exist for the requested id.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrReauthorizationRequired means the stored refresh token was rejected by
	// the provider and cannot be refreshed automatically. The company must
	// re-run the authorization flow; this is terminal and never retried.
	ErrReauthorizationRequired = errors.New("reauthorization required: provider rejected the refresh token")
)

// ProviderError is a non-auth failure reported by the provider API.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("contaazul API error %d: %s", e.Status, e.Body)
}

// TransportError is a network-level failure (timeout, DNS, connection reset).
// No provider response was classified; stored tokens are untouched.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("contaazul transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RequestEncodingError means the request could not be built on our side;
// nothing was sent to the provider.
type RequestEncodingError struct {
	Err error
}

func (e *RequestEncodingError) Error() string {
	return fmt.Sprintf("contaazul request could not be built: %v", e.Err)
}

func (e *RequestEncodingError) Unwrap() error { return e.Err }

// MalformedResponseError means the provider answered 2xx but the body did not
// match the documented contract.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("contaazul returned a malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
