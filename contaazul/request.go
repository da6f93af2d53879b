package contaazul

import "net/url"

// Request describes a single provider API call. It is built per operation and
// never persisted.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any // JSON-encoded when non-nil
}

// OutcomeKind classifies the raw transport result of one executed request.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeAuthExpired
	OutcomeProviderError
	OutcomeTransportError
	OutcomeMalformed
	// OutcomeInvalidRequest is a caller-side fault (unencodable body, bad
	// method); nothing was sent to the provider.
	OutcomeInvalidRequest
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeAuthExpired:
		return "auth_expired"
	case OutcomeProviderError:
		return "provider_error"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeMalformed:
		return "malformed_response"
	case OutcomeInvalidRequest:
		return "invalid_request"
	}
	return "unknown"
}

// Outcome is the classified result of a single executed request.
type Outcome struct {
	Kind    OutcomeKind
	Payload []byte // raw 2xx body, only for OutcomeSuccess
	Status  int
	Body    string // raw error body, for OutcomeProviderError / OutcomeAuthExpired
	Err     error  // cause, for OutcomeTransportError / OutcomeMalformed
}
