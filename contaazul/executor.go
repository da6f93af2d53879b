package contaazul

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go-contaazul-api/model"
)

const defaultRequestTimeout = 30 * time.Second

// Executor issues a single authenticated HTTP call against the provider API
// and classifies the result. It is a stateless function of (request,
// credential) and never triggers a token refresh; that orchestration belongs
// to the Client.
type Executor struct {
	baseURL string
	client  *http.Client
}

// NewExecutor creates an Executor for the given provider base URL. A nil
// httpClient falls back to a client with the default timeout.
func NewExecutor(baseURL string, httpClient *http.Client) *Executor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Executor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// Execute performs one provider call with the credential's access token.
// Classification:
//   - unencodable body / bad method  -> OutcomeInvalidRequest (nothing sent)
//   - network/timeout failure        -> OutcomeTransportError
//   - 401                            -> OutcomeAuthExpired
//   - other non-2xx                  -> OutcomeProviderError
//   - 2xx with an unparsable body    -> OutcomeMalformed
//   - 2xx                            -> OutcomeSuccess with the raw payload
func (e *Executor) Execute(ctx context.Context, cred model.Credential, req Request) Outcome {
	var bodyReader io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return Outcome{Kind: OutcomeInvalidRequest, Err: fmt.Errorf("encoding request body: %w", err)}
		}
		bodyReader = bytes.NewReader(encoded)
	}

	u := e.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, bodyReader)
	if err != nil {
		return Outcome{Kind: OutcomeInvalidRequest, Err: fmt.Errorf("building request: %w", err)}
	}
	httpReq.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return Outcome{Kind: OutcomeTransportError, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{Kind: OutcomeTransportError, Err: fmt.Errorf("reading response body: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Outcome{Kind: OutcomeAuthExpired, Status: resp.StatusCode, Body: string(raw)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Outcome{Kind: OutcomeProviderError, Status: resp.StatusCode, Body: string(raw)}
	}

	// Some routes answer text/plain (e.g. the next sale number), so only JSON
	// responses are syntax-checked here. Decoding into domain types happens in
	// the resource methods.
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.Contains(contentType, "application/json") && len(bytes.TrimSpace(raw)) > 0 && !json.Valid(raw) {
		return Outcome{
			Kind:   OutcomeMalformed,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("status %d with invalid JSON body", resp.StatusCode),
		}
	}

	return Outcome{Kind: OutcomeSuccess, Status: resp.StatusCode, Payload: raw}
}
