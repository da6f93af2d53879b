package contaazul

import (
	"context"
	"time"

	"go-contaazul-api/metrics"
	"go-contaazul-api/model"

	"github.com/google/uuid"
)

// Tokens are refreshed proactively this long before their reported expiry.
const refreshSkew = 2 * time.Minute

// callState tracks where a logical call is inside the
// load -> execute -> maybe refresh -> retry sequence. Modelling it explicitly
// makes the at-most-one-refresh rule checkable instead of relying on
// call-stack discipline.
type callState int

const (
	stateInitial callState = iota
	stateExecuted
	stateRefreshAttempted
	stateRetried
)

type refresher interface {
	Refresh(ctx context.Context, companyID int, staleRefreshToken string) (model.Credential, error)
}

type requestExecutor interface {
	Execute(ctx context.Context, cred model.Credential, req Request) Outcome
}

// Client composes the token store, refresh engine and request executor into
// resource-level provider operations. Calls for different companies may run
// concurrently; within one call execution is strictly sequential.
type Client struct {
	store    TokenStore
	refresh  refresher
	executor requestExecutor
	tracer   Tracer
	now      func() time.Time
}

func NewClient(store TokenStore, engine *RefreshEngine, executor *Executor, tracer Tracer) *Client {
	if tracer == nil {
		tracer = NopTracer{}
	}
	return &Client{
		store:    store,
		refresh:  engine,
		executor: executor,
		tracer:   tracer,
		now:      time.Now,
	}
}

// Do runs one logical provider call for a company and returns the raw 2xx
// payload. The control flow follows a fixed state machine:
//
//	stateInitial -> stateExecuted -> stateRefreshAttempted -> stateRetried
//
// At most one refresh happens per call. A 401 on the retried request (after a
// successful refresh) is reported as a ProviderError rather than looping,
// which guards against refresh/validation mismatches at the provider. All
// failures come back as the typed errors of this package, never as opaque
// ones.
func (c *Client) Do(ctx context.Context, companyID int, req Request) ([]byte, error) {
	started := c.now()
	corr := uuid.NewString()
	defer func() {
		metrics.CallDuration.WithLabelValues(req.Method).Observe(time.Since(started).Seconds())
	}()

	c.trace(Event{corr, companyID, StageCallStarted, map[string]any{
		"method": req.Method,
		"path":   req.Path,
	}})

	cred, err := c.store.Load(ctx, companyID)
	if err != nil {
		c.finish(corr, companyID, err)
		return nil, err
	}
	c.trace(Event{corr, companyID, StageCredentialLoaded, map[string]any{
		"expires_at": cred.ExpiresAt,
	}})

	state := stateInitial

	// Proactive refresh when the stored expiry is close. It consumes the one
	// refresh this call is allowed, so the invariant holds on the 401 path too.
	if cred.ExpiresWithin(c.now(), refreshSkew) {
		cred, err = c.refreshOnce(ctx, corr, companyID, cred, "expiry")
		if err != nil {
			c.finish(corr, companyID, err)
			return nil, err
		}
		state = stateRefreshAttempted
	}

	for {
		c.trace(Event{corr, companyID, StageRequestIssued, map[string]any{
			"method":  req.Method,
			"path":    req.Path,
			"retried": state == stateRefreshAttempted,
		}})

		outcome := c.executor.Execute(ctx, cred, req)
		metrics.ProviderRequests.WithLabelValues(outcome.Kind.String()).Inc()
		c.trace(Event{corr, companyID, StageOutcome, map[string]any{
			"kind":   outcome.Kind.String(),
			"status": outcome.Status,
		}})

		switch state {
		case stateInitial:
			state = stateExecuted
		case stateRefreshAttempted:
			state = stateRetried
		}

		switch outcome.Kind {
		case OutcomeSuccess:
			c.finish(corr, companyID, nil)
			return outcome.Payload, nil

		case OutcomeAuthExpired:
			if state == stateRetried {
				// The token was just refreshed; a second 401 is a provider-side
				// inconsistency, not an expired credential.
				err := &ProviderError{Status: outcome.Status, Body: outcome.Body}
				c.finish(corr, companyID, err)
				return nil, err
			}
			cred, err = c.refreshOnce(ctx, corr, companyID, cred, "auth_expired")
			if err != nil {
				c.finish(corr, companyID, err)
				return nil, err
			}
			state = stateRefreshAttempted

		case OutcomeProviderError:
			err := &ProviderError{Status: outcome.Status, Body: outcome.Body}
			c.finish(corr, companyID, err)
			return nil, err

		case OutcomeTransportError:
			err := &TransportError{Err: outcome.Err}
			c.finish(corr, companyID, err)
			return nil, err

		case OutcomeMalformed:
			err := &MalformedResponseError{Err: outcome.Err}
			c.finish(corr, companyID, err)
			return nil, err

		case OutcomeInvalidRequest:
			err := &RequestEncodingError{Err: outcome.Err}
			c.finish(corr, companyID, err)
			return nil, err
		}
	}
}

// refreshOnce runs the single allowed refresh and returns the new snapshot.
// The old snapshot is discarded; it is never mutated.
func (c *Client) refreshOnce(ctx context.Context, corr string, companyID int, stale model.Credential, reason string) (model.Credential, error) {
	c.trace(Event{corr, companyID, StageRefreshStarted, map[string]any{"reason": reason}})

	fresh, err := c.refresh.Refresh(ctx, companyID, stale.RefreshToken)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		c.trace(Event{corr, companyID, StageRefreshResult, map[string]any{"ok": false, "error": err.Error()}})
		return model.Credential{}, err
	}

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	c.trace(Event{corr, companyID, StageRefreshResult, map[string]any{"ok": true, "expires_at": fresh.ExpiresAt}})
	return fresh, nil
}

func (c *Client) finish(corr string, companyID int, err error) {
	fields := map[string]any{"ok": err == nil}
	if err != nil {
		fields["error"] = err.Error()
	}
	c.trace(Event{corr, companyID, StageCallFinished, fields})
}

// trace shields the call from the tracer: an observer failure must never
// change a call's outcome.
func (c *Client) trace(ev Event) {
	defer func() {
		_ = recover()
	}()
	c.tracer.Emit(ev)
}
