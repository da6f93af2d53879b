package contaazul

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go-contaazul-api/model"

	"golang.org/x/oauth2"
)

// TokenStore is the persistence contract the client core consumes. It is
// implemented by the company repository; the core never touches storage
// directly. Save is last-writer-wins with respect to concurrent calls for the
// same company.
type TokenStore interface {
	Load(ctx context.Context, companyID int) (model.Credential, error)
	Save(ctx context.Context, companyID int, cred model.Credential) error
}

// RefreshEngine exchanges a stale refresh token for a new credential pair at
// the provider's token endpoint and persists the result.
type RefreshEngine struct {
	conf  *oauth2.Config
	store TokenStore
}

func NewRefreshEngine(clientID, clientSecret, tokenURL string, store TokenStore) *RefreshEngine {
	return &RefreshEngine{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		store: store,
	}
}

// Refresh performs exactly one token-endpoint call and, on success, exactly
// one store write. The provider may omit a new refresh token, in which case
// the stale one is carried over into the new snapshot.
//
// A provider-side rejection of the refresh token (revoked or expired grant)
// yields ErrReauthorizationRequired: stored credentials are left untouched
// and the caller must re-run the authorization flow out-of-band.
func (e *RefreshEngine) Refresh(ctx context.Context, companyID int, staleRefreshToken string) (model.Credential, error) {
	if staleRefreshToken == "" {
		return model.Credential{}, fmt.Errorf("%w: no refresh token stored", ErrReauthorizationRequired)
	}

	src := e.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: staleRefreshToken})
	tok, err := src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			status := 0
			if retrieveErr.Response != nil {
				status = retrieveErr.Response.StatusCode
			}
			if status >= http.StatusInternalServerError {
				return model.Credential{}, &ProviderError{Status: status, Body: string(retrieveErr.Body)}
			}
			if retrieveErr.ErrorCode != "" {
				return model.Credential{}, fmt.Errorf("%w: %s", ErrReauthorizationRequired, retrieveErr.ErrorCode)
			}
			return model.Credential{}, fmt.Errorf("%w: token endpoint returned %d", ErrReauthorizationRequired, status)
		}
		return model.Credential{}, &TransportError{Err: err}
	}

	cred := model.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if cred.RefreshToken == "" {
		cred.RefreshToken = staleRefreshToken
	}

	if err := e.store.Save(ctx, companyID, cred); err != nil {
		return model.Credential{}, fmt.Errorf("persisting refreshed credential: %w", err)
	}
	return cred, nil
}
