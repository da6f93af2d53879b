package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go-contaazul-api/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func oauthConfig(tokenURL string) OAuthConfig {
	return OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      "https://auth.contaazul.com/login",
		TokenURL:     tokenURL,
		RedirectURI:  "https://example.com/api/contaazul/callback",
		Scope:        "sales",
	}
}

func TestStartURL_BuildsConsentURLAndStoresNonce(t *testing.T) {
	repo := new(MockCompanyRepository)
	repo.On("GetByID", 3).Return(&model.Company{ID: 3, Name: "Padaria Central"}, nil)
	cache := newFakeCache()

	svc := NewOAuthService(repo, cache, oauthConfig("https://auth.contaazul.com/oauth2/token"))
	consentURL, err := svc.StartURL(context.Background(), 3)

	assert.NoError(t, err)

	parsed, err := url.Parse(consentURL)
	assert.NoError(t, err)
	assert.Equal(t, "auth.contaazul.com", parsed.Host)
	assert.Equal(t, "/login", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "sales", query.Get("scope"))
	assert.Equal(t, "https://example.com/api/contaazul/callback", query.Get("redirect_uri"))

	state := query.Get("state")
	assert.True(t, strings.HasPrefix(state, "3:"))
	assert.Equal(t, strings.TrimPrefix(state, "3:"), cache.data["oauth:state:3"])
}

func TestStartURL_UnknownCompany(t *testing.T) {
	repo := new(MockCompanyRepository)
	repo.On("GetByID", 99).Return(nil, assert.AnError)

	svc := NewOAuthService(repo, newFakeCache(), oauthConfig("https://auth.contaazul.com/oauth2/token"))
	_, err := svc.StartURL(context.Background(), 99)

	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestHandleCallback_ExchangesAndPersists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "auth-code-1", r.PostForm.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "A-1",
			"refresh_token": "R-1",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	defer server.Close()

	repo := new(MockCompanyRepository)
	repo.On("UpdateTokens", mock.Anything, 3, mock.MatchedBy(func(cred model.Credential) bool {
		return cred.AccessToken == "A-1" && cred.RefreshToken == "R-1" && !cred.ExpiresAt.IsZero()
	})).Return(nil).Once()

	cache := newFakeCache()
	cache.data["oauth:state:3"] = "nonce-1"

	svc := NewOAuthService(repo, cache, oauthConfig(server.URL))
	companyID, err := svc.HandleCallback(context.Background(), "auth-code-1", "3:nonce-1")

	assert.NoError(t, err)
	assert.Equal(t, 3, companyID)
	assert.NotContains(t, cache.data, "oauth:state:3", "the state nonce is single-use")
	repo.AssertExpectations(t)
}

func TestHandleCallback_RejectsBadState(t *testing.T) {
	tests := []struct {
		name  string
		state string
		setup func(cache *fakeCache)
	}{
		{"malformed state", "garbage", func(*fakeCache) {}},
		{"non-numeric company id", "abc:nonce-1", func(*fakeCache) {}},
		{"unknown nonce", "3:nonce-1", func(*fakeCache) {}},
		{"nonce mismatch", "3:nonce-1", func(cache *fakeCache) {
			cache.data["oauth:state:3"] = "other-nonce"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newFakeCache()
			tt.setup(cache)
			repo := new(MockCompanyRepository)

			svc := NewOAuthService(repo, cache, oauthConfig("http://unused.invalid/token"))
			_, err := svc.HandleCallback(context.Background(), "auth-code-1", tt.state)

			assert.ErrorIs(t, err, ErrInvalidState)
			repo.AssertNotCalled(t, "UpdateTokens", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandleCallback_RequiresBothTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"A-1","token_type":"Bearer","expires_in":3600}`)
	}))
	defer server.Close()

	cache := newFakeCache()
	cache.data["oauth:state:3"] = "nonce-1"
	repo := new(MockCompanyRepository)

	svc := NewOAuthService(repo, cache, oauthConfig(server.URL))
	_, err := svc.HandleCallback(context.Background(), "auth-code-1", "3:nonce-1")

	assert.ErrorIs(t, err, ErrExchangeNoTokens)
	repo.AssertNotCalled(t, "UpdateTokens", mock.Anything, mock.Anything, mock.Anything)
}
