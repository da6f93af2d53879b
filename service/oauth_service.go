package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-contaazul-api/logger"
	"go-contaazul-api/model"
	"go-contaazul-api/repository"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var (
	ErrInvalidState     = errors.New("invalid or expired oauth state")
	ErrExchangeNoTokens = errors.New("token exchange response did not include both tokens")
)

const stateNonceTTL = 10 * time.Minute

// OAuthService drives the provider's authorization-code flow: it builds the
// consent URL for a company and turns the callback code into a stored
// credential pair. Refreshing credentials afterwards is the client core's job.
type OAuthService struct {
	repo  repository.ICompanyRepository
	conf  *oauth2.Config
	cache ICacheClient
}

// OAuthConfig carries the provider application settings, injected at
// construction and immutable for the process lifetime.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURI  string
	Scope        string
}

func NewOAuthService(repo repository.ICompanyRepository, cache ICacheClient, cfg OAuthConfig) *OAuthService {
	return &OAuthService{
		repo:  repo,
		cache: cache,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
	}
}

// StartURL returns the provider consent URL for the company. The state
// parameter carries the company id plus a single-use nonce stored in the
// cache, so the callback can be tied back to the company it belongs to.
func (s *OAuthService) StartURL(ctx context.Context, companyID int) (string, error) {
	if _, err := s.repo.GetByID(companyID); err != nil {
		return "", ErrCompanyNotFound
	}

	nonce := uuid.NewString()
	if err := s.cache.Set(ctx, stateKey(companyID), nonce, stateNonceTTL).Err(); err != nil {
		return "", fmt.Errorf("storing oauth state: %w", err)
	}

	state := fmt.Sprintf("%d:%s", companyID, nonce)
	return s.conf.AuthCodeURL(state), nil
}

// HandleCallback validates the state, exchanges the authorization code for a
// token pair and persists it on the company. Returns the company id for the
// confirmation page.
func (s *OAuthService) HandleCallback(ctx context.Context, code, state string) (int, error) {
	companyID, nonce, err := parseState(state)
	if err != nil {
		return 0, err
	}

	stored, err := s.cache.GetDel(ctx, stateKey(companyID)).Result()
	if err != nil || stored != nonce {
		return 0, ErrInvalidState
	}

	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		logger.Log.WithError(err).WithField("company_id", companyID).Error("Token exchange failed")
		return 0, fmt.Errorf("token exchange failed: %w", err)
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		return 0, ErrExchangeNoTokens
	}

	cred := model.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if err := s.repo.UpdateTokens(ctx, companyID, cred); err != nil {
		return 0, err
	}

	logger.Log.WithField("company_id", companyID).Info("Provider authorization completed")
	return companyID, nil
}

func stateKey(companyID int) string {
	return fmt.Sprintf("oauth:state:%d", companyID)
}

func parseState(state string) (int, string, error) {
	parts := strings.SplitN(state, ":", 2)
	if len(parts) != 2 {
		return 0, "", ErrInvalidState
	}
	companyID, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", ErrInvalidState
	}
	return companyID, parts[1], nil
}
