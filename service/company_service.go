package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-contaazul-api/model"
	"go-contaazul-api/repository"
)

var ErrCompanyNotFound = errors.New("company not found")

const financialAccountsCacheTTL = 10 * time.Minute

// CompanyService owns company management and the provider configuration
// operations that hang off a company (financial accounts, default item,
// connection diagnostics).
type CompanyService struct {
	repo   repository.ICompanyRepository
	client ProviderClient
	cache  ICacheClient
}

func NewCompanyService(repo repository.ICompanyRepository, client ProviderClient, cache ICacheClient) *CompanyService {
	return &CompanyService{
		repo:   repo,
		client: client,
		cache:  cache,
	}
}

// CreateCompany registers a company, returning the existing record when the
// name is already taken (the operation is idempotent by name).
func (s *CompanyService) CreateCompany(name string) (*model.Company, bool, error) {
	existing, err := s.repo.GetByName(name)
	if err == nil {
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, err
	}

	company := &model.Company{Name: name}
	if err := s.repo.Create(company); err != nil {
		return nil, false, err
	}
	return company, true, nil
}

// ListCompanies returns all registered companies.
func (s *CompanyService) ListCompanies() ([]*model.Company, error) {
	return s.repo.List()
}

// GetCompany returns a company by id.
func (s *CompanyService) GetCompany(id int) (*model.Company, error) {
	company, err := s.repo.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

// SetTokens is the manual fallback for saving a credential pair when the
// hosted authorization flow cannot be used.
func (s *CompanyService) SetTokens(ctx context.Context, companyID int, req model.SetTokensRequest) (*model.Company, error) {
	if _, err := s.GetCompany(companyID); err != nil {
		return nil, err
	}

	cred := model.Credential{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
	}
	if req.ExpiresIn > 0 {
		cred.ExpiresAt = time.Now().UTC().Add(time.Duration(req.ExpiresIn) * time.Second)
	}

	if err := s.repo.UpdateTokens(ctx, companyID, cred); err != nil {
		return nil, err
	}
	return s.GetCompany(companyID)
}

// ListFinancialAccounts lists the company's provider financial accounts,
// utilizing a cache-aside strategy: account listings rarely change, so a hit
// saves a full provider round trip.
func (s *CompanyService) ListFinancialAccounts(ctx context.Context, companyID int) ([]model.FinancialAccount, error) {
	cacheKey := fmt.Sprintf("ca:financial-accounts:%d", companyID)

	cached, err := s.cache.Get(ctx, cacheKey).Result()
	if err == nil {
		var accounts []model.FinancialAccount
		if err := json.Unmarshal([]byte(cached), &accounts); err == nil {
			return accounts, nil
		}
	}

	accounts, err := s.client.ListFinancialAccounts(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(accounts); err == nil {
		s.cache.Set(ctx, cacheKey, data, financialAccountsCacheTTL)
	}

	return accounts, nil
}

// SetFinancialAccount selects the receiving account used for the company's
// sales and invalidates the cached listing.
func (s *CompanyService) SetFinancialAccount(ctx context.Context, companyID int, financialAccountID string) error {
	if err := s.repo.SetFinancialAccount(companyID, financialAccountID); err != nil {
		if err == sql.ErrNoRows {
			return ErrCompanyNotFound
		}
		return err
	}
	s.cache.Del(ctx, fmt.Sprintf("ca:financial-accounts:%d", companyID))
	return nil
}

// SetDefaultItem selects the fallback item/service used on sale lines.
func (s *CompanyService) SetDefaultItem(companyID int, defaultItemID string) error {
	if err := s.repo.SetDefaultItem(companyID, defaultItemID); err != nil {
		if err == sql.ErrNoRows {
			return ErrCompanyNotFound
		}
		return err
	}
	return nil
}

// ListProducts searches the company's provider inventory.
func (s *CompanyService) ListProducts(ctx context.Context, companyID int, search string, page, pageSize int) (model.ProductList, error) {
	return s.client.ListProducts(ctx, companyID, search, page, pageSize)
}

// Status builds the diagnostic projection of a company's provider connection.
func (s *CompanyService) Status(companyID int) (*model.CompanyStatus, error) {
	company, err := s.GetCompany(companyID)
	if err != nil {
		return nil, err
	}

	status := &model.CompanyStatus{
		CompanyID:           company.ID,
		Name:                company.Name,
		HasAccessToken:      company.AccessToken != nil && *company.AccessToken != "",
		HasRefreshToken:     company.RefreshToken != nil && *company.RefreshToken != "",
		TokenExpiresAt:      company.TokenExpiresAt,
		HasFinancialAccount: company.FinancialAccountID != nil && *company.FinancialAccountID != "",
		HasDefaultItem:      company.DefaultItemID != nil && *company.DefaultItemID != "",
		ReviewMode:          company.ReviewMode,
	}
	status.NeedsReauth = !status.HasAccessToken || !status.HasRefreshToken

	tokenValid := false
	if company.TokenExpiresAt != nil {
		expired := company.TokenExpiresAt.Before(time.Now().UTC())
		status.TokenExpired = &expired
		tokenValid = !expired
	}

	switch {
	case status.NeedsReauth:
		status.Recommendations = append(status.Recommendations,
			fmt.Sprintf("OAuth tokens missing. Reauthorize at /api/contaazul/start?company_id=%d", company.ID))
	case !tokenValid:
		status.Recommendations = append(status.Recommendations,
			"Token expired. The system will attempt an automatic refresh on the next call.")
	default:
		status.Recommendations = append(status.Recommendations, "OAuth OK - tokens valid")
	}
	if !status.HasFinancialAccount {
		status.Recommendations = append(status.Recommendations,
			"Financial account not configured. Configure it before submitting sales.")
	}

	return status, nil
}

// TestConnection exercises the full client core (load, request, refresh if
// needed) against a cheap provider route.
func (s *CompanyService) TestConnection(ctx context.Context, companyID int) (int, error) {
	return s.client.NextSaleNumber(ctx, companyID)
}
