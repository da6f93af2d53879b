package model

import "time"

// Company is the tenant on whose behalf provider calls are made.
// It owns exactly one credential pair, issued by the provider's OAuth flow.
type Company struct {
	ID                 int        `json:"id"`
	Name               string     `json:"name"`
	ReviewMode         bool       `json:"review_mode"`
	AccessToken        *string    `json:"-"`
	RefreshToken       *string    `json:"-"`
	TokenExpiresAt     *time.Time `json:"token_expires_at,omitempty"`
	FinancialAccountID *string    `json:"financial_account_id,omitempty"`
	DefaultItemID      *string    `json:"default_item_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// HasToken reports whether the company finished the provider authorization flow.
func (c *Company) HasToken() bool {
	return c.AccessToken != nil && *c.AccessToken != ""
}

// CompanyStatus is the diagnostic projection returned by the status endpoint.
type CompanyStatus struct {
	CompanyID           int        `json:"company_id"`
	Name                string     `json:"name"`
	HasAccessToken      bool       `json:"has_access_token"`
	HasRefreshToken     bool       `json:"has_refresh_token"`
	TokenExpiresAt      *time.Time `json:"token_expires_at,omitempty"`
	TokenExpired        *bool      `json:"token_expired,omitempty"`
	NeedsReauth         bool       `json:"needs_reauth"`
	HasFinancialAccount bool       `json:"has_financial_account"`
	HasDefaultItem      bool       `json:"has_default_item"`
	ReviewMode          bool       `json:"review_mode"`
	Recommendations     []string   `json:"recommendations"`
}
