package model

// CreateCompanyRequest defines the payload for registering a new company.
// It includes validation tags to ensure data integrity at the entry point.
type CreateCompanyRequest struct {
	Name string `json:"name" validate:"required,min=2,max=200"`
}

// SetTokensRequest is the manual fallback for saving a credential pair when
// the hosted authorization flow cannot be used.
type SetTokensRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
	ExpiresIn    int    `json:"expires_in" validate:"omitempty,gt=0"`
}

// CreateSaleRequest defines the payload for importing a sale. Dates use the
// YYYY-MM-DD format the provider works with.
type CreateSaleRequest struct {
	CompanyID        int                     `json:"company_id" validate:"required,gt=0"`
	GroupKey         string                  `json:"group_key" validate:"required"`
	HashUnique       string                  `json:"hash_unique" validate:"required"`
	SaleDate         string                  `json:"sale_date" validate:"required,datetime=2006-01-02"`
	CustomerName     string                  `json:"customer_name" validate:"required"`
	PaymentMethod    string                  `json:"payment_method" validate:"required"`
	PaymentTerms     string                  `json:"payment_terms" validate:"required"`
	ReceivingAccount string                  `json:"receiving_account"`
	DueDate          string                  `json:"due_date" validate:"required,datetime=2006-01-02"`
	TotalAmount      float64                 `json:"total_amount" validate:"required,gt=0"`
	Items            []CreateSaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateSaleItemRequest is one line of an imported sale.
type CreateSaleItemRequest struct {
	Category       *string `json:"category,omitempty"`
	ProductService string  `json:"product_service" validate:"required"`
	Details        *string `json:"details,omitempty"`
	Qty            float64 `json:"qty" validate:"required,gt=0"`
	UnitPrice      float64 `json:"unit_price" validate:"gte=0"`
	LineTotal      float64 `json:"line_total" validate:"gte=0"`
}

// SetFinancialAccountRequest selects the provider financial account used for
// the company's sales.
type SetFinancialAccountRequest struct {
	FinancialAccountID string `json:"financial_account_id" validate:"required"`
}

// SetDefaultItemRequest selects the fallback item/service used on sale lines.
type SetDefaultItemRequest struct {
	DefaultItemID string `json:"default_item_id" validate:"required"`
}
