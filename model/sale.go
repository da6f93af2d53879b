package model

import "time"

// Sale statuses as stored in the database.
const (
	SaleStatusPending = "PENDENTE"
	SaleStatusSent    = "ENVIADA"
	SaleStatusFailed  = "ERRO"
)

// Sale is an imported sale waiting to be pushed to the provider.
type Sale struct {
	ID               int       `json:"id"`
	CompanyID        int       `json:"company_id"`
	GroupKey         string    `json:"group_key"`
	HashUnique       string    `json:"hash_unique"`
	SaleDate         time.Time `json:"sale_date"`
	CustomerName     string    `json:"customer_name"`
	PaymentMethod    string    `json:"payment_method"`
	PaymentTerms     string    `json:"payment_terms"`
	ReceivingAccount string    `json:"receiving_account"`
	DueDate          time.Time `json:"due_date"`
	TotalAmount      float64   `json:"total_amount"`
	Status           string    `json:"status"`
	ErrorSummary     *string   `json:"error_summary,omitempty"`
	ProviderSaleID   *string   `json:"provider_sale_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// SaleItem is a single line of a sale.
type SaleItem struct {
	ID             int     `json:"id"`
	SaleID         int     `json:"sale_id"`
	Category       *string `json:"category,omitempty"`
	ProductService string  `json:"product_service"`
	Details        *string `json:"details,omitempty"`
	Qty            float64 `json:"qty"`
	UnitPrice      float64 `json:"unit_price"`
	LineTotal      float64 `json:"line_total"`
}
