package model

// Domain projections of Conta Azul API payloads. JSON tags follow the
// provider's wire format (api-v2, Portuguese field names).

// FinancialAccount is a receiving account registered at the provider.
type FinancialAccount struct {
	ID     string `json:"id"`
	Name   string `json:"nome"`
	Type   string `json:"tipo"`
	Active bool   `json:"ativo"`
}

// Person is a customer/supplier record at the provider.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

// PersonList is the paged envelope returned by the people endpoint.
type PersonList struct {
	TotalItems int      `json:"totalItems"`
	Items      []Person `json:"items"`
}

// Product is an inventory item/service at the provider.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"nome"`
	Price float64 `json:"valor_venda"`
}

// ProductList is the paged envelope returned by the products endpoint.
type ProductList struct {
	TotalItems int       `json:"totalItems"`
	Items      []Product `json:"items"`
}

// CreatedSale is the provider's acknowledgement of a created sale.
type CreatedSale struct {
	ID     string `json:"id"`
	Number string `json:"numero"`
}

// SalePayload is the request body for creating a sale at the provider.
type SalePayload struct {
	Situation    string            `json:"situacao"`
	SaleDate     string            `json:"data_venda"`
	Number       string            `json:"numero"`
	CustomerID   string            `json:"id_cliente"`
	Notes        string            `json:"observacoes"`
	Items        []SalePayloadItem `json:"itens"`
	PaymentTerms SalePaymentTerms  `json:"condicao_pagamento"`
}

type SalePayloadItem struct {
	Description string  `json:"descricao"`
	Quantity    float64 `json:"quantidade"`
	UnitPrice   float64 `json:"valor"`
}

type SalePaymentTerms struct {
	PaymentType        string        `json:"tipo_pagamento"`
	PaymentOption      string        `json:"opcao_condicao_pagamento"`
	Installments       []Installment `json:"parcelas"`
	FinancialAccountID string        `json:"id_conta_financeira,omitempty"`
}

type Installment struct {
	DueDate string  `json:"data_vencimento"`
	Amount  float64 `json:"valor"`
}

// NewPersonPayload is the request body for creating a customer.
type NewPersonPayload struct {
	Name       string          `json:"nome"`
	PersonType string          `json:"tipo_pessoa"`
	Profiles   []PersonProfile `json:"perfis"`
	Active     bool            `json:"ativo"`
}

type PersonProfile struct {
	ProfileType string `json:"tipo_perfil"`
}
