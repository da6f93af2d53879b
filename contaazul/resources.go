package contaazul

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go-contaazul-api/model"
)

// Resource-level operations. Each maps a raw provider payload into a typed
// domain result; a 2xx body that does not match the contract surfaces as a
// MalformedResponseError.

// ListFinancialAccounts returns the company's receiving accounts.
func (c *Client) ListFinancialAccounts(ctx context.Context, companyID int) ([]model.FinancialAccount, error) {
	payload, err := c.Do(ctx, companyID, Request{Method: http.MethodGet, Path: "/v1/conta-financeira"})
	if err != nil {
		return nil, err
	}

	var accounts []model.FinancialAccount
	if err := json.Unmarshal(payload, &accounts); err != nil {
		return nil, &MalformedResponseError{Err: fmt.Errorf("decoding financial accounts: %w", err)}
	}
	return accounts, nil
}

// ListPeople searches people by name and profile type (e.g. "Cliente").
func (c *Client) ListPeople(ctx context.Context, companyID int, name, profileType string) (model.PersonList, error) {
	query := url.Values{}
	query.Set("nome", name)
	query.Set("tipo_perfil", profileType)

	payload, err := c.Do(ctx, companyID, Request{Method: http.MethodGet, Path: "/v1/pessoas", Query: query})
	if err != nil {
		return model.PersonList{}, err
	}

	var people model.PersonList
	if err := json.Unmarshal(payload, &people); err != nil {
		return model.PersonList{}, &MalformedResponseError{Err: fmt.Errorf("decoding people list: %w", err)}
	}
	return people, nil
}

// CreateCustomer registers a new individual customer with the given name.
func (c *Client) CreateCustomer(ctx context.Context, companyID int, name string) (model.Person, error) {
	body := model.NewPersonPayload{
		Name:       name,
		PersonType: "Física",
		Profiles:   []model.PersonProfile{{ProfileType: "Cliente"}},
		Active:     true,
	}

	payload, err := c.Do(ctx, companyID, Request{Method: http.MethodPost, Path: "/v1/pessoas", Body: body})
	if err != nil {
		return model.Person{}, err
	}

	var person model.Person
	if err := json.Unmarshal(payload, &person); err != nil {
		return model.Person{}, &MalformedResponseError{Err: fmt.Errorf("decoding created person: %w", err)}
	}
	return person, nil
}

// NextSaleNumber fetches the next free sale number. The provider answers this
// route with a bare number in a text/plain body.
func (c *Client) NextSaleNumber(ctx context.Context, companyID int) (int, error) {
	payload, err := c.Do(ctx, companyID, Request{Method: http.MethodGet, Path: "/v1/venda/proximo-numero"})
	if err != nil {
		return 0, err
	}

	raw := strings.Trim(strings.TrimSpace(string(payload)), `"`)
	number, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &MalformedResponseError{Err: fmt.Errorf("unexpected next sale number %q", raw)}
	}
	return number, nil
}

// CreateSale submits a sale and returns the provider's acknowledgement.
func (c *Client) CreateSale(ctx context.Context, companyID int, sale model.SalePayload) (model.CreatedSale, error) {
	payload, err := c.Do(ctx, companyID, Request{Method: http.MethodPost, Path: "/v1/venda", Body: sale})
	if err != nil {
		return model.CreatedSale{}, err
	}

	var created model.CreatedSale
	if err := json.Unmarshal(payload, &created); err != nil {
		return model.CreatedSale{}, &MalformedResponseError{Err: fmt.Errorf("decoding created sale: %w", err)}
	}
	return created, nil
}

// ListProducts searches the company's inventory items/services.
func (c *Client) ListProducts(ctx context.Context, companyID int, search string, page, pageSize int) (model.ProductList, error) {
	query := url.Values{}
	query.Set("busca", search)
	query.Set("pagina", strconv.Itoa(page))
	query.Set("tamanho_pagina", strconv.Itoa(pageSize))

	payload, err := c.Do(ctx, companyID, Request{Method: http.MethodGet, Path: "/v1/produtos", Query: query})
	if err != nil {
		return model.ProductList{}, err
	}

	var products model.ProductList
	if err := json.Unmarshal(payload, &products); err != nil {
		return model.ProductList{}, &MalformedResponseError{Err: fmt.Errorf("decoding product list: %w", err)}
	}
	return products, nil
}
