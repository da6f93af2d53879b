package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go-contaazul-api/common"
	"go-contaazul-api/logger"
	"go-contaazul-api/model"
	"go-contaazul-api/service"

	"github.com/sirupsen/logrus"
)

type CompanyHandler struct {
	service *service.CompanyService
}

func NewCompanyHandler(service *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{service: service}
}

// companyIDFromPath parses the {id} path value shared by all company routes.
func companyIDFromPath(r *http.Request) (int, *common.AppError) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid company id", err)
	}
	return id, nil
}

// Create registers a new company, or returns the existing one with the same name.
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateCompanyRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	logger.Log.WithField("name", req.Name).Info("Create company request received")

	company, created, err := h.service.CreateCompany(req.Name)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not create company", err)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, company)
	return nil
}

// List returns all companies with their connection summary.
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) *common.AppError {
	companies, err := h.service.ListCompanies()
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not list companies", err)
	}

	type companySummary struct {
		*model.Company
		HasToken bool `json:"has_token"`
	}
	summaries := make([]companySummary, 0, len(companies))
	for _, c := range companies {
		summaries = append(summaries, companySummary{Company: c, HasToken: c.HasToken()})
	}

	writeJSON(w, http.StatusOK, summaries)
	return nil
}

// Get returns a single company.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := companyIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	company, err := h.service.GetCompany(id)
	if err != nil {
		if err == service.ErrCompanyNotFound {
			return common.NewAppError(http.StatusNotFound, "Company not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve company", err)
	}

	writeJSON(w, http.StatusOK, company)
	return nil
}

// SetTokens is the manual token upsert fallback.
func (h *CompanyHandler) SetTokens(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := companyIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	var req model.SetTokensRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	logger.Log.WithField("company_id", id).Info("Manual token upsert request received")

	company, err := h.service.SetTokens(r.Context(), id, req)
	if err != nil {
		if err == service.ErrCompanyNotFound {
			return common.NewAppError(http.StatusNotFound, "Company not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not save tokens", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":               true,
		"company_id":       id,
		"token_expires_at": company.TokenExpiresAt,
	})
	return nil
}

// ListFinancialAccounts lists the company's provider financial accounts.
func (h *CompanyHandler) ListFinancialAccounts(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := companyIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	if _, err := h.service.GetCompany(id); err != nil {
		if err == service.ErrCompanyNotFound {
			return common.NewAppError(http.StatusNotFound, "Company not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve company", err)
	}

	accounts, err := h.service.ListFinancialAccounts(r.Context(), id)
	if err != nil {
		return common.FromProviderError(err)
	}

	writeJSON(w, http.StatusOK, accounts)
	return nil
}

// SetFinancialAccount selects the receiving account used for sales.
func (h *CompanyHandler) SetFinancialAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := companyIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	var req model.SetFinancialAccountRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.service.SetFinancialAccount(r.Context(), id, req.FinancialAccountID); err != nil {
		if err == service.ErrCompanyNotFound {
			return common.NewAppError(http.StatusNotFound, "Company not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not set financial account", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":                   true,
		"company_id":           id,
		"financial_account_id": req.FinancialAccountID,
	})
	return nil
}

// ListProducts proxies an inventory search to the provider.
func (h *CompanyHandler) ListProducts(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := companyIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	search := r.URL.Query().Get("busca")
	if search == "" {
		return common.NewAppError(http.StatusBadRequest, "Query parameter 'busca' is required", nil)
	}
	page := queryIntDefault(r, "pagina", 1)
	pageSize := queryIntDefault(r, "tamanho_pagina", 50)

	products, err := h.service.ListProducts(r.Context(), id, search, page, pageSize)
	if err != nil {
		return common.FromProviderError(err)
	}

	writeJSON(w, http.StatusOK, products)
	return nil
}

// SetDefaultItem selects the fallback item/service used on sale lines.
func (h *CompanyHandler) SetDefaultItem(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := companyIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	var req model.SetDefaultItemRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	if err := h.service.SetDefaultItem(id, req.DefaultItemID); err != nil {
		if err == service.ErrCompanyNotFound {
			return common.NewAppError(http.StatusNotFound, "Company not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not set default item", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"company_id":      id,
		"default_item_id": req.DefaultItemID,
	})
	return nil
}

// Status returns the diagnostic view of a company's provider connection.
func (h *CompanyHandler) Status(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := companyIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	status, err := h.service.Status(id)
	if err != nil {
		if err == service.ErrCompanyNotFound {
			return common.NewAppError(http.StatusNotFound, "Company not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not build company status", err)
	}

	writeJSON(w, http.StatusOK, status)
	return nil
}

// TestConnection exercises a live provider call for the company.
func (h *CompanyHandler) TestConnection(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := companyIDFromPath(r)
	if appErr != nil {
		return appErr
	}

	log := logger.Log.WithFields(logrus.Fields{"company_id": id})
	log.Info("Provider connection test requested")

	number, err := h.service.TestConnection(r.Context(), id)
	if err != nil {
		return common.FromProviderError(err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":               true,
		"company_id":       id,
		"next_sale_number": number,
	})
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func queryIntDefault(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
