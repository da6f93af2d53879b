package handler

import (
	"net/http"
	"strconv"

	"go-contaazul-api/common"
	"go-contaazul-api/logger"
	"go-contaazul-api/model"
	"go-contaazul-api/repository"
	"go-contaazul-api/service"
)

type SalesHandler struct {
	service *service.SalesService
}

func NewSalesHandler(service *service.SalesService) *SalesHandler {
	return &SalesHandler{service: service}
}

// Create imports a new sale. Reposting the same unique hash is rejected.
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateSaleRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	logger.Log.WithField("company_id", req.CompanyID).Info("Create sale request received")

	sale, items, err := h.service.CreateSale(req)
	if err != nil {
		switch err {
		case service.ErrCompanyNotFound:
			return common.NewAppError(http.StatusNotFound, "Company not found", nil)
		case service.ErrDuplicateSale:
			return common.NewAppError(http.StatusConflict, "Sale was already imported", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not create sale", err)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"sale":  sale,
		"items": items,
	})
	return nil
}

// List returns sales, optionally filtered by company_id and status.
func (h *SalesHandler) List(w http.ResponseWriter, r *http.Request) *common.AppError {
	var filter repository.SaleFilter

	if raw := r.URL.Query().Get("company_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return common.NewAppError(http.StatusBadRequest, "Invalid company_id filter", err)
		}
		filter.CompanyID = &id
	}
	if raw := r.URL.Query().Get("group_key"); raw != "" {
		filter.GroupKey = &raw
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		filter.Status = &raw
	}

	sales, err := h.service.ListSales(filter)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not list sales", err)
	}
	if sales == nil {
		sales = make([]*model.Sale, 0)
	}

	writeJSON(w, http.StatusOK, sales)
	return nil
}

// Get returns one sale with its items.
func (h *SalesHandler) Get(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return common.NewAppError(http.StatusBadRequest, "Invalid sale id", err)
	}

	sale, items, svcErr := h.service.GetSale(id)
	if svcErr != nil {
		if svcErr == service.ErrSaleNotFound {
			return common.NewAppError(http.StatusNotFound, "Sale not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve sale", svcErr)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sale":  sale,
		"items": items,
	})
	return nil
}

// SendToProvider submits one sale to the provider.
func (h *SalesHandler) SendToProvider(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return common.NewAppError(http.StatusBadRequest, "Invalid sale id", err)
	}

	logger.Log.WithField("sale_id", id).Info("Send sale to provider request received")

	sale, svcErr := h.service.SendToProvider(r.Context(), id)
	if svcErr != nil {
		switch svcErr {
		case service.ErrSaleNotFound:
			return common.NewAppError(http.StatusNotFound, "Sale not found", nil)
		case service.ErrSaleAlreadySent:
			return common.NewAppError(http.StatusConflict, "Sale was already sent", nil)
		case service.ErrCompanyNotFound:
			return common.NewAppError(http.StatusNotFound, "Company not found", nil)
		case service.ErrEmptyCustomer:
			return common.NewAppError(http.StatusUnprocessableEntity, "Sale has no customer name", nil)
		}
		return common.FromProviderError(svcErr)
	}

	writeJSON(w, http.StatusOK, sale)
	return nil
}
