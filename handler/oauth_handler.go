package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"go-contaazul-api/common"
	"go-contaazul-api/logger"
	"go-contaazul-api/service"
)

type OAuthHandler struct {
	service *service.OAuthService
}

func NewOAuthHandler(service *service.OAuthService) *OAuthHandler {
	return &OAuthHandler{service: service}
}

// Start redirects the browser to the provider's consent screen.
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) *common.AppError {
	companyID, err := strconv.Atoi(r.URL.Query().Get("company_id"))
	if err != nil || companyID <= 0 {
		return common.NewAppError(http.StatusBadRequest, "Query parameter 'company_id' is required", err)
	}

	logger.Log.WithField("company_id", companyID).Info("Starting provider authorization flow")

	url, svcErr := h.service.StartURL(r.Context(), companyID)
	if svcErr != nil {
		if svcErr == service.ErrCompanyNotFound {
			return common.NewAppError(http.StatusNotFound, "Company not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not start authorization flow", svcErr)
	}

	http.Redirect(w, r, url, http.StatusFound)
	return nil
}

// Callback finishes the authorization flow: exchanges the code and shows a
// small confirmation page so the browser does not land on raw JSON.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) *common.AppError {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		return common.NewAppError(http.StatusBadRequest, "Query parameters 'code' and 'state' are required", nil)
	}

	companyID, err := h.service.HandleCallback(r.Context(), code, state)
	if err != nil {
		if err == service.ErrInvalidState {
			return common.NewAppError(http.StatusBadRequest, "Invalid or expired state", nil)
		}
		return common.NewAppError(http.StatusBadRequest, "Token exchange failed", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<html>
  <body style="font-family: Arial; padding: 24px;">
    <h2>Conta Azul connected successfully</h2>
    <p>Company ID: <b>%d</b></p>
    <p>You can now return to the platform and submit sales.</p>
  </body>
</html>`, companyID)
	return nil
}
