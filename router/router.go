package router

import (
	"go-contaazul-api/handler"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(companyHandler *handler.CompanyHandler, salesHandler *handler.SalesHandler, oauthHandler *handler.OAuthHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	// OAuth connect flow (no /v1 prefix: the provider redirects here).
	mux.Handle("GET /api/contaazul/start", handler.ErrorHandlingMiddleware(oauthHandler.Start))
	mux.Handle("GET /api/contaazul/callback", handler.ErrorHandlingMiddleware(oauthHandler.Callback))

	// Companies and their provider configuration.
	mux.Handle("POST /v1/companies", handler.ErrorHandlingMiddleware(companyHandler.Create))
	mux.Handle("GET /v1/companies", handler.ErrorHandlingMiddleware(companyHandler.List))
	mux.Handle("GET /v1/companies/{id}", handler.ErrorHandlingMiddleware(companyHandler.Get))
	mux.Handle("POST /v1/companies/{id}/tokens", handler.ErrorHandlingMiddleware(companyHandler.SetTokens))
	mux.Handle("GET /v1/companies/{id}/ca/financial-accounts", handler.ErrorHandlingMiddleware(companyHandler.ListFinancialAccounts))
	mux.Handle("POST /v1/companies/{id}/ca/financial-account", handler.ErrorHandlingMiddleware(companyHandler.SetFinancialAccount))
	mux.Handle("GET /v1/companies/{id}/ca/products", handler.ErrorHandlingMiddleware(companyHandler.ListProducts))
	mux.Handle("POST /v1/companies/{id}/default-item", handler.ErrorHandlingMiddleware(companyHandler.SetDefaultItem))
	mux.Handle("GET /v1/companies/{id}/status", handler.ErrorHandlingMiddleware(companyHandler.Status))
	mux.Handle("GET /v1/companies/{id}/test-connection", handler.ErrorHandlingMiddleware(companyHandler.TestConnection))

	// Imported sales.
	mux.Handle("POST /v1/sales", handler.ErrorHandlingMiddleware(salesHandler.Create))
	mux.Handle("GET /v1/sales", handler.ErrorHandlingMiddleware(salesHandler.List))
	mux.Handle("GET /v1/sales/{id}", handler.ErrorHandlingMiddleware(salesHandler.Get))
	mux.Handle("POST /v1/sales/{id}/send_to_ca", handler.ErrorHandlingMiddleware(salesHandler.SendToProvider))

	return mux
}
