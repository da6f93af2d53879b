package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-contaazul-api/repository"
	"go-contaazul-api/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func newSalesHandler(t *testing.T) (*SalesHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewSalesService(repository.NewSaleRepository(db), repository.NewCompanyRepository(db), nil)
	return NewSalesHandler(svc), mock
}

func emptySaleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "company_id", "group_key", "hash_unique", "sale_date", "customer_name", "payment_method",
		"payment_terms", "receiving_account", "due_date", "total_amount", "status", "error_summary",
		"provider_sale_id", "created_at",
	})
}

const createSaleBody = `{
	"company_id": 3,
	"group_key": "2024-05-10|Maria Silva",
	"hash_unique": "h-1",
	"sale_date": "2024-05-10",
	"customer_name": "Maria Silva",
	"payment_method": "Pix",
	"payment_terms": "À VISTA",
	"due_date": "2024-05-10",
	"total_amount": 150.0,
	"items": [{"product_service": "Bolo", "qty": 1, "unit_price": 150, "line_total": 150}]
}`

func expectCompanyLookup(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT (.+) FROM companies WHERE id = \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "review_mode", "access_token", "refresh_token",
			"token_expires_at", "financial_account_id", "default_item_id", "created_at",
		}).AddRow(3, "Padaria Central", true, nil, nil, nil, nil, nil, time.Now()))
}

func TestSalesList_EmptyResultIsJSONArray(t *testing.T) {
	h, mock := newSalesHandler(t)

	mock.ExpectQuery(`SELECT (.+) FROM sales WHERE`).WillReturnRows(emptySaleRows())

	req := httptest.NewRequest(http.MethodGet, "/v1/sales", nil)
	rec := httptest.NewRecorder()

	appErr := h.List(rec, req)

	assert.Nil(t, appErr)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSalesCreate_ImportsPendingSale(t *testing.T) {
	h, mock := newSalesHandler(t)

	expectCompanyLookup(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO sales`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(10, time.Now()))
	mock.ExpectQuery(`INSERT INTO sale_items`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodPost, "/v1/sales", strings.NewReader(createSaleBody))
	rec := httptest.NewRecorder()

	appErr := h.Create(rec, req)

	assert.Nil(t, appErr)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"PENDENTE"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalesCreate_DuplicateHashReturnsConflict(t *testing.T) {
	h, mock := newSalesHandler(t)

	expectCompanyLookup(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO sales`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_sales_company_hash"})
	mock.ExpectRollback()

	req := httptest.NewRequest(http.MethodPost, "/v1/sales", strings.NewReader(createSaleBody))
	rec := httptest.NewRecorder()

	appErr := h.Create(rec, req)

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusConflict, appErr.Code)
}

func TestSalesCreate_RejectsInvalidPayload(t *testing.T) {
	h, _ := newSalesHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/sales", strings.NewReader(`{"company_id": 3}`))
	rec := httptest.NewRecorder()

	appErr := h.Create(rec, req)

	assert.Nil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
