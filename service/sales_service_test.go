package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-contaazul-api/contaazul"
	"go-contaazul-api/model"
	"go-contaazul-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func pendingSale() (*model.Sale, []model.SaleItem) {
	sale := &model.Sale{
		ID:            10,
		CompanyID:     3,
		SaleDate:      time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		CustomerName:  "Maria Silva",
		PaymentMethod: "Pix",
		PaymentTerms:  "À VISTA",
		DueDate:       time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		TotalAmount:   150.0,
		Status:        model.SaleStatusPending,
	}
	items := []model.SaleItem{
		{ProductService: "Bolo", Qty: 1, UnitPrice: 100, LineTotal: 100},
		{ProductService: "Café", Qty: 2, UnitPrice: 25, LineTotal: 50},
	}
	return sale, items
}

func createSaleRequest() model.CreateSaleRequest {
	return model.CreateSaleRequest{
		CompanyID:     3,
		GroupKey:      "2024-05-10|Maria Silva",
		HashUnique:    "h-1",
		SaleDate:      "2024-05-10",
		CustomerName:  "Maria Silva",
		PaymentMethod: "Pix",
		PaymentTerms:  "À VISTA",
		DueDate:       "2024-05-10",
		TotalAmount:   150.0,
		Items: []model.CreateSaleItemRequest{
			{ProductService: "Bolo", Qty: 1, UnitPrice: 150, LineTotal: 150},
		},
	}
}

func TestCreateSale_PersistsPendingSale(t *testing.T) {
	saleRepo := new(MockSaleRepository)
	companyRepo := new(MockCompanyRepository)

	companyRepo.On("GetByID", 3).Return(&model.Company{ID: 3, Name: "Padaria Central"}, nil)
	saleRepo.On("Create", mock.MatchedBy(func(s *model.Sale) bool {
		return s.CompanyID == 3 &&
			s.Status == model.SaleStatusPending &&
			s.HashUnique == "h-1" &&
			s.SaleDate.Format("2006-01-02") == "2024-05-10"
	}), mock.MatchedBy(func(items []model.SaleItem) bool {
		return len(items) == 1 && items[0].ProductService == "Bolo"
	})).Return(nil)

	svc := NewSalesService(saleRepo, companyRepo, new(MockProviderClient))
	sale, items, err := svc.CreateSale(createSaleRequest())

	assert.NoError(t, err)
	assert.Equal(t, model.SaleStatusPending, sale.Status)
	assert.Len(t, items, 1)
	saleRepo.AssertExpectations(t)
}

func TestCreateSale_UnknownCompany(t *testing.T) {
	companyRepo := new(MockCompanyRepository)
	companyRepo.On("GetByID", 3).Return(nil, sql.ErrNoRows)

	svc := NewSalesService(new(MockSaleRepository), companyRepo, new(MockProviderClient))
	_, _, err := svc.CreateSale(createSaleRequest())

	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCreateSale_DuplicateHash(t *testing.T) {
	saleRepo := new(MockSaleRepository)
	companyRepo := new(MockCompanyRepository)

	companyRepo.On("GetByID", 3).Return(&model.Company{ID: 3, Name: "Padaria Central"}, nil)
	saleRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateSale)

	svc := NewSalesService(saleRepo, companyRepo, new(MockProviderClient))
	_, _, err := svc.CreateSale(createSaleRequest())

	assert.ErrorIs(t, err, ErrDuplicateSale)
}

func TestSendToProvider_Success(t *testing.T) {
	sale, items := pendingSale()
	faID := "fa-1"

	saleRepo := new(MockSaleRepository)
	companyRepo := new(MockCompanyRepository)
	client := new(MockProviderClient)

	saleRepo.On("GetByID", 10).Return(sale, items, nil)
	companyRepo.On("GetByID", 3).Return(&model.Company{ID: 3, Name: "Padaria Central", FinancialAccountID: &faID}, nil)
	client.On("ListPeople", mock.Anything, 3, "Maria Silva", "Cliente").
		Return(model.PersonList{TotalItems: 1, Items: []model.Person{{ID: "p-1", Name: "maria silva"}}}, nil)
	client.On("NextSaleNumber", mock.Anything, 3).Return(1042, nil)
	client.On("CreateSale", mock.Anything, 3, mock.MatchedBy(func(p model.SalePayload) bool {
		return p.CustomerID == "p-1" &&
			p.Number == "1042" &&
			p.PaymentTerms.PaymentType == "PIX_PAGAMENTO_INSTANTANEO" &&
			p.PaymentTerms.FinancialAccountID == "fa-1" &&
			len(p.Items) == 2
	})).Return(model.CreatedSale{ID: "ca-sale-1", Number: "1042"}, nil)
	saleRepo.On("MarkSent", 10, "ca-sale-1").Return(nil)

	svc := NewSalesService(saleRepo, companyRepo, client)
	sent, err := svc.SendToProvider(context.Background(), 10)

	assert.NoError(t, err)
	assert.Equal(t, model.SaleStatusSent, sent.Status)
	assert.Equal(t, "ca-sale-1", *sent.ProviderSaleID)
	saleRepo.AssertExpectations(t)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendToProvider_CreatesCustomerWhenMissing(t *testing.T) {
	sale, items := pendingSale()

	saleRepo := new(MockSaleRepository)
	companyRepo := new(MockCompanyRepository)
	client := new(MockProviderClient)

	saleRepo.On("GetByID", 10).Return(sale, items, nil)
	companyRepo.On("GetByID", 3).Return(&model.Company{ID: 3, Name: "Padaria Central"}, nil)
	client.On("ListPeople", mock.Anything, 3, "Maria Silva", "Cliente").
		Return(model.PersonList{TotalItems: 0}, nil)
	client.On("CreateCustomer", mock.Anything, 3, "Maria Silva").
		Return(model.Person{ID: "p-new", Name: "Maria Silva"}, nil)
	client.On("NextSaleNumber", mock.Anything, 3).Return(1042, nil)
	client.On("CreateSale", mock.Anything, 3, mock.MatchedBy(func(p model.SalePayload) bool {
		return p.CustomerID == "p-new" && p.PaymentTerms.FinancialAccountID == ""
	})).Return(model.CreatedSale{ID: "ca-sale-2"}, nil)
	saleRepo.On("MarkSent", 10, "ca-sale-2").Return(nil)

	svc := NewSalesService(saleRepo, companyRepo, client)
	_, err := svc.SendToProvider(context.Background(), 10)

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSendToProvider_AlreadySent(t *testing.T) {
	sale, items := pendingSale()
	sale.Status = model.SaleStatusSent

	saleRepo := new(MockSaleRepository)
	saleRepo.On("GetByID", 10).Return(sale, items, nil)

	svc := NewSalesService(saleRepo, new(MockCompanyRepository), new(MockProviderClient))
	_, err := svc.SendToProvider(context.Background(), 10)

	assert.ErrorIs(t, err, ErrSaleAlreadySent)
}

func TestSendToProvider_SaleNotFound(t *testing.T) {
	saleRepo := new(MockSaleRepository)
	saleRepo.On("GetByID", 99).Return(nil, nil, sql.ErrNoRows)

	svc := NewSalesService(saleRepo, new(MockCompanyRepository), new(MockProviderClient))
	_, err := svc.SendToProvider(context.Background(), 99)

	assert.ErrorIs(t, err, ErrSaleNotFound)
}

// Provider failures are recorded on the sale but handed back untouched, so
// the handler can still distinguish a revoked grant from a provider outage.
func TestSendToProvider_ProviderFailureIsRecordedAndPropagated(t *testing.T) {
	sale, items := pendingSale()

	saleRepo := new(MockSaleRepository)
	companyRepo := new(MockCompanyRepository)
	client := new(MockProviderClient)

	saleRepo.On("GetByID", 10).Return(sale, items, nil)
	companyRepo.On("GetByID", 3).Return(&model.Company{ID: 3, Name: "Padaria Central"}, nil)
	client.On("ListPeople", mock.Anything, 3, "Maria Silva", "Cliente").
		Return(model.PersonList{}, contaazul.ErrReauthorizationRequired)
	saleRepo.On("MarkFailed", 10, mock.Anything).Return(nil)

	svc := NewSalesService(saleRepo, companyRepo, client)
	_, err := svc.SendToProvider(context.Background(), 10)

	assert.ErrorIs(t, err, contaazul.ErrReauthorizationRequired)
	saleRepo.AssertCalled(t, "MarkFailed", 10, mock.Anything)
	client.AssertNotCalled(t, "NextSaleNumber", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "CreateSale", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendToProvider_EmptyCustomerName(t *testing.T) {
	sale, items := pendingSale()
	sale.CustomerName = "   "

	saleRepo := new(MockSaleRepository)
	companyRepo := new(MockCompanyRepository)

	saleRepo.On("GetByID", 10).Return(sale, items, nil)
	companyRepo.On("GetByID", 3).Return(&model.Company{ID: 3, Name: "Padaria Central"}, nil)
	saleRepo.On("MarkFailed", 10, mock.Anything).Return(nil)

	svc := NewSalesService(saleRepo, companyRepo, new(MockProviderClient))
	_, err := svc.SendToProvider(context.Background(), 10)

	assert.ErrorIs(t, err, ErrEmptyCustomer)
}

func TestResolveCustomer_PrefersExactMatch(t *testing.T) {
	client := new(MockProviderClient)
	client.On("ListPeople", mock.Anything, 3, "Maria Silva", "Cliente").
		Return(model.PersonList{TotalItems: 2, Items: []model.Person{
			{ID: "p-1", Name: "Maria Silvania"},
			{ID: "p-2", Name: "MARIA SILVA"},
		}}, nil)

	svc := NewSalesService(new(MockSaleRepository), new(MockCompanyRepository), client)
	id, err := svc.resolveCustomer(context.Background(), 3, "Maria Silva")

	assert.NoError(t, err)
	assert.Equal(t, "p-2", id)
}

func TestResolveCustomer_FallsBackToFirstHit(t *testing.T) {
	client := new(MockProviderClient)
	client.On("ListPeople", mock.Anything, 3, "Maria", "Cliente").
		Return(model.PersonList{TotalItems: 1, Items: []model.Person{{ID: "p-1", Name: "Maria Silvania"}}}, nil)

	svc := NewSalesService(new(MockSaleRepository), new(MockCompanyRepository), client)
	id, err := svc.resolveCustomer(context.Background(), 3, "Maria")

	assert.NoError(t, err)
	assert.Equal(t, "p-1", id)
	client.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything)
}
