package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-contaazul-api/logger"
	"go-contaazul-api/model"
	"go-contaazul-api/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrSaleNotFound    = errors.New("sale not found")
	ErrSaleAlreadySent = errors.New("sale was already sent to the provider")
	ErrDuplicateSale   = errors.New("sale was already imported")
	ErrEmptyCustomer   = errors.New("sale has no customer name")
)

// ProviderClient is the slice of the Conta Azul client the services consume.
type ProviderClient interface {
	ListFinancialAccounts(ctx context.Context, companyID int) ([]model.FinancialAccount, error)
	ListPeople(ctx context.Context, companyID int, name, profileType string) (model.PersonList, error)
	CreateCustomer(ctx context.Context, companyID int, name string) (model.Person, error)
	NextSaleNumber(ctx context.Context, companyID int) (int, error)
	CreateSale(ctx context.Context, companyID int, sale model.SalePayload) (model.CreatedSale, error)
	ListProducts(ctx context.Context, companyID int, search string, page, pageSize int) (model.ProductList, error)
}

// SalesService pushes imported sales to the provider.
type SalesService struct {
	saleRepo    repository.ISaleRepository
	companyRepo repository.ICompanyRepository
	client      ProviderClient
}

func NewSalesService(saleRepo repository.ISaleRepository, companyRepo repository.ICompanyRepository, client ProviderClient) *SalesService {
	return &SalesService{
		saleRepo:    saleRepo,
		companyRepo: companyRepo,
		client:      client,
	}
}

// CreateSale imports a sale for a company, deduplicated by its unique hash.
// New sales start out pending; submission to the provider is a separate step.
func (s *SalesService) CreateSale(req model.CreateSaleRequest) (*model.Sale, []model.SaleItem, error) {
	if _, err := s.companyRepo.GetByID(req.CompanyID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrCompanyNotFound
		}
		return nil, nil, err
	}

	saleDate, err := time.Parse("2006-01-02", req.SaleDate)
	if err != nil {
		return nil, nil, err
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, nil, err
	}

	sale := &model.Sale{
		CompanyID:        req.CompanyID,
		GroupKey:         req.GroupKey,
		HashUnique:       req.HashUnique,
		SaleDate:         saleDate,
		CustomerName:     req.CustomerName,
		PaymentMethod:    req.PaymentMethod,
		PaymentTerms:     req.PaymentTerms,
		ReceivingAccount: req.ReceivingAccount,
		DueDate:          dueDate,
		TotalAmount:      req.TotalAmount,
		Status:           model.SaleStatusPending,
	}
	items := make([]model.SaleItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, model.SaleItem{
			Category:       item.Category,
			ProductService: item.ProductService,
			Details:        item.Details,
			Qty:            item.Qty,
			UnitPrice:      item.UnitPrice,
			LineTotal:      item.LineTotal,
		})
	}

	if err := s.saleRepo.Create(sale, items); err != nil {
		if err == repository.ErrDuplicateSale {
			return nil, nil, ErrDuplicateSale
		}
		return nil, nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"sale_id":    sale.ID,
		"company_id": sale.CompanyID,
	}).Info("Sale imported")
	return sale, items, nil
}

// ListSales returns sales matching the filter.
func (s *SalesService) ListSales(filter repository.SaleFilter) ([]*model.Sale, error) {
	return s.saleRepo.List(filter)
}

// GetSale returns a sale with its items.
func (s *SalesService) GetSale(id int) (*model.Sale, []model.SaleItem, error) {
	sale, items, err := s.saleRepo.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrSaleNotFound
		}
		return nil, nil, err
	}
	return sale, items, nil
}

// SendToProvider pushes one pending sale to the provider: resolves the
// customer, allocates the next sale number, submits the payload and records
// the result. Provider failures are persisted on the sale and returned to the
// caller unmodified so the routing layer can pick a precise status.
func (s *SalesService) SendToProvider(ctx context.Context, saleID int) (*model.Sale, error) {
	sale, items, err := s.GetSale(saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status == model.SaleStatusSent {
		return nil, ErrSaleAlreadySent
	}

	company, err := s.companyRepo.GetByID(sale.CompanyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	log := logger.Log.WithFields(logrus.Fields{
		"sale_id":    sale.ID,
		"company_id": sale.CompanyID,
	})
	log.Info("Sending sale to provider")

	customerID, err := s.resolveCustomer(ctx, sale.CompanyID, sale.CustomerName)
	if err != nil {
		return nil, s.recordFailure(sale, err)
	}

	number, err := s.client.NextSaleNumber(ctx, sale.CompanyID)
	if err != nil {
		return nil, s.recordFailure(sale, err)
	}

	financialAccountID := ""
	if company.FinancialAccountID != nil {
		financialAccountID = *company.FinancialAccountID
	}

	payload := BuildSalePayload(sale, items, customerID, number, financialAccountID)
	created, err := s.client.CreateSale(ctx, sale.CompanyID, payload)
	if err != nil {
		return nil, s.recordFailure(sale, err)
	}

	if err := s.saleRepo.MarkSent(sale.ID, created.ID); err != nil {
		return nil, err
	}

	log.WithField("provider_sale_id", created.ID).Info("Sale accepted by provider")
	sale.Status = model.SaleStatusSent
	sale.ProviderSaleID = &created.ID
	sale.ErrorSummary = nil
	return sale, nil
}

// resolveCustomer finds the provider customer by name, preferring an exact
// case-insensitive match over the first fuzzy hit, and creates one when the
// search comes back empty.
func (s *SalesService) resolveCustomer(ctx context.Context, companyID int, customerName string) (string, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return "", ErrEmptyCustomer
	}

	people, err := s.client.ListPeople(ctx, companyID, name, "Cliente")
	if err != nil {
		return "", err
	}

	for _, person := range people.Items {
		if strings.EqualFold(strings.TrimSpace(person.Name), name) {
			return person.ID, nil
		}
	}
	if len(people.Items) > 0 {
		return people.Items[0].ID, nil
	}

	created, err := s.client.CreateCustomer(ctx, companyID, name)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// recordFailure persists the provider failure on the sale and hands the
// original error back untouched.
func (s *SalesService) recordFailure(sale *model.Sale, cause error) error {
	if err := s.saleRepo.MarkFailed(sale.ID, cause.Error()); err != nil {
		logger.Log.WithError(err).WithField("sale_id", sale.ID).Error("Failed to record sale failure")
	}
	return cause
}
