package repository

import (
	"database/sql"
	"errors"

	"go-contaazul-api/logger"
	"go-contaazul-api/model"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// ErrDuplicateSale is returned by Create when the (company, hash) pair was
// already imported.
var ErrDuplicateSale = errors.New("sale already imported")

// ISaleRepository defines the contract for sale database operations.
type ISaleRepository interface {
	Create(sale *model.Sale, items []model.SaleItem) error
	GetByID(id int) (*model.Sale, []model.SaleItem, error)
	List(filter SaleFilter) ([]*model.Sale, error)
	MarkSent(saleID int, providerSaleID string) error
	MarkFailed(saleID int, summary string) error
}

// SaleFilter narrows List results; nil fields are ignored.
type SaleFilter struct {
	CompanyID *int
	GroupKey  *string
	Status    *string
}

// SaleRepository implements ISaleRepository.
type SaleRepository struct {
	DB *sql.DB
}

func NewSaleRepository(db *sql.DB) *SaleRepository {
	return &SaleRepository{DB: db}
}

const saleColumns = `id, company_id, group_key, hash_unique, sale_date, customer_name, payment_method,
	payment_terms, receiving_account, due_date, total_amount, status, error_summary, provider_sale_id, created_at`

func scanSale(row interface{ Scan(...any) error }) (*model.Sale, error) {
	s := &model.Sale{}
	err := row.Scan(&s.ID, &s.CompanyID, &s.GroupKey, &s.HashUnique, &s.SaleDate, &s.CustomerName,
		&s.PaymentMethod, &s.PaymentTerms, &s.ReceivingAccount, &s.DueDate, &s.TotalAmount,
		&s.Status, &s.ErrorSummary, &s.ProviderSaleID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a sale and its items within a single transaction.
func (r *SaleRepository) Create(sale *model.Sale, items []model.SaleItem) error {
	log := logger.Log.WithFields(logrus.Fields{
		"company_id":    sale.CompanyID,
		"customer_name": sale.CustomerName,
	})
	log.Info("Executing query to create a new sale")

	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO sales (company_id, group_key, hash_unique, sale_date, customer_name, payment_method,
		payment_terms, receiving_account, due_date, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id, created_at`
	err = tx.QueryRow(query, sale.CompanyID, sale.GroupKey, sale.HashUnique, sale.SaleDate, sale.CustomerName,
		sale.PaymentMethod, sale.PaymentTerms, sale.ReceivingAccount, sale.DueDate, sale.TotalAmount,
		sale.Status).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateSale
		}
		log.WithError(err).Error("Failed to execute create sale query")
		return err
	}

	itemQuery := `INSERT INTO sale_items (sale_id, category, product_service, details, qty, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	for i := range items {
		items[i].SaleID = sale.ID
		err = tx.QueryRow(itemQuery, sale.ID, items[i].Category, items[i].ProductService, items[i].Details,
			items[i].Qty, items[i].UnitPrice, items[i].LineTotal).Scan(&items[i].ID)
		if err != nil {
			log.WithError(err).Error("Failed to execute create sale item query")
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a sale together with its items.
func (r *SaleRepository) GetByID(id int) (*model.Sale, []model.SaleItem, error) {
	log := logger.Log.WithField("sale_id", id)
	log.Info("Executing query to get sale by ID")

	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	sale, err := scanSale(r.DB.QueryRow(query, id))
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get sale by ID query")
		}
		return nil, nil, err
	}

	itemQuery := `SELECT id, sale_id, category, product_service, details, qty, unit_price, line_total
		FROM sale_items WHERE sale_id = $1 ORDER BY id ASC`
	rows, err := r.DB.Query(itemQuery, id)
	if err != nil {
		log.WithError(err).Error("Failed to execute get sale items query")
		return nil, nil, err
	}
	defer rows.Close()

	var items []model.SaleItem
	for rows.Next() {
		var item model.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.Category, &item.ProductService, &item.Details,
			&item.Qty, &item.UnitPrice, &item.LineTotal); err != nil {
			log.WithError(err).Error("Failed to scan sale item row")
			return nil, nil, err
		}
		items = append(items, item)
	}
	return sale, items, rows.Err()
}

// List retrieves sales matching the filter, ordered by id.
func (r *SaleRepository) List(filter SaleFilter) ([]*model.Sale, error) {
	logger.Log.Info("Executing query to list sales")

	query := `SELECT ` + saleColumns + ` FROM sales WHERE ($1::int IS NULL OR company_id = $1)
		AND ($2::text IS NULL OR group_key = $2)
		AND ($3::text IS NULL OR status = $3) ORDER BY id ASC`
	rows, err := r.DB.Query(query, filter.CompanyID, filter.GroupKey, filter.Status)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute list sales query")
		return nil, err
	}
	defer rows.Close()

	var sales []*model.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			logger.Log.WithError(err).Error("Failed to scan sale row")
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

// MarkSent records the provider sale id after a successful submission.
func (r *SaleRepository) MarkSent(saleID int, providerSaleID string) error {
	log := logger.Log.WithFields(logrus.Fields{
		"sale_id":          saleID,
		"provider_sale_id": providerSaleID,
	})
	log.Info("Executing query to mark sale as sent")

	query := `UPDATE sales SET status = $1, provider_sale_id = $2, error_summary = NULL WHERE id = $3`
	_, err := r.DB.Exec(query, model.SaleStatusSent, providerSaleID, saleID)
	if err != nil {
		log.WithError(err).Error("Failed to execute mark sale sent query")
		return err
	}
	return nil
}

// MarkFailed records the failure summary of a rejected submission.
func (r *SaleRepository) MarkFailed(saleID int, summary string) error {
	log := logger.Log.WithField("sale_id", saleID)
	log.Info("Executing query to mark sale as failed")

	query := `UPDATE sales SET status = $1, error_summary = $2 WHERE id = $3`
	_, err := r.DB.Exec(query, model.SaleStatusFailed, summary, saleID)
	if err != nil {
		log.WithError(err).Error("Failed to execute mark sale failed query")
		return err
	}
	return nil
}
