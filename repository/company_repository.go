package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-contaazul-api/contaazul"
	"go-contaazul-api/logger"
	"go-contaazul-api/model"

	"github.com/sirupsen/logrus"
)

// ICompanyRepository defines the contract for company database operations.
type ICompanyRepository interface {
	Create(company *model.Company) error
	GetByID(id int) (*model.Company, error)
	GetByName(name string) (*model.Company, error)
	List() ([]*model.Company, error)
	UpdateTokens(ctx context.Context, companyID int, cred model.Credential) error
	SetFinancialAccount(companyID int, financialAccountID string) error
	SetDefaultItem(companyID int, defaultItemID string) error
}

// CompanyRepository implements ICompanyRepository. It also satisfies
// contaazul.TokenStore, making it the token store adapter for the client core.
type CompanyRepository struct {
	DB *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

const companyColumns = `id, name, review_mode, access_token, refresh_token, token_expires_at, financial_account_id, default_item_id, created_at`

func scanCompany(row interface{ Scan(...any) error }) (*model.Company, error) {
	c := &model.Company{}
	err := row.Scan(&c.ID, &c.Name, &c.ReviewMode, &c.AccessToken, &c.RefreshToken,
		&c.TokenExpiresAt, &c.FinancialAccountID, &c.DefaultItemID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new company record.
func (r *CompanyRepository) Create(company *model.Company) error {
	log := logger.Log.WithField("name", company.Name)
	log.Info("Executing query to create a new company")

	query := `INSERT INTO companies (name) VALUES ($1) RETURNING id, review_mode, created_at`
	err := r.DB.QueryRow(query, company.Name).Scan(&company.ID, &company.ReviewMode, &company.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create company query")
		return err
	}
	return nil
}

// GetByID retrieves a company by its identifier.
func (r *CompanyRepository) GetByID(id int) (*model.Company, error) {
	log := logger.Log.WithField("company_id", id)
	log.Info("Executing query to get company by ID")

	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	company, err := scanCompany(r.DB.QueryRow(query, id))
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get company by ID query")
		}
		return nil, err
	}
	return company, nil
}

// GetByName retrieves a company by its unique name.
func (r *CompanyRepository) GetByName(name string) (*model.Company, error) {
	log := logger.Log.WithField("name", name)
	log.Info("Executing query to get company by name")

	query := `SELECT ` + companyColumns + ` FROM companies WHERE name = $1`
	company, err := scanCompany(r.DB.QueryRow(query, name))
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get company by name query")
		}
		return nil, err
	}
	return company, nil
}

// List retrieves all companies ordered by id.
func (r *CompanyRepository) List() ([]*model.Company, error) {
	logger.Log.Info("Executing query to list companies")

	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY id ASC`
	rows, err := r.DB.Query(query)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute list companies query")
		return nil, err
	}
	defer rows.Close()

	var companies []*model.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			logger.Log.WithError(err).Error("Failed to scan company row")
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// UpdateTokens overwrites the company's credential triple in one statement.
// Last-writer-wins: concurrent refreshes never interleave partial writes.
func (r *CompanyRepository) UpdateTokens(ctx context.Context, companyID int, cred model.Credential) error {
	log := logger.Log.WithFields(logrus.Fields{
		"company_id": companyID,
		"expires_at": cred.ExpiresAt,
	})
	log.Info("Executing query to update company tokens")

	var expiresAt *time.Time
	if !cred.ExpiresAt.IsZero() {
		expiresAt = &cred.ExpiresAt
	}

	query := `UPDATE companies SET access_token = $1, refresh_token = $2, token_expires_at = $3 WHERE id = $4`
	result, err := r.DB.ExecContext(ctx, query, cred.AccessToken, cred.RefreshToken, expiresAt, companyID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update company tokens query")
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return contaazul.ErrCompanyNotFound
	}
	return nil
}

// SetFinancialAccount stores the provider financial account used for sales.
func (r *CompanyRepository) SetFinancialAccount(companyID int, financialAccountID string) error {
	log := logger.Log.WithFields(logrus.Fields{
		"company_id":           companyID,
		"financial_account_id": financialAccountID,
	})
	log.Info("Executing query to set company financial account")

	query := `UPDATE companies SET financial_account_id = $1 WHERE id = $2`
	result, err := r.DB.Exec(query, financialAccountID, companyID)
	if err != nil {
		log.WithError(err).Error("Failed to execute set financial account query")
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetDefaultItem stores the fallback item/service for sale lines.
func (r *CompanyRepository) SetDefaultItem(companyID int, defaultItemID string) error {
	log := logger.Log.WithFields(logrus.Fields{
		"company_id":      companyID,
		"default_item_id": defaultItemID,
	})
	log.Info("Executing query to set company default item")

	query := `UPDATE companies SET default_item_id = $1 WHERE id = $2`
	result, err := r.DB.Exec(query, defaultItemID, companyID)
	if err != nil {
		log.WithError(err).Error("Failed to execute set default item query")
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Load implements contaazul.TokenStore. It returns the company's borrowed
// credential snapshot, or contaazul.ErrCompanyNotFound when the company does
// not exist or never completed the authorization flow.
func (r *CompanyRepository) Load(ctx context.Context, companyID int) (model.Credential, error) {
	log := logger.Log.WithField("company_id", companyID)
	log.Info("Executing query to load company credentials")

	var access, refresh sql.NullString
	var expiresAt sql.NullTime

	query := `SELECT access_token, refresh_token, token_expires_at FROM companies WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, companyID).Scan(&access, &refresh, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Credential{}, contaazul.ErrCompanyNotFound
		}
		log.WithError(err).Error("Failed to execute load credentials query")
		return model.Credential{}, err
	}

	if !access.Valid || access.String == "" || !refresh.Valid || refresh.String == "" {
		return model.Credential{}, contaazul.ErrCompanyNotFound
	}

	cred := model.Credential{
		AccessToken:  access.String,
		RefreshToken: refresh.String,
	}
	if expiresAt.Valid {
		cred.ExpiresAt = expiresAt.Time
	}
	return cred, nil
}

// Save implements contaazul.TokenStore.
func (r *CompanyRepository) Save(ctx context.Context, companyID int, cred model.Credential) error {
	return r.UpdateTokens(ctx, companyID, cred)
}
