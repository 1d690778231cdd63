package services

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"
)

// CustomerService implements CustomerServiceInterface over the customers table.
type CustomerService struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewCustomerService creates a new CustomerService instance.
func NewCustomerService(db *sql.DB, logger *observability.Logger) *CustomerService {
	if db == nil {
		panic("NewCustomerService: db is nil")
	}
	if logger == nil {
		panic("NewCustomerService: logger is nil")
	}
	return &CustomerService{db: db, logger: logger}
}

// CreateCustomer inserts a new customer profile captured at intake.
func (s *CustomerService) CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest) (result0 *models.Customer, err error) {
	ctx, span := observability.TraceCustomerFunction(ctx, "create_customer")
	defer observability.FinishSpan(span, &err)

	customer := &models.Customer{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		EmailConsent: req.EmailConsent != nil && *req.EmailConsent,
		Purpose:      strings.TrimSpace(req.Purpose),
		BranchID:     strings.TrimSpace(req.BranchID),
		BranchName:   strings.TrimSpace(req.BranchName),
		StaffName:    strings.TrimSpace(req.StaffName),
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		customer.Phone = sql.NullString{String: phone, Valid: true}
	}

	query := `INSERT INTO customers (name, email, phone, email_consent, purpose_of_visit, branch_id, branch_name, staff_name, created_at)
              VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id, created_at`
	var id int64
	var createdAt time.Time
	err = s.db.QueryRowContext(ctx, query,
		customer.Name, customer.Email, customer.Phone, customer.EmailConsent,
		customer.Purpose, customer.BranchID, customer.BranchName, customer.StaffName, time.Now()).
		Scan(&id, &createdAt)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to insert customer")
	}

	customer.ID = strconv.FormatInt(id, 10)
	customer.CreatedAt = createdAt
	return customer, nil
}

// GetCustomerByID fetches a customer by its opaque id.
func (s *CustomerService) GetCustomerByID(ctx context.Context, id string) (result0 *models.Customer, err error) {
	ctx, span := observability.TraceCustomerFunction(ctx, "get_customer_by_id", observability.AttributeCustomerID(id))
	defer observability.FinishSpan(span, &err)

	numericID, parseErr := strconv.ParseInt(id, 10, 64)
	if parseErr != nil {
		// Opaque ids are store-generated; anything unparsable cannot match a row
		return nil, contextutils.ErrRecordNotFound
	}

	query := `SELECT id, name, email, phone, email_consent, purpose_of_visit, branch_id, branch_name, staff_name, created_at
              FROM customers WHERE id=$1`
	row := s.db.QueryRowContext(ctx, query, numericID)

	var c models.Customer
	var rowID int64
	err = row.Scan(&rowID, &c.Name, &c.Email, &c.Phone, &c.EmailConsent, &c.Purpose, &c.BranchID, &c.BranchName, &c.StaffName, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.ErrRecordNotFound
		}
		return nil, contextutils.WrapError(err, "failed to scan customer")
	}
	c.ID = strconv.FormatInt(rowID, 10)
	return &c, nil
}
