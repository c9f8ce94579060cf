package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizgrid/bizgrid-api/internal/database"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/bizgrid/bizgrid-api/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ConsolidationService folds the legacy customers and suppliers tables into
// business_entities. Customers migrate first, then suppliers merge into any
// matching entity. Matching precedence per record: same tax number anywhere
// in the workspace, then same name within the same company, then create.
type ConsolidationService struct {
	db  *database.DB
	log *logger.Logger
}

func NewConsolidationService(db *database.DB, log *logger.Logger) *ConsolidationService {
	return &ConsolidationService{db: db, log: log}
}

type ConsolidationSummary struct {
	CustomersProcessed int `json:"customers_processed"`
	SuppliersProcessed int `json:"suppliers_processed"`
	Created            int `json:"created"`
	Merged             int `json:"merged"`
	Skipped            int `json:"skipped"`
	Failed             int `json:"failed"`
	CustomerOnly       int `json:"customer_only"`
	SupplierOnly       int `json:"supplier_only"`
	Both               int `json:"both"`
}

const (
	actionCreated = "created"
	actionMerged  = "merged"
	actionSkipped = "skipped"
)

// Run executes a full consolidation pass. Individual record failures are
// logged and counted but never abort the run; re-running is safe because
// migrated rows keep their source primary key and merges only fill gaps.
func (s *ConsolidationService) Run(ctx context.Context) (*ConsolidationSummary, error) {
	summary := &ConsolidationSummary{}

	customers, err := s.loadCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	for i := range customers {
		c := &customers[i]
		summary.CustomersProcessed++
		action, err := s.consolidateCustomer(ctx, c)
		if err != nil {
			summary.Failed++
			s.log.Warn().Err(err).Str("customer_id", c.ID.String()).Msg("customer consolidation failed")
			continue
		}
		summary.count(action)
	}

	suppliers, err := s.loadSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load suppliers: %w", err)
	}
	for i := range suppliers {
		sp := &suppliers[i]
		summary.SuppliersProcessed++
		action, err := s.consolidateSupplier(ctx, sp)
		if err != nil {
			summary.Failed++
			s.log.Warn().Err(err).Str("supplier_id", sp.ID.String()).Msg("supplier consolidation failed")
			continue
		}
		summary.count(action)
	}

	if err := s.countByType(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to count entities: %w", err)
	}

	s.log.Info().
		Int("customers", summary.CustomersProcessed).
		Int("suppliers", summary.SuppliersProcessed).
		Int("created", summary.Created).
		Int("merged", summary.Merged).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("consolidation complete")

	return summary, nil
}

func (sm *ConsolidationSummary) count(action string) {
	switch action {
	case actionCreated:
		sm.Created++
	case actionMerged:
		sm.Merged++
	case actionSkipped:
		sm.Skipped++
	}
}

func (s *ConsolidationService) consolidateCustomer(ctx context.Context, c *models.Customer) (string, error) {
	migrated, err := s.alreadyMigrated(ctx, c.ID)
	if err != nil {
		return "", err
	}
	if migrated {
		return actionSkipped, nil
	}

	targetID, found, err := s.findMatch(ctx, c.WorkspaceID, c.CompanyID, c.TaxNumber, c.Name)
	if err != nil {
		return "", err
	}

	if found {
		_, err = s.db.Pool.Exec(ctx, `
			UPDATE business_entities SET
				entity_type = CASE WHEN entity_type = 'supplier' THEN 'both' ELSE entity_type END,
				tax_number = COALESCE(tax_number, $2),
				customer_code = COALESCE(customer_code, $3),
				email = COALESCE(email, $4),
				phone = COALESCE(phone, $5),
				address = COALESCE(address, $6),
				city = COALESCE(city, $7),
				country = COALESCE(country, $8),
				credit_limit = CASE WHEN credit_limit = 0 THEN $9 ELSE credit_limit END,
				opening_balance = CASE WHEN opening_balance = 0 THEN $10 ELSE opening_balance END,
				payment_terms_days = CASE WHEN payment_terms_days = 0 THEN $11 ELSE payment_terms_days END,
				updated_at = NOW()
			WHERE id = $1
		`, targetID, c.TaxNumber, c.Code, c.Email, c.Phone, c.Address, c.City, c.Country,
			c.CreditLimit, c.OpeningBalance, c.PaymentTermsDays)
		if err != nil {
			return "", err
		}
		return actionMerged, nil
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO business_entities (id, workspace_id, company_id, entity_type, name,
			tax_number, customer_code, email, phone, address, city, country,
			credit_limit, opening_balance, payment_terms_days, created_at)
		VALUES ($1, $2, $3, 'customer', $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, c.ID, c.WorkspaceID, c.CompanyID, c.Name, c.TaxNumber, c.Code,
		c.Email, c.Phone, c.Address, c.City, c.Country,
		c.CreditLimit, c.OpeningBalance, c.PaymentTermsDays, c.CreatedAt)
	if err != nil {
		return "", err
	}
	return actionCreated, nil
}

func (s *ConsolidationService) consolidateSupplier(ctx context.Context, sp *models.Supplier) (string, error) {
	migrated, err := s.alreadyMigrated(ctx, sp.ID)
	if err != nil {
		return "", err
	}
	if migrated {
		return actionSkipped, nil
	}

	targetID, found, err := s.findMatch(ctx, sp.WorkspaceID, sp.CompanyID, sp.TaxNumber, sp.Name)
	if err != nil {
		return "", err
	}

	if found {
		_, err = s.db.Pool.Exec(ctx, `
			UPDATE business_entities SET
				entity_type = CASE WHEN entity_type = 'customer' THEN 'both' ELSE entity_type END,
				tax_number = COALESCE(tax_number, $2),
				supplier_code = COALESCE(supplier_code, $3),
				email = COALESCE(email, $4),
				phone = COALESCE(phone, $5),
				address = COALESCE(address, $6),
				city = COALESCE(city, $7),
				country = COALESCE(country, $8),
				opening_balance = CASE WHEN opening_balance = 0 THEN $9 ELSE opening_balance END,
				payment_terms_days = CASE WHEN payment_terms_days = 0 THEN $10 ELSE payment_terms_days END,
				lead_time_days = COALESCE(lead_time_days, $11),
				quality_rating = COALESCE(quality_rating, $12),
				updated_at = NOW()
			WHERE id = $1
		`, targetID, sp.TaxNumber, sp.Code, sp.Email, sp.Phone, sp.Address, sp.City, sp.Country,
			sp.OpeningBalance, sp.PaymentTermsDays, sp.LeadTimeDays, sp.QualityRating)
		if err != nil {
			return "", err
		}
		return actionMerged, nil
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO business_entities (id, workspace_id, company_id, entity_type, name,
			tax_number, supplier_code, email, phone, address, city, country,
			opening_balance, payment_terms_days, lead_time_days, quality_rating, created_at)
		VALUES ($1, $2, $3, 'supplier', $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, sp.ID, sp.WorkspaceID, sp.CompanyID, sp.Name, sp.TaxNumber, sp.Code,
		sp.Email, sp.Phone, sp.Address, sp.City, sp.Country,
		sp.OpeningBalance, sp.PaymentTermsDays, sp.LeadTimeDays, sp.QualityRating, sp.CreatedAt)
	if err != nil {
		return "", err
	}
	return actionCreated, nil
}

// alreadyMigrated reports whether a source row was migrated by an earlier
// run. Migrated rows keep their source primary key, so the check is a plain
// id lookup.
func (s *ConsolidationService) alreadyMigrated(ctx context.Context, sourceID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM business_entities WHERE id = $1)
	`, sourceID).Scan(&exists)
	return exists, err
}

// findMatch locates a merge target. Tax numbers identify an entity across
// the whole workspace; names only within the same company, case-insensitive.
func (s *ConsolidationService) findMatch(ctx context.Context, workspaceID, companyID uuid.UUID, taxNumber *string, name string) (uuid.UUID, bool, error) {
	var id uuid.UUID

	if taxNumber != nil && *taxNumber != "" {
		err := s.db.Pool.QueryRow(ctx, `
			SELECT id FROM business_entities
			WHERE workspace_id = $1 AND tax_number = $2 AND deleted_at IS NULL
		`, workspaceID, *taxNumber).Scan(&id)
		if err == nil {
			return id, true, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, false, err
		}
	}

	err := s.db.Pool.QueryRow(ctx, `
		SELECT id FROM business_entities
		WHERE workspace_id = $1 AND company_id = $2 AND LOWER(name) = LOWER($3) AND deleted_at IS NULL
	`, workspaceID, companyID, name).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	return uuid.Nil, false, err
}

func (s *ConsolidationService) loadCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, workspace_id, company_id, name, tax_number, code, email, phone,
		       address, city, country, credit_limit, opening_balance, payment_terms_days, created_at
		FROM customers
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(
			&c.ID, &c.WorkspaceID, &c.CompanyID, &c.Name, &c.TaxNumber, &c.Code,
			&c.Email, &c.Phone, &c.Address, &c.City, &c.Country,
			&c.CreditLimit, &c.OpeningBalance, &c.PaymentTermsDays, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *ConsolidationService) loadSuppliers(ctx context.Context) ([]models.Supplier, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, workspace_id, company_id, name, tax_number, code, email, phone,
		       address, city, country, opening_balance, payment_terms_days,
		       lead_time_days, quality_rating, created_at
		FROM suppliers
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []models.Supplier
	for rows.Next() {
		var sp models.Supplier
		if err := rows.Scan(
			&sp.ID, &sp.WorkspaceID, &sp.CompanyID, &sp.Name, &sp.TaxNumber, &sp.Code,
			&sp.Email, &sp.Phone, &sp.Address, &sp.City, &sp.Country,
			&sp.OpeningBalance, &sp.PaymentTermsDays, &sp.LeadTimeDays, &sp.QualityRating, &sp.CreatedAt,
		); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, sp)
	}
	return suppliers, rows.Err()
}

func (s *ConsolidationService) countByType(ctx context.Context, summary *ConsolidationSummary) error {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT entity_type, COUNT(*) FROM business_entities
		WHERE deleted_at IS NULL
		GROUP BY entity_type
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var entityType string
		var n int
		if err := rows.Scan(&entityType, &n); err != nil {
			return err
		}
		switch entityType {
		case models.EntityTypeCustomer:
			summary.CustomerOnly = n
		case models.EntityTypeSupplier:
			summary.SupplierOnly = n
		case models.EntityTypeBoth:
			summary.Both = n
		}
	}
	return rows.Err()
}
