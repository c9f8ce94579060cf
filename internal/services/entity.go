package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizgrid/bizgrid-api/internal/database"
	"github.com/bizgrid/bizgrid-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrEntityNotFound     = errors.New("business entity not found")
	ErrDuplicateTaxNumber = errors.New("tax number already registered in this workspace")
	ErrDuplicateCustomer  = errors.New("customer code already in use for this company")
	ErrDuplicateSupplier  = errors.New("supplier code already in use for this company")
	ErrInvalidEntityType  = errors.New("invalid entity type")
)

const entityColumns = `id, workspace_id, company_id, entity_type, name, tax_number,
	customer_code, supplier_code, email, phone, address, city, country,
	credit_limit, opening_balance, payment_terms_days, lead_time_days,
	quality_rating, notes, deleted_at, created_at, updated_at`

type EntityService struct {
	db *database.DB
}

func NewEntityService(db *database.DB) *EntityService {
	return &EntityService{db: db}
}

// EntityInput carries the writable fields of a business entity. Pointer
// fields are optional; decimals default to zero.
type EntityInput struct {
	EntityType       string
	Name             string
	TaxNumber        *string
	CustomerCode     *string
	SupplierCode     *string
	Email            *string
	Phone            *string
	Address          *string
	City             *string
	Country          *string
	CreditLimit      decimal.Decimal
	OpeningBalance   decimal.Decimal
	PaymentTermsDays int
	LeadTimeDays     *int
	QualityRating    *decimal.Decimal
	Notes            *string
}

func validEntityType(t string) bool {
	return t == models.EntityTypeCustomer || t == models.EntityTypeSupplier || t == models.EntityTypeBoth
}

func (s *EntityService) Create(ctx context.Context, workspaceID, companyID uuid.UUID, in EntityInput) (*models.BusinessEntity, error) {
	if !validEntityType(in.EntityType) {
		return nil, ErrInvalidEntityType
	}
	if err := s.checkDuplicates(ctx, workspaceID, companyID, uuid.Nil, in); err != nil {
		return nil, err
	}

	var entity models.BusinessEntity
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO business_entities (workspace_id, company_id, entity_type, name, tax_number,
			customer_code, supplier_code, email, phone, address, city, country,
			credit_limit, opening_balance, payment_terms_days, lead_time_days,
			quality_rating, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING `+entityColumns,
		workspaceID, companyID, in.EntityType, in.Name, in.TaxNumber,
		in.CustomerCode, in.SupplierCode, in.Email, in.Phone, in.Address, in.City, in.Country,
		in.CreditLimit, in.OpeningBalance, in.PaymentTermsDays, in.LeadTimeDays,
		in.QualityRating, in.Notes,
	).Scan(entityFields(&entity)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create entity: %w", err)
	}
	return &entity, nil
}

// checkDuplicates enforces the uniqueness rules over live rows only:
// tax number per workspace, role codes per (workspace, company). Soft-deleted
// rows do not block reuse. exclude skips the entity being updated.
func (s *EntityService) checkDuplicates(ctx context.Context, workspaceID, companyID, exclude uuid.UUID, in EntityInput) error {
	if in.TaxNumber != nil && *in.TaxNumber != "" {
		var exists bool
		err := s.db.Pool.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM business_entities
				WHERE workspace_id = $1 AND tax_number = $2 AND deleted_at IS NULL AND id != $3
			)
		`, workspaceID, *in.TaxNumber, exclude).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check tax number: %w", err)
		}
		if exists {
			return ErrDuplicateTaxNumber
		}
	}

	if in.CustomerCode != nil && *in.CustomerCode != "" {
		var exists bool
		err := s.db.Pool.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM business_entities
				WHERE workspace_id = $1 AND company_id = $2 AND customer_code = $3
				  AND entity_type IN ('customer', 'both') AND deleted_at IS NULL AND id != $4
			)
		`, workspaceID, companyID, *in.CustomerCode, exclude).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check customer code: %w", err)
		}
		if exists {
			return ErrDuplicateCustomer
		}
	}

	if in.SupplierCode != nil && *in.SupplierCode != "" {
		var exists bool
		err := s.db.Pool.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM business_entities
				WHERE workspace_id = $1 AND company_id = $2 AND supplier_code = $3
				  AND entity_type IN ('supplier', 'both') AND deleted_at IS NULL AND id != $4
			)
		`, workspaceID, companyID, *in.SupplierCode, exclude).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check supplier code: %w", err)
		}
		if exists {
			return ErrDuplicateSupplier
		}
	}

	return nil
}

func (s *EntityService) GetByID(ctx context.Context, workspaceID, entityID uuid.UUID) (*models.BusinessEntity, error) {
	var entity models.BusinessEntity
	err := s.db.Pool.QueryRow(ctx, `
		SELECT `+entityColumns+`
		FROM business_entities
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`, entityID, workspaceID).Scan(entityFields(&entity)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load entity: %w", err)
	}
	return &entity, nil
}

// List returns live entities for a company, optionally filtered by role.
// entityType "customer" and "supplier" include 'both' rows.
func (s *EntityService) List(ctx context.Context, workspaceID, companyID uuid.UUID, entityType string) ([]models.BusinessEntity, error) {
	query := `
		SELECT ` + entityColumns + `
		FROM business_entities
		WHERE workspace_id = $1 AND company_id = $2 AND deleted_at IS NULL`
	args := []any{workspaceID, companyID}

	switch entityType {
	case "":
	case models.EntityTypeCustomer, models.EntityTypeSupplier:
		query += ` AND entity_type IN ($3, 'both')`
		args = append(args, entityType)
	case models.EntityTypeBoth:
		query += ` AND entity_type = 'both'`
	default:
		return nil, ErrInvalidEntityType
	}
	query += ` ORDER BY name`

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []models.BusinessEntity
	for rows.Next() {
		var entity models.BusinessEntity
		if err := rows.Scan(entityFields(&entity)...); err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func (s *EntityService) Update(ctx context.Context, workspaceID, entityID uuid.UUID, in EntityInput) (*models.BusinessEntity, error) {
	if !validEntityType(in.EntityType) {
		return nil, ErrInvalidEntityType
	}

	current, err := s.GetByID(ctx, workspaceID, entityID)
	if err != nil {
		return nil, err
	}
	if err := s.checkDuplicates(ctx, workspaceID, current.CompanyID, entityID, in); err != nil {
		return nil, err
	}

	var entity models.BusinessEntity
	err = s.db.Pool.QueryRow(ctx, `
		UPDATE business_entities SET
			entity_type = $1, name = $2, tax_number = $3, customer_code = $4,
			supplier_code = $5, email = $6, phone = $7, address = $8, city = $9,
			country = $10, credit_limit = $11, opening_balance = $12,
			payment_terms_days = $13, lead_time_days = $14, quality_rating = $15,
			notes = $16, updated_at = NOW()
		WHERE id = $17 AND workspace_id = $18 AND deleted_at IS NULL
		RETURNING `+entityColumns,
		in.EntityType, in.Name, in.TaxNumber, in.CustomerCode,
		in.SupplierCode, in.Email, in.Phone, in.Address, in.City,
		in.Country, in.CreditLimit, in.OpeningBalance,
		in.PaymentTermsDays, in.LeadTimeDays, in.QualityRating,
		in.Notes, entityID, workspaceID,
	).Scan(entityFields(&entity)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update entity: %w", err)
	}
	return &entity, nil
}

// Delete soft-deletes: the row stays for history and its codes become
// reusable by live entities.
func (s *EntityService) Delete(ctx context.Context, workspaceID, entityID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE business_entities SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`, entityID, workspaceID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEntityNotFound
	}
	return nil
}

func entityFields(e *models.BusinessEntity) []any {
	return []any{
		&e.ID, &e.WorkspaceID, &e.CompanyID, &e.EntityType, &e.Name, &e.TaxNumber,
		&e.CustomerCode, &e.SupplierCode, &e.Email, &e.Phone, &e.Address, &e.City, &e.Country,
		&e.CreditLimit, &e.OpeningBalance, &e.PaymentTermsDays, &e.LeadTimeDays,
		&e.QualityRating, &e.Notes, &e.DeletedAt, &e.CreatedAt, &e.UpdatedAt,
	}
}
