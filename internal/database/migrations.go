package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS workspaces (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		slug VARCHAR(100) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS companies (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		slug VARCHAR(100),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS workspace_companies (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		company_id UUID NOT NULL REFERENCES companies(id),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(workspace_id, company_id)
	)`,

	`CREATE TABLE IF NOT EXISTS workspace_members (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role VARCHAR(50) NOT NULL DEFAULT 'member',
		permissions JSONB,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(workspace_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS invitations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		token VARCHAR(128) UNIQUE NOT NULL,
		email VARCHAR(255) NOT NULL,
		invite_type VARCHAR(20) NOT NULL DEFAULT 'workspace',
		role VARCHAR(50) NOT NULL DEFAULT 'member',
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		company_id UUID REFERENCES companies(id),
		invited_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status VARCHAR(30) NOT NULL DEFAULT 'pending',
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		accepted_by UUID REFERENCES users(id),
		responded_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS business_entities (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		company_id UUID NOT NULL REFERENCES companies(id),
		entity_type VARCHAR(20) NOT NULL,
		name VARCHAR(255) NOT NULL,
		tax_number VARCHAR(50),
		customer_code VARCHAR(50),
		supplier_code VARCHAR(50),
		email VARCHAR(255),
		phone VARCHAR(50),
		address VARCHAR(500),
		city VARCHAR(100),
		country VARCHAR(100),
		credit_limit NUMERIC(15,2) NOT NULL DEFAULT 0,
		opening_balance NUMERIC(15,2) NOT NULL DEFAULT 0,
		payment_terms_days INTEGER NOT NULL DEFAULT 0,
		lead_time_days INTEGER,
		quality_rating NUMERIC(3,1),
		notes TEXT,
		deleted_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// Legacy tables read by the consolidation migration. Kept until every
	// tenant has been consolidated, then dropped by hand.
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		company_id UUID NOT NULL REFERENCES companies(id),
		name VARCHAR(255) NOT NULL,
		tax_number VARCHAR(50),
		code VARCHAR(50),
		email VARCHAR(255),
		phone VARCHAR(50),
		address VARCHAR(500),
		city VARCHAR(100),
		country VARCHAR(100),
		credit_limit NUMERIC(15,2) NOT NULL DEFAULT 0,
		opening_balance NUMERIC(15,2) NOT NULL DEFAULT 0,
		payment_terms_days INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS suppliers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		company_id UUID NOT NULL REFERENCES companies(id),
		name VARCHAR(255) NOT NULL,
		tax_number VARCHAR(50),
		code VARCHAR(50),
		email VARCHAR(255),
		phone VARCHAR(50),
		address VARCHAR(500),
		city VARCHAR(100),
		country VARCHAR(100),
		opening_balance NUMERIC(15,2) NOT NULL DEFAULT 0,
		payment_terms_days INTEGER NOT NULL DEFAULT 0,
		lead_time_days INTEGER,
		quality_rating NUMERIC(3,1),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_workspaces_slug ON workspaces(slug)`,
	`CREATE INDEX IF NOT EXISTS idx_workspace_companies_workspace_id ON workspace_companies(workspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_workspace_members_workspace_id ON workspace_members(workspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_workspace_members_user_id ON workspace_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invitations_token ON invitations(token)`,
	`CREATE INDEX IF NOT EXISTS idx_invitations_workspace_id ON invitations(workspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invitations_email_status ON invitations(email, status)`,
	`CREATE INDEX IF NOT EXISTS idx_business_entities_workspace_id ON business_entities(workspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_business_entities_company_id ON business_entities(company_id)`,
	`CREATE INDEX IF NOT EXISTS idx_business_entities_tax_number ON business_entities(workspace_id, tax_number)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
