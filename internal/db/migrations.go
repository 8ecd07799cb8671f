package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id                  UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		registration_number TEXT NOT NULL,
		make_model          TEXT NOT NULL,
		manufacturing_year  INT NOT NULL,
		color               TEXT,
		fuel_type           TEXT,
		registered_owner    TEXT,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_vehicles_registration_number ON vehicles(registration_number);`,
	`CREATE TABLE IF NOT EXISTS verification_logs (
		id                  UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		registration_number TEXT NOT NULL,
		image_url           TEXT NOT NULL,
		vehicle_id          UUID REFERENCES vehicles(id),
		user_id             UUID NOT NULL,
		status              TEXT NOT NULL,
		details             JSONB,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_verification_logs_user_id ON verification_logs(user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_verification_logs_created_at ON verification_logs(created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_verification_logs_registration_number ON verification_logs(registration_number);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
